// invaders is a terminal Space Invaders built on a deterministic,
// frame-stepped simulation.
//
// Usage:
//
//	invaders play                 - Play in the terminal
//	invaders serve                - Start SSH server for remote play
//	invaders scores               - Show high scores
//	invaders saves                - List quick-save slots
//	invaders export <slot>        - Print a saved state as JSON
//	invaders replay <file>        - Play back a recording headlessly
//	invaders config               - Print the rules table as YAML
//
// Global flags:
//
//	--fps <rate>          - Set tick rate (default: 60)
//	--db <path>           - Set database path (default: ~/.arcade/scores.db)
//	--config <path>       - Load a custom rules table
//	--difficulty <name>   - easy, normal, hard or fixed
//	--log-file <path>     - Write logs to a file
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-invaders/internal/config"
	"github.com/vovakirdan/tui-invaders/internal/core"
	"github.com/vovakirdan/tui-invaders/internal/games/invaders"
	"github.com/vovakirdan/tui-invaders/internal/games/invaders/sim"
)

var (
	// Global flags
	flagFPS        int
	flagDBPath     string
	flagConfig     string
	flagDifficulty string
	flagLogFile    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "invaders",
	Short: "Space Invaders in your terminal",
	Long: `A deterministic Space Invaders for the terminal.

The simulation runs at a fixed 320x210 resolution and is downsampled to
half-block characters. Every frame depends only on the previous state and
the input, so games can be saved, exported and replayed exactly.

Available commands:
  play     - Play in the terminal
  serve    - Start SSH server for remote play
  scores   - View high scores
  saves    - List or delete quick-save slots
  export   - Print a saved state as JSON
  replay   - Play back a recording and print its final hash
  config   - Print the rules table as YAML

Examples:
  invaders play
  invaders play --difficulty hard --record run.yaml
  invaders replay run.yaml
  invaders serve --ssh :2222`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if flagDifficulty != "" && config.ParseDifficulty(flagDifficulty) == "" {
			return fmt.Errorf("unknown difficulty %q (want easy, normal, hard or fixed)", flagDifficulty)
		}
		invaders.SetConfigPath(flagConfig)
		invaders.SetDifficultyPreset(flagDifficulty)
		return nil
	},
	SilenceUsage: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.arcade/scores.db", "Path to scores database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom rules YAML")
	rootCmd.PersistentFlags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(savesCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(configCmd)
}

// newLogger returns a logger writing to --log-file, or to fallback when no
// file was given. The returned function closes the file.
func newLogger(prefix string, fallback io.Writer) (*log.Logger, func(), error) {
	w, closeFn := fallback, func() {}
	if flagLogFile != "" {
		if err := os.MkdirAll(filepath.Dir(flagLogFile), 0o755); err != nil {
			return nil, nil, fmt.Errorf("cannot create log directory: %w", err)
		}
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) //#nosec G304 -- user-provided log path
		if err != nil {
			return nil, nil, fmt.Errorf("cannot open log file: %w", err)
		}
		w, closeFn = f, func() { f.Close() }
	}
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	return logger, closeFn, nil
}

// loadRules builds the rules selected by --config and --difficulty.
func loadRules(preset config.DifficultyPreset) (*sim.Rules, error) {
	rules, err := invaders.LoadRules(flagConfig, preset)
	if err != nil {
		return nil, fmt.Errorf("cannot load rules: %w", err)
	}
	return rules, nil
}

// runtimeConfig sizes the game to the current terminal.
func runtimeConfig() core.RuntimeConfig {
	cfg := core.DefaultConfig()
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil { //#nosec G115 -- file descriptors fit in int
		cfg.ScreenW = w
		cfg.ScreenH = h
	}
	cfg.TickRate = flagFPS
	return cfg
}
