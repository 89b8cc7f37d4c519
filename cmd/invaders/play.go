package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-invaders/internal/games/invaders"
	"github.com/vovakirdan/tui-invaders/internal/platform/tui"
	"github.com/vovakirdan/tui-invaders/internal/storage"
)

var flagRecord string

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in the terminal",
	Long: `Start a game in the terminal.

Controls:
  Left/A, Right/D   - Move
  Space/Up/W        - Fire
  P/Esc             - Pause
  R                 - Restart (after the board is cleared)
  Ctrl+S / Ctrl+L   - Quick-save / quick-load
  ?                 - Show all keys
  Q/Ctrl+C          - Quit

Difficulty options:
  easy   - Slower volleys and march
  normal - The table as configured
  hard   - Faster volleys and march
  fixed  - The table as configured, never adjusted

With --record, the input of the first game is written to a YAML file that
'invaders replay' can play back.

Examples:
  invaders play
  invaders play --difficulty hard
  invaders play --config ./my-invaders.yaml
  invaders play --record run.yaml`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagRecord, "record", "", "Record input to this replay file")
}

func runPlay(_ *cobra.Command, _ []string) {
	// The TUI owns the terminal, so logs go nowhere unless --log-file is set
	logger, closeLog, err := newLogger("invaders", io.Discard)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	// Validate the table up front instead of silently falling back to defaults
	rules, err := loadRules(invaders.Difficulty())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	game := invaders.NewWithRules(rules)

	// Open score storage
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		logger.Warn("running without storage", "error", err)
		// Continue without storage - game still works
		store = nil
	}

	// Run the game
	_, runErr := tui.Run(game, store, runtimeConfig(), tui.Options{
		Difficulty: invaders.Difficulty(),
		RecordPath: flagRecord,
		Logger:     logger,
	})

	// Close store before potential exit
	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
	if flagRecord != "" {
		fmt.Printf("Recording saved to %s\n", flagRecord)
	}
}
