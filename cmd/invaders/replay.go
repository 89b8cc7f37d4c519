package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-invaders/internal/games/invaders"
	"github.com/vovakirdan/tui-invaders/internal/replay"
)

var (
	flagExpect uint64
	flagTrail  bool
)

var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Play back a recording headlessly",
	Long: `Run a recording made with 'invaders play --record' without a terminal
UI and print the final score and state hash.

The recording's own difficulty is used unless --difficulty is given. The
final hash is checked against --expect, or against the hash stored in the
recording when there is one.

Examples:
  invaders replay run.yaml
  invaders replay run.yaml --expect 1234567890
  invaders replay run.yaml --trail > hashes.txt`,
	Args: cobra.ExactArgs(1),
	Run:  runReplay,
}

func init() {
	replayCmd.Flags().Uint64Var(&flagExpect, "expect", 0, "Expected final state hash")
	replayCmd.Flags().BoolVar(&flagTrail, "trail", false, "Print the state hash after every frame")
}

func runReplay(cmd *cobra.Command, args []string) {
	rec, err := replay.Load(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	preset := rec.Difficulty
	if cmd.Flags().Changed("difficulty") {
		preset = invaders.Difficulty()
	}
	rules, err := loadRules(preset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var res replay.Result
	switch {
	case cmd.Flags().Changed("expect"):
		res, err = replay.Verify(rules, rec, flagExpect)
	case rec.FinalHash != 0:
		res, err = replay.Verify(rules, rec, rec.FinalHash)
	default:
		res, err = replay.Play(rules, rec)
	}
	if err != nil && !errors.Is(err, replay.ErrHashMismatch) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if flagTrail {
		for i, h := range res.Hashes {
			fmt.Printf("%d %d\n", i+1, h)
		}
	}

	final := res.Final
	fmt.Printf("Recording: %s\n", rec.ID)
	fmt.Printf("Frames:    %d\n", len(res.Hashes))
	fmt.Printf("Score:     %d\n", final.CurrentScore())
	fmt.Printf("Enemies:   %d alive\n", final.AliveEnemies())
	fmt.Printf("Hash:      %d\n", final.Hash())

	if err != nil {
		fmt.Fprintf(os.Stderr, "Replay diverged: %v\n", err)
		os.Exit(1)
	}
}
