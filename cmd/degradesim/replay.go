package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"degradesim/internal/sim"
)

var (
	replayInput     string
	replaySpeed     float64
	replayPrintOnly bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a JSONL step log",
	Long:  "replay feeds step rows from a --step-log file back into GreptimeDB or STDOUT, paced by their timestamps.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		writer, cleanup, err := newWriters(nil, writerOptions{printOnly: replayPrintOnly || !greptimeConfigured()})
		if err != nil {
			return err
		}
		defer cleanup()
		n, err := sim.ReplayLogFile(replayInput, writer, replaySpeed)
		slog.Info("replay finished", "input", replayInput, "rows", n)
		return err
	},
}

func greptimeConfigured() bool {
	endpoint, _, _ := greptimeEnv()
	return endpoint != ""
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to JSONL step log")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier (0 disables pacing)")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print step rows to STDOUT instead of writing to DB")
	replayCmd.MarkFlagRequired("input")
}
