package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"degradesim/internal/config"
	"degradesim/internal/sim"
)

var (
	simConfigPath   string
	simSchemaPath   string
	simSeed         int64
	simOut          string
	simStepLog      string
	simPrintOnly    bool
	simConsole      bool
	simWatch        bool
	simStepInterval time.Duration
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run one degradation simulation",
	Long:  "simulate runs the configured scenario once and prints the results document. With --watch it re-runs whenever the config file changes.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		seedSet := cmd.Flags().Changed("seed")
		err := simulateOnce(ctx, seedSet)
		if !simWatch {
			return err
		}
		if err != nil {
			slog.Error("simulation failed", "config", simConfigPath, "err", err)
		}
		return watchFile(ctx, simConfigPath, func() {
			if err := simulateOnce(ctx, seedSet); err != nil {
				slog.Error("simulation failed", "config", simConfigPath, "err", err)
			}
		})
	},
}

// errStdoutShared rejects a run that would interleave step rows and the
// results document on STDOUT.
var errStdoutShared = errors.New("--print-only and --console stream steps to STDOUT; set --out for the results document")

func checkOutputs(opts writerOptions, out string) error {
	if (opts.printOnly || opts.console) && out == "" {
		return errStdoutShared
	}
	return nil
}

func simulateOnce(ctx context.Context, seedSet bool) error {
	opts := writerOptions{
		printOnly: simPrintOnly,
		console:   simConsole,
		stepLog:   simStepLog,
	}
	if err := checkOutputs(opts, simOut); err != nil {
		return err
	}
	cfg, err := config.Load(simConfigPath, simSchemaPath)
	if err != nil {
		return err
	}
	if seedSet {
		cfg.Seed = simSeed
	}
	params, err := cfg.Resolve()
	if err != nil {
		return err
	}

	writer, cleanup, err := newWriters(params, opts)
	if err != nil {
		return err
	}
	defer cleanup()

	engine := sim.NewEngine(params, sim.WithWriter(writer), sim.WithStepInterval(simStepInterval))
	res, err := engine.Run(ctx)
	if err != nil {
		return err
	}
	return writeResults(res, simOut)
}

// writeResults prints the results document to STDOUT or to path.
func writeResults(res *sim.Results, path string) error {
	var out io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func init() {
	simulateCmd.Flags().StringVar(&simConfigPath, "config", "config/simulation.yaml", "Path to simulation configuration YAML or JSON")
	simulateCmd.Flags().StringVar(&simSchemaPath, "schema", "", "Path to CUE schema file (defaults to the embedded schema)")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 0, "Random seed overriding the config (0 derives one from the clock)")
	simulateCmd.Flags().StringVar(&simOut, "out", "", "Write the results document to this file instead of STDOUT")
	simulateCmd.Flags().StringVar(&simStepLog, "step-log", "", "Path to export step rows (JSONL)")
	simulateCmd.Flags().BoolVar(&simPrintOnly, "print-only", false, "Stream step rows to STDOUT instead of writing to DB")
	simulateCmd.Flags().BoolVar(&simConsole, "console", false, "Render step rows as coloured console output")
	simulateCmd.Flags().BoolVar(&simWatch, "watch", false, "Re-run whenever the config file changes")
	simulateCmd.Flags().DurationVar(&simStepInterval, "step-interval", time.Second, "Simulated time between steps, used for row timestamps")
}
