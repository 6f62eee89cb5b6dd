package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"degradesim/internal/logging"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "degradesim",
	Short: "Component degradation and maintenance cost simulator",
	Long:  "degradesim simulates multi-component degradation under a reactive maintenance policy and reports costs and reliability metrics.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(logging.New(logLevel))
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(viewCmd)
}
