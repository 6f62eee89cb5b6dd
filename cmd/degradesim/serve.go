package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"degradesim/internal/api"
	"degradesim/internal/bus"
)

var (
	serveAddr        string
	serveNATSURL     string
	serveNATSSubject string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve simulations over HTTP and NATS",
	Long:  "serve exposes POST /api/run_simulation and, when --nats-url is set, a NATS request/reply responder. Both share one set of run counters.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, serveAddr, serveNATSURL, serveNATSSubject)
	},
}

// runServe connects to NATS, if configured, before the HTTP listener starts so
// a failed connection leaves nothing running.
func runServe(ctx context.Context, addr, natsURL, subject string) error {
	log := slog.Default()
	srv := api.NewServer(log, api.NewStats(), nil)

	var responder *bus.Responder
	if natsURL != "" {
		var err error
		responder, err = bus.NewResponder(natsURL, &bus.Handler{Log: log, Observer: srv.Stats()})
		if err != nil {
			return err
		}
		defer responder.Close()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(ctx, addr) })
	if responder != nil {
		g.Go(func() error { return responder.Serve(ctx, subject) })
	}

	err := g.Wait()
	log.Info("server stopped")
	return err
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "HTTP listen address")
	serveCmd.Flags().StringVar(&serveNATSURL, "nats-url", "", "NATS server URL; empty disables the responder")
	serveCmd.Flags().StringVar(&serveNATSSubject, "nats-subject", bus.DefaultSubject, "NATS request subject")
}
