package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"degradesim/internal/config"
	"degradesim/internal/logging"
	"degradesim/internal/sim"
)

// MaxBodyBytes limits the size of an accepted configuration document.
const MaxBodyBytes = 1 << 20

const shutdownTimeout = 5 * time.Second

// Server exposes the simulator over HTTP.
type Server struct {
	log     *slog.Logger
	stats   *Stats
	options func() []sim.Option
	router  chi.Router
}

// NewServer builds a server. engineOpts, if non-nil, supplies per-request
// engine options; it is called once per request so no engine state is shared.
func NewServer(log *slog.Logger, stats *Stats, engineOpts func() []sim.Option) *Server {
	if log == nil {
		log = slog.Default()
	}
	if stats == nil {
		stats = NewStats()
	}
	s := &Server{log: log, stats: stats, options: engineOpts}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)
	r.Route("/api", func(r chi.Router) {
		r.Post("/run_simulation", s.handleRunSimulation)
		r.Post("/component_params", s.handleComponentParams)
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Stats returns the run counters shared with other transports.
func (s *Server) Stats() *Stats {
	return s.stats
}

// Start listens on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return logging.NewContext(context.Background(), s.log) },
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	s.log.Info("http server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleRunSimulation(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ctx := logging.NewContext(r.Context(), s.log.With("request_id", middleware.GetReqID(r.Context())))
	var opts []sim.Option
	if s.options != nil {
		opts = s.options()
	}
	res, err := sim.RunDocument(ctx, body, opts...)
	s.stats.ObserveRun(res, err)
	if err != nil {
		status := StatusFor(err)
		if status >= http.StatusInternalServerError {
			s.log.Error("simulation failed", "err", err)
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleComponentParams(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	cfg, err := config.Parse(body)
	if err == nil {
		_, err = cfg.Resolve()
	}
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Component parameters updated",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// StatusFor maps a simulation error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, config.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
