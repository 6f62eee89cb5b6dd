package bus

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/nats-io/nats.go"

	"degradesim/internal/config"
	"degradesim/internal/logging"
	"degradesim/internal/sim"
)

// DefaultSubject is the request subject served when none is configured.
const DefaultSubject = "degradesim.run_simulation"

// Observer is notified of every handled request.
type Observer interface {
	ObserveRun(res *sim.Results, err error)
}

// ErrorReply is sent back instead of a results document when a run fails.
type ErrorReply struct {
	Error string `json:"error"`
	// Invalid marks a rejected configuration document.
	Invalid bool `json:"invalid,omitempty"`
}

// Handler turns a request payload into a reply payload.
type Handler struct {
	Log      *slog.Logger
	Observer Observer
	Options  func() []sim.Option
}

// Handle runs one simulation for a raw configuration document.
func (h *Handler) Handle(ctx context.Context, payload []byte) []byte {
	log := h.Log
	if log == nil {
		log = slog.Default()
	}
	var opts []sim.Option
	if h.Options != nil {
		opts = h.Options()
	}
	res, err := sim.RunDocument(logging.NewContext(ctx, log), payload, opts...)
	if h.Observer != nil {
		h.Observer.ObserveRun(res, err)
	}

	var reply any = res
	if err != nil {
		invalid := errors.Is(err, config.ErrInvalidConfig)
		if !invalid {
			log.Error("simulation failed", "err", err)
		}
		reply = ErrorReply{Error: err.Error(), Invalid: invalid}
	}
	data, err := json.Marshal(reply)
	if err != nil {
		log.Error("reply encode failed", "err", err)
		data, _ = json.Marshal(ErrorReply{Error: err.Error()})
	}
	return data
}

// Responder answers simulation requests on a NATS subject.
type Responder struct {
	Conn    *nats.Conn
	sub     *nats.Subscription
	handler *Handler
}

// NewResponder connects to url.
func NewResponder(url string, h *Handler) (*Responder, error) {
	conn, err := nats.Connect(url, nats.Name("degradesim"))
	if err != nil {
		return nil, err
	}
	return &Responder{Conn: conn, handler: h}, nil
}

// Serve subscribes to subject and answers requests until ctx is cancelled.
func (r *Responder) Serve(ctx context.Context, subject string) error {
	if subject == "" {
		subject = DefaultSubject
	}
	sub, err := r.Conn.Subscribe(subject, func(m *nats.Msg) {
		if m.Reply == "" {
			return
		}
		if err := m.Respond(r.handler.Handle(ctx, m.Data)); err != nil {
			r.logger().Error("nats respond failed", "subject", subject, "err", err)
		}
	})
	if err != nil {
		return err
	}
	r.sub = sub
	r.logger().Info("nats responder subscribed", "subject", subject)
	<-ctx.Done()
	return nil
}

// Close drains the subscription and connection.
func (r *Responder) Close() {
	if r.Conn != nil {
		r.Conn.Drain()
		r.Conn.Close()
	}
}

func (r *Responder) logger() *slog.Logger {
	if r.handler != nil && r.handler.Log != nil {
		return r.handler.Log
	}
	return slog.Default()
}
