package sim

import (
	"context"

	"degradesim/internal/config"
)

// RunDocument parses a raw configuration document and simulates it on a fresh
// engine. Transports call this once per request.
func RunDocument(ctx context.Context, doc []byte, opts ...Option) (*Results, error) {
	cfg, err := config.Parse(doc)
	if err != nil {
		return nil, err
	}
	return Simulate(ctx, cfg, opts...)
}
