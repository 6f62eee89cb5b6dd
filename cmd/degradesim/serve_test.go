package main

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunServeNATSUnreachable(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	err = runServe(context.Background(), addr, "nats://127.0.0.1:1", "")
	require.Error(t, err)

	// the HTTP listener was never started
	l, err = net.Listen("tcp", addr)
	require.NoError(t, err)
	l.Close()
}

func TestRunServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, runServe(ctx, "127.0.0.1:0", "", ""))
}
