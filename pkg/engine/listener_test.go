package engine

import (
	"context"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchgrid/patchgrid/pkg/grid"
)

func TestListenerEndToEnd(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	cfg.TickMillis = 1

	surface := &captureSurface{}
	eng, err := New(cfg, surface, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- eng.Run(ctx) }()

	conn, err := net.Dial("udp", eng.LocalAddr().String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("0 0 #fff #000 hello;\n"))
	require.NoError(t, err)
	_, err = conn.Write([]byte("BARVAL 3 1 99"))
	require.NoError(t, err)
	_, err = conn.Write([]byte("not a command"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		snap := eng.Metrics().Snapshot()
		return snap.Received == 3 && snap.Applied >= 2
	}, 5*time.Second, 5*time.Millisecond)

	snap := eng.Metrics().Snapshot()
	assert.Equal(t, uint64(2), snap.Parsed)
	assert.Equal(t, uint64(1), snap.DroppedDecode)
	assert.Equal(t, uint64(0), snap.DroppedQueue)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not stop after cancel")
	}
}

func TestListenerRebindFails(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Addr = "127.0.0.1:0"

	first, err := New(cfg, grid.Discard, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	defer first.listener.Close()

	cfg.Addr = first.LocalAddr().String()
	_, err = New(cfg, grid.Discard, slog.New(slog.DiscardHandler))
	assert.Error(t, err, "second bind on the same port must fail")
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Columns = nil
	_, err := New(cfg, grid.Discard, nil)
	assert.Error(t, err)
}
