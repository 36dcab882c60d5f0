package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/patchgrid/patchgrid/pkg/wire"
)

const (
	// maxDatagramSize covers the worst-case protocol line.
	maxDatagramSize = 16384

	// readTimeout bounds each blocking read so the listener notices
	// cancellation promptly.
	readTimeout = time.Second

	// readErrorBackoff throttles retries after a non-timeout read error.
	readErrorBackoff = 100 * time.Millisecond
)

// Listener owns the UDP socket. It decodes datagrams and feeds the inbox,
// never blocking on a slow consumer and never dying on bad input. Binding
// the socket is the only fatal step.
type Listener struct {
	conn    *net.UDPConn
	inbox   *inbox
	metrics *Metrics
	log     *slog.Logger
}

// newListener binds the socket and requests a large OS receive buffer.
func newListener(cfg Config, in *inbox, m *Metrics, log *slog.Logger) (*Listener, error) {
	addr, err := net.ResolveUDPAddr("udp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", cfg.Addr, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("binding %s: %w", cfg.Addr, err)
	}
	if cfg.RecvBufferBytes > 0 {
		if err := conn.SetReadBuffer(cfg.RecvBufferBytes); err != nil {
			log.Warn("could not set socket receive buffer",
				"bytes", cfg.RecvBufferBytes, "error", err)
		}
	}
	log.Info("listening", "addr", conn.LocalAddr())
	return &Listener{conn: conn, inbox: in, metrics: m, log: log}, nil
}

// LocalAddr returns the bound address.
func (l *Listener) LocalAddr() net.Addr { return l.conn.LocalAddr() }

// Close releases the socket.
func (l *Listener) Close() error { return l.conn.Close() }

// Run reads datagrams until the context is cancelled. Decode failures are
// counted and skipped; transient read errors are logged and retried with a
// short backoff.
func (l *Listener) Run(ctx context.Context) error {
	buf := make([]byte, maxDatagramSize)
	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := l.conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			return fmt.Errorf("setting read deadline: %w", err)
		}
		n, _, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				continue
			}
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			l.log.Error("udp read failed", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(readErrorBackoff):
			}
			continue
		}

		l.metrics.markReceived(time.Now())
		cmd, ok := wire.ParseDatagram(buf[:n])
		if !ok {
			l.metrics.markDecodeDrop()
			l.log.Debug("dropped undecodable datagram", "payload", string(buf[:min(n, 128)]))
			continue
		}
		if !l.inbox.put(cmd) {
			l.metrics.markQueueDrop()
			continue
		}
		l.metrics.markParsed()
	}
}
