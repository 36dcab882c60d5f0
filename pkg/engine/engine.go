package engine

import (
	"context"
	"log/slog"
	"net"

	"golang.org/x/sync/errgroup"

	"github.com/patchgrid/patchgrid/pkg/grid"
)

// Engine ties the listener and the apply scheduler together.
type Engine struct {
	listener  *Listener
	scheduler *Scheduler
	metrics   *Metrics
}

// New validates the configuration, binds the UDP socket, and builds the
// grid against the given surface. A bind failure is the one startup error
// worth dying for.
func New(cfg Config, surface grid.Surface, log *slog.Logger) (*Engine, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	metrics := &Metrics{}
	in := newInbox(cfg.QueueSize)
	g := grid.New(cfg.Layout(), surface, log.With("component", "grid"))

	listener, err := newListener(cfg, in, metrics, log.With("component", "listener"))
	if err != nil {
		return nil, err
	}

	sched := newScheduler(cfg, g, surface, in, metrics, log.With("component", "scheduler"))
	return &Engine{listener: listener, scheduler: sched, metrics: metrics}, nil
}

// LocalAddr returns the bound UDP address.
func (e *Engine) LocalAddr() net.Addr { return e.listener.LocalAddr() }

// Metrics exposes the flow counters.
func (e *Engine) Metrics() *Metrics { return e.metrics }

// Run drives both halves until the context is cancelled, then closes the
// socket.
func (e *Engine) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return e.listener.Run(ctx) })
	g.Go(func() error { return e.scheduler.Run(ctx) })
	err := g.Wait()
	if cerr := e.listener.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
