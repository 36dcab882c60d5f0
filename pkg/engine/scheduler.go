package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/patchgrid/patchgrid/pkg/grid"
	"github.com/patchgrid/patchgrid/pkg/wire"
)

// statsInterval is how often the tick loop logs flow counters.
const statsInterval = 10 * time.Second

// Scheduler is the single-threaded apply loop. It exclusively owns the
// coalescer, the grid, and (through it) the surface; the inbox is its only
// link to the listener.
type Scheduler struct {
	grid      *grid.Grid
	surface   grid.Surface
	inbox     *inbox
	pending   *coalescer
	metrics   *Metrics
	log       *slog.Logger
	interval  time.Duration
	maxApply  int
	heartbeat time.Duration

	lastStats time.Time
}

func newScheduler(cfg Config, g *grid.Grid, surface grid.Surface, in *inbox, m *Metrics, log *slog.Logger) *Scheduler {
	return &Scheduler{
		grid:      g,
		surface:   surface,
		inbox:     in,
		pending:   newCoalescer(),
		metrics:   m,
		log:       log,
		interval:  cfg.TickInterval(),
		maxApply:  cfg.MaxAppliesPerTick,
		heartbeat: cfg.HeartbeatTimeout(),
	}
}

// Run ticks until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	s.lastStats = time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			s.tick(now)
		}
	}
}

// tick is one full drain-coalesce-apply-flush cycle.
func (s *Scheduler) tick(now time.Time) {
	// Drain fully; only applying is capped.
	s.inbox.drain(s.pending.add)

	applied := s.pending.take(s.maxApply, s.applyOne)
	s.metrics.addApplied(applied)

	if f, ok := s.surface.(grid.Flusher); ok && applied > 0 {
		s.guard(f.Flush)
	}

	if now.Sub(s.lastStats) >= statsInterval {
		s.lastStats = now
		snap := s.metrics.Snapshot()
		s.log.Info("display stats",
			"received", snap.Received,
			"parsed", snap.Parsed,
			"dropped_decode", snap.DroppedDecode,
			"dropped_queue", snap.DroppedQueue,
			"applied", snap.Applied,
			"pending", s.pending.size(),
		)
		if !s.metrics.Alive(now, s.heartbeat) {
			s.log.Warn("no datagrams received within heartbeat window",
				"timeout", s.heartbeat)
		}
	}
}

func (s *Scheduler) applyOne(cmd wire.Command) {
	s.guard(func() { s.grid.Apply(cmd) })
}

// guard keeps a misbehaving surface from killing the tick loop. Draw calls
// are best-effort; a panic is logged and the tick moves on.
func (s *Scheduler) guard(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("render surface panicked", "panic", r)
		}
	}()
	fn()
}
