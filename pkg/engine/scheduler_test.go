package engine

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchgrid/patchgrid/pkg/grid"
	"github.com/patchgrid/patchgrid/pkg/wire"
)

// captureSurface records surface calls and tick flushes.
type captureSurface struct {
	calls   []string
	flushes int
}

func (s *captureSurface) record(format string, args ...any) {
	s.calls = append(s.calls, fmt.Sprintf(format, args...))
}

func (s *captureSurface) SetCellText(row, col int, text string, fg, bg wire.Color, align wire.Align) {
	s.record("text %d,%d %q %s %s %s", row, col, text, fg, bg, align)
}
func (s *captureSurface) SetCellBackground(row, col int, bg wire.Color) {
	s.record("bg %d,%d %s", row, col, bg)
}
func (s *captureSurface) EnsureBarWidget(row, col int, style grid.BarStyle) {
	s.record("bar-widget %d,%d", row, col)
}
func (s *captureSurface) SetBarValue(row, col, value int) {
	s.record("bar %d,%d %d", row, col, value)
}
func (s *captureSurface) EnsureRingWidget(row, col int, style grid.RingStyle) {
	s.record("ring-widget %d,%d", row, col)
}
func (s *captureSurface) SetRingValues(row, col, outer, inner int) {
	s.record("ring %d,%d %d/%d", row, col, outer, inner)
}
func (s *captureSurface) SetRingExtraArcs(row, col, v1, v2 int) {
	s.record("arcs %d,%d %d/%d", row, col, v1, v2)
}
func (s *captureSurface) SetRingCenterOverride(row, col int, text string, present bool) {
	s.record("center %d,%d %q %v", row, col, text, present)
}
func (s *captureSurface) TeardownWidget(row, col int) {
	s.record("teardown %d,%d", row, col)
}
func (s *captureSurface) Flush() { s.flushes++ }

func (s *captureSurface) count(prefix string) int {
	n := 0
	for _, c := range s.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func newTestScheduler(t *testing.T, cfg Config, surface grid.Surface) (*Scheduler, *inbox) {
	t.Helper()
	log := slog.New(slog.DiscardHandler)
	in := newInbox(cfg.QueueSize)
	g := grid.New(cfg.Layout(), surface, log)
	return newScheduler(cfg, g, surface, in, &Metrics{}, log), in
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Columns = []int{4, 4, 8}
	return cfg
}

func TestCoalescingIdempotence(t *testing.T) {
	surface := &captureSurface{}
	sched, in := newTestScheduler(t, testConfig(), surface)

	// The same SET many times between two ticks collapses to one diff.
	for i := 0; i < 50; i++ {
		in.put(wire.SetText{Row: 0, Col: 1, Text: "X", Foreground: "#fff", Background: "#000", Align: wire.AlignLeft})
	}
	sched.tick(time.Now())

	assert.Equal(t, 1, surface.count("text "))
	assert.Equal(t, 1, surface.flushes)
}

func TestLastWriteWinsPerKey(t *testing.T) {
	surface := &captureSurface{}
	sched, in := newTestScheduler(t, testConfig(), surface)

	for v := 0; v <= 100; v++ {
		in.put(wire.BarValue{Row: 0, Col: 0, Value: v})
	}
	sched.tick(time.Now())

	require.Equal(t, 1, surface.count("bar 0,0"))
	assert.Contains(t, surface.calls, "bar 0,0 100")
}

func TestDifferentKindsCoexist(t *testing.T) {
	surface := &captureSurface{}
	sched, in := newTestScheduler(t, testConfig(), surface)

	// A BG and a bar value for the same cell are separate pending entries.
	in.put(wire.CellBackground{Row: 0, Col: 0, Color: "#123456"})
	in.put(wire.BarValue{Row: 0, Col: 0, Value: 7})
	sched.tick(time.Now())

	assert.Equal(t, 1, surface.count("bg "))
	assert.Equal(t, 1, surface.count("bar 0,0"))
}

func TestPhaseOrderingTextWins(t *testing.T) {
	surface := &captureSurface{}
	sched, in := newTestScheduler(t, testConfig(), surface)

	// Same tick: a BG and a SET with a different background. SET applies
	// last, so its background is final.
	in.put(wire.CellBackground{Row: 1, Col: 2, Color: "#ff0000"})
	in.put(wire.SetText{Row: 1, Col: 2, Text: "X", Foreground: "#fff", Background: "#00ff00"})
	sched.tick(time.Now())

	var lastBG string
	for _, c := range surface.calls {
		if len(c) > 3 && c[:3] == "bg " {
			lastBG = c
		}
	}
	assert.Equal(t, "bg 1,2 #00ff00", lastBG)

	var lastText string
	for _, c := range surface.calls {
		if len(c) > 5 && c[:5] == "text " {
			lastText = c
		}
	}
	assert.Equal(t, `text 1,2 "X" #fff #00ff00 left`, lastText)
}

func TestBackpressureCarriesOver(t *testing.T) {
	cfg := testConfig()
	cfg.MaxAppliesPerTick = 4
	surface := &captureSurface{}
	sched, in := newTestScheduler(t, cfg, surface)

	// Six distinct cells in row 2; only four may apply on the first tick.
	for col := 0; col < 6; col++ {
		in.put(wire.BarValue{Row: 2, Col: col, Value: 50})
	}
	sched.tick(time.Now())
	assert.Equal(t, 4, surface.count("bar 2,"))
	assert.Equal(t, 2, sched.pending.size())

	// The rest lands on the next tick; nothing is lost.
	sched.tick(time.Now())
	assert.Equal(t, 6, surface.count("bar 2,"))
	assert.Equal(t, 0, sched.pending.size())
}

func TestLateArrivalsWaitForNextTick(t *testing.T) {
	surface := &captureSurface{}
	sched, in := newTestScheduler(t, testConfig(), surface)

	sched.tick(time.Now())
	in.put(wire.BarValue{Row: 0, Col: 0, Value: 9})
	assert.Equal(t, 0, surface.count("bar "), "nothing applies between ticks")

	sched.tick(time.Now())
	assert.Equal(t, 1, surface.count("bar 0,0"))
}

// panicSurface blows up on every draw call.
type panicSurface struct{ captureSurface }

func (s *panicSurface) SetBarValue(row, col, value int) { panic("boom") }

func TestSurfacePanicDoesNotKillTick(t *testing.T) {
	surface := &panicSurface{}
	sched, in := newTestScheduler(t, testConfig(), surface)

	in.put(wire.BarValue{Row: 0, Col: 0, Value: 1})
	in.put(wire.SetText{Row: 0, Col: 1, Text: "ok", Foreground: "#fff", Background: "#000"})
	require.NotPanics(t, func() { sched.tick(time.Now()) })

	// The healthy cell still applied.
	assert.Equal(t, 1, surface.count("text "))
}

func TestInboxDropsWhenFull(t *testing.T) {
	in := newInbox(2)
	assert.True(t, in.put(wire.BarValue{}))
	assert.True(t, in.put(wire.BarValue{}))
	assert.False(t, in.put(wire.BarValue{}), "full inbox must refuse, not block")

	n := in.drain(func(wire.Command) {})
	assert.Equal(t, 2, n)
}

func TestMetricsAlive(t *testing.T) {
	m := &Metrics{}
	now := time.Now()
	assert.True(t, m.Alive(now, time.Second), "no traffic yet means alive")

	m.markReceived(now.Add(-2 * time.Second))
	assert.False(t, m.Alive(now, time.Second))

	m.markReceived(now)
	assert.True(t, m.Alive(now, time.Second))
}
