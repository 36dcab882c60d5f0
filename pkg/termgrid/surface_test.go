package termgrid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/golden"

	"github.com/patchgrid/patchgrid/pkg/grid"
	"github.com/patchgrid/patchgrid/pkg/wire"
)

// fakeTerminal captures output for assertions.
type fakeTerminal struct {
	buf      strings.Builder
	cols     int
	rows     int
	onInput  func([]byte)
	onResize func()
	stopped  bool
}

func (t *fakeTerminal) Start(onInput func([]byte), onResize func()) error {
	t.onInput = onInput
	t.onResize = onResize
	return nil
}
func (t *fakeTerminal) Stop()                { t.stopped = true }
func (t *fakeTerminal) WriteString(s string) { t.buf.WriteString(s) }
func (t *fakeTerminal) Columns() int         { return t.cols }
func (t *fakeTerminal) Rows() int            { return t.rows }
func (t *fakeTerminal) HideCursor()          {}
func (t *fakeTerminal) ShowCursor()          {}

func newTestSurface(t *testing.T, cols int) (*TermSurface, *fakeTerminal) {
	t.Helper()
	term := &fakeTerminal{cols: cols, rows: 24}
	s := New(term, grid.Layout{Columns: []int{4, 4, 8}})
	require.NoError(t, s.Start())
	term.buf.Reset()
	return s, term
}

// Uncolored draw calls keep the frame free of escape codes, so the golden
// file stays readable.
func TestGoldenFrame(t *testing.T) {
	s, _ := newTestSurface(t, 32)

	s.SetCellText(0, 0, "vol", "", "", wire.AlignCenter)

	s.EnsureBarWidget(0, 1, grid.BarStyle{})
	s.SetBarValue(0, 1, 64)

	s.EnsureRingWidget(0, 2, grid.RingStyle{})
	s.SetRingValues(0, 2, 127, 64)

	s.SetCellText(2, 0, "x", "", "", wire.AlignRight)

	s.EnsureRingWidget(2, 7, grid.RingStyle{})
	s.SetRingCenterOverride(2, 7, "go", true)

	s.mu.Lock()
	lines := s.frameLocked(32)
	s.mu.Unlock()

	golden.Assert(t, strings.Join(lines, "\n")+"\n", "frame.golden")
}

func TestFlushRepaintsOnlyChangedLines(t *testing.T) {
	s, term := newTestSurface(t, 32)

	s.SetCellText(0, 0, "a", "", "", wire.AlignLeft)
	s.Flush()
	first := term.buf.String()
	assert.Contains(t, first, "\x1b[1;1H", "row 0 repainted")
	assert.Contains(t, first, "\x1b[?2026h", "synchronized output")

	// Nothing changed: no bytes at all.
	term.buf.Reset()
	s.Flush()
	assert.Empty(t, term.buf.String())

	// A change on row 2 repaints only row 2.
	term.buf.Reset()
	s.SetCellText(2, 0, "b", "", "", wire.AlignLeft)
	s.Flush()
	second := term.buf.String()
	assert.NotContains(t, second, "\x1b[1;1H")
	assert.Contains(t, second, "\x1b[3;1H")
}

func TestResizeForcesFullRepaint(t *testing.T) {
	s, term := newTestSurface(t, 32)

	s.SetCellText(0, 0, "a", "", "", wire.AlignLeft)
	s.Flush()
	term.buf.Reset()

	term.cols = 48
	term.onResize()
	out := term.buf.String()
	assert.Contains(t, out, "\x1b[1;1H")
	assert.Contains(t, out, "\x1b[2;1H")
	assert.Contains(t, out, "\x1b[3;1H")
}

func TestQuitKeys(t *testing.T) {
	for _, key := range []byte{'q', 'Q', 0x1b, 0x03} {
		term := &fakeTerminal{cols: 32, rows: 24}
		s := New(term, grid.Layout{Columns: []int{4}})
		require.NoError(t, s.Start())

		select {
		case <-s.Done():
			t.Fatal("quit before any input")
		default:
		}

		term.onInput([]byte{key})
		select {
		case <-s.Done():
		default:
			t.Fatalf("key %q did not quit", key)
		}
	}
}

func TestWidgetStateTransitions(t *testing.T) {
	s, _ := newTestSurface(t, 32)

	// Values before the widget exists are dropped.
	s.SetBarValue(0, 0, 99)
	assert.Equal(t, viewEmpty, s.cells[0][0].mode)

	s.EnsureBarWidget(0, 0, grid.DefaultBarStyle())
	s.SetBarValue(0, 0, 99)
	assert.Equal(t, viewBar, s.cells[0][0].mode)
	assert.Equal(t, 99, s.cells[0][0].barValue)

	// Teardown keeps the backdrop, drops everything else.
	s.SetCellBackground(0, 0, "#101010")
	s.TeardownWidget(0, 0)
	assert.Equal(t, viewEmpty, s.cells[0][0].mode)
	assert.Equal(t, wire.Color("#101010"), s.cells[0][0].bg)
	assert.Zero(t, s.cells[0][0].barValue)
}

func TestRingCenterLabel(t *testing.T) {
	v := &cellView{mode: viewRing}
	assert.Equal(t, " 1 ", v.centerLabel(), "inner value has a floor of 1")

	v.innerValue = 64
	assert.Equal(t, " 64 ", v.centerLabel())

	v.hasOverride = true
	v.centerText = "hz"
	assert.Equal(t, "hz", v.centerLabel())

	v.centerText = ""
	assert.Equal(t, "", v.centerLabel(), "empty override shows nothing")
}

func TestRingArcGlyphs(t *testing.T) {
	v := &cellView{mode: viewRing, innerValue: 64, arc1: 127, arc2: 0}
	assert.Equal(t, "█      64    ▐▐ ", v.render(16))

	// Narrow cells drop the arc columns entirely.
	narrow := &cellView{mode: viewRing, arc1: 127}
	assert.NotContains(t, narrow.render(8), "█")
}

func TestStopRestoresTerminal(t *testing.T) {
	s, term := newTestSurface(t, 32)
	s.Stop()
	assert.True(t, term.stopped)
}
