// Package termgrid renders the display grid in a terminal. It implements the
// grid render surface with one line per grid row, diffing each frame against
// the previous one and repainting only the lines that changed. Synchronized
// output brackets every repaint to prevent flicker.
package termgrid

import (
	"fmt"
	"strings"
	"sync"

	"github.com/patchgrid/patchgrid/pkg/grid"
	"github.com/patchgrid/patchgrid/pkg/wire"
)

// TermSurface draws the grid on a Terminal. Draw calls only mutate cell
// state; Flush composes the frame and writes the difference to the terminal.
//
// The apply loop and the resize handler run on different goroutines, so all
// state is guarded by one mutex.
type TermSurface struct {
	term   Terminal
	layout grid.Layout

	mu            sync.Mutex
	cells         [][]cellView
	previousLines []string
	dirty         bool
	started       bool
	quit          chan struct{}
	quitOnce      sync.Once
}

// New builds a surface for the given layout. Start must be called before the
// first Flush reaches the terminal.
func New(term Terminal, layout grid.Layout) *TermSurface {
	cells := make([][]cellView, layout.Rows())
	for r := range cells {
		cells[r] = make([]cellView, layout.Columns[r])
	}
	return &TermSurface{
		term:   term,
		layout: layout,
		cells:  cells,
		quit:   make(chan struct{}),
	}
}

// Start switches the terminal to raw mode, clears the screen, and installs
// the quit-key handler. q, Escape, and Ctrl+C all request shutdown.
func (s *TermSurface) Start() error {
	err := s.term.Start(s.handleInput, s.handleResize)
	if err != nil {
		return err
	}
	s.term.HideCursor()
	s.term.WriteString("\x1b[2J\x1b[H")
	s.mu.Lock()
	s.started = true
	s.dirty = true
	s.mu.Unlock()
	return nil
}

// Stop restores the terminal.
func (s *TermSurface) Stop() {
	s.mu.Lock()
	s.started = false
	rows := len(s.previousLines)
	s.mu.Unlock()
	// Park the cursor below the grid so the shell prompt lands cleanly.
	s.term.WriteString(fmt.Sprintf("\x1b[%d;1H\r\n", rows+1))
	s.term.ShowCursor()
	s.term.Stop()
}

// Done is closed when the user presses a quit key.
func (s *TermSurface) Done() <-chan struct{} { return s.quit }

func (s *TermSurface) handleInput(data []byte) {
	for _, b := range data {
		switch b {
		case 'q', 'Q', 0x1b, 0x03:
			s.quitOnce.Do(func() { close(s.quit) })
			return
		}
	}
}

// handleResize discards the frame cache so the next Flush repaints fully at
// the new width.
func (s *TermSurface) handleResize() {
	s.mu.Lock()
	s.previousLines = nil
	s.dirty = true
	s.mu.Unlock()
	s.Flush()
}

func (s *TermSurface) cell(row, col int) *cellView {
	if row < 0 || row >= len(s.cells) || col < 0 || col >= len(s.cells[row]) {
		return nil
	}
	return &s.cells[row][col]
}

// mutate runs fn against a cell under the lock and marks the frame dirty.
// Out-of-range coordinates are ignored; the grid has already range-checked.
func (s *TermSurface) mutate(row, col int, fn func(*cellView)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.cell(row, col)
	if v == nil {
		return
	}
	fn(v)
	s.dirty = true
}

func (s *TermSurface) SetCellText(row, col int, text string, fg, bg wire.Color, align wire.Align) {
	s.mutate(row, col, func(v *cellView) {
		v.mode = viewText
		v.text = text
		v.fg = fg
		v.bg = bg
		v.align = align
	})
}

func (s *TermSurface) SetCellBackground(row, col int, bg wire.Color) {
	s.mutate(row, col, func(v *cellView) {
		v.bg = bg
		if v.mode == viewBar {
			v.barStyle.Background = bg
		}
		if v.mode == viewRing {
			v.ringStyle.Background = bg
		}
	})
}

func (s *TermSurface) EnsureBarWidget(row, col int, style grid.BarStyle) {
	s.mutate(row, col, func(v *cellView) {
		if v.mode != viewBar {
			v.mode = viewBar
			v.barValue = 0
		}
		v.barStyle = style
	})
}

func (s *TermSurface) SetBarValue(row, col, value int) {
	s.mutate(row, col, func(v *cellView) {
		if v.mode != viewBar {
			return
		}
		v.barValue = value
	})
}

func (s *TermSurface) EnsureRingWidget(row, col int, style grid.RingStyle) {
	s.mutate(row, col, func(v *cellView) {
		if v.mode != viewRing {
			v.mode = viewRing
			v.outerValue = 0
			v.innerValue = 0
			v.arc1 = 0
			v.arc2 = 0
			v.centerText = ""
			v.hasOverride = false
		}
		v.ringStyle = style
	})
}

func (s *TermSurface) SetRingValues(row, col, outer, inner int) {
	s.mutate(row, col, func(v *cellView) {
		if v.mode != viewRing {
			return
		}
		v.outerValue = outer
		v.innerValue = inner
	})
}

func (s *TermSurface) SetRingExtraArcs(row, col, v1, v2 int) {
	s.mutate(row, col, func(v *cellView) {
		if v.mode != viewRing {
			return
		}
		v.arc1 = v1
		v.arc2 = v2
	})
}

func (s *TermSurface) SetRingCenterOverride(row, col int, text string, present bool) {
	s.mutate(row, col, func(v *cellView) {
		if v.mode != viewRing {
			return
		}
		v.centerText = text
		v.hasOverride = present
	})
}

func (s *TermSurface) TeardownWidget(row, col int) {
	s.mutate(row, col, func(v *cellView) {
		bg := v.bg
		*v = cellView{bg: bg}
	})
}

// Flush composes the frame and repaints changed lines. No-op when nothing
// changed since the last flush.
func (s *TermSurface) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started || !s.dirty {
		return
	}
	s.dirty = false

	lines := s.frameLocked(s.term.Columns())

	var buf strings.Builder
	buf.WriteString("\x1b[?2026h")
	repainted := 0
	for i, line := range lines {
		if i < len(s.previousLines) && s.previousLines[i] == line {
			continue
		}
		fmt.Fprintf(&buf, "\x1b[%d;1H\x1b[2K", i+1)
		buf.WriteString(line)
		repainted++
	}
	buf.WriteString("\x1b[?2026l")

	if repainted > 0 {
		s.term.WriteString(buf.String())
	}
	s.previousLines = lines
}

// frameLocked renders every grid row into one terminal line. Each row splits
// the terminal width evenly across its own column count, so rows with more
// columns get narrower cells, like the reference layout.
func (s *TermSurface) frameLocked(termCols int) []string {
	lines := make([]string, len(s.cells))
	for r, row := range s.cells {
		if len(row) == 0 {
			continue
		}
		cellW := termCols / len(row)
		if cellW < 1 {
			cellW = 1
		}
		var b strings.Builder
		for c := range row {
			b.WriteString(row[c].render(cellW))
		}
		lines[r] = b.String()
	}
	return lines
}
