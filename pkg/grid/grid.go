package grid

import (
	"fmt"
	"log/slog"

	"github.com/patchgrid/patchgrid/pkg/wire"
)

// Layout is the immutable grid geometry: one entry per row giving that
// row's column count.
type Layout struct {
	Columns []int
}

// ReferenceLayout is the geometry of the reference instrument display.
func ReferenceLayout() Layout {
	return Layout{Columns: []int{4, 4, 4, 8, 4, 4, 4, 8, 4, 8, 8}}
}

// Rows returns the number of rows.
func (l Layout) Rows() int { return len(l.Columns) }

// Cols returns the column count of the given row, or 0 when out of range.
func (l Layout) Cols(row int) int {
	if row < 0 || row >= len(l.Columns) {
		return 0
	}
	return l.Columns[row]
}

// Contains reports whether (row, col) addresses a cell.
func (l Layout) Contains(row, col int) bool {
	return row >= 0 && row < len(l.Columns) && col >= 0 && col < l.Columns[row]
}

// MaxCols returns the widest row's column count.
func (l Layout) MaxCols() int {
	m := 0
	for _, c := range l.Columns {
		if c > m {
			m = c
		}
	}
	return m
}

// Validate rejects degenerate geometry.
func (l Layout) Validate() error {
	if len(l.Columns) == 0 {
		return fmt.Errorf("layout has no rows")
	}
	for r, c := range l.Columns {
		if c <= 0 {
			return fmt.Errorf("row %d has %d columns", r, c)
		}
	}
	return nil
}

// Grid owns the cell table and pushes minimal diffs to a Surface. It is not
// safe for concurrent use: the apply scheduler is its only caller.
type Grid struct {
	layout  Layout
	cells   [][]*cell
	surface Surface
	log     *slog.Logger
}

// New builds a grid with every cell empty.
func New(layout Layout, surface Surface, log *slog.Logger) *Grid {
	if log == nil {
		log = slog.Default()
	}
	cells := make([][]*cell, layout.Rows())
	for r := range cells {
		cells[r] = make([]*cell, layout.Cols(r))
		for c := range cells[r] {
			cells[r][c] = newCell()
		}
	}
	return &Grid{layout: layout, cells: cells, surface: surface, log: log}
}

// Layout returns the grid geometry.
func (g *Grid) Layout() Layout { return g.layout }

// Apply routes one decoded command to its cell. Out-of-range coordinates are
// logged and dropped; nothing here returns an error because no command may
// halt the apply loop.
func (g *Grid) Apply(cmd wire.Command) {
	switch c := cmd.(type) {
	case wire.SetText:
		g.withCell(c.Row, c.Col, func(cl *cell) {
			cl.applyText(g.emitter(c.Row, c.Col), c.Text, c.Foreground, c.Background, c.Align)
		})
	case wire.CellBackground:
		g.withCell(c.Row, c.Col, func(cl *cell) {
			cl.applyBackground(g.emitter(c.Row, c.Col), c.Color)
		})
	case wire.CellAlignment:
		g.withCell(c.Row, c.Col, func(cl *cell) {
			cl.applyAlignment(g.emitter(c.Row, c.Col), c.Align)
		})
	case wire.BarValue:
		g.withCell(c.Row, c.Col, func(cl *cell) {
			cl.applyBarValue(g.emitter(c.Row, c.Col), c.Value)
		})
	case wire.BarStyle:
		g.withCell(c.Row, c.Col, func(cl *cell) {
			cl.applyBarStyle(g.emitter(c.Row, c.Col), c.Fill, c.Background)
		})
	case wire.BarSet:
		g.withCell(c.Row, c.Col, func(cl *cell) {
			cl.applyBarStyle(g.emitter(c.Row, c.Col), c.Fill, c.Background)
			cl.applyBarValue(g.emitter(c.Row, c.Col), c.Value)
		})
	case wire.RingStyle:
		g.withCell(c.Row, c.Col, func(cl *cell) {
			cl.applyRingStyle(g.emitter(c.Row, c.Col), c.Outer, c.Inner, c.Background, c.SizePx, c.OuterWidth, c.InnerWidth)
		})
	case wire.RingValue:
		g.withCell(c.Row, c.Col, func(cl *cell) {
			cl.applyRingValues(g.emitter(c.Row, c.Col), c.OuterValue, c.InnerValue)
			if c.HasText {
				cl.applyRingCenter(g.emitter(c.Row, c.Col), c.CenterText)
			}
		})
	case wire.RingSet:
		g.withCell(c.Row, c.Col, func(cl *cell) {
			cl.applyRingStyle(g.emitter(c.Row, c.Col), c.Outer, c.Inner, c.Background, c.SizePx, c.OuterWidth, c.InnerWidth)
			cl.applyRingValues(g.emitter(c.Row, c.Col), c.OuterValue, c.InnerValue)
		})
	case wire.ExtraArcs:
		g.withCell(c.Row, c.Col, func(cl *cell) {
			cl.applyExtraArcs(g.emitter(c.Row, c.Col), c.Arc1, c.Arc2)
		})
	default:
		g.log.Warn("unknown command type", "command", fmt.Sprintf("%T", cmd))
	}
}

func (g *Grid) withCell(row, col int, fn func(*cell)) {
	if !g.layout.Contains(row, col) {
		g.log.Warn("cell out of range", "row", row, "col", col)
		return
	}
	fn(g.cells[row][col])
}

// emitter binds a cell's coordinates to the surface so cell methods don't
// carry them around.
func (g *Grid) emitter(row, col int) emitter {
	return emitter{surface: g.surface, row: row, col: col}
}

type emitter struct {
	surface  Surface
	row, col int
}

func (e emitter) setText(text string, fg, bg wire.Color, align wire.Align) {
	e.surface.SetCellText(e.row, e.col, text, fg, bg, align)
}
func (e emitter) setBackground(bg wire.Color) { e.surface.SetCellBackground(e.row, e.col, bg) }

func (e emitter) ensureBar(style BarStyle) { e.surface.EnsureBarWidget(e.row, e.col, style) }

func (e emitter) setBarValue(v int) { e.surface.SetBarValue(e.row, e.col, v) }

func (e emitter) ensureRing(style RingStyle) { e.surface.EnsureRingWidget(e.row, e.col, style) }

func (e emitter) setRingValues(outer, inner int) { e.surface.SetRingValues(e.row, e.col, outer, inner) }

func (e emitter) setExtraArcs(v1, v2 int) { e.surface.SetRingExtraArcs(e.row, e.col, v1, v2) }

func (e emitter) setCenter(text string, ok bool) {
	e.surface.SetRingCenterOverride(e.row, e.col, text, ok)
}

func (e emitter) teardown() { e.surface.TeardownWidget(e.row, e.col) }
