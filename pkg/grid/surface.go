// Package grid models the fixed display grid: a table of cells, each holding
// exactly one widget at a time (text, bar gauge, or ring gauge). The grid
// tracks the last values it pushed to the render surface and suppresses
// calls that would not change anything on screen.
package grid

import "github.com/patchgrid/patchgrid/pkg/wire"

// Surface consumes per-cell draw instructions. Implementations must be cheap
// and idempotent when called repeatedly with the same arguments: the grid
// already suppresses unchanged calls, but the surface should not depend on
// perfect suppression. Calls are best-effort; a surface failure must not
// take the caller down.
type Surface interface {
	// SetCellText shows text in the cell with the given styling. The cell's
	// previous gauge widget, if any, has already been torn down.
	SetCellText(row, col int, text string, fg, bg wire.Color, align wire.Align)

	// SetCellBackground recolors the cell's backdrop.
	SetCellBackground(row, col int, bg wire.Color)

	// EnsureBarWidget creates or restyles the cell's horizontal bar.
	EnsureBarWidget(row, col int, style BarStyle)

	// SetBarValue moves the bar fill. Value is in [0, 127].
	SetBarValue(row, col, value int)

	// EnsureRingWidget creates or restyles the cell's ring gauge.
	EnsureRingWidget(row, col int, style RingStyle)

	// SetRingValues moves the outer and inner arcs. Values are in [0, 127].
	SetRingValues(row, col, outer, inner int)

	// SetRingExtraArcs moves the two thin auxiliary arcs.
	SetRingExtraArcs(row, col, v1, v2 int)

	// SetRingCenterOverride replaces the ring's center label. When present
	// is false the label reverts to showing the inner value.
	SetRingCenterOverride(row, col int, text string, present bool)

	// TeardownWidget removes whatever widget the cell currently shows,
	// leaving it empty.
	TeardownWidget(row, col int)
}

// Flusher is optionally implemented by surfaces that batch draw calls into
// frames. The apply scheduler calls Flush once at the end of every tick.
type Flusher interface {
	Flush()
}

// Discard is a Surface that ignores everything. Useful for headless soak
// runs and as a test default.
var Discard Surface = discard{}

type discard struct{}

func (discard) SetCellText(int, int, string, wire.Color, wire.Color, wire.Align) {}
func (discard) SetCellBackground(int, int, wire.Color)                          {}
func (discard) EnsureBarWidget(int, int, BarStyle)                              {}
func (discard) SetBarValue(int, int, int)                                       {}
func (discard) EnsureRingWidget(int, int, RingStyle)                            {}
func (discard) SetRingValues(int, int, int, int)                                {}
func (discard) SetRingExtraArcs(int, int, int, int)                             {}
func (discard) SetRingCenterOverride(int, int, string, bool)                    {}
func (discard) TeardownWidget(int, int)                                         {}

// BarStyle is the visual styling of a bar gauge.
type BarStyle struct {
	Border     wire.Color
	Fill       wire.Color
	Background wire.Color
}

// DefaultBarStyle matches the reference deployment's bar colors.
func DefaultBarStyle() BarStyle {
	return BarStyle{
		Border:     "#303030",
		Fill:       "#606060",
		Background: "#000000",
	}
}

// RingStyle is the visual styling of a ring gauge. SizePx is the requested
// display size; surfaces are free to pin their own geometry.
type RingStyle struct {
	Outer      wire.Color
	Inner      wire.Color
	Background wire.Color
	SizePx     int
	OuterWidth int
	InnerWidth int
}

// DefaultRingStyle matches the reference deployment's ring appearance.
func DefaultRingStyle() RingStyle {
	return RingStyle{
		Outer:      "#606060",
		Inner:      "#ffffff",
		Background: "#000000",
		SizePx:     260,
		OuterWidth: 10,
		InnerWidth: 30,
	}
}
