// Package wire implements the text protocol spoken by the display over UDP.
// Each datagram carries one whitespace-tokenized line; the first token
// selects the command, case-insensitively. A trailing ";" and a leading
// "send" token (Pd netsend flavor) are stripped before dispatch.
//
// Coordinate conventions are uneven on purpose: BG, ALIGN and the modern
// short BAR form address cells as (row, col), while the implicit SET form,
// RING, RINGVAL, RINGSET, ARC and the legacy bar forms address them as
// (col, row). Senders in the field rely on this, so ParseLine normalizes
// both orders to (Row, Col) rather than unifying the grammar.
package wire

import "strings"

// Command is one decoded protocol line. The concrete types below form a
// closed set; consumers switch exhaustively over them.
type Command interface {
	isCommand()
}

// Align is a horizontal text alignment. The zero value means "not specified";
// cells fall back to left alignment until an explicit one arrives.
type Align int

const (
	AlignUnset Align = iota
	AlignLeft
	AlignCenter
	AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "unset"
	}
}

// ParseAlign maps an alignment token to an Align. Accepted spellings:
// l/left, c/center/centre/mid/middle, r/right (case-insensitive).
func ParseAlign(s string) (Align, bool) {
	switch strings.ToLower(s) {
	case "l", "left":
		return AlignLeft, true
	case "c", "center", "centre", "mid", "middle":
		return AlignCenter, true
	case "r", "right":
		return AlignRight, true
	}
	return AlignUnset, false
}

// SetText is the implicit keyword-less form: "col row fg bg [align] text...".
// The fifth token is treated as an alignment only when it parses as one;
// otherwise it belongs to the text and Align stays AlignUnset.
type SetText struct {
	Row, Col   int
	Text       string
	Foreground Color
	Background Color
	Align      Align
}

// CellBackground is "BG row col color".
type CellBackground struct {
	Row, Col int
	Color    Color
}

// CellAlignment is "ALIGN row col align". Unknown alignment tokens default
// to left.
type CellAlignment struct {
	Row, Col int
	Align    Align
}

// BarValue is the modern "BAR row col value" form (under seven tokens) or
// the legacy "BARVAL col row value" form. Value is clamped to [0, 127].
type BarValue struct {
	Row, Col int
	Value    int
}

// BarStyle is the legacy "BAR col row fg bg w h [frame]" form (seven or more
// tokens). Pixel geometry is validated on the wire but discarded; the grid's
// bar geometry is fixed.
type BarStyle struct {
	Row, Col   int
	Fill       Color
	Background Color
}

// BarSet is the legacy "BARSET col row value fg bg w h [frame]" form:
// bar style and value in one shot.
type BarSet struct {
	Row, Col   int
	Value      int
	Fill       Color
	Background Color
}

// RingStyle is "RING col row fgOuter fgInner bg size wOuter wInner".
type RingStyle struct {
	Row, Col   int
	Outer      Color
	Inner      Color
	Background Color
	SizePx     int
	OuterWidth int
	InnerWidth int
}

// RingValue is "RINGVAL col row outer inner [text...]". When trailing text
// is present it overrides the ring's center label; an empty override clears
// it. Absent text leaves the current override untouched.
type RingValue struct {
	Row, Col   int
	OuterValue int
	InnerValue int
	CenterText string
	HasText    bool
}

// RingSet is "RINGSET col row outer inner fgOuter fgInner bg size wOuter
// wInner": ring style and values combined.
type RingSet struct {
	Row, Col   int
	OuterValue int
	InnerValue int
	Outer      Color
	Inner      Color
	Background Color
	SizePx     int
	OuterWidth int
	InnerWidth int
}

// ExtraArcs is "ARC col row val1 val2": the two thin auxiliary arcs drawn
// outside the ring.
type ExtraArcs struct {
	Row, Col   int
	Arc1, Arc2 int
}

func (SetText) isCommand()        {}
func (CellBackground) isCommand() {}
func (CellAlignment) isCommand()  {}
func (BarValue) isCommand()       {}
func (BarStyle) isCommand()       {}
func (BarSet) isCommand()         {}
func (RingStyle) isCommand()      {}
func (RingValue) isCommand()      {}
func (RingSet) isCommand()        {}
func (ExtraArcs) isCommand()      {}

// ClampValue clips a gauge value to the MIDI-style [0, 127] range.
func ClampValue(v int) int {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return v
}
