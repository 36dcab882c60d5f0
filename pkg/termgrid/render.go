package termgrid

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/patchgrid/patchgrid/pkg/grid"
	"github.com/patchgrid/patchgrid/pkg/wire"
)

// maxGaugeValue is the top of the MIDI-style value range.
const maxGaugeValue = 127

// cellView is the drawable state of one cell, as last instructed through the
// Surface interface.
type cellView struct {
	mode cellMode

	// text widget
	text  string
	fg    wire.Color
	align wire.Align

	// backdrop, shared by every mode
	bg wire.Color

	// bar widget
	barStyle grid.BarStyle
	barValue int

	// ring widget
	ringStyle   grid.RingStyle
	outerValue  int
	innerValue  int
	arc1        int
	arc2        int
	centerText  string
	hasOverride bool
}

type cellMode int

const (
	viewEmpty cellMode = iota
	viewText
	viewBar
	viewRing
)

// render draws the cell into exactly width columns.
func (v *cellView) render(width int) string {
	if width <= 0 {
		return ""
	}
	switch v.mode {
	case viewText:
		return v.renderText(width)
	case viewBar:
		return v.renderBar(width)
	case viewRing:
		return v.renderRing(width)
	}
	return v.renderBlank(width)
}

func (v *cellView) renderBlank(width int) string {
	return styled(strings.Repeat(" ", width), "", v.bg)
}

func (v *cellView) renderText(width int) string {
	text := ansi.Truncate(v.text, width, "")
	pad := width - ansi.StringWidth(text)
	switch v.align {
	case wire.AlignRight:
		text = strings.Repeat(" ", pad) + text
	case wire.AlignCenter:
		left := pad / 2
		text = strings.Repeat(" ", left) + text + strings.Repeat(" ", pad-left)
	default:
		text += strings.Repeat(" ", pad)
	}
	return styled(text, v.fg, v.bg)
}

// renderBar draws a horizontal gauge: border glyphs at both edges, a block
// fill proportional to the value between them.
func (v *cellView) renderBar(width int) string {
	if width < 3 {
		return v.renderBlank(width)
	}
	inner := width - 2
	filled := v.barValue * inner / maxGaugeValue
	bar := styled(strings.Repeat("█", filled), v.barStyle.Fill, v.barStyle.Background) +
		styled(strings.Repeat(" ", inner-filled), "", v.barStyle.Background)
	edge := v.barStyle.Border
	return styled("▏", edge, v.barStyle.Background) + bar + styled("▕", edge, v.barStyle.Background)
}

// renderRing draws the dual ring as two value meters flanking the center
// label. The outer arc fills from the left, the inner arc from the right, so
// the cell reads like a flattened ring around its label.
func (v *cellView) renderRing(width int) string {
	label := v.centerLabel()
	labelW := ansi.StringWidth(label)
	if width < labelW+4 {
		return styled(ansi.Truncate(label, width, ""), v.ringStyle.Inner, v.ringStyle.Background) +
			styled(strings.Repeat(" ", max(0, width-labelW)), "", v.ringStyle.Background)
	}

	// Wide cells get one column per extra arc at the outermost edges,
	// shaded from the inner arc color like the reference rings.
	showArcs := width >= labelW+8
	w := width
	if showArcs {
		w = width - 2
	}

	meterW := (w - labelW) / 2
	rightW := w - labelW - meterW

	left := meter(v.outerValue, meterW, false)
	right := meter(v.innerValue, rightW, true)

	core := styled(left, v.ringStyle.Outer, v.ringStyle.Background) +
		styled(label, v.ringStyle.Inner, v.ringStyle.Background) +
		styled(right, v.ringStyle.Inner, v.ringStyle.Background)
	if !showArcs {
		return core
	}
	return styled(arcGlyph(v.arc1), v.ringStyle.Inner.Lighten(0.3), v.ringStyle.Background) +
		core +
		styled(arcGlyph(v.arc2), v.ringStyle.Inner.Lighten(0.5), v.ringStyle.Background)
}

var arcBlocks = []string{" ", "▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

// arcGlyph maps a value to a vertical eighth-block.
func arcGlyph(value int) string {
	return arcBlocks[value*(len(arcBlocks)-1)/maxGaugeValue]
}

// centerLabel is the ring's middle text: the override when one is set,
// otherwise the inner value with a floor of 1.
func (v *cellView) centerLabel() string {
	if v.hasOverride {
		return v.centerText
	}
	return fmt.Sprintf(" %d ", max(1, v.innerValue))
}

// meter renders a value as partial block characters across w columns.
// Mirrored meters fill from the right edge toward the center.
func meter(value, w int, mirrored bool) string {
	if w <= 0 {
		return ""
	}
	filled := value * w / maxGaugeValue
	var b strings.Builder
	if mirrored {
		b.WriteString(strings.Repeat(" ", w-filled))
		b.WriteString(strings.Repeat("▐", filled))
	} else {
		b.WriteString(strings.Repeat("▌", filled))
		b.WriteString(strings.Repeat(" ", w-filled))
	}
	return b.String()
}

// styled wraps text in lipgloss styling. Empty colors are skipped entirely,
// which keeps output plain in tests and lets the terminal default show
// through.
func styled(text string, fg, bg wire.Color) string {
	if fg == "" && bg == "" {
		return text
	}
	style := lipgloss.NewStyle()
	if fg != "" {
		style = style.Foreground(lipgloss.Color(string(fg)))
	}
	if bg != "" {
		style = style.Background(lipgloss.Color(string(bg)))
	}
	return style.Render(text)
}
