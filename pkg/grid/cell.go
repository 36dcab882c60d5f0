package grid

import "github.com/patchgrid/patchgrid/pkg/wire"

// Cells start out white-on-black, matching the reference display.
const (
	defaultForeground = wire.Color("#ffffff")
	defaultBackground = wire.Color("#000000")
)

type mode int

const (
	modeEmpty mode = iota
	modeText
	modeBar
	modeRing
)

// cell is the per-slot state machine. A cell shows at most one widget; the
// last structurally-relevant command decides which. Desired state and the
// last-pushed surface state are tracked separately so redundant surface
// calls can be suppressed.
type cell struct {
	mode mode

	// Text attributes. Zero values mean "never set"; defaults apply at
	// emit time only.
	text  string
	fg    wire.Color
	bg    wire.Color
	align wire.Align

	barStyle BarStyle
	barValue int

	ringStyle RingStyle
	ringOuter int
	ringInner int
	arc1      int
	arc2      int
	center    string
	hasCenter bool

	applied appliedState
}

// appliedState snapshots what the surface was last told. A mode switch
// invalidates the whole snapshot: the new widget must be drawn from scratch.
type appliedState struct {
	textValid bool
	text      string
	fg        wire.Color
	align     wire.Align

	bgValid bool
	bg      wire.Color

	barStyleValid bool
	barStyle      BarStyle
	barValueValid bool
	barValue      int

	ringStyleValid bool
	ringStyle      RingStyle
	ringValsValid  bool
	ringOuter      int
	ringInner      int
	arcsValid      bool
	arc1, arc2     int
	centerValid    bool
	center         string
	hasCenter      bool
}

func newCell() *cell {
	return &cell{
		barStyle:  DefaultBarStyle(),
		ringStyle: DefaultRingStyle(),
	}
}

func (cl *cell) effectiveFG() wire.Color {
	if cl.fg == "" {
		return defaultForeground
	}
	return cl.fg
}

func (cl *cell) effectiveBG() wire.Color {
	if cl.bg == "" {
		return defaultBackground
	}
	return cl.bg
}

func (cl *cell) effectiveAlign() wire.Align {
	if cl.align == wire.AlignUnset {
		return wire.AlignLeft
	}
	return cl.align
}

// applyText handles a SET. Non-empty text forces Text mode, tearing down any
// gauge; empty text only restyles whatever is already there. Invalid colors
// retain the previous value per attribute.
func (cl *cell) applyText(em emitter, text string, fg, bg wire.Color, align wire.Align) {
	if fg.Valid() {
		cl.fg = fg
	}
	if bg.Valid() {
		cl.bg = bg
	}
	if align != wire.AlignUnset {
		cl.align = align
	}
	if text != "" {
		if cl.mode == modeBar || cl.mode == modeRing {
			em.teardown()
			cl.resetGaugeState()
			cl.applied = appliedState{}
		}
		cl.mode = modeText
		cl.text = text
	}
	cl.syncText(em)
	cl.syncBackdrop(em)
}

func (cl *cell) applyBackground(em emitter, color wire.Color) {
	if !color.Valid() {
		return
	}
	cl.bg = color
	cl.syncBackdrop(em)
}

func (cl *cell) applyAlignment(em emitter, align wire.Align) {
	if align == wire.AlignUnset {
		align = wire.AlignLeft
	}
	cl.align = align
	cl.syncText(em)
}

func (cl *cell) applyBarValue(em emitter, value int) {
	cl.enterBar(em)
	cl.barValue = wire.ClampValue(value)
	if !cl.applied.barValueValid || cl.applied.barValue != cl.barValue {
		em.setBarValue(cl.barValue)
		cl.applied.barValue = cl.barValue
		cl.applied.barValueValid = true
	}
}

func (cl *cell) applyBarStyle(em emitter, fill, background wire.Color) {
	if fill.Valid() {
		cl.barStyle.Fill = fill
	}
	if background.Valid() {
		cl.barStyle.Background = background
	}
	cl.enterBar(em)
}

func (cl *cell) applyRingStyle(em emitter, outer, inner, background wire.Color, sizePx, wOuter, wInner int) {
	if outer.Valid() {
		cl.ringStyle.Outer = outer
	}
	if inner.Valid() {
		cl.ringStyle.Inner = inner
	}
	if background.Valid() {
		cl.ringStyle.Background = background
	}
	cl.ringStyle.SizePx = sizePx
	cl.ringStyle.OuterWidth = wOuter
	cl.ringStyle.InnerWidth = wInner
	cl.enterRing(em)
}

func (cl *cell) applyRingValues(em emitter, outer, inner int) {
	cl.enterRing(em)
	cl.ringOuter = wire.ClampValue(outer)
	cl.ringInner = wire.ClampValue(inner)
	if !cl.applied.ringValsValid || cl.applied.ringOuter != cl.ringOuter || cl.applied.ringInner != cl.ringInner {
		em.setRingValues(cl.ringOuter, cl.ringInner)
		cl.applied.ringOuter = cl.ringOuter
		cl.applied.ringInner = cl.ringInner
		cl.applied.ringValsValid = true
	}
}

// applyRingCenter sets the center label override. Empty text clears the
// override, reverting the label to the inner value.
func (cl *cell) applyRingCenter(em emitter, text string) {
	cl.enterRing(em)
	cl.center = text
	cl.hasCenter = text != ""
	if !cl.applied.centerValid || cl.applied.center != cl.center || cl.applied.hasCenter != cl.hasCenter {
		em.setCenter(cl.center, cl.hasCenter)
		cl.applied.center = cl.center
		cl.applied.hasCenter = cl.hasCenter
		cl.applied.centerValid = true
	}
}

func (cl *cell) applyExtraArcs(em emitter, v1, v2 int) {
	cl.enterRing(em)
	cl.arc1 = wire.ClampValue(v1)
	cl.arc2 = wire.ClampValue(v2)
	if !cl.applied.arcsValid || cl.applied.arc1 != cl.arc1 || cl.applied.arc2 != cl.arc2 {
		em.setExtraArcs(cl.arc1, cl.arc2)
		cl.applied.arc1 = cl.arc1
		cl.applied.arc2 = cl.arc2
		cl.applied.arcsValid = true
	}
}

// enterBar moves the cell into Bar mode, tearing down any other widget, and
// keeps the surface's bar style current.
func (cl *cell) enterBar(em emitter) {
	if cl.mode != modeBar {
		if cl.mode != modeEmpty {
			em.teardown()
		}
		cl.resetRingState()
		cl.applied = appliedState{}
		cl.mode = modeBar
		cl.syncBackdrop(em)
	}
	if !cl.applied.barStyleValid || cl.applied.barStyle != cl.barStyle {
		em.ensureBar(cl.barStyle)
		cl.applied.barStyle = cl.barStyle
		cl.applied.barStyleValid = true
	}
}

// enterRing is enterBar's twin for the ring gauge.
func (cl *cell) enterRing(em emitter) {
	if cl.mode != modeRing {
		if cl.mode != modeEmpty {
			em.teardown()
		}
		cl.resetBarState()
		cl.applied = appliedState{}
		cl.mode = modeRing
		cl.syncBackdrop(em)
	}
	if !cl.applied.ringStyleValid || cl.applied.ringStyle != cl.ringStyle {
		em.ensureRing(cl.ringStyle)
		cl.applied.ringStyle = cl.ringStyle
		cl.applied.ringStyleValid = true
	}
}

// syncText pushes the text widget's state when it changed. Only meaningful
// in Text mode; in other modes attributes are staged for later.
func (cl *cell) syncText(em emitter) {
	if cl.mode != modeText {
		return
	}
	fg, align := cl.effectiveFG(), cl.effectiveAlign()
	if !cl.applied.textValid || cl.applied.text != cl.text || cl.applied.fg != fg || cl.applied.align != align {
		em.setText(cl.text, fg, cl.effectiveBG(), align)
		cl.applied.text = cl.text
		cl.applied.fg = fg
		cl.applied.align = align
		cl.applied.textValid = true
	}
}

// syncBackdrop pushes the cell background. Empty cells only stage it; the
// backdrop becomes visible once a widget exists.
func (cl *cell) syncBackdrop(em emitter) {
	if cl.mode == modeEmpty || cl.bg == "" {
		return
	}
	if !cl.applied.bgValid || cl.applied.bg != cl.bg {
		em.setBackground(cl.bg)
		cl.applied.bg = cl.bg
		cl.applied.bgValid = true
	}
}

// Mode switches destroy the outgoing widget's transient values; styling and
// text content survive for when the widget comes back.
func (cl *cell) resetGaugeState() {
	cl.resetBarState()
	cl.resetRingState()
}

func (cl *cell) resetBarState() {
	cl.barValue = 0
}

func (cl *cell) resetRingState() {
	cl.ringOuter = 0
	cl.ringInner = 0
	cl.arc1 = 0
	cl.arc2 = 0
	cl.center = ""
	cl.hasCenter = false
}
