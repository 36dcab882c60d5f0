package engine

import "github.com/patchgrid/patchgrid/pkg/wire"

// updateKind categorizes pending updates for coalescing and phase ordering.
type updateKind int

const (
	kindBackground updateKind = iota
	kindAlignment
	kindBarSet
	kindBarStyle
	kindBarValue
	kindRingSet
	kindRingStyle
	kindRingValue
	kindExtraArcs
	kindSetText
	numKinds
)

// phaseOrder is the strict application order within a tick. Text comes last
// so a SET's embedded colors and alignment win over anything staged earlier
// in the same tick, and so SET stays the authoritative mode switch. The
// combined set forms run before their style/value counterparts, mirroring
// the reference.
var phaseOrder = [...]updateKind{
	kindBackground,
	kindAlignment,
	kindBarSet,
	kindBarStyle,
	kindBarValue,
	kindRingSet,
	kindRingStyle,
	kindRingValue,
	kindExtraArcs,
	kindSetText,
}

func kindOf(cmd wire.Command) updateKind {
	switch cmd.(type) {
	case wire.CellBackground:
		return kindBackground
	case wire.CellAlignment:
		return kindAlignment
	case wire.BarSet:
		return kindBarSet
	case wire.BarStyle:
		return kindBarStyle
	case wire.BarValue:
		return kindBarValue
	case wire.RingSet:
		return kindRingSet
	case wire.RingStyle:
		return kindRingStyle
	case wire.RingValue:
		return kindRingValue
	case wire.ExtraArcs:
		return kindExtraArcs
	case wire.SetText:
		return kindSetText
	}
	return kindSetText
}

type cellKey struct {
	row, col int
}

func keyOf(cmd wire.Command) cellKey {
	switch c := cmd.(type) {
	case wire.CellBackground:
		return cellKey{c.Row, c.Col}
	case wire.CellAlignment:
		return cellKey{c.Row, c.Col}
	case wire.BarSet:
		return cellKey{c.Row, c.Col}
	case wire.BarStyle:
		return cellKey{c.Row, c.Col}
	case wire.BarValue:
		return cellKey{c.Row, c.Col}
	case wire.RingSet:
		return cellKey{c.Row, c.Col}
	case wire.RingStyle:
		return cellKey{c.Row, c.Col}
	case wire.RingValue:
		return cellKey{c.Row, c.Col}
	case wire.ExtraArcs:
		return cellKey{c.Row, c.Col}
	case wire.SetText:
		return cellKey{c.Row, c.Col}
	}
	return cellKey{}
}

// coalescer holds the newest pending payload per (kind, cell). Only the tick
// loop touches it, so it needs no locking. Bursts of updates to the same key
// between ticks collapse to the last one; updates of different kinds for the
// same cell coexist until applied. Size is naturally bounded by
// kinds × rows × columns.
type coalescer struct {
	pending [numKinds]map[cellKey]wire.Command
}

func newCoalescer() *coalescer {
	co := &coalescer{}
	for k := range co.pending {
		co.pending[k] = make(map[cellKey]wire.Command)
	}
	return co
}

// add stages a command, overwriting any older pending payload for the same
// (kind, cell).
func (co *coalescer) add(cmd wire.Command) {
	co.pending[kindOf(cmd)][keyOf(cmd)] = cmd
}

// size returns the number of distinct pending keys.
func (co *coalescer) size() int {
	n := 0
	for _, m := range co.pending {
		n += len(m)
	}
	return n
}

// take applies pending updates in phase order through fn, consuming each key
// as it goes, until the budget runs out. Unconsumed entries stay pending for
// the next tick: delayed, never lost.
func (co *coalescer) take(budget int, fn func(wire.Command)) int {
	taken := 0
	for _, kind := range phaseOrder {
		m := co.pending[kind]
		for key, cmd := range m {
			if taken >= budget {
				return taken
			}
			delete(m, key)
			fn(cmd)
			taken++
		}
	}
	return taken
}
