package engine

import "github.com/patchgrid/patchgrid/pkg/wire"

// inbox is the bounded hand-off between the listener goroutine and the tick
// loop. The listener never blocks on it: when the consumer falls behind, new
// commands are discarded and counted. The stream is latest-value-wins, so a
// drop costs staleness for at most one cell, never correctness.
type inbox struct {
	ch chan wire.Command
}

func newInbox(size int) *inbox {
	return &inbox{ch: make(chan wire.Command, size)}
}

// put enqueues without blocking. Returns false when the inbox is full.
func (in *inbox) put(cmd wire.Command) bool {
	select {
	case in.ch <- cmd:
		return true
	default:
		return false
	}
}

// drain delivers everything currently queued to fn and returns the count.
// Commands arriving after drain starts are picked up next tick.
func (in *inbox) drain(fn func(wire.Command)) int {
	n := 0
	for {
		select {
		case cmd := <-in.ch:
			fn(cmd)
			n++
		default:
			return n
		}
	}
}
