package engine

import (
	"sync/atomic"
	"time"
)

// Metrics counts the message flow. All methods are safe for concurrent use;
// the listener and the tick loop both touch these.
type Metrics struct {
	received      atomic.Uint64
	parsed        atomic.Uint64
	droppedDecode atomic.Uint64
	droppedQueue  atomic.Uint64
	applied       atomic.Uint64
	lastArrival   atomic.Int64 // unix nanos, 0 = nothing yet
}

func (m *Metrics) markReceived(now time.Time) {
	m.received.Add(1)
	m.lastArrival.Store(now.UnixNano())
}

func (m *Metrics) markParsed() { m.parsed.Add(1) }

func (m *Metrics) markDecodeDrop() { m.droppedDecode.Add(1) }

func (m *Metrics) markQueueDrop() { m.droppedQueue.Add(1) }

func (m *Metrics) addApplied(n int) { m.applied.Add(uint64(n)) }

// Alive reports whether a datagram arrived within the timeout. Before the
// first datagram it always reports true: a freshly started display is not
// yet silent, just unused.
func (m *Metrics) Alive(now time.Time, timeout time.Duration) bool {
	last := m.lastArrival.Load()
	if last == 0 {
		return true
	}
	return now.Sub(time.Unix(0, last)) < timeout
}

// Snapshot is a point-in-time copy of the counters, for logging.
type Snapshot struct {
	Received      uint64
	Parsed        uint64
	DroppedDecode uint64
	DroppedQueue  uint64
	Applied       uint64
}

// Snapshot copies the current counter values.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		Received:      m.received.Load(),
		Parsed:        m.parsed.Load(),
		DroppedDecode: m.droppedDecode.Load(),
		DroppedQueue:  m.droppedQueue.Load(),
		Applied:       m.applied.Load(),
	}
}
