package trace

import (
	"io"
	"sync"
)

// RingTracer keeps the most recent events of a run in memory. explain uses
// it to replay the probed levels of a single call after resolution.
type RingTracer struct {
	mu      sync.RWMutex
	buf     []Event
	next    int
	wrapped bool
	dropped uint64
	level   Level
}

// NewRingTracer returns a ring holding up to capacity events (4096 when
// capacity is not positive).
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = 4096
	}
	return &RingTracer{buf: make([]Event, capacity), level: level}
}

// Emit stores ev, overwriting the oldest event once the ring is full.
// Heartbeats are kept regardless of the level.
func (t *RingTracer) Emit(ev *Event) {
	if ev.Kind != KindHeartbeat && !t.level.ShouldEmit(ev.Scope) {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.wrapped {
		t.dropped++
	}
	stored := *ev
	stored.Seq = NextSeq()
	t.buf[t.next] = stored
	t.next++
	if t.next == len(t.buf) {
		t.next = 0
		t.wrapped = true
	}
}

// Dropped is the number of events overwritten so far.
func (t *RingTracer) Dropped() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.dropped
}

// Snapshot returns the stored events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.wrapped {
		return append([]Event(nil), t.buf[:t.next]...)
	}
	out := make([]Event, 0, len(t.buf))
	out = append(out, t.buf[t.next:]...)
	return append(out, t.buf[:t.next]...)
}

// Dump writes the stored events whose scope is at most upTo, oldest first,
// and returns how many were written. A zero upTo writes everything.
func (t *RingTracer) Dump(w io.Writer, format Format, upTo Scope) (int, error) {
	n := 0
	for _, ev := range t.Snapshot() {
		if upTo != 0 && ev.Scope > upTo {
			continue
		}
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Flush does nothing; the ring lives in memory.
func (t *RingTracer) Flush() error { return nil }

// Close does nothing.
func (t *RingTracer) Close() error { return nil }

func (t *RingTracer) Level() Level { return t.level }

func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
