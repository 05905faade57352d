package driver

import (
	"time"

	"tower/internal/observ"
)

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a phase of one world file has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a timing phase boundary.
type PhaseEvent struct {
	Path    string
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
}

// PhaseObserver receives phase events emitted while a world file is
// processed. It may be called from several goroutines.
type PhaseObserver func(PhaseEvent)

// phaseTimer wraps observ.Timer and mirrors its boundaries to an observer.
type phaseTimer struct {
	path     string
	timer    *observ.Timer
	observer PhaseObserver
	started  map[int]time.Time
}

func newPhaseTimer(path string, t *observ.Timer, observer PhaseObserver) *phaseTimer {
	return &phaseTimer{path: path, timer: t, observer: observer, started: make(map[int]time.Time, 4)}
}

func (p *phaseTimer) begin(name string) (int, string) {
	idx := p.timer.Begin(name)
	if p.observer != nil {
		p.started[idx] = time.Now()
		p.observer(PhaseEvent{Path: p.path, Name: name, Status: PhaseStart})
	}
	return idx, name
}

func (p *phaseTimer) end(idx int, name, note string) {
	p.timer.End(idx, note)
	if p.observer != nil {
		p.observer(PhaseEvent{Path: p.path, Name: name, Status: PhaseEnd, Elapsed: time.Since(p.started[idx])})
		delete(p.started, idx)
	}
}
