package driver

// Status is the progress state of one world file.
type Status uint8

const (
	StatusQueued Status = iota
	StatusLoading
	StatusResolving
	StatusDone
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusLoading:
		return "loading"
	case StatusResolving:
		return "resolving"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further events follow for the file.
func (s Status) Terminal() bool { return s == StatusDone || s == StatusFailed }

// Event reports progress of one world file in a batch.
type Event struct {
	Path       string
	Status     Status
	Calls      int
	Mismatches int
	Cached     bool
}

// ProgressSink receives batch progress. It may be called from several
// goroutines.
type ProgressSink func(Event)

func (s ProgressSink) emit(ev Event) {
	if s != nil {
		s(ev)
	}
}
