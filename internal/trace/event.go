package trace

import (
	"fmt"
	"strings"
	"time"
)

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1 // span start
	KindSpanEnd                   // span end
	KindPoint                     // instant event
	KindHeartbeat                 // periodic liveness signal
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	case KindHeartbeat:
		return "heartbeat"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity of the event.
// Lower numeric values represent coarser events.
type Scope uint8

const (
	ScopeDriver    Scope = iota + 1 // CLI and driver phases
	ScopeCall                       // one resolution run
	ScopeLevel                      // one probed tower level
	ScopeCandidate                  // one consumed candidate
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopeCall:
		return "call"
	case ScopeLevel:
		return "level"
	case ScopeCandidate:
		return "candidate"
	default:
		return "unknown"
	}
}

// ParseScope converts a scope name to a Scope.
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(s) {
	case "driver":
		return ScopeDriver, nil
	case "call":
		return ScopeCall, nil
	case "level":
		return ScopeLevel, nil
	case "candidate":
		return ScopeCandidate, nil
	default:
		return 0, fmt.Errorf("invalid trace scope: %q (expected: driver|call|level|candidate)", s)
	}
}

// Event represents a single trace event.
type Event struct {
	Time     time.Time         // wall-clock timestamp
	Seq      uint64            // global sequence number (monotonic)
	Kind     Kind              // event kind
	Scope    Scope             // granularity level
	SpanID   uint64            // unique span identifier
	ParentID uint64            // parent span (0 if root)
	GID      uint64            // goroutine ID (for concurrent workers)
	Name     string            // e.g. "resolve:foo", "level", "candidate"
	Detail   string            // optional detail message
	Extra    map[string]string // extensible key-value pairs
}
