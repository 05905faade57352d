package tower

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
)

type stepKind uint8

// Step weights, lowest first.
const (
	stepStart stepKind = iota + 1
	stepQualifier
	stepTopPrioritized
	stepMember
	stepInvokeExtension
	stepLocal
	stepImplicit
	stepTop
	stepStatic
	stepWeakened
	stepLast
)

var stepNames = [...]string{
	stepStart:           "Start",
	stepQualifier:       "Qualifier",
	stepTopPrioritized:  "TopPrioritized",
	stepMember:          "Member",
	stepInvokeExtension: "InvokeExtension",
	stepLocal:           "Local",
	stepImplicit:        "Implicit",
	stepTop:             "Top",
	stepStatic:          "Static",
	stepWeakened:        "Weakened",
	stepLast:            "Last",
}

type step struct {
	kind  stepKind
	depth uint16
}

func (s step) hasDepth() bool {
	switch s.kind {
	case stepTopPrioritized, stepLocal, stepImplicit, stepTop, stepStatic:
		return true
	}
	return false
}

// MaxGroupDepth bounds the number of steps in a Group.
const MaxGroupDepth = 4

// Group is a priority path: a short sequence of (kind, depth) steps.
// Groups compare lexicographically and a strict prefix sorts before its
// extensions. Group is a comparable value.
type Group struct {
	steps [MaxGroupDepth]step
	n     uint8
}

// Fixed groups.
var (
	Start           = root(stepStart, 0)
	Qualifier       = root(stepQualifier, 0)
	Member          = root(stepMember, 0)
	InvokeExtension = root(stepInvokeExtension, 0)
	Last            = root(stepLast, 0)
)

// Local is the group of the local scope at depth d (0 innermost).
func Local(d int) Group { return root(stepLocal, d) }

// Implicit is the group of the implicit receiver at depth d.
func Implicit(d int) Group { return root(stepImplicit, d) }

// Top is the group of the top-level scope at index d.
func Top(d int) Group { return root(stepTop, d) }

// Static is the group of a static scope at depth d.
func Static(d int) Group { return root(stepStatic, d) }

// TopPrioritized is the group of extensions that hide members.
func TopPrioritized(d int) Group { return root(stepTopPrioritized, d) }

func root(kind stepKind, depth int) Group {
	return Group{}.append(kind, depth)
}

func (g Group) append(kind stepKind, depth int) Group {
	if int(g.n) >= MaxGroupDepth {
		panic(fmt.Errorf("tower group %s: depth overflow", g))
	}
	d, err := safecast.Conv[uint16](depth)
	if err != nil {
		panic(fmt.Errorf("tower group depth overflow: %w", err))
	}
	g.steps[g.n] = step{kind: kind, depth: d}
	g.n++
	return g
}

// Child appenders.

func (g Group) Member() Group          { return g.append(stepMember, 0) }
func (g Group) InvokeExtension() Group { return g.append(stepInvokeExtension, 0) }
func (g Group) Local(d int) Group      { return g.append(stepLocal, d) }
func (g Group) Implicit(d int) Group   { return g.append(stepImplicit, d) }
func (g Group) Top(d int) Group        { return g.append(stepTop, d) }
func (g Group) Static(d int) Group     { return g.append(stepStatic, d) }

// Weakened returns a group directly after g and before any sibling of g.
func (g Group) Weakened() Group { return g.append(stepWeakened, 0) }

// Compare returns -1, 0 or +1.
func (g Group) Compare(o Group) int {
	n := min(g.n, o.n)
	for i := range n {
		a, b := g.steps[i], o.steps[i]
		if a.kind != b.kind {
			if a.kind < b.kind {
				return -1
			}
			return 1
		}
		if a.depth != b.depth {
			if a.depth < b.depth {
				return -1
			}
			return 1
		}
	}
	switch {
	case g.n < o.n:
		return -1
	case g.n > o.n:
		return 1
	default:
		return 0
	}
}

// Less reports g < o.
func (g Group) Less(o Group) bool { return g.Compare(o) < 0 }

// Depth returns the number of steps.
func (g Group) Depth() int { return int(g.n) }

func (g Group) String() string {
	if g.n == 0 {
		return "<empty>"
	}
	var sb strings.Builder
	for i := range g.n {
		if i > 0 {
			sb.WriteByte('.')
		}
		s := g.steps[i]
		sb.WriteString(stepNames[s.kind])
		if s.hasDepth() {
			fmt.Fprintf(&sb, "(%d)", s.depth)
		}
	}
	return sb.String()
}
