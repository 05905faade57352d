package tower

import (
	"container/heap"
	"errors"
	"testing"

	"tower/internal/symbols"
)

// fixedStages returns a preset applicability per symbol.
type fixedStages map[symbols.SymbolID]Applicability

func (f fixedStages) Run(c *Candidate) Verdict {
	return Verdict{Applicability: f[c.Symbol]}
}

func cand(id symbols.SymbolID) *Candidate {
	return NewCandidateFactory(&CallInfo{Kind: CallFunction}).Create(id, NoExplicitReceiver, nil, nil, nil, Start)
}

func ids(cs []*Candidate) []symbols.SymbolID {
	out := make([]symbols.SymbolID, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Symbol)
	}
	return out
}

func TestCollectorKeepsBestApplicabilityThenLowestGroup(t *testing.T) {
	stages := fixedStages{1: Inapplicable, 2: Resolved, 3: Resolved, 4: ResolvedLowPriority, 5: Resolved}
	c := NewCollector(stages)

	if c.IsSuccess() || c.BestGroup() != Last || c.Outcome() != OutcomeUnresolved {
		t.Fatalf("fresh collector must be empty")
	}

	c.ConsumeCandidate(Local(0), cand(1))
	if c.IsSuccess() || c.Outcome() != OutcomeInapplicable {
		t.Fatalf("inapplicable candidate must not be a success")
	}

	c.ConsumeCandidate(Top(0), cand(2))
	if !c.IsSuccess() || c.BestGroup() != Top(0) {
		t.Fatalf("better applicability must replace a lower group, got %s", c.BestGroup())
	}

	c.ConsumeCandidate(Local(1), cand(3))
	if got := ids(c.BestCandidates()); len(got) != 1 || got[0] != 3 {
		t.Fatalf("equal applicability at a lower group must replace, got %v", got)
	}

	c.ConsumeCandidate(Local(0), cand(4))
	if got := ids(c.BestCandidates()); len(got) != 1 || got[0] != 3 {
		t.Fatalf("low priority must not replace resolved, got %v", got)
	}

	c.ConsumeCandidate(Local(1), cand(5))
	if got := ids(c.BestCandidates()); len(got) != 2 || c.Outcome() != OutcomeAmbiguous {
		t.Fatalf("tie at the best group must be kept, got %v", got)
	}
	if c.Consumed() != 5 {
		t.Fatalf("expected 5 consumed, got %d", c.Consumed())
	}
	if !c.ShouldStopAtLevel(Top(0)) || c.ShouldStopAtLevel(Local(1)) {
		t.Fatalf("ShouldStopAtLevel mismatch")
	}

	c.NewDataSet()
	if c.IsSuccess() || len(c.Best()) != 0 || c.Applicability() != Hidden {
		t.Fatalf("NewDataSet must clear the collector")
	}
}

func TestCollectorKeepsHiddenCandidates(t *testing.T) {
	c := NewCollector(fixedStages{1: Hidden})
	c.ConsumeCandidate(Top(0), cand(1))
	if len(c.Best()) != 1 || c.Outcome() != OutcomeInapplicable {
		t.Fatalf("hidden candidate should be reported as inapplicable, got %v", c.Outcome())
	}
}

func TestCollectorBestPairsCandidatesWithVerdicts(t *testing.T) {
	c := NewCollector(fixedStages{1: Resolved, 2: Resolved})
	c.ConsumeCandidate(Top(0), cand(1))
	c.ConsumeCandidate(Top(0), cand(2))

	var best []Ranked = c.Best()
	if len(best) != 2 {
		t.Fatalf("expected 2 kept candidates, got %d", len(best))
	}
	for i, r := range best {
		if r.Candidate.Symbol != symbols.SymbolID(i+1) || r.Verdict.Applicability != Resolved {
			t.Fatalf("best[%d] = %+v", i, r)
		}
	}

	// Best returns a copy
	best[0].Verdict.Applicability = Inapplicable
	if c.Best()[0].Verdict.Applicability != Resolved {
		t.Fatalf("Best must not expose the collector's storage")
	}
}

func TestInvokeQueueOrdersByGroupThenInsertion(t *testing.T) {
	var q invokeQueue
	push := func(g Group, seq uint64) { heap.Push(&q, &query{group: g, seq: seq}) }
	push(Top(0), 1)
	push(Member, 2)
	push(Local(0), 3)
	push(Member, 4)
	push(Implicit(0).Member(), 5)

	var got []uint64
	for q.Len() > 0 {
		got = append(got, heap.Pop(&q).(*query).seq)
	}
	want := []uint64{2, 4, 3, 5, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pop order = %v, want %v", got, want)
		}
	}
}

func TestProcessLevelRejectsNonIncreasingGroups(t *testing.T) {
	m := NewManager(&Environment{})
	info := &CallInfo{Kind: CallFunction}

	mustPanicContract := func(g Group) {
		t.Helper()
		defer func() {
			r := recover()
			err, ok := r.(error)
			var ce *ContractError
			if !ok || !errors.As(err, &ce) {
				t.Fatalf("expected *ContractError panic, got %v", r)
			}
			if ce.Requested != g {
				t.Fatalf("expected requested group %s, got %s", g, ce.Requested)
			}
		}()
		m.ProcessLevel(nil, info, g, NoExplicitReceiver)
	}

	mustPanicContract(Start)
	m.current = Local(1)
	mustPanicContract(Local(1))
	mustPanicContract(Local(0))
	mustPanicContract(Member)
}

func TestUnsupportedCallKindPanics(t *testing.T) {
	m := NewManager(&Environment{})
	m.resultCollector = NewCollector(fixedStages{})
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for unsupported call kind")
		}
	}()
	m.ProcessLevel(nil, &CallInfo{}, Member, NoExplicitReceiver)
}

func TestClassifyReceivers(t *testing.T) {
	decls := fakeDecls{
		1: {Kind: symbols.SymbolClass, Flags: symbols.FlagInner},
		2: {Kind: symbols.SymbolClass, Flags: symbols.FlagInner},
		3: {Kind: symbols.SymbolClass},
		4: {Kind: symbols.SymbolClass},
		5: {Kind: symbols.SymbolClass, ClassKind: symbols.ClassObject},
		6: {Kind: symbols.SymbolClass, ClassKind: symbols.ClassCompanion},
	}
	values := []*ImplicitReceiverValue{
		{Kind: ImplicitDispatch, Class: 1},
		{Kind: ImplicitDispatch, Class: 2},
		{Kind: ImplicitDispatch, Class: 3},
		{Kind: ImplicitExtension},
		{Kind: ImplicitDispatch, Class: 4},
		{Kind: ImplicitDispatch, Class: 5},
		{Kind: ImplicitDispatch, Class: 6},
	}
	want := []bool{true, true, true, true, false, true, true}
	got := classifyReceivers(decls, values)
	for i, ir := range got {
		if ir.depth != i {
			t.Fatalf("receiver %d has depth %d", i, ir.depth)
		}
		if ir.usable != want[i] {
			t.Errorf("receiver %d usable = %v, want %v", i, ir.usable, want[i])
		}
	}
}

type fakeDecls map[symbols.SymbolID]*symbols.Symbol

func (f fakeDecls) Symbol(id symbols.SymbolID) *symbols.Symbol { return f[id] }
