package world

import (
	"errors"
	"fmt"
	"testing"

	"tower/internal/types"
)

type fakeScope struct {
	in      *types.Interner
	classes map[string]types.TypeID
	literal types.TypeID
}

func newFakeScope(names ...string) *fakeScope {
	s := &fakeScope{in: types.NewInterner(), classes: make(map[string]types.TypeID)}
	for i, n := range names {
		s.classes[n] = s.in.RegisterClass(n, uint32(i+1))
	}
	return s
}

func (s *fakeScope) classType(path string) (types.TypeID, error) {
	if id, ok := s.classes[path]; ok {
		return id, nil
	}
	return types.NoTypeID, fmt.Errorf("unknown class %q", path)
}

func (s *fakeScope) literalType() (types.TypeID, error) {
	if !s.literal.IsValid() {
		return types.NoTypeID, errors.New("no literal class")
	}
	return s.literal, nil
}

func (s *fakeScope) interner() *types.Interner { return s.in }

func TestParseTypeRoundTrip(t *testing.T) {
	s := newFakeScope("A", "B", "C", "Outer.Inner")
	s.literal = s.in.RegisterIntLiteral(s.classes["A"])
	for _, src := range []string{
		"A",
		"Any",
		"Unit",
		"Outer.Inner",
		"() -> Unit",
		"(A, B) -> C",
		"A.() -> Unit",
		"A.(B) -> (C) -> Unit",
		"Outer.Inner.(A) -> B",
		"(A.() -> Unit).(B) -> C",
	} {
		id, err := parseType(src, s)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", src, err)
		}
		if got := s.in.String(id); got != src {
			t.Fatalf("expected %q, got %q", src, got)
		}
	}
	id, err := parseType("literal", s)
	if err != nil || !s.in.IsIntegerLiteral(id) {
		t.Fatalf("expected literal type, got %v (%v)", s.in.String(id), err)
	}
}

func TestParseTypeSpacingAndGrouping(t *testing.T) {
	s := newFakeScope("A", "B")
	id, err := parseType("  ( A )  ", s)
	if err != nil || id != s.classes["A"] {
		t.Fatalf("expected grouped A, got %v (%v)", id, err)
	}
	a, _ := parseType("A.(B)->Unit", s)
	b, _ := parseType("A.( B )  ->  Unit", s)
	if !a.IsValid() || a != b {
		t.Fatalf("function types should be deduplicated regardless of spacing: %v vs %v", a, b)
	}
}

func TestParseTypeErrors(t *testing.T) {
	s := newFakeScope("A")
	for _, src := range []string{
		"",
		"Missing",
		"(A",
		"(A, A)",
		"A ->",
		"A.(A)",
		"A B",
		"1A",
		"literal",
	} {
		if _, err := parseType(src, s); err == nil {
			t.Fatalf("%q: expected an error", src)
		}
	}
}
