package world

import (
	"tower/internal/source"
	"tower/internal/symbols"
	"tower/internal/tower"
)

// World is a loaded, sealed world file.
type World struct {
	Path     string
	File     source.FileID
	Hash     [32]byte
	Package  string
	Table    *symbols.Table
	Contexts []*Context
	Calls    []*Call
}

// Context is the lexical position calls are resolved from.
type Context struct {
	Name      string
	Span      source.Span
	Locals    []symbols.View // innermost first
	TopLevel  []symbols.View // priority order
	Receivers []*tower.ImplicitReceiverValue
}

// Call is one call site with its expectation.
type Call struct {
	ID      string
	Context *Context
	Info    *tower.CallInfo
	Expect  Expectation
	Span    source.Span
}

// Expectation is what a call should resolve to. Zero fields are not
// checked.
type Expectation struct {
	Outcome    string   // resolved, ambiguous, inapplicable, unresolved
	Candidates []string // qualified names, any order
	Group      string
}

// IsZero reports whether nothing is expected.
func (e Expectation) IsZero() bool {
	return e.Outcome == "" && len(e.Candidates) == 0 && e.Group == ""
}

// Environment builds the tower environment of ctx.
func (w *World) Environment(ctx *Context, stages tower.StageRunner) *tower.Environment {
	return &tower.Environment{
		Model:    w.Table,
		Stages:   stages,
		Strings:  w.Table.Strings,
		Locals:   ctx.Locals,
		TopLevel: ctx.TopLevel,
	}
}

// Context returns the context named name.
func (w *World) Context(name string) (*Context, bool) {
	for _, c := range w.Contexts {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Call returns the call with the given id.
func (w *World) Call(id string) (*Call, bool) {
	for _, c := range w.Calls {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}
