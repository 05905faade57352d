package tower_test

import (
	"context"
	"testing"

	"tower/internal/source"
	"tower/internal/stages"
	"tower/internal/symbols"
	"tower/internal/tower"
	"tower/internal/types"
)

// world is a small declaration table with one package "app".
type world struct {
	t      *testing.T
	table  *symbols.Table
	pkg    symbols.ScopeID
	unit   types.TypeID
	locals []symbols.ScopeID
}

func newWorld(t *testing.T) *world {
	t.Helper()
	table := symbols.NewTable(symbols.Hints{}, nil, nil)
	return &world{t: t, table: table, pkg: table.Package("app"), unit: table.Types.Builtins().Unit}
}

func (w *world) name(s string) source.StringID { return w.table.Strings.Intern(s) }

func (w *world) class(scope symbols.ScopeID, name string, kind symbols.ClassKind, flags symbols.SymbolFlags) symbols.SymbolID {
	return w.table.DeclareClass(scope, w.name(name), kind, flags, symbols.NoSymbolID, source.Span{})
}

func (w *world) typeOf(class symbols.SymbolID) types.TypeID { return w.table.Symbol(class).Type }

func (w *world) members(class symbols.SymbolID) symbols.ScopeID { return w.table.Symbol(class).Members }

func (w *world) fn(scope symbols.ScopeID, name string, flags symbols.SymbolFlags, receiver types.TypeID, params ...types.TypeID) symbols.SymbolID {
	ps := make([]symbols.Param, 0, len(params))
	for _, p := range params {
		ps = append(ps, symbols.Param{Type: p})
	}
	return w.table.Declare(scope, symbols.Symbol{
		Name:     w.name(name),
		Kind:     symbols.SymbolFunction,
		Flags:    flags,
		Receiver: receiver,
		Params:   ps,
		Result:   w.unit,
	})
}

func (w *world) prop(scope symbols.ScopeID, name string, receiver, typ types.TypeID) symbols.SymbolID {
	return w.table.Declare(scope, symbols.Symbol{
		Name:     w.name(name),
		Kind:     symbols.SymbolProperty,
		Receiver: receiver,
		Result:   typ,
	})
}

// local appends a local scope; the first one added is the innermost.
func (w *world) local() symbols.ScopeID {
	scope := w.table.NewLocalScope("fun", source.Span{})
	w.locals = append(w.locals, scope)
	return scope
}

func (w *world) env() *tower.Environment {
	w.table.Seal()
	env := &tower.Environment{
		Model:    w.table,
		Stages:   stages.New(w.table),
		Strings:  w.table.Strings,
		TopLevel: []symbols.View{symbols.NewScopeView(w.table, w.pkg)},
	}
	for _, l := range w.locals {
		env.Locals = append(env.Locals, symbols.NewScopeView(w.table, l))
	}
	return env
}

func (w *world) call(kind tower.CallKind, name string, explicit tower.Explicit, args ...types.TypeID) *tower.CallInfo {
	info := &tower.CallInfo{Name: w.name(name), Kind: kind, Explicit: explicit}
	for _, a := range args {
		info.Args = append(info.Args, tower.Argument{Type: a})
	}
	return info
}

func (w *world) dispatch(class symbols.SymbolID) *tower.ImplicitReceiverValue {
	return &tower.ImplicitReceiverValue{Kind: tower.ImplicitDispatch, ValueType: w.typeOf(class), Class: class, Label: w.table.Name(class)}
}

func (w *world) extension(typ types.TypeID, label string) *tower.ImplicitReceiverValue {
	return &tower.ImplicitReceiverValue{Kind: tower.ImplicitExtension, ValueType: typ, Label: label}
}

func resolve(env *tower.Environment, receivers []*tower.ImplicitReceiverValue, info *tower.CallInfo) *tower.Collector {
	return tower.NewResolver(env, tower.DefaultOptions()).Run(context.Background(), receivers, info)
}

// expectSingle asserts the run resolved to exactly sym at group.
func (w *world) expectSingle(c *tower.Collector, sym symbols.SymbolID, group tower.Group) *tower.Candidate {
	w.t.Helper()
	best := c.BestCandidates()
	if c.Outcome() != tower.OutcomeResolved || len(best) != 1 {
		w.t.Fatalf("expected single resolved candidate, got %s with %d candidates", c.Outcome(), len(best))
	}
	if best[0].Symbol != sym {
		w.t.Fatalf("expected %s, got %s", w.table.QualifiedName(sym), w.table.QualifiedName(best[0].Symbol))
	}
	if c.BestGroup() != group {
		w.t.Fatalf("expected group %s, got %s", group, c.BestGroup())
	}
	return best[0]
}
