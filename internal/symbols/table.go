package symbols

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"tower/internal/source"
	"tower/internal/types"
)

// Hints provide optional capacity suggestions for the symbol table arenas.
type Hints struct{ Scopes, Symbols uint }

// Table aggregates symbol-related arenas and shared resources.
//
// A table is mutable while a world is being loaded. After Seal it is
// read-only and may be shared by concurrent resolvers.
type Table struct {
	Scopes   *Scopes
	Symbols  *Symbols
	Strings  *source.Interner
	Types    *types.Interner
	packages map[string]ScopeID
	pkgOrder []string
	invokes  map[types.TypeID]ScopeID
	invoke   source.StringID
	sealed   bool
}

// NewTable builds a fresh table with optional capacity hints.
// Nil interners are allocated.
func NewTable(h Hints, strings *source.Interner, typ *types.Interner) *Table {
	scopeCap, err := safecast.Conv[uint32](h.Scopes)
	if err != nil {
		panic(fmt.Errorf("scope capacity overflow: %w", err))
	}
	symCap, err := safecast.Conv[uint32](h.Symbols)
	if err != nil {
		panic(fmt.Errorf("symbol capacity overflow: %w", err))
	}
	if strings == nil {
		strings = source.NewInterner()
	}
	if typ == nil {
		typ = types.NewInterner()
	}
	return &Table{
		Scopes:   NewScopes(scopeCap),
		Symbols:  NewSymbols(symCap),
		Strings:  strings,
		Types:    typ,
		packages: make(map[string]ScopeID),
		invokes:  make(map[types.TypeID]ScopeID),
		invoke:   strings.Intern("invoke"),
	}
}

// InvokeName is the interned name of the invoke operator.
func (t *Table) InvokeName() source.StringID { return t.invoke }

// Package returns (and creates if needed) the scope of a package.
func (t *Table) Package(name string) ScopeID {
	if scope, ok := t.packages[name]; ok {
		return scope
	}
	t.mustBeOpen()
	scope := t.Scopes.New(ScopePackage, NoScopeID, NoSymbolID, source.Span{})
	t.Scopes.Get(scope).Name = name
	t.packages[name] = scope
	t.pkgOrder = append(t.pkgOrder, name)
	return scope
}

// LookupPackage finds an existing package scope.
func (t *Table) LookupPackage(name string) (ScopeID, bool) {
	scope, ok := t.packages[name]
	return scope, ok
}

// Packages lists package names in creation order.
func (t *Table) Packages() []string { return slices.Clone(t.pkgOrder) }

// NewLocalScope allocates a local scope.
func (t *Table) NewLocalScope(label string, span source.Span) ScopeID {
	t.mustBeOpen()
	scope := t.Scopes.New(ScopeLocal, NoScopeID, NoSymbolID, span)
	t.Scopes.Get(scope).Name = label
	return scope
}

// Declare adds sym to scope and returns its ID.
func (t *Table) Declare(scope ScopeID, sym Symbol) SymbolID {
	t.mustBeOpen()
	s := t.Scopes.Get(scope)
	if s == nil {
		panic(fmt.Errorf("symbols: declare into invalid scope %d", scope))
	}
	sym.Scope = scope
	id := t.Symbols.New(&sym)
	s.Symbols = append(s.Symbols, id)
	s.NameIndex[sym.Name] = append(s.NameIndex[sym.Name], id)
	return id
}

// DeclareClass declares a class-like symbol together with its nominal type
// and member scope. A valid outer makes it a nested class of outer.
func (t *Table) DeclareClass(scope ScopeID, name source.StringID, kind ClassKind, flags SymbolFlags, outer SymbolID, span source.Span) SymbolID {
	id := t.Declare(scope, Symbol{
		Name:      name,
		Kind:      SymbolClass,
		ClassKind: kind,
		Flags:     flags,
		Span:      span,
		Outer:     outer,
	})
	sym := t.Symbols.Get(id)
	sym.Type = t.Types.RegisterClass(t.Strings.MustLookup(name), uint32(id))
	sym.Members = t.Scopes.New(ScopeMember, scope, id, span)
	return id
}

// SetCompanion links a companion object to its owning class.
func (t *Table) SetCompanion(class, companion SymbolID) {
	t.mustBeOpen()
	if sym := t.Symbols.Get(class); sym != nil {
		sym.Companion = companion
	}
}

// Symbol returns the symbol for id or nil.
func (t *Table) Symbol(id SymbolID) *Symbol { return t.Symbols.Get(id) }

// Name returns the printable name of a symbol.
func (t *Table) Name(id SymbolID) string {
	sym := t.Symbols.Get(id)
	if sym == nil {
		return "<invalid>"
	}
	return t.Strings.MustLookup(sym.Name)
}

// QualifiedName renders owner.name for members and package.name for
// top-level declarations.
func (t *Table) QualifiedName(id SymbolID) string {
	sym := t.Symbols.Get(id)
	if sym == nil {
		return "<invalid>"
	}
	name := t.Strings.MustLookup(sym.Name)
	scope := t.Scopes.Get(sym.Scope)
	if scope == nil {
		return name
	}
	switch {
	case scope.Owner.IsValid():
		return t.QualifiedName(scope.Owner) + "." + name
	case scope.Kind == ScopePackage && scope.Name != "":
		return scope.Name + "." + name
	case scope.Kind == ScopeLocal && scope.Name != "":
		return scope.Name + "::" + name
	default:
		return name
	}
}

// ClassOfType returns the class symbol declaring a class type.
func (t *Table) ClassOfType(typ types.TypeID) SymbolID {
	info, ok := t.Types.ClassInfo(t.Types.Widen(typ))
	if !ok {
		return NoSymbolID
	}
	return SymbolID(info.Ref)
}

// Seal synthesizes invoke operators for every function type and freezes
// the table. Lookups never allocate after Seal.
func (t *Table) Seal() {
	if t.sealed {
		return
	}
	for _, id := range t.Types.All() {
		if t.Types.KindOf(id) == types.KindFn {
			t.invokeScope(id)
		}
	}
	t.sealed = true
}

// Sealed reports whether Seal was called.
func (t *Table) Sealed() bool { return t.sealed }

func (t *Table) mustBeOpen() {
	if t.sealed {
		panic("symbols: table is sealed")
	}
}

// invokeScope returns the member scope holding the synthetic invoke operator
// of a function type, creating it on first use before Seal.
func (t *Table) invokeScope(fn types.TypeID) ScopeID {
	if scope, ok := t.invokes[fn]; ok {
		return scope
	}
	if t.sealed {
		return NoScopeID
	}
	info, ok := t.Types.FnInfo(fn)
	if !ok {
		return NoScopeID
	}
	scope := t.Scopes.New(ScopeMember, NoScopeID, NoSymbolID, source.Span{})
	t.Scopes.Get(scope).Name = t.Types.String(fn)
	params := make([]Param, 0, len(info.Params)+1)
	for _, p := range info.InvokeParams() {
		params = append(params, Param{Type: p})
	}
	t.Declare(scope, Symbol{
		Name:   t.invoke,
		Kind:   SymbolFunction,
		Flags:  FlagOperator | FlagSynthetic,
		Params: params,
		Result: info.Result,
	})
	t.invokes[fn] = scope
	return scope
}
