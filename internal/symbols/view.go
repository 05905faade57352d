package symbols

import (
	"fmt"

	"tower/internal/source"
	"tower/internal/types"
)

// View is a read-only name lookup over one flavour of scope. Results come
// in declaration order.
type View interface {
	Lookup(name source.StringID, mask KindMask) []SymbolID
	Describe() string
}

// ScopeView exposes every symbol of one arena scope (locals, packages).
type ScopeView struct {
	t     *Table
	scope ScopeID
}

// NewScopeView wraps an arena scope.
func NewScopeView(t *Table, scope ScopeID) *ScopeView {
	return &ScopeView{t: t, scope: scope}
}

func (v *ScopeView) Lookup(name source.StringID, mask KindMask) []SymbolID {
	return v.t.lookupScope(v.scope, name, mask, nil)
}

func (v *ScopeView) Describe() string {
	s := v.t.Scopes.Get(v.scope)
	if s == nil {
		return "scope(<invalid>)"
	}
	return fmt.Sprintf("%s(%s)", s.Kind, s.Name)
}

// lookupScope filters the name bucket of scope by mask and keep.
func (t *Table) lookupScope(scope ScopeID, name source.StringID, mask KindMask, keep func(*Symbol) bool) []SymbolID {
	s := t.Scopes.Get(scope)
	if s == nil || mask == KindMaskNone {
		return nil
	}
	ids := s.NameIndex[name]
	if len(ids) == 0 {
		return nil
	}
	out := make([]SymbolID, 0, len(ids))
	for _, id := range ids {
		sym := t.Symbols.Get(id)
		if sym == nil || !matchKind(mask, sym.Kind) {
			continue
		}
		if keep != nil && !keep(sym) {
			continue
		}
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// MemberView is the instance member scope of a class type: members of the
// class and of all its supertypes. A member hides supertype members with an
// identical signature. Static members and nested classes are not instance
// members.
type MemberView struct {
	t     *Table
	class types.TypeID
}

func (v *MemberView) Lookup(name source.StringID, mask KindMask) []SymbolID {
	chain := append([]types.TypeID{v.class}, v.t.Types.Supertypes(v.class)...)
	instance := func(sym *Symbol) bool {
		return sym.Kind != SymbolClass && !sym.Has(FlagStatic)
	}
	var out []SymbolID
	for _, typ := range chain {
		owner := v.t.Symbols.Get(v.t.ClassOfType(typ))
		if owner == nil {
			continue
		}
		for _, id := range v.t.lookupScope(owner.Members, name, mask, instance) {
			if !v.t.overridden(out, id) {
				out = append(out, id)
			}
		}
	}
	return out
}

func (v *MemberView) Describe() string {
	return "members(" + v.t.Types.String(v.class) + ")"
}

func (t *Table) overridden(seen []SymbolID, id SymbolID) bool {
	sym := t.Symbols.Get(id)
	for _, prev := range seen {
		if sameSignature(t.Symbols.Get(prev), sym) {
			return true
		}
	}
	return false
}

// StaticView exposes static members and nested objects of a class.
type StaticView struct {
	t     *Table
	class SymbolID
}

func (v *StaticView) Lookup(name source.StringID, mask KindMask) []SymbolID {
	sym := v.t.Symbols.Get(v.class)
	if sym == nil {
		return nil
	}
	return v.t.lookupScope(sym.Members, name, mask, func(m *Symbol) bool {
		if m.Kind == SymbolClass {
			return m.ClassKind.IsSingleton()
		}
		return m.Has(FlagStatic)
	})
}

func (v *StaticView) Describe() string { return "static(" + v.t.QualifiedName(v.class) + ")" }

// QualifierView is what `Class.name` sees: static members and every nested
// classifier.
type QualifierView struct {
	t     *Table
	class SymbolID
}

func (v *QualifierView) Lookup(name source.StringID, mask KindMask) []SymbolID {
	sym := v.t.Symbols.Get(v.class)
	if sym == nil {
		return nil
	}
	return v.t.lookupScope(sym.Members, name, mask, func(m *Symbol) bool {
		return m.Kind == SymbolClass || m.Has(FlagStatic)
	})
}

func (v *QualifierView) Describe() string { return "qualifier(" + v.t.QualifiedName(v.class) + ")" }

// ImportingView exposes a package through an import. A valid only restricts
// it to a single imported name; otherwise it is a star import.
type ImportingView struct {
	t     *Table
	pkg   ScopeID
	only  source.StringID
	label string
}

// NewImportingView builds an importing view over pkg. Pass
// source.NoStringID as only for a star import.
func NewImportingView(t *Table, pkg string, only source.StringID) *ImportingView {
	scope, _ := t.LookupPackage(pkg)
	label := pkg + ".*"
	if only != source.NoStringID {
		label = pkg + "." + t.Strings.MustLookup(only)
	}
	return &ImportingView{t: t, pkg: scope, only: only, label: label}
}

func (v *ImportingView) Lookup(name source.StringID, mask KindMask) []SymbolID {
	if v.only != source.NoStringID && v.only != name {
		return nil
	}
	return v.t.lookupScope(v.pkg, name, mask, nil)
}

func (v *ImportingView) Describe() string { return "import(" + v.label + ")" }

// FnTypeView is the member scope of a function type: the synthetic invoke.
type FnTypeView struct {
	t     *Table
	fn    types.TypeID
	scope ScopeID
}

func (v *FnTypeView) Lookup(name source.StringID, mask KindMask) []SymbolID {
	return v.t.lookupScope(v.scope, name, mask, nil)
}

func (v *FnTypeView) Describe() string { return "members(" + v.t.Types.String(v.fn) + ")" }
