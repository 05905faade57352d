package symbols

import "tower/internal/source"

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid ScopeKind = iota
	ScopeLocal             // block or function body
	ScopePackage           // top-level declarations of one package
	ScopeMember            // members of a class, object or function type
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeLocal:
		return "local"
	case ScopePackage:
		return "package"
	case ScopeMember:
		return "member"
	default:
		return "invalid"
	}
}

// Scope is a flat name table. Lexical nesting is expressed by the caller
// passing several scopes in priority order, not by parent lookup.
type Scope struct {
	Kind      ScopeKind
	Parent    ScopeID
	Owner     SymbolID // class owning a member scope
	Name      string   // package name or local label
	Span      source.Span
	NameIndex map[source.StringID][]SymbolID
	Symbols   []SymbolID
}
