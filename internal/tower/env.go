package tower

import (
	"slices"

	"tower/internal/source"
	"tower/internal/symbols"
	"tower/internal/types"
)

// Declarations gives read access to declared symbols.
type Declarations interface {
	Symbol(id symbols.SymbolID) *symbols.Symbol
}

// ScopeProvider builds the views a receiver or qualifier exposes. A nil
// View means there is nothing to look up.
type ScopeProvider interface {
	MemberScope(t types.TypeID) symbols.View
	StaticScope(t types.TypeID) symbols.View
	QualifierScope(class symbols.SymbolID) symbols.View
	PackageMember(pkg, name string) symbols.View
}

// ReturnTypeCalculator yields the type a referenced symbol evaluates to.
type ReturnTypeCalculator interface {
	ReturnType(id symbols.SymbolID) types.TypeID
}

// TypeInfo answers the few type questions the tower asks.
type TypeInfo interface {
	IsIntegerLiteral(t types.TypeID) bool
	IsExtensionFunction(t types.TypeID) bool
}

// StageRunner checks the applicability of a candidate.
type StageRunner interface {
	Run(c *Candidate) Verdict
}

// Model is everything the declaration table provides.
type Model interface {
	Declarations
	ScopeProvider
	ReturnTypeCalculator
	TypeInfo
}

// Environment is the context of one call site: the declaration model,
// the applicability checker and the scopes visible at the call. Locals are
// innermost first, TopLevel in import priority order.
type Environment struct {
	Model    Model
	Stages   StageRunner
	Strings  *source.Interner
	Locals   []symbols.View
	TopLevel []symbols.View
}

// Options configure a Resolver.
type Options struct {
	// HidesMembers lists function names whose extensions are looked up
	// before members.
	HidesMembers []string
}

// DefaultHidesMembers is the built-in hides-members name list.
var DefaultHidesMembers = []string{"forEach"}

// DefaultOptions returns the default resolver options.
func DefaultOptions() Options {
	return Options{HidesMembers: slices.Clone(DefaultHidesMembers)}
}
