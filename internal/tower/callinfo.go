package tower

import (
	"slices"

	"tower/internal/source"
	"tower/internal/symbols"
	"tower/internal/types"
)

// CallKind is the syntactic form of a call site.
type CallKind uint8

const (
	CallVariableAccess CallKind = iota + 1 // x, r.x
	CallFunction                           // f(...), r.f(...)
	CallCallableReference                  // ::f, A::f
)

func (k CallKind) String() string {
	switch k {
	case CallVariableAccess:
		return "variable"
	case CallFunction:
		return "function"
	case CallCallableReference:
		return "reference"
	default:
		return "unknown"
	}
}

// Explicit is the receiver written before the dot: *ValueExpr or *QualifierExpr.
type Explicit interface {
	explicit()
	String() string
}

// ValueExpr is an expression producing a value of Type.
type ValueExpr struct {
	Text string
	Type types.TypeID
	Safe bool
}

func (*ValueExpr) explicit()        {}
func (e *ValueExpr) String() string { return e.Text }

// QualifierExpr names a package or a class. Exactly one of Package and
// Class is set.
type QualifierExpr struct {
	Text    string
	Package string
	Class   symbols.SymbolID
}

func (*QualifierExpr) explicit()        {}
func (q *QualifierExpr) String() string { return q.Text }

// Argument is one call argument. A valid Name makes it a named argument.
type Argument struct {
	Name source.StringID
	Type types.TypeID
	Text string
}

// CallInfo describes one call site. It is never mutated; derived calls are
// copies.
type CallInfo struct {
	Name       source.StringID
	Kind       CallKind
	Explicit   Explicit
	IsSafeCall bool
	Stub       *ValueExpr // callable references only
	Args       []Argument
	Span       source.Span

	// ExplicitInvoke marks a synthesized `<receiver>.invoke(args)` call.
	ExplicitInvoke bool
	// InvokeReceiverSearch marks a property search made for an invoke call.
	InvokeReceiverSearch bool
}

// Receiver returns the explicit value receiver or nil.
func (c *CallInfo) Receiver() *ValueExpr {
	if e, ok := c.Explicit.(*ValueExpr); ok {
		return e
	}
	return nil
}

func (c *CallInfo) clone() *CallInfo {
	cp := *c
	cp.Args = slices.Clone(c.Args)
	return &cp
}

// ReplaceWithVariableAccess returns the property lookup made for an invoke
// receiver of the call.
func (c *CallInfo) ReplaceWithVariableAccess() *CallInfo {
	cp := c.clone()
	cp.Kind = CallVariableAccess
	cp.Args = nil
	cp.InvokeReceiverSearch = true
	return cp
}

// ReplaceExplicitReceiver returns a copy with e as explicit receiver.
func (c *CallInfo) ReplaceExplicitReceiver(e Explicit) *CallInfo {
	cp := c.clone()
	cp.Explicit = e
	return cp
}

// WithName returns a copy called n.
func (c *CallInfo) WithName(n source.StringID) *CallInfo {
	cp := c.clone()
	cp.Name = n
	return cp
}

// WithReceiverAsArgument returns a copy with e prepended to the arguments.
func (c *CallInfo) WithReceiverAsArgument(e *ValueExpr) *CallInfo {
	cp := c.clone()
	cp.Args = append([]Argument{{Type: e.Type, Text: e.Text}}, c.Args...)
	return cp
}
