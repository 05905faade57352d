package tower

import (
	"tower/internal/diag"
	"tower/internal/symbols"
)

// ExplicitReceiverKind tells what role the explicit receiver plays for a
// candidate.
type ExplicitReceiverKind uint8

const (
	NoExplicitReceiver ExplicitReceiverKind = iota
	DispatchReceiver
	ExtensionReceiver
)

func (k ExplicitReceiverKind) String() string {
	switch k {
	case DispatchReceiver:
		return "dispatch"
	case ExtensionReceiver:
		return "extension"
	default:
		return "none"
	}
}

// Candidate is one symbol found for a call together with the receivers it
// would be called with. Candidates are immutable.
type Candidate struct {
	Symbol       symbols.SymbolID
	ExplicitKind ExplicitReceiverKind
	Dispatch     ReceiverValue
	Extension    ReceiverValue
	// BuiltinInvokeExtension is the receiver passed to invoke of an
	// extension function type in invoke-extension mode.
	BuiltinInvokeExtension ReceiverValue
	Group                  Group
	Call                   *CallInfo
}

// ExtensionReceiverExpr renders the extension receiver as an expression.
func (c *Candidate) ExtensionReceiverExpr() *ValueExpr {
	switch r := c.Extension.(type) {
	case *ExpressionReceiverValue:
		return r.Expr
	case *ImplicitReceiverValue:
		return r.Expr()
	default:
		return nil
	}
}

// CandidateFactory creates candidates for one call.
type CandidateFactory struct {
	call *CallInfo
}

// NewCandidateFactory binds a factory to call.
func NewCandidateFactory(call *CallInfo) *CandidateFactory {
	return &CandidateFactory{call: call}
}

// Call returns the call the factory is bound to.
func (f *CandidateFactory) Call() *CallInfo { return f.call }

// Create builds a fresh candidate.
func (f *CandidateFactory) Create(sym symbols.SymbolID, kind ExplicitReceiverKind, dispatch, extension, builtinInvoke ReceiverValue, group Group) *Candidate {
	return &Candidate{
		Symbol:                 sym,
		ExplicitKind:           kind,
		Dispatch:               dispatch,
		Extension:              extension,
		BuiltinInvokeExtension: builtinInvoke,
		Group:                  group,
		Call:                   f.call,
	}
}

// Applicability ranks how well a candidate fits a call, worst first.
type Applicability uint8

const (
	Hidden Applicability = iota
	WrongReceiver
	ParameterMappingError
	Inapplicable
	ResolvedLowPriority
	Resolved
)

// IsSuccess reports whether the candidate can be chosen.
func (a Applicability) IsSuccess() bool { return a >= ResolvedLowPriority }

func (a Applicability) String() string {
	switch a {
	case Hidden:
		return "hidden"
	case WrongReceiver:
		return "wrong-receiver"
	case ParameterMappingError:
		return "parameter-mapping-error"
	case Inapplicable:
		return "inapplicable"
	case ResolvedLowPriority:
		return "resolved-low-priority"
	case Resolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Defect explains why a candidate is not fully applicable.
type Defect struct {
	Code    diag.Code
	Message string
}

// Verdict is the outcome of checking one candidate.
type Verdict struct {
	Applicability Applicability
	Defects       []Defect
}
