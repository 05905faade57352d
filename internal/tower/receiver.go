package tower

import (
	"tower/internal/symbols"
	"tower/internal/types"
)

// ReceiverValue is a value a member or extension can be called on:
// *ImplicitReceiverValue or *ExpressionReceiverValue.
type ReceiverValue interface {
	Type() types.TypeID
	String() string
	receiver()
}

// ImplicitKind tells how an implicit receiver entered the context.
type ImplicitKind uint8

const (
	ImplicitDispatch  ImplicitKind = iota + 1 // this of an enclosing class
	ImplicitExtension                         // receiver of an enclosing extension
)

// ImplicitReceiverValue is an implicit `this`.
type ImplicitReceiverValue struct {
	Kind      ImplicitKind
	ValueType types.TypeID
	Class     symbols.SymbolID // bound class (dispatch) or declaring function (extension)
	Label     string
}

func (*ImplicitReceiverValue) receiver() {}

func (r *ImplicitReceiverValue) Type() types.TypeID { return r.ValueType }

func (r *ImplicitReceiverValue) String() string {
	if r.Label == "" {
		return "this"
	}
	return "this@" + r.Label
}

// Expr renders the receiver as an expression usable as an argument.
func (r *ImplicitReceiverValue) Expr() *ValueExpr {
	return &ValueExpr{Text: r.String(), Type: r.ValueType}
}

// ExpressionReceiverValue wraps an explicit value expression.
type ExpressionReceiverValue struct {
	Expr *ValueExpr
}

func (*ExpressionReceiverValue) receiver() {}

func (r *ExpressionReceiverValue) Type() types.TypeID { return r.Expr.Type }

func (r *ExpressionReceiverValue) String() string { return r.Expr.Text }

// implicitReceiver is a receiver with its depth and usability for one run.
type implicitReceiver struct {
	value  *ImplicitReceiverValue
	usable bool
	depth  int
}

// classifyReceivers decides which implicit receivers are usable as values.
// Extension receivers always are. Dispatch receivers are usable up to and
// including the first one bound to a non-inner class; past that boundary
// only objects and companions are.
func classifyReceivers(decls Declarations, values []*ImplicitReceiverValue) []implicitReceiver {
	out := make([]implicitReceiver, 0, len(values))
	firstDispatch := true
	for depth, v := range values {
		usable := true
		if v.Kind == ImplicitDispatch {
			class := decls.Symbol(v.Class)
			if firstDispatch {
				if class == nil || !class.Has(symbols.FlagInner) {
					firstDispatch = false
				}
			} else {
				usable = class != nil && class.ClassKind.IsSingleton()
			}
		}
		out = append(out, implicitReceiver{value: v, usable: usable, depth: depth})
	}
	return out
}
