package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// IsValid reports whether the id refers to an interned type.
func (id TypeID) IsValid() bool { return id != NoTypeID }

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindAny
	KindUnit
	KindClass
	KindFn
	KindIntLiteral
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindAny:
		return "any"
	case KindUnit:
		return "unit"
	case KindClass:
		return "class"
	case KindFn:
		return "fn"
	case KindIntLiteral:
		return "int-literal"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Type is a compact descriptor. Payload indexes the per-kind side table
// (classes, fns, literals); Any and Unit carry no payload.
type Type struct {
	Kind    Kind
	Payload uint32
}
