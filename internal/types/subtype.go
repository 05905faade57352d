package types

import "slices"

// IsSubtype reports whether sub can be used where super is expected.
//
// Classes follow declared supertypes, Any is the top type, function types
// are contravariant in receiver and parameters and covariant in the result.
// An integer literal fits any integer class or a supertype of its default.
func (in *Interner) IsSubtype(sub, super TypeID) bool {
	if sub == super {
		return sub.IsValid()
	}
	subT, ok1 := in.Lookup(sub)
	superT, ok2 := in.Lookup(super)
	if !ok1 || !ok2 {
		return false
	}
	if superT.Kind == KindAny {
		return true
	}
	switch subT.Kind {
	case KindIntLiteral:
		if in.isIntegerClass(super) {
			return true
		}
		return in.IsSubtype(in.literals[subT.Payload].Default, super)
	case KindClass:
		if superT.Kind != KindClass {
			return false
		}
		return slices.Contains(in.Supertypes(sub), super)
	case KindFn:
		if superT.Kind != KindFn {
			return false
		}
		return in.fnSubtype(&in.fns[subT.Payload], &in.fns[superT.Payload])
	default:
		return false
	}
}

func (in *Interner) fnSubtype(sub, super *FnInfo) bool {
	if sub.Receiver.IsValid() != super.Receiver.IsValid() {
		return false
	}
	if sub.Receiver.IsValid() && !in.IsSubtype(super.Receiver, sub.Receiver) {
		return false
	}
	if len(sub.Params) != len(super.Params) {
		return false
	}
	for i := range sub.Params {
		if !in.IsSubtype(super.Params[i], sub.Params[i]) {
			return false
		}
	}
	return in.IsSubtype(sub.Result, super.Result)
}
