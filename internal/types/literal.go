package types

import "slices"

// LiteralInfo stores metadata for an integer literal type.
type LiteralInfo struct {
	Default TypeID // class type the literal defaults to (usually Int)
}

// IntegerClassNames lists class names an integer literal converts to.
var IntegerClassNames = []string{"Int", "Long", "Short", "Byte"}

// RegisterIntLiteral creates or finds the integer literal type defaulting to def.
func (in *Interner) RegisterIntLiteral(def TypeID) TypeID {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind == KindIntLiteral && in.literals[tt.Payload].Default == def {
			return id
		}
	}
	slot := appendSlot(&in.literals, LiteralInfo{Default: def}, "literal info")
	return in.internRaw(Type{Kind: KindIntLiteral, Payload: slot})
}

// IsIntegerLiteral reports whether id is an integer literal type.
func (in *Interner) IsIntegerLiteral(id TypeID) bool {
	return in.KindOf(id) == KindIntLiteral
}

// LiteralDefault returns the default class type of a literal, or NoTypeID.
func (in *Interner) LiteralDefault(id TypeID) TypeID {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindIntLiteral {
		return NoTypeID
	}
	return in.literals[tt.Payload].Default
}

// Widen replaces a literal type with its default class type.
func (in *Interner) Widen(id TypeID) TypeID {
	if def := in.LiteralDefault(id); def.IsValid() {
		return def
	}
	return id
}

func (in *Interner) isIntegerClass(id TypeID) bool {
	info := in.classInfo(id)
	return info != nil && slices.Contains(IntegerClassNames, info.Name)
}
