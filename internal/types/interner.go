package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for the structural primitives.
type Builtins struct {
	Any  TypeID
	Unit TypeID
}

// Interner provides stable TypeIDs. Class types are nominal (one slot per
// registration), function and literal types are deduplicated structurally.
type Interner struct {
	types    []Type
	builtins Builtins
	classes  []ClassInfo
	fns      []FnInfo
	literals []LiteralInfo
}

// NewInterner constructs an interner seeded with Any and Unit.
func NewInterner() *Interner {
	in := &Interner{
		types: make([]Type, 1, 64), // index 0 reserved for NoTypeID
	}
	in.classes = append(in.classes, ClassInfo{})
	in.fns = append(in.fns, FnInfo{})
	in.literals = append(in.literals, LiteralInfo{})
	in.builtins.Any = in.internRaw(Type{Kind: KindAny})
	in.builtins.Unit = in.internRaw(Type{Kind: KindUnit})
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	in.types = append(in.types, t)
	return TypeID(lenTypes)
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if in == nil || id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// KindOf returns the kind of id or KindInvalid.
func (in *Interner) KindOf(id TypeID) Kind {
	tt, ok := in.Lookup(id)
	if !ok {
		return KindInvalid
	}
	return tt.Kind
}

// Len reports the number of interned types excluding the sentinel.
func (in *Interner) Len() int { return len(in.types) - 1 }

// All returns every interned TypeID in allocation order.
func (in *Interner) All() []TypeID {
	out := make([]TypeID, 0, len(in.types)-1)
	for i := 1; i < len(in.types); i++ {
		id, err := safecast.Conv[uint32](i)
		if err != nil {
			panic(fmt.Errorf("type id overflow: %w", err))
		}
		out = append(out, TypeID(id))
	}
	return out
}

func appendSlot[T any](slots *[]T, v T, what string) uint32 {
	*slots = append(*slots, v)
	slot, err := safecast.Conv[uint32](len(*slots) - 1)
	if err != nil {
		panic(fmt.Errorf("%s overflow: %w", what, err))
	}
	return slot
}
