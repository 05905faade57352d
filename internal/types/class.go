package types

import "slices"

// ClassInfo stores metadata for a nominal class type.
type ClassInfo struct {
	Name   string
	Supers []TypeID
	// Ref is an opaque back-reference to the declaring symbol.
	Ref uint32
}

// RegisterClass allocates a nominal class type.
func (in *Interner) RegisterClass(name string, ref uint32) TypeID {
	slot := appendSlot(&in.classes, ClassInfo{Name: name, Ref: ref}, "class info")
	return in.internRaw(Type{Kind: KindClass, Payload: slot})
}

// SetSupertypes replaces the direct supertypes of a class type.
func (in *Interner) SetSupertypes(id TypeID, supers ...TypeID) {
	info := in.classInfo(id)
	if info == nil {
		return
	}
	info.Supers = slices.Clone(supers)
}

// ClassInfo returns class metadata for id.
func (in *Interner) ClassInfo(id TypeID) (*ClassInfo, bool) {
	info := in.classInfo(id)
	return info, info != nil
}

func (in *Interner) classInfo(id TypeID) *ClassInfo {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindClass || int(tt.Payload) >= len(in.classes) {
		return nil
	}
	return &in.classes[tt.Payload]
}

// Supertypes lists all transitive supertypes of a class type, nearest first.
// The order is breadth-first over declaration order and each type appears once.
func (in *Interner) Supertypes(id TypeID) []TypeID {
	info := in.classInfo(id)
	if info == nil {
		return nil
	}
	seen := map[TypeID]struct{}{id: {}}
	var out []TypeID
	queue := slices.Clone(info.Supers)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if _, ok := seen[next]; ok {
			continue
		}
		seen[next] = struct{}{}
		out = append(out, next)
		if si := in.classInfo(next); si != nil {
			queue = append(queue, si.Supers...)
		}
	}
	return out
}
