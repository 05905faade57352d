package types

import "slices"

// FnInfo stores metadata for function types. A valid Receiver makes it an
// extension function type (R.(A) -> C).
type FnInfo struct {
	Receiver TypeID
	Params   []TypeID
	Result   TypeID
}

// RegisterFn creates or finds a function type.
func (in *Interner) RegisterFn(receiver TypeID, params []TypeID, result TypeID) TypeID {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != KindFn || int(tt.Payload) >= len(in.fns) {
			continue
		}
		info := in.fns[tt.Payload]
		if info.Receiver == receiver && info.Result == result && slices.Equal(info.Params, params) {
			return id
		}
	}
	slot := appendSlot(&in.fns, FnInfo{
		Receiver: receiver,
		Params:   slices.Clone(params),
		Result:   result,
	}, "fn info")
	return in.internRaw(Type{Kind: KindFn, Payload: slot})
}

// FnInfo retrieves function type metadata by TypeID.
func (in *Interner) FnInfo(id TypeID) (*FnInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindFn || int(tt.Payload) >= len(in.fns) {
		return nil, false
	}
	return &in.fns[tt.Payload], true
}

// IsExtensionFunction reports whether id is a function type with a receiver.
func (in *Interner) IsExtensionFunction(id TypeID) bool {
	info, ok := in.FnInfo(id)
	return ok && info.Receiver.IsValid()
}

// InvokeParams returns the parameter list of the synthetic invoke operator:
// the receiver (if any) followed by the declared parameters.
func (info *FnInfo) InvokeParams() []TypeID {
	if !info.Receiver.IsValid() {
		return slices.Clone(info.Params)
	}
	out := make([]TypeID, 0, len(info.Params)+1)
	out = append(out, info.Receiver)
	return append(out, info.Params...)
}
