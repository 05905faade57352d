package symbols

import (
	"tower/internal/source"
	"tower/internal/types"
)

// SymbolKind classifies the semantic meaning of a symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolFunction
	SymbolProperty
	SymbolClass
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolFunction:
		return "function"
	case SymbolProperty:
		return "property"
	case SymbolClass:
		return "class"
	default:
		return "invalid"
	}
}

// ClassKind refines SymbolClass.
type ClassKind uint8

const (
	ClassPlain ClassKind = iota
	ClassInterface
	ClassObject
	ClassCompanion
)

func (k ClassKind) String() string {
	switch k {
	case ClassInterface:
		return "interface"
	case ClassObject:
		return "object"
	case ClassCompanion:
		return "companion"
	default:
		return "class"
	}
}

// IsSingleton reports whether values of the class kind are singletons.
func (k ClassKind) IsSingleton() bool {
	return k == ClassObject || k == ClassCompanion
}

// SymbolFlags encode misc attributes for quick checks.
type SymbolFlags uint16

const (
	FlagStatic SymbolFlags = 1 << iota
	FlagInner
	FlagOperator
	FlagHidden
	FlagLowPriority
	FlagSynthetic
)

// Strings returns a slice of textual flag labels.
func (f SymbolFlags) Strings() []string {
	if f == 0 {
		return nil
	}
	labels := make([]string, 0, 4)
	if f&FlagStatic != 0 {
		labels = append(labels, "static")
	}
	if f&FlagInner != 0 {
		labels = append(labels, "inner")
	}
	if f&FlagOperator != 0 {
		labels = append(labels, "operator")
	}
	if f&FlagHidden != 0 {
		labels = append(labels, "hidden")
	}
	if f&FlagLowPriority != 0 {
		labels = append(labels, "low-priority")
	}
	if f&FlagSynthetic != 0 {
		labels = append(labels, "synthetic")
	}
	return labels
}

// Param is one value parameter of a function.
type Param struct {
	Name       source.StringID
	Type       types.TypeID
	HasDefault bool
	Vararg     bool
}

// Symbol describes a named declaration.
//
// For functions Result is the return type, for properties it is the
// property type. Receiver makes a function or property an extension.
// Classes carry their nominal Type, member scope and optional companion.
type Symbol struct {
	Name      source.StringID
	Kind      SymbolKind
	ClassKind ClassKind
	Flags     SymbolFlags
	Scope     ScopeID
	Span      source.Span
	Receiver  types.TypeID
	Params    []Param
	Result    types.TypeID
	Type      types.TypeID
	Members   ScopeID
	Companion SymbolID
	Outer     SymbolID
}

// Has reports whether all flags in f are set.
func (s *Symbol) Has(f SymbolFlags) bool { return s.Flags&f == f }

// IsExtension reports whether the symbol declares a receiver type.
func (s *Symbol) IsExtension() bool { return s.Receiver.IsValid() }

// IsValueClassifier reports whether the class can be used as a value:
// objects, companions and classes with a companion object.
func (s *Symbol) IsValueClassifier() bool {
	return s.Kind == SymbolClass && (s.ClassKind.IsSingleton() || s.Companion.IsValid())
}

// KindMask restricts lookup to specific symbol kinds.
type KindMask uint32

const (
	// KindMaskNone filters out all kinds.
	KindMaskNone KindMask = 0
	// KindMaskAny allows all kinds.
	KindMaskAny KindMask = ^KindMask(0)
)

// Mask converts a symbol kind into a KindMask bit.
func (k SymbolKind) Mask() KindMask {
	return KindMask(1 << uint(k))
}

func matchKind(mask KindMask, kind SymbolKind) bool {
	return mask == KindMaskAny || mask&kind.Mask() != 0
}

// sameSignature reports whether b would be overridden by a in a subclass.
func sameSignature(a, b *Symbol) bool {
	if a.Kind != b.Kind || a.Receiver != b.Receiver || len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if a.Params[i].Type != b.Params[i].Type {
			return false
		}
	}
	return true
}
