package symbols

import "tower/internal/types"

// MemberScope returns the instance member view of a receiver type, or nil
// when the type has no members. Integer literals expose the members of
// their default type.
func (t *Table) MemberScope(typ types.TypeID) View {
	switch t.Types.KindOf(typ) {
	case types.KindClass:
		return &MemberView{t: t, class: typ}
	case types.KindIntLiteral:
		return t.MemberScope(t.Types.LiteralDefault(typ))
	case types.KindFn:
		scope := t.invokeScope(typ)
		if !scope.IsValid() {
			return nil
		}
		return &FnTypeView{t: t, fn: typ, scope: scope}
	default:
		return nil
	}
}

// StaticScope returns the static view of the class declaring typ.
func (t *Table) StaticScope(typ types.TypeID) View {
	class := t.ClassOfType(typ)
	if !class.IsValid() {
		return nil
	}
	return &StaticView{t: t, class: class}
}

// QualifierScope returns the view seen through a class qualifier.
func (t *Table) QualifierScope(class SymbolID) View {
	if sym := t.Symbols.Get(class); sym == nil || sym.Kind != SymbolClass {
		return nil
	}
	return &QualifierView{t: t, class: class}
}

// PackageMember returns the importing view of pkg.name.
func (t *Table) PackageMember(pkg string, name string) View {
	if _, ok := t.LookupPackage(pkg); !ok {
		return nil
	}
	return NewImportingView(t, pkg, t.Strings.Intern(name))
}

// ReturnType is the type of the value a symbol produces when referenced:
// the return type of functions, the type of properties and, for classes
// used as values, the object or companion type.
func (t *Table) ReturnType(id SymbolID) types.TypeID {
	sym := t.Symbols.Get(id)
	if sym == nil {
		return types.NoTypeID
	}
	switch sym.Kind {
	case SymbolFunction, SymbolProperty:
		return sym.Result
	case SymbolClass:
		if sym.ClassKind.IsSingleton() {
			return sym.Type
		}
		if comp := t.Symbols.Get(sym.Companion); comp != nil {
			return comp.Type
		}
	}
	return types.NoTypeID
}

// IsIntegerLiteral reports whether typ is an integer literal type.
func (t *Table) IsIntegerLiteral(typ types.TypeID) bool { return t.Types.IsIntegerLiteral(typ) }

// IsExtensionFunction reports whether typ is an extension function type.
func (t *Table) IsExtensionFunction(typ types.TypeID) bool { return t.Types.IsExtensionFunction(typ) }

// IsSubtype reports whether sub is assignable to super.
func (t *Table) IsSubtype(sub, super types.TypeID) bool { return t.Types.IsSubtype(sub, super) }

// TypeString renders typ.
func (t *Table) TypeString(typ types.TypeID) string { return t.Types.String(typ) }
