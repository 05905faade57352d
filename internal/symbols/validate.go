package symbols

import (
	"errors"
	"fmt"

	"fortio.org/safecast"
)

// Validate walks internal arenas checking structural invariants. Returns nil if
// everything is consistent; otherwise aggregates all detected issues.
func (t *Table) Validate() error {
	var errs []error

	for idx := 1; idx < len(t.Scopes.data); idx++ {
		scopeID, err := toScopeID(idx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		scope := &t.Scopes.data[idx]
		if scope.Kind == ScopeInvalid {
			errs = append(errs, fmt.Errorf("scope %d has invalid kind", scopeID))
		}
		indexed := 0
		for name, bucket := range scope.NameIndex {
			for _, id := range bucket {
				sym := t.Symbols.Get(id)
				switch {
				case sym == nil:
					errs = append(errs, fmt.Errorf("scope %d indexes missing symbol %d", scopeID, id))
				case sym.Name != name:
					errs = append(errs, fmt.Errorf("scope %d indexes symbol %d under a foreign name", scopeID, id))
				case sym.Scope != scopeID:
					errs = append(errs, fmt.Errorf("symbol %d indexed by scope %d but declared in %d", id, scopeID, sym.Scope))
				}
				indexed++
			}
		}
		if indexed != len(scope.Symbols) {
			errs = append(errs, fmt.Errorf("scope %d name index covers %d of %d symbols", scopeID, indexed, len(scope.Symbols)))
		}
	}

	for idx := 1; idx < len(t.Symbols.data); idx++ {
		symID, err := toSymbolID(idx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		sym := &t.Symbols.data[idx]
		if sym.Kind == SymbolInvalid {
			errs = append(errs, fmt.Errorf("symbol %d has invalid kind", symID))
		}
		if sym.Kind != SymbolClass {
			continue
		}
		if !sym.Type.IsValid() || !sym.Members.IsValid() {
			errs = append(errs, fmt.Errorf("class %d lacks a type or member scope", symID))
		}
		if sym.Companion.IsValid() {
			comp := t.Symbols.Get(sym.Companion)
			if comp == nil || comp.ClassKind != ClassCompanion {
				errs = append(errs, fmt.Errorf("class %d companion %d is not a companion object", symID, sym.Companion))
			}
		}
	}

	return errors.Join(errs...)
}

func toScopeID(idx int) (ScopeID, error) {
	v, err := safecast.Conv[uint32](idx)
	if err != nil {
		return NoScopeID, fmt.Errorf("scope index overflow: %w", err)
	}
	return ScopeID(v), nil
}

func toSymbolID(idx int) (SymbolID, error) {
	v, err := safecast.Conv[uint32](idx)
	if err != nil {
		return NoSymbolID, fmt.Errorf("symbol index overflow: %w", err)
	}
	return SymbolID(v), nil
}
