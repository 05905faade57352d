package stages

import (
	"strconv"

	"tower/internal/diag"
	"tower/internal/symbols"
	"tower/internal/tower"
)

func checkHidden(r *Runner, st *State) (tower.Applicability, *tower.Defect) {
	if st.Symbol.Has(symbols.FlagHidden) {
		return tower.Hidden, defect(diag.ResHidden, "'%s' is hidden", r.table.Name(st.Candidate.Symbol))
	}
	return tower.Resolved, nil
}

// checkReceivers matches the receivers the tower attached against the
// declaration. The builtin extension-invoke receiver consumes the first
// invoke parameter.
func checkReceivers(r *Runner, st *State) (tower.Applicability, *tower.Defect) {
	ti := r.table.Types
	c := st.Candidate
	if c.Extension != nil {
		expected := st.Symbol.Receiver
		if !st.Symbol.IsExtension() {
			// property of extension function type used as invoke receiver
			info, ok := ti.FnInfo(st.Symbol.Result)
			if !ok || !info.Receiver.IsValid() {
				return tower.WrongReceiver, defect(diag.ResWrongReceiver, "'%s' takes no extension receiver", r.table.Name(c.Symbol))
			}
			expected = info.Receiver
		}
		if !ti.IsSubtype(c.Extension.Type(), expected) {
			return tower.WrongReceiver, defect(diag.ResWrongReceiver, "receiver %s of type %s does not match %s",
				c.Extension, ti.String(c.Extension.Type()), ti.String(expected))
		}
	}
	if c.BuiltinInvokeExtension != nil {
		if len(st.Params) == 0 || !ti.IsSubtype(c.BuiltinInvokeExtension.Type(), st.Params[0].Type) {
			return tower.WrongReceiver, defect(diag.ResWrongReceiver, "receiver %s does not fit invoke of %s",
				c.BuiltinInvokeExtension, r.table.QualifiedName(c.Symbol))
		}
		st.Params = st.Params[1:]
	}
	return tower.Resolved, nil
}

func checkOperator(r *Runner, st *State) (tower.Applicability, *tower.Defect) {
	if st.Candidate.Call.ExplicitInvoke && st.Symbol.Kind == symbols.SymbolFunction && !st.Symbol.Has(symbols.FlagOperator) {
		return tower.Inapplicable, defect(diag.ResNotOperator, "'%s' is not declared as operator", r.table.QualifiedName(st.Candidate.Symbol))
	}
	return tower.Resolved, nil
}

// mapArguments binds arguments to parameters: positional arguments in
// order, a vararg parameter absorbs the remaining positional ones, named
// arguments bind by name, and every unbound parameter needs a default.
func mapArguments(r *Runner, st *State) (tower.Applicability, *tower.Defect) {
	call := st.Candidate.Call
	if call.Kind != tower.CallFunction || st.Symbol.Kind != symbols.SymbolFunction {
		return tower.Resolved, nil
	}
	bound := make([]bool, len(st.Params))
	st.Mapping = make([]int, len(call.Args))
	next := 0
	named := false
	for i, arg := range call.Args {
		if arg.Name.IsValid() {
			named = true
			idx := -1
			for pi, p := range st.Params {
				if p.Name == arg.Name {
					idx = pi
					break
				}
			}
			if idx < 0 {
				return tower.ParameterMappingError, defect(diag.ResParameterMapping, "no parameter named '%s'", r.table.Strings.MustLookup(arg.Name))
			}
			if bound[idx] {
				return tower.ParameterMappingError, defect(diag.ResParameterMapping, "parameter '%s' is already bound", r.table.Strings.MustLookup(arg.Name))
			}
			bound[idx] = true
			st.Mapping[i] = idx
			continue
		}
		if named {
			return tower.ParameterMappingError, defect(diag.ResParameterMapping, "positional argument after named arguments")
		}
		if next >= len(st.Params) {
			return tower.ParameterMappingError, defect(diag.ResParameterMapping, "too many arguments: expected %d", len(st.Params))
		}
		bound[next] = true
		st.Mapping[i] = next
		if !st.Params[next].Vararg {
			next++
		}
	}
	for pi, p := range st.Params {
		if !bound[pi] && !p.HasDefault && !p.Vararg {
			name := r.table.Strings.MustLookup(p.Name)
			if name == "" {
				name = "#" + strconv.Itoa(pi)
			}
			return tower.ParameterMappingError, defect(diag.ResParameterMapping, "no value passed for parameter '%s'", name)
		}
	}
	return tower.Resolved, nil
}

func checkArguments(r *Runner, st *State) (tower.Applicability, *tower.Defect) {
	ti := r.table.Types
	for i, arg := range st.Candidate.Call.Args {
		if i >= len(st.Mapping) {
			break
		}
		p := st.Params[st.Mapping[i]]
		if !ti.IsSubtype(arg.Type, p.Type) {
			return tower.Inapplicable, defect(diag.ResArgumentMismatch, "argument %d: %s is not assignable to %s",
				i+1, ti.String(arg.Type), ti.String(p.Type))
		}
	}
	return tower.Resolved, nil
}

func checkLowPriority(r *Runner, st *State) (tower.Applicability, *tower.Defect) {
	if st.Symbol.Has(symbols.FlagLowPriority) {
		return tower.ResolvedLowPriority, defect(diag.ResLowPriority, "'%s' has low priority", r.table.QualifiedName(st.Candidate.Symbol))
	}
	return tower.Resolved, nil
}
