package driver

import (
	"fmt"
	"slices"
	"strings"

	"tower/internal/source"
	"tower/internal/symbols"
	"tower/internal/tower"
	"tower/internal/types"
	"tower/internal/world"
)

// DefectResult is one reason a candidate was rejected or demoted.
type DefectResult struct {
	Code    uint16 `json:"code"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

// CandidateResult describes one kept candidate of a call.
type CandidateResult struct {
	Symbol    string         `json:"symbol"`
	Signature string         `json:"signature"`
	Kind      string         `json:"explicit_receiver"`
	Dispatch  string         `json:"dispatch,omitempty"`
	Extension string         `json:"extension,omitempty"`
	Invoke    bool           `json:"invoke,omitempty"`
	Defects   []DefectResult `json:"defects,omitempty"`
	DeclStart uint32         `json:"-"`
	DeclEnd   uint32         `json:"-"`
}

// CallResult is the resolution of one call site.
type CallResult struct {
	ID            string            `json:"id"`
	Context       string            `json:"context"`
	Name          string            `json:"name"`
	Outcome       string            `json:"outcome"`
	Applicability string            `json:"applicability"`
	Group         string            `json:"group,omitempty"`
	Candidates    []CandidateResult `json:"candidates,omitempty"`
	Consumed      int               `json:"consumed"`
	Expected      bool              `json:"expected"`
	Mismatch      []string          `json:"mismatch,omitempty"`
	Start         uint32            `json:"-"`
	End           uint32            `json:"-"`
}

// Names returns the sorted qualified names of the kept candidates.
func (r *CallResult) Names() []string {
	names := make([]string, 0, len(r.Candidates))
	for i := range r.Candidates {
		names = append(names, r.Candidates[i].Symbol)
	}
	slices.Sort(names)
	return names
}

// Span returns the call site span inside file.
func (r *CallResult) Span(file source.FileID) source.Span {
	return source.Span{File: file, Start: r.Start, End: r.End}
}

// Failed reports whether the call did not resolve to a single candidate or
// differs from its expectation.
func (r *CallResult) Failed() bool {
	if r.Expected {
		return len(r.Mismatch) > 0
	}
	return r.Outcome != tower.OutcomeResolved.String()
}

// summarize converts a finished collector into a CallResult.
func summarize(w *world.World, call *world.Call, c *tower.Collector) CallResult {
	res := CallResult{
		ID:            call.ID,
		Context:       call.Context.Name,
		Name:          w.Table.Strings.MustLookup(call.Info.Name),
		Outcome:       c.Outcome().String(),
		Applicability: c.Applicability().String(),
		Consumed:      c.Consumed(),
		Expected:      !call.Expect.IsZero(),
		Start:         call.Span.Start,
		End:           call.Span.End,
	}
	if c.Outcome() != tower.OutcomeUnresolved {
		res.Group = c.BestGroup().String()
	}
	for _, r := range c.Best() {
		res.Candidates = append(res.Candidates, describeCandidate(w.Table, r))
	}
	res.Mismatch = checkExpectation(call.Expect, &res)
	return res
}

func describeCandidate(t *symbols.Table, r tower.Ranked) CandidateResult {
	c := r.Candidate
	out := CandidateResult{
		Symbol:    t.QualifiedName(c.Symbol),
		Signature: Signature(t, c.Symbol),
		Kind:      c.ExplicitKind.String(),
		Dispatch:  receiverText(c.Dispatch),
		Extension: receiverText(c.Extension),
		Invoke:    c.Call != nil && c.Call.ExplicitInvoke,
	}
	if c.BuiltinInvokeExtension != nil {
		out.Extension = receiverText(c.BuiltinInvokeExtension)
		out.Invoke = true
	}
	if sym := t.Symbol(c.Symbol); sym != nil && !sym.Has(symbols.FlagSynthetic) {
		out.DeclStart, out.DeclEnd = sym.Span.Start, sym.Span.End
	}
	for _, d := range r.Verdict.Defects {
		out.Defects = append(out.Defects, DefectResult{Code: uint16(d.Code), ID: d.Code.ID(), Message: d.Message})
	}
	return out
}

func receiverText(r tower.ReceiverValue) string {
	if r == nil {
		return ""
	}
	return r.String()
}

// Signature renders a declaration the way world files describe it,
// e.g. "fun A.f(x: Int, vararg rest: Int = _): Unit".
func Signature(t *symbols.Table, id symbols.SymbolID) string {
	sym := t.Symbol(id)
	if sym == nil {
		return "<invalid>"
	}
	var sb strings.Builder
	for _, f := range sym.Flags.Strings() {
		sb.WriteString(f)
		sb.WriteByte(' ')
	}
	switch sym.Kind {
	case symbols.SymbolClass:
		fmt.Fprintf(&sb, "%s %s", sym.ClassKind, t.QualifiedName(id))
		return sb.String()
	case symbols.SymbolProperty:
		sb.WriteString("val ")
	default:
		sb.WriteString("fun ")
	}
	writeReceiver(&sb, t.Types, sym.Receiver)
	sb.WriteString(t.Name(id))
	if sym.Kind == symbols.SymbolFunction {
		sb.WriteByte('(')
		for i, p := range sym.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			if p.Vararg {
				sb.WriteString("vararg ")
			}
			if p.Name.IsValid() {
				sb.WriteString(t.Strings.MustLookup(p.Name))
				sb.WriteString(": ")
			}
			sb.WriteString(t.Types.String(p.Type))
			if p.HasDefault {
				sb.WriteString(" = _")
			}
		}
		sb.WriteByte(')')
	}
	if sym.Result.IsValid() {
		sb.WriteString(": ")
		sb.WriteString(t.Types.String(sym.Result))
	}
	return sb.String()
}

func writeReceiver(sb *strings.Builder, in *types.Interner, recv types.TypeID) {
	if !recv.IsValid() {
		return
	}
	if in.KindOf(recv) == types.KindFn {
		sb.WriteByte('(')
		sb.WriteString(in.String(recv))
		sb.WriteByte(')')
	} else {
		sb.WriteString(in.String(recv))
	}
	sb.WriteByte('.')
}
