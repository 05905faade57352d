package driver

import (
	"fmt"
	"strings"

	"tower/internal/diag"
	"tower/internal/source"
	"tower/internal/tower"
)

// reportCall turns one call result into diagnostics. Calls with an
// expectation only report when they differ from it.
func reportCall(r diag.Reporter, file source.FileID, res *CallResult) {
	span := res.Span(file)
	if res.Expected {
		if len(res.Mismatch) == 0 {
			return
		}
		b := diag.ReportError(r, diag.ResExpectationMismatch, span,
			fmt.Sprintf("call %s (%s) does not resolve as expected", res.ID, res.Name))
		for _, m := range res.Mismatch {
			b.WithNote(span, m)
		}
		b.Emit()
		return
	}

	switch res.Outcome {
	case tower.OutcomeUnresolved.String():
		diag.ReportError(r, diag.ResUnresolved, span, fmt.Sprintf("unresolved reference: %s", res.Name)).Emit()
	case tower.OutcomeAmbiguous.String():
		b := diag.ReportError(r, diag.ResAmbiguous, span,
			fmt.Sprintf("call %s is ambiguous between %d candidates at %s", res.Name, len(res.Candidates), res.Group))
		for i := range res.Candidates {
			c := &res.Candidates[i]
			b.WithNote(declSpan(file, c), "candidate "+c.Signature)
		}
		b.Emit()
	case tower.OutcomeInapplicable.String():
		b := diag.ReportError(r, diag.ResInapplicable, span,
			fmt.Sprintf("none of %d candidates is applicable to %s", len(res.Candidates), res.Name))
		for i := range res.Candidates {
			c := &res.Candidates[i]
			b.WithNote(declSpan(file, c), fmt.Sprintf("%s: %s", c.Signature, defectText(c.Defects)))
		}
		b.Emit()
	default:
		if len(res.Candidates) != 1 {
			return
		}
		c := &res.Candidates[0]
		if c.Invoke {
			diag.ReportInfo(r, diag.ResResolvedViaInvoke, span,
				fmt.Sprintf("%s resolved through invoke on %s", res.Name, c.Signature)).Emit()
		}
		if res.Applicability == tower.ResolvedLowPriority.String() {
			diag.ReportInfo(r, diag.ResLowPriority, span,
				fmt.Sprintf("%s resolved to low-priority %s", res.Name, c.Signature)).Emit()
		}
	}
}

func declSpan(file source.FileID, c *CandidateResult) source.Span {
	if c.DeclEnd == 0 {
		return source.Span{}
	}
	return source.Span{File: file, Start: c.DeclStart, End: c.DeclEnd}
}

func defectText(ds []DefectResult) string {
	if len(ds) == 0 {
		return "no defect recorded"
	}
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = fmt.Sprintf("[%s] %s", d.ID, d.Message)
	}
	return strings.Join(parts, "; ")
}
