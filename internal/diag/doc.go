// Package diag defines the diagnostic model shared by the world loader, the
// resolution driver and the CLI.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity: Info, Warning, Error.
//   - Code: compact numeric identifier (see codes.go) with a stable string form.
//   - Message: short, actionable text.
//   - Primary: the source.Span the finding points at (a world-file table).
//   - Notes: optional secondary spans, e.g. the candidates of an ambiguity.
//
// Unresolved, ambiguous and inapplicable calls are normal outcomes of
// resolution; the driver turns them into diagnostics here instead of
// returning Go errors. Programming-contract violations inside the resolver
// are not diagnostics, they panic.
//
// # Emitting diagnostics
//
// Producers use a Reporter so emission stays decoupled from storage:
//
//	diag.ReportError(r, diag.ResAmbiguous, span, msg).
//		WithNote(otherSpan, "candidate declared here").
//		Emit()
//
// BagReporter collects into a Bag that supports sorting and deduplication.
// Rendering lives in internal/diagfmt.
package diag
