// Package trace provides the tracing subsystem of the resolver toolchain.
//
// Tracing records what the resolver probed and in which order: one span per
// resolved call, one point per probed tower level (its group and level kind)
// and one point per consumed candidate (symbol and verdict). It is the tool
// of choice when a call binds to an unexpected declaration.
//
// # Usage
//
//	tower resolve --trace=- --trace-level=detail world.toml
//	tower explain --call c3 world.toml   # debug level, stdout
//
// # Tracers
//
//   - Nop: zero-overhead tracer when disabled
//   - StreamTracer: immediate write to a file/stderr
//   - RingTracer: circular buffer for crash dumps
//   - MultiTracer: fan-out
//
// # Levels and scopes
//
// Events are categorized by scope (Driver < Call < Level < Candidate) and
// filtered by level:
//
//   - LevelOff: nothing
//   - LevelError: only crash dumps
//   - LevelPhase: driver phases and calls
//   - LevelDetail: plus probed levels
//   - LevelDebug: plus every candidate
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeCall, "resolve:f", parentID)
//	defer span.End("")
package trace
