// Package tower resolves a call site to the declarations it may refer to.
//
// Scopes visible at the call are probed as a tower of levels ordered by a
// Group (priority path). Every symbol with the requested name found on a
// level becomes a Candidate that is checked by an external StageRunner and
// consumed by a Collector, which keeps the most applicable candidates of the
// lowest group. Resolution stops at the first level that yields a
// successful candidate.
//
// A function call that finds no function may still resolve through a
// property or object with an invoke operator. Such invoke levels are
// queued by the Manager and processed once the tower reaches their group.
//
// The package is single threaded: a Resolver serves one call at a time and
// must not be shared between goroutines.
package tower
