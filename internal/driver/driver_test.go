package driver_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"tower/internal/diag"
	"tower/internal/driver"
	"tower/internal/source"
	"tower/internal/world"
)

type callSummary struct {
	ID       string
	Outcome  string
	Names    []string
	Group    string
	Mismatch []string
}

func summaries(calls []driver.CallResult) []callSummary {
	out := make([]callSummary, 0, len(calls))
	for i := range calls {
		c := &calls[i]
		out = append(out, callSummary{ID: c.ID, Outcome: c.Outcome, Names: c.Names(), Group: c.Group, Mismatch: c.Mismatch})
	}
	return out
}

func codes(bag *diag.Bag) []diag.Code {
	var out []diag.Code
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func resolveOne(t *testing.T, path string, opts driver.Options) driver.WorldResult {
	t.Helper()
	_, results, err := driver.ResolvePaths(t.Context(), []string{path}, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	return results[0]
}

func TestResolvePathsWalksDirectories(t *testing.T) {
	_, results, err := driver.ResolvePaths(t.Context(), []string{filepath.Join("testdata", "worlds")}, driver.Options{Jobs: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var paths []string
	for _, r := range results {
		paths = append(paths, r.Path)
	}
	want := []string{
		filepath.Join("testdata", "worlds", "basic.toml"),
		filepath.Join("testdata", "worlds", "nested", "invoke.toml"),
	}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}

	basic := results[0]
	if basic.Failed() || basic.Bag.Len() != 0 {
		t.Fatalf("expected a clean world, got %+v", basic.Bag.Items())
	}
	wantCalls := []callSummary{
		{ID: "local", Outcome: "resolved", Names: []string{"body::f"}, Group: "Local(0)"},
		{ID: "member", Outcome: "resolved", Names: []string{"app.A.g"}, Group: "Implicit(0).Member"},
		{ID: "top", Outcome: "resolved", Names: []string{"app.h"}, Group: "Top(0)"},
		{ID: "missing", Outcome: "unresolved", Names: []string{}},
		{ID: "wrong-argument", Outcome: "inapplicable", Names: []string{"app.take"}, Group: "Top(0)"},
	}
	if diff := cmp.Diff(wantCalls, summaries(basic.Calls), cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
	if basic.Mismatches() != 0 {
		t.Fatalf("expected no mismatches, got %d", basic.Mismatches())
	}
}

func TestInvokeResolutionIsReported(t *testing.T) {
	res := resolveOne(t, filepath.Join("testdata", "worlds", "nested", "invoke.toml"), driver.Options{})
	if res.Failed() {
		t.Fatalf("unexpected errors: %+v", res.Bag.Items())
	}
	if diff := cmp.Diff([]diag.Code{diag.ResResolvedViaInvoke}, codes(res.Bag)); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
	for _, c := range res.Calls {
		if len(c.Candidates) != 1 || !c.Candidates[0].Invoke || c.Candidates[0].Symbol != "invoke" {
			t.Fatalf("expected an invoke candidate for %s, got %+v", c.ID, c.Candidates)
		}
	}
	if got := res.Calls[1].Candidates[0].Signature; got != "operator synthetic fun invoke(Int): Unit" {
		t.Fatalf("unexpected signature %q", got)
	}
}

func TestExpectationMismatch(t *testing.T) {
	res := resolveOne(t, filepath.Join("testdata", "mismatch.toml"), driver.Options{})
	if !res.Failed() || res.Mismatches() != 1 {
		t.Fatalf("expected one mismatch, got %d", res.Mismatches())
	}
	want := []string{
		"candidates: expected [app.k], got [app.f]",
		"group: expected Top(1), got Top(0)",
	}
	if diff := cmp.Diff(want, res.Calls[0].Mismatch); diff != "" {
		t.Fatalf("mismatch lines differ (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]diag.Code{diag.ResExpectationMismatch, diag.ResUnresolved}, codes(res.Bag)); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
	first := res.Bag.Items()[0]
	if first.Primary.File != res.FileID || len(first.Notes) != 2 {
		t.Fatalf("expected a located diagnostic with two notes, got %+v", first)
	}
}

func TestBrokenWorldIsReported(t *testing.T) {
	res := resolveOne(t, filepath.Join("testdata", "broken.toml"), driver.Options{})
	if !res.Failed() || res.World != nil || res.Calls != nil {
		t.Fatalf("expected a failed load, got %+v", res)
	}
	if diff := cmp.Diff([]diag.Code{diag.WorldUnknownClass}, codes(res.Bag)); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestMissingPath(t *testing.T) {
	if _, _, err := driver.ResolvePaths(t.Context(), []string{filepath.Join("testdata", "nope")}, driver.Options{}); err == nil {
		t.Fatalf("expected an error for a missing path")
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, _, err := driver.ResolvePaths(ctx, []string{filepath.Join("testdata", "worlds")}, driver.Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWorkerCountDoesNotChangeResults(t *testing.T) {
	bag := diag.NewBag(10)
	w, err := world.Load(source.NewFileSet(), filepath.Join("testdata", "worlds", "basic.toml"), diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatalf("load: %v %+v", err, bag.Items())
	}
	seq, err := driver.ResolveWorld(t.Context(), w, driver.Options{Jobs: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for range 5 {
		par, err := driver.ResolveWorld(t.Context(), w, driver.Options{Jobs: 4})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff(seq, par); diff != "" {
			t.Fatalf("parallel results differ (-seq +par):\n%s", diff)
		}
	}
}

func TestDiskCache(t *testing.T) {
	cache, err := driver.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	path := filepath.Join("testdata", "mismatch.toml")
	opts := driver.Options{Cache: cache}

	first := resolveOne(t, path, opts)
	second := resolveOne(t, path, opts)
	if first.Cached || !second.Cached {
		t.Fatalf("expected a miss then a hit, got %v and %v", first.Cached, second.Cached)
	}
	if diff := cmp.Diff(first.Calls, second.Calls, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("cached calls differ (-fresh +cached):\n%s", diff)
	}
	if diff := cmp.Diff(first.Bag.Items(), second.Bag.Items(), cmpopts.EquateEmpty(), cmpopts.IgnoreFields(source.Span{}, "File")); diff != "" {
		t.Fatalf("cached diagnostics differ (-fresh +cached):\n%s", diff)
	}
	if second.Bag.Items()[0].Primary.File != second.FileID {
		t.Fatalf("restored diagnostics must point into the reloaded file")
	}

	opts.HidesMembers = []string{"f"}
	if third := resolveOne(t, path, opts); third.Cached {
		t.Fatalf("changing options must miss the cache")
	}

	if err := cache.DropAll(); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if again := resolveOne(t, path, driver.Options{Cache: cache}); again.Cached {
		t.Fatalf("expected a miss after DropAll")
	}
}

func TestProgressAndTimings(t *testing.T) {
	var (
		mu     sync.Mutex
		events = map[string][]driver.Status{}
		phases []string
	)
	opts := driver.Options{
		Jobs:    2,
		Timings: true,
		Progress: func(ev driver.Event) {
			mu.Lock()
			defer mu.Unlock()
			events[filepath.Base(ev.Path)] = append(events[filepath.Base(ev.Path)], ev.Status)
		},
		Phases: func(ev driver.PhaseEvent) {
			mu.Lock()
			defer mu.Unlock()
			if ev.Status == driver.PhaseEnd && filepath.Base(ev.Path) == "basic.toml" {
				phases = append(phases, ev.Name)
			}
		},
	}
	_, results, err := driver.ResolvePaths(t.Context(), []string{filepath.Join("testdata", "worlds")}, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []driver.Status{driver.StatusQueued, driver.StatusLoading, driver.StatusResolving, driver.StatusDone}
	for _, name := range []string{"basic.toml", "invoke.toml"} {
		if diff := cmp.Diff(want, events[name]); diff != "" {
			t.Fatalf("%s: events mismatch (-want +got):\n%s", name, diff)
		}
	}
	if diff := cmp.Diff([]string{"load", "resolve", "report"}, phases); diff != "" {
		t.Fatalf("phases mismatch (-want +got):\n%s", diff)
	}

	basic := results[0]
	if basic.Timing == nil || len(basic.Timing.Phases) != 3 {
		t.Fatalf("expected a timing report with three phases, got %+v", basic.Timing)
	}
	if diff := cmp.Diff([]diag.Code{diag.ObsTimings}, codes(basic.Bag)); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveCall(t *testing.T) {
	bag := diag.NewBag(10)
	w, err := world.Load(source.NewFileSet(), filepath.Join("testdata", "worlds", "basic.toml"), diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatalf("load: %v %+v", err, bag.Items())
	}
	call, ok := w.Call("member")
	if !ok {
		t.Fatalf("call member not found")
	}
	res := driver.ResolveCall(t.Context(), w, call, driver.Options{})
	want := callSummary{ID: "member", Outcome: "resolved", Names: []string{"app.A.g"}, Group: "Implicit(0).Member"}
	if diff := cmp.Diff(want, summaries([]driver.CallResult{res})[0], cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("call mismatch (-want +got):\n%s", diff)
	}
}
