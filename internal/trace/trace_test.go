package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestLevelShouldEmit(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelPhase, ScopeCall, true},
		{LevelPhase, ScopeLevel, false},
		{LevelDetail, ScopeLevel, true},
		{LevelDetail, ScopeCandidate, false},
		{LevelDebug, ScopeCandidate, true},
	}
	for _, c := range cases {
		if got := c.level.ShouldEmit(c.scope); got != c.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", c.level, c.scope, got, c.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("DETAIL")
	if err != nil || lvl != LevelDetail {
		t.Fatalf("expected detail, got %v (%v)", lvl, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestRingWrapsAround(t *testing.T) {
	r := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		r.Emit(&Event{Kind: KindPoint, Scope: ScopeCall, Name: name})
	}
	snap := r.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected 3 events, got %d", len(snap))
	}
	got := snap[0].Name + snap[1].Name + snap[2].Name
	if got != "cde" {
		t.Fatalf("expected cde, got %s", got)
	}
	if d := r.Dropped(); d != 2 {
		t.Fatalf("expected 2 dropped events, got %d", d)
	}
}

func TestRingDumpStopsAtScope(t *testing.T) {
	r := NewRingTracer(8, LevelDebug)
	r.Emit(&Event{Kind: KindPoint, Scope: ScopeCall, Name: "run"})
	r.Emit(&Event{Kind: KindPoint, Scope: ScopeLevel, Name: "level"})
	r.Emit(&Event{Kind: KindPoint, Scope: ScopeCandidate, Name: "candidate"})

	var buf bytes.Buffer
	n, err := r.Dump(&buf, FormatText, ScopeLevel)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if n != 2 || strings.Contains(buf.String(), "candidate") || !strings.Contains(buf.String(), "level") {
		t.Fatalf("expected run and level only, got %d events:\n%s", n, buf.String())
	}
	if n, _ := r.Dump(&bytes.Buffer{}, FormatText, 0); n != 3 {
		t.Fatalf("zero scope must dump everything, got %d", n)
	}
	if r.Dropped() != 0 {
		t.Fatalf("nothing must be dropped before the ring wraps")
	}
	if _, err := ParseScope("stack"); err == nil {
		t.Fatalf("expected error for unknown scope")
	}
}

func TestHeartbeatStopsWithContext(t *testing.T) {
	if StartHeartbeat(context.Background(), Nop, time.Millisecond) != nil {
		t.Fatalf("heartbeat on a disabled tracer must be nil")
	}
	r := NewRingTracer(64, LevelPhase)
	ctx, cancel := context.WithCancel(context.Background())
	h := StartHeartbeat(ctx, r, time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for len(r.Snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()
	h.Stop()
	h.Stop()

	snap := r.Snapshot()
	if len(snap) == 0 {
		t.Fatalf("expected at least one heartbeat")
	}
	if ev := snap[0]; ev.Kind != KindHeartbeat || ev.Detail != "#1" || ev.Extra["goroutines"] == "" {
		t.Fatalf("unexpected heartbeat %+v", ev)
	}
	n := len(snap)
	time.Sleep(5 * time.Millisecond)
	if len(r.Snapshot()) != n {
		t.Fatalf("heartbeat kept emitting after Stop")
	}
}

func TestSpanAndPointText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)

	span := Begin(tr, ScopeCall, "resolve:f", 0)
	Point(tr, ScopeLevel, "level", "Local(0)", span.ID(), map[string]string{"kind": "scope", "token": "functions"})
	Point(tr, ScopeCandidate, "candidate", "dropped", span.ID(), nil)
	span.WithExtra("result", "ok").End("")

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines (candidate filtered out), got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "→ resolve:f") {
		t.Errorf("unexpected begin line: %q", lines[0])
	}
	if !strings.Contains(lines[1], "level (Local(0)) {kind=scope, token=functions}") {
		t.Errorf("unexpected point line: %q", lines[1])
	}
	if !strings.Contains(lines[2], "← resolve:f {result=ok}") {
		t.Errorf("unexpected end line: %q", lines[2])
	}
}

func TestMultiAndNDJSON(t *testing.T) {
	var buf bytes.Buffer
	stream := NewStreamTracer(&buf, LevelPhase, FormatNDJSON)
	ring := NewRingTracer(8, LevelPhase)
	m := NewMultiTracer(LevelPhase, stream, ring)

	Begin(m, ScopeDriver, "load", 0).End("done")

	if m.Ring() != ring {
		t.Fatalf("expected Ring() to return the ring child")
	}
	if n := len(ring.Snapshot()); n != 2 {
		t.Fatalf("expected 2 ring events, got %d", n)
	}
	dec := json.NewDecoder(&buf)
	var first map[string]any
	if err := dec.Decode(&first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if first["kind"] != "begin" || first["name"] != "load" {
		t.Fatalf("unexpected event: %v", first)
	}
}

func TestContextFallsBackToNop(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatalf("expected Nop tracer by default")
	}
	r := NewRingTracer(1, LevelPhase)
	ctx := WithTracer(context.Background(), r)
	if FromContext(ctx) != Tracer(r) {
		t.Fatalf("expected tracer from context")
	}
	if s := Begin(Nop, ScopeCall, "x", 0); s.ID() != 0 {
		t.Fatalf("expected zero span id for disabled tracer")
	}
}
