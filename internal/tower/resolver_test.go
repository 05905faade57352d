package tower_test

import (
	"context"
	"errors"
	"testing"

	"tower/internal/diag"
	"tower/internal/symbols"
	"tower/internal/trace"
	"tower/internal/tower"
	"tower/internal/types"
)

const none = types.NoTypeID

func TestLocalShadowsTopLevel(t *testing.T) {
	w := newWorld(t)
	w.fn(w.pkg, "f", 0, none)
	inner := w.local()
	outer := w.local()
	innerF := w.fn(inner, "f", 0, none)
	w.fn(outer, "f", 0, none)
	outerOnly := w.fn(outer, "g", 0, none)
	env := w.env()

	w.expectSingle(resolve(env, nil, w.call(tower.CallFunction, "f", nil)), innerF, tower.Local(0))
	w.expectSingle(resolve(env, nil, w.call(tower.CallFunction, "g", nil)), outerOnly, tower.Local(1))
}

func TestLocalVariableShadowsEveryTopLevelScope(t *testing.T) {
	w := newWorld(t)
	w.prop(w.pkg, "x", none, w.unit)
	lib := w.table.Package("lib")
	w.prop(lib, "x", none, w.unit)
	libOnly := w.prop(lib, "y", none, w.unit)
	localX := w.prop(w.local(), "x", none, w.unit)
	env := w.env()
	env.TopLevel = append(env.TopLevel, symbols.NewScopeView(w.table, lib))

	w.expectSingle(resolve(env, nil, w.call(tower.CallVariableAccess, "x", nil)), localX, tower.Local(0))
	w.expectSingle(resolve(env, nil, w.call(tower.CallVariableAccess, "y", nil)), libOnly, tower.Top(1))
}

func TestLocalFunctionBeatsInvokeOnTopLevelProperty(t *testing.T) {
	build := func(withLocal bool) (*world, *tower.Environment, symbols.SymbolID, symbols.SymbolID) {
		w := newWorld(t)
		fClass := w.class(w.pkg, "F", symbols.ClassPlain, 0)
		invoke := w.fn(w.members(fClass), "invoke", symbols.FlagOperator, none)
		w.prop(w.pkg, "f", none, w.typeOf(fClass))
		inner := w.local()
		localF := symbols.NoSymbolID
		if withLocal {
			localF = w.fn(inner, "f", 0, none)
		}
		return w, w.env(), invoke, localF
	}

	w, env, _, localF := build(true)
	got := w.expectSingle(resolve(env, nil, w.call(tower.CallFunction, "f", nil)), localF, tower.Local(0))
	if got.Call.ExplicitInvoke {
		t.Fatalf("the local function must be called directly, got %+v", got)
	}

	w, env, invoke, _ := build(false)
	got = w.expectSingle(resolve(env, nil, w.call(tower.CallFunction, "f", nil)), invoke, tower.Member)
	if !got.Call.ExplicitInvoke {
		t.Fatalf("expected invoke on the top-level property, got %+v", got)
	}
	if recv := got.Call.Receiver(); recv == nil || recv.Text != "f" {
		t.Fatalf("unexpected invoke receiver %+v", recv)
	}
}

func TestNoMatch(t *testing.T) {
	w := newWorld(t)
	w.fn(w.pkg, "f", 0, none)
	env := w.env()

	c := resolve(env, nil, w.call(tower.CallFunction, "missing", nil))
	if c.Outcome() != tower.OutcomeUnresolved || len(c.BestCandidates()) != 0 || c.IsSuccess() {
		t.Fatalf("expected unresolved, got %s", c.Outcome())
	}
}

func TestInnerClassDispatchUsability(t *testing.T) {
	w := newWorld(t)
	i1 := w.class(w.pkg, "I1", symbols.ClassPlain, symbols.FlagInner)
	i2 := w.class(w.pkg, "I2", symbols.ClassPlain, symbols.FlagInner)
	c1 := w.class(w.pkg, "C1", symbols.ClassPlain, 0)
	c2 := w.class(w.pkg, "C2", symbols.ClassPlain, 0)
	obj := w.class(w.pkg, "O", symbols.ClassObject, 0)

	m0 := w.fn(w.members(i1), "m0", 0, none)
	w.fn(w.members(i2), "m1", 0, none)
	m2 := w.fn(w.members(c1), "m2", 0, none)
	w.fn(w.members(c2), "m3", 0, none)
	s3 := w.fn(w.members(c2), "s3", symbols.FlagStatic, none)
	m4 := w.fn(w.members(obj), "m4", 0, none)
	env := w.env()

	receivers := []*tower.ImplicitReceiverValue{w.dispatch(i1), w.dispatch(i2), w.dispatch(c1), w.dispatch(c2), w.dispatch(obj)}
	run := func(name string) *tower.Collector {
		return resolve(env, receivers, w.call(tower.CallFunction, name, nil))
	}

	w.expectSingle(run("m0"), m0, tower.Implicit(0).Member())
	w.expectSingle(run("m2"), m2, tower.Implicit(2).Member())
	w.expectSingle(run("m4"), m4, tower.Implicit(4).Member())
	if c := run("m3"); c.Outcome() != tower.OutcomeUnresolved {
		t.Fatalf("member of a dispatch receiver past the inner boundary must be unreachable, got %s", c.Outcome())
	}
	// static scopes of dispatch receivers are probed regardless of usability
	w.expectSingle(run("s3"), s3, tower.Implicit(3).Static(3))
}

func TestExtensionReceiversAlwaysUsable(t *testing.T) {
	w := newWorld(t)
	c1 := w.class(w.pkg, "C1", symbols.ClassPlain, 0)
	c2 := w.class(w.pkg, "C2", symbols.ClassPlain, 0)
	e := w.class(w.pkg, "E", symbols.ClassPlain, 0)
	eMember := w.fn(w.members(e), "e", 0, none)
	w.fn(w.members(c2), "c2", 0, none)
	ext := w.fn(w.pkg, "ext", 0, w.typeOf(e))
	env := w.env()

	receivers := []*tower.ImplicitReceiverValue{w.dispatch(c1), w.extension(w.typeOf(e), "ext"), w.dispatch(c2)}

	w.expectSingle(resolve(env, receivers, w.call(tower.CallFunction, "e", nil)), eMember, tower.Implicit(1).Member())
	got := w.expectSingle(resolve(env, receivers, w.call(tower.CallFunction, "ext", nil)), ext, tower.Implicit(1).Top(0))
	if got.Extension == nil || got.Extension.Type() != w.typeOf(e) {
		t.Fatalf("expected extension receiver of type E, got %v", got.Extension)
	}
	if c := resolve(env, receivers, w.call(tower.CallFunction, "c2", nil)); c.IsSuccess() {
		t.Fatalf("C2 lies past the first non-inner dispatch receiver")
	}
}

func TestMemberExtensionFromOuterDispatch(t *testing.T) {
	w := newWorld(t)
	e := w.class(w.pkg, "E", symbols.ClassPlain, 0)
	c := w.class(w.pkg, "C", symbols.ClassPlain, 0)
	me := w.fn(w.members(c), "me", 0, w.typeOf(e))
	env := w.env()

	receivers := []*tower.ImplicitReceiverValue{w.extension(w.typeOf(e), "lambda"), w.dispatch(c)}
	got := w.expectSingle(resolve(env, receivers, w.call(tower.CallFunction, "me", nil)), me, tower.Implicit(0).Implicit(1))
	if got.Dispatch == nil || got.Dispatch.Type() != w.typeOf(c) {
		t.Fatalf("expected dispatch receiver C, got %v", got.Dispatch)
	}
}

func TestExplicitReceiverMemberBeatsExtension(t *testing.T) {
	w := newWorld(t)
	a := w.class(w.pkg, "A", symbols.ClassPlain, 0)
	member := w.fn(w.members(a), "g", 0, none)
	w.fn(w.pkg, "g", 0, w.typeOf(a))
	topExt := w.fn(w.pkg, "h", 0, w.typeOf(a))
	loc := w.local()
	localExt := w.fn(loc, "k", 0, w.typeOf(a))
	w.fn(w.pkg, "k", 0, w.typeOf(a))
	env := w.env()

	recv := &tower.ValueExpr{Text: "a", Type: w.typeOf(a)}
	got := w.expectSingle(resolve(env, nil, w.call(tower.CallFunction, "g", recv)), member, tower.Member)
	if got.ExplicitKind != tower.DispatchReceiver {
		t.Fatalf("expected dispatch receiver kind, got %s", got.ExplicitKind)
	}
	got = w.expectSingle(resolve(env, nil, w.call(tower.CallFunction, "h", recv)), topExt, tower.Top(0))
	if got.ExplicitKind != tower.ExtensionReceiver {
		t.Fatalf("expected extension receiver kind, got %s", got.ExplicitKind)
	}
	w.expectSingle(resolve(env, nil, w.call(tower.CallFunction, "k", recv)), localExt, tower.Local(0))
}

func TestImplicitMemberExtensionOnExplicitReceiver(t *testing.T) {
	w := newWorld(t)
	a := w.class(w.pkg, "A", symbols.ClassPlain, 0)
	c := w.class(w.pkg, "C", symbols.ClassPlain, 0)
	via := w.fn(w.members(c), "viaC", 0, w.typeOf(a))
	env := w.env()

	recv := &tower.ValueExpr{Text: "a", Type: w.typeOf(a)}
	w.expectSingle(resolve(env, []*tower.ImplicitReceiverValue{w.dispatch(c)}, w.call(tower.CallFunction, "viaC", recv)),
		via, tower.Implicit(0).Member())
}

func TestExtensionHidesMember(t *testing.T) {
	w := newWorld(t)
	a := w.class(w.pkg, "A", symbols.ClassPlain, 0)
	memberForEach := w.fn(w.members(a), "forEach", 0, none)
	extForEach := w.fn(w.pkg, "forEach", 0, w.typeOf(a))
	env := w.env()

	recv := &tower.ValueExpr{Text: "a", Type: w.typeOf(a)}
	info := w.call(tower.CallFunction, "forEach", recv)
	w.expectSingle(resolve(env, nil, info), extForEach, tower.TopPrioritized(0))

	// implicit receiver form
	receivers := []*tower.ImplicitReceiverValue{w.dispatch(a)}
	w.expectSingle(resolve(env, receivers, w.call(tower.CallFunction, "forEach", nil)), extForEach, tower.TopPrioritized(0).Implicit(0))

	// the name list is configuration
	r := tower.NewResolver(env, tower.Options{})
	w.expectSingle(r.Run(context.Background(), nil, info), memberForEach, tower.Member)
}

func TestIntegerLiteralReceiverStopsAfterMembers(t *testing.T) {
	w := newWorld(t)
	intClass := w.class(w.pkg, "Int", symbols.ClassPlain, 0)
	inc := w.fn(w.members(intClass), "inc", 0, none)
	w.fn(w.pkg, "plusOne", 0, w.typeOf(intClass))
	bits := w.prop(w.pkg, "bits", w.typeOf(intClass), w.typeOf(intClass))
	lit := w.table.Types.RegisterIntLiteral(w.typeOf(intClass))
	env := w.env()

	recv := &tower.ValueExpr{Text: "1", Type: lit}
	w.expectSingle(resolve(env, nil, w.call(tower.CallFunction, "inc", recv)), inc, tower.Member)
	if c := resolve(env, nil, w.call(tower.CallFunction, "plusOne", recv)); c.Outcome() != tower.OutcomeUnresolved {
		t.Fatalf("extensions on integer literals must not be searched for function calls, got %s", c.Outcome())
	}
	w.expectSingle(resolve(env, nil, w.call(tower.CallVariableAccess, "bits", recv)), bits, tower.Top(0))
}

func TestInvokeOnLocalPropertyBeatsTopLevelFunction(t *testing.T) {
	w := newWorld(t)
	fClass := w.class(w.pkg, "F", symbols.ClassPlain, 0)
	invoke := w.fn(w.members(fClass), "invoke", symbols.FlagOperator, none)
	w.fn(w.pkg, "f", 0, none)
	loc := w.local()
	w.prop(loc, "f", none, w.typeOf(fClass))
	env := w.env()

	got := w.expectSingle(resolve(env, nil, w.call(tower.CallFunction, "f", nil)), invoke, tower.Member)
	if !got.Call.ExplicitInvoke || got.ExplicitKind != tower.DispatchReceiver {
		t.Fatalf("expected explicit invoke on the property, got %+v", got)
	}
	if recv := got.Call.Receiver(); recv == nil || recv.Text != "f" || recv.Type != w.typeOf(fClass) {
		t.Fatalf("unexpected invoke receiver %+v", recv)
	}
}

func TestInvokeRequiresOperator(t *testing.T) {
	w := newWorld(t)
	fClass := w.class(w.pkg, "F", symbols.ClassPlain, 0)
	w.fn(w.members(fClass), "invoke", 0, none)
	w.prop(w.pkg, "f", none, w.typeOf(fClass))
	env := w.env()

	c := resolve(env, nil, w.call(tower.CallFunction, "f", nil))
	if c.Outcome() != tower.OutcomeInapplicable {
		t.Fatalf("expected inapplicable, got %s", c.Outcome())
	}
	if d := c.Best()[0].Verdict.Defects; len(d) != 1 || d[0].Code != diag.ResNotOperator {
		t.Fatalf("expected not-operator defect, got %+v", d)
	}
}

func TestDeferredInvokeWaitsForItsGroup(t *testing.T) {
	w := newWorld(t)
	a := w.class(w.pkg, "A", symbols.ClassPlain, 0)
	g := w.class(w.pkg, "G", symbols.ClassPlain, 0)
	w.prop(w.members(a), "g", none, w.typeOf(g))
	invokeExt := w.fn(w.pkg, "invoke", symbols.FlagOperator, w.typeOf(g))
	lib := w.table.Package("lib")
	w.fn(lib, "g", 0, none)
	env := w.env()
	env.TopLevel = append(env.TopLevel, symbols.NewScopeView(w.table, lib))

	r := tower.NewResolver(env, tower.DefaultOptions())
	c := r.Run(context.Background(), []*tower.ImplicitReceiverValue{w.dispatch(a)}, w.call(tower.CallFunction, "g", nil))
	got := w.expectSingle(c, invokeExt, tower.Top(0))
	if got.ExplicitKind != tower.ExtensionReceiver || got.Extension.Type() != w.typeOf(g) {
		t.Fatalf("expected the property as extension receiver, got %+v", got)
	}
	if n := r.Manager().Pending(); n != 0 {
		t.Fatalf("queue must be drained before returning, %d levels left", n)
	}
}

func TestBuiltinInvokeExtensionTakesImplicitReceiver(t *testing.T) {
	w := newWorld(t)
	a := w.class(w.pkg, "A", symbols.ClassPlain, 0)
	fnA := w.table.Types.RegisterFn(w.typeOf(a), nil, w.unit)
	loc := w.local()
	w.prop(loc, "f", none, fnA)
	env := w.env()

	receivers := []*tower.ImplicitReceiverValue{w.extension(w.typeOf(a), "block")}
	c := resolve(env, receivers, w.call(tower.CallFunction, "f", nil))
	best := c.BestCandidates()
	if c.Outcome() != tower.OutcomeResolved || c.BestGroup() != tower.Implicit(0).InvokeExtension() {
		t.Fatalf("expected resolution at Implicit(0).InvokeExtension, got %s at %s", c.Outcome(), c.BestGroup())
	}
	if best[0].BuiltinInvokeExtension == nil || best[0].BuiltinInvokeExtension.Type() != w.typeOf(a) {
		t.Fatalf("expected builtin invoke receiver A, got %+v", best[0])
	}
	if w.table.Name(best[0].Symbol) != "invoke" {
		t.Fatalf("expected synthetic invoke, got %s", w.table.Name(best[0].Symbol))
	}
}

func TestExtensionReceiverBecomesInvokeArgument(t *testing.T) {
	w := newWorld(t)
	a := w.class(w.pkg, "A", symbols.ClassPlain, 0)
	fnA := w.table.Types.RegisterFn(w.typeOf(a), nil, w.unit)
	w.prop(w.pkg, "f", none, fnA)
	env := w.env()

	recv := &tower.ValueExpr{Text: "a", Type: w.typeOf(a)}
	c := resolve(env, nil, w.call(tower.CallFunction, "f", recv))
	if c.Outcome() != tower.OutcomeResolved || c.BestGroup() != tower.Member {
		t.Fatalf("expected invoke at Member, got %s at %s", c.Outcome(), c.BestGroup())
	}
	call := c.BestCandidates()[0].Call
	if len(call.Args) != 1 || call.Args[0].Text != "a" || call.Args[0].Type != w.typeOf(a) {
		t.Fatalf("expected receiver passed as first argument, got %+v", call.Args)
	}
	if r := call.Receiver(); r == nil || r.Text != "f" {
		t.Fatalf("expected invoke receiver f, got %+v", r)
	}
}

func TestObjectsAreWeakenedValues(t *testing.T) {
	w := newWorld(t)
	obj := w.class(w.pkg, "O", symbols.ClassObject, 0)
	invoke := w.fn(w.members(obj), "invoke", symbols.FlagOperator, none)
	w.class(w.pkg, "P", symbols.ClassPlain, 0)
	env := w.env()

	w.expectSingle(resolve(env, nil, w.call(tower.CallVariableAccess, "O", nil)), obj, tower.Top(0).Weakened())
	w.expectSingle(resolve(env, nil, w.call(tower.CallFunction, "O", nil)), invoke, tower.Member)
	if c := resolve(env, nil, w.call(tower.CallVariableAccess, "P", nil)); c.Outcome() != tower.OutcomeUnresolved {
		t.Fatalf("a plain class is not a value, got %s", c.Outcome())
	}
}

func TestQualifiers(t *testing.T) {
	w := newWorld(t)
	lib := w.table.Package("lib")
	util := w.fn(lib, "util", 0, none)
	k := w.class(w.pkg, "K", symbols.ClassPlain, 0)
	mk := w.fn(w.members(k), "make", symbols.FlagStatic, none)
	w.fn(w.members(k), "inst", 0, none)
	obj := w.class(w.pkg, "Obj", symbols.ClassObject, 0)
	run := w.fn(w.members(obj), "run", 0, none)
	env := w.env()

	w.expectSingle(resolve(env, nil, w.call(tower.CallFunction, "util", &tower.QualifierExpr{Text: "lib", Package: "lib"})), util, tower.Qualifier)
	w.expectSingle(resolve(env, nil, w.call(tower.CallFunction, "make", &tower.QualifierExpr{Text: "K", Class: k})), mk, tower.Qualifier)
	got := w.expectSingle(resolve(env, nil, w.call(tower.CallFunction, "run", &tower.QualifierExpr{Text: "Obj", Class: obj})), run, tower.Member)
	if got.ExplicitKind != tower.DispatchReceiver {
		t.Fatalf("object qualifier should act as dispatch receiver, got %s", got.ExplicitKind)
	}
	if c := resolve(env, nil, w.call(tower.CallFunction, "inst", &tower.QualifierExpr{Text: "K", Class: k})); c.IsSuccess() {
		t.Fatalf("instance member through a plain class qualifier must not resolve")
	}
}

func TestCallableReferenceWithStubReceiver(t *testing.T) {
	w := newWorld(t)
	k := w.class(w.pkg, "K", symbols.ClassPlain, 0)
	foo := w.fn(w.members(k), "foo", 0, none)
	top := w.fn(w.pkg, "bar", 0, none)
	env := w.env()

	info := w.call(tower.CallCallableReference, "foo", &tower.QualifierExpr{Text: "K", Class: k})
	info.Stub = &tower.ValueExpr{Text: "K", Type: w.typeOf(k)}
	got := w.expectSingle(resolve(env, nil, info), foo, tower.Member)
	if got.ExplicitKind != tower.DispatchReceiver || got.Call.Explicit != tower.Explicit(info.Stub) {
		t.Fatalf("expected the stub as dispatch receiver, got %+v", got)
	}

	w.expectSingle(resolve(env, nil, w.call(tower.CallCallableReference, "bar", nil)), top, tower.Top(0))
}

func TestAmbiguityAndInapplicability(t *testing.T) {
	w := newWorld(t)
	a := w.class(w.pkg, "A", symbols.ClassPlain, 0)
	b := w.class(w.pkg, "B", symbols.ClassPlain, 0)
	w.fn(w.pkg, "amb", 0, none)
	w.fn(w.pkg, "amb", 0, none)
	p := w.fn(w.pkg, "p", 0, none, w.typeOf(a))
	env := w.env()

	c := resolve(env, nil, w.call(tower.CallFunction, "amb", nil))
	if c.Outcome() != tower.OutcomeAmbiguous || len(c.BestCandidates()) != 2 {
		t.Fatalf("expected ambiguity between 2 candidates, got %s", c.Outcome())
	}

	c = resolve(env, nil, w.call(tower.CallFunction, "p", nil, w.typeOf(b)))
	if c.Outcome() != tower.OutcomeInapplicable || c.Applicability() != tower.Inapplicable {
		t.Fatalf("expected inapplicable, got %s/%s", c.Outcome(), c.Applicability())
	}
	best := c.Best()
	if best[0].Candidate.Symbol != p || best[0].Verdict.Defects[0].Code != diag.ResArgumentMismatch {
		t.Fatalf("unexpected best partial candidate %+v", best[0])
	}

	c = resolve(env, nil, w.call(tower.CallFunction, "p", nil))
	if c.Applicability() != tower.ParameterMappingError {
		t.Fatalf("expected parameter mapping error, got %s", c.Applicability())
	}
}

func TestLowPrioritySuccessStopsTheTower(t *testing.T) {
	w := newWorld(t)
	loc := w.local()
	low := w.fn(loc, "lp", symbols.FlagLowPriority, none)
	w.fn(w.pkg, "lp", 0, none)
	env := w.env()

	c := resolve(env, nil, w.call(tower.CallFunction, "lp", nil))
	w.expectSingle(c, low, tower.Local(0))
	if c.Applicability() != tower.ResolvedLowPriority {
		t.Fatalf("expected low priority, got %s", c.Applicability())
	}
}

func TestResetMakesRunsRepeatable(t *testing.T) {
	w := newWorld(t)
	a := w.class(w.pkg, "A", symbols.ClassPlain, 0)
	g := w.class(w.pkg, "G", symbols.ClassPlain, 0)
	w.prop(w.members(a), "g", none, w.typeOf(g))
	w.fn(w.pkg, "invoke", symbols.FlagOperator, w.typeOf(g))
	env := w.env()

	r := tower.NewResolver(env, tower.DefaultOptions())
	receivers := []*tower.ImplicitReceiverValue{w.dispatch(a)}
	info := w.call(tower.CallFunction, "g", nil)

	first := r.Run(context.Background(), receivers, info)
	sym, group := first.BestCandidates()[0].Symbol, first.BestGroup()

	func() {
		defer func() {
			err, _ := recover().(error)
			var ce *tower.ContractError
			if !errors.As(err, &ce) {
				t.Fatalf("running again without Reset must violate level order, got %v", err)
			}
		}()
		r.Run(context.Background(), receivers, info)
	}()

	r.Reset()
	second := r.Run(context.Background(), receivers, info)
	if second.BestCandidates()[0].Symbol != sym || second.BestGroup() != group || len(second.Best()) != 1 {
		t.Fatalf("expected identical result after Reset, got %s at %s", w.table.Name(second.BestCandidates()[0].Symbol), second.BestGroup())
	}
}

func TestRunEmitsTrace(t *testing.T) {
	w := newWorld(t)
	w.fn(w.pkg, "f", 0, none)
	env := w.env()

	ring := trace.NewRingTracer(64, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)
	tower.NewResolver(env, tower.DefaultOptions()).Run(ctx, nil, w.call(tower.CallFunction, "f", nil))

	var begins, levels, candidates, ends int
	for _, ev := range ring.Snapshot() {
		switch {
		case ev.Kind == trace.KindSpanBegin && ev.Name == "resolve:f":
			begins++
		case ev.Kind == trace.KindPoint && ev.Name == "level":
			levels++
			if ev.Detail != "Top(0)" {
				t.Errorf("unexpected level group %q", ev.Detail)
			}
		case ev.Kind == trace.KindPoint && ev.Name == "candidate":
			candidates++
			if ev.Extra["verdict"] != "resolved" {
				t.Errorf("unexpected verdict %q", ev.Extra["verdict"])
			}
		case ev.Kind == trace.KindSpanEnd:
			ends++
			if ev.Extra["outcome"] != "resolved" {
				t.Errorf("unexpected outcome %q", ev.Extra["outcome"])
			}
		}
	}
	if begins != 1 || levels != 1 || candidates != 1 || ends != 1 {
		t.Fatalf("expected 1/1/1/1 events, got %d/%d/%d/%d", begins, levels, candidates, ends)
	}
}
