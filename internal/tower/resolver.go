package tower

import (
	"context"
	"iter"
	"slices"

	"tower/internal/symbols"
	"tower/internal/trace"
)

// Resolver runs the tower for call sites of one environment.
type Resolver struct {
	env       *Environment
	opts      Options
	collector *Collector
	manager   *Manager
	receivers []implicitReceiver
	tracer    trace.Tracer
	span      uint64
}

// NewResolver creates a resolver over env.
func NewResolver(env *Environment, opts Options) *Resolver {
	r := &Resolver{
		env:       env,
		opts:      opts,
		collector: NewCollector(env.Stages),
		manager:   NewManager(env),
		tracer:    trace.Nop,
	}
	r.manager.tower = r
	return r
}

// Reset clears the collected data and the manager state.
func (r *Resolver) Reset() {
	r.collector.NewDataSet()
	r.manager.Reset()
	r.receivers = nil
}

// Manager exposes the level manager of the resolver.
func (r *Resolver) Manager() *Manager { return r.manager }

// probe is one level to process.
type probe struct {
	level *Level
	info  *CallInfo
	group Group
	kind  ExplicitReceiverKind
}

// Run resolves info with the given implicit receivers (innermost first) and
// returns the collector holding the result. Call Reset before reusing the
// resolver for another call.
func (r *Resolver) Run(ctx context.Context, implicitReceivers []*ImplicitReceiverValue, info *CallInfo) *Collector {
	r.tracer = trace.FromContext(ctx)
	span := trace.Begin(r.tracer, trace.ScopeCall, "resolve:"+r.env.Strings.MustLookup(info.Name), trace.CurrentSpan(ctx).SpanID)
	r.span = span.ID()

	r.receivers = classifyReceivers(r.env.Model, implicitReceivers)
	m := r.manager
	m.candidateFactory = NewCandidateFactory(info)
	m.stubReceiverFactory = nil
	if info.Kind == CallCallableReference && info.Stub != nil {
		m.stubReceiverFactory = NewCandidateFactory(info.ReplaceExplicitReceiver(info.Stub))
	}
	m.resultCollector = r.collector
	m.invokeReceiverResult = nil
	if info.Kind == CallFunction {
		m.invokeReceiverResult = NewCollector(r.env.Stages)
	}
	m.tracer, m.span = r.tracer, r.span
	r.collector.observe = nil
	if r.tracer.Enabled() && r.tracer.Level().ShouldEmit(trace.ScopeCandidate) {
		r.collector.observe = r.traceCandidate
	}

	for p := range r.probes(info) {
		m.ProcessLevel(p.level, p.info, p.group, p.kind)
		if r.collector.IsSuccess() {
			break
		}
	}
	m.ProcessQueuedLevelsForInvoke(Last)

	span.WithExtra("outcome", r.collector.Outcome().String()).
		WithExtra("group", r.collector.BestGroup().String()).
		End(r.collector.Applicability().String())
	return r.collector
}

func (r *Resolver) traceCandidate(group Group, c *Candidate, v Verdict) {
	sym := r.env.Model.Symbol(c.Symbol)
	name := "<invalid>"
	if sym != nil {
		name = r.env.Strings.MustLookup(sym.Name)
	}
	trace.Point(r.tracer, trace.ScopeCandidate, "candidate", name, r.span, map[string]string{
		"group":   group.String(),
		"verdict": v.Applicability.String(),
		"kind":    c.ExplicitKind.String(),
	})
}

// probes yields the levels of the tower in group order. The caller stops
// pulling as soon as the collector succeeds.
func (r *Resolver) probes(info *CallInfo) iter.Seq[probe] {
	return func(yield func(probe) bool) {
		switch recv := info.Explicit.(type) {
		case nil:
			r.noReceiverProbes(info, yield)
		case *QualifierExpr:
			r.qualifierProbes(info, recv, yield)
		case *ValueExpr:
			r.expressionProbes(info, recv, yield)
		}
	}
}

func (r *Resolver) hidesMembers(info *CallInfo) bool {
	return info.Kind == CallFunction && slices.Contains(r.opts.HidesMembers, r.env.Strings.MustLookup(info.Name))
}

func (r *Resolver) usable() iter.Seq[implicitReceiver] {
	return func(yield func(implicitReceiver) bool) {
		for _, ir := range r.receivers {
			if ir.usable && !yield(ir) {
				return
			}
		}
	}
}

func (r *Resolver) noReceiverProbes(info *CallInfo, yield func(probe) bool) {
	emit := func(l *Level, g Group) bool {
		if l == nil {
			return true
		}
		return yield(probe{level: l, info: info, group: g, kind: NoExplicitReceiver})
	}

	if r.hidesMembers(info) {
		for i, top := range r.env.TopLevel {
			for ir := range r.usable() {
				if !emit(NewScopeLevel(top, ir.value, true), TopPrioritized(i).Implicit(ir.depth)) {
					return
				}
			}
		}
	}

	for i, local := range r.env.Locals {
		if !emit(NewScopeLevel(local, nil, false), Local(i)) {
			return
		}
	}

	for _, ir := range r.receivers {
		parent := Implicit(ir.depth)
		if ir.usable {
			if !emit(NewMemberLevel(r.env.Model, ir.value, nil, false), parent.Member()) {
				return
			}
			for i, local := range r.env.Locals {
				if !emit(NewScopeLevel(local, ir.value, false), parent.Local(i)) {
					return
				}
			}
			for dr := range r.usable() {
				if !emit(NewMemberLevel(r.env.Model, dr.value, ir.value, false), parent.Implicit(dr.depth)) {
					return
				}
			}
			for i, top := range r.env.TopLevel {
				if !emit(NewScopeLevel(top, ir.value, false), parent.Top(i)) {
					return
				}
			}
		}
		if ir.value.Kind == ImplicitDispatch {
			if static := r.env.Model.StaticScope(ir.value.ValueType); static != nil {
				if !emit(NewScopeLevel(static, nil, false), parent.Static(ir.depth)) {
					return
				}
			}
		}
	}

	for i, top := range r.env.TopLevel {
		if !emit(NewScopeLevel(top, nil, false), Top(i)) {
			return
		}
	}
}

func (r *Resolver) qualifierProbes(info *CallInfo, q *QualifierExpr, yield func(probe) bool) {
	var view symbols.View
	if q.Class.IsValid() {
		view = r.env.Model.QualifierScope(q.Class)
	} else {
		view = r.env.Model.PackageMember(q.Package, r.env.Strings.MustLookup(info.Name))
	}
	if view != nil {
		if !yield(probe{level: NewScopeLevel(view, nil, false), info: info, group: Qualifier}) {
			return
		}
	}
	if !q.Class.IsValid() {
		return
	}

	// A class qualifier is also a value when it is an object or has a
	// companion; a callable reference reads it through its stub.
	valueType := r.env.Model.ReturnType(q.Class)
	if !valueType.IsValid() && info.Kind == CallCallableReference && info.Stub != nil {
		valueType = info.Stub.Type
	}
	if !valueType.IsValid() {
		return
	}
	r.expressionProbes(info, &ValueExpr{Text: q.Text, Type: valueType, Safe: info.IsSafeCall}, yield)
}

func (r *Resolver) expressionProbes(info *CallInfo, recv *ValueExpr, yield func(probe) bool) {
	value := &ExpressionReceiverValue{Expr: recv}
	emit := func(l *Level, g Group, kind ExplicitReceiverKind) bool {
		if l == nil {
			return true
		}
		return yield(probe{level: l, info: info, group: g, kind: kind})
	}

	if r.hidesMembers(info) {
		for i, top := range r.env.TopLevel {
			if !emit(NewScopeLevel(top, value, true), TopPrioritized(i), ExtensionReceiver) {
				return
			}
		}
	}

	if !emit(NewMemberLevel(r.env.Model, value, nil, false), Member, DispatchReceiver) {
		return
	}

	if info.Kind == CallFunction && r.env.Model.IsIntegerLiteral(recv.Type) {
		return
	}

	for i, local := range r.env.Locals {
		if !emit(NewScopeLevel(local, value, false), Local(i), ExtensionReceiver) {
			return
		}
	}
	for ir := range r.usable() {
		if !emit(NewMemberLevel(r.env.Model, ir.value, value, false), Implicit(ir.depth).Member(), ExtensionReceiver) {
			return
		}
	}
	for i, top := range r.env.TopLevel {
		if !emit(NewScopeLevel(top, value, false), Top(i), ExtensionReceiver) {
			return
		}
	}
}

func (r *Resolver) enqueueForInvoke(info *CallInfo, receiver *ExpressionReceiverValue) {
	m := r.manager
	m.EnqueueLevelForInvoke(NewMemberLevel(r.env.Model, receiver, nil, false), info, Member, DispatchReceiver)
	for i, local := range r.env.Locals {
		m.EnqueueLevelForInvoke(NewScopeLevel(local, receiver, false), info, Local(i), ExtensionReceiver)
	}
	for ir := range r.usable() {
		m.EnqueueLevelForInvoke(NewMemberLevel(r.env.Model, ir.value, receiver, false), info, Implicit(ir.depth).Member(), ExtensionReceiver)
	}
	for i, top := range r.env.TopLevel {
		m.EnqueueLevelForInvoke(NewScopeLevel(top, receiver, false), info, Top(i), ExtensionReceiver)
	}
}

func (r *Resolver) enqueueForBuiltinInvokeExtension(info *CallInfo, receiver *ExpressionReceiverValue) {
	m := r.manager
	m.EnqueueLevelForInvoke(NewMemberLevel(r.env.Model, receiver, nil, false), info, Member, DispatchReceiver)
	for ir := range r.usable() {
		m.EnqueueLevelForInvoke(NewMemberLevel(r.env.Model, receiver, ir.value, true), info, Implicit(ir.depth).InvokeExtension(), DispatchReceiver)
	}
}
