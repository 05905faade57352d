package tower

import (
	"container/heap"
	"fmt"
	"strconv"

	"tower/internal/symbols"
	"tower/internal/trace"
)

// ContractError is the panic value raised when levels are processed out of
// order.
type ContractError struct {
	Current   Group
	Requested Group
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("tower: level %s processed after %s", e.Requested, e.Current)
}

// invokeEnqueuer turns a resolved invoke receiver into queued levels.
type invokeEnqueuer interface {
	enqueueForInvoke(info *CallInfo, receiver *ExpressionReceiverValue)
	enqueueForBuiltinInvokeExtension(info *CallInfo, receiver *ExpressionReceiverValue)
}

// Manager feeds levels to collectors in group order and owns the queue of
// deferred invoke levels.
type Manager struct {
	env     *Environment
	tower   invokeEnqueuer
	current Group
	queue   invokeQueue
	seq     uint64

	candidateFactory     *CandidateFactory
	stubReceiverFactory  *CandidateFactory
	resultCollector      *Collector
	invokeReceiverResult *Collector

	tracer trace.Tracer
	span   uint64
}

// NewManager creates a manager in its initial state.
func NewManager(env *Environment) *Manager {
	return &Manager{env: env, current: Start, tracer: trace.Nop}
}

// Current returns the group of the last processed level.
func (m *Manager) Current() Group { return m.current }

// Pending reports the number of queued invoke levels.
func (m *Manager) Pending() int { return m.queue.Len() }

// Reset drops queued levels and rewinds to Start.
func (m *Manager) Reset() {
	m.queue = nil
	m.current = Start
	m.seq = 0
}

// ProcessLevel handles level for info at group and then processes queued
// invoke levels up to group. group must be greater than every group
// processed before; violating that panics with *ContractError.
func (m *Manager) ProcessLevel(level *Level, info *CallInfo, group Group, kind ExplicitReceiverKind) {
	if group.Compare(m.current) <= 0 {
		panic(&ContractError{Current: m.current, Requested: group})
	}
	m.current = group
	m.tracePoint(level, info, group, "level")
	m.handleLevel(level, info, kind, m.resultCollector, group, false)
	m.ProcessQueuedLevelsForInvoke(m.current)
}

// EnqueueLevelForInvoke defers level until the tower reaches group.
func (m *Manager) EnqueueLevelForInvoke(level *Level, info *CallInfo, group Group, kind ExplicitReceiverKind) {
	if level == nil {
		return
	}
	m.seq++
	heap.Push(&m.queue, &query{level: level, info: info, group: group, kind: kind, seq: m.seq})
}

// ProcessQueuedLevelsForInvoke pops and handles queued levels whose group
// is at most limit. Later levels stay queued. Levels above an already
// successful group are dropped.
func (m *Manager) ProcessQueuedLevelsForInvoke(limit Group) {
	for {
		head := m.queue.peek()
		if head == nil || limit.Less(head.group) {
			return
		}
		heap.Pop(&m.queue)
		if m.resultCollector.ShouldStopAtLevel(head.group) {
			m.tracePoint(head.level, head.info, head.group, "invoke-skipped")
			continue
		}
		m.tracePoint(head.level, head.info, head.group, "invoke-level")
		m.handleLevel(head.level, head.info, head.kind, m.resultCollector, head.group, true)
	}
}

func (m *Manager) consumer(collector *Collector, factory *CandidateFactory, kind ExplicitReceiverKind, group Group) emitFunc {
	return func(id symbols.SymbolID, dispatch, extension, builtinInvoke ReceiverValue) {
		collector.ConsumeCandidate(group, factory.Create(id, kind, dispatch, extension, builtinInvoke, group))
	}
}

func (m *Manager) handleLevel(level *Level, info *CallInfo, kind ExplicitReceiverKind, collector *Collector, group Group, explicitInvokes bool) {
	factory := m.candidateFactory
	if explicitInvokes || factory == nil || factory.Call() != info {
		factory = NewCandidateFactory(info)
	}
	emit := m.consumer(collector, factory, kind, group)

	switch info.Kind {
	case CallVariableAccess:
		level.process(m.env, TokenProperties, info, emit)
		if !collector.IsSuccess() && !level.hasExplicitExtension() {
			weak := m.consumer(collector, factory, kind, group.Weakened())
			level.process(m.env, TokenObjects, info, weak)
		}

	case CallFunction:
		level.process(m.env, TokenFunctions, info, emit)
		if explicitInvokes || collector.IsSuccess() || m.invokeReceiverResult == nil {
			return
		}
		m.lookupInvokeReceivers(level, info, kind, group)

	case CallCallableReference:
		if info.Stub != nil && m.stubReceiverFactory != nil {
			stubKind := ExtensionReceiver
			if level.hasExplicitDispatch() {
				stubKind = DispatchReceiver
			}
			if stubbed := level.ReplaceReceiver(&ExpressionReceiverValue{Expr: info.Stub}); stubbed != nil {
				stubEmit := m.consumer(collector, m.stubReceiverFactory, stubKind, group)
				stubbed.process(m.env, TokenFunctions, info, stubEmit)
				stubbed.process(m.env, TokenProperties, info, stubEmit)
			}
			weak := m.consumer(collector, factory, kind, group.Weakened())
			level.process(m.env, TokenFunctions, info, weak)
			level.process(m.env, TokenProperties, info, weak)
			return
		}
		level.process(m.env, TokenFunctions, info, emit)
		level.process(m.env, TokenProperties, info, emit)

	default:
		panic(fmt.Errorf("tower: unsupported call kind %v", info.Kind))
	}
}

// lookupInvokeReceivers searches properties and objects named like a failed
// function call. Once the invoke receiver collector succeeds, an invoke
// call on each best receiver is queued.
func (m *Manager) lookupInvokeReceivers(level *Level, info *CallInfo, kind ExplicitReceiverKind, group Group) {
	receivers := m.invokeReceiverResult
	if receivers.IsSuccess() {
		return
	}
	propInfo := info.ReplaceWithVariableAccess()
	m.handleLevel(level, propInfo, kind, receivers, group, false)
	if !receivers.IsSuccess() {
		return
	}
	for _, cand := range receivers.BestCandidates() {
		m.enqueueInvoke(info, cand)
	}
	m.ProcessQueuedLevelsForInvoke(m.current)
}

func (m *Manager) enqueueInvoke(info *CallInfo, cand *Candidate) {
	sym := m.env.Model.Symbol(cand.Symbol)
	if sym == nil {
		return
	}
	valueType := m.env.Model.ReturnType(cand.Symbol)
	extFnTyped := sym.Kind == symbols.SymbolProperty && m.env.Model.IsExtensionFunction(valueType)
	useExtensionAsArgument := extFnTyped && !sym.IsExtension() && cand.ExplicitKind == ExtensionReceiver

	name := m.env.Strings.MustLookup(sym.Name)
	text := name
	if recv := info.Receiver(); recv != nil && !useExtensionAsArgument {
		text = recv.Text + "." + name
	}
	invokeReceiver := &ValueExpr{Text: text, Type: valueType, Safe: info.IsSafeCall}

	invokeName := m.env.Strings.Intern("invoke")
	invokeInfo := info.ReplaceExplicitReceiver(invokeReceiver).WithName(invokeName)
	invokeInfo.ExplicitInvoke = true
	if useExtensionAsArgument {
		invokeInfo = invokeInfo.WithReceiverAsArgument(cand.ExtensionReceiverExpr())
	}

	receiver := &ExpressionReceiverValue{Expr: invokeReceiver}
	switch {
	case useExtensionAsArgument:
		m.tower.enqueueForBuiltinInvokeExtension(invokeInfo, receiver)
	case extFnTyped && cand.ExplicitKind == NoExplicitReceiver && cand.Extension == nil:
		// f() with f: R.() -> T in scope takes R from the implicit receivers
		m.tower.enqueueForBuiltinInvokeExtension(invokeInfo, receiver)
	default:
		m.tower.enqueueForInvoke(invokeInfo, receiver)
	}
}

func (m *Manager) tracePoint(level *Level, info *CallInfo, group Group, name string) {
	if !m.tracer.Enabled() {
		return
	}
	trace.Point(m.tracer, trace.ScopeLevel, name, group.String(), m.span, map[string]string{
		"level": level.String(),
		"call":  info.Kind.String(),
		"queue": strconv.Itoa(m.queue.Len()),
	})
}
