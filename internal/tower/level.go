package tower

import (
	"fmt"
	"strings"

	"tower/internal/symbols"
)

// Token selects which kind of symbols a level yields.
type Token uint8

const (
	TokenFunctions Token = iota + 1
	TokenProperties
	TokenObjects
)

func (t Token) String() string {
	switch t {
	case TokenFunctions:
		return "functions"
	case TokenProperties:
		return "properties"
	case TokenObjects:
		return "objects"
	default:
		return "unknown"
	}
}

func (t Token) mask() symbols.KindMask {
	switch t {
	case TokenFunctions:
		return symbols.SymbolFunction.Mask()
	case TokenProperties:
		return symbols.SymbolProperty.Mask()
	case TokenObjects:
		return symbols.SymbolClass.Mask()
	default:
		return symbols.KindMaskNone
	}
}

// LevelKind tags the Level variant.
type LevelKind uint8

const (
	LevelScope  LevelKind = iota + 1 // a scope view, optionally with an extension receiver
	LevelMember                      // the members of a dispatch receiver
)

// Level is one floor of the tower.
type Level struct {
	kind LevelKind
	view symbols.View

	dispatch  ReceiverValue // LevelMember
	extension ReceiverValue

	extensionsOnly  bool // LevelScope
	invokeExtension bool // LevelMember
	scopes          ScopeProvider
}

// NewScopeLevel builds a level over a scope view.
func NewScopeLevel(view symbols.View, extension ReceiverValue, extensionsOnly bool) *Level {
	return &Level{kind: LevelScope, view: view, extension: extension, extensionsOnly: extensionsOnly}
}

// NewMemberLevel builds a level over the members of dispatch. It returns
// nil when the receiver type has no member scope. In invoke-extension mode
// the extension receiver is passed to candidates as the builtin
// extension-invoke receiver.
func NewMemberLevel(scopes ScopeProvider, dispatch, extension ReceiverValue, invokeExtension bool) *Level {
	view := scopes.MemberScope(dispatch.Type())
	if view == nil {
		return nil
	}
	return &Level{
		kind:            LevelMember,
		view:            view,
		dispatch:        dispatch,
		extension:       extension,
		invokeExtension: invokeExtension,
		scopes:          scopes,
	}
}

// Kind returns the variant tag.
func (l *Level) Kind() LevelKind { return l.kind }

// Extension returns the extension receiver of the level, if any.
func (l *Level) Extension() ReceiverValue { return l.extension }

// hasExplicitExtension reports whether the extension receiver is an explicit
// expression.
func (l *Level) hasExplicitExtension() bool {
	_, ok := l.extension.(*ExpressionReceiverValue)
	return ok
}

// hasExplicitDispatch reports whether the dispatch receiver is an explicit
// expression.
func (l *Level) hasExplicitDispatch() bool {
	_, ok := l.dispatch.(*ExpressionReceiverValue)
	return l.kind == LevelMember && ok
}

// ReplaceReceiver returns a copy whose receiver slot holds r: the dispatch
// receiver of member levels, the extension receiver of scope levels.
// Returns nil when r has no member scope.
func (l *Level) ReplaceReceiver(r ReceiverValue) *Level {
	switch l.kind {
	case LevelMember:
		return NewMemberLevel(l.scopes, r, l.extension, l.invokeExtension)
	case LevelScope:
		cp := *l
		cp.extension = r
		return &cp
	default:
		panic(fmt.Errorf("tower: unknown level kind %d", l.kind))
	}
}

// emitFunc receives a found symbol with its receivers.
type emitFunc func(id symbols.SymbolID, dispatch, extension, builtinInvoke ReceiverValue)

// process looks name up for token and emits every symbol consistent with
// the receivers of the level.
func (l *Level) process(env *Environment, token Token, info *CallInfo, emit emitFunc) {
	if token == TokenObjects && l.extension != nil {
		return
	}
	for _, id := range l.view.Lookup(info.Name, token.mask()) {
		sym := env.Model.Symbol(id)
		if sym == nil {
			continue
		}
		if token == TokenObjects && !sym.IsValueClassifier() {
			continue
		}
		switch l.kind {
		case LevelMember:
			l.processMember(env, id, sym, info, emit)
		case LevelScope:
			l.processScoped(env, id, sym, info, emit)
		}
	}
}

func (l *Level) processMember(env *Environment, id symbols.SymbolID, sym *symbols.Symbol, info *CallInfo, emit emitFunc) {
	if sym.Has(symbols.FlagStatic) {
		return
	}
	if l.invokeExtension {
		if !sym.IsExtension() {
			emit(id, l.dispatch, nil, l.extension)
		}
		return
	}
	if l.acceptsReceivers(env, sym, info) {
		emit(id, l.dispatch, l.extension, nil)
	}
}

func (l *Level) processScoped(env *Environment, id symbols.SymbolID, sym *symbols.Symbol, info *CallInfo, emit emitFunc) {
	if l.extensionsOnly && !sym.IsExtension() {
		return
	}
	if l.acceptsReceivers(env, sym, info) {
		emit(id, nil, l.extension, nil)
	}
}

// acceptsReceivers enforces extension consistency: extensions need an
// extension receiver and non-extensions must not get one. The exception is
// a property of extension function type looked up as an invoke receiver.
func (l *Level) acceptsReceivers(env *Environment, sym *symbols.Symbol, info *CallInfo) bool {
	if sym.IsExtension() {
		return l.extension != nil
	}
	if l.extension == nil {
		return true
	}
	return info.InvokeReceiverSearch &&
		sym.Kind == symbols.SymbolProperty &&
		env.Model.IsExtensionFunction(sym.Result)
}

func (l *Level) String() string {
	var sb strings.Builder
	sb.WriteString(l.view.Describe())
	if l.dispatch != nil {
		sb.WriteString(" dispatch=")
		sb.WriteString(l.dispatch.String())
	}
	if l.extension != nil {
		if l.invokeExtension {
			sb.WriteString(" invoke-ext=")
		} else {
			sb.WriteString(" ext=")
		}
		sb.WriteString(l.extension.String())
	}
	if l.extensionsOnly {
		sb.WriteString(" extensions-only")
	}
	return sb.String()
}
