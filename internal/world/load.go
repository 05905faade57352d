package world

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"tower/internal/diag"
	"tower/internal/source"
	"tower/internal/symbols"
	"tower/internal/tower"
	"tower/internal/types"
)

// DefaultPackage is used when a world file names no package.
const DefaultPackage = "app"

// ErrInvalid is returned when loading reported errors.
var ErrInvalid = errors.New("world: invalid world file")

// Load reads and loads the world file at path. Problems in the file are
// reported to r; the returned error is ErrInvalid in that case.
func Load(fs *source.FileSet, path string, r diag.Reporter) (*World, error) {
	id, err := fs.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load world %q: %w", path, err)
	}
	return load(fs, id, r)
}

// LoadBytes loads an in-memory world file.
func LoadBytes(fs *source.FileSet, name string, content []byte, r diag.Reporter) (*World, error) {
	return load(fs, fs.AddVirtual(name, content), r)
}

// LoadFile loads a world file already present in fs.
func LoadFile(fs *source.FileSet, id source.FileID, r diag.Reporter) (*World, error) {
	if fs.Get(id) == nil {
		return nil, fmt.Errorf("load world: unknown file %d", id)
	}
	return load(fs, id, r)
}

type loader struct {
	file     *source.File
	reporter diag.Reporter
	loc      *locator
	table    *symbols.Table
	doc      document
	pkg      string
	errors   int

	classes    map[string]symbols.SymbolID
	ambiguous  map[string]bool
	locals     map[string]symbols.ScopeID
	usedLocals map[string]bool
	names      map[string]bool
	literal    types.TypeID
}

func load(fs *source.FileSet, id source.FileID, r diag.Reporter) (*World, error) {
	f := fs.Get(id)
	l := &loader{
		file:       f,
		reporter:   r,
		loc:        newLocator(id, f.Content),
		table:      symbols.NewTable(symbols.Hints{Scopes: 16, Symbols: 64}, nil, nil),
		classes:    make(map[string]symbols.SymbolID),
		ambiguous:  make(map[string]bool),
		locals:     make(map[string]symbols.ScopeID),
		usedLocals: make(map[string]bool),
		names:      make(map[string]bool),
	}

	md, err := toml.Decode(string(f.Content), &l.doc)
	if err != nil {
		span := source.Span{File: id}
		msg := err.Error()
		var perr toml.ParseError
		if errors.As(err, &perr) {
			span = l.loc.span(perr.Position.Start, perr.Position.Start+perr.Position.Len)
			msg = perr.Message
		}
		l.errorf(diag.WorldSyntax, span, "%s", msg)
		return nil, ErrInvalid
	}
	for _, key := range md.Undecoded() {
		l.warnf(diag.WorldSyntax, source.Span{File: id}, "unknown key %q", key.String())
	}

	l.pkg = l.doc.Package
	if l.pkg == "" {
		l.pkg = DefaultPackage
	}
	l.table.Package(l.pkg)

	w := &World{Path: f.Path, File: id, Hash: f.Hash, Package: l.pkg, Table: l.table}
	l.declareLocals()
	l.declareClasses()
	l.linkSupertypes()
	l.setupLiteral()
	l.declareFuns()
	l.declareProperties()
	w.Contexts = l.buildContexts()
	w.Calls = l.buildCalls(w.Contexts)
	l.reportUnusedLocals()

	l.table.Seal()
	if err := l.table.Validate(); err != nil {
		l.errorf(diag.WorldBadDeclaration, source.Span{File: id}, "inconsistent declaration table: %v", err)
	}
	if l.errors > 0 {
		return nil, ErrInvalid
	}
	return w, nil
}

func (l *loader) errorf(code diag.Code, span source.Span, format string, args ...any) {
	l.errors++
	diag.ReportError(l.reporter, code, span, fmt.Sprintf(format, args...)).Emit()
}

func (l *loader) warnf(code diag.Code, span source.Span, format string, args ...any) {
	diag.ReportWarning(l.reporter, code, span, fmt.Sprintf(format, args...)).Emit()
}

func (l *loader) name(s string) source.StringID { return l.table.Strings.Intern(s) }

func (l *loader) declareLocals() {
	for i, d := range l.doc.Locals {
		span := l.loc.table("local", i)
		if d.Name == "" {
			l.errorf(diag.WorldBadDeclaration, span, "local scope without a name")
			continue
		}
		if _, dup := l.locals[d.Name]; dup {
			l.errorf(diag.WorldDuplicateName, span, "local scope %q declared twice", d.Name)
			continue
		}
		l.locals[d.Name] = l.table.NewLocalScope(d.Name, span)
	}
}

func parseClassKind(s string) (symbols.ClassKind, bool) {
	switch s {
	case "", "class":
		return symbols.ClassPlain, true
	case "interface":
		return symbols.ClassInterface, true
	case "object":
		return symbols.ClassObject, true
	case "companion":
		return symbols.ClassCompanion, true
	}
	return 0, false
}

func (l *loader) declareClasses() {
	for i, d := range l.doc.Classes {
		span := l.loc.table("class", i)
		kind, ok := parseClassKind(d.Kind)
		switch {
		case d.Name == "":
			l.errorf(diag.WorldBadDeclaration, span, "class without a name")
			continue
		case !ok:
			l.errorf(diag.WorldBadDeclaration, span, "unknown class kind %q", d.Kind)
			continue
		case kind == symbols.ClassCompanion && d.Outer == "":
			l.errorf(diag.WorldBadDeclaration, span, "companion %q needs an outer class", d.Name)
			continue
		}
		var flags symbols.SymbolFlags
		if d.Inner {
			flags |= symbols.FlagInner
		}

		pkg := d.Package
		if pkg == "" {
			pkg = l.pkg
		}
		scope := l.table.Package(pkg)
		path := d.Name
		outer := symbols.NoSymbolID
		if d.Outer != "" {
			var err error
			outer, err = l.lookupClass(d.Outer)
			if err != nil {
				l.errorf(diag.WorldUnknownClass, span, "outer class of %q: %v", d.Name, err)
				continue
			}
			scope = l.table.Symbol(outer).Members
			path = l.classPath(outer) + "." + d.Name
			pkg = l.classPackage(outer)
		}
		qualified := pkg + "." + path
		if _, dup := l.classes[qualified]; dup {
			l.errorf(diag.WorldDuplicateName, span, "class %s declared twice", qualified)
			continue
		}

		id := l.table.DeclareClass(scope, l.name(d.Name), kind, flags, outer, span)
		l.classes[qualified] = id
		if prev, seen := l.classes[path]; seen && prev != id {
			l.ambiguous[path] = true
		} else {
			l.classes[path] = id
		}
		l.names[l.table.QualifiedName(id)] = true

		if kind == symbols.ClassCompanion {
			if owner := l.table.Symbol(outer); owner.Companion.IsValid() {
				l.errorf(diag.WorldCompanionConflict, span, "class %s already has companion %s",
					l.table.QualifiedName(outer), l.table.Name(owner.Companion))
				continue
			}
			l.table.SetCompanion(outer, id)
		}
	}
}

// classPath is the package-relative path of a class, e.g. Outer.Inner.
func (l *loader) classPath(id symbols.SymbolID) string {
	sym := l.table.Symbol(id)
	name := l.table.Name(id)
	if sym.Outer.IsValid() {
		return l.classPath(sym.Outer) + "." + name
	}
	return name
}

func (l *loader) classPackage(id symbols.SymbolID) string {
	sym := l.table.Symbol(id)
	for sym.Outer.IsValid() {
		sym = l.table.Symbol(sym.Outer)
	}
	return l.table.Scopes.Get(sym.Scope).Name
}

func (l *loader) lookupClass(path string) (symbols.SymbolID, error) {
	if l.ambiguous[path] {
		return symbols.NoSymbolID, fmt.Errorf("class %q is ambiguous, qualify it with its package", path)
	}
	if id, ok := l.classes[path]; ok {
		return id, nil
	}
	if id, ok := l.classes[l.pkg+"."+path]; ok {
		return id, nil
	}
	return symbols.NoSymbolID, fmt.Errorf("unknown class %q", path)
}

// classType implements typeScope.
func (l *loader) classType(path string) (types.TypeID, error) {
	id, err := l.lookupClass(path)
	if err != nil {
		return types.NoTypeID, err
	}
	return l.table.Symbol(id).Type, nil
}

func (l *loader) literalType() (types.TypeID, error) {
	if !l.literal.IsValid() {
		return types.NoTypeID, errors.New("integer literals need a literal_class")
	}
	return l.literal, nil
}

func (l *loader) interner() *types.Interner { return l.table.Types }

// parseTypeAt parses src, reporting failures at span. Empty src yields def.
func (l *loader) parseTypeAt(src string, def types.TypeID, span source.Span) (types.TypeID, bool) {
	if strings.TrimSpace(src) == "" {
		return def, true
	}
	id, err := parseType(src, l)
	if err != nil {
		l.errorf(diag.WorldBadType, span, "%v", err)
		return types.NoTypeID, false
	}
	return id, true
}

func (l *loader) linkSupertypes() {
	graph := make(map[symbols.SymbolID][]symbols.SymbolID)
	for i, d := range l.doc.Classes {
		if len(d.Supertypes) == 0 {
			continue
		}
		span := l.loc.table("class", i)
		id, err := l.lookupClass(l.declaredPath(d))
		if err != nil {
			continue // reported while declaring
		}
		supers := make([]types.TypeID, 0, len(d.Supertypes))
		for _, s := range d.Supertypes {
			sid, err := l.lookupClass(s)
			if err != nil {
				l.errorf(diag.WorldUnknownClass, span, "supertype of %q: %v", d.Name, err)
				continue
			}
			graph[id] = append(graph[id], sid)
			supers = append(supers, l.table.Symbol(sid).Type)
		}
		l.table.Types.SetSupertypes(l.table.Symbol(id).Type, supers...)
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[symbols.SymbolID]int)
	var visit func(id symbols.SymbolID) bool
	visit = func(id symbols.SymbolID) bool {
		switch state[id] {
		case visiting:
			return false
		case done:
			return true
		}
		state[id] = visiting
		for _, next := range graph[id] {
			if !visit(next) {
				return false
			}
		}
		state[id] = done
		return true
	}
	ids := make([]symbols.SymbolID, 0, len(graph))
	for id := range graph {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if state[id] == unvisited && !visit(id) {
			l.errorf(diag.WorldCyclicSupertypes, l.table.Symbol(id).Span, "class %s inherits from itself", l.table.QualifiedName(id))
		}
	}
}

// declaredPath recomputes the lookup path of a class document.
func (l *loader) declaredPath(d classDoc) string {
	pkg := d.Package
	if pkg == "" {
		pkg = l.pkg
	}
	if d.Outer == "" {
		return pkg + "." + d.Name
	}
	outer, err := l.lookupClass(d.Outer)
	if err != nil {
		return d.Name
	}
	return l.classPackage(outer) + "." + l.classPath(outer) + "." + d.Name
}

func (l *loader) setupLiteral() {
	name := l.doc.LiteralClass
	if name == "" {
		if _, err := l.lookupClass("Int"); err != nil {
			return
		}
		name = "Int"
	}
	class, err := l.classType(name)
	if err != nil {
		l.errorf(diag.WorldLiteralClassMissing, source.Span{File: l.file.ID}, "literal_class: %v", err)
		return
	}
	l.literal = l.table.Types.RegisterIntLiteral(class)
}

func parseFlags(flags []string) (symbols.SymbolFlags, error) {
	var out symbols.SymbolFlags
	for _, f := range flags {
		switch f {
		case "static":
			out |= symbols.FlagStatic
		case "operator":
			out |= symbols.FlagOperator
		case "hidden":
			out |= symbols.FlagHidden
		case "low_priority":
			out |= symbols.FlagLowPriority
		default:
			return 0, fmt.Errorf("unknown flag %q", f)
		}
	}
	return out, nil
}

// ownerScope finds the scope a function or property is declared in.
func (l *loader) ownerScope(o ownerDoc) (symbols.ScopeID, diag.Code, error) {
	switch {
	case o.Class != "" && o.Local != "":
		return symbols.NoScopeID, diag.WorldBadDeclaration, errors.New("declaration names both a class and a local scope")
	case o.Class != "":
		id, err := l.lookupClass(o.Class)
		if err != nil {
			return symbols.NoScopeID, diag.WorldUnknownClass, err
		}
		return l.table.Symbol(id).Members, 0, nil
	case o.Local != "":
		scope, ok := l.locals[o.Local]
		if !ok {
			return symbols.NoScopeID, diag.WorldUnknownScope, fmt.Errorf("unknown local scope %q", o.Local)
		}
		return scope, 0, nil
	case o.Package != "":
		return l.table.Package(o.Package), 0, nil
	default:
		return l.table.Package(l.pkg), 0, nil
	}
}

func (l *loader) declareFuns() {
	unit := l.table.Types.Builtins().Unit
	for i, d := range l.doc.Funs {
		span := l.loc.table("fun", i)
		if d.Name == "" {
			l.errorf(diag.WorldBadDeclaration, span, "function without a name")
			continue
		}
		scope, code, err := l.ownerScope(d.owner())
		if err != nil {
			l.errorf(code, span, "function %q: %v", d.Name, err)
			continue
		}
		flags, err := parseFlags(d.Flags)
		if err != nil {
			l.errorf(diag.WorldBadDeclaration, span, "function %q: %v", d.Name, err)
			continue
		}
		recv, ok1 := l.parseTypeAt(d.Receiver, types.NoTypeID, span)
		result, ok2 := l.parseTypeAt(d.Result, unit, span)
		params, ok3 := l.parseParams(d.Params, span)
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		id := l.table.Declare(scope, symbols.Symbol{
			Name:     l.name(d.Name),
			Kind:     symbols.SymbolFunction,
			Flags:    flags,
			Span:     span,
			Receiver: recv,
			Params:   params,
			Result:   result,
		})
		l.names[l.table.QualifiedName(id)] = true
	}
}

// parseParams reads "[vararg ]name: Type[ = _]" or a bare "Type".
func (l *loader) parseParams(src []string, span source.Span) ([]symbols.Param, bool) {
	params := make([]symbols.Param, 0, len(src))
	ok := true
	for _, s := range src {
		var p symbols.Param
		s = strings.TrimSpace(s)
		if rest, found := strings.CutPrefix(s, "vararg "); found {
			p.Vararg = true
			s = strings.TrimSpace(rest)
		}
		if before, _, found := strings.Cut(s, "="); found {
			p.HasDefault = true
			s = strings.TrimSpace(before)
		}
		if name, typ, found := strings.Cut(s, ":"); found {
			p.Name = l.name(strings.TrimSpace(name))
			s = typ
		}
		typ, good := l.parseTypeAt(s, types.NoTypeID, span)
		if !good || !typ.IsValid() {
			if good {
				l.errorf(diag.WorldBadType, span, "parameter without a type")
			}
			ok = false
			continue
		}
		p.Type = typ
		params = append(params, p)
	}
	return params, ok
}

func (l *loader) declareProperties() {
	for i, d := range l.doc.Properties {
		span := l.loc.table("property", i)
		if d.Name == "" || d.Type == "" {
			l.errorf(diag.WorldBadDeclaration, span, "property needs a name and a type")
			continue
		}
		scope, code, err := l.ownerScope(d.owner())
		if err != nil {
			l.errorf(code, span, "property %q: %v", d.Name, err)
			continue
		}
		flags, err := parseFlags(d.Flags)
		if err != nil {
			l.errorf(diag.WorldBadDeclaration, span, "property %q: %v", d.Name, err)
			continue
		}
		recv, ok1 := l.parseTypeAt(d.Receiver, types.NoTypeID, span)
		typ, ok2 := l.parseTypeAt(d.Type, types.NoTypeID, span)
		if !ok1 || !ok2 {
			continue
		}
		id := l.table.Declare(scope, symbols.Symbol{
			Name:     l.name(d.Name),
			Kind:     symbols.SymbolProperty,
			Flags:    flags,
			Span:     span,
			Receiver: recv,
			Result:   typ,
		})
		l.names[l.table.QualifiedName(id)] = true
	}
}

func (l *loader) buildContexts() []*Context {
	docs := l.doc.Contexts
	if len(docs) == 0 {
		docs = []contextDoc{{Name: "default"}}
	}
	out := make([]*Context, 0, len(docs))
	seen := make(map[string]bool, len(docs))
	for i, d := range docs {
		span := l.loc.table("context", i)
		if d.Name == "" {
			d.Name = fmt.Sprintf("context%d", i+1)
		}
		if seen[d.Name] {
			l.errorf(diag.WorldDuplicateName, span, "context %q declared twice", d.Name)
			continue
		}
		seen[d.Name] = true
		ctx := &Context{Name: d.Name, Span: span}

		for _, name := range d.Locals {
			scope, ok := l.locals[name]
			if !ok {
				l.errorf(diag.WorldUnknownScope, span, "context %q: unknown local scope %q", d.Name, name)
				continue
			}
			l.usedLocals[name] = true
			ctx.Locals = append(ctx.Locals, symbols.NewScopeView(l.table, scope))
		}

		imports := d.Imports
		if len(imports) == 0 {
			imports = []string{l.pkg}
		}
		for _, imp := range imports {
			view, err := l.importView(imp)
			if err != nil {
				l.errorf(diag.WorldUnknownPackage, span, "context %q: %v", d.Name, err)
				continue
			}
			ctx.TopLevel = append(ctx.TopLevel, view)
		}

		for _, r := range d.Receivers {
			recv, err := l.receiver(r)
			if err != nil {
				l.errorf(diag.WorldBadReceiver, span, "context %q: %v", d.Name, err)
				continue
			}
			ctx.Receivers = append(ctx.Receivers, recv)
		}
		out = append(out, ctx)
	}
	return out
}

// importView maps "pkg" to the package scope, "pkg.*" to a star import
// and "pkg.name" to a single-name import.
func (l *loader) importView(imp string) (symbols.View, error) {
	if scope, ok := l.table.LookupPackage(imp); ok {
		return symbols.NewScopeView(l.table, scope), nil
	}
	dot := strings.LastIndexByte(imp, '.')
	if dot < 0 {
		return nil, fmt.Errorf("unknown package %q", imp)
	}
	pkg, name := imp[:dot], imp[dot+1:]
	if _, ok := l.table.LookupPackage(pkg); !ok {
		return nil, fmt.Errorf("unknown package %q", pkg)
	}
	only := source.NoStringID
	if name != "*" {
		only = l.name(name)
	}
	return symbols.NewImportingView(l.table, pkg, only), nil
}

func (l *loader) receiver(r receiverDoc) (*tower.ImplicitReceiverValue, error) {
	switch {
	case r.Dispatch != "" && r.Extension != "":
		return nil, errors.New("receiver is both dispatch and extension")
	case r.Dispatch != "":
		id, err := l.lookupClass(r.Dispatch)
		if err != nil {
			return nil, err
		}
		label := r.Label
		if label == "" {
			label = l.table.Name(id)
		}
		return &tower.ImplicitReceiverValue{
			Kind:      tower.ImplicitDispatch,
			ValueType: l.table.Symbol(id).Type,
			Class:     id,
			Label:     label,
		}, nil
	case r.Extension != "":
		typ, err := parseType(r.Extension, l)
		if err != nil {
			return nil, err
		}
		return &tower.ImplicitReceiverValue{Kind: tower.ImplicitExtension, ValueType: typ, Label: r.Label}, nil
	}
	return nil, errors.New("receiver needs dispatch or extension")
}

func parseCallKind(s string) (tower.CallKind, bool) {
	switch s {
	case "", "function":
		return tower.CallFunction, true
	case "variable":
		return tower.CallVariableAccess, true
	case "reference":
		return tower.CallCallableReference, true
	}
	return 0, false
}

var outcomes = []string{"resolved", "ambiguous", "inapplicable", "unresolved"}

func (l *loader) buildCalls(contexts []*Context) []*Call {
	out := make([]*Call, 0, len(l.doc.Calls))
	ids := make(map[string]bool, len(l.doc.Calls))
	for i, d := range l.doc.Calls {
		span := l.loc.table("call", i)
		if d.ID == "" {
			d.ID = fmt.Sprintf("call%d", i+1)
		}
		if ids[d.ID] {
			l.errorf(diag.WorldDuplicateCallID, span, "call id %q used twice", d.ID)
			continue
		}
		ids[d.ID] = true

		call, err := l.call(d, span, contexts)
		if err != nil {
			l.errorf(callCode(err), span, "call %s: %v", d.ID, err)
			continue
		}
		out = append(out, call)
	}
	return out
}

// callError carries the diagnostic code of a malformed call.
type callError struct {
	code diag.Code
	err  error
}

func (e *callError) Error() string { return e.err.Error() }
func (e *callError) Unwrap() error { return e.err }

func callCode(err error) diag.Code {
	var ce *callError
	if errors.As(err, &ce) {
		return ce.code
	}
	return diag.WorldBadCall
}

func badCall(code diag.Code, format string, args ...any) error {
	return &callError{code: code, err: fmt.Errorf(format, args...)}
}

func (l *loader) call(d callDoc, span source.Span, contexts []*Context) (*Call, error) {
	kind, ok := parseCallKind(d.Kind)
	switch {
	case !ok:
		return nil, badCall(diag.WorldBadCall, "unknown kind %q", d.Kind)
	case d.Name == "":
		return nil, badCall(diag.WorldBadCall, "missing name")
	case d.Receiver != "" && d.Qualifier != "":
		return nil, badCall(diag.WorldBadCall, "receiver and qualifier are exclusive")
	case d.Stub != "" && kind != tower.CallCallableReference:
		return nil, badCall(diag.WorldBadCall, "stub is only valid for references")
	case len(d.Args) > 0 && kind != tower.CallFunction:
		return nil, badCall(diag.WorldBadCall, "only function calls take arguments")
	}

	var ctx *Context
	if d.Context == "" && len(contexts) > 0 {
		ctx = contexts[0]
	}
	for _, c := range contexts {
		if c.Name == d.Context {
			ctx = c
		}
	}
	if ctx == nil {
		return nil, badCall(diag.WorldUnknownContext, "unknown context %q", d.Context)
	}

	info := &tower.CallInfo{Name: l.name(d.Name), Kind: kind, IsSafeCall: d.Safe, Span: span}
	switch {
	case d.Receiver != "":
		text, typ, found := strings.Cut(d.Receiver, ":")
		if !found {
			return nil, badCall(diag.WorldBadReceiver, "receiver %q must be \"text: Type\"", d.Receiver)
		}
		id, err := parseType(typ, l)
		if err != nil {
			return nil, badCall(diag.WorldBadType, "%v", err)
		}
		info.Explicit = &tower.ValueExpr{Text: strings.TrimSpace(text), Type: id, Safe: d.Safe}
	case d.Qualifier != "":
		q, err := l.qualifier(d.Qualifier)
		if err != nil {
			return nil, badCall(diag.WorldBadReceiver, "%v", err)
		}
		info.Explicit = q
	}
	if d.Stub != "" {
		id, err := parseType(d.Stub, l)
		if err != nil {
			return nil, badCall(diag.WorldBadType, "%v", err)
		}
		info.Stub = &tower.ValueExpr{Text: strings.TrimSpace(d.Stub), Type: id}
	}
	for _, a := range d.Args {
		arg := tower.Argument{}
		typ := a
		if name, rest, found := strings.Cut(a, "="); found {
			arg.Name = l.name(strings.TrimSpace(name))
			typ = rest
		}
		id, err := parseType(typ, l)
		if err != nil {
			return nil, badCall(diag.WorldBadType, "argument %q: %v", a, err)
		}
		arg.Type = id
		arg.Text = strings.TrimSpace(typ)
		info.Args = append(info.Args, arg)
	}

	expect, err := l.expectation(d)
	if err != nil {
		return nil, err
	}
	return &Call{ID: d.ID, Context: ctx, Info: info, Expect: expect, Span: span}, nil
}

// qualifier resolves a class path first and falls back to a package.
func (l *loader) qualifier(text string) (*tower.QualifierExpr, error) {
	if id, err := l.lookupClass(text); err == nil {
		return &tower.QualifierExpr{Text: text, Class: id}, nil
	}
	if _, ok := l.table.LookupPackage(text); ok {
		return &tower.QualifierExpr{Text: text, Package: text}, nil
	}
	return nil, fmt.Errorf("qualifier %q is neither a class nor a package", text)
}

func (l *loader) expectation(d callDoc) (Expectation, error) {
	e := Expectation{Outcome: d.Outcome, Candidates: slices.Clone(d.Candidates), Group: strings.ReplaceAll(d.Group, " ", "")}
	if d.Expect != "" {
		e.Candidates = append(e.Candidates, d.Expect)
		if e.Outcome == "" {
			e.Outcome = "resolved"
		}
	}
	if e.Outcome != "" && !slices.Contains(outcomes, e.Outcome) {
		return Expectation{}, badCall(diag.WorldUnknownExpectation, "unknown outcome %q", e.Outcome)
	}
	for _, c := range e.Candidates {
		if !l.names[c] && c != "invoke" {
			return Expectation{}, badCall(diag.WorldUnknownExpectation, "expected candidate %q is not declared", c)
		}
	}
	slices.Sort(e.Candidates)
	return e, nil
}

func (l *loader) reportUnusedLocals() {
	for i, d := range l.doc.Locals {
		if _, ok := l.locals[d.Name]; ok && !l.usedLocals[d.Name] {
			l.warnf(diag.WorldUnusedDeclaration, l.loc.table("local", i), "local scope %q is not used by any context", d.Name)
		}
	}
}
