package world

import (
	"fmt"
	"strings"

	"tower/internal/types"
)

// typeScope resolves the names a type expression may mention.
type typeScope interface {
	classType(path string) (types.TypeID, error)
	literalType() (types.TypeID, error)
	interner() *types.Interner
}

// parseType parses a type expression:
//
//	type    = primary [ "." fnTail ] | fnTail
//	fnTail  = "(" [ type { "," type } ] ")" "->" type
//	primary = "Any" | "Unit" | "literal" | path | "(" type ")"
//	path    = ident { "." ident }
func parseType(src string, scope typeScope) (types.TypeID, error) {
	p := &typeParser{src: src, scope: scope}
	id, err := p.parseType()
	if err != nil {
		return types.NoTypeID, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return types.NoTypeID, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return id, nil
}

type typeParser struct {
	src   string
	pos   int
	scope typeScope
}

func (p *typeParser) errorf(format string, args ...any) error {
	return fmt.Errorf("type %q at %d: %s", p.src, p.pos, fmt.Sprintf(format, args...))
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *typeParser) peek(tok string) bool {
	p.skipSpace()
	return strings.HasPrefix(p.src[p.pos:], tok)
}

func (p *typeParser) accept(tok string) bool {
	if p.peek(tok) {
		p.pos += len(tok)
		return true
	}
	return false
}

func (p *typeParser) expect(tok string) error {
	if !p.accept(tok) {
		if p.pos >= len(p.src) {
			return p.errorf("expected %q, got end of input", tok)
		}
		return p.errorf("expected %q", tok)
	}
	return nil
}

func (p *typeParser) parseType() (types.TypeID, error) {
	if p.peek("(") {
		params, err := p.parseList()
		if err != nil {
			return types.NoTypeID, err
		}
		if p.peek("->") {
			return p.finishFn(types.NoTypeID, params)
		}
		if len(params) != 1 {
			return types.NoTypeID, p.errorf("expected \"->\" after parameter list")
		}
		return p.maybeReceiverFn(params[0])
	}
	prim, err := p.parsePrimary()
	if err != nil {
		return types.NoTypeID, err
	}
	return p.maybeReceiverFn(prim)
}

func (p *typeParser) maybeReceiverFn(recv types.TypeID) (types.TypeID, error) {
	if !p.peek(".(") {
		return recv, nil
	}
	p.accept(".")
	params, err := p.parseList()
	if err != nil {
		return types.NoTypeID, err
	}
	return p.finishFn(recv, params)
}

func (p *typeParser) finishFn(recv types.TypeID, params []types.TypeID) (types.TypeID, error) {
	if err := p.expect("->"); err != nil {
		return types.NoTypeID, err
	}
	result, err := p.parseType()
	if err != nil {
		return types.NoTypeID, err
	}
	return p.scope.interner().RegisterFn(recv, params, result), nil
}

func (p *typeParser) parseList() ([]types.TypeID, error) {
	if err := p.expect("("); err != nil {
		return nil, err
	}
	var out []types.TypeID
	if p.accept(")") {
		return out, nil
	}
	for {
		id, err := p.parseType()
		if err != nil {
			return nil, err
		}
		out = append(out, id)
		if p.accept(")") {
			return out, nil
		}
		if err := p.expect(","); err != nil {
			return nil, err
		}
	}
}

func (p *typeParser) parsePrimary() (types.TypeID, error) {
	path, err := p.parsePath()
	if err != nil {
		return types.NoTypeID, err
	}
	switch path {
	case "Any":
		return p.scope.interner().Builtins().Any, nil
	case "Unit":
		return p.scope.interner().Builtins().Unit, nil
	case "literal":
		return p.scope.literalType()
	}
	return p.scope.classType(path)
}

// parsePath reads dotted identifiers, stopping before ".(".
func (p *typeParser) parsePath() (string, error) {
	start := -1
	for {
		p.skipSpace()
		begin := p.pos
		for p.pos < len(p.src) && isIdentByte(p.src[p.pos], p.pos == begin) {
			p.pos++
		}
		if p.pos == begin {
			return "", p.errorf("expected identifier")
		}
		if start < 0 {
			start = begin
		}
		if p.pos+1 < len(p.src) && p.src[p.pos] == '.' && p.src[p.pos+1] != '(' {
			p.pos++
			continue
		}
		return p.src[start:p.pos], nil
	}
}

func isIdentByte(c byte, first bool) bool {
	switch {
	case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return !first
	}
	return false
}
