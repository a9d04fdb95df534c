package parse

import (
	"github.com/dekarrin/clear/internal/clr/ast"
	"github.com/dekarrin/clear/internal/clr/errors"
	"github.com/dekarrin/clear/internal/clr/ident"
	"github.com/dekarrin/clear/internal/clr/token"
)

var builtinTypeNames = map[string]bool{
	"int": true, "bool": true, "num": true, "str": true,
}

// parseTypeExpr parses a full type expression: a `|`-separated union of
// type terms, each of which may carry a trailing `?` (sugar for `| nil`).
func (p *Parser) parseTypeExpr() (ast.TypeExpr, error) {
	left, err := p.parseTypeTerm()
	if err != nil {
		return nil, err
	}
	for {
		pipe, ok := p.match(token.Pipe)
		if !ok {
			break
		}
		right, err := p.parseTypeTerm()
		if err != nil {
			return nil, err
		}
		left = &ast.TypeUnion{
			Base:  ast.Base{Rgn: left.Region().Union(right.Region())},
			Left:  left,
			Right: right,
		}
		_ = pipe
	}
	return left, nil
}

func (p *Parser) parseTypeTerm() (ast.TypeExpr, error) {
	base, err := p.parseTypeAtom()
	if err != nil {
		return nil, err
	}
	for {
		q, ok := p.match(token.Question)
		if !ok {
			break
		}
		base = &ast.TypeOptional{
			Base:  ast.Base{Rgn: base.Region().Union(q.Region)},
			Inner: base,
		}
	}
	return base, nil
}

func (p *Parser) parseTypeAtom() (ast.TypeExpr, error) {
	switch p.toks.Peek().Kind {
	case token.KwFunc:
		return p.parseTypeFunction()
	case token.KwVoid:
		tok := p.toks.Next()
		return &ast.TypeAtom{Base: ast.Base{Rgn: tok.Region}, Name: "void"}, nil
	case token.KwNil:
		tok := p.toks.Next()
		return &ast.TypeAtom{Base: ast.Base{Rgn: tok.Region}, Name: "nil"}, nil
	case token.Ident:
		tok := p.toks.Next()
		name := tok.Lexeme()
		if builtinTypeNames[name] {
			return &ast.TypeAtom{Base: ast.Base{Rgn: tok.Region}, Name: name}, nil
		}
		return &ast.TypeIdent{Base: ast.Base{Rgn: tok.Region}, Name: name, Ref: ident.Nil}, nil
	default:
		tok := p.toks.Peek()
		return nil, errf(errors.Parse, tok.Region, "expected a type but found %s", tok.Human())
	}
}

func (p *Parser) parseTypeFunction() (*ast.TypeFunction, error) {
	kw := p.toks.Next()

	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	var params []ast.TypeExpr
	for !p.check(token.RParen) {
		t, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		params = append(params, t)
		if _, ok := p.match(token.Comma); !ok {
			break
		}
	}
	closeParen, err := p.expect(token.RParen)
	if err != nil {
		return nil, err
	}

	var ret ast.TypeExpr
	last := closeParen.Region
	if !p.check(token.LBrace) && !p.check(token.Semicolon) && !p.check(token.Comma) &&
		!p.check(token.RParen) && !p.check(token.Pipe) && !p.check(token.Question) {
		ret, err = p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		last = ret.Region()
	}

	return &ast.TypeFunction{
		Base:   ast.Base{Rgn: kw.Region.Union(last)},
		Params: params,
		Return: ret,
	}, nil
}
