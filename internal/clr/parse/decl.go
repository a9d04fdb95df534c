package parse

import (
	"github.com/dekarrin/clear/internal/clr/ast"
	"github.com/dekarrin/clear/internal/clr/ident"
	"github.com/dekarrin/clear/internal/clr/token"
)

// parseBlockItem parses one item inside a block: either a local
// declaration or a statement.
func (p *Parser) parseBlockItem() (ast.Stmt, error) {
	switch p.toks.Peek().Kind {
	case token.KwVal, token.KwVar:
		return p.parseValueDecl()
	case token.KwFunc:
		return p.parseFunctionDecl()
	case token.KwStruct:
		return p.parseStructDecl()
	default:
		return p.parseStmt()
	}
}

func (p *Parser) parseValueDecl() (*ast.ValueDecl, error) {
	kw := p.toks.Next()
	isVar := kw.Kind == token.KwVar

	var bindings []*ast.Binding
	var annot ast.TypeExpr

	if p.check(token.LParen) {
		p.toks.Next()
		for {
			nameTok, err := p.expect(token.Ident)
			if err != nil {
				return nil, err
			}
			bindings = append(bindings, &ast.Binding{
				ID:      ident.New(),
				Name:    nameTok.Lexeme(),
				Region:  nameTok.Region,
				Mutable: isVar,
			})
			if _, ok := p.match(token.Comma); !ok {
				break
			}
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
	} else {
		nameTok, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}

		if _, ok := p.match(token.Colon); ok {
			annot, err = p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
		}

		bindings = []*ast.Binding{{
			ID:      ident.New(),
			Name:    nameTok.Lexeme(),
			Region:  nameTok.Region,
			Mutable: isVar,
		}}
	}

	if _, err := p.expect(token.Equal); err != nil {
		return nil, err
	}

	init, err := p.parseExpression(precAssignment)
	if err != nil {
		return nil, err
	}

	semi, err := p.expect(token.Semicolon)
	if err != nil {
		return nil, err
	}

	return &ast.ValueDecl{
		Base:     ast.Base{Rgn: kw.Region.Union(semi.Region)},
		IsVar:    isVar,
		Bindings: bindings,
		Annot:    annot,
		Init:     init,
	}, nil
}

func (p *Parser) parseParamList() ([]*ast.Param, error) {
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}

	var params []*ast.Param
	for !p.check(token.RParen) {
		typeExpr, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		nameTok, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		params = append(params, &ast.Param{
			Type: typeExpr,
			Binding: &ast.Binding{
				ID:     ident.New(),
				Name:   nameTok.Lexeme(),
				Region: nameTok.Region,
			},
		})
		if _, ok := p.match(token.Comma); !ok {
			break
		}
	}

	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) parseFunctionDecl() (*ast.FunctionDecl, error) {
	kw := p.toks.Next()

	nameTok, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}

	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}

	var retType ast.TypeExpr
	if !p.check(token.LBrace) {
		retType, err = p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	binding := &ast.Binding{ID: ident.New(), Name: nameTok.Lexeme(), Region: nameTok.Region}

	return &ast.FunctionDecl{
		Base:       ast.Base{Rgn: kw.Region.Union(body.Region())},
		Binding:    binding,
		Params:     params,
		ReturnType: retType,
		Body:       body,
	}, nil
}

func (p *Parser) parseStructDecl() (*ast.StructDecl, error) {
	kw := p.toks.Next()

	nameTok, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}

	decl := &ast.StructDecl{
		Base:    ast.Base{},
		Binding: &ast.Binding{ID: ident.New(), Name: nameTok.Lexeme(), Region: nameTok.Region},
	}

	for !p.check(token.RBrace) {
		if p.check(token.KwFunc) {
			method, err := p.parseFunctionDecl()
			if err != nil {
				return nil, err
			}
			decl.Methods = append(decl.Methods, method)
			continue
		}

		typeExpr, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		nameTok, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Semicolon); err != nil {
			return nil, err
		}
		decl.Fields = append(decl.Fields, &ast.Param{
			Type:    typeExpr,
			Binding: &ast.Binding{ID: ident.New(), Name: nameTok.Lexeme(), Region: nameTok.Region},
		})
	}

	closeBrace, err := p.expect(token.RBrace)
	if err != nil {
		return nil, err
	}
	decl.Base.Rgn = kw.Region.Union(closeBrace.Region)

	return decl, nil
}
