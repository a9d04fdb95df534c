package parse

import (
	"github.com/dekarrin/clear/internal/clr/ast"
	"github.com/dekarrin/clear/internal/clr/token"
)

// parseStmt parses one statement: block, if, while, return, print, or an
// expression statement (which may turn out to be a `set`-shaped assignment
// once the `=` token is seen following the parsed target expression).
func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch p.toks.Peek().Kind {
	case token.LBrace:
		return p.parseBlock()
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwReturn:
		return p.parseReturn()
	case token.KwPrint:
		return p.parsePrint()
	default:
		return p.parseExprOrSet()
	}
}

func (p *Parser) parseBlock() (*ast.Block, error) {
	open, err := p.expect(token.LBrace)
	if err != nil {
		return nil, err
	}

	block := &ast.Block{}
	for !p.check(token.RBrace) && !p.toks.AtEnd() {
		item, err := p.parseBlockItem()
		if err != nil {
			return nil, err
		}
		block.Items = append(block.Items, item)
	}

	close, err := p.expect(token.RBrace)
	if err != nil {
		return nil, err
	}
	block.Base.Rgn = open.Region.Union(close.Region)
	return block, nil
}

func (p *Parser) parseIf() (*ast.If, error) {
	kw := p.toks.Next()

	node := &ast.If{Base: ast.Base{Rgn: kw.Region}}

	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(precOr)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	node.Conds = append(node.Conds, cond)
	node.Blocks = append(node.Blocks, body)
	last := body.Region()

	for p.check(token.KwElse) {
		p.toks.Next()
		if p.check(token.KwIf) {
			p.toks.Next()
			if _, err := p.expect(token.LParen); err != nil {
				return nil, err
			}
			c, err := p.parseExpression(precOr)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RParen); err != nil {
				return nil, err
			}
			b, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			node.Conds = append(node.Conds, c)
			node.Blocks = append(node.Blocks, b)
			last = b.Region()
			continue
		}
		elseBlock, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		node.Else = elseBlock
		last = elseBlock.Region()
		break
	}

	node.Base.Rgn = kw.Region.Union(last)
	return node, nil
}

func (p *Parser) parseWhile() (*ast.While, error) {
	kw := p.toks.Next()

	var cond ast.Expr
	if _, ok := p.match(token.LParen); ok {
		c, err := p.parseExpression(precOr)
		if err != nil {
			return nil, err
		}
		cond = c
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &ast.While{
		Base: ast.Base{Rgn: kw.Region.Union(body.Region())},
		Cond: cond,
		Body: body,
	}, nil
}

func (p *Parser) parseReturn() (*ast.Return, error) {
	kw := p.toks.Next()

	var value ast.Expr
	if !p.check(token.Semicolon) {
		v, err := p.parseExpression(precAssignment)
		if err != nil {
			return nil, err
		}
		value = v
	}

	semi, err := p.expect(token.Semicolon)
	if err != nil {
		return nil, err
	}

	return &ast.Return{Base: ast.Base{Rgn: kw.Region.Union(semi.Region)}, Value: value}, nil
}

func (p *Parser) parsePrint() (*ast.Print, error) {
	kw := p.toks.Next()

	var value ast.Expr
	if !p.check(token.Semicolon) {
		v, err := p.parseExpression(precAssignment)
		if err != nil {
			return nil, err
		}
		value = v
	}

	semi, err := p.expect(token.Semicolon)
	if err != nil {
		return nil, err
	}

	return &ast.Print{Base: ast.Base{Rgn: kw.Region.Union(semi.Region)}, Value: value}, nil
}

// parseExprOrSet parses either `target = value;` (a Set statement) or a bare
// expression statement, disambiguated after the fact by whether `=` follows
// the parsed target - assignment is never an expression-level operator (see
// DESIGN.md's associativity note).
func (p *Parser) parseExprOrSet() (ast.Stmt, error) {
	target, err := p.parseExpression(precAssignment)
	if err != nil {
		return nil, err
	}

	if _, ok := p.match(token.Equal); ok {
		value, err := p.parseExpression(precAssignment)
		if err != nil {
			return nil, err
		}
		semi, err := p.expect(token.Semicolon)
		if err != nil {
			return nil, err
		}
		return &ast.Set{
			Base:   ast.Base{Rgn: target.Region().Union(semi.Region)},
			Target: target,
			Value:  value,
		}, nil
	}

	semi, err := p.expect(token.Semicolon)
	if err != nil {
		return nil, err
	}
	return &ast.ExprStmt{
		Base:  ast.Base{Rgn: target.Region().Union(semi.Region)},
		Value: target,
	}, nil
}
