package parse

import (
	"strconv"

	"github.com/dekarrin/clear/internal/clr/ast"
	"github.com/dekarrin/clear/internal/clr/errors"
	"github.com/dekarrin/clear/internal/clr/ident"
	"github.com/dekarrin/clear/internal/clr/token"
	"github.com/dekarrin/clear/internal/clr/types"
	"github.com/dekarrin/clear/internal/lex"
)

// Precedence levels, lowest to tightest-binding: ASSIGNMENT < OR < AND <
// EQUALITY < COMPARISON < TERM < FACTOR < UNARY < CALL < PRIMARY.
// Assignment itself is never reached by
// the expression parser (see DESIGN.md's associativity note); the constant
// is kept only so callers can pass "parse a full expression" uniformly.
const (
	precAssignment = iota
	precOr
	precAnd
	precEquality
	precComparison
	precTerm
	precFactor
	precUnary
	precCall
	precPrimary
)

// binaryInfo reports the BinaryOp and binding precedence for a token kind
// that can start an infix operator, or ok=false if it cannot.
func binaryInfo(k token.Kind) (op types.BinaryOp, prec int, ok bool) {
	switch k {
	case token.KwOr:
		return types.OpOr, precOr, true
	case token.KwAnd:
		return types.OpAnd, precAnd, true
	case token.EqualEqual:
		return types.OpEqual, precEquality, true
	case token.BangEqual:
		return types.OpNotEqual, precEquality, true
	case token.Less:
		return types.OpLess, precComparison, true
	case token.Greater:
		return types.OpGreater, precComparison, true
	case token.LessEqual:
		return types.OpLessEq, precComparison, true
	case token.GreaterEqual:
		return types.OpGreaterEq, precComparison, true
	case token.Plus:
		return types.OpAdd, precTerm, true
	case token.Minus:
		return types.OpSub, precTerm, true
	case token.Star:
		return types.OpMul, precFactor, true
	case token.Slash:
		return types.OpDiv, precFactor, true
	}
	return "", 0, false
}

// parseExpression is the precedence-climbing driver: it parses a unary/
// primary term, then repeatedly absorbs infix operators whose precedence is
// at least minPrec. Every operator is left-associative (the right operand
// is parsed at prec+1), per DESIGN.md's associativity resolution.
func (p *Parser) parseExpression(minPrec int) (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		op, prec, ok := binaryInfo(p.toks.Peek().Kind)
		if !ok || prec < minPrec {
			break
		}
		p.toks.Next()
		right, err := p.parseExpression(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{
			Base:  ast.Base{Rgn: left.Region().Union(right.Region())},
			Op:    op,
			Left:  left,
			Right: right,
		}
	}

	return left, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	switch p.toks.Peek().Kind {
	case token.Minus:
		tok := p.toks.Next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Base: ast.Base{Rgn: tok.Region.Union(operand.Region())}, Op: types.OpNeg, Operand: operand}, nil
	case token.Bang:
		tok := p.toks.Next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Base: ast.Base{Rgn: tok.Region.Union(operand.Region())}, Op: types.OpNot, Operand: operand}, nil
	default:
		return p.parseCallOrAccess()
	}
}

func (p *Parser) parseCallOrAccess() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch p.toks.Peek().Kind {
		case token.LParen:
			p.toks.Next()
			var args []ast.Expr
			for !p.check(token.RParen) {
				arg, err := p.parseExpression(precAssignment)
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if _, ok := p.match(token.Comma); !ok {
					break
				}
			}
			closeParen, err := p.expect(token.RParen)
			if err != nil {
				return nil, err
			}
			expr = &ast.Call{
				Base:   ast.Base{Rgn: expr.Region().Union(closeParen.Region)},
				Callee: expr,
				Args:   args,
			}
		case token.Dot:
			p.toks.Next()
			nameTok, err := p.expect(token.Ident)
			if err != nil {
				return nil, err
			}
			expr = &ast.Access{
				Base:   ast.Base{Rgn: expr.Region().Union(nameTok.Region)},
				Target: expr,
				Field:  nameTok.Lexeme(),
			}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.toks.Peek()

	switch tok.Kind {
	case token.NumLit:
		return p.parseNumberLiteral()
	case token.StrLit:
		return p.parseStringLiteral()
	case token.KwTrue:
		p.toks.Next()
		return &ast.BoolLit{Base: ast.Base{Rgn: tok.Region}, Value: true}, nil
	case token.KwFalse:
		p.toks.Next()
		return &ast.BoolLit{Base: ast.Base{Rgn: tok.Region}, Value: false}, nil
	case token.KwNil:
		p.toks.Next()
		return &ast.NilLit{Base: ast.Base{Rgn: tok.Region}}, nil
	case token.KwThis:
		p.toks.Next()
		return &ast.Ident{Base: ast.Base{Rgn: tok.Region}, Name: "this", Ref: ident.Nil}, nil
	case token.KwFunc:
		return p.parseLambda()
	case token.KwCase:
		return p.parseCaseExpr()
	case token.LParen:
		return p.parseGroupOrTuple()
	case token.Ident:
		return p.parseIdentOrConstruct()
	}

	return nil, errf(errors.Parse, tok.Region, "expected an expression but found %s", tok.Human())
}

func (p *Parser) parseNumberLiteral() (ast.Expr, error) {
	tok := p.toks.Next()
	lexeme := tok.Lexeme()

	// Integer-suffix combining: a NumLit immediately followed by a bare
	// identifier lexeme "i" (no intervening whitespace) becomes an IntLit.
	// The parser is the component responsible for this, not the lexer
	// (see internal/lex).
	if p.toks.Peek().Kind == token.Ident && p.toks.Peek().Lexeme() == "i" && p.toks.Peek().Region.Start == tok.Region.End {
		suffix := p.toks.Next()
		n, err := strconv.ParseInt(lexeme, 10, 64)
		if err != nil {
			return nil, errf(errors.Parse, tok.Region, "invalid integer literal %q", lexeme)
		}
		return &ast.IntLit{Base: ast.Base{Rgn: tok.Region.Union(suffix.Region)}, Value: n}, nil
	}

	f, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		return nil, errf(errors.Parse, tok.Region, "invalid numeric literal %q", lexeme)
	}
	return &ast.NumLit{Base: ast.Base{Rgn: tok.Region}, Value: f}, nil
}

func (p *Parser) parseStringLiteral() (ast.Expr, error) {
	tok := p.toks.Next()
	value := lex.Unquote(tok.Lexeme())
	region := tok.Region

	// Adjacent string literals are combined into one StrLit, joined by a
	// literal '"' character.
	for p.toks.Peek().Kind == token.StrLit {
		next := p.toks.Next()
		value = value + `"` + lex.Unquote(next.Lexeme())
		region = region.Union(next.Region)
	}

	return &ast.StrLit{Base: ast.Base{Rgn: region}, Value: value}, nil
}

func (p *Parser) parseGroupOrTuple() (ast.Expr, error) {
	open := p.toks.Next()

	first, err := p.parseExpression(precAssignment)
	if err != nil {
		return nil, err
	}

	if _, ok := p.match(token.Comma); !ok {
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return first, nil
	}

	elems := []ast.Expr{first}
	for !p.check(token.RParen) {
		e, err := p.parseExpression(precAssignment)
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if _, ok := p.match(token.Comma); !ok {
			break
		}
	}
	closeParen, err := p.expect(token.RParen)
	if err != nil {
		return nil, err
	}
	return &ast.TupleExpr{Base: ast.Base{Rgn: open.Region.Union(closeParen.Region)}, Elems: elems}, nil
}

// parseIdentOrConstruct handles a bare identifier used as a value reference,
// or - when immediately followed by '{' - a struct literal (Construct).
func (p *Parser) parseIdentOrConstruct() (ast.Expr, error) {
	tok := p.toks.Next()

	if p.check(token.LBrace) {
		return p.parseConstruct(tok)
	}

	return &ast.Ident{Base: ast.Base{Rgn: tok.Region}, Name: tok.Lexeme(), Ref: ident.Nil}, nil
}

func (p *Parser) parseConstruct(nameTok token.Token) (ast.Expr, error) {
	typeName := &ast.TypeIdent{Base: ast.Base{Rgn: nameTok.Region}, Name: nameTok.Lexeme(), Ref: ident.Nil}

	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}

	var fields []ast.ConstructField
	for !p.check(token.RBrace) {
		labelTok, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Colon); err != nil {
			return nil, err
		}
		value, err := p.parseExpression(precAssignment)
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.ConstructField{
			Region: labelTok.Region.Union(value.Region()),
			Label:  labelTok.Lexeme(),
			Value:  value,
		})
		if _, ok := p.match(token.Comma); !ok {
			break
		}
	}

	closeBrace, err := p.expect(token.RBrace)
	if err != nil {
		return nil, err
	}

	return &ast.Construct{
		Base:     ast.Base{Rgn: nameTok.Region.Union(closeBrace.Region)},
		TypeName: typeName,
		Fields:   fields,
		Ref:      ident.Nil,
	}, nil
}

func (p *Parser) parseLambda() (ast.Expr, error) {
	kw := p.toks.Next()

	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}

	// The return-type annotation is optional, and a builtin or struct type
	// name lexes as a plain identifier - the same token that could begin
	// the body expression. Tentatively parse a type; keep it only if what
	// follows can begin the body, otherwise rewind and treat everything
	// after the parameter list as the body.
	var retType ast.TypeExpr
	if canStartType(p.toks.Peek().Kind) {
		mark := p.toks.Mark()
		t, terr := p.parseTypeExpr()
		if terr == nil && isExprStart(p.toks.Peek().Kind) {
			retType = t
		} else {
			p.toks.Reset(mark)
		}
	}

	body, err := p.parseExpression(precAssignment)
	if err != nil {
		return nil, err
	}

	return &ast.Lambda{
		Base:       ast.Base{Rgn: kw.Region.Union(body.Region())},
		Binding:    &ast.Binding{ID: ident.New(), Name: "", Region: kw.Region},
		Params:     params,
		ReturnType: retType,
		Body:       body,
	}, nil
}

// canStartType reports whether k can begin a type expression, used by the
// lambda parser's tentative return-type parse.
func canStartType(k token.Kind) bool {
	switch k {
	case token.KwFunc, token.KwVoid, token.KwNil, token.Ident:
		return true
	}
	return false
}

// isExprStart reports whether k can start an expression, used by the
// lambda parser to decide whether the tokens just parsed as a tentative
// return type were really the annotation (a body expression must follow)
// or were themselves the start of the body.
func isExprStart(k token.Kind) bool {
	switch k {
	case token.NumLit, token.StrLit, token.KwTrue, token.KwFalse, token.KwNil,
		token.KwThis, token.KwFunc, token.KwCase, token.LParen, token.Ident,
		token.Minus, token.Bang:
		return true
	}
	return false
}

func (p *Parser) parseCaseExpr() (ast.Expr, error) {
	kw := p.toks.Next()

	// A bare identifier directly followed by '{' is the whole target, and
	// that '{' opens the arms; a struct-literal target needs parentheses.
	var target ast.Expr
	var err error
	if p.check(token.Ident) && p.toks.PeekAt(1).Kind == token.LBrace {
		tok := p.toks.Next()
		target = &ast.Ident{Base: ast.Base{Rgn: tok.Region}, Name: tok.Lexeme(), Ref: ident.Nil}
	} else {
		target, err = p.parseExpression(precOr)
	}
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}

	node := &ast.CaseExpr{Target: target}

	for !p.check(token.RBrace) {
		if p.check(token.KwElse) {
			p.toks.Next()
			if _, err := p.expect(token.Arrow); err != nil {
				return nil, err
			}
			fb, err := p.parseExpression(precAssignment)
			if err != nil {
				return nil, err
			}
			node.Fallback = fb
			if _, ok := p.match(token.Comma); !ok {
				break
			}
			continue
		}

		armType, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Arrow); err != nil {
			return nil, err
		}
		value, err := p.parseExpression(precAssignment)
		if err != nil {
			return nil, err
		}
		node.Arms = append(node.Arms, ast.CaseArm{Type: armType, Value: value})
		if _, ok := p.match(token.Comma); !ok {
			break
		}
	}

	closeBrace, err := p.expect(token.RBrace)
	if err != nil {
		return nil, err
	}
	node.Base.Rgn = kw.Region.Union(closeBrace.Region)
	return node, nil
}
