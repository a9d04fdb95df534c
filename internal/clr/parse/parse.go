// Package parse implements Clear's parser: a Pratt expression parser with
// precedence and associativity rules, plus declaration/statement parsing
// and declaration-boundary error synchronization. Grounded on
// tunascript/parser.go's nud/led/lbp design (internal/clr/parse/expr.go
// carries the direct adaptation).
package parse

import (
	"github.com/dekarrin/clear/internal/clr/ast"
	"github.com/dekarrin/clear/internal/clr/errors"
	"github.com/dekarrin/clear/internal/clr/source"
	"github.com/dekarrin/clear/internal/clr/token"
)

// Parser holds the mutable state threaded through every parse* function:
// the token stream and the diagnostic sink. There is no package-level
// mutable state, per Design Note "Global mutable state".
type Parser struct {
	toks *token.Stream
	buf  *source.Buffer
	errs *errors.Sink
}

// Parse tokenizes and parses buf's full text into a Program. Diagnostics
// accumulated along the way are appended to sink; Parse never returns a nil
// Program, even when diagnostics were reported - any declaration that
// could not be parsed is simply omitted, a recoverable-error result rather
// than an exception-for-control-flow design.
func Parse(buf *source.Buffer, sink *errors.Sink) *ast.Program {
	p := &Parser{toks: token.New(buf), buf: buf, errs: sink}

	prog := &ast.Program{}
	for !p.toks.AtEnd() {
		item, ok := p.parseTopItem()
		if ok {
			prog.Decls = append(prog.Decls, item)
		}
	}
	return prog
}

// parseTopItem parses one top-level item - a declaration or a bare
// statement - synchronizing to the next declaration boundary on error so
// that subsequent items are still parsed and reported against.
func (p *Parser) parseTopItem() (ast.Stmt, bool) {
	defer p.recoverSync()

	item, err := p.parseBlockItem()
	if err != nil {
		p.errs.Add(err.(errors.Diagnostic))
		p.syncToDeclBoundary()
		return nil, false
	}
	return item, true
}

// recoverSync catches an internal panic (used only for truly unexpected
// nil-token conditions deep in recursive descent, never for ordinary
// syntax errors, which are returned as values) and turns it into a
// diagnostic plus a sync, so one malformed declaration never aborts the
// whole compile.
func (p *Parser) recoverSync() {
	if r := recover(); r != nil {
		p.errs.Addf(errors.Parse, []source.View{p.toks.Peek().Region}, "internal parse error: %v", r)
		p.syncToDeclBoundary()
	}
}

// syncToDeclBoundary advances the stream past tokens until it is
// positioned at a token that can start a new declaration (val/var/func/
// struct), just past a ';', or at EOF, discarding everything in between.
func (p *Parser) syncToDeclBoundary() {
	for !p.toks.AtEnd() {
		switch p.toks.Peek().Kind {
		case token.KwVal, token.KwVar, token.KwFunc, token.KwStruct:
			return
		}
		if p.toks.Peek().Kind == token.Semicolon {
			p.toks.Next()
			return
		}
		p.toks.Next()
	}
}

func (p *Parser) check(k token.Kind) bool {
	return p.toks.Peek().Kind == k
}

func (p *Parser) match(k token.Kind) (token.Token, bool) {
	if p.check(k) {
		return p.toks.Next(), true
	}
	return token.Token{}, false
}

func (p *Parser) expect(k token.Kind) (token.Token, error) {
	if p.check(k) {
		return p.toks.Next(), nil
	}
	tok := p.toks.Peek()
	return tok, errors.Newf(errors.Parse, []source.View{tok.Region}, "expected %s but found %s", humanKind(k), tok.Human())
}

func humanKind(k token.Kind) string {
	return token.Token{Kind: k}.Human()
}

func errf(kind errors.Kind, region source.View, format string, a ...interface{}) error {
	return errors.Newf(kind, []source.View{region}, format, a...)
}
