// Package token is the compiler-facing side of the token stream contract:
// one-token lookahead plus single-token backtrack, the parser's required
// interface. It adapts the raw internal/lex.Token sequence (byte ranges
// only) into Tokens carrying a full source.View, grounded on the Token
// contract shape in ictiobus/types and the Peek/Next/Remaining shape of
// tunascript's own tokenStream.
package token

import (
	"github.com/dekarrin/clear/internal/clr/source"
	"github.com/dekarrin/clear/internal/lex"
)

// Kind is re-exported from lex so callers never need to import both
// packages just to switch on token kind.
type Kind = lex.Kind

const (
	EOF        = lex.EOF
	Ident      = lex.Ident
	NumLit     = lex.NumLit
	StrLit     = lex.StrLit
	KwVal      = lex.KwVal
	KwVar      = lex.KwVar
	KwFunc     = lex.KwFunc
	KwStruct   = lex.KwStruct
	KwIf       = lex.KwIf
	KwElse     = lex.KwElse
	KwWhile    = lex.KwWhile
	KwReturn   = lex.KwReturn
	KwPrint    = lex.KwPrint
	KwOr       = lex.KwOr
	KwAnd      = lex.KwAnd
	KwTrue     = lex.KwTrue
	KwFalse    = lex.KwFalse
	KwNil      = lex.KwNil
	KwThis     = lex.KwThis
	KwVoid     = lex.KwVoid
	KwCase     = lex.KwCase
	LBrace     = lex.LBrace
	RBrace     = lex.RBrace
	LParen     = lex.LParen
	RParen     = lex.RParen
	Comma      = lex.Comma
	Semicolon  = lex.Semicolon
	Colon      = lex.Colon
	Question   = lex.Question
	Pipe       = lex.Pipe
	Dot        = lex.Dot
	Arrow      = lex.Arrow
	Plus       = lex.Plus
	Minus      = lex.Minus
	Star       = lex.Star
	Slash      = lex.Slash
	Bang       = lex.Bang
	Equal      = lex.Equal
	EqualEqual = lex.EqualEqual
	BangEqual  = lex.BangEqual
	Less       = lex.Less
	Greater    = lex.Greater
	LessEqual  = lex.LessEqual
	GreaterEqual = lex.GreaterEqual
)

// Token is a classified lexeme together with the source region it came
// from. Tokens are immutable once produced.
type Token struct {
	Kind   Kind
	Region source.View
}

// Lexeme returns the exact source text of the token.
func (t Token) Lexeme() string {
	return t.Region.Text()
}

// Human gives a human-readable name for the token's kind, used in
// diagnostic messages ("expected ';' but found identifier").
func (t Token) Human() string {
	if name, ok := humanNames[t.Kind]; ok {
		return name
	}
	return "token"
}

var humanNames = map[Kind]string{
	EOF: "end of input", Ident: "identifier", NumLit: "number", StrLit: "string",
	KwVal: "'val'", KwVar: "'var'", KwFunc: "'func'", KwStruct: "'struct'",
	KwIf: "'if'", KwElse: "'else'", KwWhile: "'while'", KwReturn: "'return'",
	KwPrint: "'print'", KwOr: "'or'", KwAnd: "'and'", KwTrue: "'true'",
	KwFalse: "'false'", KwNil: "'nil'", KwThis: "'this'", KwVoid: "'void'",
	KwCase: "'case'",
	LBrace: "'{'", RBrace: "'}'", LParen: "'('", RParen: "')'",
	Comma: "','", Semicolon: "';'", Colon: "':'", Question: "'?'",
	Pipe: "'|'", Dot: "'.'", Arrow: "'=>'",
	Plus: "'+'", Minus: "'-'", Star: "'*'", Slash: "'/'", Bang: "'!'",
	Equal: "'='", EqualEqual: "'=='", BangEqual: "'!='", Less: "'<'",
	Greater: "'>'", LessEqual: "'<='", GreaterEqual: "'>='",
}

// Stream is a one-token-lookahead, single-token-backtrack view over a
// token sequence, bound to the source.Buffer the tokens were lexed from.
type Stream struct {
	buf    *source.Buffer
	tokens []Token
	cur    int
}

// New builds a Stream by lexing the entirety of buf.
func New(buf *source.Buffer) *Stream {
	raw := lex.Lex(buf.Text())
	toks := make([]Token, len(raw))
	for i, rt := range raw {
		toks[i] = Token{Kind: rt.Kind, Region: buf.View(rt.Start, rt.End)}
	}
	return &Stream{buf: buf, tokens: toks}
}

// Peek returns the next token without consuming it.
func (s *Stream) Peek() Token {
	return s.tokens[s.cur]
}

// PeekAt returns the token n positions ahead of the cursor without
// consuming anything; PeekAt(0) is equivalent to Peek.
func (s *Stream) PeekAt(n int) Token {
	i := s.cur + n
	if i >= len(s.tokens) {
		return s.tokens[len(s.tokens)-1]
	}
	return s.tokens[i]
}

// Next consumes and returns the next token.
func (s *Stream) Next() Token {
	t := s.tokens[s.cur]
	if s.cur < len(s.tokens)-1 {
		s.cur++
	}
	return t
}

// Backtrack rewinds the stream by one token. It is only valid to call this
// at a statement starter, per the parser's backtracking contract.
func (s *Stream) Backtrack() {
	if s.cur > 0 {
		s.cur--
	}
}

// Mark returns an opaque cursor position that can later be restored with
// Reset, used by the lambda parser to back out of a tentative return-type
// parse.
func (s *Stream) Mark() int {
	return s.cur
}

// Reset restores the stream's cursor to a position previously returned by
// Mark.
func (s *Stream) Reset(mark int) {
	s.cur = mark
}

// AtEnd reports whether the stream is positioned at the final EOF token.
func (s *Stream) AtEnd() bool {
	return s.Peek().Kind == EOF
}
