package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/clear/internal/clr/source"
)

func newStream(t *testing.T, src string) *Stream {
	t.Helper()
	return New(source.NewBuffer("t", src))
}

func Test_Stream_PeekDoesNotConsume(t *testing.T) {
	s := newStream(t, "val x")
	first := s.Peek()
	second := s.Peek()
	assert.Equal(t, first, second)
	assert.Equal(t, KwVal, first.Kind)
}

func Test_Stream_NextAdvances(t *testing.T) {
	s := newStream(t, "val x")
	assert.Equal(t, KwVal, s.Next().Kind)
	assert.Equal(t, Ident, s.Next().Kind)
	assert.Equal(t, EOF, s.Next().Kind)
}

func Test_Stream_NextAtEndStaysAtEOF(t *testing.T) {
	s := newStream(t, "")
	require.Equal(t, EOF, s.Next().Kind)
	assert.Equal(t, EOF, s.Next().Kind, "repeated Next at end should keep returning EOF, not panic")
}

func Test_Stream_PeekAt(t *testing.T) {
	s := newStream(t, "val x = 1i;")
	assert.Equal(t, KwVal, s.PeekAt(0).Kind)
	assert.Equal(t, Ident, s.PeekAt(1).Kind)
	assert.Equal(t, Equal, s.PeekAt(2).Kind)

	// past the end, PeekAt clamps to the final EOF token rather than panicking.
	assert.Equal(t, EOF, s.PeekAt(100).Kind)
}

func Test_Stream_Backtrack(t *testing.T) {
	s := newStream(t, "val x")
	s.Next() // consume KwVal
	s.Next() // consume Ident
	s.Backtrack()
	assert.Equal(t, Ident, s.Peek().Kind)
}

func Test_Stream_Backtrack_atStartIsNoop(t *testing.T) {
	s := newStream(t, "val x")
	s.Backtrack()
	assert.Equal(t, KwVal, s.Peek().Kind)
}

func Test_Stream_MarkAndReset(t *testing.T) {
	s := newStream(t, "val x = 1i;")
	mark := s.Mark()
	s.Next()
	s.Next()
	s.Next()
	s.Reset(mark)
	assert.Equal(t, KwVal, s.Peek().Kind)
}

func Test_Stream_AtEnd(t *testing.T) {
	s := newStream(t, "x")
	assert.False(t, s.AtEnd())
	s.Next()
	assert.True(t, s.AtEnd())
}

func Test_Token_Lexeme(t *testing.T) {
	s := newStream(t, "myVar")
	tok := s.Next()
	assert.Equal(t, "myVar", tok.Lexeme())
}

func Test_Token_Human(t *testing.T) {
	assert.Equal(t, "'val'", Token{Kind: KwVal}.Human())
	assert.Equal(t, "identifier", Token{Kind: Ident}.Human())
}
