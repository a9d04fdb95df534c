package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/clear/internal/clr/source"
)

func Test_Sink_HasErrors(t *testing.T) {
	s := &Sink{}
	assert.False(t, s.HasErrors())

	s.Add(Warn(Parse, "just a warning"))
	assert.False(t, s.HasErrors(), "a warning alone should not trip HasErrors")

	s.Add(New(Semantic, "a real problem"))
	assert.True(t, s.HasErrors())
}

func Test_Sink_Diagnostics_preservesOrder(t *testing.T) {
	s := &Sink{}
	s.Add(New(Lex, "first"))
	s.Add(New(Parse, "second"))

	got := s.Diagnostics()
	assert.Equal(t, "first", got[0].Message)
	assert.Equal(t, "second", got[1].Message)
}

func Test_Diagnostic_FullMessage_includesCursor(t *testing.T) {
	buf := source.NewBuffer("test.clr", "val x = notdefined;\n")
	region := buf.View(8, 18) // "notdefined"

	d := New(Resolution, "undeclared name 'notdefined'", region)
	full := d.FullMessage()

	assert.Contains(t, full, "notdefined")
	assert.Contains(t, full, "^")
	assert.Contains(t, full, "undeclared name")
}

func Test_Diagnostic_Error_withoutRegions(t *testing.T) {
	d := New(Semantic, "no region here")
	assert.Contains(t, d.Error(), "no region here")
	assert.Contains(t, d.Error(), "semantic")
}

func Test_Addf_formatsMessage(t *testing.T) {
	s := &Sink{}
	s.Addf(Semantic, nil, "redefinition of %q", "x")
	assert.Equal(t, `redefinition of "x"`, s.Diagnostics()[0].Message)
}
