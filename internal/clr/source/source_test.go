package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_View_LineAndCol(t *testing.T) {
	buf := NewBuffer("t", "abc\ndefgh\nij")

	testCases := []struct {
		name       string
		start, end int
		wantLine   int
		wantCol    int
		wantFull   string
	}{
		{name: "first line start", start: 0, end: 1, wantLine: 1, wantCol: 1, wantFull: "abc"},
		{name: "first line middle", start: 2, end: 3, wantLine: 1, wantCol: 3, wantFull: "abc"},
		{name: "second line start", start: 4, end: 5, wantLine: 2, wantCol: 1, wantFull: "defgh"},
		{name: "second line middle", start: 7, end: 8, wantLine: 2, wantCol: 4, wantFull: "defgh"},
		{name: "third line (no trailing newline)", start: 10, end: 11, wantLine: 3, wantCol: 1, wantFull: "ij"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := buf.View(tc.start, tc.end)
			assert.Equal(t, tc.wantLine, v.Line())
			assert.Equal(t, tc.wantCol, v.Col())
			assert.Equal(t, tc.wantFull, v.FullLine())
		})
	}
}

func Test_View_Text(t *testing.T) {
	buf := NewBuffer("t", "hello world")
	v := buf.View(6, 11)
	assert.Equal(t, "world", v.Text())
}

func Test_View_Union(t *testing.T) {
	buf := NewBuffer("t", "0123456789")
	a := buf.View(2, 4)
	b := buf.View(6, 8)

	u := a.Union(b)
	assert.Equal(t, 2, u.Start)
	assert.Equal(t, 8, u.End)

	// order shouldn't matter.
	u2 := b.Union(a)
	assert.Equal(t, u, u2)
}

func Test_View_Union_panicsAcrossBuffers(t *testing.T) {
	a := NewBuffer("a", "xxxx").View(0, 1)
	b := NewBuffer("b", "yyyy").View(0, 1)

	assert.Panics(t, func() {
		a.Union(b)
	})
}

func Test_Buffer_Len(t *testing.T) {
	buf := NewBuffer("t", "hello")
	assert.Equal(t, 5, buf.Len())
}
