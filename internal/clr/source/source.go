// Package source holds the immutable source buffer and the byte-range views
// into it that every later phase uses to report diagnostics.
package source

import "strings"

// Buffer is an immutable source text held for the lifetime of a single
// compile. All Views taken from a Buffer remain valid for as long as the
// Buffer itself is referenced.
type Buffer struct {
	// Name is the path or label the source came from, used in diagnostics.
	Name string

	text       string
	lineStarts []int
}

// NewBuffer wraps text as a Buffer, precomputing the byte offset of the start
// of every line so that later line/column lookups are O(log n).
func NewBuffer(name, text string) *Buffer {
	b := &Buffer{Name: name, text: text, lineStarts: []int{0}}
	for i, r := range text {
		if r == '\n' {
			b.lineStarts = append(b.lineStarts, i+1)
		}
	}
	return b
}

// Text returns the full source text.
func (b *Buffer) Text() string {
	return b.text
}

// Len returns the number of bytes in the buffer.
func (b *Buffer) Len() int {
	return len(b.text)
}

// View returns a View over [start, end) of this buffer.
func (b *Buffer) View(start, end int) View {
	return View{Buf: b, Start: start, End: end}
}

// lineOf returns the 0-indexed line containing byte offset pos.
func (b *Buffer) lineOf(pos int) int {
	lo, hi := 0, len(b.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if b.lineStarts[mid] <= pos {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// View is a stable byte-range reference into a Buffer. Two Views may only be
// combined (see Union) if they share the same Buf.
type View struct {
	Buf        *Buffer
	Start, End int
}

// Text returns the exact source text this View covers.
func (v View) Text() string {
	if v.Buf == nil {
		return ""
	}
	return v.Buf.Text()[v.Start:v.End]
}

// Line returns the 1-indexed line number the View starts on.
func (v View) Line() int {
	if v.Buf == nil {
		return 0
	}
	return v.Buf.lineOf(v.Start) + 1
}

// Col returns the 1-indexed byte-column the View starts at within its line.
func (v View) Col() int {
	if v.Buf == nil {
		return 0
	}
	lineStart := v.Buf.lineStarts[v.Buf.lineOf(v.Start)]
	return v.Start - lineStart + 1
}

// FullLine returns the complete text of the line the View starts on,
// including anything before and after the View on that line.
func (v View) FullLine() string {
	if v.Buf == nil {
		return ""
	}
	text := v.Buf.Text()
	lineIdx := v.Buf.lineOf(v.Start)
	start := v.Buf.lineStarts[lineIdx]
	end := len(text)
	if nl := strings.IndexByte(text[start:], '\n'); nl >= 0 {
		end = start + nl
	}
	return text[start:end]
}

// Union returns the smallest View that covers both v and other. Both must
// reference the same Buffer.
func (v View) Union(other View) View {
	if v.Buf != other.Buf {
		panic("source: cannot union views from different buffers")
	}
	start, end := v.Start, v.End
	if other.Start < start {
		start = other.Start
	}
	if other.End > end {
		end = other.End
	}
	return View{Buf: v.Buf, Start: start, End: end}
}
