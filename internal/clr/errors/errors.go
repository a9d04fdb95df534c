// Package errors holds the diagnostic type shared by every compiler phase
// and the sink that collects them. No phase ever stops on the first problem
// it finds; instead it annotates the offending node with a sentinel and
// keeps going, so that Sink.Diagnostics ends up with everything wrong with
// the source in one pass.
package errors

import (
	"fmt"
	"strings"

	"github.com/dekarrin/rosed"

	"github.com/dekarrin/clear/internal/clr/source"
)

// Kind classifies what stage of the pipeline raised a Diagnostic.
type Kind int

const (
	Lex Kind = iota
	Parse
	Resolution
	Semantic
)

func (k Kind) String() string {
	switch k {
	case Lex:
		return "lex"
	case Parse:
		return "parse"
	case Resolution:
		return "resolution"
	case Semantic:
		return "semantic"
	default:
		return "unknown"
	}
}

// Severity is how serious a Diagnostic is. Only Error severity causes the
// compiler to exit non-zero and withhold output.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Diagnostic is a single reported problem, carrying a message and one or
// more source regions it concerns. The first region is considered primary
// for purposes of the cursor rendered by FullMessage.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Message  string
	Regions  []source.View
}

// New builds a Diagnostic at Error severity.
func New(kind Kind, msg string, regions ...source.View) Diagnostic {
	return Diagnostic{Kind: kind, Severity: Error, Message: msg, Regions: regions}
}

// Newf is New with fmt.Sprintf-style formatting of msg.
func Newf(kind Kind, regions []source.View, format string, a ...interface{}) Diagnostic {
	return Diagnostic{Kind: kind, Severity: Error, Message: fmt.Sprintf(format, a...), Regions: regions}
}

// Warn builds a Diagnostic at Warning severity.
func Warn(kind Kind, msg string, regions ...source.View) Diagnostic {
	return Diagnostic{Kind: kind, Severity: Warning, Message: msg, Regions: regions}
}

// Error implements the error interface.
func (d Diagnostic) Error() string {
	if len(d.Regions) == 0 {
		return fmt.Sprintf("%s %s: %s", d.Kind, d.Severity, d.Message)
	}
	primary := d.Regions[0]
	return fmt.Sprintf("%s %s: around line %d, char %d: %s", d.Kind, d.Severity, primary.Line(), primary.Col(), d.Message)
}

// FullMessage renders the complete diagnostic: the offending source line(s)
// with a cursor under each region, followed by the message itself.
func (d Diagnostic) FullMessage() string {
	if len(d.Regions) == 0 {
		return d.Error()
	}

	var sb strings.Builder
	for _, r := range d.Regions {
		sb.WriteString(sourceLineWithCursor(r))
		sb.WriteString("\n")
	}
	sb.WriteString(d.Error())

	return rosed.Edit(sb.String()).Wrap(100).String()
}

func sourceLineWithCursor(v source.View) string {
	line := v.FullLine()
	if line == "" {
		return ""
	}
	cursor := strings.Repeat(" ", v.Col()-1) + strings.Repeat("^", max(1, v.End-v.Start))
	return line + "\n" + cursor
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Sink is a monotonic collector of Diagnostics threaded explicitly through
// every phase; there is no package-level mutable error state anywhere in
// this compiler.
type Sink struct {
	diags []Diagnostic
}

// Add appends d to the sink.
func (s *Sink) Add(d Diagnostic) {
	s.diags = append(s.diags, d)
}

// Addf is a convenience wrapper combining Newf and Add.
func (s *Sink) Addf(kind Kind, regions []source.View, format string, a ...interface{}) {
	s.Add(Newf(kind, regions, format, a...))
}

// HasErrors reports whether any collected Diagnostic is at Error severity.
func (s *Sink) HasErrors() bool {
	for _, d := range s.diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Diagnostics returns all collected diagnostics, in the order they were
// added. That order follows each phase's own walk of the tree, which need
// not be source order (some phases walk the sequencer's dependency order).
func (s *Sink) Diagnostics() []Diagnostic {
	return s.diags
}
