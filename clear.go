// Package clear wires the Clear compiler's phases together: parse, resolve
// names and sequence, check types, classify control flow, index slots and
// capture upvalues, generate bytecode, and assemble the result into a
// bytearray. Grounded on engine.go's tunaq.New facade shape - construct one
// object's worth of state from raw input, return (value, error) - adapted
// here to a pure, stateless Compile function since the compiler has no
// session to hold open across calls.
package clear

import (
	"fmt"

	"github.com/dekarrin/clear/internal/clr/bytecode"
	"github.com/dekarrin/clear/internal/clr/codegen"
	"github.com/dekarrin/clear/internal/clr/errors"
	"github.com/dekarrin/clear/internal/clr/flow"
	"github.com/dekarrin/clear/internal/clr/index"
	"github.com/dekarrin/clear/internal/clr/parse"
	"github.com/dekarrin/clear/internal/clr/resolve"
	"github.com/dekarrin/clear/internal/clr/source"
	"github.com/dekarrin/clear/internal/clr/typecheck"
)

// Options configures a single Compile call.
type Options struct {
	// Name labels the source in diagnostics (typically the input path).
	Name string

	// Debug, when set, prints a one-line phase trace to stdout after each
	// pipeline stage completes, mirroring the CLI's single DEBUG mode.
	Debug bool
}

// Compile runs the full pipeline over src and returns the assembled
// bytecode plus every diagnostic collected along the way. The returned
// bytearray is nil whenever any diagnostic is Error severity - the compiler
// aborts producing output rather than emit bytecode for a program it could
// not fully validate. Each phase collects every diagnostic it can, but the
// pipeline stops at the first checkpoint (after resolve, after flow, after
// codegen) where an Error has been collected, so later phases do not run.
func Compile(src string, opts Options) ([]byte, []errors.Diagnostic) {
	sink := &errors.Sink{}
	buf := source.NewBuffer(opts.Name, src)

	trace := func(phase string) {
		if opts.Debug {
			fmt.Printf("[clear] %s: %d diagnostic(s) so far\n", phase, len(sink.Diagnostics()))
		}
	}

	prog := parse.Parse(buf, sink)
	trace("parse")

	resolve.Resolve(prog, sink)
	trace("resolve")

	if sink.HasErrors() {
		// Resolution failures (undeclared names, circular dependencies)
		// leave the tree too unreliable for type checking's Ref lookups to
		// proceed meaningfully; later phases all assume a Resolve pass with
		// no Error-severity diagnostics.
		return nil, sink.Diagnostics()
	}

	typecheck.Check(prog, sink)
	trace("typecheck")

	flow.Classify(prog, sink)
	trace("flow")

	if sink.HasErrors() {
		return nil, sink.Diagnostics()
	}

	index.Build(prog)
	trace("index")

	program := codegen.Generate(prog, sink)
	trace("codegen")

	if sink.HasErrors() {
		return nil, sink.Diagnostics()
	}

	out, err := bytecode.Assemble(program)
	if err != nil {
		sink.Add(errors.New(errors.Semantic, err.Error()))
		return nil, sink.Diagnostics()
	}
	trace("assemble")

	return out, sink.Diagnostics()
}
