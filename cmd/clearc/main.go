/*
Clearc compiles one or more Clear source files to bytecode.

It reads a ".clr" source file, runs it through the full compiler pipeline,
and writes the assembled bytecode to a sibling ".clr.b" file. Any
diagnostic at Error severity is printed to stderr and the program exits
non-zero without writing output; Warning-severity diagnostics are printed
but do not affect the exit code or output.

Usage:

	clearc <path>

The flags are:

	-v, --version
		Print the compiler version and exit.

	-d, --debug
		Enable phase tracing to stdout.

	-o, --output FILE
		Write the assembled bytecode to FILE instead of "<path>.b".

	-m, --manifest FILE
		Read a clearc.toml-style project manifest listing the source
		files to concatenate into a single translation unit, instead of
		taking a path positionally.

	-i, --interactive
		Read one Clear snippet at a time from stdin (via a readline line
		editor where available) and print its compiled opcode listing. This is
		a compile-and-dump loop for development use, not the VM.
*/
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/chzyer/readline"
	"github.com/spf13/pflag"

	"github.com/dekarrin/clear"
	"github.com/dekarrin/clear/internal/clr/bytecode"
	"github.com/dekarrin/clear/internal/clr/errors"
	"github.com/dekarrin/clear/internal/version"
)

const (
	// ExitOK indicates a successful compile.
	ExitOK = iota

	// ExitDiagnostics indicates the source had one or more Error-severity
	// diagnostics; no output was written.
	ExitDiagnostics

	// ExitIOError indicates a problem reading source or writing output,
	// unrelated to the source's validity.
	ExitIOError
)

var (
	returnCode      = ExitOK
	flagVersion     = pflag.BoolP("version", "v", false, "Print the compiler version and exit")
	flagDebug       = pflag.BoolP("debug", "d", false, "Enable phase tracing to stdout")
	flagOutput      = pflag.StringP("output", "o", "", "Write bytecode to this path instead of <path>.b")
	flagManifest    = pflag.StringP("manifest", "m", "", "Read source file list from a clearc.toml-style manifest")
	flagInteractive = pflag.BoolP("interactive", "i", false, "Compile-and-dump snippets read from stdin")
)

// manifest is the shape of a clearc.toml project file: a list of source
// files compiled as one concatenated translation unit. This is a CLI
// convenience, not a module system - each listed file still shares Clear's
// single flat global scope, never linked separately.
type manifest struct {
	Files  []string `toml:"files"`
	Output string   `toml:"output"`
}

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	if *flagInteractive {
		runInteractive()
		return
	}

	var name, outPath string
	var src string

	if *flagManifest != "" {
		var m manifest
		if _, err := toml.DecodeFile(*flagManifest, &m); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: read manifest: %s\n", err.Error())
			returnCode = ExitIOError
			return
		}
		var parts []string
		for _, f := range m.Files {
			b, err := os.ReadFile(f)
			if err != nil {
				fmt.Fprintf(os.Stderr, "ERROR: read %s: %s\n", f, err.Error())
				returnCode = ExitIOError
				return
			}
			parts = append(parts, string(b))
		}
		src = strings.Join(parts, "\n")
		name = *flagManifest
		outPath = m.Output
	} else {
		args := pflag.Args()
		if len(args) != 1 {
			fmt.Fprintln(os.Stderr, "ERROR: expected exactly one <path> argument")
			returnCode = ExitIOError
			return
		}
		name = args[0]
		b, err := os.ReadFile(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: read %s: %s\n", name, err.Error())
			returnCode = ExitIOError
			return
		}
		src = string(b)
		outPath = name + ".b"
	}

	if *flagOutput != "" {
		outPath = *flagOutput
	}

	out, diags := clear.Compile(src, clear.Options{Name: name, Debug: *flagDebug})

	hasErrors := reportDiagnostics(diags)
	if hasErrors || out == nil {
		returnCode = ExitDiagnostics
		return
	}

	if err := os.WriteFile(outPath, out, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: write %s: %s\n", outPath, err.Error())
		returnCode = ExitIOError
		return
	}
}

// reportDiagnostics prints every diagnostic to stderr in source order and
// reports whether any was Error severity.
func reportDiagnostics(diags []errors.Diagnostic) bool {
	hasErrors := false
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d.FullMessage())
		if d.Severity == errors.Error {
			hasErrors = true
		}
	}
	return hasErrors
}

// runInteractive reads one Clear snippet per line from stdin (via the
// readline line editor where possible, falling back to a plain scanner, the same way cmd/tqi chooses between an
// InteractiveCommandReader and a DirectCommandReader) and prints the
// compiled opcode listing for each, for exploration during development.
// This is a compile-and-dump loop only; it never invokes a VM.
func runInteractive() {
	rl, err := readline.NewEx(&readline.Config{Prompt: "clearc> "})
	var scanner *bufio.Scanner
	if err != nil {
		scanner = bufio.NewScanner(os.Stdin)
	} else {
		defer rl.Close()
	}

	for {
		var line string
		if rl != nil {
			line, err = rl.Readline()
			if err != nil {
				return
			}
		} else {
			if !scanner.Scan() {
				return
			}
			line = scanner.Text()
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		out, diags := clear.Compile(line, clear.Options{Name: "<stdin>", Debug: *flagDebug})
		reportDiagnostics(diags)
		if out == nil {
			continue
		}
		printListing(out)
	}
}

// printListing gives a human-readable dump of an assembled bytecode
// bytearray: the constant pool header, then the raw instruction bytes as
// their Op names where recognized.
func printListing(b []byte) {
	if len(b) == 0 {
		fmt.Println("(empty)")
		return
	}
	count := int(b[0])
	fmt.Printf("constants: %d\n", count)
	pos := 1
	for i := 0; i < count && pos < len(b); i++ {
		tag := b[pos]
		pos++
		switch bytecode.ConstKind(tag) {
		case bytecode.ConstInt:
			pos += 4
		case bytecode.ConstNum:
			pos += 8
		case bytecode.ConstStr:
			if pos < len(b) {
				l := int(b[pos])
				pos += 1 + l
			}
		}
	}
	fmt.Printf("code bytes: %d\n", len(b)-pos)
	for ; pos < len(b); pos++ {
		fmt.Printf("  %s\n", bytecode.Op(b[pos]))
	}
}
