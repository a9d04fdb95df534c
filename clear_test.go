package clear

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/clear/internal/clr/bytecode"
)

// decodeOps skips the constant-pool header (matching the assembler's own
// layout, see internal/clr/bytecode/assembler.go) and returns the raw
// instruction bytes (opcodes and operands alike), for asserting on opcode
// shape without hand-decoding operand widths.
func decodeOps(t *testing.T, b []byte) []byte {
	t.Helper()
	require.NotEmpty(t, b)
	count := int(b[0])
	pos := 1
	for i := 0; i < count; i++ {
		require.Less(t, pos, len(b))
		tag := bytecode.ConstKind(b[pos])
		pos++
		switch tag {
		case bytecode.ConstInt:
			pos += 4
		case bytecode.ConstNum:
			pos += 8
		case bytecode.ConstStr:
			l := int(b[pos])
			pos += 1 + l
		}
	}
	return b[pos:]
}

func Test_Compile_printArithmetic(t *testing.T) {
	// Uses the explicit "i" integer suffix on both operands: per
	// the parser's parseNumberLiteral, a bare numeric literal is NUM unless
	// immediately suffixed, so "1 + 2" alone would compile to NUM_ADD, not
	// the INT_ADD this test checks for (see DESIGN.md's appendix-example
	// inconsistencies note).
	out, diags := Compile("print 1i + 2i;", Options{Name: "t"})
	for _, d := range diags {
		t.Logf("diagnostic: %s", d.Error())
	}
	require.NotNil(t, out)

	code := decodeOps(t, out)
	assert.Contains(t, string(code), string([]byte{byte(bytecode.INT_ADD)}))
	assert.Contains(t, string(code), string([]byte{byte(bytecode.STR)}))
	assert.Equal(t, byte(bytecode.PRINT), code[len(code)-1], "print is always the final op of a print statement")
}

func Test_Compile_valueDeclAndPrint(t *testing.T) {
	out, diags := Compile("val x = 5i; print x;", Options{Name: "t"})
	for _, d := range diags {
		t.Logf("diagnostic: %s", d.Error())
	}
	require.NotNil(t, out)

	code := decodeOps(t, out)
	require.NotEmpty(t, code)
	assert.Equal(t, byte(bytecode.PUSH_CONST), code[0])
	assert.Equal(t, byte(bytecode.SET_GLOBAL), code[2], "top-level val declares into GLOBAL, see DESIGN.md's appendix-inconsistency note")
	assert.Equal(t, byte(bytecode.PRINT), code[len(code)-1])
}

func Test_Compile_functionCallReturnsValue(t *testing.T) {
	src := `
func id(int x) int {
	return x;
}
print id(7i);
`
	out, diags := Compile(src, Options{Name: "t"})
	for _, d := range diags {
		t.Logf("diagnostic: %s", d.Error())
	}
	require.NotNil(t, out)

	code := decodeOps(t, out)
	assert.Contains(t, string(code), string([]byte{byte(bytecode.CALL)}))
	assert.Contains(t, string(code), string([]byte{byte(bytecode.SET_RETURN)}))
}

func Test_Compile_ifElse(t *testing.T) {
	src := `
if (true) {
	print 1i;
} else {
	print 2i;
}
`
	out, diags := Compile(src, Options{Name: "t"})
	for _, d := range diags {
		t.Logf("diagnostic: %s", d.Error())
	}
	require.NotNil(t, out)

	code := decodeOps(t, out)
	assert.Contains(t, string(code), string([]byte{byte(bytecode.JUMP_IF_FALSE)}))
	assert.Contains(t, string(code), string([]byte{byte(bytecode.JUMP)}))
}

func Test_Compile_lambdaClosure(t *testing.T) {
	// A lambda's body is always a single expression, never a braced block,
	// unlike a full func decl's body.
	src := `
val n = 1i;
val addN = func(int x) int x + n;
print addN(4i);
`
	out, diags := Compile(src, Options{Name: "t"})
	for _, d := range diags {
		t.Logf("diagnostic: %s", d.Error())
	}
	require.NotNil(t, out)

	code := decodeOps(t, out)
	assert.Contains(t, string(code), string([]byte{byte(bytecode.FUNCTION)}))
}

func Test_Compile_redefinition_producesNoOutput(t *testing.T) {
	out, diags := Compile("val x = 1i; val x = 2i;", Options{Name: "t"})
	require.Nil(t, out, "a redefinition error must withhold bytecode entirely")
	require.NotEmpty(t, diags)

	hasError := false
	for _, d := range diags {
		if d.Severity.String() == "error" {
			hasError = true
		}
	}
	assert.True(t, hasError)
}

func Test_Compile_structConstructAndAccess(t *testing.T) {
	src := `
struct Point {
	int x;
	int y;
}
val p = Point{x: 1i, y: 2i};
print p.x;
`
	out, diags := Compile(src, Options{Name: "t"})
	for _, d := range diags {
		t.Logf("diagnostic: %s", d.Error())
	}
	require.NotNil(t, out)

	code := decodeOps(t, out)
	assert.Contains(t, string(code), string([]byte{byte(bytecode.STRUCT)}))
	assert.Contains(t, string(code), string([]byte{byte(bytecode.GET_FIELD)}))
}

func Test_Compile_structMethodWithThis(t *testing.T) {
	src := `
struct Counter {
	int n;
	func get() int {
		return this.n;
	}
}
val c = Counter{n: 5i};
print c.get();
`
	out, diags := Compile(src, Options{Name: "t"})
	for _, d := range diags {
		t.Logf("diagnostic: %s", d.Error())
	}
	require.NotNil(t, out)

	code := decodeOps(t, out)
	assert.Contains(t, string(code), string([]byte{byte(bytecode.CALL)}))
	assert.Contains(t, string(code), string([]byte{byte(bytecode.GET_FIELD)}))
}

func Test_Compile_caseExpr(t *testing.T) {
	src := `
val x = 1i;
print case x { int => 1i, else => 0i };
`
	out, diags := Compile(src, Options{Name: "t"})
	for _, d := range diags {
		t.Logf("diagnostic: %s", d.Error())
	}
	require.NotNil(t, out)

	code := decodeOps(t, out)
	assert.Contains(t, string(code), string([]byte{byte(bytecode.IS_VAL_TYPE)}))
	assert.Contains(t, string(code), string([]byte{byte(bytecode.SQUASH)}))
}

func Test_Compile_whileLoop(t *testing.T) {
	src := `
var n = 0i;
while (n < 3i) {
	n = n + 1i;
}
print n;
`
	out, diags := Compile(src, Options{Name: "t"})
	for _, d := range diags {
		t.Logf("diagnostic: %s", d.Error())
	}
	require.NotNil(t, out)

	code := decodeOps(t, out)
	assert.Contains(t, string(code), string([]byte{byte(bytecode.LOOP)}))
	assert.Contains(t, string(code), string([]byte{byte(bytecode.JUMP_IF_FALSE)}))
}

func Test_Compile_tupleDestructuringValueDecl(t *testing.T) {
	src := `
val (a, b) = (1i, 2i);
print a + b;
`
	out, diags := Compile(src, Options{Name: "t"})
	for _, d := range diags {
		t.Logf("diagnostic: %s", d.Error())
	}
	require.NotNil(t, out)

	code := decodeOps(t, out)
	assert.Contains(t, string(code), string([]byte{byte(bytecode.STRUCT)}))
	assert.Contains(t, string(code), string([]byte{byte(bytecode.DESTRUCT)}))
}

func Test_Compile_unaryOperators(t *testing.T) {
	src := `
val x = -5i;
val y = !true;
print x;
print y;
`
	out, diags := Compile(src, Options{Name: "t"})
	for _, d := range diags {
		t.Logf("diagnostic: %s", d.Error())
	}
	require.NotNil(t, out)

	code := decodeOps(t, out)
	assert.Contains(t, string(code), string([]byte{byte(bytecode.INT_NEG)}))
	assert.Contains(t, string(code), string([]byte{byte(bytecode.NOT)}))
}

func Test_Compile_debugTracePrintsNothingToReturnValue(t *testing.T) {
	// Debug only adds stdout tracing; it must not change the compiled
	// output or diagnostics for otherwise-identical source.
	outQuiet, diagsQuiet := Compile("print 1i;", Options{Name: "t"})
	outDebug, diagsDebug := Compile("print 1i;", Options{Name: "t", Debug: true})

	assert.Equal(t, outQuiet, outDebug)
	assert.Equal(t, len(diagsQuiet), len(diagsDebug))
}
