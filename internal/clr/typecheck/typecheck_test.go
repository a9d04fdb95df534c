package typecheck

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/clear/internal/clr/ast"
	"github.com/dekarrin/clear/internal/clr/errors"
	"github.com/dekarrin/clear/internal/clr/parse"
	"github.com/dekarrin/clear/internal/clr/resolve"
	"github.com/dekarrin/clear/internal/clr/source"
	"github.com/dekarrin/clear/internal/clr/types"
)

func checkSrc(t *testing.T, src string) (*ast.Program, *errors.Sink) {
	t.Helper()
	sink := &errors.Sink{}
	buf := source.NewBuffer("t", src)
	prog := parse.Parse(buf, sink)
	resolve.Resolve(prog, sink)
	require.False(t, sink.HasErrors(), "test source must parse and resolve cleanly before checking runs: %v", sink.Diagnostics())
	Check(prog, sink)
	return prog, sink
}

func hasDiagnostic(sink *errors.Sink, fragment string) bool {
	for _, d := range sink.Diagnostics() {
		if strings.Contains(d.Message, fragment) {
			return true
		}
	}
	return false
}

func Test_Check_validProgramHasNoDiagnostics(t *testing.T) {
	src := `
func add(int a, int b) int {
	return a + b;
}
print add(1i, 2i);
`
	_, sink := checkSrc(t, src)
	assert.Empty(t, sink.Diagnostics())
}

func Test_Check_valueDeclInheritsInitializerType(t *testing.T) {
	prog, sink := checkSrc(t, "val x = 1i;")
	require.Empty(t, sink.Diagnostics())

	vd := prog.Decls[0].(*ast.ValueDecl)
	assert.True(t, types.Equal(vd.Bindings[0].TypeAnnot, types.NewBuiltin(types.INT)))
}

func Test_Check_mismatchedBinaryOperands(t *testing.T) {
	_, sink := checkSrc(t, "print 1i + 2.5;")
	require.True(t, sink.HasErrors())
	assert.True(t, hasDiagnostic(sink, "same type"))
}

func Test_Check_plusRejectsBool(t *testing.T) {
	_, sink := checkSrc(t, "print true + false;")
	require.True(t, sink.HasErrors())
	assert.True(t, hasDiagnostic(sink, "not valid for"))
}

func Test_Check_comparisonYieldsBool(t *testing.T) {
	prog, sink := checkSrc(t, "print 1i < 2i;")
	require.Empty(t, sink.Diagnostics())

	ps := prog.Decls[0].(*ast.Print)
	assert.True(t, types.Equal(ps.Value.Type(), types.NewBuiltin(types.BOOL)))
}

func Test_Check_conditionMustBeBool(t *testing.T) {
	_, sink := checkSrc(t, "if (1i) { print 1i; }")
	require.True(t, sink.HasErrors())
	assert.True(t, hasDiagnostic(sink, "condition must be bool"))
}

func Test_Check_returnTypeMismatch(t *testing.T) {
	src := `
func f() int {
	return true;
}
`
	_, sink := checkSrc(t, src)
	require.True(t, sink.HasErrors())
	assert.True(t, hasDiagnostic(sink, "cannot return"))
}

func Test_Check_missingReturnValue(t *testing.T) {
	src := `
func f() int {
	return;
}
`
	_, sink := checkSrc(t, src)
	require.True(t, sink.HasErrors())
	assert.True(t, hasDiagnostic(sink, "missing return value"))
}

func Test_Check_arityMismatch(t *testing.T) {
	src := `
func f(int x) int {
	return x;
}
print f();
`
	_, sink := checkSrc(t, src)
	require.True(t, sink.HasErrors())
	assert.True(t, hasDiagnostic(sink, "argument"))
}

func Test_Check_nonFunctionIsNotCallable(t *testing.T) {
	_, sink := checkSrc(t, "val x = 1i; print x();")
	require.True(t, sink.HasErrors())
	assert.True(t, hasDiagnostic(sink, "not callable"))
}

func Test_Check_valueForwardReferenceChecksInSequenceOrder(t *testing.T) {
	// a's initializer reads b, declared later in source; the sequencer has
	// already ordered b first, so checking must follow that order.
	_, sink := checkSrc(t, "val a = b; val b = 1i; print a;")
	assert.Empty(t, sink.Diagnostics())
}

func Test_Check_callBeforeFunctionDeclaration(t *testing.T) {
	src := `
print id(7i);
func id(int x) int {
	return x;
}
`
	_, sink := checkSrc(t, src)
	assert.Empty(t, sink.Diagnostics(), "function signatures bind before any statement is checked")
}

func Test_Check_constructMissingField(t *testing.T) {
	src := `
struct P {
	int x;
	int y;
}
val p = P{x: 1i};
`
	_, sink := checkSrc(t, src)
	require.True(t, sink.HasErrors())
	assert.True(t, hasDiagnostic(sink, "missing field"))
}

func Test_Check_constructFieldTypeMismatch(t *testing.T) {
	src := `
struct P {
	int x;
}
val p = P{x: true};
`
	_, sink := checkSrc(t, src)
	require.True(t, sink.HasErrors())
	assert.True(t, hasDiagnostic(sink, "cannot use bool as int"))
}

func Test_Check_accessUnknownField(t *testing.T) {
	src := `
struct P {
	int x;
}
val p = P{x: 1i};
print p.z;
`
	_, sink := checkSrc(t, src)
	require.True(t, sink.HasErrors())
	assert.True(t, hasDiagnostic(sink, `no field "z"`))
}

func Test_Check_methodCallThroughAccess(t *testing.T) {
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
	_, sink := checkSrc(t, src)
	assert.Empty(t, sink.Diagnostics(), "%v", sink.Diagnostics())
}

func Test_Check_unusedExpressionIsWarningNotError(t *testing.T) {
	_, sink := checkSrc(t, "1i + 2i;")
	assert.False(t, sink.HasErrors())

	require.Len(t, sink.Diagnostics(), 1)
	d := sink.Diagnostics()[0]
	assert.Equal(t, errors.Warning, d.Severity)
	assert.Contains(t, d.Message, "unused")
}

func Test_Check_voidInitializerIsAnError(t *testing.T) {
	src := `
func f() {
}
val x = f();
`
	_, sink := checkSrc(t, src)
	require.True(t, sink.HasErrors())
	assert.True(t, hasDiagnostic(sink, "void"))
}

func Test_Check_annotatedDeclRejectsWrongInitializer(t *testing.T) {
	_, sink := checkSrc(t, "val x : str = 1i;")
	require.True(t, sink.HasErrors())
	assert.True(t, hasDiagnostic(sink, "cannot assign"))
}

func Test_Check_optionalAnnotationAcceptsNil(t *testing.T) {
	_, sink := checkSrc(t, "val x : int? = nil;")
	assert.Empty(t, sink.Diagnostics())
}

func Test_Check_tupleDestructuring(t *testing.T) {
	prog, sink := checkSrc(t, "val (a, b) = (1i, 2.5);")
	require.Empty(t, sink.Diagnostics())

	vd := prog.Decls[0].(*ast.ValueDecl)
	assert.True(t, types.Equal(vd.Bindings[0].TypeAnnot, types.NewBuiltin(types.INT)))
	assert.True(t, types.Equal(vd.Bindings[1].TypeAnnot, types.NewBuiltin(types.NUM)))
}

func Test_Check_destructuringArityMismatch(t *testing.T) {
	_, sink := checkSrc(t, "val (a, b, c) = (1i, 2i);")
	require.True(t, sink.HasErrors())
	assert.True(t, hasDiagnostic(sink, "cannot destructure"))
}

func Test_Check_assignToVarBinding(t *testing.T) {
	_, sink := checkSrc(t, "var x = 1i; x = 2i;")
	assert.Empty(t, sink.Diagnostics())
}

func Test_Check_assignToValBindingIsError(t *testing.T) {
	_, sink := checkSrc(t, "val x = 1i; x = 2i;")
	require.True(t, sink.HasErrors())
	assert.True(t, hasDiagnostic(sink, "only var declarations are assignable"))
}

func Test_Check_assignToParameterIsError(t *testing.T) {
	src := `
func f(int x) int {
	x = 2i;
	return x;
}
`
	_, sink := checkSrc(t, src)
	require.True(t, sink.HasErrors())
	assert.True(t, hasDiagnostic(sink, "assignable"))
}

func Test_Check_assignToFunctionNameIsError(t *testing.T) {
	src := `
func f() int {
	return 1i;
}
f = f;
`
	_, sink := checkSrc(t, src)
	require.True(t, sink.HasErrors())
	assert.True(t, hasDiagnostic(sink, "assignable"))
}

func Test_Check_assignToLiteralIsUnassignableTarget(t *testing.T) {
	_, sink := checkSrc(t, "1i = 2i;")
	require.True(t, sink.HasErrors())
	assert.True(t, hasDiagnostic(sink, "unassignable target"))
}

func Test_Check_assignToCallResultIsUnassignableTarget(t *testing.T) {
	src := `
func f() int {
	return 1i;
}
f() = 2i;
`
	_, sink := checkSrc(t, src)
	require.True(t, sink.HasErrors())
	assert.True(t, hasDiagnostic(sink, "unassignable target"))
}

func Test_Check_assignToStructField(t *testing.T) {
	src := `
struct P {
	int x;
}
val p = P{x: 1i};
p.x = 2i;
`
	_, sink := checkSrc(t, src)
	assert.Empty(t, sink.Diagnostics(), "a struct data field is assignable even through a val binding: the binding itself is not re-bound")
}

func Test_Check_assignToMethodIsError(t *testing.T) {
	src := `
struct Counter {
	int n;
	func get() int {
		return this.n;
	}
}
val c = Counter{n: 1i};
c.get = c.get;
`
	_, sink := checkSrc(t, src)
	require.True(t, sink.HasErrors())
	assert.True(t, hasDiagnostic(sink, `cannot assign to method "get"`))
}

func Test_Check_caseExprUnionsArmTypes(t *testing.T) {
	src := `
val x = 1i;
print case x { int => 1i, else => 2i };
`
	prog, sink := checkSrc(t, src)
	require.Empty(t, sink.Diagnostics(), "%v", sink.Diagnostics())

	ps := prog.Decls[1].(*ast.Print)
	ce := ps.Value.(*ast.CaseExpr)
	assert.True(t, types.Equal(ce.Type(), types.NewBuiltin(types.INT)))
}
