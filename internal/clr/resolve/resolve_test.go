package resolve

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/clear/internal/clr/ast"
	"github.com/dekarrin/clear/internal/clr/errors"
	"github.com/dekarrin/clear/internal/clr/parse"
	"github.com/dekarrin/clear/internal/clr/source"
)

func resolveSrc(t *testing.T, src string) (*ast.Program, *errors.Sink) {
	t.Helper()
	sink := &errors.Sink{}
	buf := source.NewBuffer("t", src)
	prog := parse.Parse(buf, sink)
	require.False(t, sink.HasErrors(), "test source must parse cleanly before resolution runs")
	Resolve(prog, sink)
	return prog, sink
}

func diagnosticMessages(sink *errors.Sink) []string {
	var out []string
	for _, d := range sink.Diagnostics() {
		out = append(out, d.Message)
	}
	return out
}

func Test_Resolve_undefinedName(t *testing.T) {
	_, sink := resolveSrc(t, "print zzz;")
	require.True(t, sink.HasErrors())
	assert.Contains(t, diagnosticMessages(sink)[0], "undefined name")
}

func Test_Resolve_redeclarationInSameScope(t *testing.T) {
	_, sink := resolveSrc(t, "val x = 1i; val x = 2i;")
	require.True(t, sink.HasErrors())
	assert.Contains(t, diagnosticMessages(sink)[0], "already declared")

	d := sink.Diagnostics()[0]
	assert.Len(t, d.Regions, 2, "a redefinition diagnostic names both occurrences")
}

func Test_Resolve_shadowingAcrossScopesIsAllowed(t *testing.T) {
	src := `
val x = 1i;
func f() int {
	val x = 2i;
	return x;
}
`
	_, sink := resolveSrc(t, src)
	assert.False(t, sink.HasErrors())
}

func Test_Resolve_circularValueDependency(t *testing.T) {
	_, sink := resolveSrc(t, "val a = b; val b = a;")
	require.True(t, sink.HasErrors())

	found := false
	for _, m := range diagnosticMessages(sink) {
		if strings.Contains(m, "circular dependency") {
			found = true
		}
	}
	assert.True(t, found, "expected a circular dependency diagnostic, got %v", diagnosticMessages(sink))
}

func Test_Resolve_mutualRecursionThroughFunctionBodiesIsFine(t *testing.T) {
	src := `
func even(int n) bool {
	return odd(n - 1i);
}
func odd(int n) bool {
	return even(n - 1i);
}
`
	_, sink := resolveSrc(t, src)
	assert.False(t, sink.HasErrors(), "references between function bodies never force ordering: %v", diagnosticMessages(sink))
}

func Test_Resolve_sequencePutsDefinitionBeforeUse(t *testing.T) {
	prog, sink := resolveSrc(t, "val a = b; val b = 1i;")
	require.False(t, sink.HasErrors())
	assert.Equal(t, []int{1, 0}, prog.Sequence, "b's declaration must be sequenced ahead of a, which reads it")
}

func Test_Resolve_lambdaCapturesEnclosingLocal(t *testing.T) {
	src := `
func outer() int {
	val n = 1i;
	val f = func(int x) int x + n;
	return f(2i);
}
`
	prog, sink := resolveSrc(t, src)
	require.False(t, sink.HasErrors())

	outer := prog.Decls[0].(*ast.FunctionDecl)
	fDecl := outer.Body.Items[1].(*ast.ValueDecl)
	lambda, ok := fDecl.Init.(*ast.Lambda)
	require.True(t, ok)

	require.Len(t, lambda.Upvalues, 1)
	assert.Equal(t, "n", lambda.Upvalues[0].Name)
}

func Test_Resolve_transitiveCaptureThroughInterveningFunction(t *testing.T) {
	src := `
func outer() int {
	val n = 1i;
	func mid() int {
		func inner() int {
			return n;
		}
		return inner();
	}
	return mid();
}
`
	prog, sink := resolveSrc(t, src)
	require.False(t, sink.HasErrors())

	outer := prog.Decls[0].(*ast.FunctionDecl)
	mid := outer.Body.Items[1].(*ast.FunctionDecl)
	inner := mid.Body.Items[0].(*ast.FunctionDecl)

	require.Len(t, inner.Upvalues, 1, "the referencing function captures n")
	assert.Equal(t, "n", inner.Upvalues[0].Name)
	require.Len(t, mid.Upvalues, 1, "every intervening function captures n as well")
	assert.Equal(t, "n", mid.Upvalues[0].Name)
}

func Test_Resolve_recursiveSelfReferenceIsNotAnUpvalue(t *testing.T) {
	src := `
func outer() int {
	func inner() int {
		return inner();
	}
	return inner();
}
`
	prog, sink := resolveSrc(t, src)
	require.False(t, sink.HasErrors())

	outer := prog.Decls[0].(*ast.FunctionDecl)
	inner := outer.Body.Items[0].(*ast.FunctionDecl)
	assert.Empty(t, inner.Upvalues, "a function's own recursive reference is handled as UPVALUE:0, never stored in its upvalue list")
}

func Test_Resolve_globalReferencesAreNotCaptured(t *testing.T) {
	src := `
val g = 1i;
func f() int {
	return g;
}
`
	prog, sink := resolveSrc(t, src)
	require.False(t, sink.HasErrors())

	f := prog.Decls[1].(*ast.FunctionDecl)
	assert.Empty(t, f.Upvalues, "globals are addressed directly, never through the closure")
}

func Test_Resolve_duplicateStructMemberNames(t *testing.T) {
	_, sink := resolveSrc(t, "struct P { int x; int x; }")
	require.True(t, sink.HasErrors())
	assert.Contains(t, diagnosticMessages(sink)[0], "already declared")
}

func Test_Resolve_duplicateConstructFieldLabels(t *testing.T) {
	src := `
struct P {
	int x;
}
val p = P{x: 1i, x: 2i};
`
	_, sink := resolveSrc(t, src)
	require.True(t, sink.HasErrors())

	found := false
	for _, m := range diagnosticMessages(sink) {
		if strings.Contains(m, "more than once") {
			found = true
		}
	}
	assert.True(t, found)
}

func Test_Resolve_typeIdentMustNameAStruct(t *testing.T) {
	_, sink := resolveSrc(t, "val p : Zzz = 1i;")
	require.True(t, sink.HasErrors())
	assert.Contains(t, diagnosticMessages(sink)[0], "does not name a struct")
}

func Test_Resolve_thisResolvesInsideMethod(t *testing.T) {
	src := `
struct Counter {
	int n;
	func get() int {
		return this.n;
	}
}
`
	prog, sink := resolveSrc(t, src)
	require.False(t, sink.HasErrors(), "%v", diagnosticMessages(sink))

	sd := prog.Decls[0].(*ast.StructDecl)
	require.Len(t, sd.Methods, 1)
	require.NotNil(t, sd.Methods[0].Receiver)

	ret := sd.Methods[0].Body.Items[0].(*ast.Return)
	access := ret.Value.(*ast.Access)
	thisIdent := access.Target.(*ast.Ident)
	assert.Equal(t, sd.Methods[0].Receiver.ID, thisIdent.Ref)
}
