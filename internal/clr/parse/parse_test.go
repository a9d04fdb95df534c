package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/clear/internal/clr/ast"
	"github.com/dekarrin/clear/internal/clr/errors"
	"github.com/dekarrin/clear/internal/clr/source"
	"github.com/dekarrin/clear/internal/clr/types"
)

func parseSrc(t *testing.T, src string) (*ast.Program, *errors.Sink) {
	t.Helper()
	sink := &errors.Sink{}
	buf := source.NewBuffer("t", src)
	prog := Parse(buf, sink)
	require.NotNil(t, prog)
	return prog, sink
}

func Test_Parse_singleBindingValueDecl(t *testing.T) {
	prog, sink := parseSrc(t, "val x = 1i;")
	require.False(t, sink.HasErrors())
	require.Len(t, prog.Decls, 1)

	vd, ok := prog.Decls[0].(*ast.ValueDecl)
	require.True(t, ok)
	require.Len(t, vd.Bindings, 1)
	assert.Equal(t, "x", vd.Bindings[0].Name)
	assert.False(t, vd.IsVar)
}

func Test_Parse_multiBindingValueDeclDestructures(t *testing.T) {
	prog, sink := parseSrc(t, "val (a, b, c) = (1i, 2i, 3i);")
	require.False(t, sink.HasErrors())
	require.Len(t, prog.Decls, 1)

	vd, ok := prog.Decls[0].(*ast.ValueDecl)
	require.True(t, ok)
	require.Len(t, vd.Bindings, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{vd.Bindings[0].Name, vd.Bindings[1].Name, vd.Bindings[2].Name})

	tup, ok := vd.Init.(*ast.TupleExpr)
	require.True(t, ok)
	assert.Len(t, tup.Elems, 3)
}

func Test_Parse_varDeclWithAnnotation(t *testing.T) {
	prog, sink := parseSrc(t, "var y : int = 2i;")
	require.False(t, sink.HasErrors())
	require.Len(t, prog.Decls, 1)

	vd, ok := prog.Decls[0].(*ast.ValueDecl)
	require.True(t, ok)
	assert.True(t, vd.IsVar)
	require.NotNil(t, vd.Annot)
	require.Len(t, vd.Bindings, 1)
}

func Test_Parse_structDecl_fieldsAndMethods(t *testing.T) {
	src := `
struct Point {
	int x;
	int y;
	func sum() int {
		return this.x;
	}
}
`
	prog, sink := parseSrc(t, src)
	require.False(t, sink.HasErrors())
	require.Len(t, prog.Decls, 1)

	sd, ok := prog.Decls[0].(*ast.StructDecl)
	require.True(t, ok)
	assert.Equal(t, "Point", sd.Binding.Name)
	require.Len(t, sd.Fields, 2)
	assert.Equal(t, "x", sd.Fields[0].Binding.Name)
	assert.Equal(t, "y", sd.Fields[1].Binding.Name)
	require.Len(t, sd.Methods, 1)
	assert.Equal(t, "sum", sd.Methods[0].Binding.Name)
}

func Test_Parse_constructExpr(t *testing.T) {
	prog, sink := parseSrc(t, "val p = Point{x: 1i, y: 2i};")
	require.False(t, sink.HasErrors())

	vd := prog.Decls[0].(*ast.ValueDecl)
	construct, ok := vd.Init.(*ast.Construct)
	require.True(t, ok)
	require.Len(t, construct.Fields, 2)
	assert.Equal(t, "x", construct.Fields[0].Label)
	assert.Equal(t, "y", construct.Fields[1].Label)
}

func Test_Parse_accessAndCall(t *testing.T) {
	prog, sink := parseSrc(t, "print p.x.get();")
	require.False(t, sink.HasErrors())

	ps, ok := prog.Decls[0].(*ast.Print)
	require.True(t, ok)

	call, ok := ps.Value.(*ast.Call)
	require.True(t, ok)
	access, ok := call.Callee.(*ast.Access)
	require.True(t, ok)
	assert.Equal(t, "get", access.Field)

	inner, ok := access.Target.(*ast.Access)
	require.True(t, ok)
	assert.Equal(t, "x", inner.Field)
}

func Test_Parse_caseExprWithFallback(t *testing.T) {
	prog, sink := parseSrc(t, "print case x { int => 1i, bool => 2i, else => 0i };")
	require.False(t, sink.HasErrors())

	ps := prog.Decls[0].(*ast.Print)
	ce, ok := ps.Value.(*ast.CaseExpr)
	require.True(t, ok)
	require.Len(t, ce.Arms, 2)
	require.NotNil(t, ce.Fallback)
}

func Test_Parse_whileWithoutCondLoopsForever(t *testing.T) {
	prog, sink := parseSrc(t, "while { return; }")
	require.False(t, sink.HasErrors())

	w, ok := prog.Decls[0].(*ast.While)
	require.True(t, ok)
	assert.Nil(t, w.Cond)
}

func Test_Parse_unaryMinusAndBang(t *testing.T) {
	prog, sink := parseSrc(t, "val a = -1i; val b = !true;")
	require.False(t, sink.HasErrors())
	require.Len(t, prog.Decls, 2)

	negDecl := prog.Decls[0].(*ast.ValueDecl)
	neg, ok := negDecl.Init.(*ast.Unary)
	require.True(t, ok)
	assert.Equal(t, types.OpNeg, neg.Op)

	notDecl := prog.Decls[1].(*ast.ValueDecl)
	not, ok := notDecl.Init.(*ast.Unary)
	require.True(t, ok)
	assert.Equal(t, types.OpNot, not.Op)
}

func Test_Parse_leftAssociativeSubtraction(t *testing.T) {
	prog, sink := parseSrc(t, "val x = 1i - 2i - 3i;")
	require.False(t, sink.HasErrors())

	vd := prog.Decls[0].(*ast.ValueDecl)
	outer, ok := vd.Init.(*ast.Binary)
	require.True(t, ok)

	// (1 - 2) - 3: the outer node's Left must itself be a Binary, its Right
	// the plain literal 3, matching DESIGN.md's left-associativity
	// resolution rather than right-nesting.
	_, leftIsBinary := outer.Left.(*ast.Binary)
	assert.True(t, leftIsBinary)
	_, rightIsLit := outer.Right.(*ast.IntLit)
	assert.True(t, rightIsLit)
}

func Test_Parse_missingSemicolon_isError(t *testing.T) {
	_, sink := parseSrc(t, "val x = 1i")
	assert.True(t, sink.HasErrors())
}

func Test_Parse_errorSynchronizesToNextDecl(t *testing.T) {
	// The first decl is malformed (missing '='); parsing should still pick
	// up the second, well-formed declaration after synchronizing.
	prog, sink := parseSrc(t, "val x 1i; val y = 2i;")
	assert.True(t, sink.HasErrors())

	found := false
	for _, d := range prog.Decls {
		if vd, ok := d.(*ast.ValueDecl); ok && len(vd.Bindings) == 1 && vd.Bindings[0].Name == "y" {
			found = true
		}
	}
	assert.True(t, found, "parser should recover and still parse the second declaration")
}
