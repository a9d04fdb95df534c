package codegen

import (
	"github.com/dekarrin/clear/internal/clr/ast"
	"github.com/dekarrin/clear/internal/clr/bytecode"
	"github.com/dekarrin/clear/internal/clr/types"
)

// topItem emits one top-level item. The three Decl kinds bind into GLOBAL
// slots (no enclosing frame needs tracking, so no depth counter is
// threaded); every other statement kind runs against a fresh depth counter
// starting at 0, since top-level code has no closure slot reserved the way
// a function body's frame does.
func (g *gen) topItem(d ast.Stmt) {
	switch n := d.(type) {
	case *ast.ValueDecl:
		g.emitValueDecl(nil, n)
	case *ast.FunctionDecl:
		g.emitFunctionDecl(n)
	case *ast.StructDecl:
		g.emitStructDecl(n)
	default:
		depth := 0
		g.stmt(&depth, d)
	}
}

// emitValueDecl evaluates n's initializer and binds it to n's declared
// name(s). A single-binding decl just declares the one binding; a
// destructuring decl (`val (a, b) = init;`) emits DESTRUCT with the
// binding count as its operand, unpacking the tuple struct on top of the
// stack into that many values in field order, then declares each binding
// from last to first - the last field sits on top of the stack, so
// declaring in reverse pops GLOBAL targets in the correct order (a LOCAL
// target needs no pop at all, per declare's own contract, so the order
// only matters for GLOBAL).
func (g *gen) emitValueDecl(depth *int, n *ast.ValueDecl) {
	g.expr(depth, n.Init)
	if len(n.Bindings) == 1 {
		g.declare(n.Bindings[0].IndexAnnot)
		return
	}
	g.emitOp(bytecode.DESTRUCT)
	g.emitIndex(len(n.Bindings))
	for i := len(n.Bindings) - 1; i >= 0; i-- {
		g.declare(n.Bindings[i].IndexAnnot)
	}
}

// emitFunctionDecl builds n's signature, emits its closure value, and
// stores it to n's own (GLOBAL or LOCAL) slot. Shared between top-level
// functions, nested function statements, and struct methods, which are all
// the same shape: a FunctionDecl with its own Binding and Upvalues.
func (g *gen) emitFunctionDecl(n *ast.FunctionDecl) {
	fnType := functionType(n)
	g.closureBody(fnType, n.Binding, n.Upvalues, func() {
		g.funcBody(n)
	})
	g.declare(n.Binding.IndexAnnot)
}

func functionType(n *ast.FunctionDecl) types.Type {
	params := make([]types.Type, 0, len(n.Params))
	for _, p := range n.Params {
		params = append(params, p.Type.Resolved())
	}
	ret := types.NewBuiltin(types.VOID)
	if n.ReturnType != nil {
		ret = n.ReturnType.Resolved()
	}
	return types.NewFunction(params, ret)
}

// funcBody emits n's body against a depth counter seeded past the closure
// slot, the receiver slot (methods only), and the declared params, falling
// through to an implicit `return;` when flow.Classify found n's body does
// not ALWAYS return explicitly.
func (g *gen) funcBody(n *ast.FunctionDecl) {
	depth := 1
	if n.Receiver != nil {
		depth++
	}
	depth += len(n.Params)

	g.stmtList(&depth, n.Body.Items)

	if n.ReturnAnnot != ast.ALWAYS {
		g.emitReturn(depth - 1)
	}
}

func (g *gen) emitStructDecl(n *ast.StructDecl) {
	for _, m := range n.Methods {
		g.emitFunctionDecl(m)
	}
}

// structFieldOrder is the runtime field layout after the type tag: decl's
// data fields in declaration order.
func structFieldOrder(s *ast.StructDecl) []*ast.Binding {
	out := make([]*ast.Binding, 0, len(s.Fields))
	for _, f := range s.Fields {
		out = append(out, f.Binding)
	}
	return out
}

// fieldOffset returns name's 1-based struct field offset (0 is always the
// type tag) among decl's declared fields.
func fieldOffset(decl *ast.StructDecl, name string) (int, bool) {
	for i, b := range structFieldOrder(decl) {
		if b.Name == name {
			return i + 1, true
		}
	}
	return 0, false
}
