// Package typecheck implements the type-checking rule table over the
// already name-resolved tree: every expression node gets a
// type_annot, every operator use is checked against the typed/untyped
// operator tables in internal/clr/types, and call/construct/access/return
// shapes are checked against their declared signatures.
//
// This is a traversal in the same family as internal/clr/resolve and
// internal/clr/flow - tunascript is dynamically typed and checks nothing
// statically, so there was nothing to adapt - grounded on resolve's own
// scope-stack-free, registry-based traversal style, reusing its pattern of
// a small checker struct threaded through every node-kind method instead of
// a visitor interface.
package typecheck

import (
	"github.com/dekarrin/clear/internal/clr/ast"
	"github.com/dekarrin/clear/internal/clr/errors"
	"github.com/dekarrin/clear/internal/clr/ident"
	"github.com/dekarrin/clear/internal/clr/source"
	"github.com/dekarrin/clear/internal/clr/types"
)

// Check type-checks every declaration in prog, writing a Type onto every
// expression node and a TypeAnnot onto every Binding it encounters. Must
// run after resolve.Resolve (which has already written every TypeExpr's
// Resolved() value) and may run before or after flow.Classify, since
// neither reads the other's annotations.
func Check(prog *ast.Program, sink *errors.Sink) {
	c := &checker{
		errs:        sink,
		structs:     map[ident.ID]*ast.StructDecl{},
		bindingType: map[ident.ID]types.Type{},
		bindings:    map[ident.ID]*ast.Binding{},
	}

	for _, b := range prog.Builtins {
		c.bindingType[b.ID] = b.TypeAnnot
		c.bindings[b.ID] = b
	}
	c.collectStructs(prog.Decls)

	// Bind every top-level function/method signature and struct field type
	// before any initializer or body is walked, so a call site types
	// correctly regardless of declaration order - functions recurse and
	// forward-refer freely, unlike value initializers.
	for _, d := range prog.Decls {
		c.declareSignatures(d)
	}

	// Value initializers run in use-before-definition order, so each one
	// only ever reads bindings that already carry a type.
	order := prog.Sequence
	if len(order) == 0 {
		order = make([]int, len(prog.Decls))
		for i := range order {
			order[i] = i
		}
	}
	for _, i := range order {
		if vd, ok := prog.Decls[i].(*ast.ValueDecl); ok {
			c.valueDecl(vd)
		}
	}

	// Function bodies and bare statements see every top-level binding typed.
	for _, d := range prog.Decls {
		if _, ok := d.(*ast.ValueDecl); ok {
			continue
		}
		c.stmt(d)
	}
}

// declareSignatures binds the types that are fully determined by a
// declaration's own syntax, without walking any initializer or body: a
// function binding's signature and a struct's field and method types.
func (c *checker) declareSignatures(d ast.Stmt) {
	switch n := d.(type) {
	case *ast.FunctionDecl:
		c.bindType(n.Binding, signatureOf(n))
	case *ast.StructDecl:
		for _, f := range n.Fields {
			c.bindType(f.Binding, f.Type.Resolved())
		}
		for _, m := range n.Methods {
			c.bindType(m.Binding, signatureOf(m))
		}
	}
}

type checker struct {
	errs    *errors.Sink
	structs map[ident.ID]*ast.StructDecl

	// bindingType mirrors each Binding's TypeAnnot by ID, populated as
	// bindings are typed, so a forward-referencing Ident (global recursion,
	// mutual top-level references) still finds its type: the sequencer
	// already ordered prog.Decls use-before-definition, but function
	// bodies can still reference a sibling not yet walked.
	bindingType map[ident.ID]types.Type

	// bindings maps every typed binding back to the Binding itself, so
	// setStmt can consult mutability for an assignment target's Ref.
	bindings map[ident.ID]*ast.Binding

	retStack []types.Type
}

func (c *checker) collectStructs(items []ast.Stmt) {
	for _, d := range items {
		switch n := d.(type) {
		case *ast.StructDecl:
			c.structs[n.Binding.ID] = n
			for _, m := range n.Methods {
				c.collectStructs(m.Body.Items)
			}
		case *ast.FunctionDecl:
			c.collectStructs(n.Body.Items)
		}
	}
}

func (c *checker) bindType(b *ast.Binding, t types.Type) {
	b.TypeAnnot = t
	c.bindingType[b.ID] = t
	c.bindings[b.ID] = b
}

func (c *checker) typeOf(id ident.ID) types.Type {
	if t, ok := c.bindingType[id]; ok {
		return t
	}
	return types.Unresolved
}

func (c *checker) valueDecl(n *ast.ValueDecl) {
	init := c.expr(n.Init)

	if len(n.Bindings) > 1 {
		c.destructureValueDecl(n, init)
		return
	}
	binding := n.Bindings[0]

	if n.Annot != nil {
		want := n.Annot.Resolved()
		if !types.Contains(want, init) {
			c.errs.Addf(errors.Semantic, []source.View{n.Region()},
				"cannot assign %s to %s", init, want)
		}
		c.bindType(binding, want)
		return
	}

	if init.IsVoid() {
		c.errs.Addf(errors.Semantic, []source.View{n.Region()}, "cannot declare a value of type void")
	}
	c.bindType(binding, init)
}

// destructureValueDecl types a multi-binding `val (a, b, ...) = init;`:
// init must contract to a tuple of exactly len(n.Bindings) elements, each
// binding taking its matching element's type in order.
func (c *checker) destructureValueDecl(n *ast.ValueDecl, init types.Type) {
	elems, ok := init.AsTuple()
	if !ok || len(elems) != len(n.Bindings) {
		c.errs.Addf(errors.Semantic, []source.View{n.Region()},
			"cannot destructure %s into %d bindings", init, len(n.Bindings))
		for _, b := range n.Bindings {
			c.bindType(b, types.Unresolved)
		}
		return
	}
	for i, b := range n.Bindings {
		c.bindType(b, elems[i])
	}
}

func (c *checker) functionDecl(n *ast.FunctionDecl) {
	// Re-binding the signature is a no-op for top-level functions (already
	// done by declareSignatures) but load-bearing for a function declared
	// inside a block, whose binding is first seen here - its own body may
	// recurse through it.
	c.bindType(n.Binding, signatureOf(n))

	retType := types.NewBuiltin(types.VOID)
	if n.ReturnType != nil {
		retType = n.ReturnType.Resolved()
	}
	for _, p := range n.Params {
		c.bindType(p.Binding, p.Type.Resolved())
	}

	c.retStack = append(c.retStack, retType)
	c.block(n.Body)
	c.retStack = c.retStack[:len(c.retStack)-1]
}

func (c *checker) structDecl(n *ast.StructDecl) {
	ownerType := types.NewStruct(n.Binding.ID, n.Binding.Name)

	for _, f := range n.Fields {
		c.bindType(f.Binding, f.Type.Resolved())
	}
	for _, m := range n.Methods {
		if m.Receiver != nil {
			c.bindType(m.Receiver, ownerType)
		}
		c.functionDecl(m)
	}
}

func (c *checker) block(b *ast.Block) {
	for _, item := range b.Items {
		c.stmt(item)
	}
}

func (c *checker) stmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.ValueDecl:
		c.valueDecl(n)
	case *ast.FunctionDecl:
		c.functionDecl(n)
	case *ast.StructDecl:
		c.structDecl(n)
	case *ast.Block:
		c.block(n)
	case *ast.If:
		for _, cond := range n.Conds {
			c.expectBool(cond)
		}
		for _, blk := range n.Blocks {
			c.block(blk)
		}
		if n.Else != nil {
			c.block(n.Else)
		}
	case *ast.While:
		if n.Cond != nil {
			c.expectBool(n.Cond)
		}
		c.block(n.Body)
	case *ast.Return:
		c.returnStmt(n)
	case *ast.Print:
		if n.Value != nil {
			t := c.expr(n.Value)
			if t.IsVoid() || !t.Valid() {
				c.errs.Addf(errors.Semantic, []source.View{n.Region()}, "cannot print a value of type %s", t)
			}
		}
	case *ast.ExprStmt:
		t := c.expr(n.Value)
		if !t.IsVoid() {
			c.errs.Add(errors.Warn(errors.Semantic, "result of this expression is unused", n.Region()))
		}
	case *ast.Set:
		c.setStmt(n)
	}
}

func (c *checker) expectBool(e ast.Expr) {
	t := c.expr(e)
	if !types.Equal(t, types.NewBuiltin(types.BOOL)) {
		c.errs.Addf(errors.Semantic, []source.View{e.Region()}, "condition must be bool, got %s", t)
	}
}

func (c *checker) returnStmt(n *ast.Return) {
	want := types.NewBuiltin(types.VOID)
	if len(c.retStack) > 0 {
		want = c.retStack[len(c.retStack)-1]
	}

	if n.Value == nil {
		if !want.IsVoid() {
			c.errs.Addf(errors.Semantic, []source.View{n.Region()}, "missing return value, expected %s", want)
		}
		return
	}

	got := c.expr(n.Value)
	if !types.Contains(want, got) {
		c.errs.Addf(errors.Semantic, []source.View{n.Region()}, "cannot return %s, expected %s", got, want)
	}
}

// setStmt checks an assignment: the target must be an assignable
// expression (an identifier naming a `var` binding, or a struct data
// field), and the value must fit the target's type. Anything else -
// a literal, a call result, a `val`/parameter/function name, a method -
// is an unassignable target.
func (c *checker) setStmt(n *ast.Set) {
	target := c.expr(n.Target)
	value := c.expr(n.Value)

	switch t := n.Target.(type) {
	case *ast.Ident:
		if b, ok := c.bindings[t.Ref]; ok && !b.Mutable {
			c.errs.Addf(errors.Semantic, []source.View{t.Region()},
				"cannot assign to %q: only var declarations are assignable", t.Name)
		}
	case *ast.Access:
		if t.Method != nil {
			c.errs.Addf(errors.Semantic, []source.View{t.Region()},
				"cannot assign to method %q", t.Field)
		}
	default:
		c.errs.Addf(errors.Semantic, []source.View{n.Target.Region()}, "unassignable target")
		return
	}

	if !types.Contains(target, value) {
		c.errs.Addf(errors.Semantic, []source.View{n.Region()}, "cannot assign %s to %s", value, target)
	}
}

func findField(s *ast.StructDecl, name string) (*ast.Param, bool) {
	for _, f := range s.Fields {
		if f.Binding.Name == name {
			return f, true
		}
	}
	return nil, false
}

// findMethod looks up name among s's declared methods, for the
// `target.method(args)` bound-call form access() also has to recognize.
func findMethod(s *ast.StructDecl, name string) (*ast.FunctionDecl, bool) {
	for _, m := range s.Methods {
		if m.Binding.Name == name {
			return m, true
		}
	}
	return nil, false
}

// signatureOf builds a function's Clear-level signature as seen from a
// call site. For a method this excludes the implicit receiver: `this` is
// supplied automatically from the access target, not counted among the
// declared parameters.
func signatureOf(m *ast.FunctionDecl) types.Type {
	params := make([]types.Type, len(m.Params))
	for i, p := range m.Params {
		params[i] = p.Type.Resolved()
	}
	ret := types.NewBuiltin(types.VOID)
	if m.ReturnType != nil {
		ret = m.ReturnType.Resolved()
	}
	return types.NewFunction(params, ret)
}
