// Package index implements two traversals: IndexBuilder, which assigns
// every Binding (and every case expression's temporary) its runtime
// (kind, slot) address, and IndexWriter, which decides, for each
// identifier *reference*, whether that reference reads through the
// binding's own slot or through an upvalue indirection.
//
// Grounded on the general shape of tunascript's scope-stack-with-counters
// pattern used during its own variable resolution, generalized here into a
// dedicated pass with precise push/pop counter-restore semantics (entering
// a scope remembers its starting depth; leaving it restores the depth to
// "entry state plus names declared here", not a blanket reset to the entry
// value, since codegen still needs the earlier locals' slots accounted for
// until it emits their POPs itself).
package index

import (
	"github.com/dekarrin/clear/internal/clr/ast"
	"github.com/dekarrin/clear/internal/clr/bytecode"
	"github.com/dekarrin/clear/internal/clr/ident"
)

// Build assigns a bytecode.Index to every Binding in prog (global, local,
// param) and to every CaseExpr's temporary slot, then resolves every
// identifier reference's effective use-site index (direct or via upvalue).
// Must run after resolve.Resolve and flow.Classify, and before codegen.
//
// Note: a struct's data-field bindings are never given a runtime Index here
// - they are never a stack slot in their own right, only ever reached
// through GET_FIELD/SET_FIELD off a struct value - so a bare reference to a
// field name from inside a method (rather than `this.field`) is outside
// what this pass resolves; codegen's access handling is the only place
// field reads are generated.
func Build(prog *ast.Program) {
	b := &builder{registry: map[ident.ID]*ast.Binding{}}
	b.topLevel(prog)

	w := &writer{registry: b.registry}
	for _, d := range prog.Decls {
		w.stmt(d)
	}
}

// builder assigns IndexAnnot/TargetIndex values and records every indexed
// binding in registry so the writer can look up a reference's home index.
type builder struct {
	registry map[ident.ID]*ast.Binding

	// nextGlobal is shared by topLevel's own values/functions and by every
	// struct's methods, encountered in the same single sequence walk: a
	// method is call-addressable exactly like a plain top-level function
	// (it is generated once, globally, with `this` arriving as its first
	// explicit argument - see internal/clr/resolve's per-method Receiver
	// design), so it needs the same kind of GLOBAL slot.
	nextGlobal int
}

func (b *builder) record(bind *ast.Binding) {
	b.registry[bind.ID] = bind
}

// topLevel assigns GLOBAL slots to every top-level value/function binding,
// in sequence order (struct declarations are compile-time only and never
// receive a runtime slot), then walks into each for local indexing. A bare
// top-level statement carries no binding of its own, so it is indexed
// against a fresh zero-based depth exactly as if it were the sole item of
// an otherwise empty function body - there is no closure slot to reserve
// at top level the way a real function frame has one.
func (b *builder) topLevel(prog *ast.Program) {
	order := prog.Sequence
	if len(order) == 0 {
		order = identityOrder(len(prog.Decls))
	}

	for _, i := range order {
		d := prog.Decls[i]
		switch n := d.(type) {
		case *ast.ValueDecl:
			b.exprDepth(0, n.Init)
			for _, bind := range n.Bindings {
				bind.IndexAnnot = bytecode.Index{Kind: bytecode.GLOBAL, Value: byte(b.nextGlobal)}
				b.record(bind)
				b.nextGlobal++
			}
		case *ast.FunctionDecl:
			n.Binding.IndexAnnot = bytecode.Index{Kind: bytecode.GLOBAL, Value: byte(b.nextGlobal)}
			b.record(n.Binding)
			n.Sequence = b.nextGlobal
			b.nextGlobal++
			b.function(n)
		case *ast.StructDecl:
			b.structDecl(n)
		default:
			depth := 0
			b.stmtList(&depth, []ast.Stmt{d})
		}
	}
}

func identityOrder(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func (b *builder) structDecl(n *ast.StructDecl) {
	for _, m := range n.Methods {
		m.Binding.IndexAnnot = bytecode.Index{Kind: bytecode.GLOBAL, Value: byte(b.nextGlobal)}
		b.record(m.Binding)
		m.Sequence = b.nextGlobal
		b.nextGlobal++
		b.function(m)
	}
}

// function assigns PARAM slots (continuing the same counter locals use, so
// slot 0 is reserved for the closure struct, a method's implicit `this`
// takes the next slot, and the declared Params follow) then walks the body
// block.
func (b *builder) function(n *ast.FunctionDecl) {
	depth := 1
	if n.Receiver != nil {
		n.Receiver.IndexAnnot = bytecode.Index{Kind: bytecode.PARAM, Value: byte(depth)}
		b.record(n.Receiver)
		depth++
	}
	for _, p := range n.Params {
		p.Binding.IndexAnnot = bytecode.Index{Kind: bytecode.PARAM, Value: byte(depth)}
		b.record(p.Binding)
		depth++
	}
	b.block(&depth, n.Body)
}

func (b *builder) lambda(n *ast.Lambda) {
	depth := 1
	for _, p := range n.Params {
		p.Binding.IndexAnnot = bytecode.Index{Kind: bytecode.PARAM, Value: byte(depth)}
		b.record(p.Binding)
		depth++
	}
	b.exprDepth(depth, n.Body)
}

// block assigns slots to each declaration directly inside b's item list,
// recursing into nested scopes (if/while bodies, nested functions) with
// their own entry/exit restore; on return, *depth is restored to the
// entry value plus the count of names declared directly in this block,
// not a blanket reset.
func (b *builder) block(depth *int, blk *ast.Block) {
	b.stmtList(depth, blk.Items)
}

func (b *builder) stmtList(depth *int, items []ast.Stmt) {
	entry := *depth
	declaredHere := 0

	for _, item := range items {
		switch n := item.(type) {
		case *ast.ValueDecl:
			b.exprDepth(*depth, n.Init)
			for _, bind := range n.Bindings {
				bind.IndexAnnot = bytecode.Index{Kind: bytecode.LOCAL, Value: byte(*depth)}
				b.record(bind)
				*depth++
				declaredHere++
			}
		case *ast.FunctionDecl:
			n.Binding.IndexAnnot = bytecode.Index{Kind: bytecode.LOCAL, Value: byte(*depth)}
			b.record(n.Binding)
			*depth++
			declaredHere++
			b.function(n)
		case *ast.StructDecl:
			b.structDecl(n)
		case *ast.Block:
			b.block(depth, n)
		case *ast.If:
			for _, c := range n.Conds {
				b.exprDepth(*depth, c)
			}
			for _, blk := range n.Blocks {
				b.block(depth, blk)
			}
			if n.Else != nil {
				b.block(depth, n.Else)
			}
		case *ast.While:
			if n.Cond != nil {
				b.exprDepth(*depth, n.Cond)
			}
			b.block(depth, n.Body)
		case *ast.Return:
			if n.Value != nil {
				b.exprDepth(*depth, n.Value)
			}
		case *ast.Print:
			if n.Value != nil {
				b.exprDepth(*depth, n.Value)
			}
		case *ast.ExprStmt:
			b.exprDepth(*depth, n.Value)
		case *ast.Set:
			b.exprDepth(*depth, n.Target)
			b.exprDepth(*depth, n.Value)
		}
	}

	*depth = entry + declaredHere
}

// exprDepth walks e looking for CaseExpr nodes (the only expression kind
// that needs a temporary slot of its own) and nested Lambdas (which open
// their own frame, starting over at depth 1).
func (b *builder) exprDepth(depth int, e ast.Expr) {
	switch n := e.(type) {
	case *ast.Unary:
		b.exprDepth(depth, n.Operand)
	case *ast.Binary:
		b.exprDepth(depth, n.Left)
		b.exprDepth(depth, n.Right)
	case *ast.Call:
		b.exprDepth(depth, n.Callee)
		for _, a := range n.Args {
			b.exprDepth(depth, a)
		}
	case *ast.TupleExpr:
		for _, el := range n.Elems {
			b.exprDepth(depth, el)
		}
	case *ast.Lambda:
		b.lambda(n)
	case *ast.CaseExpr:
		b.exprDepth(depth, n.Target)
		n.TargetIndex = bytecode.Index{Kind: bytecode.LOCAL, Value: byte(depth)}
		for _, arm := range n.Arms {
			b.exprDepth(depth+1, arm.Value)
		}
		if n.Fallback != nil {
			b.exprDepth(depth+1, n.Fallback)
		}
	case *ast.Construct:
		for _, f := range n.Fields {
			b.exprDepth(depth, f.Value)
		}
	case *ast.Access:
		b.exprDepth(depth, n.Target)
	}
}
