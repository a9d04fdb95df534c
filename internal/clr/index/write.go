package index

import (
	"github.com/dekarrin/clear/internal/clr/ast"
	"github.com/dekarrin/clear/internal/clr/bytecode"
	"github.com/dekarrin/clear/internal/clr/ident"
)

// writer resolves each identifier's use-site index. frames is the stack of
// enclosing function contexts (innermost last); a reference's home binding
// either belongs to the innermost frame or an outer one, in which case it
// reads through an upvalue indirection in every frame strictly between the
// two. registry maps every binding the builder assigned a slot to back to
// itself, since an Ident only carries its binding's opaque ID.
type writer struct {
	frames   []frame
	registry map[ident.ID]*ast.Binding
}

type frame struct {
	self     *ast.Binding // the function's own binding, for UPVALUE:0 self-reference
	upvalues []*ast.Binding
}

func (w *writer) function(n *ast.FunctionDecl) {
	w.frames = append(w.frames, frame{self: n.Binding, upvalues: n.Upvalues})
	w.block(n.Body)
	w.frames = w.frames[:len(w.frames)-1]
}

func (w *writer) lambda(n *ast.Lambda) {
	w.frames = append(w.frames, frame{self: n.Binding, upvalues: n.Upvalues})
	w.expr(n.Body)
	w.frames = w.frames[:len(w.frames)-1]
}

func (w *writer) block(b *ast.Block) {
	for _, item := range b.Items {
		w.stmt(item)
	}
}

func (w *writer) stmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.ValueDecl:
		w.expr(n.Init)
	case *ast.FunctionDecl:
		w.function(n)
	case *ast.StructDecl:
		for _, m := range n.Methods {
			w.function(m)
		}
	case *ast.Block:
		w.block(n)
	case *ast.If:
		for _, c := range n.Conds {
			w.expr(c)
		}
		for _, blk := range n.Blocks {
			w.block(blk)
		}
		if n.Else != nil {
			w.block(n.Else)
		}
	case *ast.While:
		if n.Cond != nil {
			w.expr(n.Cond)
		}
		w.block(n.Body)
	case *ast.Return:
		if n.Value != nil {
			w.expr(n.Value)
		}
	case *ast.Print:
		if n.Value != nil {
			w.expr(n.Value)
		}
	case *ast.ExprStmt:
		w.expr(n.Value)
	case *ast.Set:
		w.expr(n.Target)
		w.expr(n.Value)
	}
}

func (w *writer) expr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.Ident:
		w.ident(n)
	case *ast.Unary:
		w.expr(n.Operand)
	case *ast.Binary:
		w.expr(n.Left)
		w.expr(n.Right)
	case *ast.Call:
		w.expr(n.Callee)
		for _, a := range n.Args {
			w.expr(a)
		}
	case *ast.TupleExpr:
		for _, el := range n.Elems {
			w.expr(el)
		}
	case *ast.Lambda:
		w.lambda(n)
	case *ast.CaseExpr:
		w.expr(n.Target)
		for _, arm := range n.Arms {
			w.expr(arm.Value)
		}
		if n.Fallback != nil {
			w.expr(n.Fallback)
		}
	case *ast.Construct:
		for _, f := range n.Fields {
			w.expr(f.Value)
		}
	case *ast.Access:
		w.expr(n.Target)
	}
}

// ident implements the upvalue-indexing rule: a self-reference becomes
// UPVALUE:0; a captured outer binding becomes UPVALUE:(1+pos) in the
// innermost frame's own upvalue list; anything else keeps the binding's
// own index (GLOBAL references are always direct, since there is no
// enclosing frame to indirect through at global scope).
func (w *writer) ident(n *ast.Ident) {
	if len(w.frames) > 0 {
		cur := w.frames[len(w.frames)-1]
		if cur.self != nil && n.Ref == cur.self.ID {
			n.UseIndex = bytecode.Index{Kind: bytecode.UPVALUE, Value: 0}
			return
		}
		for pos, uv := range cur.upvalues {
			if uv.ID == n.Ref {
				n.UseIndex = bytecode.Index{Kind: bytecode.UPVALUE, Value: byte(1 + pos)}
				return
			}
		}
	}

	if home, ok := w.registry[n.Ref]; ok {
		n.UseIndex = home.IndexAnnot
	}
}
