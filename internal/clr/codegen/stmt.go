package codegen

import (
	"fmt"

	"github.com/dekarrin/clear/internal/clr/ast"
	"github.com/dekarrin/clear/internal/clr/bytecode"
	"github.com/dekarrin/clear/internal/clr/types"
)

// stmtList emits items in order, threading depth as the running count of
// genuinely occupied stack slots in the current frame (inside a function
// body this includes the closure slot, so depth starts at 1) - used purely for
// this pass's own pop bookkeeping, independent of (and never overwriting)
// the slot numbers internal/clr/index already committed to IndexAnnot and
// UseIndex.
func (g *gen) stmtList(depth *int, items []ast.Stmt) {
	for _, item := range items {
		g.stmt(depth, item)
	}
}

// scopedBlock runs blk as its own nested scope: whatever it pushes beyond
// its entry depth is popped before control returns to the caller, and depth
// is restored, matching the block code-emission policy's "declare; ...;
// pop every local introduced here" rule.
func (g *gen) scopedBlock(depth *int, blk *ast.Block) {
	entry := *depth
	g.stmtList(depth, blk.Items)
	for i := entry; i < *depth; i++ {
		g.emitOp(bytecode.POP)
	}
	*depth = entry
}

func (g *gen) stmt(depth *int, s ast.Stmt) {
	switch n := s.(type) {
	case *ast.ValueDecl:
		g.emitValueDecl(depth, n)
		*depth += len(n.Bindings)

	case *ast.FunctionDecl:
		g.closureBody(functionType(n), n.Binding, n.Upvalues, func() {
			g.funcBody(n)
		})
		g.declare(n.Binding.IndexAnnot)
		*depth++

	case *ast.StructDecl:
		g.emitStructDecl(n)

	case *ast.Block:
		g.scopedBlock(depth, n)

	case *ast.If:
		g.ifStmt(depth, n)

	case *ast.While:
		g.whileStmt(depth, n)

	case *ast.Return:
		g.returnStmt(depth, n)

	case *ast.Print:
		if n.Value != nil {
			g.expr(depth, n.Value)
			if b, ok := n.Value.Type().AsBuiltin(); !ok || b != types.STR {
				g.emitOp(bytecode.STR)
			}
		} else {
			g.constant(bytecode.NewStrConstant(""))
		}
		g.emitOp(bytecode.PRINT)

	case *ast.ExprStmt:
		g.expr(depth, n.Value)
		if !n.Value.Type().IsVoid() {
			g.emitOp(bytecode.POP)
		}

	case *ast.Set:
		g.setStmt(depth, n)
	}
}

func (g *gen) ifStmt(depth *int, n *ast.If) {
	var endJumps []int

	for i, cond := range n.Conds {
		g.expr(depth, cond)
		elseJump := g.beginJump(true, false)

		g.scopedBlock(depth, n.Blocks[i])

		if i < len(n.Conds)-1 || n.Else != nil {
			endJumps = append(endJumps, g.beginJump(false, false))
		}
		g.endJump(elseJump)
	}

	if n.Else != nil {
		g.scopedBlock(depth, n.Else)
	}

	for _, pos := range endJumps {
		g.endJump(pos)
	}
}

func (g *gen) whileStmt(depth *int, n *ast.While) {
	start := g.beginLoop()

	var exitJump int
	hasCond := n.Cond != nil
	if hasCond {
		g.expr(depth, n.Cond)
		exitJump = g.beginJump(true, false)
	}

	g.scopedBlock(depth, n.Body)
	g.loopBack(start)

	if hasCond {
		g.endJump(exitJump)
	}
}

func (g *gen) returnStmt(depth *int, n *ast.Return) {
	if n.Value != nil {
		g.expr(depth, n.Value)
		g.emitOp(bytecode.SET_RETURN)
	}
	g.emitReturn(*depth - 1)
}

func (g *gen) setStmt(depth *int, n *ast.Set) {
	switch target := n.Target.(type) {
	case *ast.Ident:
		g.expr(depth, n.Value)
		g.set(target.UseIndex)
	case *ast.Access:
		g.expr(depth, n.Value)
		g.expr(depth, target.Target)
		offset, _ := g.fieldOffsetOf(target)
		target.FieldOffset = offset
		g.emitOp(bytecode.SET_FIELD)
		g.emitIndex(offset)
	default:
		// The type checker only admits ident and field-access targets.
		panic(fmt.Sprintf("cannot emit assignment to %T target", n.Target))
	}
}
