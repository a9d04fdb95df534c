package codegen

import (
	"github.com/dekarrin/clear/internal/clr/ast"
	"github.com/dekarrin/clear/internal/clr/bytecode"
	"github.com/dekarrin/clear/internal/clr/types"
)

// expr emits e's value-producing code. depth is the caller's running local
// counter, passed down unchanged to nested expressions; no expression kind
// reads or writes it (a CaseExpr's temporary slot comes from its
// TargetIndex, written by internal/clr/index), which is why topItem can pass
// nil for a top-level value declaration's initializer.
func (g *gen) expr(depth *int, e ast.Expr) {
	switch n := e.(type) {
	case *ast.IntLit:
		g.constant(bytecode.NewIntConstant(n.Value))
	case *ast.NumLit:
		g.constant(bytecode.NewNumConstant(n.Value))
	case *ast.StrLit:
		g.constant(bytecode.NewStrConstant(n.Value))
	case *ast.BoolLit:
		if n.Value {
			g.emitOp(bytecode.PUSH_TRUE)
		} else {
			g.emitOp(bytecode.PUSH_FALSE)
		}
	case *ast.NilLit:
		g.emitOp(bytecode.PUSH_NIL)
	case *ast.Ident:
		g.ident(n)
	case *ast.Unary:
		g.unary(depth, n)
	case *ast.Binary:
		g.binary(depth, n)
	case *ast.Call:
		g.call(depth, n)
	case *ast.TupleExpr:
		g.tuple(depth, n)
	case *ast.Lambda:
		g.lambda(n)
	case *ast.CaseExpr:
		g.caseExpr(depth, n)
	case *ast.Construct:
		g.construct(depth, n)
	case *ast.Access:
		g.access(depth, n)
	}
}

// ident pushes a bare identifier's value. A reference to a builtin's own
// name (`clock` used as a value, not called directly) synthesizes a
// zero-upvalue forwarding closure around the builtin's opcode, since the
// builtin itself has no Binding slot of its own to load.
func (g *gen) ident(n *ast.Ident) {
	if bi, ok := g.builtinIDs[n.Ref]; ok {
		g.closureBody(bi.Type(), nil, nil, func() {
			for i := range bi.Params {
				g.emitOp(bytecode.PUSH_LOCAL)
				g.emitIndex(1 + i)
			}
			g.emitOp(bi.Op)
			g.emitOp(bytecode.SET_RETURN)
			g.emitReturn(len(bi.Params))
		})
		return
	}
	g.load(n.UseIndex)
}

func (g *gen) unary(depth *int, n *ast.Unary) {
	g.expr(depth, n.Operand)
	switch n.Op {
	case types.OpNot:
		g.emitOp(bytecode.NOT)
	case types.OpNeg:
		if b, ok := n.Operand.Type().AsBuiltin(); ok {
			if ops, _, ok := types.UnarySignature(types.OpNeg, b); ok {
				for _, op := range ops {
					g.emitOp(op)
				}
			}
		}
	}
}

func (g *gen) binary(depth *int, n *ast.Binary) {
	switch n.Op {
	case types.OpAnd:
		g.expr(depth, n.Left)
		shortCircuit := g.beginJump(true, false)
		g.expr(depth, n.Right)
		end := g.beginJump(false, false)
		g.endJump(shortCircuit)
		g.emitOp(bytecode.PUSH_FALSE)
		g.endJump(end)
		return
	case types.OpOr:
		g.expr(depth, n.Left)
		g.emitOp(bytecode.NOT)
		shortCircuit := g.beginJump(true, false)
		g.expr(depth, n.Right)
		end := g.beginJump(false, false)
		g.endJump(shortCircuit)
		g.emitOp(bytecode.PUSH_TRUE)
		g.endJump(end)
		return
	}

	g.expr(depth, n.Left)
	g.expr(depth, n.Right)

	if !types.IsTypedBinary(n.Op) {
		for _, op := range types.UntypedBinaryOpcodes(n.Op) {
			g.emitOp(op)
		}
		return
	}

	if b, ok := n.Left.Type().AsBuiltin(); ok {
		if ops, _, ok := types.BinarySignature(n.Op, b); ok {
			for _, op := range ops {
				g.emitOp(op)
			}
		}
	}
}

// call emits a call expression. A direct call to a builtin's name emits the
// arguments and the builtin's single opcode, skipping the general call
// protocol entirely. A bound method access (`target.method(args)`) loads
// the method's global closure, then evaluates target as the implicit first
// argument ahead of the declared args; every other callee shape evaluates
// normally and supplies only the declared args.
func (g *gen) call(depth *int, n *ast.Call) {
	if id, ok := n.Callee.(*ast.Ident); ok {
		if bi, ok := g.builtinIDs[id.Ref]; ok {
			for _, a := range n.Args {
				g.expr(depth, a)
			}
			g.emitOp(bi.Op)
			return
		}
	}

	arity := len(n.Args)

	if acc, ok := n.Callee.(*ast.Access); ok && acc.Method != nil {
		g.load(acc.Method.Binding.IndexAnnot)
		g.expr(depth, acc.Target)
		arity++
	} else {
		g.expr(depth, n.Callee)
	}

	for _, a := range n.Args {
		g.expr(depth, a)
	}

	g.emitOp(bytecode.EXTRACT_FIELD)
	g.emitIndex(arity)
	g.emitIndex(1)
	g.emitOp(bytecode.CALL)
	g.emitIndex(arity + 1)

	if !n.Type().IsVoid() {
		g.emitOp(bytecode.PUSH_RETURN)
	}
}

func (g *gen) tuple(depth *int, n *ast.TupleExpr) {
	tag := g.typeTag(n.Type())
	g.constant(bytecode.NewIntConstant(int64(tag)))
	for _, el := range n.Elems {
		g.expr(depth, el)
	}
	g.emitOp(bytecode.STRUCT)
	g.emitIndex(len(n.Elems) + 1)
}

func (g *gen) lambda(n *ast.Lambda) {
	params := make([]types.Type, len(n.Params))
	for i, p := range n.Params {
		params[i] = p.Type.Resolved()
	}
	ret := n.Body.Type()
	if n.ReturnType != nil {
		ret = n.ReturnType.Resolved()
	}
	fnType := types.NewFunction(params, ret)

	g.closureBody(fnType, n.Binding, n.Upvalues, func() {
		bodyDepth := 1 + len(n.Params)
		g.expr(&bodyDepth, n.Body)
		g.emitOp(bytecode.SET_RETURN)
		g.emitReturn(bodyDepth - 1)
	})
}

// caseExpr evaluates Target into its assigned temporary slot, then tests
// each arm's declared type in order via match_type, short-circuiting to
// that arm's value on the first match and falling back otherwise; SQUASH
// discards the temporary once a result is on top of the stack.
func (g *gen) caseExpr(depth *int, n *ast.CaseExpr) {
	g.expr(depth, n.Target)

	var endJumps []int
	for _, arm := range n.Arms {
		g.matchType(n.TargetIndex, arm.Type.Resolved())
		nextArm := g.beginJump(true, false)

		g.expr(depth, arm.Value)
		endJumps = append(endJumps, g.beginJump(false, false))
		g.endJump(nextArm)
	}

	if n.Fallback != nil {
		g.expr(depth, n.Fallback)
	} else {
		g.emitOp(bytecode.PUSH_NIL)
	}

	for _, pos := range endJumps {
		g.endJump(pos)
	}

	g.emitOp(bytecode.SQUASH)
	g.emitIndex(1)
}

// matchType loads the value at slot and tests it against t, leaving a bool
// on the stack; a union type matches if any contracted member matches,
// tested one member at a time with an OR-style short circuit between them.
func (g *gen) matchType(slot bytecode.Index, t types.Type) {
	units := t.Units()

	// Same shape as the `or` lowering: a matching member pushes true and
	// jumps clear of the remaining tests; a failing one falls through to
	// the next. The final member's own test result is the chain's answer
	// when nothing earlier matched, so every path leaves exactly one bool.
	var trueJumps []int
	for i, u := range units {
		g.load(slot)
		g.emitMatchUnit(u)
		if i < len(units)-1 {
			fail := g.beginJump(true, false)
			g.emitOp(bytecode.PUSH_TRUE)
			trueJumps = append(trueJumps, g.beginJump(false, false))
			g.endJump(fail)
		}
	}
	for _, pos := range trueJumps {
		g.endJump(pos)
	}
}

func (g *gen) emitMatchUnit(u types.Type) {
	if b, ok := u.AsBuiltin(); ok {
		if b == types.STR {
			// Strings are heap objects: a value-tag test can only say
			// "object", so test the object kind instead.
			g.emitOp(bytecode.IS_OBJ_TYPE)
			g.emitIndex(int(bytecode.ObjString))
			g.emitIndex(0)
			return
		}
		g.emitOp(bytecode.IS_VAL_TYPE)
		g.emitIndex(int(valueTag(b)))
		return
	}
	if _, ok := u.AsStruct(); ok {
		g.emitOp(bytecode.IS_OBJ_TYPE)
		g.emitIndex(int(bytecode.ObjStruct))
		g.emitIndex(g.typeTag(u))
		return
	}
	// Function and tuple units are themselves tag-carrying structs at
	// runtime, so they compare by struct kind plus their own tag.
	g.emitOp(bytecode.IS_OBJ_TYPE)
	g.emitIndex(int(bytecode.ObjStruct))
	g.emitIndex(g.typeTag(u))
}

func valueTag(b types.Builtin) bytecode.ValueTag {
	switch b {
	case types.BOOL:
		return bytecode.TagBool
	case types.NIL:
		return bytecode.TagNil
	case types.INT:
		return bytecode.TagInt
	case types.NUM:
		return bytecode.TagNum
	default:
		return bytecode.TagObj
	}
}

func (g *gen) construct(depth *int, n *ast.Construct) {
	structID, ok := n.Type().AsStruct()
	if !ok {
		return
	}
	decl, ok := g.structs[structID]
	if !ok {
		return
	}

	tag := g.typeTag(n.Type())
	g.constant(bytecode.NewIntConstant(int64(tag)))

	byLabel := map[string]ast.Expr{}
	for _, f := range n.Fields {
		byLabel[f.Label] = f.Value
	}
	for _, f := range decl.Fields {
		if v, ok := byLabel[f.Binding.Name]; ok {
			g.expr(depth, v)
		} else {
			g.emitOp(bytecode.PUSH_NIL)
		}
	}

	g.emitOp(bytecode.STRUCT)
	g.emitIndex(len(decl.Fields) + 1)
}

func (g *gen) access(depth *int, n *ast.Access) {
	g.expr(depth, n.Target)
	offset, _ := g.fieldOffsetOf(n)
	n.FieldOffset = offset
	g.emitOp(bytecode.GET_FIELD)
	g.emitIndex(offset)
}

// fieldOffsetOf resolves n's target struct declaration and looks up Field's
// runtime offset among its declared fields.
func (g *gen) fieldOffsetOf(n *ast.Access) (int, bool) {
	structID, ok := n.Target.Type().AsStruct()
	if !ok {
		return 0, false
	}
	decl, ok := g.structs[structID]
	if !ok {
		return 0, false
	}
	return fieldOffset(decl, n.Field)
}
