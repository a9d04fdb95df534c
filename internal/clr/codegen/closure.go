package codegen

import (
	"github.com/dekarrin/clear/internal/clr/ast"
	"github.com/dekarrin/clear/internal/clr/bytecode"
	"github.com/dekarrin/clear/internal/clr/types"
)

// captureRef computes, relative to the frame currently on top of g.frames
// (the function whose body is being emitted right now, which is in the
// middle of building a nested closure literal), how that enclosing function
// itself reaches b: mirrors internal/clr/index's writer.ident, but over a
// raw Binding rather than an Ident reference, since a captured upvalue has
// no Ident node of its own in the source - it's an implicit forwarding the
// closure literal performs.
func (g *gen) captureRef(b *ast.Binding) bytecode.Index {
	if len(g.frames) == 0 {
		return b.IndexAnnot
	}
	cur := g.frames[len(g.frames)-1]
	if cur.self != nil && cur.self.ID == b.ID {
		return bytecode.Index{Kind: bytecode.UPVALUE, Value: 0}
	}
	for pos, uv := range cur.upvalues {
		if uv.ID == b.ID {
			return bytecode.Index{Kind: bytecode.UPVALUE, Value: byte(1 + pos)}
		}
	}
	return b.IndexAnnot
}

// emitCapture pushes the value that becomes one field of a new closure
// struct for the upvalue b: a fresh ref to the enclosing frame's own slot
// (REF_LOCAL) when b lives directly in the enclosing frame, or the
// enclosing frame's own existing ref value forwarded unchanged (so both
// frames share one mutable cell) when the enclosing frame already holds b
// as its own upvalue.
func (g *gen) emitCapture(b *ast.Binding) {
	ref := g.captureRef(b)
	if ref.Kind == bytecode.UPVALUE {
		g.emitOp(bytecode.PUSH_LOCAL)
		g.emitIndex(0)
		if ref.Value == 0 {
			return // the enclosing closure's own self, no further indirection
		}
		g.emitOp(bytecode.GET_FIELD)
		g.emitIndex(1 + int(ref.Value))
		return
	}
	g.emitOp(bytecode.REF_LOCAL)
	g.emitIndex(int(ref.Value))
}

// closureBody emits a complete closure value: the type tag constant, then
// FUNCTION (with its code-size operand patched after the body is emitted),
// then one emitCapture per upvalue, finally STRUCT, field_count+1. self, upvalues,
// and receiver describe the new frame being entered; emitBody does the
// actual per-kind body emission (a Block for a func decl, a single Expr for
// a lambda) and must itself call g.emitReturn for every exit path (or, for
// an expression-bodied lambda, push a single return value followed by
// g.emitReturn(locals)).
func (g *gen) closureBody(fnType types.Type, self *ast.Binding, upvalues []*ast.Binding, emitBody func()) {
	tag := g.typeTag(fnType)
	g.constant(bytecode.NewIntConstant(int64(tag)))

	g.frames = append(g.frames, frame{self: self, upvalues: upvalues})

	fnPos := len(g.code)
	g.emitOp(bytecode.FUNCTION)
	g.emit(0) // size placeholder
	bodyStart := len(g.code)

	emitBody()

	size := len(g.code) - bodyStart
	g.code[fnPos+1] = clampByte(g, size)

	g.frames = g.frames[:len(g.frames)-1]

	for _, uv := range upvalues {
		g.emitCapture(uv)
	}

	g.emitOp(bytecode.STRUCT)
	g.emitIndex(len(upvalues) + 2) // tag + ip + upvalues
}
