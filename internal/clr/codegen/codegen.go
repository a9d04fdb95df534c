// Package codegen turns a fully resolved, typed, classified, and indexed
// parse tree into a bytecode.Program: a deduplicated constant/type-tag pool
// plus a flat instruction stream, following a per-node emission policy for
// each construct.
//
// Grounded on tunascript/eval.go's tree-walking evaluator structure (a
// per-node-kind dispatch method over the same tree shape, an explicit stack
// of evaluation context) but emitting bytecode.Op bytes into a growable
// slice instead of directly producing a runtime Value - the same shift a
// tree-walking interpreter would need to become a compiler. Jump patching
// and the function/struct emission contexts have no direct analogue
// upstream and are written fresh against the instruction-list-as-slice
// idiom used throughout tunascript (tunascript.AST.children []*AST-style
// growable slices).
package codegen

import (
	"github.com/dekarrin/clear/internal/clr/ast"
	"github.com/dekarrin/clear/internal/clr/builtin"
	"github.com/dekarrin/clear/internal/clr/bytecode"
	"github.com/dekarrin/clear/internal/clr/errors"
	"github.com/dekarrin/clear/internal/clr/ident"
	"github.com/dekarrin/clear/internal/clr/types"
)

// Generate walks prog's top-level declarations in sequence order and emits
// a complete bytecode.Program. Must run after index.Build, which is the
// last phase to write tree annotations codegen reads.
func Generate(prog *ast.Program, sink *errors.Sink) bytecode.Program {
	g := &gen{
		errs:       sink,
		structs:    map[ident.ID]*ast.StructDecl{},
		builtinIDs: map[ident.ID]builtin.Builtin{},
	}
	g.collectStructs(prog.Decls)
	for name, b := range prog.Builtins {
		if bi, ok := builtin.Lookup(name); ok {
			g.builtinIDs[b.ID] = bi
		}
	}

	order := prog.Sequence
	if len(order) == 0 {
		order = make([]int, len(prog.Decls))
		for i := range order {
			order[i] = i
		}
	}

	for _, i := range order {
		g.topItem(prog.Decls[i])
	}

	return bytecode.Program{Constants: g.constants, Code: g.code}
}

// frame is one enclosing function's capture context, mirroring
// internal/clr/index's writer: needed so a nested function/lambda literal
// can decide, for each of its own captures, whether the *enclosing*
// function reaches that binding directly (REF_LOCAL) or is itself already
// holding it as an upvalue (forward the existing ref unchanged).
type frame struct {
	self     *ast.Binding
	upvalues []*ast.Binding
}

type gen struct {
	code      []byte
	constants []bytecode.Constant
	typeTags  []types.Type

	frames     []frame
	structs    map[ident.ID]*ast.StructDecl
	builtinIDs map[ident.ID]builtin.Builtin

	errs *errors.Sink
}

func (g *gen) collectStructs(items []ast.Stmt) {
	for _, d := range items {
		switch n := d.(type) {
		case *ast.StructDecl:
			g.structs[n.Binding.ID] = n
			for _, m := range n.Methods {
				g.collectStructs(m.Body.Items)
			}
		case *ast.FunctionDecl:
			g.collectStructs(n.Body.Items)
		}
	}
}

func (g *gen) fatalf(format string, a ...interface{}) {
	g.errs.Addf(errors.Semantic, nil, format, a...)
}

// --- low-level emission ---

func (g *gen) emit(b byte) {
	g.code = append(g.code, b)
}

func (g *gen) emitOp(op bytecode.Op) {
	g.emit(byte(op))
}

func (g *gen) emitIndex(idx int) {
	if err := bytecode.CheckIndex(idx); err != nil {
		g.fatalf("%s", err.Error())
		g.emit(0)
		return
	}
	g.emit(byte(idx))
}

// constant deduplicates c against the pool and emits PUSH_CONST, pool_index.
func (g *gen) constant(c bytecode.Constant) {
	g.emitOp(bytecode.PUSH_CONST)
	g.emitIndex(g.poolIndex(c))
}

func (g *gen) poolIndex(c bytecode.Constant) int {
	for i, existing := range g.constants {
		if existing.Equal(c) {
			return i
		}
	}
	g.constants = append(g.constants, c)
	return len(g.constants) - 1
}

// typeTag deduplicates t against the tag pool, assigning a new index if t
// is structurally new, for use as a STRUCT literal's leading type tag and
// as match_type's struct-identity comparison operand.
func (g *gen) typeTag(t types.Type) int {
	for i, existing := range g.typeTags {
		if types.Equal(existing, t) {
			return i
		}
	}
	g.typeTags = append(g.typeTags, t)
	return len(g.typeTags) - 1
}

// declare emits the opcode needed to bind the value already sitting on top
// of the stack to idx: SET_GLOBAL at GLOBAL, nothing at LOCAL (the value is
// already in its slot), and never at PARAM/UPVALUE (owned by the caller or
// the enclosing closure).
func (g *gen) declare(idx bytecode.Index) {
	switch idx.Kind {
	case bytecode.GLOBAL:
		g.emitOp(bytecode.SET_GLOBAL)
		g.emitIndex(int(idx.Value))
	case bytecode.LOCAL:
		// no opcode: the value already occupies its slot
	}
}

// load pushes the value idx names.
func (g *gen) load(idx bytecode.Index) {
	switch idx.Kind {
	case bytecode.GLOBAL:
		g.emitOp(bytecode.PUSH_GLOBAL)
		g.emitIndex(int(idx.Value))
	case bytecode.LOCAL, bytecode.PARAM:
		g.emitOp(bytecode.PUSH_LOCAL)
		g.emitIndex(int(idx.Value))
	case bytecode.UPVALUE:
		g.emitOp(bytecode.PUSH_LOCAL)
		g.emitIndex(0) // slot 0 is always the running closure itself
		if idx.Value == 0 {
			return // UPVALUE:0 is the closure itself, no further indirection
		}
		g.emitOp(bytecode.GET_FIELD)
		g.emitIndex(1 + int(idx.Value)) // field 0 is the tag, field 1 the ip
		g.emitOp(bytecode.DEREF)
	}
}

// set stores the value already on top of the stack into idx.
func (g *gen) set(idx bytecode.Index) {
	switch idx.Kind {
	case bytecode.GLOBAL:
		g.emitOp(bytecode.SET_GLOBAL)
		g.emitIndex(int(idx.Value))
	case bytecode.LOCAL, bytecode.PARAM:
		g.emitOp(bytecode.SET_LOCAL)
		g.emitIndex(int(idx.Value))
	case bytecode.UPVALUE:
		g.emitOp(bytecode.PUSH_LOCAL)
		g.emitIndex(0)
		g.emitOp(bytecode.GET_FIELD)
		g.emitIndex(1 + int(idx.Value))
		g.emitOp(bytecode.SET_REF)
	}
}

// beginJump emits JUMP (unconditional) or JUMP_IF_FALSE (the condition
// value must already be on the stack), preceded by NOT if invert is set,
// and reserves a one-byte placeholder operand whose position it returns.
func (g *gen) beginJump(conditional bool, invert bool) int {
	if conditional && invert {
		g.emitOp(bytecode.NOT)
	}
	if conditional {
		g.emitOp(bytecode.JUMP_IF_FALSE)
	} else {
		g.emitOp(bytecode.JUMP)
	}
	g.emit(0)
	return len(g.code) - 1
}

// endJump patches the placeholder at pos to the byte-size of the
// intervening code (everything emitted since beginJump returned).
func (g *gen) endJump(pos int) {
	offset := len(g.code) - (pos + 1)
	g.code[pos] = clampByte(g, offset)
}

// beginLoop remembers the current code position as a loop's back-jump
// target.
func (g *gen) beginLoop() int {
	return len(g.code)
}

// loopBack emits LOOP, offset where offset is the byte distance back to
// target, inclusive of the LOOP instruction and its own operand.
func (g *gen) loopBack(target int) {
	g.emitOp(bytecode.LOOP)
	offset := len(g.code) + 1 - target
	g.emit(clampByte(g, offset))
}

func clampByte(g *gen, v int) byte {
	if err := bytecode.CheckIndex(v); err != nil {
		g.fatalf("%s", err.Error())
		return 0
	}
	return byte(v)
}

// emitReturn pops every local declared between the return point and the
// function root (popLocals, supplied by the caller, since codegen tracks
// scope depth as a plain counter alongside the tree walk, not as a node
// annotation), then the closure itself, then restores the caller's frame
// pointer and instruction pointer.
func (g *gen) emitReturn(popLocals int) {
	for i := 0; i < popLocals; i++ {
		g.emitOp(bytecode.POP)
	}
	g.emitOp(bytecode.POP) // the closure
	g.emitOp(bytecode.LOAD_FP)
	g.emitOp(bytecode.LOAD_IP)
}
