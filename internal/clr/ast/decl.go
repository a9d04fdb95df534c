package ast

import "github.com/dekarrin/clear/internal/clr/source"

// Decl is implemented by ValueDecl, FunctionDecl, and StructDecl.
type Decl interface {
	Region() source.View
	declNode()
}

// ValueDecl is `val`/`var name [: Type] = init;` or the destructuring form
// `val`/`var (name, name, ...) = init;`. Bindings holds exactly one entry
// for the plain form; Annot is only ever populated alongside a single
// Binding, since the destructuring form has no per-name type syntax.
type ValueDecl struct {
	Base
	IsVar    bool
	Bindings []*Binding
	Annot    TypeExpr // nil if not explicitly annotated
	Init     Expr
}

func (*ValueDecl) declNode() {}

// FunctionDecl is `func name(params) ReturnType { body }`.
type FunctionDecl struct {
	Base
	Binding    *Binding
	Params     []*Param
	ReturnType TypeExpr // nil means VOID
	Body       *Block

	// Receiver is the implicit `this` binding, non-nil only for a method
	// declared inside a StructDecl's Methods list. It occupies the slot
	// immediately after the closure itself, ahead of the declared Params.
	Receiver *Binding

	ReturnAnnot ReturnAnnot
	// Upvalues holds only bindings captured from an enclosing frame; the
	// function's own recursive self-reference is never a member of this
	// slice, since it is handled separately as UPVALUE:0 at index/codegen
	// time (see internal/clr/index).
	Upvalues []*Binding
	Sequence int
}

func (*FunctionDecl) declNode() {}

// StructDecl is `struct Name { fields... methods... }`.
type StructDecl struct {
	Base
	Binding *Binding
	Fields  []*Param        // non-method data fields
	Methods []*FunctionDecl // method fields; each implicitly receives `this`
}

func (*StructDecl) declNode() {}
