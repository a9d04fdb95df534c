package ast

import (
	"github.com/dekarrin/clear/internal/clr/bytecode"
	"github.com/dekarrin/clear/internal/clr/ident"
	"github.com/dekarrin/clear/internal/clr/source"
	"github.com/dekarrin/clear/internal/clr/types"
)

// Expr is implemented by every expression node kind: literals, identifier,
// unary, binary, call, tuple, lambda, case, construct, and access.
type Expr interface {
	Region() source.View
	exprNode()
	// Type returns the type_annot the type checker wrote onto this node.
	// It is the zero Type before checking runs.
	Type() types.Type
}

// typed is embedded by every expr node to hold the type_annot annotation,
// alongside Base for the region.
type typed struct {
	TypeAnnot types.Type
}

func (t typed) Type() types.Type { return t.TypeAnnot }

// SetType is called by the type-checking phase to write the inferred Type
// onto this node in place.
func (t *typed) SetType(ty types.Type) { t.TypeAnnot = ty }

// IntLit is an integer literal: only produced when a numeric literal is
// immediately followed by the integer-suffix token; otherwise the literal
// is a NumLit.
type IntLit struct {
	Base
	typed
	Value int64
}

func (*IntLit) exprNode() {}

// NumLit is a (possibly fractional) numeric literal.
type NumLit struct {
	Base
	typed
	Value float64
}

func (*NumLit) exprNode() {}

// StrLit is a string literal. Adjacent string literals are combined by the
// parser into a single StrLit, joined by a literal '"' character.
type StrLit struct {
	Base
	typed
	Value string
}

func (*StrLit) exprNode() {}

// BoolLit is `true` or `false`.
type BoolLit struct {
	Base
	typed
	Value bool
}

func (*BoolLit) exprNode() {}

// NilLit is the `nil` literal.
type NilLit struct {
	Base
	typed
}

func (*NilLit) exprNode() {}

// Ident is an identifier used as a value expression.
type Ident struct {
	Base
	typed
	Name string
	Ref  ident.ID // resolved binding; ident.Nil if unresolved

	// UseIndex is the index the indexer writes for this particular
	// reference, which may differ from the binding's own IndexAnnot: a
	// reference from inside a nested function to an outer binding reads
	// through an UPVALUE slot even though the binding itself lives at
	// LOCAL/PARAM in its own frame.
	UseIndex bytecode.Index
}

func (*Ident) exprNode() {}

// Unary is a prefix unary operator expression (`-x`, `!x`).
type Unary struct {
	Base
	typed
	Op      types.UnaryOp
	Operand Expr
}

func (*Unary) exprNode() {}

// Binary is an infix binary operator expression.
type Binary struct {
	Base
	typed
	Op    types.BinaryOp
	Left  Expr
	Right Expr
}

func (*Binary) exprNode() {}

// Call is `callee(args...)`.
type Call struct {
	Base
	typed
	Callee Expr
	Args   []Expr
}

func (*Call) exprNode() {}

// TupleExpr is `(a, b, c)`.
type TupleExpr struct {
	Base
	typed
	Elems []Expr
}

func (*TupleExpr) exprNode() {}

// Lambda is `func(params) ReturnType expr` - an anonymous function whose
// body is a single expression, unlike a full func decl's braced block.
type Lambda struct {
	Base
	typed
	Binding    *Binding // synthetic binding used for the closure's own recursive self-reference slot
	Params     []*Param
	ReturnType TypeExpr // nil means inferred/VOID
	Body       Expr

	Upvalues []*Binding
}

func (*Lambda) exprNode() {}

// CaseArm is one `Type => value` arm of a CaseExpr.
type CaseArm struct {
	Type  TypeExpr
	Value Expr
}

// CaseExpr is Clear's pattern-dispatch expression; only the final form
// with an explicit fallback is implemented
// (`case target { T1 => v1, T2 => v2, else => fallback }`).
type CaseExpr struct {
	Base
	typed
	Target      Expr
	Arms        []CaseArm
	Fallback    Expr
	TargetIndex bytecode.Index // the temporary slot Target is evaluated into
}

func (*CaseExpr) exprNode() {}

// ConstructField is `label: value` inside a struct literal.
type ConstructField struct {
	Region source.View
	Label  string
	Value  Expr
}

// Construct is a struct literal: `Name{ field: value, ... }`.
type Construct struct {
	Base
	typed
	TypeName TypeExpr // must resolve to a struct declaration
	Fields   []ConstructField
	Ref      ident.ID // resolved struct binding
}

func (*Construct) exprNode() {}

// Access is `target.field`.
type Access struct {
	Base
	typed
	Target      Expr
	Field       string
	FieldOffset int // includes the +1 type-tag slot, written by codegen

	// Method is non-nil when Field names one of the target struct's methods
	// rather than a data field, written by typecheck's access(). A bound
	// method reference only lowers correctly at a Call site (codegen's call
	// special-cases Callee being an *Access with Method set); FieldOffset is
	// left zero in this case.
	Method *FunctionDecl
}

func (*Access) exprNode() {}
