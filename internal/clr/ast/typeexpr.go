package ast

import (
	"github.com/dekarrin/clear/internal/clr/ident"
	"github.com/dekarrin/clear/internal/clr/source"
	"github.com/dekarrin/clear/internal/clr/types"
)

// TypeExpr is implemented by every type expression node kind: atom,
// function, optional, union, and struct identifier.
type TypeExpr interface {
	Region() source.View
	typeExprNode()
	// Resolved returns the types.Type the type checker wrote onto this
	// node. Zero value before resolution runs.
	Resolved() types.Type
}

type resolvedType struct {
	R types.Type
}

func (r resolvedType) Resolved() types.Type { return r.R }

// SetResolved is called by the type-resolution phase to write the looked-up
// Type onto this node in place.
func (r *resolvedType) SetResolved(t types.Type) { r.R = t }

// TypeAtom names a builtin type (`int`, `bool`, `num`, `str`, `void`,
// `nil`).
type TypeAtom struct {
	Base
	resolvedType
	Name string
}

func (*TypeAtom) typeExprNode() {}

// TypeIdent names a struct type by identifier; it must resolve to a
// struct declaration.
type TypeIdent struct {
	Base
	resolvedType
	Name string
	Ref  ident.ID
}

func (*TypeIdent) typeExprNode() {}

// TypeFunction is `func(T, ...) R`.
type TypeFunction struct {
	Base
	resolvedType
	Params []TypeExpr
	Return TypeExpr
}

func (*TypeFunction) typeExprNode() {}

// TypeOptional is `T?`, sugar for `T | nil`.
type TypeOptional struct {
	Base
	resolvedType
	Inner TypeExpr
}

func (*TypeOptional) typeExprNode() {}

// TypeUnion is `T | U`.
type TypeUnion struct {
	Base
	resolvedType
	Left, Right TypeExpr
}

func (*TypeUnion) typeExprNode() {}
