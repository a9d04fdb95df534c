// Package ast defines the parse tree node families (Declaration, Statement,
// Expression, Type expression, Binding, Param) plus the annotation fields
// later phases write onto them in place.
//
// There is no class-hierarchy
// visitor here: each family is a small Go interface implemented by its
// concrete node structs (the idiomatic Go equivalent of a sum type), and
// callers dispatch with a single type switch rather than an Accept/Visit
// pair per node kind - this mirrors tunascript/ast.go's own tagged-pointer
// union (astNode holding fn/flag/value) generalized to interfaces, which
// read better across the larger node set Clear needs.
//
// Per Design Note "Cyclic data", back-references (Ident.Ref,
// TypeIdent.Ref, Construct.Ref) are ident.ID values, never pointers - this
// keeps the tree's ownership strictly parent-to-child with no cycles. There
// is no shared Binding arena: each phase that has to go from an ID back to
// its Binding keeps its own ID-keyed map for O(1) lookup.
package ast

import (
	"github.com/dekarrin/clear/internal/clr/bytecode"
	"github.com/dekarrin/clear/internal/clr/ident"
	"github.com/dekarrin/clear/internal/clr/source"
	"github.com/dekarrin/clear/internal/clr/types"
)

// ReturnAnnot classifies a statement's reachability-to-return, written by
// the control-flow phase.
type ReturnAnnot int

const (
	NEVER ReturnAnnot = iota
	SOMETIMES
	ALWAYS
)

func (r ReturnAnnot) String() string {
	switch r {
	case NEVER:
		return "NEVER"
	case SOMETIMES:
		return "SOMETIMES"
	case ALWAYS:
		return "ALWAYS"
	default:
		return "?"
	}
}

// Base is embedded by every node to provide its source region. It is not
// itself a Decl/Stmt/Expr/TypeExpr.
type Base struct {
	Rgn source.View
}

// Region returns the node's source region.
func (b Base) Region() source.View { return b.Rgn }

// Binding is a named slot introduced by a declaration or parameter. Its ID
// is stable for the lifetime of the tree and is what identifier/type nodes
// store in their Ref field once resolved.
type Binding struct {
	ID     ident.ID
	Name   string
	Region source.View

	// Mutable marks a binding introduced by `var`; only mutable bindings
	// are legal assignment targets. Everything else - `val` bindings,
	// parameters, function and struct names, `this` - is read-only after
	// declaration.
	Mutable bool

	TypeAnnot  types.Type
	IndexAnnot bytecode.Index

	// Dependency lists the IDs of other top-level bindings this binding's
	// initializer/body directly references at its own scope (not through
	// an intervening function), used by the sequencer's use-before-def DFS.
	Dependency []ident.ID
}

// Param is a (type, binding) pair.
type Param struct {
	Type    TypeExpr
	Binding *Binding
}

// Program is the root of the parse tree: the ordered list of top-level
// items, plus the dependency-aware ordering the sequencer computes over
// its declarations. A top-level item may be a Decl (val/var, func, struct)
// or a bare statement (print, if, while, assignment, ...) - both share
// Decls's single slice so that source order between the two is preserved;
// only Decl-kind items participate in Sequence's use-before-definition
// reordering, since only they introduce a Binding other items can depend
// on.
type Program struct {
	Decls    []Stmt
	Sequence []int // indices into Decls, in use-before-definition order

	// Builtins holds the predeclared global-function bindings (see
	// internal/clr/builtin), keyed by name, so later phases can recognize
	// an Ident/Call referring to one without re-deriving the table.
	Builtins map[string]*Binding
}
