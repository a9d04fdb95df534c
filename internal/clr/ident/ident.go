// Package ident holds the single identity type shared by bindings and the
// struct types that reference them. Keeping it in its own tiny package lets
// internal/clr/ast and internal/clr/types both depend on it without either
// depending on the other - back-references from identifier nodes to
// bindings, and from function/struct types to their declaring binding, are
// expressed as these identities rather than as owning pointers, exactly per
// the "Cyclic data" design note.
package ident

import "github.com/google/uuid"

// ID is an opaque handle into whatever binding arena owns it. The zero
// value is not a valid ID and is used as the "no binding" sentinel (e.g. an
// unresolved reference).
type ID uuid.UUID

// Nil is the zero ID, meaning "not resolved to anything."
var Nil ID

// New returns a fresh, never-before-issued ID.
func New() ID {
	return ID(uuid.New())
}

// Valid reports whether id is not the Nil sentinel.
func (id ID) Valid() bool {
	return id != Nil
}

func (id ID) String() string {
	return uuid.UUID(id).String()
}
