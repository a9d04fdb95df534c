// Package types implements Clear's static type algebra: builtins, structs,
// functions, tuples, and the union/optional machinery that sits over all of
// them, plus contraction and subtyping. It is grounded on tunascript's
// value.go (ValueType/Value casting rules) generalized from three runtime
// kinds to a full static type algebra, and on operators.go's "tables as
// data, not code" design for the per-operator opcode tables.
package types

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/clear/internal/clr/ident"
)

// Builtin enumerates Clear's builtin unit types.
type Builtin int

const (
	NIL Builtin = iota
	VOID
	INT
	BOOL
	NUM
	STR
)

func (b Builtin) String() string {
	switch b {
	case NIL:
		return "nil"
	case VOID:
		return "void"
	case INT:
		return "int"
	case BOOL:
		return "bool"
	case NUM:
		return "num"
	case STR:
		return "str"
	default:
		return "?"
	}
}

// unitKind distinguishes the shape of a single member of a Type's union.
type unitKind int

const (
	kindBuiltin unitKind = iota
	kindStruct
	kindFunction
	kindTuple
	kindUnresolved
)

// Unit is a single non-union member of a Type. A Type is a set of Units
// plus a boolean "any" flag.
type Unit struct {
	kind unitKind

	builtin Builtin

	// struct identity: the ID of the struct-decl binding this unit names.
	structID   ident.ID
	structName string // for display only

	// function
	params []Type
	ret    *Type

	// tuple
	elems []Type
}

func (u Unit) key() string {
	switch u.kind {
	case kindBuiltin:
		return "b:" + u.builtin.String()
	case kindStruct:
		return "s:" + u.structID.String()
	case kindUnresolved:
		return "u"
	case kindFunction:
		parts := make([]string, len(u.params))
		for i, p := range u.params {
			parts[i] = p.key()
		}
		return "f(" + strings.Join(parts, ",") + ")->" + u.ret.key()
	case kindTuple:
		parts := make([]string, len(u.elems))
		for i, e := range u.elems {
			parts[i] = e.key()
		}
		return "t(" + strings.Join(parts, ",") + ")"
	}
	return "?"
}

func (u Unit) String() string {
	switch u.kind {
	case kindBuiltin:
		return u.builtin.String()
	case kindStruct:
		return u.structName
	case kindUnresolved:
		return "<unresolved>"
	case kindFunction:
		parts := make([]string, len(u.params))
		for i, p := range u.params {
			parts[i] = p.String()
		}
		return fmt.Sprintf("func(%s) %s", strings.Join(parts, ", "), u.ret.String())
	case kindTuple:
		parts := make([]string, len(u.elems))
		for i, e := range u.elems {
			parts[i] = e.String()
		}
		return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
	}
	return "?"
}

// Type is a (possibly uncontracted) union of Units. A single-member Type is
// not special-cased at construction time; Contract normalizes it.
type Type struct {
	units []Unit
}

// NewBuiltin returns the Type containing exactly the given builtin.
func NewBuiltin(b Builtin) Type {
	return Type{units: []Unit{{kind: kindBuiltin, builtin: b}}}
}

// NewStruct returns the Type naming the struct declared by id.
func NewStruct(id ident.ID, name string) Type {
	return Type{units: []Unit{{kind: kindStruct, structID: id, structName: name}}}
}

// NewFunction returns the Type of a function with the given parameter types
// and return type.
func NewFunction(params []Type, ret Type) Type {
	return Type{units: []Unit{{kind: kindFunction, params: append([]Type(nil), params...), ret: &ret}}}
}

// NewTuple returns the Type of a tuple with the given element types.
func NewTuple(elems []Type) Type {
	return Type{units: []Unit{{kind: kindTuple, elems: append([]Type(nil), elems...)}}}
}

// Unresolved is the sentinel Type used when a reference could not be
// resolved; it contaminates any union/function/tuple it appears in.
var Unresolved = Type{units: []Unit{{kind: kindUnresolved}}}

// Union returns the (uncontracted) union of a and b.
func Union(a, b Type) Type {
	return Type{units: append(append([]Unit(nil), a.units...), b.units...)}
}

// Optional returns T | NIL.
func Optional(t Type) Type {
	return Union(t, NewBuiltin(NIL))
}

// IsUnresolved reports whether t contracts to the unresolved sentinel.
func (t Type) IsUnresolved() bool {
	c := t.Contract()
	for _, u := range c.units {
		if u.kind == kindUnresolved {
			return true
		}
	}
	return false
}

// IsVoid reports whether t is exactly VOID (not a union containing it).
func (t Type) IsVoid() bool {
	c := t.Contract()
	return len(c.units) == 1 && c.units[0].kind == kindBuiltin && c.units[0].builtin == VOID
}

// Valid reports whether t is valid for a value: no unresolved member and no
// VOID member (VOID is only valid as a function's declared return type).
func (t Type) Valid() bool {
	c := t.Contract()
	for _, u := range c.units {
		if u.kind == kindUnresolved {
			return false
		}
		if u.kind == kindBuiltin && u.builtin == VOID {
			return false
		}
	}
	return true
}

// Contract normalizes t: single-element unions collapse to that element;
// same-arity functions merge by intersecting each parameter position and
// unioning the return types; same-length tuples merge by unioning each
// element position; unresolved contaminates the whole type.
func (t Type) Contract() Type {
	if len(t.units) == 0 {
		return t
	}

	// unresolved contaminates
	for _, u := range t.units {
		if u.kind == kindUnresolved {
			return Unresolved
		}
	}

	// dedupe by structural key, merging functions/tuples of matching shape
	byKey := map[string]Unit{}
	var order []string

	mergeFunc := func(existing, incoming Unit) Unit {
		if len(existing.params) != len(incoming.params) {
			// arity mismatch: keep both as distinct units by not merging;
			// caller guarantees this path isn't hit because keys differ
			return existing
		}
		merged := Unit{kind: kindFunction, params: make([]Type, len(existing.params))}
		for i := range existing.params {
			merged.params[i] = intersect(existing.params[i], incoming.params[i])
		}
		mergedRet := Union(*existing.ret, *incoming.ret).Contract()
		merged.ret = &mergedRet
		return merged
	}

	mergeTuple := func(existing, incoming Unit) Unit {
		merged := Unit{kind: kindTuple, elems: make([]Type, len(existing.elems))}
		for i := range existing.elems {
			merged.elems[i] = Union(existing.elems[i], incoming.elems[i]).Contract()
		}
		return merged
	}

	for _, u := range t.units {
		// contract nested types first (function params/return, tuple elems)
		switch u.kind {
		case kindFunction:
			np := make([]Type, len(u.params))
			for i, p := range u.params {
				np[i] = p.Contract()
			}
			nr := u.ret.Contract()
			u.params, u.ret = np, &nr
		case kindTuple:
			ne := make([]Type, len(u.elems))
			for i, e := range u.elems {
				ne[i] = e.Contract()
			}
			u.elems = ne
		}

		// functions and tuples merge across differing keys when arity
		// matches (same number of params / elements).
		merged := false
		if u.kind == kindFunction {
			for k, ex := range byKey {
				if ex.kind == kindFunction && len(ex.params) == len(u.params) {
					byKey[k] = mergeFunc(ex, u)
					merged = true
					break
				}
			}
		} else if u.kind == kindTuple {
			for k, ex := range byKey {
				if ex.kind == kindTuple && len(ex.elems) == len(u.elems) {
					byKey[k] = mergeTuple(ex, u)
					merged = true
					break
				}
			}
		}
		if merged {
			continue
		}

		key := u.key()
		if _, ok := byKey[key]; !ok {
			order = append(order, key)
		}
		byKey[key] = u
	}

	result := make([]Unit, 0, len(order))
	for _, k := range order {
		result = append(result, byKey[k])
	}
	return Type{units: result}
}

// intersect computes the intersection of two parameter types: the set of
// units present in both a and b's contracted forms. Contravariant
// parameter merging for same-arity function unions uses intersection.
func intersect(a, b Type) Type {
	ac, bc := a.Contract(), b.Contract()
	bKeys := map[string]bool{}
	for _, u := range bc.units {
		bKeys[u.key()] = true
	}
	var out []Unit
	for _, u := range ac.units {
		if bKeys[u.key()] {
			out = append(out, u)
		}
	}
	return Type{units: out}
}

// Equal reports whether a and b are structurally equal on their contracted
// forms.
func Equal(a, b Type) bool {
	ac, bc := a.Contract(), b.Contract()
	if len(ac.units) != len(bc.units) {
		return false
	}
	aKeys := keysOf(ac)
	bKeys := keysOf(bc)
	sort.Strings(aKeys)
	sort.Strings(bKeys)
	for i := range aKeys {
		if aKeys[i] != bKeys[i] {
			return false
		}
	}
	return true
}

// key returns a canonical structural key for t, used when t appears nested
// inside a Unit (function param/return, tuple element) and needs its own
// structural identity for Unit.key().
func (t Type) key() string {
	keys := keysOf(t.Contract())
	sort.Strings(keys)
	return strings.Join(keys, "+")
}

func keysOf(t Type) []string {
	keys := make([]string, len(t.units))
	for i, u := range t.units {
		keys[i] = u.key()
	}
	return keys
}

// Contains decides the "inner ⊆ outer" subtyping relation: inner is a
// subtype of outer iff their union, once contracted, equals outer's
// contracted form.
func Contains(outer, inner Type) bool {
	u := Union(outer, inner).Contract()
	return Equal(u, outer)
}

// String renders t's contracted form, adding a trailing "?" when NIL is
// present alongside at least one other unit.
func (t Type) String() string {
	c := t.Contract()
	if len(c.units) == 0 {
		return "<empty>"
	}
	if len(c.units) == 1 {
		return c.units[0].String()
	}

	hasNil := false
	var rest []Unit
	for _, u := range c.units {
		if u.kind == kindBuiltin && u.builtin == NIL {
			hasNil = true
			continue
		}
		rest = append(rest, u)
	}

	parts := make([]string, len(rest))
	for i, u := range rest {
		parts[i] = u.String()
	}
	body := strings.Join(parts, " | ")

	if hasNil {
		if len(rest) == 1 {
			return body + "?"
		}
		return "(" + body + ")?"
	}
	return body
}

// Unit-introspection helpers used by the type checker and code generator,
// which need to examine a single contracted unit's shape rather than just
// ask containment questions.

// AsFunction returns the function signature if t contracts to exactly one
// unit and that unit is a function type.
func (t Type) AsFunction() (params []Type, ret Type, ok bool) {
	c := t.Contract()
	if len(c.units) != 1 || c.units[0].kind != kindFunction {
		return nil, Type{}, false
	}
	return c.units[0].params, *c.units[0].ret, true
}

// AsStruct returns the declaring binding ID if t contracts to exactly one
// unit and that unit is a struct type.
func (t Type) AsStruct() (id ident.ID, ok bool) {
	c := t.Contract()
	if len(c.units) != 1 || c.units[0].kind != kindStruct {
		return ident.Nil, false
	}
	return c.units[0].structID, true
}

// AsTuple returns the element types if t contracts to exactly one unit and
// that unit is a tuple type.
func (t Type) AsTuple() (elems []Type, ok bool) {
	c := t.Contract()
	if len(c.units) != 1 || c.units[0].kind != kindTuple {
		return nil, false
	}
	return c.units[0].elems, true
}

// Units returns t's contracted members, each as its own single-unit Type,
// for callers that dispatch per member - runtime type matching tests one
// member at a time.
func (t Type) Units() []Type {
	c := t.Contract()
	out := make([]Type, len(c.units))
	for i, u := range c.units {
		out[i] = Type{units: []Unit{u}}
	}
	return out
}

// IsUnit reports whether t contracts to a single, non-union member (a
// "unit function type" per the call-checking rule, for example).
func (t Type) IsUnit() bool {
	return len(t.Contract().units) == 1
}

// AsBuiltin returns the Builtin if t contracts to exactly one unit and
// that unit is a builtin type - the typed operator tables key off this.
func (t Type) AsBuiltin() (b Builtin, ok bool) {
	c := t.Contract()
	if len(c.units) != 1 || c.units[0].kind != kindBuiltin {
		return 0, false
	}
	return c.units[0].builtin, true
}
