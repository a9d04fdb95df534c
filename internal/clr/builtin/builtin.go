// Package builtin lists Clear's predeclared global functions: callables
// that exist without any user declaration and lower to a single opcode
// instead of the general call protocol. `clock` is the only member today,
// but the table shape (name, signature, opcode) leaves room to add more
// without touching the resolver or code generator's dispatch logic.
package builtin

import (
	"github.com/dekarrin/clear/internal/clr/bytecode"
	"github.com/dekarrin/clear/internal/clr/types"
)

// Builtin is one predeclared global function.
type Builtin struct {
	Name   string
	Params []types.Type
	Ret    types.Type
	Op     bytecode.Op
}

// Table holds every predeclared builtin, as data rather than code, per the
// same "tables as data" idiom types/operators.go uses for operator
// signatures.
var Table = []Builtin{
	{Name: "clock", Params: nil, Ret: types.NewBuiltin(types.NUM), Op: bytecode.CLOCK},
}

// Lookup finds a builtin by name.
func Lookup(name string) (Builtin, bool) {
	for _, b := range Table {
		if b.Name == name {
			return b, true
		}
	}
	return Builtin{}, false
}

// Type returns b's declared function type.
func (b Builtin) Type() types.Type {
	return types.NewFunction(b.Params, b.Ret)
}
