package types

import "github.com/dekarrin/clear/internal/clr/bytecode"

// BinaryOp and UnaryOp name Clear's typed/untyped operator spellings. These
// are declarative data, not closures, matching tunascript/operators.go's
// table-of-behavior design and Design Note "Dict-of-lambdas dispatch."
type BinaryOp string

const (
	OpAdd        BinaryOp = "+"
	OpSub        BinaryOp = "-"
	OpMul        BinaryOp = "*"
	OpDiv        BinaryOp = "/"
	OpLess       BinaryOp = "<"
	OpGreater    BinaryOp = ">"
	OpLessEq     BinaryOp = "<="
	OpGreaterEq  BinaryOp = ">="
	OpEqual      BinaryOp = "=="
	OpNotEqual   BinaryOp = "!="
	OpAnd        BinaryOp = "and"
	OpOr         BinaryOp = "or"
)

type UnaryOp string

const (
	OpNeg UnaryOp = "-"
	OpNot UnaryOp = "!"
)

// overload is one signature a typed operator supports: its exact operand
// type(s) and the resulting return type.
type overload struct {
	operands []Builtin
	ret      Builtin
	opcodes  []bytecode.Op
}

// typedBinaryOverloads holds the per-signature opcode sequences for
// operators whose legal operand types are fixed and whose code differs by
// signature. "<=" and ">=" are synthesized from the strict comparison plus
// NOT rather than having dedicated opcodes, because the opcode set has
// none for them.
var typedBinaryOverloads = map[BinaryOp][]overload{
	OpAdd: {
		{operands: []Builtin{INT, INT}, ret: INT, opcodes: []bytecode.Op{bytecode.INT_ADD}},
		{operands: []Builtin{NUM, NUM}, ret: NUM, opcodes: []bytecode.Op{bytecode.NUM_ADD}},
		{operands: []Builtin{STR, STR}, ret: STR, opcodes: []bytecode.Op{bytecode.STR_CAT}},
	},
	OpSub: {
		{operands: []Builtin{INT, INT}, ret: INT, opcodes: []bytecode.Op{bytecode.INT_SUB}},
		{operands: []Builtin{NUM, NUM}, ret: NUM, opcodes: []bytecode.Op{bytecode.NUM_SUB}},
	},
	OpMul: {
		{operands: []Builtin{INT, INT}, ret: INT, opcodes: []bytecode.Op{bytecode.INT_MUL}},
		{operands: []Builtin{NUM, NUM}, ret: NUM, opcodes: []bytecode.Op{bytecode.NUM_MUL}},
	},
	OpDiv: {
		{operands: []Builtin{INT, INT}, ret: INT, opcodes: []bytecode.Op{bytecode.INT_DIV}},
		{operands: []Builtin{NUM, NUM}, ret: NUM, opcodes: []bytecode.Op{bytecode.NUM_DIV}},
	},
	OpLess: {
		{operands: []Builtin{INT, INT}, ret: BOOL, opcodes: []bytecode.Op{bytecode.INT_LESS}},
		{operands: []Builtin{NUM, NUM}, ret: BOOL, opcodes: []bytecode.Op{bytecode.NUM_LESS}},
	},
	OpGreater: {
		{operands: []Builtin{INT, INT}, ret: BOOL, opcodes: []bytecode.Op{bytecode.INT_GREATER}},
		{operands: []Builtin{NUM, NUM}, ret: BOOL, opcodes: []bytecode.Op{bytecode.NUM_GREATER}},
	},
	OpLessEq: {
		{operands: []Builtin{INT, INT}, ret: BOOL, opcodes: []bytecode.Op{bytecode.INT_GREATER, bytecode.NOT}},
		{operands: []Builtin{NUM, NUM}, ret: BOOL, opcodes: []bytecode.Op{bytecode.NUM_GREATER, bytecode.NOT}},
	},
	OpGreaterEq: {
		{operands: []Builtin{INT, INT}, ret: BOOL, opcodes: []bytecode.Op{bytecode.INT_LESS, bytecode.NOT}},
		{operands: []Builtin{NUM, NUM}, ret: BOOL, opcodes: []bytecode.Op{bytecode.NUM_LESS, bytecode.NOT}},
	},
}

// typedUnaryOverloads is the unary analogue ("-" negation); "!" is untyped
// (BOOL only, no overload table needed) and is handled directly by the
// code generator with a single NOT.
var typedUnaryOverloads = map[UnaryOp][]overload{
	OpNeg: {
		{operands: []Builtin{INT}, ret: INT, opcodes: []bytecode.Op{bytecode.INT_NEG}},
		{operands: []Builtin{NUM}, ret: NUM, opcodes: []bytecode.Op{bytecode.NUM_NEG}},
	},
}

// untypedBinaryOpcodes holds the fixed opcode sequence for operators whose
// operand types are not restricted ("==", "!=": any two valid, equal
// types).
var untypedBinaryOpcodes = map[BinaryOp][]bytecode.Op{
	OpEqual:    {bytecode.EQUAL},
	OpNotEqual: {bytecode.EQUAL, bytecode.NOT},
}

// BinarySignature looks up the opcode sequence and result type for a typed
// binary operator given its (already equal-checked) operand builtin. ok is
// false if no overload matches, meaning the type checker should have
// already rejected this combination.
func BinarySignature(op BinaryOp, operand Builtin) (opcodes []bytecode.Op, ret Type, ok bool) {
	for _, o := range typedBinaryOverloads[op] {
		if len(o.operands) == 2 && o.operands[0] == operand && o.operands[1] == operand {
			return o.opcodes, NewBuiltin(o.ret), true
		}
	}
	return nil, Type{}, false
}

// UnarySignature looks up the opcode sequence and result type for a typed
// unary operator given its operand builtin.
func UnarySignature(op UnaryOp, operand Builtin) (opcodes []bytecode.Op, ret Type, ok bool) {
	for _, o := range typedUnaryOverloads[op] {
		if len(o.operands) == 1 && o.operands[0] == operand {
			return o.opcodes, NewBuiltin(o.ret), true
		}
	}
	return nil, Type{}, false
}

// UntypedBinaryOpcodes returns the fixed opcode sequence for an untyped
// binary operator ("==" / "!=").
func UntypedBinaryOpcodes(op BinaryOp) []bytecode.Op {
	return untypedBinaryOpcodes[op]
}

// IsTypedBinary reports whether op has per-signature overloads (as opposed
// to the fixed untyped table).
func IsTypedBinary(op BinaryOp) bool {
	_, ok := typedBinaryOverloads[op]
	return ok
}
