// Package bytecode defines the opcode set, constant pool, and assembler
// that turn a generated instruction stream into the bytearray the external
// VM consumes. The opcode list and value-type tags are assigned
// contiguously starting at 0.
package bytecode

// Op is a single VM instruction opcode, always encoded as one byte.
type Op byte

const (
	PUSH_CONST Op = iota
	PUSH_TRUE
	PUSH_FALSE
	PUSH_NIL
	SET_GLOBAL
	PUSH_GLOBAL
	SET_LOCAL
	PUSH_LOCAL
	INT
	BOOL
	NUM
	STR
	CLOCK
	PRINT
	POP
	SQUASH
	INT_NEG
	NUM_NEG
	INT_ADD
	NUM_ADD
	INT_SUB
	NUM_SUB
	INT_MUL
	NUM_MUL
	INT_DIV
	NUM_DIV
	STR_CAT
	NOT
	INT_LESS
	NUM_LESS
	INT_GREATER
	NUM_GREATER
	EQUAL
	JUMP
	JUMP_IF_FALSE
	LOOP
	FUNCTION
	CALL
	LOAD_IP
	LOAD_FP
	SET_RETURN
	PUSH_RETURN
	STRUCT
	DESTRUCT
	GET_FIELD
	EXTRACT_FIELD
	SET_FIELD
	REF_LOCAL
	DEREF
	SET_REF
	IS_VAL_TYPE
	IS_OBJ_TYPE
)

var opNames = [...]string{
	"PUSH_CONST", "PUSH_TRUE", "PUSH_FALSE", "PUSH_NIL", "SET_GLOBAL",
	"PUSH_GLOBAL", "SET_LOCAL", "PUSH_LOCAL", "INT", "BOOL", "NUM", "STR",
	"CLOCK", "PRINT", "POP", "SQUASH", "INT_NEG", "NUM_NEG", "INT_ADD",
	"NUM_ADD", "INT_SUB", "NUM_SUB", "INT_MUL", "NUM_MUL", "INT_DIV",
	"NUM_DIV", "STR_CAT", "NOT", "INT_LESS", "NUM_LESS", "INT_GREATER",
	"NUM_GREATER", "EQUAL", "JUMP", "JUMP_IF_FALSE", "LOOP", "FUNCTION",
	"CALL", "LOAD_IP", "LOAD_FP", "SET_RETURN", "PUSH_RETURN", "STRUCT",
	"DESTRUCT", "GET_FIELD", "EXTRACT_FIELD", "SET_FIELD", "REF_LOCAL",
	"DEREF", "SET_REF", "IS_VAL_TYPE", "IS_OBJ_TYPE",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "UNKNOWN_OP"
}

// ValueTag is the runtime type tag used by IS_VAL_TYPE.
type ValueTag byte

const (
	TagBool ValueTag = iota
	TagNil
	TagObj
	TagInt
	TagNum
	TagIP
	TagFP
)

// ObjTag is the runtime object tag used by IS_OBJ_TYPE.
type ObjTag byte

const (
	ObjString ObjTag = iota
	ObjStruct
	ObjUpvalue
)

// IndexKind classifies how a slot is addressed at runtime.
type IndexKind int

const (
	GLOBAL IndexKind = iota
	LOCAL
	PARAM
	UPVALUE
)

func (k IndexKind) String() string {
	switch k {
	case GLOBAL:
		return "GLOBAL"
	case LOCAL:
		return "LOCAL"
	case PARAM:
		return "PARAM"
	case UPVALUE:
		return "UPVALUE"
	default:
		return "?"
	}
}

// Index is the (kind, slot) address annotation attached to bindings and
// references to them.
type Index struct {
	Kind  IndexKind
	Value byte
}
