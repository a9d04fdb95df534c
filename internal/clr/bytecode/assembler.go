package bytecode

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Program is the code generator's output before assembly: a deduplicated
// constant pool and the flat instruction stream (opcodes interleaved with
// their byte operands).
type Program struct {
	Constants []Constant
	Code      []byte
}

// AssembleError is a fatal diagnostic pointing at the emitter itself rather
// than at user source - it means the code generator produced something the
// bytecode format cannot represent, never that the user's program is
// invalid.
type AssembleError struct {
	Reason string
}

func (e *AssembleError) Error() string {
	return fmt.Sprintf("bytecode assembler: %s", e.Reason)
}

// Assemble serializes p into the compiled wire format: a u8 constant count,
// then per constant a type tag and payload, followed by the raw
// instruction bytes. Int and num payloads are written as bare fixed-width
// little-endian bytes (4 and 8 bytes respectively) - the external VM reads
// them positionally with no self-describing framing, so they are encoded
// directly rather than through a length-prefixed codec.
func Assemble(p Program) ([]byte, error) {
	if len(p.Constants) > 255 {
		return nil, &AssembleError{Reason: fmt.Sprintf("constant pool has %d entries, max is 255", len(p.Constants))}
	}

	out := make([]byte, 0, 1+len(p.Code)*2)
	out = append(out, byte(len(p.Constants)))

	for _, c := range p.Constants {
		out = append(out, byte(c.Kind))
		switch c.Kind {
		case ConstInt:
			var buf [4]byte
			binary.LittleEndian.PutUint32(buf[:], uint32(int32(c.I)))
			out = append(out, buf[:]...)
		case ConstNum:
			var buf [8]byte
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(c.N))
			out = append(out, buf[:]...)
		case ConstStr:
			if len(c.S) > 255 {
				return nil, &AssembleError{Reason: fmt.Sprintf("string constant %q exceeds 255 bytes", c.S)}
			}
			out = append(out, byte(len(c.S)))
			out = append(out, []byte(c.S)...)
		default:
			return nil, &AssembleError{Reason: "unknown constant kind"}
		}
	}

	out = append(out, p.Code...)
	return out, nil
}

// CheckIndex validates that an emitted slot index fits the one-byte budget
// the format requires; callers report this as a fatal emitter diagnostic,
// not a user diagnostic.
func CheckIndex(idx int) error {
	if idx < 0 || idx > 255 {
		return &AssembleError{Reason: fmt.Sprintf("index %d out of representable range [0,255]", idx)}
	}
	return nil
}
