package bytecode

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Assemble_header(t *testing.T) {
	p := Program{
		Constants: []Constant{
			NewIntConstant(3),
			NewStrConstant("hi"),
		},
		Code: []byte{byte(PUSH_CONST), 0, byte(PRINT)},
	}

	out, err := Assemble(p)
	require.NoError(t, err)
	require.NotEmpty(t, out)

	assert.Equal(t, byte(2), out[0], "constant count")
	assert.Equal(t, byte(ConstInt), out[1], "first constant tag")

	// int constant is a fixed 4 bytes, little-endian, after its tag byte.
	intPayload := out[2:6]
	assert.Equal(t, byte(3), intPayload[0])
	for _, b := range intPayload[1:] {
		assert.Equal(t, byte(0), b)
	}

	strTagPos := 6
	assert.Equal(t, byte(ConstStr), out[strTagPos])
	strLen := int(out[strTagPos+1])
	assert.Equal(t, 2, strLen)
	assert.Equal(t, "hi", string(out[strTagPos+2:strTagPos+2+strLen]))

	code := out[strTagPos+2+strLen:]
	assert.Equal(t, p.Code, code)
}

func Test_Assemble_negativeIntConstantUsesTwosComplement(t *testing.T) {
	p := Program{
		Constants: []Constant{NewIntConstant(-1)},
		Code:      []byte{byte(PRINT)},
	}
	out, err := Assemble(p)
	require.NoError(t, err)

	// -1 as a 4-byte little-endian two's-complement int32 is all 0xFF
	// bytes, never zero-padded high bytes.
	intPayload := out[2:6]
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, intPayload)
}

func Test_Assemble_numConstantIsEightBytes(t *testing.T) {
	p := Program{
		Constants: []Constant{NewNumConstant(1.5)},
		Code:      []byte{byte(PRINT)},
	}
	out, err := Assemble(p)
	require.NoError(t, err)

	// tag byte, 8-byte payload, then code.
	require.Len(t, out, 1+1+8+len(p.Code))
	assert.Equal(t, byte(ConstNum), out[1])
}

func Test_Assemble_negativeNumConstantRoundTrips(t *testing.T) {
	p := Program{Constants: []Constant{NewNumConstant(-2.5)}}
	out, err := Assemble(p)
	require.NoError(t, err)

	got := math.Float64frombits(binary.LittleEndian.Uint64(out[2:10]))
	assert.Equal(t, -2.5, got)
}

func Test_Assemble_tooManyConstants(t *testing.T) {
	consts := make([]Constant, 256)
	for i := range consts {
		consts[i] = NewIntConstant(int64(i))
	}
	_, err := Assemble(Program{Constants: consts})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "256"))
}

func Test_Assemble_stringTooLong(t *testing.T) {
	_, err := Assemble(Program{Constants: []Constant{NewStrConstant(strings.Repeat("x", 256))}})
	require.Error(t, err)
}

func Test_Assemble_emptyProgram(t *testing.T) {
	out, err := Assemble(Program{})
	require.NoError(t, err)
	assert.Equal(t, []byte{0}, out)
}

func Test_CheckIndex(t *testing.T) {
	assert.NoError(t, CheckIndex(0))
	assert.NoError(t, CheckIndex(255))
	assert.Error(t, CheckIndex(-1))
	assert.Error(t, CheckIndex(256))
}

func Test_Constant_Equal(t *testing.T) {
	assert.True(t, NewIntConstant(1).Equal(NewIntConstant(1)))
	assert.False(t, NewIntConstant(1).Equal(NewIntConstant(2)))
	assert.False(t, NewIntConstant(1).Equal(NewNumConstant(1)))
	assert.True(t, NewStrConstant("a").Equal(NewStrConstant("a")))
}
