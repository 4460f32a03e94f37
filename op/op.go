// Package op defines the opcodes stored in a chunk's instruction stream.
package op

import "fmt"

// Code is a one-byte opcode tag that indicates an operation to execute.
type Code uint8

const (
	// Constant loads constants[operand] using a one-byte operand.
	Constant Code = iota
	// Return ends execution of the current chunk.
	Return

	// Literals
	Nil
	True
	False

	// Comparison
	Equal
	Greater
	Less

	// Arithmetic
	Add
	Subtract
	Multiply
	Divide
	Not
	Negate

	// ConstantLong loads a constant using a three-byte little-endian operand.
	ConstantLong
)

// ConstantLongMax is one past the largest index ConstantLong can encode.
const ConstantLongMax = 1 << 24

// Info contains information about an opcode.
type Info struct {
	Code         Code
	Name         string
	OperandCount int
}

// Size returns the total encoded size of the instruction in bytes.
func (i Info) Size() int {
	return 1 + i.OperandCount
}

var infos = make([]Info, 256)

func init() {
	type opInfo struct {
		op    Code
		name  string
		count int
	}
	ops := []opInfo{
		{Constant, "OP_CONSTANT", 1},
		{ConstantLong, "OP_CONSTANT_LONG", 3},
		{Return, "OP_RETURN", 0},
		{Nil, "OP_NIL", 0},
		{True, "OP_TRUE", 0},
		{False, "OP_FALSE", 0},
		{Equal, "OP_EQUAL", 0},
		{Greater, "OP_GREATER", 0},
		{Less, "OP_LESS", 0},
		{Add, "OP_ADD", 0},
		{Subtract, "OP_SUBTRACT", 0},
		{Multiply, "OP_MULTIPLY", 0},
		{Divide, "OP_DIVIDE", 0},
		{Not, "OP_NOT", 0},
		{Negate, "OP_NEGATE", 0},
	}
	for _, o := range ops {
		infos[o.op] = Info{
			Name:         o.name,
			Code:         o.op,
			OperandCount: o.count,
		}
	}
}

// GetInfo returns information about the given opcode. Unknown opcodes have an
// empty Name.
func GetInfo(op Code) Info {
	return infos[op]
}

// Lookup returns the opcode with the given name, e.g. "OP_RETURN". The
// "OP_" prefix is optional and matching is case-sensitive.
func Lookup(name string) (Code, bool) {
	for _, info := range infos {
		if info.Name == "" {
			continue
		}
		if info.Name == name || info.Name == "OP_"+name {
			return info.Code, true
		}
	}
	return 0, false
}

// IsValid reports whether op is a defined opcode.
func (op Code) IsValid() bool {
	return infos[op].Name != ""
}

func (op Code) String() string {
	if info := infos[op]; info.Name != "" {
		return info.Name
	}
	return fmt.Sprintf("Code(%d)", uint8(op))
}

// EncodeLong encodes a constant index as a ConstantLong operand.
func EncodeLong(index int) [3]byte {
	return [3]byte{byte(index), byte(index >> 8), byte(index >> 16)}
}

// DecodeLong decodes a ConstantLong operand into a constant index.
func DecodeLong(b0, b1, b2 byte) int {
	return int(b0) | int(b1)<<8 | int(b2)<<16
}
