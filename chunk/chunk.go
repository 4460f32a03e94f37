// Package chunk implements the compiled form of lox code: an instruction
// stream, a parallel line table and a constant pool.
//
// A Chunk is built by a single writer (the compiler) and then handed to one or
// more readers (virtual machines). Once writing stops it must not be mutated,
// and may then be read concurrently without synchronization.
package chunk

import (
	"errors"

	"github.com/axelmagn/lox/memory"
	"github.com/axelmagn/lox/op"
	"github.com/axelmagn/lox/value"
)

// ErrTooManyConstants is returned when a constant index cannot be encoded in
// any constant instruction.
var ErrTooManyConstants = errors.New("too many constants in one chunk")

// maxConstants bounds the indices WriteConstant will encode.
var maxConstants = op.ConstantLongMax

// growCapacity computes the next instruction buffer capacity.
var growCapacity = memory.GrowCapacity

// Chunk is a sequence of bytecode with its line table and constant pool.
// The zero value is an empty chunk ready for use.
type Chunk struct {
	// len(code) == len(lines) is the chunk's count and cap(code) ==
	// cap(lines) its capacity.
	code      []byte
	lines     []int
	constants value.Array
}

// New returns an initialized, empty chunk.
func New() *Chunk {
	c := &Chunk{}
	c.Init()
	return c
}

// Init puts the chunk in the empty state: no instructions, no allocated
// storage and an empty constant pool.
func (c *Chunk) Init() {
	c.code = nil
	c.lines = nil
	c.constants.Init()
}

// Free releases all storage owned by the chunk and returns it to the state
// produced by Init. The chunk may be written to again afterwards.
func (c *Chunk) Free() {
	c.constants.Free()
	c.Init()
}

// Write appends a byte and the source line that produced it.
func (c *Chunk) Write(b byte, line int) {
	if len(c.code)+1 > cap(c.code) {
		newCapacity := growCapacity(cap(c.code))
		code := memory.GrowArray(c.code, newCapacity)
		lines := memory.GrowArray(c.lines, newCapacity)
		c.code, c.lines = code, lines
	}
	c.code = append(c.code, b)
	c.lines = append(c.lines, line)
}

// WriteOp appends an opcode tag.
func (c *Chunk) WriteOp(code op.Code, line int) {
	c.Write(byte(code), line)
}

// AddConstant appends v to the constant pool and returns its index. Equal
// values are not merged.
func (c *Chunk) AddConstant(v value.Value) int {
	c.constants.Write(v)
	return c.constants.Count() - 1
}

// WriteConstant adds v to the constant pool and emits the instruction that
// loads it: Constant for the first 256 indices and ConstantLong after that.
// If the index does not fit ConstantLong, ErrTooManyConstants is returned
// and no instruction is written.
func (c *Chunk) WriteConstant(v value.Value, line int) (int, error) {
	index := c.AddConstant(v)
	switch {
	case index <= 0xff:
		c.WriteOp(op.Constant, line)
		c.Write(byte(index), line)
	case index < maxConstants:
		c.WriteOp(op.ConstantLong, line)
		for _, b := range op.EncodeLong(index) {
			c.Write(b, line)
		}
	default:
		return index, ErrTooManyConstants
	}
	return index, nil
}

// Count returns the number of bytes in the instruction stream.
func (c *Chunk) Count() int {
	return len(c.code)
}

// Capacity returns the allocated size of the instruction stream and line
// table.
func (c *Chunk) Capacity() int {
	return cap(c.code)
}

// Code returns the instruction stream. The slice aliases the chunk and must
// not be modified.
func (c *Chunk) Code() []byte {
	return c.code
}

// Lines returns the line table, one entry per instruction byte. The slice
// aliases the chunk and must not be modified.
func (c *Chunk) Lines() []int {
	return c.lines
}

// ByteAt returns the instruction byte at the given offset. It panics if the
// offset is out of range.
func (c *Chunk) ByteAt(offset int) byte {
	return c.code[offset]
}

// LineAt returns the source line for the byte at the given offset, or 0 when
// the offset is out of range.
func (c *Chunk) LineAt(offset int) int {
	if offset < 0 || offset >= len(c.lines) {
		return 0
	}
	return c.lines[offset]
}

// Constants returns the chunk's constant pool.
func (c *Chunk) Constants() *value.Array {
	return &c.constants
}

// ConstantCount returns the number of constants in the pool.
func (c *Chunk) ConstantCount() int {
	return c.constants.Count()
}

// ConstantAt returns the constant at the given index. It panics if the index
// is out of range.
func (c *Chunk) ConstantAt(index int) value.Value {
	return c.constants.At(index)
}
