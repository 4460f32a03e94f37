package chunk

import "github.com/axelmagn/lox/op"

// Instruction is a decoded instruction read from a chunk.
type Instruction struct {
	Offset   int
	Op       op.Code
	Operands []byte
	Line     int
}

// Size returns the number of bytes the instruction occupies.
func (i Instruction) Size() int {
	return 1 + len(i.Operands)
}

// Truncated reports whether the chunk ended before all operands were read.
func (i Instruction) Truncated() bool {
	return len(i.Operands) < op.GetInfo(i.Op).OperandCount
}

// InstructionIter reads instructions from a chunk sequentially. Each reader
// uses its own iterator; a finished chunk may be shared between them.
type InstructionIter struct {
	chunk *Chunk
	pos   int
}

// NewInstructionIter creates a new instruction iterator for the given chunk.
func NewInstructionIter(c *Chunk) *InstructionIter {
	return &InstructionIter{chunk: c}
}

// Next returns the next instruction and its operands. It returns false when
// there are no more instructions. Unknown opcodes are returned without
// operands.
func (i *InstructionIter) Next() (Instruction, bool) {
	if i.pos >= i.chunk.Count() {
		return Instruction{}, false
	}
	instr := Instruction{
		Offset: i.pos,
		Op:     op.Code(i.chunk.ByteAt(i.pos)),
		Line:   i.chunk.LineAt(i.pos),
	}
	i.pos++

	n := op.GetInfo(instr.Op).OperandCount
	if remaining := i.chunk.Count() - i.pos; n > remaining {
		n = remaining
	}
	if n > 0 {
		instr.Operands = i.chunk.Code()[i.pos : i.pos+n : i.pos+n]
		i.pos += n
	}
	return instr, true
}

// All returns the remaining instructions as a newly allocated slice.
func (i *InstructionIter) All() []Instruction {
	var results []Instruction
	for {
		instr, ok := i.Next()
		if !ok {
			break
		}
		results = append(results, instr)
	}
	return results
}
