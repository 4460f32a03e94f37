package chunk

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/axelmagn/lox/op"
)

func TestInstructionIter(t *testing.T) {
	c := New()
	c.AddConstant(1.5)
	c.WriteOp(op.Constant, 123)
	c.Write(0, 123)
	c.WriteOp(op.Negate, 123)
	c.WriteOp(op.Return, 124)

	iter := NewInstructionIter(c)
	instr, ok := iter.Next()
	require.True(t, ok)
	require.Equal(t, Instruction{Offset: 0, Op: op.Constant, Operands: []byte{0}, Line: 123}, instr)
	require.Equal(t, 2, instr.Size())

	instr, ok = iter.Next()
	require.True(t, ok)
	require.Equal(t, 2, instr.Offset)
	require.Equal(t, op.Negate, instr.Op)
	require.Empty(t, instr.Operands)

	instr, ok = iter.Next()
	require.True(t, ok)
	require.Equal(t, 3, instr.Offset)
	require.Equal(t, op.Return, instr.Op)
	require.Equal(t, 124, instr.Line)

	_, ok = iter.Next()
	require.False(t, ok)
}

func TestInstructionIterTruncated(t *testing.T) {
	c := New()
	c.WriteOp(op.ConstantLong, 1)
	c.Write(5, 1)

	all := NewInstructionIter(c).All()
	require.Len(t, all, 1)
	require.Equal(t, []byte{5}, all[0].Operands)
	require.True(t, all[0].Truncated())
}

func TestInstructionIterUnknownOpcode(t *testing.T) {
	c := New()
	c.Write(250, 1)
	c.WriteOp(op.Return, 1)

	all := NewInstructionIter(c).All()
	require.Len(t, all, 2)
	require.Equal(t, op.Code(250), all[0].Op)
	require.Equal(t, 1, all[0].Size())
	require.False(t, all[0].Truncated())
	require.Equal(t, op.Return, all[1].Op)
}

func TestInstructionIterEmpty(t *testing.T) {
	require.Empty(t, NewInstructionIter(New()).All())
}
