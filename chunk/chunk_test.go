package chunk

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axelmagn/lox/memory"
	"github.com/axelmagn/lox/op"
)

func requireEmpty(t *testing.T, c *Chunk) {
	t.Helper()
	require.Equal(t, 0, c.Count())
	require.Equal(t, 0, c.Capacity())
	require.Equal(t, 0, c.ConstantCount())
	require.Empty(t, c.Code())
	require.Empty(t, c.Lines())
}

func TestNew(t *testing.T) {
	requireEmpty(t, New())

	var zero Chunk
	requireEmpty(t, &zero)
}

func TestWritePreservesOrder(t *testing.T) {
	c := New()
	const n = 100
	for i := 0; i < n; i++ {
		c.Write(byte(i*7), 1000+i)
	}
	require.Equal(t, n, c.Count())
	require.GreaterOrEqual(t, c.Capacity(), c.Count())
	for i := 0; i < n; i++ {
		assert.Equal(t, byte(i*7), c.ByteAt(i), "byte %d", i)
		assert.Equal(t, 1000+i, c.LineAt(i), "line %d", i)
	}
	require.Len(t, c.Lines(), len(c.Code()))
}

func TestWriteGrowth(t *testing.T) {
	c := New()
	var capacities []int
	for i := 0; i < 33; i++ {
		c.Write(byte(i), i)
		require.Len(t, c.Lines(), c.Count())
		if n := len(capacities); n == 0 || capacities[n-1] != c.Capacity() {
			capacities = append(capacities, c.Capacity())
		}
	}
	require.Equal(t, []int{8, 16, 32, 64}, capacities)
}

func TestWritePastThreshold(t *testing.T) {
	c := New()
	for i := 0; i < 9; i++ {
		c.Write(byte(i+1), i+1)
	}
	require.Equal(t, 9, c.Count())
	require.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}, c.Code())
	require.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, c.Lines())
}

func TestAddConstant(t *testing.T) {
	c := New()
	values := []any{1.5, "two", 1.5, nil, true}
	for i, v := range values {
		require.Equal(t, i, c.AddConstant(v))
	}
	require.Equal(t, len(values), c.ConstantCount())
	for i, v := range values {
		require.Equal(t, v, c.ConstantAt(i))
	}
	// Constants never touch the instruction stream.
	require.Equal(t, 0, c.Count())
}

func TestFree(t *testing.T) {
	c := New()
	c.AddConstant(1.5)
	for i := 0; i < 20; i++ {
		c.Write(byte(i), i)
	}
	c.Free()
	requireEmpty(t, c)

	// A freed chunk behaves like a new one.
	require.Equal(t, 0, c.AddConstant(2.5))
	c.Write(byte(op.Return), 7)
	require.Equal(t, []byte{byte(op.Return)}, c.Code())
	require.Equal(t, []int{7}, c.Lines())
	require.Equal(t, 8, c.Capacity())
	require.Equal(t, 2.5, c.ConstantAt(0))
}

func TestFreeEmpty(t *testing.T) {
	c := New()
	c.Free()
	c.Free()
	requireEmpty(t, c)
}

func TestLineAtOutOfRange(t *testing.T) {
	c := New()
	c.Write(0, 3)
	require.Equal(t, 0, c.LineAt(-1))
	require.Equal(t, 0, c.LineAt(1))
	require.Equal(t, 3, c.LineAt(0))
}

func TestConstantReturnScenario(t *testing.T) {
	c := New()
	idx := c.AddConstant(1.5)
	require.Equal(t, 0, idx)

	c.WriteOp(op.Constant, 123)
	require.Equal(t, []byte{byte(op.Constant)}, c.Code())
	require.Equal(t, []int{123}, c.Lines())

	c.Write(byte(idx), 123)
	require.Equal(t, []byte{byte(op.Constant), 0}, c.Code())
	require.Equal(t, []int{123, 123}, c.Lines())

	c.WriteOp(op.Return, 124)
	require.Equal(t, []byte{byte(op.Constant), 0, byte(op.Return)}, c.Code())
	require.Equal(t, []int{123, 123, 124}, c.Lines())
	require.Equal(t, []any{1.5}, c.Constants().Values())
	require.Equal(t, 3, c.Count())
}

func TestWriteConstant(t *testing.T) {
	c := New()
	idx, err := c.WriteConstant(1.5, 1)
	require.NoError(t, err)
	require.Equal(t, 0, idx)
	require.Equal(t, []byte{byte(op.Constant), 0}, c.Code())
	require.Equal(t, []int{1, 1}, c.Lines())
}

func TestWriteConstantLong(t *testing.T) {
	c := New()
	for i := 0; i < 256; i++ {
		_, err := c.WriteConstant(float64(i), 1)
		require.NoError(t, err)
	}
	require.Equal(t, 512, c.Count())

	idx, err := c.WriteConstant("long", 2)
	require.NoError(t, err)
	require.Equal(t, 256, idx)
	require.Equal(t, []byte{byte(op.ConstantLong), 0x00, 0x01, 0x00}, c.Code()[512:])
	require.Equal(t, []int{2, 2, 2, 2}, c.Lines()[512:])
	require.Equal(t, "long", c.ConstantAt(256))
}

func TestWriteConstantTooMany(t *testing.T) {
	prev := maxConstants
	maxConstants = 300
	defer func() { maxConstants = prev }()

	c := New()
	for i := 0; i < 300; i++ {
		c.AddConstant(nil)
	}
	idx, err := c.WriteConstant(1.0, 1)
	require.ErrorIs(t, err, ErrTooManyConstants)
	require.Equal(t, 300, idx)
	require.Equal(t, 301, c.ConstantCount())
	require.Equal(t, 0, c.Count())
}

func TestConcurrentReaders(t *testing.T) {
	c := New()
	for i := 0; i < 50; i++ {
		_, err := c.WriteConstant(float64(i), i)
		require.NoError(t, err)
	}
	c.WriteOp(op.Return, 51)

	var wg sync.WaitGroup
	results := make([][]Instruction, 8)
	for r := range results {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			results[r] = NewInstructionIter(c).All()
		}(r)
	}
	wg.Wait()
	for r := 1; r < len(results); r++ {
		require.Equal(t, results[0], results[r])
	}
	require.Len(t, results[0], 51)
}

func TestWriteOverflowIsFatal(t *testing.T) {
	errStop := errors.New("stop")
	var fatalErr error
	prevFatal := memory.OnFatal
	memory.OnFatal = func(err error) {
		fatalErr = err
		panic(errStop)
	}
	defer func() { memory.OnFatal = prevFatal }()

	c := New()
	for i := 0; i < 8; i++ {
		c.Write(byte(i), i)
	}

	// Pretend the buffer is already at the largest capacity.
	prevGrow := growCapacity
	growCapacity = func(int) int { return memory.GrowCapacity(memory.MaxCapacity) }
	defer func() { growCapacity = prevGrow }()

	require.PanicsWithValue(t, errStop, func() { c.Write(8, 8) })
	require.ErrorContains(t, fatalErr, "capacity overflow")

	// Nothing was half-written.
	require.Equal(t, 8, c.Count())
	require.Equal(t, 8, c.Capacity())
	require.Equal(t, []byte{0, 1, 2, 3, 4, 5, 6, 7}, c.Code())
	require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, c.Lines())
}
