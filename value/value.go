// Package value defines the constant pool used by chunks. Values themselves
// are opaque here; the virtual machine gives them meaning.
package value

import (
	"fmt"
	"strconv"

	"github.com/axelmagn/lox/memory"
)

// Value is a literal stored in a constant pool.
type Value = any

// Array is an append-only, growable sequence of values. The zero value is an
// empty array ready for use.
type Array struct {
	values []Value
}

// NewArray returns an initialized, empty array.
func NewArray() *Array {
	a := &Array{}
	a.Init()
	return a
}

// Init resets the array to the empty state without retaining storage.
func (a *Array) Init() {
	a.values = nil
}

// Free releases the array's storage and returns it to the empty state.
func (a *Array) Free() {
	clear(a.values)
	a.Init()
}

// Write appends v, growing the backing storage when it is full.
func (a *Array) Write(v Value) {
	if len(a.values) == cap(a.values) {
		a.values = memory.GrowArray(a.values, memory.GrowCapacity(cap(a.values)))
	}
	a.values = append(a.values, v)
}

// Count returns the number of values in the array.
func (a *Array) Count() int {
	return len(a.values)
}

// Capacity returns the allocated size of the array.
func (a *Array) Capacity() int {
	return cap(a.values)
}

// At returns the value at index i. It panics if i is out of range.
func (a *Array) At(i int) Value {
	return a.values[i]
}

// Values returns the stored values. The slice aliases the array and must not
// be modified.
func (a *Array) Values() []Value {
	return a.values
}

// Format renders v the way the disassembler and diagnostics print constants.
func Format(v Value) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
