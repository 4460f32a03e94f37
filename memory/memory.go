// Package memory implements the growth policy shared by the chunk and value
// buffers, along with the unrecoverable allocation-failure path.
package memory

import (
	"fmt"
	"math"
	"os"

	"github.com/rs/zerolog"
)

// MinCapacity is the capacity an empty buffer grows to on its first write.
const MinCapacity = 8

// MaxCapacity is the largest capacity a buffer may grow to. Line numbers are
// stored as int, so the limit follows the narrowest platform int.
const MaxCapacity = math.MaxInt32

// OnFatal is called when a buffer cannot grow. The default logs the failure
// and exits the process.
var OnFatal = func(err error) {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	logger.Fatal().Err(err).Msg("memory allocation failed")
}

// Fatal reports an allocation failure through OnFatal. If the hook returns,
// Fatal panics so no caller ever observes a half-grown buffer.
func Fatal(err error) {
	OnFatal(err)
	panic(err)
}

// GrowCapacity returns the capacity a buffer should grow to from the given
// capacity.
func GrowCapacity(capacity int) int {
	if capacity < MinCapacity {
		return MinCapacity
	}
	if capacity > MaxCapacity/2 {
		Fatal(fmt.Errorf("capacity overflow: cannot grow beyond %d", capacity))
	}
	return capacity * 2
}

// GrowArray returns a slice with the same length and contents as s and a
// capacity of exactly newCapacity. Shrinking is not supported.
func GrowArray[T any](s []T, newCapacity int) []T {
	if newCapacity < len(s) || newCapacity > MaxCapacity {
		Fatal(fmt.Errorf("invalid capacity %d for array of length %d", newCapacity, len(s)))
	}
	grown := make([]T, len(s), newCapacity)
	copy(grown, s)
	return grown
}
