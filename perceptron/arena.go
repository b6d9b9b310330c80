package perceptron

import (
	"errors"
	"fmt"
	"math"
	"runtime"
)

// ErrOutOfMemory is returned when the training buffers cannot be allocated.
var ErrOutOfMemory = errors.New("out of memory")

// arena owns the buffers of a single training call. Everything it hands out
// is dropped by release unless detached first.
type arena struct {
	limit int64 // 0 = unlimited
	used  int64
	bufs  []any
}

func newArena(limit int64) *arena {
	return &arena{limit: limit}
}

func (a *arena) reserve(what string, n int, size int64) error {
	if n < 0 || int64(n) > math.MaxInt64/size {
		return fmt.Errorf("perceptron: allocate %s (%d items): %w", what, n, ErrOutOfMemory)
	}
	bytes := int64(n) * size
	if a.limit > 0 && bytes > a.limit-a.used {
		return fmt.Errorf("perceptron: allocate %s (%d bytes, %d of %d in use): %w",
			what, bytes, a.used, a.limit, ErrOutOfMemory)
	}
	a.used += bytes
	return nil
}

// floats allocates a zeroed []float64 of length n.
func (a *arena) floats(what string, n int) (s []float64, err error) {
	if err := a.reserve(what, n, 8); err != nil {
		return nil, err
	}
	defer recoverAlloc(what, &err)
	s = make([]float64, n)
	a.bufs = append(a.bufs, s)
	return s, nil
}

// ints allocates a zeroed []int of length n.
func (a *arena) ints(what string, n int) (s []int, err error) {
	if err := a.reserve(what, n, 8); err != nil {
		return nil, err
	}
	defer recoverAlloc(what, &err)
	s = make([]int, n)
	a.bufs = append(a.bufs, s)
	return s, nil
}

// recoverAlloc turns a runtime allocation panic into ErrOutOfMemory.
func recoverAlloc(what string, err *error) {
	r := recover()
	if r == nil {
		return
	}
	if re, ok := r.(runtime.Error); ok {
		*err = fmt.Errorf("perceptron: allocate %s: %v: %w", what, re, ErrOutOfMemory)
		return
	}
	panic(r)
}

// release drops every buffer handed out by the arena.
func (a *arena) release() {
	clear(a.bufs)
	a.bufs = a.bufs[:0]
	a.used = 0
}
