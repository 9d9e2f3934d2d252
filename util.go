package main

import (
	"sync"
)

// Box holds a value shared between the audio callback and the render
// thread.
type Box[T any] struct {
	mu sync.Mutex
	v  T
}

func (box *Box[T]) Get() T {
	box.mu.Lock()
	defer box.mu.Unlock()
	return box.v
}

// Update replaces the value with f(value) atomically.
func (box *Box[T]) Update(f func(T) T) {
	box.mu.Lock()
	defer box.mu.Unlock()
	box.v = f(box.v)
}
