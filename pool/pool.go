// Package pool recycles objects that are expensive to create every time a note spawns.
package pool

import "sync"

// Pool hands out recycled values of T. It is pre-warmed with a fixed number of values and
// grows on demand when it runs dry.
type Pool[T any] struct {
	mu      sync.Mutex
	free    []T
	factory func() T
	created int
}

// New creates a pool holding initial values built by factory.
func New[T any](initial int, factory func() T) *Pool[T] {
	p := &Pool[T]{
		free:    make([]T, 0, initial),
		factory: factory,
	}
	for i := 0; i < initial; i++ {
		p.free = append(p.free, factory())
		p.created++
	}
	return p
}

// Acquire returns a recycled value, or a fresh one when none is available.
func (p *Pool[T]) Acquire() T {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := len(p.free); n > 0 {
		v := p.free[n-1]
		var zero T
		p.free[n-1] = zero
		p.free = p.free[:n-1]
		return v
	}
	p.created++
	return p.factory()
}

// Release returns v to the pool.
func (p *Pool[T]) Release(v T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.free = append(p.free, v)
}

// Available is the number of values ready to be acquired without allocating.
func (p *Pool[T]) Available() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// Created is the number of values the factory has built over the pool's lifetime.
func (p *Pool[T]) Created() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.created
}
