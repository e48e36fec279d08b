package polyindex

import "sync"

// Locked shares a Container between goroutines. Any number of View calls
// run concurrently; Update runs alone.
//
// Views, iterators and Refs obtained inside a callback must not be used to
// read the container after the callback returns.
type Locked[T any] struct {
	mu sync.RWMutex
	c  *Container[T]
}

// NewLocked wraps c. c must not be used directly afterwards.
func NewLocked[T any](c *Container[T]) *Locked[T] {
	return &Locked[T]{c: c}
}

// View runs fn under the read lock. fn must not mutate the container.
func (l *Locked[T]) View(fn func(c *Container[T]) error) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return fn(l.c)
}

// Update runs fn under the write lock.
func (l *Locked[T]) Update(fn func(c *Container[T]) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return fn(l.c)
}

// Len returns the number of records.
func (l *Locked[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.c.Len()
}
