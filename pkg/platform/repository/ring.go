package repository

import "sync"

// Ring is an append-only sequence capped at a fixed capacity. Appending past
// capacity drops the oldest entry; that is retention, not an error.
type Ring[V any] struct {
	mu    sync.RWMutex
	buf   []V
	start int
	size  int
}

// NewRing creates a ring holding at most capacity entries. capacity must be positive.
func NewRing[V any](capacity int) *Ring[V] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ring[V]{buf: make([]V, capacity)}
}

// AppendCapped appends v and reports whether an old entry was dropped to make room.
func (r *Ring[V]) AppendCapped(v V) (dropped bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.size < len(r.buf) {
		r.buf[(r.start+r.size)%len(r.buf)] = v
		r.size++
		return false
	}
	r.buf[r.start] = v
	r.start = (r.start + 1) % len(r.buf)
	return true
}

// Items returns the entries oldest first.
func (r *Ring[V]) Items() []V {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]V, r.size)
	for i := range r.size {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}

// Len returns the number of retained entries.
func (r *Ring[V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size
}

// Cap returns the retention capacity.
func (r *Ring[V]) Cap() int {
	return len(r.buf)
}
