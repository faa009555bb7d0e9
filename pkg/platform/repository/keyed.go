// Package repository holds the in-memory building blocks every store in the
// pipeline is made of: a keyed collection with atomic per-key updates and a
// capped ring that enforces retention by dropping the oldest entries.
package repository

import (
	"sync"

	"talentgate/pkg/platform/sentinel"
	psync "talentgate/pkg/platform/sync"
)

// Keyed is a keyed collection. Values are cloned on the way in and out so
// callers never share memory with the store.
type Keyed[V any] struct {
	mu    sync.RWMutex
	locks *psync.KeyedMutex
	items map[string]V
	clone func(V) V
}

// NewKeyed builds an empty collection. clone may be nil for value types
// without reference fields.
func NewKeyed[V any](clone func(V) V) *Keyed[V] {
	if clone == nil {
		clone = func(v V) V { return v }
	}
	return &Keyed[V]{
		locks: psync.NewKeyedMutex(),
		items: make(map[string]V),
		clone: clone,
	}
}

// Get returns the value for key or sentinel.ErrNotFound.
func (k *Keyed[V]) Get(key string) (V, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	v, ok := k.items[key]
	if !ok {
		var zero V
		return zero, sentinel.ErrNotFound
	}
	return k.clone(v), nil
}

// Upsert stores value under key, replacing any previous value.
func (k *Keyed[V]) Upsert(key string, value V) {
	k.locks.Lock(key)
	defer k.locks.Unlock(key)
	k.put(key, value)
}

// Update performs an atomic read-modify-write on key. fn receives the current
// value and whether it existed; the returned value is stored unless fn errors.
func (k *Keyed[V]) Update(key string, fn func(current V, exists bool) (V, error)) (V, error) {
	k.locks.Lock(key)
	defer k.locks.Unlock(key)

	k.mu.RLock()
	current, ok := k.items[key]
	k.mu.RUnlock()
	if ok {
		current = k.clone(current)
	}

	next, err := fn(current, ok)
	if err != nil {
		var zero V
		return zero, err
	}
	k.put(key, next)
	return k.clone(next), nil
}

// Delete removes key and reports whether it was present.
func (k *Keyed[V]) Delete(key string) bool {
	k.locks.Lock(key)
	defer k.locks.Unlock(key)
	k.mu.Lock()
	defer k.mu.Unlock()
	_, ok := k.items[key]
	delete(k.items, key)
	return ok
}

// List returns a snapshot of all values in unspecified order.
func (k *Keyed[V]) List() []V {
	k.mu.RLock()
	defer k.mu.RUnlock()
	out := make([]V, 0, len(k.items))
	for _, v := range k.items {
		out = append(out, k.clone(v))
	}
	return out
}

// Len returns the number of stored values.
func (k *Keyed[V]) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.items)
}

func (k *Keyed[V]) put(key string, value V) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.items[key] = k.clone(value)
}
