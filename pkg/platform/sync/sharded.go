package sync

import (
	"hash/fnv"
	"sync"
)

const shardCount = 32

// KeyedMutex serialises work per resource key (subject id, alert id) without a
// single global lock. Keys are spread across a fixed set of shards, so two keys
// may share a shard; callers must never hold one key while acquiring another.
type KeyedMutex struct {
	shards [shardCount]sync.Mutex
}

// NewKeyedMutex creates a KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{}
}

// Lock acquires the shard for key. Empty keys use shard 0.
func (m *KeyedMutex) Lock(key string) {
	m.shards[m.shardFor(key)].Lock()
}

// Unlock releases the shard for key.
func (m *KeyedMutex) Unlock(key string) {
	m.shards[m.shardFor(key)].Unlock()
}

// Do runs fn while holding the lock for key.
func (m *KeyedMutex) Do(key string, fn func() error) error {
	m.Lock(key)
	defer m.Unlock(key)
	return fn()
}

func (m *KeyedMutex) shardFor(key string) int {
	if key == "" {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % shardCount)
}
