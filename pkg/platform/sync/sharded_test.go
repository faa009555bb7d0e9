package sync

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex_LockUnlock(t *testing.T) {
	m := NewKeyedMutex()

	m.Lock("subject-1")
	m.Unlock("subject-1")

	// empty key falls back to shard 0
	m.Lock("")
	m.Unlock("")
}

func TestKeyedMutex_SameKeySerializes(t *testing.T) {
	m := NewKeyedMutex()
	counter := 0
	var wg sync.WaitGroup

	for range 200 {
		wg.Go(func() {
			_ = m.Do("alert-42", func() error {
				counter++
				return nil
			})
		})
	}
	wg.Wait()

	assert.Equal(t, 200, counter)
}

func TestKeyedMutex_DoReturnsCallbackError(t *testing.T) {
	m := NewKeyedMutex()
	want := errors.New("write failed")
	assert.ErrorIs(t, m.Do("k", func() error { return want }), want)

	// lock must be released after an error
	m.Lock("k")
	m.Unlock("k")
}

func TestKeyedMutex_ShardDistribution(t *testing.T) {
	m := NewKeyedMutex()
	shards := make(map[int]bool)
	for _, key := range []string{"athlete-1", "athlete-2", "alert-a", "alert-b", "rule-x", "rule-y"} {
		shards[m.shardFor(key)] = true
	}
	assert.GreaterOrEqual(t, len(shards), 3, "expected keys to spread across shards")
	assert.Equal(t, 0, m.shardFor(""))
}
