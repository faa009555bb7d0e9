package repository

import (
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentgate/pkg/platform/sentinel"
)

type item struct {
	Count  int
	Labels []string
}

func cloneItem(i item) item {
	i.Labels = append([]string(nil), i.Labels...)
	return i
}

func TestKeyed_GetUpsertDelete(t *testing.T) {
	k := NewKeyed(cloneItem)

	_, err := k.Get("missing")
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	k.Upsert("a", item{Count: 1, Labels: []string{"x"}})
	got, err := k.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Count)

	got.Labels[0] = "mutated"
	again, _ := k.Get("a")
	assert.Equal(t, "x", again.Labels[0], "stored value must not alias returned copies")

	assert.True(t, k.Delete("a"))
	assert.False(t, k.Delete("a"))
	assert.Equal(t, 0, k.Len())
}

func TestKeyed_UpdateIsAtomicPerKey(t *testing.T) {
	k := NewKeyed[item](nil)
	var wg sync.WaitGroup
	for range 100 {
		wg.Go(func() {
			_, _ = k.Update("counter", func(cur item, _ bool) (item, error) {
				cur.Count++
				return cur, nil
			})
		})
	}
	wg.Wait()

	got, err := k.Get("counter")
	require.NoError(t, err)
	assert.Equal(t, 100, got.Count)
}

func TestKeyed_UpdateErrorLeavesValue(t *testing.T) {
	k := NewKeyed[item](nil)
	k.Upsert("a", item{Count: 5})
	boom := errors.New("boom")
	_, err := k.Update("a", func(cur item, _ bool) (item, error) {
		return item{Count: 99}, boom
	})
	require.ErrorIs(t, err, boom)
	got, _ := k.Get("a")
	assert.Equal(t, 5, got.Count)
}

func TestRing_DropsOldestFirst(t *testing.T) {
	r := NewRing[string](3)
	for i := range 5 {
		dropped := r.AppendCapped(strconv.Itoa(i))
		assert.Equal(t, i >= 3, dropped)
	}
	assert.Equal(t, []string{"2", "3", "4"}, r.Items())
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, 3, r.Cap())
}

func TestRing_CapOfThousand(t *testing.T) {
	r := NewRing[int](1000)
	for i := range 1500 {
		r.AppendCapped(i)
	}
	items := r.Items()
	require.Len(t, items, 1000)
	assert.Equal(t, 500, items[0])
	assert.Equal(t, 1499, items[999])
}
