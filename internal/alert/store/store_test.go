package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentgate/internal/alert/models"
	"talentgate/pkg/platform/sentinel"
)

func TestInMemoryStore_UpdateIsAtomicPerAlert(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, models.Alert{ID: "a1"}))

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Go(func() {
			_, err := s.Update(ctx, "a1", func(a *models.Alert) error {
				a.MarkReadBy(string(rune('A' + i%26)))
				return nil
			})
			assert.NoError(t, err)
		})
	}
	wg.Wait()

	got, err := s.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Len(t, got.ReadBy, 26)
}

func TestInMemoryStore_UpdateErrors(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.Update(ctx, "missing", func(*models.Alert) error { return nil })
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	require.NoError(t, s.Save(ctx, models.Alert{ID: "a1"}))
	boom := errors.New("boom")
	_, err = s.Update(ctx, "a1", func(a *models.Alert) error {
		a.Archived = true
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, _ := s.Get(ctx, "a1")
	assert.False(t, got.Archived, "failed mutation is discarded")
}
