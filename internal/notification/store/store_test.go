package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentgate/internal/notification/models"
	"talentgate/pkg/platform/sentinel"
)

func TestInMemoryStore_SaveGetList(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Save(ctx, models.Rule{ID: "r-2", Active: true, Recipients: []string{"a"}}))
	require.NoError(t, s.Save(ctx, models.Rule{ID: "r-1", Active: true}))

	rule, err := s.Get(ctx, "r-2")
	require.NoError(t, err)
	rule.Recipients[0] = "mutated"

	again, err := s.Get(ctx, "r-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, again.Recipients)

	rules, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "r-1", rules[0].ID)
}

func TestInMemoryStore_SetActive(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Save(ctx, models.Rule{ID: "r-1", Active: true}))

	rule, err := s.SetActive(ctx, "r-1", false)
	require.NoError(t, err)
	assert.False(t, rule.Active)

	_, err = s.SetActive(ctx, "missing", true)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
