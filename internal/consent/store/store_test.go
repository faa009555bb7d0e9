package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentgate/internal/consent/models"
	"talentgate/pkg/platform/sentinel"
)

func TestInMemoryStore_RoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	record := &models.Record{
		SubjectID:        "ath-1",
		Scopes:           models.Scopes{DataSharing: true, ContactPermission: true},
		RetentionYears:   3,
		ConsentTimestamp: at,
	}

	require.NoError(t, s.Upsert(ctx, record))
	got, err := s.Get(ctx, "ath-1")
	require.NoError(t, err)
	assert.Equal(t, record.Scopes, got.Scopes)
	assert.Equal(t, 3, got.RetentionYears)
	assert.True(t, at.Equal(got.ConsentTimestamp))
}

func TestInMemoryStore_UpsertReplaces(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, &models.Record{SubjectID: "ath-1", Scopes: models.Scopes{DataSharing: true}}))
	require.NoError(t, s.Upsert(ctx, &models.Record{SubjectID: "ath-1", Scopes: models.Scopes{ContactPermission: true}}))

	got, err := s.Get(ctx, "ath-1")
	require.NoError(t, err)
	assert.False(t, got.Scopes.DataSharing)
	assert.True(t, got.Scopes.ContactPermission)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestInMemoryStore_GetMissing(t *testing.T) {
	_, err := New().Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryStore_Delete(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx, &models.Record{SubjectID: "ath-1"}))

	existed, err := s.Delete(ctx, "ath-1")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = s.Delete(ctx, "ath-1")
	require.NoError(t, err)
	assert.False(t, existed)
}
