//go:build integration

package store_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"talentgate/internal/alert/models"
	"talentgate/internal/alert/store"
	"talentgate/pkg/platform/sentinel"
	"talentgate/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *store.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = store.NewRedis(s.redis.Client, slog.New(slog.DiscardHandler))
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.Flush(context.Background()))
}

func alertAt(id string, at time.Time) models.Alert {
	return models.Alert{
		ID:         id,
		Timestamp:  at,
		Type:       models.TypeEliteThreshold,
		Priority:   models.PriorityHigh,
		SubjectID:  "ath-1",
		Title:      "Elite performance",
		Recipients: []string{"scout-1"},
	}
}

func (s *RedisStoreSuite) TestSaveGetAndListNewestFirst() {
	ctx := context.Background()
	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	s.Require().NoError(s.store.Save(ctx, alertAt("a-1", base)))
	s.Require().NoError(s.store.Save(ctx, alertAt("a-2", base.Add(time.Hour))))

	got, err := s.store.Get(ctx, "a-1")
	s.Require().NoError(err)
	s.Equal(models.TypeEliteThreshold, got.Type)
	s.True(base.Equal(got.Timestamp))

	all, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal("a-2", all[0].ID)
}

func (s *RedisStoreSuite) TestGetMissing() {
	_, err := s.store.Get(context.Background(), "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestListSkipsCorruptBlobs() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, alertAt("a-1", time.Now())))
	s.Require().NoError(s.store.Save(ctx, alertAt("a-2", time.Now())))
	s.Require().NoError(s.redis.Client.Set(ctx, "alerts:alert:a-2", "{broken", 0).Err())

	all, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 1)
	s.Equal("a-1", all[0].ID)
}

// Concurrent readers marking the same alert must all be recorded.
func (s *RedisStoreSuite) TestUpdateUnderContention() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, alertAt("a-1", time.Now())))

	readers := []string{"u-1", "u-2", "u-3", "u-4"}
	var wg sync.WaitGroup
	for _, reader := range readers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Update(ctx, "a-1", func(a *models.Alert) error {
				a.ReadBy = append(a.ReadBy, reader)
				return nil
			})
			s.NoError(err)
		}()
	}
	wg.Wait()

	got, err := s.store.Get(ctx, "a-1")
	s.Require().NoError(err)
	s.ElementsMatch(readers, got.ReadBy)
}

func (s *RedisStoreSuite) TestUpdateMissing() {
	_, err := s.store.Update(context.Background(), "missing", func(*models.Alert) error { return nil })
	s.ErrorIs(err, sentinel.ErrNotFound)
}
