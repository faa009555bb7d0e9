//go:build integration

package store_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"talentgate/internal/consent/models"
	"talentgate/internal/consent/store"
	"talentgate/pkg/platform/sentinel"
	"talentgate/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB, slog.New(slog.DiscardHandler))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "consents"))
}

func (s *PostgresStoreSuite) TestUpsertReplacesRecord() {
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	s.Require().NoError(s.store.Upsert(ctx, &models.Record{
		SubjectID:        "ath-1",
		Scopes:           models.Scopes{DataSharing: true},
		RetentionYears:   1,
		ConsentTimestamp: at,
	}))
	s.Require().NoError(s.store.Upsert(ctx, &models.Record{
		SubjectID:        "ath-1",
		Scopes:           models.Scopes{TalentIdentification: true},
		RetentionYears:   3,
		ConsentTimestamp: at.Add(time.Hour),
		Context:          models.IssuingContext{Browser: "Firefox"},
	}))

	got, err := s.store.Get(ctx, "ath-1")
	s.Require().NoError(err)
	s.Equal(models.Scopes{TalentIdentification: true}, got.Scopes)
	s.Equal(3, got.RetentionYears)
	s.True(at.Add(time.Hour).Equal(got.ConsentTimestamp))
	s.Equal("Firefox", got.Context.Browser)

	all, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *PostgresStoreSuite) TestGetMissing() {
	_, err := s.store.Get(context.Background(), "nobody")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDelete() {
	ctx := context.Background()
	s.Require().NoError(s.store.Upsert(ctx, &models.Record{SubjectID: "ath-1", ConsentTimestamp: time.Now()}))

	deleted, err := s.store.Delete(ctx, "ath-1")
	s.Require().NoError(err)
	s.True(deleted)

	deleted, err = s.store.Delete(ctx, "ath-1")
	s.Require().NoError(err)
	s.False(deleted)
}

func (s *PostgresStoreSuite) TestListSkipsCorruptRows() {
	ctx := context.Background()
	s.Require().NoError(s.store.Upsert(ctx, &models.Record{SubjectID: "ath-ok", ConsentTimestamp: time.Now()}))
	_, err := s.postgres.DB.ExecContext(ctx, `
		INSERT INTO consents (subject_id, scopes, retention_years, consent_timestamp)
		VALUES ('ath-bad', '"not-an-object"'::jsonb, 1, NOW())
	`)
	s.Require().NoError(err)

	all, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 1)
	s.Equal("ath-ok", all[0].SubjectID)
}
