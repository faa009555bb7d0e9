//go:build integration

package audit_test

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"talentgate/internal/audit"
	"talentgate/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "audit_entries"))
}

func (s *PostgresStoreSuite) entry(i int, action audit.Action, subject string) audit.Entry {
	return audit.Entry{
		ID:         fmt.Sprintf("entry-%d", i),
		Timestamp:  time.Date(2025, 1, 1, 0, 0, i, 0, time.UTC),
		Action:     action,
		ActorID:    "recruiter-1",
		SubjectIDs: []string{subject},
		DataTypes:  []string{audit.DataAssessment},
		Purpose:    "talent_identification",
		Success:    true,
	}
}

func (s *PostgresStoreSuite) TestRetentionKeepsNewestEntries() {
	ctx := context.Background()
	store := audit.NewPostgresStore(s.postgres.DB, 3, slog.New(slog.DiscardHandler))

	for i := 1; i <= 5; i++ {
		s.Require().NoError(store.Append(ctx, s.entry(i, audit.ActionAccess, "ath-1")))
	}

	entries, err := store.List(ctx, audit.Filter{})
	s.Require().NoError(err)
	s.Require().Len(entries, 3)
	s.Equal("entry-5", entries[0].ID)
	s.Equal("entry-3", entries[2].ID)
}

func (s *PostgresStoreSuite) TestListFilters() {
	ctx := context.Background()
	store := audit.NewPostgresStore(s.postgres.DB, 100, slog.New(slog.DiscardHandler))

	s.Require().NoError(store.Append(ctx, s.entry(1, audit.ActionAccess, "ath-1")))
	s.Require().NoError(store.Append(ctx, s.entry(2, audit.ActionExport, "ath-2")))
	s.Require().NoError(store.Append(ctx, s.entry(3, audit.ActionAccess, "ath-2")))

	byAction, err := store.List(ctx, audit.Filter{Action: audit.ActionAccess})
	s.Require().NoError(err)
	s.Len(byAction, 2)

	bySubject, err := store.List(ctx, audit.Filter{SubjectID: "ath-2", Limit: 1})
	s.Require().NoError(err)
	s.Require().Len(bySubject, 1)
	s.Equal("entry-3", bySubject[0].ID)
	s.Equal([]string{audit.DataAssessment}, bySubject[0].DataTypes)
}
