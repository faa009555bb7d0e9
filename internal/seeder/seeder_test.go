package seeder

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentgate/internal/athlete"
	"talentgate/internal/audit"
	consentService "talentgate/internal/consent/service"
	consentStore "talentgate/internal/consent/store"
	notificationService "talentgate/internal/notification/service"
	notificationStore "talentgate/internal/notification/store"
	"talentgate/pkg/requestcontext"
)

func TestSeedAll(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	ctx := requestcontext.WithTime(context.Background(), time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC))

	directory := athlete.NewInMemoryDirectory()
	consents := consentStore.New()
	auditor := audit.NewPublisher(audit.NewInMemoryStore(100))
	consentSvc := consentService.NewService(consents, auditor, logger)
	validator := consentService.NewValidator(consents, auditor, logger)
	rules := notificationService.NewService(notificationStore.New(), validator, auditor, logger)

	require.NoError(t, New(directory, consentSvc, rules, logger).SeedAll(ctx))

	profile, err := directory.GetAthleteByID(ctx, "ath-001")
	require.NoError(t, err)
	assert.Equal(t, "Maharashtra", profile.Region())

	history, err := directory.GetAthleteAssessments(ctx, "ath-001")
	require.NoError(t, err)
	assert.Len(t, history, 2)

	result := validator.Validate(ctx, "seed-test", []string{"ath-001", "ath-003", "ath-004"}, "talent_identification")
	assert.Equal(t, []string{"ath-001"}, result.Allowed)
	assert.ElementsMatch(t, []string{"ath-003", "ath-004"}, result.Denied)

	rule, err := rules.Get(ctx, DemoRuleID)
	require.NoError(t, err)
	assert.True(t, rule.Active)
	assert.Equal(t, 85, rule.Conditions.MinScore)

	t.Run("reseeding is idempotent", func(t *testing.T) {
		require.NoError(t, New(directory, consentSvc, rules, logger).SeedAll(ctx))
		history, err := directory.GetAthleteAssessments(ctx, "ath-001")
		require.NoError(t, err)
		assert.Len(t, history, 2)

		all, err := rules.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}
