package privacy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentgate/internal/athlete"
	"talentgate/internal/audit"
	dErrors "talentgate/pkg/domain-errors"
)

func fixture() (athlete.Profile, []athlete.Assessment) {
	t0 := time.Date(2026, 2, 14, 9, 0, 0, 0, time.UTC)
	profile := athlete.Profile{
		ID:       "ath-42",
		Name:     "Priya",
		Age:      16,
		Location: "Rohtak, Rohtak District, Haryana",
		Sports:   []string{"Wrestling", "kabaddi", "wrestling"},
	}
	assessments := []athlete.Assessment{
		{ID: "a1", SubjectID: "ath-42", TestType: athlete.TestStrength, Score: 82, Timestamp: t0},
		{ID: "a2", SubjectID: "ath-42", TestType: athlete.TestSpeed, Score: 74, Timestamp: t0.AddDate(0, 1, 2)},
	}
	return profile, assessments
}

func newAnonymizer(opts ...Option) (*Anonymizer, *audit.InMemoryStore) {
	store := audit.NewInMemoryStore(audit.DefaultRetention)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(audit.NewPublisher(store), logger, opts...), store
}

func TestAnonymize_AllFlags(t *testing.T) {
	a, store := newAnonymizer(WithHashKey([]byte("salt")))
	profile, assessments := fixture()

	rec, err := a.Anonymize(context.Background(), profile, assessments, AllFlags())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(rec.ID, "anon_"))
	assert.NotContains(t, rec.ID, "ath-42")
	assert.Equal(t, "15-17", rec.AgeGroup)
	assert.Nil(t, rec.Age)
	assert.Equal(t, "Haryana", rec.Region)
	assert.Equal(t, []string{"wrestling", "kabaddi"}, rec.SportCategories)
	assert.Equal(t, "2026-03", rec.LastAssessment)

	// avg score 78; percentiles round(82*0.95)=78, round(74*1.10)=81, avg 80
	assert.Equal(t, 2, rec.Summary.TotalAssessments)
	assert.Equal(t, "70-79", rec.Summary.ScoreRange)
	assert.Equal(t, "80-89", rec.Summary.PercentileRange)
	assert.Equal(t, "advanced", rec.Summary.PerformanceLevel)
	assert.Nil(t, rec.Summary.AverageScore)

	entries, err := store.List(context.Background(), audit.Filter{Action: audit.ActionAnonymize})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Success)
	assert.Equal(t, []string{"ath-42"}, entries[0].SubjectIDs)
}

func TestAnonymize_FlagsAreIndependent(t *testing.T) {
	a, _ := newAnonymizer()
	profile, assessments := fixture()

	rec, err := a.Anonymize(context.Background(), profile, assessments, Flags{BucketAge: true})
	require.NoError(t, err)

	assert.Equal(t, "ath-42", rec.ID)
	assert.Equal(t, "Rohtak, Rohtak District, Haryana", rec.Region)
	assert.Equal(t, "15-17", rec.AgeGroup)
	require.NotNil(t, rec.Summary.AverageScore)
	assert.Equal(t, 78, *rec.Summary.AverageScore)
	assert.Empty(t, rec.Summary.ScoreRange)
}

func TestAnonymize_Deterministic(t *testing.T) {
	profile, assessments := fixture()
	first, _ := newAnonymizer(WithHashKey([]byte("k1")))
	second, _ := newAnonymizer(WithHashKey([]byte("k2")))

	r1, err := first.Anonymize(context.Background(), profile, assessments, AllFlags())
	require.NoError(t, err)
	r2, err := first.Anonymize(context.Background(), profile, assessments, AllFlags())
	require.NoError(t, err)
	assert.Equal(t, r1, r2)

	r3, err := second.Anonymize(context.Background(), profile, assessments, AllFlags())
	require.NoError(t, err)
	assert.NotEqual(t, r1.ID, r3.ID, "hash depends on the key")
	r1.ID, r3.ID = "", ""
	assert.Equal(t, r1, r3, "bucketing does not depend on the key")
}

func TestAnonymize_MissingIDIsAuditedFailure(t *testing.T) {
	a, store := newAnonymizer()

	_, err := a.Anonymize(context.Background(), athlete.Profile{}, nil, AllFlags())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))

	entries, err := store.List(context.Background(), audit.Filter{Action: audit.ActionAnonymize})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Success)
}

func TestAnonymize_NoAssessments(t *testing.T) {
	a, _ := newAnonymizer()

	rec, err := a.Anonymize(context.Background(), athlete.Profile{ID: "x", Age: 30}, nil, AllFlags())
	require.NoError(t, err)
	assert.Equal(t, "26+", rec.AgeGroup)
	assert.Equal(t, 0, rec.Summary.TotalAssessments)
	assert.Empty(t, rec.LastAssessment)
	assert.Equal(t, []string{}, rec.SportCategories)
}

func TestAnonymizeBatch_FailSoft(t *testing.T) {
	a, store := newAnonymizer(WithBatching(10, 3))
	subjects := make([]Subject, 23)
	for i := range subjects {
		subjects[i] = Subject{Profile: athlete.Profile{ID: fmt.Sprintf("ath-%02d", i), Age: 12 + i%15}}
	}
	subjects[7].Profile.ID = ""

	result := a.AnonymizeBatch(context.Background(), subjects, AllFlags())

	assert.Len(t, result.Records, 22)
	assert.Len(t, result.Failed, 1)
	assert.Contains(t, result.Failed, "")
	assert.Equal(t, 23, store.Len(), "every attempt is audited")
	assert.Equal(t, a.HashID("ath-00"), result.Records[0].ID, "input order preserved")
}

func TestBuckets(t *testing.T) {
	ageCases := map[int]string{9: "0-14", 14: "0-14", 15: "15-17", 17: "15-17", 18: "18-21", 21: "18-21", 22: "22-25", 25: "22-25", 26: "26+"}
	for age, want := range ageCases {
		assert.Equal(t, want, AgeGroup(age), "age %d", age)
	}

	decadeCases := map[int]string{0: "0-9", 9: "0-9", 45: "40-49", 89: "80-89", 90: "90-100", 105: "90-100", -3: "0-9"}
	for v, want := range decadeCases {
		assert.Equal(t, want, DecadeRange(v), "value %d", v)
	}

	assert.Equal(t, "elite", PerformanceLevel(85))
	assert.Equal(t, "advanced", PerformanceLevel(70))
	assert.Equal(t, "intermediate", PerformanceLevel(50))
	assert.Equal(t, "developing", PerformanceLevel(49))
}
