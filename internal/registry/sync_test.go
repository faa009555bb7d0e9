package registry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"talentgate/internal/athlete"
	"talentgate/internal/audit"
	consent "talentgate/internal/consent/models"
)

type stubValidator struct {
	denied  map[string]string
	purpose consent.Purpose
}

func (v *stubValidator) Validate(_ context.Context, _ string, ids []string, purpose consent.Purpose) *consent.ValidationResult {
	v.purpose = purpose
	res := &consent.ValidationResult{Reasons: map[string]string{}}
	for _, id := range ids {
		if reason, ok := v.denied[id]; ok {
			res.Denied = append(res.Denied, id)
			res.Reasons[id] = reason
			continue
		}
		res.Allowed = append(res.Allowed, id)
	}
	return res
}

type stubSubmitter struct {
	mu        sync.Mutex
	fail      map[string]error
	synthetic map[string]bool
	records   []Record
}

func (s *stubSubmitter) Submit(_ context.Context, r Record) (Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
	if err := s.fail[r.SubjectID]; err != nil {
		return Receipt{}, err
	}
	return Receipt{SubjectID: r.SubjectID, RegistryID: "REG-" + r.SubjectID, Synthetic: s.synthetic[r.SubjectID]}, nil
}

type SyncSuite struct {
	suite.Suite
	dir        *athlete.InMemoryDirectory
	validator  *stubValidator
	submitter  *stubSubmitter
	auditStore *audit.InMemoryStore
	syncer     *Syncer
}

func TestSyncSuite(t *testing.T) {
	suite.Run(t, new(SyncSuite))
}

func (s *SyncSuite) SetupTest() {
	s.dir = athlete.NewInMemoryDirectory()
	s.validator = &stubValidator{denied: map[string]string{}}
	s.submitter = &stubSubmitter{fail: map[string]error{}, synthetic: map[string]bool{}}
	s.auditStore = audit.NewInMemoryStore(audit.DefaultRetention)
	s.syncer = NewSyncer(s.submitter, s.validator, s.dir, s.dir, audit.NewPublisher(s.auditStore),
		slog.New(slog.NewTextHandler(io.Discard, nil)), WithBatchSize(2), WithConcurrency(2))
}

func (s *SyncSuite) addAthlete(id string) {
	s.dir.PutProfile(athlete.Profile{ID: id, Name: "Athlete " + id, Age: 15, Location: "Kochi, Ernakulam, Kerala", Sports: []string{"athletics"}})
	s.dir.AddAssessment(athlete.Assessment{ID: id + "-a", SubjectID: id, TestType: athlete.TestSpeed, Score: 70,
		Timestamp: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)})
}

func (s *SyncSuite) TestTriPartition() {
	for _, id := range []string{"a1", "a2", "a3", "a4"} {
		s.addAthlete(id)
	}
	s.validator.denied["a3"] = consent.ReasonNoConsentFor(consent.PurposeSAISync)
	s.submitter.fail["a2"] = errors.New("registry rejected record")
	s.submitter.synthetic["a4"] = true

	res, err := s.syncer.BatchSync(context.Background(), "admin-1", []string{"a1", "a2", "a3", "a4", "missing", "a1"})
	s.Require().NoError(err)

	var succeeded []string
	for _, r := range res.Succeeded {
		succeeded = append(succeeded, r.SubjectID)
	}
	s.Equal([]string{"a1", "a4"}, succeeded)
	s.Contains(res.Failed, "a2")
	s.Contains(res.Failed, "missing")
	s.Len(res.Failed, 2)
	s.Equal(map[string]string{"a3": consent.ReasonNoConsentFor(consent.PurposeSAISync)}, res.ConsentDenied)
	s.Equal(consent.PurposeSAISync, s.validator.purpose)

	entries, err := s.auditStore.List(context.Background(), audit.Filter{Action: audit.ActionSync})
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.False(entries[0].Success)
	s.Equal("admin-1", entries[0].ActorID)
	s.Contains(entries[0].Detail, "synthetic=1")
	s.False(slices.Contains(entries[0].SubjectIDs, "a3"))
}

func (s *SyncSuite) TestConsentDeniedNeverSubmitted() {
	s.addAthlete("a1")
	s.validator.denied["a1"] = "Consent expired"

	res, err := s.syncer.BatchSync(context.Background(), "admin-1", []string{"a1"})
	s.Require().NoError(err)

	s.Empty(res.Succeeded)
	s.Empty(res.Failed)
	s.Empty(s.submitter.records)
}

func (s *SyncSuite) TestEmptyRequest() {
	res, err := s.syncer.BatchSync(context.Background(), "admin-1", nil)
	s.Require().NoError(err)
	s.Empty(res.Succeeded)
	s.Zero(s.auditStore.Len())
}

func (s *SyncSuite) TestActorRequired() {
	_, err := s.syncer.BatchSync(context.Background(), " ", []string{"a1"})
	s.Error(err)
}

func TestBuildRecord(t *testing.T) {
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	profile := athlete.Profile{ID: "a1", Name: "Ravi", Age: 14, Location: "Pune, Pune, Maharashtra", Sports: []string{"football"}}
	history := []athlete.Assessment{
		{ID: "1", SubjectID: "a1", TestType: athlete.TestSpeed, Score: 60, Timestamp: day},
		{ID: "2", SubjectID: "a1", TestType: athlete.TestSpeed, Score: 80, Timestamp: day.AddDate(0, 0, 7)},
		{ID: "3", SubjectID: "a1", TestType: athlete.TestAgility, Score: 71, Timestamp: day.AddDate(0, 0, 3)},
	}

	rec := BuildRecord(profile, history)

	assert.Equal(t, "Maharashtra", rec.Region)
	assert.Equal(t, map[string]int{"speed": 80, "agility": 71}, rec.Scores)
	assert.Equal(t, 76, rec.OverallScore)
	assert.Equal(t, 3, rec.Assessments)
	assert.Equal(t, day.AddDate(0, 0, 7), rec.AssessedAt)
}
