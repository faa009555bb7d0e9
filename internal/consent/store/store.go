package store

import (
	"context"

	"talentgate/internal/consent/models"
	"talentgate/pkg/platform/repository"
)

// Error Contract:
// - Get returns sentinel.ErrNotFound when the subject has no record
// - Get returns sentinel.ErrCorrupt when a persisted record cannot be decoded
// - Other failures are wrapped infrastructure errors

// InMemoryStore keeps one consent record per subject.
type InMemoryStore struct {
	records *repository.Keyed[models.Record]
}

// New constructs an empty in-memory consent store.
func New() *InMemoryStore {
	return &InMemoryStore{records: repository.NewKeyed[models.Record](nil)}
}

// Upsert replaces any prior record for the subject.
func (s *InMemoryStore) Upsert(_ context.Context, record *models.Record) error {
	s.records.Upsert(record.SubjectID, *record)
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, subjectID string) (*models.Record, error) {
	record, err := s.records.Get(subjectID)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Delete removes the subject's record and reports whether one existed.
func (s *InMemoryStore) Delete(_ context.Context, subjectID string) (bool, error) {
	return s.records.Delete(subjectID), nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.Record, error) {
	values := s.records.List()
	out := make([]*models.Record, 0, len(values))
	for i := range values {
		out = append(out, &values[i])
	}
	return out, nil
}
