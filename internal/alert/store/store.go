package store

import (
	"context"

	"talentgate/internal/alert/models"
	"talentgate/pkg/platform/repository"
	"talentgate/pkg/platform/sentinel"
)

// Error Contract:
// - Get and Update return sentinel.ErrNotFound for unknown ids
// - List skips records that cannot be decoded and never fails on them

// InMemoryStore keeps alerts keyed by id.
type InMemoryStore struct {
	alerts *repository.Keyed[models.Alert]
}

func New() *InMemoryStore {
	return &InMemoryStore{alerts: repository.NewKeyed(models.Alert.Clone)}
}

func (s *InMemoryStore) Save(_ context.Context, alert models.Alert) error {
	s.alerts.Upsert(alert.ID, alert)
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id string) (models.Alert, error) {
	return s.alerts.Get(id)
}

// Update applies mutate to the stored alert atomically. If mutate returns an
// error the alert is left unchanged.
func (s *InMemoryStore) Update(_ context.Context, id string, mutate func(*models.Alert) error) (models.Alert, error) {
	return s.alerts.Update(id, func(current models.Alert, exists bool) (models.Alert, error) {
		if !exists {
			return models.Alert{}, sentinel.ErrNotFound
		}
		if err := mutate(&current); err != nil {
			return models.Alert{}, err
		}
		return current, nil
	})
}

func (s *InMemoryStore) List(_ context.Context) ([]models.Alert, error) {
	return s.alerts.List(), nil
}
