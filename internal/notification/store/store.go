package store

import (
	"cmp"
	"context"
	"slices"

	"talentgate/internal/notification/models"
	"talentgate/pkg/platform/repository"
	"talentgate/pkg/platform/sentinel"
)

// Error Contract:
// - Get and SetActive return sentinel.ErrNotFound for unknown rule ids
// - List returns rules ordered by id and skips undecodable records

// InMemoryStore keeps notification rules keyed by id.
type InMemoryStore struct {
	rules *repository.Keyed[models.Rule]
}

func New() *InMemoryStore {
	return &InMemoryStore{rules: repository.NewKeyed(models.Rule.Clone)}
}

func (s *InMemoryStore) Save(_ context.Context, rule models.Rule) error {
	s.rules.Upsert(rule.ID, rule)
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id string) (models.Rule, error) {
	return s.rules.Get(id)
}

func (s *InMemoryStore) List(_ context.Context) ([]models.Rule, error) {
	rules := s.rules.List()
	slices.SortFunc(rules, func(a, b models.Rule) int { return cmp.Compare(a.ID, b.ID) })
	return rules, nil
}

func (s *InMemoryStore) SetActive(_ context.Context, id string, active bool) (models.Rule, error) {
	return s.rules.Update(id, func(current models.Rule, exists bool) (models.Rule, error) {
		if !exists {
			return models.Rule{}, sentinel.ErrNotFound
		}
		current.Active = active
		return current, nil
	})
}
