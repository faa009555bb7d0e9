package report

import (
	"context"
	"slices"
	"sync"

	"talentgate/pkg/platform/repository"
	"talentgate/pkg/platform/sentinel"
)

// Store keeps generated reports.
// Error Contract:
// - Get returns sentinel.ErrNotFound for unknown ids
// - SaveIfAbsent returns the already stored report when the id exists
type Store interface {
	SaveIfAbsent(ctx context.Context, report Report) (Report, bool, error)
	Get(ctx context.Context, id string) (Report, error)
	List(ctx context.Context) ([]Report, error)
}

// InMemoryStore retains the most recent reports up to its capacity.
type InMemoryStore struct {
	mu      sync.Mutex
	reports *repository.Ring[Report]
}

// NewInMemoryStore creates a store capped at capacity; non-positive values
// use Retention.
func NewInMemoryStore(capacity int) *InMemoryStore {
	if capacity <= 0 {
		capacity = Retention
	}
	return &InMemoryStore{reports: repository.NewRing[Report](capacity)}
}

// SaveIfAbsent stores report unless one with the same id exists. It returns
// the stored report and whether it was newly created.
func (s *InMemoryStore) SaveIfAbsent(_ context.Context, report Report) (Report, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reports.Items() {
		if r.ID == report.ID {
			return r.Clone(), false, nil
		}
	}
	s.reports.AppendCapped(report.Clone())
	return report, true, nil
}

func (s *InMemoryStore) Get(_ context.Context, id string) (Report, error) {
	for _, r := range s.reports.Items() {
		if r.ID == id {
			return r.Clone(), nil
		}
	}
	return Report{}, sentinel.ErrNotFound
}

// List returns reports newest generated first.
func (s *InMemoryStore) List(_ context.Context) ([]Report, error) {
	items := s.reports.Items()
	out := make([]Report, 0, len(items))
	for _, r := range slices.Backward(items) {
		out = append(out, r.Clone())
	}
	return out, nil
}
