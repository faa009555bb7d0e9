package audit

import (
	"context"
	"slices"

	"talentgate/pkg/platform/repository"
)

// Store persists audit entries. Implementations enforce their retention cap
// on Append and return entries newest first from List.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	List(ctx context.Context, filter Filter) ([]Entry, error)
}

// InMemoryStore keeps the most recent entries in a capped ring.
type InMemoryStore struct {
	ring *repository.Ring[Entry]
}

// NewInMemoryStore creates a store retaining at most capacity entries.
// Non-positive capacity uses DefaultRetention.
func NewInMemoryStore(capacity int) *InMemoryStore {
	if capacity <= 0 {
		capacity = DefaultRetention
	}
	return &InMemoryStore{ring: repository.NewRing[Entry](capacity)}
}

func (s *InMemoryStore) Append(_ context.Context, entry Entry) error {
	s.ring.AppendCapped(entry.Clone())
	return nil
}

func (s *InMemoryStore) List(_ context.Context, filter Filter) ([]Entry, error) {
	items := s.ring.Items()
	slices.Reverse(items)

	out := make([]Entry, 0, len(items))
	for _, e := range items {
		if !filter.Matches(e) {
			continue
		}
		out = append(out, e.Clone())
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

// Len returns the number of retained entries.
func (s *InMemoryStore) Len() int {
	return s.ring.Len()
}
