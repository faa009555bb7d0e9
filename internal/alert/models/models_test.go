package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFilterApply(t *testing.T) {
	t0 := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	alerts := []Alert{
		{ID: "a", Timestamp: t0, Type: TypeNewTalent, Priority: PriorityMedium, Recipients: []string{"coach"}},
		{ID: "b", Timestamp: t0.Add(time.Hour), Type: TypeEliteThreshold, Priority: PriorityHigh, Recipients: []string{"coach", "scout"}, ReadBy: []string{"coach"}},
		{ID: "c", Timestamp: t0.Add(2 * time.Hour), Type: TypeNewTalent, Priority: PriorityHigh, Archived: true},
		{ID: "d", Timestamp: t0.Add(3 * time.Hour), Type: TypeScoreImprovement, Priority: PriorityLow, Recipients: []string{"scout"}},
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"default hides archived, newest first", Filter{}, []string{"d", "b", "a"}},
		{"include archived", Filter{IncludeArchived: true}, []string{"d", "c", "b", "a"}},
		{"by type", Filter{Type: TypeNewTalent, IncludeArchived: true}, []string{"c", "a"}},
		{"by priority", Filter{Priority: PriorityHigh}, []string{"b"}},
		{"by recipient", Filter{Recipient: "scout"}, []string{"d", "b"}},
		{"unread for coach", Filter{UnreadFor: "coach"}, []string{"d", "a"}},
		{"limit", Filter{Limit: 2}, []string{"d", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply(alerts)
			ids := make([]string, 0, len(got))
			for _, a := range got {
				ids = append(ids, a.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestMarkReadByIsIdempotent(t *testing.T) {
	a := Alert{ID: "x"}
	assert.True(t, a.MarkReadBy("u1"))
	assert.False(t, a.MarkReadBy("u1"))
	assert.Equal(t, []string{"u1"}, a.ReadBy)
}

func TestInWindowIsHalfOpen(t *testing.T) {
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	assert.True(t, Alert{Timestamp: start}.InWindow(start, end))
	assert.False(t, Alert{Timestamp: end}.InWindow(start, end))
}

func TestCloneDoesNotAlias(t *testing.T) {
	a := Alert{Recipients: []string{"r"}, Payload: Payload{Scores: map[string]int{"speed": 80}}}
	b := a.Clone()
	b.Recipients[0] = "x"
	b.Payload.Scores["speed"] = 1
	assert.Equal(t, "r", a.Recipients[0])
	assert.Equal(t, 80, a.Payload.Scores["speed"])
}
