package models

import (
	"cmp"
	"slices"
	"time"
)

type Type string

const (
	TypeNewTalent              Type = "new_talent"
	TypeScoreImprovement       Type = "score_improvement"
	TypeEliteThreshold         Type = "elite_threshold"
	TypeRecruitmentOpportunity Type = "recruitment_opportunity"
	TypeAssessmentMilestone    Type = "assessment_milestone"
)

// IsTalentSignal reports whether the alert type marks an identified talent.
func (t Type) IsTalentSignal() bool {
	return t == TypeNewTalent || t == TypeEliteThreshold || t == TypeRecruitmentOpportunity
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Channel is a delivery route.
type Channel string

const (
	ChannelEmail     Channel = "email"
	ChannelSMS       Channel = "sms"
	ChannelPush      Channel = "push"
	ChannelDashboard Channel = "dashboard"
)

// Payload carries the assessment context an alert was raised for.
type Payload struct {
	AssessmentID       string         `json:"assessmentId,omitempty"`
	TestType           string         `json:"testType,omitempty"`
	Score              int            `json:"score"`
	Scores             map[string]int `json:"scores,omitempty"`
	Percentile         int            `json:"percentile"`
	ImprovementPercent float64        `json:"improvementPercent,omitempty"`
	Location           string         `json:"location,omitempty"`
	Region             string         `json:"region,omitempty"`
	Age                int            `json:"age,omitempty"`
	RecommendedSports  []string       `json:"recommendedSports,omitempty"`
	AssessmentCount    int            `json:"assessmentCount,omitempty"`
}

// Alert is immutable once created except for Delivered, ReadBy and Archived.
type Alert struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	Type           Type      `json:"type"`
	Priority       Priority  `json:"priority"`
	SubjectID      string    `json:"subjectId"`
	RuleID         string    `json:"ruleId,omitempty"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	Payload        Payload   `json:"payload"`
	ActionRequired bool      `json:"actionRequired"`
	ActionItems    []string  `json:"actionItems"`
	Recipients     []string  `json:"recipients"`
	Delivered      bool      `json:"delivered"`
	ReadBy         []string  `json:"readBy"`
	Archived       bool      `json:"archived"`
}

// Clone returns a deep copy.
func (a Alert) Clone() Alert {
	a.ActionItems = slices.Clone(a.ActionItems)
	a.Recipients = slices.Clone(a.Recipients)
	a.ReadBy = slices.Clone(a.ReadBy)
	a.Payload.RecommendedSports = slices.Clone(a.Payload.RecommendedSports)
	if a.Payload.Scores != nil {
		scores := make(map[string]int, len(a.Payload.Scores))
		for k, v := range a.Payload.Scores {
			scores[k] = v
		}
		a.Payload.Scores = scores
	}
	return a
}

// IsReadBy reports whether userID has read the alert.
func (a Alert) IsReadBy(userID string) bool {
	return slices.Contains(a.ReadBy, userID)
}

// MarkReadBy adds userID to the reader set. It reports whether the set changed.
func (a *Alert) MarkReadBy(userID string) bool {
	if a.IsReadBy(userID) {
		return false
	}
	a.ReadBy = append(a.ReadBy, userID)
	return true
}

// Filter narrows an alert query. Zero values match everything except
// archived alerts, which need IncludeArchived.
type Filter struct {
	Type            Type     `json:"type,omitempty"`
	Priority        Priority `json:"priority,omitempty"`
	Recipient       string   `json:"recipient,omitempty"`
	UnreadFor       string   `json:"unreadFor,omitempty"`
	IncludeArchived bool     `json:"includeArchived,omitempty"`
	Limit           int      `json:"limit,omitempty"`
}

// Matches reports whether a satisfies the filter, ignoring Limit.
func (f Filter) Matches(a Alert) bool {
	if !f.IncludeArchived && a.Archived {
		return false
	}
	if f.Type != "" && a.Type != f.Type {
		return false
	}
	if f.Priority != "" && a.Priority != f.Priority {
		return false
	}
	if f.Recipient != "" && !slices.Contains(a.Recipients, f.Recipient) {
		return false
	}
	if f.UnreadFor != "" && a.IsReadBy(f.UnreadFor) {
		return false
	}
	return true
}

// Apply filters, sorts newest first and truncates to Limit.
func (f Filter) Apply(alerts []Alert) []Alert {
	out := make([]Alert, 0, len(alerts))
	for _, a := range alerts {
		if f.Matches(a) {
			out = append(out, a)
		}
	}
	slices.SortStableFunc(out, func(x, y Alert) int {
		if c := y.Timestamp.Compare(x.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(y.ID, x.ID)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

// InWindow reports whether the alert timestamp lies in [start, end).
func (a Alert) InWindow(start, end time.Time) bool {
	return !a.Timestamp.Before(start) && a.Timestamp.Before(end)
}
