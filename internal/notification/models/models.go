package models

import (
	"slices"
	"strings"
	"time"

	alert "talentgate/internal/alert/models"
)

// EliteThreshold is the score at or above which an assessment is elite.
const EliteThreshold = 85

// ActionImprovementPercent is the improvement above which an alert needs action.
const ActionImprovementPercent = 25.0

// Milestones are assessment counts that turn a new-assessment event into a
// milestone alert.
var Milestones = []int{5, 10, 25, 50}

// IsMilestone reports whether count is one of the milestone counts.
func IsMilestone(count int) bool {
	return slices.Contains(Milestones, count)
}

// Event is what happened to trigger rule evaluation.
type Event string

const (
	EventNewAssessment    Event = "new_assessment"
	EventScoreImprovement Event = "score_improvement"
	EventEliteThreshold   Event = "elite_threshold"
)

type Frequency string

const (
	FrequencyImmediate Frequency = "immediate"
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
)

// Conditions are the closed set of predicates a rule can express. All set
// predicates must hold.
type Conditions struct {
	MinScore             int      `json:"minScore" validate:"min=0,max=100"`
	MaxAge               int      `json:"maxAge" validate:"min=0,max=120"`
	Sports               []string `json:"sports,omitempty" validate:"max=50,dive,notblank"`
	Regions              []string `json:"regions,omitempty" validate:"max=50,dive,notblank"`
	ImprovementThreshold float64  `json:"improvementThreshold" validate:"min=0"`
	NewAssessmentAlert   bool     `json:"newAssessmentAlert"`
	EliteThresholdAlert  bool     `json:"eliteThresholdAlert"`
}

// Rule is a recruiter's standing alert subscription.
type Rule struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Active     bool           `json:"active"`
	Conditions Conditions     `json:"conditions"`
	Recipients []string       `json:"recipients"`
	Frequency  Frequency      `json:"frequency"`
	Priority   alert.Priority `json:"priority"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

func (r Rule) Clone() Rule {
	r.Conditions.Sports = slices.Clone(r.Conditions.Sports)
	r.Conditions.Regions = slices.Clone(r.Conditions.Regions)
	r.Recipients = slices.Clone(r.Recipients)
	return r
}

// Subject is the assessed athlete as seen by rule predicates.
type Subject struct {
	Score             int
	Age               int
	Sports            []string
	Region            string
	RecommendedSports []string
}

// Matches evaluates the subject predicates (score, age, sport, region).
func (c Conditions) Matches(s Subject) bool {
	if s.Score < c.MinScore {
		return false
	}
	if c.MaxAge > 0 && s.Age > c.MaxAge {
		return false
	}
	if len(c.Sports) > 0 && !intersects(c.Sports, s.Sports) {
		return false
	}
	if len(c.Regions) > 0 && !containsFold(c.Regions, s.Region) {
		return false
	}
	return true
}

// Fires reports whether the rule subscribes to the event. improvementPct is
// the percent change against the previous same-type score.
func (c Conditions) Fires(event Event, score int, improvementPct float64) bool {
	switch event {
	case EventNewAssessment:
		return c.NewAssessmentAlert
	case EventScoreImprovement:
		return c.ImprovementThreshold > 0 && improvementPct >= c.ImprovementThreshold
	case EventEliteThreshold:
		return c.EliteThresholdAlert && score >= EliteThreshold
	default:
		return false
	}
}

// RecruitmentMatch reports whether the rule filters on sports and the
// subject's recommended sports include one of them.
func (c Conditions) RecruitmentMatch(recommended []string) bool {
	return len(c.Sports) > 0 && intersects(c.Sports, recommended)
}

func intersects(a, b []string) bool {
	for _, x := range a {
		if containsFold(b, x) {
			return true
		}
	}
	return false
}

func containsFold(values []string, target string) bool {
	target = strings.TrimSpace(target)
	if target == "" {
		return false
	}
	return slices.ContainsFunc(values, func(v string) bool {
		return strings.EqualFold(strings.TrimSpace(v), target)
	})
}
