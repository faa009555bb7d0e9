// Package report folds persisted alerts into periodic recruitment reports.
package report

import (
	"maps"
	"slices"
	"time"
)

type Type string

const (
	TypeDaily     Type = "daily"
	TypeWeekly    Type = "weekly"
	TypeMonthly   Type = "monthly"
	TypeQuarterly Type = "quarterly"
	TypeAnnual    Type = "annual"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeDaily, TypeWeekly, TypeMonthly, TypeQuarterly, TypeAnnual:
		return true
	}
	return false
}

// Retention is the number of reports kept; older reports are dropped.
const Retention = 100

type Summary struct {
	NewTalents       int            `json:"newTalents"`
	TotalAssessments int            `json:"totalAssessments"`
	AverageScore     float64        `json:"averageScore"`
	ByRegion         map[string]int `json:"byRegion"`
	BySport          map[string]int `json:"bySport"`
	AlertCount       int            `json:"alertCount"`
}

type TopTalent struct {
	SubjectID string `json:"subjectId"`
	Score     int    `json:"score"`
	TestType  string `json:"testType"`
	Region    string `json:"region,omitempty"`
}

type Trend string

const (
	TrendUp     Trend = "increasing"
	TrendDown   Trend = "decreasing"
	TrendStable Trend = "stable"
)

type TrendAnalysis struct {
	Direction          Trend  `json:"direction"`
	PreviousNewTalents int    `json:"previousNewTalents"`
	Summary            string `json:"summary"`
}

type Insights struct {
	TopTalents      []TopTalent   `json:"topTalents"`
	TrendAnalysis   TrendAnalysis `json:"trendAnalysis"`
	Recommendations []string      `json:"recommendations"`
	RiskFactors     []string      `json:"riskFactors"`
}

type Actions struct {
	Immediate []string `json:"immediate"`
	ShortTerm []string `json:"shortTerm"`
	LongTerm  []string `json:"longTerm"`
}

// Report is immutable once generated.
type Report struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Type        Type      `json:"type"`
	PeriodStart time.Time `json:"periodStart"`
	PeriodEnd   time.Time `json:"periodEnd"`
	GeneratedAt time.Time `json:"generatedAt"`
	Summary     Summary   `json:"summary"`
	Insights    Insights  `json:"insights"`
	Actions     Actions   `json:"actions"`
}

func (r Report) Clone() Report {
	r.Summary.ByRegion = maps.Clone(r.Summary.ByRegion)
	r.Summary.BySport = maps.Clone(r.Summary.BySport)
	r.Insights.TopTalents = slices.Clone(r.Insights.TopTalents)
	r.Insights.Recommendations = slices.Clone(r.Insights.Recommendations)
	r.Insights.RiskFactors = slices.Clone(r.Insights.RiskFactors)
	r.Actions.Immediate = slices.Clone(r.Actions.Immediate)
	r.Actions.ShortTerm = slices.Clone(r.Actions.ShortTerm)
	r.Actions.LongTerm = slices.Clone(r.Actions.LongTerm)
	return r
}
