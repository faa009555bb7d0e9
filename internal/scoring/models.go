package scoring

import "talentgate/internal/athlete"

// Rating is the qualitative band a score falls in.
type Rating string

const (
	RatingExcellent    Rating = "excellent"
	RatingGood         Rating = "good"
	RatingAverage      Rating = "average"
	RatingBelowAverage Rating = "below_average"
	RatingPoor         Rating = "poor"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

type InsightCategory string

const (
	CategoryStrength    InsightCategory = "strength"
	CategoryWeakness    InsightCategory = "weakness"
	CategoryImprovement InsightCategory = "improvement"
	CategoryRisk        InsightCategory = "risk"
)

type Insight struct {
	Category    InsightCategory `json:"category"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    Priority        `json:"priority"`
}

// Recommendation is a fixed training bundle.
type Recommendation struct {
	Category    string   `json:"category"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Exercises   []string `json:"exercises"`
	Priority    Priority `json:"priority"`
	Duration    string   `json:"duration"`
}

// ScoreProfile summarizes where an athlete stands after an assessment.
type ScoreProfile struct {
	OverallScore      int                      `json:"overallScore"`
	CategoryScores    map[athlete.TestType]int `json:"categoryScores"`
	Rating            Rating                   `json:"rating"`
	Percentile        int                      `json:"percentile"`
	RecommendedSports []string                 `json:"recommendedSports"`
}

type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// Progress compares an assessment against the previous one of its type.
type Progress struct {
	PreviousScore int   `json:"previousScore"`
	HasPrevious   bool  `json:"hasPrevious"`
	Improvement   int   `json:"improvement"`
	Trend         Trend `json:"trend"`
}

// ImprovementPercent is the relative change against the previous score.
// It is zero when there is no usable previous score.
func (p Progress) ImprovementPercent() float64 {
	if !p.HasPrevious || p.PreviousScore <= 0 {
		return 0
	}
	return float64(p.Improvement) / float64(p.PreviousScore) * 100
}

// Benchmark places a score against peer, sport and elite reference levels.
type Benchmark struct {
	Score        int `json:"score"`
	PeerAverage  int `json:"peerAverage"`
	SportAverage int `json:"sportAverage"`
	EliteLevel   int `json:"eliteLevel"`
}

// Evaluation is everything the engine derives from one assessment.
type Evaluation struct {
	Insights        []Insight        `json:"insights"`
	Metrics         ScoreProfile     `json:"metrics"`
	Recommendations []Recommendation `json:"recommendations"`
	Progress        Progress         `json:"progress"`
	Benchmark       Benchmark        `json:"benchmark"`
}
