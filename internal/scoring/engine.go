// Package scoring turns an assessment and the athlete's history into
// insights, a score profile, training recommendations, progress and a
// benchmark comparison. The engine holds no state between calls.
package scoring

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"talentgate/internal/athlete"
	dErrors "talentgate/pkg/domain-errors"
	pstrings "talentgate/pkg/platform/strings"
)

const (
	exceptionalThreshold = 85
	strongThreshold      = 70
	weaknessThreshold    = 50
	maintenanceThreshold = 80
	progressInsightDelta = 5
	trendDelta           = 3
)

// Option configures an Engine.
type Option func(*Engine)

// WithNoise sets the benchmark perturbation source.
func WithNoise(n Noise) Option {
	return func(e *Engine) {
		if n != nil {
			e.noise = n
		}
	}
}

// Engine evaluates assessments. The zero-option engine is deterministic.
type Engine struct {
	noise Noise
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{noise: NoNoise{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate scores assessment against history. history may include the
// assessment itself; it is never counted as its own predecessor.
func (e *Engine) Evaluate(assessment athlete.Assessment, history []athlete.Assessment, sportCategories []string) (Evaluation, error) {
	if !assessment.TestType.IsValid() {
		return Evaluation{}, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown test type %q", assessment.TestType))
	}
	if assessment.Score < 0 || assessment.Score > 100 {
		return Evaluation{}, dErrors.New(dErrors.CodeValidation, "score must be between 0 and 100")
	}

	progress := ProgressFor(assessment, history)
	profile := e.profile(assessment, history, sportCategories)

	return Evaluation{
		Insights:        Insights(assessment, progress),
		Metrics:         profile,
		Recommendations: Recommendations(assessment),
		Progress:        progress,
		Benchmark:       e.Benchmark(assessment),
	}, nil
}

// RatingFor maps a score onto its band.
func RatingFor(score int) Rating {
	switch {
	case score >= 90:
		return RatingExcellent
	case score >= 75:
		return RatingGood
	case score >= 60:
		return RatingAverage
	case score >= 45:
		return RatingBelowAverage
	default:
		return RatingPoor
	}
}

// Percentile is round(clamp(score, 5, 95) * multiplier). It is monotonic
// non-decreasing in score for a fixed test type.
func Percentile(score int, testType athlete.TestType) int {
	mult, ok := percentileMultipliers[testType]
	if !ok {
		mult = 1
	}
	clamped := max(5, min(95, score))
	return int(math.Round(float64(clamped) * mult))
}

// Insights applies the ordered, cumulative insight rules.
func Insights(a athlete.Assessment, p Progress) []Insight {
	name := testLabel(a.TestType)
	var out []Insight

	switch {
	case a.Score >= exceptionalThreshold:
		out = append(out, Insight{
			Category:    CategoryStrength,
			Title:       "Exceptional Performance",
			Description: fmt.Sprintf("%s score of %d is at an exceptional level.", name, a.Score),
			Priority:    PriorityHigh,
		})
	case a.Score >= strongThreshold:
		out = append(out, Insight{
			Category:    CategoryStrength,
			Title:       "Strong Performance",
			Description: fmt.Sprintf("%s score of %d is above average.", name, a.Score),
			Priority:    PriorityMedium,
		})
	case a.Score < weaknessThreshold:
		out = append(out, Insight{
			Category:    CategoryWeakness,
			Title:       "Development Area",
			Description: fmt.Sprintf("%s score of %d needs focused work.", name, a.Score),
			Priority:    PriorityHigh,
		})
	}

	switch {
	case a.TestType == athlete.TestSpeed && a.Score < 60:
		out = append(out, Insight{
			Category:    CategoryImprovement,
			Title:       "Speed Development Opportunity",
			Description: "Sprint drills and explosive power work will lift acceleration.",
			Priority:    PriorityMedium,
		})
	case a.TestType == athlete.TestFlexibility && a.Score < 55:
		out = append(out, Insight{
			Category:    CategoryRisk,
			Title:       "Injury Prevention Focus",
			Description: "Limited flexibility raises strain risk; add daily mobility work.",
			Priority:    PriorityHigh,
		})
	case a.TestType == athlete.TestEndurance && a.Score >= 80:
		out = append(out, Insight{
			Category:    CategoryStrength,
			Title:       "Excellent Cardiovascular Fitness",
			Description: "Endurance capacity suits sports with sustained effort.",
			Priority:    PriorityMedium,
		})
	}

	if p.HasPrevious {
		switch {
		case p.Improvement > progressInsightDelta:
			out = append(out, Insight{
				Category:    CategoryImprovement,
				Title:       "Improving Trend",
				Description: fmt.Sprintf("%s improved by %d points since the last assessment.", name, p.Improvement),
				Priority:    PriorityMedium,
			})
		case p.Improvement < -progressInsightDelta:
			out = append(out, Insight{
				Category:    CategoryWeakness,
				Title:       "Declining Performance",
				Description: fmt.Sprintf("%s dropped by %d points since the last assessment.", name, -p.Improvement),
				Priority:    PriorityMedium,
			})
		}
	}
	return out
}

// Recommendations returns the fixed training bundles that apply to a.
func Recommendations(a athlete.Assessment) []Recommendation {
	var out []Recommendation
	if rule, ok := recommendationTable[a.TestType]; ok && a.Score < rule.below {
		out = append(out, cloneRecommendation(rule.rec))
	}
	if a.Score >= maintenanceThreshold {
		out = append(out, cloneRecommendation(maintenanceBundle))
	}
	return out
}

// ProgressFor compares a with the most recent earlier assessment of its type.
func ProgressFor(a athlete.Assessment, history []athlete.Assessment) Progress {
	prev, ok := athlete.LatestBefore(a, history)
	if !ok {
		return Progress{Trend: TrendStable}
	}
	diff := a.Score - prev.Score
	trend := TrendStable
	switch {
	case diff > trendDelta:
		trend = TrendImproving
	case diff < -trendDelta:
		trend = TrendDeclining
	}
	return Progress{
		PreviousScore: prev.Score,
		HasPrevious:   true,
		Improvement:   diff,
		Trend:         trend,
	}
}

// Benchmark compares a against the reference levels for its test type.
func (e *Engine) Benchmark(a athlete.Assessment) Benchmark {
	base := benchmarkTable[a.TestType]
	return Benchmark{
		Score:        a.Score,
		PeerAverage:  base.peer + clampJitter(e.noise.Jitter(a.TestType)),
		SportAverage: base.peer + sportAverageLift + clampJitter(e.noise.Jitter(a.TestType)),
		EliteLevel:   base.elite,
	}
}

func (e *Engine) profile(a athlete.Assessment, history []athlete.Assessment, sportCategories []string) ScoreProfile {
	latest := athlete.LatestByType(append(slices.Clone(history), a))
	latest[a.TestType] = a

	categories := make(map[athlete.TestType]int, len(latest))
	total := 0
	for t, la := range latest {
		categories[t] = la.Score
		total += la.Score
	}

	return ScoreProfile{
		OverallScore:      int(math.Round(float64(total) / float64(len(latest)))),
		CategoryScores:    categories,
		Rating:            RatingFor(a.Score),
		Percentile:        Percentile(a.Score, a.TestType),
		RecommendedSports: RecommendedSports(categories, sportCategories),
	}
}

// RecommendedSports ranks the sports suggested by strong test categories.
// Sports the athlete already plays come first.
func RecommendedSports(categories map[athlete.TestType]int, sportCategories []string) []string {
	strong := make([]athlete.TestType, 0, len(categories))
	for _, t := range athlete.TestTypes {
		if categories[t] >= affinityThreshold {
			strong = append(strong, t)
		}
	}
	slices.SortStableFunc(strong, func(a, b athlete.TestType) int {
		return categories[b] - categories[a]
	})

	var candidates []string
	for _, t := range strong {
		candidates = append(candidates, sportAffinity[t]...)
	}
	candidates = pstrings.DedupeAndTrimLower(candidates)

	played := pstrings.DedupeAndTrimLower(sportCategories)
	out := make([]string, 0, len(candidates))
	for _, s := range candidates {
		if slices.Contains(played, s) {
			out = append(out, s)
		}
	}
	for _, s := range candidates {
		if !slices.Contains(played, s) {
			out = append(out, s)
		}
	}
	return out
}

func cloneRecommendation(r Recommendation) Recommendation {
	r.Exercises = slices.Clone(r.Exercises)
	return r
}

func testLabel(t athlete.TestType) string {
	s := string(t)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
