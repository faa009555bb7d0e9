package report

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"

	alert "talentgate/internal/alert/models"
	"talentgate/internal/audit"
	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/platform/sentinel"
	"talentgate/pkg/requestcontext"
)

const (
	lowTalentCount      = 10
	alertVolumeRatio    = 3
	foundationalAverage = 60.0
	eliteScore          = 85
	topTalentLimit      = 5
)

// reportNamespace seeds the name-based ids that make Generate idempotent.
var reportNamespace = uuid.MustParse("5b0c7a4e-9d1f-4c37-8f0e-2a6d3b9e1c54")

// AlertSource lists alerts by timestamp window.
type AlertSource interface {
	InWindow(ctx context.Context, start, end time.Time) ([]alert.Alert, error)
}

type Option func(*Generator)

func WithMetrics(m *Metrics) Option {
	return func(g *Generator) {
		g.metrics = m
	}
}

// Generator builds reports. Generation is a pure read over alerts; the only
// write is the stored report.
type Generator struct {
	alerts  AlertSource
	store   Store
	auditor audit.Recorder
	metrics *Metrics
	logger  *slog.Logger
}

func NewGenerator(alerts AlertSource, store Store, auditor audit.Recorder, logger *slog.Logger, opts ...Option) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Generator{alerts: alerts, store: store, auditor: auditor, logger: logger}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ReportID is the stable id of the report for (type, start, end).
func ReportID(t Type, start, end time.Time) string {
	key := fmt.Sprintf("%s|%s|%s", t, start.UTC().Format(time.RFC3339Nano), end.UTC().Format(time.RFC3339Nano))
	return uuid.NewSHA1(reportNamespace, []byte(key)).String()
}

// Generate folds alerts in [start, end) into a report. Calling it again for
// the same type and window returns the stored report unchanged.
func (g *Generator) Generate(ctx context.Context, t Type, start, end time.Time) (Report, error) {
	if !t.IsValid() {
		return Report{}, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unknown report type %q", t))
	}
	if !end.After(start) {
		return Report{}, dErrors.New(dErrors.CodeBadRequest, "report window end must be after start")
	}

	id := ReportID(t, start, end)
	if existing, err := g.store.Get(ctx, id); err == nil {
		g.metrics.IncrementReused()
		return existing, nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return Report{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read report")
	}

	window := Window{Start: start, End: end}
	current, err := g.alerts.InWindow(ctx, start, end)
	if err != nil {
		return Report{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read alerts")
	}
	prevWindow := window.Previous()
	previous, err := g.alerts.InWindow(ctx, prevWindow.Start, prevWindow.End)
	if err != nil {
		return Report{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read alerts")
	}

	report := Build(id, t, window, current, previous)
	report.GeneratedAt = requestcontext.Now(ctx)

	stored, created, err := g.store.SaveIfAbsent(ctx, report)
	if err != nil {
		return Report{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save report")
	}
	if !created {
		g.metrics.IncrementReused()
		return stored, nil
	}

	g.metrics.IncrementGenerated(t)
	g.auditor.Record(ctx, audit.Entry{
		Action:     audit.ActionAccess,
		SubjectIDs: subjects(current),
		DataTypes:  []string{audit.DataNotification, audit.DataReport},
		Purpose:    "reporting",
		Success:    true,
		Detail:     fmt.Sprintf("report=%s type=%s alerts=%d", id, t, len(current)),
	})
	g.logger.InfoContext(ctx, "report generated",
		"report_id", id,
		"report_type", string(t),
		"alert_count", len(current),
	)
	return stored, nil
}

// For generates the calendar report of type t whose window contains at.
func (g *Generator) For(ctx context.Context, t Type, at time.Time) (Report, error) {
	if !t.IsValid() {
		return Report{}, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unknown report type %q", t))
	}
	w := WindowOf(t, at)
	return g.Generate(ctx, t, w.Start, w.End)
}

func (g *Generator) Daily(ctx context.Context, day time.Time) (Report, error) {
	return g.For(ctx, TypeDaily, day)
}

func (g *Generator) Weekly(ctx context.Context, t time.Time) (Report, error) {
	return g.For(ctx, TypeWeekly, t)
}

func (g *Generator) Monthly(ctx context.Context, t time.Time) (Report, error) {
	return g.For(ctx, TypeMonthly, t)
}

func (g *Generator) Quarterly(ctx context.Context, t time.Time) (Report, error) {
	return g.For(ctx, TypeQuarterly, t)
}

func (g *Generator) Annual(ctx context.Context, t time.Time) (Report, error) {
	return g.For(ctx, TypeAnnual, t)
}

func (g *Generator) Get(ctx context.Context, id string) (Report, error) {
	r, err := g.store.Get(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return Report{}, dErrors.New(dErrors.CodeNotFound, "report not found")
	}
	if err != nil {
		return Report{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read report")
	}
	return r, nil
}

// List returns stored reports, newest first, optionally filtered by type.
func (g *Generator) List(ctx context.Context, t Type) ([]Report, error) {
	reports, err := g.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list reports")
	}
	if t == "" {
		return reports, nil
	}
	return slices.DeleteFunc(reports, func(r Report) bool { return r.Type != t }), nil
}

// Build computes a report from the alerts of its window and the window
// before it. It does not stamp GeneratedAt.
func Build(id string, t Type, w Window, current, previous []alert.Alert) Report {
	summary := summarize(current)
	prevTalents := talentCount(previous)

	insights := Insights{
		TopTalents:      topTalents(current),
		TrendAnalysis:   trend(summary.NewTalents, prevTalents),
		Recommendations: []string{},
		RiskFactors:     []string{},
	}
	actions := Actions{Immediate: []string{}, ShortTerm: []string{}, LongTerm: []string{}}

	if summary.NewTalents < lowTalentCount {
		insights.Recommendations = append(insights.Recommendations,
			"Increase scouting activity: fewer than 10 new talents identified this period")
		actions.ShortTerm = append(actions.ShortTerm, "Organize additional assessment camps in under-covered regions")
	}
	if summary.TotalAssessments > 0 && summary.AverageScore < foundationalAverage {
		insights.Recommendations = append(insights.Recommendations,
			"Focus on foundational training: average assessment score is below 60")
		actions.LongTerm = append(actions.LongTerm, "Introduce a foundational fitness program for assessed athletes")
	}
	if summary.AlertCount > alertVolumeRatio*summary.NewTalents {
		insights.RiskFactors = append(insights.RiskFactors,
			"Alert volume exceeds three times the identified talents; review threshold configuration")
		actions.ShortTerm = append(actions.ShortTerm, "Review notification rule thresholds")
	}
	if insights.TrendAnalysis.Direction == TrendDown {
		insights.RiskFactors = append(insights.RiskFactors, "New talent identification declined against the previous period")
	}
	for _, talent := range insights.TopTalents {
		if talent.Score >= eliteScore {
			actions.Immediate = append(actions.Immediate, "Schedule an evaluation for athlete "+talent.SubjectID)
		}
	}
	actions.LongTerm = append(actions.LongTerm, "Track identified talents across the next reporting periods")

	return Report{
		ID:          id,
		Title:       title(t, w),
		Type:        t,
		PeriodStart: w.Start,
		PeriodEnd:   w.End,
		Summary:     summary,
		Insights:    insights,
		Actions:     actions,
	}
}

func summarize(alerts []alert.Alert) Summary {
	s := Summary{
		AlertCount: len(alerts),
		ByRegion:   map[string]int{},
		BySport:    map[string]int{},
	}

	talents := map[string]struct{}{}
	regions := map[string]map[string]struct{}{}
	sports := map[string]map[string]struct{}{}
	assessments := map[string]int{}
	for _, a := range alerts {
		if a.Payload.AssessmentID != "" {
			assessments[a.Payload.AssessmentID] = a.Payload.Score
		}
		if !a.Type.IsTalentSignal() {
			continue
		}
		talents[a.SubjectID] = struct{}{}
		if a.Payload.Region != "" {
			addTo(regions, a.Payload.Region, a.SubjectID)
		}
		for _, sport := range a.Payload.RecommendedSports {
			addTo(sports, sport, a.SubjectID)
		}
	}

	s.NewTalents = len(talents)
	s.TotalAssessments = len(assessments)
	if len(assessments) > 0 {
		total := 0
		for _, score := range assessments {
			total += score
		}
		s.AverageScore = math.Round(float64(total)/float64(len(assessments))*10) / 10
	}
	for k, v := range regions {
		s.ByRegion[k] = len(v)
	}
	for k, v := range sports {
		s.BySport[k] = len(v)
	}
	return s
}

func addTo(index map[string]map[string]struct{}, key, subject string) {
	set, ok := index[key]
	if !ok {
		set = map[string]struct{}{}
		index[key] = set
	}
	set[subject] = struct{}{}
}

func talentCount(alerts []alert.Alert) int {
	talents := map[string]struct{}{}
	for _, a := range alerts {
		if a.Type.IsTalentSignal() {
			talents[a.SubjectID] = struct{}{}
		}
	}
	return len(talents)
}

// topTalents keeps each subject's best talent-signal score.
func topTalents(alerts []alert.Alert) []TopTalent {
	best := map[string]TopTalent{}
	for _, a := range alerts {
		if !a.Type.IsTalentSignal() {
			continue
		}
		if cur, ok := best[a.SubjectID]; ok && cur.Score >= a.Payload.Score {
			continue
		}
		best[a.SubjectID] = TopTalent{
			SubjectID: a.SubjectID,
			Score:     a.Payload.Score,
			TestType:  a.Payload.TestType,
			Region:    a.Payload.Region,
		}
	}
	out := slices.Collect(maps.Values(best))
	slices.SortFunc(out, func(a, b TopTalent) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.SubjectID, b.SubjectID)
	})
	if len(out) > topTalentLimit {
		out = out[:topTalentLimit]
	}
	return out
}

func trend(current, previous int) TrendAnalysis {
	t := TrendAnalysis{Direction: TrendStable, PreviousNewTalents: previous}
	switch {
	case current > previous:
		t.Direction = TrendUp
	case current < previous:
		t.Direction = TrendDown
	}
	t.Summary = fmt.Sprintf("%d new talents against %d in the previous period (%s)", current, previous, t.Direction)
	return t
}

func title(t Type, w Window) string {
	switch t {
	case TypeDaily:
		return "Daily Recruitment Report - " + w.Start.Format("2006-01-02")
	case TypeWeekly:
		return "Weekly Recruitment Report - week of " + w.Start.Format("2006-01-02")
	case TypeMonthly:
		return "Monthly Recruitment Report - " + w.Start.Format("January 2006")
	case TypeQuarterly:
		return fmt.Sprintf("Quarterly Recruitment Report - Q%d %d", (int(w.Start.Month())-1)/3+1, w.Start.Year())
	default:
		return fmt.Sprintf("Annual Recruitment Report - %d", w.Start.Year())
	}
}

func subjects(alerts []alert.Alert) []string {
	set := map[string]struct{}{}
	for _, a := range alerts {
		set[a.SubjectID] = struct{}{}
	}
	return slices.Sorted(maps.Keys(set))
}
