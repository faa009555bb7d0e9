package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	alert "talentgate/internal/alert/models"
	"talentgate/internal/audit"
	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/requestcontext"
)

type sliceSource struct {
	alerts []alert.Alert
	calls  int
}

func (s *sliceSource) InWindow(_ context.Context, start, end time.Time) ([]alert.Alert, error) {
	s.calls++
	var out []alert.Alert
	for _, a := range s.alerts {
		if a.InWindow(start, end) {
			out = append(out, a)
		}
	}
	return out, nil
}

type GeneratorSuite struct {
	suite.Suite
	source     *sliceSource
	auditStore *audit.InMemoryStore
	gen        *Generator
	day        time.Time
}

func TestGeneratorSuite(t *testing.T) {
	suite.Run(t, new(GeneratorSuite))
}

func (s *GeneratorSuite) SetupTest() {
	s.source = &sliceSource{}
	s.auditStore = audit.NewInMemoryStore(0)
	s.gen = NewGenerator(s.source, NewInMemoryStore(0), audit.NewPublisher(s.auditStore),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.day = time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC) // Wednesday
}

func (s *GeneratorSuite) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), s.day.Add(30*time.Hour))
}

func (s *GeneratorSuite) add(id, subject string, typ alert.Type, score int, at time.Time) {
	s.source.alerts = append(s.source.alerts, alert.Alert{
		ID:        id,
		Timestamp: at,
		Type:      typ,
		SubjectID: subject,
		Payload: alert.Payload{
			AssessmentID:      "as-" + id,
			TestType:          "speed",
			Score:             score,
			Region:            "Kerala",
			RecommendedSports: []string{"athletics"},
		},
	})
}

func (s *GeneratorSuite) TestSummaryCountsWindowOnly() {
	s.add("1", "ath-1", alert.TypeNewTalent, 70, s.day.Add(time.Hour))
	s.add("2", "ath-1", alert.TypeEliteThreshold, 90, s.day.Add(2*time.Hour))
	s.add("3", "ath-2", alert.TypeAssessmentMilestone, 40, s.day.Add(3*time.Hour))
	s.add("4", "ath-3", alert.TypeNewTalent, 80, s.day.AddDate(0, 0, 1)) // next day, excluded

	r, err := s.gen.Daily(s.ctx(), s.day.Add(12*time.Hour))
	s.Require().NoError(err)

	s.Equal(TypeDaily, r.Type)
	s.Equal(s.day, r.PeriodStart)
	s.Equal(s.day.AddDate(0, 0, 1), r.PeriodEnd)
	s.Equal(3, r.Summary.AlertCount)
	s.Equal(1, r.Summary.NewTalents)
	s.Equal(3, r.Summary.TotalAssessments)
	s.InDelta(66.7, r.Summary.AverageScore, 0.001)
	s.Equal(map[string]int{"Kerala": 1}, r.Summary.ByRegion)
	s.Equal(map[string]int{"athletics": 1}, r.Summary.BySport)

	s.Require().Len(r.Insights.TopTalents, 1)
	s.Equal(TopTalent{SubjectID: "ath-1", Score: 90, TestType: "speed", Region: "Kerala"}, r.Insights.TopTalents[0])
	s.Equal([]string{"Schedule an evaluation for athlete ath-1"}, r.Actions.Immediate)
	s.Equal("Daily Recruitment Report - 2026-06-03", r.Title)
}

func (s *GeneratorSuite) TestFixedThresholdInsights() {
	// 4 alerts for 1 talent trips the volume risk; 1 talent trips low scouting
	for i := range 4 {
		s.add(fmt.Sprint(i), "ath-1", alert.TypeNewTalent, 50, s.day.Add(time.Duration(i)*time.Hour))
	}

	r, err := s.gen.Daily(s.ctx(), s.day)
	s.Require().NoError(err)

	s.Len(r.Insights.Recommendations, 2)
	s.Contains(r.Insights.Recommendations[0], "Increase scouting")
	s.Contains(r.Insights.Recommendations[1], "foundational training")
	s.Require().NotEmpty(r.Insights.RiskFactors)
	s.Contains(r.Insights.RiskFactors[0], "review threshold configuration")
}

func (s *GeneratorSuite) TestNoVolumeRiskAtExactlyThreeTimes() {
	for i := range 3 {
		s.add(fmt.Sprint(i), "ath-1", alert.TypeNewTalent, 70, s.day.Add(time.Duration(i)*time.Hour))
	}

	r, err := s.gen.Daily(s.ctx(), s.day)
	s.Require().NoError(err)
	s.Empty(r.Insights.RiskFactors)
}

func (s *GeneratorSuite) TestTrendAgainstPreviousWindow() {
	prevDay := s.day.AddDate(0, 0, -1)
	s.add("p1", "ath-1", alert.TypeNewTalent, 70, prevDay.Add(time.Hour))
	s.add("p2", "ath-2", alert.TypeNewTalent, 70, prevDay.Add(2*time.Hour))
	s.add("c1", "ath-3", alert.TypeNewTalent, 70, s.day.Add(time.Hour))

	r, err := s.gen.Daily(s.ctx(), s.day)
	s.Require().NoError(err)
	s.Equal(TrendDown, r.Insights.TrendAnalysis.Direction)
	s.Equal(2, r.Insights.TrendAnalysis.PreviousNewTalents)
}

func (s *GeneratorSuite) TestGenerateIsIdempotent() {
	s.add("1", "ath-1", alert.TypeNewTalent, 70, s.day.Add(time.Hour))

	first, err := s.gen.Daily(s.ctx(), s.day)
	s.Require().NoError(err)

	s.add("2", "ath-2", alert.TypeNewTalent, 70, s.day.Add(2*time.Hour))
	second, err := s.gen.Daily(s.ctx(), s.day)
	s.Require().NoError(err)

	s.Equal(first, second)
	s.Equal(1, second.Summary.AlertCount)

	reports, err := s.gen.List(s.ctx(), "")
	s.Require().NoError(err)
	s.Len(reports, 1)

	entries, err := s.auditStore.List(context.Background(), audit.Filter{DataType: audit.DataReport})
	s.Require().NoError(err)
	s.Len(entries, 1)
}

func (s *GeneratorSuite) TestRejectsEmptyWindow() {
	_, err := s.gen.Generate(s.ctx(), TypeDaily, s.day, s.day)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

	_, err = s.gen.Generate(s.ctx(), Type("hourly"), s.day, s.day.Add(time.Hour))
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *GeneratorSuite) TestGetAndListByType() {
	daily, err := s.gen.Daily(s.ctx(), s.day)
	s.Require().NoError(err)
	_, err = s.gen.Weekly(s.ctx(), s.day)
	s.Require().NoError(err)

	got, err := s.gen.Get(s.ctx(), daily.ID)
	s.Require().NoError(err)
	s.Equal(daily.ID, got.ID)

	weekly, err := s.gen.List(s.ctx(), TypeWeekly)
	s.Require().NoError(err)
	s.Require().Len(weekly, 1)
	s.Equal(TypeWeekly, weekly[0].Type)

	all, err := s.gen.List(s.ctx(), "")
	s.Require().NoError(err)
	s.Equal(TypeWeekly, all[0].Type)

	_, err = s.gen.Get(s.ctx(), "missing")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestWindows(t *testing.T) {
	wed := time.Date(2026, 6, 3, 15, 4, 5, 0, time.UTC)

	week := WeekWindow(wed)
	if got := week.Start; !got.Equal(time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)) || got.Weekday() != time.Sunday {
		t.Fatalf("week start = %v", got)
	}
	if !week.End.Equal(time.Date(2026, 6, 7, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("week end = %v", week.End)
	}

	month := MonthWindow(wed)
	if !month.Start.Equal(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)) || !month.End.Equal(time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("month = %v..%v", month.Start, month.End)
	}

	quarter := QuarterWindow(wed)
	if !quarter.Start.Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)) || !quarter.End.Equal(time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("quarter = %v..%v", quarter.Start, quarter.End)
	}

	year := YearWindow(wed)
	if !year.Start.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) || !year.End.Equal(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("year = %v..%v", year.Start, year.End)
	}

	prev := DayWindow(wed).Previous()
	if !prev.Start.Equal(time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("previous day = %v", prev.Start)
	}
}

func TestStoreRetention(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore(2)
	for i := range 3 {
		_, created, err := store.SaveIfAbsent(ctx, Report{ID: fmt.Sprint(i)})
		if err != nil || !created {
			t.Fatalf("save %d: created=%v err=%v", i, created, err)
		}
	}
	reports, _ := store.List(ctx)
	if len(reports) != 2 || reports[0].ID != "2" || reports[1].ID != "1" {
		t.Fatalf("unexpected retained reports: %+v", reports)
	}
}
