// Package seeder fills in-memory stores with demo athletes, consent records
// and a starter notification rule for local runs.
package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"talentgate/internal/athlete"
	consent "talentgate/internal/consent/models"
	notification "talentgate/internal/notification/models"
	"talentgate/pkg/requestcontext"
)

// Directory receives athlete profiles and assessments.
type Directory interface {
	PutProfile(p athlete.Profile)
	AddAssessment(a athlete.Assessment)
}

// ConsentRecorder stores consent records.
type ConsentRecorder interface {
	Record(ctx context.Context, subjectID string, scopes consent.Scopes, retentionYears int) (*consent.Record, error)
}

// RuleWriter stores notification rules.
type RuleWriter interface {
	Upsert(ctx context.Context, id string, req *notification.RuleRequest) (notification.Rule, error)
}

// DemoRuleID is the id of the seeded rule, so reseeding replaces it.
const DemoRuleID = "demo-elite-scouting"

type Seeder struct {
	directory Directory
	consent   ConsentRecorder
	rules     RuleWriter
	logger    *slog.Logger
}

func New(directory Directory, consent ConsentRecorder, rules RuleWriter, logger *slog.Logger) *Seeder {
	return &Seeder{directory: directory, consent: consent, rules: rules, logger: logger}
}

type demoAthlete struct {
	id       string
	name     string
	age      int
	location string
	sports   []string
	scores   [2]int // earlier and latest speed score
	scopes   consent.Scopes
}

var demoAthletes = []demoAthlete{
	{"ath-001", "Priya Sharma", 16, "Pune, Pune, Maharashtra", []string{"athletics"}, [2]int{74, 91},
		consent.Scopes{DataSharing: true, TalentIdentification: true, PerformanceAnalytics: true, ContactPermission: true}},
	{"ath-002", "Arjun Singh", 17, "Ludhiana, Ludhiana, Punjab", []string{"football", "athletics"}, [2]int{68, 72},
		consent.Scopes{TalentIdentification: true, PerformanceAnalytics: true}},
	{"ath-003", "Meera Nair", 15, "Kochi, Ernakulam, Kerala", []string{"swimming"}, [2]int{80, 84},
		consent.Scopes{PerformanceAnalytics: true}},
	{"ath-004", "Kabir Das", 14, "Guwahati, Kamrup, Assam", []string{"boxing"}, [2]int{55, 62},
		consent.Scopes{}},
}

// SeedAll writes the demo data set. Assessment timestamps are relative to
// the request time in ctx.
func (s *Seeder) SeedAll(ctx context.Context) error {
	s.logger.InfoContext(ctx, "seeding demo data")
	now := requestcontext.Now(ctx)

	for _, a := range demoAthletes {
		s.directory.PutProfile(athlete.Profile{
			ID:       a.id,
			Name:     a.name,
			Age:      a.age,
			Location: a.location,
			Sports:   a.sports,
		})
		for i, score := range a.scores {
			s.directory.AddAssessment(athlete.Assessment{
				ID:        fmt.Sprintf("%s-speed-%d", a.id, i+1),
				SubjectID: a.id,
				TestType:  athlete.TestSpeed,
				Score:     score,
				Timestamp: now.Add(time.Duration(i-len(a.scores)) * 24 * time.Hour),
			})
		}
		if _, err := s.consent.Record(ctx, a.id, a.scopes, 2); err != nil {
			return fmt.Errorf("seed consent for %s: %w", a.id, err)
		}
	}

	req := &notification.RuleRequest{
		Name: "Elite sprinters",
		Conditions: notification.Conditions{
			MinScore:             85,
			ImprovementThreshold: 10,
			EliteThresholdAlert:  true,
			NewAssessmentAlert:   true,
		},
		Recipients: []string{"scouting-desk"},
	}
	req.Normalize()
	if _, err := s.rules.Upsert(ctx, DemoRuleID, req); err != nil {
		return fmt.Errorf("seed rule: %w", err)
	}

	s.logger.InfoContext(ctx, "demo data seeded",
		"athletes", len(demoAthletes),
		"rule_id", DemoRuleID,
	)
	return nil
}
