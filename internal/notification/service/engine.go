package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	alert "talentgate/internal/alert/models"
	"talentgate/internal/athlete"
	consent "talentgate/internal/consent/models"
	"talentgate/internal/notification/models"
	"talentgate/internal/scoring"
	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/requestcontext"
)

// Input is one scored assessment presented to the rule engine.
type Input struct {
	Assessment      athlete.Assessment
	Profile         athlete.Profile
	Evaluation      scoring.Evaluation
	AssessmentCount int
}

var actionItems = map[alert.Type][]string{
	alert.TypeNewTalent: {
		"Review full assessment results",
		"Schedule a follow-up assessment",
	},
	alert.TypeScoreImprovement: {
		"Review training progress",
		"Contact the athlete's coach",
		"Consider advanced training programs",
	},
	alert.TypeEliteThreshold: {
		"Schedule an immediate evaluation",
		"Contact the athlete and guardians",
		"Prepare a recruitment package",
	},
	alert.TypeRecruitmentOpportunity: {
		"Review sport fit with the scouting team",
		"Arrange a trial session",
	},
	alert.TypeAssessmentMilestone: {
		"Review the long-term progress report",
	},
}

// Evaluate runs every active rule against the assessment and returns the
// alerts to dispatch. Subjects without contact permission produce no alerts
// and no error.
func (s *Service) Evaluate(ctx context.Context, in Input) ([]alert.Alert, error) {
	rules, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list rules")
	}
	active := slices.DeleteFunc(rules, func(r models.Rule) bool { return !r.Active })
	if len(active) == 0 {
		return nil, nil
	}

	if err := s.consent.Check(ctx, in.Assessment.SubjectID, consent.PurposeContact); err != nil {
		s.metrics.IncrementConsentSkip()
		s.logger.DebugContext(ctx, "skipping notification rules without contact permission",
			"subject_id", in.Assessment.SubjectID,
			"reason", err.Error(),
		)
		return nil, nil
	}
	s.metrics.AddEvaluated(len(active))

	subject := models.Subject{
		Score:             in.Assessment.Score,
		Age:               in.Profile.Age,
		Sports:            in.Profile.Sports,
		Region:            in.Profile.Region(),
		RecommendedSports: in.Evaluation.Metrics.RecommendedSports,
	}
	events := triggeringEvents(in)
	pct := in.Evaluation.Progress.ImprovementPercent()

	var alerts []alert.Alert
	for _, rule := range active {
		if !rule.Conditions.Matches(subject) {
			continue
		}
		for _, event := range events {
			if !rule.Conditions.Fires(event, in.Assessment.Score, pct) {
				continue
			}
			a := s.build(ctx, rule, event, in, subject, pct)
			s.metrics.IncrementRaised(string(a.Type))
			alerts = append(alerts, a)
		}
	}
	return alerts, nil
}

func triggeringEvents(in Input) []models.Event {
	events := []models.Event{models.EventNewAssessment}
	if in.Evaluation.Progress.HasPrevious && in.Evaluation.Progress.Improvement > 0 {
		events = append(events, models.EventScoreImprovement)
	}
	if in.Assessment.Score >= models.EliteThreshold {
		events = append(events, models.EventEliteThreshold)
	}
	return events
}

func alertType(rule models.Rule, event models.Event, in Input, subject models.Subject) alert.Type {
	switch event {
	case models.EventScoreImprovement:
		return alert.TypeScoreImprovement
	case models.EventEliteThreshold:
		return alert.TypeEliteThreshold
	}
	if rule.Conditions.RecruitmentMatch(subject.RecommendedSports) {
		return alert.TypeRecruitmentOpportunity
	}
	if models.IsMilestone(in.AssessmentCount) {
		return alert.TypeAssessmentMilestone
	}
	return alert.TypeNewTalent
}

func (s *Service) build(ctx context.Context, rule models.Rule, event models.Event, in Input, subject models.Subject, pct float64) alert.Alert {
	typ := alertType(rule, event, in, subject)
	actionRequired := pct > models.ActionImprovementPercent || event == models.EventEliteThreshold
	priority := rule.Priority
	if priority == "" {
		priority = alert.PriorityMedium
	}
	if actionRequired {
		priority = alert.PriorityHigh
	}

	scores := make(map[string]int, len(in.Evaluation.Metrics.CategoryScores))
	for tt, score := range in.Evaluation.Metrics.CategoryScores {
		scores[string(tt)] = score
	}

	title, message := describe(typ, in, pct)
	return alert.Alert{
		ID:        uuid.NewString(),
		Timestamp: requestcontext.Now(ctx),
		Type:      typ,
		Priority:  priority,
		SubjectID: in.Assessment.SubjectID,
		RuleID:    rule.ID,
		Title:     title,
		Message:   message,
		Payload: alert.Payload{
			AssessmentID:       in.Assessment.ID,
			TestType:           string(in.Assessment.TestType),
			Score:              in.Assessment.Score,
			Scores:             scores,
			Percentile:         in.Evaluation.Metrics.Percentile,
			ImprovementPercent: pct,
			Location:           in.Profile.Location,
			Region:             subject.Region,
			Age:                in.Profile.Age,
			RecommendedSports:  slices.Clone(subject.RecommendedSports),
			AssessmentCount:    in.AssessmentCount,
		},
		ActionRequired: actionRequired,
		ActionItems:    slices.Clone(actionItems[typ]),
		Recipients:     slices.Clone(rule.Recipients),
		ReadBy:         []string{},
	}
}

func describe(typ alert.Type, in Input, pct float64) (string, string) {
	test := string(in.Assessment.TestType)
	score := in.Assessment.Score
	switch typ {
	case alert.TypeEliteThreshold:
		return "Elite Performance Detected",
			fmt.Sprintf("Athlete reached elite level with %d in %s (percentile %d)", score, test, in.Evaluation.Metrics.Percentile)
	case alert.TypeScoreImprovement:
		return "Significant Improvement",
			fmt.Sprintf("Athlete improved %s by %.1f%% to %d", test, pct, score)
	case alert.TypeRecruitmentOpportunity:
		return "Recruitment Opportunity",
			fmt.Sprintf("Athlete profile fits %s after scoring %d in %s", strings.Join(in.Evaluation.Metrics.RecommendedSports, ", "), score, test)
	case alert.TypeAssessmentMilestone:
		return "Assessment Milestone",
			fmt.Sprintf("Athlete completed %d assessments", in.AssessmentCount)
	default:
		return "New Talent Identified",
			fmt.Sprintf("New %s assessment scored %d", test, score)
	}
}
