package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	alert "talentgate/internal/alert/models"
	"talentgate/internal/athlete"
	"talentgate/internal/audit"
	consent "talentgate/internal/consent/models"
	notification "talentgate/internal/notification/service"
	"talentgate/internal/privacy"
	"talentgate/internal/scoring"
	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/platform/sentinel"
	pstrings "talentgate/pkg/platform/strings"
	"talentgate/pkg/requestcontext"
)

// AccessValidator decides consent for subjects and purposes.
type AccessValidator interface {
	Validate(ctx context.Context, actorID string, subjectIDs []string, purpose consent.Purpose) *consent.ValidationResult
	Check(ctx context.Context, subjectID string, purpose consent.Purpose) error
}

// Scorer evaluates an assessment against history.
type Scorer interface {
	Evaluate(assessment athlete.Assessment, history []athlete.Assessment, sportCategories []string) (scoring.Evaluation, error)
}

// Anonymizer de-identifies athlete data.
type Anonymizer interface {
	Anonymize(ctx context.Context, profile athlete.Profile, assessments []athlete.Assessment, flags privacy.Flags) (privacy.Record, error)
	AnonymizeBatch(ctx context.Context, subjects []privacy.Subject, flags privacy.Flags) privacy.BatchResult
}

// RuleEvaluator turns a scored assessment into alerts.
type RuleEvaluator interface {
	Evaluate(ctx context.Context, in notification.Input) ([]alert.Alert, error)
}

// Dispatcher persists and delivers alerts.
type Dispatcher interface {
	Deliver(ctx context.Context, a alert.Alert) (bool, error)
}

type Option func(*Pipeline)

// WithAnonymizationFlags overrides the flags used for anonymized access and
// anonymized exports. The default applies every transformation.
func WithAnonymizationFlags(f privacy.Flags) Option {
	return func(p *Pipeline) {
		p.flags = f
	}
}

// Pipeline wires the analytics components together.
type Pipeline struct {
	assessments athlete.AssessmentSource
	profiles    athlete.ProfileSource
	scorer      Scorer
	access      AccessValidator
	anonymizer  Anonymizer
	rules       RuleEvaluator
	dispatcher  Dispatcher
	auditor     audit.Recorder
	logger      *slog.Logger
	flags       privacy.Flags
}

func New(
	assessments athlete.AssessmentSource,
	profiles athlete.ProfileSource,
	scorer Scorer,
	access AccessValidator,
	anonymizer Anonymizer,
	rules RuleEvaluator,
	dispatcher Dispatcher,
	auditor audit.Recorder,
	logger *slog.Logger,
	opts ...Option,
) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		assessments: assessments,
		profiles:    profiles,
		scorer:      scorer,
		access:      access,
		anonymizer:  anonymizer,
		rules:       rules,
		dispatcher:  dispatcher,
		auditor:     auditor,
		logger:      logger,
		flags:       privacy.AllFlags(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessAssessment scores an assessment and gates the result on the
// subject's talent identification consent. Without it, an anonymized summary
// is produced when performance analytics consent exists. Rules are evaluated
// and alerts delivered only with full access. Notification and delivery
// failures are logged and never fail the call.
func (p *Pipeline) ProcessAssessment(ctx context.Context, actorID, assessmentID string) (*Outcome, error) {
	assessmentID = strings.TrimSpace(assessmentID)
	if assessmentID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "assessment id required")
	}
	assessment, err := p.assessments.GetAssessmentByID(ctx, assessmentID)
	if err != nil {
		return nil, translate(err, "assessment")
	}
	profile, err := p.profiles.GetAthleteByID(ctx, assessment.SubjectID)
	if err != nil {
		return nil, translate(err, "athlete profile")
	}
	history, err := p.assessments.GetAthleteAssessments(ctx, assessment.SubjectID)
	if err != nil {
		return nil, translate(err, "assessment history")
	}

	evaluation, err := p.scorer.Evaluate(assessment, history, profile.Sports)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{
		AssessmentID: assessment.ID,
		SubjectID:    assessment.SubjectID,
		Alerts:       []DeliveredAlert{},
	}

	validation := p.access.Validate(ctx, actorID, []string{assessment.SubjectID}, consent.PurposeTalentIdentification)
	if len(validation.Allowed) == 0 {
		outcome.Reason = validation.Reasons[assessment.SubjectID]
		if err := p.access.Check(ctx, assessment.SubjectID, consent.PurposePerformanceAnalytics); err != nil {
			outcome.Access = AccessDenied
			p.logger.InfoContext(ctx, "assessment withheld",
				"assessment_id", assessment.ID,
				"subject_id", assessment.SubjectID,
				"reason", outcome.Reason,
			)
			return outcome, nil
		}
		record, err := p.anonymizer.Anonymize(ctx, profile, history, p.flags)
		if err != nil {
			return nil, err
		}
		outcome.Access = AccessAnonymized
		outcome.Anonymized = &record
		return outcome, nil
	}

	outcome.Access = AccessFull
	outcome.Evaluation = &evaluation
	outcome.Alerts = p.notify(ctx, notification.Input{
		Assessment:      assessment,
		Profile:         profile,
		Evaluation:      evaluation,
		AssessmentCount: len(history),
	})
	return outcome, nil
}

func (p *Pipeline) notify(ctx context.Context, in notification.Input) []DeliveredAlert {
	alerts, err := p.rules.Evaluate(ctx, in)
	if err != nil {
		p.logger.WarnContext(ctx, "rule evaluation failed",
			"assessment_id", in.Assessment.ID,
			"error", err,
		)
		return []DeliveredAlert{}
	}

	out := make([]DeliveredAlert, 0, len(alerts))
	for _, a := range alerts {
		delivered, err := p.dispatcher.Deliver(ctx, a)
		if err != nil {
			p.logger.WarnContext(ctx, "alert dispatch failed",
				"assessment_id", in.Assessment.ID,
				"alert_type", a.Type,
				"error", err,
			)
			continue
		}
		out = append(out, DeliveredAlert{Alert: a, Delivered: delivered})
	}
	return out
}

// Export returns consented athlete data. Subjects without export consent are
// left out and listed in the metadata; anonymize replaces full records with
// de-identified ones. One "export" audit entry is written per call.
func (p *Pipeline) Export(ctx context.Context, actorID string, subjectIDs []string, anonymize bool) (*Export, error) {
	if strings.TrimSpace(actorID) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "actor id required")
	}
	ids := pstrings.DedupeAndTrim(subjectIDs)
	if len(ids) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "at least one subject id required")
	}

	meta := ExportMetadata{
		ConsentValidated: true,
		Anonymized:       anonymize,
		Requested:        len(ids),
		ConsentDenied:    make(map[string]string),
		Failed:           make(map[string]string),
		ExportedAt:       requestcontext.Now(ctx),
	}
	validation := p.access.Validate(ctx, actorID, ids, consent.PurposeExport)
	for _, id := range validation.Denied {
		meta.ConsentDenied[id] = validation.Reasons[id]
	}

	subjects := make([]privacy.Subject, 0, len(validation.Allowed))
	for _, id := range validation.Allowed {
		subject, err := p.load(ctx, id)
		if err != nil {
			meta.Failed[id] = err.Error()
			p.logger.WarnContext(ctx, "export skipped subject", "subject_id", id, "error", err)
			continue
		}
		subjects = append(subjects, subject)
	}

	export := &Export{}
	included := make([]string, 0, len(subjects))
	if anonymize {
		batch := p.anonymizer.AnonymizeBatch(ctx, subjects, p.flags)
		for id, reason := range batch.Failed {
			meta.Failed[id] = reason
		}
		for _, s := range subjects {
			if _, failed := batch.Failed[s.Profile.ID]; !failed {
				included = append(included, s.Profile.ID)
			}
		}
		export.Data = batch.Records
		meta.RecordCount = len(batch.Records)
	} else {
		records := make([]ExportRecord, 0, len(subjects))
		for _, s := range subjects {
			records = append(records, ExportRecord{Profile: s.Profile, Assessments: s.Assessments})
			included = append(included, s.Profile.ID)
		}
		export.Data = records
		meta.RecordCount = len(records)
	}
	export.Metadata = meta

	p.auditor.Record(ctx, audit.Entry{
		Action:     audit.ActionExport,
		ActorID:    actorID,
		SubjectIDs: included,
		DataTypes:  []string{audit.DataProfile, audit.DataAssessment},
		Purpose:    string(consent.PurposeExport),
		Success:    true,
		Detail: fmt.Sprintf("records=%d anonymized=%t denied=%d failed=%d",
			meta.RecordCount, anonymize, len(meta.ConsentDenied), len(meta.Failed)),
		RequestID: requestcontext.RequestID(ctx),
	})
	return export, nil
}

func (p *Pipeline) load(ctx context.Context, subjectID string) (privacy.Subject, error) {
	profile, err := p.profiles.GetAthleteByID(ctx, subjectID)
	if err != nil {
		return privacy.Subject{}, translate(err, "athlete profile")
	}
	history, err := p.assessments.GetAthleteAssessments(ctx, subjectID)
	if err != nil {
		return privacy.Subject{}, translate(err, "assessment history")
	}
	return privacy.Subject{Profile: profile, Assessments: history}, nil
}

func translate(err error, what string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, what+" not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load "+what)
}
