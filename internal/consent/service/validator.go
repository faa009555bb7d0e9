package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"talentgate/internal/audit"
	"talentgate/internal/consent/metrics"
	"talentgate/internal/consent/models"
	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/platform/sentinel"
	pstrings "talentgate/pkg/platform/strings"
	"talentgate/pkg/requestcontext"
)

const (
	defaultBatchSize   = 10
	defaultConcurrency = 4
)

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithBatchSize sets how many subjects are checked per batch.
func WithBatchSize(n int) ValidatorOption {
	return func(v *Validator) {
		if n > 0 {
			v.batchSize = n
		}
	}
}

// WithConcurrency bounds concurrent store reads within a batch.
func WithConcurrency(n int) ValidatorOption {
	return func(v *Validator) {
		if n > 0 {
			v.concurrency = n
		}
	}
}

// WithFailOpen allows subjects whose record could not be read. Only the demo
// analytics path enables this; every such allow is logged and counted.
func WithFailOpen() ValidatorOption {
	return func(v *Validator) {
		v.failOpen = true
	}
}

// WithValidatorMetrics sets the metrics instance.
func WithValidatorMetrics(m *metrics.Metrics) ValidatorOption {
	return func(v *Validator) {
		v.metrics = m
	}
}

// Validator partitions subjects into allowed and denied for a purpose. Its
// only side effect is the audit entry written per call.
type Validator struct {
	store       Store
	auditor     audit.Recorder
	metrics     *metrics.Metrics
	logger      *slog.Logger
	batchSize   int
	concurrency int
	failOpen    bool
}

func NewValidator(store Store, auditor audit.Recorder, logger *slog.Logger, opts ...ValidatorOption) *Validator {
	v := &Validator{
		store:       store,
		auditor:     auditor,
		logger:      logger,
		batchSize:   defaultBatchSize,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

type decision struct {
	allowed bool
	reason  string
}

// Validate checks every subject against the scope the purpose maps to.
// Ids are trimmed; blanks are dropped and duplicates checked once. A lookup failure denies only that subject.
func (v *Validator) Validate(ctx context.Context, actorID string, subjectIDs []string, purpose models.Purpose) *models.ValidationResult {
	subjects := pstrings.DedupeAndTrim(subjectIDs)
	now := requestcontext.Now(ctx)
	decisions := make([]decision, len(subjects))

	for start := 0; start < len(subjects); start += v.batchSize {
		end := min(start+v.batchSize, len(subjects))
		var g errgroup.Group
		g.SetLimit(v.concurrency)
		for i := start; i < end; i++ {
			g.Go(func() error {
				decisions[i] = v.decide(ctx, subjects[i], purpose, now)
				return nil
			})
		}
		_ = g.Wait() //nolint:errcheck // workers never return errors
	}

	result := &models.ValidationResult{
		Allowed: make([]string, 0, len(subjects)),
		Denied:  make([]string, 0),
		Reasons: make(map[string]string),
	}
	scope := string(purpose.Scope())
	for i, subjectID := range subjects {
		d := decisions[i]
		if d.allowed {
			result.Allowed = append(result.Allowed, subjectID)
			v.metrics.IncrementCheck(scope, "allowed")
			continue
		}
		result.Denied = append(result.Denied, subjectID)
		result.Reasons[subjectID] = d.reason
		v.metrics.IncrementCheck(scope, "denied")
	}
	v.metrics.ObserveBatch(len(subjects))

	v.auditor.Record(ctx, audit.Entry{
		Action:     audit.ActionAccess,
		ActorID:    actorID,
		SubjectIDs: subjects,
		DataTypes:  []string{audit.DataConsent},
		Purpose:    string(purpose),
		Success:    len(result.Denied) == 0,
		Detail:     fmt.Sprintf("allowed=%d denied=%d", len(result.Allowed), len(result.Denied)),
	})
	return result
}

// Check gates a single subject. It returns a CodeConsentExpired or
// CodeConsentDenied domain error carrying the denial reason.
func (v *Validator) Check(ctx context.Context, subjectID string, purpose models.Purpose) error {
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "subject ID required")
	}
	result := v.Validate(ctx, requestcontext.ActorID(ctx), []string{subjectID}, purpose)
	if len(result.Allowed) == 1 {
		return nil
	}
	reason := result.Reasons[subjectID]
	if reason == models.ReasonExpired {
		return dErrors.New(dErrors.CodeConsentExpired, reason)
	}
	return dErrors.New(dErrors.CodeConsentDenied, reason)
}

func (v *Validator) decide(ctx context.Context, subjectID string, purpose models.Purpose, now time.Time) decision {
	record, err := v.store.Get(ctx, subjectID)
	switch {
	case err == nil:
	case errors.Is(err, sentinel.ErrNotFound):
		return decision{reason: models.ReasonNoRecord}
	case errors.Is(err, sentinel.ErrCorrupt):
		v.warn(ctx, "consent record unreadable, treating as absent", subjectID, err)
		return decision{reason: models.ReasonNoRecord}
	default:
		if v.failOpen {
			v.metrics.IncrementFailOpen()
			v.warn(ctx, "consent lookup failed, allowing under fail-open policy", subjectID, err)
			return decision{allowed: true}
		}
		v.warn(ctx, "consent lookup failed", subjectID, err)
		return decision{reason: models.ReasonLookupFailed}
	}

	if !record.Scopes.Allows(purpose.Scope()) {
		return decision{reason: models.ReasonNoConsentFor(purpose)}
	}
	if record.IsExpired(now) {
		return decision{reason: models.ReasonExpired}
	}
	return decision{allowed: true}
}

func (v *Validator) warn(ctx context.Context, msg, subjectID string, err error) {
	if v.logger == nil {
		return
	}
	v.logger.WarnContext(ctx, msg,
		"subject_id", subjectID,
		"error", err,
	)
}
