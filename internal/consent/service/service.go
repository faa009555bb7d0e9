package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mssola/useragent"

	"talentgate/internal/audit"
	"talentgate/internal/consent/metrics"
	"talentgate/internal/consent/models"
	"talentgate/internal/privacy"
	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/platform/sentinel"
	"talentgate/pkg/requestcontext"
)

// Store defines the persistence interface for consent records.
// Error Contract:
// - Get returns sentinel.ErrNotFound when no record exists
// - Get returns sentinel.ErrCorrupt when the stored record cannot be decoded
// - Other methods return nil on success or wrapped errors on failure
type Store interface {
	Upsert(ctx context.Context, record *models.Record) error
	Get(ctx context.Context, subjectID string) (*models.Record, error)
	Delete(ctx context.Context, subjectID string) (bool, error)
	List(ctx context.Context) ([]*models.Record, error)
}

type Option func(*Service)

// Service owns consent records: one per subject, replaced wholesale on every
// submission. There is no version history; each overwrite is visible only
// through its audit entry.
type Service struct {
	store   Store
	auditor audit.Recorder
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewService(store Store, auditor audit.Recorder, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:   store,
		auditor: auditor,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// WithMetrics sets the metrics instance for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// Record stores the subject's consent, replacing any prior record, and stamps
// it with the request time and the caller's issuing context.
func (s *Service) Record(ctx context.Context, subjectID string, scopes models.Scopes, retentionYears int) (*models.Record, error) {
	now := requestcontext.Now(ctx)
	record, err := models.NewRecord(subjectID, scopes, retentionYears, now, issuingContext(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.store.Upsert(ctx, record); err != nil {
		s.auditor.Record(ctx, audit.Entry{
			Action:     audit.ActionConsent,
			SubjectIDs: []string{subjectID},
			DataTypes:  []string{audit.DataConsent},
			Success:    false,
			Detail:     "store write failed",
		})
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save consent")
	}

	s.metrics.IncrementRecorded()
	s.auditor.Record(ctx, audit.Entry{
		Action:     audit.ActionConsent,
		SubjectIDs: []string{subjectID},
		DataTypes:  []string{audit.DataConsent},
		Success:    true,
		Detail:     scopeSummary(scopes, retentionYears),
	})
	if s.logger != nil {
		s.logger.InfoContext(ctx, "consent recorded",
			"subject_id", subjectID,
			"retention_years", retentionYears,
		)
	}
	return record, nil
}

// Get returns the subject's consent record. A record that cannot be decoded
// is reported as not found and logged.
func (s *Service) Get(ctx context.Context, subjectID string) (*models.Record, error) {
	record, err := s.store.Get(ctx, subjectID)
	switch {
	case err == nil:
		return record, nil
	case errors.Is(err, sentinel.ErrNotFound):
		return nil, dErrors.New(dErrors.CodeNotFound, "consent not found")
	case errors.Is(err, sentinel.ErrCorrupt):
		if s.logger != nil {
			s.logger.WarnContext(ctx, "consent record unreadable, treating as absent",
				"subject_id", subjectID,
				"error", err,
			)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "consent not found")
	default:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read consent")
	}
}

// Delete erases the subject's consent record.
func (s *Service) Delete(ctx context.Context, subjectID string) error {
	existed, err := s.store.Delete(ctx, subjectID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete consent")
	}
	if !existed {
		return dErrors.New(dErrors.CodeNotFound, "consent not found")
	}

	s.metrics.IncrementDeleted("erasure", 1)
	s.auditor.Record(ctx, audit.Entry{
		Action:     audit.ActionDelete,
		SubjectIDs: []string{subjectID},
		DataTypes:  []string{audit.DataConsent},
		Purpose:    "erasure",
		Success:    true,
	})
	return nil
}

// PurgeExpired removes every record whose retention window has elapsed and
// returns the purged subject ids. Running it twice for the same instant
// purges nothing the second time.
func (s *Service) PurgeExpired(ctx context.Context) ([]string, error) {
	now := requestcontext.Now(ctx)
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list consents")
	}

	var purged []string
	for _, record := range records {
		if !record.IsExpired(now) {
			continue
		}
		existed, err := s.store.Delete(ctx, record.SubjectID)
		if err != nil {
			if s.logger != nil {
				s.logger.WarnContext(ctx, "failed to purge expired consent",
					"subject_id", record.SubjectID,
					"error", err,
				)
			}
			continue
		}
		if existed {
			purged = append(purged, record.SubjectID)
		}
	}

	if len(purged) > 0 {
		s.metrics.IncrementDeleted("retention", len(purged))
		s.auditor.Record(ctx, audit.Entry{
			Action:     audit.ActionDelete,
			SubjectIDs: purged,
			DataTypes:  []string{audit.DataConsent},
			Purpose:    "retention",
			Success:    true,
			Detail:     fmt.Sprintf("purged %d expired consent records", len(purged)),
		})
	}
	return purged, nil
}

func issuingContext(ctx context.Context) models.IssuingContext {
	ip := requestcontext.ClientIP(ctx)
	ua := requestcontext.UserAgent(ctx)
	issuing := models.IssuingContext{
		IPAddress:    ip,
		AnonymizedIP: privacy.AnonymizeIP(ip),
		UserAgent:    ua,
	}
	if ua != "" {
		parsed := useragent.New(ua)
		name, version := parsed.Browser()
		if name != "" {
			issuing.Browser = name + " " + version
		}
		issuing.OS = parsed.OS()
		issuing.Mobile = parsed.Mobile()
	}
	return issuing
}

func scopeSummary(s models.Scopes, retentionYears int) string {
	return fmt.Sprintf("dataSharing=%t talentIdentification=%t performanceAnalytics=%t contactPermission=%t retentionYears=%d",
		s.DataSharing, s.TalentIdentification, s.PerformanceAnalytics, s.ContactPermission, retentionYears)
}
