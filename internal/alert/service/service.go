package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"talentgate/internal/alert/channel"
	"talentgate/internal/alert/metrics"
	"talentgate/internal/alert/models"
	"talentgate/internal/audit"
	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/platform/sentinel"
	"talentgate/pkg/platform/upstream"
	"talentgate/pkg/requestcontext"
)

const notificationPurpose = "notification"

// Store persists alerts.
// Error Contract:
// - Get and Update return sentinel.ErrNotFound for unknown ids
// - Update applies mutate atomically; a mutate error leaves the alert unchanged
// - List skips undecodable records
type Store interface {
	Save(ctx context.Context, alert models.Alert) error
	Get(ctx context.Context, id string) (models.Alert, error)
	Update(ctx context.Context, id string, mutate func(*models.Alert) error) (models.Alert, error)
	List(ctx context.Context) ([]models.Alert, error)
}

type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// Service is the alert dispatcher. Alerts are persisted before any delivery
// is attempted, so an alert exists even when every channel fails.
type Service struct {
	store   Store
	senders []channel.Sender
	auditor audit.Recorder
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewService creates a dispatcher delivering over the given channels. The
// channel list is the enabled set; an empty list persists alerts only.
func NewService(store Store, senders []channel.Sender, auditor audit.Recorder, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	svc := &Service{
		store:   store,
		senders: senders,
		auditor: auditor,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Deliver persists the alert and attempts every enabled channel. It reports
// whether at least one channel accepted the alert. Channel failures are
// logged and audited but never returned; only a persistence failure is.
func (s *Service) Deliver(ctx context.Context, alert models.Alert) (bool, error) {
	if strings.TrimSpace(alert.SubjectID) == "" {
		return false, dErrors.New(dErrors.CodeBadRequest, "alert subject is required")
	}
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	if alert.Timestamp.IsZero() {
		alert.Timestamp = requestcontext.Now(ctx)
	}
	alert.Delivered = false
	if alert.ReadBy == nil {
		alert.ReadBy = []string{}
	}

	if err := s.store.Save(ctx, alert); err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist alert")
	}
	s.metrics.IncrementPersisted(string(alert.Type))
	s.recordWrite(ctx, alert, "persisted")

	delivered := false
	for _, sender := range s.senders {
		if s.attempt(ctx, sender, alert) {
			delivered = true
		}
	}

	if !delivered {
		s.metrics.IncrementUndelivered()
		s.logger.WarnContext(ctx, "alert not delivered on any channel",
			"alert_id", alert.ID,
			"channels", len(s.senders),
		)
		return false, nil
	}

	if _, err := s.store.Update(ctx, alert.ID, func(a *models.Alert) error {
		a.Delivered = true
		return nil
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to mark alert delivered",
			"alert_id", alert.ID,
			"error", err,
		)
	}
	return true, nil
}

func (s *Service) attempt(ctx context.Context, sender channel.Sender, alert models.Alert) bool {
	ch := sender.Channel()
	start := time.Now()
	err := sender.Send(ctx, alert.Clone())
	s.metrics.ObserveAttempt(string(ch), err == nil, time.Since(start).Seconds())

	entry := audit.Entry{
		Action:     audit.ActionAccess,
		SubjectIDs: []string{alert.SubjectID},
		DataTypes:  []string{audit.DataNotification},
		Purpose:    notificationPurpose,
		Success:    err == nil,
		Detail:     fmt.Sprintf("channel=%s alert=%s", ch, alert.ID),
	}
	if err != nil {
		entry.Detail += " error=" + string(upstream.CategoryOf(err))
		s.logger.WarnContext(ctx, "alert delivery failed",
			"alert_id", alert.ID,
			"channel", string(ch),
			"category", string(upstream.CategoryOf(err)),
			"error", err,
		)
	}
	s.auditor.Record(ctx, entry)
	return err == nil
}

func (s *Service) recordWrite(ctx context.Context, alert models.Alert, op string) {
	s.auditor.Record(ctx, audit.Entry{
		Action:     audit.ActionWrite,
		SubjectIDs: []string{alert.SubjectID},
		DataTypes:  []string{audit.DataNotification},
		Purpose:    notificationPurpose,
		Success:    true,
		Detail:     fmt.Sprintf("%s alert=%s", op, alert.ID),
	})
}

func (s *Service) Get(ctx context.Context, id string) (models.Alert, error) {
	alert, err := s.store.Get(ctx, id)
	if err != nil {
		return models.Alert{}, translate(err, "get alert")
	}
	return alert, nil
}

// Query returns alerts matching filter, newest first.
func (s *Service) Query(ctx context.Context, filter models.Filter) ([]models.Alert, error) {
	alerts, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list alerts")
	}
	return filter.Apply(alerts), nil
}

// InWindow returns every alert, archived included, with a timestamp in
// [start, end), newest first.
func (s *Service) InWindow(ctx context.Context, start, end time.Time) ([]models.Alert, error) {
	alerts, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list alerts")
	}
	inWindow := make([]models.Alert, 0, len(alerts))
	for _, a := range alerts {
		if a.InWindow(start, end) {
			inWindow = append(inWindow, a)
		}
	}
	return models.Filter{IncludeArchived: true}.Apply(inWindow), nil
}

// MarkRead adds userID to the alert's reader set. Marking twice is a no-op.
func (s *Service) MarkRead(ctx context.Context, id, userID string) (models.Alert, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.Alert{}, dErrors.New(dErrors.CodeBadRequest, "user id is required")
	}
	alert, err := s.store.Update(ctx, id, func(a *models.Alert) error {
		a.MarkReadBy(userID)
		return nil
	})
	if err != nil {
		return models.Alert{}, translate(err, "mark alert read")
	}
	s.recordWrite(ctx, alert, "read by="+userID)
	return alert, nil
}

func (s *Service) Archive(ctx context.Context, id string) (models.Alert, error) {
	alert, err := s.store.Update(ctx, id, func(a *models.Alert) error {
		a.Archived = true
		return nil
	})
	if err != nil {
		return models.Alert{}, translate(err, "archive alert")
	}
	s.recordWrite(ctx, alert, "archived")
	return alert, nil
}

func translate(err error, op string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "alert not found")
	case errors.Is(err, sentinel.ErrCorrupt):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "alert not found")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+op)
	}
}
