package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"talentgate/internal/audit"
	consent "talentgate/internal/consent/models"
	"talentgate/internal/notification/metrics"
	"talentgate/internal/notification/models"
	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/platform/sentinel"
	"talentgate/pkg/requestcontext"
)

// Store persists notification rules.
// Error Contract:
// - Get and SetActive return sentinel.ErrNotFound for unknown ids
type Store interface {
	Save(ctx context.Context, rule models.Rule) error
	Get(ctx context.Context, id string) (models.Rule, error)
	List(ctx context.Context) ([]models.Rule, error)
	SetActive(ctx context.Context, id string, active bool) (models.Rule, error)
}

// ConsentChecker gates a single subject for a purpose.
type ConsentChecker interface {
	Check(ctx context.Context, subjectID string, purpose consent.Purpose) error
}

const ruleConfigPurpose = "rule_config"

type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// Service manages rules and evaluates them against scored assessments.
type Service struct {
	store   Store
	consent ConsentChecker
	auditor audit.Recorder
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewService(store Store, consent ConsentChecker, auditor audit.Recorder, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	svc := &Service{store: store, consent: consent, auditor: auditor, logger: logger}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Upsert creates the rule when id is empty and replaces it otherwise.
func (s *Service) Upsert(ctx context.Context, id string, req *models.RuleRequest) (models.Rule, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	}
	rule := req.ToRule(id)
	rule.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.Save(ctx, rule); err != nil {
		return models.Rule{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save rule")
	}
	s.logger.InfoContext(ctx, "notification rule saved",
		"rule_id", rule.ID,
		"active", rule.Active,
	)
	s.recordChange(ctx, fmt.Sprintf("saved rule=%s active=%t", rule.ID, rule.Active))
	return rule, nil
}

func (s *Service) Get(ctx context.Context, id string) (models.Rule, error) {
	rule, err := s.store.Get(ctx, id)
	if err != nil {
		return models.Rule{}, translate(err, "get rule")
	}
	return rule, nil
}

func (s *Service) List(ctx context.Context) ([]models.Rule, error) {
	rules, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list rules")
	}
	return rules, nil
}

func (s *Service) SetActive(ctx context.Context, id string, active bool) (models.Rule, error) {
	rule, err := s.store.SetActive(ctx, id, active)
	if err != nil {
		return models.Rule{}, translate(err, "update rule")
	}
	s.recordChange(ctx, fmt.Sprintf("set rule=%s active=%t", rule.ID, rule.Active))
	return rule, nil
}

func (s *Service) recordChange(ctx context.Context, detail string) {
	s.auditor.Record(ctx, audit.Entry{
		Action:    audit.ActionWrite,
		DataTypes: []string{audit.DataNotification},
		Purpose:   ruleConfigPurpose,
		Success:   true,
		Detail:    detail,
	})
}

func translate(err error, op string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "rule not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+op)
}
