package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"talentgate/internal/athlete"
	"talentgate/internal/audit"
	consent "talentgate/internal/consent/models"
	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/platform/sentinel"
	pstrings "talentgate/pkg/platform/strings"
	"talentgate/pkg/requestcontext"
)

const (
	defaultBatchSize   = 10
	defaultConcurrency = 4
)

// ConsentValidator partitions subjects by consent for a purpose.
type ConsentValidator interface {
	Validate(ctx context.Context, actorID string, subjectIDs []string, purpose consent.Purpose) *consent.ValidationResult
}

// Submitter sends one record to the registry.
type Submitter interface {
	Submit(ctx context.Context, record Record) (Receipt, error)
}

type SyncOption func(*Syncer)

func WithBatchSize(n int) SyncOption {
	return func(s *Syncer) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

func WithConcurrency(n int) SyncOption {
	return func(s *Syncer) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// Syncer pushes consented athletes to the registry in batches.
type Syncer struct {
	client      Submitter
	consent     ConsentValidator
	profiles    athlete.ProfileSource
	assessments athlete.AssessmentSource
	auditor     audit.Recorder
	logger      *slog.Logger
	batchSize   int
	concurrency int
}

func NewSyncer(client Submitter, consent ConsentValidator, profiles athlete.ProfileSource, assessments athlete.AssessmentSource, auditor audit.Recorder, logger *slog.Logger, opts ...SyncOption) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Syncer{
		client:      client,
		consent:     consent,
		profiles:    profiles,
		assessments: assessments,
		auditor:     auditor,
		logger:      logger,
		batchSize:   defaultBatchSize,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BatchSync validates sai_sync consent for every subject, then submits the
// allowed ones batch by batch. A failing subject never aborts the batch.
func (s *Syncer) BatchSync(ctx context.Context, actorID string, subjectIDs []string) (*SyncResult, error) {
	if strings.TrimSpace(actorID) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "actor id required")
	}
	result := &SyncResult{
		Succeeded:     []Receipt{},
		Failed:        make(map[string]string),
		ConsentDenied: make(map[string]string),
	}
	ids := pstrings.DedupeAndTrim(subjectIDs)
	if len(ids) == 0 {
		return result, nil
	}

	validation := s.consent.Validate(ctx, actorID, ids, consent.PurposeSAISync)
	for _, id := range validation.Denied {
		result.ConsentDenied[id] = validation.Reasons[id]
	}

	var mu sync.Mutex
	for batch := range slices.Chunk(validation.Allowed, s.batchSize) {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.concurrency)
		for _, id := range batch {
			g.Go(func() error {
				receipt, err := s.syncOne(gctx, id)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					result.Failed[id] = err.Error()
					s.logger.WarnContext(ctx, "registry sync failed", "subject_id", id, "error", err)
					return nil
				}
				result.Succeeded = append(result.Succeeded, receipt)
				return nil
			})
		}
		_ = g.Wait()
	}
	slices.SortFunc(result.Succeeded, func(a, b Receipt) int {
		return strings.Compare(a.SubjectID, b.SubjectID)
	})

	s.auditor.Record(ctx, audit.Entry{
		Action:     audit.ActionSync,
		ActorID:    actorID,
		SubjectIDs: validation.Allowed,
		DataTypes:  []string{audit.DataProfile, audit.DataAssessment},
		Purpose:    string(consent.PurposeSAISync),
		Success:    len(result.Failed) == 0,
		Detail: fmt.Sprintf("succeeded=%d failed=%d consent_denied=%d synthetic=%d",
			len(result.Succeeded), len(result.Failed), len(result.ConsentDenied), countSynthetic(result.Succeeded)),
		RequestID: requestcontext.RequestID(ctx),
	})
	return result, nil
}

func (s *Syncer) syncOne(ctx context.Context, subjectID string) (Receipt, error) {
	profile, err := s.profiles.GetAthleteByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Receipt{}, dErrors.New(dErrors.CodeNotFound, "athlete profile not found")
		}
		return Receipt{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load athlete profile")
	}
	history, err := s.assessments.GetAthleteAssessments(ctx, subjectID)
	if err != nil {
		return Receipt{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load assessments")
	}
	return s.client.Submit(ctx, BuildRecord(profile, history))
}

// BuildRecord summarises a profile and its assessment history. The overall
// score is the rounded mean of the newest score per test type.
func BuildRecord(profile athlete.Profile, history []athlete.Assessment) Record {
	latest := athlete.LatestByType(history)
	record := Record{
		SubjectID:   profile.ID,
		Name:        profile.Name,
		Age:         profile.Age,
		Region:      profile.Region(),
		Sports:      slices.Clone(profile.Sports),
		Scores:      make(map[string]int, len(latest)),
		Assessments: len(history),
	}
	total := 0
	for t, a := range latest {
		record.Scores[string(t)] = a.Score
		total += a.Score
		if a.Timestamp.After(record.AssessedAt) {
			record.AssessedAt = a.Timestamp
		}
	}
	if n := len(latest); n > 0 {
		record.OverallScore = (total + n/2) / n
	}
	return record
}

func countSynthetic(receipts []Receipt) int {
	n := 0
	for _, r := range receipts {
		if r.Synthetic {
			n++
		}
	}
	return n
}
