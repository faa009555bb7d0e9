// Package privacy de-identifies athlete data for aggregate analytics when
// full detail is not authorized.
package privacy

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"

	"talentgate/internal/athlete"
	"talentgate/internal/audit"
	"talentgate/internal/scoring"
	dErrors "talentgate/pkg/domain-errors"
	pstrings "talentgate/pkg/platform/strings"
)

const (
	hashPrefix         = "anon_"
	hashBytes          = 8
	defaultBatchSize   = 10
	defaultConcurrency = 4
)

// Flags select which transformations apply. Each is independent.
type Flags struct {
	HashIdentifiers    bool `json:"hashIdentifiers"`
	GeneralizeLocation bool `json:"generalizeLocation"`
	BucketAge          bool `json:"bucketAge"`
	BucketScores       bool `json:"bucketScores"`
}

// AllFlags enables every transformation.
func AllFlags() Flags {
	return Flags{HashIdentifiers: true, GeneralizeLocation: true, BucketAge: true, BucketScores: true}
}

// AssessmentSummary condenses an athlete's assessments. When scores are
// bucketed only the range fields are set; otherwise only the exact ones.
type AssessmentSummary struct {
	TotalAssessments int    `json:"totalAssessments"`
	ScoreRange       string `json:"scoreRange,omitempty"`
	PercentileRange  string `json:"percentileRange,omitempty"`
	AverageScore     *int   `json:"averageScore,omitempty"`
	Percentile       *int   `json:"percentile,omitempty"`
	PerformanceLevel string `json:"performanceLevel"`
}

// Record is the de-identified view of one athlete.
type Record struct {
	ID              string            `json:"id"`
	AgeGroup        string            `json:"ageGroup,omitempty"`
	Age             *int              `json:"age,omitempty"`
	Region          string            `json:"region"`
	SportCategories []string          `json:"sportCategories"`
	Summary         AssessmentSummary `json:"assessmentSummary"`
	LastAssessment  string            `json:"lastAssessment,omitempty"`
}

// Subject pairs a profile with its assessments for batch anonymization.
type Subject struct {
	Profile     athlete.Profile
	Assessments []athlete.Assessment
}

// BatchResult holds per-subject outcomes. A failing subject never aborts
// the batch.
type BatchResult struct {
	Records []Record          `json:"records"`
	Failed  map[string]string `json:"failed"`
}

// Option configures an Anonymizer.
type Option func(*Anonymizer)

// WithHashKey keys identifier hashing so hashes cannot be recomputed
// without it. Keys longer than 64 bytes are truncated.
func WithHashKey(key []byte) Option {
	return func(a *Anonymizer) {
		if len(key) > blake2b.Size {
			key = key[:blake2b.Size]
		}
		a.key = slices.Clone(key)
	}
}

// WithBatching sets batch size and per-batch concurrency.
func WithBatching(size, concurrency int) Option {
	return func(a *Anonymizer) {
		if size > 0 {
			a.batchSize = size
		}
		if concurrency > 0 {
			a.concurrency = concurrency
		}
	}
}

type Anonymizer struct {
	auditor     audit.Recorder
	logger      *slog.Logger
	key         []byte
	batchSize   int
	concurrency int
}

func New(auditor audit.Recorder, logger *slog.Logger, opts ...Option) *Anonymizer {
	a := &Anonymizer{
		auditor:     auditor,
		logger:      logger,
		batchSize:   defaultBatchSize,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Anonymize builds the de-identified record for one athlete and writes an
// "anonymize" audit entry. Identical input and flags give identical output.
func (a *Anonymizer) Anonymize(ctx context.Context, profile athlete.Profile, assessments []athlete.Assessment, flags Flags) (Record, error) {
	rec, err := a.build(profile, assessments, flags)
	a.auditor.Record(ctx, audit.Entry{
		Action:     audit.ActionAnonymize,
		SubjectIDs: []string{profile.ID},
		DataTypes:  []string{audit.DataProfile, audit.DataAssessment},
		Purpose:    "analytics",
		Success:    err == nil,
		Detail:     flagSummary(flags),
	})
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// AnonymizeBatch anonymizes subjects in fixed-size batches with bounded
// concurrency. Records keep input order; failures are reported per subject.
func (a *Anonymizer) AnonymizeBatch(ctx context.Context, subjects []Subject, flags Flags) BatchResult {
	records := make([]*Record, len(subjects))
	errs := make([]error, len(subjects))

	for start := 0; start < len(subjects); start += a.batchSize {
		end := min(start+a.batchSize, len(subjects))
		var g errgroup.Group
		g.SetLimit(a.concurrency)
		for i := start; i < end; i++ {
			g.Go(func() error {
				rec, err := a.Anonymize(ctx, subjects[i].Profile, subjects[i].Assessments, flags)
				if err != nil {
					errs[i] = err
					return nil
				}
				records[i] = &rec
				return nil
			})
		}
		_ = g.Wait() //nolint:errcheck // workers never return errors
	}

	result := BatchResult{Records: make([]Record, 0, len(subjects)), Failed: make(map[string]string)}
	for i, rec := range records {
		if rec != nil {
			result.Records = append(result.Records, *rec)
			continue
		}
		id := subjects[i].Profile.ID
		result.Failed[id] = errs[i].Error()
		if a.logger != nil {
			a.logger.WarnContext(ctx, "anonymization failed",
				"subject_id", id,
				"error", errs[i],
			)
		}
	}
	return result
}

// HashID returns the keyed identifier hash.
func (a *Anonymizer) HashID(id string) string {
	h, err := blake2b.New256(a.key)
	if err != nil {
		// Only reachable with a key over 64 bytes, which WithHashKey prevents.
		panic(fmt.Sprintf("blake2b: %v", err))
	}
	h.Write([]byte(id))
	return hashPrefix + hex.EncodeToString(h.Sum(nil)[:hashBytes])
}

func (a *Anonymizer) build(profile athlete.Profile, assessments []athlete.Assessment, flags Flags) (Record, error) {
	if profile.ID == "" {
		return Record{}, dErrors.New(dErrors.CodeBadRequest, "subject ID required")
	}

	rec := Record{
		ID:              profile.ID,
		Region:          profile.Location,
		SportCategories: pstrings.DedupeAndTrimLower(profile.Sports),
		Summary:         summarize(assessments, flags.BucketScores),
	}
	if rec.SportCategories == nil {
		rec.SportCategories = []string{}
	}
	if flags.HashIdentifiers {
		rec.ID = a.HashID(profile.ID)
	}
	if flags.GeneralizeLocation {
		rec.Region = athlete.RegionOf(profile.Location)
	}
	if flags.BucketAge {
		rec.AgeGroup = AgeGroup(profile.Age)
	} else {
		age := profile.Age
		rec.Age = &age
	}
	if last, ok := latest(assessments); ok {
		rec.LastAssessment = last.Timestamp.UTC().Format("2006-01")
	}
	return rec, nil
}

func summarize(assessments []athlete.Assessment, bucket bool) AssessmentSummary {
	s := AssessmentSummary{TotalAssessments: len(assessments), PerformanceLevel: PerformanceLevel(0)}
	if len(assessments) == 0 {
		return s
	}

	var scoreSum, pctSum int
	for _, a := range assessments {
		scoreSum += a.Score
		pctSum += scoring.Percentile(a.Score, a.TestType)
	}
	avg := int(math.Round(float64(scoreSum) / float64(len(assessments))))
	pct := int(math.Round(float64(pctSum) / float64(len(assessments))))

	s.PerformanceLevel = PerformanceLevel(avg)
	if bucket {
		s.ScoreRange = DecadeRange(avg)
		s.PercentileRange = DecadeRange(pct)
	} else {
		s.AverageScore = &avg
		s.Percentile = &pct
	}
	return s
}

func latest(assessments []athlete.Assessment) (athlete.Assessment, bool) {
	if len(assessments) == 0 {
		return athlete.Assessment{}, false
	}
	return slices.MaxFunc(assessments, func(a, b athlete.Assessment) int {
		return a.Timestamp.Compare(b.Timestamp)
	}), true
}

func flagSummary(f Flags) string {
	return fmt.Sprintf("hash=%t location=%t age=%t scores=%t",
		f.HashIdentifiers, f.GeneralizeLocation, f.BucketAge, f.BucketScores)
}
