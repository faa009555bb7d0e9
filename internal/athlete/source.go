package athlete

import (
	"context"
	"slices"
	"sync"

	"talentgate/pkg/platform/repository"
	"talentgate/pkg/platform/sentinel"
)

// AssessmentSource is the read surface of the assessment subsystem.
type AssessmentSource interface {
	GetAssessmentByID(ctx context.Context, id string) (Assessment, error)
	GetAthleteAssessments(ctx context.Context, subjectID string) ([]Assessment, error)
}

// ProfileSource is the read surface of the profile subsystem.
type ProfileSource interface {
	GetAthleteByID(ctx context.Context, id string) (Profile, error)
}

// InMemoryDirectory serves both sources from memory. It backs local runs and
// tests; production wiring points the ports at the owning subsystems.
type InMemoryDirectory struct {
	profiles *repository.Keyed[Profile]

	mu          sync.RWMutex
	assessments map[string]Assessment
	bySubject   map[string][]string
}

func NewInMemoryDirectory() *InMemoryDirectory {
	return &InMemoryDirectory{
		profiles:    repository.NewKeyed(Profile.Clone),
		assessments: make(map[string]Assessment),
		bySubject:   make(map[string][]string),
	}
}

// PutProfile stores or replaces a profile.
func (d *InMemoryDirectory) PutProfile(p Profile) {
	d.profiles.Upsert(p.ID, p)
}

// AddAssessment records an assessment. Re-adding an id replaces it.
func (d *InMemoryDirectory) AddAssessment(a Assessment) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.assessments[a.ID]; !exists {
		d.bySubject[a.SubjectID] = append(d.bySubject[a.SubjectID], a.ID)
	}
	d.assessments[a.ID] = a
}

func (d *InMemoryDirectory) GetAssessmentByID(_ context.Context, id string) (Assessment, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.assessments[id]
	if !ok {
		return Assessment{}, sentinel.ErrNotFound
	}
	return a, nil
}

// GetAthleteAssessments returns the subject's assessments oldest first.
func (d *InMemoryDirectory) GetAthleteAssessments(_ context.Context, subjectID string) ([]Assessment, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ids := d.bySubject[subjectID]
	out := make([]Assessment, 0, len(ids))
	for _, id := range ids {
		out = append(out, d.assessments[id])
	}
	slices.SortStableFunc(out, func(a, b Assessment) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return out, nil
}

func (d *InMemoryDirectory) GetAthleteByID(_ context.Context, id string) (Profile, error) {
	return d.profiles.Get(id)
}
