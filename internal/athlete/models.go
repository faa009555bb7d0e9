// Package athlete holds the records owned by the assessment and profile
// subsystems. The pipeline reads them and never mutates them.
package athlete

import (
	"slices"
	"time"
)

// TestType is one of the six fixed physical tests.
type TestType string

const (
	TestSpeed       TestType = "speed"
	TestAgility     TestType = "agility"
	TestStrength    TestType = "strength"
	TestEndurance   TestType = "endurance"
	TestFlexibility TestType = "flexibility"
	TestBalance     TestType = "balance"
)

// TestTypes lists every test type in canonical order.
var TestTypes = []TestType{TestSpeed, TestAgility, TestStrength, TestEndurance, TestFlexibility, TestBalance}

// IsValid reports whether t is a known test type.
func (t TestType) IsValid() bool {
	return slices.Contains(TestTypes, t)
}

// Assessment is a single scored test result.
type Assessment struct {
	ID        string    `json:"id"`
	SubjectID string    `json:"subjectId"`
	TestType  TestType  `json:"testType"`
	Score     int       `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

// Profile is the subset of athlete data the pipeline consumes.
type Profile struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Age      int      `json:"age"`
	Location string   `json:"location"`
	Sports   []string `json:"sports"`
}

// Clone returns a deep copy.
func (p Profile) Clone() Profile {
	p.Sports = slices.Clone(p.Sports)
	return p
}

// Region returns the state-level part of a "City, District, State" location.
func (p Profile) Region() string {
	return RegionOf(p.Location)
}

// LatestBefore returns the most recent assessment of the same test type
// taken strictly before current, excluding current itself.
func LatestBefore(current Assessment, history []Assessment) (Assessment, bool) {
	var (
		best  Assessment
		found bool
	)
	for _, a := range history {
		if a.TestType != current.TestType || a.ID == current.ID && a.ID != "" {
			continue
		}
		if !a.Timestamp.Before(current.Timestamp) {
			continue
		}
		if !found || a.Timestamp.After(best.Timestamp) {
			best, found = a, true
		}
	}
	return best, found
}

// LatestByType returns the newest assessment per test type.
func LatestByType(history []Assessment) map[TestType]Assessment {
	out := make(map[TestType]Assessment)
	for _, a := range history {
		if cur, ok := out[a.TestType]; !ok || a.Timestamp.After(cur.Timestamp) {
			out[a.TestType] = a
		}
	}
	return out
}
