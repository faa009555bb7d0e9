// Package registry pushes consented athlete records to the national talent
// registry. Calls are traced, token-authenticated and guarded by a circuit
// breaker; when the registry is unreachable the client returns an explicit
// synthetic receipt instead of failing the sync.
package registry

import "time"

// Record is the athlete summary submitted to the registry.
type Record struct {
	SubjectID    string         `json:"subjectId"`
	Name         string         `json:"name"`
	Age          int            `json:"age"`
	Region       string         `json:"region"`
	Sports       []string       `json:"sports"`
	Scores       map[string]int `json:"scores"`
	OverallScore int            `json:"overallScore"`
	Assessments  int            `json:"assessments"`
	AssessedAt   time.Time      `json:"assessedAt"`
}

// Receipt acknowledges a submission. Synthetic receipts were produced locally
// because the registry could not be reached; they must be re-synced.
type Receipt struct {
	SubjectID  string    `json:"subjectId"`
	RegistryID string    `json:"registryId"`
	Status     string    `json:"status"`
	Synthetic  bool      `json:"synthetic"`
	SyncedAt   time.Time `json:"syncedAt"`
}

// SyncResult partitions a batch sync. Every requested subject lands in
// exactly one of the three sets.
type SyncResult struct {
	Succeeded     []Receipt         `json:"succeeded"`
	Failed        map[string]string `json:"failed"`
	ConsentDenied map[string]string `json:"consentDenied"`
}

type submitResponse struct {
	RegistryID string `json:"registry_id"`
	Status     string `json:"status"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}
