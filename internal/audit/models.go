package audit

import (
	"slices"
	"time"
)

// Action classifies what an audit entry records.
type Action string

const (
	ActionAccess    Action = "access"
	ActionExport    Action = "export"
	ActionSync      Action = "sync"
	ActionAnonymize Action = "anonymize"
	ActionDelete    Action = "delete"
	ActionConsent   Action = "consent" // consent record written or replaced
	ActionWrite     Action = "write"   // alert or rule created or changed
)

// Data-type tags attached to entries.
const (
	DataConsent      = "consent"
	DataAssessment   = "assessment"
	DataProfile      = "profile"
	DataNotification = "notification"
	DataReport       = "report"
)

// DefaultRetention is the number of most recent entries kept by a store.
const DefaultRetention = 1000

// Entry is one security-relevant action. Entries are append-only: nothing
// mutates or deletes them except the store's retention cap.
type Entry struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Action     Action    `json:"action"`
	ActorID    string    `json:"actor_id"`
	SubjectIDs []string  `json:"subject_ids"`
	DataTypes  []string  `json:"data_types"`
	Purpose    string    `json:"purpose"`
	Success    bool      `json:"success"`
	Detail     string    `json:"detail,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
}

// Clone returns a deep copy.
func (e Entry) Clone() Entry {
	e.SubjectIDs = slices.Clone(e.SubjectIDs)
	e.DataTypes = slices.Clone(e.DataTypes)
	return e
}

// HasDataType reports whether the entry is tagged with tag.
func (e Entry) HasDataType(tag string) bool {
	return slices.Contains(e.DataTypes, tag)
}

// Filter narrows a List call. Zero values match everything.
type Filter struct {
	Action    Action
	SubjectID string
	DataType  string
	Limit     int
}

// Matches reports whether e satisfies the filter.
func (f Filter) Matches(e Entry) bool {
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if f.SubjectID != "" && !slices.Contains(e.SubjectIDs, f.SubjectID) {
		return false
	}
	if f.DataType != "" && !e.HasDataType(f.DataType) {
		return false
	}
	return true
}
