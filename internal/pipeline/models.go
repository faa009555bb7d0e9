// Package pipeline orchestrates one assessment through scoring, consent,
// anonymization, rule evaluation and alert delivery, and serves consented
// exports.
package pipeline

import (
	"time"

	alert "talentgate/internal/alert/models"
	"talentgate/internal/athlete"
	"talentgate/internal/privacy"
	"talentgate/internal/scoring"
)

// Access describes how much detail a caller may see for a subject.
type Access string

const (
	AccessFull       Access = "full"
	AccessAnonymized Access = "anonymized"
	AccessDenied     Access = "denied"
)

// DeliveredAlert is one raised alert and whether any channel accepted it.
type DeliveredAlert struct {
	Alert     alert.Alert `json:"alert"`
	Delivered bool        `json:"delivered"`
}

// Outcome is the result of processing one assessment. Evaluation is set only
// with full access and Anonymized only with anonymized access.
type Outcome struct {
	AssessmentID string              `json:"assessmentId"`
	SubjectID    string              `json:"subjectId"`
	Access       Access              `json:"access"`
	Reason       string              `json:"reason,omitempty"`
	Evaluation   *scoring.Evaluation `json:"evaluation,omitempty"`
	Anonymized   *privacy.Record     `json:"anonymized,omitempty"`
	Alerts       []DeliveredAlert    `json:"alerts"`
}

// ExportRecord is the full-detail export of one athlete.
type ExportRecord struct {
	Profile     athlete.Profile      `json:"profile"`
	Assessments []athlete.Assessment `json:"assessments"`
}

// ExportMetadata accompanies every export. ConsentValidated is always true:
// only subjects that passed the export consent check are included.
type ExportMetadata struct {
	ConsentValidated bool              `json:"consentValidated"`
	Anonymized       bool              `json:"anonymized"`
	RecordCount      int               `json:"recordCount"`
	Requested        int               `json:"requested"`
	ConsentDenied    map[string]string `json:"consentDenied"`
	Failed           map[string]string `json:"failed"`
	ExportedAt       time.Time         `json:"exportedAt"`
}

// Export holds either []ExportRecord or []privacy.Record in Data.
type Export struct {
	Data     any            `json:"data"`
	Metadata ExportMetadata `json:"metadata"`
}

// AssessmentEvent is the message consumed from the assessments topic.
type AssessmentEvent struct {
	AssessmentID string `json:"assessmentId"`
	ActorID      string `json:"actorId"`
}
