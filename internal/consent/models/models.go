package models

import (
	"time"

	dErrors "talentgate/pkg/domain-errors"
)

// Scope names one of the four independently toggleable consent permissions.
// The string values are stable; other systems key on them.
type Scope string

const (
	ScopeDataSharing          Scope = "dataSharing"
	ScopeTalentIdentification Scope = "talentIdentification"
	ScopePerformanceAnalytics Scope = "performanceAnalytics"
	ScopeContactPermission    Scope = "contactPermission"
)

// Purpose is a caller-stated reason for requesting subject data.
type Purpose string

const (
	PurposeTalentIdentification Purpose = "talent_identification"
	PurposeSAISync              Purpose = "sai_sync"
	PurposePerformanceAnalytics Purpose = "performance_analytics"
	PurposeDataSharing          Purpose = "data_sharing"
	PurposeExport               Purpose = "export"
	PurposeContact              Purpose = "contact"
)

// Scope maps the purpose onto the consent scope that gates it. Unknown
// purposes fall back to dataSharing.
func (p Purpose) Scope() Scope {
	switch p {
	case PurposeTalentIdentification, PurposeSAISync:
		return ScopeTalentIdentification
	case PurposePerformanceAnalytics:
		return ScopePerformanceAnalytics
	case PurposeContact:
		return ScopeContactPermission
	default:
		return ScopeDataSharing
	}
}

// Scopes holds the four consent permissions.
type Scopes struct {
	DataSharing          bool `json:"dataSharing"`
	TalentIdentification bool `json:"talentIdentification"`
	PerformanceAnalytics bool `json:"performanceAnalytics"`
	ContactPermission    bool `json:"contactPermission"`
}

// Allows reports whether the named scope is granted.
func (s Scopes) Allows(scope Scope) bool {
	switch scope {
	case ScopeDataSharing:
		return s.DataSharing
	case ScopeTalentIdentification:
		return s.TalentIdentification
	case ScopePerformanceAnalytics:
		return s.PerformanceAnalytics
	case ScopeContactPermission:
		return s.ContactPermission
	default:
		return false
	}
}

// IssuingContext describes where a consent submission came from.
type IssuingContext struct {
	IPAddress    string `json:"ipAddress"`
	AnonymizedIP string `json:"anonymizedIp,omitempty"`
	UserAgent    string `json:"userAgent"`
	Browser      string `json:"browser,omitempty"`
	OS           string `json:"os,omitempty"`
	Mobile       bool   `json:"mobile,omitempty"`
}

// retentionYear is the fixed year length used by the validity rule.
const retentionYear = 365 * 24 * time.Hour

// Record is the single consent record held per subject. A new submission
// replaces it entirely.
type Record struct {
	SubjectID        string         `json:"subjectId"`
	Scopes           Scopes         `json:"scopes"`
	RetentionYears   int            `json:"retentionYears"`
	ConsentTimestamp time.Time      `json:"consentTimestamp"`
	Context          IssuingContext `json:"issuingContext"`
}

// NewRecord creates a Record with domain invariant checks.
func NewRecord(subjectID string, scopes Scopes, retentionYears int, at time.Time, issuing IssuingContext) (*Record, error) {
	if subjectID == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "subject ID required")
	}
	if retentionYears < 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "retention years must not be negative")
	}
	if at.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "consent time required")
	}
	return &Record{
		SubjectID:        subjectID,
		Scopes:           scopes,
		RetentionYears:   retentionYears,
		ConsentTimestamp: at,
		Context:          issuing,
	}, nil
}

// ExpiresAt is the last instant at which the record is still valid.
func (r Record) ExpiresAt() time.Time {
	return r.ConsentTimestamp.Add(time.Duration(r.RetentionYears) * retentionYear)
}

// IsExpired reports whether now lies beyond the retention window.
// Validity is inclusive: a record is still valid exactly at ExpiresAt.
func (r Record) IsExpired(now time.Time) bool {
	return now.Sub(r.ConsentTimestamp) > time.Duration(r.RetentionYears)*retentionYear
}

// Denial reasons returned by the access validator.
const (
	ReasonNoRecord     = "No privacy consent on record"
	ReasonExpired      = "Consent has expired"
	ReasonLookupFailed = "Consent lookup failed"
)

// ReasonNoConsentFor is the denial reason when the purpose's scope is off.
func ReasonNoConsentFor(purpose Purpose) string {
	return "No consent for " + string(purpose)
}

// ValidationResult partitions a batch of subjects. A subject appears in
// exactly one of Allowed and Denied; every denied subject has a reason.
type ValidationResult struct {
	Allowed []string          `json:"allowed"`
	Denied  []string          `json:"denied"`
	Reasons map[string]string `json:"reasons"`
}
