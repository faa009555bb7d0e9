package models

import (
	"strings"

	"talentgate/pkg/validation"
)

// RecordRequest is the body of a consent submission.
type RecordRequest struct {
	SubjectID      string `json:"subjectId" validate:"required,notblank,max=128"`
	Scopes         Scopes `json:"scopes"`
	RetentionYears int    `json:"retentionYears" validate:"min=0,max=100"`
}

// Sanitize trims identifiers.
func (r *RecordRequest) Sanitize() {
	r.SubjectID = strings.TrimSpace(r.SubjectID)
}

func (r *RecordRequest) Validate() error {
	return validation.Validate(r)
}

// ValidateRequest is the body of an access validation call.
type ValidateRequest struct {
	SubjectIDs []string `json:"subjectIds" validate:"required,min=1,max=500,dive,notblank"`
	Purpose    Purpose  `json:"purpose" validate:"required,oneof=talent_identification sai_sync performance_analytics data_sharing export contact"`
}

// Sanitize trims identifiers.
func (r *ValidateRequest) Sanitize() {
	for i, id := range r.SubjectIDs {
		r.SubjectIDs[i] = strings.TrimSpace(id)
	}
}

func (r *ValidateRequest) Validate() error {
	return validation.Validate(r)
}
