package models

import (
	"strings"

	alert "talentgate/internal/alert/models"
	pstrings "talentgate/pkg/platform/strings"
	"talentgate/pkg/validation"
)

// RuleRequest is the body of a rule create or replace call.
type RuleRequest struct {
	Name       string         `json:"name" validate:"required,notblank,max=200"`
	Active     *bool          `json:"active"`
	Conditions Conditions     `json:"conditions"`
	Recipients []string       `json:"recipients" validate:"required,min=1,max=100,dive,notblank"`
	Frequency  Frequency      `json:"frequency" validate:"omitempty,oneof=immediate daily weekly"`
	Priority   alert.Priority `json:"priority" validate:"omitempty,oneof=high medium low"`
}

// Sanitize trims and de-duplicates list fields.
func (r *RuleRequest) Sanitize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Recipients = pstrings.DedupeAndTrim(r.Recipients)
	r.Conditions.Sports = pstrings.DedupeAndTrimLower(r.Conditions.Sports)
	r.Conditions.Regions = pstrings.DedupeAndTrim(r.Conditions.Regions)
}

// Normalize fills defaults.
func (r *RuleRequest) Normalize() {
	if r.Frequency == "" {
		r.Frequency = FrequencyImmediate
	}
	if r.Priority == "" {
		r.Priority = alert.PriorityMedium
	}
}

func (r *RuleRequest) Validate() error {
	return validation.Validate(r)
}

// ToRule builds the rule with the given id.
func (r *RuleRequest) ToRule(id string) Rule {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return Rule{
		ID:         id,
		Name:       r.Name,
		Active:     active,
		Conditions: r.Conditions,
		Recipients: r.Recipients,
		Frequency:  r.Frequency,
		Priority:   r.Priority,
	}
}

// ActiveRequest toggles a rule.
type ActiveRequest struct {
	Active bool `json:"active"`
}
