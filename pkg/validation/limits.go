package validation

import (
	"fmt"

	dErrors "talentgate/pkg/domain-errors"
)

const (
	// MaxBodySize caps JSON request bodies.
	MaxBodySize = 64 * 1024

	// MaxBatchSubjects caps subject ids per validate, export or sync call.
	MaxBatchSubjects = 500

	// MaxListLimit caps list endpoints.
	MaxListLimit = 500
)

// CheckSliceCount validates that a slice does not exceed the maximum count.
func CheckSliceCount(fieldName string, count, max int) error {
	if count > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("too many %s: max %d allowed", fieldName, max))
	}
	return nil
}

// ClampLimit bounds a requested page size; zero selects def.
func ClampLimit(requested, def int) int {
	switch {
	case requested <= 0:
		return def
	case requested > MaxListLimit:
		return MaxListLimit
	default:
		return requested
	}
}
