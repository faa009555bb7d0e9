package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "talentgate/pkg/domain-errors"
)

func TestPurposeScope(t *testing.T) {
	tests := []struct {
		purpose Purpose
		want    Scope
	}{
		{PurposeTalentIdentification, ScopeTalentIdentification},
		{PurposeSAISync, ScopeTalentIdentification},
		{PurposePerformanceAnalytics, ScopePerformanceAnalytics},
		{PurposeContact, ScopeContactPermission},
		{PurposeExport, ScopeDataSharing},
		{PurposeDataSharing, ScopeDataSharing},
		{Purpose("marketing"), ScopeDataSharing},
	}
	for _, tt := range tests {
		t.Run(string(tt.purpose), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.purpose.Scope())
		})
	}
}

func TestRecordExpiryBoundary(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := Record{SubjectID: "ath-1", RetentionYears: 2, ConsentTimestamp: at}
	window := 2 * 365 * 24 * time.Hour

	assert.False(t, r.IsExpired(at.Add(window)), "valid exactly at the window edge")
	assert.True(t, r.IsExpired(at.Add(window+time.Nanosecond)))
	assert.Equal(t, at.Add(window), r.ExpiresAt())

	zero := Record{SubjectID: "ath-2", RetentionYears: 0, ConsentTimestamp: at}
	assert.False(t, zero.IsExpired(at))
	assert.True(t, zero.IsExpired(at.Add(time.Second)))
}

func TestNewRecordInvariants(t *testing.T) {
	now := time.Now()

	_, err := NewRecord("", Scopes{}, 1, now, IssuingContext{})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	_, err = NewRecord("ath-1", Scopes{}, -1, now, IssuingContext{})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	_, err = NewRecord("ath-1", Scopes{}, 1, time.Time{}, IssuingContext{})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestScopesAreIndependent(t *testing.T) {
	s := Scopes{PerformanceAnalytics: true}
	assert.True(t, s.Allows(ScopePerformanceAnalytics))
	assert.False(t, s.Allows(ScopeDataSharing))
	assert.False(t, s.Allows(ScopeTalentIdentification))
	assert.False(t, s.Allows(ScopeContactPermission))
	assert.False(t, s.Allows(Scope("unknown")))
}
