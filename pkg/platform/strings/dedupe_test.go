package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	assert.Equal(t, []string{"foo", "bar"}, DedupeAndTrim([]string{"  foo ", "bar", "foo", "", "  "}))
	assert.Empty(t, DedupeAndTrim(nil))
}

func TestDedupeAndTrimLower(t *testing.T) {
	assert.Equal(t, []string{"athletics", "football"}, DedupeAndTrimLower([]string{" Athletics", "football", "ATHLETICS"}))
}
