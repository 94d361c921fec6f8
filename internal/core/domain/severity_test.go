package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseSeverity_ValidatesInput tests severity parsing with various inputs
func TestParseSeverity_ValidatesInput(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    Severity
		expectError bool
		description string
	}{
		{
			name:        "lowercase",
			input:       "high",
			expected:    SeverityHigh,
			description: "Canonical lowercase names should parse",
		},
		{
			name:        "mixed case",
			input:       "CrItIcAl",
			expected:    SeverityCritical,
			description: "Parsing should be case-insensitive",
		},
		{
			name:        "surrounding whitespace",
			input:       "  medium ",
			expected:    SeverityMedium,
			description: "Whitespace should be trimmed before matching",
		},
		{
			name:        "unknown keyword",
			input:       "unknown",
			expectError: true,
			description: "The unknown placeholder is not a selectable level",
		},
		{
			name:        "garbage",
			input:       "severe",
			expectError: true,
			description: "Unrecognized levels should be rejected",
		},
		{
			name:        "empty",
			input:       "",
			expectError: true,
			description: "Empty input should be rejected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sev, err := ParseSeverity(tt.input)
			if tt.expectError {
				assert.Error(t, err, tt.description)
				return
			}
			require.NoError(t, err, tt.description)
			assert.Equal(t, tt.expected, sev, tt.description)
		})
	}
}

// TestSeverity_Ordering tests that severities rank in ascending order
func TestSeverity_Ordering(t *testing.T) {
	ordered := Severities()
	for i := 1; i < len(ordered); i++ {
		assert.True(t, ordered[i-1].Less(ordered[i]),
			"%s should rank below %s", ordered[i-1], ordered[i])
	}

	assert.False(t, SeverityCritical.Less(SeverityInfo))
	assert.False(t, SeverityHigh.Less(SeverityHigh), "a level is not less than itself")
}

// TestSeverity_UnknownRanksLowest tests that unrecognized severities sort first
func TestSeverity_UnknownRanksLowest(t *testing.T) {
	assert.True(t, SeverityUnknown.Less(SeverityInfo))
	assert.True(t, Severity("made-up").Less(SeverityInfo))
}
