package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codescope.dev/cli/internal/core/domain"
)

// queryFixture registers two scanners with overlapping detectors.
func queryFixture(t *testing.T) *FileRegistry {
	t.Helper()
	reg, err := Open(filepath.Join(t.TempDir(), "scanners.json"), testLogger())
	require.NoError(t, err)

	require.NoError(t, reg.Add("secrets", domain.InstalledScanner{
		Kind: domain.KindPython,
		Detectors: map[string]domain.DetectorMetadata{
			"hardcoded-secret": {ID: "hardcoded-secret", Severity: domain.SeverityCritical, Tags: []string{"security", "secrets"}, Description: "literal credentials in source"},
			"weak-hash":        {ID: "weak-hash", Severity: domain.SeverityMedium, Tags: []string{"security", "crypto"}},
		},
	}))
	require.NoError(t, reg.Add("style", domain.InstalledScanner{
		Kind: domain.KindExecutable,
		Detectors: map[string]domain.DetectorMetadata{
			"long-function": {ID: "long-function", Severity: domain.SeverityLow, Tags: []string{"maintainability"}},
			"weak-hash":     {ID: "weak-hash", Severity: domain.SeverityMedium, Tags: []string{"security"}},
		},
	}))
	return reg
}

// TestAllDetectorNames_SortedUnion tests the merged detector id list
func TestAllDetectorNames_SortedUnion(t *testing.T) {
	reg := queryFixture(t)
	assert.Equal(t, []string{"hardcoded-secret", "long-function", "weak-hash"}, reg.AllDetectorNames())
}

// TestDetectorsByCriteria_Filters tests the filter combinations
func TestDetectorsByCriteria_Filters(t *testing.T) {
	reg := queryFixture(t)

	tests := []struct {
		name        string
		scanners    []string
		severities  []domain.Severity
		tags        []string
		expected    []string
		description string
	}{
		{
			name:        "no filters",
			expected:    []string{"hardcoded-secret", "long-function", "weak-hash", "weak-hash"},
			description: "Nil filters match every detector of every provider",
		},
		{
			name:        "by scanner",
			scanners:    []string{"style"},
			expected:    []string{"long-function", "weak-hash"},
			description: "Scanner filter narrows to that scanner's detectors",
		},
		{
			name:        "by severity",
			severities:  []domain.Severity{domain.SeverityCritical},
			expected:    []string{"hardcoded-secret"},
			description: "Severity filter keeps matching levels only",
		},
		{
			name:        "by tag",
			tags:        []string{"security", "crypto"},
			expected:    []string{"weak-hash"},
			description: "All requested tags must be present",
		},
		{
			name:        "unregistered scanner",
			scanners:    []string{"ghost"},
			expected:    []string{},
			description: "Unknown scanner names match nothing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := reg.DetectorsByCriteria(tt.scanners, tt.severities, tt.tags)
			names := make([]string, 0, len(rows))
			for _, row := range rows {
				names = append(names, row.Name)
			}
			assert.Equal(t, tt.expected, names, tt.description)
		})
	}
}

// TestDetectorsByCriteria_ListsEveryProvider tests that a shared
// detector id keeps one row per providing scanner
func TestDetectorsByCriteria_ListsEveryProvider(t *testing.T) {
	reg := queryFixture(t)

	var providers []string
	for _, row := range reg.DetectorsByCriteria(nil, nil, nil) {
		if row.Name == "weak-hash" {
			providers = append(providers, row.Scanner)
		}
	}
	assert.Equal(t, []string{"secrets", "style"}, providers)
}

// TestTagsByCriteria_GroupsAndCounts tests tag aggregation
func TestTagsByCriteria_GroupsAndCounts(t *testing.T) {
	reg := queryFixture(t)

	tags := reg.TagsByCriteria(nil, nil)
	byName := make(map[string]TagInfo, len(tags))
	for _, tag := range tags {
		byName[tag.Name] = tag
	}

	security := byName["security"]
	assert.Equal(t, 2, security.DetectorCount)
	assert.Equal(t, 2, security.ScannerCount)
	assert.Equal(t, []string{"hardcoded-secret", "weak-hash"}, security.Detectors)
	assert.Equal(t, []string{"secrets", "style"}, security.Scanners)

	assert.Equal(t, 1, byName["maintainability"].DetectorCount)
}

// TestSeveritiesByCriteria_Grouping tests severity grouping
func TestSeveritiesByCriteria_Grouping(t *testing.T) {
	reg := queryFixture(t)

	grouped := reg.SeveritiesByCriteria(nil, nil)
	assert.Equal(t, []string{"hardcoded-secret"}, grouped[domain.SeverityCritical])
	assert.Equal(t, []string{"long-function"}, grouped[domain.SeverityLow])
	// weak-hash appears once per providing scanner.
	assert.Equal(t, []string{"weak-hash", "weak-hash"}, grouped[domain.SeverityMedium])
}

// TestScannersByCriteria_RoutesDetectors tests detector-to-scanner routing
func TestScannersByCriteria_RoutesDetectors(t *testing.T) {
	reg := queryFixture(t)

	assert.Equal(t, []string{"secrets", "style"}, reg.ScannerNamesByCriteria([]string{"weak-hash"}, nil, nil))
	assert.Equal(t, []string{"secrets"}, reg.ScannerNamesByCriteria([]string{"hardcoded-secret"}, nil, nil))
	assert.Equal(t, []string{"style"}, reg.ScannerNamesByCriteria(nil, []string{"maintainability"}, nil))
	assert.Empty(t, reg.ScannerNamesByCriteria([]string{"missing"}, nil, nil))
}
