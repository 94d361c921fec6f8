package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codescope.dev/cli/internal/core/domain"
)

func catalogFixture() map[string]domain.InstalledScanner {
	return map[string]domain.InstalledScanner{
		"secrets": {
			Detectors: map[string]domain.DetectorMetadata{
				"hardcoded-secret": {ID: "hardcoded-secret", Severity: domain.SeverityCritical},
				"weak-hash":        {ID: "weak-hash", Severity: domain.SeverityMedium},
			},
		},
		"style": {
			Detectors: map[string]domain.DetectorMetadata{
				"long-function": {ID: "long-function", Severity: domain.SeverityLow},
				"weak-hash":     {ID: "weak-hash", Severity: domain.SeverityLow},
			},
		},
	}
}

// TestBuildCatalog_QualifiesCollisions tests catalog key assignment
func TestBuildCatalog_QualifiesCollisions(t *testing.T) {
	catalog := BuildCatalog(catalogFixture())

	assert.Equal(t, []string{
		"hardcoded-secret",
		"long-function",
		"secrets#weak-hash",
		"style#weak-hash",
	}, catalog.Keys(), "unique ids keep bare keys, collisions get qualified")
	assert.Equal(t, 4, catalog.Len())
}

// TestCatalog_Get tests lookup by bare and qualified keys
func TestCatalog_Get(t *testing.T) {
	catalog := BuildCatalog(catalogFixture())

	entry, ok := catalog.Get("hardcoded-secret")
	require.True(t, ok)
	assert.Equal(t, "secrets", entry.Scanner)
	assert.Equal(t, domain.SeverityCritical, entry.Metadata.Severity)

	// A bare colliding id is ambiguous and does not resolve.
	_, ok = catalog.Get("weak-hash")
	assert.False(t, ok)

	entry, ok = catalog.Get("style#weak-hash")
	require.True(t, ok)
	assert.Equal(t, "style", entry.Scanner)
	assert.Equal(t, domain.SeverityLow, entry.Metadata.Severity)

	// Qualified lookup works even for ids that never collided.
	entry, ok = catalog.Get("secrets#hardcoded-secret")
	require.True(t, ok)
	assert.Equal(t, "hardcoded-secret", entry.ID)

	_, ok = catalog.Get("style#hardcoded-secret")
	assert.False(t, ok, "qualification must name the providing scanner")
	_, ok = catalog.Get("missing")
	assert.False(t, ok)
}

// TestCatalog_Entries tests the sorted entry listing
func TestCatalog_Entries(t *testing.T) {
	entries := BuildCatalog(catalogFixture()).Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, "hardcoded-secret", entries[0].ID)
	assert.Equal(t, "weak-hash", entries[2].ID)
	assert.Equal(t, "secrets", entries[2].Scanner)
}
