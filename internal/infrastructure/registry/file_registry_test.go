package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codescope.dev/cli/internal/core/domain"
)

func testLogger() hclog.Logger {
	return hclog.NewNullLogger()
}

func sampleEntry(kind domain.ScannerKind, detectors ...string) domain.InstalledScanner {
	meta := make(map[string]domain.DetectorMetadata, len(detectors))
	for _, id := range detectors {
		meta[id] = domain.DetectorMetadata{ID: id, Severity: domain.SeverityMedium}
	}
	return domain.InstalledScanner{
		Path:        "/opt/scanners/sample",
		InstalledAt: time.Now().UTC().Truncate(time.Second),
		Version:     "1.2.0",
		Kind:        kind,
		Org:         "acme",
		Detectors:   meta,
	}
}

// TestOpen_MissingFileStartsEmpty tests that a fresh registry path is
// not an error
func TestOpen_MissingFileStartsEmpty(t *testing.T) {
	reg, err := Open(filepath.Join(t.TempDir(), "scanners.json"), testLogger())
	require.NoError(t, err)
	assert.Empty(t, reg.Names())
	assert.False(t, reg.Has("anything"))
}

// TestOpen_MalformedDocument tests that a corrupt registry surfaces a
// registry IO error
func TestOpen_MalformedDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scanners.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Open(path, testLogger())
	require.Error(t, err)
	var regErr *domain.RegistryIOError
	assert.ErrorAs(t, err, &regErr)
	assert.Equal(t, "parse", regErr.Op)
}

// TestAdd_PersistsWholeDocument tests that mutations survive a reopen
func TestAdd_PersistsWholeDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scanners.json")
	reg, err := Open(path, testLogger())
	require.NoError(t, err)

	entry := sampleEntry(domain.KindPython, "sql-injection")
	require.NoError(t, reg.Add("secrets", entry))

	reopened, err := Open(path, testLogger())
	require.NoError(t, err)
	got, ok := reopened.Get("secrets")
	require.True(t, ok)
	assert.Equal(t, entry.Version, got.Version)
	assert.Equal(t, domain.KindPython, got.Kind)
	assert.True(t, got.HasDetector("sql-injection"))

	// No stray temp file left behind.
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

// TestAdd_ReplacesExistingEntry tests upsert semantics
func TestAdd_ReplacesExistingEntry(t *testing.T) {
	reg, err := Open(filepath.Join(t.TempDir(), "scanners.json"), testLogger())
	require.NoError(t, err)

	require.NoError(t, reg.Add("secrets", sampleEntry(domain.KindPython, "a")))
	replacement := sampleEntry(domain.KindExecutable, "b")
	require.NoError(t, reg.Add("secrets", replacement))

	got, _ := reg.Get("secrets")
	assert.Equal(t, domain.KindExecutable, got.Kind)
	assert.False(t, got.HasDetector("a"))
	assert.True(t, got.HasDetector("b"))
	assert.Len(t, reg.Names(), 1)
}

// TestRemove_AbsentNameIsNoop tests removal semantics
func TestRemove_AbsentNameIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scanners.json")
	reg, err := Open(path, testLogger())
	require.NoError(t, err)

	require.NoError(t, reg.Remove("ghost"))

	require.NoError(t, reg.Add("secrets", sampleEntry(domain.KindPython, "a")))
	require.NoError(t, reg.Remove("secrets"))
	assert.False(t, reg.Has("secrets"))

	reopened, err := Open(path, testLogger())
	require.NoError(t, err)
	assert.Empty(t, reopened.Names())
}

// TestRegistry_WireFormat tests the stored JSON key names
func TestRegistry_WireFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scanners.json")
	reg, err := Open(path, testLogger())
	require.NoError(t, err)
	require.NoError(t, reg.Add("secrets", sampleEntry(domain.KindPython, "sql-injection")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	entry := doc["secrets"]
	for _, key := range []string{"path", "installed_at", "version", "type", "org", "develop_mode", "extensions", "detectors"} {
		assert.Contains(t, entry, key)
	}
}

// TestReload_PicksUpExternalChanges tests re-reading the document
func TestReload_PicksUpExternalChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scanners.json")
	reg, err := Open(path, testLogger())
	require.NoError(t, err)

	other, err := Open(path, testLogger())
	require.NoError(t, err)
	require.NoError(t, other.Add("secrets", sampleEntry(domain.KindPython, "a")))

	assert.False(t, reg.Has("secrets"))
	require.NoError(t, reg.Reload())
	assert.True(t, reg.Has("secrets"))
}
