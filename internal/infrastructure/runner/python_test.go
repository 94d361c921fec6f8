package runner

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codescope.dev/cli/internal/core/domain"
)

// pythonScript stands in for a venv interpreter. Argv is
// "-c <bootstrap> <entrypoint> <op>", so the operation is $4 and scan
// requests arrive on stdin.
const pythonScript = `#!/bin/sh
echo "$3 $4" >> "$(dirname "$0")/calls.txt"
case "$4" in
metadata)
  echo '{"hardcoded-secret":{"id":"hardcoded-secret","uid":"sec.001","severity":"high","tags":["security"]},"weak-hash":{"severity":"medium"}}'
  ;;
test-dirs)
  echo '["tests","spec"]'
  ;;
scan)
  cat > "$(dirname "$0")/request.json"
  echo '{"errors":[],"scanned":["app.py"],"responses":{"hardcoded-secret":{"findings":[{"instances":[{"path":"app.py","offset_start":8,"offset_end":13,"fixes":[],"extra":{"metavars":{}}}]}],"errors":[]}}}'
  ;;
*)
  echo "unexpected operation: $4" >&2
  exit 2
  ;;
esac
`

func newPyRunner(t *testing.T, script string, metadataTimeout time.Duration) *PythonRunner {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "python")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return NewPythonRunner("secrets", path, dir, "secrets:Secrets", metadataTimeout, 0, hclog.NewNullLogger())
}

// TestPythonRunner_DetectorMetadata tests that the scanner's id-keyed
// detector table is parsed and backfilled
func TestPythonRunner_DetectorMetadata(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script interpreter")
	}
	r := newPyRunner(t, pythonScript, 0)

	detectors, err := r.DetectorMetadata(context.Background())
	require.NoError(t, err)
	require.Len(t, detectors, 2)

	assert.Equal(t, "sec.001", detectors["hardcoded-secret"].UID)
	assert.Equal(t, domain.SeverityHigh, detectors["hardcoded-secret"].Severity)
	assert.Equal(t, "weak-hash", detectors["weak-hash"].ID, "missing id fields come from the map key")

	calls, err := os.ReadFile(filepath.Join(r.installDir, "calls.txt"))
	require.NoError(t, err)
	assert.Equal(t, "secrets:Secrets metadata\n", string(calls))
}

// TestPythonRunner_Scan tests the stdin request and stdout response
// round trip
func TestPythonRunner_Scan(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script interpreter")
	}
	r := newPyRunner(t, pythonScript, 0)

	resp, err := r.Scan(context.Background(), []string{"hardcoded-secret"}, []string{"app.py", "lib.py"}, "/proj")
	require.NoError(t, err)

	assert.Equal(t, []string{"app.py"}, resp.Scanned)
	require.Contains(t, resp.Responses, "hardcoded-secret")
	inst := resp.Responses["hardcoded-secret"].Findings[0].Instances[0]
	assert.Equal(t, 8, inst.OffsetStart)

	raw, err := os.ReadFile(filepath.Join(r.installDir, "request.json"))
	require.NoError(t, err)
	var req scanRequest
	require.NoError(t, json.Unmarshal(raw, &req))
	assert.Equal(t, []string{"hardcoded-secret"}, req.Detectors)
	assert.Equal(t, []string{"app.py", "lib.py"}, req.Files)
	assert.Equal(t, "/proj", req.ProjectRoot)
}

// TestPythonRunner_TestDirs tests the test-dir listing call
func TestPythonRunner_TestDirs(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script interpreter")
	}
	r := newPyRunner(t, pythonScript, 0)

	dirs, err := r.TestDirs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"tests", "spec"}, dirs)
}

// TestPythonRunner_Failures tests failure isolation cases
func TestPythonRunner_Failures(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script interpreter")
	}

	t.Run("non-zero exit", func(t *testing.T) {
		r := newPyRunner(t, "#!/bin/sh\necho 'ImportError: no module named secrets' >&2\nexit 1\n", 0)
		_, err := r.DetectorMetadata(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ImportError")
	})

	t.Run("invalid metadata json", func(t *testing.T) {
		r := newPyRunner(t, "#!/bin/sh\necho garbage\n", 0)
		_, err := r.DetectorMetadata(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid detector metadata")
	})

	t.Run("invalid scan json", func(t *testing.T) {
		r := newPyRunner(t, "#!/bin/sh\ncat > /dev/null\necho garbage\n", 0)
		_, err := r.Scan(context.Background(), nil, []string{"a.py"}, "/proj")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid JSON")
	})

	t.Run("timeout", func(t *testing.T) {
		r := newPyRunner(t, "#!/bin/sh\nsleep 30\n", 200*time.Millisecond)
		_, err := r.DetectorMetadata(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timed out")
	})
}

// TestDeriveEntrypoint_FromScannerName tests the fallback entrypoint
func TestDeriveEntrypoint_FromScannerName(t *testing.T) {
	tests := []struct {
		name        string
		scanner     string
		expected    string
		description string
	}{
		{
			name:        "hyphenated",
			scanner:     "my-scanner",
			expected:    "my_scanner:MyScanner",
			description: "Hyphens become underscores in the module, CamelCase in the class",
		},
		{
			name:        "single word",
			scanner:     "secrets",
			expected:    "secrets:Secrets",
			description: "Single-part names capitalize once",
		},
		{
			name:        "underscored input",
			scanner:     "deps_audit",
			expected:    "deps_audit:DepsAudit",
			description: "Underscored names derive the same entrypoint as hyphenated ones",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeriveEntrypoint(tt.scanner), tt.description)
		})
	}
}
