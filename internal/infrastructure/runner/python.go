package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode"

	"github.com/hashicorp/go-hclog"

	"codescope.dev/cli/internal/core/domain"
	"codescope.dev/cli/internal/core/domain/response"
)

// DefaultMetadataTimeout bounds metadata and test-dir calls into a
// Python scanner. Imports can pull heavy dependencies, so this is
// looser than the install-time probe.
const DefaultMetadataTimeout = 60 * time.Second

// bootstrap is the Python shim driving an installed scanner class from
// its venv interpreter. Every operation prints exactly one JSON
// document to stdout. Argv: <entrypoint> <op>; scan requests arrive on
// stdin.
const bootstrap = `
import importlib, json, sys

mod_name, _, cls_name = sys.argv[1].partition(":")
op = sys.argv[2]
cls = getattr(importlib.import_module(mod_name), cls_name)
scanner = cls()

def plain(value):
    if hasattr(value, "__json__"):
        value = value.__json__()
    if isinstance(value, dict):
        return {k: plain(v) for k, v in value.items()}
    if isinstance(value, (list, tuple)):
        return [plain(v) for v in value]
    return value

if op == "metadata":
    out = plain(scanner.get_supported_detector_metadata())
elif op == "test-dirs":
    out = [str(p) for p in scanner.get_root_test_dirs()]
elif op == "scan":
    req = json.load(sys.stdin)
    out = plain(scanner.run(req["detectors"], req["files"], req["project_root"]))
else:
    raise SystemExit("unknown operation: " + op)

json.dump(out, sys.stdout)
`

type scanRequest struct {
	Detectors   []string `json:"detectors"`
	Files       []string `json:"files"`
	ProjectRoot string   `json:"project_root"`
}

// PythonRunner runs an installed Python scanner through its venv
// interpreter. Each call spawns a fresh process; nothing is imported
// into this process.
type PythonRunner struct {
	name            string
	pythonPath      string
	installDir      string
	entrypoint      string
	metadataTimeout time.Duration
	scanTimeout     time.Duration
	logger          hclog.Logger
}

// NewPythonRunner creates a runner over an installed Python scanner.
// entrypoint is the manifest's "module:Class"; when empty it is
// derived from the scanner name.
func NewPythonRunner(name, pythonPath, installDir, entrypoint string, metadataTimeout, scanTimeout time.Duration, logger hclog.Logger) *PythonRunner {
	if entrypoint == "" {
		entrypoint = DeriveEntrypoint(name)
	}
	if metadataTimeout <= 0 {
		metadataTimeout = DefaultMetadataTimeout
	}
	if scanTimeout <= 0 {
		scanTimeout = DefaultScanTimeout
	}
	return &PythonRunner{
		name:            name,
		pythonPath:      pythonPath,
		installDir:      installDir,
		entrypoint:      entrypoint,
		metadataTimeout: metadataTimeout,
		scanTimeout:     scanTimeout,
		logger:          logger.Named("runner.python").With("scanner", name),
	}
}

// DeriveEntrypoint builds the fallback "module:Class" for a scanner
// that declares none: the module name plus its CamelCased form, so
// "my-scanner" becomes "my_scanner:MyScanner".
func DeriveEntrypoint(name string) string {
	module := domain.ModuleName(name)
	var cls strings.Builder
	for _, part := range strings.Split(module, "_") {
		if part == "" {
			continue
		}
		r := []rune(part)
		r[0] = unicode.ToUpper(r[0])
		cls.WriteString(string(r))
	}
	return module + ":" + cls.String()
}

func (r *PythonRunner) Name() string { return r.name }

// DetectorMetadata asks the scanner class for its detector table. The
// scanner reports a JSON object keyed by detector id.
func (r *PythonRunner) DetectorMetadata(ctx context.Context) (map[string]domain.DetectorMetadata, error) {
	raw, err := r.invoke(ctx, "metadata", nil, r.metadataTimeout)
	if err != nil {
		return nil, err
	}
	var reported map[string]domain.DetectorMetadata
	if err := json.Unmarshal(raw, &reported); err != nil {
		return nil, fmt.Errorf("scanner %s returned invalid detector metadata: %w", r.name, err)
	}
	detectors := make(map[string]domain.DetectorMetadata, len(reported))
	for id, d := range reported {
		if id == "" {
			r.logger.Warn("skipping detector without id")
			continue
		}
		if d.ID == "" {
			d.ID = id
		}
		detectors[id] = d
	}
	return detectors, nil
}

// TestDirs asks the scanner which project-relative directories hold
// test code.
func (r *PythonRunner) TestDirs(ctx context.Context) ([]string, error) {
	raw, err := r.invoke(ctx, "test-dirs", nil, r.metadataTimeout)
	if err != nil {
		return nil, err
	}
	var dirs []string
	if err := json.Unmarshal(raw, &dirs); err != nil {
		return nil, fmt.Errorf("scanner %s returned invalid test dirs: %w", r.name, err)
	}
	return dirs, nil
}

// Scan runs the scanner over the given files and parses its minimal
// response.
func (r *PythonRunner) Scan(ctx context.Context, detectorIDs []string, files []string, projectRoot string) (response.MinimalScannerResponse, error) {
	req, err := json.Marshal(scanRequest{Detectors: detectorIDs, Files: files, ProjectRoot: projectRoot})
	if err != nil {
		return response.MinimalScannerResponse{}, err
	}
	raw, err := r.invoke(ctx, "scan", req, r.scanTimeout)
	if err != nil {
		return response.MinimalScannerResponse{}, err
	}
	var min response.MinimalScannerResponse
	if err := json.Unmarshal(raw, &min); err != nil {
		return response.MinimalScannerResponse{}, fmt.Errorf("scanner %s printed invalid JSON: %w", r.name, err)
	}
	return min, nil
}

func (r *PythonRunner) invoke(ctx context.Context, op string, stdin []byte, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.pythonPath, "-c", bootstrap, r.entrypoint, op)
	cmd.Dir = r.installDir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	r.logger.Debug("invoking scanner", "op", op, "entrypoint", r.entrypoint)
	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("scanner %s %s timed out after %s", r.name, op, timeout)
	}
	if err != nil {
		return nil, fmt.Errorf("scanner %s %s failed: %w: %s", r.name, op, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
