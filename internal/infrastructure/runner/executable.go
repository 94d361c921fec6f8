// Package runner builds and executes scanner runners: one uniform
// execution interface per installed scanner, regardless of kind. Both
// kinds run out of process and speak JSON over stdout.
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

	"github.com/hashicorp/go-hclog"

	"codescope.dev/cli/internal/core/domain"
	"codescope.dev/cli/internal/core/domain/response"
)

// DefaultScanTimeout bounds a single scanner's scan invocation.
const DefaultScanTimeout = 10 * time.Minute

// ExecutableRunner runs an installed executable scanner through its
// subprocess protocol:
//
//	scanner scan <files...> --detectors <ids...> --project-root <root>
type ExecutableRunner struct {
	name        string
	execPath    string
	detectors   map[string]domain.DetectorMetadata
	scanTimeout time.Duration
	logger      hclog.Logger
}

// NewExecutableRunner creates a runner over an installed executable
// scanner. Detectors come from the registry entry, which recorded the
// scanner's declared metadata at install time.
func NewExecutableRunner(name, execPath string, detectors map[string]domain.DetectorMetadata, scanTimeout time.Duration, logger hclog.Logger) *ExecutableRunner {
	if scanTimeout <= 0 {
		scanTimeout = DefaultScanTimeout
	}
	return &ExecutableRunner{
		name:        name,
		execPath:    execPath,
		detectors:   detectors,
		scanTimeout: scanTimeout,
		logger:      logger.Named("runner.exec").With("scanner", name),
	}
}

func (r *ExecutableRunner) Name() string { return r.name }

// DetectorMetadata returns the detectors recorded for the scanner.
func (r *ExecutableRunner) DetectorMetadata(ctx context.Context) (map[string]domain.DetectorMetadata, error) {
	return r.detectors, nil
}

// TestDirs returns nothing; executable scanners declare no test
// directories.
func (r *ExecutableRunner) TestDirs(ctx context.Context) ([]string, error) {
	return nil, nil
}

// Scan invokes the scanner binary and parses one minimal response
// document from its stdout. A non-zero exit, a timeout, or invalid JSON
// is a run failure scoped to this scanner.
func (r *ExecutableRunner) Scan(ctx context.Context, detectorIDs []string, files []string, projectRoot string) (response.MinimalScannerResponse, error) {
	args := append([]string{"scan"}, files...)
	args = append(args, "--detectors")
	args = append(args, detectorIDs...)
	args = append(args, "--project-root", projectRoot)

	ctx, cancel := context.WithTimeout(ctx, r.scanTimeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.execPath, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("running scanner", "detectors", len(detectorIDs), "files", len(files))
	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return response.MinimalScannerResponse{}, fmt.Errorf("scanner %s timed out after %s", r.name, r.scanTimeout)
	}
	if err != nil {
		return response.MinimalScannerResponse{}, fmt.Errorf("scanner %s failed: %w: %s", r.name, err, strings.TrimSpace(stderr.String()))
	}

	var min response.MinimalScannerResponse
	if err := json.Unmarshal(stdout.Bytes(), &min); err != nil {
		return response.MinimalScannerResponse{}, fmt.Errorf("scanner %s printed invalid JSON: %w", r.name, err)
	}
	return min, nil
}
