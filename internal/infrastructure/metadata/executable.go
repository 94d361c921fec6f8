package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"codescope.dev/cli/internal/core/domain"
)

// DefaultMetadataTimeout bounds an executable scanner's metadata call.
const DefaultMetadataTimeout = 15 * time.Second

// executableMetadata is the JSON document an executable scanner prints
// for `scanner metadata`. Detectors arrive as a list and are re-keyed by
// id for the registry.
type executableMetadata struct {
	Name        string                    `json:"name"`
	Version     string                    `json:"version"`
	Org         string                    `json:"org"`
	Description string                    `json:"description"`
	Extensions  []string                  `json:"extensions"`
	Detectors   []domain.DetectorMetadata `json:"detectors"`
}

// ExecutableProber queries executable scanners for their declared
// metadata by invoking `<binary> metadata`.
type ExecutableProber struct {
	timeout time.Duration
	logger  hclog.Logger
}

// NewExecutableProber creates a metadata prober with the given call
// timeout.
func NewExecutableProber(timeout time.Duration, logger hclog.Logger) *ExecutableProber {
	if timeout <= 0 {
		timeout = DefaultMetadataTimeout
	}
	return &ExecutableProber{timeout: timeout, logger: logger.Named("metadata.exec")}
}

// FetchMetadata runs `<execPath> metadata` under the prober's timeout
// and parses its stdout. A timeout is a dependency-class failure; a
// non-zero exit or malformed JSON is a metadata error.
func (p *ExecutableProber) FetchMetadata(ctx context.Context, execPath string) (domain.ScannerMetadata, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, execPath, "metadata")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	p.logger.Debug("querying executable scanner metadata", "path", execPath)
	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.ScannerMetadata{}, &domain.DependencyInstallError{
			Reason: "timeout fetching metadata from executable scanner " + execPath,
		}
	}
	if err != nil {
		return domain.ScannerMetadata{}, &domain.MetadataInvalidError{
			Reason: "metadata command failed for " + execPath + ": " + strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}

	var raw executableMetadata
	if err := json.Unmarshal(stdout.Bytes(), &raw); err != nil {
		return domain.ScannerMetadata{}, &domain.MetadataInvalidError{
			Reason: "metadata command printed invalid JSON for " + execPath,
			Err:    err,
		}
	}
	if raw.Name == "" {
		return domain.ScannerMetadata{}, &domain.MetadataInvalidError{
			Reason: "scanner metadata is missing the required name field",
		}
	}

	meta := domain.ScannerMetadata{
		Name:        raw.Name,
		Version:     orUnknown(raw.Version),
		Org:         orUnknown(raw.Org),
		Description: raw.Description,
		Extensions:  raw.Extensions,
		Detectors:   keyDetectors(raw.Detectors, p.logger),
	}
	if meta.Extensions == nil {
		meta.Extensions = []string{}
	}
	return meta, nil
}

// keyDetectors converts the declared detector list into the map shape
// the registry stores. Entries without an id are skipped with a warning.
func keyDetectors(detectors []domain.DetectorMetadata, logger hclog.Logger) map[string]domain.DetectorMetadata {
	out := make(map[string]domain.DetectorMetadata, len(detectors))
	for _, det := range detectors {
		if det.ID == "" {
			logger.Warn("skipping detector entry without id")
			continue
		}
		out[det.ID] = det
	}
	return out
}

func orUnknown(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
