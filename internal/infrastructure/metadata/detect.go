// Package metadata inspects a staged scanner source, decides its kind
// (Python package or standalone executable), and extracts the metadata
// the scanner declares about itself.
package metadata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"codescope.dev/cli/internal/core/domain"
)

// rootDenylist holds common non-plugin filenames excluded when searching
// the source root for a single executable candidate.
var rootDenylist = map[string]struct{}{
	"__main__.py":          {},
	"activate":             {},
	"run":                  {},
	"setup.py":             {},
	"pyproject.toml":       {},
	"README":               {},
	"README.md":            {},
	"LICENSE":              {},
	"requirements.txt":     {},
	"requirements-dev.txt": {},
}

// Detection is the outcome of source inspection: the scanner kind, its
// declared metadata, and (for executables) the executable's location
// inside the source.
type Detection struct {
	Kind           domain.ScannerKind
	Metadata       domain.ScannerMetadata
	ExecutablePath string
}

// Detector decides scanner kind and fetches declared metadata from a
// staged source root. Only the root is inspected, never recursively.
type Detector struct {
	exec   *ExecutableProber
	logger hclog.Logger
}

// NewDetector creates a source detector.
func NewDetector(exec *ExecutableProber, logger hclog.Logger) *Detector {
	return &Detector{exec: exec, logger: logger.Named("metadata")}
}

// Detect inspects the staged source at sourcePath. isFile marks sources
// that were a single local file.
func (d *Detector) Detect(ctx context.Context, sourcePath string, isFile bool) (Detection, error) {
	if isFile {
		return d.detectExecutable(ctx, sourcePath)
	}

	manifestPath := filepath.Join(sourcePath, "pyproject.toml")
	if info, err := os.Stat(manifestPath); err == nil && !info.IsDir() {
		meta, err := ParseManifest(manifestPath)
		if err != nil {
			return Detection{}, err
		}
		d.logger.Debug("detected python scanner", "name", meta.Name, "source", sourcePath)
		return Detection{Kind: domain.KindPython, Metadata: meta}, nil
	}

	candidate, err := findExecutableAtRoot(sourcePath)
	if err != nil {
		return Detection{}, err
	}
	return d.detectExecutable(ctx, candidate)
}

func (d *Detector) detectExecutable(ctx context.Context, execPath string) (Detection, error) {
	if err := EnsureExecutable(execPath); err != nil {
		return Detection{}, err
	}
	meta, err := d.exec.FetchMetadata(ctx, execPath)
	if err != nil {
		return Detection{}, err
	}
	d.logger.Debug("detected executable scanner", "name", meta.Name, "path", execPath)
	return Detection{Kind: domain.KindExecutable, Metadata: meta, ExecutablePath: execPath}, nil
}

// EnsureExecutable sets the execute bits on path, failing when the file
// cannot be made runnable.
func EnsureExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &domain.MetadataInvalidError{Reason: "executable not found: " + path, Err: err}
	}
	if info.Mode()&0o111 != 0 {
		return nil
	}
	if err := os.Chmod(path, info.Mode()|0o111); err != nil {
		return &domain.MetadataInvalidError{Reason: "could not make source executable: " + path, Err: err}
	}
	return nil
}

// findExecutableAtRoot lists the immediate entries of dir, excluding
// dotfiles and the denylist, and returns the single remaining file.
// Zero or multiple candidates is a metadata error.
func findExecutableAtRoot(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", &domain.MetadataInvalidError{Reason: "cannot list source directory: " + dir, Err: err}
	}

	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name[0] == '.' {
			continue
		}
		if _, denied := rootDenylist[name]; denied {
			continue
		}
		candidates = append(candidates, filepath.Join(dir, name))
	}

	switch len(candidates) {
	case 1:
		return candidates[0], nil
	case 0:
		return "", &domain.MetadataInvalidError{
			Reason: fmt.Sprintf("%s is not a recognizable scanner: no pyproject.toml and no executable file at the root", dir),
		}
	default:
		return "", &domain.MetadataInvalidError{
			Reason: fmt.Sprintf("%s is not a recognizable scanner: multiple executable candidates at the root", dir),
		}
	}
}
