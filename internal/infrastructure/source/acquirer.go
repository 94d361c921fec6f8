// Package source resolves scanner install sources (local paths, local
// archives, remote archives) into a staged filesystem location usable
// uniformly by the rest of the install pipeline.
package source

import (
	"context"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"codescope.dev/cli/internal/core/domain"
)

// Staged is the result of source acquisition: a resolved path plus
// release of any staging directory created along the way. Cleanup is
// safe to call on every exit path, success or failure.
type Staged struct {
	// Path is the usable source location: the resolved local path, or
	// the extraction directory for archive sources.
	Path string

	// IsFile is true when the original source was a single local file.
	IsFile bool

	// FromArchive is true when the source was extracted from an archive.
	FromArchive bool

	stagingDir string
	logger     hclog.Logger
}

// Cleanup removes the staging directory, if one was created. It never
// fails the caller; removal problems are logged.
func (s *Staged) Cleanup() {
	if s.stagingDir == "" {
		return
	}
	if err := os.RemoveAll(s.stagingDir); err != nil {
		s.logger.Error("failed to remove staging directory", "path", s.stagingDir, "error", err)
		return
	}
	s.logger.Debug("removed staging directory", "path", s.stagingDir)
	s.stagingDir = ""
}

// Acquirer stages scanner sources for installation.
type Acquirer struct {
	downloader *Downloader
	logger     hclog.Logger
}

// NewAcquirer creates a source acquirer.
func NewAcquirer(downloader *Downloader, logger hclog.Logger) *Acquirer {
	return &Acquirer{
		downloader: downloader,
		logger:     logger.Named("source"),
	}
}

// Acquire resolves src into a staged location. Local paths are used in
// place; archives are extracted into a fresh staging directory that the
// returned Staged owns.
func (a *Acquirer) Acquire(ctx context.Context, src domain.ScannerSource) (*Staged, error) {
	switch src.Type {
	case domain.SourceLocalPath:
		return a.acquireLocalPath(src.Locator)
	case domain.SourceLocalArchive, domain.SourceRemoteArchive:
		return a.acquireArchive(ctx, src)
	default:
		return nil, &domain.SourceInvalidError{Reason: "unknown source type " + string(src.Type)}
	}
}

func (a *Acquirer) acquireLocalPath(locator string) (*Staged, error) {
	resolved, err := filepath.Abs(expandHome(locator))
	if err != nil {
		return nil, &domain.SourceInvalidError{Reason: "cannot resolve path " + locator, Err: err}
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return nil, &domain.SourceInvalidError{Reason: "local path does not exist: " + resolved, Err: err}
	}
	a.logger.Debug("using local source path", "path", resolved, "is_file", !info.IsDir())
	return &Staged{Path: resolved, IsFile: !info.IsDir(), logger: a.logger}, nil
}

func (a *Acquirer) acquireArchive(ctx context.Context, src domain.ScannerSource) (*Staged, error) {
	stagingDir, err := os.MkdirTemp("", "codescope-scanner-install-*")
	if err != nil {
		return nil, &domain.SourceInvalidError{Reason: "cannot create staging directory", Err: err}
	}
	staged := &Staged{stagingDir: stagingDir, FromArchive: true, logger: a.logger}

	archivePath := src.Locator
	if src.Type == domain.SourceRemoteArchive {
		archivePath = filepath.Join(stagingDir, "download"+archiveExt(src.Locator))
		if err := a.downloader.Download(ctx, src.Locator, archivePath); err != nil {
			staged.Cleanup()
			return nil, err
		}
	} else {
		archivePath = expandHome(archivePath)
		info, err := os.Stat(archivePath)
		if err != nil || info.IsDir() {
			staged.Cleanup()
			return nil, &domain.SourceInvalidError{Reason: "local archive is not a file: " + archivePath, Err: err}
		}
	}

	extractDir := filepath.Join(stagingDir, "extracted")
	if err := os.Mkdir(extractDir, 0o755); err != nil {
		staged.Cleanup()
		return nil, &domain.SourceInvalidError{Reason: "cannot create extraction directory", Err: err}
	}
	if err := ExtractArchive(archivePath, extractDir); err != nil {
		staged.Cleanup()
		return nil, err
	}

	a.logger.Debug("source extracted", "archive", archivePath, "dir", extractDir)
	staged.Path = extractDir
	return staged, nil
}

// expandHome resolves a leading ~/ against the user home directory.
func expandHome(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
