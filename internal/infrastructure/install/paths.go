// Package install implements the scanner install state machine: target
// preparation, file placement, environment setup, registration, and
// rollback, plus uninstallation.
package install

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths derives every per-scanner filesystem location from one base
// directory. Install and environment paths are deterministic functions
// of the scanner's normalized name.
type Paths struct {
	base string
}

// NewPaths creates the path layout rooted at base (normally
// ~/.codescope/scanners).
func NewPaths(base string) Paths {
	return Paths{base: base}
}

// DefaultBase returns the default user-scoped scanners directory.
func DefaultBase() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".codescope", "scanners"), nil
}

// Base returns the scanners base directory.
func (p Paths) Base() string { return p.base }

// InstallDir returns the install location for a scanner name.
func (p Paths) InstallDir(name string) string {
	return filepath.Join(p.base, name)
}

// VenvDir returns the virtual environment location for a scanner name.
func (p Paths) VenvDir(name string) string {
	return filepath.Join(p.base, "venvs", name)
}

// RegistryFile returns the location of the registry document.
func (p Paths) RegistryFile() string {
	return filepath.Join(p.base, "scanners.json")
}

// ExecutableName is the fixed file name an executable scanner is
// installed under inside its install directory.
const ExecutableName = "scanner"

// ExecutablePath returns the installed binary location for an
// executable scanner.
func (p Paths) ExecutablePath(name string) string {
	return filepath.Join(p.InstallDir(name), ExecutableName)
}

// ArtifactsExist reports whether any install artifacts exist for name.
func (p Paths) ArtifactsExist(name string) bool {
	return pathPresent(p.InstallDir(name)) || pathPresent(p.VenvDir(name))
}

// RemoveArtifacts deletes the install directory and environment
// directory for name if present. It returns an error when any removal
// fails; removal of absent paths succeeds.
func (p Paths) RemoveArtifacts(name string) error {
	var firstErr error
	for _, path := range []string{p.InstallDir(name), p.VenvDir(name)} {
		if err := removeDirOrLink(path); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// pathPresent reports existence including dangling symlinks.
func pathPresent(path string) bool {
	if _, err := os.Lstat(path); err == nil {
		return true
	}
	return false
}

// removeDirOrLink removes a directory tree, a symlink, or a file.
// Missing paths are not an error.
func removeDirOrLink(path string) error {
	info, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", path, err)
	}
	if info.Mode()&os.ModeSymlink != 0 || !info.IsDir() {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
		return nil
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}
