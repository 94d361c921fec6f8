// Package registry implements the durable scanner registry: one JSON
// document mapping normalized scanner names to their installed state,
// loaded fully into memory and rewritten whole on every mutation.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/go-hclog"

	"codescope.dev/cli/internal/core/domain"
)

// FileRegistry manages scanner registration state in a single JSON file.
// Writes are last-writer-wins; concurrent processes mutating the same
// registry file can overwrite each other (an accepted limitation).
type FileRegistry struct {
	filePath string
	scanners map[string]domain.InstalledScanner
	logger   hclog.Logger
}

// Open loads the registry document at filePath into memory. A missing
// file yields an empty registry; a malformed document is an error.
func Open(filePath string, logger hclog.Logger) (*FileRegistry, error) {
	r := &FileRegistry{
		filePath: filePath,
		scanners: make(map[string]domain.InstalledScanner),
		logger:   logger.Named("registry"),
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Path returns the location of the backing registry document.
func (r *FileRegistry) Path() string {
	return r.filePath
}

// Reload re-reads the registry document from disk, replacing the
// in-memory state.
func (r *FileRegistry) Reload() error {
	data, err := os.ReadFile(r.filePath)
	if os.IsNotExist(err) {
		r.logger.Debug("registry file not found, starting empty", "path", r.filePath)
		r.scanners = make(map[string]domain.InstalledScanner)
		return nil
	}
	if err != nil {
		return &domain.RegistryIOError{Op: "read", Err: err}
	}

	scanners := make(map[string]domain.InstalledScanner)
	if err := json.Unmarshal(data, &scanners); err != nil {
		return &domain.RegistryIOError{Op: "parse", Err: err}
	}
	r.scanners = scanners
	r.logger.Debug("loaded registry", "scanners", len(scanners))
	return nil
}

// Has reports whether a scanner is registered under name.
func (r *FileRegistry) Has(name string) bool {
	_, ok := r.scanners[name]
	return ok
}

// Get returns the registry entry for name.
func (r *FileRegistry) Get(name string) (domain.InstalledScanner, bool) {
	entry, ok := r.scanners[name]
	return entry, ok
}

// All returns a copy of every registered scanner keyed by name.
func (r *FileRegistry) All() map[string]domain.InstalledScanner {
	out := make(map[string]domain.InstalledScanner, len(r.scanners))
	for name, entry := range r.scanners {
		out[name] = entry
	}
	return out
}

// Names returns the registered scanner names in sorted order.
func (r *FileRegistry) Names() []string {
	names := make([]string, 0, len(r.scanners))
	for name := range r.scanners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Add adds or replaces the entry for name and synchronously rewrites the
// whole registry document.
func (r *FileRegistry) Add(name string, entry domain.InstalledScanner) error {
	r.scanners[name] = entry
	if err := r.save(); err != nil {
		return err
	}
	r.logger.Debug("registered scanner", "name", name, "detectors", len(entry.Detectors))
	return nil
}

// Remove deletes the entry for name, if present, and rewrites the
// registry document. Removing an absent name is a no-op.
func (r *FileRegistry) Remove(name string) error {
	if _, ok := r.scanners[name]; !ok {
		r.logger.Debug("scanner not in registry, nothing to remove", "name", name)
		return nil
	}
	delete(r.scanners, name)
	if err := r.save(); err != nil {
		return err
	}
	r.logger.Debug("removed scanner from registry", "name", name)
	return nil
}

// save rewrites the entire registry document atomically.
func (r *FileRegistry) save() error {
	if err := os.MkdirAll(filepath.Dir(r.filePath), 0o755); err != nil {
		return &domain.RegistryIOError{Op: "write", Err: fmt.Errorf("failed to create registry directory: %w", err)}
	}

	data, err := json.MarshalIndent(r.scanners, "", "  ")
	if err != nil {
		return &domain.RegistryIOError{Op: "write", Err: err}
	}

	tempFile := r.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return &domain.RegistryIOError{Op: "write", Err: err}
	}
	if err := os.Rename(tempFile, r.filePath); err != nil {
		os.Remove(tempFile)
		return &domain.RegistryIOError{Op: "write", Err: err}
	}
	return nil
}
