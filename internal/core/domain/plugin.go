// Package domain holds the core data model of the scanner plugin
// subsystem: plugin sources, metadata, installed-plugin registry entries,
// and the install error taxonomy.
package domain

import (
	"sort"
	"strings"
	"time"
)

// ScannerKind identifies how an installed scanner is packaged and run.
type ScannerKind string

const (
	KindPython     ScannerKind = "python"
	KindExecutable ScannerKind = "executable"
)

// ParseScannerKind converts a registry string into a ScannerKind.
func ParseScannerKind(value string) (ScannerKind, bool) {
	switch ScannerKind(strings.ToLower(strings.TrimSpace(value))) {
	case KindPython:
		return KindPython, true
	case KindExecutable:
		return KindExecutable, true
	}
	return "", false
}

// NormalizeScannerName converts a declared scanner name into its
// canonical registry key (hyphenated, lowercase).
func NormalizeScannerName(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", "-"))
}

// ModuleName converts a scanner name into the Python module name the
// plugin package exposes after an editable install.
func ModuleName(scannerName string) string {
	return strings.ReplaceAll(NormalizeScannerName(scannerName), "-", "_")
}

// IssueTemplate carries the report-rendering template a detector
// declares. The subsystem stores it verbatim; rendering is owned by the
// reporting layer.
type IssueTemplate struct {
	Title   string `json:"title,omitempty"`
	Opening string `json:"opening,omitempty"`
	Body    string `json:"body,omitempty"`
	Closing string `json:"closing,omitempty"`
}

// DetectorMetadata describes one check a scanner can run.
type DetectorMetadata struct {
	ID          string         `json:"id"`
	UID         string         `json:"uid,omitempty"`
	Description string         `json:"description,omitempty"`
	Severity    Severity       `json:"severity,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Template    *IssueTemplate `json:"template,omitempty"`
}

// HasTags reports whether the detector carries every tag in tags.
func (d DetectorMetadata) HasTags(tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	have := make(map[string]struct{}, len(d.Tags))
	for _, t := range d.Tags {
		have[t] = struct{}{}
	}
	for _, t := range tags {
		if _, ok := have[t]; !ok {
			return false
		}
	}
	return true
}

// ScannerMetadata is the metadata a plugin declares about itself, either
// through its pyproject.toml manifest (Python) or its `metadata` command
// (executable).
type ScannerMetadata struct {
	Name        string                      `json:"name"`
	Org         string                      `json:"org,omitempty"`
	Version     string                      `json:"version,omitempty"`
	Description string                      `json:"description,omitempty"`
	Entrypoint  string                      `json:"entrypoint,omitempty"`
	Extensions  []string                    `json:"extensions"`
	Detectors   map[string]DetectorMetadata `json:"detectors"`
}

// InstalledScanner is the registry value stored under the scanner's
// normalized name. It exists only as the result of a fully successful
// install.
type InstalledScanner struct {
	Path        string                      `json:"path"`
	InstalledAt time.Time                   `json:"installed_at"`
	Version     string                      `json:"version"`
	Kind        ScannerKind                 `json:"type"`
	Org         string                      `json:"org"`
	Description string                      `json:"description"`
	DevelopMode bool                        `json:"develop_mode"`
	Entrypoint  string                      `json:"entrypoint,omitempty"`
	Extensions  []string                    `json:"extensions"`
	Detectors   map[string]DetectorMetadata `json:"detectors"`
}

// DetectorIDs returns the scanner's detector ids in sorted order.
func (s InstalledScanner) DetectorIDs() []string {
	ids := make([]string, 0, len(s.Detectors))
	for id := range s.Detectors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// HasDetector reports whether the scanner provides the given detector id.
func (s InstalledScanner) HasDetector(id string) bool {
	_, ok := s.Detectors[id]
	return ok
}
