package registry

import (
	"sort"

	"codescope.dev/cli/internal/core/domain"
)

// DetectorSummary is a query result row describing one detector and the
// scanner providing it.
type DetectorSummary struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Severity    domain.Severity `json:"severity"`
	Tags        []string        `json:"tags"`
	Scanner     string          `json:"scanner"`
}

// TagInfo groups detectors and scanners under one tag.
type TagInfo struct {
	Name          string   `json:"name"`
	Detectors     []string `json:"detectors"`
	Scanners      []string `json:"scanners"`
	DetectorCount int      `json:"detector_count"`
	ScannerCount  int      `json:"scanner_count"`
}

// ScannerMatch pairs a scanner name with its registry entry.
type ScannerMatch struct {
	Name    string
	Scanner domain.InstalledScanner
}

// AllDetectorNames returns the sorted union of detector ids across all
// registered scanners.
func (r *FileRegistry) AllDetectorNames() []string {
	seen := make(map[string]struct{})
	for _, entry := range r.scanners {
		for id := range entry.Detectors {
			seen[id] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for id := range seen {
		names = append(names, id)
	}
	sort.Strings(names)
	return names
}

// DetectorInfo finds metadata for a detector id, searching across all
// scanners in name order.
func (r *FileRegistry) DetectorInfo(detectorID string) (domain.DetectorMetadata, bool) {
	for _, name := range r.Names() {
		if meta, ok := r.scanners[name].Detectors[detectorID]; ok {
			return meta, true
		}
	}
	return domain.DetectorMetadata{}, false
}

// DetectorsByCriteria returns detectors matching the given scanner,
// severity, and tag filters, sorted by detector name then scanner. A
// detector id provided by several scanners yields one row per
// provider. Nil filters match everything.
func (r *FileRegistry) DetectorsByCriteria(scanners []string, severities []domain.Severity, tags []string) []DetectorSummary {
	var out []DetectorSummary
	for _, scannerName := range r.selectScanners(scanners) {
		entry := r.scanners[scannerName]
		for detectorID, meta := range entry.Detectors {
			if !severityMatches(meta.Severity, severities) || !meta.HasTags(tags) {
				continue
			}
			out = append(out, DetectorSummary{
				Name:        detectorID,
				Description: meta.Description,
				Severity:    meta.Severity,
				Tags:        meta.Tags,
				Scanner:     scannerName,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Scanner < out[j].Scanner
	})
	return out
}

// TagsByCriteria returns tag groupings across the selected scanners,
// optionally filtered by severity, sorted by tag name.
func (r *FileRegistry) TagsByCriteria(scanners []string, severities []domain.Severity) []TagInfo {
	info := make(map[string]*TagInfo)
	for _, scannerName := range r.selectScanners(scanners) {
		entry := r.scanners[scannerName]
		for detectorID, meta := range entry.Detectors {
			if !severityMatches(meta.Severity, severities) {
				continue
			}
			for _, tag := range meta.Tags {
				ti, ok := info[tag]
				if !ok {
					ti = &TagInfo{Name: tag}
					info[tag] = ti
				}
				if !contains(ti.Detectors, detectorID) {
					ti.Detectors = append(ti.Detectors, detectorID)
					ti.DetectorCount++
				}
				if !contains(ti.Scanners, scannerName) {
					ti.Scanners = append(ti.Scanners, scannerName)
					ti.ScannerCount++
				}
			}
		}
	}

	out := make([]TagInfo, 0, len(info))
	for _, ti := range info {
		sort.Strings(ti.Detectors)
		sort.Strings(ti.Scanners)
		out = append(out, *ti)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SeveritiesByCriteria maps each severity to the sorted detector names
// carrying it, across the selected scanners, optionally filtered by
// tags.
func (r *FileRegistry) SeveritiesByCriteria(scanners []string, tags []string) map[domain.Severity][]string {
	out := make(map[domain.Severity][]string)
	for _, scannerName := range r.selectScanners(scanners) {
		entry := r.scanners[scannerName]
		for detectorID, meta := range entry.Detectors {
			if !meta.HasTags(tags) {
				continue
			}
			severity := meta.Severity
			if severity == "" {
				severity = domain.SeverityUnknown
			}
			out[severity] = append(out[severity], detectorID)
		}
	}
	for severity := range out {
		sort.Strings(out[severity])
	}
	return out
}

// ScannersByCriteria returns scanners providing at least one detector
// matching the given detector-id, tag, and severity filters, sorted by
// scanner name.
func (r *FileRegistry) ScannersByCriteria(detectors []string, tags []string, severities []domain.Severity) []ScannerMatch {
	var matches []ScannerMatch
	for _, scannerName := range r.Names() {
		entry := r.scanners[scannerName]
		for detectorID, meta := range entry.Detectors {
			if len(detectors) > 0 && !contains(detectors, detectorID) {
				continue
			}
			if !meta.HasTags(tags) || !severityMatches(meta.Severity, severities) {
				continue
			}
			matches = append(matches, ScannerMatch{Name: scannerName, Scanner: entry})
			break
		}
	}
	return matches
}

// ScannerNamesByCriteria is ScannersByCriteria reduced to names.
func (r *FileRegistry) ScannerNamesByCriteria(detectors []string, tags []string, severities []domain.Severity) []string {
	matches := r.ScannersByCriteria(detectors, tags, severities)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m.Name)
	}
	return names
}

// selectScanners returns the sorted subset of registered names matching
// the filter, or all registered names when the filter is nil.
func (r *FileRegistry) selectScanners(filter []string) []string {
	if len(filter) == 0 {
		return r.Names()
	}
	var names []string
	for _, name := range filter {
		if _, ok := r.scanners[name]; ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func severityMatches(severity domain.Severity, filter []domain.Severity) bool {
	if len(filter) == 0 {
		return true
	}
	for _, s := range filter {
		if severity == s {
			return true
		}
	}
	return false
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
