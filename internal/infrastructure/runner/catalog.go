package runner

import (
	"sort"
	"strings"

	"codescope.dev/cli/internal/core/domain"
)

// CatalogEntry pairs a detector with the scanner that provides it.
type CatalogEntry struct {
	ID       string
	Scanner  string
	Metadata domain.DetectorMetadata
}

// Catalog is a merged view of every detector across installed
// scanners. A detector provided by a single scanner keeps its bare id;
// when two scanners expose the same id each copy is keyed
// "scanner#detector" so both stay addressable.
type Catalog struct {
	entries map[string]CatalogEntry
}

// BuildCatalog merges the detector tables of the given registry
// entries.
func BuildCatalog(scanners map[string]domain.InstalledScanner) *Catalog {
	owners := make(map[string][]string)
	for name, entry := range scanners {
		for id := range entry.Detectors {
			owners[id] = append(owners[id], name)
		}
	}

	entries := make(map[string]CatalogEntry)
	for name, entry := range scanners {
		for id, meta := range entry.Detectors {
			key := id
			if len(owners[id]) > 1 {
				key = name + "#" + id
			}
			entries[key] = CatalogEntry{ID: id, Scanner: name, Metadata: meta}
		}
	}
	return &Catalog{entries: entries}
}

// Get looks a detector up by catalog key. A qualified
// "scanner#detector" key always works, even for detectors that did not
// collide.
func (c *Catalog) Get(key string) (CatalogEntry, bool) {
	if e, ok := c.entries[key]; ok {
		return e, true
	}
	scanner, id, found := strings.Cut(key, "#")
	if !found {
		return CatalogEntry{}, false
	}
	if e, ok := c.entries[id]; ok && e.Scanner == scanner {
		return e, true
	}
	return CatalogEntry{}, false
}

// Keys returns every catalog key in sorted order.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Entries returns every entry sorted by catalog key.
func (c *Catalog) Entries() []CatalogEntry {
	out := make([]CatalogEntry, 0, len(c.entries))
	for _, k := range c.Keys() {
		out = append(out, c.entries[k])
	}
	return out
}

// Len reports the number of catalog entries.
func (c *Catalog) Len() int { return len(c.entries) }
