package ports

import "codescope.dev/cli/internal/core/domain"

// ScannerRegistry is the durable record of installed scanners. Mutating
// calls persist the whole document synchronously.
type ScannerRegistry interface {
	// Has reports whether a scanner is registered under name.
	Has(name string) bool

	// Get returns the registry entry for name.
	Get(name string) (domain.InstalledScanner, bool)

	// All returns every registered scanner keyed by normalized name.
	All() map[string]domain.InstalledScanner

	// Names returns the registered scanner names in sorted order.
	Names() []string

	// Add adds or replaces the entry for name and persists the registry.
	Add(name string, entry domain.InstalledScanner) error

	// Remove deletes the entry for name, if present, and persists the
	// registry. Removing an absent name is a no-op.
	Remove(name string) error

	// Reload re-reads the registry document from disk.
	Reload() error
}
