// Package ports defines the interfaces between the scan/install
// application services and their infrastructure implementations.
package ports

import (
	"context"

	"codescope.dev/cli/internal/core/domain"
	"codescope.dev/cli/internal/core/domain/response"
)

// ScannerRunner is the uniform execution interface over one installed
// scanner, regardless of its kind. All operations run the scanner out of
// process and are bounded by the caller's context.
type ScannerRunner interface {
	// Name returns the scanner's normalized name.
	Name() string

	// DetectorMetadata returns the scanner's supported detectors keyed
	// by detector id.
	DetectorMetadata(ctx context.Context) (map[string]domain.DetectorMetadata, error)

	// TestDirs returns the scanner's declared root test directories,
	// empty when the scanner declares none.
	TestDirs(ctx context.Context) ([]string, error)

	// Scan runs the given detectors over the given files and returns the
	// scanner's minimal, offset-addressed response.
	Scan(ctx context.Context, detectorIDs []string, files []string, projectRoot string) (response.MinimalScannerResponse, error)
}
