package ports

import (
	"context"

	"codescope.dev/cli/internal/core/domain"
)

// DetectorCollector queries a freshly installed scanner for the
// detectors it supports, used at registration time. Python scanners are
// asked through their own environment; executables declare detectors in
// their metadata and need no collection call.
type DetectorCollector interface {
	CollectDetectors(ctx context.Context, name string, entry domain.InstalledScanner) (map[string]domain.DetectorMetadata, error)
}
