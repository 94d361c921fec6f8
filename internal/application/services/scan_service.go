package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"

	"codescope.dev/cli/internal/core/domain"
	"codescope.dev/cli/internal/core/domain/response"
	"codescope.dev/cli/internal/core/expand"
	"codescope.dev/cli/internal/core/ports"
	"codescope.dev/cli/internal/core/sourcecode"
)

// RunnerSource builds runners for installed scanners.
type RunnerSource interface {
	Runners(names []string) ([]ports.ScannerRunner, error)
}

// DetectorRouter maps detector criteria to the scanners providing
// them.
type DetectorRouter interface {
	ScannerNamesByCriteria(detectors []string, tags []string, severities []domain.Severity) []string
}

// ScanRequest selects what to scan and with what. Detector ids may be
// qualified as "scanner#detector" to pin a detector to one scanner.
// Empty Scanners and Detectors means every detector of every installed
// scanner.
type ScanRequest struct {
	Scanners    []string
	Detectors   []string
	Files       []string
	ProjectRoot string
}

// ScanResult aggregates per-scanner results. Failed lists scanners
// whose run errored; their failures never suppress other scanners'
// findings.
type ScanResult struct {
	Responses map[string]response.CompleteScannerResponse
	Failed    []string
}

// ScanService runs scanners over project files and expands their
// offset-based findings into line and column positions.
type ScanService struct {
	registry ports.ScannerRegistry
	router   DetectorRouter
	runners  RunnerSource
	logger   hclog.Logger
}

// NewScanService creates a ScanService.
func NewScanService(registry ports.ScannerRegistry, router DetectorRouter, runners RunnerSource, logger hclog.Logger) *ScanService {
	return &ScanService{
		registry: registry,
		router:   router,
		runners:  runners,
		logger:   logger.Named("scan"),
	}
}

// Scan runs the selected scanners sequentially. A scanner that fails
// is logged and excluded from the aggregate; the scan as a whole fails
// only when nothing could be selected or every selected scanner
// failed.
func (s *ScanService) Scan(ctx context.Context, req ScanRequest) (ScanResult, error) {
	if len(req.Files) == 0 {
		return ScanResult{}, fmt.Errorf("no files to scan")
	}

	plan, err := s.plan(req)
	if err != nil {
		return ScanResult{}, err
	}
	if len(plan) == 0 {
		return ScanResult{}, fmt.Errorf("no installed scanner matches the requested detectors")
	}

	names := make([]string, 0, len(plan))
	for name := range plan {
		names = append(names, name)
	}
	sort.Strings(names)

	runners, err := s.runners.Runners(names)
	if err != nil {
		return ScanResult{}, err
	}

	scm := sourcecode.NewManager()
	result := ScanResult{Responses: make(map[string]response.CompleteScannerResponse)}
	for _, r := range runners {
		min, err := r.Scan(ctx, plan[r.Name()], req.Files, req.ProjectRoot)
		if err != nil {
			s.logger.Error("scanner run failed", "scanner", r.Name(), "error", err)
			result.Failed = append(result.Failed, r.Name())
			continue
		}
		complete, err := expand.ScannerResponse(min, scm, req.ProjectRoot)
		if err != nil {
			s.logger.Error("could not expand scanner response", "scanner", r.Name(), "error", err)
			result.Failed = append(result.Failed, r.Name())
			continue
		}
		result.Responses[r.Name()] = complete
	}

	if len(result.Responses) == 0 {
		return result, fmt.Errorf("all %d selected scanners failed", len(runners))
	}
	return result, nil
}

// plan resolves the request into per-scanner detector lists. Each
// scanner receives only the requested detectors it actually provides;
// an empty detector list means all of the scanner's detectors.
func (s *ScanService) plan(req ScanRequest) (map[string][]string, error) {
	pinned := make(map[string][]string)
	var bare []string
	for _, id := range req.Detectors {
		if scanner, detector, ok := strings.Cut(id, "#"); ok {
			pinned[scanner] = append(pinned[scanner], detector)
		} else {
			bare = append(bare, id)
		}
	}

	names := req.Scanners
	if len(names) == 0 {
		if len(bare) > 0 {
			names = s.router.ScannerNamesByCriteria(bare, nil, nil)
		} else if len(pinned) == 0 {
			names = s.registry.Names()
		}
		for scanner := range pinned {
			if !contains(names, scanner) {
				names = append(names, scanner)
			}
		}
	}

	plan := make(map[string][]string, len(names))
	for _, name := range names {
		entry, ok := s.registry.Get(name)
		if !ok {
			return nil, fmt.Errorf("scanner %s is not installed", name)
		}
		detectors := s.detectorsFor(entry, bare, pinned[name])
		if len(req.Detectors) > 0 && len(detectors) == 0 {
			// Never widen the selection: a scanner without any of the
			// requested detectors is skipped, not run with its full
			// catalog.
			if contains(req.Scanners, name) {
				s.logger.Warn("scanner provides none of the requested detectors, skipping", "scanner", name)
			} else {
				s.logger.Debug("scanner provides none of the requested detectors", "scanner", name)
			}
			continue
		}
		plan[name] = detectors
	}
	return plan, nil
}

func (s *ScanService) detectorsFor(entry domain.InstalledScanner, bare, pinned []string) []string {
	if len(bare) == 0 && len(pinned) == 0 {
		return entry.DetectorIDs()
	}
	var detectors []string
	for _, id := range bare {
		if entry.HasDetector(id) {
			detectors = append(detectors, id)
		}
	}
	for _, id := range pinned {
		if entry.HasDetector(id) && !contains(detectors, id) {
			detectors = append(detectors, id)
		}
	}
	sort.Strings(detectors)
	return detectors
}

func contains(haystack []string, needle string) bool {
	for _, h := range haystack {
		if h == needle {
			return true
		}
	}
	return false
}
