// Package expand converts minimal, offset-addressed scanner responses
// into complete responses carrying line/column positions and literal
// source text.
package expand

import (
	"fmt"
	"path/filepath"

	"codescope.dev/cli/internal/core/domain/response"
	"codescope.dev/cli/internal/core/sourcecode"
)

// Instance expands one minimal instance using the shared source manager.
// Instance paths are relative to the project root.
func Instance(min response.MinimalInstance, scm *sourcecode.Manager, projectRoot string) (response.CompleteInstance, error) {
	fullPath := filepath.Join(projectRoot, min.Path)

	if err := scm.Load(fullPath); err != nil {
		return response.CompleteInstance{}, err
	}

	start, err := scm.OffsetToPosition(fullPath, min.OffsetStart)
	if err != nil {
		return response.CompleteInstance{}, fmt.Errorf("failed to resolve start offset: %w", err)
	}
	end, err := scm.OffsetToPosition(fullPath, min.OffsetEnd)
	if err != nil {
		return response.CompleteInstance{}, fmt.Errorf("failed to resolve end offset: %w", err)
	}
	lines, err := scm.TextRange(fullPath, min.OffsetStart, min.OffsetEnd)
	if err != nil {
		return response.CompleteInstance{}, fmt.Errorf("failed to slice source text: %w", err)
	}

	return response.CompleteInstance{
		Location: response.Location{
			Path:  min.Path,
			Start: response.LocationPoint{Col: start.Col, Line: start.Line, Offset: min.OffsetStart},
			End:   response.LocationPoint{Col: end.Col, Line: end.Line, Offset: min.OffsetEnd},
		},
		Lines: lines,
		Fixes: min.Fixes,
		Extra: min.Extra,
	}, nil
}

// Finding expands every instance of a minimal finding and tallies the
// impacted files by base name.
func Finding(min response.MinimalFinding, scm *sourcecode.Manager, projectRoot string) (response.CompleteFinding, error) {
	instances := make([]response.CompleteInstance, 0, len(min.Instances))
	impacted := make(map[string]int)
	for _, mi := range min.Instances {
		inst, err := Instance(mi, scm, projectRoot)
		if err != nil {
			return response.CompleteFinding{}, err
		}
		instances = append(instances, inst)
		impacted[filepath.Base(inst.Location.Path)]++
	}
	return response.CompleteFinding{Instances: instances, Impacted: impacted}, nil
}

// DetectorResponse expands one detector's minimal response.
func DetectorResponse(min response.MinimalDetectorResponse, scm *sourcecode.Manager, projectRoot string) (response.CompleteDetectorResponse, error) {
	findings := make([]response.CompleteFinding, 0, len(min.Findings))
	for _, mf := range min.Findings {
		finding, err := Finding(mf, scm, projectRoot)
		if err != nil {
			return response.CompleteDetectorResponse{}, err
		}
		findings = append(findings, finding)
	}
	return response.CompleteDetectorResponse{
		Findings: findings,
		Errors:   wrapErrors(min.Errors),
	}, nil
}

// ScannerResponse expands a whole minimal scanner response.
func ScannerResponse(min response.MinimalScannerResponse, scm *sourcecode.Manager, projectRoot string) (response.CompleteScannerResponse, error) {
	responses := make(map[string]response.CompleteDetectorResponse, len(min.Responses))
	for detectorID, mdr := range min.Responses {
		dr, err := DetectorResponse(mdr, scm, projectRoot)
		if err != nil {
			return response.CompleteScannerResponse{}, fmt.Errorf("failed to expand detector %s: %w", detectorID, err)
		}
		responses[detectorID] = dr
	}
	return response.CompleteScannerResponse{
		Errors:    wrapErrors(min.Errors),
		Scanned:   min.Scanned,
		Responses: responses,
	}, nil
}

func wrapErrors(messages []string) []response.Error {
	errs := make([]response.Error, 0, len(messages))
	for _, m := range messages {
		errs = append(errs, response.Error{Message: m})
	}
	return errs
}
