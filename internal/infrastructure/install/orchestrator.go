package install

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"

	"codescope.dev/cli/internal/core/domain"
	"codescope.dev/cli/internal/core/ports"
	"codescope.dev/cli/internal/infrastructure/envbuild"
	"codescope.dev/cli/internal/infrastructure/metadata"
	"codescope.dev/cli/internal/infrastructure/source"
)

// Request describes one scanner install.
type Request struct {
	Source    domain.ScannerSource
	Reinstall bool
	Develop   bool
}

// Result reports a completed install.
type Result struct {
	Name        string
	Kind        domain.ScannerKind
	DevelopMode bool
	Detectors   int
}

// Orchestrator runs the install state machine:
//
//	Prepare-Source -> Fetch-Metadata -> Determine-Paths -> Prepare-Target
//	-> Place-Files -> Post-Install-Setup -> Register -> Cleanup (always)
//
// Any failure after source acquisition rolls back every artifact created
// for the scanner before the error propagates; success leaves a fully
// registered, runnable scanner.
type Orchestrator struct {
	acquirer  *source.Acquirer
	detector  *metadata.Detector
	builder   *envbuild.PythonBuilder
	registry  ports.ScannerRegistry
	collector ports.DetectorCollector
	paths     Paths
	logger    hclog.Logger
}

// NewOrchestrator assembles an install orchestrator.
func NewOrchestrator(
	acquirer *source.Acquirer,
	detector *metadata.Detector,
	builder *envbuild.PythonBuilder,
	reg ports.ScannerRegistry,
	collector ports.DetectorCollector,
	paths Paths,
	logger hclog.Logger,
) *Orchestrator {
	return &Orchestrator{
		acquirer:  acquirer,
		detector:  detector,
		builder:   builder,
		registry:  reg,
		collector: collector,
		paths:     paths,
		logger:    logger.Named("install"),
	}
}

// Install runs the full install sequence for one scanner.
func (o *Orchestrator) Install(ctx context.Context, req Request) (Result, error) {
	staged, err := o.acquirer.Acquire(ctx, req.Source)
	if err != nil {
		return Result{}, err
	}
	defer staged.Cleanup()

	detection, err := o.detector.Detect(ctx, staged.Path, staged.IsFile)
	if err != nil {
		return Result{}, err
	}

	name := domain.NormalizeScannerName(detection.Metadata.Name)
	o.logger.Info("installing scanner", "name", name, "kind", detection.Kind)

	if err := o.prepareTarget(name, req.Reinstall); err != nil {
		return Result{}, err
	}

	// Every stage from here on creates artifacts for this name; failure
	// must remove them all before propagating.
	develop, err := o.placeFiles(req, staged, detection, name)
	if err != nil {
		return Result{}, o.failAndRollback(name, "file placement failed", err)
	}

	if err := o.postInstallSetup(ctx, detection.Kind, name, develop); err != nil {
		return Result{}, o.failAndRollback(name, "environment setup failed", err)
	}

	detectors, err := o.register(ctx, name, detection, develop)
	if err != nil {
		return Result{}, o.failAndRollback(name, "registration failed", err)
	}

	o.logger.Info("scanner installed", "name", name, "kind", detection.Kind, "develop", develop, "detectors", detectors)
	return Result{Name: name, Kind: detection.Kind, DevelopMode: develop, Detectors: detectors}, nil
}

// prepareTarget enforces the install conflict rule and, on reinstall,
// removes the previous registration and artifacts. Proceeding over
// remnants is never allowed.
func (o *Orchestrator) prepareTarget(name string, reinstall bool) error {
	registered := o.registry.Has(name)
	artifacts := o.paths.ArtifactsExist(name)

	if registered || artifacts {
		if !reinstall {
			reason := "is already installed"
			switch {
			case registered && artifacts:
				reason = "is already registered and has installation files"
			case registered:
				reason = "is already registered"
			case artifacts:
				reason = "has existing installation files"
			}
			return &domain.ConflictError{ScannerName: name, Reason: reason}
		}

		o.logger.Info("reinstall requested, removing existing installation", "name", name)
		if registered {
			if err := o.registry.Remove(name); err != nil {
				// Registry removal is best-effort on reinstall; the
				// entry is rewritten at the end anyway.
				o.logger.Error("failed to remove existing registry entry", "name", name, "error", err)
			}
		}
		if err := o.paths.RemoveArtifacts(name); err != nil {
			return &domain.InstallFailedError{ScannerName: name, Reason: "could not remove existing installation files", Err: err}
		}
		return nil
	}

	if err := os.MkdirAll(o.paths.Base(), 0o755); err != nil {
		return &domain.InstallFailedError{ScannerName: name, Reason: "could not create scanners directory", Err: err}
	}
	return nil
}

// placeFiles puts the scanner's files at their final location and
// returns whether develop (install-by-reference) mode took effect.
// Develop mode is honored only for local non-archive sources whose shape
// matches the scanner kind; otherwise it silently downgrades to a copy.
func (o *Orchestrator) placeFiles(req Request, staged *source.Staged, det metadata.Detection, name string) (bool, error) {
	canDevelop := req.Source.Type == domain.SourceLocalPath &&
		((det.Kind == domain.KindPython && !staged.IsFile) ||
			(det.Kind == domain.KindExecutable && staged.IsFile))
	develop := req.Develop && canDevelop
	if req.Develop && !canDevelop {
		o.logger.Warn("develop mode not applicable for this source, installing a copy instead",
			"source_type", req.Source.Type, "kind", det.Kind)
	}

	installDir := o.paths.InstallDir(name)

	switch det.Kind {
	case domain.KindPython:
		if develop {
			if err := os.Symlink(staged.Path, installDir); err != nil {
				return false, fmt.Errorf("failed to symlink scanner source: %w", err)
			}
			return true, nil
		}
		if err := copyTree(staged.Path, installDir); err != nil {
			return false, err
		}
		return false, nil

	case domain.KindExecutable:
		if err := os.MkdirAll(installDir, 0o755); err != nil {
			return false, fmt.Errorf("failed to create install directory: %w", err)
		}
		target := o.paths.ExecutablePath(name)
		if develop {
			if err := os.Symlink(det.ExecutablePath, target); err != nil {
				return false, fmt.Errorf("failed to symlink scanner executable: %w", err)
			}
			return true, nil
		}
		info, err := os.Stat(det.ExecutablePath)
		if err != nil {
			return false, fmt.Errorf("scanner executable disappeared from source: %w", err)
		}
		if err := copyFile(det.ExecutablePath, target, info.Mode()); err != nil {
			return false, err
		}
		return false, nil

	default:
		return false, fmt.Errorf("unsupported scanner kind: %s", det.Kind)
	}
}

// postInstallSetup builds the Python environment or ensures the run bit,
// depending on kind. This is the most failure-prone stage.
func (o *Orchestrator) postInstallSetup(ctx context.Context, kind domain.ScannerKind, name string, develop bool) error {
	switch kind {
	case domain.KindPython:
		return o.builder.Build(ctx, o.paths.InstallDir(name), o.paths.VenvDir(name), develop)
	case domain.KindExecutable:
		return envbuild.EnsureRunBit(o.paths.ExecutablePath(name))
	default:
		return fmt.Errorf("unsupported scanner kind: %s", kind)
	}
}

// register builds the registry entry and persists it. For Python
// scanners the live plugin is asked for its detectors; collection
// failure degrades to an empty detector map with a warning.
func (o *Orchestrator) register(ctx context.Context, name string, det metadata.Detection, develop bool) (int, error) {
	entry := domain.InstalledScanner{
		Path:        o.paths.InstallDir(name),
		InstalledAt: time.Now().UTC(),
		Version:     det.Metadata.Version,
		Kind:        det.Kind,
		Org:         det.Metadata.Org,
		Description: det.Metadata.Description,
		DevelopMode: develop,
		Entrypoint:  det.Metadata.Entrypoint,
		Extensions:  det.Metadata.Extensions,
		Detectors:   det.Metadata.Detectors,
	}
	if entry.Extensions == nil {
		entry.Extensions = []string{}
	}

	if det.Kind == domain.KindPython {
		detectors, err := o.collector.CollectDetectors(ctx, name, entry)
		if err != nil {
			o.logger.Warn("failed to collect detector metadata, registering with empty detectors", "name", name, "error", err)
			detectors = map[string]domain.DetectorMetadata{}
		}
		entry.Detectors = detectors
	}
	if entry.Detectors == nil {
		entry.Detectors = map[string]domain.DetectorMetadata{}
	}

	if err := o.registry.Add(name, entry); err != nil {
		return 0, err
	}
	return len(entry.Detectors), nil
}

// failAndRollback removes every artifact created for name and wraps the
// stage error in the taxonomy when it is not already classified.
func (o *Orchestrator) failAndRollback(name, reason string, err error) error {
	o.logger.Error("install failed, rolling back", "name", name, "reason", reason, "error", err)
	if rbErr := o.paths.RemoveArtifacts(name); rbErr != nil {
		o.logger.Error("rollback incomplete, manual cleanup may be required", "name", name, "error", rbErr)
	}
	if rbErr := o.registry.Remove(name); rbErr != nil {
		o.logger.Error("rollback could not remove registry entry", "name", name, "error", rbErr)
	}

	switch err.(type) {
	case *domain.SourceInvalidError, *domain.MetadataInvalidError, *domain.DependencyInstallError,
		*domain.ConflictError, *domain.RegistryIOError, *domain.InstallFailedError:
		return err
	}
	return &domain.InstallFailedError{ScannerName: name, Reason: reason, Err: err}
}
