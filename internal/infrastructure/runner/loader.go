package runner

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"

	"codescope.dev/cli/internal/core/domain"
	"codescope.dev/cli/internal/core/ports"
	"codescope.dev/cli/internal/infrastructure/envbuild"
	"codescope.dev/cli/internal/infrastructure/install"
)

// Timeouts configures how long runner operations may take.
type Timeouts struct {
	Metadata time.Duration
	Scan     time.Duration
}

// Loader turns registry entries into runners. Entries whose artifacts
// are missing or whose kind is unknown are skipped with a warning, so
// one broken install never blocks the rest.
type Loader struct {
	registry ports.ScannerRegistry
	paths    install.Paths
	timeouts Timeouts
	logger   hclog.Logger
}

// NewLoader creates a Loader over the given registry and install
// layout.
func NewLoader(registry ports.ScannerRegistry, paths install.Paths, timeouts Timeouts, logger hclog.Logger) *Loader {
	return &Loader{
		registry: registry,
		paths:    paths,
		timeouts: timeouts,
		logger:   logger.Named("loader"),
	}
}

// Runner builds a runner for one registered scanner.
func (l *Loader) Runner(name string) (ports.ScannerRunner, error) {
	entry, ok := l.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("scanner %s is not installed", name)
	}
	return l.build(name, entry)
}

// Runners builds runners for the given scanner names, or for every
// registered scanner when names is empty. Entries that fail to load
// are logged and skipped.
func (l *Loader) Runners(names []string) ([]ports.ScannerRunner, error) {
	if len(names) == 0 {
		names = l.registry.Names()
	}
	runners := make([]ports.ScannerRunner, 0, len(names))
	for _, name := range names {
		entry, ok := l.registry.Get(name)
		if !ok {
			return nil, fmt.Errorf("scanner %s is not installed", name)
		}
		r, err := l.build(name, entry)
		if err != nil {
			l.logger.Warn("skipping scanner", "scanner", name, "error", err)
			continue
		}
		runners = append(runners, r)
	}
	return runners, nil
}

// CollectDetectors queries a freshly installed Python scanner for its
// detector table. It satisfies ports.DetectorCollector for the install
// orchestrator.
func (l *Loader) CollectDetectors(ctx context.Context, name string, entry domain.InstalledScanner) (map[string]domain.DetectorMetadata, error) {
	r, err := l.build(name, entry)
	if err != nil {
		return nil, err
	}
	return r.DetectorMetadata(ctx)
}

func (l *Loader) build(name string, entry domain.InstalledScanner) (ports.ScannerRunner, error) {
	switch entry.Kind {
	case domain.KindPython:
		pythonPath := envbuild.PythonPath(l.paths.VenvDir(name))
		if _, err := os.Stat(pythonPath); err != nil {
			return nil, fmt.Errorf("scanner %s has no usable environment at %s", name, pythonPath)
		}
		return NewPythonRunner(name, pythonPath, entry.Path, entry.Entrypoint, l.timeouts.Metadata, l.timeouts.Scan, l.logger), nil
	case domain.KindExecutable:
		execPath := l.paths.ExecutablePath(name)
		if _, err := os.Stat(execPath); err != nil {
			return nil, fmt.Errorf("scanner %s has no executable at %s", name, execPath)
		}
		return NewExecutableRunner(name, execPath, entry.Detectors, l.timeouts.Scan, l.logger), nil
	default:
		return nil, fmt.Errorf("scanner %s has unknown type %q", name, entry.Kind)
	}
}
