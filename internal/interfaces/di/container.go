// Package di wires the CLI's dependencies into a single container. The
// container is caller-owned: nothing here is a package-level singleton,
// and two containers over different scanner directories never share
// state.
package di

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"

	"codescope.dev/cli/internal/application/services"
	"codescope.dev/cli/internal/config"
	"codescope.dev/cli/internal/infrastructure/envbuild"
	"codescope.dev/cli/internal/infrastructure/install"
	"codescope.dev/cli/internal/infrastructure/metadata"
	"codescope.dev/cli/internal/infrastructure/registry"
	"codescope.dev/cli/internal/infrastructure/runner"
	"codescope.dev/cli/internal/infrastructure/source"
)

// Container holds all application dependencies.
type Container struct {
	Config config.Config
	Logger hclog.Logger
	Paths  install.Paths

	Registry    *registry.FileRegistry
	Loader      *runner.Loader
	Installer   *install.Orchestrator
	Uninstaller *install.Uninstaller
	ScanService *services.ScanService
}

// NewContainer wires a container from configuration. The registry
// document is read once here; commands reload it when they need fresher
// state.
func NewContainer(cfg config.Config, logger hclog.Logger) (*Container, error) {
	base := cfg.ScannersDir
	if base == "" {
		var err error
		base, err = install.DefaultBase()
		if err != nil {
			return nil, err
		}
	}
	paths := install.NewPaths(base)

	reg, err := registry.Open(paths.RegistryFile(), logger)
	if err != nil {
		return nil, fmt.Errorf("cannot open scanner registry: %w", err)
	}

	loader := runner.NewLoader(reg, paths, runner.Timeouts{
		Metadata: cfg.Timeouts.Metadata,
		Scan:     cfg.Timeouts.Scan,
	}, logger)

	downloader := source.NewDownloader(cfg.Timeouts.Download, os.Stderr, logger)
	acquirer := source.NewAcquirer(downloader, logger)
	prober := metadata.NewExecutableProber(0, logger)
	detector := metadata.NewDetector(prober, logger)
	builder := envbuild.NewPythonBuilder(cfg.PythonBin, cfg.Timeouts.Pip, cfg.Timeouts.Editable, logger)

	return &Container{
		Config:      cfg,
		Logger:      logger,
		Paths:       paths,
		Registry:    reg,
		Loader:      loader,
		Installer:   install.NewOrchestrator(acquirer, detector, builder, reg, loader, paths, logger),
		Uninstaller: install.NewUninstaller(reg, paths, logger),
		ScanService: services.NewScanService(reg, reg, loader, logger),
	}, nil
}
