package install

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"codescope.dev/cli/internal/core/ports"
)

// Uninstaller removes a scanner's registration and filesystem artifacts.
type Uninstaller struct {
	registry ports.ScannerRegistry
	paths    Paths
	logger   hclog.Logger
}

// NewUninstaller creates an uninstaller.
func NewUninstaller(reg ports.ScannerRegistry, paths Paths, logger hclog.Logger) *Uninstaller {
	return &Uninstaller{registry: reg, paths: paths, logger: logger.Named("uninstall")}
}

// Uninstall removes the scanner's registry entry and every filesystem
// artifact. A scanner that is neither registered nor present is an
// error unless force is set; files existing without a registration also
// require force.
func (u *Uninstaller) Uninstall(name string, force bool) (string, error) {
	registered := u.registry.Has(name)
	artifacts := u.paths.ArtifactsExist(name)

	if !registered && !artifacts {
		if force {
			return fmt.Sprintf("scanner %q not found, nothing to uninstall", name), nil
		}
		return "", fmt.Errorf("scanner %q not found (not registered and no files exist)", name)
	}
	if !registered && artifacts && !force {
		return "", fmt.Errorf("scanner %q has installation files but is not registered; use --force to remove the files", name)
	}

	if registered {
		if err := u.registry.Remove(name); err != nil {
			// Keep going: file removal still matters even when the
			// registry write failed.
			u.logger.Error("failed to remove scanner from registry, continuing with file removal", "name", name, "error", err)
		}
	}

	if artifacts {
		if err := u.paths.RemoveArtifacts(name); err != nil {
			return "", fmt.Errorf("failed to remove installation files for %q: %w", name, err)
		}
	}

	u.logger.Info("scanner uninstalled", "name", name)
	return fmt.Sprintf("successfully uninstalled scanner %q", name), nil
}
