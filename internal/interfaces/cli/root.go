// Package cli defines the codescope command tree.
package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"codescope.dev/cli/internal/config"
	"codescope.dev/cli/internal/interfaces/di"
)

var (
	Version   = "dev"     // Overridden by ldflags
	BuildTime = "unknown" // Overridden by ldflags
)

// App carries the flag state shared by all commands and the container
// built from it. The container is wired once, in the root command's
// PersistentPreRunE, after flags are parsed.
type App struct {
	flagConfig      string
	flagScannersDir string
	flagDebug       bool

	Container *di.Container
}

// NewRootCommand builds the codescope command tree around a shared App.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "codescope",
		Short: "CodeScope CLI - scanner plugin management and code scanning",
		Long: `CodeScope CLI installs scanner plugins, manages their detector
catalog, and runs them over project files.

Scanners are either Python packages, run from an isolated virtual
environment, or standalone executables. Both kinds run out of process
and report findings as JSON.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.wire()
		},
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} version {{.Version}}\nBuild time: %s\nGo version: %s\nPlatform: %s/%s\n",
		BuildTime, goVersion(), runtime.GOOS, runtime.GOARCH))

	rootCmd.PersistentFlags().BoolVar(&app.flagDebug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&app.flagConfig, "config", "", "Config file path (default is $HOME/.codescope/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&app.flagScannersDir, "scanners-dir", "", "Scanner install directory (default is $HOME/.codescope/scanners)")

	rootCmd.AddCommand(NewInstallCommand(app))
	rootCmd.AddCommand(NewUninstallCommand(app))
	rootCmd.AddCommand(NewScanCommand(app))
	rootCmd.AddCommand(NewScannersCommand(app))

	return rootCmd
}

// wire loads configuration, applies flag overrides, and builds the
// dependency container.
func (a *App) wire() error {
	path := a.flagConfig
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if a.flagScannersDir != "" {
		cfg.ScannersDir = a.flagScannersDir
	}
	if a.flagDebug {
		cfg.LogLevel = "debug"
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "codescope",
		Level: hclog.LevelFromString(cfg.LogLevel),
	})

	a.Container, err = di.NewContainer(cfg, logger)
	return err
}

// goVersion returns the Go version used to build the binary.
func goVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.GoVersion
	}
	return "unknown"
}
