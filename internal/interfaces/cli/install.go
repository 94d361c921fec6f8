package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"codescope.dev/cli/internal/core/domain"
	"codescope.dev/cli/internal/infrastructure/install"
)

var (
	okStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// NewInstallCommand creates the install command.
func NewInstallCommand(app *App) *cobra.Command {
	var (
		sourceType string
		reinstall  bool
		develop    bool
	)

	cmd := &cobra.Command{
		Use:   "install <source>",
		Short: "Install a scanner from a local path, archive, or URL",
		Long: `Install a scanner plugin. The source can be a local directory, a
local archive (.zip, .tar.gz, .tgz), or an http(s) URL pointing at an
archive. The source type is inferred from the locator unless
--source-type pins it.

Python scanners get an isolated virtual environment with their
dependencies installed; executable scanners are copied in and probed
for their metadata.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := domain.ScannerSource{Locator: args[0]}
			if sourceType != "" {
				parsed, err := domain.ParseSourceType(sourceType)
				if err != nil {
					return err
				}
				src.Type = parsed
			} else {
				src.Type = domain.InferSourceType(args[0])
			}

			result, err := app.Container.Installer.Install(cmd.Context(), install.Request{
				Source:    src,
				Reinstall: reinstall,
				Develop:   develop,
			})
			if err != nil {
				return err
			}

			mode := ""
			if result.DevelopMode {
				mode = warnStyle.Render(" (develop mode)")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Installed %s%s\n",
				okStyle.Render("✓"), result.Name, mode)
			fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render(
				fmt.Sprintf("  type: %s, detectors: %d", result.Kind, result.Detectors)))
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceType, "source-type", "", "Source type: local_path, local_archive, or remote_archive (default inferred)")
	cmd.Flags().BoolVar(&reinstall, "reinstall", false, "Replace an existing installation of the same scanner")
	cmd.Flags().BoolVar(&develop, "develop", false, "Use the source in place instead of copying it (local sources only)")

	return cmd
}
