package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"codescope.dev/cli/internal/core/domain"
)

// NewUninstallCommand creates the uninstall command.
func NewUninstallCommand(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "uninstall <name>",
		Short: "Remove an installed scanner",
		Long: `Remove a scanner's registry entry, install directory, and virtual
environment. Use --force to clean up leftover files of a scanner that
is no longer registered.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := domain.NormalizeScannerName(args[0])
			message, err := app.Container.Uninstaller.Uninstall(name, force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", okStyle.Render("✓"), message)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Remove leftover files even when the scanner is not registered")

	return cmd
}
