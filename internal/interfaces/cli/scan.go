package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"codescope.dev/cli/internal/application/services"
)

// NewScanCommand creates the scan command.
func NewScanCommand(app *App) *cobra.Command {
	var (
		scanners    []string
		detectors   []string
		projectRoot string
	)

	cmd := &cobra.Command{
		Use:   "scan <file>...",
		Short: "Run installed scanners over project files",
		Long: `Run scanners over the given files and print the aggregated findings
as JSON on stdout. Byte offsets reported by scanners are expanded into
line and column positions.

By default every detector of every installed scanner runs. --detectors
narrows the run to specific detectors, routed to whichever scanners
provide them; a "scanner#detector" id pins a detector to one scanner.
--scanners restricts the run to specific scanners. A scanner that
fails is reported on stderr and excluded without stopping the rest.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := projectRoot
			if root == "" {
				var err error
				root, err = os.Getwd()
				if err != nil {
					return err
				}
			}

			result, err := app.Container.ScanService.Scan(cmd.Context(), services.ScanRequest{
				Scanners:    scanners,
				Detectors:   detectors,
				Files:       args,
				ProjectRoot: root,
			})
			if err != nil {
				return err
			}

			for _, name := range result.Failed {
				fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render("⚠ scanner "+name+" failed, results exclude it"))
			}

			out, err := json.MarshalIndent(result.Responses, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&scanners, "scanners", nil, "Scanners to run (default all installed)")
	cmd.Flags().StringSliceVar(&detectors, "detectors", nil, "Detector ids to run (default all)")
	cmd.Flags().StringVar(&projectRoot, "project-root", "", "Project root for relative paths (default current directory)")

	return cmd
}
