package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"codescope.dev/cli/internal/core/domain"
	"codescope.dev/cli/internal/infrastructure/runner"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	severityStyle = map[domain.Severity]lipgloss.Style{
		domain.SeverityCritical: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		domain.SeverityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("202")),
		domain.SeverityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		domain.SeverityLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("228")),
	}
)

func renderSeverity(s domain.Severity) string {
	if style, ok := severityStyle[s]; ok {
		return style.Render(string(s))
	}
	return dimStyle.Render(string(s))
}

// NewScannersCommand creates the scanners command group.
func NewScannersCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scanners",
		Short: "Inspect installed scanners and their detectors",
	}

	cmd.AddCommand(newScannersListCommand(app))
	cmd.AddCommand(newScannersDetectorsCommand(app))
	cmd.AddCommand(newScannersTagsCommand(app))
	cmd.AddCommand(newScannersSeveritiesCommand(app))

	return cmd
}

func newScannersListCommand(app *App) *cobra.Command {
	var (
		detectors  []string
		tags       []string
		severities []string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed scanners",
		RunE: func(cmd *cobra.Command, args []string) error {
			sevs, err := parseSeverities(severities)
			if err != nil {
				return err
			}
			matches := app.Container.Registry.ScannersByCriteria(detectors, tags, sevs)
			if len(matches) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("No scanners installed."))
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), headerStyle.Render(
				fmt.Sprintf("%-24s %-12s %-10s %-10s %s", "NAME", "TYPE", "VERSION", "DETECTORS", "DESCRIPTION")))
			for _, m := range matches {
				name := m.Name
				if m.Scanner.DevelopMode {
					name += warnStyle.Render(" *")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-12s %-10s %-10d %s\n",
					name, m.Scanner.Kind, m.Scanner.Version, len(m.Scanner.Detectors), m.Scanner.Description)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&detectors, "detectors", nil, "Only scanners providing these detector ids")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Only scanners with detectors carrying these tags")
	cmd.Flags().StringSliceVar(&severities, "severities", nil, "Only scanners with detectors at these severities")

	return cmd
}

func newScannersDetectorsCommand(app *App) *cobra.Command {
	var (
		scanners   []string
		tags       []string
		severities []string
		qualified  bool
	)

	cmd := &cobra.Command{
		Use:   "detectors",
		Short: "List detectors across installed scanners",
		Long: `List the merged detector catalog. With --qualified each detector is
shown under its catalog key; detectors provided by more than one
scanner are keyed "scanner#detector" so both stay addressable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sevs, err := parseSeverities(severities)
			if err != nil {
				return err
			}

			if qualified {
				catalog := runner.BuildCatalog(app.Container.Registry.All())
				fmt.Fprintln(cmd.OutOrStdout(), headerStyle.Render(
					fmt.Sprintf("%-36s %-20s %-10s %s", "KEY", "SCANNER", "SEVERITY", "TAGS")))
				for _, key := range catalog.Keys() {
					entry, _ := catalog.Get(key)
					fmt.Fprintf(cmd.OutOrStdout(), "%-36s %-20s %-10s %s\n",
						key, entry.Scanner, renderSeverity(entry.Metadata.Severity), strings.Join(entry.Metadata.Tags, ","))
				}
				return nil
			}

			rows := app.Container.Registry.DetectorsByCriteria(scanners, sevs, tags)
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("No detectors match."))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), headerStyle.Render(
				fmt.Sprintf("%-36s %-20s %-10s %s", "DETECTOR", "SCANNER", "SEVERITY", "DESCRIPTION")))
			for _, row := range rows {
				fmt.Fprintf(cmd.OutOrStdout(), "%-36s %-20s %-10s %s\n",
					row.Name, row.Scanner, renderSeverity(row.Severity), row.Description)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&scanners, "scanners", nil, "Only detectors from these scanners")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Only detectors carrying these tags")
	cmd.Flags().StringSliceVar(&severities, "severities", nil, "Only detectors at these severities")
	cmd.Flags().BoolVar(&qualified, "qualified", false, "Show catalog keys, qualifying cross-scanner collisions")

	return cmd
}

func newScannersTagsCommand(app *App) *cobra.Command {
	var (
		scanners   []string
		severities []string
	)

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List detector tags across installed scanners",
		RunE: func(cmd *cobra.Command, args []string) error {
			sevs, err := parseSeverities(severities)
			if err != nil {
				return err
			}
			tags := app.Container.Registry.TagsByCriteria(scanners, sevs)
			if len(tags) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("No tags match."))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), headerStyle.Render(
				fmt.Sprintf("%-24s %-10s %-10s %s", "TAG", "DETECTORS", "SCANNERS", "PROVIDED BY")))
			for _, tag := range tags {
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-10d %-10d %s\n",
					tag.Name, tag.DetectorCount, tag.ScannerCount, strings.Join(tag.Scanners, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&scanners, "scanners", nil, "Only tags from these scanners")
	cmd.Flags().StringSliceVar(&severities, "severities", nil, "Only tags on detectors at these severities")

	return cmd
}

func newScannersSeveritiesCommand(app *App) *cobra.Command {
	var (
		scanners []string
		tags     []string
	)

	cmd := &cobra.Command{
		Use:   "severities",
		Short: "Group detectors by severity",
		RunE: func(cmd *cobra.Command, args []string) error {
			grouped := app.Container.Registry.SeveritiesByCriteria(scanners, tags)
			if len(grouped) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("No detectors match."))
				return nil
			}
			order := append(domain.Severities(), domain.SeverityUnknown)
			for _, severity := range order {
				detectors, ok := grouped[severity]
				if !ok {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%d)\n", renderSeverity(severity), len(detectors))
				for _, id := range detectors {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", id)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&scanners, "scanners", nil, "Only detectors from these scanners")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Only detectors carrying these tags")

	return cmd
}

func parseSeverities(values []string) ([]domain.Severity, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make([]domain.Severity, 0, len(values))
	for _, v := range values {
		sev, err := domain.ParseSeverity(v)
		if err != nil {
			return nil, err
		}
		out = append(out, sev)
	}
	return out, nil
}
