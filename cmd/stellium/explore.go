package main

import (
	"github.com/Veraticus/stellium/internal/model"
	"github.com/Veraticus/stellium/internal/tui"
	"github.com/spf13/cobra"
)

func exploreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explore <chart.json>",
		Short: "Browse a chart's aspects and patterns interactively",
		Long: `Open an interactive browser with the chart's aspects, patterns and points.

Use Tab to switch views, / to filter aspects, ? for help and q to quit.

Examples:
  stellium explore natal.json
  stellium explore "Ada Lovelace" --library`,
		Args: cobra.ExactArgs(1),
		RunE: runExplore,
	}

	cmd.Flags().StringSlice("active", nil, "point keys to include (default: the chart's active points, else all)")
	cmd.Flags().StringSlice("patterns", nil, "pattern ids to match (default: all enabled)")
	cmd.Flags().Bool("library", false, "treat the argument as the name or id of a saved chart")

	return cmd
}

func runExplore(cmd *cobra.Command, args []string) error {
	var (
		name   string
		chart  model.Chart
		active []string
	)

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	if fromLibrary, _ := cmd.Flags().GetBool("library"); fromLibrary {
		_, record, err := findChart(cmd, args[0])
		if err != nil {
			return err
		}
		name, chart, active = record.Name, record.Chart, record.ActiveKeys
	} else {
		input, err := readChart(cmd, args[0])
		if err != nil {
			return err
		}
		name, chart, active = chartName(input, args[0]), input.Chart, input.ActiveKeys
	}

	patternIDs, _ := cmd.Flags().GetStringSlice("patterns")
	e, err := newEngine(settings, patternIDs)
	if err != nil {
		return err
	}

	return tui.Run(cmd.Context(), tui.Data{
		Name:    name,
		Chart:   chart,
		Result:  e.Compute(chart, activeKeys(cmd, active)),
		Table:   e.Table(),
		Catalog: e.Catalog(),
	})
}
