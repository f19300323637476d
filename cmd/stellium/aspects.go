package main

import (
	"github.com/Veraticus/stellium/internal/cli"
	"github.com/spf13/cobra"
)

func aspectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aspects <chart.json>",
		Short: "List the aspects of a chart",
		Long: `List the aspects between the chart's points, tightest orb first,
without matching patterns.

Examples:
  stellium aspects natal.json
  stellium aspects natal.json --top 5
  stellium aspects natal.json --active sun,moon --json`,
		Args: cobra.ExactArgs(1),
		RunE: runAspects,
	}

	cmd.Flags().StringSlice("active", nil, "point keys to include (default: the chart's active points, else all)")
	cmd.Flags().Int("top", 0, "number of aspects to print, 0 for all (default from config)")
	cmd.Flags().Bool("json", false, "write the aspects as JSON")

	return cmd
}

func runAspects(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	top, err := resolveTop(cmd, settings)
	if err != nil {
		return err
	}

	e, err := newEngine(settings, nil)
	if err != nil {
		return err
	}

	input, err := readChart(cmd, args[0])
	if err != nil {
		return err
	}

	aspects := e.Aspects(input.Chart, activeKeys(cmd, input.ActiveKeys))

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return cli.WriteJSON(cmd.OutOrStdout(), cli.RoundAspects(aspects))
	}
	return cli.NewRenderer(cmd.OutOrStdout(), e.Table()).Aspects(chartName(input, args[0]), aspects, top)
}
