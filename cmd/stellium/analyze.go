package main

import (
	"fmt"
	"io"

	"github.com/Veraticus/stellium/internal/cli"
	"github.com/Veraticus/stellium/internal/engine"
	"github.com/spf13/cobra"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <chart.json>",
		Short: "Compute aspects and patterns for a chart",
		Long: `Compute every aspect between the chart's points and match the pattern
catalog against the resulting aspect graph.

Aspects are listed from the tightest orb outward. Every enabled pattern is
listed in catalog order, including those with no instances.

Examples:
  stellium analyze natal.json
  stellium analyze natal.json --active sun,moon,mars,venus --top 10
  stellium analyze natal.json --patterns t_square,grand_cross
  stellium analyze natal.json --json > report.json
  stellium analyze natal.json --save "Ada Lovelace"
  cat natal.json | stellium analyze -`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().StringSlice("active", nil, "point keys to include (default: the chart's active points, else all)")
	cmd.Flags().Int("top", 0, "number of aspects to print, 0 for all (default from config)")
	cmd.Flags().Bool("json", false, "write the result as JSON")
	cmd.Flags().StringSlice("patterns", nil, "pattern ids to match (default: all enabled)")
	cmd.Flags().String("save", "", "also store the chart in the library under this name")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	top, err := resolveTop(cmd, settings)
	if err != nil {
		return err
	}

	patternIDs, _ := cmd.Flags().GetStringSlice("patterns")
	e, err := newEngine(settings, patternIDs)
	if err != nil {
		return err
	}

	input, err := readChart(cmd, args[0])
	if err != nil {
		return err
	}

	active := activeKeys(cmd, input.ActiveKeys)
	result := e.Compute(input.Chart, active)
	name := chartName(input, args[0])

	if saveName, _ := cmd.Flags().GetString("save"); saveName != "" {
		record, err := storeChart(cmd.Context(), settings, chartToStore{
			Name:       saveName,
			Chart:      input.Chart,
			ActiveKeys: active,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatSuccess(fmt.Sprintf("Saved chart %q (%s)", record.Name, record.ID)))
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return cli.WriteJSON(cmd.OutOrStdout(), cli.NewReport(name, result))
	}
	return printAnalysis(cmd.OutOrStdout(), e, name, result, top)
}

// printAnalysis writes the human-readable form of one chart analysis.
func printAnalysis(w io.Writer, e *engine.Engine, name string, result engine.Result, top int) error {
	r := cli.NewRenderer(w, e.Table())

	if _, err := fmt.Fprintln(w, cli.TitleStyle.Render(cli.ChartIcon+" "+name)+" "+
		cli.SubtleStyle.Render(fmt.Sprintf("(%d points)", len(result.Keys)))); err != nil {
		return err
	}
	if len(result.Keys) == 0 {
		if _, err := fmt.Fprintln(w, cli.FormatWarning("No usable points found in this chart.")); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	if err := r.Aspects("Aspects", result.Aspects, top); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return r.Patterns(e.Catalog(), result.Patterns)
}
