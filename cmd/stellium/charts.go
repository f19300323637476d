package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/stellium/internal/cli"
	"github.com/Veraticus/stellium/internal/common"
	"github.com/Veraticus/stellium/internal/config"
	"github.com/Veraticus/stellium/internal/model"
	"github.com/spf13/cobra"
)

// chartToStore describes a chart about to be written to the library.
type chartToStore struct {
	Chart      model.Chart
	Name       string
	Notes      string
	ActiveKeys []string
	Replace    bool
}

func chartsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "charts",
		Short: "Manage the local chart library",
		Long:  `Save charts to the local library, then list, inspect, analyze or delete them by name or id.`,
	}

	// Subcommands
	cmd.AddCommand(chartsSaveCmd())
	cmd.AddCommand(chartsListCmd())
	cmd.AddCommand(chartsShowCmd())
	cmd.AddCommand(chartsDeleteCmd())
	cmd.AddCommand(chartsAnalyzeCmd())

	return cmd
}

func chartsSaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save <chart.json>",
		Short: "Save a chart to the library",
		Long: `Save a chart to the library. The name defaults to the chart's own name,
else the file name. Saving under an existing name fails unless --replace is given.

Examples:
  stellium charts save natal.json
  stellium charts save natal.json --name "Ada Lovelace" --notes "birth time rectified"
  stellium charts save natal.json --name "Ada Lovelace" --replace`,
		Args: cobra.ExactArgs(1),
		RunE: runChartsSave,
	}

	cmd.Flags().String("name", "", "name to store the chart under")
	cmd.Flags().String("notes", "", "free-form notes")
	cmd.Flags().StringSlice("active", nil, "default active point keys for later analysis")
	cmd.Flags().Bool("replace", false, "overwrite an existing chart with the same name")

	return cmd
}

func runChartsSave(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	input, err := readChart(cmd, args[0])
	if err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("name")
	if strings.TrimSpace(name) == "" {
		name = chartName(input, args[0])
	}
	notes, _ := cmd.Flags().GetString("notes")
	replace, _ := cmd.Flags().GetBool("replace")

	record, err := storeChart(cmd.Context(), settings, chartToStore{
		Name:       strings.TrimSpace(name),
		Notes:      notes,
		Chart:      input.Chart,
		ActiveKeys: activeKeys(cmd, input.ActiveKeys),
		Replace:    replace,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
		fmt.Sprintf("Saved chart %q with %d points (%s)", record.Name, record.PointCount(), record.ID)))
	return nil
}

// storeChart saves a chart, or replaces the chart of the same name when allowed.
func storeChart(ctx context.Context, settings *config.Settings, c chartToStore) (*model.ChartRecord, error) {
	if len(c.Chart.UsableKeys()) == 0 {
		return nil, common.NewUserError("Refusing to save a chart without usable points",
			fmt.Errorf("chart %q: %w", c.Name, common.ErrNoPoints))
	}

	store, err := initStorage(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	record := &model.ChartRecord{
		Name:       c.Name,
		Notes:      c.Notes,
		Chart:      c.Chart,
		ActiveKeys: c.ActiveKeys,
	}

	existing, err := store.GetChartByName(ctx, c.Name)
	switch {
	case err == nil:
		if !c.Replace {
			return nil, common.NewUserError(
				fmt.Sprintf("A chart named %q already exists; use --replace to overwrite it", c.Name),
				common.ErrDuplicateEntry)
		}
		record.ID = existing.ID
		if err := store.UpdateChart(ctx, record); err != nil {
			return nil, fmt.Errorf("failed to replace chart: %w", err)
		}
	case errors.Is(err, common.ErrNotFound):
		if err := store.SaveChart(ctx, record); err != nil {
			return nil, fmt.Errorf("failed to save chart: %w", err)
		}
	default:
		return nil, err
	}

	return record, nil
}

func chartsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved charts",
		Long: `List the charts in the library ordered by name.

Examples:
  stellium charts list
  stellium charts list --match "^ada"`,
		Args: cobra.NoArgs,
		RunE: runChartsList,
	}

	cmd.Flags().String("match", "", "only list charts whose name matches this regular expression")

	return cmd
}

func runChartsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	pattern, _ := cmd.Flags().GetString("match")
	filter, err := common.NameFilter(pattern)
	if err != nil {
		return common.NewUserError("Invalid --match expression", err)
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	store, err := initStorage(ctx, settings)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	records, err := store.ListCharts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list charts: %w", err)
	}

	matched := records[:0]
	for _, rec := range records {
		if filter(rec.Name) {
			matched = append(matched, rec)
		}
	}

	return cli.NewRenderer(cmd.OutOrStdout(), settings.Engine.Table).Charts(matched)
}

func chartsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name-or-id>",
		Short: "Show a saved chart",
		Long:  `Show the details and points of a saved chart.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, record, err := findChart(cmd, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			lines := []string{
				fmt.Sprintf("ID:      %s", record.ID),
				fmt.Sprintf("Points:  %d (%d usable)", record.PointCount(), len(record.Chart.UsableKeys())),
				fmt.Sprintf("Active:  %s", formatKeys(record.ActiveKeys)),
				fmt.Sprintf("Updated: %s", record.UpdatedAt.Format("2006-01-02 15:04")),
			}
			if record.Notes != "" {
				lines = append(lines, fmt.Sprintf("Notes:   %s", record.Notes))
			}
			fmt.Fprintln(out, cli.RenderBox(cli.ChartIcon+" "+record.Name, strings.Join(lines, "\n")))

			return cli.NewRenderer(out, settings.Engine.Table).Points(record.Chart)
		},
	}
}

func formatKeys(keys []string) string {
	if len(keys) == 0 {
		return "all"
	}
	return strings.Join(keys, ", ")
}

func chartsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name-or-id>",
		Short: "Delete a saved chart",
		Long:  `Delete a chart and its points from the library.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			settings, err := loadSettings()
			if err != nil {
				return err
			}

			store, err := initStorage(ctx, settings)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer closeStorage(store)

			record, err := store.FindChart(ctx, args[0])
			if err != nil {
				return chartLookupError(args[0], err)
			}
			if err := store.DeleteChart(ctx, record.ID); err != nil {
				return fmt.Errorf("failed to delete chart: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted chart %q", record.Name)))
			return nil
		},
	}
}

func chartsAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <name-or-id>",
		Short: "Analyze a saved chart",
		Long: `Compute aspects and patterns for a saved chart. The chart's stored active
keys are used unless --active is given.`,
		Args: cobra.ExactArgs(1),
		RunE: runChartsAnalyze,
	}

	cmd.Flags().StringSlice("active", nil, "point keys to include (default: the stored active keys)")
	cmd.Flags().Int("top", 0, "number of aspects to print, 0 for all (default from config)")
	cmd.Flags().Bool("json", false, "write the result as JSON")
	cmd.Flags().StringSlice("patterns", nil, "pattern ids to match (default: all enabled)")

	return cmd
}

func runChartsAnalyze(cmd *cobra.Command, args []string) error {
	settings, record, err := findChart(cmd, args[0])
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

	result := e.Compute(record.Chart, activeKeys(cmd, record.ActiveKeys))

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return cli.WriteJSON(cmd.OutOrStdout(), cli.NewReport(record.Name, result))
	}
	return printAnalysis(cmd.OutOrStdout(), e, record.Name, result, top)
}

// findChart loads settings and the chart named by ref.
func findChart(cmd *cobra.Command, ref string) (*config.Settings, *model.ChartRecord, error) {
	ctx := cmd.Context()

	settings, err := loadSettings()
	if err != nil {
		return nil, nil, err
	}

	store, err := initStorage(ctx, settings)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	record, err := store.FindChart(ctx, ref)
	if err != nil {
		return nil, nil, chartLookupError(ref, err)
	}
	return settings, record, nil
}

func chartLookupError(ref string, err error) error {
	if errors.Is(err, common.ErrNotFound) {
		return common.NewUserError(fmt.Sprintf("No saved chart named %q (see 'stellium charts list')", ref), err)
	}
	return fmt.Errorf("failed to load chart: %w", err)
}
