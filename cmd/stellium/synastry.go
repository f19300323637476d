package main

import (
	"fmt"

	"github.com/Veraticus/stellium/internal/cli"
	"github.com/Veraticus/stellium/internal/common"
	"github.com/Veraticus/stellium/internal/model"
	"github.com/spf13/cobra"
)

// synastryReport is the JSON form of a cross-chart comparison.
type synastryReport struct {
	First   string                 `json:"first"`
	Second  string                 `json:"second"`
	Aspects []model.AspectInstance `json:"aspects"`
}

func synastryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "synastry <first.json> <second.json>",
		Short: "Compute aspects between two charts",
		Long: `Compute the aspects between every point of the first chart and every
point of the second. The base of each aspect belongs to the first chart.

Use it to compare two natal charts, or transits against a natal chart.

Examples:
  stellium synastry ada.json charles.json
  stellium synastry natal.json transits.json --top 10`,
		Args: cobra.ExactArgs(2),
		RunE: runSynastry,
	}

	cmd.Flags().Int("top", 0, "number of aspects to print, 0 for all (default from config)")
	cmd.Flags().Bool("json", false, "write the aspects as JSON")

	return cmd
}

func runSynastry(cmd *cobra.Command, args []string) error {
	if args[0] == stdinPath && args[1] == stdinPath {
		return common.NewUserError("Only one chart can be read from stdin", common.ErrInvalidInput)
	}

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

	first, err := readChart(cmd, args[0])
	if err != nil {
		return err
	}
	second, err := readChart(cmd, args[1])
	if err != nil {
		return err
	}

	firstName, secondName := chartName(first, args[0]), chartName(second, args[1])
	aspects := e.Cross(first.Chart, second.Chart)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return cli.WriteJSON(cmd.OutOrStdout(), synastryReport{
			First:   firstName,
			Second:  secondName,
			Aspects: cli.RoundAspects(aspects),
		})
	}

	title := fmt.Sprintf("%s × %s", firstName, secondName)
	return cli.NewRenderer(cmd.OutOrStdout(), e.Table()).Aspects(title, aspects, top)
}
