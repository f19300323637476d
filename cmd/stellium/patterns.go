package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/stellium/internal/aspect"
	"github.com/Veraticus/stellium/internal/cli"
	"github.com/Veraticus/stellium/internal/common"
	"github.com/Veraticus/stellium/internal/engine"
	"github.com/Veraticus/stellium/internal/ingest"
	"github.com/Veraticus/stellium/internal/model"
	"github.com/Veraticus/stellium/internal/pattern"
	"github.com/spf13/cobra"
)

func patternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Browse the pattern catalog and match aspect lists",
		Long:  `List and describe the pattern catalog, or match it against an aspect list computed elsewhere.`,
	}

	// Subcommands
	cmd.AddCommand(patternsListCmd())
	cmd.AddCommand(patternsShowCmd())
	cmd.AddCommand(patternsMatchCmd())

	return cmd
}

func patternsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pattern definitions",
		Long:  `List the enabled pattern definitions in matching order. Use --all to include patterns disabled by configuration.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}

			catalog := settings.Engine.Catalog
			if all, _ := cmd.Flags().GetBool("all"); all {
				catalog = pattern.DefaultCatalog()
			}
			return cli.NewRenderer(cmd.OutOrStdout(), settings.Engine.Table).Catalog(catalog)
		},
	}

	cmd.Flags().Bool("all", false, "include patterns disabled in the configuration")

	return cmd
}

func patternsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Describe one pattern",
		Long:  `Show the geometry, orb guidance and construction rules of a pattern.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.ToLower(strings.TrimSpace(args[0]))
			def, ok := pattern.DefaultCatalog().Lookup(id)
			if !ok {
				return common.NewUserError(
					fmt.Sprintf("No pattern named %q (known: %s)", args[0], strings.Join(pattern.DefaultCatalog().IDs(), ", ")),
					fmt.Errorf("%w: %s", pattern.ErrUnknownPattern, id))
			}
			return cli.NewRenderer(cmd.OutOrStdout(), aspect.DefaultTable()).Definition(def)
		},
	}
}

func patternsMatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match <aspects.json>",
		Short: "Match patterns against an existing aspect list",
		Long: `Match the pattern catalog against aspects computed by another tool.

Aspect records may use the common alternate field names (p1/p2, planet1/planet2,
aspect, orb_value, ...). Records whose endpoints, aspect type or orb cannot be
resolved are skipped.

Examples:
  stellium patterns match aspects.json
  stellium patterns match aspects.json --patterns kite --json`,
		Args: cobra.ExactArgs(1),
		RunE: runPatternsMatch,
	}

	cmd.Flags().StringSlice("points", nil, "restrict matching to these point keys (default: every aspect endpoint)")
	cmd.Flags().StringSlice("patterns", nil, "pattern ids to match (default: all enabled)")
	cmd.Flags().Bool("json", false, "write the patterns as JSON")

	return cmd
}

func runPatternsMatch(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	patternIDs, _ := cmd.Flags().GetStringSlice("patterns")
	e, err := newEngine(settings, patternIDs)
	if err != nil {
		return err
	}

	parser := ingest.NewParser()
	var aspects []model.AspectInstance
	if args[0] == stdinPath {
		aspects, err = parser.ParseAspects(cmd.Context(), cmd.InOrStdin())
	} else {
		aspects, err = parser.LoadAspects(cmd.Context(), args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to read aspects %s: %w", args[0], err)
	}

	points, _ := cmd.Flags().GetStringSlice("points")
	for i := range points {
		points[i] = model.NormalizeKey(points[i])
	}
	patterns := e.MatchAspects(aspects, points)
	matched := aspect.Among(aspects, points)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		sorted := make([]model.AspectInstance, len(matched))
		copy(sorted, matched)
		aspect.SortByOrb(sorted)
		keys := points
		if len(keys) == 0 {
			keys = model.EndpointKeys(sorted)
		}
		report := cli.NewReport("", engine.Result{Keys: keys, Aspects: sorted, Patterns: patterns})
		return cli.WriteJSON(cmd.OutOrStdout(), report)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render(fmt.Sprintf("Matched %d aspects", len(matched))))
	return cli.NewRenderer(cmd.OutOrStdout(), e.Table()).Patterns(e.Catalog(), patterns)
}
