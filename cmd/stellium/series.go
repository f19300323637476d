package main

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/Veraticus/stellium/internal/cli"
	"github.com/Veraticus/stellium/internal/common"
	"github.com/Veraticus/stellium/internal/engine"
	"github.com/Veraticus/stellium/internal/ingest"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// seriesReport is the JSON form of one computed snapshot.
type seriesReport struct {
	Label string `json:"label"`
	cli.Report
}

func seriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "series <series.json>",
		Short: "Analyze many chart snapshots at once",
		Long: `Compute aspects and patterns for every snapshot in a series file, such as
a range of transit charts. Snapshots are computed concurrently and reported
in input order, one row per snapshot with its pattern counts.

The file holds {"snapshots": [{"label": "...", "points": [...]}, ...]} or a
bare list of snapshots; each snapshot accepts any chart layout.

Examples:
  stellium series transits.json
  stellium series transits.json --workers 4 --patterns t_square,grand_cross
  stellium series transits.json --json > series.json`,
		Args: cobra.ExactArgs(1),
		RunE: runSeries,
	}

	cmd.Flags().Int("workers", 0, "snapshots computed in parallel (default from config, else CPU count)")
	cmd.Flags().StringSlice("active", nil, "point keys to include in every snapshot")
	cmd.Flags().StringSlice("patterns", nil, "pattern ids to match (default: all enabled)")
	cmd.Flags().Bool("json", false, "write the results as JSON")
	cmd.Flags().Bool("no-progress", false, "hide the progress bar")

	return cmd
}

func runSeries(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	workers := settings.Workers
	if cmd.Flags().Changed("workers") {
		workers, _ = cmd.Flags().GetInt("workers")
		if workers <= 0 {
			return common.NewUserError("--workers must be positive", common.ErrInvalidInput)
		}
	}

	patternIDs, _ := cmd.Flags().GetStringSlice("patterns")
	e, err := newEngine(settings, patternIDs)
	if err != nil {
		return err
	}

	parser := ingest.NewParser()
	var snapshots []ingest.Snapshot
	if args[0] == stdinPath {
		snapshots, err = parser.ParseSeries(cmd.Context(), cmd.InOrStdin())
	} else {
		snapshots, err = parser.LoadSeries(cmd.Context(), args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to read series %s: %w", args[0], err)
	}

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx, stop := handler.HandleInterrupts(cmd.Context(), "Series analysis")
	defer stop()

	var bar *progressbar.ProgressBar
	if hide, _ := cmd.Flags().GetBool("no-progress"); !hide {
		bar = cli.NewProgressBar(cmd.ErrOrStderr(), len(snapshots), "Computing snapshots")
	}

	rows, err := computeSeries(ctx, e, snapshots, seriesOptions{
		Workers:    workers,
		ActiveKeys: activeKeys(cmd, nil),
		OnDone: func(completed int) {
			handler.SetProgress(completed, len(snapshots))
			if bar != nil {
				_ = bar.Add(1)
			}
		},
	})
	if err != nil {
		if handler.WasInterrupted() {
			return nil
		}
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		reports := make([]seriesReport, len(rows))
		for i, row := range rows {
			reports[i] = seriesReport{Label: row.Label, Report: cli.NewReport("", row.Result)}
		}
		return cli.WriteJSON(cmd.OutOrStdout(), reports)
	}
	return cli.NewRenderer(cmd.OutOrStdout(), e.Table()).Series(e.Catalog(), rows)
}

// seriesOptions tunes computeSeries.
type seriesOptions struct {
	// OnDone is called after each snapshot with the number completed so far.
	// It may be called from several goroutines at once.
	OnDone     func(completed int)
	ActiveKeys []string
	Workers    int
}

// computeSeries runs the engine over every snapshot with at most
// opts.Workers snapshots in flight. Rows keep the snapshot order.
func computeSeries(ctx context.Context, e *engine.Engine, snapshots []ingest.Snapshot, opts seriesOptions) ([]cli.SeriesRow, error) {
	rows := make([]cli.SeriesRow, len(snapshots))
	var completed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Workers, 1))

	for i, snap := range snapshots {
		i, snap := i, snap
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			active := snap.Input.ActiveKeys
			if len(opts.ActiveKeys) > 0 {
				active = opts.ActiveKeys
			}
			rows[i] = cli.SeriesRow{Label: snap.Label, Result: e.Compute(snap.Input.Chart, active)}

			done := completed.Add(1)
			if opts.OnDone != nil {
				opts.OnDone(int(done))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	common.LogDebug("Computed series", common.Fields{"snapshots": len(rows), "workers": opts.Workers})
	return rows, nil
}
