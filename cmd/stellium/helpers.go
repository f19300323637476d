package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Veraticus/stellium/internal/common"
	"github.com/Veraticus/stellium/internal/config"
	"github.com/Veraticus/stellium/internal/engine"
	"github.com/Veraticus/stellium/internal/ingest"
	"github.com/Veraticus/stellium/internal/service"
	"github.com/Veraticus/stellium/internal/storage"
	"github.com/spf13/cobra"
)

// stdinPath is the argument that makes a command read its document from stdin.
const stdinPath = "-"

// loadSettings resolves configuration into application settings.
func loadSettings() (*config.Settings, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, common.NewUserError("Configuration is invalid", err)
	}
	return settings, nil
}

// newEngine builds an engine from settings, optionally restricted to the
// given pattern ids.
func newEngine(settings *config.Settings, patternIDs []string) (*engine.Engine, error) {
	cfg := settings.Engine
	if len(patternIDs) > 0 {
		catalog, err := cfg.Catalog.Subset(normalizeIDs(patternIDs)...)
		if err != nil {
			return nil, common.NewUserError("Unknown pattern requested (see 'stellium patterns list')", err)
		}
		cfg.Catalog = catalog
	}

	e, err := engine.NewWithConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	return e, nil
}

func normalizeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.ToLower(strings.TrimSpace(id)); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// initStorage opens the chart library and brings its schema up to date.
func initStorage(ctx context.Context, settings *config.Settings) (service.ChartStore, error) {
	store, err := storage.NewSQLiteStorage(settings.DatabasePath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func closeStorage(store service.ChartStore) {
	if err := store.Close(); err != nil {
		common.LogError(err, "Failed to close storage", nil)
	}
}

// readChart parses a chart file, or stdin when path is "-".
func readChart(cmd *cobra.Command, path string) (ingest.Input, error) {
	parser := ingest.NewParser()

	var (
		input ingest.Input
		err   error
	)
	if path == stdinPath {
		input, err = parser.ParseChart(cmd.Context(), cmd.InOrStdin())
	} else {
		input, err = parser.LoadChart(cmd.Context(), path)
	}
	if err != nil {
		return ingest.Input{}, fmt.Errorf("failed to read chart %s: %w", path, err)
	}

	common.LogDebug("Loaded chart", common.Fields{
		"path":   path,
		"points": len(input.Chart),
		"usable": len(input.Chart.UsableKeys()),
	})
	return input, nil
}

// chartName picks a display name: the document's own name, else the file name.
func chartName(input ingest.Input, path string) string {
	if input.Name != "" {
		return input.Name
	}
	if path == stdinPath {
		return "stdin"
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// activeKeys returns the --active flag when given, else the document's keys.
func activeKeys(cmd *cobra.Command, fallback []string) []string {
	if cmd.Flags().Changed("active") {
		active, _ := cmd.Flags().GetStringSlice("active")
		return active
	}
	return fallback
}

// resolveTop returns the --top flag when given, else the configured value.
func resolveTop(cmd *cobra.Command, settings *config.Settings) (int, error) {
	if !cmd.Flags().Changed("top") {
		return settings.Top, nil
	}
	top, _ := cmd.Flags().GetInt("top")
	if top < 0 {
		return 0, common.NewUserError("--top must not be negative", common.ErrInvalidInput)
	}
	return top, nil
}
