// Package engine implements the stateless aspect and pattern pipeline.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/stellium/internal/aspect"
	"github.com/Veraticus/stellium/internal/model"
	"github.com/Veraticus/stellium/internal/pattern"
)

// Engine computes aspects and patterns for chart snapshots. It holds no
// per-call state, so one engine may serve concurrent calls.
type Engine struct {
	detector pattern.Detector
	catalog  pattern.Catalog
	table    aspect.Table
}

// Config holds the aspect table and pattern catalog the engine runs with.
type Config struct {
	Table   aspect.Table
	Catalog pattern.Catalog
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Table:   aspect.DefaultTable(),
		Catalog: pattern.DefaultCatalog(),
	}
}

// Result is the outcome of one pass over a chart.
type Result struct {
	Patterns map[string][]model.PatternInstance `json:"patterns"`
	Keys     []string                           `json:"keys"`
	Aspects  []model.AspectInstance             `json:"aspects"`
}

// New creates an engine with the default table and catalog.
func New() (*Engine, error) {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates an engine with a custom configuration. Configuration
// problems are reported here, before any computation.
func NewWithConfig(config Config) (*Engine, error) {
	if err := config.Table.Validate(); err != nil {
		return nil, fmt.Errorf("invalid aspect table: %w", err)
	}

	matcher, err := pattern.NewMatcher(config.Catalog)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern catalog: %w", err)
	}

	return &Engine{
		table:    config.Table,
		catalog:  matcher.Catalog(),
		detector: matcher,
	}, nil
}

// Table returns the aspect table in use.
func (e *Engine) Table() aspect.Table {
	return e.table
}

// Catalog returns the pattern definitions in use.
func (e *Engine) Catalog() pattern.Catalog {
	return e.catalog
}

// Compute runs the full pipeline over the chart's active points.
func (e *Engine) Compute(chart model.Chart, activeKeys []string) Result {
	keys := aspect.ResolveKeys(chart, activeKeys)
	aspects := aspect.Build(chart, keys, e.table)
	patterns := e.detector.Match(aspects, keys)

	slog.Debug("Computed chart",
		"points", len(keys),
		"skipped", len(chart)-len(chart.UsableKeys()),
		"aspects", len(aspects),
		"patterns", countInstances(patterns))

	return Result{
		Keys:     keys,
		Aspects:  aspects,
		Patterns: patterns,
	}
}

// Aspects returns only the aspect list for the chart's active points.
func (e *Engine) Aspects(chart model.Chart, activeKeys []string) []model.AspectInstance {
	keys := aspect.ResolveKeys(chart, activeKeys)
	return aspect.Build(chart, keys, e.table)
}

// MatchAspects runs the pattern catalog against an externally supplied aspect
// list. The list is re-sorted by orb first; the input slice is not modified.
// When keys is empty the point set is taken from the aspect endpoints.
func (e *Engine) MatchAspects(aspects []model.AspectInstance, keys []string) map[string][]model.PatternInstance {
	sorted := make([]model.AspectInstance, len(aspects))
	copy(sorted, aspects)
	aspect.SortByOrb(sorted)

	patterns := e.detector.Match(sorted, keys)
	slog.Debug("Matched external aspects",
		"aspects", len(sorted),
		"patterns", countInstances(patterns))
	return patterns
}

// Cross returns the aspects between the usable points of two charts, such as
// a synastry pair or transits against a natal chart. BaseKey refers to first.
func (e *Engine) Cross(first, second model.Chart) []model.AspectInstance {
	aspects := aspect.BuildCross(first, second, e.table)
	slog.Debug("Computed cross aspects",
		"first", len(first),
		"second", len(second),
		"aspects", len(aspects))
	return aspects
}

// Counts returns the number of instances per pattern id.
func (r Result) Counts() map[string]int {
	counts := make(map[string]int, len(r.Patterns))
	for id, instances := range r.Patterns {
		counts[id] = len(instances)
	}
	return counts
}

// PatternTotal returns the number of pattern instances across all ids.
func (r Result) PatternTotal() int {
	return countInstances(r.Patterns)
}

func countInstances(patterns map[string][]model.PatternInstance) int {
	total := 0
	for _, instances := range patterns {
		total += len(instances)
	}
	return total
}
