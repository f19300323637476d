package testutil

import (
	"math"
	"testing"

	"github.com/Veraticus/stellium/internal/model"
)

// ChartBuilder provides a fluent interface for constructing test charts.
//
// Example usage:
//
//	chart := testutil.NewChartBuilder(t).
//		WithPoint("sun", 0).
//		WithPoint("moon", 180).
//		Retrograde("moon").
//		Build()
type ChartBuilder struct {
	t      *testing.T
	points map[string]model.Point
	name   string
	notes  string
	active []string
}

// NewChartBuilder creates a new chart builder for the given test.
func NewChartBuilder(t *testing.T) *ChartBuilder {
	t.Helper()
	return &ChartBuilder{t: t, points: make(map[string]model.Point)}
}

// WithPoint adds a point at the given absolute longitude. The key is
// normalized the same way parsed charts are.
func (b *ChartBuilder) WithPoint(key string, longitude float64) *ChartBuilder {
	b.t.Helper()
	normalized := model.NormalizeKey(key)
	if normalized == "" {
		b.t.Fatalf("invalid point key %q", key)
	}
	if _, exists := b.points[normalized]; exists {
		b.t.Fatalf("point %q added twice", normalized)
	}
	b.points[normalized] = model.Point{
		Key:              normalized,
		Name:             key,
		AbsolutePosition: longitude,
		SignPosition:     math.Mod(math.Mod(longitude, 30)+30, 30),
		Sign:             signOf(longitude),
	}
	return b
}

// WithPositions adds one point per entry.
func (b *ChartBuilder) WithPositions(positions map[string]float64) *ChartBuilder {
	b.t.Helper()
	for key, longitude := range positions {
		b.WithPoint(key, longitude)
	}
	return b
}

// WithUnusable adds a point without a position.
func (b *ChartBuilder) WithUnusable(key string) *ChartBuilder {
	b.t.Helper()
	b.WithPoint(key, math.NaN())
	p := b.points[model.NormalizeKey(key)]
	p.SignPosition, p.Sign = 0, ""
	b.points[p.Key] = p
	return b
}

// Retrograde marks existing points as retrograde.
func (b *ChartBuilder) Retrograde(keys ...string) *ChartBuilder {
	b.t.Helper()
	for _, key := range keys {
		p, ok := b.points[model.NormalizeKey(key)]
		if !ok {
			b.t.Fatalf("point %q not in chart", key)
		}
		p.Retrograde = true
		b.points[p.Key] = p
	}
	return b
}

// Named sets the name used by Record.
func (b *ChartBuilder) Named(name string) *ChartBuilder {
	b.name = name
	return b
}

// WithNotes sets the notes used by Record.
func (b *ChartBuilder) WithNotes(notes string) *ChartBuilder {
	b.notes = notes
	return b
}

// WithActiveKeys sets the active keys used by Record.
func (b *ChartBuilder) WithActiveKeys(keys ...string) *ChartBuilder {
	b.active = keys
	return b
}

// Build returns the chart.
func (b *ChartBuilder) Build() model.Chart {
	chart := make(model.Chart, len(b.points))
	for key, p := range b.points {
		chart[key] = p
	}
	return chart
}

// Record returns the chart wrapped in a library record ready to be saved.
func (b *ChartBuilder) Record() model.ChartRecord {
	b.t.Helper()
	if b.name == "" {
		b.t.Fatal("chart record needs a name")
	}
	return model.ChartRecord{
		Name:       b.name,
		Notes:      b.notes,
		ActiveKeys: b.active,
		Chart:      b.Build(),
	}
}

var signs = [...]string{"Ari", "Tau", "Gem", "Can", "Leo", "Vir", "Lib", "Sco", "Sag", "Cap", "Aqu", "Pis"}

func signOf(longitude float64) string {
	if math.IsNaN(longitude) || math.IsInf(longitude, 0) {
		return ""
	}
	normalized := math.Mod(math.Mod(longitude, 360)+360, 360)
	return signs[int(normalized/30)%len(signs)]
}

// Common fixtures. Positions are exact, so every aspect has a zero orb.

// TSquare returns a chart with sun opposite moon and mars squaring both.
func TSquare(t *testing.T) *ChartBuilder {
	t.Helper()
	return NewChartBuilder(t).WithPoint("sun", 0).WithPoint("moon", 180).WithPoint("mars", 90)
}

// GrandTrine returns a chart with three points 120° apart.
func GrandTrine(t *testing.T) *ChartBuilder {
	t.Helper()
	return NewChartBuilder(t).WithPoint("sun", 0).WithPoint("jupiter", 120).WithPoint("saturn", 240)
}
