package engine

import (
	"math"
	"sync"
	"testing"

	"github.com/Veraticus/stellium/internal/aspect"
	"github.com/Veraticus/stellium/internal/model"
	"github.com/Veraticus/stellium/internal/pattern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chartOf(positions map[string]float64) model.Chart {
	chart := make(model.Chart, len(positions))
	for key, pos := range positions {
		chart[key] = model.Point{Key: key, AbsolutePosition: pos}
	}
	return chart
}

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New()
	require.NoError(t, err)
	return e
}

func TestNewWithConfig(t *testing.T) {
	overlapping := aspect.Table{
		Definitions: []model.AspectDefinition{
			{Name: model.Conjunction, Angle: 0, MaxOrb: 30},
			{Name: model.Sextile, Angle: 60, MaxOrb: 30},
		},
	}

	badCatalog := pattern.Catalog{{ID: "pentagram", Shape: model.Shape("star")}}

	tests := []struct {
		wantErr error
		name    string
		config  Config
	}{
		{
			name:   "default configuration",
			config: DefaultConfig(),
		},
		{
			name:    "empty aspect table",
			config:  Config{Catalog: pattern.DefaultCatalog()},
			wantErr: aspect.ErrInvalidTable,
		},
		{
			name:    "overlapping windows without tie-break",
			config:  Config{Table: overlapping, Catalog: pattern.DefaultCatalog()},
			wantErr: aspect.ErrOverlappingOrbs,
		},
		{
			name:    "unknown shape",
			config:  Config{Table: aspect.DefaultTable(), Catalog: badCatalog},
			wantErr: pattern.ErrUnknownShape,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewWithConfig(tt.config)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, e)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, pattern.DefaultCatalog().IDs(), e.Catalog().IDs())
			assert.Equal(t, aspect.DefaultTable(), e.Table())
		})
	}
}

func TestEngine_Compute_GrandTrine(t *testing.T) {
	e := newEngine(t)

	result := e.Compute(chartOf(map[string]float64{"sun": 0, "moon": 120, "mars": 240}), nil)

	assert.Equal(t, []string{"mars", "moon", "sun"}, result.Keys)
	require.Len(t, result.Aspects, 3)
	for _, a := range result.Aspects {
		assert.Equal(t, model.Trine, a.Type)
		assert.InDelta(t, 0, a.Orb, 1e-9)
	}

	require.Len(t, result.Patterns[pattern.IDGrandTrine], 1)
	assert.Equal(t, []string{"mars", "moon", "sun"}, result.Patterns[pattern.IDGrandTrine][0].Points)
	assert.Empty(t, result.Patterns[pattern.IDTSquare])
	assert.Empty(t, result.Patterns[pattern.IDGrandCross])
}

func TestEngine_Compute_TSquare(t *testing.T) {
	e := newEngine(t)

	result := e.Compute(chartOf(map[string]float64{"a": 0, "b": 180, "c": 90}), nil)

	tsquares := result.Patterns[pattern.IDTSquare]
	require.Len(t, tsquares, 1)
	assert.Equal(t, "c", tsquares[0].Structure.Focal)
	assert.Equal(t, []string{"a", "b"}, tsquares[0].Structure.Base)
	assert.Len(t, tsquares[0].Links, 3)
}

func TestEngine_Compute_EmptyChart(t *testing.T) {
	e := newEngine(t)

	result := e.Compute(model.Chart{}, nil)

	assert.NotNil(t, result.Aspects)
	assert.Empty(t, result.Aspects)
	require.Len(t, result.Patterns, len(pattern.DefaultCatalog()))
	for _, id := range pattern.DefaultCatalog().IDs() {
		instances, ok := result.Patterns[id]
		assert.True(t, ok, "pattern %s missing", id)
		assert.NotNil(t, instances, "pattern %s", id)
		assert.Empty(t, instances, "pattern %s", id)
	}
	assert.Zero(t, result.PatternTotal())
}

func TestEngine_Compute_SkipsUnusablePoints(t *testing.T) {
	e := newEngine(t)

	chart := chartOf(map[string]float64{"sun": 0, "moon": math.NaN(), "mars": 120, "node": math.Inf(1)})
	result := e.Compute(chart, nil)

	assert.Equal(t, []string{"mars", "sun"}, result.Keys)
	require.Len(t, result.Aspects, 1)
	assert.False(t, result.Aspects[0].Involves("moon"))
	assert.False(t, result.Aspects[0].Involves("node"))
}

func TestEngine_Compute_ActiveKeys(t *testing.T) {
	e := newEngine(t)

	chart := chartOf(map[string]float64{"sun": 0, "moon": 120, "mars": 240, "mean_node": 90})

	tests := []struct {
		name     string
		active   []string
		wantKeys []string
	}{
		{
			name:     "explicit subset keeps order",
			active:   []string{"Sun", "Mean Node"},
			wantKeys: []string{"sun", "mean_node"},
		},
		{
			name:     "unknown keys fall back to all",
			active:   []string{"pluto"},
			wantKeys: []string{"mars", "mean_node", "moon", "sun"},
		},
		{
			name:     "nothing requested",
			wantKeys: []string{"mars", "mean_node", "moon", "sun"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := e.Compute(chart, tt.active)
			assert.Equal(t, tt.wantKeys, result.Keys)
			for _, a := range result.Aspects {
				assert.Contains(t, tt.wantKeys, a.BaseKey)
				assert.Contains(t, tt.wantKeys, a.OtherKey)
			}
		})
	}
}

func TestEngine_Compute_Deterministic(t *testing.T) {
	e := newEngine(t)

	chart := chartOf(map[string]float64{
		"sun": 10, "moon": 70, "mercury": 130, "venus": 190,
		"mars": 250, "jupiter": 310, "saturn": 100, "uranus": 280,
	})

	first := e.Compute(chart, nil)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, e.Compute(chart, nil))
	}
}

func TestEngine_Compute_Concurrent(t *testing.T) {
	e := newEngine(t)

	charts := []model.Chart{
		chartOf(map[string]float64{"a": 0, "b": 180, "c": 90, "d": 270}),
		chartOf(map[string]float64{"a": 0, "b": 120, "c": 240, "k": 180}),
		chartOf(map[string]float64{"a": 0, "b": 2, "c": 4}),
	}
	want := make([]Result, len(charts))
	for i, chart := range charts {
		want[i] = e.Compute(chart, nil)
	}

	var wg sync.WaitGroup
	got := make([]Result, 30)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = e.Compute(charts[i%len(charts)], nil)
		}(i)
	}
	wg.Wait()

	for i, result := range got {
		assert.Equal(t, want[i%len(charts)], result)
	}
}

func TestEngine_MatchAspects(t *testing.T) {
	e := newEngine(t)

	input := []model.AspectInstance{
		{BaseKey: "sun", OtherKey: "mars", Type: model.Square, Angle: 90, Orb: 3},
		{BaseKey: "moon", OtherKey: "mars", Type: model.Square, Angle: 90, Orb: 2},
		{BaseKey: "sun", OtherKey: "moon", Type: model.Opposition, Angle: 180, Orb: 1},
	}
	original := make([]model.AspectInstance, len(input))
	copy(original, input)

	patterns := e.MatchAspects(input, nil)

	assert.Equal(t, original, input)
	require.Len(t, patterns[pattern.IDTSquare], 1)
	tsquare := patterns[pattern.IDTSquare][0]
	assert.Equal(t, "mars", tsquare.Structure.Focal)
	assert.Equal(t, []string{"sun", "moon"}, tsquare.Structure.Base)
	assert.Equal(t, []string{"mars", "moon", "sun"}, tsquare.Points)
}

func TestEngine_Cross(t *testing.T) {
	e := newEngine(t)

	natal := chartOf(map[string]float64{"sun": 0, "moon": 200})
	transit := chartOf(map[string]float64{"sun": 181, "mars": 92, "ghost": math.NaN()})

	aspects := e.Cross(natal, transit)

	require.Len(t, aspects, 2)
	assert.Equal(t, "sun", aspects[0].BaseKey)
	assert.Equal(t, "sun", aspects[0].OtherKey)
	assert.Equal(t, model.Opposition, aspects[0].Type)
	assert.Equal(t, "mars", aspects[1].OtherKey)
	assert.Equal(t, model.Square, aspects[1].Type)
}

func TestEngine_Subset(t *testing.T) {
	catalog, err := pattern.DefaultCatalog().Subset(pattern.IDGrandTrine)
	require.NoError(t, err)

	e, err := NewWithConfig(Config{Table: aspect.DefaultTable(), Catalog: catalog})
	require.NoError(t, err)

	result := e.Compute(chartOf(map[string]float64{"sun": 0, "moon": 120, "mars": 240}), nil)

	assert.Equal(t, map[string]int{pattern.IDGrandTrine: 1}, result.Counts())
	assert.Equal(t, 1, result.PatternTotal())
}
