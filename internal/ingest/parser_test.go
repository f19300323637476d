package ingest

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/stellium/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_ParseChart(t *testing.T) {
	tests := []struct {
		check      func(t *testing.T, input Input)
		name       string
		doc        string
		wantKeys   []string
		wantActive []string
	}{
		{
			name: "subject map with active points",
			doc: `{
				"name": "Ada",
				"sun": {"name": "Sun", "abs_pos": 10.5, "position": 10.5, "sign": "Ari", "house": "First_House", "retrograde": false},
				"moon": {"name": "Moon", "abs_pos": 130.25, "position": 10.25, "sign": "Leo"},
				"Mean Node": {"name": "Mean_Node", "abs_pos": 200},
				"active_points": ["Sun", "Moon"],
				"lat": 51.5
			}`,
			wantKeys:   []string{"mean_node", "moon", "sun"},
			wantActive: []string{"Sun", "Moon"},
			check: func(t *testing.T, input Input) {
				t.Helper()
				assert.Equal(t, "Ada", input.Name)
				sun := input.Chart["sun"]
				assert.Equal(t, "Sun", sun.Name)
				assert.InDelta(t, 10.5, sun.AbsolutePosition, 1e-9)
				assert.InDelta(t, 10.5, sun.SignPosition, 1e-9)
				assert.Equal(t, "Ari", sun.Sign)
				assert.Equal(t, "First_House", sun.House)
			},
		},
		{
			name: "point list with camel case fields",
			doc: `[
				{"key": "sun", "absolutePosition": 0, "signPosition": 0, "sign": "Ari", "retrograde": "true"},
				{"key": "Moon", "absolutePosition": "120.5"},
				{"absolutePosition": 15}
			]`,
			wantKeys: []string{"moon", "sun"},
			check: func(t *testing.T, input Input) {
				t.Helper()
				assert.True(t, input.Chart["sun"].Retrograde)
				assert.InDelta(t, 120.5, input.Chart["moon"].AbsolutePosition, 1e-9)
				assert.Equal(t, "moon", input.Chart["moon"].Name)
			},
		},
		{
			name: "points container with active keys",
			doc: `{
				"activeKeys": ["mars"],
				"points": [
					{"name": "Mars", "longitude": 95},
					{"planet": "venus", "abs_pos": 40}
				]
			}`,
			wantKeys:   []string{"mars", "venus"},
			wantActive: []string{"mars"},
		},
		{
			name:       "wrapped subject",
			doc:        `{"subject": {"sun": {"abs_pos": 1}, "moon": {"abs_pos": 2}}, "active_points": ["sun"]}`,
			wantKeys:   []string{"moon", "sun"},
			wantActive: []string{"sun"},
		},
		{
			name:     "missing position is kept as unusable",
			doc:      `{"points": [{"key": "sun", "abs_pos": 0}, {"key": "lilith", "sign": "Sco"}]}`,
			wantKeys: []string{"lilith", "sun"},
			check: func(t *testing.T, input Input) {
				t.Helper()
				assert.True(t, math.IsNaN(input.Chart["lilith"].AbsolutePosition))
				assert.False(t, input.Chart["lilith"].IsUsable())
				assert.Equal(t, []string{"sun"}, input.Chart.UsableKeys())
			},
		},
		{
			name:     "out of range position is kept as unusable",
			doc:      `[{"key": "sun", "abs_pos": 10}, {"key": "moon", "abs_pos": 1e400, "position": -1e400}]`,
			wantKeys: []string{"moon", "sun"},
			check: func(t *testing.T, input Input) {
				t.Helper()
				assert.True(t, math.IsInf(input.Chart["moon"].AbsolutePosition, 1))
				assert.False(t, input.Chart["moon"].IsUsable())
				assert.Zero(t, input.Chart["moon"].SignPosition)
				assert.Equal(t, []string{"sun"}, input.Chart.UsableKeys())
			},
		},
		{
			name:     "no recognizable points",
			doc:      `{"meta": {"version": 2}, "name": "empty"}`,
			wantKeys: []string{},
		},
	}

	p := NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := p.ParseChart(context.Background(), strings.NewReader(tt.doc))
			require.NoError(t, err)

			keys := make([]string, 0, len(input.Chart))
			for _, pt := range input.Chart.Points() {
				keys = append(keys, pt.Key)
			}
			assert.Equal(t, tt.wantKeys, keys)
			assert.Equal(t, tt.wantActive, input.ActiveKeys)

			if tt.check != nil {
				tt.check(t, input)
			}
		})
	}
}

func TestParser_ParseChart_Errors(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		doc     string
	}{
		{name: "empty document", doc: "", wantErr: ErrEmptyInput},
		{name: "scalar document", doc: `42`, wantErr: ErrUnsupported},
		{name: "malformed JSON", doc: `{"sun": `},
		{name: "trailing data", doc: `{"sun": {"abs_pos": 1}} {}`},
	}

	p := NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ParseChart(context.Background(), strings.NewReader(tt.doc))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestParser_ParseChart_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser().ParseChart(ctx, strings.NewReader(`[]`))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParser_LoadChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"sun": {"abs_pos": 0}, "moon": {"abs_pos": 120}}`), 0o600))

	input, err := NewParser().LoadChart(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"moon", "sun"}, input.Chart.UsableKeys())

	_, err = NewParser().LoadChart(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestParser_ParseSeries(t *testing.T) {
	doc := `{
		"snapshots": [
			{"label": "2024-01-01", "points": [{"key": "sun", "abs_pos": 280}, {"key": "moon", "abs_pos": 100}]},
			{"datetime": "2024-01-02T00:00:00Z", "sun": {"abs_pos": 281}, "moon": {"abs_pos": 113}},
			"ignored",
			{"points": []}
		]
	}`

	snapshots, err := NewParser().ParseSeries(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, snapshots, 3)

	assert.Equal(t, "2024-01-01", snapshots[0].Label)
	assert.Equal(t, []string{"moon", "sun"}, snapshots[0].Input.Chart.UsableKeys())
	assert.Equal(t, "2024-01-02T00:00:00Z", snapshots[1].Label)
	assert.InDelta(t, 113, snapshots[1].Input.Chart["moon"].AbsolutePosition, 1e-9)
	assert.Equal(t, "#4", snapshots[2].Label)
	assert.Empty(t, snapshots[2].Input.Chart)
}

func TestParser_ParseSeries_Errors(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		doc     string
	}{
		{name: "no snapshots key", doc: `{"points": []}`, wantErr: ErrUnsupported},
		{name: "empty list", doc: `{"snapshots": []}`, wantErr: ErrNoSnapshots},
		{name: "only scalars", doc: `[1, 2]`, wantErr: ErrNoSnapshots},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser().ParseSeries(context.Background(), strings.NewReader(tt.doc))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParser_ParseAspects(t *testing.T) {
	doc := `{
		"aspects": [
			{"base_key": "sun", "other_key": "moon", "aspect_type": "opposition", "orb": 1.5, "separation": 178.5},
			{"planet1": "Moon", "planet2": "Mars", "aspect": "Square", "orb_value": "2"},
			{"p1": "sun", "p2": "mars", "type": "square", "orb": -0.5},
			{"left": "sun", "right": "venus", "name": "quincunx", "orb": 1},
			{"first_point": "sun", "aspect_type": "trine", "orb": 1},
			{"point1": "sun", "point2": "Sun", "aspect_type": "conjunction", "orb": 0},
			{"base_key": "sun", "other_key": "jupiter", "aspect_type": "trine"},
			{"base_key": "sun", "other_key": "saturn", "aspect_type": "trine", "orb": 1e400}
		]
	}`

	aspects, err := NewParser().ParseAspects(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)

	want := []model.AspectInstance{
		{BaseKey: "sun", OtherKey: "moon", Type: model.Opposition, Angle: 180, Orb: 1.5, Separation: 178.5},
		{BaseKey: "moon", OtherKey: "mars", Type: model.Square, Angle: 90, Orb: 2, Separation: 90},
		{BaseKey: "sun", OtherKey: "mars", Type: model.Square, Angle: 90, Orb: 0.5, Separation: 90},
	}
	assert.Equal(t, want, aspects)
}

func TestParser_ParseAspects_Layouts(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		doc     string
		want    int
	}{
		{name: "bare list", doc: `[{"p1": "a", "p2": "b", "aspect": "trine", "orb": 1}]`, want: 1},
		{name: "active aspects", doc: `{"active_aspects": [{"p1": "a", "p2": "b", "aspect": "trine", "orb": 1}]}`, want: 1},
		{name: "empty list", doc: `[]`, want: 0},
		{name: "object without list", doc: `{"sun": {}}`, wantErr: ErrUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			aspects, err := NewParser().ParseAspects(context.Background(), strings.NewReader(tt.doc))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, aspects, tt.want)
		})
	}
}
