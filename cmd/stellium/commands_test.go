package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/Veraticus/stellium/internal/cli"
	"github.com/Veraticus/stellium/internal/common"
	"github.com/Veraticus/stellium/internal/config"
	"github.com/Veraticus/stellium/internal/engine"
	"github.com/Veraticus/stellium/internal/ingest"
	"github.com/Veraticus/stellium/internal/model"
	"github.com/Veraticus/stellium/internal/pattern"
	"github.com/Veraticus/stellium/internal/testutil"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tSquareChart = `{"points": [
	{"key": "a", "abs_pos": 0},
	{"key": "b", "abs_pos": 180},
	{"key": "c", "abs_pos": 90}
]}`

// setupTestConfig points the global configuration at a fresh database.
func setupTestConfig(t *testing.T) {
	t.Helper()
	viper.Reset()
	config.SetDefaults(viper.GetViper())
	viper.Set("database.path", filepath.Join(t.TempDir(), "stellium.db"))
	t.Cleanup(viper.Reset)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// execute runs cmd with args and returns stdout and stderr.
// Errors and usage are silenced the same way rootCmd silences them.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestAnalyzeCmd(t *testing.T) {
	setupTestConfig(t)
	path := writeFile(t, "tsquare.json", tSquareChart)

	out, _, err := execute(analyzeCmd(), path)
	require.NoError(t, err)

	assert.Contains(t, out, "tsquare")
	assert.Contains(t, out, "Aspects (3)")
	assert.Contains(t, out, "T-Square (1)")
	assert.Contains(t, out, "Focal c □ both ends of a ☍ b")
	assert.Equal(t, len(pattern.DefaultCatalog())-1, strings.Count(out, cli.NoLinksMessage))
}

func TestAnalyzeCmd_JSON(t *testing.T) {
	setupTestConfig(t)
	path := writeFile(t, "tsquare.json", tSquareChart)

	out, _, err := execute(analyzeCmd(), path, "--json")
	require.NoError(t, err)

	var report cli.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))

	assert.Equal(t, "tsquare", report.Name)
	assert.Equal(t, []string{"a", "b", "c"}, report.Keys)
	assert.Len(t, report.Aspects, 3)
	for _, id := range pattern.DefaultCatalog().IDs() {
		assert.Contains(t, report.Patterns, id)
	}
	require.Len(t, report.Patterns[pattern.IDTSquare], 1)
	assert.Equal(t, "c", report.Patterns[pattern.IDTSquare][0].Structure.Focal)
}

func TestAnalyzeCmd_Flags(t *testing.T) {
	tests := []struct {
		check   func(t *testing.T, out string)
		wantErr error
		name    string
		args    []string
	}{
		{
			name: "active subset",
			args: []string{"--active", "a,b", "--json"},
			check: func(t *testing.T, out string) {
				t.Helper()
				var report cli.Report
				require.NoError(t, json.Unmarshal([]byte(out), &report))
				assert.Equal(t, []string{"a", "b"}, report.Keys)
				assert.Len(t, report.Aspects, 1)
				assert.Empty(t, report.Patterns[pattern.IDTSquare])
			},
		},
		{
			name: "pattern subset",
			args: []string{"--patterns", "t_square,Kite", "--json"},
			check: func(t *testing.T, out string) {
				t.Helper()
				var report cli.Report
				require.NoError(t, json.Unmarshal([]byte(out), &report))
				assert.Len(t, report.Patterns, 2)
			},
		},
		{
			name: "top limits aspects",
			args: []string{"--top", "1"},
			check: func(t *testing.T, out string) {
				t.Helper()
				assert.Contains(t, out, "2 more")
			},
		},
		{name: "unknown pattern", args: []string{"--patterns", "hexagram"}, wantErr: pattern.ErrUnknownPattern},
		{name: "negative top", args: []string{"--top", "-1"}, wantErr: common.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestConfig(t)
			path := writeFile(t, "tsquare.json", tSquareChart)

			out, _, err := execute(analyzeCmd(), append([]string{path}, tt.args...)...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, out)
		})
	}
}

func TestAnalyzeCmd_Stdin(t *testing.T) {
	setupTestConfig(t)

	cmd := analyzeCmd()
	cmd.SetIn(strings.NewReader(`{"name": "Piped", "sun": {"abs_pos": 0}, "moon": {"abs_pos": 120}}`))

	out, _, err := execute(cmd, "-", "--json")
	require.NoError(t, err)

	var report cli.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "Piped", report.Name)
	require.Len(t, report.Aspects, 1)
	assert.Equal(t, model.Trine, report.Aspects[0].Type)
}

func TestAnalyzeCmd_MissingFile(t *testing.T) {
	setupTestConfig(t)

	_, _, err := execute(analyzeCmd(), filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read chart")
}

func TestAnalyzeCmd_EmptyChart(t *testing.T) {
	setupTestConfig(t)
	path := writeFile(t, "empty.json", `{"points": []}`)

	out, _, err := execute(analyzeCmd(), path)
	require.NoError(t, err)
	assert.Contains(t, out, "No usable points found")
	assert.Contains(t, out, "No aspects found.")
	assert.Equal(t, len(pattern.DefaultCatalog()), strings.Count(out, cli.NoLinksMessage))
}

func TestAspectsCmd(t *testing.T) {
	setupTestConfig(t)
	path := writeFile(t, "tsquare.json", tSquareChart)

	out, _, err := execute(aspectsCmd(), path, "--json")
	require.NoError(t, err)

	var aspects []model.AspectInstance
	require.NoError(t, json.Unmarshal([]byte(out), &aspects))
	require.Len(t, aspects, 3)
	for i := 1; i < len(aspects); i++ {
		assert.LessOrEqual(t, aspects[i-1].Orb, aspects[i].Orb)
	}

	out, _, err = execute(aspectsCmd(), path)
	require.NoError(t, err)
	assert.Contains(t, out, "tsquare (3)")
	assert.NotContains(t, out, "T-Square")
}

func TestPatternsCmd(t *testing.T) {
	setupTestConfig(t)

	t.Run("list", func(t *testing.T) {
		out, _, err := execute(patternsCmd(), "list")
		require.NoError(t, err)
		for _, id := range pattern.DefaultCatalog().IDs() {
			assert.Contains(t, out, id)
		}
	})

	t.Run("list respects configuration", func(t *testing.T) {
		viper.Set("patterns.enabled", []string{"kite"})
		defer viper.Set("patterns.enabled", nil)

		out, _, err := execute(patternsCmd(), "list")
		require.NoError(t, err)
		assert.Contains(t, out, "kite")
		assert.NotContains(t, out, "grand_sextile")

		out, _, err = execute(patternsCmd(), "list", "--all")
		require.NoError(t, err)
		assert.Contains(t, out, "grand_sextile")
	})

	t.Run("show", func(t *testing.T) {
		out, _, err := execute(patternsCmd(), "show", "Grand_Cross")
		require.NoError(t, err)
		assert.Contains(t, out, "Grand Cross")
		assert.Contains(t, out, "grand_cross")
	})

	t.Run("show unknown", func(t *testing.T) {
		_, _, err := execute(patternsCmd(), "show", "hexagram")
		require.Error(t, err)
		assert.ErrorIs(t, err, pattern.ErrUnknownPattern)
		assert.Contains(t, common.UserMessage(err), "t_square")
	})
}

func TestPatternsMatchCmd(t *testing.T) {
	setupTestConfig(t)
	path := writeFile(t, "aspects.json", `[
		{"p1": "a", "p2": "b", "aspect": "opposition", "orb": 0.5},
		{"planet1": "A", "planet2": "C", "aspect_type": "Square", "orb_value": "1"},
		{"p1": "b", "p2": "c", "type": "square", "orb": -1.25},
		{"p1": "a", "p2": "d", "aspect": "quincunx", "orb": 1}
	]`)

	out, _, err := execute(patternsCmd(), "match", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Matched 3 aspects")
	assert.Contains(t, out, "T-Square (1)")

	out, _, err = execute(patternsCmd(), "match", path, "--json")
	require.NoError(t, err)

	var report cli.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, []string{"a", "b", "c"}, report.Keys)
	require.Len(t, report.Aspects, 3)
	assert.InDelta(t, 0.5, report.Aspects[0].Orb, 1e-9)
	assert.InDelta(t, 1.25, report.Aspects[2].Orb, 1e-9)
	assert.Len(t, report.Patterns[pattern.IDTSquare], 1)

	out, _, err = execute(patternsCmd(), "match", path, "--points", "a,b", "--json")
	require.NoError(t, err)
	report = cli.Report{}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, []string{"a", "b"}, report.Keys)
	require.Len(t, report.Aspects, 1)
	assert.Equal(t, model.Opposition, report.Aspects[0].Type)
	assert.Empty(t, report.Patterns[pattern.IDTSquare])

	out, _, err = execute(patternsCmd(), "match", path, "--points", "a,b")
	require.NoError(t, err)
	assert.Contains(t, out, "Matched 1 aspects")
}

func TestSynastryCmd(t *testing.T) {
	setupTestConfig(t)
	first := writeFile(t, "first.json", `{"name": "First", "sun": {"abs_pos": 0}, "venus": {"abs_pos": 45}}`)
	second := writeFile(t, "second.json", `{"name": "Second", "moon": {"abs_pos": 180}, "sun": {"abs_pos": 1}}`)

	out, _, err := execute(synastryCmd(), first, second, "--json")
	require.NoError(t, err)

	var report synastryReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "First", report.First)
	assert.Equal(t, "Second", report.Second)

	require.Len(t, report.Aspects, 2)
	assert.Equal(t, "sun", report.Aspects[0].BaseKey)
	assert.Equal(t, "moon", report.Aspects[0].OtherKey)
	assert.Equal(t, model.Opposition, report.Aspects[0].Type)
	assert.Equal(t, "sun", report.Aspects[1].OtherKey)
	assert.Equal(t, model.Conjunction, report.Aspects[1].Type)

	out, _, err = execute(synastryCmd(), first, second)
	require.NoError(t, err)
	assert.Contains(t, out, "First × Second (2)")

	_, _, err = execute(synastryCmd(), "-", "-")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestChartsLifecycle(t *testing.T) {
	setupTestConfig(t)
	path := writeFile(t, "tsquare.json", tSquareChart)

	_, stderr, err := execute(analyzeCmd(), path, "--save", "Test Chart")
	require.NoError(t, err)
	assert.Contains(t, stderr, `Saved chart "Test Chart"`)

	out, _, err := execute(chartsCmd(), "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Test Chart")

	out, _, err = execute(chartsCmd(), "list", "--match", "^other")
	require.NoError(t, err)
	assert.NotContains(t, out, "Test Chart")

	out, _, err = execute(chartsCmd(), "analyze", "test chart", "--json")
	require.Error(t, err, "names are matched exactly")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Empty(t, out)

	out, _, err = execute(chartsCmd(), "analyze", "Test Chart", "--json")
	require.NoError(t, err)
	var report cli.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "Test Chart", report.Name)
	assert.Len(t, report.Patterns[pattern.IDTSquare], 1)

	_, _, err = execute(chartsCmd(), "save", path, "--name", "Test Chart")
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)

	replacement := writeFile(t, "trine.json", `{"points": [
		{"key": "a", "abs_pos": 0}, {"key": "b", "abs_pos": 120}, {"key": "c", "abs_pos": 240}, {"key": "d", "abs_pos": 300}
	]}`)
	out, _, err = execute(chartsCmd(), "save", replacement, "--name", "Test Chart", "--replace", "--notes", "replaced")
	require.NoError(t, err)
	assert.Contains(t, out, "with 4 points")

	out, _, err = execute(chartsCmd(), "show", "Test Chart")
	require.NoError(t, err)
	assert.Contains(t, out, "Points:  4 (4 usable)")
	assert.Contains(t, out, "replaced")
	assert.Contains(t, out, "300.00°")

	out, _, err = execute(chartsCmd(), "delete", "Test Chart")
	require.NoError(t, err)
	assert.Contains(t, out, `Deleted chart "Test Chart"`)

	_, _, err = execute(chartsCmd(), "show", "Test Chart")
	assert.ErrorIs(t, err, common.ErrNotFound)

	out, _, err = execute(chartsCmd(), "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No charts saved yet")
}

func TestChartsCmd_SeededLibrary(t *testing.T) {
	setupTestConfig(t)
	db := testutil.SetupTestDBAt(t, viper.GetString("database.path"),
		testutil.GrandTrine(t).WithUnusable("lilith").Named("Trine").WithNotes("fire signs").Record(),
		testutil.GrandTrine(t).Named("Pair").WithActiveKeys("sun", "jupiter").Record(),
	)
	trine := db.MustGetChart("Trine")

	out, _, err := execute(chartsCmd(), "show", trine.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Points:  4 (3 usable)")
	assert.Contains(t, out, "Active:  all")
	assert.Contains(t, out, "Notes:   fire signs")
	assert.Contains(t, out, "lilith")

	out, _, err = execute(chartsCmd(), "analyze", trine.ID, "--json")
	require.NoError(t, err)
	var report cli.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Len(t, report.Aspects, 3)
	assert.Len(t, report.Patterns[pattern.IDGrandTrine], 1)

	out, _, err = execute(chartsCmd(), "analyze", "Pair", "--json")
	require.NoError(t, err)
	report = cli.Report{}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Aspects, 1)
	assert.Equal(t, model.Trine, report.Aspects[0].Type)
	assert.Empty(t, report.Patterns[pattern.IDGrandTrine])
}

func TestChartsSaveCmd_Errors(t *testing.T) {
	setupTestConfig(t)

	empty := writeFile(t, "empty.json", `{"points": [{"key": "lilith"}]}`)
	_, _, err := execute(chartsCmd(), "save", empty)
	assert.ErrorIs(t, err, common.ErrNoPoints)

	_, _, err = execute(chartsCmd(), "list", "--match", "([")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestSeriesCmd(t *testing.T) {
	setupTestConfig(t)
	path := writeFile(t, "series.json", `{"snapshots": [
		{"label": "day 1", "points": [{"key": "a", "abs_pos": 0}, {"key": "b", "abs_pos": 120}, {"key": "c", "abs_pos": 240}]},
		{"label": "day 2", "points": [{"key": "a", "abs_pos": 0}, {"key": "b", "abs_pos": 180}, {"key": "c", "abs_pos": 90}]},
		{"label": "day 3", "points": [{"key": "a", "abs_pos": 0}]}
	]}`)

	out, _, err := execute(seriesCmd(), path, "--json", "--no-progress", "--workers", "2")
	require.NoError(t, err)

	var reports []seriesReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 3)
	assert.Equal(t, "day 1", reports[0].Label)
	assert.Len(t, reports[0].Patterns[pattern.IDGrandTrine], 1)
	assert.Equal(t, "day 2", reports[1].Label)
	assert.Len(t, reports[1].Patterns[pattern.IDTSquare], 1)
	assert.Empty(t, reports[2].Aspects)

	out, stderr, err := execute(seriesCmd(), path, "--workers", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "day 3")
	assert.Contains(t, stderr, "Computing snapshots")

	_, _, err = execute(seriesCmd(), path, "--workers", "0")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestComputeSeries(t *testing.T) {
	e, err := engine.New()
	require.NoError(t, err)

	snapshots := make([]ingest.Snapshot, 40)
	for i := range snapshots {
		chart := model.NewChart(
			model.Point{Key: "sun", AbsolutePosition: 0},
			model.Point{Key: "moon", AbsolutePosition: float64(i * 9)},
		)
		snapshots[i] = ingest.Snapshot{Label: fmt.Sprintf("#%d", i), Input: ingest.Input{Chart: chart}}
	}

	var (
		mu    sync.Mutex
		calls int
		last  int
	)
	rows, err := computeSeries(context.Background(), e, snapshots, seriesOptions{
		Workers: 4,
		OnDone: func(completed int) {
			mu.Lock()
			defer mu.Unlock()
			calls++
			last = max(last, completed)
		},
	})
	require.NoError(t, err)
	require.Len(t, rows, len(snapshots))
	assert.Equal(t, len(snapshots), calls)
	assert.Equal(t, len(snapshots), last)

	for i, row := range rows {
		assert.Equal(t, snapshots[i].Label, row.Label)
		assert.Equal(t, e.Compute(snapshots[i].Input.Chart, nil), row.Result)
	}
}

func TestComputeSeries_Canceled(t *testing.T) {
	e, err := engine.New()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	snapshots := []ingest.Snapshot{{Label: "#1", Input: ingest.Input{Chart: model.Chart{}}}}
	_, err = computeSeries(ctx, e, snapshots, seriesOptions{Workers: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMigrateCmd(t *testing.T) {
	setupTestConfig(t)

	out, _, err := execute(migrateCmd(), "--status")
	require.NoError(t, err)
	assert.Contains(t, out, "Current version: 0")
	assert.Contains(t, out, "Migrations pending")

	out, _, err = execute(migrateCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "from version 0 to 2")

	out, _, err = execute(migrateCmd(), "--status")
	require.NoError(t, err)
	assert.Contains(t, out, "Current version: 2")
	assert.Contains(t, out, "Schema is up to date")
}

func TestInitConfig_MissingFile(t *testing.T) {
	setupTestConfig(t)
	previous := cfgFile
	t.Cleanup(func() { cfgFile = previous })

	cfgFile = filepath.Join(t.TempDir(), "missing.yaml")
	err := initConfig(rootCmd, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMissingConfig)
	assert.Contains(t, common.UserMessage(err), "missing.yaml does not exist")

	cfgFile = writeFile(t, "config.yaml", "output:\n  top: 2\n")
	require.NoError(t, initConfig(rootCmd, nil))
	assert.Equal(t, 2, viper.GetInt("output.top"))
}

func TestVersionCmd(t *testing.T) {
	out, _, err := execute(versionCmd())
	require.NoError(t, err)
	assert.Equal(t, "stellium version dev\n", out)
}

func TestChartName(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		want  string
		input ingest.Input
	}{
		{name: "document name wins", input: ingest.Input{Name: "Ada"}, path: "/tmp/natal.json", want: "Ada"},
		{name: "file name without extension", path: "/tmp/natal.chart.json", want: "natal.chart"},
		{name: "stdin", path: "-", want: "stdin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, chartName(tt.input, tt.path))
		})
	}
}
