// Package ingest converts upstream chart, aspect and series JSON into engine
// inputs. Field-name fallbacks for the various producers live here and
// nowhere else.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/Veraticus/stellium/internal/model"
)

// Parse errors.
var (
	ErrEmptyInput  = errors.New("empty input")
	ErrUnsupported = errors.New("unsupported document layout")
	ErrNoSnapshots = errors.New("series contains no snapshots")
)

// Input is a parsed chart together with the active keys it requested.
type Input struct {
	Chart      model.Chart
	Name       string
	ActiveKeys []string
}

// Snapshot is one labelled chart of a series.
type Snapshot struct {
	Label string
	Input Input
}

// Parser reads chart documents in the layouts produced upstream:
//   - a list of point records
//   - an object with a "points" list or map, plus optional active keys
//   - a subject map keyed by point name (kerykeion style), optionally
//     wrapped in a "subject" object
type Parser struct{}

// NewParser creates a new chart parser.
func NewParser() *Parser {
	return &Parser{}
}

// LoadChart reads and parses a chart file.
func (p *Parser) LoadChart(ctx context.Context, path string) (Input, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return Input{}, fmt.Errorf("failed to open chart file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("Failed to close chart file", "path", path, "error", cerr)
		}
	}()
	return p.ParseChart(ctx, f)
}

// ParseChart parses a chart document.
func (p *Parser) ParseChart(ctx context.Context, reader io.Reader) (Input, error) {
	doc, err := decode(ctx, reader)
	if err != nil {
		return Input{}, err
	}
	return p.chartFromValue(doc)
}

// LoadSeries reads and parses a series file.
func (p *Parser) LoadSeries(ctx context.Context, path string) ([]Snapshot, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open series file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("Failed to close series file", "path", path, "error", cerr)
		}
	}()
	return p.ParseSeries(ctx, f)
}

// ParseSeries parses {"snapshots": [{"label": ..., "points": ...}, ...]} or a
// bare list of snapshots. Each snapshot accepts any chart layout.
func (p *Parser) ParseSeries(ctx context.Context, reader io.Reader) ([]Snapshot, error) {
	doc, err := decode(ctx, reader)
	if err != nil {
		return nil, err
	}

	var items []any
	switch v := doc.(type) {
	case []any:
		items = v
	case map[string]any:
		list, ok := v["snapshots"].([]any)
		if !ok {
			return nil, fmt.Errorf("%w: expected a snapshots list", ErrUnsupported)
		}
		items = list
	default:
		return nil, fmt.Errorf("%w: series must be an object or a list", ErrUnsupported)
	}

	snapshots := make([]Snapshot, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			slog.Debug("Skipping non-object snapshot", "index", i)
			continue
		}
		input, err := p.chartFromValue(obj)
		if err != nil {
			return nil, fmt.Errorf("snapshot %d: %w", i, err)
		}
		label := record(obj).str(labelFields...)
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}
		snapshots = append(snapshots, Snapshot{Label: label, Input: input})
	}

	if len(snapshots) == 0 {
		return nil, ErrNoSnapshots
	}
	return snapshots, nil
}

func decode(ctx context.Context, reader io.Reader) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if len(content) == 0 {
		return nil, ErrEmptyInput
	}

	// Numbers stay json.Number so an out-of-range position only makes its
	// own point unusable.
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if err := dec.Decode(new(any)); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse JSON: unexpected data after top-level value")
	}
	return doc, nil
}

func (p *Parser) chartFromValue(doc any) (Input, error) {
	switch v := doc.(type) {
	case []any:
		return Input{Chart: pointsFromList(v)}, nil
	case map[string]any:
		return p.chartFromObject(v), nil
	default:
		return Input{}, fmt.Errorf("%w: chart must be an object or a list", ErrUnsupported)
	}
}

func (p *Parser) chartFromObject(obj map[string]any) Input {
	rec := record(obj)

	if subject, ok := obj["subject"].(map[string]any); ok {
		input := p.chartFromObject(subject)
		if active := rec.strings(activeKeysFields...); len(active) > 0 {
			input.ActiveKeys = active
		}
		return input
	}

	input := Input{
		Name:       rec.str("name", "subject_name"),
		ActiveKeys: rec.strings(activeKeysFields...),
	}

	for _, field := range pointContainerField {
		switch container := obj[field].(type) {
		case []any:
			input.Chart = pointsFromList(container)
			return input
		case map[string]any:
			input.Chart = pointsFromMap(container)
			return input
		}
	}

	input.Chart = pointsFromMap(obj)
	return input
}

func pointsFromList(items []any) model.Chart {
	chart := make(model.Chart, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		rec := record(obj)
		key := model.NormalizeKey(rec.str(pointKeyFields...))
		if key == "" {
			slog.Debug("Dropping point without key", "index", i)
			continue
		}
		chart[key] = toPoint(key, rec)
	}
	return chart
}

// pointsFromMap reads a map whose values are point records keyed by point
// name. Non-object values (active point lists, metadata) are skipped.
func pointsFromMap(obj map[string]any) model.Chart {
	names := make([]string, 0, len(obj))
	for name := range obj {
		names = append(names, name)
	}
	sort.Strings(names)

	chart := make(model.Chart, len(obj))
	for _, name := range names {
		inner, ok := obj[name].(map[string]any)
		if !ok {
			continue
		}
		rec := record(inner)
		if !rec.has(absolutePosFields...) && !rec.has(signPositionFields...) {
			continue
		}
		key := model.NormalizeKey(name)
		if key == "" {
			continue
		}
		chart[key] = toPoint(key, rec)
	}
	return chart
}

func toPoint(key string, rec record) model.Point {
	name := rec.str("name")
	if name == "" {
		name = key
	}
	signPos := rec.num(signPositionFields...)
	if math.IsNaN(signPos) || math.IsInf(signPos, 0) {
		signPos = 0
	}
	return model.Point{
		Key:              key,
		Name:             name,
		AbsolutePosition: rec.num(absolutePosFields...),
		SignPosition:     signPos,
		Sign:             rec.str("sign"),
		House:            rec.str("house"),
		Element:          rec.str("element"),
		Quality:          rec.str("quality"),
		Retrograde:       rec.boolean("retrograde", "isRetrograde", "is_retrograde"),
	}
}
