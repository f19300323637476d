package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/stellium/internal/model"
)

var aspectAngles = map[model.AspectType]float64{
	model.Conjunction: 0,
	model.Sextile:     60,
	model.Square:      90,
	model.Trine:       120,
	model.Opposition:  180,
}

// LoadAspects reads and parses an aspect list file.
func (p *Parser) LoadAspects(ctx context.Context, path string) ([]model.AspectInstance, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open aspects file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("Failed to close aspects file", "path", path, "error", cerr)
		}
	}()
	return p.ParseAspects(ctx, f)
}

// ParseAspects reads an externally computed aspect list. The document may be
// a bare list or an object holding "aspects" or "active_aspects". Records
// whose endpoints, aspect type or orb cannot be resolved are dropped.
func (p *Parser) ParseAspects(ctx context.Context, reader io.Reader) ([]model.AspectInstance, error) {
	doc, err := decode(ctx, reader)
	if err != nil {
		return nil, err
	}

	var items []any
	switch v := doc.(type) {
	case []any:
		items = v
	case map[string]any:
		for _, field := range []string{"aspects", "active_aspects"} {
			if list, ok := v[field].([]any); ok {
				items = list
				break
			}
		}
		if items == nil {
			return nil, fmt.Errorf("%w: expected an aspects list", ErrUnsupported)
		}
	default:
		return nil, fmt.Errorf("%w: aspects must be an object or a list", ErrUnsupported)
	}

	aspects := make([]model.AspectInstance, 0, len(items))
	dropped := 0
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			dropped++
			continue
		}
		inst, ok := toAspect(record(obj))
		if !ok {
			dropped++
			continue
		}
		aspects = append(aspects, inst)
	}

	if dropped > 0 {
		slog.Debug("Dropped unresolvable aspect records", "dropped", dropped, "kept", len(aspects))
	}
	return aspects, nil
}

func toAspect(rec record) (model.AspectInstance, bool) {
	base := model.NormalizeKey(rec.str(baseKeyFields...))
	other := model.NormalizeKey(rec.str(otherKeyFields...))
	if base == "" || other == "" || base == other {
		return model.AspectInstance{}, false
	}

	kind := model.AspectType(strings.ToLower(rec.str(aspectFields...)))
	angle, known := aspectAngles[kind]
	if !known {
		return model.AspectInstance{}, false
	}

	orb := rec.num(orbFields...)
	if !finite(orb) {
		return model.AspectInstance{}, false
	}

	if a := rec.num(angleFields...); finite(a) {
		angle = a
	}
	separation := rec.num(separationFlds...)
	if !finite(separation) {
		separation = angle
	}

	return model.AspectInstance{
		BaseKey:    base,
		OtherKey:   other,
		Type:       kind,
		Angle:      angle,
		Orb:        math.Abs(orb),
		Separation: separation,
	}, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
