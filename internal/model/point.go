// Package model defines the core data structures for the stellium engine.
package model

import (
	"math"
	"sort"
	"strings"
)

// Point is a single chart point such as a planet, an angle or a lunar node.
type Point struct {
	Key              string  `json:"key"`
	Name             string  `json:"name,omitempty"`
	Sign             string  `json:"sign,omitempty"`
	House            string  `json:"house,omitempty"`
	Element          string  `json:"element,omitempty"`
	Quality          string  `json:"quality,omitempty"`
	AbsolutePosition float64 `json:"absolute_position"`
	SignPosition     float64 `json:"sign_position,omitempty"`
	Retrograde       bool    `json:"retrograde,omitempty"`
}

// IsUsable reports whether the point can take part in aspect computation.
func (p Point) IsUsable() bool {
	return !math.IsNaN(p.AbsolutePosition) && !math.IsInf(p.AbsolutePosition, 0)
}

// Longitude returns the absolute position reduced to [0, 360).
func (p Point) Longitude() float64 {
	lon := math.Mod(p.AbsolutePosition, 360)
	if lon < 0 {
		lon += 360
	}
	return lon
}

// Chart is the set of points of one chart snapshot, keyed by point key.
type Chart map[string]Point

// NewChart builds a chart from a list of points. Later points win on key collisions.
func NewChart(points ...Point) Chart {
	c := make(Chart, len(points))
	for _, p := range points {
		c[p.Key] = p
	}
	return c
}

// UsableKeys returns the keys of all usable points in lexicographic order.
func (c Chart) UsableKeys() []string {
	keys := make([]string, 0, len(c))
	for k, p := range c {
		if p.IsUsable() {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Points returns all points ordered by key.
func (c Chart) Points() []Point {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	points := make([]Point, 0, len(keys))
	for _, k := range keys {
		points = append(points, c[k])
	}
	return points
}

// NormalizeKey canonicalizes a point key: lower case, spaces and hyphens become underscores.
func NormalizeKey(key string) string {
	key = strings.TrimSpace(key)
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	return strings.ToLower(key)
}
