package ingest

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// Candidate field names, in lookup order. Upstream producers disagree on
// spelling, so every record is resolved against these lists.
var (
	pointKeyFields      = []string{"key", "point", "planet", "id", "name"}
	absolutePosFields   = []string{"absolutePosition", "absolute_position", "abs_pos", "longitude", "lon"}
	signPositionFields  = []string{"signPosition", "sign_position", "position"}
	activeKeysFields    = []string{"activeKeys", "active_keys", "active_points", "activePoints"}
	pointContainerField = []string{"points", "planets"}

	baseKeyFields  = []string{"base_key", "baseKey", "left", "first_point", "first", "point1", "planet1", "p1_name", "body1", "source", "p1"}
	otherKeyFields = []string{"other_key", "otherKey", "right", "second_point", "second", "point2", "planet2", "p2_name", "body2", "target", "p2"}
	aspectFields   = []string{"aspect_type", "aspect", "type", "name"}
	orbFields      = []string{"orb", "orb_value", "orbit", "aspect_orb"}
	angleFields    = []string{"angle", "aspect_degrees"}
	separationFlds = []string{"separation", "difference", "diff"}

	labelFields = []string{"label", "name", "datetime", "date", "time"}
)

type record map[string]any

// str returns the first non-empty string among the candidate fields.
func (r record) str(fields ...string) string {
	for _, f := range fields {
		switch v := r[f].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case json.Number:
			return v.String()
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// num returns the first numeric value among the candidate fields. Numeric
// strings are accepted. Missing or unparsable values yield NaN; values out of
// float64 range yield ±Inf.
func (r record) num(fields ...string) float64 {
	for _, f := range fields {
		switch v := r[f].(type) {
		case json.Number:
			if n, ok := parseNumber(v.String()); ok {
				return n
			}
		case float64:
			return v
		case string:
			if n, ok := parseNumber(strings.TrimSpace(v)); ok {
				return n
			}
		}
	}
	return math.NaN()
}

func parseNumber(s string) (float64, bool) {
	n, err := strconv.ParseFloat(s, 64)
	if err == nil || errors.Is(err, strconv.ErrRange) {
		return n, true
	}
	return 0, false
}

func (r record) boolean(fields ...string) bool {
	for _, f := range fields {
		switch v := r[f].(type) {
		case bool:
			return v
		case string:
			if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
				return b
			}
		}
	}
	return false
}

func (r record) strings(fields ...string) []string {
	for _, f := range fields {
		list, ok := r[f].([]any)
		if !ok {
			continue
		}
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func (r record) has(fields ...string) bool {
	for _, f := range fields {
		if _, ok := r[f]; ok {
			return true
		}
	}
	return false
}
