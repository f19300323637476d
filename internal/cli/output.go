package cli

import (
	"encoding/json"
	"io"
	"math"

	"github.com/Veraticus/stellium/internal/engine"
	"github.com/Veraticus/stellium/internal/model"
)

// Report is the machine-readable form of one analysis.
type Report struct {
	Patterns map[string][]model.PatternInstance `json:"patterns"`
	Name     string                             `json:"name,omitempty"`
	Keys     []string                           `json:"keys"`
	Aspects  []model.AspectInstance             `json:"aspects"`
}

// NewReport converts an engine result into a report with orbs and
// separations rounded to two decimals.
func NewReport(name string, result engine.Result) Report {
	patterns := make(map[string][]model.PatternInstance, len(result.Patterns))
	for id, instances := range result.Patterns {
		rounded := make([]model.PatternInstance, len(instances))
		for i, inst := range instances {
			inst.Links = RoundAspects(inst.Links)
			rounded[i] = inst
		}
		patterns[id] = rounded
	}

	return Report{
		Name:     name,
		Keys:     result.Keys,
		Aspects:  RoundAspects(result.Aspects),
		Patterns: patterns,
	}
}

// RoundAspects returns a copy of the aspects with orb and separation rounded
// to two decimals.
func RoundAspects(aspects []model.AspectInstance) []model.AspectInstance {
	out := make([]model.AspectInstance, len(aspects))
	for i, a := range aspects {
		a.Orb = round2(a.Orb)
		a.Separation = round2(a.Separation)
		out[i] = a
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
