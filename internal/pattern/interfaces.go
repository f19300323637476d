// Package pattern detects multi-point aspect configurations such as the
// T-square or the grand trine.
package pattern

import "github.com/Veraticus/stellium/internal/model"

// Detector finds pattern instances in an aspect list.
type Detector interface {
	// Match runs every configured pattern against the aspects between keys and
	// returns the instances per pattern id. Every id is present in the result.
	Match(aspects []model.AspectInstance, keys []string) map[string][]model.PatternInstance
}
