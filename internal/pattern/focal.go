package pattern

import "github.com/Veraticus/stellium/internal/model"

// matchFocal finds T-squares: an opposition A–B and a point C square to both
// ends. Each focal point of the same opposition is reported separately.
func matchFocal(g *aspectGraph, def model.PatternDefinition) []model.PatternInstance {
	matches := make([]model.PatternInstance, 0)

	for _, opp := range g.aspectsOf(model.Opposition) {
		a, b := opp.BaseKey, opp.OtherKey
		for _, c := range g.neighbors(model.Square, a) {
			if c == b {
				continue
			}
			sqB, ok := g.link(model.Square, b, c)
			if !ok {
				continue
			}
			sqA, _ := g.link(model.Square, a, c)

			matches = append(matches, model.NewPatternInstance(def, []string{a, b, c},
				model.Structure{Focal: c, Base: []string{a, b}},
				[]model.AspectInstance{opp, sqA, sqB}))
		}
	}

	return matches
}
