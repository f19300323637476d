package pattern

import "github.com/Veraticus/stellium/internal/model"

// matchChain finds trapezes: a path of three sextiles A–B–C–D whose open ends
// A and D are in opposition. Each set of four points is reported once.
func matchChain(g *aspectGraph, def model.PatternDefinition) []model.PatternInstance {
	matches := make([]model.PatternInstance, 0)
	seen := make(map[string]bool)

	for _, opp := range g.aspectsOf(model.Opposition) {
		a, d := opp.BaseKey, opp.OtherKey
		for _, b := range g.neighbors(model.Sextile, a) {
			if b == d {
				continue
			}
			for _, c := range g.neighbors(model.Sextile, d) {
				if !distinct(a, b, c, d) || !g.is(model.Sextile, b, c) {
					continue
				}
				id := setKey(a, b, c, d)
				if seen[id] {
					continue
				}
				seen[id] = true

				links := append(g.mustLinks([2]string{a, b}, [2]string{b, c}, [2]string{c, d}), opp)
				matches = append(matches, model.NewPatternInstance(def, []string{a, b, c, d},
					model.Structure{Chain: []string{a, b, c, d}}, links))
			}
		}
	}

	return matches
}
