package pattern

import "github.com/Veraticus/stellium/internal/model"

// matchAxes finds grand crosses: two oppositions A–C and B–D over four distinct
// points where every end of one axis is square to both ends of the other.
func matchAxes(g *aspectGraph, def model.PatternDefinition) []model.PatternInstance {
	matches := make([]model.PatternInstance, 0)
	opps := g.aspectsOf(model.Opposition)

	for i, first := range opps {
		a, c := first.BaseKey, first.OtherKey
		for _, second := range opps[i+1:] {
			b, d := second.BaseKey, second.OtherKey
			if !distinct(a, b, c, d) {
				continue
			}
			if !g.is(model.Square, a, b) || !g.is(model.Square, a, d) ||
				!g.is(model.Square, c, b) || !g.is(model.Square, c, d) {
				continue
			}

			links := append([]model.AspectInstance{first, second},
				g.mustLinks([2]string{a, b}, [2]string{a, d}, [2]string{c, b}, [2]string{c, d})...)
			matches = append(matches, model.NewPatternInstance(def, []string{a, b, c, d},
				model.Structure{Axes: [][2]string{{a, c}, {b, d}}}, links))
		}
	}

	return matches
}

func distinct(keys ...string) bool {
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if seen[k] {
			return false
		}
		seen[k] = true
	}
	return true
}
