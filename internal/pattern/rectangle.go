package pattern

import "github.com/Veraticus/stellium/internal/model"

// matchRectangle finds mystic rectangles: oppositions A–C and B–D where A–B and
// C–D are trines and A–D and C–B are sextiles. When the diagonals run the other
// way, B and D are swapped so A–B is always the trine.
func matchRectangle(g *aspectGraph, def model.PatternDefinition) []model.PatternInstance {
	matches := make([]model.PatternInstance, 0)
	opps := g.aspectsOf(model.Opposition)

	for i, first := range opps {
		a, c := first.BaseKey, first.OtherKey
		for _, second := range opps[i+1:] {
			b, d := second.BaseKey, second.OtherKey
			if !distinct(a, b, c, d) {
				continue
			}

			switch {
			case stitched(g, a, b, c, d):
			case stitched(g, a, d, c, b):
				b, d = d, b
			default:
				continue
			}

			links := append([]model.AspectInstance{first, second},
				g.mustLinks([2]string{a, b}, [2]string{c, d}, [2]string{a, d}, [2]string{c, b})...)
			matches = append(matches, model.NewPatternInstance(def, []string{a, b, c, d},
				model.Structure{Oppositions: [][2]string{{a, c}, {b, d}}}, links))
		}
	}

	return matches
}

// stitched reports whether A–B and C–D are trines and A–D and C–B are sextiles.
func stitched(g *aspectGraph, a, b, c, d string) bool {
	return g.is(model.Trine, a, b) && g.is(model.Trine, c, d) &&
		g.is(model.Sextile, a, d) && g.is(model.Sextile, c, b)
}
