package pattern

import "github.com/Veraticus/stellium/internal/model"

// matchKite finds kites: a grand trine X–Y–Z plus a point K opposite X that is
// sextile to both Y and Z.
func matchKite(g *aspectGraph, def model.PatternDefinition) []model.PatternInstance {
	matches := make([]model.PatternInstance, 0)

	for _, t := range g.triangles() {
		for i, x := range t {
			y, z := t[(i+1)%3], t[(i+2)%3]
			for _, k := range g.neighbors(model.Opposition, x) {
				if k == y || k == z {
					continue
				}
				if !g.is(model.Sextile, k, y) || !g.is(model.Sextile, k, z) {
					continue
				}

				links := g.mustLinks(
					[2]string{t[0], t[1]}, [2]string{t[0], t[2]}, [2]string{t[1], t[2]},
					[2]string{x, k}, [2]string{k, y}, [2]string{k, z},
				)
				matches = append(matches, model.NewPatternInstance(def, []string{t[0], t[1], t[2], k},
					model.Structure{
						Triangle:   []string{t[0], t[1], t[2]},
						Opposition: []string{x, k},
					}, links))
			}
		}
	}

	return matches
}
