package pattern

import (
	"sort"

	"github.com/Veraticus/stellium/internal/model"
)

// triangles returns every trine triangle once, members sorted, in the order
// their first trine appears in the aspect list.
func (g *aspectGraph) triangles() [][3]string {
	found := make([][3]string, 0)
	seen := make(map[string]bool)

	for _, tr := range g.aspectsOf(model.Trine) {
		a, b := tr.BaseKey, tr.OtherKey
		for _, c := range g.neighbors(model.Trine, a) {
			if c == b || !g.is(model.Trine, b, c) {
				continue
			}
			id := setKey(a, b, c)
			if seen[id] {
				continue
			}
			seen[id] = true

			triple := []string{a, b, c}
			sort.Strings(triple)
			found = append(found, [3]string{triple[0], triple[1], triple[2]})
		}
	}

	return found
}

// matchTriangle finds grand trines: three points mutually in trine.
func matchTriangle(g *aspectGraph, def model.PatternDefinition) []model.PatternInstance {
	matches := make([]model.PatternInstance, 0)

	for _, t := range g.triangles() {
		links := g.mustLinks([2]string{t[0], t[1]}, [2]string{t[0], t[2]}, [2]string{t[1], t[2]})
		matches = append(matches, model.NewPatternInstance(def, t[:],
			model.Structure{Triple: []string{t[0], t[1], t[2]}}, links))
	}

	return matches
}
