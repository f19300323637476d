package pattern

import "github.com/Veraticus/stellium/internal/model"

// matchTriples finds grand sextiles: two disjoint grand trines whose six points
// are joined into a hexagon by six sextiles, each vertex sextile to exactly two
// vertices of the other triangle.
func matchTriples(g *aspectGraph, def model.PatternDefinition) []model.PatternInstance {
	matches := make([]model.PatternInstance, 0)
	tris := g.triangles()

	for i, first := range tris {
		for _, second := range tris[i+1:] {
			if !distinct(first[0], first[1], first[2], second[0], second[1], second[2]) {
				continue
			}
			ring, ok := sextileRing(g, first, second)
			if !ok {
				continue
			}

			p, q := first, second
			if q[0] < p[0] {
				p, q = q, p
			}
			links := g.mustLinks(
				[2]string{p[0], p[1]}, [2]string{p[0], p[2]}, [2]string{p[1], p[2]},
				[2]string{q[0], q[1]}, [2]string{q[0], q[2]}, [2]string{q[1], q[2]},
			)
			links = append(links, ring...)

			members := []string{p[0], p[1], p[2], q[0], q[1], q[2]}
			matches = append(matches, model.NewPatternInstance(def, members,
				model.Structure{Triples: [][3]string{p, q}}, links))
		}
	}

	return matches
}

// sextileRing returns the six sextiles joining two triangles into a hexagon.
func sextileRing(g *aspectGraph, first, second [3]string) ([]model.AspectInstance, bool) {
	ring := make([]model.AspectInstance, 0, 6)
	degree := make(map[string]int, 6)

	for _, x := range first {
		for _, y := range second {
			if link, ok := g.link(model.Sextile, x, y); ok {
				ring = append(ring, link)
				degree[x]++
				degree[y]++
			}
		}
	}

	if len(ring) != 6 {
		return nil, false
	}
	for _, k := range []string{first[0], first[1], first[2], second[0], second[1], second[2]} {
		if degree[k] != 2 {
			return nil, false
		}
	}
	return ring, true
}
