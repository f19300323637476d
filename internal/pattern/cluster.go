package pattern

import (
	"sort"

	"github.com/Veraticus/stellium/internal/model"
)

// matchCluster groups points joined by chains of conjunctions. Every connected
// group of three or more points is one instance.
func matchCluster(g *aspectGraph, def model.PatternDefinition) []model.PatternInstance {
	matches := make([]model.PatternInstance, 0)

	parent := make(map[string]string, len(g.keys))
	var find func(string) string
	find = func(k string) string {
		p, ok := parent[k]
		if !ok || p == k {
			return k
		}
		root := find(p)
		parent[k] = root
		return root
	}

	conjunctions := g.aspectsOf(model.Conjunction)
	for _, a := range conjunctions {
		ra, rb := find(a.BaseKey), find(a.OtherKey)
		if ra == rb {
			continue
		}
		// Keep the root at the earliest key so group order follows key order.
		if g.index[rb] < g.index[ra] {
			ra, rb = rb, ra
		}
		parent[rb] = ra
	}

	groups := make(map[string][]string)
	order := make([]string, 0)
	for _, k := range g.keys {
		root := find(k)
		if _, ok := groups[root]; !ok {
			order = append(order, root)
		}
		groups[root] = append(groups[root], k)
	}

	for _, root := range order {
		members := groups[root]
		if len(members) < 3 {
			continue
		}

		links := make([]model.AspectInstance, 0, len(members)-1)
		for _, a := range conjunctions {
			if find(a.BaseKey) == root {
				links = append(links, a)
			}
		}

		cluster := make([]string, len(members))
		copy(cluster, members)
		sort.Strings(cluster)

		matches = append(matches, model.NewPatternInstance(def, members,
			model.Structure{Cluster: cluster}, links))
	}

	return matches
}
