package pattern

import (
	"sort"

	"github.com/Veraticus/stellium/internal/model"
)

// aspectGraph indexes an aspect list for structural lookups.
type aspectGraph struct {
	links  map[[2]string]model.AspectInstance
	byType map[model.AspectType][]model.AspectInstance
	adj    map[model.AspectType]map[string][]string
	index  map[string]int
	keys   []string
}

// newAspectGraph builds the index. When keys is empty the keys are taken from
// the aspect endpoints in lexicographic order. Aspects touching keys outside the
// key list are ignored, and for a repeated pair the first aspect wins.
func newAspectGraph(aspects []model.AspectInstance, keys []string) *aspectGraph {
	if len(keys) == 0 {
		keys = model.EndpointKeys(aspects)
	}

	g := &aspectGraph{
		keys:   keys,
		index:  make(map[string]int, len(keys)),
		links:  make(map[[2]string]model.AspectInstance, len(aspects)),
		byType: make(map[model.AspectType][]model.AspectInstance),
		adj:    make(map[model.AspectType]map[string][]string),
	}
	for i, k := range keys {
		if _, dup := g.index[k]; !dup {
			g.index[k] = i
		}
	}

	for _, a := range aspects {
		if a.BaseKey == a.OtherKey {
			continue
		}
		if _, ok := g.index[a.BaseKey]; !ok {
			continue
		}
		if _, ok := g.index[a.OtherKey]; !ok {
			continue
		}
		pair := model.PairKey(a.BaseKey, a.OtherKey)
		if _, dup := g.links[pair]; dup {
			continue
		}
		g.links[pair] = a
		g.byType[a.Type] = append(g.byType[a.Type], a)

		if g.adj[a.Type] == nil {
			g.adj[a.Type] = make(map[string][]string)
		}
		g.adj[a.Type][a.BaseKey] = append(g.adj[a.Type][a.BaseKey], a.OtherKey)
		g.adj[a.Type][a.OtherKey] = append(g.adj[a.Type][a.OtherKey], a.BaseKey)
	}

	for _, byKey := range g.adj {
		for k, neighbors := range byKey {
			sort.SliceStable(neighbors, func(i, j int) bool {
				return g.index[neighbors[i]] < g.index[neighbors[j]]
			})
			byKey[k] = neighbors
		}
	}

	return g
}

// link returns the aspect between a and b if it has the given type.
func (g *aspectGraph) link(t model.AspectType, a, b string) (model.AspectInstance, bool) {
	inst, ok := g.links[model.PairKey(a, b)]
	if !ok || inst.Type != t {
		return model.AspectInstance{}, false
	}
	return inst, true
}

func (g *aspectGraph) is(t model.AspectType, a, b string) bool {
	_, ok := g.link(t, a, b)
	return ok
}

// neighbors returns the keys linked to key by an aspect of type t, in key order.
func (g *aspectGraph) neighbors(t model.AspectType, key string) []string {
	return g.adj[t][key]
}

// aspectsOf returns all aspects of type t in list order.
func (g *aspectGraph) aspectsOf(t model.AspectType) []model.AspectInstance {
	return g.byType[t]
}

// mustLinks collects the aspects for the given pairs. Callers only pass pairs
// they have already checked.
func (g *aspectGraph) mustLinks(pairs ...[2]string) []model.AspectInstance {
	links := make([]model.AspectInstance, 0, len(pairs))
	for _, p := range pairs {
		links = append(links, g.links[model.PairKey(p[0], p[1])])
	}
	return links
}

// sortByIndex orders keys by their position in the key list.
func (g *aspectGraph) sortByIndex(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		return g.index[keys[i]] < g.index[keys[j]]
	})
}

func setKey(keys ...string) string {
	sorted := make([]string, len(keys))
	copy(sorted, keys)
	sort.Strings(sorted)

	key := ""
	for i, k := range sorted {
		if i > 0 {
			key += "\x00"
		}
		key += k
	}
	return key
}
