package aspect

import (
	"sort"

	"github.com/Veraticus/stellium/internal/model"
)

// ResolveKeys turns a requested active key list into the keys the engine works on.
// Requested keys are normalized, deduplicated and restricted to usable points of
// the chart, keeping their requested order. When nothing is requested, or nothing
// requested resolves, all usable points are used in lexicographic order.
func ResolveKeys(chart model.Chart, active []string) []string {
	keys := make([]string, 0, len(active))
	seen := make(map[string]bool, len(active))

	for _, raw := range active {
		key := model.NormalizeKey(raw)
		if seen[key] {
			continue
		}
		p, ok := chart[key]
		if !ok || !p.IsUsable() {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}

	if len(keys) == 0 {
		return chart.UsableKeys()
	}
	return keys
}

// Build computes every qualifying aspect between pairs of the given keys and
// returns them sorted by ascending orb. Pairs with equal orbs keep key order.
func Build(chart model.Chart, keys []string, table Table) []model.AspectInstance {
	aspects := make([]model.AspectInstance, 0)

	for i, a := range keys {
		pa, ok := chart[a]
		if !ok || !pa.IsUsable() {
			continue
		}
		for _, b := range keys[i+1:] {
			pb, ok := chart[b]
			if !ok || !pb.IsUsable() {
				continue
			}
			if inst, ok := classifyPair(pa, pb, table); ok {
				pair := model.PairKey(a, b)
				inst.BaseKey, inst.OtherKey = pair[0], pair[1]
				aspects = append(aspects, inst)
			}
		}
	}

	SortByOrb(aspects)
	return aspects
}

// BuildCross computes aspects between every usable point of first and every
// usable point of second. BaseKey always refers to first.
func BuildCross(first, second model.Chart, table Table) []model.AspectInstance {
	aspects := make([]model.AspectInstance, 0)

	for _, a := range first.UsableKeys() {
		for _, b := range second.UsableKeys() {
			if inst, ok := classifyPair(first[a], second[b], table); ok {
				inst.BaseKey, inst.OtherKey = a, b
				aspects = append(aspects, inst)
			}
		}
	}

	SortByOrb(aspects)
	return aspects
}

// SortByOrb orders aspects by ascending orb, stable for ties.
func SortByOrb(aspects []model.AspectInstance) {
	sort.SliceStable(aspects, func(i, j int) bool {
		return aspects[i].Orb < aspects[j].Orb
	})
}

// Top returns at most n aspects from an orb-sorted list. n <= 0 means all.
func Top(aspects []model.AspectInstance, n int) []model.AspectInstance {
	if n <= 0 || n >= len(aspects) {
		return aspects
	}
	return aspects[:n]
}

// Among returns the aspects whose endpoints are both in keys, keeping their
// order. An empty key list keeps every aspect.
func Among(aspects []model.AspectInstance, keys []string) []model.AspectInstance {
	if len(keys) == 0 {
		return aspects
	}
	allowed := make(map[string]bool, len(keys))
	for _, k := range keys {
		allowed[k] = true
	}
	out := make([]model.AspectInstance, 0, len(aspects))
	for _, a := range aspects {
		if allowed[a.BaseKey] && allowed[a.OtherKey] {
			out = append(out, a)
		}
	}
	return out
}

func classifyPair(a, b model.Point, table Table) (model.AspectInstance, bool) {
	separation := AngularDistance(a.Longitude(), b.Longitude())
	def, orb, ok := table.Classify(separation)
	if !ok {
		return model.AspectInstance{}, false
	}
	return model.AspectInstance{
		Type:       def.Name,
		Angle:      def.Angle,
		Orb:        orb,
		Separation: separation,
	}, true
}
