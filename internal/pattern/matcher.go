package pattern

import (
	"github.com/Veraticus/stellium/internal/model"
)

// Matcher implements Detector with one structural strategy per shape.
type Matcher struct {
	catalog Catalog
}

var _ Detector = (*Matcher)(nil)

// NewMatcher creates a matcher for the given catalog.
func NewMatcher(catalog Catalog) (*Matcher, error) {
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return &Matcher{catalog: catalog}, nil
}

// Catalog returns the definitions the matcher runs.
func (m *Matcher) Catalog() Catalog {
	return m.catalog
}

// Match runs every catalog definition against the aspect list. Definitions are
// independent: the same points may show up in instances of several patterns.
func (m *Matcher) Match(aspects []model.AspectInstance, keys []string) map[string][]model.PatternInstance {
	g := newAspectGraph(aspects, keys)

	results := make(map[string][]model.PatternInstance, len(m.catalog))
	for _, def := range m.catalog {
		results[def.ID] = matchDefinition(g, def)
	}
	return results
}

// matchDefinition selects the strategy for the definition's shape.
func matchDefinition(g *aspectGraph, def model.PatternDefinition) []model.PatternInstance {
	switch def.Shape {
	case model.ShapeCluster:
		return matchCluster(g, def)
	case model.ShapeFocal:
		return matchFocal(g, def)
	case model.ShapeTriangle:
		return matchTriangle(g, def)
	case model.ShapeAxes:
		return matchAxes(g, def)
	case model.ShapeTriples:
		return matchTriples(g, def)
	case model.ShapeRectangle:
		return matchRectangle(g, def)
	case model.ShapeChain:
		return matchChain(g, def)
	case model.ShapeKite:
		return matchKite(g, def)
	}
	// Unreachable for catalogs that passed Validate.
	return []model.PatternInstance{}
}
