package pattern

import (
	"errors"
	"fmt"

	"github.com/Veraticus/stellium/internal/model"
)

// Catalog errors.
var (
	ErrUnknownPattern = errors.New("unknown pattern")
	ErrUnknownShape   = errors.New("unknown pattern shape")
	ErrInvalidCatalog = errors.New("invalid pattern catalog")
)

// Pattern identifiers of the default catalog.
const (
	IDStellium        = "stellium"
	IDTSquare         = "t_square"
	IDGrandTrine      = "grand_trine"
	IDGrandCross      = "grand_cross"
	IDGrandSextile    = "grand_sextile"
	IDMysticRectangle = "mystic_rectangle"
	IDTrapeze         = "trapeze"
	IDKite            = "kite"
)

// Catalog is an ordered list of pattern definitions.
type Catalog []model.PatternDefinition

// DefaultCatalog returns the eight recognized configurations.
func DefaultCatalog() Catalog {
	return Catalog{
		// Conjunction bundles
		{
			ID:           IDStellium,
			Name:         "Stellium",
			Planets:      "3+ planets",
			Aspects:      []model.AspectType{model.Conjunction},
			AspectsLabel: "Conjunctions",
			Geometry:     "Points bundled by a chain of overlapping 0° links.",
			OrbGuide:     "Each member within conjunction orb of at least one other member.",
			Construction: "Conjunction-series bundle occupying one tight sector.",
			Shape:        model.ShapeCluster,
		},

		// Three and four point figures
		{
			ID:           IDTSquare,
			Name:         "T-Square",
			Planets:      "3 planets",
			Aspects:      []model.AspectType{model.Opposition, model.Square},
			AspectsLabel: "Opposition + Squares",
			Geometry:     "Opposition capped by two 90° squares, forming a T spine.",
			OrbGuide:     "Squares and opposition within their table orbs.",
			Construction: "A ↔ B opposition with C square to both (C = focal).",
			Shape:        model.ShapeFocal,
		},
		{
			ID:           IDGrandTrine,
			Name:         "Grand Trine",
			Planets:      "3 planets",
			Aspects:      []model.AspectType{model.Trine},
			AspectsLabel: "Trines",
			Geometry:     "Three 120° links in an equilateral triangle.",
			OrbGuide:     "Trines within the trine orb.",
			Construction: "A–B–C all 120° apart forming a closed triangle.",
			Shape:        model.ShapeTriangle,
		},
		{
			ID:           IDGrandCross,
			Name:         "Grand Cross",
			Planets:      "4 planets",
			Aspects:      []model.AspectType{model.Opposition, model.Square},
			AspectsLabel: "Oppositions + Squares",
			Geometry:     "Four points every 90°: two oppositions plus four squares.",
			OrbGuide:     "Squares and oppositions within their table orbs.",
			Construction: "A↔C and B↔D oppositions; each end square to both ends of the other axis.",
			Shape:        model.ShapeAxes,
		},

		// Six point figures
		{
			ID:           IDGrandSextile,
			Name:         "Grand Sextile",
			Planets:      "6 planets",
			Aspects:      []model.AspectType{model.Sextile, model.Trine},
			AspectsLabel: "Sextiles + Trines",
			Geometry:     "Hexagram: alternating 60° and 120° points.",
			OrbGuide:     "Sextiles and trines within their table orbs.",
			Construction: "Two interlaced Grand Trines linked by a ring of six sextiles.",
			Shape:        model.ShapeTriples,
		},

		// Opposition-anchored mixed figures
		{
			ID:           IDMysticRectangle,
			Name:         "Mystic Rectangle",
			Planets:      "4 planets",
			Aspects:      []model.AspectType{model.Opposition, model.Trine, model.Sextile},
			AspectsLabel: "Oppositions, Trines, Sextiles",
			Geometry:     "Two oppositions stitched by trines and sextiles into a rectangle.",
			OrbGuide:     "Oppositions, trines and sextiles within their table orbs.",
			Construction: "A↔C and B↔D; A trine B and sextile D, C trine D and sextile B.",
			Shape:        model.ShapeRectangle,
		},
		{
			ID:           IDTrapeze,
			Name:         "Trapeze / Cradle",
			Planets:      "4 planets",
			Aspects:      []model.AspectType{model.Opposition, model.Sextile},
			AspectsLabel: "Opposition + Sextiles",
			Geometry:     "Three sextiles in a row with an opposition across the open ends.",
			OrbGuide:     "Sextiles and opposition within their table orbs.",
			Construction: "A sextile B sextile C sextile D, with A↔D in opposition.",
			Shape:        model.ShapeChain,
		},
		{
			ID:           IDKite,
			Name:         "Kite",
			Planets:      "4 planets",
			Aspects:      []model.AspectType{model.Trine, model.Opposition, model.Sextile},
			AspectsLabel: "Trines, Opposition, Sextiles",
			Geometry:     "A Grand Trine with a tail point opposite one vertex.",
			OrbGuide:     "Trines, opposition and sextiles within their table orbs.",
			Construction: "Grand Trine X–Y–Z plus K opposite X and sextile to Y and Z.",
			Shape:        model.ShapeKite,
		},
	}
}

// Lookup returns the definition with the given id.
func (c Catalog) Lookup(id string) (model.PatternDefinition, bool) {
	for _, def := range c {
		if def.ID == id {
			return def, true
		}
	}
	return model.PatternDefinition{}, false
}

// IDs returns the pattern ids in catalog order.
func (c Catalog) IDs() []string {
	ids := make([]string, len(c))
	for i, def := range c {
		ids[i] = def.ID
	}
	return ids
}

// Subset returns the definitions named by ids, keeping catalog order.
// An empty id list returns the whole catalog.
func (c Catalog) Subset(ids ...string) (Catalog, error) {
	if len(ids) == 0 {
		return c, nil
	}

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := c.Lookup(id); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPattern, id)
		}
		wanted[id] = true
	}

	subset := make(Catalog, 0, len(wanted))
	for _, def := range c {
		if wanted[def.ID] {
			subset = append(subset, def)
		}
	}
	return subset, nil
}

// Validate checks ids are unique and every shape has a matching strategy.
func (c Catalog) Validate() error {
	seen := make(map[string]bool, len(c))
	for _, def := range c {
		if def.ID == "" {
			return fmt.Errorf("%w: definition without id", ErrInvalidCatalog)
		}
		if seen[def.ID] {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidCatalog, def.ID)
		}
		seen[def.ID] = true

		if !knownShape(def.Shape) {
			return fmt.Errorf("%w: %q for pattern %s", ErrUnknownShape, def.Shape, def.ID)
		}
	}
	return nil
}

func knownShape(shape model.Shape) bool {
	switch shape {
	case model.ShapeCluster, model.ShapeFocal, model.ShapeTriangle, model.ShapeAxes,
		model.ShapeTriples, model.ShapeRectangle, model.ShapeChain, model.ShapeKite:
		return true
	}
	return false
}
