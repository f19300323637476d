package model

import "sort"

// Shape is the structural template a pattern is matched against.
type Shape string

// Pattern shapes.
const (
	ShapeCluster   Shape = "cluster"
	ShapeFocal     Shape = "focal"
	ShapeTriangle  Shape = "triangle"
	ShapeAxes      Shape = "axes"
	ShapeTriples   Shape = "triples"
	ShapeRectangle Shape = "rectangle"
	ShapeChain     Shape = "chain"
	ShapeKite      Shape = "kite"
)

// PatternDefinition describes a recognizable multi-point configuration.
type PatternDefinition struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Planets      string       `json:"planets"`
	AspectsLabel string       `json:"aspects_label"`
	Geometry     string       `json:"geometry"`
	OrbGuide     string       `json:"orb"`
	Construction string       `json:"construction"`
	Shape        Shape        `json:"shape"`
	Aspects      []AspectType `json:"aspects"`
}

// Structure holds the shape-specific roles of a pattern instance.
// Only the fields belonging to the instance's shape are set.
type Structure struct {
	Focal       string      `json:"focal,omitempty"`
	Cluster     []string    `json:"cluster,omitempty"`
	Base        []string    `json:"base,omitempty"`
	Triple      []string    `json:"triple,omitempty"`
	Chain       []string    `json:"chain,omitempty"`
	Triangle    []string    `json:"triangle,omitempty"`
	Opposition  []string    `json:"opposition,omitempty"`
	Axes        [][2]string `json:"axes,omitempty"`
	Oppositions [][2]string `json:"oppositions,omitempty"`
	Triples     [][3]string `json:"triples,omitempty"`
}

// PatternInstance is one concrete match of a pattern definition.
type PatternInstance struct {
	PatternID string           `json:"pattern_id"`
	Shape     Shape            `json:"shape"`
	Points    []string         `json:"points"`
	Structure Structure        `json:"structure"`
	Links     []AspectInstance `json:"links"`
}

// NewPatternInstance builds an instance whose member list is the sorted union of keys.
func NewPatternInstance(def PatternDefinition, keys []string, structure Structure, links []AspectInstance) PatternInstance {
	points := make([]string, len(keys))
	copy(points, keys)
	sort.Strings(points)

	return PatternInstance{
		PatternID: def.ID,
		Shape:     def.Shape,
		Points:    points,
		Structure: structure,
		Links:     links,
	}
}
