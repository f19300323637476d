package aspect

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Veraticus/stellium/internal/model"
	"github.com/go-playground/validator/v10"
)

// Table errors.
var (
	ErrInvalidTable    = errors.New("invalid aspect table")
	ErrOverlappingOrbs = errors.New("aspect orb windows overlap")
)

// TieBreak selects how a separation falling inside several orb windows is classified.
type TieBreak string

const (
	// TieBreakFirst picks the first matching definition in table order.
	TieBreakFirst TieBreak = "first"
	// TieBreakClosest picks the matching definition with the smallest orb.
	TieBreakClosest TieBreak = "closest"
)

var validate = validator.New()

// Table is an ordered list of aspect definitions plus the overlap policy.
type Table struct {
	TieBreak    TieBreak
	Definitions []model.AspectDefinition
}

// DefaultTable returns the five Ptolemaic aspects with their standard orbs.
func DefaultTable() Table {
	return Table{
		TieBreak: TieBreakFirst,
		Definitions: []model.AspectDefinition{
			{Name: model.Conjunction, Angle: 0, MaxOrb: 6, Icon: "◎"},
			{Name: model.Sextile, Angle: 60, MaxOrb: 4, Icon: "✺"},
			{Name: model.Square, Angle: 90, MaxOrb: 6, Icon: "□"},
			{Name: model.Trine, Angle: 120, MaxOrb: 6, Icon: "△"},
			{Name: model.Opposition, Angle: 180, MaxOrb: 6, Icon: "☍"},
		},
	}
}

// Lookup returns the definition with the given name.
func (t Table) Lookup(name model.AspectType) (model.AspectDefinition, bool) {
	for _, def := range t.Definitions {
		if def.Name == name {
			return def, true
		}
	}
	return model.AspectDefinition{}, false
}

// WithOrbs returns a copy of the table with the max orb of the named aspects replaced.
func (t Table) WithOrbs(orbs map[model.AspectType]float64) Table {
	defs := make([]model.AspectDefinition, len(t.Definitions))
	copy(defs, t.Definitions)
	for i := range defs {
		if orb, ok := orbs[defs[i].Name]; ok {
			defs[i].MaxOrb = orb
		}
	}
	return Table{TieBreak: t.TieBreak, Definitions: defs}
}

// Validate checks every definition and rejects overlapping orb windows unless
// the table declares an explicit tie-break policy.
func (t Table) Validate() error {
	if len(t.Definitions) == 0 {
		return fmt.Errorf("%w: no aspect definitions", ErrInvalidTable)
	}

	switch t.TieBreak {
	case "", TieBreakFirst, TieBreakClosest:
	default:
		return fmt.Errorf("%w: unknown tie-break %q (valid: first, closest)", ErrInvalidTable, t.TieBreak)
	}

	seen := make(map[model.AspectType]bool, len(t.Definitions))
	for i, def := range t.Definitions {
		if err := validate.Struct(def); err != nil {
			return fmt.Errorf("%w: definition %d: %s", ErrInvalidTable, i, formatValidationError(err))
		}
		if seen[def.Name] {
			return fmt.Errorf("%w: duplicate definition %q", ErrInvalidTable, def.Name)
		}
		seen[def.Name] = true
	}

	if t.TieBreak != "" {
		return nil
	}
	for i, a := range t.Definitions {
		for _, b := range t.Definitions[i+1:] {
			if math.Abs(a.Angle-b.Angle) <= a.MaxOrb+b.MaxOrb {
				return fmt.Errorf("%w: %s (%.0f±%.2f) and %s (%.0f±%.2f); set a tie-break",
					ErrOverlappingOrbs, a.Name, a.Angle, a.MaxOrb, b.Name, b.Angle, b.MaxOrb)
			}
		}
	}
	return nil
}

// Classify matches a separation against the table.
// It returns false when no window contains the separation.
func (t Table) Classify(separation float64) (model.AspectDefinition, float64, bool) {
	var (
		best    model.AspectDefinition
		bestOrb float64
		found   bool
	)

	for _, def := range t.Definitions {
		orb := math.Abs(separation - def.Angle)
		if orb > def.MaxOrb {
			continue
		}
		if t.TieBreak != TieBreakClosest {
			return def, orb, true
		}
		if !found || orb < bestOrb {
			best, bestOrb, found = def, orb, true
		}
	}

	return best, bestOrb, found
}

func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, e.Param()))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, e.Param()))
		case "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", field, e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(msgs, "; ")
}
