// Package main provides a demo program for the explorer TUI
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Veraticus/stellium/internal/aspect"
	"github.com/Veraticus/stellium/internal/engine"
	"github.com/Veraticus/stellium/internal/model"
	"github.com/Veraticus/stellium/internal/pattern"
	"github.com/Veraticus/stellium/internal/tui"
)

func sampleChart() model.Chart {
	return model.NewChart(
		model.Point{Key: "sun", Name: "Sun", AbsolutePosition: 10, Sign: "Ari", House: "First_House"},
		model.Point{Key: "moon", Name: "Moon", AbsolutePosition: 131, Sign: "Leo", House: "Fifth_House"},
		model.Point{Key: "mercury", Name: "Mercury", AbsolutePosition: 14, Sign: "Ari", House: "First_House", Retrograde: true},
		model.Point{Key: "venus", Name: "Venus", AbsolutePosition: 250, Sign: "Sag", House: "Ninth_House"},
		model.Point{Key: "mars", Name: "Mars", AbsolutePosition: 191, Sign: "Lib", House: "Seventh_House"},
		model.Point{Key: "jupiter", Name: "Jupiter", AbsolutePosition: 100, Sign: "Can", House: "Fourth_House"},
		model.Point{Key: "saturn", Name: "Saturn", AbsolutePosition: 281, Sign: "Cap", House: "Tenth_House"},
		model.Point{Key: "uranus", Name: "Uranus", AbsolutePosition: 18, Sign: "Ari", House: "First_House"},
		model.Point{Key: "neptune", Name: "Neptune", AbsolutePosition: 310, Sign: "Aqu", House: "Eleventh_House"},
		model.Point{Key: "pluto", Name: "Pluto", AbsolutePosition: 70, Sign: "Gem", House: "Third_House"},
	)
}

func main() {
	e, err := engine.New()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error creating engine: %v\n", err)
		os.Exit(1)
	}

	chart := sampleChart()
	data := tui.Data{
		Name:    "Demo Chart",
		Chart:   chart,
		Result:  e.Compute(chart, nil),
		Table:   aspect.DefaultTable(),
		Catalog: pattern.DefaultCatalog(),
	}

	if err := tui.Run(context.Background(), data, tui.WithSize(120, 40)); err != nil {
		// Use explicit error check to satisfy forbidigo
		_, _ = fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
