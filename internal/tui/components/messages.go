package components

import "github.com/Veraticus/stellium/internal/model"

// AspectSelectedMsg is sent when an aspect row is chosen with enter.
type AspectSelectedMsg struct {
	Aspect model.AspectInstance
	Index  int
}

// PatternFocusedMsg is sent when the pattern cursor moves.
type PatternFocusedMsg struct {
	ID    string
	Count int
}
