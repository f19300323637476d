// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"github.com/Veraticus/stellium/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// Palette. Aspect colors follow the usual chart-wheel convention: red for
// hard aspects, blue and green for soft ones, gold for conjunctions.
var (
	nightViolet = lipgloss.Color("#9D7CF4")
	solarGold   = lipgloss.Color("#F4C97C")
	marsRed     = lipgloss.Color("#E8676B")
	venusGreen  = lipgloss.Color("#7CD4A4")
	jupiterBlue = lipgloss.Color("#6FA8F0")
	moonGray    = lipgloss.Color("#8A8AA3")
	voidGray    = lipgloss.Color("#3B3950")
)

var (
	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(nightViolet)

	// SubtleStyle formats less prominent text such as hints and placeholders.
	SubtleStyle = lipgloss.NewStyle().Foreground(moonGray)

	// BoldStyle makes text bold.
	BoldStyle = lipgloss.NewStyle().Bold(true)

	// boxStyle frames chart and pattern cards.
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(voidGray).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().Foreground(venusGreen)
	warningStyle = lipgloss.NewStyle().Foreground(solarGold)
	errorStyle   = lipgloss.NewStyle().Foreground(marsRed)
	infoStyle    = lipgloss.NewStyle().Foreground(jupiterBlue)

	aspectStyles = map[model.AspectType]lipgloss.Style{
		model.Conjunction: lipgloss.NewStyle().Bold(true).Foreground(solarGold),
		model.Sextile:     lipgloss.NewStyle().Bold(true).Foreground(venusGreen),
		model.Trine:       lipgloss.NewStyle().Bold(true).Foreground(jupiterBlue),
		model.Square:      lipgloss.NewStyle().Bold(true).Foreground(marsRed),
		model.Opposition:  lipgloss.NewStyle().Bold(true).Foreground(marsRed),
	}
)

// Icons.
const (
	StarIcon  = "✦"
	ChartIcon = "☉"

	successIcon = "✓"
	errorIcon   = "✗"
	warningIcon = "⚠"
	infoIcon    = "☾"
)

// AspectStyle returns the style for an aspect glyph. Types outside the
// classical five are drawn in the title color.
func AspectStyle(t model.AspectType) lipgloss.Style {
	if style, ok := aspectStyles[t]; ok {
		return style
	}
	return TitleStyle
}

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return successStyle.Render(successIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return errorStyle.Render(errorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return warningStyle.Render(warningIcon + " " + message)
}

// FormatInfo formats an info message with the moon icon.
func FormatInfo(message string) string {
	return infoStyle.Render(infoIcon + " " + message)
}

// FormatTitle formats a title with the star icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(StarIcon + " " + title)
}

// RenderBox renders content in a card with a title line.
func RenderBox(title, content string) string {
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, TitleStyle.Render(title), content))
}
