package components

import (
	"fmt"
	"strings"

	"github.com/Veraticus/stellium/internal/cli"
	"github.com/Veraticus/stellium/internal/model"
	"github.com/Veraticus/stellium/internal/pattern"
	"github.com/Veraticus/stellium/internal/tui/themes"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PatternListModel lists catalog patterns on the left and the instances of
// the focused pattern on the right.
type PatternListModel struct {
	theme    themes.Theme
	renderer *cli.Renderer
	patterns map[string][]model.PatternInstance
	catalog  pattern.Catalog
	cursor   int
	width    int
	height   int
}

// NewPatternList creates a pattern browser.
func NewPatternList(catalog pattern.Catalog, patterns map[string][]model.PatternInstance, renderer *cli.Renderer, theme themes.Theme) PatternListModel {
	return PatternListModel{
		theme:    theme,
		renderer: renderer,
		patterns: patterns,
		catalog:  catalog,
		width:    80,
		height:   24,
	}
}

// Update handles messages.
func (m PatternListModel) Update(msg tea.Msg) (PatternListModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.catalog) == 0 {
		return m, nil
	}

	previous := m.cursor
	switch keyMsg.String() {
	case "j", "down":
		m.cursor = min(m.cursor+1, len(m.catalog)-1)
	case "k", "up":
		m.cursor = max(m.cursor-1, 0)
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = len(m.catalog) - 1
	}

	if m.cursor == previous {
		return m, nil
	}
	def := m.catalog[m.cursor]
	count := len(m.patterns[def.ID])
	return m, func() tea.Msg {
		return PatternFocusedMsg{ID: def.ID, Count: count}
	}
}

// Selected returns the focused pattern definition.
func (m PatternListModel) Selected() (model.PatternDefinition, bool) {
	if m.cursor >= len(m.catalog) {
		return model.PatternDefinition{}, false
	}
	return m.catalog[m.cursor], true
}

// Resize sets the available area.
func (m *PatternListModel) Resize(width, height int) {
	m.width = width
	m.height = height
}

// View renders the pattern browser.
func (m PatternListModel) View() string {
	if len(m.catalog) == 0 {
		return m.theme.Subtitle.Render("No patterns enabled.")
	}

	menuWidth := 24
	left := m.renderMenu(menuWidth)
	right := m.renderDetail(max(m.width-menuWidth-3, 20))

	return lipgloss.JoinHorizontal(lipgloss.Top, left, m.theme.Normal.Render(" │ "), right)
}

func (m PatternListModel) renderMenu(width int) string {
	lines := make([]string, 0, len(m.catalog))
	for i, def := range m.catalog {
		label := fmt.Sprintf("%s (%d)", def.Name, len(m.patterns[def.ID]))
		style := m.theme.Normal
		switch {
		case i == m.cursor:
			style = m.theme.Selected
		case len(m.patterns[def.ID]) == 0:
			style = m.theme.Subtitle
		}
		lines = append(lines, style.Width(width).Render(label))
	}
	return strings.Join(lines, "\n")
}

func (m PatternListModel) renderDetail(width int) string {
	def := m.catalog[m.cursor]
	instances := m.patterns[def.ID]

	var b strings.Builder
	b.WriteString(m.theme.Title.Render(def.Name))
	b.WriteString(" " + m.theme.Subtitle.Render(def.AspectsLabel) + "\n")
	b.WriteString(m.theme.Subtitle.Width(width).Render(def.Geometry) + "\n\n")

	if len(instances) == 0 {
		b.WriteString(m.theme.Subtitle.Render(cli.NoLinksMessage))
		return b.String()
	}

	for i, inst := range instances {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.theme.Glyph.Render(cli.StarIcon) + " " + m.theme.Bold.Render(m.renderer.Describe(inst)) + "\n")
		for _, link := range inst.Links {
			b.WriteString("    " + m.renderer.FormatAspect(link) + "\n")
		}
	}
	return b.String()
}
