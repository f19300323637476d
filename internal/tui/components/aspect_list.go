package components

import (
	"fmt"
	"strings"

	"github.com/Veraticus/stellium/internal/cli"
	"github.com/Veraticus/stellium/internal/model"
	"github.com/Veraticus/stellium/internal/tui/themes"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// AspectListModel shows the aspect list of a chart as a table.
type AspectListModel struct {
	theme       themes.Theme
	renderer    *cli.Renderer
	search      string
	aspects     []model.AspectInstance
	filtered    []model.AspectInstance
	searchInput textinput.Model
	table       table.Model
	width       int
	height      int
	searching   bool
}

// NewAspectList creates an aspect table. Aspects are shown in the order given.
func NewAspectList(aspects []model.AspectInstance, renderer *cli.Renderer, theme themes.Theme) AspectListModel {
	columns := []table.Column{
		{Title: " ", Width: 2},
		{Title: "Base", Width: 14},
		{Title: "Aspect", Width: 12},
		{Title: "Other", Width: 14},
		{Title: "Orb", Width: 8},
		{Title: "Separation", Width: 11},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(20),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		BorderBottom(true).
		Bold(false)
	s.Selected = theme.Selected
	t.SetStyles(s)

	searchInput := textinput.New()
	searchInput.Placeholder = "Filter by point or aspect..."
	searchInput.CharLimit = 40

	m := AspectListModel{
		theme:       theme,
		renderer:    renderer,
		aspects:     aspects,
		filtered:    aspects,
		searchInput: searchInput,
		table:       t,
		width:       80,
		height:      24,
	}
	m.table.SetRows(m.buildRows())
	return m
}

// Update handles messages.
func (m AspectListModel) Update(msg tea.Msg) (AspectListModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}

	if m.searching {
		return m, m.handleSearchMode(keyMsg)
	}

	switch keyMsg.String() {
	case "/":
		m.searching = true
		m.searchInput.SetValue(m.search)
		m.searchInput.Focus()
		return m, textinput.Blink

	case "enter":
		if a, ok := m.Selected(); ok {
			index := m.table.Cursor()
			return m, func() tea.Msg {
				return AspectSelectedMsg{Aspect: a, Index: index}
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *AspectListModel) handleSearchMode(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		m.search = strings.TrimSpace(m.searchInput.Value())
		m.applyFilter()
		m.searching = false
		m.searchInput.Blur()

	case "esc":
		m.search = ""
		m.applyFilter()
		m.searching = false
		m.searchInput.Blur()
		m.searchInput.SetValue("")

	default:
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return cmd
	}
	return nil
}

// applyFilter keeps aspects whose base, other or type contains the search text.
func (m *AspectListModel) applyFilter() {
	if m.search == "" {
		m.filtered = m.aspects
	} else {
		needle := strings.ToLower(m.search)
		m.filtered = nil
		for _, a := range m.aspects {
			if strings.Contains(a.BaseKey, needle) || strings.Contains(a.OtherKey, needle) ||
				strings.Contains(string(a.Type), needle) {
				m.filtered = append(m.filtered, a)
			}
		}
	}
	m.table.SetRows(m.buildRows())
	m.table.SetCursor(0)
}

func (m AspectListModel) buildRows() []table.Row {
	rows := make([]table.Row, len(m.filtered))
	for i, a := range m.filtered {
		rows[i] = table.Row{
			m.renderer.Icon(a.Type),
			a.BaseKey,
			string(a.Type),
			a.OtherKey,
			cli.FormatOrb(a.Orb),
			fmt.Sprintf("%.2f°", a.Separation),
		}
	}
	return rows
}

// Selected returns the aspect under the cursor.
func (m AspectListModel) Selected() (model.AspectInstance, bool) {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.filtered) {
		return model.AspectInstance{}, false
	}
	return m.filtered[cursor], true
}

// Filtered returns the aspects currently shown.
func (m AspectListModel) Filtered() []model.AspectInstance {
	return m.filtered
}

// Searching reports whether the filter input has focus.
func (m AspectListModel) Searching() bool {
	return m.searching
}

// Resize sets the available area.
func (m *AspectListModel) Resize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(max(height-4, 3))
}

// View renders the aspect table.
func (m AspectListModel) View() string {
	header := m.theme.Title.Render(fmt.Sprintf("Aspects (%d of %d)", len(m.filtered), len(m.aspects)))
	if m.search != "" {
		header += " " + m.theme.Subtitle.Render(fmt.Sprintf("filter: %q", m.search))
	}

	var footer string
	switch {
	case m.searching:
		footer = m.searchInput.View()
	case len(m.filtered) == 0:
		footer = m.theme.Subtitle.Render("No aspects found.")
	default:
		footer = m.theme.Subtitle.Render("/ filter • enter details")
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, m.table.View(), footer)
}
