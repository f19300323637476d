package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/stellium/internal/cli"
	"github.com/Veraticus/stellium/internal/model"
	"github.com/Veraticus/stellium/internal/tui/themes"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch m.view {
	case ViewAspects:
		body = m.aspects.View()
	case ViewPatterns:
		body = m.patterns.View()
	case ViewPoints:
		body = lipgloss.JoinVertical(lipgloss.Left,
			m.theme.Title.Render(fmt.Sprintf("Points (%d)", len(m.data.Chart))),
			m.points.View(),
		)
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.renderTabs(),
		"",
		body,
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.theme.BorderedBox.Render(content),
		m.renderStatusBar(),
		m.help.View(m.keymap),
	)
}

func (m Model) renderHeader() string {
	name := m.data.Name
	if name == "" {
		name = "Chart"
	}
	summary := fmt.Sprintf("%d points • %d aspects • %d patterns",
		len(m.data.Result.Keys), len(m.data.Result.Aspects), m.data.Result.PatternTotal())

	return m.theme.Glyph.Render(cli.ChartIcon) + " " + m.theme.Title.Render(name) + "  " + m.theme.Subtitle.Render(summary)
}

func (m Model) renderTabs() string {
	tabs := make([]string, len(viewNames))
	for i, name := range viewNames {
		style := m.theme.Tab
		if View(i) == m.view {
			style = m.theme.ActiveTab
		}
		tabs[i] = style.Render(name)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderStatusBar() string {
	if m.status == "" {
		return m.theme.StatusBar.Render(" " + m.view.String())
	}
	return m.theme.StatusInfo.Render(" " + cli.StarIcon + " " + m.status)
}

// newPointTable builds the read-only table of chart points.
func newPointTable(chart model.Chart, theme themes.Theme) table.Model {
	columns := []table.Column{
		{Title: "Key", Width: 14},
		{Title: "Name", Width: 14},
		{Title: "Longitude", Width: 10},
		{Title: "Sign", Width: 6},
		{Title: "House", Width: 14},
		{Title: "R", Width: 2},
	}

	points := chart.Points()
	rows := make([]table.Row, len(points))
	for i, p := range points {
		longitude := "—"
		if p.IsUsable() {
			longitude = fmt.Sprintf("%.2f°", p.Longitude())
		}
		retro := ""
		if p.Retrograde {
			retro = "℞"
		}
		rows[i] = table.Row{p.Key, p.Name, longitude, p.Sign, strings.ReplaceAll(p.House, "_", " "), retro}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
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
	return t
}
