package components

import (
	"io"
	"testing"

	"github.com/Veraticus/stellium/internal/aspect"
	"github.com/Veraticus/stellium/internal/cli"
	"github.com/Veraticus/stellium/internal/model"
	"github.com/Veraticus/stellium/internal/tui/themes"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRenderer() *cli.Renderer {
	return cli.NewRenderer(io.Discard, aspect.DefaultTable())
}

func testAspects() []model.AspectInstance {
	return []model.AspectInstance{
		{BaseKey: "moon", OtherKey: "sun", Type: model.Opposition, Angle: 180, Orb: 0.5, Separation: 179.5},
		{BaseKey: "mars", OtherKey: "sun", Type: model.Square, Angle: 90, Orb: 1, Separation: 91},
		{BaseKey: "mars", OtherKey: "moon", Type: model.Square, Angle: 90, Orb: 1.5, Separation: 88.5},
		{BaseKey: "jupiter", OtherKey: "venus", Type: model.Trine, Angle: 120, Orb: 2, Separation: 122},
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(m AspectListModel, text string) AspectListModel {
	for _, r := range text {
		m, _ = m.Update(runes(string(r)))
	}
	return m
}

func TestNewAspectList(t *testing.T) {
	m := NewAspectList(testAspects(), testRenderer(), themes.Default)

	assert.Len(t, m.Filtered(), 4)
	assert.False(t, m.Searching())

	a, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "moon", a.BaseKey)
	assert.Contains(t, m.View(), "Aspects (4 of 4)")
}

func TestAspectListModel_Search(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "by point", query: "mars", want: []string{"sun", "moon"}},
		{name: "by aspect type", query: "trine", want: []string{"venus"}},
		{name: "case insensitive", query: "MOON", want: []string{"sun", "moon"}},
		{name: "no match", query: "pluto", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewAspectList(testAspects(), testRenderer(), themes.Default)

			m, cmd := m.Update(runes("/"))
			assert.NotNil(t, cmd)
			require.True(t, m.Searching())

			m = typeText(m, tt.query)
			m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
			assert.False(t, m.Searching())

			var others []string
			for _, a := range m.Filtered() {
				others = append(others, a.OtherKey)
			}
			assert.Equal(t, tt.want, others)
		})
	}
}

func TestAspectListModel_SearchEscapeClears(t *testing.T) {
	m := NewAspectList(testAspects(), testRenderer(), themes.Default)

	m, _ = m.Update(runes("/"))
	m = typeText(m, "trine")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Len(t, m.Filtered(), 1)
	assert.Contains(t, m.View(), `filter: "trine"`)

	m, _ = m.Update(runes("/"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEscape})
	assert.False(t, m.Searching())
	assert.Len(t, m.Filtered(), 4)
}

func TestAspectListModel_SelectEmitsMessage(t *testing.T) {
	m := NewAspectList(testAspects(), testRenderer(), themes.Default)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg, ok := cmd().(AspectSelectedMsg)
	require.True(t, ok)
	assert.Equal(t, 1, msg.Index)
	assert.Equal(t, "mars", msg.Aspect.BaseKey)
	assert.Equal(t, model.Square, msg.Aspect.Type)
}

func TestAspectListModel_Empty(t *testing.T) {
	m := NewAspectList(nil, testRenderer(), themes.Default)

	_, ok := m.Selected()
	assert.False(t, ok)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "No aspects found.")
}
