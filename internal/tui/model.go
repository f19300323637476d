package tui

import (
	"fmt"
	"io"

	"github.com/Veraticus/stellium/internal/aspect"
	"github.com/Veraticus/stellium/internal/cli"
	"github.com/Veraticus/stellium/internal/engine"
	"github.com/Veraticus/stellium/internal/model"
	"github.com/Veraticus/stellium/internal/pattern"
	"github.com/Veraticus/stellium/internal/tui/components"
	"github.com/Veraticus/stellium/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

// View represents the current view mode.
type View int

const (
	ViewAspects View = iota
	ViewPatterns
	ViewPoints
)

var viewNames = [...]string{"Aspects", "Patterns", "Points"}

// String returns the tab label of the view.
func (v View) String() string {
	if v < 0 || int(v) >= len(viewNames) {
		return fmt.Sprintf("View(%d)", int(v))
	}
	return viewNames[v]
}

// Data is the computed chart shown by the explorer.
type Data struct {
	Name    string
	Chart   model.Chart
	Result  engine.Result
	Table   aspect.Table
	Catalog pattern.Catalog
}

// Model holds the explorer state.
type Model struct {
	theme    themes.Theme
	renderer *cli.Renderer
	data     Data
	status   string
	keymap   KeyMap
	help     help.Model
	aspects  components.AspectListModel
	patterns components.PatternListModel
	points   table.Model
	config   Config
	width    int
	height   int
	view     View
	quitting bool
}

// New creates an explorer model for data.
func New(data Data, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	renderer := cli.NewRenderer(io.Discard, data.Table)
	h := help.New()
	h.ShowAll = cfg.ShowHelp

	m := Model{
		theme:    cfg.Theme,
		renderer: renderer,
		data:     data,
		keymap:   DefaultKeyMap(),
		help:     h,
		aspects:  components.NewAspectList(data.Result.Aspects, renderer, cfg.Theme),
		patterns: components.NewPatternList(data.Catalog, data.Result.Patterns, renderer, cfg.Theme),
		points:   newPointTable(data.Chart, cfg.Theme),
		config:   cfg,
		width:    cfg.Width,
		height:   cfg.Height,
		view:     ViewAspects,
	}
	m.handleResize()
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.handleResize()
		return m, nil

	case tea.KeyMsg:
		// Keys belong to the filter input while it has focus.
		if m.view == ViewAspects && m.aspects.Searching() {
			var cmd tea.Cmd
			m.aspects, cmd = m.aspects.Update(msg)
			return m, cmd
		}
		if cmd, handled := m.handleGlobalKeys(msg); handled {
			return m, cmd
		}

	case components.AspectSelectedMsg:
		m.status = m.renderer.FormatAspect(msg.Aspect)
		return m, nil

	case components.PatternFocusedMsg:
		m.status = fmt.Sprintf("%s: %d instance(s)", msg.ID, msg.Count)
		return m, nil
	}

	return m.updateActive(msg)
}

// handleGlobalKeys handles keys that work in every view.
func (m *Model) handleGlobalKeys(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keymap.ForceQuit), key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return tea.Quit, true
	case key.Matches(msg, m.keymap.NextView):
		m.view = (m.view + 1) % View(len(viewNames))
		m.status = ""
		return nil, true
	case key.Matches(msg, m.keymap.PrevView):
		m.view = (m.view + View(len(viewNames)) - 1) % View(len(viewNames))
		m.status = ""
		return nil, true
	case key.Matches(msg, m.keymap.ToggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		m.handleResize()
		return nil, true
	}
	return nil, false
}

func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ViewAspects:
		m.aspects, cmd = m.aspects.Update(msg)
	case ViewPatterns:
		m.patterns, cmd = m.patterns.Update(msg)
	case ViewPoints:
		m.points, cmd = m.points.Update(msg)
	}
	return m, cmd
}

// handleResize adjusts component sizes when the terminal resizes.
func (m *Model) handleResize() {
	// Header, tabs, status bar, help and borders.
	chrome := 7
	if m.help.ShowAll {
		chrome += 3
	}
	bodyHeight := max(m.height-chrome, 5)
	bodyWidth := max(m.width-4, 20)

	m.help.Width = bodyWidth
	m.aspects.Resize(bodyWidth, bodyHeight)
	m.patterns.Resize(bodyWidth, bodyHeight)
	m.points.SetHeight(max(bodyHeight-2, 3))
}

// ActiveView returns the view currently shown.
func (m Model) ActiveView() View {
	return m.view
}

// Status returns the status line text.
func (m Model) Status() string {
	return m.status
}

// Quitting reports whether the user asked to leave.
func (m Model) Quitting() bool {
	return m.quitting
}
