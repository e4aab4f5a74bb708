// Package app is the root bubbletea model for the Nibble TUI.
package app

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/nibble/internal/screens"
	chatscreen "github.com/abhisek/nibble/internal/screens/chat"
	"github.com/abhisek/nibble/internal/screens/home"
	"github.com/abhisek/nibble/internal/screens/welcome"
	"github.com/abhisek/nibble/internal/ui/layout"
	"github.com/abhisek/nibble/internal/ui/router"
)

// Options configures the TUI.
type Options struct {
	Services screens.Services
	// ChatOnly opens straight into the tutor with no home screen.
	ChatOnly bool
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router    *router.Router
	completed int
	total     int
	width     int
	height    int
}

func newAppModel(opts Options) AppModel {
	svc := opts.Services
	var first router.Screen = welcome.New(svc, func() router.Screen { return home.New(svc) })
	if opts.ChatOnly {
		first = chatscreen.New(svc, true)
	}
	return AppModel{router: router.New(first)}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case screens.ProgressMsg:
		m.completed = msg.Completed
		m.total = msg.Total
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	return m, m.router.Update(msg)
}

func (m AppModel) footerHints() []layout.KeyHint {
	if p, ok := m.router.Active().(router.KeyHintProvider); ok {
		return p.KeyHints()
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	header := layout.RenderHeader(m.router.Trail(2, " › "), m.completed, m.total, m.width)
	footer := layout.RenderFooter(m.footerHints(), m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)

	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the TUI and blocks until the learner quits.
func Run(opts Options) error {
	if _, err := tea.NewProgram(newAppModel(opts)).Run(); err != nil {
		return fmt.Errorf("running tui: %w", err)
	}
	return nil
}
