// Package home is the TUI landing screen.
package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/nibble/internal/progress"
	"github.com/abhisek/nibble/internal/screens"
	chatscreen "github.com/abhisek/nibble/internal/screens/chat"
	"github.com/abhisek/nibble/internal/screens/lesson"
	"github.com/abhisek/nibble/internal/screens/lessonlist"
	progressscreen "github.com/abhisek/nibble/internal/screens/progress"
	"github.com/abhisek/nibble/internal/ui/components"
	"github.com/abhisek/nibble/internal/ui/layout"
	"github.com/abhisek/nibble/internal/ui/router"
	"github.com/abhisek/nibble/internal/ui/theme"
)

type summaryLoadedMsg struct {
	Summary *progress.Summary
	Err     error
}

// HomeScreen greets the learner and links to every other screen.
type HomeScreen struct {
	svc     screens.Services
	summary *progress.Summary
	menu    components.Menu
	errMsg  string
}

var _ router.Screen = (*HomeScreen)(nil)
var _ router.Resumer = (*HomeScreen)(nil)

// New creates the home screen.
func New(svc screens.Services) *HomeScreen {
	h := &HomeScreen{svc: svc}
	h.rebuild()
	return h
}

func (h *HomeScreen) rebuild() {
	prev, hadMenu := h.menu.Selected, len(h.menu.Items) > 0
	continueItem := components.MenuItem{Label: "CONTINUE", Disabled: true}
	if h.summary != nil && h.summary.NextLesson != nil {
		next := *h.summary.NextLesson
		continueItem = components.MenuItem{
			Label:  "CONTINUE",
			Detail: next.Title,
			Action: func() tea.Cmd { return router.Push(lesson.New(h.svc, next)) },
		}
	}

	h.menu = components.NewMenu([]components.MenuItem{
		continueItem,
		{Label: "ALL LESSONS", Action: func() tea.Cmd { return router.Push(lessonlist.New(h.svc)) }},
		{Label: "ASK THE TUTOR", Action: func() tea.Cmd { return router.Push(chatscreen.New(h.svc, false)) }},
		{Label: "MY PROGRESS", Action: func() tea.Cmd { return router.Push(progressscreen.New(h.svc)) }},
		{Label: "QUIT", Action: func() tea.Cmd { return tea.Quit }},
	})
	if hadMenu && !h.menu.Items[prev].Disabled {
		h.menu.Selected = prev
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	svc := h.svc
	return func() tea.Msg {
		sum, err := svc.Progress.Summary(context.Background(), svc.UserID)
		return summaryLoadedMsg{Summary: sum, Err: err}
	}
}

// Resume refreshes the summary when the learner comes back.
func (h *HomeScreen) Resume() tea.Cmd {
	return h.Init()
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	if msg, ok := msg.(summaryLoadedMsg); ok {
		if msg.Err != nil {
			h.errMsg = msg.Err.Error()
			return h, nil
		}
		h.errMsg = ""
		h.summary = msg.Summary
		h.rebuild()
		return h, func() tea.Msg {
			return screens.ProgressMsg{Completed: msg.Summary.Completed, Total: msg.Summary.Total}
		}
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	variant := MascotIdle
	if h.summary != nil && h.summary.Total > 0 && h.summary.NextLesson == nil {
		variant = MascotCheering
	}

	var sections []string
	sections = append(sections, RenderMascot(variant))
	sections = append(sections, theme.Title.Render("Bite-sized nutrition lessons"))

	if h.summary != nil {
		sections = append(sections, components.NewProgressBar(
			fmt.Sprintf("%d/%d", h.summary.Completed, h.summary.Total),
			h.summary.Percent, 40).View())
	}
	if h.errMsg != "" {
		sections = append(sections, theme.Incorrect.Render("Could not load progress: "+h.errMsg))
	}
	sections = append(sections, h.menu.View())

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		strings.TrimRight(content, "\n"))
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}
