// Package lessonlist is the lesson catalog screen.
package lessonlist

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/nibble/internal/lessons"
	"github.com/abhisek/nibble/internal/progress"
	"github.com/abhisek/nibble/internal/screens"
	"github.com/abhisek/nibble/internal/screens/lesson"
	"github.com/abhisek/nibble/internal/ui/components"
	"github.com/abhisek/nibble/internal/ui/layout"
	"github.com/abhisek/nibble/internal/ui/router"
	"github.com/abhisek/nibble/internal/ui/theme"
)

type profileLoadedMsg struct {
	Profile *progress.Profile
	Err     error
}

// ListScreen shows the catalog with completion marks.
type ListScreen struct {
	svc     screens.Services
	catalog []lessons.Lesson
	profile *progress.Profile
	menu    components.Menu
	errMsg  string
}

var _ router.Screen = (*ListScreen)(nil)
var _ router.Resumer = (*ListScreen)(nil)

// New creates the catalog screen.
func New(svc screens.Services) *ListScreen {
	s := &ListScreen{svc: svc, catalog: lessons.Catalog()}
	s.rebuild()
	return s
}

func (s *ListScreen) Init() tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		p, err := svc.Progress.Profile(context.Background(), svc.UserID)
		return profileLoadedMsg{Profile: p, Err: err}
	}
}

// Resume reloads completion marks after a lesson closes.
func (s *ListScreen) Resume() tea.Cmd {
	return s.Init()
}

func (s *ListScreen) Title() string {
	return "Lessons"
}

func (s *ListScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ListScreen) rebuild() {
	selected := s.menu.Selected
	items := make([]components.MenuItem, 0, len(s.catalog))
	for _, l := range s.catalog {
		mark := "○"
		if s.profile != nil && s.profile.HasCompleted(l.ID) {
			mark = "✓"
		}
		items = append(items, components.MenuItem{
			Label:  fmt.Sprintf("%s  %s. %s", mark, l.ID, l.Title),
			Detail: l.Subtitle,
			Action: func() tea.Cmd {
				return router.Push(lesson.New(s.svc, l))
			},
		})
	}
	s.menu = components.NewMenu(items)
	s.menu.Selected = min(selected, len(items)-1)
}

func (s *ListScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case profileLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.profile = msg.Profile
		s.rebuild()
		return s, func() tea.Msg { return screens.ProgressFromProfile(msg.Profile) }

	case tea.KeyMsg:
		if msg.String() == "esc" {
			return s, router.Pop
		}
	}

	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *ListScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n" + theme.Title.Render("Pick a lesson") + "\n\n")
	b.WriteString(s.menu.View())
	if s.errMsg != "" {
		b.WriteString("\n" + theme.Incorrect.Render("Could not load progress: "+s.errMsg))
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(layout.TextWidth(width)).Render(b.String()))
}
