// Package progress shows the learner's summary and recent activity.
package progress

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	progresssvc "github.com/abhisek/nibble/internal/progress"
	"github.com/abhisek/nibble/internal/screens"
	"github.com/abhisek/nibble/internal/ui/components"
	"github.com/abhisek/nibble/internal/ui/layout"
	"github.com/abhisek/nibble/internal/ui/router"
	"github.com/abhisek/nibble/internal/ui/theme"
)

const activityLimit = 10

type loadedMsg struct {
	Summary    *progresssvc.Summary
	Activities []progresssvc.Activity
	Err        error
}

// ProgressScreen displays completion and the activity feed.
type ProgressScreen struct {
	svc        screens.Services
	summary    *progresssvc.Summary
	activities []progresssvc.Activity
	loaded     bool
	errMsg     string
}

var _ router.Screen = (*ProgressScreen)(nil)

// New creates the progress screen.
func New(svc screens.Services) *ProgressScreen {
	return &ProgressScreen{svc: svc}
}

func (s *ProgressScreen) Init() tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		ctx := context.Background()
		sum, err := svc.Progress.Summary(ctx, svc.UserID)
		if err != nil {
			return loadedMsg{Err: err}
		}
		acts, err := svc.Progress.RecentActivities(ctx, svc.UserID, activityLimit)
		if err != nil {
			return loadedMsg{Summary: sum, Err: err}
		}
		return loadedMsg{Summary: sum, Activities: acts}
	}
}

func (s *ProgressScreen) Title() string {
	return "Progress"
}

func (s *ProgressScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
}

func (s *ProgressScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.loaded = true
		s.summary = msg.Summary
		s.activities = msg.Activities
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		}
		if msg.Summary != nil {
			return s, func() tea.Msg {
				return screens.ProgressMsg{Completed: msg.Summary.Completed, Total: msg.Summary.Total}
			}
		}
	case tea.KeyMsg:
		if msg.String() == "esc" {
			return s, router.Pop
		}
	}
	return s, nil
}

func (s *ProgressScreen) View(width, height int) string {
	tw := layout.TextWidth(width)
	center := func(str string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, lipgloss.NewStyle().Width(tw).Render(str))
	}

	if !s.loaded {
		return center("\n" + theme.Hint.Render("Loading progress..."))
	}

	var b strings.Builder
	b.WriteString("\n")
	if s.summary != nil {
		b.WriteString(components.NewProgressBar(
			fmt.Sprintf("%d of %d lessons", s.summary.Completed, s.summary.Total),
			s.summary.Percent, min(tw, 70)).View())
		b.WriteString("\n\n")
		if s.summary.NextLesson != nil {
			b.WriteString(theme.Body.Render("Up next: ") + theme.Selected.Render(s.summary.NextLesson.Title) + "\n")
		} else {
			b.WriteString(theme.Correct.Render("Every lesson complete!") + "\n")
		}
	}
	if s.errMsg != "" {
		b.WriteString("\n" + theme.Incorrect.Render("Error: "+s.errMsg) + "\n")
	}

	b.WriteString("\n" + theme.Heading.Render("Recent activity") + "\n")
	if len(s.activities) == 0 {
		b.WriteString(theme.Hint.Render("Nothing yet. Open a lesson to get started."))
	}
	for _, a := range s.activities {
		line := fmt.Sprintf("%s  %s", a.Timestamp.Local().Format("Jan 02 15:04"), a.Title)
		if a.Subtitle != "" {
			line += "  " + theme.Hint.Render(a.Subtitle)
		}
		b.WriteString(theme.Body.Render(line) + "\n")
	}
	return center(b.String())
}
