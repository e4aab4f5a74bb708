// Package welcome asks a new learner for their name before showing home.
package welcome

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/nibble/internal/progress"
	"github.com/abhisek/nibble/internal/screens"
	"github.com/abhisek/nibble/internal/ui/components"
	"github.com/abhisek/nibble/internal/ui/router"
	"github.com/abhisek/nibble/internal/ui/theme"
)

const maxNameLen = 40

type profileMsg struct {
	Profile *progress.Profile
	Err     error
}

type savedMsg struct {
	Err error
}

// WelcomeScreen shows the banner and collects a name on first run. Returning
// learners skip straight to the next screen.
type WelcomeScreen struct {
	svc    screens.Services
	next   func() router.Screen
	input  components.TextInput
	loaded bool
	saving bool
	errMsg string
	done   bool
}

var _ router.Screen = (*WelcomeScreen)(nil)

// New creates a welcome screen that hands over to the screen built by next.
func New(svc screens.Services, next func() router.Screen) *WelcomeScreen {
	return &WelcomeScreen{
		svc:   svc,
		next:  next,
		input: components.NewTextInput("Your name", maxNameLen),
	}
}

func (w *WelcomeScreen) Title() string {
	return "Welcome"
}

func (w *WelcomeScreen) Init() tea.Cmd {
	svc := w.svc
	load := func() tea.Msg {
		p, err := svc.Progress.Profile(context.Background(), svc.UserID)
		return profileMsg{Profile: p, Err: err}
	}
	return tea.Batch(load, w.input.Init())
}

func (w *WelcomeScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case profileMsg:
		w.loaded = true
		if msg.Err == nil && msg.Profile.Name != "" {
			return w, w.transition()
		}
		return w, nil

	case savedMsg:
		w.saving = false
		if msg.Err != nil {
			w.errMsg = msg.Err.Error()
			return w, nil
		}
		return w, w.transition()

	case tea.KeyMsg:
		if msg.String() == "enter" {
			return w, w.save()
		}
	}

	var cmd tea.Cmd
	w.input, cmd = w.input.Update(msg)
	return w, cmd
}

func (w *WelcomeScreen) save() tea.Cmd {
	name := w.input.Value()
	if name == "" || w.saving {
		return nil
	}
	w.saving = true
	svc := w.svc
	return func() tea.Msg {
		_, err := svc.Progress.SetName(context.Background(), svc.UserID, name)
		return savedMsg{Err: err}
	}
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.done {
		return nil
	}
	w.done = true
	next := w.next()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}

func (w *WelcomeScreen) View(width, height int) string {
	sections := []string{RenderBanner(width), ""}
	sections = append(sections, theme.Body.Bold(true).Render("Bite-sized nutrition lessons, one at a time."), "")

	if w.loaded && !w.done {
		w.input.SetWidth(30)
		sections = append(sections,
			theme.Body.Render("What should we call you?"),
			w.input.View(),
		)
		if w.errMsg != "" {
			sections = append(sections, "", theme.Incorrect.Render(w.errMsg))
		} else {
			sections = append(sections, "", theme.Hint.Render("press Enter to continue"))
		}
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(sections, "\n"))
}
