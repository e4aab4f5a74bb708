package components

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/nibble/internal/ui/theme"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 100 * time.Millisecond

// SpinnerTickMsg advances a Spinner.
type SpinnerTickMsg time.Time

// Spinner is a small loading indicator driven by SpinnerTickMsg.
type Spinner struct {
	frame int
}

// Tick schedules the next frame.
func (s Spinner) Tick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(t time.Time) tea.Msg {
		return SpinnerTickMsg(t)
	})
}

// Advance moves to the next frame.
func (s *Spinner) Advance() {
	s.frame = (s.frame + 1) % len(spinnerFrames)
}

// View renders the current frame followed by label.
func (s Spinner) View(label string) string {
	return theme.Selected.Render(spinnerFrames[s.frame]) + " " + theme.Hint.Render(label)
}
