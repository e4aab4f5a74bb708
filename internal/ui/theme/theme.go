// Package theme holds the shared lipgloss palette and styles.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Greens on a dark background.
var (
	Primary   = lipgloss.Color("#22C55E")
	Secondary = lipgloss.Color("#84CC16")
	Accent    = lipgloss.Color("#F59E0B")
	Success   = lipgloss.Color("#10B981")
	Error     = lipgloss.Color("#EF4444")
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	BgCard    = lipgloss.Color("#1C2A22")
	Border    = lipgloss.Color("#33473A")
)

func fg(c color.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

var (
	Title   = fg(Primary).Bold(true)
	Heading = fg(Secondary).Bold(true)
	Body    = fg(Text)
	Hint    = fg(TextDim).Italic(true)
	Warn    = fg(Accent)

	// Chat speakers.
	Learner = fg(Accent).Bold(true)
	Tutor   = fg(Primary).Bold(true)

	Selected   = fg(Primary).Bold(true)
	Unselected = fg(Text)
	Correct    = fg(Success).Bold(true)
	Incorrect  = fg(Error).Bold(true)
)

// Badge renders a short upper-case label on a solid background, e.g. the
// provenance tag above a lesson.
func Badge(label string, bg color.Color) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#0B130E")).
		Background(bg).
		Bold(true).
		Padding(0, 1).
		Render(label)
}
