package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/nibble/internal/ui/theme"
)

const (
	MinWidth  = 60
	MinHeight = 18

	// ReadingWidth caps the width of wrapped lesson and chat text.
	ReadingWidth = 96
)

// KeyHint represents a key binding hint shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// IsTooSmall returns true if the terminal is below minimum size.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// TextWidth is the wrap width for body text in a content area of the given width.
func TextWidth(width int) int {
	w := width - 4
	if w > ReadingWidth {
		w = ReadingWidth
	}
	if w < 20 {
		w = 20
	}
	return w
}

// RenderMinSizeMessage asks for a bigger terminal, centered in the space
// that is available.
func RenderMinSizeMessage(width, height int) string {
	msg := fmt.Sprintf("Nibble needs at least %d×%d.\nThis terminal is %d×%d.", MinWidth, MinHeight, width, height)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Text).Align(lipgloss.Center).Render(msg))
}

var bar = lipgloss.NewStyle().
	Background(theme.BgCard).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(theme.Border)

// RenderHeader draws the top bar: app name, the screen title centered, and
// the lesson counter when total > 0.
func RenderHeader(title string, completed, total int, width int) string {
	inner := max(width-4, 0)

	brand := theme.Title.Render(" Nibble")
	counter := ""
	if total > 0 {
		counter = theme.Warn.Render(fmt.Sprintf("%d/%d lessons ", completed, total))
	}
	middle := lipgloss.PlaceHorizontal(
		max(inner-lipgloss.Width(brand)-lipgloss.Width(counter), 0),
		lipgloss.Center,
		theme.Body.Render(title),
	)

	return bar.Width(width).Render(brand + middle + counter)
}

// RenderFooter draws the key hints. Hints that do not fit are dropped from
// the end.
func RenderFooter(hints []KeyHint, width int) string {
	const sep = "   "
	room := max(width-6, 0)

	var line strings.Builder
	for i, h := range hints {
		part := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(h.Key) + " " +
			lipgloss.NewStyle().Foreground(theme.TextDim).Render(h.Description)
		if i > 0 {
			part = sep + part
		}
		if lipgloss.Width(line.String())+lipgloss.Width(part) > room {
			break
		}
		line.WriteString(part)
	}
	return bar.Width(width).Render("  " + line.String())
}

// RenderFrame composes the full frame: header + content + footer.
func RenderFrame(header, content, footer string, width, height int) string {
	contentHeight := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)

	styledContent := lipgloss.NewStyle().
		Width(width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)

	return header + "\n" + styledContent + "\n" + footer
}

// Window returns the slice of lines visible when scrolled to offset, and the
// clamped offset.
func Window(lines []string, offset, height int) ([]string, int) {
	if height <= 0 {
		return nil, 0
	}
	maxOffset := max(len(lines)-height, 0)
	offset = min(max(offset, 0), maxOffset)
	end := min(offset+height, len(lines))
	return lines[offset:end], offset
}
