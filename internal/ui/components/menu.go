package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/nibble/internal/ui/theme"
)

// MenuItem is one row of a Menu. Detail is shown dimmed after the label;
// disabled rows are drawn but never selected.
type MenuItem struct {
	Label    string
	Detail   string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical list of actions. Up and down wrap around.
type Menu struct {
	Items    []MenuItem
	Selected int
}

func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1}
	m.Selected = m.seek(-1, 1)
	if m.Selected < 0 {
		m.Selected = 0
	}
	return m
}

// seek returns the first enabled index after from in direction dir,
// wrapping once, or -1 if every item is disabled.
func (m Menu) seek(from, dir int) int {
	n := len(m.Items)
	for step := 1; step <= n; step++ {
		i := ((from+dir*step)%n + n) % n
		if !m.Items[i].Disabled {
			return i
		}
	}
	return -1
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok || len(m.Items) == 0 {
		return m, nil
	}

	next := -1
	switch kmsg.String() {
	case "up", "k":
		next = m.seek(m.Selected, -1)
	case "down", "j", "tab":
		next = m.seek(m.Selected, 1)
	case "home":
		next = m.seek(-1, 1)
	case "end":
		next = m.seek(len(m.Items), -1)
	case "enter":
		if m.Selected < len(m.Items) {
			if it := m.Items[m.Selected]; !it.Disabled && it.Action != nil {
				return m, it.Action()
			}
		}
	}
	if next >= 0 {
		m.Selected = next
	}
	return m, nil
}

func (m Menu) View() string {
	var b strings.Builder
	for i, item := range m.Items {
		var line string
		switch {
		case item.Disabled:
			line = lipgloss.NewStyle().Foreground(theme.TextDim).Render("    " + item.Label)
		case i == m.Selected:
			line = theme.Selected.Render("  ▸ " + item.Label)
		default:
			line = theme.Unselected.Render("    " + item.Label)
		}
		b.WriteString(line)
		if item.Detail != "" {
			b.WriteString("  " + theme.Hint.Render(item.Detail))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
