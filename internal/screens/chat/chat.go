// Package chat is the tutor chat screen.
package chat

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	chatsvc "github.com/abhisek/nibble/internal/chat"
	"github.com/abhisek/nibble/internal/screens"
	"github.com/abhisek/nibble/internal/ui/components"
	"github.com/abhisek/nibble/internal/ui/layout"
	"github.com/abhisek/nibble/internal/ui/router"
	"github.com/abhisek/nibble/internal/ui/theme"
)

const greeting = "Hi! Ask me anything about food, nutrition or today's lesson."

type replyMsg struct {
	Reply chatsvc.Reply
	Err   error
}

// ChatScreen is a scrolling transcript with an input line.
type ChatScreen struct {
	svc     screens.Services
	root    bool
	input   components.TextInput
	spinner components.Spinner
	history []chatsvc.Turn
	waiting bool
	errMsg  string
	// scroll counts lines up from the bottom of the transcript.
	scroll int
}

var _ router.Screen = (*ChatScreen)(nil)
var _ router.KeyHintProvider = (*ChatScreen)(nil)

// New creates a chat screen. A root screen has nowhere to go back to, so Esc
// is ignored.
func New(svc screens.Services, root bool) *ChatScreen {
	return &ChatScreen{
		svc:   svc,
		root:  root,
		input: components.NewTextInput("Type a question and press Enter", 500),
	}
}

func (s *ChatScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *ChatScreen) Title() string {
	return "Tutor"
}

func (s *ChatScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "PgUp/PgDn", Description: "Scroll"},
	}
	if !s.root {
		hints = append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

// History returns the turns so far.
func (s *ChatScreen) History() []chatsvc.Turn {
	return s.history
}

func (s *ChatScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case replyMsg:
		s.waiting = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.history = append(s.history, chatsvc.Turn{Role: chatsvc.RoleAssistant, Text: msg.Reply.Text})
		s.scroll = 0
		return s, nil

	case components.SpinnerTickMsg:
		if !s.waiting {
			return s, nil
		}
		s.spinner.Advance()
		return s, s.spinner.Tick()

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			if s.root {
				return s, nil
			}
			return s, router.Pop
		case "pgup":
			s.scroll += 5
			return s, nil
		case "pgdown":
			s.scroll = max(s.scroll-5, 0)
			return s, nil
		case "enter":
			return s, s.send()
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *ChatScreen) send() tea.Cmd {
	text := s.input.Value()
	if text == "" || s.waiting {
		return nil
	}
	prior := append([]chatsvc.Turn(nil), s.history...)
	s.history = append(s.history, chatsvc.Turn{Role: chatsvc.RoleUser, Text: text})
	s.input.Reset()
	s.waiting = true
	s.errMsg = ""
	s.scroll = 0

	tutor := s.svc.Tutor
	ask := func() tea.Msg {
		reply, err := tutor.Reply(context.Background(), prior, text)
		return replyMsg{Reply: reply, Err: err}
	}
	return tea.Batch(ask, s.spinner.Tick())
}

func (s *ChatScreen) View(width, height int) string {
	tw := layout.TextWidth(width)
	s.input.SetWidth(tw - 4)

	lines := s.transcript(tw)

	var status string
	switch {
	case s.waiting:
		status = s.spinner.View("Thinking...")
	case s.errMsg != "":
		status = theme.Incorrect.Render(s.errMsg)
	}

	footer := []string{"", status, s.input.View()}
	avail := max(height-len(footer), 1)

	// Window from the bottom.
	offset := len(lines) - avail - s.scroll
	visible, offset := layout.Window(lines, offset, avail)
	s.scroll = max(len(lines)-avail-offset, 0)

	body := lipgloss.NewStyle().Height(avail).Render(strings.Join(visible, "\n"))
	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(tw).Render(body+"\n"+strings.Join(footer, "\n")))
}

func (s *ChatScreen) transcript(width int) []string {
	wrap := lipgloss.NewStyle().Width(width)
	var b strings.Builder
	b.WriteString(theme.Tutor.Render("Tutor") + "\n" + wrap.Render(greeting) + "\n")
	for _, t := range s.history {
		b.WriteString("\n")
		if t.Role == chatsvc.RoleUser {
			b.WriteString(theme.Learner.Render("You") + "\n")
		} else {
			b.WriteString(theme.Tutor.Render("Tutor") + "\n")
		}
		b.WriteString(wrap.Render(t.Text) + "\n")
	}
	return strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
}
