package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	chatsvc "github.com/abhisek/nibble/internal/chat"
	"github.com/abhisek/nibble/internal/screens"
	"github.com/abhisek/nibble/internal/ui/router"
)

type fakeTutor struct {
	history []chatsvc.Turn
	message string
	reply   string
}

func (f *fakeTutor) Reply(_ context.Context, history []chatsvc.Turn, message string) (chatsvc.Reply, error) {
	f.history = history
	f.message = message
	return chatsvc.Reply{Text: f.reply}, nil
}

// runBatch executes cmd and feeds every resulting replyMsg back into s.
func runBatch(t *testing.T, s *ChatScreen, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		batch = tea.BatchMsg{func() tea.Msg { return msg }}
	}
	for _, c := range batch {
		if c == nil {
			continue
		}
		if r, ok := c().(replyMsg); ok {
			s.Update(r)
		}
	}
}

func TestChatScreen_SendAndReply(t *testing.T) {
	tutor := &fakeTutor{reply: "Try an apple."}
	s := New(screens.Services{Tutor: tutor}, false)

	s.input.Model.SetValue("  snack ideas?  ")
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !s.waiting {
		t.Fatal("expected waiting after send")
	}
	if s.input.Value() != "" {
		t.Errorf("input not cleared: %q", s.input.Value())
	}
	runBatch(t, s, cmd)

	if s.waiting {
		t.Error("still waiting after reply")
	}
	if tutor.message != "snack ideas?" {
		t.Errorf("message = %q", tutor.message)
	}
	if len(tutor.history) != 0 {
		t.Errorf("first message should carry no history, got %d turns", len(tutor.history))
	}

	h := s.History()
	if len(h) != 2 || h[0].Role != chatsvc.RoleUser || h[1].Text != "Try an apple." {
		t.Fatalf("history = %+v", h)
	}

	view := s.View(80, 20)
	if !strings.Contains(view, "Try an apple.") {
		t.Error("reply missing from view")
	}
}

func TestChatScreen_SecondMessageCarriesHistory(t *testing.T) {
	tutor := &fakeTutor{reply: "ok"}
	s := New(screens.Services{Tutor: tutor}, false)

	for _, text := range []string{"one", "two"} {
		s.input.Model.SetValue(text)
		_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
		runBatch(t, s, cmd)
	}
	if len(tutor.history) != 2 {
		t.Errorf("history sent = %d turns, want 2", len(tutor.history))
	}
}

func TestChatScreen_EmptyInputIgnored(t *testing.T) {
	s := New(screens.Services{Tutor: &fakeTutor{}}, false)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd != nil || s.waiting {
		t.Error("blank input should not send")
	}
}

func TestChatScreen_Error(t *testing.T) {
	s := New(screens.Services{}, false)
	s.waiting = true
	s.Update(replyMsg{Err: errors.New("boom")})
	if s.waiting || s.errMsg != "boom" {
		t.Errorf("waiting=%v errMsg=%q", s.waiting, s.errMsg)
	}
}

func TestChatScreen_Esc(t *testing.T) {
	s := New(screens.Services{}, false)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected pop")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}

	root := New(screens.Services{}, true)
	if _, cmd := root.Update(tea.KeyPressMsg{Code: tea.KeyEscape}); cmd != nil {
		t.Error("root chat should ignore esc")
	}
	if len(root.KeyHints()) != len(s.KeyHints())-1 {
		t.Error("root chat should not advertise Back")
	}
}
