package lessonlist

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/nibble/internal/progress"
	"github.com/abhisek/nibble/internal/screens"
	"github.com/abhisek/nibble/internal/ui/router"
)

type fakeProgress struct {
	screens.Progress
	completed []string
}

func (f *fakeProgress) Profile(_ context.Context, userID string) (*progress.Profile, error) {
	return &progress.Profile{UserID: userID, CompletedLessons: f.completed, LessonsCompleted: len(f.completed), TotalLessons: 8}, nil
}

func TestListScreen_MarksCompleted(t *testing.T) {
	fp := &fakeProgress{completed: []string{"2"}}
	s := New(screens.Services{UserID: "u1", Progress: fp})

	_, cmd := s.Update(s.Init()())
	if cmd == nil {
		t.Fatal("expected a progress message")
	}
	if pm, ok := cmd().(screens.ProgressMsg); !ok || pm.Completed != 1 {
		t.Errorf("progress msg = %#v", pm)
	}

	view := s.View(100, 30)
	if !strings.Contains(view, "✓  2. Reading Labels") {
		t.Errorf("completed mark missing:\n%s", view)
	}
	if !strings.Contains(view, "○  1. Nutrition Basics") {
		t.Errorf("open mark missing:\n%s", view)
	}
}

func TestListScreen_ResumeKeepsSelection(t *testing.T) {
	fp := &fakeProgress{}
	s := New(screens.Services{UserID: "u1", Progress: fp})
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})

	fp.completed = []string{"1"}
	s.Update(s.Resume()())

	if s.menu.Selected != 2 {
		t.Errorf("Selected = %d, want 2", s.menu.Selected)
	}
	if !s.profile.HasCompleted("1") {
		t.Error("profile not refreshed")
	}
}

func TestListScreen_OpenPushesLesson(t *testing.T) {
	s := New(screens.Services{UserID: "u1", Progress: &fakeProgress{}})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected push command")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if push.Screen.Title() != "Nutrition Basics" {
		t.Errorf("pushed %q", push.Screen.Title())
	}
}
