package app

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/nibble/internal/progress"
	"github.com/abhisek/nibble/internal/screens"
)

type fakeProgress struct {
	screens.Progress
}

func (fakeProgress) Summary(context.Context, string) (*progress.Summary, error) {
	return &progress.Summary{Completed: 1, Total: 8, Percent: 13}, nil
}

func TestAppModel_HeaderTracksProgress(t *testing.T) {
	m := newAppModel(Options{Services: screens.Services{Progress: fakeProgress{}}})

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	next, _ = next.Update(screens.ProgressMsg{Completed: 5, Total: 8})
	am := next.(AppModel)

	if am.completed != 5 || am.total != 8 {
		t.Fatalf("completed/total = %d/%d", am.completed, am.total)
	}
	if !strings.Contains(am.render(), "5/8 lessons") {
		t.Error("header missing lesson counter")
	}
}

func TestAppModel_ChatOnly(t *testing.T) {
	m := newAppModel(Options{ChatOnly: true})
	if got := m.router.Active().Title(); got != "Tutor" {
		t.Errorf("first screen = %q, want Tutor", got)
	}
}

func TestAppModel_CtrlCQuits(t *testing.T) {
	m := newAppModel(Options{})
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected QuitMsg")
	}
}

func TestAppModel_TooSmall(t *testing.T) {
	m := newAppModel(Options{})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	if !strings.Contains(next.(AppModel).render(), "needs at least") {
		t.Error("expected min size message")
	}
}
