package home

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/nibble/internal/lessons"
	"github.com/abhisek/nibble/internal/progress"
	"github.com/abhisek/nibble/internal/screens"
	"github.com/abhisek/nibble/internal/ui/router"
)

type fakeProgress struct {
	screens.Progress
	summary *progress.Summary
}

func (f *fakeProgress) Summary(context.Context, string) (*progress.Summary, error) {
	return f.summary, nil
}

func TestHomeScreen_ContinueDisabledUntilLoaded(t *testing.T) {
	h := New(screens.Services{})
	if !h.menu.Items[0].Disabled {
		t.Fatal("continue should start disabled")
	}
	if h.menu.Selected != 1 {
		t.Errorf("Selected = %d, want 1", h.menu.Selected)
	}
}

func TestHomeScreen_ContinueOpensNextLesson(t *testing.T) {
	next, _ := lessons.LookupLesson("4")
	fp := &fakeProgress{summary: &progress.Summary{Completed: 3, Total: 8, Percent: 38, NextLesson: &next}}
	h := New(screens.Services{UserID: "u1", Progress: fp})

	_, cmd := h.Update(h.Init()())
	if pm, ok := cmd().(screens.ProgressMsg); !ok || pm.Completed != 3 {
		t.Errorf("progress msg = %#v", pm)
	}
	if h.menu.Items[0].Disabled || h.menu.Items[0].Detail != "Budgeting" {
		t.Fatalf("continue item = %+v", h.menu.Items[0])
	}

	h.menu.Selected = 0
	_, cmd = h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	push, ok := cmd().(router.PushScreenMsg)
	if !ok || push.Screen.Title() != "Budgeting" {
		t.Errorf("expected push of lesson 4, got %#v", push)
	}

	if !strings.Contains(h.View(100, 30), "3/8") {
		t.Error("progress bar missing")
	}
}

func TestHomeScreen_AllDoneCheers(t *testing.T) {
	fp := &fakeProgress{summary: &progress.Summary{Completed: 8, Total: 8, Percent: 100}}
	h := New(screens.Services{Progress: fp})
	h.Update(h.Init()())

	if !h.menu.Items[0].Disabled {
		t.Error("continue should be disabled when everything is done")
	}
	if !strings.Contains(h.View(100, 30), "(^ ^)") {
		t.Error("expected cheering mascot")
	}
}
