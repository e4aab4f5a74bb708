package progress

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/nibble/internal/lessons"
	progresssvc "github.com/abhisek/nibble/internal/progress"
	"github.com/abhisek/nibble/internal/screens"
	"github.com/abhisek/nibble/internal/ui/router"
)

type fakeProgress struct {
	screens.Progress
	summary *progresssvc.Summary
	acts    []progresssvc.Activity
	err     error
	limit   int
}

func (f *fakeProgress) Summary(context.Context, string) (*progresssvc.Summary, error) {
	return f.summary, f.err
}

func (f *fakeProgress) RecentActivities(_ context.Context, _ string, limit int) ([]progresssvc.Activity, error) {
	f.limit = limit
	return f.acts, nil
}

func TestProgressScreen_Render(t *testing.T) {
	next, _ := lessons.LookupLesson("3")
	fp := &fakeProgress{
		summary: &progresssvc.Summary{Completed: 2, Total: 8, Percent: 25, NextLesson: &next},
		acts: []progresssvc.Activity{
			{Kind: progresssvc.KindQuizSubmitted, Title: "Reading Labels quiz", Subtitle: "2/3 correct", Timestamp: time.Now()},
		},
	}
	s := New(screens.Services{UserID: "u1", Progress: fp})

	_, cmd := s.Update(s.Init()())
	if fp.limit != activityLimit {
		t.Errorf("limit = %d, want %d", fp.limit, activityLimit)
	}
	if pm, ok := cmd().(screens.ProgressMsg); !ok || pm.Completed != 2 || pm.Total != 8 {
		t.Errorf("progress msg = %#v", pm)
	}

	view := s.View(100, 30)
	for _, want := range []string{"2 of 8 lessons", "Up next:", "Food Safety", "Reading Labels quiz", "2/3 correct"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestProgressScreen_Error(t *testing.T) {
	s := New(screens.Services{UserID: "u1", Progress: &fakeProgress{err: errors.New("db closed")}})
	_, cmd := s.Update(s.Init()())
	if cmd != nil {
		t.Error("no progress message expected without a summary")
	}
	if !strings.Contains(s.View(80, 20), "db closed") {
		t.Error("error not rendered")
	}
}

func TestProgressScreen_Esc(t *testing.T) {
	s := New(screens.Services{})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected pop")
	}
}
