package lesson

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/nibble/internal/lessons"
	"github.com/abhisek/nibble/internal/progress"
	"github.com/abhisek/nibble/internal/quiz"
	"github.com/abhisek/nibble/internal/screens"
	"github.com/abhisek/nibble/internal/ui/router"
)

type fakeLessons struct {
	result    *lessons.Result
	err       error
	opts      []lessons.Options
	quizCalls int
}

func (f *fakeLessons) Generate(_ context.Context, _, _ string, opts lessons.Options) (*lessons.Result, error) {
	f.opts = append(f.opts, opts)
	return f.result, f.err
}

func (f *fakeLessons) RegenerateQuiz(context.Context, string, string) (*lessons.Result, error) {
	f.quizCalls++
	return f.result, f.err
}

type fakeProgress struct {
	screens.Progress
	answers   map[int]int
	completed []string
}

func (f *fakeProgress) RecordQuiz(_ context.Context, _, lessonID string, answers map[int]int) (*progress.QuizOutcome, error) {
	f.answers = answers
	qs, _ := lessons.BackupContent(lessonID)
	score := quiz.Grade(qs.Quiz, answers)
	return &progress.QuizOutcome{
		Score:   score,
		Profile: &progress.Profile{CompletedLessons: []string{lessonID}, LessonsCompleted: 1, TotalLessons: 8},
	}, nil
}

func (f *fakeProgress) MarkLessonComplete(_ context.Context, _, lessonID string) (*progress.Profile, error) {
	f.completed = append(f.completed, lessonID)
	return &progress.Profile{CompletedLessons: f.completed, LessonsCompleted: len(f.completed), TotalLessons: 8}, nil
}

func backupResult(t *testing.T, id string) *lessons.Result {
	t.Helper()
	c, ok := lessons.BackupContent(id)
	if !ok {
		t.Fatalf("no backup for %s", id)
	}
	return &lessons.Result{Content: c, FromFallback: true}
}

func newScreen(t *testing.T) (*LessonScreen, *fakeLessons, *fakeProgress) {
	t.Helper()
	l, _ := lessons.LookupLesson("1")
	fl := &fakeLessons{result: backupResult(t, "1")}
	fp := &fakeProgress{}
	s := New(screens.Services{UserID: "u1", Lessons: fl, Progress: fp}, l)
	return s, fl, fp
}

// load runs the fetch half of a load command.
func load(t *testing.T, s *LessonScreen, cmd tea.Cmd) {
	t.Helper()
	for _, msg := range drain(cmd) {
		switch msg.(type) {
		case contentMsg, outcomeMsg, completedMsg:
			s.Update(msg)
		}
	}
}

func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		if c != nil {
			out = append(out, c())
		}
	}
	return out
}

func press(s *LessonScreen, k string) tea.Cmd {
	var msg tea.KeyPressMsg
	switch k {
	case "enter":
		msg = tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		msg = tea.KeyPressMsg{Code: tea.KeyEscape}
	default:
		r := []rune(k)[0]
		msg = tea.KeyPressMsg{Code: r, Text: k}
	}
	_, cmd := s.Update(msg)
	return cmd
}

func TestLessonScreen_LoadAndRead(t *testing.T) {
	s, fl, _ := newScreen(t)
	load(t, s, s.Init())

	if s.phase != phaseReading {
		t.Fatalf("phase = %d, want reading", s.phase)
	}
	view := s.View(100, 60)
	if !strings.Contains(view, "OFFLINE") {
		t.Error("fallback banner missing")
	}
	if !strings.Contains(view, s.result.Content.Title) {
		t.Error("title missing")
	}
	if len(fl.opts) != 1 || fl.opts[0].Regenerate {
		t.Errorf("initial load opts = %+v", fl.opts)
	}
}

func TestLessonScreen_RegenerateKeys(t *testing.T) {
	s, fl, _ := newScreen(t)
	load(t, s, s.Init())

	load(t, s, press(s, "g"))
	if len(fl.opts) != 2 || !fl.opts[1].Regenerate {
		t.Errorf("regenerate opts = %+v", fl.opts)
	}

	load(t, s, press(s, "r"))
	if fl.quizCalls != 1 {
		t.Errorf("quiz regenerations = %d, want 1", fl.quizCalls)
	}
	if s.phase != phaseReading {
		t.Errorf("phase = %d after reload", s.phase)
	}
}

func TestLessonScreen_QuizFlow(t *testing.T) {
	s, _, fp := newScreen(t)
	load(t, s, s.Init())

	press(s, "q")
	if s.phase != phaseQuiz {
		t.Fatalf("phase = %d, want quiz", s.phase)
	}

	var cmd tea.Cmd
	for i := range s.choices {
		// Backup answers are always the first option.
		press(s, "a")
		press(s, "enter")
		if !s.choices[i].IsCorrect() {
			t.Fatalf("question %d not marked correct", i)
		}
		cmd = press(s, "enter")
	}
	if s.phase != phaseSubmitting {
		t.Fatalf("phase = %d, want submitting", s.phase)
	}
	load(t, s, cmd)

	if s.phase != phaseResult {
		t.Fatalf("phase = %d, want result", s.phase)
	}
	if len(fp.answers) != len(s.choices) {
		t.Errorf("answers = %v", fp.answers)
	}
	view := s.View(100, 40)
	if !strings.Contains(view, "3/3 correct") {
		t.Errorf("result view missing score: %q", view)
	}
	if !strings.Contains(view, "Up next:") {
		t.Error("next lesson hint missing")
	}

	if _, ok := press(s, "enter")().(router.PopScreenMsg); !ok {
		t.Error("enter on result should pop")
	}
}

func TestLessonScreen_EscFromQuizReturnsToLesson(t *testing.T) {
	s, _, _ := newScreen(t)
	load(t, s, s.Init())
	press(s, "q")
	if cmd := press(s, "esc"); cmd != nil {
		t.Error("esc in quiz should not pop")
	}
	if s.phase != phaseReading {
		t.Errorf("phase = %d, want reading", s.phase)
	}
}

func TestLessonScreen_MarkComplete(t *testing.T) {
	s, _, fp := newScreen(t)
	load(t, s, s.Init())

	cmd := press(s, "c")
	var follow tea.Cmd
	for _, msg := range drain(cmd) {
		_, follow = s.Update(msg)
	}
	if len(fp.completed) != 1 || fp.completed[0] != "1" {
		t.Fatalf("completed = %v", fp.completed)
	}
	if s.notice != "Marked complete." {
		t.Errorf("notice = %q", s.notice)
	}
	pm, ok := follow().(screens.ProgressMsg)
	if !ok || pm.Completed != 1 || pm.Total != 8 {
		t.Errorf("progress msg = %#v", pm)
	}
}

func TestLessonScreen_Error(t *testing.T) {
	s, fl, _ := newScreen(t)
	fl.err = errors.New("lesson id is required")
	load(t, s, s.Init())
	if s.phase != phaseError {
		t.Fatalf("phase = %d, want error", s.phase)
	}
	if !strings.Contains(s.View(80, 20), "lesson id is required") {
		t.Error("error not rendered")
	}
}
