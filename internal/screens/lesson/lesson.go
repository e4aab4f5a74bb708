// Package lesson shows one lesson and runs its quiz.
package lesson

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/nibble/internal/lessons"
	"github.com/abhisek/nibble/internal/progress"
	"github.com/abhisek/nibble/internal/screens"
	"github.com/abhisek/nibble/internal/ui/components"
	"github.com/abhisek/nibble/internal/ui/layout"
	"github.com/abhisek/nibble/internal/ui/router"
	"github.com/abhisek/nibble/internal/ui/theme"
)

type phase int

const (
	phaseLoading phase = iota
	phaseReading
	phaseQuiz
	phaseSubmitting
	phaseResult
	phaseError
)

type contentMsg struct {
	Result *lessons.Result
	Err    error
}

type completedMsg struct {
	Profile *progress.Profile
	Err     error
}

type outcomeMsg struct {
	Outcome *progress.QuizOutcome
	Err     error
}

// LessonScreen loads a lesson through the gateway, shows it, then quizzes.
type LessonScreen struct {
	svc      screens.Services
	lesson   lessons.Lesson
	phase    phase
	spinner  components.Spinner
	result   *lessons.Result
	scroll   int
	question int
	choices  []components.MultiChoice
	outcome  *progress.QuizOutcome
	notice   string
	errMsg   string
}

var _ router.Screen = (*LessonScreen)(nil)
var _ router.KeyHintProvider = (*LessonScreen)(nil)

// New creates a lesson screen.
func New(svc screens.Services, lesson lessons.Lesson) *LessonScreen {
	return &LessonScreen{svc: svc, lesson: lesson}
}

func (s *LessonScreen) Init() tea.Cmd {
	return s.load(lessons.Options{})
}

func (s *LessonScreen) Title() string {
	return s.lesson.Title
}

func (s *LessonScreen) KeyHints() []layout.KeyHint {
	switch s.phase {
	case phaseReading:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Scroll"},
			{Key: "Q", Description: "Quiz"},
			{Key: "G", Description: "New lesson"},
			{Key: "R", Description: "New quiz"},
			{Key: "C", Description: "Mark done"},
			{Key: "Esc", Description: "Back"},
		}
	case phaseQuiz:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Choose"},
			{Key: "Enter", Description: "Answer"},
			{Key: "Esc", Description: "Back to lesson"},
		}
	case phaseResult, phaseError:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Done"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
}

func (s *LessonScreen) load(opts lessons.Options) tea.Cmd {
	s.phase = phaseLoading
	svc, id := s.svc, s.lesson.ID
	fetch := func() tea.Msg {
		res, err := svc.Lessons.Generate(context.Background(), svc.UserID, id, opts)
		return contentMsg{Result: res, Err: err}
	}
	return tea.Batch(fetch, s.spinner.Tick())
}

func (s *LessonScreen) regenerateQuiz() tea.Cmd {
	s.phase = phaseLoading
	svc, id := s.svc, s.lesson.ID
	fetch := func() tea.Msg {
		res, err := svc.Lessons.RegenerateQuiz(context.Background(), svc.UserID, id)
		return contentMsg{Result: res, Err: err}
	}
	return tea.Batch(fetch, s.spinner.Tick())
}

func (s *LessonScreen) submit() tea.Cmd {
	s.phase = phaseSubmitting
	answers := make(map[int]int, len(s.choices))
	for i, c := range s.choices {
		if c.Submitted {
			answers[i] = c.ChosenIndex
		}
	}
	svc, id := s.svc, s.lesson.ID
	record := func() tea.Msg {
		out, err := svc.Progress.RecordQuiz(context.Background(), svc.UserID, id, answers)
		return outcomeMsg{Outcome: out, Err: err}
	}
	return tea.Batch(record, s.spinner.Tick())
}

func (s *LessonScreen) complete() tea.Cmd {
	svc, id := s.svc, s.lesson.ID
	return func() tea.Msg {
		p, err := svc.Progress.MarkLessonComplete(context.Background(), svc.UserID, id)
		return completedMsg{Profile: p, Err: err}
	}
}

func (s *LessonScreen) startQuiz() {
	s.choices = s.choices[:0]
	for _, q := range s.result.Content.Quiz {
		s.choices = append(s.choices, components.NewMultiChoice(q.Question, q.Options, q.CorrectIndex, q.Explanation))
	}
	s.question = 0
	s.phase = phaseQuiz
}

func (s *LessonScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case contentMsg:
		if msg.Err != nil {
			s.phase = phaseError
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.result = msg.Result
		s.notice = ""
		s.scroll = 0
		s.phase = phaseReading
		return s, nil

	case outcomeMsg:
		if msg.Err != nil {
			s.phase = phaseError
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.outcome = msg.Outcome
		s.phase = phaseResult
		return s, func() tea.Msg { return screens.ProgressFromProfile(msg.Outcome.Profile) }

	case completedMsg:
		if msg.Err != nil {
			s.notice = "Could not save: " + msg.Err.Error()
			return s, nil
		}
		s.notice = "Marked complete."
		return s, func() tea.Msg { return screens.ProgressFromProfile(msg.Profile) }

	case components.SpinnerTickMsg:
		if s.phase != phaseLoading && s.phase != phaseSubmitting {
			return s, nil
		}
		s.spinner.Advance()
		return s, s.spinner.Tick()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *LessonScreen) handleKey(msg tea.KeyMsg) (router.Screen, tea.Cmd) {
	key := msg.String()
	switch s.phase {
	case phaseReading:
		switch key {
		case "esc":
			return s, router.Pop
		case "up", "k":
			s.scroll = max(s.scroll-1, 0)
		case "down", "j":
			s.scroll++
		case "pgup":
			s.scroll = max(s.scroll-10, 0)
		case "pgdown", "space":
			s.scroll += 10
		case "q", "enter":
			if len(s.result.Content.Quiz) > 0 {
				s.startQuiz()
			}
		case "g":
			return s, s.load(lessons.Options{Regenerate: true})
		case "r":
			return s, s.regenerateQuiz()
		case "c":
			return s, s.complete()
		}

	case phaseQuiz:
		if key == "esc" {
			s.phase = phaseReading
			return s, nil
		}
		cur := &s.choices[s.question]
		if cur.Submitted && key == "enter" {
			if s.question == len(s.choices)-1 {
				return s, s.submit()
			}
			s.question++
			return s, nil
		}
		var cmd tea.Cmd
		*cur, cmd = cur.Update(msg)
		return s, cmd

	case phaseResult, phaseError:
		if key == "esc" || key == "enter" {
			return s, router.Pop
		}

	default:
		if key == "esc" {
			return s, router.Pop
		}
	}
	return s, nil
}

func (s *LessonScreen) View(width, height int) string {
	tw := layout.TextWidth(width)
	var body string
	switch s.phase {
	case phaseLoading:
		body = "\n" + s.spinner.View("Preparing your lesson...")
	case phaseSubmitting:
		body = "\n" + s.spinner.View("Saving your answers...")
	case phaseError:
		body = "\n" + theme.Incorrect.Render("Error: "+s.errMsg)
	case phaseReading:
		lines := strings.Split(s.renderContent(tw), "\n")
		var visible []string
		visible, s.scroll = layout.Window(lines, s.scroll, height)
		body = strings.Join(visible, "\n")
	case phaseQuiz:
		body = s.renderQuestion(tw)
	case phaseResult:
		body = s.renderResult(tw)
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, lipgloss.NewStyle().Width(tw).Render(body))
}

func (s *LessonScreen) renderContent(width int) string {
	c := s.result.Content
	wrap := lipgloss.NewStyle().Width(width)
	var b strings.Builder

	b.WriteString(theme.Title.Render(c.Title) + "\n")
	switch {
	case s.result.FromFallback:
		b.WriteString(theme.Badge("OFFLINE", theme.Accent) + " " + theme.Warn.Render("The generator was unavailable.") + "\n")
	case s.result.Cached:
		b.WriteString(theme.Badge("SAVED", theme.Secondary) + "\n")
	}
	if s.notice != "" {
		b.WriteString(theme.Hint.Render(s.notice) + "\n")
	}
	b.WriteString("\n" + wrap.Render(c.Overview) + "\n")

	for _, sec := range c.Sections {
		b.WriteString("\n" + theme.Heading.Render(sec.Heading) + "\n")
		b.WriteString(wrap.Render(sec.Body) + "\n")
	}
	if len(c.Notes) > 0 {
		b.WriteString("\n" + theme.Heading.Render("Remember") + "\n")
		for _, n := range c.Notes {
			b.WriteString(wrap.Render("• "+n) + "\n")
		}
	}
	b.WriteString("\n" + theme.Hint.Render(fmt.Sprintf("Press Q for the %d-question quiz.", len(c.Quiz))))
	return b.String()
}

func (s *LessonScreen) renderQuestion(width int) string {
	cur := s.choices[s.question]
	var b strings.Builder
	b.WriteString(theme.Hint.Render(fmt.Sprintf("Question %d of %d", s.question+1, len(s.choices))) + "\n\n")
	b.WriteString(cur.View(width))
	if cur.Submitted {
		verdict := theme.Incorrect.Render("Not quite.")
		if cur.IsCorrect() {
			verdict = theme.Correct.Render("Correct!")
		}
		next := "Enter for the next question"
		if s.question == len(s.choices)-1 {
			next = "Enter to finish"
		}
		b.WriteString("\n" + verdict + "  " + theme.Hint.Render(next))
	}
	return b.String()
}

func (s *LessonScreen) renderResult(width int) string {
	score := s.outcome.Score
	var b strings.Builder
	b.WriteString("\n" + theme.Title.Render(fmt.Sprintf("%d/%d correct", score.Correct, score.Total)) + "\n\n")
	b.WriteString(components.NewProgressBar("Score", score.Percent, min(width, 50)).View() + "\n\n")
	if score.Passed {
		b.WriteString(theme.Correct.Render("Nice work! Lesson complete.") + "\n")
	} else {
		b.WriteString(theme.Body.Render("Lesson marked complete. Review it again any time.") + "\n")
	}
	if next, ok := lessons.NextLesson(s.outcome.Profile.CompletedLessons); ok {
		b.WriteString("\n" + theme.Hint.Render("Up next: "+next.Title))
	}
	return b.String()
}
