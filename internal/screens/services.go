// Package screens holds what the TUI screens share: the services they call
// and the messages they exchange with the app shell.
package screens

import (
	"context"

	"github.com/abhisek/nibble/internal/chat"
	"github.com/abhisek/nibble/internal/lessons"
	"github.com/abhisek/nibble/internal/progress"
)

// Lessons generates lesson content.
type Lessons interface {
	Generate(ctx context.Context, userID, lessonID string, opts lessons.Options) (*lessons.Result, error)
	RegenerateQuiz(ctx context.Context, userID, lessonID string) (*lessons.Result, error)
}

// Progress reads and records learner progress.
type Progress interface {
	Profile(ctx context.Context, userID string) (*progress.Profile, error)
	SetName(ctx context.Context, userID, name string) (*progress.Profile, error)
	RecordQuiz(ctx context.Context, userID, lessonID string, answers map[int]int) (*progress.QuizOutcome, error)
	MarkLessonComplete(ctx context.Context, userID, lessonID string) (*progress.Profile, error)
	Summary(ctx context.Context, userID string) (*progress.Summary, error)
	RecentActivities(ctx context.Context, userID string, limit int) ([]progress.Activity, error)
}

// Tutor answers chat messages.
type Tutor interface {
	Reply(ctx context.Context, history []chat.Turn, message string) (chat.Reply, error)
}

// Services bundles what the screens need for one learner.
type Services struct {
	UserID   string
	Lessons  Lessons
	Progress Progress
	Tutor    Tutor
}

// ProgressMsg reports the learner's lesson count to the header.
type ProgressMsg struct {
	Completed int
	Total     int
}

// ProgressFromProfile builds a ProgressMsg.
func ProgressFromProfile(p *progress.Profile) ProgressMsg {
	return ProgressMsg{Completed: p.LessonsCompleted, Total: p.TotalLessons}
}
