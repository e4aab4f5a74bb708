package progress

import (
	"errors"
	"time"

	"github.com/abhisek/nibble/internal/lessons"
	"github.com/abhisek/nibble/internal/quiz"
)

var (
	// ErrMissingUser is returned by every operation given an empty user id.
	ErrMissingUser = errors.New("user id is required")
	// ErrMissingLesson is returned when a lesson id is required but empty.
	ErrMissingLesson = errors.New("lesson id is required")
)

// DefaultActivityLimit is the feed length when callers pass no limit.
const DefaultActivityLimit = 5

// Activity kinds.
const (
	KindLessonCompleted = "lesson_completed"
	KindQuizSubmitted   = "quiz_submitted"
	KindCustom          = "custom"
)

// Profile is a learner's progress record.
type Profile struct {
	UserID           string    `json:"userId"`
	Name             string    `json:"name,omitempty"`
	CompletedLessons []string  `json:"completedLessons"`
	LessonsCompleted int       `json:"lessonsCompleted"`
	TotalLessons     int       `json:"totalLessons"`
	CreatedAt        time.Time `json:"createdAt"`
	LastUpdated      time.Time `json:"lastUpdated"`
}

// HasCompleted reports whether lessonID is in the completed set.
func (p *Profile) HasCompleted(lessonID string) bool {
	for _, id := range p.CompletedLessons {
		if id == lessonID {
			return true
		}
	}
	return false
}

// Activity is one entry of the recent activity feed.
type Activity struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	LessonID  string    `json:"lessonId,omitempty"`
	Title     string    `json:"title"`
	Subtitle  string    `json:"subtitle,omitempty"`
	Score     int       `json:"score,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// QuizOutcome is the result of submitting quiz answers.
type QuizOutcome struct {
	Score      quiz.Score `json:"score"`
	ActivityID string     `json:"activityId"`
	Profile    *Profile   `json:"profile"`
}

// Summary is the progress overview shown on the home screen.
type Summary struct {
	Completed  int             `json:"completed"`
	Total      int             `json:"total"`
	Percent    int             `json:"percent"`
	NextLesson *lessons.Lesson `json:"nextLesson,omitempty"`
}
