package progress

import (
	"context"
	"fmt"

	"github.com/abhisek/nibble/internal/lessons"
	"github.com/abhisek/nibble/internal/logger"
	"github.com/abhisek/nibble/internal/quiz"
	"github.com/abhisek/nibble/internal/store"
)

// LessonSource is the part of the lesson gateway progress depends on.
type LessonSource interface {
	CachedQuiz(ctx context.Context, userID, lessonID string) ([]quiz.Question, bool)
	Prefetch(ctx context.Context, userID, lessonID string)
}

// Service implements learner progress operations.
type Service struct {
	store   *Store
	repo    store.ProgressRepo
	lessons LessonSource
	log     *logger.Logger
}

// NewService creates a progress service. lessons may be nil, in which case
// quizzes are scored against the backup content and nothing is prefetched.
func NewService(repo store.ProgressRepo, lessons LessonSource, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		store:   NewStore(repo),
		repo:    repo,
		lessons: lessons,
		log:     log.With("component", "progress"),
	}
}

// Profile returns the learner's profile.
func (s *Service) Profile(ctx context.Context, userID string) (*Profile, error) {
	return s.store.Get(ctx, userID)
}

// SetName updates the display name.
func (s *Service) SetName(ctx context.Context, userID, name string) (*Profile, error) {
	return s.store.Update(ctx, userID, func(p *Profile) error {
		p.Name = name
		return nil
	})
}

// MarkLessonComplete adds lessonID to the completed set. Completing a
// lesson twice is a no-op apart from the timestamp. The first completion
// records an activity and warms the cache for the next lesson.
func (s *Service) MarkLessonComplete(ctx context.Context, userID, lessonID string) (*Profile, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	if lessonID == "" {
		return nil, ErrMissingLesson
	}

	var added bool
	p, err := s.store.Update(ctx, userID, func(p *Profile) error {
		added = !p.HasCompleted(lessonID)
		p.CompletedLessons = append(p.CompletedLessons, lessonID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !added {
		return p, nil
	}

	title := "Lesson " + lessonID
	if l, ok := lessons.LookupLesson(lessonID); ok {
		title = l.Title
	}
	if _, err := s.AddActivity(ctx, userID, Activity{
		Kind:     KindLessonCompleted,
		LessonID: lessonID,
		Title:    "Completed " + title,
		Subtitle: fmt.Sprintf("%d of %d lessons done", p.LessonsCompleted, p.TotalLessons),
	}); err != nil {
		// The completion itself is already persisted.
		s.log.Warn("failed to record completion activity", "user", userID, "lesson", lessonID, "error", err)
	}

	s.log.Info("lesson completed", "user", userID, "lesson", lessonID, "completed", p.LessonsCompleted)

	if s.lessons != nil {
		if next, ok := lessons.NextLesson(p.CompletedLessons); ok {
			s.lessons.Prefetch(ctx, userID, next.ID)
		}
	}
	return p, nil
}

// RecordQuiz grades answers against the lesson's quiz, records the attempt
// and marks the lesson complete.
func (s *Service) RecordQuiz(ctx context.Context, userID, lessonID string, answers map[int]int) (*QuizOutcome, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	if lessonID == "" {
		return nil, ErrMissingLesson
	}

	score := quiz.Grade(s.quizFor(ctx, userID, lessonID), answers)

	title := "Lesson " + lessonID
	if l, ok := lessons.LookupLesson(lessonID); ok {
		title = l.Title
	}
	id, err := s.AddActivity(ctx, userID, Activity{
		Kind:     KindQuizSubmitted,
		LessonID: lessonID,
		Title:    title + " quiz",
		Subtitle: fmt.Sprintf("%d/%d correct", score.Correct, score.Total),
		Score:    score.Percent,
	})
	if err != nil {
		return nil, err
	}

	p, err := s.MarkLessonComplete(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}
	return &QuizOutcome{Score: score, ActivityID: id, Profile: p}, nil
}

func (s *Service) quizFor(ctx context.Context, userID, lessonID string) []quiz.Question {
	if s.lessons != nil {
		if qs, ok := s.lessons.CachedQuiz(ctx, userID, lessonID); ok {
			return quiz.Enforce(qs)
		}
	}
	if c, ok := lessons.BackupContent(lessonID); ok {
		return c.Quiz
	}
	return quiz.EnforceFor(nil, "Lesson "+lessonID)
}

// AddActivity appends an entry to the activity feed and returns its id.
func (s *Service) AddActivity(ctx context.Context, userID string, a Activity) (string, error) {
	if userID == "" {
		return "", ErrMissingUser
	}
	if a.Kind == "" {
		a.Kind = KindCustom
	}
	rec, err := s.repo.AddActivity(ctx, store.ActivityRecord{
		UserID:   userID,
		Kind:     a.Kind,
		LessonID: a.LessonID,
		Title:    a.Title,
		Detail:   a.Subtitle,
		Score:    a.Score,
	})
	if err != nil {
		return "", fmt.Errorf("add activity for %s: %w", userID, err)
	}
	return rec.ID, nil
}

// RecentActivities returns the newest activities first. A limit of zero
// or less means DefaultActivityLimit.
func (s *Service) RecentActivities(ctx context.Context, userID string, limit int) ([]Activity, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	recs, err := s.repo.RecentActivities(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list activities for %s: %w", userID, err)
	}
	out := make([]Activity, 0, len(recs))
	for _, r := range recs {
		out = append(out, Activity{
			ID:        r.ID,
			Kind:      r.Kind,
			LessonID:  r.LessonID,
			Title:     r.Title,
			Subtitle:  r.Detail,
			Score:     r.Score,
			Timestamp: r.Timestamp,
		})
	}
	return out, nil
}

// Summary reports completion and the next lesson to take.
func (s *Service) Summary(ctx context.Context, userID string) (*Summary, error) {
	p, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	sum := &Summary{Completed: p.LessonsCompleted, Total: p.TotalLessons}
	if sum.Total > 0 {
		sum.Percent = min(100, sum.Completed*100/sum.Total)
	}
	if next, ok := lessons.NextLesson(p.CompletedLessons); ok {
		sum.NextLesson = &next
	}
	return sum, nil
}
