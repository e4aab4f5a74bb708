package progress

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/nibble/internal/logger"
	"github.com/abhisek/nibble/internal/quiz"
	"github.com/abhisek/nibble/internal/store"
)

type fakeLessons struct {
	mu         sync.Mutex
	quizzes    map[string][]quiz.Question
	prefetched []string
}

func (f *fakeLessons) CachedQuiz(_ context.Context, userID, lessonID string) ([]quiz.Question, bool) {
	qs, ok := f.quizzes[userID+"/"+lessonID]
	return qs, ok
}

func (f *fakeLessons) Prefetch(_ context.Context, _ string, lessonID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefetched = append(f.prefetched, lessonID)
}

func newTestService(t *testing.T, src LessonSource) *Service {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open("file:progress_" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewService(s.ProgressRepo(), src, logger.Nop())
}

func TestMarkLessonComplete_Idempotent(t *testing.T) {
	src := &fakeLessons{}
	svc := newTestService(t, src)
	ctx := context.Background()

	p, err := svc.MarkLessonComplete(ctx, "u1", "2")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, p.CompletedLessons)
	assert.Equal(t, 1, p.LessonsCompleted)
	assert.Equal(t, 8, p.TotalLessons)

	p, err = svc.MarkLessonComplete(ctx, "u1", "2")
	require.NoError(t, err)
	assert.Equal(t, 1, p.LessonsCompleted)

	p, err = svc.MarkLessonComplete(ctx, "u1", "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, p.CompletedLessons)
	assert.Equal(t, len(p.CompletedLessons), p.LessonsCompleted)

	acts, err := svc.RecentActivities(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, acts, 2, "repeat completion must not add an activity")
	assert.Equal(t, "Completed Nutrition Basics", acts[0].Title)

	// Next incomplete lesson after {2} is 1, after {1,2} is 3.
	assert.Equal(t, []string{"1", "3"}, src.prefetched)
}

func TestOperationsRejectEmptyUser(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.MarkLessonComplete(ctx, "", "1")
	assert.ErrorIs(t, err, ErrMissingUser)
	_, err = svc.MarkLessonComplete(ctx, "u1", "")
	assert.ErrorIs(t, err, ErrMissingLesson)
	_, err = svc.RecordQuiz(ctx, "", "1", nil)
	assert.ErrorIs(t, err, ErrMissingUser)
	_, err = svc.AddActivity(ctx, "", Activity{Title: "x"})
	assert.ErrorIs(t, err, ErrMissingUser)
	_, err = svc.RecentActivities(ctx, "", 5)
	assert.ErrorIs(t, err, ErrMissingUser)
	_, err = svc.Summary(ctx, "")
	assert.ErrorIs(t, err, ErrMissingUser)
}

func TestRecordQuiz_UsesCachedQuiz(t *testing.T) {
	src := &fakeLessons{quizzes: map[string][]quiz.Question{
		"u1/2": {
			{Question: "a", Options: []string{"1", "2", "3", "4"}, CorrectIndex: 2},
			{Question: "b", Options: []string{"1", "2", "3", "4"}, CorrectIndex: 1},
			{Question: "c", Options: []string{"1", "2", "3", "4"}, CorrectIndex: 0},
		},
	}}
	svc := newTestService(t, src)

	out, err := svc.RecordQuiz(context.Background(), "u1", "2", map[int]int{0: 2, 1: 1, 2: 3})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Score.Correct)
	assert.Equal(t, 67, out.Score.Percent)
	assert.False(t, out.Score.Passed)
	assert.NotEmpty(t, out.ActivityID)
	assert.True(t, out.Profile.HasCompleted("2"))

	acts, err := svc.RecentActivities(context.Background(), "u1", 5)
	require.NoError(t, err)
	require.Len(t, acts, 2)
	assert.Equal(t, KindLessonCompleted, acts[0].Kind)
	assert.Equal(t, KindQuizSubmitted, acts[1].Kind)
	assert.Equal(t, "2/3 correct", acts[1].Subtitle)
	assert.Equal(t, 67, acts[1].Score)
}

func TestRecordQuiz_FallsBackToBackupQuiz(t *testing.T) {
	svc := newTestService(t, nil)

	// Every backup question has the correct answer first.
	out, err := svc.RecordQuiz(context.Background(), "u1", "5", map[int]int{0: 0, 1: 0, 2: 0})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Score.Correct)
	assert.Equal(t, 100, out.Score.Percent)
	assert.True(t, out.Score.Passed)
}

func TestRecentActivities_LimitAndOrder(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	for _, title := range []string{"one", "two", "three", "four", "five", "six", "seven"} {
		_, err := svc.AddActivity(ctx, "u1", Activity{Title: title})
		require.NoError(t, err)
	}

	acts, err := svc.RecentActivities(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, acts, DefaultActivityLimit)
	assert.Equal(t, "seven", acts[0].Title)
	assert.Equal(t, KindCustom, acts[0].Kind)

	acts, err = svc.RecentActivities(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, acts, 2)
	assert.Equal(t, "six", acts[1].Title)
}

func TestSummary(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	sum, err := svc.Summary(ctx, "new-user")
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Completed)
	assert.Equal(t, 8, sum.Total)
	require.NotNil(t, sum.NextLesson)
	assert.Equal(t, "1", sum.NextLesson.ID)

	for _, id := range []string{"1", "2"} {
		_, err := svc.MarkLessonComplete(ctx, "u1", id)
		require.NoError(t, err)
	}
	sum, err = svc.Summary(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Completed)
	assert.Equal(t, 25, sum.Percent)
	assert.Equal(t, "3", sum.NextLesson.ID)
}

func TestSetName(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.MarkLessonComplete(ctx, "u1", "4")
	require.NoError(t, err)
	p, err := svc.SetName(ctx, "u1", "Sam")
	require.NoError(t, err)
	assert.Equal(t, "Sam", p.Name)
	assert.Equal(t, []string{"4"}, p.CompletedLessons)

	got, err := svc.Profile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Sam", got.Name)
}
