package lessons

import (
	"time"

	"github.com/abhisek/nibble/internal/quiz"
)

const localFallbackOverview = "Lesson content unavailable right now."

// fallbackResult builds the content served when generation fails: the
// lesson's static backup, or a minimal local lesson for unknown ids.
func fallbackResult(hint LessonHint, now time.Time) *Result {
	if content, ok := BackupContent(hint.ID); ok {
		content.Quiz = quiz.EnforceFor(content.Quiz, content.Title)
		return &Result{
			Content: content,
			Metadata: Metadata{
				GeneratedAt:  now,
				Source:       SourceBackup,
				FromFallback: true,
				Strategy:     StrategyBackup,
			},
			FromFallback: true,
		}
	}
	return &Result{
		Content: localFallbackContent(hint),
		Metadata: Metadata{
			GeneratedAt:  now,
			Source:       SourceLocalFallback,
			FromFallback: true,
			Strategy:     StrategyBackup,
		},
		FromFallback: true,
	}
}

func localFallbackContent(hint LessonHint) LessonContent {
	title := defaultTitle(hint)
	heading := hint.Subtitle
	if heading == "" {
		heading = "Overview"
	}
	return LessonContent{
		Title:    title,
		Overview: localFallbackOverview,
		Sections: []Section{{Heading: heading, Body: "Could not generate lesson content."}},
		Quiz:     quiz.EnforceFor(nil, title),
		Notes:    []string{},
	}
}
