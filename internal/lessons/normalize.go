package lessons

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/abhisek/nibble/internal/jsonrepair"
	"github.com/abhisek/nibble/internal/quiz"
)

// PlaceholderNote is attached to content built from unparseable output.
const PlaceholderNote = "Model output could not be parsed as JSON; showing raw text."

const excerptRunes = 400

var (
	titleKeys    = []string{"title", "lessonTitle", "lesson_title", "name", "heading"}
	overviewKeys = []string{"overview", "summary", "introduction", "intro", "description"}
	sectionKeys  = []string{"sections", "content", "body", "parts"}
	quizKeys     = []string{"quiz", "questions", "quizQuestions", "quiz_questions"}
	noteKeys     = []string{"notes", "tips", "takeaways", "keyPoints", "key_points"}
	wrapperKeys  = []string{"lesson", "data", "result"}

	headingKeys = []string{"heading", "title", "name", "header"}
	bodyKeys    = []string{"body", "content", "text", "paragraph", "description"}
)

// NormalizeResult is the outcome of mapping model text onto LessonContent.
type NormalizeResult struct {
	Content LessonContent
	// Strategy names the jsonrepair strategy that succeeded, or
	// StrategyPlaceholder.
	Strategy    string
	Placeholder bool
}

// Normalize recovers lesson content from raw model output. It never fails:
// output that cannot be parsed becomes a placeholder lesson quoting the text.
func Normalize(raw string, hint LessonHint) NormalizeResult {
	obj, strategy, ok := jsonrepair.Parse(raw)
	if !ok {
		return NormalizeResult{
			Content:     placeholderContent(raw, hint),
			Strategy:    StrategyPlaceholder,
			Placeholder: true,
		}
	}
	return NormalizeResult{
		Content:  coerceLesson(unwrapLesson(obj), hint),
		Strategy: strategy,
	}
}

// NormalizeQuiz recovers a quiz from raw model output. ok is false when
// nothing parseable came back.
func NormalizeQuiz(raw, topic string) ([]quiz.Question, string, bool) {
	obj, strategy, ok := jsonrepair.Parse(raw)
	if !ok {
		return nil, StrategyPlaceholder, false
	}
	obj = unwrapLesson(obj)
	src := firstValue(obj, quizKeys)
	if src == nil {
		return nil, strategy, false
	}
	return quiz.EnforceFor(src, topic), strategy, true
}

// unwrapLesson descends into {"lesson": {...}} style wrappers.
func unwrapLesson(obj map[string]any) map[string]any {
	for len(obj) == 1 {
		inner, ok := firstValue(obj, wrapperKeys).(map[string]any)
		if !ok {
			break
		}
		obj = inner
	}
	return obj
}

func coerceLesson(obj map[string]any, hint LessonHint) LessonContent {
	c := LessonContent{
		Title:    firstText(obj, titleKeys),
		Overview: firstText(obj, overviewKeys),
		Sections: coerceSections(firstValue(obj, sectionKeys)),
		Notes:    coerceNotes(firstValue(obj, noteKeys)),
	}
	if c.Title == "" {
		c.Title = defaultTitle(hint)
	}
	if c.Sections == nil {
		c.Sections = []Section{}
	}
	if c.Notes == nil {
		c.Notes = []string{}
	}
	c.Quiz = quiz.EnforceFor(firstValue(obj, quizKeys), c.Title)
	return c
}

func coerceSections(v any) []Section {
	switch t := v.(type) {
	case []any:
		out := make([]Section, 0, len(t))
		for i, item := range t {
			switch s := item.(type) {
			case string:
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, Section{Heading: fmt.Sprintf("Part %d", i+1), Body: s})
				}
			case map[string]any:
				sec := Section{Heading: firstText(s, headingKeys), Body: firstText(s, bodyKeys)}
				if sec.Body == "" && sec.Heading == "" {
					continue
				}
				if sec.Heading == "" {
					sec.Heading = fmt.Sprintf("Part %d", i+1)
				}
				out = append(out, sec)
			}
		}
		return out
	case map[string]any:
		// {"Heading": "body", ...}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]Section, 0, len(keys))
		for _, k := range keys {
			if body := text(t[k]); body != "" {
				out = append(out, Section{Heading: k, Body: body})
			}
		}
		return out
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []Section{{Heading: "Overview", Body: s}}
		}
	}
	return nil
}

func coerceNotes(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := text(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
	}
	return nil
}

func placeholderContent(raw string, hint LessonHint) LessonContent {
	excerpt := excerpt(strings.TrimSpace(raw), excerptRunes)
	title := defaultTitle(hint)
	return LessonContent{
		Title:    title,
		Overview: excerpt,
		Sections: []Section{{Heading: title, Body: excerpt}},
		Quiz:     quiz.Fillers(title),
		Notes:    []string{PlaceholderNote},
	}
}

func excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

func defaultTitle(hint LessonHint) string {
	if hint.Title != "" {
		return hint.Title
	}
	return "Lesson " + hint.ID
}

func firstValue(obj map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func firstText(obj map[string]any, keys []string) string {
	for _, k := range keys {
		if s := text(obj[k]); s != "" {
			return s
		}
	}
	return ""
}

// text renders scalars as trimmed strings and joins string arrays.
func text(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64, bool:
		return fmt.Sprint(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := text(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	}
	return ""
}
