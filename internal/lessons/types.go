package lessons

import (
	"errors"
	"time"

	"github.com/abhisek/nibble/internal/quiz"
)

var (
	// ErrMissingUser is returned when a request has no user id.
	ErrMissingUser = errors.New("user id is required")
	// ErrMissingLesson is returned when a request has no lesson id.
	ErrMissingLesson = errors.New("lesson id is required")
)

// Provenance tags stored in Metadata.Source when no model produced the content.
const (
	SourceBackup        = "backup-fallback"
	SourceLocalFallback = "local-final-fallback"

	StrategyPlaceholder = "placeholder"
	StrategyBackup      = "backup"
)

// Section is one headed block of lesson text.
type Section struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// LessonContent is the structured body of a lesson.
type LessonContent struct {
	Title    string          `json:"title"`
	Overview string          `json:"overview"`
	Sections []Section       `json:"sections"`
	Quiz     []quiz.Question `json:"quiz"`
	Notes    []string        `json:"notes"`
}

// Metadata records where cached content came from.
type Metadata struct {
	GeneratedAt  time.Time `json:"generatedAt"`
	Source       string    `json:"source"`
	FromFallback bool      `json:"fromFallback"`
	Strategy     string    `json:"strategy"`
}

// Result is what the gateway returns to callers.
type Result struct {
	Content      LessonContent `json:"content"`
	Metadata     Metadata      `json:"metadata"`
	Cached       bool          `json:"cached"`
	FromFallback bool          `json:"fromFallback"`
}

// Options tunes a single Generate call. Title and Subtitle default to the
// catalog entry.
type Options struct {
	Title      string
	Subtitle   string
	Tone       string
	Difficulty string
	// Regenerate skips the cache lookup and overwrites the entry.
	Regenerate bool
}

// Lesson is a catalog entry.
type Lesson struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Label    string `json:"label"`
}

// LessonHint carries what the normalizer knows about the requested lesson.
type LessonHint struct {
	ID       string
	Title    string
	Subtitle string
}

// cacheDocument is the shape of a cache entry document.
type cacheDocument struct {
	Content  LessonContent `json:"content"`
	Metadata Metadata      `json:"metadata"`
	Raw      string        `json:"raw"`
}
