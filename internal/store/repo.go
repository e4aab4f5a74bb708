package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // exact purpose match, empty for all
	UserID  string    // exact user match, empty for all
	Failed  bool      // only unsuccessful calls
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	UserID       string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request event.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates token usage for one purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates token usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
}

// CacheEntry is one cached lesson document for a (user, lesson) pair.
// Document holds {content, metadata, raw, createdAt, updatedAt}.
type CacheEntry struct {
	UserID    string
	LessonID  string
	Document  map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CacheRepo stores generated lesson documents.
type CacheRepo interface {
	// Get returns the entry, or (nil, nil) when there is none.
	Get(ctx context.Context, userID, lessonID string) (*CacheEntry, error)

	// Merge deep-merges patch into the stored document, creating it if needed.
	Merge(ctx context.Context, userID, lessonID string, patch map[string]any) error

	// Delete removes the entry. Deleting a missing entry is not an error.
	Delete(ctx context.Context, userID, lessonID string) error

	// DeleteAll removes every entry, or only one user's when userID is set,
	// and reports how many were removed.
	DeleteAll(ctx context.Context, userID string) (int64, error)
}

// ProfileRecord is the persisted learner profile.
type ProfileRecord struct {
	UserID           string
	Name             string
	CompletedLessons []string
	TotalLessons     int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ActivityRecord is one entry of a learner's activity feed.
type ActivityRecord struct {
	ID        string
	Sequence  int64
	UserID    string
	Kind      string
	LessonID  string
	Title     string
	Detail    string
	Score     int
	Timestamp time.Time
}

// ProgressRepo persists learner profiles and activities.
type ProgressRepo interface {
	// GetProfile returns the profile, or (nil, nil) when none exists.
	GetProfile(ctx context.Context, userID string) (*ProfileRecord, error)

	// UpdateProfile loads (or initializes) the profile, applies fn and
	// persists the result atomically. If fn returns an error nothing is written.
	UpdateProfile(ctx context.Context, userID string, fn func(*ProfileRecord) error) (*ProfileRecord, error)

	// AddActivity appends an activity, assigning ID, Sequence and Timestamp
	// when they are zero.
	AddActivity(ctx context.Context, a ActivityRecord) (ActivityRecord, error)

	// RecentActivities returns up to limit activities, newest first.
	RecentActivities(ctx context.Context, userID string, limit int) ([]ActivityRecord, error)
}
