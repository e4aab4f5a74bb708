package lessons

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/abhisek/nibble/internal/llm"
	"github.com/abhisek/nibble/internal/logger"
	"github.com/abhisek/nibble/internal/quiz"
	"github.com/abhisek/nibble/internal/store"
)

// Service is the content cache gateway. It serves cached lessons and
// generates, normalizes and caches them on a miss.
type Service struct {
	provider llm.Provider
	cache    store.CacheRepo
	log      *logger.Logger
	cfg      Config
	now      func() time.Time

	group    singleflight.Group
	inflight sync.WaitGroup
}

// NewService creates a lesson gateway.
func NewService(provider llm.Provider, cache store.CacheRepo, log *logger.Logger, cfg Config) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		provider: provider,
		cache:    cache,
		log:      log.With("component", "lessons"),
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Generate returns the lesson for (userID, lessonID). A cached entry is
// returned as is unless opts.Regenerate is set. Generation failures never
// surface as errors: the caller gets fallback content instead.
func (s *Service) Generate(ctx context.Context, userID, lessonID string, opts Options) (*Result, error) {
	if err := checkIDs(userID, lessonID); err != nil {
		return nil, err
	}
	hint := s.hint(lessonID, opts)

	key := userID + "/" + lessonID
	if opts.Regenerate {
		key += "#regenerate"
	}
	// Shared work must outlive any single caller.
	shared := context.WithoutCancel(ctx)
	v, _, _ := s.group.Do(key, func() (any, error) {
		return s.generate(shared, userID, hint, opts), nil
	})
	res := *v.(*Result)
	return &res, nil
}

// RegenerateQuiz replaces the quiz of a lesson with a freshly generated
// one. Sections and notes are preserved. When generation fails the
// current quiz is returned with FromFallback set and nothing is written.
func (s *Service) RegenerateQuiz(ctx context.Context, userID, lessonID string) (*Result, error) {
	if err := checkIDs(userID, lessonID); err != nil {
		return nil, err
	}
	hint := s.hint(lessonID, Options{})

	shared := context.WithoutCancel(ctx)
	v, _, _ := s.group.Do(userID+"/"+lessonID+"#quiz", func() (any, error) {
		return s.regenerateQuiz(shared, userID, hint), nil
	})
	res := *v.(*Result)
	return &res, nil
}

// CachedQuiz returns the quiz stored for a lesson without generating
// anything. ok is false on a miss.
func (s *Service) CachedQuiz(ctx context.Context, userID, lessonID string) ([]quiz.Question, bool) {
	res, ok := s.lookup(ctx, userID, lessonID)
	if !ok {
		return nil, false
	}
	return res.Content.Quiz, true
}

// Prefetch warms the cache for a lesson in the background.
func (s *Service) Prefetch(ctx context.Context, userID, lessonID string) {
	if checkIDs(userID, lessonID) != nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		res, err := s.Generate(ctx, userID, lessonID, Options{})
		if err != nil {
			s.log.Warn("prefetch failed", "user", userID, "lesson", lessonID, "error", err)
			return
		}
		s.log.Debug("prefetched lesson", "user", userID, "lesson", lessonID, "cached", res.Cached)
	}()
}

// Wait blocks until all prefetches have finished.
func (s *Service) Wait() {
	s.inflight.Wait()
}

// Clear removes the cached entry so the next request regenerates it.
func (s *Service) Clear(ctx context.Context, userID, lessonID string) error {
	if err := checkIDs(userID, lessonID); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, userID, lessonID); err != nil {
		return fmt.Errorf("clear lesson %s for %s: %w", lessonID, userID, err)
	}
	return nil
}

func (s *Service) generate(ctx context.Context, userID string, hint LessonHint, opts Options) *Result {
	if !opts.Regenerate {
		if res, ok := s.lookup(ctx, userID, hint.ID); ok {
			return res
		}
	}

	ctx = llm.WithUser(llm.WithPurpose(ctx, "lesson"), userID)
	req := llm.Request{
		System: lessonSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildLessonUserMessage(hint, opts)},
		},
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}
	if s.cfg.StructuredOutput {
		req.Schema = LessonSchema
	}

	var (
		res *Result
		raw string
	)
	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		s.log.Warn("lesson generation failed, serving fallback",
			"user", userID, "lesson", hint.ID, "error", err)
		res = fallbackResult(hint, s.now())
	} else {
		raw = resp.Text()
		norm := Normalize(raw, hint)
		if norm.Placeholder {
			s.log.Warn("lesson output not parseable, serving placeholder",
				"user", userID, "lesson", hint.ID, "model", resp.Model)
		} else {
			s.checkSchema(LessonSchema, norm.Content, hint.ID)
		}
		res = &Result{
			Content: norm.Content,
			Metadata: Metadata{
				GeneratedAt:  s.now(),
				Source:       source(resp),
				FromFallback: norm.Placeholder,
				Strategy:     norm.Strategy,
			},
			FromFallback: norm.Placeholder,
		}
	}

	patch := map[string]any{
		"content":  toMap(res.Content),
		"metadata": toMap(res.Metadata),
		"raw":      raw,
	}
	s.write(ctx, userID, hint.ID, patch)
	return res
}

func (s *Service) regenerateQuiz(ctx context.Context, userID string, hint LessonHint) *Result {
	base, ok := s.lookup(ctx, userID, hint.ID)
	if !ok {
		base = s.generate(ctx, userID, hint, Options{})
	}

	ctx = llm.WithUser(llm.WithPurpose(ctx, "quiz"), userID)
	maxTokens, temperature := s.cfg.quizParams()
	req := llm.Request{
		System: quizSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildQuizUserMessage(base.Content)},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
	if s.cfg.StructuredOutput {
		req.Schema = QuizSchema
	}

	keep := func(reason string, kv ...any) *Result {
		s.log.Warn(reason, append([]any{"user", userID, "lesson", hint.ID}, kv...)...)
		out := *base
		out.FromFallback = true
		return &out
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return keep("quiz regeneration failed, keeping current quiz", "error", err)
	}
	questions, strategy, ok := NormalizeQuiz(resp.Text(), base.Content.Title)
	if !ok {
		return keep("quiz output not parseable, keeping current quiz", "model", resp.Model)
	}

	out := *base
	out.Content.Quiz = questions
	out.Metadata = Metadata{
		GeneratedAt: s.now(),
		Source:      source(resp),
		Strategy:    strategy,
	}
	out.Cached = false
	out.FromFallback = false

	patch := map[string]any{
		"content":  map[string]any{"quiz": toAny(questions)},
		"metadata": toMap(out.Metadata),
	}
	s.write(ctx, userID, hint.ID, patch)
	return &out
}

// lookup reads a cache entry. Read errors and malformed documents count
// as misses.
func (s *Service) lookup(ctx context.Context, userID, lessonID string) (*Result, bool) {
	entry, err := s.cache.Get(ctx, userID, lessonID)
	if err != nil {
		s.log.Warn("cache read failed, treating as miss", "user", userID, "lesson", lessonID, "error", err)
		return nil, false
	}
	if entry == nil {
		return nil, false
	}
	if _, ok := entry.Document["content"].(map[string]any); !ok {
		return nil, false
	}

	data, err := json.Marshal(entry.Document)
	if err != nil {
		return nil, false
	}
	var doc cacheDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		s.log.Warn("cached lesson is malformed, treating as miss", "user", userID, "lesson", lessonID, "error", err)
		return nil, false
	}
	return &Result{
		Content:      doc.Content,
		Metadata:     doc.Metadata,
		Cached:       true,
		FromFallback: doc.Metadata.FromFallback,
	}, true
}

// write merges patch into the cache. Failures are logged, never returned.
func (s *Service) write(ctx context.Context, userID, lessonID string, patch map[string]any) {
	if err := s.cache.Merge(ctx, userID, lessonID, patch); err != nil {
		s.log.Error("cache write failed", "user", userID, "lesson", lessonID, "error", err)
	}
}

func (s *Service) checkSchema(schema *llm.Schema, v any, lessonID string) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := llm.ValidateJSON(schema, data); err != nil {
		s.log.Warn("normalized content does not match schema",
			"lesson", lessonID, "paths", llm.ViolationPaths(err), "error", err)
	}
}

func (s *Service) hint(lessonID string, opts Options) LessonHint {
	hint := LessonHint{ID: lessonID, Title: opts.Title, Subtitle: opts.Subtitle}
	if l, ok := LookupLesson(lessonID); ok {
		if hint.Title == "" {
			hint.Title = l.Title
		}
		if hint.Subtitle == "" {
			hint.Subtitle = l.Subtitle
		}
	}
	return hint
}

func checkIDs(userID, lessonID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrMissingUser
	}
	if strings.TrimSpace(lessonID) == "" {
		return ErrMissingLesson
	}
	return nil
}

func source(resp *llm.Response) string {
	return resp.Provider + ":" + resp.Model
}

func toMap(v any) map[string]any {
	m, _ := toAny(v).(map[string]any)
	if m == nil {
		m = map[string]any{}
	}
	return m
}

// toAny converts typed values into the generic JSON shape the cache stores.
func toAny(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}
