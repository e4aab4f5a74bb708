package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/nibble/internal/chat"
	"github.com/abhisek/nibble/internal/config"
	"github.com/abhisek/nibble/internal/lessons"
	"github.com/abhisek/nibble/internal/llm"
	"github.com/abhisek/nibble/internal/logger"
	"github.com/abhisek/nibble/internal/progress"
	"github.com/abhisek/nibble/internal/store"
)

const lessonJSON = `{"title": "Reading Labels", "overview": "o", "sections": [{"heading": "h", "body": "b"}],
	"quiz": [{"question": "q1", "options": ["a", "b", "c", "d"], "correctIndex": 1}], "notes": ["n"]}`

type testEnv struct {
	server *Server
	mock   *llm.MockProvider
	store  *store.Store
}

func newTestEnv(t *testing.T, secret string, mutate func(*config.ServerConfig)) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := store.Open("file:api_" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	mock := llm.NewMockProvider()
	log := logger.Nop()
	lessonSvc := lessons.NewService(mock, st.CacheRepo(), log, lessons.DefaultConfig())
	t.Cleanup(lessonSvc.Wait)

	cfg := config.ServerConfig{Port: "0", AllowedOrigins: []string{"*"}}
	if mutate != nil {
		mutate(&cfg)
	}

	srv := New(Deps{
		Lessons:  lessonSvc,
		Progress: progress.NewService(st.ProgressRepo(), lessonSvc, log),
		Tutor:    chat.NewTutor(mock, nil, log, chat.DefaultConfig()),
		Health:   []Pinger{st},
		Log:      log,
	}, cfg, secret)

	return &testEnv{server: srv, mock: mock, store: st}
}

func (e *testEnv) do(t *testing.T, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var env struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env.Data
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env.Error
}

func token(t *testing.T, secret, subject string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return "Bearer " + s
}

func TestHealthAndCatalog(t *testing.T) {
	env := newTestEnv(t, "", nil)

	w := env.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(headerRequestID))

	w = env.do(t, http.MethodGet, "/api/v1/lessons", "")
	require.Equal(t, http.StatusOK, w.Code)
	catalog := decodeData[[]lessons.Lesson](t, w)
	assert.Len(t, catalog, 8)

	w = env.do(t, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, CodeNotFound, decodeError(t, w).Code)
}

func TestHealth_StoreDown(t *testing.T) {
	env := newTestEnv(t, "", nil)
	env.server.deps.Health = append(env.server.deps.Health, pingerFunc(func(context.Context) error {
		return errors.New("down")
	}))

	w := env.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestLessonContent_GenerateCacheRegenerate(t *testing.T) {
	env := newTestEnv(t, "", nil)
	env.mock.AddResponse(llm.MockResponse{Text: lessonJSON})

	w := env.do(t, http.MethodGet, "/api/v1/users/u1/lessons/2/content", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decodeData[lessons.Result](t, w)
	assert.False(t, res.Cached)
	assert.Equal(t, "Reading Labels", res.Content.Title)
	assert.Len(t, res.Content.Quiz, 3)
	assert.Equal(t, "mock:mock", res.Metadata.Source)

	w = env.do(t, http.MethodGet, "/api/v1/users/u1/lessons/2/content", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeData[lessons.Result](t, w).Cached)
	assert.Equal(t, 1, env.mock.CallCount())

	// No queued response: the regeneration falls back to the backup.
	w = env.do(t, http.MethodGet, "/api/v1/users/u1/lessons/2/content?regenerate=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	res = decodeData[lessons.Result](t, w)
	assert.True(t, res.FromFallback)
	assert.Equal(t, lessons.SourceBackup, res.Metadata.Source)

	w = env.do(t, http.MethodGet, "/api/v1/users/u1/lessons/2/content?regenerate=maybe", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodDelete, "/api/v1/users/u1/lessons/2/content", "")
	require.Equal(t, http.StatusOK, w.Code)
	entry, err := env.store.CacheRepo().Get(context.Background(), "u1", "2")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestRegenerateQuiz(t *testing.T) {
	env := newTestEnv(t, "", nil)
	env.mock.AddResponse(llm.MockResponse{Text: lessonJSON})
	env.mock.AddResponse(llm.MockResponse{Text: `{"quiz": [{"question": "fresh", "options": ["a", "b", "c", "d"], "correctIndex": 2}]}`})

	w := env.do(t, http.MethodPost, "/api/v1/users/u1/lessons/2/quiz/regenerate", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decodeData[lessons.Result](t, w)
	assert.False(t, res.FromFallback)
	assert.Equal(t, "fresh", res.Content.Quiz[0].Question)
	assert.Equal(t, "h", res.Content.Sections[0].Heading)
}

func TestSubmitQuizAndProgress(t *testing.T) {
	env := newTestEnv(t, "", nil)

	// Lesson 1 backup quiz: every answer is option 0.
	w := env.do(t, http.MethodPost, "/api/v1/users/u1/lessons/1/quiz/submit", `{"answers": {"0": 0, "1": 0, "2": 3}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decodeData[progress.QuizOutcome](t, w)
	assert.Equal(t, 2, out.Score.Correct)
	assert.Equal(t, 67, out.Score.Percent)
	assert.Equal(t, []string{"1"}, out.Profile.CompletedLessons)

	w = env.do(t, http.MethodPost, "/api/v1/users/u1/lessons/3/complete", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/users/u1/progress", "")
	require.Equal(t, http.StatusOK, w.Code)
	sum := decodeData[progress.Summary](t, w)
	assert.Equal(t, 2, sum.Completed)
	assert.Equal(t, 8, sum.Total)
	require.NotNil(t, sum.NextLesson)
	assert.Equal(t, "2", sum.NextLesson.ID)

	w = env.do(t, http.MethodGet, "/api/v1/users/u1/activities?limit=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	acts := decodeData[[]progress.Activity](t, w)
	require.Len(t, acts, 2)
	assert.Equal(t, progress.KindLessonCompleted, acts[0].Kind)
	assert.Equal(t, "3", acts[0].LessonID)

	w = env.do(t, http.MethodGet, "/api/v1/users/u1/activities?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/users/u1/lessons/1/quiz/submit", `{"answers": {"first": 0}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(t, http.MethodPost, "/api/v1/users/u1/lessons/1/quiz/submit", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChat(t *testing.T) {
	env := newTestEnv(t, "", nil)
	env.mock.AddResponse(llm.MockResponse{Text: "Eat more fibre."})

	w := env.do(t, http.MethodPost, "/api/v1/chat", `{"message": "tips?", "history": [{"role": "user", "text": "hi"}]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	reply := decodeData[chat.Reply](t, w)
	assert.Equal(t, "Eat more fibre.", reply.Text)
	assert.False(t, reply.FromFallback)

	w = env.do(t, http.MethodPost, "/api/v1/chat", `{"message": "   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, CodeBadRequest, decodeError(t, w).Code)

	// Queue is empty now: provider unavailable means the fallback reply.
	w = env.do(t, http.MethodPost, "/api/v1/chat", `{"message": "again"}`)
	require.Equal(t, http.StatusOK, w.Code)
	reply = decodeData[chat.Reply](t, w)
	assert.True(t, reply.FromFallback)
	assert.Equal(t, chat.FallbackReply, reply.Text)
}

func TestAuth(t *testing.T) {
	const secret = "test-secret"
	env := newTestEnv(t, secret, nil)

	w := env.do(t, http.MethodGet, "/api/v1/users/u1/progress", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, CodeUnauthorized, decodeError(t, w).Code)

	w = env.do(t, http.MethodGet, "/api/v1/users/u1/progress", "", "Authorization", token(t, "wrong", "u1"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/users/u1/progress", "", "Authorization", token(t, secret, "u2"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, CodeForbidden, decodeError(t, w).Code)

	w = env.do(t, http.MethodGet, "/api/v1/users/u1/progress", "", "Authorization", token(t, secret, "u1"))
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/chat", `{"message": "hi"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// The catalog stays public.
	w = env.do(t, http.MethodGet, "/api/v1/lessons", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, "", func(c *config.ServerConfig) {
		c.RateLimit = config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 2}
	})

	for i := 0; i < 2; i++ {
		w := env.do(t, http.MethodGet, "/api/v1/lessons", "")
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := env.do(t, http.MethodGet, "/api/v1/lessons", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, CodeRateLimited, decodeError(t, w).Code)

	// Health is outside the limited group.
	w = env.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, "", nil)
	env.do(t, http.MethodGet, "/api/v1/lessons", "")
	env.do(t, http.MethodGet, "/api/v1/users/u1/lessons/4/content", "")

	w := env.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `http_requests_total{endpoint="/api/v1/lessons",method="GET",status="200"} 1`)
	assert.Contains(t, body, `nibble_lesson_results_total{outcome="fallback"} 1`)
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t, "", func(c *config.ServerConfig) {
		c.AllowedOrigins = []string{"https://app.example"}
	})

	w := env.do(t, http.MethodGet, "/api/v1/lessons", "", "Origin", "https://app.example")
	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = env.do(t, http.MethodGet, "/api/v1/lessons", "", "Origin", "https://evil.example")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
