package llm

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/abhisek/nibble/internal/logger"
	"github.com/abhisek/nibble/internal/store"
)

// Stored bodies are capped so a runaway response cannot bloat the event log.
const maxLoggedBody = 64 << 10

// LoggingProvider records each call in the event log and writes one log
// line for it. Failing to record never fails the call.
type LoggingProvider struct {
	inner   Provider
	backend string
	events  store.EventRepo
	log     *logger.Logger
}

// WithLogging wraps p. backend is the provider family stored on each event;
// a nil repo only logs.
func WithLogging(p Provider, backend string, repo store.EventRepo, log *logger.Logger) Provider {
	if log == nil {
		log = logger.Nop()
	}
	return &LoggingProvider{inner: p, backend: backend, events: repo, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	elapsed := time.Since(start)

	ev := store.LLMRequestEventData{
		Provider:    l.backend,
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		UserID:      UserFrom(ctx),
		LatencyMs:   elapsed.Milliseconds(),
		Success:     err == nil,
		RequestBody: requestRecord(req),
	}
	stop := ""
	if resp != nil {
		if resp.Model != "" {
			ev.Model = resp.Model
		}
		ev.InputTokens, ev.OutputTokens = resp.Usage.InputTokens, resp.Usage.OutputTokens
		ev.ResponseBody = capBody(string(resp.Content))
		stop = resp.StopReason
	}

	fields := []any{
		"provider", l.backend,
		"model", ev.Model,
		"purpose", ev.Purpose,
		"user", ev.UserID,
		"latency", elapsed,
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
		l.log.Warn("llm request failed", append(fields, "kind", errorKind(err), "error", err)...)
	} else {
		l.log.Debug("llm request", append(fields, "stop", stop, "output_tokens", ev.OutputTokens)...)
	}

	if l.events != nil {
		if rerr := l.events.AppendLLMRequest(ctx, ev); rerr != nil {
			l.log.Warn("record llm event", "error", rerr)
		}
	}
	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

type loggedRequest struct {
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	Schema      string    `json:"schema,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

// requestRecord is the JSON stored as an event's request body. Only the
// schema name is kept; definitions are static and large.
func requestRecord(req Request) string {
	rec := loggedRequest{
		System:      req.System,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if rec.Messages == nil {
		rec.Messages = []Message{}
	}
	if req.Schema != nil {
		rec.Schema = req.Schema.Name
	}
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return ""
	}
	return capBody(string(b))
}

func capBody(s string) string {
	if len(s) <= maxLoggedBody {
		return s
	}
	return s[:maxLoggedBody] + "\n…(truncated)"
}

// errorKind is a short label for the error taxonomy, used in log fields.
func errorKind(err error) string {
	var (
		rl   *ErrRateLimit
		inv  *ErrInvalidResponse
		un   *ErrProviderUnavailable
		auth *ErrAuth
		mt   *ErrMaxTokensExceeded
		to   *ErrTimeout
	)
	switch {
	case errors.As(err, &rl):
		return "rate_limit"
	case errors.As(err, &auth):
		return "auth"
	case errors.As(err, &to), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &mt):
		return "max_tokens"
	case errors.As(err, &inv):
		return "invalid_response"
	case errors.As(err, &un):
		return "unavailable"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}
	return "other"
}
