package chat

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/nibble/internal/llm"
	"github.com/abhisek/nibble/internal/logger"
)

func TestTutor_Reply(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: "Check the serving size first."})
	tutor := NewTutor(mock, nil, logger.Nop(), DefaultConfig())

	reply, err := tutor.Reply(t.Context(), sampleTurns(), "  How do I read a label?  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.FromFallback || reply.Text != "Check the serving size first." {
		t.Fatalf("unexpected reply %+v", reply)
	}

	req := mock.Calls[0]
	if len(req.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(req.Messages))
	}
	if req.Messages[1].Role != llm.RoleAssistant {
		t.Errorf("expected assistant role for tutor turn, got %q", req.Messages[1].Role)
	}
	if req.Messages[2].Content != "How do I read a label?" {
		t.Errorf("expected trimmed message, got %q", req.Messages[2].Content)
	}
	if req.System != tutorSystemPrompt {
		t.Error("expected plain system prompt without summary")
	}
}

func TestTutor_EmptyMessage(t *testing.T) {
	tutor := NewTutor(llm.NewMockProvider(), nil, nil, DefaultConfig())
	for _, msg := range []string{"", "   ", "\n\t"} {
		if _, err := tutor.Reply(t.Context(), nil, msg); !errors.Is(err, ErrEmptyMessage) {
			t.Errorf("%q: expected ErrEmptyMessage, got %v", msg, err)
		}
	}
}

func TestTutor_Fallback(t *testing.T) {
	tests := []struct {
		name string
		resp llm.MockResponse
		cfg  func(*Config)
	}{
		{"provider error", llm.MockResponse{Err: &llm.ErrRateLimit{}}, nil},
		{"empty text", llm.MockResponse{Text: "   "}, nil},
		{"timeout", llm.MockResponse{Text: "late", Delay: time.Second}, func(c *Config) { c.Timeout = 20 * time.Millisecond }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			if tt.cfg != nil {
				tt.cfg(&cfg)
			}
			tutor := NewTutor(llm.NewMockProvider(tt.resp), nil, nil, cfg)
			reply, err := tutor.Reply(t.Context(), nil, "hello")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reply.FromFallback || reply.Text != FallbackReply {
				t.Fatalf("expected fallback reply, got %+v", reply)
			}
		})
	}
}

func longHistory(n int) []Turn {
	turns := make([]Turn, n)
	for i := range turns {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		turns[i] = Turn{Role: role, Text: fmt.Sprintf("turn %d", i)}
	}
	return turns
}

func TestTutor_CompressesLongHistory(t *testing.T) {
	summarizer := llm.NewMockProvider(llm.MockResponse{Text: `{"summary": "They talked about sugar."}`})
	mock := llm.NewMockProvider(llm.MockResponse{Text: "Sure."})
	cfg := DefaultConfig()
	cfg.MaxTurns = 4
	tutor := NewTutor(mock, NewCompressor(summarizer, DefaultCompressorConfig()), nil, cfg)

	if _, err := tutor.Reply(t.Context(), longHistory(10), "and salt?"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summarizer.CallCount() != 1 {
		t.Fatalf("expected 1 summary call, got %d", summarizer.CallCount())
	}
	prompt := summarizer.Calls[0].Messages[0].Content
	if !strings.Contains(prompt, "turn 5") || strings.Contains(prompt, "turn 6") {
		t.Errorf("expected only the 6 oldest turns summarized:\n%s", prompt)
	}

	req := mock.Calls[0]
	if len(req.Messages) != 5 {
		t.Fatalf("expected 4 recent turns plus the message, got %d", len(req.Messages))
	}
	if req.Messages[0].Content != "turn 6" {
		t.Errorf("expected oldest kept turn to be 'turn 6', got %q", req.Messages[0].Content)
	}
	if !strings.Contains(req.System, "They talked about sugar.") {
		t.Error("expected summary in system prompt")
	}
}

func TestTutor_CompressionFailureDropsOldTurns(t *testing.T) {
	summarizer := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	mock := llm.NewMockProvider(llm.MockResponse{Text: "Sure."})
	cfg := DefaultConfig()
	cfg.MaxTurns = 2
	tutor := NewTutor(mock, NewCompressor(summarizer, DefaultCompressorConfig()), nil, cfg)

	reply, err := tutor.Reply(t.Context(), longHistory(5), "ok")
	if err != nil || reply.FromFallback {
		t.Fatalf("unexpected result %+v %v", reply, err)
	}
	if got := len(mock.Calls[0].Messages); got != 3 {
		t.Fatalf("expected 3 messages, got %d", got)
	}
	if mock.Calls[0].System != tutorSystemPrompt {
		t.Error("expected no summary after failed compression")
	}
}
