package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/abhisek/nibble/internal/llm"
	"github.com/abhisek/nibble/internal/logger"
)

// FallbackReply is sent when the model cannot be reached.
const FallbackReply = "Sorry, I couldn't get a reply right now."

// ErrEmptyMessage is returned for blank messages.
var ErrEmptyMessage = errors.New("message is empty")

// Role identifies who sent a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of a conversation.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

func (t Turn) speaker() string {
	if t.Role == RoleAssistant {
		return "Tutor"
	}
	return "Learner"
}

// Reply is the tutor's answer.
type Reply struct {
	Text         string `json:"text"`
	FromFallback bool   `json:"fromFallback"`
}

// Tutor answers learner questions.
type Tutor struct {
	provider   llm.Provider
	compressor *Compressor
	cfg        Config
	log        *logger.Logger
}

// NewTutor creates a tutor. compressor may be nil, in which case history
// beyond MaxTurns is dropped.
func NewTutor(provider llm.Provider, compressor *Compressor, log *logger.Logger, cfg Config) *Tutor {
	if log == nil {
		log = logger.Nop()
	}
	return &Tutor{
		provider:   provider,
		compressor: compressor,
		cfg:        cfg,
		log:        log.With("component", "chat"),
	}
}

// Reply answers message given the prior conversation. Provider failures
// produce FallbackReply rather than an error.
func (t *Tutor) Reply(ctx context.Context, history []Turn, message string) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, ErrEmptyMessage
	}

	if t.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.cfg.Timeout)
		defer cancel()
	}

	summary, recent := t.fold(ctx, history)

	msgs := make([]llm.Message, 0, len(recent)+1)
	for _, turn := range recent {
		if strings.TrimSpace(turn.Text) == "" {
			continue
		}
		role := llm.RoleUser
		if turn.Role == RoleAssistant {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: turn.Text})
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: message})

	resp, err := t.provider.Generate(llm.WithPurpose(ctx, "chat"), llm.Request{
		System:      buildSystemPrompt(summary),
		Messages:    msgs,
		MaxTokens:   t.cfg.MaxTokens,
		Temperature: t.cfg.Temperature,
	})
	if err != nil {
		t.log.Warn("chat reply failed", "error", err)
		return Reply{Text: FallbackReply, FromFallback: true}, nil
	}

	text := resp.Text()
	if text == "" {
		t.log.Warn("chat reply was empty", "model", resp.Model)
		return Reply{Text: FallbackReply, FromFallback: true}, nil
	}
	return Reply{Text: text}, nil
}

// fold keeps the last MaxTurns turns and summarizes the rest.
func (t *Tutor) fold(ctx context.Context, history []Turn) (string, []Turn) {
	if t.cfg.MaxTurns <= 0 || len(history) <= t.cfg.MaxTurns {
		return "", history
	}
	cut := len(history) - t.cfg.MaxTurns
	older, recent := history[:cut], history[cut:]
	if t.compressor == nil {
		return "", recent
	}
	summary, err := t.compressor.Summarize(ctx, older)
	if err != nil {
		t.log.Warn("history compression failed, dropping older turns", "turns", len(older), "error", err)
		return "", recent
	}
	return summary, recent
}
