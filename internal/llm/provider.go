package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// Provider is the core abstraction for text generation backends.
// Lesson generation, quiz regeneration and the chat tutor all talk to a
// Provider and never to a vendor SDK directly.
type Provider interface {
	// Generate sends a prompt to the backend. When the request carries a
	// Schema and the backend supports structured output, Content is JSON
	// validated against that schema. Otherwise Content holds the raw text.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the backend.
type Request struct {
	// System is the system prompt.
	System string

	// Messages is the conversation history. Lesson generation sends a
	// single user message; the chat tutor sends the running dialogue.
	Messages []Message

	// Schema is the JSON Schema the response must conform to.
	// Backends without native structured output ignore it.
	Schema *Schema

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies this schema. Kebab-case, e.g. "lesson-content".
	Name string

	// Description is sent to the model to guide generation.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the backend output.
type Response struct {
	// Content is the generated output: validated JSON when a Schema was
	// honoured, raw model text otherwise.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// Provider names the backend family ("gemini", "huggingface", ...).
	Provider string

	// StopReason is one of StopEnd, StopMaxTokens or StopFiltered.
	StopReason string
}

// Text returns the response content as trimmed text.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(string(r.Content))
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// singlePrompt builds the flattened prompt used by plain-text backends that
// take one input string instead of a message list.
func singlePrompt(req Request) string {
	var b strings.Builder
	if req.System != "" {
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}
	for i, m := range req.Messages {
		if i > 0 {
			b.WriteString("\n")
		}
		if len(req.Messages) > 1 {
			if m.Role == RoleAssistant {
				b.WriteString("Assistant: ")
			} else {
				b.WriteString("User: ")
			}
		}
		b.WriteString(m.Content)
	}
	return b.String()
}
