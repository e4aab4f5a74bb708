package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/nibble/internal/jsonrepair"
	"github.com/abhisek/nibble/internal/llm"
)

// SummarySchema defines the JSON schema for history summaries.
var SummarySchema = &llm.Schema{
	Name:        "chat-summary",
	Description: "Compressed summary of the earlier part of a tutoring conversation",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{
				"type":        "string",
				"description": "2-4 sentence summary of the conversation so far",
			},
		},
		"required":             []any{"summary"},
		"additionalProperties": false,
	},
}

// Compressor folds old conversation turns into a short summary.
type Compressor struct {
	provider llm.Provider
	cfg      CompressorConfig
}

// NewCompressor creates a history compressor.
func NewCompressor(provider llm.Provider, cfg CompressorConfig) *Compressor {
	return &Compressor{provider: provider, cfg: cfg}
}

type summaryOutput struct {
	Summary string `json:"summary"`
}

// Summarize returns a summary of turns. Backends that ignore the schema
// may answer in prose, which is used as is.
func (c *Compressor) Summarize(ctx context.Context, turns []Turn) (string, error) {
	if len(turns) == 0 {
		return "", nil
	}
	ctx = llm.WithPurpose(ctx, "chat-compress")

	req := llm.Request{
		System: summarySystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildSummaryUserMessage(turns)},
		},
		Schema:      SummarySchema,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}

	resp, err := c.provider.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("history compression: %w", err)
	}

	var out summaryOutput
	if err := json.Unmarshal(resp.Content, &out); err == nil && out.Summary != "" {
		return strings.TrimSpace(out.Summary), nil
	}
	if obj, _, ok := jsonrepair.Parse(resp.Text()); ok {
		if s, _ := obj["summary"].(string); strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s), nil
		}
	}
	if text := resp.Text(); text != "" {
		return text, nil
	}
	return "", fmt.Errorf("history compression: empty response")
}
