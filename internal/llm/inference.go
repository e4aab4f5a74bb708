package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultHuggingFaceBaseURL = "https://api-inference.huggingface.co"
	defaultTextGenMaxTokens   = 256
	maxResponseBytes          = 4 << 20
)

// HuggingFaceProvider implements Provider against the hosted inference API:
// POST {base}/models/{model} with {"inputs": ..., "parameters": ...}.
type HuggingFaceProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// NewHuggingFaceProvider creates a provider for the hosted inference API.
func NewHuggingFaceProvider(cfg HuggingFaceConfig) (*HuggingFaceProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("huggingface API key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("huggingface model is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultHuggingFaceBaseURL
	}
	return &HuggingFaceProvider{
		client:  &http.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

func (p *HuggingFaceProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	params := map[string]any{
		"return_full_text": false,
	}
	if req.MaxTokens > 0 {
		params["max_new_tokens"] = req.MaxTokens
	}
	if req.Temperature > 0 {
		params["temperature"] = req.Temperature
		params["do_sample"] = true
	}

	payload := map[string]any{
		"inputs":     singlePrompt(req),
		"parameters": params,
		"options":    map[string]any{"wait_for_model": true},
	}

	headers := map[string]string{"Authorization": "Bearer " + p.apiKey}
	body, err := postJSON(ctx, p.client, p.baseURL+"/models/"+p.model, headers, payload)
	if err != nil {
		return nil, err
	}

	return textResponse(body, p.model, "huggingface")
}

func (p *HuggingFaceProvider) ModelID() string {
	return p.model
}

// TextGenProvider implements Provider against a self-hosted generation
// server exposing POST /generate {"prompt", "max_new_tokens", ...} -> {"text"}.
type TextGenProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// NewTextGenProvider creates a provider for a self-hosted /generate server.
func NewTextGenProvider(cfg TextGenConfig) (*TextGenProvider, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("textgen base URL is required")
	}
	model := cfg.Model
	if model == "" {
		model = "textgen"
	}
	return &TextGenProvider{
		client:  &http.Client{},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   model,
	}, nil
}

func (p *TextGenProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultTextGenMaxTokens
	}
	payload := map[string]any{
		"prompt":         singlePrompt(req),
		"max_new_tokens": maxTokens,
		"temperature":    req.Temperature,
		"do_sample":      req.Temperature > 0,
	}

	var headers map[string]string
	if p.apiKey != "" {
		headers = map[string]string{"x-api-key": p.apiKey}
	}
	body, err := postJSON(ctx, p.client, p.baseURL+"/generate", headers, payload)
	if err != nil {
		return nil, err
	}

	return textResponse(body, p.model, "textgen")
}

func (p *TextGenProvider) ModelID() string {
	return p.model
}

// textResponse unwraps a plain-text backend body into a Response.
func textResponse(body []byte, model, provider string) (*Response, error) {
	text := UnwrapText(body)
	if text == "" {
		return nil, &ErrInvalidResponse{
			Content: body,
			Err:     fmt.Errorf("empty generation from %s", provider),
		}
	}
	return &Response{
		Content:    json.RawMessage(text),
		Model:      model,
		Provider:   provider,
		StopReason: StopEnd,
	}, nil
}

// postJSON sends payload as JSON and returns the response body, mapping
// transport failures and non-success statuses onto the error taxonomy.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, &ErrProviderUnavailable{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &ErrProviderUnavailable{StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := fmt.Errorf("status %d: %s", resp.StatusCode, truncateBody(body, 300))
		return nil, statusError(resp.StatusCode, retryAfterFrom(resp), statusErr)
	}

	return body, nil
}

func truncateBody(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
