// Package llm provides an HTTP client for OpenAI-compatible completion and
// chat endpoints, including guided (JSON-schema constrained) generation.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/starford/ansuz/internal/apperr"
)

// Mode selects the request shape and endpoint path.
type Mode string

const (
	// ModeCompletion targets v1/completions with a plain prompt body.
	ModeCompletion Mode = "completions"
	// ModeChat targets v1/chat/completions with a single user message.
	ModeChat Mode = "chat"
)

// Config configures the completion client. TopP, TopK, and MinP are
// provider-specific sampling parameters; nil values are omitted from the
// request entirely rather than sent as zeroes.
type Config struct {
	BaseURL     string
	Mode        Mode
	Model       string
	MaxTokens   int
	Temperature float64
	TopP        *float64
	TopK        *int
	MinP        *float64
	Timeout     time.Duration
}

// Client issues blocking completion requests. No retries are performed here;
// callers decide whether a failed call is worth repeating.
type Client struct {
	url      string
	mode     Mode
	model    string
	base     map[string]any
	optional map[string]any
	httpc    *http.Client
}

// New creates a completion client for the configured endpoint mode.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	mode := cfg.Mode
	if mode == "" {
		mode = ModeCompletion
	}
	path := "/v1/completions"
	if mode == ModeChat {
		path = "/v1/chat/completions"
	}

	optional := map[string]any{}
	if cfg.TopP != nil {
		optional["top_p"] = *cfg.TopP
	}
	if cfg.TopK != nil {
		optional["top_k"] = *cfg.TopK
	}
	if cfg.MinP != nil {
		optional["min_p"] = *cfg.MinP
	}

	return &Client{
		url:   strings.TrimRight(cfg.BaseURL, "/") + path,
		mode:  mode,
		model: cfg.Model,
		base: map[string]any{
			"model":       cfg.Model,
			"max_tokens":  cfg.MaxTokens,
			"temperature": cfg.Temperature,
		},
		optional: optional,
		httpc:    &http.Client{Timeout: timeout},
	}
}

// URL returns the resolved endpoint URL.
func (c *Client) URL() string { return c.url }

// RunOption mutates the request payload before it is sent.
type RunOption func(payload map[string]any)

// WithGuidedJSON constrains generated output to conform to the given JSON
// Schema. Supported by vLLM-style inference servers via the guided_json
// request field.
func WithGuidedJSON(schema any) RunOption {
	return func(payload map[string]any) {
		payload["guided_json"] = schema
	}
}

// WithMaxTokens overrides the configured completion length for one call.
func WithMaxTokens(n int) RunOption {
	return func(payload map[string]any) {
		payload["max_tokens"] = n
	}
}

// Run sends the prompt and returns the generated text from the first choice.
//
// Failure modes: *apperr.ConnectivityError when the endpoint is unreachable,
// *apperr.ProviderError on a non-success status. A successful response with
// missing fields is a contract violation and surfaces as a decode error.
func (c *Client) Run(ctx context.Context, prompt string, opts ...RunOption) (string, error) {
	payload := make(map[string]any, len(c.base)+len(c.optional)+2)
	for k, v := range c.base {
		payload[k] = v
	}
	for k, v := range c.optional {
		payload[k] = v
	}
	if c.mode == ModeChat {
		payload["messages"] = []map[string]string{{"role": "user", "content": prompt}}
	} else {
		payload["prompt"] = prompt
	}
	for _, opt := range opts {
		opt(payload)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("llm: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("llm: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", &apperr.ConnectivityError{Endpoint: c.url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("llm: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &apperr.ProviderError{Endpoint: c.url, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var decoded struct {
		Choices []struct {
			Text    string `json:"text"`
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("llm: decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("llm: response has no choices")
	}
	if c.mode == ModeChat {
		return decoded.Choices[0].Message.Content, nil
	}
	return decoded.Choices[0].Text, nil
}

// Complete runs the prompt and wraps the generated text in a CompletionResult.
func (c *Client) Complete(ctx context.Context, prompt string, opts ...RunOption) (CompletionResult, error) {
	text, err := c.Run(ctx, prompt, opts...)
	if err != nil {
		return CompletionResult{}, err
	}
	return CompletionResult{Text: text, Source: c.model, Timestamp: time.Now()}, nil
}
