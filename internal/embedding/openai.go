package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/starford/ansuz/internal/apperr"
)

// OpenAIConfig configures the OpenAI-compatible embeddings client. Dimension
// must match the embedding size of the configured model; the vector index is
// created with this size.
type OpenAIConfig struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Dimension int
	Timeout   time.Duration
}

// OpenAI is an embeddings client for OpenAI-compatible endpoints.
type OpenAI struct {
	url    string
	apiKey string
	model  string
	dim    int
	httpc  *http.Client
}

// NewOpenAI creates an embeddings client using the provided configuration.
// The API key is read from the environment variable named by APIKeyEnv and
// may be empty for local inference servers.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("embedding: base URL is required")
	}
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("embedding: dimension must be positive, got %d", cfg.Dimension)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	apiKey := ""
	if cfg.APIKeyEnv != "" {
		apiKey = os.Getenv(cfg.APIKeyEnv)
	}
	return &OpenAI{
		url:    strings.TrimRight(cfg.BaseURL, "/") + "/embeddings",
		apiKey: apiKey,
		model:  cfg.Model,
		dim:    cfg.Dimension,
		httpc:  &http.Client{Timeout: timeout},
	}, nil
}

// Dimension returns the configured embedding size.
func (c *OpenAI) Dimension() int { return c.dim }

// Encode returns the embedding vector for the given text.
func (c *OpenAI) Encode(ctx context.Context, text string) ([]float64, error) {
	body, err := json.Marshal(map[string]any{"input": text, "model": c.model})
	if err != nil {
		return nil, fmt.Errorf("embedding: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embedding: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &apperr.ConnectivityError{Endpoint: c.url, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("embedding: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &apperr.ProviderError{Endpoint: c.url, StatusCode: resp.StatusCode, Body: string(payload)}
	}

	var decoded struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("embedding: decode response: %w", err)
	}
	if len(decoded.Data) == 0 || len(decoded.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("embedding: no embedding returned")
	}
	vec := decoded.Data[0].Embedding
	if len(vec) != c.dim {
		return nil, fmt.Errorf("embedding: got %d dimensions, configured %d", len(vec), c.dim)
	}
	return vec, nil
}
