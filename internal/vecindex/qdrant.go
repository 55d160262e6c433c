package vecindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/embedding"
)

// QdrantConfig configures the Qdrant REST adapter.
type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// Qdrant is a minimal REST client to a Qdrant server. The collection is
// created lazily on first use, sized to the embedder's output dimension and
// using dot-product distance. Scores returned by search are therefore raw
// dot products, not normalized probabilities.
type Qdrant struct {
	url        string
	apiKey     string
	collection string
	embedder   embedding.Embedder
	httpc      *http.Client

	mu    sync.Mutex
	ready bool
}

// NewQdrant creates a Qdrant-backed repository.
func NewQdrant(cfg QdrantConfig, embedder embedding.Embedder) *Qdrant {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	collection := cfg.Collection
	if collection == "" {
		collection = "notes"
	}
	return &Qdrant{
		url:        strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		collection: collection,
		embedder:   embedder,
		httpc:      &http.Client{Timeout: timeout},
	}
}

// ensureCollection creates the collection if it does not exist. Qdrant
// answers 200 for an existing collection with the same schema.
func (s *Qdrant) ensureCollection(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     s.embedder.Dimension(),
			"distance": "Dot",
		},
	}
	if err := s.do(ctx, http.MethodPut, fmt.Sprintf("/collections/%s", s.collection), body, nil); err != nil {
		return err
	}
	s.ready = true
	return nil
}

type qdrantPoint struct {
	ID      string         `json:"id"`
	Vector  []float64      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

func (s *Qdrant) point(ctx context.Context, doc Document) (qdrantPoint, error) {
	vec, err := s.embedder.Encode(ctx, doc.Content)
	if err != nil {
		return qdrantPoint{}, fmt.Errorf("vecindex: embed document %s: %w", doc.ID, err)
	}
	return qdrantPoint{
		ID:     doc.ID,
		Vector: vec,
		Payload: map[string]any{
			"content":  doc.Content,
			"source":   doc.Source,
			"metadata": doc.Metadata,
		},
	}, nil
}

// Store upserts a single document.
func (s *Qdrant) Store(ctx context.Context, doc Document) error {
	return s.StoreBatch(ctx, []Document{doc})
}

// StoreBatch upserts documents in one request. A no-op on empty input.
func (s *Qdrant) StoreBatch(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	if err := s.ensureCollection(ctx); err != nil {
		return err
	}
	points := make([]qdrantPoint, 0, len(docs))
	for _, doc := range docs {
		p, err := s.point(ctx, doc)
		if err != nil {
			return err
		}
		points = append(points, p)
	}
	path := fmt.Sprintf("/collections/%s/points?wait=true", s.collection)
	return s.do(ctx, http.MethodPut, path, map[string]any{"points": points}, nil)
}

type qdrantHit struct {
	ID      string         `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

// FindSimilar embeds the query text and runs a vector search.
func (s *Qdrant) FindSimilar(ctx context.Context, query SearchQuery) ([]SearchResult, error) {
	if err := s.ensureCollection(ctx); err != nil {
		return nil, err
	}
	qvec, err := s.embedder.Encode(ctx, query.Text)
	if err != nil {
		return nil, fmt.Errorf("vecindex: embed query: %w", err)
	}
	req := map[string]any{
		"vector":       qvec,
		"limit":        query.Limit(),
		"with_payload": true,
	}
	var resp struct {
		Result []qdrantHit `json:"result"`
	}
	path := fmt.Sprintf("/collections/%s/points/search", s.collection)
	if err := s.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}
	results := make([]SearchResult, 0, len(resp.Result))
	for _, hit := range resp.Result {
		results = append(results, SearchResult{Document: hitDocument(hit.ID, hit.Payload), Score: hit.Score})
	}
	return results, nil
}

// FindByID retrieves a single point by document id.
func (s *Qdrant) FindByID(ctx context.Context, id string) (Document, error) {
	if err := s.ensureCollection(ctx); err != nil {
		return Document{}, err
	}
	req := map[string]any{"ids": []string{id}, "with_payload": true}
	var resp struct {
		Result []qdrantHit `json:"result"`
	}
	path := fmt.Sprintf("/collections/%s/points", s.collection)
	if err := s.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return Document{}, err
	}
	if len(resp.Result) == 0 {
		return Document{}, &apperr.DocumentNotFoundError{ID: id}
	}
	hit := resp.Result[0]
	return hitDocument(hit.ID, hit.Payload), nil
}

// hitDocument maps a Qdrant payload back to a typed document. The backend's
// loose JSON shapes stay behind this boundary.
func hitDocument(id string, payload map[string]any) Document {
	doc := Document{ID: id, Metadata: map[string]string{}}
	if v, ok := payload["content"].(string); ok {
		doc.Content = v
	}
	if v, ok := payload["source"].(string); ok {
		doc.Source = v
	}
	if meta, ok := payload["metadata"].(map[string]any); ok {
		for k, v := range meta {
			if str, ok := v.(string); ok {
				doc.Metadata[k] = str
			}
		}
	}
	return doc
}

func (s *Qdrant) do(ctx context.Context, method, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("vecindex: marshal request: %w", err)
	}
	url := s.url + path
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("vecindex: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.httpc.Do(req)
	if err != nil {
		return &apperr.ConnectivityError{Endpoint: url, Err: err}
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("vecindex: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return &apperr.ProviderError{Endpoint: url, StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("vecindex: decode response: %w", err)
		}
	}
	return nil
}
