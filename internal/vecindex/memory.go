package vecindex

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/embedding"
)

// Memory is an in-process vector store using brute-force dot-product scoring.
// It is the default backing store: the collection sizes involved (thousands
// of flashcards) do not justify an external index.
type Memory struct {
	embedder embedding.Embedder

	mu   sync.RWMutex
	docs []Document
	vecs [][]float64
	byID map[string]int
}

// NewMemory creates an empty in-memory store using the given embedder.
func NewMemory(embedder embedding.Embedder) *Memory {
	return &Memory{embedder: embedder, byID: make(map[string]int)}
}

// Store upserts a single document by id.
func (m *Memory) Store(ctx context.Context, doc Document) error {
	vec, err := m.embedder.Encode(ctx, doc.Content)
	if err != nil {
		return fmt.Errorf("vecindex: embed document %s: %w", doc.ID, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if i, ok := m.byID[doc.ID]; ok {
		m.docs[i] = doc
		m.vecs[i] = vec
		return nil
	}
	m.byID[doc.ID] = len(m.docs)
	m.docs = append(m.docs, doc)
	m.vecs = append(m.vecs, vec)
	return nil
}

// StoreBatch upserts documents one by one. A no-op on empty input.
func (m *Memory) StoreBatch(ctx context.Context, docs []Document) error {
	for _, doc := range docs {
		if err := m.Store(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

// FindSimilar scores every stored document against the query text and
// returns the top matches in descending score order.
func (m *Memory) FindSimilar(ctx context.Context, query SearchQuery) ([]SearchResult, error) {
	qvec, err := m.embedder.Encode(ctx, query.Text)
	if err != nil {
		return nil, fmt.Errorf("vecindex: embed query: %w", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	results := make([]SearchResult, 0, len(m.docs))
	for i, doc := range m.docs {
		results = append(results, SearchResult{Document: doc, Score: dot(m.vecs[i], qvec)})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if limit := query.Limit(); len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// FindByID returns the stored document with the given id.
func (m *Memory) FindByID(_ context.Context, id string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i, ok := m.byID[id]; ok {
		return m.docs[i], nil
	}
	return Document{}, &apperr.DocumentNotFoundError{ID: id}
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
