package vecindex

import (
	"context"
	"sync"

	"github.com/starford/ansuz/internal/apperr"
)

// Scripted is a test double Repository that replays pre-programmed search
// responses in order. An exhausted queue yields empty results, matching a
// real index with no matches. Stored documents are retrievable by id.
type Scripted struct {
	mu        sync.Mutex
	responses [][]SearchResult
	docs      map[string]Document
	stored    []Document
	queries   []SearchQuery
}

// NewScripted creates a scripted repository returning the given responses
// one per FindSimilar call.
func NewScripted(responses ...[]SearchResult) *Scripted {
	return &Scripted{responses: responses, docs: make(map[string]Document)}
}

// Store records the document.
func (s *Scripted) Store(_ context.Context, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
	s.stored = append(s.stored, doc)
	return nil
}

// StoreBatch records all documents.
func (s *Scripted) StoreBatch(ctx context.Context, docs []Document) error {
	for _, doc := range docs {
		if err := s.Store(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

// FindSimilar pops the next canned response, truncated to the query limit.
func (s *Scripted) FindSimilar(_ context.Context, query SearchQuery) ([]SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	if len(s.responses) == 0 {
		return nil, nil
	}
	next := s.responses[0]
	s.responses = s.responses[1:]
	if limit := query.Limit(); len(next) > limit {
		next = next[:limit]
	}
	return next, nil
}

// FindByID returns a previously stored document.
func (s *Scripted) FindByID(_ context.Context, id string) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.docs[id]; ok {
		return doc, nil
	}
	return Document{}, &apperr.DocumentNotFoundError{ID: id}
}

// Stored returns every document stored so far, in order.
func (s *Scripted) Stored() []Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Document(nil), s.stored...)
}

// Queries returns every search query received so far, in order.
func (s *Scripted) Queries() []SearchQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SearchQuery(nil), s.queries...)
}
