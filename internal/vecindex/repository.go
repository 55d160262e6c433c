// Package vecindex stores note documents with embeddings and serves
// nearest-neighbor similarity search.
package vecindex

import "context"

// DefaultMaxResults is used when a query does not specify a limit.
const DefaultMaxResults = 5

// Document is the search-index representation of a note. Metadata carries
// everything needed to reconstruct the originating note; documents are never
// mutated after indexing.
type Document struct {
	ID       string
	Content  string
	Source   string
	Metadata map[string]string
}

// SearchQuery describes a similarity search.
type SearchQuery struct {
	Text       string
	MaxResults int
}

// Limit returns the effective result cap.
func (q SearchQuery) Limit() int {
	if q.MaxResults <= 0 {
		return DefaultMaxResults
	}
	return q.MaxResults
}

// SearchResult pairs a document with its relevance score. Higher is more
// similar. The score is the raw backend similarity (dot product or cosine,
// depending on the store) and is not a calibrated probability.
type SearchResult struct {
	Document Document
	Score    float64
}

// Repository stores documents with embeddings and retrieves them by
// similarity or id. Store is an idempotent upsert by document id. Single
// writer usage is assumed; no concurrent-write guarantees are made.
type Repository interface {
	Store(ctx context.Context, doc Document) error
	StoreBatch(ctx context.Context, docs []Document) error
	FindSimilar(ctx context.Context, query SearchQuery) ([]SearchResult, error)
	FindByID(ctx context.Context, id string) (Document, error)
}
