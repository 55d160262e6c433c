// Package dupfinder surfaces likely duplicate notes using vector similarity.
package dupfinder

import (
	"context"
	"strings"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/vecindex"
)

// Finder answers "does this note already exist" queries against an indexed
// collection. Only the single most likely duplicate is ever surfaced: a
// ranked list would make the review workflow ambiguous.
type Finder struct {
	repo vecindex.Repository
}

// New bulk-loads every note in the collection into the repository and
// returns a finder querying it.
func New(ctx context.Context, col *models.Collection, repo vecindex.Repository) (*Finder, error) {
	docs := make([]vecindex.Document, 0, col.Len())
	for _, n := range col.Notes() {
		docs = append(docs, vecindex.FromNote(n))
	}
	if err := repo.StoreBatch(ctx, docs); err != nil {
		return nil, err
	}
	return &Finder{repo: repo}, nil
}

// FindDuplicates returns at most one note: the closest indexed match for the
// candidate, never the candidate itself. An empty slice means no match.
// Repository failures propagate unmodified.
func (f *Finder) FindDuplicates(ctx context.Context, note models.Note) ([]models.Note, error) {
	parts := []string{note.Front, note.Back}
	if len(note.Tags) > 0 {
		parts = append(parts, strings.Join(note.Tags, " "))
	}
	// Ask for one extra hit: an already-indexed candidate is its own closest
	// match, and that document must not count as a duplicate.
	query := vecindex.SearchQuery{Text: strings.Join(parts, " "), MaxResults: 2}

	results, err := f.repo.FindSimilar(ctx, query)
	if err != nil {
		return nil, err
	}
	selfID := vecindex.FromNote(note).ID
	notes := make([]models.Note, 0, 1)
	for _, r := range results {
		if r.Document.ID == selfID {
			continue
		}
		n, err := vecindex.ToNote(r.Document)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
		break
	}
	return notes, nil
}
