// Package vecsync keeps the vector index aligned with the collection: a
// bulk re-index primitive plus a filesystem watcher that triggers it when
// the host writes to the collection database.
package vecsync

import (
	"context"
	"log/slog"

	"github.com/starford/ansuz/internal/cardstore"
	"github.com/starford/ansuz/internal/vecindex"
)

// Sync re-indexes every note of a deck into the repository and returns how
// many notes were indexed. Document ids are derived from note guids, so
// repeated syncs overwrite rather than accumulate.
func Sync(ctx context.Context, db *cardstore.DB, repo vecindex.Repository, deck string, logger *slog.Logger) (int, error) {
	notes, err := db.AllNotes(deck)
	if err != nil {
		return 0, err
	}
	docs := make([]vecindex.Document, 0, len(notes))
	for _, n := range notes {
		docs = append(docs, vecindex.FromNote(cardstore.ToDomain(n)))
	}
	if err := repo.StoreBatch(ctx, docs); err != nil {
		return 0, err
	}
	logger.Info("vecsync: indexed collection", slog.Int("notes", len(docs)))
	return len(docs), nil
}
