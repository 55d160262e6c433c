// Package testutil provides shared test helpers for setting up collections.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/starford/ansuz/internal/cardstore"
)

// TestCollection creates a temporary collection database that is
// automatically cleaned up.
func TestCollection(t *testing.T) *cardstore.DB {
	t.Helper()
	db, err := cardstore.Open(filepath.Join(t.TempDir(), "collection.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// SeedBasicNote inserts a basic note and optionally flags its cards for
// review.
func SeedBasicNote(t *testing.T, db *cardstore.DB, guid, front, back string, flagged bool, tags ...string) *cardstore.Note {
	t.Helper()
	n := &cardstore.Note{
		GUID:   guid,
		Model:  cardstore.ModelBasic,
		Fields: map[string]string{"Front": front, "Back": back},
		Tags:   tags,
	}
	if err := db.AddNote(n); err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	if flagged {
		if err := db.SetFlag(n.ID, cardstore.FlagReview); err != nil {
			t.Fatalf("SetFlag: %v", err)
		}
	}
	return n
}
