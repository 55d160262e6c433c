package cardstore

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/starford/ansuz/internal/apperr"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "collection.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return db
}

func TestAddNote_CreatesCard(t *testing.T) {
	db := testDB(t)
	n := &Note{
		GUID:   "g1",
		Model:  ModelBasic,
		Fields: map[string]string{"Front": "Q", "Back": "A"},
		Tags:   []string{"linux"},
		Deck:   "default",
	}
	if err := db.AddNote(n); err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	if n.ID == 0 {
		t.Fatal("note id not assigned")
	}

	cards, err := db.FindCards(n.ID)
	if err != nil {
		t.Fatalf("FindCards: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("got %d cards, want 1", len(cards))
	}
	c, err := db.GetCard(cards[0])
	if err != nil {
		t.Fatalf("GetCard: %v", err)
	}
	if c.Flag != FlagNone {
		t.Errorf("new card flag = %d, want %d", c.Flag, FlagNone)
	}
}

func TestGetNote_RoundTrip(t *testing.T) {
	db := testDB(t)
	n := &Note{
		GUID:   "g1",
		Model:  ModelCloze,
		Fields: map[string]string{"Text": "The capital of France is {{c1::Paris}}", "Back Extra": "geography"},
		Tags:   []string{"geo", "europe"},
		Deck:   "world",
	}
	if err := db.AddNote(n); err != nil {
		t.Fatalf("AddNote: %v", err)
	}

	got, err := db.GetNote(n.ID)
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if got.Model != ModelCloze {
		t.Errorf("model = %q", got.Model)
	}
	if got.Fields["Text"] != n.Fields["Text"] {
		t.Errorf("text = %q", got.Fields["Text"])
	}
	if len(got.Tags) != 2 || got.Tags[0] != "geo" {
		t.Errorf("tags = %v", got.Tags)
	}
	if got.Deck != "world" {
		t.Errorf("deck = %q", got.Deck)
	}
}

func TestGetNote_Missing(t *testing.T) {
	db := testDB(t)
	if _, err := db.GetNote(42); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestFindNotes_FiltersByDeck(t *testing.T) {
	db := testDB(t)
	for _, n := range []*Note{
		{GUID: "a", Model: ModelBasic, Fields: map[string]string{"Front": "1"}, Deck: "spanish"},
		{GUID: "b", Model: ModelBasic, Fields: map[string]string{"Front": "2"}, Deck: "spanish"},
		{GUID: "c", Model: ModelBasic, Fields: map[string]string{"Front": "3"}, Deck: "french"},
	} {
		if err := db.AddNote(n); err != nil {
			t.Fatalf("AddNote: %v", err)
		}
	}

	ids, err := db.FindNotes("spanish")
	if err != nil {
		t.Fatalf("FindNotes: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("spanish notes = %d, want 2", len(ids))
	}
	all, err := db.FindNotes("")
	if err != nil {
		t.Fatalf("FindNotes all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("all notes = %d, want 3", len(all))
	}
}

func TestFlushNote_PersistsFields(t *testing.T) {
	db := testDB(t)
	n := &Note{GUID: "g", Model: ModelBasic, Fields: map[string]string{"Front": "old", "Back": "b"}}
	if err := db.AddNote(n); err != nil {
		t.Fatalf("AddNote: %v", err)
	}

	n.Fields["Front"] = "new"
	if err := db.FlushNote(n); err != nil {
		t.Fatalf("FlushNote: %v", err)
	}
	got, err := db.GetNote(n.ID)
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if got.Fields["Front"] != "new" {
		t.Errorf("front = %q, want %q", got.Fields["Front"], "new")
	}
}

func TestFlushCard_PersistsFlag(t *testing.T) {
	db := testDB(t)
	n := &Note{GUID: "g", Model: ModelBasic, Fields: map[string]string{"Front": "f"}}
	if err := db.AddNote(n); err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	cards, err := db.FindCards(n.ID)
	if err != nil {
		t.Fatalf("FindCards: %v", err)
	}
	c, err := db.GetCard(cards[0])
	if err != nil {
		t.Fatalf("GetCard: %v", err)
	}

	c.Flag = FlagReview
	if err := db.FlushCard(c); err != nil {
		t.Fatalf("FlushCard: %v", err)
	}
	got, err := db.GetCard(c.ID)
	if err != nil {
		t.Fatalf("GetCard: %v", err)
	}
	if got.Flag != FlagReview {
		t.Errorf("flag = %d, want %d", got.Flag, FlagReview)
	}
}

func TestCurrentDeck_DefaultsEmpty(t *testing.T) {
	db := testDB(t)
	deck, err := db.CurrentDeck()
	if err != nil {
		t.Fatalf("CurrentDeck: %v", err)
	}
	if deck != "" {
		t.Errorf("deck = %q, want empty", deck)
	}

	if err := db.SetCurrentDeck("spanish"); err != nil {
		t.Fatalf("SetCurrentDeck: %v", err)
	}
	if err := db.SetCurrentDeck("french"); err != nil {
		t.Fatalf("SetCurrentDeck again: %v", err)
	}
	deck, err = db.CurrentDeck()
	if err != nil {
		t.Fatalf("CurrentDeck: %v", err)
	}
	if deck != "french" {
		t.Errorf("deck = %q, want french", deck)
	}
}
