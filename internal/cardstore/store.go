// Package cardstore provides a SQLite-backed flashcard collection that
// stands in for the host application's note/card storage. Notes hold named
// fields and tags; each note owns one or more cards carrying the host-level
// review flag.
package cardstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/ansuz/internal/apperr"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
	id     INTEGER PRIMARY KEY AUTOINCREMENT,
	guid   TEXT NOT NULL UNIQUE,
	model  TEXT NOT NULL DEFAULT 'basic',
	fields TEXT NOT NULL DEFAULT '{}',
	tags   TEXT NOT NULL DEFAULT '[]',
	deck   TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS cards (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	nid  INTEGER NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
	flag INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_cards_nid ON cards(nid);

CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Note models. Every other host template collapses onto one of these two.
const (
	ModelBasic = "basic"
	ModelCloze = "cloze"
)

// Card flags. FlagReview is the orange flag the host uses to mark a card's
// note as needing human review.
const (
	FlagNone   = 0
	FlagReview = 2
)

// Note is a host-native note: a bag of named fields plus tags. Which fields
// exist depends on the model (Front/Back for basic, Text/Back Extra for
// cloze).
type Note struct {
	ID     int64
	GUID   string
	Model  string
	Fields map[string]string
	Tags   []string
	Deck   string
}

// Card is a single scheduled card belonging to a note.
type Card struct {
	ID     int64
	NoteID int64
	Flag   int
}

// DB wraps a sql.DB with collection operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the collection database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("cardstore: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("cardstore: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("cardstore: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// AddNote inserts a note and one card for it, filling in the generated ids.
func (db *DB) AddNote(n *Note) error {
	fieldsJSON, err := json.Marshal(n.Fields)
	if err != nil {
		return fmt.Errorf("cardstore: marshal fields: %w", err)
	}
	tagsJSON, _ := json.Marshal(nonNil(n.Tags))

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("cardstore: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	res, err := tx.Exec(
		`INSERT INTO notes (guid, model, fields, tags, deck) VALUES (?, ?, ?, ?, ?)`,
		n.GUID, n.Model, string(fieldsJSON), string(tagsJSON), n.Deck,
	)
	if err != nil {
		return fmt.Errorf("cardstore: insert note: %w", err)
	}
	n.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("cardstore: note id: %w", err)
	}
	if _, err := tx.Exec(`INSERT INTO cards (nid, flag) VALUES (?, ?)`, n.ID, FlagNone); err != nil {
		return fmt.Errorf("cardstore: insert card: %w", err)
	}
	return tx.Commit()
}

// GetNote loads a note by id.
func (db *DB) GetNote(id int64) (*Note, error) {
	row := db.conn.QueryRow(`SELECT id, guid, model, fields, tags, deck FROM notes WHERE id = ?`, id)
	return scanNote(row)
}

// GetNoteByGUID loads a note by its guid.
func (db *DB) GetNoteByGUID(guid string) (*Note, error) {
	row := db.conn.QueryRow(`SELECT id, guid, model, fields, tags, deck FROM notes WHERE guid = ?`, guid)
	return scanNote(row)
}

func scanNote(row *sql.Row) (*Note, error) {
	var n Note
	var fieldsJSON, tagsJSON string
	err := row.Scan(&n.ID, &n.GUID, &n.Model, &fieldsJSON, &tagsJSON, &n.Deck)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cardstore: scan note: %w", err)
	}
	if err := json.Unmarshal([]byte(fieldsJSON), &n.Fields); err != nil {
		return nil, fmt.Errorf("cardstore: decode fields: %w", err)
	}
	if err := json.Unmarshal([]byte(tagsJSON), &n.Tags); err != nil {
		return nil, fmt.Errorf("cardstore: decode tags: %w", err)
	}
	return &n, nil
}

// FindNotes returns the ids of all notes in a deck, or of every note when
// deck is empty.
func (db *DB) FindNotes(deck string) ([]int64, error) {
	query := `SELECT id FROM notes ORDER BY id`
	args := []any{}
	if deck != "" {
		query = `SELECT id FROM notes WHERE deck = ? ORDER BY id`
		args = append(args, deck)
	}
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("cardstore: find notes: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("cardstore: scan note id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AllNotes loads every note in a deck (or the whole collection when deck is
// empty), in id order.
func (db *DB) AllNotes(deck string) ([]*Note, error) {
	ids, err := db.FindNotes(deck)
	if err != nil {
		return nil, err
	}
	notes := make([]*Note, 0, len(ids))
	for _, id := range ids {
		n, err := db.GetNote(id)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, nil
}

// FlushNote persists a note's fields and tags.
func (db *DB) FlushNote(n *Note) error {
	fieldsJSON, err := json.Marshal(n.Fields)
	if err != nil {
		return fmt.Errorf("cardstore: marshal fields: %w", err)
	}
	tagsJSON, _ := json.Marshal(nonNil(n.Tags))
	res, err := db.conn.Exec(
		`UPDATE notes SET fields = ?, tags = ? WHERE id = ?`,
		string(fieldsJSON), string(tagsJSON), n.ID,
	)
	if err != nil {
		return fmt.Errorf("cardstore: flush note: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// FindCards returns the ids of all cards belonging to a note.
func (db *DB) FindCards(noteID int64) ([]int64, error) {
	rows, err := db.conn.Query(`SELECT id FROM cards WHERE nid = ? ORDER BY id`, noteID)
	if err != nil {
		return nil, fmt.Errorf("cardstore: find cards: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("cardstore: scan card id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetCard loads a card by id.
func (db *DB) GetCard(id int64) (*Card, error) {
	var c Card
	err := db.conn.QueryRow(`SELECT id, nid, flag FROM cards WHERE id = ?`, id).
		Scan(&c.ID, &c.NoteID, &c.Flag)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cardstore: scan card: %w", err)
	}
	return &c, nil
}

// FlushCard persists a card's flag.
func (db *DB) FlushCard(c *Card) error {
	res, err := db.conn.Exec(`UPDATE cards SET flag = ? WHERE id = ?`, c.Flag, c.ID)
	if err != nil {
		return fmt.Errorf("cardstore: flush card: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// SetFlag sets the flag on every card of a note. Convenience for seeding and
// for the review workflow.
func (db *DB) SetFlag(noteID int64, flag int) error {
	_, err := db.conn.Exec(`UPDATE cards SET flag = ? WHERE nid = ?`, flag, noteID)
	if err != nil {
		return fmt.Errorf("cardstore: set flag: %w", err)
	}
	return nil
}

// CurrentDeck returns the deck the host considers current ("" when unset).
func (db *DB) CurrentDeck() (string, error) {
	var deck string
	err := db.conn.QueryRow(`SELECT value FROM meta WHERE key = 'current_deck'`).Scan(&deck)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("cardstore: current deck: %w", err)
	}
	return deck, nil
}

// SetCurrentDeck records the current deck.
func (db *DB) SetCurrentDeck(deck string) error {
	_, err := db.conn.Exec(
		`INSERT INTO meta (key, value) VALUES ('current_deck', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, deck)
	if err != nil {
		return fmt.Errorf("cardstore: set current deck: %w", err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
