// Package models defines the domain types for Ansuz.
package models

import (
	"errors"

	"github.com/google/uuid"
)

// Kind is the abstract note format. The host application has dozens of note
// type templates; the addon core only distinguishes two study shapes.
type Kind string

const (
	// KindBasic is a traditional front/back flashcard.
	KindBasic Kind = "basic"
	// KindCloze is a fill-in-the-blank card. Its front holds the cloze text
	// and its back maps to the host's "Back Extra" field, which may be empty.
	KindCloze Kind = "cloze"
)

// Note is a single flashcard's content in the addon's domain model, detached
// from any live host object. Front and back are always carried; tags are
// user-curated categorization and are never rewritten by the formatting
// pipeline.
type Note struct {
	GUID  string   `json:"guid"`
	Front string   `json:"front"`
	Back  string   `json:"back"`
	Tags  []string `json:"tags,omitempty"`
	Kind  Kind     `json:"kind"`
	Deck  string   `json:"deck,omitempty"`
}

// NewNote validates and normalizes a note: the front must be non-empty, the
// kind defaults to basic, and a guid is generated when absent.
func NewNote(n Note) (Note, error) {
	if n.Front == "" {
		return Note{}, errors.New("models: note front is required")
	}
	if n.Kind == "" {
		n.Kind = KindBasic
	}
	if n.GUID == "" {
		n.GUID = uuid.NewString()
	}
	return n, nil
}

// Collection is a named, append-only container of notes. Lookup is a linear
// scan, which is fine at flashcard-collection scale.
type Collection struct {
	Name  string
	notes []Note
}

// NewCollection creates an empty collection.
func NewCollection(name string) *Collection {
	return &Collection{Name: name}
}

// Add appends notes to the collection.
func (c *Collection) Add(notes ...Note) {
	c.notes = append(c.notes, notes...)
}

// Get returns the note with the given guid, if present.
func (c *Collection) Get(guid string) (Note, bool) {
	for _, n := range c.notes {
		if n.GUID == guid {
			return n, true
		}
	}
	return Note{}, false
}

// Notes returns the notes in insertion order.
func (c *Collection) Notes() []Note {
	return c.notes
}

// Len returns the number of notes in the collection.
func (c *Collection) Len() int {
	return len(c.notes)
}
