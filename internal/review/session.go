// Package review walks the user through every flagged note in a deck, one
// at a time, with the ability to discard edits or commit them and clear the
// review flag.
package review

import (
	"fmt"
	"strings"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/cardstore"
)

// Session iterates over the notes in a deck that have at least one card
// carrying the review flag. The set of notes is fixed when the session
// starts; flag changes made while it runs do not affect iteration.
type Session struct {
	db   *cardstore.DB
	ids  []int64
	pos  int
	cur  *cardstore.Note
	snap map[string]string
}

// NewSession collects the flagged notes of a deck and positions the session
// on the first one. Returns apperr.ErrNoReviewItems when nothing is flagged.
func NewSession(db *cardstore.DB, deck string) (*Session, error) {
	ids, err := flaggedNotes(db, deck)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, apperr.ErrNoReviewItems
	}
	return &Session{db: db, ids: ids}, nil
}

func flaggedNotes(db *cardstore.DB, deck string) ([]int64, error) {
	noteIDs, err := db.FindNotes(deck)
	if err != nil {
		return nil, err
	}
	var flagged []int64
	for _, nid := range noteIDs {
		cardIDs, err := db.FindCards(nid)
		if err != nil {
			return nil, err
		}
		for _, cid := range cardIDs {
			c, err := db.GetCard(cid)
			if err != nil {
				return nil, err
			}
			if c.Flag == cardstore.FlagReview {
				flagged = append(flagged, nid)
				break
			}
		}
	}
	return flagged, nil
}

// Len returns how many notes the session covers.
func (s *Session) Len() int {
	return len(s.ids)
}

// HasNext reports whether Advance would yield another note.
func (s *Session) HasNext() bool {
	return s.pos+1 < len(s.ids)
}

// Current returns the note under review, loading it on first access, and
// snapshots its fields and tags so RestoreCurrent can undo later edits.
func (s *Session) Current() (*cardstore.Note, error) {
	if s.pos >= len(s.ids) {
		return nil, fmt.Errorf("review: session exhausted")
	}
	if s.cur == nil {
		n, err := s.db.GetNote(s.ids[s.pos])
		if err != nil {
			return nil, err
		}
		s.cur = n
	}
	s.snap = cardstore.Snapshot(s.cur)
	return s.cur, nil
}

// Advance moves to the next flagged note and returns it. At the end of the
// session it returns nil with no error.
func (s *Session) Advance() (*cardstore.Note, error) {
	s.pos++
	s.cur = nil
	s.snap = nil
	if s.pos >= len(s.ids) {
		return nil, nil
	}
	return s.Current()
}

// RestoreCurrent reverts the in-memory note to its snapshot. Nothing is
// written to the collection: a note never committed keeps its stored state.
func (s *Session) RestoreCurrent() error {
	if s.cur == nil || s.snap == nil {
		return fmt.Errorf("review: no note under review")
	}
	fields := make(map[string]string, len(s.snap)-1)
	for k, v := range s.snap {
		if k == cardstore.TagsKey {
			continue
		}
		fields[k] = v
	}
	s.cur.Fields = fields
	s.cur.Tags = strings.Fields(s.snap[cardstore.TagsKey])
	return nil
}

// Commit persists the current note and clears the review flag on all its
// cards.
func (s *Session) Commit() error {
	return s.commit(false)
}

// CommitKeepFlag persists the current note but leaves its review flags in
// place, so the note shows up again in the next session.
func (s *Session) CommitKeepFlag() error {
	return s.commit(true)
}

func (s *Session) commit(keepFlag bool) error {
	if s.cur == nil {
		return fmt.Errorf("review: no note under review")
	}
	if err := s.db.FlushNote(s.cur); err != nil {
		return err
	}
	if keepFlag {
		return nil
	}
	cardIDs, err := s.db.FindCards(s.cur.ID)
	if err != nil {
		return err
	}
	for _, cid := range cardIDs {
		c, err := s.db.GetCard(cid)
		if err != nil {
			return err
		}
		if c.Flag != cardstore.FlagReview {
			continue
		}
		c.Flag = cardstore.FlagNone
		if err := s.db.FlushCard(c); err != nil {
			return err
		}
	}
	return nil
}

// CountReviewNotes returns how many notes in a deck have at least one card
// flagged for review.
func CountReviewNotes(db *cardstore.DB, deck string) (int, error) {
	ids, err := flaggedNotes(db, deck)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}
