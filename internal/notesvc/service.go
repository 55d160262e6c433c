// Package notesvc coordinates the collection, the formatter, the duplicate
// finder, and review sessions behind one API used by the HTTP and MCP
// surfaces.
package notesvc

import (
	"context"
	"errors"
	"sync"

	"github.com/starford/ansuz/internal/cardstore"
	"github.com/starford/ansuz/internal/dupfinder"
	"github.com/starford/ansuz/internal/formatter"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/review"
	"github.com/starford/ansuz/internal/trainlog"
)

// ErrNoSession is returned by session operations when no review session is
// active.
var ErrNoSession = errors.New("no active review session")

// FormatResult pairs a note's content before and after reformatting. Nothing
// is persisted until ApplyFormat.
type FormatResult struct {
	NoteID    int64       `json:"note_id"`
	Original  models.Note `json:"original"`
	Formatted models.Note `json:"formatted"`
}

// Service is the application core shared by every transport surface.
type Service struct {
	db     *cardstore.DB
	fmtsvc *formatter.Service
	finder *dupfinder.Finder
	tlog   *trainlog.Writer
	deck   string

	mu      sync.Mutex
	session *review.Session
}

// New assembles the service. finder and tlog may be nil to disable duplicate
// search and training capture respectively.
func New(db *cardstore.DB, fmtsvc *formatter.Service, finder *dupfinder.Finder, tlog *trainlog.Writer, deck string) *Service {
	return &Service{db: db, fmtsvc: fmtsvc, finder: finder, tlog: tlog, deck: deck}
}

// FormatNote runs the reformatting pipeline on a stored note and returns the
// proposed changes without persisting them.
func (s *Service) FormatNote(ctx context.Context, noteID int64) (*FormatResult, error) {
	n, err := s.db.GetNote(noteID)
	if err != nil {
		return nil, err
	}
	original := cardstore.ToDomain(n)
	formatted, err := s.fmtsvc.Format(ctx, original)
	if err != nil {
		return nil, err
	}
	return &FormatResult{NoteID: noteID, Original: original, Formatted: formatted}, nil
}

// ApplyFormat persists previously proposed changes to the note and appends a
// training example recording the transition. Both logged states carry the
// full snapshot, fields plus tags, so the example is self-contained.
func (s *Service) ApplyFormat(_ context.Context, noteID int64, formatted models.Note) error {
	n, err := s.db.GetNote(noteID)
	if err != nil {
		return err
	}
	original := cardstore.Snapshot(n)
	cardstore.ApplyDomain(n, formatted)
	if err := s.db.FlushNote(n); err != nil {
		return err
	}
	if s.tlog != nil {
		if err := s.tlog.Append(noteID, original, cardstore.Snapshot(n)); err != nil {
			return err
		}
	}
	return nil
}

// FindDuplicates returns the closest indexed match for a stored note, or an
// empty slice when nothing similar exists.
func (s *Service) FindDuplicates(ctx context.Context, noteID int64) ([]models.Note, error) {
	if s.finder == nil {
		return []models.Note{}, nil
	}
	n, err := s.db.GetNote(noteID)
	if err != nil {
		return nil, err
	}
	return s.finder.FindDuplicates(ctx, cardstore.ToDomain(n))
}

// ReviewCount reports how many notes currently carry the review flag.
func (s *Service) ReviewCount(_ context.Context) (int, error) {
	return review.CountReviewNotes(s.db, s.deck)
}

// StartSession opens a review session over the flagged notes, replacing any
// session already running.
func (s *Service) StartSession(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := review.NewSession(s.db, s.deck)
	if err != nil {
		return 0, err
	}
	s.session = sess
	return sess.Len(), nil
}

// SessionCurrent returns the note under review.
func (s *Service) SessionCurrent(_ context.Context) (*cardstore.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, ErrNoSession
	}
	return s.session.Current()
}

// SessionAdvance moves to the next flagged note. A nil note means the
// session just ended; the session is closed automatically.
func (s *Service) SessionAdvance(_ context.Context) (*cardstore.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, ErrNoSession
	}
	n, err := s.session.Advance()
	if err != nil {
		return nil, err
	}
	if n == nil {
		s.session = nil
	}
	return n, nil
}

// SessionRestore discards in-memory edits to the note under review.
func (s *Service) SessionRestore(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return ErrNoSession
	}
	return s.session.RestoreCurrent()
}

// SessionCommit persists the note under review. When keepFlag is false the
// review flag on its cards is cleared.
func (s *Service) SessionCommit(_ context.Context, keepFlag bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return ErrNoSession
	}
	if keepFlag {
		return s.session.CommitKeepFlag()
	}
	return s.session.Commit()
}

// EndSession abandons the active session, if any.
func (s *Service) EndSession(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
}
