// Package trainlog appends accepted reformatting results to a JSONL file,
// building a corpus of before/after pairs for later fine-tuning.
package trainlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Entry is one accepted reformatting: the note's fields before and after.
type Entry struct {
	Timestamp time.Time         `json:"timestamp"`
	NoteID    int64             `json:"note_id"`
	Original  map[string]string `json:"original"`
	Updated   map[string]string `json:"updated"`
}

// Writer appends entries to a JSONL file, creating it (and its directory) on
// first use.
type Writer struct {
	path string
	now  func() time.Time
}

// NewWriter returns a writer targeting path.
func NewWriter(path string) *Writer {
	return &Writer{path: path, now: time.Now}
}

// Append writes one entry. Each call opens, writes, and closes the file so
// concurrent hosts sharing the path interleave whole lines.
func (w *Writer) Append(noteID int64, original, updated map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("trainlog: create dir: %w", err)
	}
	line, err := json.Marshal(Entry{
		Timestamp: w.now().UTC(),
		NoteID:    noteID,
		Original:  original,
		Updated:   updated,
	})
	if err != nil {
		return fmt.Errorf("trainlog: marshal entry: %w", err)
	}

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("trainlog: open: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("trainlog: write: %w", err)
	}
	return nil
}
