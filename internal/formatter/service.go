// Package formatter reformats note content through an LLM completion call
// with schema-constrained output.
package formatter

import (
	"context"
	"html"
	"regexp"
	"slices"
	"strings"

	"github.com/starford/ansuz/internal/llm"
	"github.com/starford/ansuz/internal/models"
)

// CompletionClient is the slice of the completion client the formatter
// needs. *llm.Client and *llm.Scripted both satisfy it.
type CompletionClient interface {
	Run(ctx context.Context, prompt string, opts ...llm.RunOption) (string, error)
}

// Service applies LLM-driven formatting to notes.
type Service struct {
	client CompletionClient
}

// New creates a formatting service using the given completion client.
func New(client CompletionClient) *Service {
	return &Service{client: client}
}

// altAttrRe matches decorative alt attributes on image tags. The model is
// not trusted to preserve them, so they are stripped after formatting while
// the img tag itself stays intact.
var altAttrRe = regexp.MustCompile(`<img\s+alt="[^"]*"`)

// Format returns a reformatted copy of the note. The input note is never
// modified, so callers can diff the result against it or roll back. Tags are
// deliberately carried over unchanged even when the model returns new ones:
// user-curated categorization must not drift with the model.
func (s *Service) Format(ctx context.Context, note models.Note) (models.Note, error) {
	out := note
	out.Tags = slices.Clone(note.Tags)

	out.Front = normalize(out.Front)
	out.Back = normalize(out.Back)

	prompt, err := renderPrompt(out)
	if err != nil {
		return models.Note{}, err
	}

	raw, err := s.client.Run(ctx, prompt, llm.WithGuidedJSON(ChangesSchema()))
	if err != nil {
		return models.Note{}, err
	}

	changes, err := ParseChanges(raw)
	if err != nil {
		return models.Note{}, err
	}

	out.Front = stripAltAttrs(changes.Front)
	out.Back = stripAltAttrs(changes.Back)
	return out, nil
}

// normalize decodes HTML entities and turns literal <br> markers into real
// newlines so the prompt sees human-readable text instead of markup.
func normalize(s string) string {
	return strings.ReplaceAll(html.UnescapeString(s), "<br>", "\n")
}

func stripAltAttrs(s string) string {
	return altAttrRe.ReplaceAllString(s, "<img ")
}
