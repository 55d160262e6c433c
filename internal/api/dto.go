package api

import (
	"github.com/starford/ansuz/internal/cardstore"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/notesvc"
)

// FormatResult pairs a note's content before and after reformatting
// (aliased from the domain layer).
type FormatResult = notesvc.FormatResult

// ApplyFormatRequest carries the accepted changes back to the server.
type ApplyFormatRequest struct {
	Front string   `json:"front" validate:"required"`
	Back  string   `json:"back" validate:"required"`
	Tags  []string `json:"tags,omitempty"`
}

// DuplicatesResponse wraps duplicate search results.
type DuplicatesResponse struct {
	Duplicates []models.Note `json:"duplicates" validate:"required"`
}

// ReviewCountResponse reports how many notes are flagged for review.
type ReviewCountResponse struct {
	Count int `json:"count" example:"3" validate:"required"`
}

// SessionResponse is returned when a review session starts.
type SessionResponse struct {
	Total int `json:"total" example:"3" validate:"required"`
}

// ReviewNote is the API shape of a host note under review.
type ReviewNote struct {
	ID     int64             `json:"id" example:"42" validate:"required"`
	GUID   string            `json:"guid" validate:"required"`
	Model  string            `json:"model" example:"basic" validate:"required"`
	Fields map[string]string `json:"fields" validate:"required"`
	Tags   []string          `json:"tags"`
	Deck   string            `json:"deck,omitempty"`
}

// CommitRequest controls whether the review flag survives the commit.
type CommitRequest struct {
	KeepFlag bool `json:"keep_flag"`
}

func reviewNote(n *cardstore.Note) ReviewNote {
	return ReviewNote{
		ID:     n.ID,
		GUID:   n.GUID,
		Model:  n.Model,
		Fields: n.Fields,
		Tags:   n.Tags,
		Deck:   n.Deck,
	}
}
