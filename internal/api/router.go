package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/starford/ansuz/internal/notesvc"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(svc *notesvc.Service, authEnabled bool, token string) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Reformatting pipeline.
	r.Post("/notes/{id}/format", h.FormatNote)
	r.Post("/notes/{id}/format/apply", h.ApplyFormat)

	// Duplicate detection.
	r.Get("/notes/{id}/duplicates", h.FindDuplicates)

	// Review workflow.
	r.Get("/review/count", h.ReviewCount)
	r.Post("/review/session", h.StartSession)
	r.Delete("/review/session", h.EndSession)
	r.Get("/review/session/current", h.SessionCurrent)
	r.Post("/review/session/advance", h.SessionAdvance)
	r.Post("/review/session/restore", h.SessionRestore)
	r.Post("/review/session/commit", h.SessionCommit)

	return r
}
