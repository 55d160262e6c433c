package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/notesvc"
)

// Handler holds API route handlers.
type Handler struct {
	svc *notesvc.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *notesvc.Service) *Handler {
	return &Handler{svc: svc}
}

func noteID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// writeUpstreamError maps provider failures to 502 and everything else to 500.
func writeUpstreamError(w http.ResponseWriter, err error) {
	var conn *apperr.ConnectivityError
	var prov *apperr.ProviderError
	var schema *apperr.SchemaValidationError
	switch {
	case errors.As(err, &conn), errors.As(err, &prov):
		writeJSON(w, http.StatusBadGateway, errorBody(err.Error()))
	case errors.As(err, &schema):
		writeJSON(w, http.StatusBadGateway, errorBody("model returned an invalid response"))
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// FormatNote handles POST /notes/{id}/format.
//
//	@Summary		Propose reformatted content for a note
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		int	true	"Note id"
//	@Success		200	{object}	FormatResult
//	@Failure		404	{object}	errResponse
//	@Failure		502	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/format [post]
func (h *Handler) FormatNote(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}
	res, err := h.svc.FormatNote(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		slog.Error("format note failed", slog.Int64("note_id", id), slog.String("error", err.Error()))
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ApplyFormat handles POST /notes/{id}/format/apply.
//
//	@Summary		Persist accepted reformatting changes
//	@Tags			notes
//	@Accept			json
//	@Param			id		path	int					true	"Note id"
//	@Param			body	body	ApplyFormatRequest	true	"Accepted changes"
//	@Success		204		"Changes applied"
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/format/apply [post]
func (h *Handler) ApplyFormat(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req ApplyFormatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Front == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("front is required"))
		return
	}
	err := h.svc.ApplyFormat(r.Context(), id, models.Note{Front: req.Front, Back: req.Back, Tags: req.Tags})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		slog.Error("apply format failed", slog.Int64("note_id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// FindDuplicates handles GET /notes/{id}/duplicates.
//
//	@Summary		Find the closest duplicate of a note
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		int	true	"Note id"
//	@Success		200	{object}	DuplicatesResponse
//	@Failure		404	{object}	errResponse
//	@Failure		502	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/duplicates [get]
func (h *Handler) FindDuplicates(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}
	dups, err := h.svc.FindDuplicates(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		slog.Error("find duplicates failed", slog.Int64("note_id", id), slog.String("error", err.Error()))
		writeUpstreamError(w, err)
		return
	}
	if dups == nil {
		dups = []models.Note{}
	}
	writeJSON(w, http.StatusOK, DuplicatesResponse{Duplicates: dups})
}

// ReviewCount handles GET /review/count.
//
//	@Summary		Count notes flagged for review
//	@Tags			review
//	@Produce		json
//	@Success		200	{object}	ReviewCountResponse
//	@Security		BearerAuth
//	@Router			/review/count [get]
func (h *Handler) ReviewCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.svc.ReviewCount(r.Context())
	if err != nil {
		slog.Error("review count failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, ReviewCountResponse{Count: count})
}

// StartSession handles POST /review/session.
//
//	@Summary		Start a review session over flagged notes
//	@Tags			review
//	@Produce		json
//	@Success		201	{object}	SessionResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/review/session [post]
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	total, err := h.svc.StartSession(r.Context())
	if err != nil {
		if errors.Is(err, apperr.ErrNoReviewItems) {
			writeJSON(w, http.StatusNotFound, errorBody("no notes flagged for review"))
			return
		}
		slog.Error("start session failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusCreated, SessionResponse{Total: total})
}

// SessionCurrent handles GET /review/session/current.
//
//	@Summary		Get the note under review
//	@Tags			review
//	@Produce		json
//	@Success		200	{object}	ReviewNote
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/review/session/current [get]
func (h *Handler) SessionCurrent(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.SessionCurrent(r.Context())
	if err != nil {
		h.writeSessionError(w, err, "session current failed")
		return
	}
	writeJSON(w, http.StatusOK, reviewNote(n))
}

// SessionAdvance handles POST /review/session/advance.
//
//	@Summary		Move to the next flagged note
//	@Tags			review
//	@Produce		json
//	@Success		200	{object}	ReviewNote
//	@Success		204	"Session finished"
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/review/session/advance [post]
func (h *Handler) SessionAdvance(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.SessionAdvance(r.Context())
	if err != nil {
		h.writeSessionError(w, err, "session advance failed")
		return
	}
	if n == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, reviewNote(n))
}

// SessionRestore handles POST /review/session/restore.
//
//	@Summary		Discard edits to the note under review
//	@Tags			review
//	@Success		204	"Edits discarded"
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/review/session/restore [post]
func (h *Handler) SessionRestore(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.SessionRestore(r.Context()); err != nil {
		h.writeSessionError(w, err, "session restore failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SessionCommit handles POST /review/session/commit.
//
//	@Summary		Persist the note under review
//	@Tags			review
//	@Accept			json
//	@Param			body	body	CommitRequest	false	"Commit options"
//	@Success		204		"Note committed"
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/review/session/commit [post]
func (h *Handler) SessionCommit(w http.ResponseWriter, r *http.Request) {
	var req CommitRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
			return
		}
	}
	if err := h.svc.SessionCommit(r.Context(), req.KeepFlag); err != nil {
		h.writeSessionError(w, err, "session commit failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EndSession handles DELETE /review/session.
//
//	@Summary		Abandon the active review session
//	@Tags			review
//	@Success		204	"Session ended"
//	@Security		BearerAuth
//	@Router			/review/session [delete]
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	h.svc.EndSession(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeSessionError(w http.ResponseWriter, err error, logMsg string) {
	if errors.Is(err, notesvc.ErrNoSession) {
		writeJSON(w, http.StatusConflict, errorBody("no active review session"))
		return
	}
	slog.Error(logMsg, slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
}
