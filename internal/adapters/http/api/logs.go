package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/silentsignal/vitals/internal/adapters/readinglog"
	"github.com/silentsignal/vitals/internal/adapters/repository"
	"github.com/silentsignal/vitals/internal/domain/model"
)

// maxHistoryLimit bounds GET /api/history.
const maxHistoryLimit = 500

// LogsHandler serves the behavioral log endpoints other instances use as
// their reading log and history source.
type LogsHandler struct {
	store    repository.Store
	validate *validator.Validate
}

// NewLogsHandler creates a new logs handler. A nil store answers 503.
func NewLogsHandler(store repository.Store, validate *validator.Validate) *LogsHandler {
	return &LogsHandler{store: store, validate: validate}
}

// HandleAppend handles POST /api/logs.
func (h *LogsHandler) HandleAppend(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", ErrStoreDisabled)
		return
	}
	var e model.LogEntry
	if !decode(w, r, h.validate, &e) {
		return
	}

	stored, err := h.store.Append(r.Context(), e)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidEntry) {
			writeError(w, http.StatusBadRequest, "validation_failed", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

// HandleHistory handles GET /api/history?limit=N. Entries are newest first.
func (h *LogsHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", ErrStoreDisabled)
		return
	}

	limit := readinglog.DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrInvalidLimit)
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	entries, err := h.store.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	if entries == nil {
		entries = []model.LogEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
