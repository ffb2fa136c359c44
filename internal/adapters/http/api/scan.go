package api

import (
	"errors"
	"net/http"

	service "github.com/silentsignal/vitals/internal/app"
)

// ScanHandler handles scan lifecycle requests.
type ScanHandler struct {
	deps ScanDependencies
}

// NewScanHandler creates a new scan handler.
func NewScanHandler(deps ScanDependencies) *ScanHandler {
	return &ScanHandler{deps: deps}
}

// HandleStart handles POST /api/scan. The scan runs in the background; poll
// GET /api/scan for progress.
func (h *ScanHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	status, err := h.deps.StartScan(r.Context())
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, status)
	case errors.Is(err, service.ErrScanInProgress):
		writeJSON(w, http.StatusConflict, status)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "not_started", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// HandleStatus handles GET /api/scan.
func (h *ScanHandler) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	status, ok := h.deps.ScanStatus()
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", ErrNoScan)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// HandleCancel handles DELETE /api/scan.
func (h *ScanHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	status, err := h.deps.CancelScan(r.Context())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, status)
	case errors.Is(err, service.ErrNoActiveScan):
		writeError(w, http.StatusNotFound, "not_found", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
