package api

import (
	"net/http"

	"github.com/silentsignal/vitals/internal/domain/model"
)

// VitalsHandler serves the current reading, its history and the SOS code.
type VitalsHandler struct {
	deps VitalsDependencies
}

// NewVitalsHandler creates a new vitals handler.
func NewVitalsHandler(deps VitalsDependencies) *VitalsHandler {
	return &VitalsHandler{deps: deps}
}

type sosResponse struct {
	Payload string `json:"payload"`
}

// HandleCurrent handles GET /api/vitals.
func (h *VitalsHandler) HandleCurrent(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Vitals())
}

// HandleHistory handles GET /api/vitals/history. Readings are oldest first.
func (h *VitalsHandler) HandleHistory(w http.ResponseWriter, _ *http.Request) {
	readings := h.deps.History()
	if readings == nil {
		readings = []model.ScoredReading{}
	}
	writeJSON(w, http.StatusOK, readings)
}

// HandleSOS handles GET /api/sos. ?format=text returns the bare payload for
// QR renderers.
func (h *VitalsHandler) HandleSOS(w http.ResponseWriter, r *http.Request) {
	payload := h.deps.SOS()
	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(payload))
		return
	}
	writeJSON(w, http.StatusOK, sosResponse{Payload: payload})
}
