package server

import (
	"encoding/json"
	"net/http"

	"github.com/tessro/blare/internal/sonos/control"
)

// envelope is the JSON body every API route answers with. Failures still
// come back as HTTP 200 with success:false; the calling hub keys off the
// body, not the status.
type envelope struct {
	Success      bool                        `json:"success"`
	AuthRequired bool                        `json:"authRequired,omitempty"`
	Error        string                      `json:"error,omitempty"`
	Households   map[string][]control.Device `json:"households,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, envelope{Success: true})
}

func respondAuthRequired(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, envelope{Success: false, AuthRequired: true})
}

func respondError(w http.ResponseWriter, detail string) {
	writeJSON(w, http.StatusOK, envelope{Success: false, Error: detail})
}
