package server

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/charmbracelet/log"

	apperrors "github.com/tessro/blare/internal/errors"
	"github.com/tessro/blare/internal/sonos/control"
)

// handleAuth redirects the user to the Sonos consent page.
func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.tokens.AuthorizeURL(), http.StatusFound)
}

// handleRedirect completes the OAuth exchange with the code Sonos sent back.
func (s *Server) handleRedirect(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")

	if err := s.tokens.CompleteAuthorization(r.Context(), code); err != nil {
		log.Error("Authorization exchange failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Error: "authentication failed"})
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Auth Complete"))
}

// handleAllClipCapableDevices returns households mapped to their
// clip-capable devices.
func (s *Server) handleAllClipCapableDevices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	s.tokens.EnsureToken(ctx)
	if s.tokens.AuthRequired() {
		respondAuthRequired(w)
		return
	}

	households, err := s.sonos.ListHouseholds(ctx)
	if err != nil {
		respondError(w, err.Error())
		return
	}

	inventory := s.sonos.ListClipCapableDevices(ctx, households)

	byHousehold := make(map[string][]control.Device, len(inventory))
	for _, hh := range inventory {
		byHousehold[hh.HouseholdID] = hh.Devices
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Households: byHousehold})
}

// handleSpeakText resolves text to a speech stream URL and dispatches one
// clip to the given player.
func (s *Server) handleSpeakText(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	text := q.Get("text")
	playerID := q.Get("playerId")
	if text == "" {
		respondError(w, apperrors.MissingParameter("text").Error())
		return
	}
	if playerID == "" {
		respondError(w, apperrors.MissingParameter("playerId").Error())
		return
	}

	s.tokens.EnsureToken(ctx)
	if s.tokens.AuthRequired() {
		respondAuthRequired(w)
		return
	}

	speechURL, err := s.speech.SpeechURL(text, s.cfg.TTS.Language)
	if err != nil {
		respondError(w, err.Error())
		return
	}

	clip := control.NewClipRequest(speechURL, parseVolume(q.Get("volume")), q.Get("prio"))
	if err := s.sonos.SendClip(ctx, playerID, clip); err != nil {
		respondError(w, err.Error())
		return
	}

	respondSuccess(w)
}

// handlePlayClip dispatches one clip (stream or chime fallback) to a
// single player.
func (s *Server) handlePlayClip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	playerID := q.Get("playerId")
	if playerID == "" {
		respondError(w, apperrors.MissingParameter("playerId").Error())
		return
	}

	s.tokens.EnsureToken(ctx)
	if s.tokens.AuthRequired() {
		respondAuthRequired(w)
		return
	}

	clip := control.NewClipRequest(s.resolveStreamURL(q.Get("streamUrl")), parseVolume(q.Get("volume")), q.Get("prio"))
	if err := s.sonos.SendClip(ctx, playerID, clip); err != nil {
		respondError(w, err.Error())
		return
	}

	respondSuccess(w)
}

// handlePlayClipAll dispatches one clip to every clip-capable device
// across all households, minus excluded names.
func (s *Server) handlePlayClipAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	s.tokens.EnsureToken(ctx)
	if s.tokens.AuthRequired() {
		respondAuthRequired(w)
		return
	}

	households, err := s.sonos.ListHouseholds(ctx)
	if err != nil {
		respondError(w, err.Error())
		return
	}
	inventory := s.sonos.ListClipCapableDevices(ctx, households)

	clip := control.NewClipRequest(s.resolveStreamURL(q.Get("streamUrl")), parseVolume(q.Get("volume")), q.Get("prio"))
	result := s.sonos.SendClipToAll(ctx, clip, inventory, q["exclude"])
	if !result.OK {
		respondError(w, result.Detail)
		return
	}

	respondSuccess(w)
}

// resolveStreamURL passes absolute URLs through and rewrites bare file
// names to the locally served clip directory. Empty stays empty, which
// downstream turns into the chime fallback.
func (s *Server) resolveStreamURL(raw string) string {
	if raw == "" {
		return ""
	}
	if u, err := url.Parse(raw); err == nil && u.IsAbs() {
		return raw
	}
	return s.cfg.ExternalBaseURL() + "/mp3/" + raw
}

// parseVolume coerces the volume parameter to an integer; anything else
// is dropped.
func parseVolume(raw string) *int {
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Debug("Ignoring non-integer volume", "volume", raw)
		return nil
	}
	return &v
}
