// Package server exposes the bridge's HTTP surface: the OAuth consent
// redirect pair, the clip/TTS API routes, and the local audio directory.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tessro/blare/internal/config"
	"github.com/tessro/blare/internal/sonos/control"
)

// TokenManager is the credential lifecycle as seen by request handlers.
type TokenManager interface {
	EnsureToken(ctx context.Context)
	AuthRequired() bool
	AuthorizeURL() string
	CompleteAuthorization(ctx context.Context, code string) error
}

// SonosClient is the Control API surface used by request handlers.
type SonosClient interface {
	ListHouseholds(ctx context.Context) ([]control.Household, error)
	ListClipCapableDevices(ctx context.Context, households []control.Household) []control.HouseholdDevices
	SendClip(ctx context.Context, playerID string, clip control.ClipRequest) error
	SendClipToAll(ctx context.Context, clip control.ClipRequest, inventory []control.HouseholdDevices, exclude []string) control.DispatchResult
}

// SpeechResolver resolves announcement text to a stream URL.
type SpeechResolver interface {
	SpeechURL(text, lang string) (string, error)
}

// Server is the bridge HTTP server.
type Server struct {
	cfg        *config.Config
	tokens     TokenManager
	sonos      SonosClient
	speech     SpeechResolver
	httpServer *http.Server
}

// New creates a bridge server from its collaborators.
func New(cfg *config.Config, tokens TokenManager, sonos SonosClient, speech SpeechResolver) *Server {
	s := &Server{
		cfg:    cfg,
		tokens: tokens,
		sonos:  sonos,
		speech: speech,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	return s
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/auth", s.handleAuth)
	mux.HandleFunc("/redirect", s.handleRedirect)
	mux.HandleFunc("/api/allClipCapableDevices", s.handleAllClipCapableDevices)
	mux.HandleFunc("/api/speakText", s.handleSpeakText)
	mux.HandleFunc("/api/playClip", s.handlePlayClip)
	mux.HandleFunc("/api/playClipAll", s.handlePlayClipAll)

	if s.cfg.Server.ClipsDir != "" {
		mux.Handle("/mp3/", http.StripPrefix("/mp3/", http.FileServer(http.Dir(s.cfg.Server.ClipsDir))))
	}

	return mux
}

// ListenAndServe serves until Shutdown is called.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}
