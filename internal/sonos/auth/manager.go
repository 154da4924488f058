package auth

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	apperrors "github.com/tessro/blare/internal/errors"
)

// Manager owns the in-memory token and decides when it is valid. Every
// request handler calls EnsureToken first and checks AuthRequired before
// touching AuthorizationHeader.
//
// States: no token (authorization required), valid token, expired token.
// An expired token is refreshed lazily on the next EnsureToken call; a
// failed refresh drops back to authorization required rather than reusing
// the stale grant.
type Manager struct {
	clientID     string
	clientSecret string
	redirectURI  string
	authURL      string
	tokenURL     string
	storage      *TokenStorage
	httpClient   *http.Client

	mu           sync.Mutex
	token        *Token
	loaded       bool
	authRequired bool
}

// NewManager creates a token manager backed by the given storage.
func NewManager(clientID, clientSecret, redirectURI string, storage *TokenStorage) *Manager {
	return &Manager{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		authURL:      SonosAuthURL,
		tokenURL:     SonosTokenURL,
		storage:      storage,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// SetEndpoints overrides the authorization server endpoints. Used in tests.
func (m *Manager) SetEndpoints(authURL, tokenURL string) {
	m.authURL = authURL
	m.tokenURL = tokenURL
}

// AuthorizeURL returns the consent page URL to redirect the user to.
func (m *Manager) AuthorizeURL() string {
	return BuildAuthorizeURL(m.authURL, m.clientID, m.redirectURI)
}

// EnsureToken makes sure a usable token is held in memory, refreshing an
// expired one when possible. A missing token or a failed refresh is a
// normal outcome, reported through AuthRequired rather than an error; the
// caller's contract is "tell me if the user has to reauthorize".
//
// Concurrent callers serialize here, so a burst of requests against an
// expired token performs at most one refresh exchange.
func (m *Manager) EnsureToken(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.loaded {
		token, err := m.storage.Load()
		if err != nil {
			log.Warn("Could not read stored credential", "err", err)
		}
		m.token = token
		m.loaded = true
	}

	if m.token == nil {
		m.authRequired = true
		return
	}

	if !m.token.IsExpired() {
		m.authRequired = false
		return
	}

	refreshed, err := refreshToken(ctx, m.httpClient, m.tokenURL, m.clientID, m.clientSecret, m.token.RefreshToken)
	if err != nil {
		m.authRequired = true
		log.Warn("Error refreshing access token", "err", err)
		return
	}

	// Sonos may omit the refresh token on refresh; keep the old one.
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = m.token.RefreshToken
	}

	m.token = refreshed
	m.authRequired = false
	if err := m.storage.Save(refreshed); err != nil {
		log.Warn("Could not persist refreshed credential", "err", err)
	}
}

// AuthRequired reports whether the user must be sent through the consent
// flow before any Control API call can be made.
func (m *Manager) AuthRequired() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authRequired
}

// AuthorizationHeader returns the bearer header value for the current
// token. Callers must have checked AuthRequired after EnsureToken.
func (m *Manager) AuthorizationHeader() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == nil {
		return ""
	}
	return "Bearer " + m.token.AccessToken
}

// CompleteAuthorization exchanges a one-time authorization code for a new
// grant, persists it, and clears the authorization-required signal.
func (m *Manager) CompleteAuthorization(ctx context.Context, code string) error {
	token, err := exchangeCode(ctx, m.httpClient, m.tokenURL, m.clientID, m.clientSecret, code, m.redirectURI)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrExchangeFailed, err)
	}

	m.mu.Lock()
	m.token = token
	m.loaded = true
	m.authRequired = false
	m.mu.Unlock()

	if err := m.storage.Save(token); err != nil {
		log.Warn("Could not persist credential", "err", err)
	}

	return nil
}
