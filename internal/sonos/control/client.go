package control

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	apperrors "github.com/tessro/blare/internal/errors"
)

const (
	// BaseURL is the Sonos Control API base URL.
	BaseURL = "https://api.ws.sonos.com/control/api/v1"

	// requestTimeout bounds every outbound Control API call so that a
	// stalled device cannot hang a fan-out forever.
	requestTimeout = 15 * time.Second
)

// TokenSource supplies the bearer header for Control API calls.
type TokenSource interface {
	AuthorizationHeader() string
}

// Client is a Sonos Control API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
}

// New creates a new Control API client.
func New(tokens TokenSource) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    BaseURL,
		tokens:     tokens,
	}
}

// SetBaseURL overrides the Control API base URL. Used in tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

// do performs an authorized request and returns the raw response body.
// Errors at this level are transport failures only; whatever the API
// answered, even plain text on an error status, comes back as bytes for
// the caller to decode tolerantly.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.tokens.AuthorizationHeader())

	log.Debug("Control API request", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrTransport, err)
	}

	log.Debug("Control API response", "path", path, "status", resp.StatusCode)

	return respBody, nil
}

// decoded is the tagged outcome of decoding a possibly-non-JSON upstream
// body: structured on success, the raw text otherwise. The Control API is
// known to answer some errors with plain text, so every call site treats
// an unparsable body as an ordinary failure carrying that text as detail.
type decoded struct {
	structured bool
	raw        string
}

// decodeBody attempts a structured parse of body into v, falling back to
// the raw text.
func decodeBody(body []byte, v any) decoded {
	if err := json.Unmarshal(body, v); err != nil {
		return decoded{structured: false, raw: string(body)}
	}
	return decoded{structured: true, raw: string(body)}
}

// protocolError builds the error for an upstream response that parsed but
// did not carry the expected shape. detail is the structured error field
// when present, otherwise the raw body text.
func protocolError(detail string) error {
	return fmt.Errorf("%w: %s", apperrors.ErrProtocol, detail)
}
