package control

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"

	apperrors "github.com/tessro/blare/internal/errors"
)

const (
	clipName  = "Blare TTS"
	clipAppID = "com.tessro.blare"

	// ClipTypeChime plays the player's built-in chime instead of a stream.
	ClipTypeChime = "CHIME"

	// PriorityLow and PriorityHigh are the recognized clip priorities.
	PriorityLow  = "LOW"
	PriorityHigh = "HIGH"
)

// ClipRequest is the audio clip payload sent to a player. StreamURL and
// ClipType are mutually exclusive; the chime is the fallback when no
// stream URL is supplied.
type ClipRequest struct {
	Name      string `json:"name"`
	AppID     string `json:"appId"`
	StreamURL string `json:"streamUrl,omitempty"`
	ClipType  string `json:"clipType,omitempty"`
	Volume    *int   `json:"volume,omitempty"`
	Priority  string `json:"priority,omitempty"`
}

// NewClipRequest builds a clip payload tagged with this service's identity.
// An unrecognized priority is dropped silently; recognized values match
// case-insensitively and are normalized to upper case.
func NewClipRequest(streamURL string, volume *int, priority string) ClipRequest {
	clip := ClipRequest{
		Name:   clipName,
		AppID:  clipAppID,
		Volume: volume,
	}

	if streamURL == "" {
		clip.ClipType = ClipTypeChime
	} else {
		clip.StreamURL = streamURL
	}

	switch strings.ToUpper(priority) {
	case PriorityLow:
		clip.Priority = PriorityLow
	case PriorityHigh:
		clip.Priority = PriorityHigh
	}

	return clip
}

// clipResponse is the per-device audio clip response. A present id means
// the clip was accepted.
type clipResponse struct {
	ID        string `json:"id"`
	ErrorCode string `json:"errorCode"`
}

// DispatchResult is the aggregated outcome of sending one clip to N
// devices. OK is true only if every device acknowledged.
type DispatchResult struct {
	OK     bool
	Detail string
}

// SendClip sends one clip to one player. Success is the presence of an id
// in the response body; anything else, including a non-JSON body, is a
// failure carrying the best available detail. Failures are never retried.
func (c *Client) SendClip(ctx context.Context, playerID string, clip ClipRequest) error {
	body, err := c.do(ctx, http.MethodPost, "/players/"+playerID+"/audioClip", clip)
	if err != nil {
		return err
	}

	var resp clipResponse
	if d := decodeBody(body, &resp); !d.structured {
		return protocolError(d.raw)
	}
	if resp.ID == "" {
		detail := resp.ErrorCode
		if detail == "" {
			detail = string(body)
		}
		return protocolError(detail)
	}

	return nil
}

// SendClipToAll sends one clip to every device across all households,
// skipping devices whose display name exactly matches an entry in exclude.
// All dispatches run concurrently and to completion; the verdict is
// all-or-nothing, with every failing device's detail collected into one
// combined string in settle order.
func (c *Client) SendClipToAll(ctx context.Context, clip ClipRequest, inventory []HouseholdDevices, exclude []string) DispatchResult {
	var targets []Device
	for _, hh := range inventory {
		for _, d := range hh.Devices {
			if slices.Contains(exclude, d.Name) {
				continue
			}
			targets = append(targets, d)
		}
	}

	errCh := make(chan error, len(targets))
	var wg sync.WaitGroup
	for _, d := range targets {
		wg.Add(1)
		go func(d Device) {
			defer wg.Done()
			if err := c.SendClip(ctx, d.ID, clip); err != nil {
				errCh <- fmt.Errorf("%s: %v", d.Name, err)
			}
		}(d)
	}
	wg.Wait()
	close(errCh)

	var result apperrors.PartialResult[struct{}]
	for err := range errCh {
		result.AddError(err)
	}

	return DispatchResult{
		OK:     !result.HasErrors(),
		Detail: result.ErrorSummary(),
	}
}
