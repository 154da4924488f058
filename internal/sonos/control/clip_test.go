package control

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	apperrors "github.com/tessro/blare/internal/errors"
)

func TestNewClipRequest(t *testing.T) {
	vol := 25

	tests := []struct {
		name      string
		streamURL string
		volume    *int
		priority  string
		want      ClipRequest
	}{
		{
			name:      "stream url",
			streamURL: "https://cdn.example/clip.mp3",
			want: ClipRequest{
				Name:      "Blare TTS",
				AppID:     "com.tessro.blare",
				StreamURL: "https://cdn.example/clip.mp3",
			},
		},
		{
			name: "chime fallback",
			want: ClipRequest{
				Name:     "Blare TTS",
				AppID:    "com.tessro.blare",
				ClipType: ClipTypeChime,
			},
		},
		{
			name:      "volume",
			streamURL: "https://cdn.example/clip.mp3",
			volume:    &vol,
			want: ClipRequest{
				Name:      "Blare TTS",
				AppID:     "com.tessro.blare",
				StreamURL: "https://cdn.example/clip.mp3",
				Volume:    &vol,
			},
		},
		{
			name:      "priority normalized",
			streamURL: "https://cdn.example/clip.mp3",
			priority:  "low",
			want: ClipRequest{
				Name:      "Blare TTS",
				AppID:     "com.tessro.blare",
				StreamURL: "https://cdn.example/clip.mp3",
				Priority:  PriorityLow,
			},
		},
		{
			name:      "priority high mixed case",
			streamURL: "https://cdn.example/clip.mp3",
			priority:  "High",
			want: ClipRequest{
				Name:      "Blare TTS",
				AppID:     "com.tessro.blare",
				StreamURL: "https://cdn.example/clip.mp3",
				Priority:  PriorityHigh,
			},
		},
		{
			name:      "unknown priority dropped",
			streamURL: "https://cdn.example/clip.mp3",
			priority:  "URGENT",
			want: ClipRequest{
				Name:      "Blare TTS",
				AppID:     "com.tessro.blare",
				StreamURL: "https://cdn.example/clip.mp3",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewClipRequest(tt.streamURL, tt.volume, tt.priority)
			if got.Name != tt.want.Name || got.AppID != tt.want.AppID ||
				got.StreamURL != tt.want.StreamURL || got.ClipType != tt.want.ClipType ||
				got.Priority != tt.want.Priority {
				t.Errorf("NewClipRequest() = %+v, want %+v", got, tt.want)
			}
			if (got.Volume == nil) != (tt.want.Volume == nil) {
				t.Errorf("Volume = %v, want %v", got.Volume, tt.want.Volume)
			}
		})
	}
}

func TestClipRequestJSONShape(t *testing.T) {
	// The chime request must not carry a streamUrl field, and vice versa.
	chime, err := json.Marshal(NewClipRequest("", nil, ""))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.Contains(string(chime), "streamUrl") {
		t.Errorf("chime request %s should not contain streamUrl", chime)
	}
	if !strings.Contains(string(chime), `"clipType":"CHIME"`) {
		t.Errorf("chime request %s should set clipType CHIME", chime)
	}

	stream, err := json.Marshal(NewClipRequest("https://cdn.example/clip.mp3", nil, ""))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.Contains(string(stream), "clipType") {
		t.Errorf("stream request %s should not contain clipType", stream)
	}
}

func TestSendClip(t *testing.T) {
	var gotBody ClipRequest
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/players/RINCON_1/audioClip" {
			t.Errorf("path = %q, want /players/RINCON_1/audioClip", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"clip_1"}`))
	}))

	clip := NewClipRequest("https://cdn.example/clip.mp3", nil, "HIGH")
	if err := c.SendClip(context.Background(), "RINCON_1", clip); err != nil {
		t.Fatalf("SendClip() error = %v", err)
	}
	if gotBody.AppID != "com.tessro.blare" {
		t.Errorf("request appId = %q, want com.tessro.blare", gotBody.AppID)
	}
}

func TestSendClipFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		detail string
	}{
		{
			name:   "structured error code",
			status: http.StatusForbidden,
			body:   `{"errorCode":"ERROR_NOT_CAPABLE"}`,
			detail: "ERROR_NOT_CAPABLE",
		},
		{
			name:   "json without id",
			status: http.StatusOK,
			body:   `{"status":"queued"}`,
			detail: `{"status":"queued"}`,
		},
		{
			name:   "plain text body",
			status: http.StatusBadGateway,
			body:   "Bad Gateway",
			detail: "Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))

			err := c.SendClip(context.Background(), "RINCON_1", NewClipRequest("", nil, ""))
			if err == nil {
				t.Fatal("SendClip() expected error")
			}
			if !errors.Is(err, apperrors.ErrProtocol) {
				t.Errorf("error = %v, want ErrProtocol", err)
			}
			if !strings.Contains(err.Error(), tt.detail) {
				t.Errorf("error %q should carry detail %q", err, tt.detail)
			}
		})
	}
}

func testInventory() []HouseholdDevices {
	return []HouseholdDevices{
		{
			HouseholdID: "hh_1",
			Devices: []Device{
				{ID: "RINCON_KITCHEN", Name: "Kitchen"},
				{ID: "RINCON_OFFICE", Name: "Office"},
			},
		},
		{
			HouseholdID: "hh_2",
			Devices: []Device{
				{ID: "RINCON_BEDROOM", Name: "Bedroom"},
			},
		},
	}
}

func TestSendClipToAllSuccess(t *testing.T) {
	var mu sync.Mutex
	hit := map[string]int{}

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hit[r.URL.Path]++
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"clip_1"}`))
	}))

	result := c.SendClipToAll(context.Background(), NewClipRequest("", nil, ""), testInventory(), nil)

	if !result.OK {
		t.Fatalf("result = %+v, want OK", result)
	}
	if result.Detail != "" {
		t.Errorf("Detail = %q, want empty", result.Detail)
	}
	if len(hit) != 3 {
		t.Errorf("dispatched to %d players, want 3: %v", len(hit), hit)
	}
	for path, n := range hit {
		if n != 1 {
			t.Errorf("path %q hit %d times, want 1", path, n)
		}
	}
}

func TestSendClipToAllPartialFailure(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.URL.Path, "RINCON_OFFICE") {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"errorCode":"ERROR_OFFICE_DOWN"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"clip_1"}`))
	}))

	result := c.SendClipToAll(context.Background(), NewClipRequest("", nil, ""), testInventory(), nil)

	if result.OK {
		t.Fatal("result OK = true, want false when one device fails")
	}
	if !strings.Contains(result.Detail, "ERROR_OFFICE_DOWN") {
		t.Errorf("Detail = %q, want office failure detail", result.Detail)
	}
	if !strings.Contains(result.Detail, "Office") {
		t.Errorf("Detail = %q, want failing device name", result.Detail)
	}
	if strings.Contains(result.Detail, "Kitchen") || strings.Contains(result.Detail, "Bedroom") {
		t.Errorf("Detail = %q, must only mention failing devices", result.Detail)
	}
}

func TestSendClipToAllAllFail(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("Bad Gateway"))
	}))

	result := c.SendClipToAll(context.Background(), NewClipRequest("", nil, ""), testInventory(), nil)

	if result.OK {
		t.Fatal("result OK = true, want false")
	}
	for _, name := range []string{"Kitchen", "Office", "Bedroom"} {
		if !strings.Contains(result.Detail, name) {
			t.Errorf("Detail = %q, want failure for %s", result.Detail, name)
		}
	}
}

func TestSendClipToAllExclude(t *testing.T) {
	var mu sync.Mutex
	var hit []string

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hit = append(hit, r.URL.Path)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"clip_1"}`))
	}))

	inventory := []HouseholdDevices{
		{
			HouseholdID: "hh_1",
			Devices: []Device{
				{ID: "RINCON_KITCHEN", Name: "Kitchen"},
				{ID: "RINCON_OFFICE", Name: "Office"},
			},
		},
	}

	result := c.SendClipToAll(context.Background(), NewClipRequest("", nil, ""), inventory, []string{"Kitchen"})

	if !result.OK {
		t.Fatalf("result = %+v, want OK", result)
	}
	if len(hit) != 1 {
		t.Fatalf("dispatched %d calls, want exactly 1: %v", len(hit), hit)
	}
	if hit[0] != "/players/RINCON_OFFICE/audioClip" {
		t.Errorf("dispatched to %q, want Office", hit[0])
	}
}

func TestSendClipToAllExcludeIsCaseSensitive(t *testing.T) {
	var mu sync.Mutex
	var hit []string

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hit = append(hit, r.URL.Path)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"clip_1"}`))
	}))

	inventory := []HouseholdDevices{
		{HouseholdID: "hh_1", Devices: []Device{{ID: "RINCON_KITCHEN", Name: "Kitchen"}}},
	}

	c.SendClipToAll(context.Background(), NewClipRequest("", nil, ""), inventory, []string{"kitchen"})

	if len(hit) != 1 {
		t.Errorf("dispatched %d calls, want 1 (name match is exact)", len(hit))
	}
}

func TestSendClipToAllNoTargets(t *testing.T) {
	c := New(staticTokens{})

	result := c.SendClipToAll(context.Background(), NewClipRequest("", nil, ""), nil, nil)

	if !result.OK {
		t.Errorf("result = %+v, want OK for empty target set", result)
	}
}
