package control

import (
	"encoding/json"
	"slices"
)

// CapabilityAudioClip marks a player that supports on-demand short-audio
// injection during ongoing playback.
const CapabilityAudioClip = "AUDIO_CLIP"

// Household is an account-level grouping of a user's registered devices.
type Household struct {
	ID string `json:"id"`
}

// Player is a playback endpoint as reported by the groups listing.
type Player struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Capabilities []string `json:"capabilities"`
}

// ClipCapable reports whether the player advertises audio clip support.
func (p Player) ClipCapable() bool {
	return slices.Contains(p.Capabilities, CapabilityAudioClip)
}

// Device is the flattened {id, name} record handed to callers.
type Device struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HouseholdDevices pairs a household with its clip-capable devices, in the
// order the upstream enumeration returned them.
type HouseholdDevices struct {
	HouseholdID string
	Devices     []Device
}

// householdsResponse mirrors the households listing. The pointer
// distinguishes a present-but-empty list from a response that is not a
// households listing at all.
type householdsResponse struct {
	Households *[]Household `json:"households"`
	Error      string       `json:"error"`
}

// groupsResponse mirrors the groups listing for one household. Groups is
// kept raw: its presence is what signals a well-formed listing, the group
// structure itself is not needed here.
type groupsResponse struct {
	Groups  json.RawMessage `json:"groups"`
	Players []Player        `json:"players"`
	Error   string          `json:"error"`
}
