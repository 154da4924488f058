package control

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"

	apperrors "github.com/tessro/blare/internal/errors"
)

// ListHouseholds returns the households visible to the authorized account.
func (c *Client) ListHouseholds(ctx context.Context) ([]Household, error) {
	body, err := c.do(ctx, http.MethodGet, "/households", nil)
	if err != nil {
		return nil, err
	}

	var resp householdsResponse
	if d := decodeBody(body, &resp); !d.structured {
		return nil, protocolError(d.raw)
	}
	if resp.Households == nil {
		detail := resp.Error
		if detail == "" {
			detail = string(body)
		}
		return nil, protocolError(detail)
	}

	return *resp.Households, nil
}

// ListClipCapableDevices fetches the groups listing for every household and
// returns its clip-capable players, preserving the households' enumeration
// order and, within a household, the upstream player order.
//
// Failures are isolated per household: one bad groups fetch must not abort
// the others, the household just ends up with an empty device list.
func (c *Client) ListClipCapableDevices(ctx context.Context, households []Household) []HouseholdDevices {
	var result apperrors.PartialResult[[]HouseholdDevices]

	for _, hh := range households {
		devices, err := c.listHouseholdDevices(ctx, hh.ID)
		if err != nil {
			result.AddError(err)
			log.Warn("Skipping household", "household", hh.ID, "err", err)
			devices = []Device{}
		}
		result.Data = append(result.Data, HouseholdDevices{
			HouseholdID: hh.ID,
			Devices:     devices,
		})
	}

	return result.Data
}

func (c *Client) listHouseholdDevices(ctx context.Context, householdID string) ([]Device, error) {
	body, err := c.do(ctx, http.MethodGet, "/households/"+householdID+"/groups", nil)
	if err != nil {
		return nil, err
	}

	var resp groupsResponse
	if d := decodeBody(body, &resp); !d.structured {
		return nil, protocolError(d.raw)
	}
	if resp.Groups == nil {
		detail := resp.Error
		if detail == "" {
			detail = string(body)
		}
		return nil, protocolError(detail)
	}

	devices := []Device{}
	for _, p := range resp.Players {
		if p.ClipCapable() {
			devices = append(devices, Device{ID: p.ID, Name: p.Name})
		}
	}
	return devices, nil
}
