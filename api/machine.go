package api

import (
	"context"

	"github.com/MeticulousHome/meticulous-go/types"
)

// OSUpdateStatus reports operating system update progress. It is the
// REST poll counterpart of the os_update event on the real-time channel.
func (c *Client) OSUpdateStatus(ctx context.Context) (*types.OSStatusResponse, error) {
	var status types.OSStatusResponse
	if err := c.getJSON(ctx, "OSUpdateStatus", "/api/v1/machine/OS_update_status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}
