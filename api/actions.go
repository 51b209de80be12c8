package api

import (
	"context"
	"fmt"

	"github.com/MeticulousHome/meticulous-go/errors"
	"github.com/MeticulousHome/meticulous-go/types"
)

// ExecuteAction sends a machine control action over REST and returns the
// machine's reply. The REST endpoint accepts the full action vocabulary;
// the real-time channel allows only the stream-safe subset, enforced by
// the stream package.
func (c *Client) ExecuteAction(ctx context.Context, action types.ActionType) (*types.ActionResponse, error) {
	if !action.Valid() {
		return nil, errors.WrapInvalid(fmt.Errorf("unknown action %q", action), "api", "ExecuteAction", "validate action")
	}

	var resp types.ActionResponse
	if err := c.getJSON(ctx, "ExecuteAction", "/api/v1/action/"+action.String(), &resp); err != nil {
		return nil, err
	}

	if c.metrics != nil {
		c.metrics.RecordActionSent(action.String())
	}
	c.logger.Debug("Action executed", "action", action.String(), "status", resp.Status)

	return &resp, nil
}
