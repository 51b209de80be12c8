package stream

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gorilla/websocket"

	"github.com/MeticulousHome/meticulous-go/errors"
	"github.com/MeticulousHome/meticulous-go/types"
)

// streamActions is the subset of machine actions accepted on the real-time
// channel. The REST ExecuteAction path takes the full vocabulary.
var streamActions = map[types.ActionType]bool{
	types.ActionStart:    true,
	types.ActionStop:     true,
	types.ActionContinue: true,
	types.ActionTare:     true,
	types.ActionPreheat:  true,
}

// ActionAllowed reports whether action may be sent over the real-time
// channel.
func ActionAllowed(action types.ActionType) bool {
	return streamActions[action]
}

// SendAction emits one fire-and-forget action frame. Actions outside the
// channel allowlist are rejected before anything is written.
func (c *Client) SendAction(action types.ActionType) error {
	if !ActionAllowed(action) {
		return errors.WrapInvalid(
			fmt.Errorf("%w: %q", errors.ErrInvalidAction, action),
			"stream", "SendAction", "validate action",
		)
	}

	payload := json.RawMessage(strconv.Quote(action.String()))
	if err := c.emit("SendAction", "action", payload); err != nil {
		return err
	}

	if c.coreMetrics != nil {
		c.coreMetrics.RecordActionSent(action.String())
	}
	c.logger.Debug("Action sent", "action", action.String())
	return nil
}

// AcknowledgeNotification answers a machine notification, naming the
// notification and the chosen response.
func (c *Client) AcknowledgeNotification(id, response string) error {
	payload, err := json.Marshal(types.AcknowledgeNotificationRequest{ID: id, Response: response})
	if err != nil {
		return errors.WrapInvalid(err, "stream", "AcknowledgeNotification", "encode acknowledgement")
	}
	return c.emit("AcknowledgeNotification", "notification", payload)
}

// SendProfileHover forwards a profile hover payload to the machine
// unchanged.
func (c *Client) SendProfileHover(payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.WrapInvalid(err, "stream", "SendProfileHover", "encode payload")
	}
	return c.emit("SendProfileHover", "profileHover", data)
}

// TriggerCalibration toggles the machine's scale calibration routine.
func (c *Client) TriggerCalibration(enable bool) error {
	payload := json.RawMessage(strconv.FormatBool(enable))
	return c.emit("TriggerCalibration", "calibrate", payload)
}

// emit writes one outbound frame. Emits are fire-and-forget: no reply is
// awaited and no frame is queued when the session is down.
func (c *Client) emit(operation, event string, payload json.RawMessage) error {
	c.mu.Lock()
	s := c.session
	c.mu.Unlock()
	if s == nil {
		return errors.WrapTransient(errors.ErrNoConnection, "stream", operation, "check connection")
	}

	data, err := json.Marshal(newEnvelope(event, payload))
	if err != nil {
		return errors.WrapInvalid(err, "stream", operation, "encode frame")
	}
	if err := s.write(websocket.TextMessage, data); err != nil {
		return errors.WrapTransient(
			fmt.Errorf("%w: %w", errors.ErrConnectionLost, err),
			"stream", operation, "write frame",
		)
	}

	c.sessionMetrics.recordFrame("out", len(data))
	c.sessionMetrics.recordEmit(event)
	return nil
}
