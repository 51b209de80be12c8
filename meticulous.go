package meticulous

import (
	"context"
	"time"

	"github.com/MeticulousHome/meticulous-go/api"
	"github.com/MeticulousHome/meticulous-go/config"
	"github.com/MeticulousHome/meticulous-go/stream"
	"github.com/MeticulousHome/meticulous-go/types"
)

// Client is the full machine client: the REST surface plus the real-time
// event channel, sharing one configuration.
type Client struct {
	api    *api.Client
	stream *stream.Client
}

// New builds a client from cfg. A nil cfg targets a machine on
// http://localhost:8080 with default timeouts.
func New(cfg *config.Config, opts Options) (*Client, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	apiClient, err := api.New(cfg, opts.apiOptions()...)
	if err != nil {
		return nil, err
	}
	streamClient, err := stream.NewClient(cfg, opts.Callbacks, opts.streamOptions()...)
	if err != nil {
		return nil, err
	}

	return &Client{api: apiClient, stream: streamClient}, nil
}

// API returns the REST half, for use beyond the methods mirrored here.
func (c *Client) API() *api.Client {
	return c.api
}

// Stream returns the real-time channel half.
func (c *Client) Stream() *stream.Client {
	return c.stream
}

// Connect establishes the real-time channel using the configured retry
// policy. REST methods work without it.
func (c *Client) Connect(ctx context.Context) error {
	return c.stream.Connect(ctx)
}

// ConnectWithRetry establishes the real-time channel under an explicit
// policy: one attempt plus retries more, backing off from initial up to
// max between attempts.
func (c *Client) ConnectWithRetry(ctx context.Context, retries int, initial, max time.Duration) error {
	return c.stream.ConnectWithRetry(ctx, retries, initial, max)
}

// Disconnect closes the real-time channel. Calling it while disconnected
// is a no-op.
func (c *Client) Disconnect() {
	c.stream.Disconnect()
}

// IsConnected reports whether the real-time channel is up.
func (c *Client) IsConnected() bool {
	return c.stream.IsConnected()
}

// Status reports the real-time channel lifecycle state.
func (c *Client) Status() stream.Status {
	return c.stream.Status()
}

// SendAction pushes an action over the real-time channel, fire-and-forget.
// Only start, stop, continue, tare, and preheat are accepted; the rest of
// the vocabulary goes through ExecuteAction.
func (c *Client) SendAction(action types.ActionType) error {
	return c.stream.SendAction(action)
}

// AcknowledgeNotification answers a machine notification over the
// real-time channel.
func (c *Client) AcknowledgeNotification(id, response string) error {
	return c.stream.AcknowledgeNotification(id, response)
}

// SendProfileHover forwards a profile hover payload over the real-time
// channel.
func (c *Client) SendProfileHover(payload any) error {
	return c.stream.SendProfileHover(payload)
}

// TriggerCalibration toggles the machine's scale calibration routine over
// the real-time channel.
func (c *Client) TriggerCalibration(enable bool) error {
	return c.stream.TriggerCalibration(enable)
}

// ExecuteAction drives the REST action endpoint, which accepts the full
// action vocabulary and returns the machine's reply.
func (c *Client) ExecuteAction(ctx context.Context, action types.ActionType) (*types.ActionResponse, error) {
	return c.api.ExecuteAction(ctx, action)
}

// ListHistoryDates lists the dated shot buckets on the machine.
func (c *Client) ListHistoryDates(ctx context.Context) ([]types.HistoryFile, error) {
	return c.api.ListHistoryDates(ctx)
}

// ListShotFiles lists the shot files recorded under one date bucket.
func (c *Client) ListShotFiles(ctx context.Context, date string) ([]types.HistoryFile, error) {
	return c.api.ListShotFiles(ctx, date)
}

// GetShotLog fetches and decodes one shot log, transparently
// decompressing zstd payloads.
func (c *Client) GetShotLog(ctx context.Context, date, file string) (map[string]any, error) {
	return c.api.GetShotLog(ctx, date, file)
}

// GetLastShotLog fetches and decodes the newest shot log on the machine.
func (c *Client) GetLastShotLog(ctx context.Context) (map[string]any, error) {
	return c.api.GetLastShotLog(ctx)
}

// GetCurrentShot returns the in-progress shot. The bool reports whether
// the machine has one; (nil, false, nil) means no shot, not an error.
func (c *Client) GetCurrentShot(ctx context.Context) (*types.HistoryEntry, bool, error) {
	return c.api.GetCurrentShot(ctx)
}

// GetLastShot returns the most recently finished shot. The bool reports
// whether the machine has recorded one.
func (c *Client) GetLastShot(ctx context.Context) (*types.HistoryEntry, bool, error) {
	return c.api.GetLastShot(ctx)
}

// OSUpdateStatus polls operating system update progress over REST, the
// counterpart of the os_update event on the real-time channel.
func (c *Client) OSUpdateStatus(ctx context.Context) (*types.OSStatusResponse, error) {
	return c.api.OSUpdateStatus(ctx)
}
