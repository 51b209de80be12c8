// Package stream maintains the real-time WebSocket channel to a
// Meticulous espresso machine.
//
// The machine pushes JSON frames for its events: brew status and sensor
// telemetry at roughly 10Hz, plus button presses, notifications, profile
// changes, heater status, and OS update progress. A Client binds typed
// callbacks to those events, optionally throttled per event kind, and
// offers a small set of outbound emits for driving the machine.
//
// # Subscriptions
//
// Callbacks are bound once at construction. Events without a callback are
// discarded without decoding:
//
//	client, err := stream.NewClient(cfg, stream.Callbacks{
//		OnStatus: func(s types.StatusData) {
//			fmt.Println(s.Name, s.Sensors.Pressure)
//		},
//		OnButton: func(b types.ButtonEvent) {
//			fmt.Println("button:", b.Type)
//		},
//	}, stream.WithThrottle(throttle.All(250*time.Millisecond)))
//	if err != nil {
//		return err
//	}
//	if err := client.Connect(ctx); err != nil {
//		return err
//	}
//	defer client.Disconnect()
//
// # Delivery Model
//
// One read goroutine per session delivers frames sequentially in arrival
// order, and callbacks run on that goroutine. A slow callback therefore
// delays every frame behind it; throttle the chatty kinds instead of
// blocking in handlers. Frames arriving inside a kind's throttle interval
// are discarded, never queued, so the latest delivered value is always a
// real frame from the machine.
//
// # Outbound Emits
//
// SendAction accepts the channel allowlist (start, stop, continue, tare,
// preheat) and rejects anything else before a frame is written. The full
// action vocabulary is available over REST via the api package. All emits
// are fire-and-forget: delivery confirmation comes back through the event
// stream, not a reply.
//
// # Reconnection
//
// Connect retries with capped exponential backoff per the configured
// policy; ConnectWithRetry overrides it per call. A lost connection ends
// the session and invokes the disconnect callback with the read error.
// The client does not reconnect on its own.
package stream
