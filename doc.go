// Package meticulous is a Go client for the Meticulous espresso machine,
// covering both of its surfaces: the REST API and the real-time event
// channel.
//
// # Surfaces
//
// The machine exposes two complementary interfaces on the local network:
//
//   - REST: machine actions, shot history, shot logs, and OS update
//     status. Request/response, safe to poll.
//   - Real-time channel: a WebSocket pushing brew status and sensor
//     telemetry at roughly 10Hz, plus button presses, notifications,
//     profile changes, heater status, and OS update progress. Events are
//     delivered to typed callbacks; a small set of actions can be sent
//     back over the same channel.
//
// Client bundles both behind one configuration. The api and stream
// packages remain usable on their own when only one surface is needed.
//
// # Basic Usage
//
//	cfg := config.DefaultConfig()
//	cfg.Host = "http://meticulous.local:8080"
//
//	client, err := meticulous.New(cfg, meticulous.Options{
//		Callbacks: meticulous.Callbacks{
//			OnStatus: func(s types.StatusData) {
//				fmt.Printf("%s: %.1f bar\n", s.Name, s.Sensors.Pressure)
//			},
//		},
//		Throttle: throttle.All(250 * time.Millisecond),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := client.Connect(ctx); err != nil {
//		log.Fatal(err)
//	}
//	defer client.Disconnect()
//
//	if err := client.SendAction(types.ActionStart); err != nil {
//		log.Fatal(err)
//	}
//
// The machine's host can also come from a YAML file via config.Loader,
// which applies METICULOUS_HOST and friends as environment overrides.
//
// # Event Throttling
//
// The status and sensors channels stream at 10Hz, which is more than most
// consumers want. A throttle spec enforces a minimum spacing per event
// kind; frames arriving inside the interval are dropped, never queued, so
// a delivered value is always a fresh reading:
//
//	throttle.All(250 * time.Millisecond)
//	throttle.PerKind(map[string]time.Duration{
//		"status":  250 * time.Millisecond,
//		"sensors": time.Second,
//	})
//
// # Actions
//
// SendAction pushes start, stop, continue, tare, and preheat over the
// channel, fire-and-forget. ExecuteAction drives the REST endpoint
// instead, which accepts the full vocabulary (including reset and the
// calibration actions) and returns the machine's reply.
//
// # Shot History
//
// Finished shots are archived on the machine in dated buckets.
// GetLastShotLog walks the listings to the newest log and decodes it,
// transparently decompressing zstd-encoded payloads. GetCurrentShot and
// GetLastShot return an explicit bool distinguishing "no shot recorded"
// from a present entry.
//
// # Errors
//
// All failures flow through the errors package taxonomy: transient
// (retryable), invalid (fix the input), fatal (reconfigure). Standard
// sentinels such as errors.ErrNoConnection and errors.ErrInvalidAction
// are matchable with the standard library's errors.Is.
package meticulous
