// Package testutil provides an in-process double of the Meticulous
// espresso machine for integration tests: the REST surface and the
// real-time WebSocket channel, both backed by httptest. No network
// access or hardware is required.
//
// # Machine Double
//
// MockMachine serves both machine surfaces from one httptest server:
//   - REST endpoints are registered per test via Handle or HandleJSON
//   - the stream endpoint at /api/v1/stream upgrades WebSocket dials,
//     records every frame clients send, and broadcasts emitted events
//   - upgrade failures can be injected with WithFailedUpgrades to
//     exercise retry paths
//   - dial and connection counts are exposed for assertions
//
// A typical test builds the double, points a client at it, and drives
// both directions:
//
//	machine := testutil.NewMockMachine(t)
//	client, err := stream.NewClient(machine.Config(), callbacks)
//	// connect, then:
//	machine.Emit(t, "status", payload)   // machine -> client
//	frames := machine.WaitForFrames(t, 1) // client -> machine
//
// # Canned Payloads
//
// SamplePayloads and SampleFrames provide one realistic payload per
// event kind, so tests of the full dispatch surface do not hand-write
// telemetry JSON.
package testutil
