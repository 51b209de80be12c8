package stream

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeticulousHome/meticulous-go/config"
	"github.com/MeticulousHome/meticulous-go/errors"
	"github.com/MeticulousHome/meticulous-go/metric"
	"github.com/MeticulousHome/meticulous-go/pkg/throttle"
	"github.com/MeticulousHome/meticulous-go/testutil"
	"github.com/MeticulousHome/meticulous-go/types"
)

// connectedClient dials a fresh mock machine and waits until the machine
// side has registered the session.
func connectedClient(t *testing.T, cb Callbacks, opts ...ClientOption) (*testutil.MockMachine, *Client) {
	t.Helper()

	machine := testutil.NewMockMachine(t)
	client, err := NewClient(machine.Config(), cb, opts...)
	require.NoError(t, err)
	require.NoError(t, client.Connect(context.Background()))
	t.Cleanup(client.Disconnect)
	machine.WaitForConnection(t)
	return machine, client
}

// metricValue sums the samples of one metric family, or returns -1 when
// the registry cannot be gathered.
func metricValue(registry *metric.MetricsRegistry, name string) float64 {
	families, err := registry.PrometheusRegistry().Gather()
	if err != nil {
		return -1
	}
	total := 0.0
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				total += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				total += m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				total += float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return total
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "disconnected", StatusDisconnected.String())
	assert.Equal(t, "connecting", StatusConnecting.String())
	assert.Equal(t, "connected", StatusConnected.String())
	assert.Equal(t, "closing", StatusClosing.String())
	assert.Equal(t, "unknown", Status(99).String())
}

func TestNewClient_NilConfig(t *testing.T) {
	client, err := NewClient(nil, Callbacks{})

	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/api/v1/stream", client.URL())
	assert.Equal(t, StatusDisconnected, client.Status())
}

func TestNewClient_InvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Host = "ftp://machine.local"

	_, err := NewClient(cfg, Callbacks{})

	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}

func TestConnect_DeliversEvents(t *testing.T) {
	statusCh := make(chan types.StatusData, 1)
	machine, client := connectedClient(t, Callbacks{
		OnStatus: func(s types.StatusData) { statusCh <- s },
	})

	assert.True(t, client.IsConnected())
	machine.Emit(t, "status", types.StatusData{Name: "brewing", Profile: "Tuxedo"})

	select {
	case got := <-statusCh:
		assert.Equal(t, "brewing", got.Name)
		assert.Equal(t, "Tuxedo", got.Profile)
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for status event")
	}
}

func TestConnect_DeliversEveryKind(t *testing.T) {
	delivered := make(chan string, 32)
	machine, _ := connectedClient(t, Callbacks{
		OnStatus:        func(types.StatusData) { delivered <- "status" },
		OnSensors:       func(types.SensorsEvent) { delivered <- "sensors" },
		OnCommunication: func(types.Communication) { delivered <- "communication" },
		OnActuators:     func(types.Actuators) { delivered <- "actuators" },
		OnButton:        func(types.ButtonEvent) { delivered <- "button" },
		OnNotification:  func(types.NotificationData) { delivered <- "notification" },
		OnProfileChange: func(types.ProfileEvent) { delivered <- "profile" },
		OnMachineInfo:   func(types.MachineInfo) { delivered <- "info" },
		OnHeaterStatus:  func(types.HeaterStatus) { delivered <- "heater_status" },
		OnOSUpdate:      func(types.OSUpdateEvent) { delivered <- "os_update" },
	})

	for _, frame := range testutil.SampleFrames() {
		machine.Emit(t, frame.Event, frame.Payload)
	}

	seen := make(map[string]bool)
	for len(seen) < len(types.EventKinds()) {
		select {
		case name := <-delivered:
			seen[name] = true
		case <-time.After(2 * time.Second):
			t.Fatalf("Timeout with %d of %d kinds delivered", len(seen), len(types.EventKinds()))
		}
	}
}

func TestConnect_AlreadyConnected(t *testing.T) {
	_, client := connectedClient(t, Callbacks{})

	err := client.Connect(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrAlreadyConnected)
	assert.True(t, errors.IsInvalid(err))
}

func TestDisconnect_Idempotent(t *testing.T) {
	_, client := connectedClient(t, Callbacks{})

	client.Disconnect()
	client.Disconnect()

	assert.Equal(t, StatusDisconnected, client.Status())
	assert.False(t, client.IsConnected())
}

func TestDisconnect_ThenReconnect(t *testing.T) {
	machine, client := connectedClient(t, Callbacks{})

	client.Disconnect()
	require.NoError(t, client.Connect(context.Background()))
	defer client.Disconnect()

	assert.True(t, client.IsConnected())
	assert.Equal(t, 2, machine.DialCount())
}

func TestConnect_RetriesExhausted(t *testing.T) {
	machine := testutil.NewMockMachine(t, testutil.WithFailedUpgrades(10))
	client, err := NewClient(machine.Config(), Callbacks{})
	require.NoError(t, err)

	err = client.ConnectWithRetry(context.Background(), 2, 2*time.Millisecond, 5*time.Millisecond)

	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrConnectionFailed)
	assert.ErrorIs(t, err, errors.ErrMaxRetriesExceeded)
	assert.True(t, errors.IsTransient(err))
	assert.Equal(t, 3, machine.DialCount(), "retries=2 means three attempts")
	assert.Equal(t, StatusDisconnected, client.Status())
}

func TestConnectWithRetry_FailFast(t *testing.T) {
	machine := testutil.NewMockMachine(t, testutil.WithFailedUpgrades(10))
	client, err := NewClient(machine.Config(), Callbacks{})
	require.NoError(t, err)

	start := time.Now()
	err = client.ConnectWithRetry(context.Background(), 0, 0, 0)

	require.Error(t, err)
	assert.Equal(t, 1, machine.DialCount(), "retries=0 means a single attempt")
	assert.Less(t, time.Since(start), 300*time.Millisecond, "fail-fast must not sleep")
}

func TestConnectWithRetry_RecoversAfterFailures(t *testing.T) {
	machine := testutil.NewMockMachine(t, testutil.WithFailedUpgrades(2))
	client, err := NewClient(machine.Config(), Callbacks{})
	require.NoError(t, err)

	err = client.ConnectWithRetry(context.Background(), 3, 2*time.Millisecond, 5*time.Millisecond)
	defer client.Disconnect()

	require.NoError(t, err)
	assert.True(t, client.IsConnected())
	assert.Equal(t, 3, machine.DialCount(), "two failures then success")
}

func TestConnect_ContextCancelled(t *testing.T) {
	machine := testutil.NewMockMachine(t, testutil.WithFailedUpgrades(100))
	client, err := NewClient(machine.Config(), Callbacks{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err = client.ConnectWithRetry(ctx, 5, 100*time.Millisecond, 200*time.Millisecond)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StatusDisconnected, client.Status())
	assert.Less(t, machine.DialCount(), 3, "cancellation aborts the backoff loop")
}

func TestSendAction_FrameShape(t *testing.T) {
	machine, client := connectedClient(t, Callbacks{})

	require.NoError(t, client.SendAction(types.ActionStart))

	frames := machine.WaitForFrames(t, 1)
	frame := frames[0]
	assert.Equal(t, "action", frame.Event)
	assert.JSONEq(t, `"start"`, string(frame.Payload))
	assert.Greater(t, frame.Timestamp, int64(0))
	_, err := uuid.Parse(frame.ID)
	assert.NoError(t, err, "outbound frames carry a UUID id")
}

func TestAcknowledgeNotification_FrameShape(t *testing.T) {
	machine, client := connectedClient(t, Callbacks{})

	require.NoError(t, client.AcknowledgeNotification("123", "Ok"))

	frames := machine.WaitForFrames(t, 1)
	assert.Equal(t, "notification", frames[0].Event)
	assert.JSONEq(t, `{"id":"123","response":"Ok"}`, string(frames[0].Payload))
}

func TestSendProfileHover_FrameShape(t *testing.T) {
	machine, client := connectedClient(t, Callbacks{})

	require.NoError(t, client.SendProfileHover(map[string]any{"id": "p-1", "from": "app"}))

	frames := machine.WaitForFrames(t, 1)
	assert.Equal(t, "profileHover", frames[0].Event)
	assert.JSONEq(t, `{"id":"p-1","from":"app"}`, string(frames[0].Payload))
}

func TestTriggerCalibration_FrameShape(t *testing.T) {
	machine, client := connectedClient(t, Callbacks{})

	require.NoError(t, client.TriggerCalibration(true))

	frames := machine.WaitForFrames(t, 1)
	assert.Equal(t, "calibrate", frames[0].Event)
	assert.JSONEq(t, `true`, string(frames[0].Payload))
}

func TestConnectionLost_InvokesCallback(t *testing.T) {
	errCh := make(chan error, 1)
	machine, client := connectedClient(t, Callbacks{},
		WithDisconnectCallback(func(err error) { errCh <- err }))

	machine.CloseConnections()

	select {
	case err := <-errCh:
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrConnectionLost)
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for disconnect callback")
	}
	assert.Equal(t, StatusDisconnected, client.Status())
}

func TestDisconnect_CallbackNilError(t *testing.T) {
	errCh := make(chan error, 1)
	_, client := connectedClient(t, Callbacks{},
		WithDisconnectCallback(func(err error) { errCh <- err }))

	client.Disconnect()

	select {
	case err := <-errCh:
		assert.NoError(t, err, "deliberate disconnects report no error")
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for disconnect callback")
	}
}

func TestConnectCallback(t *testing.T) {
	connected := make(chan struct{}, 1)
	_, client := connectedClient(t, Callbacks{},
		WithConnectCallback(func() { connected <- struct{}{} }))

	select {
	case <-connected:
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for connect callback")
	}
	assert.True(t, client.IsConnected())
}

func TestMalformedFrames_KeepSessionAlive(t *testing.T) {
	statusCh := make(chan types.StatusData, 1)
	machine, client := connectedClient(t, Callbacks{
		OnStatus: func(s types.StatusData) { statusCh <- s },
	})

	machine.EmitRaw([]byte("not json at all"))
	machine.EmitRaw([]byte(`{"payload": {"name": "orphan"}}`))
	machine.Emit(t, "espresso_wisdom", map[string]string{"quote": "grind finer"})
	machine.Emit(t, "status", types.StatusData{Name: "recovered"})

	select {
	case got := <-statusCh:
		assert.Equal(t, "recovered", got.Name)
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for status event after bad frames")
	}
	assert.True(t, client.IsConnected())
}

func TestThrottle_DiscardsInsideInterval(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	statusCh := make(chan types.StatusData, 2)
	machine, _ := connectedClient(t, Callbacks{
		OnStatus: func(s types.StatusData) { statusCh <- s },
	}, WithMetrics(registry), WithThrottle(throttle.All(time.Hour)))

	machine.Emit(t, "status", types.StatusData{Name: "first"})
	select {
	case got := <-statusCh:
		assert.Equal(t, "first", got.Name)
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for first status event")
	}

	machine.Emit(t, "status", types.StatusData{Name: "second"})
	require.Eventually(t, func() bool {
		return metricValue(registry, "meticulous_events_discarded_total") >= 1
	}, 2*time.Second, 10*time.Millisecond, "second frame lands inside the interval")

	select {
	case got := <-statusCh:
		t.Fatalf("Unexpected delivery %q inside throttle interval", got.Name)
	default:
	}
}

func TestPing_FeedsRTTHistogram(t *testing.T) {
	machine := testutil.NewMockMachine(t)
	registry := metric.NewMetricsRegistry()

	cfg := machine.Config()
	cfg.Stream.PingInterval = config.Duration(20 * time.Millisecond)
	client, err := NewClient(cfg, Callbacks{}, WithMetrics(registry))
	require.NoError(t, err)
	require.NoError(t, client.Connect(context.Background()))
	defer client.Disconnect()

	require.Eventually(t, func() bool {
		return metricValue(registry, "meticulous_stream_rtt_milliseconds") > 0
	}, 2*time.Second, 20*time.Millisecond, "pong round trips feed the RTT histogram")
	assert.True(t, client.IsConnected())
}

func TestConnect_RecordsMetrics(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	statusCh := make(chan types.StatusData, 1)
	machine, client := connectedClient(t, Callbacks{
		OnStatus: func(s types.StatusData) { statusCh <- s },
	}, WithMetrics(registry))

	machine.Emit(t, "status", types.StatusData{Name: "idle"})
	select {
	case <-statusCh:
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for status event")
	}
	require.NoError(t, client.SendAction(types.ActionTare))
	machine.WaitForFrames(t, 1)

	assert.Equal(t, float64(StatusConnected), metricValue(registry, "meticulous_stream_connection_state"))
	assert.GreaterOrEqual(t, metricValue(registry, "meticulous_stream_connect_attempts_total"), 1.0)
	assert.GreaterOrEqual(t, metricValue(registry, "meticulous_stream_frames_total"), 2.0, "one in, one out")
	assert.Equal(t, 1.0, metricValue(registry, "meticulous_stream_emits_total"))
	assert.Equal(t, 1.0, metricValue(registry, "meticulous_events_received_total"))
	assert.Equal(t, 1.0, metricValue(registry, "meticulous_events_delivered_total"))
	assert.Equal(t, 1.0, metricValue(registry, "meticulous_actions_sent_total"))
}
