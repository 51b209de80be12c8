package stream

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeticulousHome/meticulous-go/pkg/throttle"
	"github.com/MeticulousHome/meticulous-go/types"
)

// fakeClock returns a clock function that replays the given instants in
// order, expressed as offsets from a fixed base.
func fakeClock(t *testing.T, offsets ...time.Duration) func() time.Time {
	t.Helper()
	base := time.Date(2024, 1, 2, 21, 0, 0, 0, time.UTC)
	i := 0
	return func() time.Time {
		if i >= len(offsets) {
			t.Fatalf("clock read %d times, only %d instants provided", i+1, len(offsets))
		}
		at := base.Add(offsets[i])
		i++
		return at
	}
}

func TestSubscriptions_BindsOnlyProvided(t *testing.T) {
	subs := newSubscriptions(Callbacks{
		OnStatus: func(types.StatusData) {},
		OnButton: func(types.ButtonEvent) {},
	}, throttle.None(), time.Now)

	assert.Equal(t, []types.EventKind{types.EventButton, types.EventStatus}, subs.kinds())
}

func TestSubscriptions_DecodesPayload(t *testing.T) {
	var got types.StatusData
	subs := newSubscriptions(Callbacks{
		OnStatus: func(s types.StatusData) { got = s },
	}, throttle.None(), time.Now)

	payload := json.RawMessage(`{
		"name": "brewing",
		"sensors": {"p": 8.9, "f": 1.8, "w": 21.4, "t": 91.2, "g": 1.7},
		"time": 12400,
		"profile": "Tuxedo",
		"extracting": true
	}`)
	delivered, _, err := subs.dispatch(types.EventStatus, payload)

	require.NoError(t, err)
	assert.True(t, delivered)
	assert.Equal(t, "brewing", got.Name)
	assert.Equal(t, "Tuxedo", got.Profile)
	assert.InDelta(t, 8.9, got.Sensors.Pressure, 0.001)
	assert.True(t, got.Extracting)
}

func TestSubscriptions_UnboundKindDiscarded(t *testing.T) {
	called := false
	subs := newSubscriptions(Callbacks{
		OnStatus: func(types.StatusData) { called = true },
	}, throttle.None(), time.Now)

	delivered, reason, err := subs.dispatch(types.EventSensors, json.RawMessage(`{}`))

	require.NoError(t, err)
	assert.False(t, delivered)
	assert.Equal(t, discardUnbound, reason)
	assert.False(t, called)
}

func TestSubscriptions_DecodeErrorDiscarded(t *testing.T) {
	called := false
	subs := newSubscriptions(Callbacks{
		OnStatus: func(types.StatusData) { called = true },
	}, throttle.None(), time.Now)

	delivered, reason, err := subs.dispatch(types.EventStatus, json.RawMessage(`[1, 2, 3]`))

	require.Error(t, err)
	assert.False(t, delivered)
	assert.Equal(t, discardDecode, reason)
	assert.False(t, called)
}

func TestSubscriptions_ThrottledDelivery(t *testing.T) {
	// Frames at 200, 250, and 500ms against a 100ms gate: the second is
	// only 50ms past the first accept and is dropped, never queued.
	var names []string
	subs := newSubscriptions(Callbacks{
		OnStatus: func(s types.StatusData) { names = append(names, s.Name) },
	}, throttle.All(100*time.Millisecond), fakeClock(t,
		200*time.Millisecond,
		250*time.Millisecond,
		500*time.Millisecond,
	))

	for _, name := range []string{"one", "two", "three"} {
		payload, err := json.Marshal(types.StatusData{Name: name})
		require.NoError(t, err)
		subs.dispatch(types.EventStatus, payload)
	}

	assert.Equal(t, []string{"one", "three"}, names)
}

func TestSubscriptions_ThrottledFramesSkipDecode(t *testing.T) {
	subs := newSubscriptions(Callbacks{
		OnStatus: func(types.StatusData) {},
	}, throttle.All(time.Hour), fakeClock(t, 0, time.Second))

	delivered, _, err := subs.dispatch(types.EventStatus, json.RawMessage(`{"name":"ok"}`))
	require.NoError(t, err)
	assert.True(t, delivered)

	// The second frame is gated out before the unmarshal, so a payload
	// that cannot decode reports throttled, not a decode error.
	delivered, reason, err := subs.dispatch(types.EventStatus, json.RawMessage(`not json`))
	require.NoError(t, err)
	assert.False(t, delivered)
	assert.Equal(t, discardThrottled, reason)
}

func TestSubscriptions_UnthrottledNeverReadsClock(t *testing.T) {
	reads := 0
	now := func() time.Time {
		reads++
		return time.Now()
	}
	subs := newSubscriptions(Callbacks{
		OnStatus: func(types.StatusData) {},
	}, throttle.None(), now)

	for i := 0; i < 20; i++ {
		delivered, _, err := subs.dispatch(types.EventStatus, json.RawMessage(`{"name":"ok"}`))
		require.NoError(t, err)
		assert.True(t, delivered)
	}
	assert.Zero(t, reads, "unthrottled bindings must not touch the clock")
}

func TestSubscriptions_PerKindResolution(t *testing.T) {
	statusCalls, buttonCalls := 0, 0
	subs := newSubscriptions(Callbacks{
		OnStatus: func(types.StatusData) { statusCalls++ },
		OnButton: func(types.ButtonEvent) { buttonCalls++ },
	}, throttle.PerKind(map[string]time.Duration{
		"status": 100 * time.Millisecond,
	}), fakeClock(t, 0, 10*time.Millisecond, 20*time.Millisecond))

	// Three rapid status frames pass the gate once; button is not in the
	// spec and takes every frame.
	for i := 0; i < 3; i++ {
		subs.dispatch(types.EventStatus, json.RawMessage(`{"name":"ok"}`))
		subs.dispatch(types.EventButton, json.RawMessage(`{"type":"single_press"}`))
	}

	assert.Equal(t, 1, statusCalls)
	assert.Equal(t, 3, buttonCalls)
}

func TestSubscriptions_FullTableWiring(t *testing.T) {
	got := make(map[types.EventKind]any)
	subs := newSubscriptions(Callbacks{
		OnStatus:        func(v types.StatusData) { got[types.EventStatus] = v },
		OnSensors:       func(v types.SensorsEvent) { got[types.EventSensors] = v },
		OnCommunication: func(v types.Communication) { got[types.EventCommunication] = v },
		OnActuators:     func(v types.Actuators) { got[types.EventActuators] = v },
		OnButton:        func(v types.ButtonEvent) { got[types.EventButton] = v },
		OnNotification:  func(v types.NotificationData) { got[types.EventNotification] = v },
		OnProfileChange: func(v types.ProfileEvent) { got[types.EventProfileChange] = v },
		OnMachineInfo:   func(v types.MachineInfo) { got[types.EventMachineInfo] = v },
		OnHeaterStatus:  func(v types.HeaterStatus) { got[types.EventHeaterStatus] = v },
		OnOSUpdate:      func(v types.OSUpdateEvent) { got[types.EventOSUpdate] = v },
	}, throttle.None(), time.Now)

	payloads := map[types.EventKind]string{
		types.EventStatus:        `{"name":"idle"}`,
		types.EventSensors:       `{"p":9.1,"t_tube":88.5}`,
		types.EventCommunication: `{"p":1021}`,
		types.EventActuators:     `{"m_pos":140}`,
		types.EventButton:        `{"type":"double_press","time_since_last_event":90}`,
		types.EventNotification:  `{"id":"n-1","message":"Water low","responses":["Ok"]}`,
		types.EventProfileChange: `{"change":"update","profile_id":"p-7"}`,
		types.EventMachineInfo:   `{"software_info":{"name":"meticulous"},"esp_info":{}}`,
		types.EventHeaterStatus:  `{"remaining":3}`,
		types.EventOSUpdate:      `{"progress":80,"status":"installing"}`,
	}
	for kind, payload := range payloads {
		delivered, reason, err := subs.dispatch(kind, json.RawMessage(payload))
		require.NoError(t, err, "kind %s", kind)
		assert.True(t, delivered, "kind %s discarded: %s", kind, reason)
	}

	require.Len(t, got, len(payloads))
	assert.Equal(t, "idle", got[types.EventStatus].(types.StatusData).Name)
	assert.InDelta(t, 88.5, got[types.EventSensors].(types.SensorsEvent).TubeTemp, 0.001)
	assert.Equal(t, 1021, got[types.EventCommunication].(types.Communication).PressureRaw)
	assert.Equal(t, 140, got[types.EventActuators].(types.Actuators).MotorPosition)
	assert.Equal(t, "double_press", got[types.EventButton].(types.ButtonEvent).Type)
	assert.Equal(t, "Water low", got[types.EventNotification].(types.NotificationData).Message)
	assert.Equal(t, "update", got[types.EventProfileChange].(types.ProfileEvent).Change)
	assert.Equal(t, "meticulous", got[types.EventMachineInfo].(types.MachineInfo).SoftwareInfo["name"])
	assert.Equal(t, 3, got[types.EventHeaterStatus].(types.HeaterStatus).Remaining)
	assert.Equal(t, 80, got[types.EventOSUpdate].(types.OSUpdateEvent).Progress)
}
