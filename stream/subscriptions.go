package stream

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/MeticulousHome/meticulous-go/pkg/throttle"
	"github.com/MeticulousHome/meticulous-go/types"
)

// Discard reasons reported by dispatch; also used as metric label values.
const (
	discardUnbound   = "unbound"
	discardThrottled = "throttled"
	discardDecode    = "decode_error"
)

// Callbacks binds typed handlers to machine events. Nil fields stay
// unbound and frames for those events are discarded without decoding.
// Handlers run sequentially on the session's read goroutine; a slow
// handler delays every frame behind it.
type Callbacks struct {
	OnStatus        func(types.StatusData)
	OnSensors       func(types.SensorsEvent)
	OnCommunication func(types.Communication)
	OnActuators     func(types.Actuators)
	OnButton        func(types.ButtonEvent)
	OnNotification  func(types.NotificationData)
	OnProfileChange func(types.ProfileEvent)
	OnMachineInfo   func(types.MachineInfo)
	OnHeaterStatus  func(types.HeaterStatus)
	OnOSUpdate      func(types.OSUpdateEvent)
}

// binding is one bound event: an optional gate and the decode-and-invoke
// handler behind it.
type binding struct {
	gate   *throttle.Gate
	handle func(json.RawMessage) error
}

// subscriptions is the static event table for one client. It is built once
// at construction and never mutated, so the read goroutine consults it
// without locking.
type subscriptions struct {
	bindings map[types.EventKind]binding
}

// newSubscriptions resolves the callback set against the throttle spec.
// Bound events with a positive interval get their own gate on the supplied
// clock; intervals of zero or less bind the handler directly.
func newSubscriptions(cb Callbacks, spec throttle.Spec, now func() time.Time) *subscriptions {
	s := &subscriptions{bindings: make(map[types.EventKind]binding)}
	bind(s, types.EventStatus, spec, now, cb.OnStatus)
	bind(s, types.EventSensors, spec, now, cb.OnSensors)
	bind(s, types.EventCommunication, spec, now, cb.OnCommunication)
	bind(s, types.EventActuators, spec, now, cb.OnActuators)
	bind(s, types.EventButton, spec, now, cb.OnButton)
	bind(s, types.EventNotification, spec, now, cb.OnNotification)
	bind(s, types.EventProfileChange, spec, now, cb.OnProfileChange)
	bind(s, types.EventMachineInfo, spec, now, cb.OnMachineInfo)
	bind(s, types.EventHeaterStatus, spec, now, cb.OnHeaterStatus)
	bind(s, types.EventOSUpdate, spec, now, cb.OnOSUpdate)
	return s
}

// bind wires one typed callback into the table. The gate runs before the
// decode so throttled frames never pay for an unmarshal.
func bind[T any](s *subscriptions, kind types.EventKind, spec throttle.Spec, now func() time.Time, fn func(T)) {
	if fn == nil {
		return
	}
	var gate *throttle.Gate
	if interval := spec.IntervalFor(kind.String()); interval > 0 {
		gate = throttle.NewGateAt(interval, now)
	}
	s.bindings[kind] = binding{
		gate: gate,
		handle: func(payload json.RawMessage) error {
			var v T
			if err := json.Unmarshal(payload, &v); err != nil {
				return err
			}
			fn(v)
			return nil
		},
	}
}

// dispatch routes one frame payload to the handler bound to kind. It
// reports whether the frame was delivered and, if not, the discard reason.
// Decode failures also return the underlying error for logging; frames are
// never queued or redelivered.
func (s *subscriptions) dispatch(kind types.EventKind, payload json.RawMessage) (bool, string, error) {
	b, ok := s.bindings[kind]
	if !ok {
		return false, discardUnbound, nil
	}
	if b.gate != nil && !b.gate.Allow() {
		return false, discardThrottled, nil
	}
	if err := b.handle(payload); err != nil {
		return false, discardDecode, err
	}
	return true, "", nil
}

// kinds returns the bound event kinds in stable order.
func (s *subscriptions) kinds() []types.EventKind {
	out := make([]types.EventKind, 0, len(s.bindings))
	for kind := range s.bindings {
		out = append(out, kind)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
