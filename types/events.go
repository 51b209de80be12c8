// Package types contains the wire-level data types shared by the REST and
// real-time surfaces of the Meticulous machine API.
package types

import "time"

// EventKind names one real-time channel of machine telemetry or
// state-change notifications. The set is closed: the machine emits exactly
// these channels, and subscription wiring is resolved against them at
// client construction.
type EventKind string

// Event kind constants, matching the tokens the machine emits.
const (
	EventStatus        EventKind = "status"
	EventSensors       EventKind = "sensors"
	EventCommunication EventKind = "communication"
	EventActuators     EventKind = "actuators"
	EventButton        EventKind = "button"
	EventNotification  EventKind = "notification"
	EventProfileChange EventKind = "profile"
	EventMachineInfo   EventKind = "info"
	EventHeaterStatus  EventKind = "heater_status"
	EventOSUpdate      EventKind = "os_update"
)

// EventKinds returns every kind the machine emits, in a fixed order.
func EventKinds() []EventKind {
	return []EventKind{
		EventStatus,
		EventSensors,
		EventCommunication,
		EventActuators,
		EventButton,
		EventNotification,
		EventProfileChange,
		EventMachineInfo,
		EventHeaterStatus,
		EventOSUpdate,
	}
}

// Valid reports whether k is a kind the machine emits.
func (k EventKind) Valid() bool {
	switch k {
	case EventStatus, EventSensors, EventCommunication, EventActuators,
		EventButton, EventNotification, EventProfileChange, EventMachineInfo,
		EventHeaterStatus, EventOSUpdate:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer for EventKind
func (k EventKind) String() string {
	return string(k)
}

// SensorData is the compact sensor block embedded in status events.
type SensorData struct {
	Pressure        float64 `json:"p"` // bar
	Flow            float64 `json:"f"` // ml/s
	Weight          float64 `json:"w"` // g
	Temperature     float64 `json:"t"` // °C
	GravimetricFlow float64 `json:"g"` // g/s
}

// SetpointData carries the active control targets during a shot.
type SetpointData struct {
	Active      string  `json:"active,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	Flow        float64 `json:"flow,omitempty"`
	Pressure    float64 `json:"pressure,omitempty"`
	Power       float64 `json:"power,omitempty"`
	Piston      float64 `json:"piston,omitempty"`
}

// StatusData is the machine state frame, emitted at roughly 10Hz while
// the machine is awake.
type StatusData struct {
	Name          string        `json:"name"`
	Sensors       SensorData    `json:"sensors"`
	Time          int64         `json:"time"` // ms since shot start
	ProfileTime   int64         `json:"profile_time"`
	Profile       string        `json:"profile"`
	LoadedProfile string        `json:"loaded_profile,omitempty"`
	ID            string        `json:"id,omitempty"`
	State         string        `json:"state,omitempty"` // idle | heating | extracting | ...
	Extracting    bool          `json:"extracting"`
	Setpoints     *SetpointData `json:"setpoints,omitempty"`
}

// SensorsEvent is the full low-level telemetry frame, also emitted at
// roughly 10Hz. Thermistor readings are °C.
type SensorsEvent struct {
	ExternalTemp1  float64 `json:"t_ext_1"`
	ExternalTemp2  float64 `json:"t_ext_2"`
	BarUpTemp      float64 `json:"t_bar_up"`
	BarMidUpTemp   float64 `json:"t_bar_mu"`
	BarMidDownTemp float64 `json:"t_bar_md"`
	BarDownTemp    float64 `json:"t_bar_down"`
	TubeTemp       float64 `json:"t_tube"`
	MotorThermTemp float64 `json:"t_motor_temp"`
	LamTemp        float64 `json:"lam_temp"`

	Pressure float64 `json:"p"`
	Flow     float64 `json:"f"`
	Weight   float64 `json:"w"`

	ADC0 float64 `json:"a_0"`
	ADC1 float64 `json:"a_1"`
	ADC2 float64 `json:"a_2"`
	ADC3 float64 `json:"a_3"`

	MotorPosition float64 `json:"m_pos"`
	MotorSpeed    float64 `json:"m_spd"`
	MotorPower    float64 `json:"m_pwr"`
	MotorCurrent  float64 `json:"m_cur"`

	BandHeaterPower   float64 `json:"bh_pwr"`
	BandHeaterCurrent float64 `json:"bh_cur"`

	WaterStatus      int     `json:"w_stat"`
	MotorTemp        float64 `json:"motor_temp"`
	WeightPrediction float64 `json:"weight_pred"`
}

// Communication carries raw communication-bus counters.
type Communication struct {
	PressureRaw int `json:"p"`
	ADC0        int `json:"a_0"`
	ADC1        int `json:"a_1"`
	ADC2        int `json:"a_2"`
	ADC3        int `json:"a_3"`
}

// Actuators carries the motor and band heater drive state.
type Actuators struct {
	MotorPosition   int `json:"m_pos"`
	MotorSpeed      int `json:"m_spd"`
	MotorPower      int `json:"m_pwr"`
	MotorCurrent    int `json:"m_cur"`
	BandHeaterPower int `json:"bh_pwr"`
}

// ButtonEvent reports a physical control interaction on the machine.
type ButtonEvent struct {
	Type               string `json:"type"`                  // single_press | double_press | long_press
	TimeSinceLastEvent int64  `json:"time_since_last_event"` // ms
}

// NotificationData is a user-facing notification raised by the machine.
// Responses lists the acknowledgement options the machine accepts back.
type NotificationData struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Image     string    `json:"image,omitempty"`
	Responses []string  `json:"responses"`
	Timestamp time.Time `json:"timestamp"`
}

// ProfileEvent announces a profile store change made on or to the machine.
type ProfileEvent struct {
	Change    string `json:"change"` // create | update | delete | load
	ProfileID string `json:"profile_id,omitempty"`
	ChangeID  string `json:"change_id,omitempty"`
}

// MachineInfo describes the software running on the machine. The two
// blocks are free-form version maps maintained by the firmware.
type MachineInfo struct {
	SoftwareInfo map[string]any `json:"software_info"`
	ESPInfo      map[string]any `json:"esp_info"`
}

// HeaterStatus reports remaining preheat time in minutes.
type HeaterStatus struct {
	Remaining int `json:"remaining"`
}

// OSUpdateEvent reports operating system update progress.
type OSUpdateEvent struct {
	Progress int    `json:"progress"` // percent
	Status   string `json:"status"`   // downloading | installing | complete | ...
	Message  string `json:"message,omitempty"`
}
