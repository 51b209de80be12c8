package testutil

import (
	"encoding/json"

	"github.com/MeticulousHome/meticulous-go/types"
)

// SamplePayloads holds one realistic payload per event the machine emits,
// shaped like frames captured mid-shot. Tests that care about a single
// kind can index the map directly; SampleFrames returns the full set.
var SamplePayloads = map[types.EventKind]string{
	types.EventStatus: `{"name": "brewing", "sensors": {"p": 8.2, "f": 1.9, "w": 21.4, "t": 92.1, "g": 1.8},` +
		` "time": 14200, "profile_time": 14200, "profile": "Ristretto Classico", "state": "extracting", "extracting": true}`,
	types.EventSensors: `{"t_ext_1": 91.8, "t_ext_2": 92.0, "t_bar_up": 92.4, "t_bar_mu": 92.2, "t_bar_md": 92.1,` +
		` "t_bar_down": 91.9, "t_tube": 88.7, "t_motor_temp": 41.2, "lam_temp": 90.3, "p": 8.2, "f": 1.9, "w": 21.4,` +
		` "a_0": 0.41, "a_1": 0.39, "a_2": 0.44, "a_3": 0.4, "m_pos": 1210, "m_spd": 3.1, "m_pwr": 62.5, "m_cur": 1.4,` +
		` "bh_pwr": 38.0, "bh_cur": 2.1, "w_stat": 1, "motor_temp": 40.8, "weight_pred": 36.2}`,
	types.EventCommunication: `{"p": 512, "a_0": 1023, "a_1": 998, "a_2": 1011, "a_3": 1005}`,
	types.EventActuators:     `{"m_pos": 1210, "m_spd": 3, "m_pwr": 62, "m_cur": 1, "bh_pwr": 38}`,
	types.EventButton:        `{"type": "single_press", "time_since_last_event": 5400}`,
	types.EventNotification: `{"id": "water-tank-low", "message": "Water tank is almost empty",` +
		` "responses": ["Ok", "Remind me later"], "timestamp": "2025-06-01T09:30:00Z"}`,
	types.EventProfileChange: `{"change": "load", "profile_id": "c9b8a214-6f0e-4d6f-9c3e-6d1a2f4b8e01"}`,
	types.EventMachineInfo: `{"software_info": {"name": "Meticulous Espresso", "firmwareV": "1.42"},` +
		` "esp_info": {"firmwareV": "3.1", "espPinout": 2}}`,
	types.EventHeaterStatus: `{"remaining": 4}`,
	types.EventOSUpdate:     `{"progress": 37, "status": "downloading", "message": "Fetching image"}`,
}

// SampleFrames returns one ready-to-emit frame per event kind, in the
// order the vocabulary declares them.
func SampleFrames() []Frame {
	kinds := types.EventKinds()
	frames := make([]Frame, 0, len(kinds))
	for _, kind := range kinds {
		frames = append(frames, Frame{
			Event:   kind.String(),
			Payload: json.RawMessage(SamplePayloads[kind]),
		})
	}
	return frames
}
