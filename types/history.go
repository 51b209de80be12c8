package types

import "encoding/json"

// HistoryFile is one entry in a shot log listing: a date bucket or a file
// within one. Name follows the machine's fixed-width date/time naming
// convention ("2024-01-02", "21:04:06.shot.json"), which is what makes
// descending lexical sort equivalent to newest-first. URL is the path
// segment used to fetch the entry.
type HistoryFile struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ShotDataPoint is one sample of a recorded shot.
type ShotDataPoint struct {
	Shot    ShotSample      `json:"shot"`
	Time    int64           `json:"time"` // ms since shot start
	Status  string          `json:"status"`
	Sensors json.RawMessage `json:"sensors,omitempty"`
}

// ShotSample is the brewing measurement block of a data point.
type ShotSample struct {
	Pressure        float64 `json:"pressure,omitempty"`
	Flow            float64 `json:"flow,omitempty"`
	Weight          float64 `json:"weight,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
	GravimetricFlow float64 `json:"gravimetric_flow,omitempty"`
}

// HistoryEntry is a recorded shot. The profile document is carried opaque;
// this client does not model the profile schema.
type HistoryEntry struct {
	ID        string          `json:"id"`
	DBKey     int64           `json:"db_key,omitempty"`
	Time      float64         `json:"time"` // unix seconds
	File      string          `json:"file,omitempty"`
	Name      string          `json:"name"`
	Profile   json.RawMessage `json:"profile"`
	Rating    string          `json:"rating,omitempty"` // like | dislike
	DebugFile string          `json:"debug_file,omitempty"`
	Data      []ShotDataPoint `json:"data,omitempty"`
}

// OSStatusResponse is the REST snapshot of operating system update
// progress, the poll counterpart of the os_update event.
type OSStatusResponse struct {
	Progress int    `json:"progress,omitempty"`
	Status   string `json:"status,omitempty"`
	Info     string `json:"info,omitempty"`
}
