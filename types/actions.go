package types

// ActionType is a machine control command. The REST action endpoint
// accepts the full vocabulary; the real-time channel accepts only the
// stream-safe subset enforced by the stream package.
type ActionType string

// Action constants
const (
	ActionStart                  ActionType = "start"
	ActionStop                   ActionType = "stop"
	ActionContinue               ActionType = "continue"
	ActionReset                  ActionType = "reset"
	ActionTare                   ActionType = "tare"
	ActionPreheat                ActionType = "preheat"
	ActionCalibration            ActionType = "calibration"
	ActionScaleMasterCalibration ActionType = "scale_master_calibration"
)

// Actions returns the full REST action vocabulary.
func Actions() []ActionType {
	return []ActionType{
		ActionStart,
		ActionStop,
		ActionContinue,
		ActionReset,
		ActionTare,
		ActionPreheat,
		ActionCalibration,
		ActionScaleMasterCalibration,
	}
}

// Valid reports whether a is a known machine action.
func (a ActionType) Valid() bool {
	switch a {
	case ActionStart, ActionStop, ActionContinue, ActionReset,
		ActionTare, ActionPreheat, ActionCalibration, ActionScaleMasterCalibration:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer for ActionType
func (a ActionType) String() string {
	return string(a)
}

// ActionResponse is the machine's reply to a REST action request.
type ActionResponse struct {
	Status         string   `json:"status,omitempty"`
	Action         string   `json:"action,omitempty"`
	AllowedActions []string `json:"allowed_actions,omitempty"`
}

// APIError is the error envelope the machine returns on failed REST
// requests.
type APIError struct {
	Error  string `json:"error,omitempty"`
	Status string `json:"status,omitempty"`
}

// AcknowledgeNotificationRequest answers a machine notification with one
// of its offered responses.
type AcknowledgeNotificationRequest struct {
	ID       string `json:"id"`
	Response string `json:"response"`
}
