package device

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// Device represents a generic device that can process commands
type Device interface {
	// Process handles a JSON-encoded action and executes the corresponding operation
	Process(ctx context.Context, actionJSON []byte) (*ActionResponse, error)

	// GetDeviceInfo returns basic information about the device
	GetDeviceInfo() DeviceInfo
}

// DeviceInfo contains basic information about a device
type DeviceInfo struct {
	Type         string   `json:"type"`
	Model        string   `json:"model"`
	Address      string   `json:"address"`
	Capabilities []string `json:"capabilities"`
}

// ActionType represents the type of action to perform
type ActionType string

const (
	ActionTypeRemote ActionType = "remote"
	ActionTypeQuery  ActionType = "query"
)

// ActionRequest represents a JSON action request
type ActionRequest struct {
	Type       ActionType             `json:"type"`       // "remote" or "query"
	Action     string                 `json:"action"`     // specific action name
	Parameters map[string]interface{} `json:"parameters"` // optional parameters
}

// ActionResponse represents the response from processing an action
type ActionResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// RemoteAction represents available remote control actions
type RemoteAction string

const (
	RemoteActionHome          RemoteAction = "home"
	RemoteActionUp            RemoteAction = "up"
	RemoteActionDown          RemoteAction = "down"
	RemoteActionLeft          RemoteAction = "left"
	RemoteActionRight         RemoteAction = "right"
	RemoteActionSelect        RemoteAction = "select"
	RemoteActionBack          RemoteAction = "back"
	RemoteActionPlay          RemoteAction = "play"
	RemoteActionReverse       RemoteAction = "reverse"
	RemoteActionForward       RemoteAction = "forward"
	RemoteActionInstantReplay RemoteAction = "instant_replay"
	RemoteActionOptions       RemoteAction = "options"
	RemoteActionSearch        RemoteAction = "search"
	RemoteActionBackspace     RemoteAction = "backspace"
	RemoteActionEnter         RemoteAction = "enter"
	RemoteActionVolumeUp      RemoteAction = "volume_up"
	RemoteActionVolumeDown    RemoteAction = "volume_down"
	RemoteActionMute          RemoteAction = "mute"
	RemoteActionPower         RemoteAction = "power"
	RemoteActionPowerOn       RemoteAction = "power_on"
	RemoteActionPowerOff      RemoteAction = "power_off"

	// Parameterised actions
	RemoteActionKeyPress RemoteAction = "key_press"
	RemoteActionKeyDown  RemoteAction = "key_down"
	RemoteActionKeyUp    RemoteAction = "key_up"
	RemoteActionLetter   RemoteAction = "letter"
	RemoteActionHold     RemoteAction = "hold"
	RemoteActionLaunch   RemoteAction = "launch"
	RemoteActionInput    RemoteAction = "input"
)

// QueryAction represents read-only device queries
type QueryAction string

const (
	QueryActionDeviceInfo QueryAction = "device_info"
	QueryActionPlayer     QueryAction = "player"
	QueryActionApps       QueryAction = "apps"
)

// ParseActionRequest parses JSON input into ActionRequest
func ParseActionRequest(actionJSON []byte) (*ActionRequest, error) {
	var request ActionRequest
	if err := json.Unmarshal(actionJSON, &request); err != nil {
		return nil, fmt.Errorf("failed to parse action request: %w", err)
	}

	if request.Type == "" {
		return nil, fmt.Errorf("action type is required")
	}

	if request.Action == "" {
		return nil, fmt.Errorf("action is required")
	}

	return &request, nil
}

// StringParam returns a string parameter, converting numbers and bools the way JSON decoding produced them
func (r *ActionRequest) StringParam(name string) (string, bool) {
	if r.Parameters == nil {
		return "", false
	}
	value, exists := r.Parameters[name]
	if !exists || value == nil {
		return "", false
	}
	switch v := value.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return fmt.Sprintf("%v", v), true
	}
}

// IntParam returns an integer parameter; JSON numbers arrive as float64
func (r *ActionRequest) IntParam(name string) (int, bool, error) {
	if r.Parameters == nil {
		return 0, false, nil
	}
	value, exists := r.Parameters[name]
	if !exists || value == nil {
		return 0, false, nil
	}
	switch v := value.(type) {
	case float64:
		return int(v), true, nil
	case int:
		return v, true, nil
	default:
		return 0, true, fmt.Errorf("parameter %s must be a number", name)
	}
}
