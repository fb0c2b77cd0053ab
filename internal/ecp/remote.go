package ecp

import (
	"context"
	"fmt"
	"time"

	"ecpctl/internal"
	"ecpctl/internal/device"
)

// Remote implements the Device interface on top of an ECP client
type Remote struct {
	client *Client
	info   device.DeviceInfo
}

// NewRemote creates a new Remote for the device at address
func NewRemote(address string, options *internal.FnModeOptions, clientOptions ...ClientOption) *Remote {
	opts := append([]ClientOption{WithModeOptions(options)}, clientOptions...)
	client := NewClient(address, opts...)

	return &Remote{
		client: client,
		info: device.DeviceInfo{
			Type:    "roku_ecp",
			Model:   "Roku",
			Address: address,
			Capabilities: []string{
				"remote_control",
				"text_entry",
				"app_launch",
				"input_control",
				"power_control",
				"media_query",
			},
		},
	}
}

// Client exposes the underlying ECP client
func (r *Remote) Client() *Client {
	return r.client
}

// GetDeviceInfo returns information about this device
func (r *Remote) GetDeviceInfo() device.DeviceInfo {
	return r.info
}

// Process handles JSON action requests and routes them to client operations
func (r *Remote) Process(ctx context.Context, actionJSON []byte) (*device.ActionResponse, error) {
	request, err := device.ParseActionRequest(actionJSON)
	if err != nil {
		return failure(err.Error()), nil
	}
	return r.ProcessRequest(ctx, request)
}

// ProcessRequest routes an already decoded request
func (r *Remote) ProcessRequest(ctx context.Context, request *device.ActionRequest) (*device.ActionResponse, error) {
	switch request.Type {
	case device.ActionTypeRemote:
		return r.processRemoteAction(ctx, request)
	case device.ActionTypeQuery:
		return r.processQueryAction(ctx, request)
	default:
		return failure(fmt.Sprintf("unsupported action type: %s", request.Type)), nil
	}
}

func (r *Remote) processRemoteAction(ctx context.Context, request *device.ActionRequest) (*device.ActionResponse, error) {
	action := device.RemoteAction(request.Action)

	if key, exists := remoteKeyMap[action]; exists {
		return r.result(request.Action, r.client.KeyPress(ctx, key))
	}

	var err error
	switch action {
	case device.RemoteActionPower:
		err = r.client.PowerToggle(ctx)

	case device.RemoteActionKeyPress, device.RemoteActionKeyDown, device.RemoteActionKeyUp:
		key, ok := request.StringParam("key")
		if !ok || key == "" {
			return failure(fmt.Sprintf("key parameter is required for %s action", request.Action)), nil
		}
		switch action {
		case device.RemoteActionKeyDown:
			err = r.client.KeyDown(ctx, Key(key))
		case device.RemoteActionKeyUp:
			err = r.client.KeyUp(ctx, Key(key))
		default:
			err = r.client.KeyPress(ctx, Key(key))
		}

	case device.RemoteActionLetter:
		letter, _ := request.StringParam("letter")
		err = r.client.KeyPressLetter(ctx, letter)

	case device.RemoteActionHold:
		key, ok := request.StringParam("key")
		if !ok || key == "" {
			return failure("key parameter is required for hold action"), nil
		}
		durationMS, ok, perr := request.IntParam("duration_ms")
		if perr != nil {
			return failure(fmt.Sprintf("invalid parameters: %v", perr)), nil
		}
		if !ok {
			return failure("duration_ms parameter is required for hold action"), nil
		}
		err = r.client.HoldKey(ctx, Key(key), time.Duration(durationMS)*time.Millisecond)

	case device.RemoteActionLaunch:
		appID, ok := request.StringParam("app_id")
		if !ok || appID == "" {
			return failure("app_id parameter is required for launch action"), nil
		}
		var options []LaunchOption
		if contentID, ok := request.StringParam("content_id"); ok {
			options = append(options, WithContentID(contentID))
		}
		if mediaType, ok := request.StringParam("media_type"); ok {
			options = append(options, WithMediaType(MediaType(mediaType)))
		}
		err = r.client.Launch(ctx, appID, options...)

	case device.RemoteActionInput:
		input, _ := request.StringParam("input")
		err = r.client.SwitchToInput(ctx, Input(input))

	default:
		return failure(fmt.Sprintf("unsupported remote action: %s", request.Action)), nil
	}

	return r.result(request.Action, err)
}

func (r *Remote) processQueryAction(ctx context.Context, request *device.ActionRequest) (*device.ActionResponse, error) {
	var (
		data interface{}
		err  error
	)

	switch device.QueryAction(request.Action) {
	case device.QueryActionDeviceInfo:
		data, err = r.client.DeviceInfo(ctx)
	case device.QueryActionPlayer:
		data, err = r.client.PlayerState(ctx)
	case device.QueryActionApps:
		data, err = r.client.Apps(ctx)
	default:
		return failure(fmt.Sprintf("unsupported query action: %s", request.Action)), nil
	}

	if err != nil {
		return failure(fmt.Sprintf("query failed: %v", err)), nil
	}
	return &device.ActionResponse{Success: true, Data: data}, nil
}

func (r *Remote) result(action string, err error) (*device.ActionResponse, error) {
	if err != nil {
		return failure(fmt.Sprintf("remote request failed: %v", err)), nil
	}
	return &device.ActionResponse{
		Success: true,
		Data:    fmt.Sprintf("Remote action '%s' executed successfully", action),
	}, nil
}

func failure(message string) *device.ActionResponse {
	return &device.ActionResponse{Success: false, Error: message}
}

// remoteKeyMap maps fixed-key actions to their ECP key
var remoteKeyMap = map[device.RemoteAction]Key{
	device.RemoteActionHome:          KeyHome,
	device.RemoteActionUp:            KeyUp,
	device.RemoteActionDown:          KeyDown,
	device.RemoteActionLeft:          KeyLeft,
	device.RemoteActionRight:         KeyRight,
	device.RemoteActionSelect:        KeySelect,
	device.RemoteActionBack:          KeyBack,
	device.RemoteActionPlay:          KeyPlay,
	device.RemoteActionReverse:       KeyReverse,
	device.RemoteActionForward:       KeyForward,
	device.RemoteActionInstantReplay: KeyInstantReplay,
	device.RemoteActionOptions:       KeyInfo,
	device.RemoteActionSearch:        KeySearch,
	device.RemoteActionBackspace:     KeyBackspace,
	device.RemoteActionEnter:         KeyEnter,
	device.RemoteActionVolumeUp:      KeyVolumeUp,
	device.RemoteActionVolumeDown:    KeyVolumeDown,
	device.RemoteActionMute:          KeyVolumeMute,
	device.RemoteActionPowerOn:       KeyPowerOn,
	device.RemoteActionPowerOff:      KeyPowerOff,
}

// AvailableRemoteActions lists every remote action name Process accepts
var AvailableRemoteActions = []string{
	"home", "back", "up", "down", "left", "right", "select",
	"play", "reverse", "forward", "instant_replay", "options", "search",
	"backspace", "enter", "volume_up", "volume_down", "mute",
	"power", "power_on", "power_off",
	"key_press", "key_down", "key_up", "letter", "hold", "launch", "input",
}

// AvailableQueryActions lists every query action name Process accepts
var AvailableQueryActions = []string{"device_info", "player", "apps"}
