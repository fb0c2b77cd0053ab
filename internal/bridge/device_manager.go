package bridge

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"ecpctl/internal"
	"ecpctl/internal/config"
	"ecpctl/internal/device"
	"ecpctl/internal/ecp"
	"ecpctl/internal/logger"
)

// ErrDeviceNotFound is returned for an id that is not configured
var ErrDeviceNotFound = errors.New("device not found")

// DeviceSummary is the public view of one configured device
type DeviceSummary struct {
	ID   string            `json:"id"`
	Name string            `json:"name"`
	Info device.DeviceInfo `json:"info"`
}

// DeviceManager manages the lifecycle and access to configured devices
type DeviceManager struct {
	devices       map[string]*ecp.Remote
	names         map[string]string
	config        *config.Config
	options       *internal.FnModeOptions
	clientOptions []ecp.ClientOption
	mutex         sync.RWMutex
	logger        zerolog.Logger
}

// NewDeviceManager creates a new device manager
func NewDeviceManager(cfg *config.Config, options *internal.FnModeOptions, clientOptions ...ecp.ClientOption) *DeviceManager {
	return &DeviceManager{
		devices:       make(map[string]*ecp.Remote),
		names:         make(map[string]string),
		config:        cfg,
		options:       options,
		clientOptions: clientOptions,
		logger:        logger.WithComponent("bridge"),
	}
}

// Initialize builds a remote for every configured device
func (dm *DeviceManager) Initialize() error {
	dm.mutex.Lock()
	defer dm.mutex.Unlock()

	dm.logger.Info().
		Int("device_count", len(dm.config.Devices)).
		Msg("Initializing devices")

	for _, deviceConfig := range dm.config.Devices {
		if err := config.ValidateAddress(deviceConfig.Address); err != nil {
			dm.logger.Error().
				Str("device_id", deviceConfig.ID).
				Err(err).
				Msg("Failed to create device")
			return fmt.Errorf("failed to create device %s: %w", deviceConfig.ID, err)
		}

		dm.devices[deviceConfig.ID] = ecp.NewRemote(deviceConfig.Address, dm.options, dm.clientOptions...)
		dm.names[deviceConfig.ID] = deviceConfig.Name
		dm.logger.Info().
			Str("device_id", deviceConfig.ID).
			Str("device_address", deviceConfig.Address).
			Msg("Device initialized successfully")
	}

	return nil
}

// GetDevice returns a device by ID
func (dm *DeviceManager) GetDevice(id string) (*ecp.Remote, error) {
	dm.mutex.RLock()
	defer dm.mutex.RUnlock()

	remote, exists := dm.devices[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}

	return remote, nil
}

// ListDevices returns every device ordered by id
func (dm *DeviceManager) ListDevices() []DeviceSummary {
	dm.mutex.RLock()
	defer dm.mutex.RUnlock()

	summaries := make([]DeviceSummary, 0, len(dm.devices))
	for id, remote := range dm.devices {
		summaries = append(summaries, DeviceSummary{
			ID:   id,
			Name: dm.names[id],
			Info: remote.GetDeviceInfo(),
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })

	return summaries
}

// ProcessDeviceAction runs an action against one device
func (dm *DeviceManager) ProcessDeviceAction(ctx context.Context, deviceID string, request *device.ActionRequest) (*device.ActionResponse, error) {
	remote, err := dm.GetDevice(deviceID)
	if err != nil {
		return nil, err
	}

	dm.logger.Debug().
		Str("device_id", deviceID).
		Str("type", string(request.Type)).
		Str("action", request.Action).
		Msg("Processing device action")

	response, err := remote.ProcessRequest(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("action processing failed: %w", err)
	}

	dm.logger.Info().
		Str("device_id", deviceID).
		Str("action", request.Action).
		Bool("success", response.Success).
		Msg("Device action processed")

	return response, nil
}

// Reload replaces all devices with those in newConfig
func (dm *DeviceManager) Reload(newConfig *config.Config) error {
	dm.logger.Info().Msg("Reloading device manager with new configuration")

	dm.Shutdown()

	dm.mutex.Lock()
	dm.config = newConfig
	dm.mutex.Unlock()

	return dm.Initialize()
}

// Shutdown drops every device
func (dm *DeviceManager) Shutdown() {
	dm.mutex.Lock()
	defer dm.mutex.Unlock()

	dm.devices = make(map[string]*ecp.Remote)
	dm.names = make(map[string]string)
}

// GetDeviceCount returns the number of managed devices
func (dm *DeviceManager) GetDeviceCount() int {
	dm.mutex.RLock()
	defer dm.mutex.RUnlock()
	return len(dm.devices)
}
