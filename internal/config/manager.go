// Copyright 2025 Arion Yau
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
)

// ConfigManager handles configuration file operations
type ConfigManager struct {
	configPath string
}

// NewConfigManager creates a new config manager
func NewConfigManager(configPath string) *ConfigManager {
	return &ConfigManager{
		configPath: configPath,
	}
}

// LoadConfig loads the configuration, creating the file with defaults if it doesn't exist
func (cm *ConfigManager) LoadConfig() (*Config, error) {
	if _, err := os.Stat(cm.configPath); os.IsNotExist(err) {
		defaultConfig := NewDefaultConfig()
		if err := cm.SaveConfig(defaultConfig); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return defaultConfig, nil
	}

	config, err := LoadConfig(cm.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration
func (cm *ConfigManager) SaveConfig(config *Config) error {
	if err := SaveConfig(config, cm.configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// AddDevice adds a device, assigning an id when none is given. It returns the stored entry.
func (cm *ConfigManager) AddDevice(device DeviceConfig) (*DeviceConfig, error) {
	if err := ValidateAddress(device.Address); err != nil {
		return nil, err
	}

	config, err := cm.LoadConfig()
	if err != nil {
		return nil, err
	}

	if device.ID == "" {
		device.ID = NewDeviceID()
	}

	for _, existingDevice := range config.Devices {
		if existingDevice.ID == device.ID {
			return nil, fmt.Errorf("device with ID '%s' already exists", device.ID)
		}
		if existingDevice.Address == device.Address {
			return nil, fmt.Errorf("device with address '%s' already exists as '%s'", device.Address, existingDevice.ID)
		}
	}

	config.Devices = append(config.Devices, device)

	if err := cm.SaveConfig(config); err != nil {
		return nil, err
	}
	return &device, nil
}

// RemoveDevice removes a device from the configuration
func (cm *ConfigManager) RemoveDevice(deviceID string) error {
	config, err := cm.LoadConfig()
	if err != nil {
		return err
	}

	for i, device := range config.Devices {
		if device.ID == deviceID {
			config.Devices = append(config.Devices[:i], config.Devices[i+1:]...)
			return cm.SaveConfig(config)
		}
	}

	return fmt.Errorf("device with ID '%s' not found", deviceID)
}

// GetDevice gets a specific device from the configuration
func (cm *ConfigManager) GetDevice(deviceID string) (*DeviceConfig, error) {
	config, err := cm.LoadConfig()
	if err != nil {
		return nil, err
	}

	device, err := config.GetDevice(deviceID)
	if err != nil {
		return nil, fmt.Errorf("device with ID '%s' not found", deviceID)
	}
	return device, nil
}

// ListDevices returns all devices from the configuration
func (cm *ConfigManager) ListDevices() ([]DeviceConfig, error) {
	config, err := cm.LoadConfig()
	if err != nil {
		return nil, err
	}

	return config.Devices, nil
}

// ValidateConfig validates the configuration
func (cm *ConfigManager) ValidateConfig() error {
	config, err := cm.LoadConfig()
	if err != nil {
		return err
	}

	return config.Validate()
}

// GetConfigPath returns the configuration file path
func (cm *ConfigManager) GetConfigPath() string {
	return cm.configPath
}
