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
	"net"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath    = "ecpctl.yml"
	DefaultListen        = ":8080"
	DefaultRegistryPath  = "ecpctl.db"
	DefaultIconCacheSize = 128
	DefaultIconCacheTTL  = 10 * time.Minute
)

// Config represents the ecpctl configuration file
type Config struct {
	Bridge   BridgeConfig   `yaml:"bridge"`
	Registry RegistryConfig `yaml:"registry"`
	Devices  []DeviceConfig `yaml:"devices"`
}

// BridgeConfig contains REST bridge settings
type BridgeConfig struct {
	Listen        string        `yaml:"listen"`
	IconCacheSize int           `yaml:"icon_cache_size,omitempty"`
	IconCacheTTL  time.Duration `yaml:"icon_cache_ttl,omitempty"`
}

// RegistryConfig points at the sqlite file of discovered devices
type RegistryConfig struct {
	Path string `yaml:"path"`
}

// DeviceConfig represents a single configured ECP device
type DeviceConfig struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Bridge.Listen == "" {
		c.Bridge.Listen = DefaultListen
	}
	if c.Bridge.IconCacheSize <= 0 {
		c.Bridge.IconCacheSize = DefaultIconCacheSize
	}
	if c.Bridge.IconCacheTTL <= 0 {
		c.Bridge.IconCacheTTL = DefaultIconCacheTTL
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Bridge.Listen == "" {
		return fmt.Errorf("bridge.listen is required")
	}

	deviceIDs := make(map[string]bool)
	addresses := make(map[string]bool)
	for i, device := range c.Devices {
		if device.ID == "" {
			return fmt.Errorf("device[%d].id is required", i)
		}
		if deviceIDs[device.ID] {
			return fmt.Errorf("duplicate device ID: %s", device.ID)
		}
		deviceIDs[device.ID] = true

		if err := ValidateAddress(device.Address); err != nil {
			return fmt.Errorf("device[%d].address: %w", i, err)
		}
		if addresses[device.Address] {
			return fmt.Errorf("duplicate device address: %s", device.Address)
		}
		addresses[device.Address] = true
	}

	return nil
}

// ValidateAddress requires a dotted IPv4 address
func ValidateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("address is required")
	}
	ip := net.ParseIP(address)
	if ip == nil || ip.To4() == nil {
		return fmt.Errorf("invalid IPv4 address: %s", address)
	}
	return nil
}

// GetDevice returns a device configuration by ID
func (c *Config) GetDevice(id string) (*DeviceConfig, error) {
	for _, device := range c.Devices {
		if device.ID == id {
			return &device, nil
		}
	}
	return nil, fmt.Errorf("device not found: %s", id)
}

// Save saves the configuration to a YAML file
func (c *Config) Save(filepath string) error {
	return SaveConfig(c, filepath)
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, filepath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// NewDeviceID returns a fresh device identifier
func NewDeviceID() string {
	return uuid.New().String()
}

// NewDefaultConfig creates a default configuration template
func NewDefaultConfig() *Config {
	return &Config{
		Bridge: BridgeConfig{
			Listen:        DefaultListen,
			IconCacheSize: DefaultIconCacheSize,
			IconCacheTTL:  DefaultIconCacheTTL,
		},
		Registry: RegistryConfig{
			Path: DefaultRegistryPath,
		},
		Devices: []DeviceConfig{},
	}
}
