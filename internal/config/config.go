package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Device   DeviceConfig  `yaml:"device"`
	Service  ServiceConfig `yaml:"service"`
	Session  SessionConfig `yaml:"session"`
	LogLevel string        `yaml:"log_level"`
}

// DeviceConfig holds advertising identity and adapter selection.
type DeviceConfig struct {
	Name      string `yaml:"name"`
	AdapterID string `yaml:"adapter_id"` // BlueZ controller, e.g. "hci0"
}

// ServiceConfig holds the GATT identifiers.
type ServiceConfig struct {
	UUID               string `yaml:"uuid"`
	CharacteristicUUID string `yaml:"characteristic_uuid"`
}

// SessionConfig holds the session loop timings.
type SessionConfig struct {
	SendInterval      time.Duration `yaml:"send_interval"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	PollDelay         time.Duration `yaml:"poll_delay"`
	CounterMax        int32         `yaml:"counter_max"`
}

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "ble-counter")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			Name:      "BLE Counter",
			AdapterID: "hci0",
		},
		Service: ServiceConfig{
			UUID:               "19b10000-e8f2-537e-4f6c-d104768a1214",
			CharacteristicUUID: "19b10001-e8f2-537e-4f6c-d104768a1214",
		},
		Session: SessionConfig{
			SendInterval:      time.Second,
			HeartbeatInterval: 30 * time.Second,
			PollDelay:         50 * time.Millisecond,
			CounterMax:        100,
		},
		LogLevel: "info",
	}
}

// Load reads and parses a YAML config file. Missing fields are filled
// with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.Service.UUID = strings.ToLower(cfg.Service.UUID)
	cfg.Service.CharacteristicUUID = strings.ToLower(cfg.Service.CharacteristicUUID)

	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.Device.Name == "" {
		return fmt.Errorf("device.name must not be empty")
	}
	// Legacy advertising PDUs leave 29 bytes; the 128-bit service UUID uses
	// 18 of them, so longer names get truncated by the stack.
	if len(c.Device.Name) > 29 {
		return fmt.Errorf("device.name must be at most 29 bytes, got %d", len(c.Device.Name))
	}
	if c.Device.AdapterID == "" {
		return fmt.Errorf("device.adapter_id must not be empty")
	}

	if _, err := uuid.Parse(c.Service.UUID); err != nil {
		return fmt.Errorf("service.uuid: %w", err)
	}
	if _, err := uuid.Parse(c.Service.CharacteristicUUID); err != nil {
		return fmt.Errorf("service.characteristic_uuid: %w", err)
	}
	if strings.EqualFold(c.Service.UUID, c.Service.CharacteristicUUID) {
		return errors.New("service.characteristic_uuid must differ from service.uuid")
	}

	if c.Session.SendInterval <= 0 {
		return fmt.Errorf("session.send_interval must be > 0")
	}
	if c.Session.HeartbeatInterval <= 0 {
		return fmt.Errorf("session.heartbeat_interval must be > 0")
	}
	if c.Session.PollDelay <= 0 {
		return fmt.Errorf("session.poll_delay must be > 0")
	}
	if c.Session.PollDelay >= c.Session.SendInterval {
		return fmt.Errorf("session.poll_delay (%s) must be shorter than session.send_interval (%s)",
			c.Session.PollDelay, c.Session.SendInterval)
	}
	if c.Session.CounterMax <= 0 {
		return fmt.Errorf("session.counter_max must be > 0")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}

	return nil
}

const defaultHeader = `# ble-counter configuration
# Durations use Go syntax (e.g. 50ms, 1s, 30s).
`

// WriteDefault writes the default config to DefaultConfigPath if no file
// exists there. It returns the path written, or "" if a file was already
// present.
func WriteDefault() (string, error) {
	path := DefaultConfigPath()
	if _, err := os.Stat(path); err == nil {
		return "", nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("checking config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("creating config dir: %w", err)
	}

	body, err := yaml.Marshal(Default())
	if err != nil {
		return "", fmt.Errorf("encoding default config: %w", err)
	}
	data := append([]byte(defaultHeader), body...)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}
	return path, nil
}
