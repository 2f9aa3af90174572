package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Device.Name != "BLE Counter" {
		t.Errorf("Device.Name = %q, want %q", cfg.Device.Name, "BLE Counter")
	}
	if cfg.Device.AdapterID != "hci0" {
		t.Errorf("Device.AdapterID = %q, want %q", cfg.Device.AdapterID, "hci0")
	}
	if cfg.Service.UUID != "19b10000-e8f2-537e-4f6c-d104768a1214" {
		t.Errorf("Service.UUID = %q", cfg.Service.UUID)
	}
	if cfg.Service.CharacteristicUUID != "19b10001-e8f2-537e-4f6c-d104768a1214" {
		t.Errorf("Service.CharacteristicUUID = %q", cfg.Service.CharacteristicUUID)
	}
	if cfg.Session.SendInterval != time.Second {
		t.Errorf("Session.SendInterval = %v, want 1s", cfg.Session.SendInterval)
	}
	if cfg.Session.HeartbeatInterval != 30*time.Second {
		t.Errorf("Session.HeartbeatInterval = %v, want 30s", cfg.Session.HeartbeatInterval)
	}
	if cfg.Session.PollDelay != 50*time.Millisecond {
		t.Errorf("Session.PollDelay = %v, want 50ms", cfg.Session.PollDelay)
	}
	if cfg.Session.CounterMax != 100 {
		t.Errorf("Session.CounterMax = %d, want 100", cfg.Session.CounterMax)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}

func TestLoad(t *testing.T) {
	yamlContent := `
device:
  name: Kitchen Counter
  adapter_id: hci1
service:
  uuid: 6E400001-B5A3-F393-E0A9-E50E24DCCA9E
  characteristic_uuid: 6E400003-B5A3-F393-E0A9-E50E24DCCA9E
session:
  send_interval: 500ms
  heartbeat_interval: 1m
  poll_delay: 20ms
  counter_max: 9
log_level: debug
`
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Device.Name != "Kitchen Counter" {
		t.Errorf("Device.Name = %q, want %q", cfg.Device.Name, "Kitchen Counter")
	}
	if cfg.Device.AdapterID != "hci1" {
		t.Errorf("Device.AdapterID = %q, want %q", cfg.Device.AdapterID, "hci1")
	}
	if cfg.Service.UUID != "6e400001-b5a3-f393-e0a9-e50e24dcca9e" {
		t.Errorf("Service.UUID = %q, want lower-cased", cfg.Service.UUID)
	}
	if cfg.Service.CharacteristicUUID != "6e400003-b5a3-f393-e0a9-e50e24dcca9e" {
		t.Errorf("Service.CharacteristicUUID = %q, want lower-cased", cfg.Service.CharacteristicUUID)
	}
	if cfg.Session.SendInterval != 500*time.Millisecond {
		t.Errorf("Session.SendInterval = %v, want 500ms", cfg.Session.SendInterval)
	}
	if cfg.Session.HeartbeatInterval != time.Minute {
		t.Errorf("Session.HeartbeatInterval = %v, want 1m", cfg.Session.HeartbeatInterval)
	}
	if cfg.Session.PollDelay != 20*time.Millisecond {
		t.Errorf("Session.PollDelay = %v, want 20ms", cfg.Session.PollDelay)
	}
	if cfg.Session.CounterMax != 9 {
		t.Errorf("Session.CounterMax = %d, want 9", cfg.Session.CounterMax)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	yamlContent := `
device:
  name: Partial
`
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Device.Name != "Partial" {
		t.Errorf("Device.Name = %q, want %q", cfg.Device.Name, "Partial")
	}
	if cfg.Device.AdapterID != "hci0" {
		t.Errorf("Device.AdapterID = %q, want default hci0", cfg.Device.AdapterID)
	}
	if cfg.Session.SendInterval != time.Second {
		t.Errorf("Session.SendInterval = %v, want default 1s", cfg.Session.SendInterval)
	}
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("session:\n  send_interval: soon\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(cfgPath)
	if err == nil {
		t.Fatal("Load() should reject an unparseable duration")
	}
	if !strings.Contains(err.Error(), "parsing config file") {
		t.Errorf("Load() error = %v, want parsing error", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "empty device name",
			modify:  func(c *Config) { c.Device.Name = "" },
			wantErr: true,
		},
		{
			name:    "device name too long",
			modify:  func(c *Config) { c.Device.Name = strings.Repeat("x", 30) },
			wantErr: true,
		},
		{
			name:    "empty adapter id",
			modify:  func(c *Config) { c.Device.AdapterID = "" },
			wantErr: true,
		},
		{
			name:    "invalid service uuid",
			modify:  func(c *Config) { c.Service.UUID = "not-a-uuid" },
			wantErr: true,
		},
		{
			name:    "invalid characteristic uuid",
			modify:  func(c *Config) { c.Service.CharacteristicUUID = "1234" },
			wantErr: true,
		},
		{
			name:    "characteristic equals service",
			modify:  func(c *Config) { c.Service.CharacteristicUUID = strings.ToUpper(c.Service.UUID) },
			wantErr: true,
		},
		{
			name:    "zero send interval",
			modify:  func(c *Config) { c.Session.SendInterval = 0 },
			wantErr: true,
		},
		{
			name:    "zero heartbeat interval",
			modify:  func(c *Config) { c.Session.HeartbeatInterval = 0 },
			wantErr: true,
		},
		{
			name:    "zero poll delay",
			modify:  func(c *Config) { c.Session.PollDelay = 0 },
			wantErr: true,
		},
		{
			name:    "poll delay not shorter than send interval",
			modify:  func(c *Config) { c.Session.PollDelay = c.Session.SendInterval },
			wantErr: true,
		},
		{
			name:    "zero counter max",
			modify:  func(c *Config) { c.Session.CounterMax = 0 },
			wantErr: true,
		},
		{
			name:    "invalid log level",
			modify:  func(c *Config) { c.LogLevel = "invalid" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWriteDefault_CreatesFile(t *testing.T) {
	// Use a temp dir as fake home to avoid touching real config
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	path, err := WriteDefault()
	if err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	expectedPath := filepath.Join(tmpHome, ".config", "ble-counter", "config.yaml")
	if path != expectedPath {
		t.Errorf("WriteDefault() path = %q, want %q", path, expectedPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read written config: %v", err)
	}

	content := string(data)
	if !strings.HasPrefix(content, "# ble-counter") {
		t.Error("written config should start with header comment")
	}
	if !strings.Contains(content, "send_interval: 1s") {
		t.Errorf("written config should render durations as strings:\n%s", content)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("written config is not valid YAML: %v", err)
	}
	if cfg.Session.HeartbeatInterval != 30*time.Second {
		t.Errorf("written config Session.HeartbeatInterval = %v, want 30s", cfg.Session.HeartbeatInterval)
	}
	if cfg.Device.Name != "BLE Counter" {
		t.Errorf("written config Device.Name = %q, want %q", cfg.Device.Name, "BLE Counter")
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() of written config error = %v", err)
	}
	if err := loaded.Validate(); err != nil {
		t.Errorf("written config does not validate: %v", err)
	}
}

func TestWriteDefault_NoOpIfExists(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	configDir := filepath.Join(tmpHome, ".config", "ble-counter")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	existingContent := []byte("device:\n  name: Custom\n")
	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, existingContent, 0644); err != nil {
		t.Fatalf("failed to write existing config: %v", err)
	}

	// WriteDefault should return ("", nil) without overwriting
	path, err := WriteDefault()
	if err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}
	if path != "" {
		t.Errorf("WriteDefault() path = %q, want empty string for existing file", path)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("failed to read config: %v", err)
	}
	if string(data) != string(existingContent) {
		t.Error("WriteDefault() should not overwrite existing config file")
	}
}
