package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
serial:
  port: /dev/ttyUSB0
mqtt:
  broker: tcp://broker.local:1883
  command_topic: home/rf/send
  power_switch:
    command_topic: home/fanpower/set
    state_topic: home/fanpower/state
default_remote: bedroom
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Serial.Port != "/dev/ttyUSB0" {
		t.Errorf("serial port = %q", cfg.Serial.Port)
	}
	if cfg.Serial.Baud != 115200 {
		t.Errorf("baud default = %d, want 115200", cfg.Serial.Baud)
	}
	if cfg.MQTT.Broker != "tcp://broker.local:1883" {
		t.Errorf("broker = %q", cfg.MQTT.Broker)
	}
	if cfg.MQTT.CommandTopic != "home/rf/send" {
		t.Errorf("command topic = %q", cfg.MQTT.CommandTopic)
	}
	if cfg.MQTT.PowerSwitch.PayloadOn != "ON" {
		t.Errorf("payload_on default = %q, want ON", cfg.MQTT.PowerSwitch.PayloadOn)
	}
	if cfg.DefaultRemote != "bedroom" {
		t.Errorf("default remote = %q", cfg.DefaultRemote)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestLoad_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("serial: [not a map"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed yaml, got nil")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Serial.Baud != 115200 {
		t.Errorf("baud = %d, want 115200", cfg.Serial.Baud)
	}
	if cfg.MQTT.ClientID != "fanlink" {
		t.Errorf("client id = %q, want fanlink", cfg.MQTT.ClientID)
	}
	if cfg.RegistryPath == "" {
		t.Error("registry path should have a default")
	}
}
