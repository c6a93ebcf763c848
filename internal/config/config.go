// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Fanlink Authors

// Package config loads the fanlink configuration file. Every value can be
// overridden by a command-line flag; the file only provides defaults for
// the transport and registry settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Serial    SerialConfig    `yaml:"serial"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	MQTT      MQTTConfig      `yaml:"mqtt"`

	// RegistryPath is the handset registry file location.
	RegistryPath string `yaml:"registry"`

	// DefaultRemote is used when no remote name or handset ID is given.
	DefaultRemote string `yaml:"default_remote"`
}

type SerialConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

type WebSocketConfig struct {
	URL         string `yaml:"url"`
	Username    string `yaml:"username"`
	NoSSLVerify bool   `yaml:"no_ssl_verify"`
}

type MQTTConfig struct {
	Broker       string            `yaml:"broker"` // e.g. tcp://host:1883
	ClientID     string            `yaml:"client_id"`
	CommandTopic string            `yaml:"command_topic"`
	PowerSwitch  PowerSwitchConfig `yaml:"power_switch"`
}

// PowerSwitchConfig describes the MQTT switch feeding mains power to the
// fan, used by the power-cycle pairing sequence.
type PowerSwitchConfig struct {
	CommandTopic string `yaml:"command_topic"`
	StateTopic   string `yaml:"state_topic"`
	PayloadOn    string `yaml:"payload_on"`
	PayloadOff   string `yaml:"payload_off"`
}

// DefaultPath returns the standard config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "fanlink.yaml"
	}
	return filepath.Join(dir, "fanlink", "config.yaml")
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	registry := "remotes.cbor"
	if dir, err := os.UserConfigDir(); err == nil {
		registry = filepath.Join(dir, "fanlink", "remotes.cbor")
	}
	return &Config{
		Serial: SerialConfig{Baud: 115200},
		MQTT: MQTTConfig{
			ClientID:     "fanlink",
			CommandTopic: "fanlink/send",
			PowerSwitch: PowerSwitchConfig{
				PayloadOn:  "ON",
				PayloadOff: "OFF",
			},
		},
		RegistryPath: registry,
	}
}

// Load reads a config file and fills unset fields from DefaultConfig.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.Serial.Baud == 0 {
		cfg.Serial.Baud = 115200
	}
	if cfg.MQTT.PowerSwitch.PayloadOn == "" {
		cfg.MQTT.PowerSwitch.PayloadOn = "ON"
	}
	if cfg.MQTT.PowerSwitch.PayloadOff == "" {
		cfg.MQTT.PowerSwitch.PayloadOff = "OFF"
	}
	return cfg, nil
}
