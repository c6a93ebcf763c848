// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Fanlink Authors

package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tr198a/fanlink/internal/config"
	"github.com/tr198a/fanlink/internal/registry"
	"github.com/tr198a/fanlink/pkg/tr198a"
)

var (
	cfgPath string

	// Serial transport flags
	portName string
	baudRate int

	// WebSocket transport flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// MQTT transport flags
	mqttBroker string
	mqttTopic  string

	// Remote selection
	remoteName string
)

var rootCmd = &cobra.Command{
	Use:   "fanlink",
	Short: "TR198A ceiling-fan RF remote toolkit",
	Long: `Fanlink - build and transmit RF replay packets for TR198A ceiling fans.

Generates handset IDs, builds pairing and operational command packets in the
blaster container format, and forwards them to a transmitter.

Transmitter modes:
  Serial:    --port /dev/ttyUSB0 [--baud 115200]  (raw packet bytes)
  WebSocket: --url ws://host/path [--username user]  (binary frames)
  MQTT:      --broker tcp://host:1883 [--topic fanlink/send]  (b64: text)

Without a transmitter the packet is printed so it can be replayed elsewhere.
For WebSocket authentication, the password is read from the FANLINK_PASSWORD
environment variable, or prompted interactively if not set.`,
	Version: "1.2.0",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file (default "+config.DefaultPath()+")")

	// Serial transport flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	// WebSocket transport flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// MQTT transport flags
	rootCmd.PersistentFlags().StringVar(&mqttBroker, "broker", "", "MQTT broker URL (tcp://host:1883)")
	rootCmd.PersistentFlags().StringVar(&mqttTopic, "topic", "", "MQTT command topic")

	rootCmd.PersistentFlags().StringVarP(&remoteName, "remote", "r", "", "Registered remote name (see 'fanlink remotes')")
}

// loadSettings merges the config file with command-line overrides. A
// missing default config file is fine; a missing --config file is not.
func loadSettings() (*config.Config, error) {
	path := cfgPath
	explicit := path != ""
	if !explicit {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			cfg = config.DefaultConfig()
		} else {
			return nil, err
		}
	}

	if portName != "" {
		cfg.Serial.Port = portName
	}
	if rootCmd.PersistentFlags().Changed("baud") {
		cfg.Serial.Baud = baudRate
	}
	if wsURL != "" {
		cfg.WebSocket.URL = wsURL
	}
	if wsUsername != "" {
		cfg.WebSocket.Username = wsUsername
	}
	if wsNoSSLVerify {
		cfg.WebSocket.NoSSLVerify = true
	}
	if mqttBroker != "" {
		cfg.MQTT.Broker = mqttBroker
	}
	if mqttTopic != "" {
		cfg.MQTT.CommandTopic = mqttTopic
	}
	return cfg, nil
}

// resolveTarget picks the handset to address: an explicit ID argument, the
// --remote flag, or the configured default remote, in that order. The
// returned remote (and registry) are nil when a bare ID was given.
func resolveTarget(cfg *config.Config, args []string) (uint16, *registry.Remote, *registry.Registry, error) {
	if len(args) == 1 {
		id, err := parseHandsetID(args[0])
		return id, nil, nil, err
	}

	name := remoteName
	if name == "" {
		name = cfg.DefaultRemote
	}
	if name == "" {
		return 0, nil, nil, fmt.Errorf("no handset: give an ID argument, --remote, or set default_remote in config")
	}

	reg, err := registry.Open(cfg.RegistryPath)
	if err != nil {
		return 0, nil, nil, err
	}
	remote, err := reg.Get(name)
	if err != nil {
		return 0, nil, nil, err
	}
	return remote.HandsetID, remote, reg, nil
}

// parseHandsetID accepts decimal or 0x-prefixed hex.
func parseHandsetID(s string) (uint16, error) {
	id, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid handset ID %q: %v", s, err)
	}
	if id > tr198a.MaxHandsetID {
		return 0, fmt.Errorf("handset ID 0x%X exceeds 13 bits (max 0x%X)", id, tr198a.MaxHandsetID)
	}
	return uint16(id), nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
