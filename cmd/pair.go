// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Fanlink Authors

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/tr198a/fanlink/internal/config"
	"github.com/tr198a/fanlink/internal/power"
	"github.com/tr198a/fanlink/pkg/tr198a"
)

var (
	pairSend       bool
	pairPowerCycle bool
	pairSends      int
	pairOffSecs    int
)

var pairCmd = &cobra.Command{
	Use:   "pair [handset-id]",
	Short: "Build or transmit the pairing packet",
	Long: `Pair a handset ID with a fan.

The fan accepts pairing packets only in the first seconds after mains power
is applied. With --power-cycle (and the MQTT power switch configured) fanlink
cuts power, restores it, waits for the switch to confirm, then transmits the
pairing packet inside that window. Without it the packet is transmitted (or
just printed) immediately; cycle the breaker by hand first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPair,
}

func init() {
	rootCmd.AddCommand(pairCmd)
	pairCmd.Flags().BoolVar(&pairSend, "send", false, "Transmit the packet instead of printing it")
	pairCmd.Flags().BoolVar(&pairPowerCycle, "power-cycle", false, "Cycle the configured power switch before pairing")
	pairCmd.Flags().IntVar(&pairSends, "sends", 1, "Pairing packet transmissions")
	pairCmd.Flags().IntVar(&pairOffSecs, "off-seconds", 5, "Seconds to leave power cut (with --power-cycle)")
}

func runPair(c *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	id, _, _, err := resolveTarget(cfg, args)
	if err != nil {
		return err
	}

	packet, err := tr198a.EncodePairing(id)
	if err != nil {
		return err
	}

	if !pairSend && !pairPowerCycle {
		payload, _ := tr198a.PairingPayload(id)
		fmt.Printf("Bitstream: %023b\n", payload)
		fmt.Printf("Packet (%d bytes): %x\n", len(packet), packet)
		fmt.Printf("Command: %s\n", tr198a.WrapBase64(packet))
		return nil
	}

	tx, txInfo, err := OpenTransmitter(cfg)
	if err != nil {
		return err
	}
	defer tx.Close()

	if !pairPowerCycle {
		if err := tx.Transmit(packet); err != nil {
			return fmt.Errorf("transmit failed: %v", err)
		}
		fmt.Printf("Pairing packet sent via %s\n", txInfo)
		return nil
	}

	sw, err := openPowerSwitch(cfg)
	if err != nil {
		return err
	}
	defer sw.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Power-cycling via %s, pairing handset 0x%04X...\n", cfg.MQTT.PowerSwitch.CommandTopic, id)
	err = power.PairWithPowerCycle(ctx, sw, transmitAdapter{tx}, id, power.Options{
		OffDuration: time.Duration(pairOffSecs) * time.Second,
		Sends:       pairSends,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Pairing packet sent via %s\n", txInfo)
	return nil
}

// openPowerSwitch builds the MQTT power switch from config.
func openPowerSwitch(cfg *config.Config) (*powerSwitchHandle, error) {
	ps := cfg.MQTT.PowerSwitch
	if cfg.MQTT.Broker == "" || ps.CommandTopic == "" || ps.StateTopic == "" {
		return nil, fmt.Errorf("--power-cycle needs mqtt.broker and mqtt.power_switch topics in config")
	}

	client, err := ConnectMQTT(cfg.MQTT.Broker, cfg.MQTT.ClientID+"-power")
	if err != nil {
		return nil, err
	}
	sw, err := power.NewMQTTSwitch(client, ps.CommandTopic, ps.StateTopic, ps.PayloadOn, ps.PayloadOff)
	if err != nil {
		client.Disconnect(250)
		return nil, err
	}
	return &powerSwitchHandle{MQTTSwitch: sw, disconnect: func() { client.Disconnect(250) }}, nil
}

// powerSwitchHandle ties the switch lifetime to its MQTT client.
type powerSwitchHandle struct {
	*power.MQTTSwitch
	disconnect func()
}

func (h *powerSwitchHandle) Close() error {
	err := h.MQTTSwitch.Close()
	h.disconnect()
	return err
}

// transmitAdapter lets a cmd Transmitter satisfy the power package's
// context-aware interface.
type transmitAdapter struct {
	tx Transmitter
}

func (a transmitAdapter) Transmit(ctx context.Context, packet []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return a.tx.Transmit(packet)
}
