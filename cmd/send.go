// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Fanlink Authors

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tr198a/fanlink/internal/registry"
	"github.com/tr198a/fanlink/pkg/tr198a"
)

var (
	cmdSpeed       int
	cmdDirection   string
	cmdLight       bool
	cmdDim         string
	cmdDimSteps    int
	cmdTimer       int
	cmdBreeze      int
	cmdLongTrailer bool
	cmdSend        bool
)

var sendCmd = &cobra.Command{
	Use:   "cmd [handset-id]",
	Short: "Build or transmit an operational command",
	Long: `Build an operational command packet for a paired fan.

The handset is an explicit ID argument (e.g. 0x15A9), a registered remote
via --remote, or the configured default remote. Without --send the packet
is printed as a bitstream, hex bytes and b64: command string.

Dim commands are sent as bursts: --dim-steps scales the blaster's radio
repeat byte and switches to the short dim trailer.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().IntVar(&cmdSpeed, "speed", -1, "Fan speed 0-10 (0 = off)")
	sendCmd.Flags().StringVar(&cmdDirection, "direction", "", "Rotation direction: forward or reverse")
	sendCmd.Flags().BoolVar(&cmdLight, "light", false, "Toggle the light")
	sendCmd.Flags().StringVar(&cmdDim, "dim", "", "Dim direction: up or down")
	sendCmd.Flags().IntVar(&cmdDimSteps, "dim-steps", 1, "Number of dim steps (requires --dim)")
	sendCmd.Flags().IntVar(&cmdTimer, "timer", 0, "Auto-off timer in hours: 2, 4 or 8")
	sendCmd.Flags().IntVar(&cmdBreeze, "breeze", 0, "Natural-wind preset 1-3")
	sendCmd.Flags().BoolVar(&cmdLongTrailer, "long-trailer", false, "Use the legacy long trailer convention")
	sendCmd.Flags().BoolVar(&cmdSend, "send", false, "Transmit the packet instead of printing it")
}

func runSend(c *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	id, remote, reg, err := resolveTarget(cfg, args)
	if err != nil {
		return err
	}

	if cmdDimSteps != 1 && cmdDim == "" {
		return fmt.Errorf("--dim-steps requires --dim")
	}

	cmd := tr198a.Command{
		HandsetID:   id,
		Direction:   tr198a.Direction(cmdDirection),
		LightToggle: cmdLight,
		Dim:         tr198a.DimDirection(cmdDim),
		Timer:       cmdTimer,
		Breeze:      cmdBreeze,
	}
	if cmdSpeed >= 0 {
		cmd.Speed = tr198a.Speed(cmdSpeed)
	}
	if remote != nil {
		table, trailer, err := remote.CodecOptions()
		if err != nil {
			return err
		}
		cmd.BreezeTable = table
		cmd.TrailerUs = trailer
	}
	if cmdLongTrailer {
		cmd.TrailerUs = tr198a.TrailerLongUs
	}
	if cmdDim != "" {
		cmd.RadioRepeat = tr198a.DimRadioRepeat(cmdDimSteps)
		cmd.TrailerUs = tr198a.TrailerDimUs
	}

	packet, err := tr198a.EncodeCommand(cmd)
	if err != nil {
		return err
	}

	if !cmdSend {
		payload, _ := cmd.Payload()
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

	if err := tx.Transmit(packet); err != nil {
		return fmt.Errorf("transmit failed: %v", err)
	}
	fmt.Printf("Packet sent via %s\n", txInfo)

	if remote != nil && reg != nil {
		updateAssumedState(remote, cmd)
		if err := reg.Save(); err != nil {
			fmt.Printf("Warning: failed to save registry: %v\n", err)
		}
	}
	return nil
}

// updateAssumedState tracks the logical fan state implied by a transmitted
// command. The link is one-way, so this is bookkeeping, not truth.
func updateAssumedState(remote *registry.Remote, cmd tr198a.Command) {
	if cmd.Speed != nil {
		remote.State.Speed = *cmd.Speed
	}
	if cmd.Direction != "" {
		remote.State.Direction = string(cmd.Direction)
	}
	if cmd.LightToggle && cmd.Timer == 0 {
		remote.State.Light = !remote.State.Light
	}
}
