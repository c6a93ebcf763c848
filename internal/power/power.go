// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Fanlink Authors

// Package power sequences the TR198A pairing window. The fan only accepts
// a pairing packet in the first seconds after mains power is applied, so
// pairing means: cut power, wait, restore power, confirm the switch really
// turned on, then transmit the pairing packet. The codec stays pure; all
// waiting lives here.
package power

import (
	"context"
	"fmt"
	"time"

	"github.com/tr198a/fanlink/pkg/tr198a"
)

// Switch controls the mains power feeding the fan.
type Switch interface {
	// State reports whether the switch is currently on.
	State(ctx context.Context) (bool, error)
	TurnOn(ctx context.Context) error
	TurnOff(ctx context.Context) error
}

// Transmitter delivers an encoded packet to the blaster.
type Transmitter interface {
	Transmit(ctx context.Context, packet []byte) error
}

// Options bound the power-cycle sequence. Zero values select defaults.
type Options struct {
	OffDuration  time.Duration // time to leave power cut (default 5s)
	SettleDelay  time.Duration // wait after power restore before transmit (default 2s)
	PollInterval time.Duration // switch state poll cadence (default 500ms)
	PollTimeout  time.Duration // max wait for the switch to confirm on (default 10s)
	Sends        int           // pairing packet transmissions (default 1)
}

func (o Options) withDefaults() Options {
	if o.OffDuration == 0 {
		o.OffDuration = 5 * time.Second
	}
	if o.SettleDelay == 0 {
		o.SettleDelay = 2 * time.Second
	}
	if o.PollInterval == 0 {
		o.PollInterval = 500 * time.Millisecond
	}
	if o.PollTimeout == 0 {
		o.PollTimeout = 10 * time.Second
	}
	if o.Sends < 1 {
		o.Sends = 1
	}
	return o
}

// EnsureOn turns the switch on if it is not already, and waits for the
// state to confirm.
func EnsureOn(ctx context.Context, sw Switch, opts Options) error {
	opts = opts.withDefaults()

	on, err := sw.State(ctx)
	if err != nil {
		return fmt.Errorf("failed to read power switch state: %w", err)
	}
	if on {
		return nil
	}
	if err := sw.TurnOn(ctx); err != nil {
		return fmt.Errorf("failed to turn power switch on: %w", err)
	}
	return waitForState(ctx, sw, true, opts)
}

// PairWithPowerCycle cycles mains power and transmits the pairing packet
// inside the fan's pairing window. The packet is encoded first so invalid
// input fails before any power is touched.
func PairWithPowerCycle(ctx context.Context, sw Switch, tx Transmitter, handsetID uint16, opts Options) error {
	opts = opts.withDefaults()

	packet, err := tr198a.EncodePairing(handsetID)
	if err != nil {
		return err
	}

	if err := sw.TurnOff(ctx); err != nil {
		return fmt.Errorf("failed to cut power: %w", err)
	}
	if err := sleep(ctx, opts.OffDuration); err != nil {
		return err
	}

	if err := sw.TurnOn(ctx); err != nil {
		return fmt.Errorf("failed to restore power: %w", err)
	}
	if err := waitForState(ctx, sw, true, opts); err != nil {
		return err
	}
	if err := sleep(ctx, opts.SettleDelay); err != nil {
		return err
	}

	for i := 0; i < opts.Sends; i++ {
		if err := tx.Transmit(ctx, packet); err != nil {
			return fmt.Errorf("failed to transmit pairing packet: %w", err)
		}
	}
	return nil
}

// waitForState polls the switch until it reports the wanted state, with a
// bounded timeout.
func waitForState(ctx context.Context, sw Switch, want bool, opts Options) error {
	deadline := time.NewTimer(opts.PollTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for {
		state, err := sw.State(ctx)
		if err == nil && state == want {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("power switch did not reach state on=%v within %v", want, opts.PollTimeout)
		case <-ticker.C:
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
