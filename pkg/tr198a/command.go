// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Fanlink Authors

package tr198a

import (
	"errors"
	"fmt"
)

// Validation failure sentinels. Packing errors wrap one of these so callers
// can classify with errors.Is.
var (
	ErrOutOfRange      = errors.New("value out of range")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Direction of fan rotation.
type Direction string

const (
	DirectionForward Direction = "forward"
	DirectionReverse Direction = "reverse"
)

// DimDirection selects the light dimming ramp.
type DimDirection string

const (
	DimUp   DimDirection = "up"
	DimDown DimDirection = "down"
)

// Command is one logical handset action for a paired fan. The zero value
// of every optional field means "absent": a nil Speed leaves the speed
// field clear, an empty Direction means reverse, Timer/Breeze zero mean no
// timer and no breeze preset.
//
// Speed and Breeze are mutually exclusive in effect: a non-zero Breeze
// repurposes the speed field entirely.
type Command struct {
	HandsetID uint16

	Speed       *int         // fan speed 0-10
	Direction   Direction    // empty selects reverse
	LightToggle bool         // toggle the light on/off
	Dim         DimDirection // empty means no dim request
	Timer       int          // auto-off hours: 2, 4 or 8; 0 means none
	Breeze      int          // natural-wind preset 1-3; 0 means none

	// BreezeTable overrides the preset code table; nil uses
	// DefaultBreezeTable.
	BreezeTable *BreezeTable

	// Transmission shaping. Zero values select the operational defaults
	// (DefaultRepeats, DefaultRadioRepeat, TrailerUs).
	Repeats     int
	RadioRepeat byte
	TrailerUs   int
}

// Speed returns a pointer to n, for populating Command.Speed inline.
func Speed(n int) *int { return &n }

// Payload packs the command into its 23-bit wire payload. All field
// validation happens here, before any bit math; no downstream stage
// validates anything.
//
// Bit layout (bit 0 = LSB):
//
//	22-10  handset ID
//	 9-6   speed, or breeze code when a preset is set
//	 5-4   direction (10 forward, 01 reverse)
//	 3     timer present
//	 2     timer == 8h, or light toggle when no timer
//	 1     timer == 2h, or dim request when no timer
//	 0     dim direction is down
func (c Command) Payload() (uint32, error) {
	if c.HandsetID > MaxHandsetID {
		return 0, fmt.Errorf("%w: handset ID 0x%X exceeds 13 bits", ErrOutOfRange, c.HandsetID)
	}

	speed, err := c.speedBits()
	if err != nil {
		return 0, err
	}
	dir, err := directionBits(c.Direction)
	if err != nil {
		return 0, err
	}
	low, err := c.lowBits()
	if err != nil {
		return 0, err
	}

	p := uint32(c.HandsetID) << 10
	p |= speed << 6
	p |= dir << 4
	p |= low
	return p & PayloadMask, nil
}

// PairingPayload packs the 23-bit pairing request for a handset ID. The
// handset ID occupies the same top 13 bits as operational payloads; the low
// 10 bits carry the fixed pairing pattern.
func PairingPayload(handsetID uint16) (uint32, error) {
	if handsetID > MaxHandsetID {
		return 0, fmt.Errorf("%w: handset ID 0x%X exceeds 13 bits", ErrOutOfRange, handsetID)
	}
	return (uint32(handsetID)<<10 | pairingBits) & PayloadMask, nil
}

// DimRadioRepeat returns the radio repeat byte for a dim burst of the given
// number of steps. One step per button press; the blaster scales the burst
// length through this byte.
func DimRadioRepeat(steps int) byte {
	if steps < 1 {
		steps = 1
	}
	return byte(0xC9 + (steps-1)*4)
}

func (c Command) speedBits() (uint32, error) {
	if c.Breeze != 0 {
		if c.Breeze < 1 || c.Breeze > 3 {
			return 0, fmt.Errorf("%w: breeze preset %d not in 1-3", ErrInvalidArgument, c.Breeze)
		}
		table := DefaultBreezeTable
		if c.BreezeTable != nil {
			table = *c.BreezeTable
		}
		return uint32(table[c.Breeze-1]), nil
	}
	if c.Speed == nil {
		return 0, nil
	}
	if *c.Speed < 0 || *c.Speed > MaxSpeed {
		return 0, fmt.Errorf("%w: speed %d not in 0-%d", ErrOutOfRange, *c.Speed, MaxSpeed)
	}
	return uint32(*c.Speed), nil
}

func directionBits(d Direction) (uint32, error) {
	switch d {
	case DirectionForward:
		return 0b10, nil
	case DirectionReverse, "":
		return 0b01, nil
	default:
		return 0, fmt.Errorf("%w: direction %q (want forward or reverse)", ErrInvalidArgument, d)
	}
}

func (c Command) lowBits() (uint32, error) {
	switch c.Timer {
	case 0, 2, 4, 8:
	default:
		return 0, fmt.Errorf("%w: timer %d hours (want 2, 4 or 8)", ErrInvalidArgument, c.Timer)
	}
	switch c.Dim {
	case "", DimUp, DimDown:
	default:
		return 0, fmt.Errorf("%w: dim direction %q (want up or down)", ErrInvalidArgument, c.Dim)
	}

	var low uint32
	if c.Timer != 0 {
		low |= 1 << 3
	}
	if c.Timer == 8 || (c.Timer == 0 && c.LightToggle) {
		low |= 1 << 2
	}
	if c.Timer == 2 || (c.Timer == 0 && c.Dim != "") {
		low |= 1 << 1
	}
	if c.Dim == DimDown {
		low |= 1
	}
	return low, nil
}
