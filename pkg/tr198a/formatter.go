// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Fanlink Authors

package tr198a

import (
	"fmt"
	"strings"
)

// PayloadFields is the unpacked view of a 23-bit payload.
type PayloadFields struct {
	HandsetID  uint16
	SpeedField uint8 // raw 4-bit speed/breeze field
	Breeze     int   // matching preset in the default table, 0 if none
	Direction  Direction
	TimerFlag  bool
	Bit2       bool // timer 8h, or light toggle
	Bit1       bool // timer 2h, or dim request
	DimDown    bool
	Pairing    bool
}

// ParsePayload splits a 23-bit payload into its fields. Breeze detection
// uses the default table; a raw speed value that happens to collide with a
// breeze code is reported as both.
func ParsePayload(payload uint32) PayloadFields {
	f := PayloadFields{
		HandsetID:  uint16(payload >> 10 & MaxHandsetID),
		SpeedField: uint8(payload >> 6 & 0xF),
		TimerFlag:  payload>>3&1 == 1,
		Bit2:       payload>>2&1 == 1,
		Bit1:       payload>>1&1 == 1,
		DimDown:    payload&1 == 1,
		Pairing:    payload&0x3FF == pairingBits,
	}
	switch payload >> 4 & 0b11 {
	case 0b10:
		f.Direction = DirectionForward
	case 0b01:
		f.Direction = DirectionReverse
	}
	for i, code := range DefaultBreezeTable {
		if f.SpeedField == code {
			f.Breeze = i + 1
			break
		}
	}
	return f
}

// FormatPayload formats a 23-bit payload as a human-readable field
// breakdown.
func FormatPayload(payload uint32) string {
	f := ParsePayload(payload)

	var b strings.Builder
	fmt.Fprintf(&b, "payload 0x%06X (%023b)\n", payload&PayloadMask, payload&PayloadMask)
	fmt.Fprintf(&b, "  handset ID: 0x%04X\n", f.HandsetID)

	if f.Pairing {
		b.WriteString("  pairing request\n")
		return b.String()
	}

	if f.Breeze != 0 {
		fmt.Fprintf(&b, "  speed field: %#04b (breeze preset %d)\n", f.SpeedField, f.Breeze)
	} else {
		fmt.Fprintf(&b, "  speed field: %d\n", f.SpeedField)
	}
	if f.Direction != "" {
		fmt.Fprintf(&b, "  direction: %s\n", f.Direction)
	} else {
		b.WriteString("  direction: (invalid bits)\n")
	}

	switch {
	case f.TimerFlag && f.Bit2:
		b.WriteString("  timer: 8h\n")
	case f.TimerFlag && f.Bit1:
		b.WriteString("  timer: 2h\n")
	case f.TimerFlag:
		b.WriteString("  timer: 4h\n")
	case f.Bit2:
		b.WriteString("  light toggle\n")
	case f.Bit1 && f.DimDown:
		b.WriteString("  dim: down\n")
	case f.Bit1:
		b.WriteString("  dim: up\n")
	}
	return b.String()
}

// FormatPacket formats a decoded container packet, including the payload
// breakdown when a full frame can be recovered.
func FormatPacket(p *Packet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "tag 0x%02X, repeat byte 0x%02X, %d pulses\n", p.Tag(), p.RepeatByte(), len(p.ticks))

	if payload, err := RecoverPayload(p); err == nil {
		b.WriteString(FormatPayload(payload))
	} else {
		fmt.Fprintf(&b, "  (no recoverable frame: %v)\n", err)
	}
	return b.String()
}
