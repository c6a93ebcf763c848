// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Fanlink Authors

package tr198a

import (
	"encoding/binary"
	"fmt"
)

// Packet is a decoded blaster container: header fields plus the tick
// counts of the replayed pulse train.
type Packet struct {
	tag        byte
	repeatByte byte
	ticks      []int
}

// Tag returns the protocol tag byte from the header.
func (p *Packet) Tag() byte {
	return p.tag
}

// RepeatByte returns the radio repeat-count byte from the header.
func (p *Packet) RepeatByte() byte {
	return p.repeatByte
}

// Ticks returns the decoded tick counts, one per pulse.
func (p *Packet) Ticks() []int {
	return p.ticks
}

// Durations returns the pulse durations in microseconds, reconstructed
// from the quantized tick counts.
func (p *Packet) Durations() []float64 {
	out := make([]float64, len(p.ticks))
	for i, t := range p.ticks {
		out[i] = float64(t) * TickUs
	}
	return out
}

// DecodePacket parses container bytes back into header fields and tick
// counts. It is the inverse of Serialize modulo tick quantization.
func DecodePacket(data []byte) (*Packet, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("packet too short: %d bytes (want at least 4)", len(data))
	}
	if data[0] != HeaderRF433 {
		return nil, fmt.Errorf("unexpected header tag 0x%02X (want 0x%02X)", data[0], HeaderRF433)
	}
	body := data[4:]
	if length := int(binary.LittleEndian.Uint16(data[2:4])); length != len(body) {
		return nil, fmt.Errorf("length field %d does not match body size %d", length, len(body))
	}

	p := &Packet{tag: data[0], repeatByte: data[1]}
	for i := 0; i < len(body); {
		if body[i] != 0 {
			p.ticks = append(p.ticks, int(body[i]))
			i++
			continue
		}
		if i+2 >= len(body) {
			return nil, fmt.Errorf("truncated escape sequence at byte %d", i)
		}
		p.ticks = append(p.ticks, int(body[i+1])<<8|int(body[i+2]))
		i += 3
	}
	return p, nil
}

// frameStart is the tick index of the first frame bit: lead-in and initial
// gap, then the three-pulse first preamble.
const frameStart = 2 + 3

// RecoverPayload rebuilds the 23-bit payload from the first frame of a
// decoded packet, classifying each (mark, space) pair by which half is
// longer. Useful for verifying captures against the packer.
func RecoverPayload(p *Packet) (uint32, error) {
	need := frameStart + PayloadBits*2
	if len(p.ticks) < need {
		return 0, fmt.Errorf("packet too short for a full frame: %d pulses (want %d)", len(p.ticks), need)
	}
	var payload uint32
	for i := 0; i < PayloadBits; i++ {
		mark := p.ticks[frameStart+i*2]
		space := p.ticks[frameStart+i*2+1]
		payload <<= 1
		if mark > space {
			payload |= 1
		}
	}
	return payload, nil
}
