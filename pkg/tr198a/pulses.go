// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Fanlink Authors

package tr198a

// ExpandOptions controls frame repetition and the closing trailer pulse.
type ExpandOptions struct {
	// Pairing selects the ten-repeat pairing convention and suppresses
	// the trailer.
	Pairing bool

	// Repeats is the total frame count; 0 selects DefaultRepeats
	// (PairRepeats when Pairing).
	Repeats int

	// TrailerUs overrides the closing pulse duration; 0 selects
	// TrailerUs. Ignored when Pairing.
	TrailerUs int
}

// ExpandPulses converts a 23-bit payload into the ordered mark/space
// duration sequence the blaster replays. Mark/space semantics are implied
// by position, so ordering is significant: lead-in, initial gap, first
// preamble, frame, then for each additional repeat the inter-frame gap,
// repeat preamble and frame again, and finally the trailer pulse unless
// this is a pairing packet.
func ExpandPulses(payload uint32, opts ExpandOptions) []int {
	frame := payloadFrame(payload)

	repeats := opts.Repeats
	if repeats <= 0 {
		if opts.Pairing {
			repeats = PairRepeats
		} else {
			repeats = DefaultRepeats
		}
	}

	size := 2 + len(FirstPreambleUs) + len(frame) +
		(repeats-1)*(len(InterGapUs)+len(RepeatPreambleUs)+len(frame)) + 1
	pulses := make([]int, 0, size)

	pulses = append(pulses, LeadInUs, InitialGapUs)
	pulses = append(pulses, FirstPreambleUs...)
	pulses = append(pulses, frame...)

	for i := 1; i < repeats; i++ {
		pulses = append(pulses, InterGapUs...)
		pulses = append(pulses, RepeatPreambleUs...)
		pulses = append(pulses, frame...)
	}

	if !opts.Pairing {
		trailer := opts.TrailerUs
		if trailer == 0 {
			trailer = TrailerUs
		}
		pulses = append(pulses, trailer)
	}

	return pulses
}

// payloadFrame maps the payload bits, most significant first, to their
// (mark, space) pulse pairs.
func payloadFrame(payload uint32) []int {
	frame := make([]int, 0, PayloadBits*2)
	for i := PayloadBits - 1; i >= 0; i-- {
		if payload>>uint(i)&1 == 1 {
			frame = append(frame, Mark1Us, Space1Us)
		} else {
			frame = append(frame, Mark0Us, Space0Us)
		}
	}
	return frame
}
