// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Fanlink Authors

// Package tr198a builds RF replay packets for the TR198A family of
// 433 MHz ceiling-fan handsets.
//
// The handset speaks a fixed-timing OOK protocol: a 23-bit payload carries
// the 13-bit handset ID plus the command fields, transmitted as five
// preamble-framed frame repeats (ten for pairing). This package packs
// command semantics into the payload, expands the payload into the
// mark/space pulse train, and serializes the train into the byte container
// a generic IR/RF blaster replays verbatim.
package tr198a

// TickUs is the blaster's native time unit in microseconds. Every pulse
// duration is quantized to tick counts before byte encoding.
const TickUs = 32.84

// HeaderRF433 is the container tag identifying a 433 MHz RF replay to the
// blaster firmware.
const HeaderRF433 = 0xB2

// Payload geometry.
const (
	PayloadBits  = 23
	PayloadMask  = 0x7FFFFF
	MaxHandsetID = 0x1FFF // 13 bits
	MaxSpeed     = 10
)

// Bit timings (microseconds). A logical 0 is a short mark and a long
// space; a logical 1 is the inverse.
const (
	Mark0Us  = 394
	Space0Us = 755
	Mark1Us  = 755
	Space1Us = 394
)

// Sequence lead-in timings (microseconds).
const (
	LeadInUs     = 1_336_916
	InitialGapUs = 92_805
)

// Trailer conventions. Operational commands close with a single trailer
// pulse; pairing packets carry none. Three values were captured from
// different handset revisions and call paths; they are preserved verbatim
// rather than reconciled.
const (
	TrailerUs     = 397    // general operational commands
	TrailerLongUs = 49_260 // legacy long-trailer convention
	TrailerDimUs  = 394    // dim up/down bursts
)

// Frame repeat defaults.
const (
	DefaultRepeats = 5
	PairRepeats    = 10
)

// Radio repeat-count header bytes.
const (
	DefaultRadioRepeat = 0xC0
	PairRadioRepeat    = 0xC9
)

// pairingBits occupies the low 10 payload bits of a pairing request.
const pairingBits = 0b1111000000

var (
	// FirstPreambleUs precedes the first frame.
	FirstPreambleUs = []int{Mark1Us, Space1Us, Mark1Us}

	// RepeatPreambleUs precedes every repeated frame.
	RepeatPreambleUs = []int{Mark1Us, Space1Us, Mark0Us, Space0Us, Mark0Us, Space0Us}

	// InterGapUs separates consecutive frames.
	InterGapUs = []int{11_822, Space1Us}
)

// BreezeTable maps natural-wind presets 1-3 to their 4-bit speed-field
// codes.
type BreezeTable [3]uint8

// Two breeze code tables exist in the wild; captures from different handset
// batches disagree. Rev1 matches the newer captures and is the default.
var (
	BreezeTableRev1 = BreezeTable{0b1101, 0b1111, 0b1110}
	BreezeTableRev2 = BreezeTable{0b1011, 0b1111, 0b1101}
)

// DefaultBreezeTable is used when a Command does not select a table
// explicitly.
var DefaultBreezeTable = BreezeTableRev1
