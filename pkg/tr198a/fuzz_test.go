// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Fanlink Authors

package tr198a

import (
	"bytes"
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 1000
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

// randomCommand builds a valid random Command for round-trip fuzzing.
func randomCommand(rng *rand.Rand) Command {
	cmd := Command{HandsetID: uint16(rng.Intn(MaxHandsetID + 1))}

	if rng.Intn(2) == 1 {
		cmd.Speed = Speed(rng.Intn(MaxSpeed + 1))
	}
	if rng.Intn(2) == 1 {
		cmd.Direction = DirectionForward
	} else {
		cmd.Direction = DirectionReverse
	}
	switch rng.Intn(4) {
	case 1:
		cmd.LightToggle = true
	case 2:
		cmd.Dim = DimUp
	case 3:
		cmd.Dim = DimDown
	}
	if rng.Intn(3) == 1 {
		cmd.Timer = []int{2, 4, 8}[rng.Intn(3)]
	}
	if rng.Intn(3) == 1 {
		cmd.Breeze = rng.Intn(3) + 1
	}
	return cmd
}

// TestFuzzDecodePacket_RandomBytes feeds random byte slices to the decoder
// and verifies it doesn't crash or panic
func TestFuzzDecodePacket_RandomBytes(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		length := rng.Intn(512)
		data := make([]byte, length)
		rng.Read(data)

		// Should never panic, whatever the input
		DecodePacket(data)
	}
}

// TestFuzzEncodeDecode_RoundTrip encodes random valid commands and verifies
// the payload survives decode and frame recovery
func TestFuzzEncodeDecode_RoundTrip(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		cmd := randomCommand(rng)

		packet, err := EncodeCommand(cmd)
		if err != nil {
			t.Fatalf("round %d: EncodeCommand(%+v) failed: %v", i, cmd, err)
		}

		decoded, err := DecodePacket(packet)
		if err != nil {
			t.Fatalf("round %d: DecodePacket failed: %v", i, err)
		}

		wantPayload, _ := cmd.Payload()
		payload, err := RecoverPayload(decoded)
		if err != nil {
			t.Fatalf("round %d: RecoverPayload failed: %v", i, err)
		}
		if payload != wantPayload {
			t.Fatalf("round %d: payload = 0x%06X, want 0x%06X (cmd %+v)", i, payload, wantPayload, cmd)
		}
	}
}

// TestFuzzBase64_RoundTrip wraps random byte sequences and verifies the
// text transport is lossless
func TestFuzzBase64_RoundTrip(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		length := rng.Intn(256)
		data := make([]byte, length)
		rng.Read(data)

		unwrapped, err := UnwrapBase64(WrapBase64(data))
		if err != nil {
			t.Fatalf("round %d: UnwrapBase64 failed: %v", i, err)
		}
		if !bytes.Equal(unwrapped, data) {
			t.Fatalf("round %d: round trip mismatch", i)
		}
	}
}

// TestFuzzPairing_LowBits verifies the pairing pattern for every possible
// handset ID
func TestFuzzPairing_LowBits(t *testing.T) {
	for id := 0; id <= MaxHandsetID; id++ {
		payload, err := PairingPayload(uint16(id))
		if err != nil {
			t.Fatalf("PairingPayload(0x%X) failed: %v", id, err)
		}
		if payload&0x3FF != 0b1111000000 {
			t.Fatalf("id 0x%X: low bits = %010b", id, payload&0x3FF)
		}
		if uint16(payload>>10) != uint16(id) {
			t.Fatalf("id 0x%X: top bits = 0x%X", id, payload>>10)
		}
	}
}
