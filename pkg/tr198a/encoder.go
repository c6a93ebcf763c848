package tr198a

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Base64Prefix tags the text transport form of a packet.
const Base64Prefix = "b64:"

// Ticks converts a microsecond duration to device ticks. Rounding is half
// away from zero; captured reference packets are consistent with this mode.
func Ticks(us int) int {
	return int(math.Round(float64(us) / TickUs))
}

// Serialize encodes a pulse sequence into the blaster container: a four
// byte header (RF tag, radio repeat byte, little-endian length of the
// encoded body) followed by one byte per tick count, with counts of 256 or
// more escaped as 0x00 plus a big-endian uint16.
func Serialize(pulses []int, repeatByte byte) []byte {
	buf := make([]byte, 4, 4+len(pulses))
	buf[0] = HeaderRF433
	buf[1] = repeatByte
	for _, us := range pulses {
		t := Ticks(us)
		if t >= 256 {
			buf = append(buf, 0x00, byte(t>>8), byte(t))
		} else {
			buf = append(buf, byte(t))
		}
	}
	binary.LittleEndian.PutUint16(buf[2:4], uint16(len(buf)-4))
	return buf
}

// EncodeCommand runs the full pipeline for an operational command:
// payload packing, pulse expansion and container serialization.
func EncodeCommand(cmd Command) ([]byte, error) {
	payload, err := cmd.Payload()
	if err != nil {
		return nil, err
	}
	pulses := ExpandPulses(payload, ExpandOptions{
		Repeats:   cmd.Repeats,
		TrailerUs: cmd.TrailerUs,
	})
	repeat := cmd.RadioRepeat
	if repeat == 0 {
		repeat = DefaultRadioRepeat
	}
	return Serialize(pulses, repeat), nil
}

// EncodePairing builds the ten-repeat pairing packet for a handset ID.
func EncodePairing(handsetID uint16) ([]byte, error) {
	payload, err := PairingPayload(handsetID)
	if err != nil {
		return nil, err
	}
	pulses := ExpandPulses(payload, ExpandOptions{Pairing: true})
	return Serialize(pulses, PairRadioRepeat), nil
}

// EncodeCommandBase64 is EncodeCommand in the b64: text transport form.
func EncodeCommandBase64(cmd Command) (string, error) {
	packet, err := EncodeCommand(cmd)
	if err != nil {
		return "", err
	}
	return WrapBase64(packet), nil
}

// EncodePairingBase64 is EncodePairing in the b64: text transport form.
func EncodePairingBase64(handsetID uint16) (string, error) {
	packet, err := EncodePairing(handsetID)
	if err != nil {
		return "", err
	}
	return WrapBase64(packet), nil
}

// WrapBase64 renders a packet as a text-safe command string.
func WrapBase64(packet []byte) string {
	return Base64Prefix + base64.StdEncoding.EncodeToString(packet)
}

// UnwrapBase64 reverses WrapBase64.
func UnwrapBase64(s string) ([]byte, error) {
	if !strings.HasPrefix(s, Base64Prefix) {
		return nil, fmt.Errorf("%w: missing %q prefix", ErrInvalidArgument, Base64Prefix)
	}
	packet, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(s, Base64Prefix))
	if err != nil {
		return nil, fmt.Errorf("invalid base64 packet: %w", err)
	}
	return packet, nil
}
