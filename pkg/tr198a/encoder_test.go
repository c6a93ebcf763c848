package tr198a

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestTicks(t *testing.T) {
	tests := []struct {
		us   int
		want int
	}{
		{Mark0Us, 12},
		{Mark1Us, 23},
		{TrailerUs, 12},
		{TrailerDimUs, 12},
		{TrailerLongUs, 1500},
		{InterGapUs[0], 360},
		{InitialGapUs, 2826},
		{LeadInUs, 40710},
	}
	for _, tt := range tests {
		if got := Ticks(tt.us); got != tt.want {
			t.Errorf("Ticks(%d) = %d, want %d", tt.us, got, tt.want)
		}
	}
}

func TestSerialize_Header(t *testing.T) {
	packet := Serialize([]int{Mark0Us, Space0Us}, 0xC0)

	if packet[0] != HeaderRF433 {
		t.Errorf("tag = 0x%02X, want 0x%02X", packet[0], HeaderRF433)
	}
	if packet[1] != 0xC0 {
		t.Errorf("repeat byte = 0x%02X, want 0xC0", packet[1])
	}
	if got := int(binary.LittleEndian.Uint16(packet[2:4])); got != len(packet)-4 {
		t.Errorf("length field = %d, want %d", got, len(packet)-4)
	}
	if !bytes.Equal(packet[4:], []byte{12, 23}) {
		t.Errorf("body = %v, want [12 23]", packet[4:])
	}
}

func TestSerialize_EscapesLongDurations(t *testing.T) {
	// The lead-in is 40710 ticks, which needs the three-byte escape.
	packet := Serialize([]int{LeadInUs, Mark1Us}, 0xC0)

	want := []byte{0x00, 0x9F, 0x06, 23}
	if !bytes.Equal(packet[4:], want) {
		t.Errorf("body = %v, want %v", packet[4:], want)
	}
	if got := int(binary.LittleEndian.Uint16(packet[2:4])); got != 4 {
		t.Errorf("length field = %d, want 4", got)
	}
}

func TestEncodeCommand_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
	}{
		{
			name: "speed and direction",
			cmd:  Command{HandsetID: 0x15A9, Speed: Speed(5), Direction: DirectionForward},
		},
		{
			name: "light toggle",
			cmd:  Command{HandsetID: 0x0001, LightToggle: true},
		},
		{
			name: "breeze preset",
			cmd:  Command{HandsetID: 0x1FFF, Breeze: 2},
		},
		{
			name: "dim burst",
			cmd: Command{
				HandsetID:   0x0AAA,
				Dim:         DimDown,
				RadioRepeat: DimRadioRepeat(2),
				TrailerUs:   TrailerDimUs,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packet, err := EncodeCommand(tt.cmd)
			if err != nil {
				t.Fatalf("EncodeCommand failed: %v", err)
			}

			decoded, err := DecodePacket(packet)
			if err != nil {
				t.Fatalf("DecodePacket failed: %v", err)
			}

			wantPayload, _ := tt.cmd.Payload()
			wantPulses := ExpandPulses(wantPayload, ExpandOptions{
				Repeats:   tt.cmd.Repeats,
				TrailerUs: tt.cmd.TrailerUs,
			})
			if len(decoded.Ticks()) != len(wantPulses) {
				t.Errorf("decoded %d pulses, want %d", len(decoded.Ticks()), len(wantPulses))
			}

			payload, err := RecoverPayload(decoded)
			if err != nil {
				t.Fatalf("RecoverPayload failed: %v", err)
			}
			if payload != wantPayload {
				t.Errorf("recovered payload = 0x%06X, want 0x%06X", payload, wantPayload)
			}
		})
	}
}

func TestEncodeCommand_RepeatByteDefaults(t *testing.T) {
	packet, err := EncodeCommand(Command{HandsetID: 1, Speed: Speed(3)})
	if err != nil {
		t.Fatalf("EncodeCommand failed: %v", err)
	}
	if packet[1] != DefaultRadioRepeat {
		t.Errorf("repeat byte = 0x%02X, want 0x%02X", packet[1], DefaultRadioRepeat)
	}

	packet, err = EncodeCommand(Command{HandsetID: 1, Dim: DimUp, RadioRepeat: DimRadioRepeat(3)})
	if err != nil {
		t.Fatalf("EncodeCommand failed: %v", err)
	}
	if packet[1] != 0xD1 {
		t.Errorf("repeat byte = 0x%02X, want 0xD1", packet[1])
	}
}

func TestEncodeCommand_ValidationFailsBeforeEncoding(t *testing.T) {
	if _, err := EncodeCommand(Command{HandsetID: 0x2000}); err == nil {
		t.Error("expected error for out-of-range handset ID, got nil")
	}
	if _, err := EncodeCommand(Command{HandsetID: 1, Speed: Speed(11)}); err == nil {
		t.Error("expected error for out-of-range speed, got nil")
	}
}

func TestEncodePairing(t *testing.T) {
	packet, err := EncodePairing(0x15A9)
	if err != nil {
		t.Fatalf("EncodePairing failed: %v", err)
	}
	if packet[1] != PairRadioRepeat {
		t.Errorf("repeat byte = 0x%02X, want 0x%02X", packet[1], PairRadioRepeat)
	}

	decoded, err := DecodePacket(packet)
	if err != nil {
		t.Fatalf("DecodePacket failed: %v", err)
	}
	want := 2 + 3 + frameLen + (PairRepeats-1)*(2+6+frameLen)
	if len(decoded.Ticks()) != want {
		t.Errorf("decoded %d pulses, want %d (no trailer)", len(decoded.Ticks()), want)
	}

	payload, err := RecoverPayload(decoded)
	if err != nil {
		t.Fatalf("RecoverPayload failed: %v", err)
	}
	if payload != 0x56A7C0 {
		t.Errorf("recovered payload = 0x%06X, want 0x56A7C0", payload)
	}
}

func TestWrapBase64_RoundTrip(t *testing.T) {
	inputs := [][]byte{
		{},
		{0x00},
		{0xB2, 0xC0, 0x02, 0x00, 12, 23},
		{0xFF, 0xFE, 0xFD, 0x00, 0x01, 0x02},
	}
	for _, input := range inputs {
		wrapped := WrapBase64(input)
		unwrapped, err := UnwrapBase64(wrapped)
		if err != nil {
			t.Errorf("UnwrapBase64(%q) error: %v", wrapped, err)
			continue
		}
		if !bytes.Equal(unwrapped, input) {
			t.Errorf("round trip failed: input=%v, unwrapped=%v", input, unwrapped)
		}
	}
}

func TestUnwrapBase64_Errors(t *testing.T) {
	if _, err := UnwrapBase64("sgDAAg=="); err == nil {
		t.Error("expected error for missing prefix, got nil")
	}
	if _, err := UnwrapBase64("b64:!!!not-base64!!!"); err == nil {
		t.Error("expected error for invalid base64, got nil")
	}
}

func TestEncodeCommandBase64(t *testing.T) {
	cmd := Command{HandsetID: 0x15A9, Speed: Speed(5)}

	packet, err := EncodeCommand(cmd)
	if err != nil {
		t.Fatalf("EncodeCommand failed: %v", err)
	}
	wrapped, err := EncodeCommandBase64(cmd)
	if err != nil {
		t.Fatalf("EncodeCommandBase64 failed: %v", err)
	}

	unwrapped, err := UnwrapBase64(wrapped)
	if err != nil {
		t.Fatalf("UnwrapBase64 failed: %v", err)
	}
	if !bytes.Equal(unwrapped, packet) {
		t.Error("base64 form does not match the binary packet")
	}
}
