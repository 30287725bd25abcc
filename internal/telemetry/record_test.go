package telemetry

import (
	"bytes"
	"testing"
)

func TestRecord_EncodeDecodeRoundTrip(t *testing.T) {
	original := Record{
		Identity: 5,
		Reading:  -42,
		Addr:     "AA:BB:CC:DD:EE:FF",
	}

	data, err := original.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if len(data) != RecordSize {
		t.Fatalf("encoded size: got %d, want %d", len(data), RecordSize)
	}

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded != original {
		t.Errorf("round trip: got %+v, want %+v", decoded, original)
	}
}

func TestRecord_EncodeRejectsInvalidIdentity(t *testing.T) {
	for _, id := range []int{0, 1, 11, -3, 255} {
		r := Record{Identity: id, Reading: -50, Addr: "AA:BB:CC:DD:EE:FF"}
		if _, err := r.Encode(); err == nil {
			t.Errorf("identity %d: expected encode error", id)
		}
	}
}

func TestRecord_EncodeRejectsBadAddress(t *testing.T) {
	for _, addr := range []string{"", "AA:BB:CC:DD:EE", "AA-BB-CC-DD-EE-FF", "AA:BB:CC:DD:EE:FF:00", "not-a-mac"} {
		r := Record{Identity: 3, Reading: -50, Addr: addr}
		if _, err := r.Encode(); err == nil {
			t.Errorf("address %q: expected encode error", addr)
		}
	}
}

func TestDecode_RejectsWrongSize(t *testing.T) {
	r := Record{Identity: 2, Reading: -60, Addr: "01:02:03:04:05:06"}
	data, err := r.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	for _, payload := range [][]byte{
		nil,
		{},
		data[:RecordSize-1],
		append(append([]byte{}, data...), 0),
	} {
		if _, err := Decode(payload); err == nil {
			t.Errorf("payload of %d bytes: expected decode error", len(payload))
		}
	}
}

func TestDecode_NegativeReading(t *testing.T) {
	// The reading travels as a signed 32-bit value; make sure the sign
	// survives the unsigned intermediate.
	r := Record{Identity: 10, Reading: SentinelReading, Addr: "0A:0B:0C:0D:0E:0F"}
	data, err := r.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.Reading != SentinelReading {
		t.Errorf("reading: got %d, want %d", decoded.Reading, SentinelReading)
	}
}

func TestDecode_AddressIsNULPadded(t *testing.T) {
	r := Record{Identity: 4, Reading: -71, Addr: "AA:BB:CC:DD:EE:FF"}
	data, err := r.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	// 17 address characters, then NUL padding to the end of the record.
	if !bytes.Equal(data[8:25], []byte("AA:BB:CC:DD:EE:FF")) {
		t.Errorf("address bytes: got %q", data[8:25])
	}
	if data[25] != 0 {
		t.Errorf("padding byte: got %d, want 0", data[25])
	}
}

func TestValidIdentity(t *testing.T) {
	for id := MinIdentity; id <= MaxIdentity; id++ {
		if !ValidIdentity(id) {
			t.Errorf("identity %d should be valid", id)
		}
	}
	for _, id := range []int{0, HubIdentity, MaxIdentity + 1, -1} {
		if ValidIdentity(id) {
			t.Errorf("identity %d should be invalid", id)
		}
	}
}
