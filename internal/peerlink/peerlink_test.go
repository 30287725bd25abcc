package peerlink

import (
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"rssimon/internal/telemetry"
)

const testPeerMAC = "AA:BB:CC:DD:EE:FF"

func testLinks(t *testing.T) (*Link, *Link) {
	t.Helper()

	recv, err := Listen("", "239.255.71.1", 0, zerolog.Nop())
	if err != nil {
		t.Skipf("cannot open UDP socket: %v", err)
	}
	t.Cleanup(func() { recv.Close() })

	port := recv.LocalAddr().(*net.UDPAddr).Port

	send, err := Dial("", "239.255.71.1", port, zerolog.Nop())
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { send.Close() })

	if err := send.AddPeer(testPeerMAC, fmt.Sprintf("127.0.0.1:%d", port)); err != nil {
		t.Fatalf("add peer failed: %v", err)
	}
	return send, recv
}

func validPayload(t *testing.T, identity, reading int) []byte {
	t.Helper()
	data, err := telemetry.Record{Identity: identity, Reading: reading, Addr: "11:22:33:44:55:66"}.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	return data
}

func TestLink_SendReceive(t *testing.T) {
	send, recv := testLinks(t)

	got := make(chan []byte, 4)
	recv.OnReceive(func(src *net.UDPAddr, payload []byte) {
		got <- payload
	})

	want := validPayload(t, 5, -42)
	if err := send.Send(testPeerMAC, want); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	select {
	case payload := <-got:
		rec, err := telemetry.Decode(payload)
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if rec.Identity != 5 || rec.Reading != -42 {
			t.Errorf("record: got %+v", rec)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
	}
}

func TestLink_DropsWrongSizePayloads(t *testing.T) {
	send, recv := testLinks(t)

	got := make(chan []byte, 4)
	recv.OnReceive(func(src *net.UDPAddr, payload []byte) {
		got <- payload
	})

	// Undersized and oversized datagrams never reach the handler.
	if err := send.Send(testPeerMAC, []byte{1, 2, 3}); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if err := send.Send(testPeerMAC, make([]byte, telemetry.RecordSize+1)); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	marker := validPayload(t, 7, -63)
	if err := send.Send(testPeerMAC, marker); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	select {
	case payload := <-got:
		rec, err := telemetry.Decode(payload)
		if err != nil {
			t.Fatalf("first delivered payload malformed: %v", err)
		}
		if rec.Identity != 7 {
			t.Errorf("identity: got %d, want 7", rec.Identity)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
	}

	select {
	case payload := <-got:
		t.Errorf("unexpected extra delivery of %d bytes", len(payload))
	case <-time.After(100 * time.Millisecond):
	}
}

func TestLink_SendRequiresRegisteredPeer(t *testing.T) {
	send, _ := testLinks(t)

	if err := send.Send("00:11:22:33:44:55", validPayload(t, 2, -50)); err == nil {
		t.Error("expected error sending to unregistered peer")
	}
}

func TestLink_AddPeerValidation(t *testing.T) {
	send, recv := testLinks(t)

	if err := send.AddPeer("not-a-mac", "127.0.0.1:9999"); err == nil {
		t.Error("expected error for malformed peer address")
	}

	// Endpoint without a port inherits the channel port.
	if err := send.AddPeer("0A:0B:0C:0D:0E:0F", "127.0.0.1"); err != nil {
		t.Fatalf("add peer without port failed: %v", err)
	}

	got := make(chan []byte, 1)
	recv.OnReceive(func(src *net.UDPAddr, payload []byte) {
		got <- payload
	})

	if err := send.Send("0A:0B:0C:0D:0E:0F", validPayload(t, 3, -77)); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	select {
	case <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery on inherited port")
	}
}
