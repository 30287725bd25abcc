package sysinfo

import (
	"testing"

	"rssimon/internal/telemetry"
)

func TestCollect_AnyInterface(t *testing.T) {
	info, err := Collect("")
	if err != nil {
		t.Skipf("no usable interface on this machine: %v", err)
	}

	if !telemetry.ValidAddr(info.MACAddress) {
		t.Errorf("MAC not in canonical form: %q", info.MACAddress)
	}
	if info.IPAddress == "" {
		t.Error("IP address empty")
	}
	if info.Arch == "" {
		t.Error("arch empty")
	}
}

func TestCollect_UnknownInterface(t *testing.T) {
	if _, err := Collect("definitely-not-an-interface0"); err == nil {
		t.Error("expected error for unknown interface")
	}
}
