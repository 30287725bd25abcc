package radio

import (
	"fmt"
	"strings"
	"testing"
)

const sampleTerseOutput = `HomeNet:AA\:BB\:CC\:DD\:EE\:01:82
:AA\:BB\:CC\:DD\:EE\:02:90
CoffeeShop:AA\:BB\:CC\:DD\:EE\:03:47
BASESTATION:aa\:bb\:cc\:dd\:ee\:04:64
Broken:not-a-mac:70
Garbled:AA\:BB\:CC\:DD\:EE\:05:strong
`

func TestParseTerseList(t *testing.T) {
	obs := ParseTerseList(sampleTerseOutput)

	// Hidden SSID, bad BSSID and unparseable signal entries are skipped.
	if len(obs) != 3 {
		t.Fatalf("observation count: got %d, want 3", len(obs))
	}

	// Strongest first: HomeNet (82%), BASESTATION (64%), CoffeeShop (47%).
	if obs[0].Label != "HomeNet" || obs[1].Label != "BASESTATION" || obs[2].Label != "CoffeeShop" {
		t.Errorf("order: got %s, %s, %s", obs[0].Label, obs[1].Label, obs[2].Label)
	}

	// 82% quality ≈ -59 dBm.
	if obs[0].Reading != -59 {
		t.Errorf("HomeNet reading: got %d, want -59", obs[0].Reading)
	}

	// BSSIDs are normalized to uppercase.
	if obs[1].Addr != "AA:BB:CC:DD:EE:04" {
		t.Errorf("BASESTATION addr: got %s", obs[1].Addr)
	}
}

func TestParseTerseList_Empty(t *testing.T) {
	for _, out := range []string{"", "\n", "  \n"} {
		if obs := ParseTerseList(out); len(obs) != 0 {
			t.Errorf("output %q: got %d observations, want 0", out, len(obs))
		}
	}
}

func TestParseTerseList_CapsResults(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&b, "Net%d:AA\\:BB\\:CC\\:DD\\:EE\\:%02X:%d\n", i, i, 30+i)
	}

	obs := ParseTerseList(b.String())
	if len(obs) != maxObservations {
		t.Fatalf("observation count: got %d, want %d", len(obs), maxObservations)
	}
	// The kept entries are the strongest ones.
	if obs[0].Label != "Net19" {
		t.Errorf("strongest: got %s, want Net19", obs[0].Label)
	}
}

func TestSplitTerse(t *testing.T) {
	fields := splitTerse(`My\:Net:AA\:BB\:CC\:DD\:EE\:FF:64`)
	if len(fields) != 3 {
		t.Fatalf("field count: got %d, want 3", len(fields))
	}
	if fields[0] != "My:Net" {
		t.Errorf("SSID: got %q, want My:Net", fields[0])
	}
	if fields[1] != "AA:BB:CC:DD:EE:FF" {
		t.Errorf("BSSID: got %q", fields[1])
	}
	if fields[2] != "64" {
		t.Errorf("signal: got %q", fields[2])
	}
}

func TestStrongestAndFindLabel(t *testing.T) {
	obs := []Observation{
		{Label: "A", Addr: "AA:BB:CC:DD:EE:01", Reading: -40},
		{Label: "B", Addr: "AA:BB:CC:DD:EE:02", Reading: -70},
	}

	strongest, ok := Strongest(obs)
	if !ok || strongest.Label != "A" {
		t.Errorf("strongest: got %+v, ok=%v", strongest, ok)
	}

	if _, ok := Strongest(nil); ok {
		t.Error("strongest of empty scan should not be ok")
	}

	found, ok := FindLabel(obs, "B")
	if !ok || found.Reading != -70 {
		t.Errorf("find B: got %+v, ok=%v", found, ok)
	}

	if _, ok := FindLabel(obs, "C"); ok {
		t.Error("find of absent label should not be ok")
	}
}
