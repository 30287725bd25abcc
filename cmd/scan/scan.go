// Package scan implements the one-shot scan diagnostic.
package scan

import (
	"fmt"

	"rssimon/internal/radio"
	"rssimon/pkg/config"
)

// Run performs a single radio scan and prints the results, strongest first.
func Run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	iface := cfg.Hub.WiFiInterface

	if reading, ssid, ok := radio.OwnLink(iface); ok {
		fmt.Printf("Own link (%s): %q at %d dBm\n\n", iface, ssid, reading)
	} else {
		fmt.Printf("Own link (%s): not associated\n\n", iface)
	}

	scanner := &radio.NMCLIScanner{Interface: iface}
	obs, err := scanner.Scan()
	if err != nil {
		return fmt.Errorf("scanning: %w", err)
	}
	if len(obs) == 0 {
		fmt.Println("Nothing detected.")
		return nil
	}

	fmt.Printf("%-8s  %-17s  %s\n", "RSSI", "BSSID", "SSID")
	for _, o := range obs {
		fmt.Printf("%4d dBm  %-17s  %s\n", o.Reading, o.Addr, o.Label)
	}
	return nil
}
