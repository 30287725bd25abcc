// Package nodes implements the roster listing CLI.
package nodes

import (
	"fmt"
	"time"

	"rssimon/internal/rpc"
	"rssimon/pkg/config"
)

// Run lists the nodes known to a running hub.
func Run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	client, err := rpc.NewClient(cfg.Hub.RPCSocket)
	if err != nil {
		return fmt.Errorf("is the hub running? %w", err)
	}
	defer client.Close()

	records, err := client.ListNodes(false)
	if err != nil {
		return fmt.Errorf("fetching roster: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No nodes observed yet.")
		return nil
	}

	fmt.Printf("%-4s  %-8s  %-17s  %-10s  %-8s  %s\n",
		"ID", "RSSI", "ADDRESS", "LAST SEEN", "PACKETS", "STATE")
	for _, r := range records {
		state := "active"
		if !r.Active {
			state = "stale"
		}
		fmt.Printf("%-4d  %4d dBm  %-17s  %-10s  %-8d  %s\n",
			r.Identity, r.Reading, r.Addr,
			formatAgo(r.LastSeen), r.PacketCount, state)
	}
	return nil
}

func formatAgo(t time.Time) string {
	d := time.Since(t).Round(time.Second)
	if d < 0 {
		d = 0
	}
	return d.String() + " ago"
}
