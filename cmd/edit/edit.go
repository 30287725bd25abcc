// Package edit opens the rssimon configuration file in the system editor.
package edit

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

const defaultConfigTemplate = `[link]
  port      = 6868
  group     = "239.255.71.1"
  interface = ""

[satellite]
  identity       = 2
  hub_address    = "192.168.0.168"
  hub_mac        = "AA:BB:CC:DD:EE:FF"
  interval       = "1s"
  wifi_interface = "wlan0"
  log_level      = "info"

[hub]
  target_ssid     = "BASESTATION"
  interval        = "100ms"
  output          = "-"
  db_path         = "/var/lib/rssimon/nodes.db"
  rpc_socket      = "/run/rssimon/hub.sock"
  stale_threshold = "30s"
  wifi_interface  = "wlan0"
  log_level       = "info"
`

// Run opens the configuration file in the system editor, creating it with
// default values first if it does not exist.
func Run(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	// Create file if it doesn't exist
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Printf("Creating new config file at %s...\n", path)
		if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0644); err != nil {
			return fmt.Errorf("writing default config: %w", err)
		}
	}

	// Determine editor
	editor := os.Getenv("EDITOR")
	if editor == "" {
		for _, e := range []string{"vi", "nano", "vim"} {
			if _, err := exec.LookPath(e); err == nil {
				editor = e
				break
			}
		}
	}

	if editor == "" {
		return fmt.Errorf("no editor found ($EDITOR environment variable not set, and vi/nano/vim not in PATH)")
	}

	cmd := exec.Command(editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}
