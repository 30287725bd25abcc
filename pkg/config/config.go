// Package config provides TOML configuration loading for rssimon.
package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config is the top-level configuration structure.
type Config struct {
	Link      LinkConfig      `toml:"link"`
	Satellite SatelliteConfig `toml:"satellite"`
	Hub       HubConfig       `toml:"hub"`
}

// LinkConfig holds the telemetry channel settings shared by both roles.
// Port is the messaging channel number and must match on every participant.
type LinkConfig struct {
	Port      int    `toml:"port"`
	Group     string `toml:"group"`
	Interface string `toml:"interface"`
}

// SatelliteConfig holds settings for the satellite role.
type SatelliteConfig struct {
	Identity      int    `toml:"identity"`
	HubAddress    string `toml:"hub_address"`
	HubMAC        string `toml:"hub_mac"`
	Interval      string `toml:"interval"`
	WiFiInterface string `toml:"wifi_interface"`
	LogLevel      string `toml:"log_level"`
}

// HubConfig holds settings for the hub role.
type HubConfig struct {
	TargetSSID     string `toml:"target_ssid"`
	Interval       string `toml:"interval"`
	Output         string `toml:"output"`
	DBPath         string `toml:"db_path"`
	RPCSocket      string `toml:"rpc_socket"`
	StaleThreshold string `toml:"stale_threshold"`
	WiFiInterface  string `toml:"wifi_interface"`
	LogLevel       string `toml:"log_level"`
}

// ParseInterval parses the satellite report interval string to a time.Duration.
func (s *SatelliteConfig) ParseInterval() (time.Duration, error) {
	if s.Interval == "" {
		return time.Second, nil
	}
	return time.ParseDuration(s.Interval)
}

// ParseInterval parses the hub emit interval string to a time.Duration.
func (h *HubConfig) ParseInterval() (time.Duration, error) {
	if h.Interval == "" {
		return 100 * time.Millisecond, nil
	}
	return time.ParseDuration(h.Interval)
}

// ParseStaleThreshold parses the roster stale threshold string to a time.Duration.
func (h *HubConfig) ParseStaleThreshold() (time.Duration, error) {
	if h.StaleThreshold == "" {
		return 30 * time.Second, nil
	}
	return time.ParseDuration(h.StaleThreshold)
}

// Load reads and parses a TOML config file, applying defaults for unset values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	applyDefaults(cfg)
	cfg.expandPaths()
	return cfg, nil
}

func (cfg *Config) expandPaths() {
	cfg.Hub.DBPath = ExpandPath(cfg.Hub.DBPath)
	cfg.Hub.Output = ExpandPath(cfg.Hub.Output)
}

// ExpandPath expands tilde (~) to the user's home directory.
func ExpandPath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	usr, err := user.Current()
	if err != nil {
		return path
	}
	if path == "~" {
		return usr.HomeDir
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(usr.HomeDir, path[2:])
	}
	return path
}

func applyDefaults(cfg *Config) {

	// Link defaults
	if cfg.Link.Port == 0 {
		cfg.Link.Port = 6868
	}
	if cfg.Link.Group == "" {
		cfg.Link.Group = "239.255.71.1"
	}

	// Satellite defaults
	if cfg.Satellite.Interval == "" {
		cfg.Satellite.Interval = "1s"
	}
	if cfg.Satellite.WiFiInterface == "" {
		cfg.Satellite.WiFiInterface = "wlan0"
	}
	if cfg.Satellite.LogLevel == "" {
		cfg.Satellite.LogLevel = "info"
	}

	// Hub defaults
	if cfg.Hub.Interval == "" {
		cfg.Hub.Interval = "100ms"
	}
	if cfg.Hub.Output == "" {
		cfg.Hub.Output = "-"
	}
	if cfg.Hub.DBPath == "" {
		cfg.Hub.DBPath = "/var/lib/rssimon/nodes.db"
	}
	if cfg.Hub.RPCSocket == "" {
		cfg.Hub.RPCSocket = "/run/rssimon/hub.sock"
	}
	if cfg.Hub.StaleThreshold == "" {
		cfg.Hub.StaleThreshold = "30s"
	}
	if cfg.Hub.WiFiInterface == "" {
		cfg.Hub.WiFiInterface = "wlan0"
	}
	if cfg.Hub.LogLevel == "" {
		cfg.Hub.LogLevel = "info"
	}
}
