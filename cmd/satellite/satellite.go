// Package satellite implements the rssimon satellite CLI entry point.
package satellite

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"rssimon/internal/peerlink"
	"rssimon/internal/radio"
	"rssimon/internal/satellite"
	"rssimon/internal/sysinfo"
	"rssimon/internal/telemetry"
	"rssimon/pkg/config"
	"rssimon/pkg/logger"
)

// Run starts the satellite role.
func Run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.Init(cfg.Satellite.LogLevel)

	if !telemetry.ValidIdentity(cfg.Satellite.Identity) {
		return fmt.Errorf("satellite identity must be in [%d,%d], got %d",
			telemetry.MinIdentity, telemetry.MaxIdentity, cfg.Satellite.Identity)
	}
	if cfg.Satellite.HubAddress != "" && !telemetry.ValidAddr(cfg.Satellite.HubMAC) {
		return fmt.Errorf("hub_mac must be set to the hub's hardware address when hub_address is configured")
	}

	// Own address comes from the WiFi interface; fall back to any usable
	// interface, then to the zero-address sentinel.
	ownAddr := telemetry.ZeroAddr
	info, err := sysinfo.Collect(cfg.Satellite.WiFiInterface)
	if err != nil {
		log.Warn().Err(err).Str("interface", cfg.Satellite.WiFiInterface).Msg("WiFi interface lookup failed, trying any interface")
		info, err = sysinfo.Collect("")
	}
	if err != nil {
		log.Warn().Err(err).Msg("No usable interface, reporting zero address")
	} else {
		ownAddr = info.MACAddress
		log.Info().
			Str("hostname", info.Hostname).
			Str("os", info.OSName).
			Str("kernel", info.Kernel).
			Str("mac", info.MACAddress).
			Str("ip", info.IPAddress).
			Msg("Node identity detected")
	}

	interval, err := cfg.Satellite.ParseInterval()
	if err != nil {
		return fmt.Errorf("parsing interval: %w", err)
	}

	// Messaging failure at startup is fatal to the telemetry role.
	link, err := peerlink.Dial(cfg.Link.Interface, cfg.Link.Group, cfg.Link.Port, log)
	if err != nil {
		return fmt.Errorf("opening telemetry link: %w", err)
	}
	defer link.Close()

	hubMAC := ""
	if cfg.Satellite.HubAddress != "" {
		if err := link.AddPeer(cfg.Satellite.HubMAC, cfg.Satellite.HubAddress); err != nil {
			return fmt.Errorf("registering hub peer: %w", err)
		}
		hubMAC = cfg.Satellite.HubMAC
	} else {
		log.Info().Str("group", cfg.Link.Group).Msg("No hub address configured, reporting to multicast group")
	}

	scanner := &radio.NMCLIScanner{Interface: cfg.Satellite.WiFiInterface}
	agent := satellite.New(cfg.Satellite.Identity, ownAddr, hubMAC, scanner, link, interval, log)

	go agent.Run()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("Shutting down")
	return nil
}
