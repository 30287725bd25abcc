// Package hub implements the rssimon hub CLI entry point.
package hub

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"rssimon/internal/hub"
	"rssimon/internal/peerlink"
	"rssimon/internal/radio"
	"rssimon/internal/rpc"
	"rssimon/internal/store"
	"rssimon/internal/sysinfo"
	"rssimon/internal/telemetry"
	"rssimon/pkg/config"
	"rssimon/pkg/logger"
)

// Run starts the hub role.
func Run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.Init(cfg.Hub.LogLevel)

	if cfg.Hub.TargetSSID == "" {
		log.Warn().Msg("No target_ssid configured, own slot will stay at sentinel")
	}

	// Ensure database directory exists
	dbDir := filepath.Dir(cfg.Hub.DBPath)
	if err := os.MkdirAll(dbDir, 0700); err != nil {
		return fmt.Errorf("creating database directory %s: %w", dbDir, err)
	}

	// Ensure RPC socket directory exists
	sockDir := filepath.Dir(cfg.Hub.RPCSocket)
	if err := os.MkdirAll(sockDir, 0700); err != nil {
		return fmt.Errorf("creating socket directory %s: %w", sockDir, err)
	}

	// Open roster store
	db, err := store.New(cfg.Hub.DBPath, log)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()

	staleThreshold, err := cfg.Hub.ParseStaleThreshold()
	if err != nil {
		return fmt.Errorf("parsing stale threshold: %w", err)
	}
	db.RunExpiry(5*time.Second, staleThreshold)

	// Start RPC server (for 'rssimon nodes' to query this hub)
	if err := rpc.StartServer(cfg.Hub.RPCSocket, db, log); err != nil {
		return fmt.Errorf("starting RPC server: %w", err)
	}

	interval, err := cfg.Hub.ParseInterval()
	if err != nil {
		return fmt.Errorf("parsing interval: %w", err)
	}

	// The hub's own address tags slot 1; detection failure degrades to the
	// zero-address sentinel.
	ownAddr := telemetry.ZeroAddr
	info, err := sysinfo.Collect(cfg.Hub.WiFiInterface)
	if err != nil {
		info, err = sysinfo.Collect("")
	}
	if err != nil {
		log.Warn().Err(err).Msg("No usable interface, tagging own slot with zero address")
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

	out, closeOut, err := openOutput(cfg.Hub.Output)
	if err != nil {
		return fmt.Errorf("opening host channel: %w", err)
	}
	defer closeOut()

	// Messaging failure at startup is fatal to the telemetry role.
	link, err := peerlink.Listen(cfg.Link.Interface, cfg.Link.Group, cfg.Link.Port, log)
	if err != nil {
		return fmt.Errorf("opening telemetry link: %w", err)
	}
	defer link.Close()

	scanner := &radio.NMCLIScanner{Interface: cfg.Hub.WiFiInterface}
	agg := hub.New(cfg.Hub.TargetSSID, ownAddr, scanner, out, db, interval, log)

	link.OnReceive(agg.HandleRecord)
	go agg.Run()

	log.Info().
		Str("db_path", cfg.Hub.DBPath).
		Str("rpc_socket", cfg.Hub.RPCSocket).
		Str("output", cfg.Hub.Output).
		Int("port", cfg.Link.Port).
		Msg("Hub running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("Shutting down")
	os.Remove(cfg.Hub.RPCSocket)
	return nil
}

// openOutput opens the host channel: stdout for "-", otherwise a file or
// device path (e.g. /dev/ttyUSB0).
func openOutput(path string) (io.Writer, func(), error) {
	if path == "-" || path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
