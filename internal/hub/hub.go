// Package hub implements the hub role: collect satellite readings into a
// fixed ten-slot table, measure the hub's own proximity to the target SSID,
// and emit one snapshot line per cycle on the host channel.
package hub

import (
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"rssimon/internal/radio"
	"rssimon/internal/store"
	"rssimon/internal/telemetry"
)

// Aggregator owns the aggregation table. Slot 1 is written only by the
// periodic cycle; slots 2..10 only by the receive handler. Last writer wins
// per slot; there is no TTL — stale readings persist until overwritten and
// the table resets to all-sentinel on every restart.
type Aggregator struct {
	targetSSID string
	ownAddr    string
	scanner    radio.Scanner
	out        io.Writer
	db         *store.Store
	interval   time.Duration
	log        zerolog.Logger

	mu    sync.RWMutex
	table telemetry.Snapshot
}

// New returns an aggregator with an all-sentinel table. db may be nil to
// disable roster bookkeeping; out is the host channel.
func New(targetSSID, ownAddr string, scanner radio.Scanner, out io.Writer, db *store.Store, interval time.Duration, log zerolog.Logger) *Aggregator {
	if !telemetry.ValidAddr(ownAddr) {
		ownAddr = telemetry.ZeroAddr
	}
	return &Aggregator{
		targetSSID: targetSSID,
		ownAddr:    ownAddr,
		scanner:    scanner,
		out:        out,
		db:         db,
		interval:   interval,
		log:        log,
		table:      telemetry.NewSnapshot(),
	}
}

// HandleRecord is the link delivery handler. It validates the record at the
// boundary and rejects without touching the table: identity must be a
// satellite identity and the reading must be negative (a non-negative value
// is noise, not a measurement).
func (g *Aggregator) HandleRecord(sender *net.UDPAddr, payload []byte) {
	rec, err := telemetry.Decode(payload)
	if err != nil {
		g.log.Warn().Err(err).Str("src", sender.String()).Msg("Dropping malformed record")
		return
	}

	if !telemetry.ValidIdentity(rec.Identity) {
		g.log.Warn().
			Int("identity", rec.Identity).
			Str("src", sender.String()).
			Msg("Dropping record with invalid identity")
		return
	}
	if rec.Reading >= 0 {
		g.log.Warn().
			Int("identity", rec.Identity).
			Int("reading", rec.Reading).
			Msg("Dropping record with non-negative reading")
		return
	}

	g.mu.Lock()
	g.table[rec.Identity-1] = telemetry.Slot{Reading: rec.Reading, Addr: rec.Addr}
	g.mu.Unlock()

	g.log.Debug().
		Int("identity", rec.Identity).
		Int("reading", rec.Reading).
		Str("addr", rec.Addr).
		Msg("Record accepted")

	if g.db != nil {
		if err := g.db.Upsert(rec.Identity, rec.Reading, rec.Addr); err != nil {
			g.log.Error().Err(err).Int("identity", rec.Identity).Msg("Roster write error")
		}
	}
}

// Run starts the emit loop. It blocks until the process is stopped.
func (g *Aggregator) Run() {
	g.log.Info().
		Str("target_ssid", g.targetSSID).
		Str("addr", g.ownAddr).
		Dur("interval", g.interval).
		Msg("Hub started")

	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	g.cycle()
	for range ticker.C {
		g.cycle()
	}
}

// cycle refreshes the hub's own slot and emits one snapshot line. A failed
// scan degrades to the sentinel and a failed write is superseded by the next
// cycle; neither aborts the loop.
func (g *Aggregator) cycle() {
	reading := telemetry.SentinelReading

	obs, err := g.scanner.Scan()
	if err != nil {
		g.log.Warn().Err(err).Msg("Own scan failed, using sentinel")
	} else if o, ok := radio.FindLabel(obs, g.targetSSID); ok {
		reading = o.Reading
	}

	g.mu.Lock()
	g.table[telemetry.HubIdentity-1] = telemetry.Slot{Reading: reading, Addr: g.ownAddr}
	g.mu.Unlock()

	line := g.Snapshot().Format()
	if _, err := fmt.Fprintln(g.out, line); err != nil {
		g.log.Error().Err(err).Msg("Host channel write failed")
	}
}

// Snapshot returns a copy of the current table.
func (g *Aggregator) Snapshot() telemetry.Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.table
}
