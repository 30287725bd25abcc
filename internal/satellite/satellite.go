// Package satellite implements the satellite role: measure the local radio
// environment and report the strongest reading to the hub on a fixed period.
package satellite

import (
	"time"

	"github.com/rs/zerolog"

	"rssimon/internal/radio"
	"rssimon/internal/telemetry"
)

// Messenger is the sending half of the telemetry link.
type Messenger interface {
	Send(mac string, payload []byte) error
	SendGroup(payload []byte) error
}

// Agent cycles through scan → send → idle until the process exits. Every
// cycle makes exactly one send attempt; a failed cycle is retried implicitly
// by the next one.
type Agent struct {
	identity int
	addr     string
	hubMAC   string
	scanner  radio.Scanner
	link     Messenger
	interval time.Duration
	log      zerolog.Logger
}

// New returns a satellite agent reporting as the given identity from the
// given own address. hubMAC must already be registered on the link; if it is
// empty, records are sent to the multicast group instead.
func New(identity int, addr, hubMAC string, scanner radio.Scanner, link Messenger, interval time.Duration, log zerolog.Logger) *Agent {
	return &Agent{
		identity: identity,
		addr:     addr,
		hubMAC:   hubMAC,
		scanner:  scanner,
		link:     link,
		interval: interval,
		log:      log,
	}
}

// Run starts the report loop. It blocks until the process is stopped.
func (a *Agent) Run() {
	a.log.Info().
		Int("identity", a.identity).
		Str("addr", a.addr).
		Dur("interval", a.interval).
		Msg("Satellite started")

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	a.cycle()
	for range ticker.C {
		a.cycle()
	}
}

// cycle performs one scan and one send attempt.
func (a *Agent) cycle() {
	reading := telemetry.SentinelReading

	obs, err := a.scanner.Scan()
	if err != nil {
		a.log.Warn().Err(err).Msg("Scan failed, reporting sentinel")
	} else if strongest, ok := radio.Strongest(obs); ok {
		reading = strongest.Reading
	} else {
		a.log.Debug().Msg("Scan found nothing, reporting sentinel")
	}

	record := telemetry.Record{
		Identity: a.identity,
		Reading:  reading,
		Addr:     a.addr,
	}
	payload, err := record.Encode()
	if err != nil {
		a.log.Error().Err(err).Msg("Failed to build record")
		return
	}

	if a.hubMAC != "" {
		err = a.link.Send(a.hubMAC, payload)
	} else {
		err = a.link.SendGroup(payload)
	}
	if err != nil {
		a.log.Warn().Err(err).Msg("Send failed, next cycle retries")
		return
	}

	a.log.Debug().Int("reading", reading).Msg("Report sent")
}
