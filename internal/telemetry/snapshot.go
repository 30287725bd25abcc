package telemetry

import (
	"fmt"
	"strconv"
	"strings"
)

// snapshotTag is the literal first field of every emitted line.
const snapshotTag = "DATA"

// Slot is one (reading, address) pair in a snapshot.
type Slot struct {
	Reading int
	Addr    string
}

// Snapshot holds the latest reading per identity. Index i corresponds to
// identity i+1; index 0 is the hub's own measurement.
type Snapshot [NumSlots]Slot

// NewSnapshot returns a snapshot with every slot set to the sentinel pair.
func NewSnapshot() Snapshot {
	var s Snapshot
	for i := range s {
		s[i] = Slot{Reading: SentinelReading, Addr: ZeroAddr}
	}
	return s
}

// Format serializes the snapshot into one host-channel line (no trailing
// newline): DATA,<reading1>,<addr1>,...,<reading10>,<addr10>.
func (s Snapshot) Format() string {
	var b strings.Builder
	b.WriteString(snapshotTag)
	for _, slot := range s {
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(slot.Reading))
		b.WriteByte(',')
		b.WriteString(slot.Addr)
	}
	return b.String()
}

// ParseSnapshot parses a host-channel line back into a snapshot. It is the
// exact inverse of Format for well-formed lines.
func ParseSnapshot(line string) (Snapshot, error) {
	var s Snapshot

	fields := strings.Split(strings.TrimRight(line, "\r\n"), ",")
	if len(fields) != 1+2*NumSlots {
		return s, fmt.Errorf("line has %d fields, want %d", len(fields), 1+2*NumSlots)
	}
	if fields[0] != snapshotTag {
		return s, fmt.Errorf("line tag %q, want %q", fields[0], snapshotTag)
	}

	for i := 0; i < NumSlots; i++ {
		reading, err := strconv.Atoi(fields[1+2*i])
		if err != nil {
			return s, fmt.Errorf("reading for identity %d: %w", i+1, err)
		}
		addr := fields[2+2*i]
		if !ValidAddr(addr) {
			return s, fmt.Errorf("address for identity %d: %q not in canonical form", i+1, addr)
		}
		s[i] = Slot{Reading: reading, Addr: addr}
	}
	return s, nil
}
