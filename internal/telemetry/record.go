// Package telemetry defines the wire record exchanged between satellites and
// the hub, and the snapshot line the hub emits on the host channel.
package telemetry

import (
	"encoding/binary"
	"fmt"
	"regexp"
)

const (
	// HubIdentity is the slot reserved for the hub's own measurement.
	HubIdentity = 1

	// MinIdentity and MaxIdentity bound the satellite identity range.
	MinIdentity = 2
	MaxIdentity = 10

	// NumSlots is the number of tracked identities (1..MaxIdentity).
	NumSlots = MaxIdentity

	// SentinelReading means "no signal / never observed".
	SentinelReading = -100

	// ZeroAddr is the sentinel peer address.
	ZeroAddr = "00:00:00:00:00:00"

	// addrFieldLen is the NUL-padded address field width on the wire.
	addrFieldLen = 18

	// RecordSize is the exact wire size of a Record: 4-byte identity,
	// 4-byte signed reading, NUL-padded address string.
	RecordSize = 4 + 4 + addrFieldLen
)

// macPattern matches the canonical colon-separated hex address form.
var macPattern = regexp.MustCompile(`^([0-9A-Fa-f]{2}:){5}[0-9A-Fa-f]{2}$`)

// Record is one satellite reading as carried over the link.
type Record struct {
	Identity int
	Reading  int
	Addr     string
}

// ValidIdentity reports whether id is a legal satellite identity.
func ValidIdentity(id int) bool {
	return id >= MinIdentity && id <= MaxIdentity
}

// ValidAddr reports whether addr is in canonical colon-hex form.
func ValidAddr(addr string) bool {
	return macPattern.MatchString(addr)
}

// Encode serializes the record into its fixed wire form.
func (r Record) Encode() ([]byte, error) {
	if !ValidIdentity(r.Identity) {
		return nil, fmt.Errorf("identity %d outside [%d,%d]", r.Identity, MinIdentity, MaxIdentity)
	}
	if !ValidAddr(r.Addr) {
		return nil, fmt.Errorf("address %q not in canonical form", r.Addr)
	}

	buf := make([]byte, RecordSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(r.Identity))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(int32(r.Reading)))
	copy(buf[8:], r.Addr)
	return buf, nil
}

// Decode parses a wire record. The payload size must match RecordSize
// exactly; anything else is malformed and must have been dropped by the
// link layer already.
func Decode(data []byte) (Record, error) {
	if len(data) != RecordSize {
		return Record{}, fmt.Errorf("payload is %d bytes, want %d", len(data), RecordSize)
	}

	addr := data[8:]
	end := 0
	for end < len(addr) && addr[end] != 0 {
		end++
	}

	r := Record{
		Identity: int(binary.LittleEndian.Uint32(data[0:4])),
		Reading:  int(int32(binary.LittleEndian.Uint32(data[4:8]))),
		Addr:     string(addr[:end]),
	}
	if !ValidAddr(r.Addr) {
		return Record{}, fmt.Errorf("address %q not in canonical form", r.Addr)
	}
	return r, nil
}
