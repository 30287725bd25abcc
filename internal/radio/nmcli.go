package radio

import (
	"fmt"
	"os/exec"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"rssimon/internal/telemetry"
)

// maxObservations caps scan results to the strongest entries, keeping
// downstream records small.
const maxObservations = 12

// NMCLIScanner scans via NetworkManager's nmcli. The call blocks for the
// scan duration (typically hundreds of milliseconds).
type NMCLIScanner struct {
	Interface string
}

// Scan runs one nmcli scan and returns observations sorted strongest first.
func (s *NMCLIScanner) Scan() ([]Observation, error) {
	args := []string{"-t", "-f", "SSID,BSSID,SIGNAL", "dev", "wifi", "list"}
	if s.Interface != "" {
		args = append(args, "ifname", s.Interface)
	}

	out, err := exec.Command("nmcli", args...).Output()
	if err != nil {
		return nil, fmt.Errorf("running nmcli: %w", err)
	}

	return ParseTerseList(string(out)), nil
}

// ParseTerseList parses `nmcli -t -f SSID,BSSID,SIGNAL dev wifi list`
// output. nmcli reports signal as a 0-100 quality score, which is converted
// to an approximate dBm value. Entries with an empty SSID or an unparseable
// signal are skipped.
func ParseTerseList(out string) []Observation {
	var obs []Observation

	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		fields := splitTerse(line)
		if len(fields) != 3 {
			continue
		}
		ssid, bssid := fields[0], strings.ToUpper(fields[1])
		if ssid == "" || !telemetry.ValidAddr(bssid) {
			continue
		}
		quality, err := strconv.Atoi(fields[2])
		if err != nil {
			continue
		}
		obs = append(obs, Observation{
			Label:   ssid,
			Addr:    bssid,
			Reading: qualityToDBM(quality),
		})
	}

	sort.SliceStable(obs, func(i, j int) bool {
		return obs[i].Reading > obs[j].Reading
	})
	if len(obs) > maxObservations {
		obs = obs[:maxObservations]
	}
	return obs
}

// qualityToDBM converts a 0-100 quality score to a rough dBm figure.
func qualityToDBM(quality int) int {
	return quality/2 - 100
}

// splitTerse splits one line of nmcli terse output on unescaped colons,
// unescaping `\:` and `\\` within fields (BSSIDs contain escaped colons).
func splitTerse(line string) []string {
	var fields []string
	var cur strings.Builder

	escaped := false
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ':':
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	fields = append(fields, cur.String())
	return fields
}

var (
	linkSignalPattern = regexp.MustCompile(`signal: (-?\d+) dBm`)
	linkSSIDPattern   = regexp.MustCompile(`SSID: (.+)`)
)

// OwnLink reports the RSSI and SSID of the interface's current association
// using `iw <iface> link`. ok is false when the interface is not associated
// or the tool is unavailable.
func OwnLink(iface string) (reading int, ssid string, ok bool) {
	out, err := exec.Command("iw", iface, "link").Output()
	if err != nil {
		return telemetry.SentinelReading, "", false
	}

	m := linkSignalPattern.FindSubmatch(out)
	if m == nil {
		return telemetry.SentinelReading, "", false
	}
	reading, err = strconv.Atoi(string(m[1]))
	if err != nil {
		return telemetry.SentinelReading, "", false
	}

	if sm := linkSSIDPattern.FindSubmatch(out); sm != nil {
		ssid = strings.TrimSpace(string(sm[1]))
	}
	return reading, ssid, true
}
