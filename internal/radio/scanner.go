// Package radio performs WiFi environment scans and exposes them as ordered
// (label, reading) observations, strongest first.
package radio

// Observation is one access point seen during a scan.
type Observation struct {
	Label   string // SSID
	Addr    string // BSSID in colon-hex form
	Reading int    // RSSI in dBm
}

// Scanner performs a blocking scan of the surrounding radio environment.
// Each call triggers a fresh scan; results are ordered strongest first.
// An empty result is valid and means "nothing detected".
type Scanner interface {
	Scan() ([]Observation, error)
}

// Strongest returns the first (strongest) observation, if any.
func Strongest(obs []Observation) (Observation, bool) {
	if len(obs) == 0 {
		return Observation{}, false
	}
	return obs[0], true
}

// FindLabel returns the strongest observation whose label matches exactly.
func FindLabel(obs []Observation, label string) (Observation, bool) {
	for _, o := range obs {
		if o.Label == label {
			return o, true
		}
	}
	return Observation{}, false
}
