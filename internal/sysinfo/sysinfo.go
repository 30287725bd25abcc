// Package sysinfo resolves the local node's own network identity and host
// metadata for startup diagnostics.
package sysinfo

import (
	"fmt"
	"net"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/host"
)

// NodeInfo holds the local node's identity and platform metadata.
type NodeInfo struct {
	MACAddress string
	IPAddress  string
	Hostname   string
	OSName     string
	Kernel     string
	Arch       string
	UptimeSec  uint64
}

// Collect resolves the node's own MAC and IPv4 address — from the named
// interface if given, otherwise from the first usable one — and gathers
// host metadata.
func Collect(ifaceName string) (*NodeInfo, error) {
	mac, ip, err := networkInfo(ifaceName)
	if err != nil {
		return nil, err
	}

	info := &NodeInfo{
		MACAddress: mac,
		IPAddress:  ip,
		Arch:       runtime.GOARCH,
	}

	if hi, err := host.Info(); err == nil {
		info.Hostname = hi.Hostname
		info.OSName = hi.Platform
		info.Kernel = hi.KernelVersion
		info.UptimeSec = hi.Uptime
	}

	return info, nil
}

// networkInfo returns the MAC (canonical uppercase colon-hex) and IPv4
// address of the named interface, or of the first up, non-loopback
// interface carrying both when no name is given.
func networkInfo(ifaceName string) (string, string, error) {
	var ifaces []net.Interface

	if ifaceName != "" {
		iface, err := net.InterfaceByName(ifaceName)
		if err != nil {
			return "", "", fmt.Errorf("finding interface %s: %w", ifaceName, err)
		}
		ifaces = []net.Interface{*iface}
	} else {
		var err error
		ifaces, err = net.Interfaces()
		if err != nil {
			return "", "", fmt.Errorf("listing interfaces: %w", err)
		}
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagUp == 0 {
			continue
		}
		if len(iface.HardwareAddr) == 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			ip4 := ipNet.IP.To4()
			if ip4 == nil {
				continue
			}
			mac := strings.ToUpper(iface.HardwareAddr.String())
			return mac, ip4.String(), nil
		}
	}

	return "", "", fmt.Errorf("no usable network interface found")
}
