// rssimon — WiFi RSSI telemetry mesh
//
// Usage:
//
//	rssimon satellite — measure local RSSI and report to the hub
//	rssimon hub       — aggregate satellite readings and emit snapshots
//	rssimon scan      — one-shot radio scan
//	rssimon nodes     — list nodes known to a running hub
package main

import (
	"fmt"
	"os"

	"rssimon/cmd/edit"
	"rssimon/cmd/hub"
	"rssimon/cmd/nodes"
	"rssimon/cmd/satellite"
	"rssimon/cmd/scan"
)

const (
	defaultSystemPath = "/etc/rssimon/config.toml"
	defaultLocalPath  = "config.toml"
	version           = "1.0.0"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	configPath := ""

	// Parse --config flag if present
	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--config" && i+1 < len(args) {
			configPath = args[i+1]
			args = append(args[:i], args[i+2:]...)
			i--
			continue
		}
		if len(arg) > 9 && arg[:9] == "--config=" {
			configPath = arg[9:]
			args = append(args[:i], args[i+1:]...)
			i--
			continue
		}
	}

	// Auto-discover config if not specified
	if configPath == "" {
		if _, err := os.Stat(defaultLocalPath); err == nil {
			configPath = defaultLocalPath
		} else {
			configPath = defaultSystemPath
		}
	}

	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	subcommand := args[0]
	var err error

	switch subcommand {
	case "satellite":
		err = satellite.Run(configPath)
	case "hub":
		err = hub.Run(configPath)
	case "scan":
		err = scan.Run(configPath)
	case "nodes":
		err = nodes.Run(configPath)
	case "edit":
		err = edit.Run(configPath)
	case "version":
		fmt.Printf("rssimon v%s\n", version)
		return
	case "help", "--help", "-h":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", subcommand)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`rssimon v%s — WiFi RSSI Telemetry Mesh

Usage:
  rssimon <command> [--config <path>]

Commands:
  satellite  Run the satellite role (scan & report to the hub)
  hub        Run the hub role (aggregate & emit snapshot lines)
  scan       Perform a one-shot radio scan and print the results
  nodes      List the node roster known to a running hub
  edit       Edit the configuration file in your system editor
  version    Print version information
  help       Show this help message

Options:
  --config <path>  Path to config file (default: looks for ./config.toml, then %s)

Examples:
  rssimon hub                           # Aggregate readings, emit DATA lines on stdout
  rssimon satellite                     # Report the strongest local signal every second
  rssimon nodes                         # Show which satellites a hub has heard from

`, version, defaultSystemPath)
}
