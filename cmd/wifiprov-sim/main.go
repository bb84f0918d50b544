// Wifiprov-sim serves a simulated device provisioning portal.
//
// It answers the same status, scan, connect and disconnect endpoints a
// device in setup mode does, with a simulated radio behind them, so the
// wifiprov front end can be exercised without hardware.
//
// Usage:
//
//	wifiprov-sim [flags]
//
// See 'wifiprov-sim --help' for available options.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/muurk/wifiprov/internal/discovery"
	"github.com/muurk/wifiprov/internal/logging"
	"github.com/muurk/wifiprov/internal/portal"
	"github.com/muurk/wifiprov/internal/simulator"
	"github.com/muurk/wifiprov/internal/urls"
	"github.com/muurk/wifiprov/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Server flags
var (
	host         string
	port         int
	networksFile string
	passphrases  []string
	connectDelay time.Duration
	scanDelay    time.Duration
	scanCooldown time.Duration
	stationIP    string
	mdnsName     string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "wifiprov-sim",
	Short: "Simulated Wi-Fi provisioning portal",
	Long: `Serve a simulated device provisioning portal.

The simulator answers /api/status, /api/scan, /api/connect and
/api/disconnect like a device in setup mode, and serves /hello.html once
the simulated radio has joined a network.

Connection attempts take --connect-delay to settle. A secure network
accepts only the passphrase given with --passphrase, or any passphrase
when none is given.`,
	Example: `  # Default networks on port 8080
  wifiprov-sim

  # Require a passphrase and slow the radio down
  wifiprov-sim --passphrase HomeNet="correct horse" --connect-delay 5s --scan-delay 2s

  # Networks from a file, without the mDNS announcement
  wifiprov-sim --networks networks.yaml --mdns-name "" --log-level debug`,
	Version:      version.Version,
	SilenceUsage: true,
	RunE:         runSimulator,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	f := rootCmd.Flags()
	f.StringVar(&host, "host", "", "Listen address (empty = all interfaces)")
	f.IntVar(&port, "port", simulator.DefaultPort, "Listen port")
	f.StringVar(&networksFile, "networks", "", "YAML file listing networks (ssid, rssi, secure)")
	f.StringArrayVar(&passphrases, "passphrase", nil, "SSID=passphrase accepted by a network (repeatable)")
	f.DurationVar(&connectDelay, "connect-delay", 3*time.Second, "Time a connection attempt takes")
	f.DurationVar(&scanDelay, "scan-delay", 1500*time.Millisecond, "Time one radio scan takes")
	f.DurationVar(&scanCooldown, "scan-cooldown", simulator.DefaultScanCooldown, "Minimum gap between radio scans")
	f.StringVar(&stationIP, "station-ip", simulator.DefaultStationIP, "Address reported once connected")
	f.StringVar(&mdnsName, "mdns-name", "wifiprov-sim", "mDNS instance name to announce (empty = do not announce)")
	f.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
}

func runSimulator(cmd *cobra.Command, args []string) error {
	networks := simulator.DefaultNetworks()
	if networksFile != "" {
		var err error
		networks, err = loadNetworks(networksFile)
		if err != nil {
			return err
		}
	}

	accepted, err := parsePassphrases(passphrases)
	if err != nil {
		return err
	}

	srv, err := simulator.New(&simulator.Config{
		Host:         host,
		Port:         port,
		Networks:     networks,
		Passphrases:  accepted,
		ConnectDelay: connectDelay,
		ScanDelay:    scanDelay,
		ScanCooldown: scanCooldown,
		StationIP:    stationIP,
		LogLevel:     logLevel,
	})
	if err != nil {
		return fmt.Errorf("failed to create simulator: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if mdnsName != "" {
		ann, err := discovery.Announce(mdnsName, port, map[string]string{
			"version": version.Version,
			"path":    urls.StatusPath,
		})
		if err != nil {
			logging.Warn("mDNS announcement failed, continuing without it", zap.Error(err))
		} else {
			defer ann.Close()
		}
	}

	fmt.Printf("Simulated portal on http://%s:%d (%d networks)\n", displayHost(host), port, len(networks))
	return srv.ListenAndServe(ctx)
}

// networksDoc is the --networks file layout.
type networksDoc struct {
	Networks []struct {
		SSID   string `yaml:"ssid"`
		RSSI   int    `yaml:"rssi"`
		Secure bool   `yaml:"secure"`
	} `yaml:"networks"`
}

func loadNetworks(path string) ([]portal.Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read networks file: %w", err)
	}
	var doc networksDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse networks file %s: %w", path, err)
	}
	networks := make([]portal.Network, 0, len(doc.Networks))
	for _, n := range doc.Networks {
		networks = append(networks, portal.Network{SSID: n.SSID, RSSI: n.RSSI, Secure: n.Secure})
	}
	return networks, nil
}

func parsePassphrases(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		ssid, pass, ok := strings.Cut(pair, "=")
		if !ok || ssid == "" {
			return nil, fmt.Errorf("invalid --passphrase %q (want SSID=passphrase)", pair)
		}
		out[ssid] = pass
	}
	return out, nil
}

func displayHost(h string) string {
	if h == "" {
		return "0.0.0.0"
	}
	return h
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wifiprov-sim %s (commit: %s)\n", version.Version, version.Commit)
	},
}
