package portal

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// SecurityLabel returns "Secure" or "Open".
func (n Network) SecurityLabel() string {
	if n.Secure {
		return "Secure"
	}
	return "Open"
}

// Label renders a network the way the portal page lists it:
// "<ssid> (<Secure|Open>, <rssi> dBm)".
func (n Network) Label() string {
	return fmt.Sprintf("%s (%s, %d dBm)", n.SSID, n.SecurityLabel(), n.RSSI)
}

// RankBySignal returns a copy of networks ordered strongest first. The sort
// is stable so networks with equal RSSI keep the order the device sent.
func RankBySignal(networks []Network) []Network {
	ranked := make([]Network, len(networks))
	copy(ranked, networks)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RSSI > ranked[j].RSSI
	})
	return ranked
}

// CountSummary renders the scan summary line, e.g. "3 networks".
func CountSummary(n int) string {
	if n == 1 {
		return "1 network"
	}
	return fmt.Sprintf("%d networks", n)
}

// SignalBars maps an RSSI to 0-4 bars.
func SignalBars(rssi int) int {
	switch {
	case rssi >= -55:
		return 4
	case rssi >= -67:
		return 3
	case rssi >= -75:
		return 2
	case rssi >= -85:
		return 1
	default:
		return 0
	}
}

// SignalQuality maps an RSSI to a 0.0-1.0 quality, linear between -100 dBm
// and -50 dBm.
func SignalQuality(rssi int) float64 {
	q := float64(rssi+100) / 50.0
	if q < 0 {
		return 0
	}
	if q > 1 {
		return 1
	}
	return q
}

// FormatNetworksDetailed renders a ranked table with one network per line.
func FormatNetworksDetailed(networks []Network) string {
	var b strings.Builder

	width := len("SSID")
	for _, n := range networks {
		if len(n.SSID) > width {
			width = len(n.SSID)
		}
	}

	fmt.Fprintf(&b, "  #  %-*s  %-8s  %8s  %s\n", width, "SSID", "SECURITY", "SIGNAL", "BARS")
	for i, n := range networks {
		bars := strings.Repeat("▮", SignalBars(n.RSSI)) + strings.Repeat("▯", 4-SignalBars(n.RSSI))
		fmt.Fprintf(&b, "%3d  %-*s  %-8s  %4d dBm  %s\n", i+1, width, n.SSID, n.SecurityLabel(), n.RSSI, bars)
	}
	b.WriteString("\n")
	b.WriteString(CountSummary(len(networks)))
	return b.String()
}

// FormatNetworksCompact renders one Label per line followed by the summary.
func FormatNetworksCompact(networks []Network) string {
	lines := make([]string, 0, len(networks)+1)
	for _, n := range networks {
		lines = append(lines, n.Label())
	}
	lines = append(lines, CountSummary(len(networks)))
	return strings.Join(lines, "\n")
}

// FormatNetworksJSON renders the networks as indented JSON.
func FormatNetworksJSON(networks []Network) (string, error) {
	if networks == nil {
		networks = []Network{}
	}
	data, err := json.MarshalIndent(networks, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal networks: %w", err)
	}
	return string(data), nil
}

// FormatStatus renders a one-line status summary.
func FormatStatus(s *StatusResponse) string {
	var line string
	switch {
	case s.Connected && s.SSID != "" && s.IP != "":
		line = fmt.Sprintf("Connected to %s (%s)", s.SSID, s.IP)
	case s.Connected && s.SSID != "":
		line = fmt.Sprintf("Connected to %s", s.SSID)
	case s.Connected:
		line = "Connected"
	case s.Connecting:
		line = "Connecting…"
	default:
		line = "Not connected"
	}
	if s.Error != "" {
		line += " - " + s.Error
	}
	return line
}
