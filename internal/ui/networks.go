package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/wifiprov/internal/portal"
)

const ssidColumn = 32

// RenderNetworkRow renders one scan result: bars, SSID, security, dBm.
func RenderNetworkRow(n portal.Network) string {
	security := OpenStyle.Render(n.SecurityLabel())
	if n.Secure {
		security = SecureStyle.Render(n.SecurityLabel())
	}

	name := n.SSID
	if w := lipgloss.Width(name); w < ssidColumn {
		name += strings.Repeat(" ", ssidColumn-w)
	}

	return fmt.Sprintf("  %s  %s  %-6s  %s",
		SignalBars(n.RSSI),
		name,
		security,
		MetaStyle.Render(fmt.Sprintf("%d dBm", n.RSSI)))
}

// RenderNetworkTable renders ranked scan results, one per line.
func RenderNetworkTable(networks []portal.Network) string {
	if len(networks) == 0 {
		return MetaStyle.Render("  No networks found")
	}
	rows := make([]string, len(networks))
	for i, n := range networks {
		rows[i] = RenderNetworkRow(n)
	}
	return strings.Join(rows, "\n")
}
