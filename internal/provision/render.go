package provision

import "github.com/muurk/wifiprov/internal/portal"

// Navigation describes the one-time hand-off once the device is connected.
type Navigation struct {
	URL  string // Landing resource
	SSID string // Network the device joined, if reported
	IP   string // Device station address, if reported
}

// Renderer is the controller's output port. All methods are called from the
// controller's loop goroutine and should return quickly.
type Renderer interface {
	// RenderIndicator updates the connection status area.
	RenderIndicator(Indicator)

	// RenderError shows message in the error region. An empty message clears it.
	RenderError(message string)

	// RenderNetworks replaces the displayed network list. Networks arrive
	// ranked strongest first.
	RenderNetworks(networks []portal.Network)

	// RenderScanMeta updates the scan status line ("Scanning…", "3 networks").
	RenderScanMeta(text string)

	// RenderConnectMeta updates the submission status line ("Sending…",
	// "Connecting…"). Empty means idle.
	RenderConnectMeta(text string)

	// Navigate is called exactly once, when the device reports connected.
	// No other method is called afterwards.
	Navigate(Navigation)
}

// NopRenderer discards everything. Embed it to implement part of Renderer.
type NopRenderer struct{}

func (NopRenderer) RenderIndicator(Indicator)       {}
func (NopRenderer) RenderError(string)              {}
func (NopRenderer) RenderNetworks([]portal.Network) {}
func (NopRenderer) RenderScanMeta(string)           {}
func (NopRenderer) RenderConnectMeta(string)        {}
func (NopRenderer) Navigate(Navigation)             {}

var _ Renderer = NopRenderer{}
