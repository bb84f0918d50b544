package ui

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/muurk/wifiprov/internal/portal"
	"github.com/muurk/wifiprov/internal/provision"
)

// ConsoleRenderer prints controller updates as styled lines. It implements
// provision.Renderer for the headless connect command.
type ConsoleRenderer struct {
	p     *Printer
	start time.Time
	now   func() time.Time

	// Verbose also prints scan results and scan status lines.
	Verbose bool

	navigation *provision.Navigation
	networks   []portal.Network
}

var _ provision.Renderer = (*ConsoleRenderer)(nil)

// NewConsoleRenderer creates a renderer printing through p.
func NewConsoleRenderer(p *Printer) *ConsoleRenderer {
	return &ConsoleRenderer{p: p, start: time.Now(), now: time.Now}
}

func (c *ConsoleRenderer) stamp() string {
	return MetaStyle.Render(c.now().Format("15:04:05")) + "  "
}

// RenderIndicator implements provision.Renderer
func (c *ConsoleRenderer) RenderIndicator(ind provision.Indicator) {
	c.p.Println(c.stamp() + IndicatorStyle(ind.State).Render(StateMarker+" "+ind.Label))
}

// RenderError implements provision.Renderer
func (c *ConsoleRenderer) RenderError(message string) {
	if message == "" {
		return
	}
	c.p.Println(c.stamp() + ErrorMessageStyle.Render(FailureMarker+" "+message))
}

// RenderNetworks implements provision.Renderer
func (c *ConsoleRenderer) RenderNetworks(networks []portal.Network) {
	c.networks = networks
	if c.Verbose {
		c.p.Println(RenderNetworkTable(networks))
	}
}

// RenderScanMeta implements provision.Renderer
func (c *ConsoleRenderer) RenderScanMeta(text string) {
	if c.Verbose && text != "" {
		c.p.Println(c.stamp() + MetaStyle.Render("scan: "+text))
	}
}

// RenderConnectMeta implements provision.Renderer
func (c *ConsoleRenderer) RenderConnectMeta(text string) {
	if text != "" {
		c.p.Println(c.stamp() + MetaStyle.Render(text))
	}
}

// Navigate implements provision.Renderer
func (c *ConsoleRenderer) Navigate(nav provision.Navigation) {
	c.navigation = &nav
	details := map[string]string{
		"Landing page": nav.URL,
		"Took":         strings.TrimSpace(humanize.RelTime(c.start, c.now(), "", "")),
	}
	if nav.SSID != "" {
		details["Network"] = nav.SSID
	}
	if nav.IP != "" {
		details["Device IP"] = nav.IP
	}
	c.p.Newline()
	c.p.PrintSuccess("Device connected", details)
}

// Navigation returns the hand-off, or nil if the device never connected.
func (c *ConsoleRenderer) Navigation() *provision.Navigation {
	return c.navigation
}

// Networks returns the last rendered scan results.
func (c *ConsoleRenderer) Networks() []portal.Network {
	return c.networks
}
