package urls

import (
	"fmt"
	"net/url"
	"strings"
)

// Portal API paths served by the device.
const (
	StatusPath     = "/api/status"
	ScanPath       = "/api/scan"
	ConnectPath    = "/api/connect"
	DisconnectPath = "/api/disconnect"
)

// LandingPath is the resource the portal hands the user to once the device
// has joined a network. Reaching it ends the provisioning session.
const LandingPath = "/hello.html"

// DefaultPortal is the base URL of a device running its setup access point
// with the stock soft-AP addressing.
const DefaultPortal = "http://192.168.4.1"

// GettingStarted is the quick start guide for provisioning a device.
const GettingStarted = "https://muurk.github.io/wifiprov/getting-started/"

// TroubleshootingGuide covers portals that cannot be reached or devices
// that never finish connecting.
const TroubleshootingGuide = "https://muurk.github.io/wifiprov/troubleshooting/"

// NormalizeBase turns "192.168.4.1", "192.168.4.1:8080" or a full URL into a
// base URL with scheme and host only.
func NormalizeBase(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultPortal
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse portal url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("portal url %q has no host", raw)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// Resolve joins a path onto a portal base URL.
func Resolve(base *url.URL, path string) string {
	return base.ResolveReference(&url.URL{Path: path}).String()
}
