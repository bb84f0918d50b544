package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/muurk/wifiprov/internal/portal"
)

// Portal is a discovered device portal.
type Portal struct {
	// Name is the mDNS service instance name (e.g., "CommuteLive-Setup")
	Name string

	// Hostname is the mDNS hostname (e.g., "commutelive.local.")
	Hostname string

	// IP is the preferred address, IPv4 when available
	IP string

	// Port is the HTTP port (typically 80)
	Port int

	// Metadata contains the mDNS TXT records
	Metadata map[string]string

	// Status is the probe response, nil until verified
	Status *portal.StatusResponse

	// DiscoveredAt is when the service entry arrived
	DiscoveredAt time.Time
}

// String returns a human-readable description of the portal
func (p *Portal) String() string {
	return fmt.Sprintf("%s (%s) at %s", p.Name, p.Hostname, p.Addr())
}

// Addr returns host:port, bracketing IPv6 addresses.
func (p *Portal) Addr() string {
	return net.JoinHostPort(p.IP, strconv.Itoa(p.Port))
}

// BaseURL returns the HTTP base URL for the portal
func (p *Portal) BaseURL() string {
	return "http://" + p.Addr()
}

// Verified reports whether the portal answered the status probe.
func (p *Portal) Verified() bool {
	return p.Status != nil
}

// GetMetadata retrieves a TXT value by key, or "" if absent
func (p *Portal) GetMetadata(key string) string {
	if p.Metadata == nil {
		return ""
	}
	return p.Metadata[key]
}
