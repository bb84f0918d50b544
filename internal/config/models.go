package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// CurrentVersion is the only config file version this build reads.
const CurrentVersion = 1

// Registry represents the entire user configuration file.
type Registry struct {
	Version     int                `yaml:"version"`
	Preferences *Preferences       `yaml:"preferences,omitempty"`
	Portals     map[string]*Portal `yaml:"portals,omitempty"` // Keyed by portal host[:port]

	path string
}

// Portal is what we remember about a portal the user provisioned.
type Portal struct {
	Nickname string    `yaml:"nickname,omitempty"`  // User-friendly name
	LastSSID string    `yaml:"last_ssid,omitempty"` // Network the device last joined
	LastIP   string    `yaml:"last_ip,omitempty"`   // Station address the device reported
	LastSeen time.Time `yaml:"last_seen,omitempty"` // Last successful provisioning
}

// Preferences represents application-wide user preferences.
// Zero values mean "use the built-in default".
type Preferences struct {
	Portal          string        `yaml:"portal,omitempty"`          // Default portal address
	PollInterval    time.Duration `yaml:"poll_interval,omitempty"`   // Status poll cadence
	RequestTimeout  time.Duration `yaml:"request_timeout,omitempty"` // Per-request timeout
	BackoffMax      time.Duration `yaml:"backoff_max,omitempty"`     // Cap on poll backoff
	OverlapPolicy   string        `yaml:"overlap_policy,omitempty"`  // "ignore" or "replace"
	ScanFollowups   int           `yaml:"scan_followups,omitempty"`  // Re-queries while the radio scans
	AllowUnlisted   bool          `yaml:"allow_unlisted"`            // Permit hidden SSIDs
	DiscoverTimeout int           `yaml:"discover_timeout"`          // mDNS discovery timeout in seconds
}

// DefaultPreferences returns the preferences written by "config init".
func DefaultPreferences() *Preferences {
	return &Preferences{
		Portal:          "http://192.168.4.1",
		PollInterval:    1500 * time.Millisecond,
		RequestTimeout:  8 * time.Second,
		BackoffMax:      30 * time.Second,
		OverlapPolicy:   "ignore",
		ScanFollowups:   10,
		DiscoverTimeout: 5,
	}
}

// Validate rejects values no component can use.
func (p *Preferences) Validate() error {
	switch strings.ToLower(p.OverlapPolicy) {
	case "", "ignore", "replace":
	default:
		return fmt.Errorf("overlap_policy must be ignore or replace, got %q", p.OverlapPolicy)
	}
	if p.PollInterval < 0 || p.RequestTimeout < 0 || p.BackoffMax < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	if p.DiscoverTimeout < 0 {
		return fmt.Errorf("discover_timeout must not be negative")
	}
	return nil
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     CurrentVersion,
		Preferences: DefaultPreferences(),
		Portals:     make(map[string]*Portal),
	}
}

// HostKey reduces a portal address to the key used in Portals.
func HostKey(addr string) string {
	trimmed := strings.TrimSpace(addr)
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" {
		return strings.TrimSpace(addr)
	}
	return strings.ToLower(u.Host)
}

// GetPortal retrieves a portal by address.
// Returns nil if the portal isn't in the registry.
func (r *Registry) GetPortal(addr string) *Portal {
	return r.Portals[HostKey(addr)]
}

// EnsurePortal ensures a portal entry exists and returns it.
func (r *Registry) EnsurePortal(addr string) *Portal {
	if r.Portals == nil {
		r.Portals = make(map[string]*Portal)
	}

	key := HostKey(addr)
	if p, exists := r.Portals[key]; exists {
		return p
	}
	p := &Portal{}
	r.Portals[key] = p
	return p
}

// RecordConnection remembers a successful provisioning.
func (r *Registry) RecordConnection(addr, ssid, ip string) {
	p := r.EnsurePortal(addr)
	p.LastSSID = ssid
	p.LastIP = ip
	p.LastSeen = time.Now()
}

// SetPortalNickname sets a user-friendly nickname for a portal.
func (r *Registry) SetPortalNickname(addr, nickname string) {
	r.EnsurePortal(addr).Nickname = nickname
}

// ForgetPortal drops a portal from the registry. Reports whether it existed.
func (r *Registry) ForgetPortal(addr string) bool {
	key := HostKey(addr)
	if _, ok := r.Portals[key]; !ok {
		return false
	}
	delete(r.Portals, key)
	return true
}

// Path returns the file the registry was loaded from and saves to.
func (r *Registry) Path() string {
	return r.path
}

// Lookup returns the portal address for a nickname, or nameOrAddr unchanged
// when no portal carries that nickname.
func (r *Registry) Lookup(nameOrAddr string) string {
	for key, p := range r.Portals {
		if p != nil && p.Nickname != "" && strings.EqualFold(p.Nickname, nameOrAddr) {
			return key
		}
	}
	return nameOrAddr
}
