package discovery

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/wifiprov/internal/logging"
	"github.com/muurk/wifiprov/internal/portal"
)

const (
	// ServiceType is the mDNS service type portals advertise
	ServiceType = "_http._tcp"

	// ServiceDomain is the mDNS domain
	ServiceDomain = "local."

	// DefaultScanTimeout is how long to browse
	DefaultScanTimeout = 5 * time.Second

	// DefaultProbeTimeout bounds each status probe
	DefaultProbeTimeout = 3 * time.Second

	// DefaultPort is used when an entry carries no port
	DefaultPort = 80
)

// ProbeFunc fetches the status of the portal at baseURL.
type ProbeFunc func(ctx context.Context, baseURL string) (*portal.StatusResponse, error)

// Scanner handles mDNS portal discovery
type Scanner struct {
	// Timeout is the browse duration
	Timeout time.Duration

	// ProbeTimeout bounds each verification request
	ProbeTimeout time.Duration

	// NamePattern, when set, keeps only instances whose name matches
	NamePattern *regexp.Regexp

	// Probe verifies candidates; defaults to a portal status request
	Probe ProbeFunc
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout:      DefaultScanTimeout,
		ProbeTimeout: DefaultProbeTimeout,
		Probe:        statusProbe,
	}
}

func statusProbe(ctx context.Context, baseURL string) (*portal.StatusResponse, error) {
	client, err := portal.NewClient(baseURL)
	if err != nil {
		return nil, err
	}
	return client.Status(ctx)
}

// Discover browses for portals until the timeout and returns the verified
// ones, sorted by name.
func (s *Scanner) Discover(ctx context.Context) ([]*Portal, error) {
	candidates, err := s.Browse(ctx)
	if err != nil {
		return nil, err
	}
	return s.Verify(ctx, candidates), nil
}

// Browse returns every "_http._tcp" service seen before the timeout,
// without verification.
func (s *Scanner) Browse(ctx context.Context) ([]*Portal, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	finished := make(chan struct{})

	var (
		mu    sync.Mutex
		found []*Portal
	)
	go func() {
		defer close(finished)
		seen := make(map[string]bool)
		for entry := range entries {
			p := s.parseServiceEntry(entry)
			if p == nil || seen[p.Addr()] {
				continue
			}
			seen[p.Addr()] = true
			logging.Debug("mDNS service found",
				zap.String("name", p.Name),
				zap.String("addr", p.Addr()))
			mu.Lock()
			found = append(found, p)
			mu.Unlock()
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()

	// Give the resolver a moment to flush and close entries.
	select {
	case <-finished:
	case <-time.After(100 * time.Millisecond):
	}

	mu.Lock()
	defer mu.Unlock()
	return append([]*Portal(nil), found...), nil
}

// Verify probes candidates concurrently and returns those that answer like
// a portal.
func (s *Scanner) Verify(ctx context.Context, candidates []*Portal) []*Portal {
	probe := s.Probe
	if probe == nil {
		probe = statusProbe
	}
	timeout := s.ProbeTimeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		verified []*Portal
	)
	for _, c := range candidates {
		wg.Add(1)
		go func(c *Portal) {
			defer wg.Done()
			probeCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			status, err := probe(probeCtx, c.BaseURL())
			if err != nil {
				msg := "Candidate is not a portal"
				if portal.IsNetworkError(err) {
					msg = "Candidate did not answer the probe"
				}
				logging.Debug(msg, zap.String("addr", c.Addr()), zap.Error(err))
				return
			}
			c.Status = status
			mu.Lock()
			verified = append(verified, c)
			mu.Unlock()
		}(c)
	}
	wg.Wait()

	sort.Slice(verified, func(i, j int) bool {
		if verified[i].Name != verified[j].Name {
			return verified[i].Name < verified[j].Name
		}
		return verified[i].Addr() < verified[j].Addr()
	})
	return verified
}

// parseServiceEntry converts a zeroconf service entry to a candidate
// Returns nil for entries without an address or outside NamePattern
func (s *Scanner) parseServiceEntry(entry *zeroconf.ServiceEntry) *Portal {
	if entry == nil {
		return nil
	}
	name := entry.Instance
	if name == "" {
		name = strings.TrimSuffix(entry.HostName, ".")
	}
	if name == "" {
		return nil
	}
	if s.NamePattern != nil && !s.NamePattern.MatchString(name) {
		return nil
	}

	// Get IP address (prefer IPv4)
	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	// TXT records are "key=value" or a bare key
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			metadata[parts[0]] = ""
		}
	}

	return &Portal{
		Name:         name,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// Discover is a convenience function to find portals with a custom timeout
func Discover(ctx context.Context, timeout time.Duration) ([]*Portal, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.Discover(ctx)
}
