package discovery

import (
	"context"
	"errors"
	"net"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"

	"github.com/muurk/wifiprov/internal/portal"
	"github.com/muurk/wifiprov/internal/simulator"
)

func entry(instance, host string, port int, v4, v6 []net.IP, txt ...string) *zeroconf.ServiceEntry {
	return &zeroconf.ServiceEntry{
		ServiceRecord: zeroconf.ServiceRecord{Instance: instance},
		HostName:      host,
		Port:          port,
		AddrIPv4:      v4,
		AddrIPv6:      v6,
		Text:          txt,
	}
}

func TestScanner_parseServiceEntry(t *testing.T) {
	scanner := NewScanner()

	tests := []struct {
		name     string
		entry    *zeroconf.ServiceEntry
		wantNil  bool
		wantName string
		wantIP   string
		wantPort int
	}{
		{
			name:     "portal with IPv4",
			entry:    entry("CommuteLive-Setup", "commutelive.local.", 80, []net.IP{net.ParseIP("192.168.4.1")}, nil, "path=/"),
			wantName: "CommuteLive-Setup",
			wantIP:   "192.168.4.1",
			wantPort: 80,
		},
		{
			name:     "no instance falls back to hostname",
			entry:    entry("", "device.local.", 8080, []net.IP{net.ParseIP("10.0.0.5")}, nil),
			wantName: "device.local",
			wantIP:   "10.0.0.5",
			wantPort: 8080,
		},
		{
			name:     "no port defaults to 80",
			entry:    entry("Setup", "setup.local.", 0, []net.IP{net.ParseIP("172.16.0.1")}, nil),
			wantName: "Setup",
			wantIP:   "172.16.0.1",
			wantPort: 80,
		},
		{
			name:     "IPv6 only",
			entry:    entry("Setup", "setup.local.", 80, nil, []net.IP{net.ParseIP("fe80::1")}),
			wantName: "Setup",
			wantIP:   "fe80::1",
			wantPort: 80,
		},
		{
			name:     "prefers IPv4",
			entry:    entry("Setup", "setup.local.", 80, []net.IP{net.ParseIP("192.168.1.50")}, []net.IP{net.ParseIP("fe80::2")}),
			wantName: "Setup",
			wantIP:   "192.168.1.50",
			wantPort: 80,
		},
		{
			name:    "no address",
			entry:   entry("Setup", "setup.local.", 80, nil, nil),
			wantNil: true,
		},
		{
			name:    "no name at all",
			entry:   entry("", "", 80, []net.IP{net.ParseIP("192.168.1.1")}, nil),
			wantNil: true,
		},
		{
			name:    "nil entry",
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := scanner.parseServiceEntry(tt.entry)

			if tt.wantNil {
				if p != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", p)
				}
				return
			}
			if p == nil {
				t.Fatal("parseServiceEntry() = nil, want portal")
			}
			if p.Name != tt.wantName {
				t.Errorf("Name = %v, want %v", p.Name, tt.wantName)
			}
			if p.IP != tt.wantIP {
				t.Errorf("IP = %v, want %v", p.IP, tt.wantIP)
			}
			if p.Port != tt.wantPort {
				t.Errorf("Port = %v, want %v", p.Port, tt.wantPort)
			}
			if time.Since(p.DiscoveredAt) > time.Second {
				t.Errorf("DiscoveredAt is not recent: %v", p.DiscoveredAt)
			}
		})
	}
}

func TestScanner_parseServiceEntry_Metadata(t *testing.T) {
	p := NewScanner().parseServiceEntry(entry("Setup", "setup.local.", 80,
		[]net.IP{net.ParseIP("192.168.4.1")}, nil, "path=/", "fw=1.2", "flag"))
	if p == nil {
		t.Fatal("parseServiceEntry() = nil, want portal")
	}

	expected := map[string]string{"path": "/", "fw": "1.2", "flag": ""}
	if len(p.Metadata) != len(expected) {
		t.Errorf("Metadata has %d entries, want %d", len(p.Metadata), len(expected))
	}
	for key, want := range expected {
		if got, ok := p.Metadata[key]; !ok || got != want {
			t.Errorf("Metadata[%q] = %q (present %v), want %q", key, got, ok, want)
		}
	}
}

func TestScanner_NamePattern(t *testing.T) {
	scanner := NewScanner()
	scanner.NamePattern = regexp.MustCompile(`(?i)setup`)

	addr := []net.IP{net.ParseIP("192.168.4.1")}
	if scanner.parseServiceEntry(entry("CommuteLive-Setup", "a.local.", 80, addr, nil)) == nil {
		t.Error("matching name was filtered out")
	}
	if scanner.parseServiceEntry(entry("LaserJet", "b.local.", 80, addr, nil)) != nil {
		t.Error("non-matching name was kept")
	}
}

func TestScanner_Verify(t *testing.T) {
	sim, err := simulator.New(&simulator.Config{})
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(sim.Handler())
	defer ts.Close()

	host, port, _ := net.SplitHostPort(strings.TrimPrefix(ts.URL, "http://"))
	portNum, err := strconv.Atoi(port)
	if err != nil {
		t.Fatal(err)
	}

	scanner := NewScanner()
	candidates := []*Portal{
		{Name: "Zeta-Setup", IP: host, Port: portNum},
		{Name: "Printer", IP: "192.0.2.1", Port: 80},
	}
	scanner.Probe = func(ctx context.Context, baseURL string) (*portal.StatusResponse, error) {
		if strings.Contains(baseURL, "192.0.2.1") {
			return nil, errors.New("not a portal")
		}
		return statusProbe(ctx, baseURL)
	}

	verified := scanner.Verify(context.Background(), candidates)
	if len(verified) != 1 {
		t.Fatalf("Verify() returned %d portals, want 1", len(verified))
	}
	if verified[0].Name != "Zeta-Setup" {
		t.Errorf("verified portal = %q, want Zeta-Setup", verified[0].Name)
	}
	if !verified[0].Verified() {
		t.Error("Verified() = false after successful probe")
	}
	if candidates[1].Verified() {
		t.Error("failed candidate marked verified")
	}
}

func TestScanner_VerifySorted(t *testing.T) {
	scanner := NewScanner()
	scanner.Probe = func(ctx context.Context, baseURL string) (*portal.StatusResponse, error) {
		return &portal.StatusResponse{}, nil
	}

	verified := scanner.Verify(context.Background(), []*Portal{
		{Name: "b", IP: "10.0.0.2", Port: 80},
		{Name: "a", IP: "10.0.0.9", Port: 80},
		{Name: "a", IP: "10.0.0.1", Port: 80},
	})
	got := []string{}
	for _, p := range verified {
		got = append(got, p.Name+"@"+p.IP)
	}
	want := "a@10.0.0.1,a@10.0.0.9,b@10.0.0.2"
	if strings.Join(got, ",") != want {
		t.Errorf("Verify() order = %v, want %v", got, want)
	}
}

func TestNewScanner(t *testing.T) {
	scanner := NewScanner()

	if scanner.Timeout != DefaultScanTimeout {
		t.Errorf("Timeout = %v, want %v", scanner.Timeout, DefaultScanTimeout)
	}
	if scanner.ProbeTimeout != DefaultProbeTimeout {
		t.Errorf("ProbeTimeout = %v, want %v", scanner.ProbeTimeout, DefaultProbeTimeout)
	}
	if scanner.Probe == nil {
		t.Error("Probe is nil")
	}
}

// Live mDNS discovery needs a multicast-capable network and is not covered
// here.
