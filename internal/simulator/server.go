package simulator

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/wifiprov/internal/logging"
	"github.com/muurk/wifiprov/internal/portal"
)

// Defaults for a zero Config.
const (
	DefaultPort         = 8080
	DefaultStationIP    = "192.168.1.57"
	DefaultScanCooldown = 5 * time.Second
)

// Device-reported failure reasons.
const (
	ReasonNotFound  = "Network not found"
	ReasonWrongAuth = "Wrong username or password"
	ReasonNoSSID    = "Missing SSID"
)

// Config holds the simulator configuration
type Config struct {
	Host string
	Port int

	// Networks is what the simulated radio finds.
	Networks []portal.Network

	// Passphrases maps SSID to the only passphrase the network accepts.
	// Secure networks without an entry accept any passphrase.
	Passphrases map[string]string

	ConnectDelay time.Duration // Time spent connecting before the outcome is known
	ScanDelay    time.Duration // Duration of one radio scan
	ScanCooldown time.Duration // Minimum gap between radio scans (negative disables)
	StationIP    string        // Address reported once connected
	LogLevel     string
}

// DefaultNetworks returns a small neighborhood of networks.
func DefaultNetworks() []portal.Network {
	return []portal.Network{
		{SSID: "HomeNet", RSSI: -48, Secure: true},
		{SSID: "CoffeeShop", RSSI: -71, Secure: false},
		{SSID: "Neighbor-5G", RSSI: -63, Secure: true},
		{SSID: "Printer-Direct", RSSI: -82, Secure: true},
		{SSID: "Guest", RSSI: -63, Secure: false},
	}
}

// Server is a simulated device portal
type Server struct {
	config *Config
	now    func() time.Time

	mu     sync.Mutex
	radio  radio
	counts map[string]int

	httpServer *http.Server
	listener   net.Listener
}

// radio is the simulated station state. Guarded by Server.mu.
type radio struct {
	connecting    bool
	connected     bool
	ssid          string
	passphrase    string
	username      string
	lastError     string
	connectStart  time.Time
	scanning      bool
	scanStart     time.Time
	lastScan      time.Time
	results       []portal.Network
	scannedBefore bool
}

// New creates a new Server instance
func New(config *Config) (*Server, error) {
	if config == nil {
		config = &Config{}
	}
	cfg := *config
	if cfg.LogLevel != "" {
		if err := logging.Initialize(cfg.LogLevel); err != nil {
			return nil, fmt.Errorf("failed to initialize logging: %w", err)
		}
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.StationIP == "" {
		cfg.StationIP = DefaultStationIP
	}
	if cfg.ScanCooldown == 0 {
		cfg.ScanCooldown = DefaultScanCooldown
	}

	seen := make(map[string]bool, len(cfg.Networks))
	for _, n := range cfg.Networks {
		if err := portal.ValidateSSID(n.SSID); err != nil {
			return nil, fmt.Errorf("network %q: %w", n.SSID, err)
		}
		if seen[n.SSID] {
			return nil, fmt.Errorf("duplicate network %q", n.SSID)
		}
		seen[n.SSID] = true
	}

	return &Server{
		config: &cfg,
		now:    time.Now,
		counts: make(map[string]int),
	}, nil
}

// ListenAndServe serves the portal until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := net.JoinHostPort(s.config.Host, fmt.Sprint(s.config.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves the portal on listener until ctx is canceled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.mu.Lock()
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	logging.Info("Simulated portal listening",
		zap.String("addr", listener.Addr().String()),
		zap.Int("networks", len(s.config.Networks)),
		zap.Duration("connect_delay", s.config.ConnectDelay),
		zap.Duration("scan_delay", s.config.ScanDelay),
	)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		logging.Info("Shutdown requested, stopping simulator...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Addr returns the listening address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	logging.Info("Shutting down simulator...")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Shutdown timeout, forcing close", zap.Error(err))
		return srv.Close()
	}
	logging.Sync()
	return nil
}

// Requests returns how many requests path has received.
func (s *Server) Requests(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[path]
}

// Snapshot returns the current device status as the status endpoint would
// report it.
func (s *Server) Snapshot() portal.StatusResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settleLocked(s.now())
	return s.statusLocked()
}
