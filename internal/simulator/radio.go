package simulator

import (
	"time"

	"go.uber.org/zap"

	"github.com/muurk/wifiprov/internal/logging"
	"github.com/muurk/wifiprov/internal/portal"
)

// settleLocked resolves whatever timed radio activity has finished by now.
func (s *Server) settleLocked(now time.Time) {
	r := &s.radio

	if r.scanning && now.Sub(r.scanStart) >= s.config.ScanDelay {
		r.scanning = false
		r.lastScan = now
		r.results = append([]portal.Network{}, s.config.Networks...)
		logging.Debug("Simulated scan complete", zap.Int("networks", len(r.results)))
	}

	if r.connecting && now.Sub(r.connectStart) >= s.config.ConnectDelay {
		r.connecting = false
		r.lastError = s.outcome(r.ssid, r.passphrase)
		r.connected = r.lastError == ""
		r.passphrase = ""
		logging.Info("Simulated connect finished",
			zap.String("ssid", r.ssid),
			zap.Bool("connected", r.connected),
			zap.String("error", r.lastError))
	}
}

// outcome returns the failure reason for joining ssid, or "" on success.
func (s *Server) outcome(ssid, passphrase string) string {
	var network *portal.Network
	for i := range s.config.Networks {
		if s.config.Networks[i].SSID == ssid {
			network = &s.config.Networks[i]
			break
		}
	}
	if network == nil {
		return ReasonNotFound
	}
	if want, ok := s.config.Passphrases[ssid]; ok && network.Secure && passphrase != want {
		return ReasonWrongAuth
	}
	return ""
}

func (s *Server) maybeStartScanLocked(now time.Time) {
	r := &s.radio
	if r.scanning || r.connecting {
		return
	}
	if r.scannedBefore && s.config.ScanCooldown > 0 && now.Sub(r.lastScan) <= s.config.ScanCooldown {
		return
	}

	r.scannedBefore = true
	r.scanning = true
	r.scanStart = now
	r.results = nil
	logging.Debug("Simulated scan started")
	s.settleLocked(now)
}

func (s *Server) startConnectLocked(now time.Time, ssid, pass, user string) {
	r := &s.radio
	r.lastError = ""
	r.connected = false
	r.connecting = true
	r.connectStart = now
	r.ssid = ssid
	r.passphrase = pass
	r.username = user
	s.settleLocked(now)
}

func (s *Server) statusLocked() portal.StatusResponse {
	r := s.radio
	status := portal.StatusResponse{
		Connected:  r.connected,
		Connecting: r.connecting,
		SSID:       r.ssid,
		Error:      r.lastError,
	}
	if r.connected {
		status.IP = s.config.StationIP
	}
	return status
}
