package simulator

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/muurk/wifiprov/internal/logging"
	"github.com/muurk/wifiprov/internal/portal"
	"github.com/muurk/wifiprov/internal/urls"
)

const landingPage = `<!DOCTYPE html>
<html>
<head><title>Connected</title></head>
<body>
<h1>Hello!</h1>
<p>The device is connected to %s.</p>
</body>
</html>
`

type scanReply struct {
	Scanning bool             `json:"scanning"`
	Count    int              `json:"count"`
	Results  []portal.Network `json:"results"`
}

type ackReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Handler returns the portal's HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+urls.StatusPath, s.handleStatus)
	mux.HandleFunc("GET "+urls.ScanPath, s.handleScan)
	mux.HandleFunc("POST "+urls.ConnectPath, s.handleConnect)
	mux.HandleFunc("POST "+urls.DisconnectPath, s.handleDisconnect)
	mux.HandleFunc("GET "+urls.LandingPath, s.handleLanding)
	return s.logRequests(mux)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.counts[r.URL.Path]++
		s.mu.Unlock()

		logging.LogHTTPRequest(r.Header.Get(portal.RequestIDHeader), r.Method, r.URL.Path)
		logging.Debug("Portal request details",
			zap.String("remote_addr", r.RemoteAddr),
			zap.String("user_agent", r.UserAgent()),
		)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("Failed to write response", zap.Error(err))
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.settleLocked(s.now())
	status := s.statusLocked()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	now := s.now()
	s.settleLocked(now)
	s.maybeStartScanLocked(now)
	reply := scanReply{
		Scanning: s.radio.scanning,
		Count:    len(s.radio.results),
		Results:  append([]portal.Network{}, s.radio.results...),
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, ackReply{Error: "Malformed request"})
		return
	}
	ssid := r.PostForm.Get("ssid")
	if ssid == "" {
		writeJSON(w, http.StatusBadRequest, ackReply{Error: ReasonNoSSID})
		return
	}
	pass := r.PostForm.Get("pass")
	user := r.PostForm.Get("user")

	logging.Info("Simulated connect started",
		zap.String("ssid", ssid),
		zap.Bool("enterprise", user != ""),
		zap.Int("passphrase_len", len(pass)),
	)

	s.mu.Lock()
	s.startConnectLocked(s.now(), ssid, pass, user)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, ackReply{OK: true})
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.radio.connecting = false
	s.radio.connected = false
	s.radio.ssid = ""
	s.radio.passphrase = ""
	s.radio.username = ""
	s.radio.lastError = ""
	s.mu.Unlock()

	logging.Info("Simulated credentials cleared")
	writeJSON(w, http.StatusOK, ackReply{OK: true})
}

func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	ssid := s.radio.ssid
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, landingPage, ssid)
}
