package portal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
)

// DefaultConnectError is shown when the device rejects a submission without
// saying why.
const DefaultConnectError = "Failed to start connection"

// StatusResponse is the body of GET /api/status.
//
// Connected and Connecting are independent booleans on the wire; callers
// that need a single state should go through provision.ParseStatus, which
// rejects the case where both are set.
type StatusResponse struct {
	Connected  bool   `json:"connected"`
	Connecting bool   `json:"connecting"`
	Error      string `json:"error,omitempty"`
	SSID       string `json:"ssid,omitempty"` // Station SSID reported by the device
	IP         string `json:"ip,omitempty"`   // Station address once connected
}

// Network is one visible wireless network as reported by a scan.
type Network struct {
	SSID   string `json:"ssid"`
	RSSI   int    `json:"rssi"` // dBm, less negative is stronger
	Secure bool   `json:"secure"`
}

// ScanResult is the decoded body of GET /api/scan.
type ScanResult struct {
	Networks []Network

	// Scanning is true when the device reported that its radio scan is still
	// running. Networks is then empty or stale and the caller should ask again.
	Scanning bool
}

// scanEnvelope is the object form of the scan response. Older firmware
// returns the bare array instead.
type scanEnvelope struct {
	Scanning bool      `json:"scanning"`
	Count    int       `json:"count"`
	Results  []Network `json:"results"`
}

// ConnectResponse is the body of POST /api/connect and POST /api/disconnect.
type ConnectResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// ErrorOr returns the device-provided error, or fallback when there is none.
func (r *ConnectResponse) ErrorOr(fallback string) string {
	if r == nil || r.Error == "" {
		return fallback
	}
	return r.Error
}

// Credentials is the credential set submitted to the device. It is built at
// submission time and must not be retained or logged.
type Credentials struct {
	SSID       string
	Passphrase string
	Username   string // Enterprise (WPA2-EAP) identity, empty for PSK networks
}

// ToFormData encodes the credentials as the portal's form fields. Empty
// values are sent as empty fields; the device decides what is required.
func (c Credentials) ToFormData() url.Values {
	form := url.Values{}
	form.Set("ssid", c.SSID)
	form.Set("pass", c.Passphrase)
	form.Set("user", c.Username)
	return form
}

// decodeScan accepts both the bare array and the envelope form.
func decodeScan(body []byte) (*ScanResult, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty scan response")
	}

	switch trimmed[0] {
	case '[':
		var networks []Network
		if err := json.Unmarshal(trimmed, &networks); err != nil {
			return nil, err
		}
		return &ScanResult{Networks: networks}, nil
	case '{':
		var env scanEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, err
		}
		return &ScanResult{Networks: env.Results, Scanning: env.Scanning}, nil
	default:
		return nil, fmt.Errorf("scan response is neither an array nor an object")
	}
}
