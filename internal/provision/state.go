package provision

import (
	"errors"
	"fmt"

	"github.com/muurk/wifiprov/internal/portal"
)

// State is the device's connection state as last observed by the poller.
type State int

const (
	// StateUnknown is the state before the first successful poll.
	StateUnknown State = iota
	StateDisconnected
	StateConnecting
	StateConnected
)

// String returns the state name used in logs.
func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Indicator labels.
const (
	LabelNotConnected = "Not connected"
	LabelConnecting   = "Connecting…"
	LabelConnected    = "Connected"
	LabelSending      = "Sending…"
	LabelScanning     = "Scanning…"
	LabelScanFailed   = "Scan failed"
)

// ConnectFailedMessage is shown when a credential submission never reached
// the device.
const ConnectFailedMessage = "Could not reach the device"

// ErrInvalidStatus is returned by ParseStatus for a response that claims to
// be connected and connecting at the same time.
var ErrInvalidStatus = errors.New("status reports both connected and connecting")

// Status is a snapshot of the backend-owned connection state.
type Status struct {
	State State
	Error string // Device-reported error, empty when none
	SSID  string
	IP    string
}

// ParseStatus turns the two wire booleans into a single State.
func ParseStatus(resp *portal.StatusResponse) (Status, error) {
	if resp == nil {
		return Status{}, ErrEmptyResponse
	}

	s := Status{Error: resp.Error, SSID: resp.SSID, IP: resp.IP}
	switch {
	case resp.Connected && resp.Connecting:
		return Status{}, ErrInvalidStatus
	case resp.Connected:
		s.State = StateConnected
	case resp.Connecting:
		s.State = StateConnecting
	default:
		s.State = StateDisconnected
	}
	return s, nil
}

// Indicator is what the status area shows: a state code for styling and
// a label for display.
type Indicator struct {
	State State
	Label string
}

// Indicator returns the status-area projection of s.
func (s Status) Indicator() Indicator {
	switch s.State {
	case StateConnected:
		return Indicator{State: StateConnected, Label: LabelConnected}
	case StateConnecting:
		return Indicator{State: StateConnecting, Label: LabelConnecting}
	default:
		return Indicator{State: StateDisconnected, Label: LabelNotConnected}
	}
}
