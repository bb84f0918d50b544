package portal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
)

// Kind represents the category of error that occurred
type Kind int

const (
	// KindNetwork indicates a network-level error not covered by a more specific kind
	KindNetwork Kind = iota
	// KindTimeout indicates the request did not complete within its timeout
	KindTimeout
	// KindConnectionRefused indicates the device refused the TCP connection
	KindConnectionRefused
	// KindDNS indicates the portal host name could not be resolved
	KindDNS
	// KindHTTP indicates an unexpected HTTP status code
	KindHTTP
	// KindParse indicates a malformed response body
	KindParse
	// KindValidation indicates invalid input caught before sending
	KindValidation
	// KindCanceled indicates the caller canceled the request
	KindCanceled
)

// String returns a human-readable name for the kind
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "Network Error"
	case KindTimeout:
		return "Timeout"
	case KindConnectionRefused:
		return "Connection Refused"
	case KindDNS:
		return "DNS Error"
	case KindHTTP:
		return "HTTP Error"
	case KindParse:
		return "Parse Error"
	case KindValidation:
		return "Validation Error"
	case KindCanceled:
		return "Canceled"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error represents a failure talking to the portal
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int   // HTTP status code (KindHTTP only)
	Err        error // Underlying error (if any)
	Retryable  bool
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// classify maps a transport error from net/http onto a Kind.
func classify(message string, err error) *Error {
	e := &Error{Kind: KindNetwork, Message: message, Err: err, Retryable: true}

	var dnsErr *net.DNSError
	var opErr *net.OpError
	var urlErr *url.Error

	switch {
	case errors.Is(err, context.Canceled):
		e.Kind = KindCanceled
		e.Retryable = false
	case errors.Is(err, context.DeadlineExceeded), os.IsTimeout(err):
		e.Kind = KindTimeout
	case errors.As(err, &dnsErr):
		e.Kind = KindDNS
		e.Retryable = false
	case errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED):
		e.Kind = KindConnectionRefused
	case errors.As(err, &urlErr) && urlErr.Timeout():
		e.Kind = KindTimeout
	}
	return e
}

// newHTTPError creates an HTTP-level error. Server errors are retryable.
func newHTTPError(statusCode int, body []byte) *Error {
	msg := fmt.Sprintf("unexpected status code %d", statusCode)
	if text := strings.TrimSpace(string(body)); text != "" {
		if len(text) > 120 {
			text = text[:120] + "..."
		}
		msg += ": " + text
	}
	return &Error{
		Kind:       KindHTTP,
		Message:    msg,
		StatusCode: statusCode,
		Retryable:  statusCode >= http.StatusInternalServerError,
	}
}

func newParseError(message string, err error) *Error {
	return &Error{Kind: KindParse, Message: message, Err: err, Retryable: true}
}

func newValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func kindOf(err error) (Kind, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return 0, false
}

// IsNetworkError reports whether err is a transport failure (including
// timeout, connection refused and DNS).
func IsNetworkError(err error) bool {
	k, ok := kindOf(err)
	return ok && (k == KindNetwork || k == KindTimeout || k == KindConnectionRefused || k == KindDNS)
}

// IsParseError reports whether err is a malformed response body
func IsParseError(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindParse
}

// IsHTTPError reports whether err is an unexpected HTTP status
func IsHTTPError(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindHTTP
}

// IsValidationError reports whether err was raised before sending
func IsValidationError(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindValidation
}

// IsCanceled reports whether err comes from a canceled request
func IsCanceled(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindCanceled
}

// IsRetryable reports whether repeating the request may succeed
func IsRetryable(err error) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

// ShortMessage returns a concise, user-facing description of err
func ShortMessage(err error) string {
	var pe *Error
	if !errors.As(err, &pe) {
		return err.Error()
	}

	switch pe.Kind {
	case KindTimeout:
		return "Device not responding (timeout)"
	case KindConnectionRefused:
		return "Device refused connection - is the portal running?"
	case KindDNS:
		return "Cannot resolve portal host name"
	case KindNetwork:
		return "Could not reach the device"
	case KindHTTP:
		return fmt.Sprintf("Device error (HTTP %d)", pe.StatusCode)
	case KindParse:
		return "Unexpected response from device"
	case KindCanceled:
		return "Request canceled"
	default:
		return pe.Message
	}
}

// TroubleshootingHint returns troubleshooting tips for err, one per line.
func TroubleshootingHint(err error) []string {
	var pe *Error
	if !errors.As(err, &pe) {
		return nil
	}

	switch pe.Kind {
	case KindTimeout, KindNetwork:
		return []string{
			"Check that you are joined to the device's setup Wi-Fi network",
			"Move closer to the device",
			"Verify the portal address (default 192.168.4.1)",
		}
	case KindConnectionRefused:
		return []string{
			"The device may have left setup mode - power cycle it",
			"Verify the portal port",
		}
	case KindDNS:
		return []string{
			"Use the portal IP address instead of a host name",
			"Run 'wifiprov discover' to find portals on this network",
		}
	case KindHTTP:
		if pe.StatusCode == http.StatusNotFound {
			return []string{"The address answers HTTP but is not a provisioning portal"}
		}
		return []string{"Restart the device and try again"}
	case KindParse:
		return []string{"The device firmware may not be compatible with this tool"}
	default:
		return nil
	}
}
