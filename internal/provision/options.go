package provision

import (
	"fmt"
	"strings"
	"time"

	"github.com/muurk/wifiprov/internal/urls"
)

// OverlapPolicy decides what happens when a scan or connect is requested
// while the previous one of the same kind is still outstanding.
type OverlapPolicy string

const (
	// OverlapIgnore drops the new request.
	OverlapIgnore OverlapPolicy = "ignore"
	// OverlapReplace cancels the outstanding request and discards its
	// response, then sends the new one.
	OverlapReplace OverlapPolicy = "replace"
)

// ParseOverlapPolicy parses "ignore" or "replace". Empty means ignore.
func ParseOverlapPolicy(s string) (OverlapPolicy, error) {
	switch OverlapPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", OverlapIgnore:
		return OverlapIgnore, nil
	case OverlapReplace:
		return OverlapReplace, nil
	default:
		return "", fmt.Errorf("unknown overlap policy %q (want ignore or replace)", s)
	}
}

const (
	DefaultPollInterval   = 1500 * time.Millisecond
	DefaultRequestTimeout = 8 * time.Second
	DefaultBackoffMax     = 30 * time.Second
	DefaultBackoffJitter  = 0.2
	DefaultScanRetryDelay = time.Second
	DefaultScanFollowups  = 10
)

// Options configures a Controller. Zero durations take their defaults.
type Options struct {
	// PollInterval is the status poll cadence.
	PollInterval time.Duration

	// RequestTimeout bounds every backend request.
	RequestTimeout time.Duration

	// BackoffMax caps the delay between failed polls.
	BackoffMax time.Duration

	// BackoffJitter is the randomization factor applied to backoff delays
	// (0.2 means +/-20%). Zero disables jitter.
	BackoffJitter float64

	// ScanRetryDelay is the wait before asking again when the device reports
	// its radio scan is still running.
	ScanRetryDelay time.Duration

	// ScanFollowups caps those repeated asks per scan. Zero means the
	// default; negative disables follow-ups.
	ScanFollowups int

	// Overlap applies to both scan and connect requests.
	Overlap OverlapPolicy

	// AllowUnlisted permits connecting to an SSID that is not in the
	// displayed scan results (hidden networks).
	AllowUnlisted bool

	// LandingURL is passed to Renderer.Navigate. Defaults to the landing path.
	LandingURL string
}

// DefaultOptions returns the stock configuration.
func DefaultOptions() Options {
	return Options{
		PollInterval:   DefaultPollInterval,
		RequestTimeout: DefaultRequestTimeout,
		BackoffMax:     DefaultBackoffMax,
		BackoffJitter:  DefaultBackoffJitter,
		ScanRetryDelay: DefaultScanRetryDelay,
		ScanFollowups:  DefaultScanFollowups,
		Overlap:        OverlapIgnore,
		LandingURL:     urls.LandingPath,
	}
}

func (o Options) withDefaults() Options {
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = DefaultRequestTimeout
	}
	if o.BackoffMax <= 0 {
		o.BackoffMax = DefaultBackoffMax
	}
	if o.BackoffMax < o.PollInterval {
		o.BackoffMax = o.PollInterval
	}
	if o.BackoffJitter < 0 {
		o.BackoffJitter = 0
	}
	if o.ScanRetryDelay <= 0 {
		o.ScanRetryDelay = DefaultScanRetryDelay
	}
	if o.ScanFollowups == 0 {
		o.ScanFollowups = DefaultScanFollowups
	}
	if o.ScanFollowups < 0 {
		o.ScanFollowups = 0
	}
	if o.Overlap == "" {
		o.Overlap = OverlapIgnore
	}
	if o.LandingURL == "" {
		o.LandingURL = urls.LandingPath
	}
	return o
}
