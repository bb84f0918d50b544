package provision

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/wifiprov/internal/portal"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name    string
		resp    *portal.StatusResponse
		want    State
		wantErr error
	}{
		{name: "idle", resp: &portal.StatusResponse{}, want: StateDisconnected},
		{name: "connecting", resp: &portal.StatusResponse{Connecting: true}, want: StateConnecting},
		{name: "connected", resp: &portal.StatusResponse{Connected: true, SSID: "HomeNet", IP: "10.0.0.7"}, want: StateConnected},
		{name: "both flags", resp: &portal.StatusResponse{Connected: true, Connecting: true}, wantErr: ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStatus(tt.resp)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.State)
			assert.Equal(t, tt.resp.SSID, got.SSID)
			assert.Equal(t, tt.resp.IP, got.IP)
		})
	}

	_, err := ParseStatus(nil)
	assert.Error(t, err)
}

func TestStatusIndicator(t *testing.T) {
	assert.Equal(t, Indicator{State: StateDisconnected, Label: "Not connected"}, Status{State: StateDisconnected}.Indicator())
	assert.Equal(t, Indicator{State: StateDisconnected, Label: "Not connected"}, Status{}.Indicator())
	assert.Equal(t, Indicator{State: StateConnecting, Label: "Connecting…"}, Status{State: StateConnecting}.Indicator())
	assert.Equal(t, StateConnected, Status{State: StateConnected}.Indicator().State)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "connecting", StateConnecting.String())
	assert.Equal(t, "State(42)", State(42).String())
}

func TestParseOverlapPolicy(t *testing.T) {
	p, err := ParseOverlapPolicy("")
	require.NoError(t, err)
	assert.Equal(t, OverlapIgnore, p)

	p, err = ParseOverlapPolicy(" Replace ")
	require.NoError(t, err)
	assert.Equal(t, OverlapReplace, p)

	_, err = ParseOverlapPolicy("queue")
	assert.Error(t, err)
}

func TestOptionsWithDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	assert.Equal(t, DefaultPollInterval, o.PollInterval)
	assert.Equal(t, DefaultRequestTimeout, o.RequestTimeout)
	assert.Equal(t, DefaultBackoffMax, o.BackoffMax)
	assert.Equal(t, DefaultScanRetryDelay, o.ScanRetryDelay)
	assert.Equal(t, DefaultScanFollowups, o.ScanFollowups)
	assert.Equal(t, OverlapIgnore, o.Overlap)
	assert.Equal(t, "/hello.html", o.LandingURL)
	assert.Zero(t, o.BackoffJitter)

	o = Options{ScanFollowups: -1, PollInterval: time.Minute, BackoffMax: time.Second}.withDefaults()
	assert.Zero(t, o.ScanFollowups)
	assert.Equal(t, time.Minute, o.BackoffMax, "backoff cap never below the poll interval")
}

func TestPollBackoff(t *testing.T) {
	opts := Options{PollInterval: time.Second, BackoffMax: 8 * time.Second}.withDefaults()
	c := &Controller{opts: opts, retry: newPollBackoff(opts)}

	var got []time.Duration
	for i := 0; i < 6; i++ {
		got = append(got, c.nextFailureDelay())
	}
	assert.Equal(t, []time.Duration{
		time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 8 * time.Second, 8 * time.Second,
	}, got)

	c.retry.Reset()
	assert.Equal(t, time.Second, c.nextFailureDelay())
}

func TestPollBackoff_JitterStaysBounded(t *testing.T) {
	opts := Options{PollInterval: time.Second, BackoffMax: 4 * time.Second, BackoffJitter: 0.5}.withDefaults()
	c := &Controller{opts: opts, retry: newPollBackoff(opts)}

	for i := 0; i < 50; i++ {
		d := c.nextFailureDelay()
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 4*time.Second)
	}
}
