package provision

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/wifiprov/internal/portal"
	"github.com/muurk/wifiprov/internal/simulator"
)

func simulatedPortal(t *testing.T, cfg *simulator.Config) *portal.Client {
	t.Helper()
	srv, err := simulator.New(cfg)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	client, err := portal.NewClient(ts.URL)
	require.NoError(t, err)
	return client
}

func fastOptions(client *portal.Client) Options {
	return Options{
		PollInterval:   10 * time.Millisecond,
		RequestTimeout: time.Second,
		ScanRetryDelay: 10 * time.Millisecond,
		LandingURL:     client.LandingURL(),
	}
}

func TestIntegration_ProvisionAndNavigate(t *testing.T) {
	client := simulatedPortal(t, &simulator.Config{
		Networks:     simulator.DefaultNetworks(),
		Passphrases:  map[string]string{"HomeNet": "correct horse"},
		ScanDelay:    30 * time.Millisecond,
		ConnectDelay: 50 * time.Millisecond,
	})
	rec := &recorder{}
	r := start(t, client, rec, fastOptions(client))

	require.Eventually(t, func() bool { return len(rec.values("networks")) == 1 }, waitFor, tick)
	assert.Equal(t, []string{"HomeNet,Neighbor-5G,Guest,CoffeeShop,Printer-Direct"}, rec.values("networks"))

	r.ctrl.Connect(portal.Credentials{SSID: "HomeNet", Passphrase: "correct horse"})
	require.NoError(t, r.wait(t))

	require.Len(t, rec.navs, 1)
	assert.Equal(t, client.LandingURL(), rec.navs[0].URL)
	assert.Equal(t, "HomeNet", rec.navs[0].SSID)
	assert.Equal(t, simulator.DefaultStationIP, rec.navs[0].IP)
	assert.True(t, rec.has("connect", LabelConnecting))
}

func TestIntegration_WrongPassphraseSurfacesDeviceError(t *testing.T) {
	client := simulatedPortal(t, &simulator.Config{
		Networks:     simulator.DefaultNetworks(),
		Passphrases:  map[string]string{"HomeNet": "correct horse"},
		ConnectDelay: 20 * time.Millisecond,
	})
	rec := &recorder{}
	r := start(t, client, rec, fastOptions(client))

	require.Eventually(t, func() bool { return len(rec.values("networks")) == 1 }, waitFor, tick)
	r.ctrl.Connect(portal.Credentials{SSID: "HomeNet", Passphrase: "battery staple"})

	require.Eventually(t, func() bool { return rec.has("error", simulator.ReasonWrongAuth) }, waitFor, tick)
	assert.Empty(t, rec.navs)

	r.ctrl.Connect(portal.Credentials{SSID: "HomeNet", Passphrase: "correct horse"})
	require.NoError(t, r.wait(t))
	assert.Len(t, rec.navs, 1)
}

func TestIntegration_UnreachablePortal(t *testing.T) {
	client, err := portal.NewClient("127.0.0.1:1")
	require.NoError(t, err)

	opts := fastOptions(client)
	opts.BackoffMax = 20 * time.Millisecond
	rec := &recorder{}
	r := start(t, client, rec, opts)

	require.Eventually(t, func() bool { return rec.has("scan", LabelScanFailed) }, waitFor, tick)

	r.ctrl.Connect(portal.Credentials{SSID: "HomeNet"})
	require.Eventually(t, func() bool { return rec.has("error", MessageUnlisted) }, waitFor, tick)
	assert.Empty(t, rec.values("indicator"))

	r.cancel()
	assert.ErrorIs(t, r.wait(t), context.Canceled)
}
