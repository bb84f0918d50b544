// Package simulator implements a fake device setup portal.
//
// The simulator serves the same HTTP API as the device firmware so the
// provisioning client can be exercised without hardware:
//
//	GET  /api/status      {connected, connecting, ssid, ip, error}
//	GET  /api/scan        {scanning, count, results:[{ssid, rssi, secure}]}
//	POST /api/connect     form ssid, pass, user -> {ok, error?}
//	POST /api/disconnect  {ok}
//	GET  /hello.html      landing page
//
// # Simulated Radio
//
// Device behavior is derived from timestamps at request time, so no
// background goroutines run:
//
//   - A scan request starts a radio scan lasting ScanDelay unless one ran in
//     the last ScanCooldown or a connection attempt is in progress. While the
//     scan runs the envelope reports scanning=true with empty results.
//   - A connect request clears the last error and reports connecting=true for
//     ConnectDelay. The attempt then resolves: an SSID missing from Networks
//     fails with "Network not found", a passphrase that does not match
//     Passphrases fails with "Wrong username or password", anything else
//     connects and reports StationIP.
//   - A connect request without an SSID is rejected with HTTP 400 and a JSON
//     body, as the firmware does.
//
// # Usage Example
//
//	srv, err := simulator.New(&simulator.Config{
//	    Port:         8080,
//	    Networks:     simulator.DefaultNetworks(),
//	    Passphrases:  map[string]string{"HomeNet": "correct horse"},
//	    ConnectDelay: 3 * time.Second,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.ListenAndServe(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Tests mount Handler on an httptest.Server instead.
package simulator
