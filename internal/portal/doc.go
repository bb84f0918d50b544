// Package portal provides an HTTP client for a device's Wi-Fi provisioning portal.
//
// A device in setup mode runs a small web server (usually on its own access
// point at 192.168.4.1) that exposes four endpoints:
//
//	GET  /api/status      {connected, connecting, error?, ssid?, ip?}
//	GET  /api/scan        [{ssid, rssi, secure}] or {scanning, count, results}
//	POST /api/connect     form ssid, pass, user -> {ok, error?}
//	POST /api/disconnect  -> {ok}
//
// The client performs exactly one attempt per call. Retry policy belongs to
// the caller: the provisioning controller backs off its status poller and
// never retries a credential submission.
//
// # Usage Example
//
//	client, err := portal.NewClient("192.168.4.1")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := client.Scan(ctx)
//	if err != nil {
//	    log.Fatal(portal.ShortMessage(err))
//	}
//	for _, n := range portal.RankBySignal(result.Networks) {
//	    fmt.Println(n.Label())
//	}
//
//	ack, err := client.Connect(ctx, portal.Credentials{SSID: "HomeNet", Passphrase: "secret"})
//	if err == nil && !ack.OK {
//	    fmt.Println("device refused:", ack.ErrorOr(portal.DefaultConnectError))
//	}
//
// # Error Handling
//
// Transport and protocol failures are returned as *Error with a Kind
// (network, timeout, connection refused, DNS, HTTP, parse, canceled).
// A device-side rejection is not an error: it arrives as a response with
// OK false or a non-empty Error field.
//
// # Thread Safety
//
// Client instances are safe for concurrent use.
package portal
