// Package provision implements the provisioning controller: the client-side
// state machine that drives a device's Wi-Fi setup portal.
//
// The controller composes three flows that share one UI projection:
//
//   - Status poller: GET /api/status on a fixed cadence. Renders
//     "Connecting…" or "Not connected", mirrors the device's error field into
//     the error region, and navigates to the landing page once the device
//     reports connected=true. Transport failures keep the last indicator and
//     back off exponentially.
//   - Scanner: GET /api/scan at startup and on request. Results are ranked by
//     signal strength (stable) and replace the displayed list.
//   - Connector: POST /api/connect with the chosen credentials. A positive
//     acknowledgment renders "Connecting…" and leaves the outcome to the
//     poller; a negative one surfaces the device's message.
//
// # Event Loop
//
// All controller state lives on the goroutine running Run. Backend calls run
// on their own goroutines and post results back as events, so every handler
// runs to completion before the next one starts and the Renderer is only
// ever called from the loop goroutine. Scan and Connect may be called from
// any goroutine.
//
//	ctrl := provision.New(client, renderer, provision.DefaultOptions())
//	go func() {
//	    if err := ctrl.Run(ctx); err != nil {
//	        log.Println(err)
//	    }
//	}()
//	ctrl.Scan()
//	ctrl.Connect(portal.Credentials{SSID: "HomeNet", Passphrase: "secret"})
//
// Run returns nil after navigation and the context error on cancellation.
// Navigating cancels in-flight requests; their late responses are dropped.
//
// # Output Ports
//
// The controller never holds presentation objects. It calls a Renderer,
// which the TUI and the console front end implement.
package provision
