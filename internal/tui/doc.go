// Package tui is the interactive terminal front end for a provisioning
// session.
//
// The package is built on bubbletea. A Model holds only what is on screen;
// all provisioning logic lives in the provision.Controller, which reaches the
// Model through a Renderer that turns each render call into a tea.Msg.
//
// Run wires the two together:
//
//	nav, err := tui.Run(ctx, client, opts, tui.Info{Portal: base})
//	if err != nil {
//	    return err
//	}
//	if nav != nil {
//	    fmt.Println("device joined", nav.SSID)
//	}
//
// Screen layout:
//
//	┌──────────────────────────────────────────┐
//	│ WIFIPROV v1.0.0     github.com/muurk/... │
//	├──────────────────────────────────────────┤
//	│ ● Connecting…                            │
//	│ ✗ Wrong username or password             │
//	│                                          │
//	│ Networks · 5 networks · updated 2s ago   │
//	│ → ▂▄▆█ HomeNet            WPA2   -48 dBm │
//	│   ▂▄▆_ Neighbor-5G        WPA2   -63 dBm │
//	├──────────────────────────────────────────┤
//	│ ↑/k up • ↓/j down • enter connect • ...  │
//	└──────────────────────────────────────────┘
package tui
