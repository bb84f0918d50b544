// Package config provides user configuration management for wifiprov.
//
// This package manages a YAML configuration file holding application
// preferences (default portal address, poll cadence, timeouts, overlap
// policy) and a registry of portals the user has provisioned before.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/wifiprov/config.yaml or $HOME/.config/wifiprov/config.yaml
//   - macOS: $HOME/.config/wifiprov/config.yaml
//   - Windows: %LOCALAPPDATA%\wifiprov\config.yaml
//
// # Security
//
// IMPORTANT: This package NEVER stores Wi-Fi passphrases or enterprise
// usernames. Only the SSID of the last provisioned network is remembered.
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	registry.RecordConnection("192.168.4.1", "HomeNet", "192.168.1.57")
//	registry.SetPortalNickname("192.168.4.1", "Kitchen display")
//
//	// Save changes atomically
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
