// Package urls holds the fixed paths of the device portal API, the
// post-connection landing resource, and links to the user documentation.
//
// Paths are relative to the portal base URL (e.g. "http://192.168.4.1").
// Use Resolve to join one with a base URL.
package urls
