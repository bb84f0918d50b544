// Package discovery locates device setup portals with mDNS.
//
// Portals advertise the generic "_http._tcp" service, so browsing alone
// also finds printers, routers and NAS boxes. Every candidate is therefore
// probed with GET /api/status and kept only if it answers like a portal.
//
// # Discovery Process
//
//  1. Browse "_http._tcp" in "local." until the timeout
//  2. Convert each service entry to a candidate (IPv4 preferred)
//  3. Drop duplicates and names that do not match the optional filter
//  4. Probe candidates concurrently and keep the ones that answer
//
// # Usage Example
//
//	scanner := discovery.NewScanner()
//	scanner.Timeout = 5 * time.Second
//	portals, err := scanner.Discover(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, p := range portals {
//	    fmt.Println(p.Name, p.BaseURL())
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - The host must be joined to the portal's access point
// - Firewall must allow mDNS (UDP port 5353)
package discovery
