package discovery

import (
	"fmt"
	"sort"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/wifiprov/internal/logging"
)

// Announcement is a registered mDNS service record.
type Announcement struct {
	server *zeroconf.Server
}

// Announce advertises a portal on port under instance, with txt as TXT
// records. Close the announcement to withdraw it.
func Announce(instance string, port int, txt map[string]string) (*Announcement, error) {
	if instance == "" {
		return nil, fmt.Errorf("instance name is required")
	}
	server, err := zeroconf.Register(instance, ServiceType, ServiceDomain, port, txtRecords(txt), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}
	logging.Info("Announcing portal over mDNS",
		zap.String("instance", instance),
		zap.String("service", ServiceType),
		zap.Int("port", port))
	return &Announcement{server: server}, nil
}

// Close withdraws the announcement.
func (a *Announcement) Close() {
	if a == nil || a.server == nil {
		return
	}
	a.server.Shutdown()
}

// txtRecords renders TXT records as key=value in key order.
func txtRecords(txt map[string]string) []string {
	keys := make([]string, 0, len(txt))
	for k := range txt {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	records := make([]string, 0, len(keys))
	for _, k := range keys {
		if txt[k] == "" {
			records = append(records, k)
			continue
		}
		records = append(records, k+"="+txt[k])
	}
	return records
}
