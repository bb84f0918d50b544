package provision

import (
	"time"

	"go.uber.org/zap"

	"github.com/muurk/wifiprov/internal/logging"
	"github.com/muurk/wifiprov/internal/portal"
)

// startScan begins a user- or startup-initiated scan, applying the overlap
// policy when one is already pending.
func (c *Controller) startScan() {
	if c.scanPending {
		switch c.opts.Overlap {
		case OverlapReplace:
			logging.Debug("Replacing outstanding scan", zap.String("session", c.session))
			c.scan.abort()
			if c.scanTimer != nil {
				c.scanTimer.Stop()
				c.scanTimer = nil
			}
		default:
			logging.Debug("Scan ignored, previous scan outstanding", zap.String("session", c.session))
			return
		}
	}

	c.scanPending = true
	c.scanRetries = 0
	c.render.RenderScanMeta(LabelScanning)
	c.requestScan()
}

// requestScan sends one scan request as part of the pending scan.
func (c *Controller) requestScan() {
	id := c.nextID()
	ctx, cancel := c.requestContext()
	c.scan = flight{id: id, cancel: cancel}

	go func() {
		defer cancel()
		result, err := c.backend.Scan(ctx)
		c.post(scanEvent{id: id, result: result, err: err})
	}()
}

func (c *Controller) handleScan(ev scanEvent) {
	if ev.id != c.scan.id {
		return
	}
	c.scan = flight{}

	if ev.err == nil && ev.result == nil {
		ev.err = ErrEmptyResponse
	}
	if ev.err != nil {
		c.scanPending = false
		logging.Warn("Scan failed", zap.String("session", c.session), zap.Error(ev.err))
		c.render.RenderScanMeta(LabelScanFailed)
		return
	}

	if ev.result.Scanning && c.scanRetries < c.opts.ScanFollowups {
		c.scanRetries++
		logging.Debug("Device still scanning, asking again",
			zap.String("session", c.session),
			zap.Int("attempt", c.scanRetries),
			zap.Int("found_so_far", len(ev.result.Networks)))
		c.scanTimer = time.NewTimer(c.opts.ScanRetryDelay)
		return
	}

	c.scanPending = false
	c.networks = portal.RankBySignal(ev.result.Networks)
	logging.Info("Scan complete",
		zap.String("session", c.session),
		zap.Int("networks", len(c.networks)))
	c.render.RenderNetworks(c.networks)
	c.render.RenderScanMeta(portal.CountSummary(len(c.networks)))
}

func (c *Controller) isListed(ssid string) bool {
	for _, n := range c.networks {
		if n.SSID == ssid {
			return true
		}
	}
	return false
}
