package provision

import (
	"errors"
	"time"

	"github.com/cenkalti/backoff"
	"go.uber.org/zap"

	"github.com/muurk/wifiprov/internal/logging"
	"github.com/muurk/wifiprov/internal/portal"
)

// newPollBackoff starts at the poll interval and doubles up to BackoffMax.
// It never gives up.
func newPollBackoff(opts Options) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = opts.PollInterval
	b.MaxInterval = opts.BackoffMax
	b.Multiplier = 2
	b.RandomizationFactor = opts.BackoffJitter
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// nextFailureDelay returns the wait after a failed poll, capped at BackoffMax
// even when jitter pushes past it.
func (c *Controller) nextFailureDelay() time.Duration {
	d := c.retry.NextBackOff()
	if d == backoff.Stop || d > c.opts.BackoffMax {
		d = c.opts.BackoffMax
	}
	return d
}

// startPoll issues a status request unless one is already outstanding.
func (c *Controller) startPoll() {
	if c.navigated {
		return
	}
	if c.poll.id != 0 {
		logging.Debug("Status poll skipped, previous request outstanding",
			zap.String("session", c.session))
		return
	}

	id := c.nextID()
	ctx, cancel := c.requestContext()
	c.poll = flight{id: id, cancel: cancel}
	c.pollStarted = time.Now()

	go func() {
		defer cancel()
		resp, err := c.backend.Status(ctx)
		c.post(statusEvent{id: id, resp: resp, err: err})
	}()
}

// refreshStatus drops any outstanding poll and asks again at once. A status
// requested before the device accepted new credentials is never applied.
func (c *Controller) refreshStatus() {
	if c.poll.id != 0 {
		logging.Debug("Superseding outstanding status poll", zap.String("session", c.session))
		c.poll.abort()
	}
	c.startPoll()
}

// schedulePoll arms the next tick. Ticks missed while a request was
// outstanding collapse into one immediate poll.
func (c *Controller) schedulePoll(delay time.Duration) {
	if c.pollTimer != nil {
		c.pollTimer.Stop()
	}
	if delay < 0 {
		delay = 0
	}
	c.pollTimer = time.NewTimer(delay)
}

func (c *Controller) handleStatus(ev statusEvent) {
	if ev.id != c.poll.id {
		return
	}
	c.poll = flight{}

	err := ev.err
	var status Status
	if err == nil {
		status, err = ParseStatus(ev.resp)
	}
	if err != nil {
		c.failures++
		delay := c.nextFailureDelay()
		c.logPollFailure(err, delay)
		c.schedulePoll(delay)
		return
	}

	if c.failures > 0 {
		logging.Info("Status poll recovered",
			zap.String("session", c.session),
			zap.Int("failures", c.failures))
		c.failures = 0
		c.retry.Reset()
	}

	c.applyStatus(status)
	if c.navigated {
		return
	}
	c.schedulePoll(c.opts.PollInterval - time.Since(c.pollStarted))
}

// logPollFailure logs at error level when retrying is unlikely to help,
// such as an address that answers HTTP but is not a portal. Polling
// continues either way.
func (c *Controller) logPollFailure(err error, delay time.Duration) {
	fields := []zap.Field{
		zap.String("session", c.session),
		zap.Int("consecutive_failures", c.failures),
		zap.Duration("retry_in", delay),
		zap.Error(err),
	}

	switch {
	case portal.IsCanceled(err):
		logging.Debug("Status poll canceled", fields...)
	case portal.IsHTTPError(err) && !portal.IsRetryable(err):
		fields = append(fields, zap.Strings("hints", portal.TroubleshootingHint(err)))
		logging.Error("Portal answered with a client error", fields...)
	case portal.IsNetworkError(err) && !portal.IsRetryable(err):
		fields = append(fields, zap.Strings("hints", portal.TroubleshootingHint(err)))
		logging.Error("Portal address is unusable", fields...)
	case portal.IsParseError(err), errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrEmptyResponse):
		logging.Warn("Malformed status response", fields...)
	default:
		logging.Warn("Status poll failed", fields...)
	}
}

func (c *Controller) applyStatus(s Status) {
	prev := c.status.State
	c.status = s
	if prev != s.State {
		logging.LogTransition(c.session, prev.String(), s.State.String())
	}

	if s.State == StateConnected {
		c.navigate()
		return
	}
	c.showIndicator(s.Indicator())
	c.showError(s.Error)
}
