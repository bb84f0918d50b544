package provision

import (
	"errors"

	"go.uber.org/zap"

	"github.com/muurk/wifiprov/internal/logging"
	"github.com/muurk/wifiprov/internal/portal"
)

// validate checks a submission against local rules before anything is sent.
func (c *Controller) validate(creds portal.Credentials) error {
	if creds.SSID == "" {
		return ErrNoSelection
	}
	if err := portal.ValidateSSID(creds.SSID); err != nil {
		return err
	}
	if !c.opts.AllowUnlisted && !c.isListed(creds.SSID) {
		return ErrUnlistedNetwork
	}
	return nil
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoSelection):
		return MessageNoSelection
	case errors.Is(err, ErrUnlistedNetwork):
		return MessageUnlisted
	case portal.IsValidationError(err):
		return portal.ShortMessage(err)
	default:
		return err.Error()
	}
}

func (c *Controller) startConnect(creds portal.Credentials) {
	if c.connect.id != 0 {
		switch c.opts.Overlap {
		case OverlapReplace:
			logging.Debug("Replacing outstanding connect", zap.String("session", c.session))
			c.connect.abort()
		default:
			logging.Debug("Connect ignored, previous submission outstanding", zap.String("session", c.session))
			return
		}
	}

	if err := c.validate(creds); err != nil {
		logging.Warn("Connect rejected locally", zap.String("session", c.session), zap.Error(err))
		c.showError(validationMessage(err))
		return
	}

	c.showError("")
	c.render.RenderConnectMeta(LabelSending)
	logging.LogCredentials(c.session, creds.SSID, creds.Username, creds.Passphrase)

	id := c.nextID()
	ctx, cancel := c.requestContext()
	c.connect = flight{id: id, cancel: cancel}

	go func() {
		defer cancel()
		ack, err := c.backend.Connect(ctx, creds)
		c.post(connectEvent{id: id, ack: ack, err: err})
	}()
}

func (c *Controller) handleConnect(ev connectEvent) {
	if ev.id != c.connect.id {
		return
	}
	c.connect = flight{}

	if ev.err == nil && ev.ack == nil {
		ev.err = ErrEmptyResponse
	}
	switch {
	case ev.err != nil:
		logging.Warn("Connect request failed", zap.String("session", c.session), zap.Error(ev.err))
		c.showError(ConnectFailedMessage)
		c.render.RenderConnectMeta("")
	case !ev.ack.OK:
		msg := ev.ack.ErrorOr(portal.DefaultConnectError)
		logging.Warn("Device rejected credentials", zap.String("session", c.session), zap.String("reason", msg))
		c.showError(msg)
		c.render.RenderConnectMeta("")
	default:
		logging.Info("Device accepted credentials", zap.String("session", c.session))
		c.render.RenderConnectMeta(LabelConnecting)
		c.refreshStatus()
	}
}
