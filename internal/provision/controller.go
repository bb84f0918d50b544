package provision

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/muurk/wifiprov/internal/logging"
	"github.com/muurk/wifiprov/internal/portal"
)

// Backend is the device-side portal API. *portal.Client implements it.
type Backend interface {
	Status(ctx context.Context) (*portal.StatusResponse, error)
	Scan(ctx context.Context) (*portal.ScanResult, error)
	Connect(ctx context.Context, creds portal.Credentials) (*portal.ConnectResponse, error)
}

var _ Backend = (*portal.Client)(nil)

var (
	// ErrAlreadyRunning is returned by a second call to Run.
	ErrAlreadyRunning = errors.New("controller already running")

	// ErrNoSelection means Connect was called without an SSID.
	ErrNoSelection = errors.New("no network selected")

	// ErrUnlistedNetwork means the SSID is not among the displayed networks.
	ErrUnlistedNetwork = errors.New("network is not in the scan results")

	// ErrEmptyResponse means a Backend returned neither a result nor an error.
	ErrEmptyResponse = errors.New("empty response from device")
)

// Display text for local validation failures.
const (
	MessageNoSelection = "Select a network first"
	MessageUnlisted    = "Network not found in scan results, scan again or allow hidden networks"
)

const commandBuffer = 16

// Controller drives one provisioning session. Create it with New and start
// it with Run.
type Controller struct {
	backend Backend
	render  Renderer
	opts    Options
	session string

	commands chan command
	events   chan event
	done     chan struct{}
	running  atomic.Bool

	// Everything below is owned by the Run goroutine.
	ctx       context.Context
	seq       uint64
	navigated bool

	status    Status
	errorText string
	shownInd  Indicator
	indShown  bool

	poll        flight
	pollStarted time.Time
	pollTimer   *time.Timer
	retry       *backoff.ExponentialBackOff
	failures    int

	scan        flight
	scanPending bool
	scanRetries int
	scanTimer   *time.Timer
	networks    []portal.Network

	connect flight
}

// flight tracks one outstanding request. A zero id means idle.
type flight struct {
	id     uint64
	cancel context.CancelFunc
}

func (f *flight) abort() {
	if f.cancel != nil {
		f.cancel()
	}
	*f = flight{}
}

type command interface{ isCommand() }

type scanCommand struct{}

type connectCommand struct{ creds portal.Credentials }

func (scanCommand) isCommand()    {}
func (connectCommand) isCommand() {}

type event interface{ isEvent() }

type statusEvent struct {
	id   uint64
	resp *portal.StatusResponse
	err  error
}

type scanEvent struct {
	id     uint64
	result *portal.ScanResult
	err    error
}

type connectEvent struct {
	id  uint64
	ack *portal.ConnectResponse
	err error
}

func (statusEvent) isEvent()  {}
func (scanEvent) isEvent()    {}
func (connectEvent) isEvent() {}

// New creates a controller. A nil renderer discards all output.
func New(backend Backend, render Renderer, opts Options) *Controller {
	if render == nil {
		render = NopRenderer{}
	}
	opts = opts.withDefaults()
	return &Controller{
		backend:  backend,
		render:   render,
		opts:     opts,
		session:  uuid.NewString(),
		commands: make(chan command, commandBuffer),
		events:   make(chan event),
		done:     make(chan struct{}),
		retry:    newPollBackoff(opts),
	}
}

// Session returns the identifier attached to this controller's log lines.
func (c *Controller) Session() string {
	return c.session
}

// Options returns the effective options after defaults were applied.
func (c *Controller) Options() Options {
	return c.opts
}

// Done is closed when Run returns.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Scan asks for a fresh network scan. Safe to call from any goroutine;
// dropped once the controller has stopped.
func (c *Controller) Scan() {
	c.send(scanCommand{})
}

// Connect submits credentials. Safe to call from any goroutine; dropped once
// the controller has stopped. The credentials are used for a single request
// and not retained.
func (c *Controller) Connect(creds portal.Credentials) {
	c.send(connectCommand{creds: creds})
}

func (c *Controller) send(cmd command) {
	select {
	case c.commands <- cmd:
	case <-c.done:
	}
}

func (c *Controller) post(ev event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

// Run starts the initial scan and the status poller, then processes events
// until the device reports connected (returns nil) or ctx is canceled
// (returns ctx.Err()).
func (c *Controller) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(c.done)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	c.ctx = ctx
	defer c.stopTimers()

	logging.Info("Provisioning session started",
		zap.String("session", c.session),
		zap.Duration("poll_interval", c.opts.PollInterval),
		zap.String("overlap", string(c.opts.Overlap)))

	c.startScan()
	c.startPoll()

	for !c.navigated {
		select {
		case <-ctx.Done():
			logging.Info("Provisioning session canceled", zap.String("session", c.session))
			return ctx.Err()
		case cmd := <-c.commands:
			c.handleCommand(cmd)
		case ev := <-c.events:
			c.handleEvent(ev)
		case <-timerC(c.pollTimer):
			c.pollTimer = nil
			c.startPoll()
		case <-timerC(c.scanTimer):
			c.scanTimer = nil
			c.requestScan()
		}
	}

	logging.Info("Provisioning session finished", zap.String("session", c.session))
	return nil
}

func (c *Controller) handleCommand(cmd command) {
	switch cmd := cmd.(type) {
	case scanCommand:
		c.startScan()
	case connectCommand:
		c.startConnect(cmd.creds)
	}
}

func (c *Controller) handleEvent(ev event) {
	switch ev := ev.(type) {
	case statusEvent:
		c.handleStatus(ev)
	case scanEvent:
		c.handleScan(ev)
	case connectEvent:
		c.handleConnect(ev)
	}
}

func (c *Controller) nextID() uint64 {
	c.seq++
	return c.seq
}

func (c *Controller) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.ctx, c.opts.RequestTimeout)
}

// showError writes the error region, skipping writes that change nothing.
func (c *Controller) showError(message string) {
	if message == c.errorText {
		return
	}
	c.errorText = message
	c.render.RenderError(message)
}

func (c *Controller) showIndicator(ind Indicator) {
	if c.indShown && ind == c.shownInd {
		return
	}
	c.indShown = true
	c.shownInd = ind
	c.render.RenderIndicator(ind)
}

func (c *Controller) navigate() {
	if c.navigated {
		return
	}
	c.navigated = true
	c.stopTimers()
	c.poll.abort()
	c.scan.abort()
	c.connect.abort()

	nav := Navigation{URL: c.opts.LandingURL, SSID: c.status.SSID, IP: c.status.IP}
	logging.Info("Device connected, navigating to landing page",
		zap.String("session", c.session),
		zap.String("url", nav.URL),
		zap.String("ssid", nav.SSID),
		zap.String("ip", nav.IP))
	c.render.Navigate(nav)
}

func (c *Controller) stopTimers() {
	if c.pollTimer != nil {
		c.pollTimer.Stop()
		c.pollTimer = nil
	}
	if c.scanTimer != nil {
		c.scanTimer.Stop()
		c.scanTimer = nil
	}
}

// timerC returns t's channel, or nil (blocks forever in select) for no timer.
func timerC(t *time.Timer) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}
