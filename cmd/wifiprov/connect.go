package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/muurk/wifiprov/internal/logging"
	"github.com/muurk/wifiprov/internal/portal"
	"github.com/muurk/wifiprov/internal/provision"
	"github.com/muurk/wifiprov/internal/ui"
)

// Connect command flags
var (
	connectSSID    string
	connectPass    string
	connectUser    string
	connectAskPass bool
	connectHidden  bool
	connectWait    time.Duration
	connectVerbose bool
)

func init() {
	rootCmd.AddCommand(connectCmd)

	f := connectCmd.Flags()
	f.StringVar(&connectSSID, "ssid", "", "Network to join (required)")
	f.StringVar(&connectPass, "pass", "", "Network passphrase")
	f.StringVar(&connectUser, "user", "", "Username for enterprise networks")
	f.BoolVar(&connectAskPass, "ask-pass", false, "Prompt for the passphrase without echo")
	f.BoolVar(&connectHidden, "hidden", false, "Allow a network that does not appear in the scan")
	f.DurationVar(&connectWait, "wait", 60*time.Second, "Give up if the device has not connected by then")
	f.BoolVarP(&connectVerbose, "verbose", "v", false, "Also print scan results")
	_ = connectCmd.MarkFlagRequired("ssid")
}

// connectCmd provisions without the interactive screen
var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Provision the device non-interactively",
	Long: `Scan, submit credentials and follow the device until it has joined.

The command exits successfully once the device reports connected, and
fails when the device rejects the credentials or --wait runs out.`,
	Example: `  # Prompt for the passphrase
  wifiprov connect --ssid HomeNet --ask-pass

  # Enterprise network
  wifiprov connect --ssid Corp --user alice --ask-pass

  # Hidden network, give the device two minutes
  wifiprov connect --ssid Attic --pass s3cret --hidden --wait 2m`,
	RunE: runConnect,
}

func runConnect(cmd *cobra.Command, args []string) error {
	s, err := currentSettings(cmd)
	if err != nil {
		return err
	}
	if err := portal.ValidateSSID(connectSSID); err != nil {
		return err
	}
	if connectHidden {
		s.Options.AllowUnlisted = true
	}

	pass := connectPass
	if connectAskPass {
		pass, err = readPassphrase(connectSSID)
		if err != nil {
			return err
		}
	}

	client, err := s.newClient()
	if err != nil {
		return err
	}

	p := ui.NewPrinter(os.Stdout)
	p.PrintHeader("PROVISION DEVICE", "wifiprov connect", map[string]string{
		"Portal":  client.BaseURL.String(),
		"Network": connectSSID,
		"Wait":    connectWait.String(),
	})

	ctx, cancel := signalContext(cmd)
	defer cancel()

	creds := portal.Credentials{SSID: connectSSID, Passphrase: pass, Username: connectUser}
	nav, err := provisionHeadless(ctx, client, s.Options, creds, connectWait, p, connectVerbose)
	if err != nil {
		return err
	}

	rememberConnection(s.Portal, nav)
	return nil
}

// readPassphrase prompts on the terminal without echo.
func readPassphrase(ssid string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("--ask-pass needs a terminal on stdin")
	}
	fmt.Fprintf(os.Stderr, "Passphrase for %s: ", ssid)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read passphrase: %w", err)
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}

// errWaitExpired means the device did not connect within --wait.
var errWaitExpired = errors.New("device did not connect in time")

// provisionHeadless runs a controller session that submits creds once the
// first scan has settled and returns when the device connects, the
// submission fails or wait runs out.
func provisionHeadless(ctx context.Context, backend provision.Backend, opts provision.Options, creds portal.Credentials, wait time.Duration, p *ui.Printer, verbose bool) (*provision.Navigation, error) {
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	console := ui.NewConsoleRenderer(p)
	console.Verbose = verbose
	watch := newOutcomeWatcher(console)
	ctrl := provision.New(backend, watch, opts)

	runErr := make(chan error, 1)
	go func() { runErr <- ctrl.Run(ctx) }()

	select {
	case <-watch.settled:
	case err := <-runErr:
		return finish(console, err, wait)
	}

	watch.arm()
	ctrl.Connect(creds)

	select {
	case msg := <-watch.failed:
		cancel()
		<-ctrl.Done()
		return nil, fmt.Errorf("connection failed: %s", msg)
	case err := <-runErr:
		return finish(console, err, wait)
	}
}

func finish(console *ui.ConsoleRenderer, runErr error, wait time.Duration) (*provision.Navigation, error) {
	if nav := console.Navigation(); nav != nil {
		return nav, nil
	}
	if errors.Is(runErr, context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w (waited %s)", errWaitExpired, wait)
	}
	if runErr == nil {
		runErr = errors.New("session ended without a connection")
	}
	return nil, runErr
}

// outcomeWatcher wraps a renderer and reports when the first scan has
// settled and when a submission has failed. All Render calls arrive on the
// controller's loop goroutine.
type outcomeWatcher struct {
	provision.Renderer

	settled    chan struct{}
	settleOnce sync.Once
	failed     chan string
	armed      atomic.Bool

	sending   bool
	accepted  bool
	lastError string
}

func newOutcomeWatcher(next provision.Renderer) *outcomeWatcher {
	return &outcomeWatcher{
		Renderer: next,
		settled:  make(chan struct{}),
		failed:   make(chan string, 1),
	}
}

// arm starts failure reporting; call it right before submitting.
func (w *outcomeWatcher) arm() {
	w.armed.Store(true)
}

func (w *outcomeWatcher) settle() {
	w.settleOnce.Do(func() { close(w.settled) })
}

func (w *outcomeWatcher) fail(message string) {
	select {
	case w.failed <- message:
	default:
	}
}

func (w *outcomeWatcher) RenderNetworks(networks []portal.Network) {
	w.Renderer.RenderNetworks(networks)
	w.settle()
}

func (w *outcomeWatcher) RenderScanMeta(text string) {
	w.Renderer.RenderScanMeta(text)
	if text == provision.LabelScanFailed {
		w.settle()
	}
}

func (w *outcomeWatcher) RenderError(message string) {
	w.Renderer.RenderError(message)
	w.lastError = message
	if message == "" || !w.armed.Load() {
		return
	}
	// Rejections are reported when the send completes; everything else
	// after arming is a local validation error or a device-side failure.
	if !w.sending {
		logging.Debug("Submission failed", zap.Bool("accepted", w.accepted))
		w.fail(message)
	}
}

func (w *outcomeWatcher) RenderConnectMeta(text string) {
	w.Renderer.RenderConnectMeta(text)
	switch text {
	case provision.LabelSending:
		w.sending = true
	case provision.LabelConnecting:
		w.sending = false
		w.accepted = true
	case "":
		if w.sending {
			w.sending = false
			w.fail(w.lastError)
		}
	}
}
