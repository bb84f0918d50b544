package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/wifiprov/internal/discovery"
	"github.com/muurk/wifiprov/internal/logging"
	"github.com/muurk/wifiprov/internal/portal"
	"github.com/muurk/wifiprov/internal/provision"
	"github.com/muurk/wifiprov/internal/tui"
	"github.com/muurk/wifiprov/internal/ui"
	"github.com/muurk/wifiprov/internal/urls"
)

// Command flags
var (
	outputFormat    string
	discoverTimeout time.Duration
	discoverAll     bool
	forgetYes       bool
)

func init() {
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(forgetCmd)

	discoverCmd.Flags().DurationVar(&discoverTimeout, "wait", 0, "How long to listen for announcements (default from config, 5s)")
	discoverCmd.Flags().BoolVar(&discoverAll, "all", false, "Also list HTTP services that did not answer like a portal")
	statusCmd.Flags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, json)")
	scanCmd.Flags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, compact, json)")
	forgetCmd.Flags().BoolVarP(&forgetYes, "yes", "y", false, "Do not ask for confirmation")
}

// signalContext returns a context canceled on interrupt.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt)
}

// tuiCmd launches the interactive provisioning screen
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive provisioning screen",
	Long: `Launch the interactive provisioning screen.

The screen scans for networks as soon as it opens and keeps the device's
connection state up to date. Pick a network, enter its passphrase and the
screen follows the device until it has joined.`,
	Example: `  # Portal at the default setup address
  wifiprov
  wifiprov tui

  # Portal elsewhere, including hidden networks
  wifiprov tui --portal 10.0.0.1:8080`,
	RunE: runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	s, err := currentSettings(cmd)
	if err != nil {
		return err
	}
	client, err := s.newClient()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	info := tui.Info{Portal: client.BaseURL.String(), AllowUnlisted: s.Options.AllowUnlisted}
	nav, err := tui.Run(ctx, client, s.Options, info)
	if err != nil {
		return err
	}
	if nav != nil {
		rememberConnection(s.Portal, nav)
		ui.NewPrinter(os.Stdout).PrintSuccess("Device connected", navigationDetails(nav))
	}
	return nil
}

// discoverCmd finds portals on the local network
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find provisioning portals on the local network",
	Long: `Find provisioning portals using mDNS/DNS-SD.

Every announced HTTP service is probed for the portal status endpoint;
only services that answer like a portal are listed.`,
	Example: `  # Listen for the configured time (default 5s)
  wifiprov discover

  # Listen longer on busy networks
  wifiprov discover --wait 15s

  # Show every HTTP service, marking the ones that are not portals
  wifiprov discover --all`,
	RunE: runDiscover,
}

func runDiscover(cmd *cobra.Command, args []string) error {
	s, err := currentSettings(cmd)
	if err != nil {
		return err
	}
	timeout := s.DiscoverTimeout
	if discoverTimeout > 0 {
		timeout = discoverTimeout
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	p := ui.NewPrinter(os.Stdout)
	p.PrintHeader("DISCOVER PORTALS", "wifiprov discover", map[string]string{"Listening": timeout.String()})

	scanner := discovery.NewScanner()
	scanner.Timeout = timeout
	scanner.ProbeTimeout = s.Options.RequestTimeout
	portals, err := findPortals(ctx, scanner, discoverAll)
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	if len(portals) == 0 {
		p.PrintError("No portals found", nil, []string{
			"Join the device's setup Wi-Fi network first",
			"Some networks block mDNS; pass --portal with the device address instead",
			"Listen longer with --wait",
		})
		return nil
	}

	printPortals(p, portals)
	p.Println("Use 'wifiprov --portal <address>' to provision one of them")
	return nil
}

// findPortals returns verified portals, or with all set every service seen,
// verified or not.
func findPortals(ctx context.Context, scanner *discovery.Scanner, all bool) ([]*discovery.Portal, error) {
	if !all {
		return scanner.Discover(ctx)
	}
	candidates, err := scanner.Browse(ctx)
	if err != nil {
		return nil, err
	}
	scanner.Verify(ctx, candidates)
	return candidates, nil
}

func printPortals(p *ui.Printer, portals []*discovery.Portal) {
	verified := 0
	for _, found := range portals {
		if found.Verified() {
			verified++
		}
	}
	p.Printf("Found %d portal(s) among %d service(s):\n\n", verified, len(portals))

	for i, found := range portals {
		name := found.Name
		if known := registry.GetPortal(found.Addr()); known != nil && known.Nickname != "" {
			name = fmt.Sprintf("%s (%s)", known.Nickname, found.Name)
		}
		if !found.Verified() {
			name += " " + ui.MetaStyle.Render("(not a portal)")
		}
		p.Printf("%d. %s\n", i+1, name)
		p.Printf("   Address: %s\n", found.BaseURL())
		if found.Hostname != "" {
			p.Printf("   Host:    %s\n", found.Hostname)
		}
		if v := found.GetMetadata("version"); v != "" {
			p.Printf("   Version: %s\n", v)
		}
		if found.Verified() {
			p.Printf("   Status:  %s\n", portal.FormatStatus(found.Status))
		}
		p.Newline()
	}
}

// statusCmd queries the device once
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the device's connection state",
	Example: `  wifiprov status
  wifiprov status --portal 192.168.4.1 --format json`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	s, err := currentSettings(cmd)
	if err != nil {
		return err
	}
	client, err := s.newClient()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	resp, err := client.Status(ctx)
	if err != nil {
		return err
	}

	switch outputFormat {
	case "json":
		return printJSON(resp)
	default:
		status, err := provision.ParseStatus(resp)
		if err != nil {
			return err
		}
		p := ui.NewPrinter(os.Stdout)
		p.Println(ui.IndicatorStyle(status.State).Render(ui.StateMarker + " " + status.Indicator().Label))
		p.Println(portal.FormatStatus(resp))
	}
	return nil
}

// scanCmd lists the networks the device can see
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List the wireless networks the device can see",
	Long: `Ask the device for a scan and list the results, strongest signal first.

While the device's radio is still scanning the request is repeated until
results arrive.`,
	Example: `  wifiprov scan
  wifiprov scan --format compact
  wifiprov scan --format json`,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	s, err := currentSettings(cmd)
	if err != nil {
		return err
	}
	client, err := s.newClient()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	networks, err := scanNetworks(ctx, client, s.Options)
	if err != nil {
		return err
	}

	switch outputFormat {
	case "json":
		out, err := portal.FormatNetworksJSON(networks)
		if err != nil {
			return err
		}
		fmt.Println(out)
	case "compact":
		fmt.Print(portal.FormatNetworksCompact(networks))
	default:
		if !ui.IsTerminal(os.Stdout) {
			fmt.Print(portal.FormatNetworksDetailed(networks))
			return nil
		}
		p := ui.NewPrinter(os.Stdout)
		p.Println(ui.MetaStyle.Render(portal.CountSummary(len(networks))))
		p.Println(ui.RenderNetworkTable(networks))
	}
	return nil
}

// scanNetworks asks for a scan, repeating while the device reports its
// radio is busy, and ranks the result.
func scanNetworks(ctx context.Context, client provision.Backend, opts provision.Options) ([]portal.Network, error) {
	followups := opts.ScanFollowups
	switch {
	case followups == 0:
		followups = provision.DefaultScanFollowups
	case followups < 0:
		followups = 0
	}
	delay := opts.ScanRetryDelay
	if delay <= 0 {
		delay = provision.DefaultScanRetryDelay
	}

	for attempt := 0; ; attempt++ {
		result, err := client.Scan(ctx)
		if err != nil {
			return nil, err
		}
		if !result.Scanning || attempt >= followups {
			return portal.RankBySignal(result.Networks), nil
		}
		logging.Debug("Device still scanning", zap.Int("attempt", attempt+1))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

// forgetCmd clears saved credentials on the device
var forgetCmd = &cobra.Command{
	Use:   "forget",
	Short: "Clear the network credentials saved on the device",
	Long: `Tell the device to forget its saved network and drop its station link.

The device returns to setup mode. The portal is also removed from the
local list of known portals.`,
	Example: `  wifiprov forget
  wifiprov forget --portal 192.168.4.1 --yes`,
	RunE: runForget,
}

func runForget(cmd *cobra.Command, args []string) error {
	s, err := currentSettings(cmd)
	if err != nil {
		return err
	}
	client, err := s.newClient()
	if err != nil {
		return err
	}

	p := ui.NewPrinter(os.Stdout)
	if !forgetYes {
		warnings := []string{
			"The device will disconnect from its current network",
			"You will need to provision it again",
		}
		if !p.Confirm(os.Stdin, "Forget saved network on "+client.BaseURL.Host+"?", warnings, "forget") {
			return nil
		}
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	ack, err := client.Disconnect(ctx)
	if err != nil {
		return err
	}
	if !ack.OK {
		return fmt.Errorf("device refused: %s", ack.ErrorOr("unknown error"))
	}

	if registry.ForgetPortal(s.Portal) {
		if err := registry.Save(); err != nil {
			logging.Warn("Could not update config", zap.Error(err))
		}
	}

	p.PrintSuccess("Saved network cleared", map[string]string{
		"Portal": client.BaseURL.String(),
		"Next":   "Join the device's setup network to provision it again",
	})
	return nil
}

// rememberConnection stores the outcome of a session in the config file.
// Credentials are never written.
func rememberConnection(addr string, nav *provision.Navigation) {
	registry.RecordConnection(addr, nav.SSID, nav.IP)
	if err := registry.Save(); err != nil {
		logging.Warn("Could not save config", zap.String("path", registry.Path()), zap.Error(err))
	}
}

func navigationDetails(nav *provision.Navigation) map[string]string {
	details := map[string]string{"Landing page": nav.URL}
	if nav.SSID != "" {
		details["Network"] = nav.SSID
	}
	if nav.IP != "" {
		details["Device IP"] = nav.IP
	}
	if nav.URL == "" {
		details["Landing page"] = urls.LandingPath
	}
	return details
}
