// Wifiprov provisions headless devices onto a Wi-Fi network through their
// setup portal.
//
// It discovers portals on the local network, lists the wireless networks a
// device can see, submits credentials and follows the device until it has
// joined the network.
//
// Usage:
//
//	wifiprov [command] [flags]
//
// Running without arguments launches the interactive provisioning screen.
// See 'wifiprov --help' for available commands.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/wifiprov/internal/config"
	"github.com/muurk/wifiprov/internal/logging"
	"github.com/muurk/wifiprov/internal/portal"
	"github.com/muurk/wifiprov/internal/ui"
	"github.com/muurk/wifiprov/internal/urls"
	"github.com/muurk/wifiprov/internal/version"
)

// Global flags
var (
	portalAddr     string
	configPath     string
	logLevel       string
	requestTimeout time.Duration
	pollInterval   time.Duration
	overlapPolicy  string
)

// registry is the loaded config file, set before any command runs.
var registry *config.Registry

func main() {
	if err := rootCmd.Execute(); err != nil {
		printCommandError(err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "wifiprov",
	Short: "Wi-Fi provisioning for headless devices",
	Long: `Put a headless device on your Wi-Fi network through its setup portal.

Join the device's setup access point, then run wifiprov. It lists the
networks the device can see, sends the credentials you choose and follows
the device until it reports connected.

If no command is specified, the interactive screen launches automatically.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Initialize(logLevel); err != nil {
			return err
		}
		reg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		registry = reg
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&portalAddr, "portal", "", "Portal address or nickname (default from config, then "+urls.DefaultPortal+")")
	pf.StringVar(&configPath, "config", "", "Config file (default is the OS config dir)")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default $"+logging.LogLevelEnvVar+", else silent)")
	pf.DurationVar(&requestTimeout, "timeout", 0, "Per-request timeout (default 8s)")
	pf.DurationVar(&pollInterval, "poll-interval", 0, "Status poll interval (default 1.5s)")
	pf.StringVar(&overlapPolicy, "overlap", "", "Second request while one is outstanding: ignore or replace")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wifiprov %s (commit: %s)\n", version.Version, version.Commit)
	},
}

// printCommandError shows err in an error box, with troubleshooting tips
// for portal errors.
func printCommandError(err error) {
	p := ui.NewPrinter(os.Stderr)

	var pe *portal.Error
	if errors.As(err, &pe) {
		tips := append(portal.TroubleshootingHint(err), "Guide: "+urls.TroubleshootingGuide)
		p.PrintError(portal.ShortMessage(err), err, tips)
		return
	}
	p.PrintError("Command failed", err, nil)
}
