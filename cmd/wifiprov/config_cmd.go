package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/muurk/wifiprov/internal/config"
	"github.com/muurk/wifiprov/internal/ui"
)

var configForce bool

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configNicknameCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")
}

// configCmd groups config file commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the wifiprov config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with default preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := config.CreateDefaultConfig(configPath, configForce)
		if err != nil {
			return err
		}
		ui.NewPrinter(os.Stdout).PrintSuccess("Config file created", map[string]string{
			"Path": reg.Path(),
		})
		return nil
	},
}

// effectiveConfig is what "config show" prints: the file as loaded plus
// the values in force after flags are applied.
type effectiveConfig struct {
	Path      string           `yaml:"path"`
	Effective effectiveValues  `yaml:"effective"`
	File      *config.Registry `yaml:"file"`
}

type effectiveValues struct {
	Portal          string `yaml:"portal"`
	PollInterval    string `yaml:"poll_interval"`
	RequestTimeout  string `yaml:"request_timeout"`
	BackoffMax      string `yaml:"backoff_max"`
	OverlapPolicy   string `yaml:"overlap_policy"`
	ScanFollowups   int    `yaml:"scan_followups"`
	AllowUnlisted   bool   `yaml:"allow_unlisted"`
	DiscoverTimeout string `yaml:"discover_timeout"`
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := currentSettings(cmd)
		if err != nil {
			return err
		}
		out := effectiveConfig{
			Path: registry.Path(),
			Effective: effectiveValues{
				Portal:          s.Portal,
				PollInterval:    s.Options.PollInterval.String(),
				RequestTimeout:  s.Options.RequestTimeout.String(),
				BackoffMax:      s.Options.BackoffMax.String(),
				OverlapPolicy:   string(s.Options.Overlap),
				ScanFollowups:   s.Options.ScanFollowups,
				AllowUnlisted:   s.Options.AllowUnlisted,
				DiscoverTimeout: s.DiscoverTimeout.String(),
			},
			File: registry,
		}
		data, err := yaml.Marshal(out)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		fmt.Print(string(data))
		return nil
	},
}

var configNicknameCmd = &cobra.Command{
	Use:   "nickname <address> <name>",
	Short: "Give a portal a name usable with --portal",
	Example: `  wifiprov config nickname 192.168.4.1 kitchen
  wifiprov --portal kitchen status`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry.SetPortalNickname(args[0], args[1])
		if err := registry.Save(); err != nil {
			return err
		}
		ui.NewPrinter(os.Stdout).PrintSuccess("Nickname saved", map[string]string{
			"Portal":   config.HostKey(args[0]),
			"Nickname": args[1],
		})
		return nil
	},
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
