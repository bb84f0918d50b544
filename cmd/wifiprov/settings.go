package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/wifiprov/internal/config"
	"github.com/muurk/wifiprov/internal/portal"
	"github.com/muurk/wifiprov/internal/provision"
	"github.com/muurk/wifiprov/internal/urls"
)

// overrides holds the global flags the user actually set.
type overrides struct {
	Portal         string
	RequestTimeout time.Duration
	PollInterval   time.Duration
	Overlap        string
}

func collectOverrides(cmd *cobra.Command) overrides {
	var o overrides
	if f := cmd.Flag("portal"); f != nil && f.Changed {
		o.Portal = portalAddr
	}
	if f := cmd.Flag("timeout"); f != nil && f.Changed {
		o.RequestTimeout = requestTimeout
	}
	if f := cmd.Flag("poll-interval"); f != nil && f.Changed {
		o.PollInterval = pollInterval
	}
	if f := cmd.Flag("overlap"); f != nil && f.Changed {
		o.Overlap = overlapPolicy
	}
	return o
}

// settings is the effective configuration of one command run.
type settings struct {
	Portal          string // Portal address as typed or configured
	Options         provision.Options
	DiscoverTimeout time.Duration
}

// resolveSettings layers flags over the config file over built-in defaults.
func resolveSettings(reg *config.Registry, o overrides) (*settings, error) {
	prefs := config.DefaultPreferences()
	if reg != nil && reg.Preferences != nil {
		prefs = reg.Preferences
	}

	s := &settings{
		Portal:          prefs.Portal,
		Options:         provision.DefaultOptions(),
		DiscoverTimeout: time.Duration(prefs.DiscoverTimeout) * time.Second,
	}
	if s.Portal == "" {
		s.Portal = urls.DefaultPortal
	}
	if o.Portal != "" {
		s.Portal = o.Portal
	}
	if reg != nil {
		s.Portal = reg.Lookup(s.Portal)
	}

	opts := &s.Options
	if prefs.PollInterval > 0 {
		opts.PollInterval = prefs.PollInterval
	}
	if prefs.RequestTimeout > 0 {
		opts.RequestTimeout = prefs.RequestTimeout
	}
	if prefs.BackoffMax > 0 {
		opts.BackoffMax = prefs.BackoffMax
	}
	if prefs.ScanFollowups != 0 {
		opts.ScanFollowups = prefs.ScanFollowups
	}
	opts.AllowUnlisted = prefs.AllowUnlisted

	overlap := prefs.OverlapPolicy
	if o.Overlap != "" {
		overlap = o.Overlap
	}
	policy, err := provision.ParseOverlapPolicy(overlap)
	if err != nil {
		return nil, err
	}
	opts.Overlap = policy

	if o.PollInterval < 0 || o.RequestTimeout < 0 {
		return nil, fmt.Errorf("durations must not be negative")
	}
	if o.PollInterval > 0 {
		opts.PollInterval = o.PollInterval
	}
	if o.RequestTimeout > 0 {
		opts.RequestTimeout = o.RequestTimeout
	}
	if s.DiscoverTimeout <= 0 {
		s.DiscoverTimeout = 5 * time.Second
	}
	return s, nil
}

// newClient creates the portal client and points the controller's landing
// URL at it.
func (s *settings) newClient() (*portal.Client, error) {
	client, err := portal.NewClient(s.Portal)
	if err != nil {
		return nil, err
	}
	client.SetTimeout(s.Options.RequestTimeout)
	s.Options.LandingURL = client.LandingURL()
	return client, nil
}

// currentSettings resolves settings for cmd against the loaded registry.
func currentSettings(cmd *cobra.Command) (*settings, error) {
	return resolveSettings(registry, collectOverrides(cmd))
}
