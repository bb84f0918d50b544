package main

import (
	"testing"
	"time"

	"github.com/muurk/wifiprov/internal/config"
	"github.com/muurk/wifiprov/internal/provision"
	"github.com/muurk/wifiprov/internal/urls"
)

func TestResolveSettings_Defaults(t *testing.T) {
	s, err := resolveSettings(nil, overrides{})
	if err != nil {
		t.Fatalf("resolveSettings() error = %v", err)
	}
	if s.Portal != urls.DefaultPortal {
		t.Errorf("Portal = %q, want %q", s.Portal, urls.DefaultPortal)
	}
	if s.Options.PollInterval != provision.DefaultPollInterval {
		t.Errorf("PollInterval = %v, want %v", s.Options.PollInterval, provision.DefaultPollInterval)
	}
	if s.Options.RequestTimeout != provision.DefaultRequestTimeout {
		t.Errorf("RequestTimeout = %v, want %v", s.Options.RequestTimeout, provision.DefaultRequestTimeout)
	}
	if s.Options.Overlap != provision.OverlapIgnore {
		t.Errorf("Overlap = %q, want ignore", s.Options.Overlap)
	}
	if s.DiscoverTimeout != 5*time.Second {
		t.Errorf("DiscoverTimeout = %v, want 5s", s.DiscoverTimeout)
	}
}

func TestResolveSettings_ConfigThenFlags(t *testing.T) {
	reg := config.NewRegistry()
	reg.Preferences.Portal = "10.0.0.1:8080"
	reg.Preferences.PollInterval = 3 * time.Second
	reg.Preferences.RequestTimeout = 4 * time.Second
	reg.Preferences.BackoffMax = time.Minute
	reg.Preferences.OverlapPolicy = "replace"
	reg.Preferences.ScanFollowups = -1
	reg.Preferences.AllowUnlisted = true
	reg.Preferences.DiscoverTimeout = 9

	s, err := resolveSettings(reg, overrides{})
	if err != nil {
		t.Fatalf("resolveSettings() error = %v", err)
	}
	if s.Portal != "10.0.0.1:8080" {
		t.Errorf("Portal = %q, want config value", s.Portal)
	}
	o := s.Options
	if o.PollInterval != 3*time.Second || o.RequestTimeout != 4*time.Second || o.BackoffMax != time.Minute {
		t.Errorf("durations = %v/%v/%v, want config values", o.PollInterval, o.RequestTimeout, o.BackoffMax)
	}
	if o.Overlap != provision.OverlapReplace {
		t.Errorf("Overlap = %q, want replace", o.Overlap)
	}
	if o.ScanFollowups != -1 || !o.AllowUnlisted {
		t.Errorf("ScanFollowups = %d AllowUnlisted = %v", o.ScanFollowups, o.AllowUnlisted)
	}
	if s.DiscoverTimeout != 9*time.Second {
		t.Errorf("DiscoverTimeout = %v, want 9s", s.DiscoverTimeout)
	}

	s, err = resolveSettings(reg, overrides{
		Portal:         "192.168.4.1",
		PollInterval:   500 * time.Millisecond,
		RequestTimeout: 2 * time.Second,
		Overlap:        "ignore",
	})
	if err != nil {
		t.Fatalf("resolveSettings() error = %v", err)
	}
	if s.Portal != "192.168.4.1" {
		t.Errorf("Portal = %q, want flag value", s.Portal)
	}
	if s.Options.PollInterval != 500*time.Millisecond || s.Options.RequestTimeout != 2*time.Second {
		t.Errorf("flags did not override durations: %v/%v", s.Options.PollInterval, s.Options.RequestTimeout)
	}
	if s.Options.Overlap != provision.OverlapIgnore {
		t.Errorf("Overlap = %q, want flag value ignore", s.Options.Overlap)
	}
}

func TestResolveSettings_Nickname(t *testing.T) {
	reg := config.NewRegistry()
	reg.SetPortalNickname("10.0.0.7", "garage")

	s, err := resolveSettings(reg, overrides{Portal: "garage"})
	if err != nil {
		t.Fatalf("resolveSettings() error = %v", err)
	}
	if s.Portal != "10.0.0.7" {
		t.Errorf("Portal = %q, want nickname resolved to 10.0.0.7", s.Portal)
	}
}

func TestResolveSettings_Errors(t *testing.T) {
	if _, err := resolveSettings(nil, overrides{Overlap: "queue"}); err == nil {
		t.Error("expected error for unknown overlap policy")
	}
	if _, err := resolveSettings(nil, overrides{PollInterval: -time.Second}); err == nil {
		t.Error("expected error for negative poll interval")
	}
}

func TestSettingsNewClient(t *testing.T) {
	s, err := resolveSettings(nil, overrides{Portal: "10.1.2.3:8080", RequestTimeout: 3 * time.Second})
	if err != nil {
		t.Fatalf("resolveSettings() error = %v", err)
	}
	client, err := s.newClient()
	if err != nil {
		t.Fatalf("newClient() error = %v", err)
	}
	if client.HTTPClient.Timeout != 3*time.Second {
		t.Errorf("client timeout = %v, want 3s", client.HTTPClient.Timeout)
	}
	if want := "http://10.1.2.3:8080/hello.html"; s.Options.LandingURL != want {
		t.Errorf("LandingURL = %q, want %q", s.Options.LandingURL, want)
	}
}
