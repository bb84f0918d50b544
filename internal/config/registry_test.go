package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	if !strings.Contains(configDir, "wifiprov") {
		t.Errorf("GetConfigDir() = %v, should contain 'wifiprov'", configDir)
	}

	t.Logf("Config directory: %s", configDir)
}

func TestGetConfigDir_XDG(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux and other Unix systems")
	}

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if want := filepath.Join(dir, "wifiprov"); configDir != want {
		t.Errorf("GetConfigDir() = %v, want %v", configDir, want)
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}
	if reg.Portals == nil {
		t.Error("NewRegistry().Portals should not be nil")
	}
	if reg.Preferences == nil {
		t.Fatal("NewRegistry().Preferences should not be nil")
	}
	if reg.Preferences.PollInterval != 1500*time.Millisecond {
		t.Errorf("PollInterval = %v, want 1.5s", reg.Preferences.PollInterval)
	}
	if reg.Preferences.RequestTimeout != 8*time.Second {
		t.Errorf("RequestTimeout = %v, want 8s", reg.Preferences.RequestTimeout)
	}
	if reg.Preferences.OverlapPolicy != "ignore" {
		t.Errorf("OverlapPolicy = %q, want ignore", reg.Preferences.OverlapPolicy)
	}
}

func TestHostKey(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{"192.168.4.1", "192.168.4.1"},
		{"http://192.168.4.1", "192.168.4.1"},
		{"http://192.168.4.1/hello.html", "192.168.4.1"},
		{"Portal.Local:8080", "portal.local:8080"},
		{" http://10.0.0.1:80 ", "10.0.0.1:80"},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			if got := HostKey(tt.addr); got != tt.want {
				t.Errorf("HostKey(%q) = %q, want %q", tt.addr, got, tt.want)
			}
		})
	}
}

func TestRegistryEnsurePortal(t *testing.T) {
	reg := NewRegistry()

	p1 := reg.EnsurePortal("192.168.4.1")
	if p1 == nil {
		t.Fatal("EnsurePortal() returned nil")
	}
	if p2 := reg.EnsurePortal("http://192.168.4.1/"); p1 != p2 {
		t.Error("EnsurePortal() should return same instance for the same host")
	}
	if p3 := reg.EnsurePortal("192.168.4.2"); p1 == p3 {
		t.Error("EnsurePortal() should create new instance for a different host")
	}
}

func TestRegistryRecordConnection(t *testing.T) {
	reg := NewRegistry()

	before := time.Now()
	reg.RecordConnection("http://192.168.4.1", "HomeNet", "192.168.1.57")
	after := time.Now()

	p := reg.GetPortal("192.168.4.1")
	if p == nil {
		t.Fatal("portal should exist after RecordConnection()")
	}
	if p.LastSSID != "HomeNet" {
		t.Errorf("LastSSID = %v, want HomeNet", p.LastSSID)
	}
	if p.LastIP != "192.168.1.57" {
		t.Errorf("LastIP = %v, want 192.168.1.57", p.LastIP)
	}
	if p.LastSeen.Before(before) || p.LastSeen.After(after) {
		t.Errorf("LastSeen = %v, should be between %v and %v", p.LastSeen, before, after)
	}
}

func TestRegistryNicknameAndForget(t *testing.T) {
	reg := NewRegistry()
	reg.SetPortalNickname("192.168.4.1", "Kitchen display")

	if got := reg.GetPortal("192.168.4.1").Nickname; got != "Kitchen display" {
		t.Errorf("Nickname = %q, want Kitchen display", got)
	}
	if !reg.ForgetPortal("http://192.168.4.1") {
		t.Error("ForgetPortal() = false for a known portal")
	}
	if reg.ForgetPortal("192.168.4.1") {
		t.Error("ForgetPortal() = true for an unknown portal")
	}
	if reg.GetPortal("192.168.4.1") != nil {
		t.Error("portal still present after ForgetPortal()")
	}
}

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry()
	reg.SetPortalNickname("192.168.4.1:8080", "Kitchen display")

	tests := []struct {
		in   string
		want string
	}{
		{"Kitchen display", "192.168.4.1:8080"},
		{"kitchen DISPLAY", "192.168.4.1:8080"},
		{"10.0.0.5", "10.0.0.5"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := reg.Lookup(tt.in); got != tt.want {
			t.Errorf("Lookup(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPreferencesValidate(t *testing.T) {
	tests := []struct {
		name    string
		prefs   Preferences
		wantErr bool
	}{
		{name: "defaults", prefs: *DefaultPreferences()},
		{name: "zero", prefs: Preferences{}},
		{name: "replace", prefs: Preferences{OverlapPolicy: "Replace"}},
		{name: "bad policy", prefs: Preferences{OverlapPolicy: "queue"}, wantErr: true},
		{name: "negative duration", prefs: Preferences{PollInterval: -time.Second}, wantErr: true},
		{name: "negative discover", prefs: Preferences{DiscoverTimeout: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.prefs.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegistrySaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	reg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() of missing file error = %v", err)
	}
	if reg.Path() != path {
		t.Errorf("Path() = %v, want %v", reg.Path(), path)
	}

	reg.Preferences.Portal = "http://10.0.0.1"
	reg.Preferences.OverlapPolicy = "replace"
	reg.RecordConnection("10.0.0.1", "HomeNet", "192.168.1.57")
	reg.SetPortalNickname("10.0.0.1", "Hallway")

	if err := reg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.HasPrefix(text, "# wifiprov configuration file") {
		t.Error("saved file is missing the header comment")
	}
	if !strings.Contains(text, "poll_interval: 1.5s") {
		t.Errorf("durations should be written as strings, got:\n%s", text)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Preferences.Portal != "http://10.0.0.1" {
		t.Errorf("Portal = %v, want http://10.0.0.1", loaded.Preferences.Portal)
	}
	if loaded.Preferences.PollInterval != 1500*time.Millisecond {
		t.Errorf("PollInterval = %v, want 1.5s", loaded.Preferences.PollInterval)
	}
	p := loaded.GetPortal("10.0.0.1")
	if p == nil {
		t.Fatal("portal missing after reload")
	}
	if p.Nickname != "Hallway" || p.LastSSID != "HomeNet" {
		t.Errorf("portal = %+v, want nickname Hallway and last SSID HomeNet", p)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "bad yaml", content: "version: [", wantErr: "failed to parse"},
		{name: "wrong version", content: "version: 2\n", wantErr: "unsupported config version"},
		{name: "bad policy", content: "version: 1\npreferences:\n  overlap_policy: queue\n", wantErr: "invalid preferences"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_FillsMissingSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("version: 1\n"), 0600); err != nil {
		t.Fatal(err)
	}

	reg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if reg.Portals == nil || reg.Preferences == nil {
		t.Error("Load() should initialize missing sections")
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	if _, err := CreateDefaultConfig(path, false); err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}
	if _, err := CreateDefaultConfig(path, false); err == nil {
		t.Error("CreateDefaultConfig() should refuse to overwrite")
	}
	if _, err := CreateDefaultConfig(path, true); err != nil {
		t.Errorf("CreateDefaultConfig(force) error = %v", err)
	}

	reg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if reg.Preferences.ScanFollowups != 10 {
		t.Errorf("ScanFollowups = %v, want 10", reg.Preferences.ScanFollowups)
	}
}

func BenchmarkGetConfigDir(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = GetConfigDir()
	}
}

func BenchmarkEnsurePortal(b *testing.B) {
	reg := NewRegistry()
	for i := 0; i < b.N; i++ {
		reg.EnsurePortal("192.168.4.1")
	}
}
