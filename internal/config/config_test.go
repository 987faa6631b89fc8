package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/fintrack/internal/invest"
	"github.com/theirongolddev/fintrack/internal/rates"
)

func TestLoadFromMissingReturnsDefaults(t *testing.T) {
	t.Setenv(EnvDB, "")
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.General.SweepSchedule != "@every 1h" || cfg.Daemon.EventsBuffer != 200 {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.RefreshInterval() != 10*time.Minute {
		t.Fatalf("RefreshInterval = %s", cfg.RefreshInterval())
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Setenv(EnvSMTPPassword, "")
	path := filepath.Join(t.TempDir(), "fintrack", "config.toml")

	cfg := DefaultConfig()
	cfg.General.DBPath = "/tmp/x.db"
	cfg.Notify.To = []string{"me@example.com"}
	cfg.Notify.Password = "secret"
	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, want 600", perm)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.DBPath() != "/tmp/x.db" || len(got.Notify.To) != 1 {
		t.Errorf("reloaded = %+v", got)
	}
	if got.Notify.Password != "" {
		t.Error("password must not be written to disk")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvDB, "/data/env.db")
	t.Setenv(EnvSMTPPassword, "pw")
	t.Setenv(EnvDaemonAddr, ":9999")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBPath() != "/data/env.db" || cfg.Notify.Password != "pw" || cfg.Daemon.Addr != ":9999" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[general\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestWeights(t *testing.T) {
	cfg := DefaultConfig()
	w, err := cfg.Weights()
	if err != nil {
		t.Fatalf("default weights: %v", err)
	}
	if !w.Dollar.Equal(invest.DefaultWeights().Dollar) || !w.USETF.Equal(invest.DefaultWeights().USETF) {
		t.Fatalf("weights = %+v, want defaults", w)
	}

	cfg.Allocation.Crypto = 50
	if _, err := cfg.Weights(); !errors.Is(err, invest.ErrInvalidAllocation) {
		t.Fatalf("err = %v, want ErrInvalidAllocation", err)
	}
}

func TestEndpointsOverride(t *testing.T) {
	cfg := DefaultConfig()
	once, periodic := cfg.Endpoints()
	if once.Source != rates.AwesomeAPI || periodic.URL != rates.CurrencyEndpoint.URL {
		t.Fatalf("defaults = %+v %+v", once, periodic)
	}
	cfg.Rates.CurrencyURL = "http://localhost/brl.json"
	if _, periodic := cfg.Endpoints(); periodic.URL != "http://localhost/brl.json" || periodic.Path != "$.brl.usd" {
		t.Fatalf("override = %+v", periodic)
	}
}

func TestNotifyReady(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.NotifyReady() {
		t.Fatal("notify should be off by default")
	}
	cfg.Notify = NotifyConfig{Enabled: true, SMTPHost: "smtp.example.com", From: "a@example.com", To: []string{"b@example.com"}}
	if !cfg.NotifyReady() {
		t.Fatal("notify should be ready")
	}
}

func TestParseAllocation(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"10 45 18 27 60 40", false},
		{"10/45/18/27 60/40", false},
		{"25% 25% 25% 25% 50% 50%", false},
		{"10 45 18 27 60", true},
		{"10 45 18 28 60 40", true},
		{"10 45 18 27 60 41", true},
		{"ten 45 18 27 60 40", true},
	}
	for _, tt := range tests {
		_, err := ParseAllocation(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseAllocation(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}

	p, _ := ParseAllocation("10 45 18 27 60 40")
	if got := p.String(); got != "10 45 18 27 60 40" {
		t.Errorf("String = %q", got)
	}
}
