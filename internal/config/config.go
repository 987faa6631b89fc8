// Package config loads and saves the fintrack TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/fintrack/internal/invest"
	"github.com/theirongolddev/fintrack/internal/rates"
	"github.com/theirongolddev/fintrack/internal/store"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment overrides.
const (
	EnvDB           = "FINTRACK_DB"
	EnvSMTPPassword = "FINTRACK_SMTP_PASSWORD"
	EnvDaemonAddr   = "FINTRACK_DAEMON_ADDR"
	EnvLogLevel     = "FINTRACK_LOG_LEVEL"
)

// Config holds all fintrack configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Rates      RatesConfig      `toml:"rates"`
	Allocation AllocationConfig `toml:"allocation"`
	Notify     NotifyConfig     `toml:"notify"`
	Appearance AppearanceConfig `toml:"appearance"`
	Daemon     DaemonConfig     `toml:"daemon"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DBPath        string `toml:"db_path,omitempty"`
	SweepSchedule string `toml:"sweep_schedule"`
}

// RatesConfig holds exchange-rate settings.
type RatesConfig struct {
	RefreshMinutes int    `toml:"refresh_minutes"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	AwesomeURL     string `toml:"awesome_url,omitempty"`
	CurrencyURL    string `toml:"currency_url,omitempty"`
}

// AllocationConfig holds the contribution split as percentages.
type AllocationConfig struct {
	Crypto      float64 `toml:"crypto"`
	Dollar      float64 `toml:"dollar"`
	FixedIncome float64 `toml:"fixed_income"`
	BRStocks    float64 `toml:"br_stocks"`
	USStocks    float64 `toml:"us_stocks"`
	USETF       float64 `toml:"us_etf"`
}

// NotifyConfig holds SMTP notification settings. The password is only
// read from the environment.
type NotifyConfig struct {
	Enabled  bool     `toml:"enabled"`
	SMTPHost string   `toml:"smtp_host,omitempty"`
	SMTPPort int      `toml:"smtp_port,omitempty"`
	Username string   `toml:"username,omitempty"`
	From     string   `toml:"from,omitempty"`
	To       []string `toml:"to,omitempty"`
	Password string   `toml:"-"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DaemonConfig holds background service settings.
type DaemonConfig struct {
	Addr           string   `toml:"addr"`
	EventsBuffer   int      `toml:"events_buffer"`
	AllowedOrigins []string `toml:"allowed_origins,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			SweepSchedule: "@every 1h",
		},
		Rates: RatesConfig{
			RefreshMinutes: 10,
			TimeoutSeconds: 10,
		},
		Allocation: AllocationConfig{
			Crypto:      10,
			Dollar:      45,
			FixedIncome: 18,
			BRStocks:    27,
			USStocks:    60,
			USETF:       40,
		},
		Notify: NotifyConfig{
			SMTPPort: 587,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8787",
			EventsBuffer: 200,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fintrack")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "fintrack")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
// A .env file in the working directory is loaded first.
func Load() (Config, error) {
	_ = godotenv.Load()
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config at path and applies environment overrides.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is the user's own config
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return cfg, fmt.Errorf("reading config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDB); v != "" {
		c.General.DBPath = v
	}
	if v := os.Getenv(EnvSMTPPassword); v != "" {
		c.Notify.Password = v
	}
	if v := os.Getenv(EnvDaemonAddr); v != "" {
		c.Daemon.Addr = v
	}
}

// Save writes the config to the default location.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path with owner-only permissions.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // path is the user's own config
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// DBPath returns the configured database path or the default.
func (c Config) DBPath() string {
	if c.General.DBPath != "" {
		return c.General.DBPath
	}
	return store.DefaultPath()
}

// Weights validates the allocation percentages.
func (c Config) Weights() (invest.Weights, error) {
	a := c.Allocation
	return invest.WeightsFromPercent(invest.Percentages{
		Crypto:      a.Crypto,
		Dollar:      a.Dollar,
		FixedIncome: a.FixedIncome,
		BRStocks:    a.BRStocks,
		USStocks:    a.USStocks,
		USETF:       a.USETF,
	})
}

// RefreshInterval is how often the periodic rate source is re-fetched.
func (c Config) RefreshInterval() time.Duration {
	if c.Rates.RefreshMinutes <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.Rates.RefreshMinutes) * time.Minute
}

// RequestTimeout bounds one rate fetch.
func (c Config) RequestTimeout() time.Duration {
	if c.Rates.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Rates.TimeoutSeconds) * time.Second
}

// Endpoints returns the rate endpoints with any URL overrides applied.
// The first is fetched once; the second is refreshed periodically.
func (c Config) Endpoints() (once, periodic rates.Endpoint) {
	once, periodic = rates.AwesomeEndpoint, rates.CurrencyEndpoint
	if u := strings.TrimSpace(c.Rates.AwesomeURL); u != "" {
		once.URL = u
	}
	if u := strings.TrimSpace(c.Rates.CurrencyURL); u != "" {
		periodic.URL = u
	}
	return once, periodic
}

// String renders the split as "crypto dollar fixed br us etf".
func (a AllocationConfig) String() string {
	vals := []float64{a.Crypto, a.Dollar, a.FixedIncome, a.BRStocks, a.USStocks, a.USETF}
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, " ")
}

// ParseAllocation reads six percentages separated by spaces, slashes or
// commas, in String order. The first four must sum to 100, as must the
// last two.
func ParseAllocation(s string) (AllocationConfig, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '/' || r == ',' || r == '\t'
	})
	if len(fields) != 6 {
		return AllocationConfig{}, fmt.Errorf("allocation needs 6 percentages, got %d", len(fields))
	}
	vals := make([]float64, 6)
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSuffix(f, "%"), 64)
		if err != nil {
			return AllocationConfig{}, fmt.Errorf("allocation: %q is not a number", f)
		}
		vals[i] = v
	}
	a := AllocationConfig{
		Crypto:      vals[0],
		Dollar:      vals[1],
		FixedIncome: vals[2],
		BRStocks:    vals[3],
		USStocks:    vals[4],
		USETF:       vals[5],
	}
	if _, err := invest.WeightsFromPercent(invest.Percentages(a)); err != nil {
		return AllocationConfig{}, err
	}
	return a, nil
}

// NotifyReady reports whether e-mail notifications can be sent.
func (c Config) NotifyReady() bool {
	n := c.Notify
	return n.Enabled && n.SMTPHost != "" && n.From != "" && len(n.To) > 0
}
