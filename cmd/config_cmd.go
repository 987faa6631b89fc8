package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/fintrack/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Database:       %s\n", cfg.DBPath())
	fmt.Printf("    Sweep schedule: %s\n", cfg.General.SweepSchedule)
	fmt.Println()

	once, periodic := cfg.Endpoints()
	fmt.Println("  [Rates]")
	fmt.Printf("    Refresh every: %s\n", cfg.RefreshInterval())
	fmt.Printf("    Timeout:       %s\n", cfg.RequestTimeout())
	fmt.Printf("    At startup:    %s\n", once.URL)
	fmt.Printf("    Periodic:      %s\n", periodic.URL)
	fmt.Println()

	a := cfg.Allocation
	fmt.Println("  [Allocation]")
	fmt.Printf("    Crypto %g%%, Dollar %g%%, Fixed income %g%%, BR stocks %g%%\n", a.Crypto, a.Dollar, a.FixedIncome, a.BRStocks)
	fmt.Printf("    Dollar split: US stocks %g%%, US ETFs %g%%\n", a.USStocks, a.USETF)
	if _, err := cfg.Weights(); err != nil {
		fmt.Printf("    Invalid: %v\n", err)
	}
	fmt.Println()

	n := cfg.Notify
	fmt.Println("  [Notify]")
	fmt.Printf("    Enabled:  %v\n", n.Enabled)
	if n.SMTPHost != "" {
		fmt.Printf("    SMTP:     %s:%d\n", n.SMTPHost, n.SMTPPort)
	}
	if n.Username != "" {
		fmt.Printf("    Username: %s\n", n.Username)
	}
	if n.Password != "" {
		fmt.Printf("    Password: %s\n", maskSecret(n.Password))
	} else {
		fmt.Printf("    Password: not set ($%s)\n", config.EnvSMTPPassword)
	}
	if n.From != "" {
		fmt.Printf("    From:     %s\n", n.From)
	}
	if len(n.To) > 0 {
		fmt.Printf("    To:       %s\n", strings.Join(n.To, ", "))
	}
	if n.Enabled && !cfg.NotifyReady() {
		fmt.Println("    Incomplete: smtp_host, from and to are required")
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:       %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Events buffer: %d\n", cfg.Daemon.EventsBuffer)
	if len(cfg.Daemon.AllowedOrigins) > 0 {
		fmt.Printf("    CORS origins:  %s\n", strings.Join(cfg.Daemon.AllowedOrigins, ", "))
	}
	fmt.Println()

	fmt.Println("  Run `fintrack setup` to reconfigure.")
	return nil
}

func maskSecret(s string) string {
	if len(s) > 16 {
		return s[:4] + "..." + s[len(s)-4:]
	}
	return "****"
}
