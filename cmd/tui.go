package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/rates"
	"github.com/theirongolddev/fintrack/internal/store"
	"github.com/theirongolddev/fintrack/internal/tui"
	"github.com/theirongolddev/fintrack/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	cfg, cfgErr := loadConfig()
	theme.SetActive(cfg.Appearance.Theme)

	// The alternate screen owns stdout, so logs go to a file.
	if err := os.MkdirAll(store.CacheDir(), 0o750); err == nil {
		path := filepath.Join(store.CacheDir(), "fintrack.log")
		//nolint:gosec // log path is under the user's cache dir
		if f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600); err == nil {
			defer func() { _ = f.Close() }()
			log.SetOutput(f)
		}
	}
	if cfgErr != nil {
		log.WithError(cfgErr).Warn("config not loaded, using defaults")
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	app := tui.NewApp(tui.Options{
		KV:         db,
		Config:     cfg,
		ConfigPath: config.ConfigPath(),
		Rates:      rates.NewClient(cfg.RequestTimeout(), log),
		Log:        log,
		NeedSetup:  !config.Exists(),
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
