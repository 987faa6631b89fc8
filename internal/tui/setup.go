package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// newSetupValues seeds the first-run wizard from the loaded config.
func newSetupValues(cfg config.Config) *formValues {
	name := cfg.Appearance.Theme
	if !theme.Known(name) {
		name = theme.FlexokiDark.Name
	}
	return &formValues{
		theme:      name,
		refresh:    strconv.Itoa(int(cfg.RefreshInterval().Minutes())),
		allocation: cfg.Allocation.String(),
	}
}

func newSetupForm(v *formValues) *huh.Form {
	opts := make([]huh.Option[string], len(theme.All))
	for i, t := range theme.All {
		opts[i] = huh.NewOption(t.Name, t.Name)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("fintrack").
				Description("Track subscriptions, debts and investments from the terminal.\n"+
					"A few preferences first; everything can be changed later in Settings."),
			huh.NewSelect[string]().Title("Theme").Options(opts...).Value(&v.theme),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Exchange-rate refresh (minutes)").
				Value(&v.refresh).
				Validate(func(s string) error {
					if n, err := strconv.Atoi(strings.TrimSpace(s)); err != nil || n < 1 {
						return fmt.Errorf("enter a whole number of minutes")
					}
					return nil
				}),
			huh.NewInput().
				Title("Investment split (%)").
				Description("crypto dollar fixed-income br-stocks, then us-stocks us-etf").
				Value(&v.allocation).
				Validate(func(s string) error {
					_, err := config.ParseAllocation(s)
					return err
				}),
		),
	)
}

// applySetup writes the wizard's answers to the config file.
func (a *App) applySetup(v *formValues) error {
	cfg := a.cfg
	alloc, err := config.ParseAllocation(v.allocation)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(strings.TrimSpace(v.refresh))
	if err != nil || n < 1 {
		return fmt.Errorf("invalid refresh interval %q", v.refresh)
	}
	cfg.Appearance.Theme = v.theme
	cfg.Rates.RefreshMinutes = n
	cfg.Allocation = alloc
	return a.applyConfig(cfg)
}
