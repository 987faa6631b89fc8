package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

type setupAnswers struct {
	theme      string
	refresh    string
	allocation string
	notify     bool
	smtpHost   string
	smtpPort   string
	from       string
	to         string
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg, _ := config.Load()

	ans := &setupAnswers{
		theme:      cfg.Appearance.Theme,
		refresh:    strconv.Itoa(int(cfg.RefreshInterval().Minutes())),
		allocation: cfg.Allocation.String(),
		notify:     cfg.Notify.Enabled,
		smtpHost:   cfg.Notify.SMTPHost,
		smtpPort:   strconv.Itoa(cfg.Notify.SMTPPort),
		from:       cfg.Notify.From,
		to:         strings.Join(cfg.Notify.To, ", "),
	}
	if !theme.Known(ans.theme) {
		ans.theme = theme.FlexokiDark.Name
	}

	if err := newSetupForm(ans).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled, nothing saved.")
			return nil
		}
		return fmt.Errorf("setup: %w", err)
	}

	if err := applySetupAnswers(&cfg, ans); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	if cfg.Notify.Enabled {
		fmt.Printf("  Set $%s for the SMTP password.\n", config.EnvSMTPPassword)
	}
	fmt.Println("  Run `fintrack setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}

func newSetupForm(ans *setupAnswers) *huh.Form {
	opts := make([]huh.Option[string], len(theme.All))
	for i, t := range theme.All {
		opts[i] = huh.NewOption(t.Name, t.Name)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to fintrack").
				Description("Subscriptions, debts and investments from the terminal."),
			huh.NewSelect[string]().Title("Color theme").Options(opts...).Value(&ans.theme),
			huh.NewInput().
				Title("Exchange-rate refresh (minutes)").
				Value(&ans.refresh).
				Validate(validateMinutes),
			huh.NewInput().
				Title("Investment split (%)").
				Description("crypto dollar fixed-income br-stocks, then us-stocks us-etf").
				Value(&ans.allocation).
				Validate(func(s string) error {
					_, err := config.ParseAllocation(s)
					return err
				}),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("E-mail alerts for overdue bills?").
				Description("Sent by the daemon. The password is read from $"+config.EnvSMTPPassword+".").
				Value(&ans.notify),
		),
		huh.NewGroup(
			huh.NewInput().Title("SMTP host").Value(&ans.smtpHost),
			huh.NewInput().Title("SMTP port").Value(&ans.smtpPort).Validate(validatePort),
			huh.NewInput().Title("From").Value(&ans.from),
			huh.NewInput().Title("To (comma separated)").Value(&ans.to),
		).WithHideFunc(func() bool { return !ans.notify }),
	)
}

func validateMinutes(s string) error {
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err != nil || n < 1 {
		return errors.New("enter a whole number of minutes")
	}
	return nil
}

func validatePort(s string) error {
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err != nil || n < 1 || n > 65535 {
		return errors.New("enter a port between 1 and 65535")
	}
	return nil
}

// applySetupAnswers copies validated wizard answers into cfg.
func applySetupAnswers(cfg *config.Config, ans *setupAnswers) error {
	alloc, err := config.ParseAllocation(ans.allocation)
	if err != nil {
		return err
	}
	if err := validateMinutes(ans.refresh); err != nil {
		return err
	}
	refresh, _ := strconv.Atoi(strings.TrimSpace(ans.refresh))

	cfg.Appearance.Theme = ans.theme
	cfg.Rates.RefreshMinutes = refresh
	cfg.Allocation = alloc
	cfg.Notify.Enabled = ans.notify
	if !ans.notify {
		return nil
	}

	if err := validatePort(ans.smtpPort); err != nil {
		return err
	}
	port, _ := strconv.Atoi(strings.TrimSpace(ans.smtpPort))
	cfg.Notify.SMTPHost = strings.TrimSpace(ans.smtpHost)
	cfg.Notify.SMTPPort = port
	cfg.Notify.From = strings.TrimSpace(ans.from)
	cfg.Notify.To = nil
	for _, addr := range strings.Split(ans.to, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			cfg.Notify.To = append(cfg.Notify.To, addr)
		}
	}
	return nil
}
