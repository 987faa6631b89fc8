package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/tui/components"
	"github.com/theirongolddev/fintrack/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	settingsFieldTheme = iota
	settingsFieldRefresh
	settingsFieldAllocation
	settingsFieldNotify
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool
	saveErr error
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 64
	ti.Width = 40
	return ti
}

func (a App) updateSettingsKeys(key string) (tea.Model, tea.Cmd, bool) {
	if key != "enter" {
		return a, nil, false
	}
	a.settings.editing = true
	a.settings.saved = false

	ti := newSettingsInput()
	switch a.settings.cursor {
	case settingsFieldTheme:
		names := make([]string, len(theme.All))
		for i, th := range theme.All {
			names[i] = th.Name
		}
		ti.Placeholder = strings.Join(names, ", ")
		ti.SetValue(a.cfg.Appearance.Theme)
	case settingsFieldRefresh:
		ti.Placeholder = "10 (minutes)"
		ti.SetValue(strconv.Itoa(int(a.cfg.RefreshInterval().Minutes())))
	case settingsFieldAllocation:
		ti.Placeholder = "crypto dollar fixed br us-stocks us-etf"
		ti.SetValue(a.cfg.Allocation.String())
	case settingsFieldNotify:
		ti.Placeholder = "true or false"
		ti.SetValue(strconv.FormatBool(a.cfg.Notify.Enabled))
	}

	ti.Focus()
	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd(), true
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settings.editing = false
		a.settings.saveErr = a.settingsSave(strings.TrimSpace(a.settings.input.Value()))
		a.settings.saved = a.settings.saveErr == nil
		if a.settings.saveErr != nil {
			a.flashErr(a.settings.saveErr)
		} else {
			a.flash("Settings saved")
			a.recompute()
		}
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave applies val to the selected field and writes the config.
func (a *App) settingsSave(val string) error {
	cfg := a.cfg
	switch a.settings.cursor {
	case settingsFieldTheme:
		if !theme.Known(val) {
			return fmt.Errorf("unknown theme %q", val)
		}
		cfg.Appearance.Theme = val
	case settingsFieldRefresh:
		n, err := strconv.Atoi(val)
		if err != nil || n < 1 {
			return fmt.Errorf("refresh interval must be a whole number of minutes, got %q", val)
		}
		cfg.Rates.RefreshMinutes = n
	case settingsFieldAllocation:
		alloc, err := config.ParseAllocation(val)
		if err != nil {
			return err
		}
		cfg.Allocation = alloc
	case settingsFieldNotify:
		on, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("notifications must be true or false, got %q", val)
		}
		cfg.Notify.Enabled = on
	}
	return a.applyConfig(cfg)
}

// applyConfig saves cfg and makes it the live configuration.
func (a *App) applyConfig(cfg config.Config) error {
	weights, err := cfg.Weights()
	if err != nil {
		return err
	}
	if err := config.SaveTo(a.configPath, cfg); err != nil {
		return err
	}
	a.cfg = cfg
	a.weights = weights
	theme.SetActive(cfg.Appearance.Theme)
	a.spinner.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)
	a.log.WithField("path", a.configPath).Info("config saved")
	return nil
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	cfg := a.cfg

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	notify := "off"
	if cfg.Notify.Enabled {
		notify = "on"
		if !cfg.NotifyReady() {
			notify += " (SMTP not configured)"
		}
	}

	fields := []struct{ label, value string }{
		{"Theme", cfg.Appearance.Theme},
		{"Rate refresh", fmt.Sprintf("every %d min", int(cfg.RefreshInterval().Minutes()))},
		{"Allocation", cfg.Allocation.String() + "  (crypto dollar fixed br · us etf)"},
		{"Notifications", notify},
	}

	innerW := components.CardInnerWidth(cw)
	var formBody strings.Builder
	for i, f := range fields {
		if a.settings.editing && i == a.settings.cursor {
			formBody.WriteString(markerStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-16s ", f.label)))
			formBody.WriteString(a.settings.input.View())
			formBody.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-16s ", f.label+":"))
			value := selectedStyle.Render(f.value)
			formBody.WriteString(marker + label + value)
			if pad := innerW - lipgloss.Width(marker) - lipgloss.Width(label) - lipgloss.Width(value); pad > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad)))
			}
		} else {
			formBody.WriteString(labelStyle.Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-16s ", f.label+":")))
			formBody.WriteString(valueStyle.Render(f.value))
		}
		formBody.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
		formBody.WriteString("\n")
		formBody.WriteString(warnStyle.Render(truncStr("Save failed: "+a.settings.saveErr.Error(), innerW)))
	} else if a.settings.saved {
		formBody.WriteString("\n")
		formBody.WriteString(greenStyle.Render("Saved!"))
	}

	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	var infoBody strings.Builder
	infoBody.WriteString(labelStyle.Render("Database:     ") + valueStyle.Render(truncStr(cfg.DBPath(), innerW-14)) + "\n")
	infoBody.WriteString(labelStyle.Render("Config file:  ") + valueStyle.Render(truncStr(a.configPath, innerW-14)) + "\n")
	once, periodic := cfg.Endpoints()
	infoBody.WriteString(labelStyle.Render("Rate sources: ") + valueStyle.Render(truncStr(string(once.Source)+", "+string(periodic.Source), innerW-14)))
	if a.loadErr != nil {
		infoBody.WriteString("\n")
		infoBody.WriteString(lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Render(truncStr("Load error: "+a.loadErr.Error(), innerW)))
	}

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", formBody.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("General", infoBody.String(), cw))
	return b.String()
}
