// Package tui provides the interactive Bubble Tea dashboard for fintrack.
package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/date"
	"github.com/theirongolddev/fintrack/internal/debt"
	"github.com/theirongolddev/fintrack/internal/invest"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/notify"
	"github.com/theirongolddev/fintrack/internal/rates"
	"github.com/theirongolddev/fintrack/internal/store"
	"github.com/theirongolddev/fintrack/internal/subscription"
	"github.com/theirongolddev/fintrack/internal/tui/components"
	"github.com/theirongolddev/fintrack/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
)

// Options configures NewApp.
type Options struct {
	KV         store.KV
	Config     config.Config
	ConfigPath string // where settings are saved; defaults to config.ConfigPath()
	Rates      *rates.Client
	Log        *logrus.Logger
	Today      func() date.Date // defaults to date.Today
	NeedSetup  bool             // show the first-run wizard once data is loaded
}

// App is the root Bubble Tea model.
type App struct {
	// Data
	kv      store.KV
	subs    *subscription.Book
	debts   *debt.Book
	wallet  *invest.Book
	loaded  bool
	loadErr error

	cfg        config.Config
	configPath string
	weights    invest.Weights
	rc         *rates.Client
	log        *logrus.Logger
	today      func() date.Date
	day        date.Date // date of the last evaluation pass

	// Exchange rates: one source is read once per session, the other on a timer
	onceQuote     rates.Quote
	periodicQuote rates.Quote
	fetching      int
	lastRate      time.Time

	// Derived for the current filters
	subItems   []model.Subscription
	subRows    []subscription.Row
	subSummary subscription.Summary
	debtItems  []model.Debt
	debtRows   []debt.Row
	debtTotals debt.Totals
	pl         invest.Report
	debtStates map[string]debt.State // last announced state per debt

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Per-tab state
	subState     subsState
	debtState    debtsState
	calc         calcState
	walletCursor int
	settings     settingsState

	// Modal huh form: add/edit, confirmations and first-run setup
	form      *huh.Form
	formKind  formKind
	formVals  *formValues
	needSetup bool

	toast   toast
	spinner spinner.Model
}

const (
	tabSubscriptions = iota
	tabDebts
	tabCalculator
	tabWallet
	tabSettings
)

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180
	minContentHeight = 5

	toastDuration = 3 * time.Second
)

type toast struct {
	text  string
	err   bool
	until time.Time
}

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	log := opts.Log
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	today := opts.Today
	if today == nil {
		today = date.Today
	}
	path := opts.ConfigPath
	if path == "" {
		path = config.ConfigPath()
	}

	weights, err := opts.Config.Weights()
	if err != nil {
		log.WithError(err).Warn("invalid allocation in config, using defaults")
		weights = invest.DefaultWeights()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	a := App{
		kv:         opts.KV,
		cfg:        opts.Config,
		configPath: path,
		weights:    weights,
		rc:         opts.Rates,
		log:        log,
		today:      today,
		needSetup:  opts.NeedSetup,
		spinner:    sp,
		subState:   subsState{filter: subscription.FilterAll},
		debtState:  debtsState{filter: debt.FilterAll},
	}
	if a.rc != nil {
		a.fetching = 2 // Init starts both sources
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnableMouseCellMotion,
		loadDataCmd(a.kv, a.weights),
		a.spinner.Tick,
		tickCmd(),
	}
	if a.rc != nil {
		once, periodic := a.cfg.Endpoints()
		cmds = append(cmds, fetchRateCmd(a.rc, once), fetchRateCmd(a.rc, periodic))
	}
	return tea.Batch(cmds...)
}

// recompute re-evaluates every widget for today and the active filters.
// Subscription evaluation persists new overdue flags and delay history.
func (a *App) recompute() {
	if !a.loaded {
		return
	}
	today := a.today()
	a.day = today
	var alerts []string

	if a.subs != nil {
		items, sum, notices, err := a.subs.View(today, a.subState.filter)
		if err != nil {
			a.flashErr(fmt.Errorf("saving subscriptions: %w", err))
		}
		a.subItems, a.subSummary = items, sum
		a.subRows = subscription.Rows(items)
		a.subState.cursor = clampCursor(a.subState.cursor, len(a.subRows))
		alerts = append(alerts, a.noticeAlerts(notices)...)
	}

	if a.debts != nil {
		all := a.debts.Debts()
		a.debtItems = debt.Apply(all, a.debtState.filter)
		a.debtRows = debt.Rows(a.debtItems, today)
		a.debtTotals = debt.Summarize(all, today)
		a.debtState.cursor = clampCursor(a.debtState.cursor, len(a.debtRows))
		alerts = append(alerts, a.debtAlerts(all, today)...)
	}

	if a.wallet != nil {
		a.pl = a.wallet.ProfitLoss()
		a.walletCursor = clampCursor(a.walletCursor, len(a.pl.Lines()))
	}

	a.calc.alloc = a.weights.Allocate(a.calc.amount)
	a.announce(alerts)
}

func (a *App) noticeAlerts(notices []subscription.Notice) []string {
	alerts := make([]string, 0, len(notices))
	for _, n := range notices {
		a.log.WithFields(logrus.Fields{"id": n.ID, "times": n.Times}).Warn(n.Message())
		alerts = append(alerts, n.Message())
	}
	return alerts
}

// debtAlerts reports debts that turned overdue or nearing-due since the
// last pass. Each state change is announced once.
func (a *App) debtAlerts(all []model.Debt, today date.Date) []string {
	if a.debtStates == nil {
		a.debtStates = make(map[string]debt.State, len(all))
	}
	var alerts []string
	seen := make(map[string]bool, len(all))
	for _, d := range all {
		seen[d.ID] = true
		state := debt.Classify(d, today)
		if a.debtStates[d.ID] == state {
			continue
		}
		a.debtStates[d.ID] = state
		if m, ok := notify.FromDebt(d, today, time.Now()); ok {
			a.log.WithFields(logrus.Fields{"id": d.ID, "state": state}).Warn(m.Subject)
			alerts = append(alerts, m.Subject)
		}
	}
	for id := range a.debtStates {
		if !seen[id] {
			delete(a.debtStates, id)
		}
	}
	return alerts
}

func (a *App) announce(alerts []string) {
	if len(alerts) == 0 {
		return
	}
	text := alerts[0]
	if len(alerts) > 1 {
		text += fmt.Sprintf(" (+%d more)", len(alerts)-1)
	}
	a.toast = toast{text: text, err: true, until: time.Now().Add(2 * toastDuration)}
}

func (a *App) flash(text string) {
	a.toast = toast{text: text, until: time.Now().Add(toastDuration)}
}

func (a *App) flashErr(err error) {
	a.log.WithError(err).Error("action failed")
	a.toast = toast{text: "Error: " + err.Error(), err: true, until: time.Now().Add(2 * toastDuration)}
}

// bookUnavailable reports that a widget's records failed to load and
// cannot be changed this session.
func (a *App) bookUnavailable(what string) {
	err := fmt.Errorf("%s could not be loaded", what)
	if a.loadErr != nil {
		err = fmt.Errorf("%s could not be loaded: %w", what, a.loadErr)
	}
	a.flashErr(err)
}

func clampCursor(cursor, n int) int {
	if cursor >= n {
		cursor = n - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.form != nil {
			a.form = a.form.WithWidth(formWidth(a.width))
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.form != nil {
			return a, nil
		}

		switch msg.Button {
		case tea.MouseButtonWheelUp:
			a.moveCursor(-1)
			return a, nil

		case tea.MouseButtonWheelDown:
			a.moveCursor(1)
			return a, nil

		case tea.MouseButtonLeft:
			// Tab bar is the first line
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 && tab < len(components.Tabs) {
					a.activeTab = tab
				}
			}
			return a, nil
		}
		return a, nil

	case tea.KeyMsg:
		key := msg.String()

		// Global: quit
		if key == "ctrl+c" {
			return a, tea.Quit
		}

		if !a.loaded {
			return a, nil
		}

		// An open form owns the keyboard; esc closes it without saving
		if a.form != nil {
			if key == "esc" && a.formKind != formSetup {
				a.closeForm()
				a.flash("Cancelled")
				return a, nil
			}
			return a.updateForm(msg)
		}

		// Settings tab has its own keybindings (text input)
		if a.activeTab == tabSettings && a.settings.editing {
			return a.updateSettingsInput(msg)
		}

		// Help toggle
		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}

		// Dismiss help
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		if key == "j" || key == "down" {
			a.moveCursor(1)
			return a, nil
		}
		if key == "k" || key == "up" {
			a.moveCursor(-1)
			return a, nil
		}

		var (
			next    tea.Model
			cmd     tea.Cmd
			handled bool
		)
		switch a.activeTab {
		case tabSubscriptions:
			next, cmd, handled = a.updateSubscriptionsKeys(key)
		case tabDebts:
			next, cmd, handled = a.updateDebtsKeys(key)
		case tabCalculator:
			next, cmd, handled = a.updateCalculatorKeys(key)
		case tabWallet:
			next, cmd, handled = a.updateWalletKeys(key)
		case tabSettings:
			next, cmd, handled = a.updateSettingsKeys(key)
		}
		if handled {
			return next, cmd
		}

		if key == "q" {
			return a, tea.Quit
		}

		// Manual rate refresh
		if key == "r" && a.rc != nil && a.fetching == 0 {
			return a.refreshRates()
		}

		// Tab navigation
		switch key {
		case "left", "shift+tab":
			a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		case "right", "tab":
			a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		default:
			if r := []rune(key); len(r) == 1 {
				if tab := components.TabIdxByKey(r[0]); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case DataLoadedMsg:
		a.loaded = true
		a.loadErr = msg.Err
		a.subs, a.debts, a.wallet = msg.Subs, msg.Debts, msg.Wallet
		if msg.Err != nil {
			a.flashErr(msg.Err)
		}
		a.recompute()

		if a.needSetup {
			v := newSetupValues(a.cfg)
			return a, a.openForm(formSetup, newSetupForm(v), v)
		}
		return a, nil

	case RateMsg:
		if a.fetching > 0 {
			a.fetching--
		}
		q := msg.Quote
		if q.Source == rates.AwesomeAPI {
			a.onceQuote = q
		} else {
			a.periodicQuote = q
			a.lastRate = time.Now()
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loaded || a.fetching > 0 {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}

		if a.toast.text != "" && time.Now().After(a.toast.until) {
			a.toast = toast{}
		}

		// A new day can turn open items overdue
		if a.loaded && a.today() != a.day {
			a.recompute()
		}

		if a.loaded && a.rc != nil && a.fetching == 0 && time.Since(a.lastRate) >= a.cfg.RefreshInterval() {
			_, periodic := a.cfg.Endpoints()
			a.fetching++
			cmds = append(cmds, fetchRateCmd(a.rc, periodic), a.spinner.Tick)
		}

		return a, tea.Batch(cmds...)
	}

	// Forward unhandled messages (cursor blinks, etc.)
	if a.form != nil {
		return a.updateForm(msg)
	}
	if a.settings.editing {
		var cmd tea.Cmd
		a.settings.input, cmd = a.settings.input.Update(msg)
		return a, cmd
	}

	return a, nil
}

func (a App) refreshRates() (tea.Model, tea.Cmd) {
	once, periodic := a.cfg.Endpoints()
	a.fetching += 2
	a.flash("Refreshing exchange rates...")
	return a, tea.Batch(fetchRateCmd(a.rc, once), fetchRateCmd(a.rc, periodic), a.spinner.Tick)
}

// moveCursor moves the selection of the active list by delta.
func (a *App) moveCursor(delta int) {
	switch a.activeTab {
	case tabSubscriptions:
		a.subState.cursor = clampCursor(a.subState.cursor+delta, len(a.subRows))
	case tabDebts:
		a.debtState.cursor = clampCursor(a.debtState.cursor+delta, len(a.debtRows))
	case tabWallet:
		a.walletCursor = clampCursor(a.walletCursor+delta, len(a.pl.Lines()))
	case tabSettings:
		a.settings.cursor = clampCursor(a.settings.cursor+delta, settingsFieldCount)
	}
}

// bestQuote prefers the periodic source, which is the fresher one.
func (a App) bestQuote() (rates.Quote, bool) {
	return rates.Best(a.periodicQuote, a.onceQuote)
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if !a.loaded {
		return a.viewLoading()
	}

	if a.form != nil {
		return a.viewForm()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  fintrack needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)

	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ fintrack"))
	b.WriteString(subtitleStyle.Render(" · subscriptions, debts, investments"))
	b.WriteString("\n\n")
	b.WriteString(spinnerStyle.Render(a.spinner.View()))
	b.WriteString(subtitleStyle.Render(" Loading your data..."))

	card := cardStyle.Render(b.String())

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewForm() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 2)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	hintStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	hint := "enter next · esc cancel"
	if a.formKind == formSetup {
		hint = "enter next · shift+tab back"
	}
	body := titleStyle.Render(a.formKind.Title()) + "\n\n" + a.form.View() + "\n" + hintStyle.Render(hint)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(body),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"s d c w x", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Move selection"},
		}},
		{"Subscriptions & Debts", []struct{ key, desc string }{
			{"a", "Add"},
			{"e Enter", "Edit selected"},
			{"p", "Paid / undo (subscriptions), pay (debts)"},
			{"D", "Delete selected"},
			{"f", "Cycle filter"},
		}},
		{"Calculator & Wallet", []struct{ key, desc string }{
			{"Enter", "Enter amount / update value"},
			{"S", "Save allocation to wallet"},
			{"i", "Edit initial values"},
			{"R", "Reset wallet"},
		}},
		{"General", []struct{ key, desc string }{
			{"r", "Refresh exchange rates"},
			{"Esc", "Cancel form"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, s := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(s.title))
		b.WriteString("\n")
		for _, bind := range s.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	// 1. Header: tab bar + context row
	pillStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accentStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	ctx := pillStyle.Render(" ") + accentStyle.Render(a.day.Display())
	switch a.activeTab {
	case tabSubscriptions:
		ctx += pillStyle.Render(" │ filter ") + accentStyle.Render(string(a.subState.filter))
	case tabDebts:
		ctx += pillStyle.Render(" │ filter ") + accentStyle.Render(string(a.debtState.filter))
	case tabCalculator:
		ctx += pillStyle.Render(" │ split ") + accentStyle.Render(a.cfg.Allocation.String())
	}
	header := components.RenderTabBar(a.activeTab, w) + "\n" +
		lipgloss.NewStyle().Background(t.Surface).Width(w).Render(ctx)

	// 2. Status bar
	status := components.Status{Hints: a.hints(), Toast: a.toast.text, ToastErr: a.toast.err, Rate: "rate unavailable"}
	if q, ok := a.bestQuote(); ok {
		status.Rate = q.Status()
	}
	if a.fetching > 0 {
		status.Spinner = a.spinner.View()
	}
	statusBar := components.RenderStatusBar(w, status)

	// 3. Content zone height
	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	// 4. Tab content
	var content string
	switch a.activeTab {
	case tabSubscriptions:
		content = a.renderSubscriptionsTab(cw, contentH)
	case tabDebts:
		content = a.renderDebtsTab(cw, contentH)
	case tabCalculator:
		content = a.renderCalculatorTab(cw)
	case tabWallet:
		content = a.renderWalletTab(cw)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	// 5. Exactly contentH lines, background-filled, centred when w > cw
	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)

	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) hints() string {
	switch a.activeTab {
	case tabSubscriptions:
		return "[a]dd [e]dit [p]aid/undo [D]elete [f]ilter  [?]help [q]uit"
	case tabDebts:
		return "[a]dd [e]dit [p]ay [D]elete [f]ilter  [?]help [q]uit"
	case tabCalculator:
		return "[enter] amount [S]ave to wallet [r]efresh rates  [?]help [q]uit"
	case tabWallet:
		return "[enter] update value [i]nitial [R]eset  [?]help [q]uit"
	case tabSettings:
		return "[j/k] navigate [enter] edit  [?]help [q]uit"
	}
	return "[?]help [q]uit"
}

// ─── Helpers ────────────────────────────────────────────────────

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		placed := lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
		result.WriteString(placed)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// visibleRange returns the [start, end) window of n rows that keeps cursor
// in view when only limit rows fit.
func visibleRange(cursor, n, limit int) (int, int) {
	if limit <= 0 || n <= limit {
		return 0, n
	}
	start := cursor - limit/2
	if start < 0 {
		start = 0
	}
	if start+limit > n {
		start = n - limit
	}
	return start, start + limit
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)

		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW

		// Separator is one column between tabs.
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}
