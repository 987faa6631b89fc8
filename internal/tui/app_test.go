package tui

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/date"
	"github.com/theirongolddev/fintrack/internal/debt"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/rates"
	"github.com/theirongolddev/fintrack/internal/store"
	"github.com/theirongolddev/fintrack/internal/subscription"
	"github.com/theirongolddev/fintrack/internal/tui/components"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
)

var testToday = date.MustParse("2025-06-15")

type fixture struct {
	app    App
	kv     *store.Memory
	subID  string
	debtID string
}

// newTestApp loads an app over an in-memory store holding one overdue
// subscription and one open debt.
func newTestApp(t *testing.T) fixture {
	t.Helper()
	kv := store.NewMemory()

	subs, err := subscription.Open(kv)
	if err != nil {
		t.Fatalf("subscription.Open: %v", err)
	}
	sub, err := subs.Upsert(model.SubscriptionInput{
		Name:          "Netflix",
		Value:         decimal.RequireFromString("55.90"),
		DueDate:       "2025-06-01",
		PaymentMethod: "card",
	})
	if err != nil {
		t.Fatalf("Upsert subscription: %v", err)
	}

	debts, err := debt.Open(kv)
	if err != nil {
		t.Fatalf("debt.Open: %v", err)
	}
	d, err := debts.Upsert(model.DebtInput{
		Description: "Car loan",
		TotalAmount: decimal.NewFromInt(500),
		StartDate:   date.MustParse("2025-01-10"),
	})
	if err != nil {
		t.Fatalf("Upsert debt: %v", err)
	}

	a := NewApp(Options{
		KV:         kv,
		Config:     config.DefaultConfig(),
		ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
		Today:      func() date.Date { return testToday },
	})
	a = update(t, a, tea.WindowSizeMsg{Width: 140, Height: 40})
	a = update(t, a, loadDataCmd(kv, a.weights)())
	if !a.loaded {
		t.Fatal("app not loaded after DataLoadedMsg")
	}
	return fixture{app: a, kv: kv, subID: sub.ID, debtID: d.ID}
}

func update(t *testing.T, a App, msg tea.Msg) App {
	t.Helper()
	m, _ := a.Update(msg)
	next, ok := m.(App)
	if !ok {
		t.Fatalf("Update returned %T, want App", m)
	}
	return next
}

func press(t *testing.T, a App, key string) App {
	t.Helper()
	if key == "enter" {
		return update(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	}
	return update(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
}

func TestTabAtXMatchesTabWidths(t *testing.T) {
	for active := range components.Tabs {
		a := App{activeTab: active}
		pos := 0

		for i, tab := range components.Tabs {
			w := len(tab.Name) + 2 // horizontal padding in tab renderer
			if i != active && tab.KeyPos < 0 {
				w += 3 // inactive Settings adds "[x]"
			}
			x := pos + w/2
			if got := a.tabAtX(x); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, x, got, i)
			}
			pos += w + 1 // separator
		}
		if got := a.tabAtX(pos + 10); got != -1 {
			t.Errorf("active=%d: tabAtX past the bar = %d, want -1", active, got)
		}
	}
}

func TestLoadFlagsOverdueSubscription(t *testing.T) {
	f := newTestApp(t)
	a := f.app

	if a.subSummary.OverdueCount != 1 {
		t.Fatalf("OverdueCount = %d, want 1", a.subSummary.OverdueCount)
	}
	if !a.toast.err || !strings.Contains(a.toast.text, "Netflix") {
		t.Errorf("toast = %+v, want an overdue alert for Netflix", a.toast)
	}

	// The delay is persisted, so a reopened book sees it.
	subs, err := subscription.Open(f.kv)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	it, err := subs.Find(f.subID)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !it.IsOverdue || len(it.DelayHistory) != 1 {
		t.Errorf("stored item: overdue=%v delays=%v", it.IsOverdue, it.DelayHistory)
	}
}

func TestKeysIgnoredUntilLoaded(t *testing.T) {
	a := NewApp(Options{KV: store.NewMemory(), Today: func() date.Date { return testToday }})
	a = press(t, a, "d")
	if a.activeTab != tabSubscriptions {
		t.Errorf("activeTab = %d before load, want %d", a.activeTab, tabSubscriptions)
	}
}

func TestTogglePaid(t *testing.T) {
	f := newTestApp(t)

	a := press(t, f.app, "p")
	if it, _ := a.subs.Find(f.subID); !it.Paid() {
		t.Fatalf("status = %q after p, want paid", it.Status)
	}
	if a.subSummary.PaidCount != 1 || a.subSummary.OverdueCount != 0 {
		t.Errorf("summary = %+v, want 1 paid and 0 overdue", a.subSummary)
	}

	a = press(t, a, "p")
	if it, _ := a.subs.Find(f.subID); it.Paid() {
		t.Errorf("status = %q after second p, want open", it.Status)
	}
}

func TestFilterCycles(t *testing.T) {
	f := newTestApp(t)
	a := f.app

	want := []subscription.Filter{
		subscription.FilterOpen,
		subscription.FilterOverdue,
		subscription.FilterPaid,
		subscription.FilterAll,
	}
	for _, w := range want {
		a = press(t, a, "f")
		if a.subState.filter != w {
			t.Fatalf("filter = %q, want %q", a.subState.filter, w)
		}
	}

	a = press(t, a, "f") // open
	a = press(t, a, "f") // overdue
	a = press(t, a, "f") // paid
	if len(a.subRows) != 0 {
		t.Errorf("paid filter shows %d rows, want 0", len(a.subRows))
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	f := newTestApp(t)

	a := press(t, f.app, "D")
	if a.form == nil || a.formKind != formDeleteSubscription {
		t.Fatalf("form kind = %d, want the delete confirmation", a.formKind)
	}

	a = update(t, a, tea.KeyMsg{Type: tea.KeyEsc})
	if a.form != nil {
		t.Fatal("esc did not close the form")
	}

	a.submitForm(formDeleteSubscription, &formValues{id: f.subID})
	if a.subs.Len() != 1 {
		t.Fatalf("declined delete removed the item")
	}

	a.submitForm(formDeleteSubscription, &formValues{id: f.subID, confirm: true})
	if a.subs.Len() != 0 {
		t.Errorf("Len = %d after confirmed delete, want 0", a.subs.Len())
	}
	if len(a.subRows) != 0 {
		t.Errorf("rows not refreshed after delete")
	}
}

func TestSubmitSubscriptionForm(t *testing.T) {
	f := newTestApp(t)
	a := f.app

	v := newSubscriptionValues(nil, testToday)
	v.name, v.value, v.due, v.method = "Spotify", "21,90", "2025-06-20", "pix"
	a.submitForm(formSubscription, v)

	if a.subs.Len() != 2 {
		t.Fatalf("Len = %d, want 2", a.subs.Len())
	}
	if a.toast.err {
		t.Errorf("unexpected error toast %q", a.toast.text)
	}
	if a.subSummary.OpenCount != 1 {
		t.Errorf("OpenCount = %d, want 1", a.subSummary.OpenCount)
	}
}

func TestDebtPayments(t *testing.T) {
	f := newTestApp(t)
	a := press(t, f.app, "d")
	if a.activeTab != tabDebts {
		t.Fatalf("activeTab = %d, want debts", a.activeTab)
	}

	a = press(t, a, "p")
	if a.formKind != formPayment {
		t.Fatalf("form kind = %d, want payment", a.formKind)
	}
	if got := a.formVals.limit; !got.Equal(decimal.NewFromInt(500)) {
		t.Errorf("payment limit = %s, want 500", got)
	}
	a.closeForm()

	a.toast = toast{}
	a.submitForm(formPayment, &formValues{id: f.debtID, amount: "600", on: "2025-06-15"})
	if !a.toast.err {
		t.Errorf("overpayment accepted, toast = %q", a.toast.text)
	}
	if d, _ := a.debts.Find(f.debtID); len(d.Payments) != 0 {
		t.Fatalf("overpayment recorded: %v", d.Payments)
	}

	a.submitForm(formPayment, &formValues{id: f.debtID, amount: "500", on: "2025-06-15"})
	if a.toast.err {
		t.Fatalf("payment rejected: %q", a.toast.text)
	}
	if a.debtTotals.Remaining.Sign() != 0 {
		t.Errorf("Remaining = %s, want 0", a.debtTotals.Remaining)
	}

	a = press(t, a, "p")
	if a.form != nil {
		t.Error("payment form opened for a paid-off debt")
	}
}

func TestCalculatorSavesToWallet(t *testing.T) {
	f := newTestApp(t)
	a := press(t, f.app, "c")

	a.submitForm(formAmount, &formValues{amount: "1.000,00"})
	if got := a.calc.alloc.Crypto; !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("crypto = %s, want 100", got)
	}

	a = press(t, a, "S")
	w := a.wallet.Wallet()
	if got := w.Initial[model.Crypto]; !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("wallet crypto = %s, want 100", got)
	}
	if got := a.pl.Total.Initial; !got.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("total invested = %s, want 1000", got)
	}
}

func TestCalculatorSaveWithoutAmount(t *testing.T) {
	f := newTestApp(t)
	a := press(t, f.app, "c")
	a = press(t, a, "S")
	if a.toast.err || a.toast.text != "Enter an amount first" {
		t.Errorf("toast = %+v", a.toast)
	}
}

func TestWalletSetCurrent(t *testing.T) {
	f := newTestApp(t)
	a := press(t, f.app, "c")
	a.submitForm(formAmount, &formValues{amount: "1000"})
	a = press(t, a, "S")
	a = press(t, a, "w")

	a = press(t, a, "enter")
	if a.formKind != formCurrent {
		t.Fatalf("form kind = %d, want current value", a.formKind)
	}
	v := a.formVals
	a.closeForm()

	v.amount = "150"
	a.submitForm(formCurrent, v)
	p, _ := a.pl.Bucket(v.category)
	if !p.Value.Equal(decimal.NewFromInt(50)) {
		t.Errorf("P/L = %s, want 50", p.Value)
	}
}

func TestRateMsgRoutesBySource(t *testing.T) {
	f := newTestApp(t)
	a := f.app
	a.fetching = 2

	awesome := rates.Quote{Source: rates.AwesomeAPI, USDPerBRL: decimal.RequireFromString("0.2"), BRLPerUSD: decimal.NewFromInt(5)}
	a = update(t, a, RateMsg{Quote: awesome})
	if a.onceQuote.Source != rates.AwesomeAPI || a.fetching != 1 {
		t.Fatalf("once = %+v fetching = %d", a.onceQuote, a.fetching)
	}

	failed := rates.Quote{Source: rates.CurrencyAPI, Err: errors.New("timeout")}
	a = update(t, a, RateMsg{Quote: failed})
	if a.fetching != 0 || a.lastRate.IsZero() {
		t.Fatalf("fetching = %d lastRate = %v", a.fetching, a.lastRate)
	}

	q, ok := a.bestQuote()
	if !ok || q.Source != rates.AwesomeAPI {
		t.Errorf("bestQuote = %+v, %v; want the awesome quote", q, ok)
	}
}

func TestToastExpires(t *testing.T) {
	f := newTestApp(t)
	a := f.app
	a.toast = toast{text: "old", until: time.Now().Add(-time.Second)}

	a = update(t, a, tickMsg{})
	if a.toast.text != "" {
		t.Errorf("toast = %q after expiry", a.toast.text)
	}
}

func TestViewRendersEveryTab(t *testing.T) {
	f := newTestApp(t)
	a := f.app

	want := map[int]string{
		tabSubscriptions: "Netflix",
		tabDebts:         "Car loan",
		tabCalculator:    "Allocation",
		tabWallet:        "Profit / loss",
		tabSettings:      "Rate refresh",
	}
	for tab, s := range want {
		a.activeTab = tab
		out := a.View()
		if !strings.Contains(out, s) {
			t.Errorf("tab %d view does not contain %q", tab, s)
		}
		if lines := strings.Count(out, "\n") + 1; lines != a.height {
			t.Errorf("tab %d view has %d lines, want %d", tab, lines, a.height)
		}
	}
}

func TestViewTooNarrow(t *testing.T) {
	f := newTestApp(t)
	a := update(t, f.app, tea.WindowSizeMsg{Width: 60, Height: 20})
	if !strings.Contains(a.View(), "too narrow") {
		t.Error("narrow terminal not reported")
	}
}

func TestSettingsSaveWritesConfig(t *testing.T) {
	f := newTestApp(t)
	a := f.app

	a.settings.cursor = settingsFieldAllocation
	if err := a.settingsSave("20 40 20 20 50 50"); err != nil {
		t.Fatalf("settingsSave: %v", err)
	}
	if !a.weights.Crypto.Equal(decimal.RequireFromString("0.2")) {
		t.Errorf("weights.Crypto = %s, want 0.2", a.weights.Crypto)
	}

	cfg, err := config.LoadFrom(a.configPath)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Allocation.Crypto != 20 || cfg.Allocation.USETF != 50 {
		t.Errorf("saved allocation = %+v", cfg.Allocation)
	}

	a.settings.cursor = settingsFieldRefresh
	if err := a.settingsSave("0"); err == nil {
		t.Error("refresh of 0 minutes accepted")
	}
	a.settings.cursor = settingsFieldTheme
	if err := a.settingsSave("solarized"); err == nil {
		t.Error("unknown theme accepted")
	}
}

func TestApplySetup(t *testing.T) {
	f := newTestApp(t)
	a := f.app

	v := newSetupValues(a.cfg)
	if v.allocation != "10 45 18 27 60 40" || v.refresh != "10" {
		t.Fatalf("setup defaults = %+v", v)
	}
	v.refresh = "5"
	a.submitForm(formSetup, v)
	if a.toast.err {
		t.Fatalf("setup failed: %s", a.toast.text)
	}

	cfg, err := config.LoadFrom(a.configPath)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Rates.RefreshMinutes != 5 {
		t.Errorf("RefreshMinutes = %d, want 5", cfg.Rates.RefreshMinutes)
	}
}

func TestCorruptDocumentBlocksEdits(t *testing.T) {
	kv := store.NewMemory()
	if err := kv.Put(store.KeySubscriptions, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	a := NewApp(Options{
		KV:         kv,
		Config:     config.DefaultConfig(),
		ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
		Today:      func() date.Date { return testToday },
	})
	a = update(t, a, tea.WindowSizeMsg{Width: 140, Height: 40})
	a = update(t, a, loadDataCmd(kv, a.weights)())
	if a.subs != nil || a.debts == nil || a.loadErr == nil {
		t.Fatalf("subs=%v debts=%v err=%v, want only subscriptions missing", a.subs, a.debts, a.loadErr)
	}

	for _, key := range []string{"a", "p", "D"} {
		a.toast = toast{}
		a = press(t, a, key)
		if a.form != nil {
			t.Fatalf("%q opened a form over unloaded subscriptions", key)
		}
		if !a.toast.err || !strings.Contains(a.toast.text, "subscriptions could not be loaded") {
			t.Errorf("%q toast = %+v", key, a.toast)
		}
	}

	v := newSubscriptionValues(nil, testToday)
	v.name, v.value, v.due = "Spotify", "21,90", "2025-06-20"
	a.toast = toast{}
	a.submitForm(formSubscription, v)
	if !a.toast.err {
		t.Errorf("submit over unloaded subscriptions toast = %+v", a.toast)
	}
	if raw, _, _ := kv.Get(store.KeySubscriptions); string(raw) != "{not json" {
		t.Errorf("corrupt document overwritten with %q", raw)
	}

	// Debts loaded fine and stay editable.
	a = press(t, a, "d")
	a = press(t, a, "a")
	if a.formKind != formDebt {
		t.Errorf("debt add form kind = %d", a.formKind)
	}
}

func TestPaymentDefaultPassesItsOwnLimit(t *testing.T) {
	d := model.Debt{
		ID:          "d1",
		Description: "Split bill",
		TotalAmount: decimal.RequireFromString("333.335"),
		StartDate:   testToday,
		Payments:    []model.Payment{{Amount: decimal.NewFromInt(100), Date: testToday}},
	}
	v := newPaymentValues(d, debt.SuggestedPayment(d), testToday)
	if err := atMost(v.limit)(v.amount); err != nil {
		t.Fatalf("default amount %q rejected: %v", v.amount, err)
	}
}

func TestAmountValidatorsRejectFractionsOfCents(t *testing.T) {
	for _, s := range []string{"333,335", "0.001"} {
		if err := positiveAmount(s); !errors.Is(err, errCents) {
			t.Errorf("positiveAmount(%q) = %v, want errCents", s, err)
		}
		if err := nonNegativeAmount(s); !errors.Is(err, errCents) {
			t.Errorf("nonNegativeAmount(%q) = %v, want errCents", s, err)
		}
	}
	for _, s := range []string{"1.000,50", "21,90", "10"} {
		if err := positiveAmount(s); err != nil {
			t.Errorf("positiveAmount(%q) = %v", s, err)
		}
	}
}

func TestDebtStateChangesAreAnnounced(t *testing.T) {
	f := newTestApp(t)
	a := f.app

	v := newDebtValues(nil, testToday)
	v.description, v.total, v.due = "Rent", "1200", "2025-06-18"
	a.submitForm(formDebt, v)
	if !a.toast.err || a.toast.text != "Debt 'Rent' is due soon" {
		t.Fatalf("toast = %+v, want a due-soon alert", a.toast)
	}

	// Same state on the next pass: nothing new to say.
	a.toast = toast{}
	a.recompute()
	if a.toast.text != "" {
		t.Errorf("repeated alert %q", a.toast.text)
	}

	a.today = func() date.Date { return testToday.Add(4) }
	a.recompute()
	if !a.toast.err || a.toast.text != "Debt 'Rent' is overdue" {
		t.Errorf("toast = %+v, want an overdue alert", a.toast)
	}
}
