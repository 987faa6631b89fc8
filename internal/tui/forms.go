package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/fintrack/internal/date"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/money"
	"github.com/theirongolddev/fintrack/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"
)

type formKind int

const (
	formNone formKind = iota
	formSubscription
	formDebt
	formPayment
	formAmount
	formCurrent
	formInitial
	formDeleteSubscription
	formDeleteDebt
	formResetWallet
	formSetup
)

// Title is the heading shown above the form.
func (k formKind) Title() string {
	switch k {
	case formSubscription:
		return "Subscription"
	case formDebt:
		return "Debt"
	case formPayment:
		return "Add payment"
	case formAmount:
		return "Amount to invest"
	case formCurrent:
		return "Update current value"
	case formInitial:
		return "Edit initial values"
	case formDeleteSubscription, formDeleteDebt:
		return "Delete"
	case formResetWallet:
		return "Reset wallet"
	case formSetup:
		return "Welcome to fintrack"
	}
	return ""
}

// formValues holds what the active form is bound to. It lives behind a
// pointer so the bindings survive App being copied by value.
type formValues struct {
	id      string // record being edited, "" for a new one
	editing bool

	// subscription
	name, value, due, method, notes string

	// debt
	description, total, start string

	// payment, calculator amount, current value
	amount, on string
	category   model.Category
	limit      decimal.Decimal

	// wallet initial values, in model.Categories order
	initial []string

	confirm bool

	// setup
	theme, refresh, allocation string
}

func formWidth(termWidth int) int {
	w := termWidth - 10
	if w > 70 {
		w = 70
	}
	if w < 40 {
		w = 40
	}
	return w
}

func formTheme() *huh.Theme {
	if theme.Active.Name == theme.Terminal.Name {
		return huh.ThemeBase16()
	}
	return huh.ThemeCharm()
}

// openForm shows f as a modal bound to v.
func (a *App) openForm(kind formKind, f *huh.Form, v *formValues) tea.Cmd {
	f = f.WithTheme(formTheme()).WithShowHelp(false)
	if a.width > 0 {
		f = f.WithWidth(formWidth(a.width))
	}
	a.form, a.formKind, a.formVals = f, kind, v
	return a.form.Init()
}

func (a *App) closeForm() {
	if a.formKind == formSetup {
		a.needSetup = false
	}
	a.form, a.formKind, a.formVals = nil, formNone, nil
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		kind, v := a.formKind, a.formVals
		a.closeForm()
		a.submitForm(kind, v)
		return a, nil
	case huh.StateAborted:
		a.closeForm()
		return a, nil
	}

	return a, cmd
}

// submitForm applies a completed form and refreshes the derived views.
func (a *App) submitForm(kind formKind, v *formValues) {
	if what := a.missingBook(kind); what != "" {
		a.bookUnavailable(what)
		return
	}

	var (
		done string
		err  error
	)

	switch kind {
	case formSubscription:
		_, err = a.subs.Upsert(model.SubscriptionInput{
			ID:            v.id,
			Name:          v.name,
			Value:         money.Parse(v.value),
			DueDate:       v.due,
			PaymentMethod: v.method,
			Notes:         v.notes,
		})
		done = savedOrUpdated("Subscription", v.editing)

	case formDebt:
		var start date.Date
		if start, err = date.Parse(v.start); err == nil {
			_, err = a.debts.Upsert(model.DebtInput{
				ID:          v.id,
				Description: v.description,
				TotalAmount: money.Parse(v.total),
				StartDate:   start,
				DueDate:     v.due,
				Notes:       v.notes,
			})
		}
		done = savedOrUpdated("Debt", v.editing)

	case formPayment:
		var on date.Date
		amount := money.Parse(v.amount)
		if on, err = date.Parse(v.on); err == nil {
			_, err = a.debts.AddPayment(v.id, amount, on)
		}
		done = "Payment of " + money.FormatBRL(amount) + " recorded"

	case formAmount:
		a.calc.amount = money.Parse(v.amount)
		a.calc.alloc = a.weights.Allocate(a.calc.amount)

	case formCurrent:
		err = a.wallet.SetCurrent(v.category, money.Parse(v.amount))
		done = v.category.Label() + " updated"

	case formInitial:
		values := make(map[model.Category]decimal.Decimal, len(model.Categories))
		for i, c := range model.Categories {
			values[c] = money.Parse(v.initial[i])
		}
		err = a.wallet.EditInitial(values)
		done = "Initial values updated"

	case formDeleteSubscription:
		if !v.confirm {
			return
		}
		err = a.subs.Delete(v.id)
		done = "Subscription deleted"

	case formDeleteDebt:
		if !v.confirm {
			return
		}
		err = a.debts.Delete(v.id)
		done = "Debt deleted"

	case formResetWallet:
		if !v.confirm {
			return
		}
		err = a.wallet.Reset()
		done = "Wallet reset"

	case formSetup:
		err = a.applySetup(v)
		done = "Settings saved to " + a.configPath
	}

	if err != nil {
		a.flashErr(err)
		return
	}
	if done != "" {
		a.log.WithField("id", v.id).Info(done)
		a.flash(done)
	}
	a.recompute()
}

// missingBook names the widget kind writes to when its book failed to load.
func (a *App) missingBook(kind formKind) string {
	switch kind {
	case formSubscription, formDeleteSubscription:
		if a.subs == nil {
			return "subscriptions"
		}
	case formDebt, formPayment, formDeleteDebt:
		if a.debts == nil {
			return "debts"
		}
	case formCurrent, formInitial, formResetWallet:
		if a.wallet == nil {
			return "wallet"
		}
	}
	return ""
}

func savedOrUpdated(what string, editing bool) string {
	if editing {
		return what + " updated"
	}
	return what + " saved"
}

// ─── Validation ─────────────────────────────────────────────────

func required(label string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", label)
		}
		return nil
	}
}

func validDate(optional bool) func(string) error {
	return func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" {
			if optional {
				return nil
			}
			return errors.New("date is required")
		}
		if _, err := date.Parse(s); err != nil {
			return errors.New("use YYYY-MM-DD")
		}
		return nil
	}
}

var errCents = errors.New("use at most two decimal places")

func positiveAmount(s string) error {
	d, ok := money.ParseStrict(s)
	if !ok || !d.IsPositive() {
		return errors.New("enter an amount above zero")
	}
	if !d.Equal(d.Round(2)) {
		return errCents
	}
	return nil
}

func nonNegativeAmount(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	d, ok := money.ParseStrict(s)
	if !ok || d.IsNegative() {
		return errors.New("enter zero or a positive amount")
	}
	if !d.Equal(d.Round(2)) {
		return errCents
	}
	return nil
}

func atMost(limit decimal.Decimal) func(string) error {
	return func(s string) error {
		if err := positiveAmount(s); err != nil {
			return err
		}
		if money.Parse(s).GreaterThan(limit) {
			return fmt.Errorf("at most %s", money.FormatBRL(limit))
		}
		return nil
	}
}

// ─── Builders ───────────────────────────────────────────────────

func newSubscriptionValues(it *model.Subscription, today date.Date) *formValues {
	v := &formValues{due: today.String()}
	if it != nil {
		v.id, v.editing = it.ID, true
		v.name = it.Name
		v.value = money.Plain(it.Value)
		v.due = it.DueDate
		v.method = it.PaymentMethod
		v.notes = it.Notes
	}
	return v
}

func newSubscriptionForm(v *formValues) *huh.Form {
	return huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Name").Value(&v.name).Validate(required("name")),
		huh.NewInput().Title("Value (R$)").Placeholder("0,00").Value(&v.value).Validate(nonNegativeAmount),
		huh.NewInput().Title("Due date").Placeholder("YYYY-MM-DD").Value(&v.due).Validate(validDate(false)),
		huh.NewInput().Title("Payment method").Placeholder("card, pix, boleto...").Value(&v.method),
		huh.NewText().Title("Notes").Lines(2).Value(&v.notes),
	))
}

func newDebtValues(d *model.Debt, today date.Date) *formValues {
	v := &formValues{start: today.String()}
	if d != nil {
		v.id, v.editing = d.ID, true
		v.description = d.Description
		v.total = money.Plain(d.TotalAmount)
		v.start = d.StartDate.String()
		v.due = d.DueDate
		v.notes = d.Notes
	}
	return v
}

func newDebtForm(v *formValues) *huh.Form {
	return huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Description").Value(&v.description).Validate(required("description")),
		huh.NewInput().Title("Total amount (R$)").Value(&v.total).Validate(positiveAmount),
		huh.NewInput().Title("Start date").Placeholder("YYYY-MM-DD").Value(&v.start).Validate(validDate(false)),
		huh.NewInput().Title("Due date").Description("Optional").Placeholder("YYYY-MM-DD").Value(&v.due).Validate(validDate(true)),
		huh.NewText().Title("Notes").Lines(2).Value(&v.notes),
	))
}

// newPaymentValues defaults the amount to the remaining balance, which is
// also the most the form accepts.
func newPaymentValues(d model.Debt, limit decimal.Decimal, today date.Date) *formValues {
	return &formValues{
		id:          d.ID,
		description: d.Description,
		amount:      money.Plain(limit),
		on:          today.String(),
		limit:       limit,
	}
}

func newPaymentForm(v *formValues) *huh.Form {
	return huh.NewForm(huh.NewGroup(
		huh.NewNote().Title(v.description).Description("Remaining: "+money.FormatBRL(v.limit)),
		huh.NewInput().Title("Amount (R$)").Value(&v.amount).Validate(atMost(v.limit)),
		huh.NewInput().Title("Payment date").Placeholder("YYYY-MM-DD").Value(&v.on).Validate(validDate(false)),
	))
}

func newAmountForm(v *formValues) *huh.Form {
	return huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Total to invest (R$)").Placeholder("1.000,00").Value(&v.amount).Validate(nonNegativeAmount),
	))
}

func newCurrentForm(v *formValues) *huh.Form {
	desc := "Current market value in R$"
	if v.category == model.DollarCombined {
		desc = "Combined value of US stocks and ETFs in R$, split by their cost basis"
	}
	return huh.NewForm(huh.NewGroup(
		huh.NewInput().Title(v.category.Label()).Description(desc).Value(&v.amount).Validate(nonNegativeAmount),
	))
}

func newInitialValues(w model.Wallet) *formValues {
	v := &formValues{initial: make([]string, len(model.Categories))}
	for i, c := range model.Categories {
		v.initial[i] = money.Plain(w.Initial[c])
	}
	return v
}

func newInitialForm(v *formValues) *huh.Form {
	fields := make([]huh.Field, 0, len(model.Categories))
	for i, c := range model.Categories {
		fields = append(fields, huh.NewInput().Title(c.Label()+" (R$)").Value(&v.initial[i]).Validate(nonNegativeAmount))
	}
	return huh.NewForm(huh.NewGroup(fields...))
}

func newConfirmForm(title, description, affirmative string, v *formValues) *huh.Form {
	return huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Description(description).
			Affirmative(affirmative).
			Negative("Cancel").
			Value(&v.confirm),
	))
}
