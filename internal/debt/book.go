package debt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/fintrack/internal/date"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned for an unknown debt ID.
	ErrNotFound = errors.New("debt: not found")
	// ErrInvalid is returned when form input fails validation.
	ErrInvalid = errors.New("debt: invalid input")
	// ErrOverpayment is returned for a payment above the remaining balance.
	ErrOverpayment = errors.New("debt: payment exceeds remaining balance")
)

// Book owns the debt collection and its persistence.
// It is not safe for concurrent use.
type Book struct {
	kv    store.KV
	debts []model.Debt
}

// Open loads the collection from kv. A missing document is an empty book.
func Open(kv store.KV) (*Book, error) {
	b := &Book{kv: kv}
	if _, err := store.LoadJSON(kv, store.KeyDebts, &b.debts); err != nil {
		return nil, fmt.Errorf("loading debts: %w", err)
	}
	return b, nil
}

// Save writes the collection back.
func (b *Book) Save() error { return b.commit(b.debts) }

// commit persists debts and only then makes them the book's state, so a
// failed write leaves memory matching disk.
func (b *Book) commit(debts []model.Debt) error {
	if debts == nil {
		debts = []model.Debt{}
	}
	if err := store.SaveJSON(b.kv, store.KeyDebts, debts); err != nil {
		return err
	}
	b.debts = debts
	return nil
}

// Debts returns a copy of the collection in stored order.
func (b *Book) Debts() []model.Debt {
	out := make([]model.Debt, len(b.debts))
	copy(out, b.debts)
	return out
}

// Len returns the number of stored debts.
func (b *Book) Len() int { return len(b.debts) }

// Find returns the debt with the given ID.
func (b *Book) Find(id string) (model.Debt, error) {
	i := b.index(id)
	if i < 0 {
		return model.Debt{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return b.debts[i], nil
}

func (b *Book) index(id string) int {
	for i, d := range b.debts {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// Upsert creates a debt when in.ID is empty or unknown, otherwise it edits
// the existing one. Edits keep the payment ledger.
func (b *Book) Upsert(in model.DebtInput) (model.Debt, error) {
	in.Description = strings.TrimSpace(in.Description)
	in.DueDate = strings.TrimSpace(in.DueDate)
	if in.Description == "" {
		return model.Debt{}, fmt.Errorf("%w: description is required", ErrInvalid)
	}
	if !in.TotalAmount.IsPositive() {
		return model.Debt{}, fmt.Errorf("%w: total amount must be positive", ErrInvalid)
	}
	if in.StartDate.IsZero() {
		return model.Debt{}, fmt.Errorf("%w: start date is required", ErrInvalid)
	}
	if in.DueDate != "" {
		due, err := date.Parse(in.DueDate)
		if err != nil {
			return model.Debt{}, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		in.DueDate = due.String()
	}

	debts := b.Debts()
	if i := b.index(in.ID); in.ID != "" && i >= 0 {
		d := &debts[i]
		d.Description = in.Description
		d.TotalAmount = in.TotalAmount
		d.StartDate = in.StartDate
		d.DueDate = in.DueDate
		d.Notes = strings.TrimSpace(in.Notes)
		if err := b.commit(debts); err != nil {
			return model.Debt{}, err
		}
		return *d, nil
	}

	d := model.Debt{
		ID:          in.ID,
		Description: in.Description,
		TotalAmount: in.TotalAmount,
		StartDate:   in.StartDate,
		DueDate:     in.DueDate,
		Notes:       strings.TrimSpace(in.Notes),
		Payments:    []model.Payment{},
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if err := b.commit(append(debts, d)); err != nil {
		return model.Debt{}, err
	}
	return d, nil
}

// AddPayment appends a payment. The amount must be positive and no more
// than the remaining balance.
func (b *Book) AddPayment(id string, amount decimal.Decimal, on date.Date) (model.Debt, error) {
	i := b.index(id)
	if i < 0 {
		return model.Debt{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !amount.IsPositive() {
		return model.Debt{}, fmt.Errorf("%w: payment must be positive", ErrInvalid)
	}
	if on.IsZero() {
		return model.Debt{}, fmt.Errorf("%w: payment date is required", ErrInvalid)
	}
	debts := b.Debts()
	d := &debts[i]
	if limit := SuggestedPayment(*d); amount.GreaterThan(limit) {
		return model.Debt{}, fmt.Errorf("%w: %s > %s", ErrOverpayment, amount.StringFixed(2), limit.StringFixed(2))
	}
	payments := make([]model.Payment, len(d.Payments), len(d.Payments)+1)
	copy(payments, d.Payments)
	d.Payments = append(payments, model.Payment{Amount: amount, Date: on})
	if err := b.commit(debts); err != nil {
		return model.Debt{}, err
	}
	return *d, nil
}

// Delete removes the debt. Callers confirm with the user first.
func (b *Book) Delete(id string) error {
	i := b.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	debts := b.Debts()
	return b.commit(append(debts[:i], debts[i+1:]...))
}
