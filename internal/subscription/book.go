package subscription

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/fintrack/internal/date"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/store"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned for an unknown subscription ID.
	ErrNotFound = errors.New("subscription: not found")
	// ErrInvalid is returned when form input fails validation.
	ErrInvalid = errors.New("subscription: invalid input")
)

// Book owns the subscription collection and its persistence.
// It is not safe for concurrent use.
type Book struct {
	kv    store.KV
	items []model.Subscription
}

// Open loads the collection from kv. A missing document is an empty book.
func Open(kv store.KV) (*Book, error) {
	b := &Book{kv: kv}
	if _, err := store.LoadJSON(kv, store.KeySubscriptions, &b.items); err != nil {
		return nil, fmt.Errorf("loading subscriptions: %w", err)
	}
	for i := range b.items {
		if b.items[i].Status == "" {
			b.items[i].Status = model.StatusOpen
		}
	}
	return b, nil
}

// Save writes the collection back.
func (b *Book) Save() error { return b.commit(b.items) }

// commit persists items and only then makes them the book's state, so a
// failed write leaves memory matching disk.
func (b *Book) commit(items []model.Subscription) error {
	if items == nil {
		items = []model.Subscription{}
	}
	if err := store.SaveJSON(b.kv, store.KeySubscriptions, items); err != nil {
		return err
	}
	b.items = items
	return nil
}

// Items returns a copy of the collection in stored order.
func (b *Book) Items() []model.Subscription {
	out := make([]model.Subscription, len(b.items))
	copy(out, b.items)
	return out
}

// Len returns the number of stored items.
func (b *Book) Len() int { return len(b.items) }

// Find returns the item with the given ID.
func (b *Book) Find(id string) (model.Subscription, error) {
	i := b.index(id)
	if i < 0 {
		return model.Subscription{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return b.items[i], nil
}

func (b *Book) index(id string) int {
	for i, it := range b.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Evaluate runs an overdue pass for today and saves if anything changed.
func (b *Book) Evaluate(today date.Date) ([]Notice, error) {
	items := b.Items()
	notices, changed := Evaluate(items, today)
	if !changed {
		return notices, nil
	}
	if err := b.commit(items); err != nil {
		return notices, err
	}
	return notices, nil
}

// View evaluates, then returns the filtered, sorted items and the summary
// over the whole collection.
func (b *Book) View(today date.Date, f Filter) ([]model.Subscription, Summary, []Notice, error) {
	notices, err := b.Evaluate(today)
	if err != nil {
		return nil, Summary{}, notices, err
	}
	return Apply(b.items, f), Summarize(b.items), notices, nil
}

// Upsert creates a new item when in.ID is empty or unknown, otherwise it
// edits the existing one. Edits keep status and delay history.
func (b *Book) Upsert(in model.SubscriptionInput) (model.Subscription, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.DueDate = strings.TrimSpace(in.DueDate)
	if in.Name == "" {
		return model.Subscription{}, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	due, err := date.Parse(in.DueDate)
	if err != nil {
		return model.Subscription{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if in.Value.IsNegative() {
		return model.Subscription{}, fmt.Errorf("%w: value must not be negative", ErrInvalid)
	}

	items := b.Items()
	if i := b.index(in.ID); in.ID != "" && i >= 0 {
		it := &items[i]
		it.Name = in.Name
		it.Value = in.Value
		it.DueDate = due.String()
		it.PaymentMethod = strings.TrimSpace(in.PaymentMethod)
		it.Notes = strings.TrimSpace(in.Notes)
		if err := b.commit(items); err != nil {
			return model.Subscription{}, err
		}
		return *it, nil
	}

	it := model.Subscription{
		ID:            in.ID,
		Name:          in.Name,
		Value:         in.Value,
		DueDate:       due.String(),
		PaymentMethod: strings.TrimSpace(in.PaymentMethod),
		Notes:         strings.TrimSpace(in.Notes),
		Status:        model.StatusOpen,
		DelayHistory:  []date.Date{},
	}
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	if err := b.commit(append(items, it)); err != nil {
		return model.Subscription{}, err
	}
	return it, nil
}

// MarkPaid moves the item to paid and clears its overdue flag.
func (b *Book) MarkPaid(id string) error {
	return b.setStatus(id, model.StatusPaid)
}

// Undo moves a paid item back to open. The next pass re-derives overdue
// from the due date.
func (b *Book) Undo(id string) error {
	return b.setStatus(id, model.StatusOpen)
}

// Toggle flips between paid and open and returns the new status.
func (b *Book) Toggle(id string) (model.Status, error) {
	it, err := b.Find(id)
	if err != nil {
		return "", err
	}
	next := model.StatusPaid
	if it.Paid() {
		next = model.StatusOpen
	}
	return next, b.setStatus(id, next)
}

func (b *Book) setStatus(id string, s model.Status) error {
	i := b.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	items := b.Items()
	items[i].Status = s
	if s == model.StatusPaid {
		items[i].IsOverdue = false
	}
	return b.commit(items)
}

// Delete removes the item. Callers confirm with the user first.
func (b *Book) Delete(id string) error {
	i := b.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	items := b.Items()
	return b.commit(append(items[:i], items[i+1:]...))
}
