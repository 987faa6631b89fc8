package debt

import (
	"errors"
	"testing"

	"github.com/theirongolddev/fintrack/internal/date"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/store"

	"github.com/shopspring/decimal"
)

var today = date.MustParse("2025-06-15")

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func debtWith(total string, payments ...string) model.Debt {
	d := model.Debt{ID: "d", Description: "loan", TotalAmount: dec(total), StartDate: today}
	for _, p := range payments {
		d.Payments = append(d.Payments, model.Payment{Amount: dec(p), Date: today})
	}
	return d
}

func TestLedger500Pay200(t *testing.T) {
	d := debtWith("500", "200")

	if got := TotalPaid(d); !got.Equal(dec("200")) {
		t.Errorf("TotalPaid = %s, want 200", got)
	}
	if got := Remaining(d); !got.Equal(dec("300")) {
		t.Errorf("Remaining = %s, want 300", got)
	}
	if got := Progress(d); !got.Equal(dec("40")) {
		t.Errorf("Progress = %s, want 40", got)
	}
	if got := Fraction(d); got != 0.4 {
		t.Errorf("Fraction = %v, want 0.4", got)
	}
	if PaidOff(d) {
		t.Error("PaidOff = true")
	}
}

func TestPaymentRaisesTotalPaidByAmount(t *testing.T) {
	d := debtWith("1000", "100.10", "0.20")
	before := TotalPaid(d)
	d.Payments = append(d.Payments, model.Payment{Amount: dec("0.30"), Date: today})
	if diff := TotalPaid(d).Sub(before); !diff.Equal(dec("0.30")) {
		t.Fatalf("TotalPaid delta = %s, want 0.30", diff)
	}
}

func TestBalanceFloorsAtZero(t *testing.T) {
	d := debtWith("100", "80", "50")
	if got := Remaining(d); !got.Equal(dec("-30")) {
		t.Errorf("Remaining = %s, want -30", got)
	}
	if got := Balance(d); !got.IsZero() {
		t.Errorf("Balance = %s, want 0", got)
	}
	if got := Fraction(d); got != 1 {
		t.Errorf("Fraction = %v, want clamp to 1", got)
	}
	if !SuggestedPayment(d).IsZero() {
		t.Error("SuggestedPayment should be zero once paid off")
	}
}

func TestProgressZeroTotal(t *testing.T) {
	if got := Progress(debtWith("0")); !got.IsZero() {
		t.Fatalf("Progress = %s, want 0", got)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		due  string
		paid []string
		want State
	}{
		{"no due date", "", nil, StateNormal},
		{"bad due date", "someday", nil, StateNormal},
		{"past due", "2025-06-14", nil, StateOverdue},
		{"due today", "2025-06-15", nil, StateNearingDue},
		{"due in 7 days", "2025-06-22", nil, StateNearingDue},
		{"due in 8 days", "2025-06-23", nil, StateNormal},
		{"past due but paid", "2025-01-01", []string{"500"}, StatePaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := debtWith("500", tt.paid...)
			d.DueDate = tt.due
			if got := Classify(d, today); got != tt.want {
				t.Fatalf("Classify = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestApplyFiltersAndSorts(t *testing.T) {
	a := debtWith("100", "100")
	a.ID, a.StartDate = "a", date.MustParse("2025-03-01")
	b := debtWith("100")
	b.ID, b.StartDate = "b", date.MustParse("2025-01-01")
	c := debtWith("100", "10")
	c.ID, c.StartDate = "c", date.MustParse("2025-02-01")
	debts := []model.Debt{a, b, c}

	ids := func(ds []model.Debt) string {
		s := ""
		for _, d := range ds {
			s += d.ID
		}
		return s
	}

	if got := ids(Apply(debts, FilterAll)); got != "bca" {
		t.Errorf("all = %s, want bca", got)
	}
	if got := ids(Apply(debts, FilterOpen)); got != "bc" {
		t.Errorf("open = %s, want bc", got)
	}
	if got := ids(Apply(debts, FilterPaid)); got != "a" {
		t.Errorf("paid = %s, want a", got)
	}
}

func TestRows(t *testing.T) {
	d := debtWith("500", "200")
	rows := Rows([]model.Debt{d}, today)
	r := rows[0]
	if r.Total != "R$500,00" || r.Paid != "R$200,00" || r.Remaining != "R$300,00" {
		t.Errorf("amounts = %s %s %s", r.Total, r.Paid, r.Remaining)
	}
	if r.DueDate != "N/A" || r.Percent != "40%" || r.Payments != 1 {
		t.Errorf("row = %+v", r)
	}
}

func TestSummarize(t *testing.T) {
	late := debtWith("100", "40")
	late.DueDate = "2025-01-01"
	done := debtWith("50", "50")
	tot := Summarize([]model.Debt{late, done}, today)

	if !tot.Owed.Equal(dec("150")) || !tot.Paid.Equal(dec("90")) || !tot.Remaining.Equal(dec("60")) {
		t.Fatalf("totals = %+v", tot)
	}
	if tot.Open != 1 || tot.Overdue != 1 {
		t.Fatalf("counts open=%d overdue=%d", tot.Open, tot.Overdue)
	}
}

func TestBookLifecycle(t *testing.T) {
	kv := store.NewMemory()
	b, err := Open(kv)
	if err != nil {
		t.Fatal(err)
	}

	d, err := b.Upsert(model.DebtInput{Description: "Laptop", TotalAmount: dec("500"), StartDate: today, DueDate: "2025-7-1"})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if d.DueDate != "2025-07-01" {
		t.Errorf("DueDate = %q, want normalized", d.DueDate)
	}

	if _, err := b.AddPayment(d.ID, dec("200"), today); err != nil {
		t.Fatalf("AddPayment: %v", err)
	}
	if _, err := b.AddPayment(d.ID, dec("300.01"), today); !errors.Is(err, ErrOverpayment) {
		t.Fatalf("overpayment err = %v", err)
	}
	if _, err := b.AddPayment(d.ID, dec("0"), today); !errors.Is(err, ErrInvalid) {
		t.Fatalf("zero payment err = %v", err)
	}

	// Edit keeps the ledger.
	edited, err := b.Upsert(model.DebtInput{ID: d.ID, Description: "Laptop Pro", TotalAmount: dec("600"), StartDate: today})
	if err != nil {
		t.Fatal(err)
	}
	if len(edited.Payments) != 1 || edited.DueDate != "" {
		t.Fatalf("edited = %+v", edited)
	}
	if got := Remaining(edited); !got.Equal(dec("400")) {
		t.Fatalf("Remaining after edit = %s, want 400", got)
	}

	reopened, err := Open(kv)
	if err != nil {
		t.Fatal(err)
	}
	got, err := reopened.Find(d.ID)
	if err != nil || got.Description != "Laptop Pro" || len(got.Payments) != 1 {
		t.Fatalf("reloaded = %+v, %v", got, err)
	}

	if err := b.Delete(d.ID); err != nil {
		t.Fatal(err)
	}
	if err := b.Delete(d.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete err = %v", err)
	}
}

func TestBookUpsertValidates(t *testing.T) {
	b, _ := Open(store.NewMemory())
	cases := []model.DebtInput{
		{Description: "", TotalAmount: dec("1"), StartDate: today},
		{Description: "x", TotalAmount: dec("0"), StartDate: today},
		{Description: "x", TotalAmount: dec("1")},
		{Description: "x", TotalAmount: dec("1"), StartDate: today, DueDate: "later"},
	}
	for _, in := range cases {
		if _, err := b.Upsert(in); !errors.Is(err, ErrInvalid) {
			t.Errorf("Upsert(%+v) err = %v, want ErrInvalid", in, err)
		}
	}
}

// readOnlyKV reads from Memory but rejects writes once failing is set.
type readOnlyKV struct {
	*store.Memory
	failing bool
}

func (kv *readOnlyKV) Put(key string, value []byte) error {
	if kv.failing {
		return errors.New("disk full")
	}
	return kv.Memory.Put(key, value)
}

func TestBookFailedSaveKeepsState(t *testing.T) {
	kv := &readOnlyKV{Memory: store.NewMemory()}
	b, _ := Open(kv)
	d, err := b.Upsert(model.DebtInput{Description: "Loan", TotalAmount: dec("500"), StartDate: today})
	if err != nil {
		t.Fatal(err)
	}
	kv.failing = true

	if _, err := b.Upsert(model.DebtInput{Description: "Other", TotalAmount: dec("10"), StartDate: today}); err == nil {
		t.Fatal("create succeeded with a failing store")
	}
	if _, err := b.Upsert(model.DebtInput{ID: d.ID, Description: "Renamed", TotalAmount: dec("900"), StartDate: today}); err == nil {
		t.Fatal("edit succeeded with a failing store")
	}
	if _, err := b.AddPayment(d.ID, dec("100"), today); err == nil {
		t.Fatal("AddPayment succeeded with a failing store")
	}
	if err := b.Delete(d.ID); err == nil {
		t.Fatal("Delete succeeded with a failing store")
	}

	if b.Len() != 1 {
		t.Fatalf("Len = %d, want 1", b.Len())
	}
	got, _ := b.Find(d.ID)
	if got.Description != "Loan" || !got.TotalAmount.Equal(dec("500")) || len(got.Payments) != 0 {
		t.Fatalf("in-memory debt drifted from disk: %+v", got)
	}
}

func TestSuggestedPaymentRoundsToCents(t *testing.T) {
	b, _ := Open(store.NewMemory())
	d, err := b.Upsert(model.DebtInput{Description: "Split bill", TotalAmount: dec("333.335"), StartDate: today})
	if err != nil {
		t.Fatal(err)
	}
	if d, err = b.AddPayment(d.ID, dec("100"), today); err != nil {
		t.Fatal(err)
	}

	limit := SuggestedPayment(d)
	if !limit.Equal(dec("233.34")) {
		t.Fatalf("SuggestedPayment = %s, want 233.34", limit)
	}
	if d, err = b.AddPayment(d.ID, limit, today); err != nil {
		t.Fatalf("paying the suggested amount: %v", err)
	}
	if !Balance(d).IsZero() || !SuggestedPayment(d).IsZero() {
		t.Errorf("after paying off: Balance = %s, SuggestedPayment = %s", Balance(d), SuggestedPayment(d))
	}
}
