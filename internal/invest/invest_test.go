package invest

import (
	"errors"
	"testing"

	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/money"
	"github.com/theirongolddev/fintrack/internal/store"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAllocate1000(t *testing.T) {
	a := Allocate(dec("1000"))
	want := map[string]decimal.Decimal{
		"crypto":      dec("100"),
		"dollar":      dec("450"),
		"usStocks":    dec("270"),
		"usEtf":       dec("180"),
		"fixedIncome": dec("180"),
		"brStocks":    dec("270"),
	}
	got := map[string]decimal.Decimal{
		"crypto":      a.Crypto,
		"dollar":      a.Dollar,
		"usStocks":    a.USStocks,
		"usEtf":       a.USETF,
		"fixedIncome": a.FixedIncome,
		"brStocks":    a.BRStocks,
	}
	for k, w := range want {
		if !got[k].Equal(w) {
			t.Errorf("%s = %s, want %s", k, got[k], w)
		}
	}
}

func TestAllocateBucketsSumToTotal(t *testing.T) {
	for _, s := range []string{"0.01", "1", "33.33", "1234.56", "999999.99"} {
		total := dec(s)
		a := Allocate(total)
		if sum := money.Sum(a.Crypto, a.Dollar, a.FixedIncome, a.BRStocks); !sum.Equal(total) {
			t.Errorf("Allocate(%s) buckets sum to %s", s, sum)
		}
		if split := a.USStocks.Add(a.USETF); !split.Equal(a.Dollar) {
			t.Errorf("Allocate(%s) dollar split sums to %s, want %s", s, split, a.Dollar)
		}
	}
}

func TestAllocateNonPositive(t *testing.T) {
	if a := Allocate(dec("-5")); !a.IsZero() {
		t.Fatalf("Allocate(-5) = %+v, want zero", a)
	}
}

func TestWeightsFromPercent(t *testing.T) {
	w, err := WeightsFromPercent(Percentages{Crypto: 20, Dollar: 30, FixedIncome: 25, BRStocks: 25, USStocks: 50, USETF: 50})
	if err != nil {
		t.Fatalf("WeightsFromPercent: %v", err)
	}
	if a := w.Allocate(dec("100")); !a.Crypto.Equal(dec("20")) || !a.USETF.Equal(dec("15")) {
		t.Fatalf("allocation = %+v", a)
	}

	bad := []Percentages{
		{Crypto: 10, Dollar: 45, FixedIncome: 18, BRStocks: 20, USStocks: 60, USETF: 40},
		{Crypto: 10, Dollar: 45, FixedIncome: 18, BRStocks: 27, USStocks: 70, USETF: 40},
		{Crypto: -10, Dollar: 65, FixedIncome: 18, BRStocks: 27, USStocks: 60, USETF: 40},
	}
	for _, p := range bad {
		if _, err := WeightsFromPercent(p); !errors.Is(err, ErrInvalidAllocation) {
			t.Errorf("WeightsFromPercent(%+v) err = %v", p, err)
		}
	}
}

func TestInUSD(t *testing.T) {
	a := Allocate(dec("1000"))
	if _, ok := a.InUSD(decimal.Zero); ok {
		t.Fatal("InUSD with zero rate should report false")
	}
	v, ok := a.InUSD(dec("0.2"))
	if !ok || !v.Dollar.Equal(dec("90")) || !v.USStocks.Equal(dec("54")) || !v.USETF.Equal(dec("36")) {
		t.Fatalf("InUSD = %+v, %v", v, ok)
	}
}

func TestSaveAllocationIsAdditive(t *testing.T) {
	b, err := OpenWallet(store.NewMemory(), DefaultWeights())
	if err != nil {
		t.Fatal(err)
	}
	if err := b.SaveAllocation(Allocate(dec("1000"))); err != nil {
		t.Fatal(err)
	}
	if err := b.SaveAllocation(Allocate(dec("500"))); err != nil {
		t.Fatal(err)
	}
	w := b.Wallet()
	if !w.Initial[model.Crypto].Equal(dec("150")) || !w.Initial[model.USStocks].Equal(dec("405")) {
		t.Fatalf("initial = %v", w.Initial)
	}
	if err := b.SaveAllocation(Allocate(dec("0"))); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero contribution err = %v", err)
	}
}

func TestSetCurrentDollarCombined(t *testing.T) {
	t.Run("no basis uses default split", func(t *testing.T) {
		w, err := SetCurrent(model.NewWallet(), model.DollarCombined, dec("100"), dec("0.6"))
		if err != nil {
			t.Fatal(err)
		}
		if !w.Current[model.USStocks].Equal(dec("60")) || !w.Current[model.USETF].Equal(dec("40")) {
			t.Fatalf("current = %v", w.Current)
		}
	})

	t.Run("follows basis proportion", func(t *testing.T) {
		w := model.NewWallet()
		w.Initial[model.USStocks] = dec("300")
		w.Initial[model.USETF] = dec("100")
		w, err := SetCurrent(w, model.DollarCombined, dec("800"), dec("0.6"))
		if err != nil {
			t.Fatal(err)
		}
		if !w.Current[model.USStocks].Equal(dec("600")) || !w.Current[model.USETF].Equal(dec("200")) {
			t.Fatalf("current = %v", w.Current)
		}
	})

	t.Run("parts always sum to the value", func(t *testing.T) {
		w := model.NewWallet()
		w.Initial[model.USStocks] = dec("1")
		w.Initial[model.USETF] = dec("2")
		w, _ = SetCurrent(w, model.DollarCombined, dec("100"), dec("0.6"))
		if sum := w.Current[model.USStocks].Add(w.Current[model.USETF]); !sum.Equal(dec("100")) {
			t.Fatalf("sum = %s", sum)
		}
	})

	t.Run("rejects bad input", func(t *testing.T) {
		if _, err := SetCurrent(model.NewWallet(), "gold", dec("1"), dec("0.6")); !errors.Is(err, ErrUnknownCategory) {
			t.Errorf("unknown category err = %v", err)
		}
		if _, err := SetCurrent(model.NewWallet(), model.Crypto, dec("-1"), dec("0.6")); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("negative err = %v", err)
		}
	})
}

func TestProfitLoss(t *testing.T) {
	w := model.NewWallet()
	w.Initial[model.Crypto] = dec("100")
	w.Current[model.Crypto] = dec("150")
	w.Initial[model.BRStocks] = dec("200")
	w.Current[model.BRStocks] = dec("150")
	w.Current[model.FixedIncome] = dec("10")

	r := ProfitLoss(w)

	crypto, _ := r.Bucket(model.Crypto)
	if !crypto.Value.Equal(dec("50")) || crypto.PercentString() != "50.00%" || crypto.Sign() != 1 {
		t.Errorf("crypto = %+v", crypto)
	}
	br, _ := r.Bucket(model.BRStocks)
	if !br.Value.Equal(dec("-50")) || br.PercentString() != "-25.00%" || br.Sign() != -1 {
		t.Errorf("brStocks = %+v", br)
	}
	fixed, _ := r.Bucket(model.FixedIncome)
	if fixed.Percent != nil || fixed.PercentString() != "" {
		t.Errorf("fixedIncome percent with zero basis = %v", fixed.Percent)
	}
	if !r.Total.Value.Equal(dec("10")) {
		t.Errorf("total = %s, want 10", r.Total.Value)
	}
	if lines := r.Lines(); len(lines) != 4 || lines[3].Category != model.DollarCombined {
		t.Errorf("lines = %+v", lines)
	}
}

func TestEditInitialAndReset(t *testing.T) {
	kv := store.NewMemory()
	b, _ := OpenWallet(kv, DefaultWeights())
	if err := b.EditInitial(map[model.Category]decimal.Decimal{model.Crypto: dec("42")}); err != nil {
		t.Fatal(err)
	}
	reopened, _ := OpenWallet(kv, DefaultWeights())
	if got := reopened.Wallet().Initial[model.Crypto]; !got.Equal(dec("42")) {
		t.Fatalf("reloaded crypto = %s", got)
	}
	if err := b.EditInitial(map[model.Category]decimal.Decimal{model.Crypto: dec("-1")}); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("negative edit err = %v", err)
	}

	if err := b.Reset(); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := kv.Get(store.KeyWallet); ok {
		t.Fatal("wallet key still present after Reset")
	}
	if ti, _ := Totals(b.Wallet()); !ti.IsZero() {
		t.Fatalf("initial total after reset = %s", ti)
	}
}
