package backup

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/theirongolddev/fintrack/internal/debt"
	"github.com/theirongolddev/fintrack/internal/invest"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/store"
	"github.com/theirongolddev/fintrack/internal/subscription"

	"github.com/shopspring/decimal"
)

// browserDump is shaped like a browser localStorage dump:
// numeric ids, null values from failed number parses, unknown statuses.
const browserDump = `{
  "subscriptions": [
    {"id": 1700000000000, "name": "Netflix", "value": 39.9, "dueDate": "2025-06-01",
     "paymentMethod": "", "notes": "", "status": "open", "delayHistory": ["2025-06-02"]},
    "not a record",
    {"id": "abc", "name": "Gym", "value": null, "dueDate": "", "status": "weird", "delayHistory": []}
  ],
  "debts": [
    {"id": "1700", "description": "Car", "totalAmount": 500, "startDate": "2025-01-01",
     "dueDate": "", "notes": "", "payments": [{"amount": 200, "date": "2025-02-01"}]},
    {"description": "No id", "totalAmount": 100, "startDate": "2025-01-01", "payments": null}
  ],
  "investmentWallet": {"initial": {"crypto": 100}, "current": {"crypto": 120}}
}`

func TestImportBrowserDump(t *testing.T) {
	kv := store.NewMemory()
	res, err := Import(kv, strings.NewReader(browserDump))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Subscriptions != 2 || res.Debts != 2 || !res.Wallet {
		t.Errorf("result = %+v, want 2 subscriptions, 2 debts, wallet", res)
	}
	if res.Skipped != 1 || len(res.Problems) != 1 {
		t.Errorf("skipped = %d %v, want 1", res.Skipped, res.Problems)
	}

	subs, err := subscription.Open(kv)
	if err != nil {
		t.Fatalf("subscription.Open: %v", err)
	}
	netflix, err := subs.Find("1700000000000")
	if err != nil {
		t.Fatalf("numeric id not converted: %v", err)
	}
	if !netflix.Value.Equal(decimal.RequireFromString("39.9")) || len(netflix.DelayHistory) != 1 {
		t.Errorf("Netflix = %+v", netflix)
	}
	gym, err := subs.Find("abc")
	if err != nil {
		t.Fatalf("Find(abc): %v", err)
	}
	if gym.Status != model.StatusOpen || !gym.Value.IsZero() {
		t.Errorf("Gym status=%q value=%s, want open and zero", gym.Status, gym.Value)
	}

	debts, err := debt.Open(kv)
	if err != nil {
		t.Fatalf("debt.Open: %v", err)
	}
	car, err := debts.Find("1700")
	if err != nil {
		t.Fatalf("Find(1700): %v", err)
	}
	if got := debt.Balance(car); !got.Equal(decimal.NewFromInt(300)) {
		t.Errorf("Car balance = %s, want 300", got)
	}
	for _, d := range debts.Debts() {
		if d.ID == "" {
			t.Errorf("debt %q has no id", d.Description)
		}
	}

	wallet, err := invest.OpenWallet(kv, invest.DefaultWeights())
	if err != nil {
		t.Fatalf("OpenWallet: %v", err)
	}
	pl, _ := wallet.ProfitLoss().Bucket(model.Crypto)
	if !pl.Value.Equal(decimal.NewFromInt(20)) {
		t.Errorf("crypto P/L = %s, want 20", pl.Value)
	}
	if w := wallet.Wallet(); len(w.Initial) != len(model.Categories) {
		t.Errorf("wallet not normalized: %v", w.Initial)
	}
}

func TestImportKeepsAbsentDocuments(t *testing.T) {
	kv := store.NewMemory()
	if err := kv.Put(store.KeyDebts, []byte(`[{"id":"keep","description":"Keep","totalAmount":"10","payments":[]}]`)); err != nil {
		t.Fatal(err)
	}
	if _, err := Import(kv, strings.NewReader(`{"subscriptions": []}`)); err != nil {
		t.Fatalf("Import: %v", err)
	}
	data, ok, _ := kv.Get(store.KeyDebts)
	if !ok || !strings.Contains(string(data), "keep") {
		t.Errorf("debts document was touched: %s", data)
	}
	data, ok, _ = kv.Get(store.KeySubscriptions)
	if !ok || string(data) != "[]" {
		t.Errorf("subscriptions = %s, want []", data)
	}
}

func TestImportInvalidDocument(t *testing.T) {
	kv := store.NewMemory()
	if _, err := Import(kv, strings.NewReader(`[1, 2`)); err == nil {
		t.Fatal("expected a parse error")
	}
	if keys := kv.Keys(); len(keys) != 0 {
		t.Errorf("stored %v after a failed import", keys)
	}
}

func TestExportThenImport(t *testing.T) {
	src := store.NewMemory()
	if _, err := Import(src, strings.NewReader(browserDump)); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	var buf bytes.Buffer
	if err := Export(src, &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("export is not JSON: %v", err)
	}
	for _, k := range Keys {
		if _, ok := doc[k]; !ok {
			t.Errorf("export is missing %q", k)
		}
	}

	dst := store.NewMemory()
	res, err := Import(dst, &buf)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Subscriptions != 2 || res.Debts != 2 || !res.Wallet || res.Skipped != 0 {
		t.Errorf("re-import = %+v", res)
	}
}

func TestExportEmptyStore(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(store.NewMemory(), &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "{}" {
		t.Errorf("Export = %q, want {}", got)
	}
}
