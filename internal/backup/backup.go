// Package backup exports and imports the ledger as one JSON document.
//
// The document has the shape of the browser widgets' localStorage: a
// top-level object with "subscriptions", "debts" and "investmentWallet"
// keys. Imports are tolerant. A record that cannot be read is skipped
// and counted, numeric IDs become strings and missing IDs are generated.
package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/store"

	"github.com/google/uuid"
)

// Keys lists the documents a backup carries, in write order.
var Keys = []string{store.KeySubscriptions, store.KeyDebts, store.KeyWallet}

// Result summarizes an import.
type Result struct {
	Subscriptions int
	Debts         int
	Wallet        bool
	Skipped       int      // records that could not be read
	Problems      []string // one line per skipped record
}

// Export writes every stored document to w as one indented JSON object.
// Absent documents are left out.
func Export(kv store.KV, w io.Writer) error {
	doc := make(map[string]json.RawMessage, len(Keys))
	for _, k := range Keys {
		data, ok, err := kv.Get(k)
		if err != nil {
			return fmt.Errorf("reading %s: %w", k, err)
		}
		if ok {
			doc[k] = data
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}
	return nil
}

// Read parses a backup without storing it.
func Read(r io.Reader) (Snapshot, Result, error) {
	var doc map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Snapshot{}, Result{}, fmt.Errorf("parsing backup: %w", err)
	}

	var snap Snapshot
	var res Result
	if raw, ok := doc[store.KeySubscriptions]; ok {
		snap.Subscriptions = []model.Subscription{}
		for i, rec := range splitArray(raw, store.KeySubscriptions, &res) {
			var s model.Subscription
			if err := decodeRecord(rec, &s); err != nil {
				res.skip(fmt.Sprintf("subscription %d: %v", i+1, err))
				continue
			}
			if s.ID == "" {
				s.ID = uuid.NewString()
			}
			if s.Status != model.StatusPaid {
				s.Status = model.StatusOpen
			}
			snap.Subscriptions = append(snap.Subscriptions, s)
		}
		res.Subscriptions = len(snap.Subscriptions)
	}

	if raw, ok := doc[store.KeyDebts]; ok {
		snap.Debts = []model.Debt{}
		for i, rec := range splitArray(raw, store.KeyDebts, &res) {
			var d model.Debt
			if err := decodeRecord(rec, &d); err != nil {
				res.skip(fmt.Sprintf("debt %d: %v", i+1, err))
				continue
			}
			if d.ID == "" {
				d.ID = uuid.NewString()
			}
			if d.Payments == nil {
				d.Payments = []model.Payment{}
			}
			snap.Debts = append(snap.Debts, d)
		}
		res.Debts = len(snap.Debts)
	}

	if raw, ok := doc[store.KeyWallet]; ok {
		var w model.Wallet
		if err := json.Unmarshal(raw, &w); err != nil {
			res.skip(fmt.Sprintf("wallet: %v", err))
		} else {
			w.Normalize()
			snap.Wallet = &w
			res.Wallet = true
		}
	}
	return snap, res, nil
}

// Snapshot is a parsed backup. Nil fields were absent from the document.
type Snapshot struct {
	Subscriptions []model.Subscription
	Debts         []model.Debt
	Wallet        *model.Wallet
}

// Import reads a backup and replaces each document it carries.
func Import(kv store.KV, r io.Reader) (Result, error) {
	snap, res, err := Read(r)
	if err != nil {
		return res, err
	}
	if snap.Subscriptions != nil {
		if err := store.SaveJSON(kv, store.KeySubscriptions, snap.Subscriptions); err != nil {
			return res, fmt.Errorf("saving subscriptions: %w", err)
		}
	}
	if snap.Debts != nil {
		if err := store.SaveJSON(kv, store.KeyDebts, snap.Debts); err != nil {
			return res, fmt.Errorf("saving debts: %w", err)
		}
	}
	if snap.Wallet != nil {
		if err := store.SaveJSON(kv, store.KeyWallet, snap.Wallet); err != nil {
			return res, fmt.Errorf("saving wallet: %w", err)
		}
	}
	return res, nil
}

func (r *Result) skip(problem string) {
	r.Skipped++
	r.Problems = append(r.Problems, problem)
}

func splitArray(raw json.RawMessage, key string, res *Result) []json.RawMessage {
	var recs []json.RawMessage
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(raw, &recs); err != nil {
		res.skip(fmt.Sprintf("%s: not a list: %v", key, err))
		return nil
	}
	return recs
}

// decodeRecord unmarshals one record into v, turning a numeric id (as
// written by Date.now()) into a string first.
func decodeRecord(rec json.RawMessage, v any) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(rec, &fields); err != nil {
		return err
	}
	if id, ok := fields["id"]; ok {
		var n json.Number
		if err := json.Unmarshal(id, &n); err == nil {
			fields["id"] = json.RawMessage(strconv.Quote(n.String()))
		}
	}
	norm, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(norm, v)
}
