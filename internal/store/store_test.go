package store

import (
	"path/filepath"
	"strings"
	"testing"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "fintrack.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreGetPutDelete(t *testing.T) {
	s := openTemp(t)

	if _, ok, err := s.Get(KeyDebts); err != nil || ok {
		t.Fatalf("Get on empty store = ok=%v err=%v, want absent", ok, err)
	}

	if err := s.Put(KeyDebts, []byte(`[1]`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(KeyDebts, []byte(`[1,2]`)); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}

	got, ok, err := s.Get(KeyDebts)
	if err != nil || !ok {
		t.Fatalf("Get = ok=%v err=%v", ok, err)
	}
	if string(got) != `[1,2]` {
		t.Fatalf("Get = %s, want [1,2]", got)
	}

	entries, err := s.Entries()
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 1 || entries[0].Key != KeyDebts || entries[0].Size != 5 {
		t.Fatalf("Entries = %+v", entries)
	}

	if err := s.Delete(KeyDebts); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(KeyDebts); err != nil {
		t.Fatalf("Delete missing key: %v", err)
	}
	if _, ok, _ := s.Get(KeyDebts); ok {
		t.Fatal("key still present after Delete")
	}
}

func TestStoreReopenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fintrack.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := SaveJSON(s, KeyWallet, map[string]int{"a": 1}); err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var v map[string]int
	ok, err := LoadJSON(s, KeyWallet, &v)
	if err != nil || !ok {
		t.Fatalf("LoadJSON = ok=%v err=%v", ok, err)
	}
	if v["a"] != 1 {
		t.Fatalf("LoadJSON = %v", v)
	}
}

func TestLoadJSONMissingAndCorrupt(t *testing.T) {
	m := NewMemory()

	v := []int{9}
	ok, err := LoadJSON(m, KeySubscriptions, &v)
	if err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}
	if len(v) != 1 || v[0] != 9 {
		t.Fatalf("missing key must leave target untouched, got %v", v)
	}

	_ = m.Put(KeySubscriptions, []byte("{not json"))
	if _, err := LoadJSON(m, KeySubscriptions, &v); err == nil {
		t.Fatal("corrupt document should error")
	}
}

func TestMemoryCopiesValues(t *testing.T) {
	m := NewMemory()
	buf := []byte("abc")
	_ = m.Put("k", buf)
	buf[0] = 'X'

	got, _, _ := m.Get("k")
	if string(got) != "abc" {
		t.Fatalf("Memory aliased caller buffer: %s", got)
	}
	if keys := m.Keys(); len(keys) != 1 || keys[0] != "k" {
		t.Fatalf("Keys = %v", keys)
	}
}

func TestEntriesOnClosedStore(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "fintrack.db"))
	if err != nil {
		t.Fatal(err)
	}
	_ = s.Close()
	if _, err := s.Entries(); err == nil || !strings.HasPrefix(err.Error(), "reading entries: ") {
		t.Fatalf("Entries err = %v, want a wrapped read error", err)
	}
}
