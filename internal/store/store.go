// Package store persists widget documents in a local SQLite file.
//
// Each widget owns one key and stores its whole collection as a JSON
// document under it, so a save is a single row replace.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Keys used by the widgets.
const (
	KeySubscriptions = "subscriptions"
	KeyDebts         = "debts"
	KeyWallet        = "investmentWallet"
)

// KV is the minimal document storage the widget books need.
type KV interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
	Delete(key string) error
}

// Store is the SQLite-backed KV.
type Store struct {
	db *sql.DB
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "fintrack")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "fintrack")
}

// CacheDir returns the XDG-compliant cache directory, used for runtime
// files such as the daemon PID and logs.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "fintrack")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "fintrack")
}

// DefaultPath returns the default database location.
func DefaultPath() string {
	return filepath.Join(DataDir(), "fintrack.db")
}

// Open opens or creates the database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the document stored under key.
func (s *Store) Get(key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", key, err)
	}
	return []byte(value), true, nil
}

// Put replaces the document stored under key.
func (s *Store) Put(key string, value []byte) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(`INSERT OR REPLACE INTO kv (key, value, updated_at) VALUES (?, ?, ?)`,
		key, string(value), now)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// Entry describes one stored document.
type Entry struct {
	Key       string
	Size      int
	UpdatedAt time.Time
}

// Entries lists stored documents, sorted by key.
func (s *Store) Entries() ([]Entry, error) {
	rows, err := s.db.Query("SELECT key, length(value), updated_at FROM kv ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("reading entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		var e Entry
		var updated string
		if err := rows.Scan(&e.Key, &e.Size, &updated); err != nil {
			return nil, fmt.Errorf("reading entries: %w", err)
		}
		e.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading entries: %w", err)
	}
	return out, nil
}

// LoadJSON decodes the document under key into v.
// It reports false, leaving v untouched, when the key is absent.
func LoadJSON(kv KV, key string, v any) (bool, error) {
	data, ok, err := kv.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

// SaveJSON encodes v and stores it under key.
func SaveJSON(kv KV, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return kv.Put(key, data)
}

// Memory is an in-process KV, used by tests and dry runs.
type Memory struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *Memory) Put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Keys returns the stored keys, sorted.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
