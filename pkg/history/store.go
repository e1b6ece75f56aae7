// Package history persists the visitor identifier and a bounded recent
// transcript across restarts, the way the browser widget kept them in
// local storage: two string-keyed entries in a small key-value store.
package history

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sanagustin/chatwidget/pkg/logger"
)

const (
	// MaxMessages bounds the persisted transcript. Persisted history is
	// always a suffix of the in-memory transcript.
	MaxMessages = 30

	visitorKey = "chat_user_id"
	historyKey = "chat_history"
)

// Record is the persisted message shape. The stored field is "type"
// rather than "role", matching what earlier widget builds wrote, so old
// stored history stays readable.
type Record struct {
	Text      string `json:"text"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

// KV is the minimal string key-value contract the store needs. Absent
// keys report ok=false, not an error.
type KV interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// Store reads and writes visitor identity and bounded history through a KV.
type Store struct {
	kv  KV
	max int
}

func NewStore(kv KV, max int) *Store {
	if max <= 0 {
		max = MaxMessages
	}
	return &Store{kv: kv, max: max}
}

// Load returns the persisted history. A missing key means a first visit
// and yields an empty history; malformed stored JSON is logged and
// treated the same. Load never fails the caller.
func (s *Store) Load() []Record {
	raw, ok, err := s.kv.Get(historyKey)
	if err != nil {
		logger.WarnCF("history", "Reading stored history failed, starting empty",
			map[string]interface{}{"error": err.Error()})
		return nil
	}
	if !ok || raw == "" {
		return nil
	}

	var records []Record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		logger.WarnCF("history", "Stored history is malformed, starting empty",
			map[string]interface{}{"error": err.Error()})
		return nil
	}
	return records
}

// Save persists records, trimmed to the most recent max entries.
func (s *Store) Save(records []Record) error {
	if len(records) > s.max {
		records = records[len(records)-s.max:]
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	return s.kv.Set(historyKey, string(data))
}

// VisitorID returns the stored visitor identifier, generating and
// persisting a fresh one only when no non-empty value is stored. The
// identifier is never regenerated while a stored value is present.
func (s *Store) VisitorID() (string, error) {
	stored, ok, err := s.kv.Get(visitorKey)
	if err != nil {
		return "", fmt.Errorf("reading visitor id: %w", err)
	}
	if ok && stored != "" {
		return stored, nil
	}

	id := newVisitorID()
	if err := s.kv.Set(visitorKey, id); err != nil {
		return "", fmt.Errorf("persisting visitor id: %w", err)
	}
	logger.InfoCF("history", "Generated new visitor id", map[string]interface{}{"visitor_id": id})
	return id, nil
}

// newVisitorID builds a pseudo-random identifier: a random suffix plus
// the creation timestamp, opaque to the backend.
func newVisitorID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("web_%s_%d", suffix, time.Now().UnixMilli())
}
