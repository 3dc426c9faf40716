// Package store provides the in-memory record store and the persistent
// journal of committed reports.
package store

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/christaic/bot-incidenciasPEXT/internal/models"
)

// ErrActiveRecord is returned by Create when the chat already has an active
// draft. A new interview cannot start while one is in progress.
var ErrActiveRecord = errors.New("an active record already exists for this chat")

// RecordStore holds the mutable draft record per conversation, keyed by chat.
// The chat transport dispatches events for one chat sequentially, so no
// intra-key locking is needed; the map itself is guarded for cross-chat
// concurrency.
type RecordStore struct {
	mu      sync.RWMutex
	records map[int64]*models.Record
}

// NewRecordStore creates an empty record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{records: make(map[int64]*models.Record)}
}

// Create starts a new draft record for a chat. It fails with ErrActiveRecord
// when an active draft already exists.
func (s *RecordStore) Create(chatID, userID int64, first models.Step) (*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.records[chatID]; ok && existing.Active {
		slog.Debug("RecordStore.Create: active record exists", "chatID", chatID, "recordID", existing.ID)
		return nil, ErrActiveRecord
	}
	rec := models.NewRecord(chatID, userID, first)
	s.records[chatID] = rec
	slog.Info("RecordStore.Create: record created", "chatID", chatID, "recordID", rec.ID)
	return rec, nil
}

// Get returns the record for a chat, if any.
func (s *RecordStore) Get(chatID int64) (*models.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[chatID]
	return rec, ok
}

// Clear removes the record for a chat unconditionally. Used on save and on
// cancel.
func (s *RecordStore) Clear(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[chatID]; ok {
		slog.Info("RecordStore.Clear: record removed", "chatID", chatID, "recordID", rec.ID)
	}
	delete(s.records, chatID)
}

// Active reports whether a chat currently has an active draft.
func (s *RecordStore) Active(chatID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[chatID]
	return ok && rec.Active
}
