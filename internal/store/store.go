package store

import (
	"encoding/json"
	"fmt"
	"time"

	"focusguard/internal/logger"
	"focusguard/internal/state"
)

// DocumentKey is the single key the composite state lives under.
const DocumentKey = "focusguard"

// Storage is the persistent key-value collaborator.
type Storage interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
}

// Syncer pushes the full state to the remote service after writes.
type Syncer interface {
	IsAuthenticated() bool
	SyncData(doc state.Document) error
}

// Store loads and saves the composite state document. Loads overlay persisted
// partial state onto defaults one level deep; saves optionally push the state
// to the remote syncer, best effort.
type Store struct {
	storage Storage
	syncer  Syncer
	now     func() time.Time
}

func New(storage Storage, syncer Syncer) *Store {
	return &Store{storage: storage, syncer: syncer, now: time.Now}
}

// WithClock overrides the clock used for default documents.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Load returns defaults overlaid with whatever partial document is persisted.
// A corrupt stored document degrades to defaults.
func (s *Store) Load() (state.Document, error) {
	defaults := state.Default(s.now())
	raw, ok, err := s.storage.Get(DocumentKey)
	if err != nil {
		return defaults, fmt.Errorf("load state: %w", err)
	}
	if !ok {
		return defaults, nil
	}
	doc, err := state.Overlay(defaults, raw)
	if err != nil {
		logger.Warnf("Stored state unreadable, falling back to defaults: %v", err)
		return defaults, nil
	}
	return doc, nil
}

// Save persists the document and then, when sync is on and a session exists,
// pushes it to the remote service. Sync failures are logged and swallowed.
func (s *Store) Save(doc state.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := s.storage.Set(DocumentKey, raw); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	if doc.Settings.SyncEnabled && s.syncer != nil && s.syncer.IsAuthenticated() {
		if err := s.syncer.SyncData(doc); err != nil {
			logger.Warnf("Sync push failed: %v", err)
		}
	}
	return nil
}
