package state

import (
	"encoding/json"
	"fmt"
	"time"

	"focusguard/internal/schedule"
	"focusguard/internal/stats"
)

// Document is the composite persisted state. It is read-modified-written as a
// whole on every mutating command.
type Document struct {
	FocusMode      bool               `json:"focusMode"`
	BlockedSites   []string           `json:"blockedSites"`
	EnabledPresets []string           `json:"enabledPresets"`
	Stats          stats.Stats        `json:"stats"`
	Schedule       schedule.Config    `json:"schedule"`
	Password       PasswordProtection `json:"passwordProtection"`
	Settings       Settings           `json:"settings"`
}

// PasswordProtection gates turning focus mode off. Hash is a bcrypt hash of
// the chosen password.
type PasswordProtection struct {
	Enabled bool   `json:"enabled"`
	Hash    string `json:"hash"`
}

type Settings struct {
	Theme          string `json:"theme"`
	ShowMotivation bool   `json:"showMotivation"`
	PlaySound      bool   `json:"playSound"`
	StrictMode     bool   `json:"strictMode"`
	SyncEnabled    bool   `json:"syncEnabled"`
	Notifications  bool   `json:"notifications"`
}

// Export wraps a document for export with a version tag and timestamp.
type Export struct {
	Version    string    `json:"version"`
	ExportedAt time.Time `json:"exportedAt"`
	Data       Document  `json:"data"`
}

// Default builds the first-install document with boundary markers anchored
// at now.
func Default(now time.Time) Document {
	return Document{
		BlockedSites:   []string{},
		EnabledPresets: []string{},
		Stats:          stats.New(now),
		Schedule: schedule.Config{
			Days:      []int{1, 2, 3, 4, 5},
			StartTime: "09:00",
			EndTime:   "17:00",
			Timezone:  now.Location().String(),
		},
		Settings: Settings{
			Theme:          "system",
			ShowMotivation: true,
			SyncEnabled:    true,
			Notifications:  true,
		},
	}
}

// Overlay merges raw persisted JSON onto defaults exactly one level deep:
// every top-level key present in raw wholesale replaces the default for that
// key, and nested sub-objects are never deep-merged. Missing keys keep their
// defaults.
func Overlay(defaults Document, raw []byte) (Document, error) {
	base, err := json.Marshal(defaults)
	if err != nil {
		return defaults, fmt.Errorf("marshal defaults: %w", err)
	}
	var baseKeys map[string]json.RawMessage
	if err := json.Unmarshal(base, &baseKeys); err != nil {
		return defaults, fmt.Errorf("decode defaults: %w", err)
	}
	var overlay map[string]json.RawMessage
	if err := json.Unmarshal(raw, &overlay); err != nil {
		return defaults, fmt.Errorf("decode stored document: %w", err)
	}
	for k, v := range overlay {
		baseKeys[k] = v
	}
	merged, err := json.Marshal(baseKeys)
	if err != nil {
		return defaults, fmt.Errorf("merge document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(merged, &doc); err != nil {
		return defaults, fmt.Errorf("decode merged document: %w", err)
	}
	return doc, nil
}
