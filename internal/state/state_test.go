package state

import (
	"testing"
	"time"
)

var anchor = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestDefault(t *testing.T) {
	doc := Default(anchor)
	if doc.FocusMode {
		t.Error("focus mode must default off")
	}
	if len(doc.BlockedSites) != 0 || len(doc.EnabledPresets) != 0 {
		t.Error("sites and presets must default empty")
	}
	if !doc.Settings.SyncEnabled || !doc.Settings.Notifications {
		t.Error("sync and notifications default on")
	}
	if doc.Schedule.Enabled {
		t.Error("schedule must default disabled")
	}
	if doc.Stats.LastResetDate != "2025-03-10" {
		t.Errorf("stats anchor = %q", doc.Stats.LastResetDate)
	}
}

func TestOverlayTopLevelKeys(t *testing.T) {
	raw := []byte(`{"focusMode":true,"blockedSites":["example.com"]}`)
	doc, err := Overlay(Default(anchor), raw)
	if err != nil {
		t.Fatal(err)
	}
	if !doc.FocusMode {
		t.Error("stored focusMode must win")
	}
	if len(doc.BlockedSites) != 1 || doc.BlockedSites[0] != "example.com" {
		t.Errorf("BlockedSites = %v", doc.BlockedSites)
	}
	// untouched keys keep defaults
	if !doc.Settings.SyncEnabled {
		t.Error("missing settings key must keep defaults")
	}
	if doc.Schedule.StartTime != "09:00" {
		t.Error("missing schedule key must keep defaults")
	}
}

func TestOverlayIsShallow(t *testing.T) {
	// a stored sub-object replaces the default sub-object wholesale
	raw := []byte(`{"schedule":{"enabled":true}}`)
	doc, err := Overlay(Default(anchor), raw)
	if err != nil {
		t.Fatal(err)
	}
	if !doc.Schedule.Enabled {
		t.Error("stored schedule.enabled lost")
	}
	if doc.Schedule.StartTime != "" || len(doc.Schedule.Days) != 0 {
		t.Errorf("nested defaults must NOT survive a stored sub-object: %+v", doc.Schedule)
	}
}

func TestOverlayRejectsGarbage(t *testing.T) {
	if _, err := Overlay(Default(anchor), []byte(`not json`)); err == nil {
		t.Error("expected error for malformed stored document")
	}
	if _, err := Overlay(Default(anchor), []byte(`[1,2,3]`)); err == nil {
		t.Error("expected error for non-object stored document")
	}
}
