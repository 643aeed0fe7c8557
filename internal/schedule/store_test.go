package schedule

import (
	"testing"
	"time"
)

func TestStore_AddAssignsDefaults(t *testing.T) {
	store := NewStore(SunConfig{})

	stored := store.Add(Rule{Name: "Morning", Brightness: 80})

	if stored.ID == "" {
		t.Error("Add() should assign an ID to a rule without one")
	}
	if len(stored.Days) != 7 {
		t.Errorf("Days length = %d, want all 7 by default", len(stored.Days))
	}

	rules := store.Rules()
	if len(rules) != 1 {
		t.Fatalf("Rules() length = %d, want 1", len(rules))
	}
	if rules[0].ID != stored.ID {
		t.Errorf("stored ID = %q, listed ID = %q", stored.ID, rules[0].ID)
	}
}

func TestStore_AddKeepsProvidedID(t *testing.T) {
	store := NewStore(SunConfig{})

	stored := store.Add(Rule{ID: "rule-1", Name: "Fixed"})
	if stored.ID != "rule-1" {
		t.Errorf("ID = %q, want %q", stored.ID, "rule-1")
	}
}

func TestStore_RulesReturnsCopies(t *testing.T) {
	store := NewStore(SunConfig{})
	store.Add(Rule{ID: "rule-1", Name: "Original", Days: Weekdays{time.Monday}})

	rules := store.Rules()
	rules[0].Name = "Mutated"
	rules[0].Days[0] = time.Sunday

	again := store.Rules()
	if again[0].Name != "Original" {
		t.Errorf("Name = %q, mutation leaked into store", again[0].Name)
	}
	if again[0].Days[0] != time.Monday {
		t.Errorf("Days = %v, mutation leaked into store", again[0].Days)
	}
}

func TestStore_RemoveIsIdempotent(t *testing.T) {
	store := NewStore(SunConfig{})
	store.Add(Rule{ID: "rule-1"})

	store.Remove("rule-1")
	if n := len(store.Rules()); n != 0 {
		t.Fatalf("Rules() length after remove = %d, want 0", n)
	}

	// Removing again (or removing an unknown id) must not panic or error.
	store.Remove("rule-1")
	store.Remove("never-existed")
}

func TestStore_UpdatePreservesPosition(t *testing.T) {
	store := NewStore(SunConfig{})
	store.Add(Rule{ID: "a", Name: "First"})
	store.Add(Rule{ID: "b", Name: "Second"})
	store.Add(Rule{ID: "c", Name: "Third"})

	if !store.Update(Rule{ID: "b", Name: "Renamed", Days: AllDays()}) {
		t.Fatal("Update() = false, want true for existing rule")
	}

	rules := store.Rules()
	if rules[1].ID != "b" || rules[1].Name != "Renamed" {
		t.Errorf("rules[1] = %s/%s, want b/Renamed", rules[1].ID, rules[1].Name)
	}

	if store.Update(Rule{ID: "missing"}) {
		t.Error("Update() = true for unknown rule, want false")
	}
}

func TestStore_SunriseSunsetRoundTrip(t *testing.T) {
	store := NewStore(SunConfig{Latitude: 51.5, Longitude: -0.1})

	sun := store.SunriseSunset()
	if sun.Latitude != 51.5 {
		t.Errorf("seeded Latitude = %v, want 51.5", sun.Latitude)
	}

	store.SetSunriseSunset(SunConfig{
		UseSunriseSunset:  true,
		SunriseBrightness: 90,
		SunsetBrightness:  20,
		Latitude:          40.7,
		Longitude:         -74.0,
	})

	sun = store.SunriseSunset()
	if !sun.UseSunriseSunset || sun.SunriseBrightness != 90 || sun.Longitude != -74.0 {
		t.Errorf("SunriseSunset() = %+v, replacement not applied", sun)
	}
}

func TestStore_DocumentRoundTrip(t *testing.T) {
	store := NewStore(SunConfig{})
	store.Add(Rule{ID: "a", Name: "Day", StartTime: NewTimeOfDay(8, 0), Brightness: 80})
	store.Add(Rule{ID: "b", Name: "Night", StartTime: NewTimeOfDay(20, 0), Brightness: 30})
	store.SetSunriseSunset(SunConfig{UseSunriseSunset: true, Latitude: 51.5})

	doc := store.Document()
	if len(doc.Rules) != 2 {
		t.Fatalf("Document rules = %d, want 2", len(doc.Rules))
	}
	if !doc.UseSunriseSunset || doc.Latitude != 51.5 {
		t.Errorf("Document sun fields = %+v, want enabled at 51.5", doc)
	}

	restored := NewStore(SunConfig{})
	restored.LoadDocument(doc)

	rules := restored.Rules()
	if len(rules) != 2 || rules[0].ID != "a" || rules[1].ID != "b" {
		t.Errorf("restored rules = %+v, want a then b", rules)
	}
	if sun := restored.SunriseSunset(); !sun.UseSunriseSunset {
		t.Error("restored sun config lost UseSunriseSunset")
	}
}

func TestStore_LoadDocumentReplacesEverything(t *testing.T) {
	store := NewStore(SunConfig{})
	store.Add(Rule{ID: "old"})

	store.LoadDocument(Document{
		Rules: []Rule{{ID: "new", Days: nil}},
	})

	rules := store.Rules()
	if len(rules) != 1 || rules[0].ID != "new" {
		t.Fatalf("rules after load = %+v, want only new", rules)
	}
	// Legacy documents can carry rules with no day set; they default to
	// every day on load so they stay active.
	if len(rules[0].Days) != 7 {
		t.Errorf("loaded rule days = %d, want 7", len(rules[0].Days))
	}
}

func TestGenerateID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateID()
		if id == "" {
			t.Fatal("GenerateID() returned empty string")
		}
		if seen[id] {
			t.Fatalf("GenerateID() returned duplicate %q", id)
		}
		seen[id] = true
	}
}
