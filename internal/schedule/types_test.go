package schedule

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{"00:00", NewTimeOfDay(0, 0), false},
		{"08:30", NewTimeOfDay(8, 30), false},
		{"23:59", NewTimeOfDay(23, 59), false},
		{"20:00:00", NewTimeOfDay(20, 0), false},
		{"06:15:45", NewTimeOfDay(6, 15), false}, // seconds discarded
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"noon", 0, true},
		{"", 0, true},
		{"1:2:3:4", 0, true},
	}

	for _, tc := range tests {
		got, err := ParseTimeOfDay(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseTimeOfDay(%q) expected error, got %v", tc.in, got)
			} else if !errors.Is(err, ErrInvalidTimeOfDay) {
				t.Errorf("ParseTimeOfDay(%q) error = %v, want ErrInvalidTimeOfDay", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimeOfDay(%q) unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseTimeOfDay(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestTimeOfDay_String(t *testing.T) {
	if got := NewTimeOfDay(8, 5).String(); got != "08:05:00" {
		t.Errorf("String() = %q, want %q", got, "08:05:00")
	}
	if got := NewTimeOfDay(0, 0).String(); got != "00:00:00" {
		t.Errorf("String() = %q, want %q", got, "00:00:00")
	}
}

func TestTimeOfDayFromMinutes_Wraps(t *testing.T) {
	if got := TimeOfDayFromMinutes(1500); got != NewTimeOfDay(1, 0) {
		t.Errorf("TimeOfDayFromMinutes(1500) = %v, want 01:00", got)
	}
	if got := TimeOfDayFromMinutes(-60); got != NewTimeOfDay(23, 0) {
		t.Errorf("TimeOfDayFromMinutes(-60) = %v, want 23:00", got)
	}
}

func TestRule_JSONFieldNames(t *testing.T) {
	// Persisted field names are part of the document format and must
	// not drift.
	monitorID := "monitor-1"
	rule := Rule{
		ID:                "r1",
		Name:              "Evening",
		Enabled:           true,
		StartTime:         NewTimeOfDay(20, 0),
		Brightness:        30,
		TransitionMinutes: 45,
		MonitorID:         &monitorID,
		Days:              Weekdays{time.Monday, time.Friday},
	}

	data, err := json.Marshal(rule)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	for _, key := range []string{"id", "name", "isEnabled", "startTime", "brightness", "transitionMinutes", "monitorId", "days"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("serialized rule missing field %q: %s", key, data)
		}
	}
	if raw["startTime"] != "20:00:00" {
		t.Errorf("startTime = %v, want %q", raw["startTime"], "20:00:00")
	}

	days, ok := raw["days"].([]any)
	if !ok || len(days) != 2 {
		t.Fatalf("days = %v, want two entries", raw["days"])
	}
	if days[0] != "monday" || days[1] != "friday" {
		t.Errorf("days = %v, want [monday friday]", days)
	}
}

func TestRule_JSONRoundTrip(t *testing.T) {
	original := Rule{
		ID:                "r2",
		Name:              "Morning",
		Enabled:           true,
		StartTime:         NewTimeOfDay(6, 30),
		Brightness:        80,
		TransitionMinutes: 15,
		Days:              AllDays(),
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded Rule
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if decoded.StartTime != original.StartTime {
		t.Errorf("StartTime = %v, want %v", decoded.StartTime, original.StartTime)
	}
	if decoded.MonitorID != nil {
		t.Errorf("MonitorID = %v, want nil", *decoded.MonitorID)
	}
	if len(decoded.Days) != 7 {
		t.Errorf("Days length = %d, want 7", len(decoded.Days))
	}
}

func TestWeekdays_UnmarshalRejectsUnknown(t *testing.T) {
	var days Weekdays
	err := json.Unmarshal([]byte(`["monday","funday"]`), &days)
	if !errors.Is(err, ErrInvalidWeekday) {
		t.Errorf("error = %v, want ErrInvalidWeekday", err)
	}
}

func TestRule_AppliesTo(t *testing.T) {
	monitorID := "monitor-1"
	global := Rule{ID: "g"}
	scoped := Rule{ID: "s", MonitorID: &monitorID}

	if !global.appliesTo("monitor-1") {
		t.Error("global rule should apply to a named monitor")
	}
	if !global.appliesTo("") {
		t.Error("global rule should apply to the empty monitor")
	}
	if !scoped.appliesTo("monitor-1") {
		t.Error("scoped rule should apply to its monitor")
	}
	if scoped.appliesTo("monitor-2") {
		t.Error("scoped rule should not apply to another monitor")
	}
	if scoped.appliesTo("") {
		t.Error("scoped rule should not apply to the empty monitor")
	}
}

func TestRule_DeepCopyIsolation(t *testing.T) {
	monitorID := "monitor-1"
	original := Rule{
		ID:        "r3",
		MonitorID: &monitorID,
		Days:      Weekdays{time.Monday},
	}

	cpy := original.DeepCopy()
	*cpy.MonitorID = "other"
	cpy.Days[0] = time.Sunday

	if *original.MonitorID != "monitor-1" {
		t.Errorf("MonitorID mutated through copy: %q", *original.MonitorID)
	}
	if original.Days[0] != time.Monday {
		t.Errorf("Days mutated through copy: %v", original.Days[0])
	}
}

func TestClampBrightness(t *testing.T) {
	tests := []struct{ in, want int }{
		{-5, 0},
		{0, 0},
		{55, 55},
		{100, 100},
		{150, 100},
	}
	for _, tc := range tests {
		if got := clampBrightness(tc.in); got != tc.want {
			t.Errorf("clampBrightness(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
