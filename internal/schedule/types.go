package schedule

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Brightness bounds. Stored rule values are not constrained at creation;
// they are clamped at evaluation and at monitor-write time.
const (
	MinBrightness = 0
	MaxBrightness = 100
)

// minutesPerDay is the number of minutes in a civil day.
const minutesPerDay = 1440

// TimeOfDay is a time value with no date component, stored as minutes
// since midnight in [0, 1440). It serializes as "HH:MM:SS" so the
// persisted document stays readable and stable across versions.
type TimeOfDay int

// NewTimeOfDay builds a TimeOfDay from an hour and minute.
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// TimeOfDayFromMinutes wraps a minutes-since-midnight value into [0, 1440).
func TimeOfDayFromMinutes(minutes int) TimeOfDay {
	m := minutes % minutesPerDay
	if m < 0 {
		m += minutesPerDay
	}
	return TimeOfDay(m)
}

// TimeOfDayOf extracts the wall-clock time of day from an instant.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return NewTimeOfDay(t.Hour(), t.Minute())
}

// Hour returns the hour component (0-23).
func (t TimeOfDay) Hour() int { return int(t) / 60 }

// Minute returns the minute component (0-59).
func (t TimeOfDay) Minute() int { return int(t) % 60 }

// Minutes returns the value as minutes since midnight.
func (t TimeOfDay) Minutes() int { return int(t) }

// String renders the time as "HH:MM:SS".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:00", t.Hour(), t.Minute())
}

// MarshalJSON serializes the time as a "HH:MM:SS" string.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON parses "HH:MM" or "HH:MM:SS" strings.
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("parsing time of day: %w", err)
	}
	tod, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = tod
	return nil
}

// ParseTimeOfDay parses a "HH:MM" or "HH:MM:SS" string into a TimeOfDay.
// Seconds are accepted for compatibility with older documents but discarded.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var hour, minute, second int
	parts := strings.Count(s, ":")
	switch parts {
	case 1:
		if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
		}
	case 2:
		if _, err := fmt.Sscanf(s, "%d:%d:%d", &hour, &minute, &second); err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
		}
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	return NewTimeOfDay(hour, minute), nil
}

// Weekdays is the set of weekdays a rule is active on, serialized as
// lowercase day names for a self-describing document.
type Weekdays []time.Weekday

// weekdayNames maps serialized names to time.Weekday values.
var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// AllDays returns all seven weekdays, the default for new rules.
func AllDays() Weekdays {
	return Weekdays{
		time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
		time.Thursday, time.Friday, time.Saturday,
	}
}

// Contains reports whether the set includes the given weekday.
func (w Weekdays) Contains(day time.Weekday) bool {
	for _, d := range w {
		if d == day {
			return true
		}
	}
	return false
}

// MarshalJSON serializes the set as lowercase day names.
func (w Weekdays) MarshalJSON() ([]byte, error) {
	names := make([]string, len(w))
	for i, d := range w {
		names[i] = strings.ToLower(d.String())
	}
	return json.Marshal(names)
}

// UnmarshalJSON parses an array of day names (case-insensitive).
func (w *Weekdays) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return fmt.Errorf("parsing weekdays: %w", err)
	}
	days := make(Weekdays, 0, len(names))
	for _, name := range names {
		day, ok := weekdayNames[strings.ToLower(name)]
		if !ok {
			return fmt.Errorf("%w: %q", ErrInvalidWeekday, name)
		}
		days = append(days, day)
	}
	*w = days
	return nil
}

// Rule is a named, independently enabled brightness directive.
//
// A rule becomes active at StartTime on each of its Days and stays in
// force until the next applicable rule's start, cyclically across
// midnight. When TransitionMinutes is positive, brightness ramps from
// the previous rule's value to this rule's value over that window.
type Rule struct {
	// ID is an opaque unique identifier, assigned at creation and never reused.
	ID string `json:"id"`

	// Name is a display label with no uniqueness constraint.
	Name string `json:"name"`

	// Enabled controls whether the rule is visible to evaluation.
	Enabled bool `json:"isEnabled"`

	// StartTime is the time of day at which the rule becomes active.
	StartTime TimeOfDay `json:"startTime"`

	// Brightness is the target in [0,100]. Out-of-range stored values are
	// clamped at evaluation time, not rejected at creation.
	Brightness int `json:"brightness"`

	// TransitionMinutes is the ramp duration starting at StartTime.
	// Zero means an instantaneous step.
	TransitionMinutes int `json:"transitionMinutes"`

	// MonitorID restricts the rule to one monitor; nil applies to every monitor.
	MonitorID *string `json:"monitorId,omitempty"`

	// Days is the set of weekdays the rule is active on.
	Days Weekdays `json:"days"`
}

// DeepCopy creates an independent copy of the Rule.
// Mutating the copy never affects the original.
func (r *Rule) DeepCopy() *Rule {
	if r == nil {
		return nil
	}

	cpy := *r

	if r.MonitorID != nil {
		id := *r.MonitorID
		cpy.MonitorID = &id
	}
	if r.Days != nil {
		cpy.Days = make(Weekdays, len(r.Days))
		copy(cpy.Days, r.Days)
	}

	return &cpy
}

// appliesTo reports whether the rule targets the given monitor.
// A rule with no MonitorID applies to every monitor; a monitor-specific
// rule only matches an equal, non-empty monitor id.
func (r *Rule) appliesTo(monitorID string) bool {
	if r.MonitorID == nil {
		return true
	}
	return monitorID != "" && *r.MonitorID == monitorID
}

// SunConfig holds the sunrise/sunset portion of the schedule store.
type SunConfig struct {
	// UseSunriseSunset enables the synthetic sunrise and sunset rules.
	UseSunriseSunset bool `json:"useSunriseSunset"`

	// SunriseBrightness is the target applied at sunrise.
	SunriseBrightness int `json:"sunriseBrightness"`

	// SunsetBrightness is the target applied at sunset.
	SunsetBrightness int `json:"sunsetBrightness"`

	// Latitude and Longitude are the site coordinates in signed degrees.
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Document is the persisted aggregate: the full rule collection plus the
// sunrise/sunset configuration. Field names are stable across versions.
type Document struct {
	Rules             []Rule  `json:"rules"`
	UseSunriseSunset  bool    `json:"useSunriseSunset"`
	SunriseBrightness int     `json:"sunriseBrightness"`
	SunsetBrightness  int     `json:"sunsetBrightness"`
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`
}

// clampBrightness constrains a brightness value to [0,100].
func clampBrightness(v int) int {
	if v < MinBrightness {
		return MinBrightness
	}
	if v > MaxBrightness {
		return MaxBrightness
	}
	return v
}
