package schedule

import (
	"testing"
	"time"
)

// monday returns a fixed Monday with the given wall-clock time.
func monday(hour, minute int) time.Time {
	return time.Date(2026, 8, 24, hour, minute, 0, 0, time.UTC)
}

func newTestEvaluator(rules ...Rule) (*Store, *Evaluator) {
	store := NewStore(SunConfig{})
	for _, r := range rules {
		store.Add(r)
	}
	return store, NewEvaluator(store)
}

func TestEvaluate_NoRules(t *testing.T) {
	_, eval := newTestEvaluator()

	if _, ok := eval.Evaluate("monitor-1", monday(12, 0)); ok {
		t.Error("Evaluate() with no rules should report no applicable rule")
	}
}

func TestEvaluate_SingleRuleAlwaysActive(t *testing.T) {
	_, eval := newTestEvaluator(
		Rule{ID: "only", Enabled: true, StartTime: NewTimeOfDay(8, 0), Brightness: 70},
	)

	// A single rule is in force for the whole cycle, including the
	// hours before its start time, which belong to yesterday's cycle.
	for _, tc := range []struct{ hour, minute int }{
		{8, 0}, {15, 30}, {23, 59}, {0, 0}, {7, 59},
	} {
		got, ok := eval.Evaluate("monitor-1", monday(tc.hour, tc.minute))
		if !ok {
			t.Fatalf("Evaluate() at %02d:%02d reported no rule", tc.hour, tc.minute)
		}
		if got != 70 {
			t.Errorf("Evaluate() at %02d:%02d = %d, want 70", tc.hour, tc.minute, got)
		}
	}
}

func TestEvaluate_SelectsLatestStartedRule(t *testing.T) {
	_, eval := newTestEvaluator(
		Rule{ID: "day", Enabled: true, StartTime: NewTimeOfDay(8, 0), Brightness: 80},
		Rule{ID: "night", Enabled: true, StartTime: NewTimeOfDay(20, 0), Brightness: 30},
	)

	if got, _ := eval.Evaluate("m", monday(12, 0)); got != 80 {
		t.Errorf("midday brightness = %d, want 80", got)
	}
	if got, _ := eval.Evaluate("m", monday(21, 0)); got != 30 {
		t.Errorf("evening brightness = %d, want 30", got)
	}
	if got, _ := eval.Evaluate("m", monday(8, 0)); got != 80 {
		t.Errorf("brightness at exact start = %d, want 80", got)
	}
}

func TestEvaluate_WrapsToLastRuleBeforeFirstStart(t *testing.T) {
	// At 07:00, before the first rule of the day has started, the last
	// rule of the cycle (20:00) is still in force from yesterday.
	_, eval := newTestEvaluator(
		Rule{ID: "day", Enabled: true, StartTime: NewTimeOfDay(8, 0), Brightness: 80},
		Rule{ID: "night", Enabled: true, StartTime: NewTimeOfDay(20, 0), Brightness: 30},
	)

	got, ok := eval.Evaluate("m", monday(7, 0))
	if !ok {
		t.Fatal("Evaluate() before first rule reported no rule")
	}
	if got != 30 {
		t.Errorf("brightness at 07:00 = %d, want 30 (carried over from 20:00 rule)", got)
	}

	rule, ok := eval.ActiveRule("m", monday(7, 0))
	if !ok || rule.ID != "night" {
		t.Errorf("ActiveRule at 07:00 = %v, want night rule", rule.ID)
	}
}

func TestEvaluate_TransitionSmoothStep(t *testing.T) {
	// 20 -> 80 over 60 minutes starting at 08:00.
	_, eval := newTestEvaluator(
		Rule{ID: "low", Enabled: true, StartTime: NewTimeOfDay(0, 0), Brightness: 20},
		Rule{ID: "high", Enabled: true, StartTime: NewTimeOfDay(8, 0), Brightness: 80, TransitionMinutes: 60},
	)

	// At the start of the transition the previous level still holds.
	if got, _ := eval.Evaluate("m", monday(8, 0)); got != 20 {
		t.Errorf("brightness at transition start = %d, want 20", got)
	}

	// The smooth-step curve passes through the exact midpoint.
	if got, _ := eval.Evaluate("m", monday(8, 30)); got != 50 {
		t.Errorf("brightness at transition midpoint = %d, want 50", got)
	}

	// Smooth-step eases in: the first quarter covers less than a
	// quarter of the range.
	got, _ := eval.Evaluate("m", monday(8, 15))
	if got <= 20 || got >= 35 {
		t.Errorf("brightness at quarter point = %d, want in (20,35)", got)
	}

	// After the window the target holds.
	if got, _ := eval.Evaluate("m", monday(9, 0)); got != 80 {
		t.Errorf("brightness after transition = %d, want 80", got)
	}
	if got, _ := eval.Evaluate("m", monday(14, 0)); got != 80 {
		t.Errorf("brightness well after transition = %d, want 80", got)
	}
}

func TestEvaluate_TransitionAcrossMidnight(t *testing.T) {
	// A rule starting at 23:30 with a 60-minute ramp is still
	// transitioning at 00:15 the next day.
	_, eval := newTestEvaluator(
		Rule{ID: "day", Enabled: true, StartTime: NewTimeOfDay(9, 0), Brightness: 100},
		Rule{ID: "late", Enabled: true, StartTime: NewTimeOfDay(23, 30), Brightness: 0, TransitionMinutes: 60},
	)

	// 45 minutes in: progress 0.75, eased 0.84375, 100 -> 0 gives 15.625.
	got, ok := eval.Evaluate("m", monday(0, 15))
	if !ok {
		t.Fatal("Evaluate() past midnight reported no rule")
	}
	if got != 16 {
		t.Errorf("brightness 45 minutes into cross-midnight ramp = %d, want 16", got)
	}

	// After the ramp completes the target holds.
	if got, _ := eval.Evaluate("m", monday(1, 0)); got != 0 {
		t.Errorf("brightness after cross-midnight ramp = %d, want 0", got)
	}
}

func TestEvaluate_ZeroTransitionStepsImmediately(t *testing.T) {
	_, eval := newTestEvaluator(
		Rule{ID: "a", Enabled: true, StartTime: NewTimeOfDay(0, 0), Brightness: 10},
		Rule{ID: "b", Enabled: true, StartTime: NewTimeOfDay(12, 0), Brightness: 90},
	)

	if got, _ := eval.Evaluate("m", monday(12, 0)); got != 90 {
		t.Errorf("brightness at step boundary = %d, want immediate 90", got)
	}
}

func TestEvaluate_IgnoresDisabledRules(t *testing.T) {
	_, eval := newTestEvaluator(
		Rule{ID: "off", Enabled: false, StartTime: NewTimeOfDay(8, 0), Brightness: 99},
		Rule{ID: "on", Enabled: true, StartTime: NewTimeOfDay(6, 0), Brightness: 40},
	)

	if got, _ := eval.Evaluate("m", monday(12, 0)); got != 40 {
		t.Errorf("brightness = %d, want 40 from the enabled rule", got)
	}
}

func TestEvaluate_FiltersByWeekday(t *testing.T) {
	_, eval := newTestEvaluator(
		Rule{ID: "weekend", Enabled: true, StartTime: NewTimeOfDay(8, 0), Brightness: 60,
			Days: Weekdays{time.Saturday, time.Sunday}},
	)

	if _, ok := eval.Evaluate("m", monday(12, 0)); ok {
		t.Error("weekend rule should not apply on Monday")
	}

	saturday := time.Date(2026, 8, 22, 12, 0, 0, 0, time.UTC)
	if got, ok := eval.Evaluate("m", saturday); !ok || got != 60 {
		t.Errorf("Saturday brightness = %d (%v), want 60", got, ok)
	}
}

func TestEvaluate_FiltersByMonitor(t *testing.T) {
	m1 := "monitor-1"
	_, eval := newTestEvaluator(
		Rule{ID: "global", Enabled: true, StartTime: NewTimeOfDay(0, 0), Brightness: 50},
		Rule{ID: "scoped", Enabled: true, StartTime: NewTimeOfDay(6, 0), Brightness: 90, MonitorID: &m1},
	)

	if got, _ := eval.Evaluate("monitor-1", monday(12, 0)); got != 90 {
		t.Errorf("scoped monitor brightness = %d, want 90", got)
	}
	if got, _ := eval.Evaluate("monitor-2", monday(12, 0)); got != 50 {
		t.Errorf("other monitor brightness = %d, want 50 from global rule", got)
	}
	// The empty monitor ID sees only unrestricted rules.
	if got, _ := eval.Evaluate("", monday(12, 0)); got != 50 {
		t.Errorf("empty monitor brightness = %d, want 50", got)
	}
}

func TestEvaluate_ClampsStoredBrightness(t *testing.T) {
	_, eval := newTestEvaluator(
		Rule{ID: "hot", Enabled: true, StartTime: NewTimeOfDay(0, 0), Brightness: 150},
	)

	if got, _ := eval.Evaluate("m", monday(12, 0)); got != 100 {
		t.Errorf("brightness = %d, want clamped to 100", got)
	}
}

func TestEvaluate_TieBreakKeepsInsertionOrder(t *testing.T) {
	// Two rules with the same start: the later-added rule sorts after
	// the first, so the scan from the end picks it as active.
	_, eval := newTestEvaluator(
		Rule{ID: "first", Enabled: true, StartTime: NewTimeOfDay(8, 0), Brightness: 10},
		Rule{ID: "second", Enabled: true, StartTime: NewTimeOfDay(8, 0), Brightness: 20},
	)

	rule, ok := eval.ActiveRule("m", monday(12, 0))
	if !ok {
		t.Fatal("ActiveRule reported no rule")
	}
	if rule.ID != "second" {
		t.Errorf("active rule = %q, want %q", rule.ID, "second")
	}

	// The selection is stable: repeated evaluations agree.
	for i := 0; i < 5; i++ {
		if again, _ := eval.ActiveRule("m", monday(12, 0)); again.ID != rule.ID {
			t.Fatalf("active rule changed between evaluations: %q then %q", rule.ID, again.ID)
		}
	}
}

func TestEvaluate_SunriseSunsetRules(t *testing.T) {
	store := NewStore(SunConfig{})
	store.SetSunriseSunset(SunConfig{
		UseSunriseSunset:  true,
		SunriseBrightness: 90,
		SunsetBrightness:  20,
		Latitude:          0,
		Longitude:         0,
	})
	eval := NewEvaluator(store)

	// On the equator sunrise is near 06:00 and sunset near 18:00, so at
	// noon the sunrise rule is in force and late evening the sunset rule.
	rule, ok := eval.ActiveRule("m", monday(12, 0))
	if !ok {
		t.Fatal("ActiveRule reported no rule with sun config enabled")
	}
	if rule.ID != "sunrise" {
		t.Errorf("noon active rule = %q, want sunrise", rule.ID)
	}
	if got, _ := eval.Evaluate("m", monday(12, 0)); got != 90 {
		t.Errorf("noon brightness = %d, want 90", got)
	}

	rule, _ = eval.ActiveRule("m", monday(22, 0))
	if rule.ID != "sunset" {
		t.Errorf("evening active rule = %q, want sunset", rule.ID)
	}
	if got, _ := eval.Evaluate("m", monday(22, 0)); got != 20 {
		t.Errorf("evening brightness = %d, want 20", got)
	}
}

func TestEvaluate_SunRulesCombineWithUserRules(t *testing.T) {
	store := NewStore(SunConfig{})
	store.SetSunriseSunset(SunConfig{
		UseSunriseSunset:  true,
		SunriseBrightness: 90,
		SunsetBrightness:  20,
	})
	store.Add(Rule{ID: "lunch", Enabled: true, StartTime: NewTimeOfDay(13, 0), Brightness: 55})
	eval := NewEvaluator(store)

	// The 13:00 user rule starts after sunrise and before sunset, so it
	// takes over in the early afternoon.
	rule, ok := eval.ActiveRule("m", monday(14, 0))
	if !ok || rule.ID != "lunch" {
		t.Errorf("afternoon active rule = %q, want lunch", rule.ID)
	}
}

func TestEvaluate_SunRulesNotPersisted(t *testing.T) {
	store := NewStore(SunConfig{})
	store.SetSunriseSunset(SunConfig{UseSunriseSunset: true})

	if n := len(store.Rules()); n != 0 {
		t.Errorf("Rules() length = %d, synthetic rules must not appear in listings", n)
	}
	if n := len(store.Document().Rules); n != 0 {
		t.Errorf("Document rules = %d, synthetic rules must not be persisted", n)
	}
}

func TestSmoothStep(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{0.5, 0.5},
		{1, 1},
		{-1, 0},
		{2, 1},
	}
	for _, tc := range tests {
		if got := smoothStep(tc.in); got != tc.want {
			t.Errorf("smoothStep(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}

	// The curve is symmetric around the midpoint.
	if got := smoothStep(0.25) + smoothStep(0.75); got != 1 {
		t.Errorf("smoothStep(0.25)+smoothStep(0.75) = %v, want 1", got)
	}
}
