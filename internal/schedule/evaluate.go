package schedule

import (
	"math"
	"sort"
	"time"

	"github.com/lumatech/luxd/internal/solar"
)

// Synthetic rule constants. The sunrise and sunset rules are injected
// during evaluation only; they are never persisted and never returned
// by rule listings.
const (
	// sunriseRuleID and sunsetRuleID identify the synthetic rules in
	// notifications and telemetry.
	sunriseRuleID = "sunrise"
	sunsetRuleID  = "sunset"

	// syntheticTransitionMinutes is the ramp duration for both
	// synthetic rules.
	syntheticTransitionMinutes = 30
)

// Evaluator computes the target brightness for a monitor at an instant
// from the store's rules plus, when enabled, the synthetic sunrise and
// sunset rules.
//
// Evaluation is a pure function of the store snapshot and the clock, so
// it is safe to call concurrently with rule mutations; the store lock
// provides the happens-before edge making mutations visible to the next
// call.
type Evaluator struct {
	store *Store
}

// NewEvaluator creates an Evaluator reading from the given store.
func NewEvaluator(store *Store) *Evaluator {
	return &Evaluator{store: store}
}

// Evaluate computes the target brightness for the monitor at the given
// instant. An empty monitorID means "any monitor": only rules without a
// monitor restriction are considered.
//
// The boolean result distinguishes "no rule applies" from a valid
// brightness of zero.
//
// The day is treated as a 24-hour cycle: if the current time is before
// every rule's start, the last rule of the day is still in force from
// "yesterday". During a rule's transition window the result ramps from
// the previous rule's brightness using the Hermite smooth-step curve.
// Results are always clamped to [0,100] regardless of stored values.
func (e *Evaluator) Evaluate(monitorID string, now time.Time) (int, bool) {
	active, previous, ok := e.selectRules(monitorID, now)
	if !ok {
		return 0, false
	}

	elapsed := TimeOfDayOf(now).Minutes() - active.StartTime.Minutes()
	if elapsed < 0 {
		// The active rule started before midnight.
		elapsed += minutesPerDay
	}

	if active.TransitionMinutes > 0 && elapsed < active.TransitionMinutes {
		progress := float64(elapsed) / float64(active.TransitionMinutes)
		eased := smoothStep(progress)
		from := float64(previous.Brightness)
		to := float64(active.Brightness)
		value := int(math.Round(from + (to-from)*eased))
		return clampBrightness(value), true
	}

	return clampBrightness(active.Brightness), true
}

// ActiveRule returns the rule currently in force for the monitor, using
// the same selection logic as Evaluate. It exists for observability
// (identifying which rule drove an applied change); a missing rule is
// reported via the boolean, never as an error.
func (e *Evaluator) ActiveRule(monitorID string, now time.Time) (Rule, bool) {
	active, _, ok := e.selectRules(monitorID, now)
	if !ok {
		return Rule{}, false
	}
	return *active.DeepCopy(), true
}

// selectRules filters, sorts, and resolves the active and previous rules
// for the monitor at the given instant.
func (e *Evaluator) selectRules(monitorID string, now time.Time) (active, previous Rule, ok bool) {
	rules, sun := e.store.snapshotForEvaluation()

	if sun.UseSunriseSunset {
		rules = append(rules, syntheticRules(sun, now)...)
	}

	today := now.Weekday()
	current := TimeOfDayOf(now)

	filtered := rules[:0:0]
	for _, r := range rules {
		if !r.Enabled {
			continue
		}
		if !r.Days.Contains(today) {
			continue
		}
		if !r.appliesTo(monitorID) {
			continue
		}
		filtered = append(filtered, r)
	}

	if len(filtered) == 0 {
		return Rule{}, Rule{}, false
	}

	// Stable sort: rules sharing a StartTime keep insertion order, so the
	// active and previous lookups can never flip-flop between ticks.
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].StartTime < filtered[j].StartTime
	})

	// Scan from the latest start downward for the first rule already
	// started today. If none has, the day wraps: the last rule of the
	// day started "yesterday" and is still in force.
	activeIdx := len(filtered) - 1
	for i := len(filtered) - 1; i >= 0; i-- {
		if filtered[i].StartTime <= current {
			activeIdx = i
			break
		}
	}

	prevIdx := activeIdx - 1
	if prevIdx < 0 {
		prevIdx = len(filtered) - 1
	}

	return filtered[activeIdx], filtered[prevIdx], true
}

// syntheticRules builds the sunrise and sunset rules for the given
// instant's date. Both apply to every monitor on every day.
func syntheticRules(sun SunConfig, now time.Time) []Rule {
	sunrise, sunset := solar.EventTimes(now, sun.Latitude, sun.Longitude)

	return []Rule{
		{
			ID:                sunriseRuleID,
			Name:              "Sunrise",
			Enabled:           true,
			StartTime:         TimeOfDayFromMinutes(sunrise),
			Brightness:        sun.SunriseBrightness,
			TransitionMinutes: syntheticTransitionMinutes,
			Days:              AllDays(),
		},
		{
			ID:                sunsetRuleID,
			Name:              "Sunset",
			Enabled:           true,
			StartTime:         TimeOfDayFromMinutes(sunset),
			Brightness:        sun.SunsetBrightness,
			TransitionMinutes: syntheticTransitionMinutes,
			Days:              AllDays(),
		},
	}
}

// smoothStep applies the Hermite interpolation polynomial 3t² − 2t³,
// producing an S-curve ease-in/ease-out between 0 and 1.
func smoothStep(t float64) float64 {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}
