package schedule

import (
	"sync"

	"github.com/google/uuid"
)

// Logger defines the logging interface used by the schedule package.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Store is the in-memory schedule rule collection plus the sunrise/sunset
// configuration.
//
// All reads and writes serialize through a single mutex; operations are
// short and never perform I/O while holding the lock, so rule mutations
// from the API are never blocked behind slow hardware or persistence
// calls. Mutations are immediately visible to the next evaluation.
//
// Rules keep their insertion order internally. That order is the
// tie-break for rules sharing a StartTime, so active/previous lookups
// stay consistent between evaluations.
type Store struct {
	mu     sync.Mutex
	rules  []Rule
	sun    SunConfig
	logger Logger
}

// NewStore creates an empty Store with the given initial sunrise/sunset
// configuration (typically seeded from the site config; a persisted
// document overrides it on load).
func NewStore(sun SunConfig) *Store {
	return &Store{
		sun:    sun,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the store.
func (s *Store) SetLogger(logger Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = logger
}

// GenerateID returns a new opaque rule identifier.
func GenerateID() string {
	return uuid.New().String()
}

// Rules returns an independent copy of all rules. Mutating the result
// never affects the store.
func (s *Store) Rules() []Rule {
	s.mu.Lock()
	defer s.mu.Unlock()

	rules := make([]Rule, len(s.rules))
	for i := range s.rules {
		rules[i] = *s.rules[i].DeepCopy()
	}
	return rules
}

// Add inserts a rule. An empty ID is assigned a generated one, and an
// empty Days set defaults to all seven weekdays. Returns the stored rule.
func (s *Store) Add(rule Rule) Rule {
	if rule.ID == "" {
		rule.ID = GenerateID()
	}
	if len(rule.Days) == 0 {
		rule.Days = AllDays()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.rules = append(s.rules, *rule.DeepCopy())
	s.logger.Info("rule added", "id", rule.ID, "name", rule.Name, "start", rule.StartTime.String())
	return rule
}

// Remove deletes the rule with the given id. A missing id is a no-op,
// not an error; callers needing confirmation inspect the rule list.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.rules {
		if s.rules[i].ID == id {
			s.rules = append(s.rules[:i], s.rules[i+1:]...)
			s.logger.Info("rule removed", "id", id)
			return
		}
	}
	s.logger.Debug("remove ignored, rule not found", "id", id)
}

// Update replaces the rule matching the given rule's ID, preserving its
// position (and therefore its tie-break order). A missing id is a no-op.
// Returns whether a rule was replaced.
func (s *Store) Update(rule Rule) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.rules {
		if s.rules[i].ID == rule.ID {
			s.rules[i] = *rule.DeepCopy()
			s.logger.Info("rule updated", "id", rule.ID, "name", rule.Name)
			return true
		}
	}
	s.logger.Debug("update ignored, rule not found", "id", rule.ID)
	return false
}

// SunriseSunset returns the current sunrise/sunset configuration.
func (s *Store) SunriseSunset() SunConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sun
}

// SetSunriseSunset replaces the sunrise/sunset configuration.
func (s *Store) SetSunriseSunset(sun SunConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sun = sun
	s.logger.Info("sunrise/sunset config updated",
		"enabled", sun.UseSunriseSunset,
		"sunrise_brightness", sun.SunriseBrightness,
		"sunset_brightness", sun.SunsetBrightness,
	)
}

// Document returns a snapshot of the store in its persisted shape.
func (s *Store) Document() Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	rules := make([]Rule, len(s.rules))
	for i := range s.rules {
		rules[i] = *s.rules[i].DeepCopy()
	}

	return Document{
		Rules:             rules,
		UseSunriseSunset:  s.sun.UseSunriseSunset,
		SunriseBrightness: s.sun.SunriseBrightness,
		SunsetBrightness:  s.sun.SunsetBrightness,
		Latitude:          s.sun.Latitude,
		Longitude:         s.sun.Longitude,
	}
}

// LoadDocument replaces the entire store contents from a persisted snapshot.
func (s *Store) LoadDocument(doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rules = make([]Rule, len(doc.Rules))
	for i := range doc.Rules {
		s.rules[i] = *doc.Rules[i].DeepCopy()
		if len(s.rules[i].Days) == 0 {
			s.rules[i].Days = AllDays()
		}
	}
	s.sun = SunConfig{
		UseSunriseSunset:  doc.UseSunriseSunset,
		SunriseBrightness: doc.SunriseBrightness,
		SunsetBrightness:  doc.SunsetBrightness,
		Latitude:          doc.Latitude,
		Longitude:         doc.Longitude,
	}

	s.logger.Info("schedule loaded", "rules", len(s.rules), "sunrise_sunset", s.sun.UseSunriseSunset)
}

// snapshotForEvaluation returns the rules and sun config in one critical
// section so an evaluation sees a consistent view.
func (s *Store) snapshotForEvaluation() ([]Rule, SunConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rules := make([]Rule, len(s.rules))
	copy(rules, s.rules)
	return rules, s.sun
}
