package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// memoryRepository is an in-memory Repository for runner tests.
type memoryRepository struct {
	mu      sync.Mutex
	data    []byte
	saveErr error
	loadErr error
}

func (r *memoryRepository) Load(_ context.Context) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	if r.data == nil {
		return nil, ErrNoDocument
	}
	return r.data, nil
}

func (r *memoryRepository) Save(_ context.Context, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.data = append([]byte(nil), data...)
	return nil
}

// fakeController records brightness writes and signals each one.
type fakeController struct {
	mu       sync.Mutex
	monitors []string
	levels   map[string]int
	failing  map[string]bool
	writes   chan string
}

func newFakeController(monitors ...string) *fakeController {
	return &fakeController{
		monitors: monitors,
		levels:   make(map[string]int),
		failing:  make(map[string]bool),
		writes:   make(chan string, 16),
	}
}

func (c *fakeController) Monitors() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.monitors...)
}

func (c *fakeController) Brightness(id string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	level, ok := c.levels[id]
	return level, ok
}

func (c *fakeController) SetBrightness(_ context.Context, id string, level int) error {
	c.mu.Lock()
	if c.failing[id] {
		c.mu.Unlock()
		return fmt.Errorf("write to %s failed", id)
	}
	c.levels[id] = level
	c.mu.Unlock()

	select {
	case c.writes <- id:
	default:
	}
	return nil
}

func waitForWrite(t *testing.T, c *fakeController) string {
	t.Helper()
	select {
	case id := <-c.writes:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a brightness write")
		return ""
	}
}

// alwaysOnRule is active at every instant regardless of the test clock.
func alwaysOnRule(brightness int) Rule {
	return Rule{
		ID:         "always",
		Name:       "Always",
		Enabled:    true,
		StartTime:  NewTimeOfDay(0, 0),
		Brightness: brightness,
		Days:       AllDays(),
	}
}

func TestRunner_StartAppliesImmediately(t *testing.T) {
	store := NewStore(SunConfig{})
	store.Add(alwaysOnRule(42))
	repo := &memoryRepository{}
	controller := newFakeController("monitor-1")

	runner := NewRunner(store, repo, controller, WithTickInterval(time.Hour))
	if err := runner.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer runner.Stop()

	waitForWrite(t, controller)
	if level, ok := controller.Brightness("monitor-1"); !ok || level != 42 {
		t.Errorf("brightness = %d (%v), want 42", level, ok)
	}
	if state := runner.State(); state != StateRunning {
		t.Errorf("State() = %v, want running", state)
	}
}

func TestRunner_StartTwiceFails(t *testing.T) {
	store := NewStore(SunConfig{})
	runner := NewRunner(store, &memoryRepository{}, newFakeController(), WithTickInterval(time.Hour))

	if err := runner.Start(context.Background()); err != nil {
		t.Fatalf("first Start() error = %v", err)
	}
	defer runner.Stop()

	if err := runner.Start(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start() error = %v, want ErrAlreadyRunning", err)
	}
}

func TestRunner_StopIsIdempotent(t *testing.T) {
	store := NewStore(SunConfig{})
	runner := NewRunner(store, &memoryRepository{}, newFakeController(), WithTickInterval(time.Hour))

	// Stopping before starting is a no-op.
	runner.Stop()

	if err := runner.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	runner.Stop()
	runner.Stop()

	if state := runner.State(); state != StateStopped {
		t.Errorf("State() after Stop = %v, want stopped", state)
	}

	// The runner can be started again after a stop.
	if err := runner.Start(context.Background()); err != nil {
		t.Fatalf("restart error = %v", err)
	}
	runner.Stop()
}

func TestRunner_LoadsPersistedDocument(t *testing.T) {
	doc := Document{Rules: []Rule{alwaysOnRule(77)}}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshaling fixture: %v", err)
	}

	store := NewStore(SunConfig{})
	repo := &memoryRepository{data: data}
	controller := newFakeController("monitor-1")

	runner := NewRunner(store, repo, controller, WithTickInterval(time.Hour))
	if err := runner.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer runner.Stop()

	waitForWrite(t, controller)
	if level, _ := controller.Brightness("monitor-1"); level != 77 {
		t.Errorf("brightness = %d, want 77 from persisted rule", level)
	}
}

func TestRunner_CorruptDocumentStartsEmpty(t *testing.T) {
	store := NewStore(SunConfig{})
	store.Add(alwaysOnRule(50)) // stale in-memory state to prove the reset
	repo := &memoryRepository{data: []byte("{not json")}

	runner := NewRunner(store, repo, newFakeController("monitor-1"), WithTickInterval(time.Hour))
	if err := runner.Start(context.Background()); err != nil {
		t.Fatalf("Start() with corrupt document error = %v, want nil", err)
	}
	defer runner.Stop()

	if n := len(store.Rules()); n != 0 {
		t.Errorf("rules after corrupt load = %d, want 0", n)
	}
}

func TestRunner_LoadErrorStartsEmpty(t *testing.T) {
	store := NewStore(SunConfig{})
	repo := &memoryRepository{loadErr: errors.New("disk on fire")}

	runner := NewRunner(store, repo, newFakeController(), WithTickInterval(time.Hour))
	if err := runner.Start(context.Background()); err != nil {
		t.Fatalf("Start() with failing load error = %v, want nil", err)
	}
	runner.Stop()
}

func TestRunner_PerMonitorErrorIsolation(t *testing.T) {
	store := NewStore(SunConfig{})
	store.Add(alwaysOnRule(60))
	controller := newFakeController("bad-monitor", "good-monitor")
	controller.failing["bad-monitor"] = true

	runner := NewRunner(store, &memoryRepository{}, controller, WithTickInterval(time.Hour))
	if err := runner.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer runner.Stop()

	// The failing monitor must not prevent the good one from being driven.
	if id := waitForWrite(t, controller); id != "good-monitor" {
		t.Errorf("write went to %q, want good-monitor", id)
	}
	if level, ok := controller.Brightness("good-monitor"); !ok || level != 60 {
		t.Errorf("good monitor brightness = %d (%v), want 60", level, ok)
	}
}

func TestRunner_SkipsRedundantWrites(t *testing.T) {
	store := NewStore(SunConfig{})
	store.Add(alwaysOnRule(42))
	controller := newFakeController("monitor-1")
	controller.levels["monitor-1"] = 42 // already at target

	runner := NewRunner(store, &memoryRepository{}, controller, WithTickInterval(time.Hour))
	if err := runner.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer runner.Stop()

	select {
	case id := <-controller.writes:
		t.Errorf("unexpected write to %q when already at target", id)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestRunner_ListenerReceivesAppliedEvents(t *testing.T) {
	store := NewStore(SunConfig{})
	store.Add(alwaysOnRule(42))
	controller := newFakeController("monitor-1")

	events := make(chan BrightnessEvent, 1)
	runner := NewRunner(store, &memoryRepository{}, controller, WithTickInterval(time.Hour))
	runner.AddListener(func(ev BrightnessEvent) {
		select {
		case events <- ev:
		default:
		}
	})

	if err := runner.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer runner.Stop()

	select {
	case ev := <-events:
		if ev.MonitorID != "monitor-1" || ev.Target != 42 {
			t.Errorf("event = %+v, want monitor-1 at 42", ev)
		}
		if ev.RuleID != "always" {
			t.Errorf("event rule = %q, want always", ev.RuleID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for applied event")
	}
}

func TestRunner_SaveRoundTrip(t *testing.T) {
	store := NewStore(SunConfig{})
	store.Add(Rule{ID: "r1", Name: "Persisted", StartTime: NewTimeOfDay(8, 0), Brightness: 70})
	repo := &memoryRepository{}

	runner := NewRunner(store, repo, newFakeController())
	if err := runner.Save(context.Background()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	var doc Document
	if err := json.Unmarshal(repo.data, &doc); err != nil {
		t.Fatalf("persisted document is not valid JSON: %v", err)
	}
	if len(doc.Rules) != 1 || doc.Rules[0].ID != "r1" {
		t.Errorf("persisted rules = %+v, want the single r1 rule", doc.Rules)
	}
}

func TestRunner_SavePropagatesErrors(t *testing.T) {
	repo := &memoryRepository{saveErr: errors.New("disk full")}
	runner := NewRunner(NewStore(SunConfig{}), repo, newFakeController())

	if err := runner.Save(context.Background()); err == nil {
		t.Error("Save() error = nil, want persistence failure propagated")
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateStopped, "stopped"},
		{StateStarting, "starting"},
		{StateRunning, "running"},
		{StateStopping, "stopping"},
		{State(99), "unknown"},
	}
	for _, tc := range tests {
		if got := tc.state.String(); got != tc.want {
			t.Errorf("State(%d).String() = %q, want %q", tc.state, got, tc.want)
		}
	}
}
