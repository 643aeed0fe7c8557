package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

// State represents the runner lifecycle state.
type State int

const (
	// StateStopped means the runner is not evaluating.
	StateStopped State = iota
	// StateStarting means the runner is loading persisted state.
	StateStarting
	// StateRunning means the evaluation loop is active.
	StateRunning
	// StateStopping means a stop has been requested and the loop is
	// draining.
	StateStopping
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// defaultTickInterval is the evaluation cadence when none is configured.
const defaultTickInterval = 60 * time.Second

// MonitorController abstracts the display devices the runner drives.
// Implementations report known monitors and accept brightness writes.
type MonitorController interface {
	// Monitors returns the IDs of all currently known monitors.
	Monitors() []string

	// Brightness returns the last known brightness for a monitor and
	// whether the value is known.
	Brightness(monitorID string) (int, bool)

	// SetBrightness writes a brightness level to a monitor.
	SetBrightness(ctx context.Context, monitorID string, level int) error
}

// Notifier publishes applied-rule notifications to external observers.
type Notifier interface {
	RuleApplied(ruleID string, payload []byte) error
}

// Telemetry records evaluation metrics. Implementations must be
// non-blocking; the runner calls these inline on the evaluation loop.
type Telemetry interface {
	WriteBrightnessMetric(monitorID, ruleID string, previous, target int)
	WriteEvaluationMetric(monitors, applied int, duration time.Duration)
}

// Listener receives applied brightness change events.
type Listener func(ev BrightnessEvent)

// Runner drives periodic schedule evaluation against a set of monitors.
// It loads persisted state on start, runs an immediate evaluation pass,
// then re-evaluates on a fixed tick until stopped.
type Runner struct {
	store      *Store
	evaluator  *Evaluator
	repo       Repository
	controller MonitorController

	events    EventStore // optional audit log
	notifier  Notifier   // optional applied-rule publisher
	telemetry Telemetry  // optional metrics sink
	logger    Logger
	tick      time.Duration
	location  *time.Location

	mu        sync.Mutex
	state     State
	cancel    context.CancelFunc
	done      chan struct{}
	listeners []Listener
}

// RunnerOption configures optional runner collaborators.
type RunnerOption func(*Runner)

// WithEventStore enables audit logging of applied changes.
func WithEventStore(events EventStore) RunnerOption {
	return func(r *Runner) { r.events = events }
}

// WithNotifier enables applied-rule notifications.
func WithNotifier(n Notifier) RunnerOption {
	return func(r *Runner) { r.notifier = n }
}

// WithTelemetry enables evaluation metrics.
func WithTelemetry(t Telemetry) RunnerOption {
	return func(r *Runner) { r.telemetry = t }
}

// WithTickInterval overrides the evaluation cadence.
func WithTickInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.tick = d
		}
	}
}

// WithLocation sets the timezone schedule times are evaluated in.
// Defaults to the host's local zone.
func WithLocation(loc *time.Location) RunnerOption {
	return func(r *Runner) {
		if loc != nil {
			r.location = loc
		}
	}
}

// WithRunnerLogger sets the runner's logger.
func WithRunnerLogger(logger Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner creates a runner over the given store, repository and
// monitor controller.
func NewRunner(store *Store, repo Repository, controller MonitorController, opts ...RunnerOption) *Runner {
	r := &Runner{
		store:      store,
		evaluator:  NewEvaluator(store),
		repo:       repo,
		controller: controller,
		logger:     noopLogger{},
		tick:       defaultTickInterval,
		location:   time.Local,
		state:      StateStopped,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the current lifecycle state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// AddListener registers a callback invoked after every applied
// brightness change. Listeners must not block.
func (r *Runner) AddListener(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

// Start loads persisted schedule state and begins the evaluation loop.
// A missing or corrupt persisted document never fails startup; the
// runner falls back to an empty schedule. Returns ErrAlreadyRunning if
// the runner is not stopped.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.state != StateStopped {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	r.state = StateStarting
	r.mu.Unlock()

	r.loadStore(ctx)

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	r.mu.Lock()
	r.cancel = cancel
	r.done = done
	r.state = StateRunning
	r.mu.Unlock()

	go r.run(loopCtx, done)

	r.logger.Info("schedule runner started", "tick", r.tick.String())
	return nil
}

// Stop halts the evaluation loop and waits for the current pass to
// drain. Calling Stop on a stopped runner is a no-op.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.state != StateRunning {
		r.mu.Unlock()
		return
	}
	r.state = StateStopping
	cancel := r.cancel
	done := r.done
	r.mu.Unlock()

	cancel()
	<-done

	r.mu.Lock()
	r.state = StateStopped
	r.cancel = nil
	r.done = nil
	r.mu.Unlock()

	r.logger.Info("schedule runner stopped")
}

// Save serializes the current schedule document and persists it. This
// is the only persistence path that propagates errors to the caller.
func (r *Runner) Save(ctx context.Context) error {
	doc := r.store.Document()
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("serializing schedule document: %w", err)
	}
	if err := r.repo.Save(ctx, data); err != nil {
		return fmt.Errorf("persisting schedule document: %w", err)
	}
	r.logger.Debug("schedule document saved", "rules", len(doc.Rules))
	return nil
}

// loadStore hydrates the store from the repository. Absent documents
// leave the store empty; corrupt documents are logged and discarded so
// the scheduler always starts.
func (r *Runner) loadStore(ctx context.Context) {
	data, err := r.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrNoDocument) {
			r.logger.Info("no persisted schedule, starting empty")
			return
		}
		r.logger.Error("loading schedule document failed, starting empty", "error", err)
		return
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		r.logger.Error("persisted schedule is corrupt, resetting", "error", err)
		r.store.LoadDocument(Document{})
		return
	}

	r.store.LoadDocument(doc)
	r.logger.Info("schedule loaded", "rules", len(doc.Rules))
}

// run is the evaluation loop. One pass executes immediately so a fresh
// start converges without waiting a full tick.
func (r *Runner) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	r.evaluatePass(ctx)

	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.evaluatePass(ctx)
		}
	}
}

// evaluatePass evaluates every known monitor once. Failures on one
// monitor never prevent the others from being driven.
func (r *Runner) evaluatePass(ctx context.Context) {
	start := time.Now()
	now := time.Now().In(r.location)
	monitors := r.controller.Monitors()
	applied := 0

	for _, monitorID := range monitors {
		if ctx.Err() != nil {
			return
		}

		target, ok := r.evaluator.Evaluate(monitorID, now)
		if !ok {
			continue
		}

		previous, known := r.controller.Brightness(monitorID)
		if known && previous == target {
			continue
		}

		if err := r.controller.SetBrightness(ctx, monitorID, target); err != nil {
			r.logger.Warn("setting brightness failed",
				"monitor", monitorID, "target", target, "error", err)
			continue
		}

		applied++
		rule, _ := r.evaluator.ActiveRule(monitorID, now)
		r.notifyApplied(ctx, BrightnessEvent{
			MonitorID: monitorID,
			RuleID:    rule.ID,
			RuleName:  rule.Name,
			Previous:  previous,
			Target:    target,
			AppliedAt: now,
		})
	}

	if r.telemetry != nil {
		r.telemetry.WriteEvaluationMetric(len(monitors), applied, time.Since(start))
	}
}

// notifyApplied fans an applied change out to the audit log, metrics,
// external notifications and registered listeners. All sinks are
// best-effort; failures are logged and never stop the pass.
func (r *Runner) notifyApplied(ctx context.Context, ev BrightnessEvent) {
	r.logger.Info("brightness applied",
		"monitor", ev.MonitorID, "rule", ev.RuleName,
		"previous", ev.Previous, "target", ev.Target)

	if r.events != nil {
		if err := r.events.RecordEvent(ctx, ev); err != nil {
			r.logger.Warn("recording brightness event failed", "error", err)
		}
	}

	if r.telemetry != nil {
		r.telemetry.WriteBrightnessMetric(ev.MonitorID, ev.RuleID, ev.Previous, ev.Target)
	}

	if r.notifier != nil && ev.RuleID != "" {
		payload, err := json.Marshal(ev)
		if err == nil {
			if err := r.notifier.RuleApplied(ev.RuleID, payload); err != nil {
				r.logger.Warn("publishing rule notification failed",
					"rule", ev.RuleID, "error", err)
			}
		}
	}

	r.mu.Lock()
	listeners := make([]Listener, len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.Unlock()

	for _, l := range listeners {
		l(ev)
	}
}
