package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/lumatech/luxd/internal/infrastructure/mqtt"
)

// DefaultTransport is the bridge transport monitors are driven over.
const DefaultTransport = "ddc"

// Logger is the minimal logging interface the controller requires.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// statePayload is the retained JSON a bridge publishes on monitor
// state topics.
type statePayload struct {
	Brightness int    `json:"brightness"`
	Name       string `json:"name,omitempty"`
}

// commandPayload is the JSON written to a bridge command topic.
type commandPayload struct {
	Brightness int `json:"brightness"`
}

// monitorState is the cached view of a single monitor.
type monitorState struct {
	Brightness int
	Name       string
}

// Controller tracks monitors announced over MQTT and writes brightness
// commands back to their bridge. It implements the monitor controller
// interface the schedule runner drives.
//
// State arrives on retained luxd/state/{transport}/{id} topics, so a
// fresh subscription immediately replays the last known brightness of
// every connected monitor. A publish on the matching gone topic drops
// the monitor from the cache.
type Controller struct {
	client    *mqtt.Client
	topics    mqtt.Topics
	transport string
	qos       byte
	logger    Logger

	mu       sync.RWMutex
	monitors map[string]monitorState
}

// Option configures a Controller.
type Option func(*Controller)

// WithTransport overrides the bridge transport name.
func WithTransport(transport string) Option {
	return func(c *Controller) {
		if transport != "" {
			c.transport = transport
		}
	}
}

// WithQoS sets the QoS used for subscriptions and command publishes.
func WithQoS(qos byte) Option {
	return func(c *Controller) { c.qos = qos }
}

// WithLogger sets the controller's logger.
func WithLogger(logger Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewController creates a controller over an established MQTT client.
// Call Start to begin tracking monitor state.
func NewController(client *mqtt.Client, opts ...Option) *Controller {
	c := &Controller{
		client:    client,
		transport: DefaultTransport,
		qos:       1,
		logger:    noopLogger{},
		monitors:  make(map[string]monitorState),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start subscribes to monitor state and disconnect topics. Retained
// state messages replay immediately, priming the cache.
func (c *Controller) Start() error {
	stateTopic := c.topics.AllMonitorStates(c.transport)
	if err := c.client.Subscribe(stateTopic, c.qos, c.handleState); err != nil {
		return fmt.Errorf("subscribing to monitor state: %w", err)
	}

	goneTopic := c.topics.AllMonitorsGone(c.transport)
	if err := c.client.Subscribe(goneTopic, c.qos, c.handleGone); err != nil {
		return fmt.Errorf("subscribing to monitor disconnects: %w", err)
	}

	c.logger.Info("monitor controller started", "transport", c.transport)
	return nil
}

// Stop removes the controller's subscriptions.
func (c *Controller) Stop() {
	if err := c.client.Unsubscribe(c.topics.AllMonitorStates(c.transport)); err != nil {
		c.logger.Warn("unsubscribing monitor state failed", "error", err)
	}
	if err := c.client.Unsubscribe(c.topics.AllMonitorsGone(c.transport)); err != nil {
		c.logger.Warn("unsubscribing monitor disconnects failed", "error", err)
	}
}

// Monitors returns the IDs of all known monitors in sorted order.
func (c *Controller) Monitors() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.monitors))
	for id := range c.monitors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Brightness returns the last known brightness for a monitor.
func (c *Controller) Brightness(monitorID string) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st, ok := c.monitors[monitorID]
	if !ok {
		return 0, false
	}
	return st.Brightness, true
}

// Name returns the human-readable name reported for a monitor, if any.
func (c *Controller) Name(monitorID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st, ok := c.monitors[monitorID]
	if !ok || st.Name == "" {
		return "", false
	}
	return st.Name, true
}

// SetBrightness publishes a brightness command to a monitor's bridge.
// The cache is updated optimistically; the bridge's confirming state
// publish corrects it if the write did not take.
func (c *Controller) SetBrightness(ctx context.Context, monitorID string, level int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if level < 0 || level > 100 {
		return fmt.Errorf("brightness %d out of range [0,100]", level)
	}

	payload, err := json.Marshal(commandPayload{Brightness: level})
	if err != nil {
		return fmt.Errorf("encoding brightness command: %w", err)
	}

	topic := c.topics.MonitorCommand(c.transport, monitorID)
	if err := c.client.Publish(topic, payload, c.qos, false); err != nil {
		return fmt.Errorf("publishing brightness command: %w", err)
	}

	c.mu.Lock()
	if st, ok := c.monitors[monitorID]; ok {
		st.Brightness = level
		c.monitors[monitorID] = st
	}
	c.mu.Unlock()

	c.logger.Debug("brightness command sent", "monitor", monitorID, "level", level)
	return nil
}

// handleState processes a retained or live monitor state publish.
func (c *Controller) handleState(topic string, payload []byte) error {
	monitorID := lastSegment(topic)
	if monitorID == "" || monitorID == "+" {
		return nil
	}

	// An empty retained payload is a cleared retained message.
	if len(payload) == 0 {
		c.remove(monitorID)
		return nil
	}

	var st statePayload
	if err := json.Unmarshal(payload, &st); err != nil {
		c.logger.Warn("discarding malformed monitor state",
			"monitor", monitorID, "error", err)
		return nil
	}

	c.mu.Lock()
	_, known := c.monitors[monitorID]
	c.monitors[monitorID] = monitorState{
		Brightness: st.Brightness,
		Name:       st.Name,
	}
	c.mu.Unlock()

	if !known {
		c.logger.Info("monitor discovered",
			"monitor", monitorID, "brightness", st.Brightness)
	}
	return nil
}

// handleGone processes a monitor disconnect publish.
func (c *Controller) handleGone(topic string, _ []byte) error {
	monitorID := lastSegment(topic)
	if monitorID == "" || monitorID == "+" {
		return nil
	}
	c.remove(monitorID)
	return nil
}

func (c *Controller) remove(monitorID string) {
	c.mu.Lock()
	_, known := c.monitors[monitorID]
	delete(c.monitors, monitorID)
	c.mu.Unlock()

	if known {
		c.logger.Info("monitor gone", "monitor", monitorID)
	}
}

func lastSegment(topic string) string {
	idx := strings.LastIndexByte(topic, '/')
	if idx < 0 || idx == len(topic)-1 {
		return ""
	}
	return topic[idx+1:]
}
