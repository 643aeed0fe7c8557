package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteBrightnessMetric records an applied brightness change.
//
// The write is non-blocking; data is batched and sent asynchronously.
// Calls on a disconnected client are silently dropped; telemetry is
// best-effort and must never stall the schedule runner.
//
// Parameters:
//   - monitorID: The monitor the brightness was applied to
//   - ruleID: The schedule rule that drove the change (may be empty)
//   - previous: The brightness before the write
//   - target: The brightness written
//
// Example:
//
//	client.WriteBrightnessMetric("monitor-dell-01", "rule-evening", 80, 20)
func (c *Client) WriteBrightnessMetric(monitorID, ruleID string, previous, target int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"brightness",
		map[string]string{
			"monitor_id": monitorID,
			"rule_id":    ruleID,
		},
		map[string]interface{}{
			"previous": previous,
			"target":   target,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteEvaluationMetric records the outcome of a full evaluation pass.
//
// Used for observing runner behaviour over time: how many monitors were
// seen, how many writes were issued, how long the pass took.
func (c *Client) WriteEvaluationMetric(monitors, applied int, duration time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"evaluation_pass",
		nil,
		map[string]interface{}{
			"monitors":    monitors,
			"applied":     applied,
			"duration_ms": duration.Milliseconds(),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
