// Package monitor tracks display devices announced over MQTT and
// writes brightness commands back to the bridge that owns them.
//
// A bridge helper (for example a DDC/CI probe running on the host)
// publishes retained state on luxd/state/{transport}/{monitor_id} and
// an empty message on luxd/gone/{transport}/{monitor_id} when a display
// is unplugged. The Controller mirrors those topics into an in-memory
// cache and exposes the monitor set to the schedule runner.
//
// Brightness writes go out on luxd/command/{transport}/{monitor_id}.
// The cache is updated optimistically on publish and reconciled by the
// bridge's confirming state message.
package monitor
