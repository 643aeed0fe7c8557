package mqtt

import "fmt"

// Topic prefixes for the luxd MQTT namespace.
//
// Bridge topics use the flat scheme: luxd/{category}/{transport}/{monitor_id}.
// The only transport currently spoken is "ddc" (the DDC/CI bridge helper),
// but the scheme leaves room for platform-specific backends.
const (
	// TopicPrefix is the base for all luxd topics.
	TopicPrefix = "luxd"

	// TopicPrefixCore is the base for core-emitted event topics.
	TopicPrefixCore = "luxd/core"

	// TopicPrefixSystem is the base for system status topics.
	TopicPrefixSystem = "luxd/system"
)

// Topics provides builders for luxd MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.MonitorState("ddc", "monitor-dell-u2723qe")
//	// Returns: "luxd/state/ddc/monitor-dell-u2723qe"
type Topics struct{}

// MonitorState returns the topic a bridge publishes monitor state on.
// State payloads are retained JSON: {"brightness": 55, "name": "..."}.
//
// Example: luxd/state/ddc/monitor-dell-u2723qe
func (Topics) MonitorState(transport, monitorID string) string {
	return fmt.Sprintf("%s/state/%s/%s", TopicPrefix, transport, monitorID)
}

// AllMonitorStates returns the wildcard subscription covering every
// monitor state topic for a transport.
//
// Example: luxd/state/ddc/+
func (Topics) AllMonitorStates(transport string) string {
	return fmt.Sprintf("%s/state/%s/+", TopicPrefix, transport)
}

// MonitorCommand returns the topic for brightness commands to a bridge.
//
// Example: luxd/command/ddc/monitor-dell-u2723qe
func (Topics) MonitorCommand(transport, monitorID string) string {
	return fmt.Sprintf("%s/command/%s/%s", TopicPrefix, transport, monitorID)
}

// MonitorGone returns the topic a bridge publishes when a monitor is
// disconnected. The payload is empty; the retained state is cleared.
//
// Example: luxd/gone/ddc/monitor-dell-u2723qe
func (Topics) MonitorGone(transport, monitorID string) string {
	return fmt.Sprintf("%s/gone/%s/%s", TopicPrefix, transport, monitorID)
}

// AllMonitorsGone returns the wildcard subscription covering every
// monitor-disconnected topic for a transport.
func (Topics) AllMonitorsGone(transport string) string {
	return fmt.Sprintf("%s/gone/%s/+", TopicPrefix, transport)
}

// RuleApplied returns the topic for schedule rule-triggered notifications.
// Published whenever a tick causes an actual brightness write.
//
// Example: luxd/core/schedule/rule-evening-dim/applied
func (Topics) RuleApplied(ruleID string) string {
	return fmt.Sprintf("%s/schedule/%s/applied", TopicPrefixCore, ruleID)
}

// SystemStatus returns the topic for luxd online/offline status.
// Used for the Last Will and Testament and graceful shutdown notices.
//
// Example: luxd/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}
