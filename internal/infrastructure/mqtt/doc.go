// Package mqtt provides the MQTT transport layer for luxd.
//
// luxd speaks to its DDC bridge helpers over MQTT: monitor state arrives
// on retained state topics, brightness commands go out on command topics,
// and schedule notifications are published on core event topics. See
// topics.go for the complete topic scheme.
//
// The Client wraps eclipse/paho.mqtt.golang with:
//
//   - Connection lifecycle (Connect/Close) with LWT offline detection
//   - Automatic reconnection with exponential backoff
//   - Subscription tracking and restoration after reconnect
//   - Panic recovery around message handlers
//
// All Client methods are safe for concurrent use.
package mqtt
