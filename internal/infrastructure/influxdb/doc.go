// Package influxdb provides optional brightness telemetry for luxd.
//
// When enabled in config.yaml, every applied brightness change and each
// evaluation pass is recorded as a point in InfluxDB. Writes are batched
// and non-blocking; a disconnected or disabled client drops points rather
// than stalling the schedule runner.
//
// Telemetry is strictly best-effort: luxd is fully functional with this
// package disabled.
package influxdb
