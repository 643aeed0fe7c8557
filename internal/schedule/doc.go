// Package schedule implements time-based automatic brightness control.
//
// The package is built around four collaborating pieces:
//
//   - Store: thread-safe in-memory rule and sun-configuration state,
//     serializable to a stable JSON document.
//   - Evaluator: pure evaluation of the target brightness for a monitor
//     at a point in time, including smooth transitions between rules and
//     optional solar-derived sunrise/sunset rules.
//   - Runner: the periodic evaluation loop that drives monitors through
//     a MonitorController, with per-monitor error isolation.
//   - Repository: byte-level persistence of the schedule document, with
//     a SQLite implementation and an audit log of applied changes.
//
// Evaluation treats the day as cyclic: the rule active before the first
// start time of the day is the last rule of the previous cycle. Rules
// may declare a transition window during which brightness is smoothly
// interpolated from the previous rule's level.
//
// Persistence failures never prevent the scheduler from starting; a
// missing or corrupt document yields an empty schedule. Saving is the
// only persistence path that reports errors to callers.
package schedule
