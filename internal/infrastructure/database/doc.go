// Package database provides the SQLite persistence layer for luxd.
//
// It wraps database/sql with lifecycle management (Open/Close), health
// checks, and a small embedded-filesystem migration runner.
//
// # Why SQLite
//
//   - Single-file durable store suits a single-host daemon
//   - WAL mode allows concurrent reads during writes
//   - No external service dependency
//
// # Migrations
//
// Migration files are embedded into the binary by the top-level migrations
// package and applied on startup via DB.Migrate. Each migration runs in its
// own transaction; a failed migration is rolled back and halts the run.
package database
