// Package store provides SQLite-backed durable storage for advisor
// checkpoints and the placement decisions taken at each one.
//
// The store keeps only the advisor's own state:
//   - Checkpoints: resolver and profiler snapshots with their integrity digest
//   - Decisions: the placement decision set classified at that checkpoint
//
// # Ordering
//
// Checkpoints are ordered by seq (the session's logical record counter),
// never by wall time, with id as tie-breaker:
//
//	ORDER BY seq ASC, id COLLATE BINARY ASC
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Suggested DDL for user records is rendered by the report package and never
// executed here.
package store
