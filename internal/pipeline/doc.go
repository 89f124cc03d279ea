// Package pipeline runs the placement pipeline as a single-writer session.
//
// A Session owns one resolver and one profiler. Every record is resolved and
// folded into the profile under one lock before the next is accepted, so no
// record is ever partially visible. Classification copies the per-field
// analyses under the same lock and then runs without it; decisions therefore
// reflect a consistent view as of one record boundary.
//
// Ordering uses a logical clock: the checkpoint sequence number is the count
// of ingested records, never a wall-clock reading.
//
// Checkpoints bundle the resolver and profiler snapshots with a SHA-256
// digest (domain-separated) so a damaged checkpoint is rejected on restore.
package pipeline
