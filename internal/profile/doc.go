// Package profile accumulates per-field statistics over a stream of
// normalized records.
//
// For every canonical field the Profiler tracks presence, a type histogram,
// a bounded set of distinct scalar values, a histogram of recognized string
// patterns, and sticky nested/array flags. Objects and arrays are opaque:
// their contents are never inspected, only their shape.
//
// Key constraints:
//   - For every field, the type histogram sums to its occurrence count
//   - The distinct-value set never grows past the configured limit; a full
//     set reports cardinality 1.0
//   - Histogram ties resolve to the tag seen first, not by name
//   - Every query is total; unseen fields yield 0, "unknown" or "none"
//
// A Profiler is not safe for concurrent use.
package profile
