// Package resolver maps divergent raw field names onto stable canonical names.
//
// A Resolver is seeded with a fixed table of known synonym groups and learns
// new spellings as they arrive. Resolution follows a strict priority:
//
//  1. direct hit on the lowercased raw name
//  2. structural camel/Pascal to snake_case conversion matching a known canonical
//  3. fuzzy match against every canonical name in registration order
//  4. the snake_case form becomes a new canonical name
//
// Once a raw spelling is bound it stays bound. Two canonical names are never
// merged, even when a later spelling would fuzzy-match both.
//
// Fuzzy matching walks canonical names in first-registration order, so the
// grouping produced for a set of names depends on the order they arrived in.
// Replaying the same history into a fresh Resolver reproduces the same mapping.
//
// A Resolver is not safe for concurrent mutation. The pipeline session owns
// one and serializes access to it.
package resolver
