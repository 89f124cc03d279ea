// Package value provides the closed JSON value variant used by every stage of
// the placement pipeline.
//
// A record arriving from a source is decoded exactly once into a tree of
// Value nodes. The type tag of each node is fixed at that point; later stages
// switch on the concrete type instead of inspecting untyped interface values.
//
// Key constraints:
//   - Value is sealed: only Null, Bool, Int, Float, String, Array and Object
//     implement it
//   - Booleans are never integers, integers are never floats
//   - A record is always an Object; anything else is an InputShapeError
//   - All JSON tags use snake_case
package value
