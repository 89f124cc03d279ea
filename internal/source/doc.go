// Package source provides record sources for the placement pipeline.
//
// A Source yields one record per Next call and io.EOF at the end of a finite
// stream. Sources decode records into value.Object at the boundary; anything
// that is not a string-keyed object surfaces as a *value.InputShapeError.
//
// Implementations:
//   - SliceSource: in-memory records
//   - FileSource: JSON array, {"records": [...]} envelope, or newline-delimited JSON
//   - HTTPSource: batch endpoint of a record streaming API
//   - Generator: seeded synthetic records with messy field names and type drift
package source
