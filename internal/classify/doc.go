// Package classify turns field profiles into backend placement decisions.
//
// Each field analysis runs through an ordered rule cascade; the first rule
// that fires decides the backend:
//
//  1. mandatory join field        -> both      (1.0)
//  2. nested objects              -> document  (1.0)
//  3. arrays                      -> document  (1.0)
//  4. sparse presence             -> document  (0.9)
//  5. type drift                  -> document  (0.85)
//  6. frequent, stable, scalar    -> sql       (min(frequency, stability))
//  7. anything else               -> document  (0.6)
//
// Uniqueness is judged separately from the cascade and only reported for
// fields that land in sql or both.
package classify
