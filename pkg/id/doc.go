// Package id generates event identifiers.
//
// # Format
//
// An ID is the string {key}-{ms}-{seq}-{rand}: the topic key, the creation
// time in Unix milliseconds, a per-process sequence that restarts every
// millisecond, and a short random nanoid suffix.
//
// # Monotonicity
//
// The Generator pins to the last seen millisecond if the clock regresses and
// keeps incrementing the sequence, so two IDs for the same key never collide
// within a process even under bursts of same-millisecond pushes. The random
// suffix keeps IDs from different processes or restarts apart.
//
// Usage
//
//	g := id.NewGenerator()
//	eid, createdAt, _ := g.Next("orders")
package id
