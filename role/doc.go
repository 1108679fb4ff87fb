// Package role defines the closed set of V-Learn role names and a fixed-size
// bitmask [Set] used by credential decoding and authorization decisions.
//
// # Priority
//
// Roles carry a total privilege order: ADMIN > INSTRUCTOR > STUDENT. [Set.Highest]
// applies it, and the post-login router relies on it for multi-role accounts.
//
// # Architecture boundaries
//
// This package is a pure in-memory value type with no I/O.
//
// # What this package must NOT do
//
//   - Accept role names outside the closed set.
//   - Import goGate, credential, session or authz.
package role
