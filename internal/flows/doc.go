// Package flows contains pure-function orchestrators for every Engine operation.
//
// Each Run* function takes a typed dependency struct of function fields and has
// no side effects beyond those dependencies. The Engine builds the structs once
// and stays thin; tests drive the flows with fakes.
//
// # Architecture boundaries
//
// Flows sequence calls to the backend, credential codec, session store, guard,
// navigator, audit and metrics. They do NOT own any of these; ownership stays with
// the Engine.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goGate (to avoid import cycles).
//   - Perform I/O directly; all I/O is mediated through dependency functions.
package flows
