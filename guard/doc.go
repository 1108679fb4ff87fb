// Package guard is the route guard adapter. It resolves a navigation target in the
// protected-area table, reads the current session, asks package authz for a
// decision and turns the decision into an [Outcome]: proceed, or redirect to
// sign-in or to the user's own landing area.
//
// # Ordering
//
// [Guard.Evaluate] numbers every attempt. When a later attempt has started by the
// time an earlier one is decided, the earlier outcome is returned with
// [ErrSuperseded] and must not be applied. [Guard.Check] runs the same decision
// without taking part in that ordering, for callers such as HTTP handlers whose
// requests are answered independently.
//
// # What this package must NOT do
//
//   - Write or clear the session store.
//   - Cache decisions between navigations.
//   - Retry a failed store read.
package guard
