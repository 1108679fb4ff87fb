// Package middleware exposes the route guard as HTTP middleware.
//
// [Protect] checks every request path against the engine's protected-area table
// and the current session. Allowed requests reach the wrapped handler with the
// [guard.Outcome] in their context; everything else is answered with
// 303 See Other to sign-in or to the user's own landing area.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT decide
// anything itself; all decisions come from Engine.Check.
//
// # What this package must NOT do
//
//   - Decode credentials or read the session store directly.
//   - Answer a denied request with anything but a redirect.
package middleware
