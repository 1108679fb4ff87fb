// Package authz is the authorization decision engine: given a protected area's
// [Rule] and the current session it returns [Allow], [DenyUnauthenticated] or
// [DenyForbidden].
//
// The decision is a pure function. It never reads or mutates the session store and
// never reads the clock; callers pass now. A session whose credential has expired
// is treated as absent.
package authz
