// Package route holds the static protected-area table and the post-login router.
//
// A [Table] maps request paths onto protected [Area] values, each carrying the
// [authz.Rule] that gates it, and knows the sign-in path that unauthenticated
// visitors are sent to. [LandingAreaFor] picks the area a freshly signed-in user
// lands on, by privilege order ADMIN > INSTRUCTOR > STUDENT.
//
// # What this package must NOT do
//
//   - Read the session store.
//   - Make authorization decisions; see package authz.
package route
