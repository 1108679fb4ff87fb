// Package credential decodes the opaque signed token returned by the V-Learn login
// endpoint into a fixed [Identity] structure.
//
// Decoding is schema-validated but unverified: signatures are not checked because
// trust is delegated to the issuing backend, which re-verifies the token on every API
// call. The decoder never reads the clock and never performs I/O.
//
// # What this package must NOT do
//
//   - Verify signatures or hold signing keys.
//   - Decide whether an identity is expired (see authz).
//   - Trust payload fields outside the documented schema.
package credential
