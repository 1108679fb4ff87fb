// Package transport is the single inspection point for backend responses.
//
// [BearerTransport] attaches the current credential to outgoing requests and, when
// a request that carried it comes back with a rejection status, reports the
// rejection through its OnReject hook before the response reaches the caller. The
// caller gets an error wrapping [ErrSessionInvalidated] instead of the response.
//
// # What this package must NOT do
//
//   - Clear the session itself; teardown belongs to the hook owner.
//   - Treat rejections of requests sent without a credential as invalidation.
package transport
