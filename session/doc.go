// Package session implements the single-session store that holds the current
// credential together with its decoded identity.
//
// # Keys
//
// Two keys live in the backing [Substrate]: one for the raw credential and one for
// the identity snapshot. They are always written and removed together.
//
// # Consistency
//
//   - [Store.Write] replaces any prior session in one substrate call; concurrent
//     readers observe either the old pair or the new pair.
//   - [Store.Read] re-derives the identity from the stored credential and compares it
//     with the snapshot. A half-written pair, an undecodable value or a snapshot that
//     drifted from its credential clears the store and yields [ErrSessionCorrupt].
//   - [Store.Clear] is idempotent.
//
// Expired sessions are returned as stored; expiry is an authorization concern.
//
// # Substrates
//
//   - [Memory]: process-local map, used in tests and short-lived tools.
//   - [Redis]: go-redis client; writes use a MULTI/EXEC pipeline.
//   - [File]: a single JSON file replaced atomically by rename; survives restarts.
package session
