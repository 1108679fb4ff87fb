// Package goGate is the client-side session and route-authorization layer of the
// V-Learn platform. It signs users in against the user service, keeps the decoded
// credential in a single session store, sends each user to the landing area of
// their most privileged role and gates every navigation into a protected area.
//
// Engine methods are safe to call from multiple goroutines after [Builder.Build].
//
// # Architecture boundaries
//
// goGate is the public surface: [Engine], [Builder], [Config] and value types.
// Decisions live in authz, the area table in route, ordering in guard and
// storage in session. Flow orchestration and audit dispatch live under internal/.
//
// # Session lifecycle
//
//   - [Engine.Login] decodes the credential, writes the session, then navigates.
//   - [Engine.Navigate] re-reads the session and decides on every call.
//   - [Engine.Teardown] clears the store before redirecting to sign-in. Logout,
//     a password change and a backend rejection seen by [Engine.HTTPClient] all
//     end there. A rejection only ends the session whose credential it carried.
//
// # What this package must NOT do
//
//   - Verify credential signatures; the backend is the authority.
//   - Log or audit a credential.
//   - Import any sub-package that re-imports goGate.
package goGate
