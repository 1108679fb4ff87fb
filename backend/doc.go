// Package backend is a thin client for the V-Learn user service endpoints the
// session layer needs: sign-in, sign-out, password change and the profile read
// used to exercise an authenticated call.
//
// The client does not attach credentials itself. Give it an *http.Client whose
// transport is a transport.BearerTransport so every authenticated call goes
// through the shared inspection point.
package backend
