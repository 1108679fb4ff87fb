package goGate

import (
	"errors"

	"github.com/MrEthical07/goGate/backend"
	"github.com/MrEthical07/goGate/credential"
	"github.com/MrEthical07/goGate/guard"
	"github.com/MrEthical07/goGate/route"
	"github.com/MrEthical07/goGate/session"
	"github.com/MrEthical07/goGate/transport"
)

var (
	// ErrEngineNotReady is returned by methods of a zero or closed Engine.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrSignInFailed wraps every sign-in failure after the backend accepted the
	// credentials. No session is written.
	ErrSignInFailed = errors.New("sign-in failed")
	// ErrNoSession is returned by operations that need a signed-in user.
	ErrNoSession = errors.New("no active session")

	// ErrInvalidCredentials is the backend refusing the sign-in.
	ErrInvalidCredentials = backend.ErrInvalidCredentials
	// ErrIncorrectPassword is a password change naming the wrong old password.
	ErrIncorrectPassword = backend.ErrIncorrectPassword
	// ErrMalformedCredential is a credential that could not be decoded.
	ErrMalformedCredential = credential.ErrMalformedCredential
	// ErrSessionInvalidated is returned to the caller whose request the backend
	// rejected. The session that request carried has already been torn down; a
	// newer session written meanwhile is kept.
	ErrSessionInvalidated = transport.ErrSessionInvalidated
	// ErrSuperseded marks a navigation overtaken by a newer one.
	ErrSuperseded = guard.ErrSuperseded
	// ErrSessionCorrupt is a stored pair that could not be trusted.
	ErrSessionCorrupt = session.ErrSessionCorrupt
	// ErrSubstrateUnavailable is a storage failure.
	ErrSubstrateUnavailable = session.ErrSubstrateUnavailable
	// ErrUnknownArea is a role set without a landing area.
	ErrUnknownArea = route.ErrNoLandingArea
)
