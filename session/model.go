package session

import "github.com/MrEthical07/goGate/credential"

// Session is the current credential and the identity decoded from it.
type Session struct {
	Credential string
	Identity   credential.Identity
}
