package authz

// Decision is the outcome of an authorization check.
type Decision uint8

const (
	// DenyUnauthenticated means there is no live session. It is the zero value so
	// an unset decision fails closed.
	DenyUnauthenticated Decision = iota
	// DenyForbidden means the session is live but holds none of the required roles.
	DenyForbidden
	// Allow permits entry.
	Allow
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyForbidden:
		return "deny_forbidden"
	default:
		return "deny_unauthenticated"
	}
}
