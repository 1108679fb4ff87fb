package credential

import (
	"time"

	"github.com/MrEthical07/goGate/role"
)

// Identity is the decoded, non-authoritative view of a credential.
type Identity struct {
	Subject   string
	UserID    int64
	Roles     role.Set
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// Expired reports whether the identity is past its expiry at now. A credential is
// expired from the exact instant of its exp claim.
func (i Identity) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// Equal compares identities field by field, with instants compared at second
// precision as carried by JWT numeric dates.
func (i Identity) Equal(other Identity) bool {
	return i.Subject == other.Subject &&
		i.UserID == other.UserID &&
		i.Roles == other.Roles &&
		i.ExpiresAt.Unix() == other.ExpiresAt.Unix() &&
		i.IssuedAt.Unix() == other.IssuedAt.Unix()
}
