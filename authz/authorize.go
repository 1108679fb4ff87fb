package authz

import (
	"time"

	"github.com/MrEthical07/goGate/role"
	"github.com/MrEthical07/goGate/session"
)

// Rule is the static authorization requirement of a protected area. An empty
// RequiredRoles admits any authenticated role.
type Rule struct {
	RequiredRoles role.Set
}

// RequireAny builds a Rule admitting holders of any of names.
func RequireAny(names ...role.Name) Rule {
	return Rule{RequiredRoles: role.NewSet(names...)}
}

// Authenticated is the rule that admits every live session.
var Authenticated = Rule{}

// Authorize decides whether sess may enter an area guarded by rule at now.
func Authorize(rule Rule, sess *session.Session, now time.Time) Decision {
	if sess == nil || sess.Identity.Expired(now) {
		return DenyUnauthenticated
	}
	if rule.RequiredRoles.Empty() {
		return Allow
	}
	if sess.Identity.Roles.Intersects(rule.RequiredRoles) {
		return Allow
	}
	return DenyForbidden
}
