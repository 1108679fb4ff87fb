package goGate

import (
	"context"

	"github.com/MrEthical07/goGate/authz"
	"github.com/MrEthical07/goGate/role"
	"github.com/google/uuid"
)

// Navigator applies navigations to the UI. Implementations must not call back into
// the Engine.
type Navigator interface {
	Navigate(ctx context.Context, target string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, target string) error

func (f NavigatorFunc) Navigate(ctx context.Context, target string) error {
	return f(ctx, target)
}

// TeardownReason says why a session ended.
type TeardownReason string

const (
	ReasonLogout             TeardownReason = "logout"
	ReasonSensitiveOperation TeardownReason = "sensitive_operation"
	ReasonRemoteInvalidation TeardownReason = "remote_invalidation"
)

// LoginResult describes a completed sign-in.
type LoginResult struct {
	Subject string
	UserID  int64
	Roles   role.Set
	// Landing is the path the user was sent to.
	Landing string
	// LandingArea names the area Landing belongs to.
	LandingArea string
}

// NavigationResult describes an applied navigation.
type NavigationResult struct {
	ID       uuid.UUID
	Path     string
	Decision authz.Decision
	// Target is where the navigator was sent: Path, or the redirect location.
	Target   string
	Redirect bool
}
