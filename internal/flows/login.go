package flows

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goGate/credential"
	"github.com/MrEthical07/goGate/role"
	"github.com/MrEthical07/goGate/route"
	"github.com/MrEthical07/goGate/session"
)

// LoginResult is the flow-local sign-in outcome.
type LoginResult struct {
	Identity credential.Identity
	Landing  route.Area
}

// LoginMetrics carries metric IDs used by the login flow.
type LoginMetrics struct {
	LoginSuccess        int
	LoginFailure        int
	MalformedCredential int
	SessionCreated      int
}

// LoginEvents carries audit event names used by the login flow.
type LoginEvents struct {
	LoginSuccess string
	LoginFailure string
}

// LoginErrors carries host-level sentinel errors used by the login flow.
type LoginErrors struct {
	EngineNotReady     error
	SignInFailed       error
	InvalidCredentials error
}

// LoginDeps captures login dependencies.
type LoginDeps struct {
	Authenticate func(ctx context.Context, email, password string) (string, error)
	Decode       func(string) (credential.Identity, error)
	WriteSession func(context.Context, session.Session) error
	LandingFor   func(role.Set) (route.Area, error)
	Navigate     func(ctx context.Context, target string) error

	MetricInc func(int)
	EmitAudit AuditFunc
	Info      func(string, ...any)

	Metrics LoginMetrics
	Events  LoginEvents
	Errors  LoginErrors
}

// RunLogin signs in: backend exchange, decode, store write, then navigation to
// the landing area of the most privileged role. A credential that fails to decode
// leaves the store untouched.
func RunLogin(ctx context.Context, email, password string, deps LoginDeps) (LoginResult, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = noMetric
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noAudit
	}
	if deps.Info == nil {
		deps.Info = noLog
	}
	if deps.Authenticate == nil ||
		deps.Decode == nil ||
		deps.WriteSession == nil ||
		deps.LandingFor == nil ||
		deps.Navigate == nil {
		return LoginResult{}, deps.Errors.EngineNotReady
	}

	fail := func(err error, reason string) (LoginResult, error) {
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, "", "", err, func() map[string]string {
			return map[string]string{"reason": reason}
		})
		return LoginResult{}, err
	}

	token, err := deps.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, deps.Errors.InvalidCredentials) {
			return fail(err, "invalid_credentials")
		}
		return fail(err, "backend_unavailable")
	}

	id, err := deps.Decode(token)
	if err != nil {
		deps.MetricInc(deps.Metrics.MalformedCredential)
		return fail(fmt.Errorf("%w: %w", deps.Errors.SignInFailed, err), "malformed_credential")
	}

	landing, err := deps.LandingFor(id.Roles)
	if err != nil {
		return fail(fmt.Errorf("%w: %w", deps.Errors.SignInFailed, err), "no_landing_area")
	}

	if err := deps.WriteSession(ctx, session.Session{Credential: token, Identity: id}); err != nil {
		return fail(fmt.Errorf("%w: %w", deps.Errors.SignInFailed, err), "session_write")
	}
	deps.MetricInc(deps.Metrics.SessionCreated)

	deps.MetricInc(deps.Metrics.LoginSuccess)
	deps.EmitAudit(ctx, deps.Events.LoginSuccess, true, id.Subject, "", nil, func() map[string]string {
		return map[string]string{
			"roles":   id.Roles.String(),
			"landing": landing.Landing,
		}
	})
	deps.Info("signed in", "subject", id.Subject, "roles", id.Roles.String(), "landing", landing.Landing)

	if err := deps.Navigate(ctx, landing.Landing); err != nil {
		return LoginResult{Identity: id, Landing: landing}, err
	}
	return LoginResult{Identity: id, Landing: landing}, nil
}
