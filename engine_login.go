package goGate

import (
	"context"
	"errors"

	"github.com/MrEthical07/goGate/credential"
	internalflows "github.com/MrEthical07/goGate/internal/flows"
)

// Login signs in with email and password, stores the session and navigates to
// the landing area of the user's most privileged role.
//
// A backend refusal is ErrInvalidCredentials. A credential that cannot be decoded
// is ErrSignInFailed wrapping ErrMalformedCredential, and nothing is stored.
func (e *Engine) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	res, err := internalflows.RunLogin(ctx, email, password, e.loginFlowDeps())
	if res.Identity.Subject == "" {
		return nil, err
	}
	return &LoginResult{
		Subject:     res.Identity.Subject,
		UserID:      res.Identity.UserID,
		Roles:       res.Identity.Roles,
		Landing:     res.Landing.Landing,
		LandingArea: res.Landing.Name,
	}, err
}

func (e *Engine) loginFlowDeps() internalflows.LoginDeps {
	deps := internalflows.LoginDeps{
		Decode: credential.Decode,
		MetricInc: func(id int) {
			e.metricInc(MetricID(id))
		},
		EmitAudit: e.emitAudit,
		Metrics: internalflows.LoginMetrics{
			LoginSuccess:        int(MetricLoginSuccess),
			LoginFailure:        int(MetricLoginFailure),
			MalformedCredential: int(MetricLoginMalformedCredential),
			SessionCreated:      int(MetricSessionCreated),
		},
		Events: internalflows.LoginEvents{
			LoginSuccess: auditEventLoginSuccess,
			LoginFailure: auditEventLoginFailure,
		},
		Errors: internalflows.LoginErrors{
			EngineNotReady:     ErrEngineNotReady,
			SignInFailed:       ErrSignInFailed,
			InvalidCredentials: ErrInvalidCredentials,
		},
	}
	if e == nil || e.store == nil {
		return deps
	}

	deps.Authenticate = e.backend.Login
	deps.WriteSession = e.store.Write
	deps.LandingFor = e.table.LandingAreaFor
	deps.Navigate = func(ctx context.Context, target string) error {
		_, err := e.Navigate(ctx, target)
		if errors.Is(err, ErrSuperseded) {
			return nil
		}
		return err
	}
	deps.Info = e.logInfo
	return deps
}
