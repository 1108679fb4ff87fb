package goGate

import (
	"context"

	internalflows "github.com/MrEthical07/goGate/internal/flows"
	"github.com/MrEthical07/goGate/transport"
)

// Teardown ends the session: the store is cleared and then the navigator is sent
// to sign-in, superseding any navigation in flight. Teardown is idempotent.
func (e *Engine) Teardown(ctx context.Context, reason TeardownReason) error {
	deps := e.teardownFlowDeps()
	if e != nil && e.store != nil {
		deps.ClearSession = func(ctx context.Context) (bool, error) {
			return true, e.store.Clear(ctx)
		}
	}
	return internalflows.RunTeardown(ctx, string(reason), deps)
}

// Logout asks the backend to revoke the credential and tears the session down
// whatever the backend answers.
func (e *Engine) Logout(ctx context.Context) error {
	deps := internalflows.LogoutDeps{
		MetricInc: func(id int) {
			e.metricInc(MetricID(id))
		},
		EmitAudit:           e.emitAudit,
		RevokeFailureMetric: int(MetricLogoutRevokeFailure),
		RevokeFailureEvent:  auditEventLogoutRevokeFailed,
		Errors: internalflows.LogoutErrors{
			EngineNotReady:     ErrEngineNotReady,
			SessionInvalidated: ErrSessionInvalidated,
		},
	}
	if e != nil && e.store != nil {
		deps.HasSession = e.hasSession
		deps.Revoke = e.backend.Logout
		deps.Teardown = func(ctx context.Context) error {
			return e.Teardown(ctx, ReasonLogout)
		}
		deps.Error = e.logError
	}
	return internalflows.RunLogout(ctx, deps)
}

func (e *Engine) teardownFlowDeps() internalflows.TeardownDeps {
	deps := internalflows.TeardownDeps{
		MetricInc: func(id int) {
			e.metricInc(MetricID(id))
		},
		EmitAudit: e.emitAudit,
		ReasonMetrics: map[string]int{
			string(ReasonLogout):             int(MetricTeardownLogout),
			string(ReasonSensitiveOperation): int(MetricTeardownSensitiveOperation),
			string(ReasonRemoteInvalidation): int(MetricTeardownRemoteInvalidation),
		},
		Event: auditEventTeardown,
		Errors: internalflows.TeardownErrors{
			EngineNotReady: ErrEngineNotReady,
		},
	}
	if e == nil || e.store == nil {
		return deps
	}

	deps.Subject = e.subject
	deps.Redirect = e.redirectToSignIn
	deps.Info = e.logInfo
	deps.Error = e.logError
	return deps
}

// onReject is the transport's teardown hook. Only a rejection of the credential
// still stored ends the session; a late answer to a request sent under an earlier
// session leaves the current one in place.
func (e *Engine) onReject(ctx context.Context, rej transport.Rejection) {
	e.log.Info("backend rejected session", "method", rej.Method, "path", rej.Path, "status", rej.Status)
	deps := e.teardownFlowDeps()
	if e.store != nil {
		deps.ClearSession = func(ctx context.Context) (bool, error) {
			return e.store.ClearIf(ctx, rej.Carried)
		}
	}
	if err := internalflows.RunTeardown(context.WithoutCancel(ctx), string(ReasonRemoteInvalidation), deps); err != nil {
		e.log.Error(err, "remote invalidation teardown incomplete")
	}
}
