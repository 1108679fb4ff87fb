package goGate

import (
	"context"

	"github.com/MrEthical07/goGate/backend"
	internalflows "github.com/MrEthical07/goGate/internal/flows"
)

// ChangePassword changes the signed-in user's password. On success the session is
// torn down with ReasonSensitiveOperation and the user must sign in again.
func (e *Engine) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	deps := internalflows.ChangePasswordDeps{
		MetricInc: func(id int) {
			e.metricInc(MetricID(id))
		},
		EmitAudit:     e.emitAudit,
		SuccessMetric: int(MetricPasswordChangeSuccess),
		FailureMetric: int(MetricPasswordChangeFailure),
		Event:         auditEventPasswordChange,
		Errors: internalflows.ChangePasswordErrors{
			EngineNotReady:     ErrEngineNotReady,
			NoSession:          ErrNoSession,
			SessionInvalidated: ErrSessionInvalidated,
		},
	}
	if e != nil && e.store != nil {
		deps.HasSession = e.hasSession
		deps.Change = e.backend.ChangePassword
		deps.Teardown = func(ctx context.Context) error {
			return e.Teardown(ctx, ReasonSensitiveOperation)
		}
	}
	return internalflows.RunChangePassword(ctx, oldPassword, newPassword, deps)
}

// Profile reads the signed-in user's profile through the inspecting client.
func (e *Engine) Profile(ctx context.Context) (backend.Profile, error) {
	if e == nil || e.backend == nil {
		return backend.Profile{}, ErrEngineNotReady
	}
	if !e.hasSession(ctx) {
		return backend.Profile{}, ErrNoSession
	}
	return e.backend.Profile(ctx)
}
