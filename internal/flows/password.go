package flows

import (
	"context"
	"errors"
)

// ChangePasswordDeps captures password change dependencies.
type ChangePasswordDeps struct {
	HasSession func(context.Context) bool
	Change     func(ctx context.Context, oldPassword, newPassword string) error
	// Teardown ends the session after a successful change.
	Teardown func(context.Context) error

	MetricInc func(int)
	EmitAudit AuditFunc

	SuccessMetric int
	FailureMetric int
	Event         string
	Errors        ChangePasswordErrors
}

// ChangePasswordErrors carries host-level sentinel errors used by the flow.
type ChangePasswordErrors struct {
	EngineNotReady     error
	NoSession          error
	SessionInvalidated error
}

// RunChangePassword changes the password and then requires a fresh sign-in. A
// failed change keeps the session, except when the backend rejected it outright;
// that rejection has already torn it down.
func RunChangePassword(ctx context.Context, oldPassword, newPassword string, deps ChangePasswordDeps) error {
	if deps.MetricInc == nil {
		deps.MetricInc = noMetric
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noAudit
	}
	if deps.HasSession == nil || deps.Change == nil || deps.Teardown == nil {
		return deps.Errors.EngineNotReady
	}
	if !deps.HasSession(ctx) {
		return deps.Errors.NoSession
	}

	if err := deps.Change(ctx, oldPassword, newPassword); err != nil {
		deps.MetricInc(deps.FailureMetric)
		deps.EmitAudit(ctx, deps.Event, false, "", "", err, func() map[string]string {
			invalidated := deps.Errors.SessionInvalidated != nil && errors.Is(err, deps.Errors.SessionInvalidated)
			if invalidated {
				return map[string]string{"session": "invalidated"}
			}
			return map[string]string{"session": "kept"}
		})
		return err
	}

	deps.MetricInc(deps.SuccessMetric)
	deps.EmitAudit(ctx, deps.Event, true, "", "", nil, nil)
	return deps.Teardown(ctx)
}
