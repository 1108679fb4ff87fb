package flows

import (
	"context"
	"errors"
	"fmt"
)

// TeardownDeps captures teardown dependencies.
type TeardownDeps struct {
	// Subject reads the current subject for audit; it may fail or return "".
	Subject func(context.Context) string
	// ClearSession removes the session and reports whether this teardown still
	// applies. A false result with a nil error means a newer session replaced the
	// one being torn down; nothing else happens then.
	ClearSession func(context.Context) (bool, error)
	// Redirect navigates to the sign-in path, superseding any navigation in flight.
	Redirect func(context.Context) error

	MetricInc func(int)
	EmitAudit AuditFunc
	Info      func(string, ...any)
	Error     func(error, string, ...any)

	// ReasonMetrics maps a teardown reason to its metric ID.
	ReasonMetrics map[string]int
	Event         string
	Errors        TeardownErrors
}

// TeardownErrors carries host-level sentinel errors used by the teardown flow.
type TeardownErrors struct {
	EngineNotReady error
}

// RunTeardown clears the session and then redirects to sign-in. The redirect is
// issued even when clearing fails, and the clear error is returned. A teardown
// whose session was already replaced leaves the newer session and the navigator
// alone.
func RunTeardown(ctx context.Context, reason string, deps TeardownDeps) error {
	if deps.MetricInc == nil {
		deps.MetricInc = noMetric
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noAudit
	}
	if deps.Info == nil {
		deps.Info = noLog
	}
	if deps.Error == nil {
		deps.Error = func(error, string, ...any) {}
	}
	if deps.Subject == nil {
		deps.Subject = func(context.Context) string { return "" }
	}
	if deps.ClearSession == nil || deps.Redirect == nil {
		return deps.Errors.EngineNotReady
	}

	subject := deps.Subject(ctx)

	cleared, clearErr := deps.ClearSession(ctx)
	if clearErr == nil && !cleared {
		deps.Info("teardown skipped; session already replaced", "reason", reason)
		return nil
	}
	if clearErr != nil {
		deps.Error(clearErr, "session clear failed", "reason", reason)
	}
	if id, ok := deps.ReasonMetrics[reason]; ok {
		deps.MetricInc(id)
	}
	deps.EmitAudit(ctx, deps.Event, clearErr == nil, subject, "", clearErr, func() map[string]string {
		return map[string]string{"reason": reason}
	})
	deps.Info("session torn down", "reason", reason, "subject", subject)

	redirectErr := deps.Redirect(ctx)
	if clearErr != nil {
		return fmt.Errorf("teardown %s: %w", reason, clearErr)
	}
	if redirectErr != nil {
		return fmt.Errorf("teardown %s: redirect: %w", reason, redirectErr)
	}
	return nil
}

// LogoutDeps captures logout dependencies.
type LogoutDeps struct {
	HasSession func(context.Context) bool
	// Revoke asks the backend to revoke the credential.
	Revoke   func(context.Context) error
	Teardown func(context.Context) error

	MetricInc func(int)
	EmitAudit AuditFunc
	Error     func(error, string, ...any)

	RevokeFailureMetric int
	RevokeFailureEvent  string
	Errors              LogoutErrors
}

// LogoutErrors carries host-level sentinel errors used by the logout flow.
type LogoutErrors struct {
	EngineNotReady error
	// SessionInvalidated means the revoke call itself revealed a rejected session;
	// teardown has then already happened.
	SessionInvalidated error
}

// RunLogout revokes the credential best effort and tears the session down
// regardless of the backend's answer.
func RunLogout(ctx context.Context, deps LogoutDeps) error {
	if deps.MetricInc == nil {
		deps.MetricInc = noMetric
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noAudit
	}
	if deps.Error == nil {
		deps.Error = func(error, string, ...any) {}
	}
	if deps.HasSession == nil || deps.Revoke == nil || deps.Teardown == nil {
		return deps.Errors.EngineNotReady
	}

	if deps.HasSession(ctx) {
		if err := deps.Revoke(ctx); err != nil {
			if deps.Errors.SessionInvalidated != nil && errors.Is(err, deps.Errors.SessionInvalidated) {
				return nil
			}
			deps.MetricInc(deps.RevokeFailureMetric)
			deps.EmitAudit(ctx, deps.RevokeFailureEvent, false, "", "", err, nil)
			deps.Error(err, "backend logout failed; tearing down locally")
		}
	}
	return deps.Teardown(ctx)
}
