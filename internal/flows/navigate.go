package flows

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goGate/authz"
	"github.com/MrEthical07/goGate/guard"
	"github.com/MrEthical07/goGate/session"
)

// NavigateMetrics carries metric IDs used by the navigation flow.
type NavigateMetrics struct {
	Allowed            int
	DeniedUnauth       int
	DeniedForbidden    int
	Superseded         int
	SessionReadFailure int
	SessionCorrupt     int
}

// NavigateEvents carries audit event names used by the navigation flow.
type NavigateEvents struct {
	Denied         string
	SessionCorrupt string
}

// NavigateDeps captures navigation dependencies.
type NavigateDeps struct {
	Evaluate func(ctx context.Context, target string) (guard.Outcome, error)
	// Apply sends the navigator to out.Target unless out has been superseded in
	// the meantime.
	Apply func(ctx context.Context, out guard.Outcome) error
	Now   func() time.Time

	MetricInc      func(int)
	ObserveLatency func(time.Duration)
	EmitAudit      AuditFunc
	Debug          func(string, ...any)

	Metrics NavigateMetrics
	Events  NavigateEvents
	Errors  NavigateErrors
}

// NavigateErrors carries host-level sentinel errors used by the navigation flow.
type NavigateErrors struct {
	EngineNotReady error
}

// RunNavigate guards one navigation and applies its outcome. A superseded outcome
// is returned with its error and never applied.
func RunNavigate(ctx context.Context, target string, deps NavigateDeps) (guard.Outcome, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = noMetric
	}
	if deps.ObserveLatency == nil {
		deps.ObserveLatency = func(time.Duration) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noAudit
	}
	if deps.Debug == nil {
		deps.Debug = noLog
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Evaluate == nil || deps.Apply == nil {
		return guard.Outcome{}, deps.Errors.EngineNotReady
	}

	start := deps.Now()
	out, err := deps.Evaluate(ctx, target)
	deps.ObserveLatency(deps.Now().Sub(start))
	if err != nil {
		deps.MetricInc(deps.Metrics.Superseded)
		deps.Debug("navigation superseded", "navigation", out.ID.String(), "path", out.Path)
		return out, err
	}

	RecordOutcome(ctx, out, deps)
	if err := deps.Apply(ctx, out); err != nil {
		if errors.Is(err, guard.ErrSuperseded) {
			deps.MetricInc(deps.Metrics.Superseded)
		}
		return out, err
	}
	return out, nil
}

// RecordOutcome counts and audits a decided outcome. It is shared with callers that
// check requests outside the ordered navigation path.
func RecordOutcome(ctx context.Context, out guard.Outcome, deps NavigateDeps) {
	if deps.MetricInc == nil {
		deps.MetricInc = noMetric
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noAudit
	}
	if deps.Debug == nil {
		deps.Debug = noLog
	}

	if out.StoreErr != nil {
		deps.MetricInc(deps.Metrics.SessionReadFailure)
		if errors.Is(out.StoreErr, session.ErrSessionCorrupt) {
			deps.MetricInc(deps.Metrics.SessionCorrupt)
			deps.EmitAudit(ctx, deps.Events.SessionCorrupt, false, "", out.ID.String(), out.StoreErr, nil)
		}
	}

	switch out.Decision {
	case authz.Allow:
		deps.MetricInc(deps.Metrics.Allowed)
	case authz.DenyForbidden:
		deps.MetricInc(deps.Metrics.DeniedForbidden)
	default:
		deps.MetricInc(deps.Metrics.DeniedUnauth)
	}
	if out.Decision != authz.Allow {
		deps.EmitAudit(ctx, deps.Events.Denied, false, out.Subject, out.ID.String(), nil, func() map[string]string {
			return map[string]string{
				"path":     out.Path,
				"area":     out.Area.Name,
				"decision": out.Decision.String(),
				"redirect": out.Target,
			}
		})
	}
	deps.Debug("navigation decided", "navigation", out.ID.String(), "path", out.Path, "decision", out.Decision.String(), "target", out.Target)
}
