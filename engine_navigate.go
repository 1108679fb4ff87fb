package goGate

import (
	"context"
	"fmt"
	"time"

	"github.com/MrEthical07/goGate/guard"
	internalflows "github.com/MrEthical07/goGate/internal/flows"
	"github.com/MrEthical07/goGate/route"
)

// Navigate guards a navigation to target and applies the outcome: the navigator
// goes to target when allowed, otherwise to sign-in or to the user's own landing
// area. The decision is made fresh on every call.
//
// When a newer navigation or a teardown starts before this one is applied, the
// outcome is dropped and ErrSuperseded is returned.
func (e *Engine) Navigate(ctx context.Context, target string) (*NavigationResult, error) {
	out, err := internalflows.RunNavigate(ctx, target, e.navigateFlowDeps())
	if err != nil {
		return nil, err
	}
	return &NavigationResult{
		ID:       out.ID,
		Path:     out.Path,
		Decision: out.Decision,
		Target:   out.Target,
		Redirect: out.Redirect,
	}, nil
}

// Check decides a request for target without applying it or ordering it against
// navigations. HTTP adapters answer independent requests with it.
func (e *Engine) Check(ctx context.Context, target string) guard.Outcome {
	if e == nil || e.guard == nil {
		return guard.Outcome{Path: target, Target: route.DefaultSignInPath, Redirect: true}
	}
	deps := e.navigateFlowDeps()
	start := e.now()
	out := e.guard.Check(ctx, target)
	e.observeGuardLatency(e.now().Sub(start))
	internalflows.RecordOutcome(ctx, out, deps)
	return out
}

func (e *Engine) navigateFlowDeps() internalflows.NavigateDeps {
	deps := internalflows.NavigateDeps{
		MetricInc: func(id int) {
			e.metricInc(MetricID(id))
		},
		EmitAudit: e.emitAudit,
		Metrics: internalflows.NavigateMetrics{
			Allowed:            int(MetricNavigationAllowed),
			DeniedUnauth:       int(MetricNavigationDeniedUnauthenticated),
			DeniedForbidden:    int(MetricNavigationDeniedForbidden),
			Superseded:         int(MetricNavigationSuperseded),
			SessionReadFailure: int(MetricSessionReadFailure),
			SessionCorrupt:     int(MetricSessionCorrupt),
		},
		Events: internalflows.NavigateEvents{
			Denied:         auditEventNavigationDenied,
			SessionCorrupt: auditEventSessionCorrupt,
		},
		Errors: internalflows.NavigateErrors{
			EngineNotReady: ErrEngineNotReady,
		},
	}
	if e == nil || e.guard == nil {
		return deps
	}

	deps.Evaluate = e.guard.Evaluate
	deps.Apply = e.apply
	deps.Now = e.now
	deps.ObserveLatency = e.observeGuardLatency
	deps.Debug = e.logDebug
	return deps
}

// apply hands out to the navigator if it is still the newest attempt. navMu makes
// the currency check and the navigation one step with respect to other applies.
func (e *Engine) apply(ctx context.Context, out guard.Outcome) error {
	e.navMu.Lock()
	defer e.navMu.Unlock()
	if !e.guard.Current(out.Attempt) {
		return ErrSuperseded
	}
	if err := e.nav.Navigate(ctx, out.Target); err != nil {
		return fmt.Errorf("navigate to %s: %w", out.Target, err)
	}
	return nil
}

// redirectToSignIn supersedes every navigation in flight and sends the navigator
// to sign-in.
func (e *Engine) redirectToSignIn(ctx context.Context) error {
	e.navMu.Lock()
	defer e.navMu.Unlock()
	e.guard.Supersede()
	return e.nav.Navigate(ctx, e.table.SignInPath())
}

func (e *Engine) observeGuardLatency(d time.Duration) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Observe(MetricGuardLatency, d)
}
