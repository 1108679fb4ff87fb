package internaldefs

import (
	goGate "github.com/MrEthical07/goGate"
)

type CounterDef struct {
	ID   goGate.MetricID
	Name string
	Help string
}

type HistogramDef struct {
	ID   goGate.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: goGate.MetricLoginSuccess, Name: "gogate_login_success_total", Help: "Completed sign-ins."},
	{ID: goGate.MetricLoginFailure, Name: "gogate_login_failure_total", Help: "Failed sign-ins, including backend refusals."},
	{ID: goGate.MetricLoginMalformedCredential, Name: "gogate_login_malformed_credential_total", Help: "Sign-ins whose credential could not be decoded."},
	{ID: goGate.MetricSessionCreated, Name: "gogate_session_created_total", Help: "Sessions written to the store."},
	{ID: goGate.MetricNavigationAllowed, Name: "gogate_navigation_allowed_total", Help: "Navigations allowed by the guard."},
	{ID: goGate.MetricNavigationDeniedUnauthenticated, Name: "gogate_navigation_denied_unauthenticated_total", Help: "Navigations redirected to sign-in."},
	{ID: goGate.MetricNavigationDeniedForbidden, Name: "gogate_navigation_denied_forbidden_total", Help: "Navigations redirected to the user's own landing area."},
	{ID: goGate.MetricNavigationSuperseded, Name: "gogate_navigation_superseded_total", Help: "Navigation outcomes dropped for a newer attempt."},
	{ID: goGate.MetricSessionReadFailure, Name: "gogate_session_read_failure_total", Help: "Session reads that failed during a guard evaluation."},
	{ID: goGate.MetricSessionCorrupt, Name: "gogate_session_corrupt_total", Help: "Stored sessions cleared as corrupt."},
	{ID: goGate.MetricTeardownLogout, Name: "gogate_teardown_logout_total", Help: "Sessions ended by logout."},
	{ID: goGate.MetricTeardownSensitiveOperation, Name: "gogate_teardown_sensitive_operation_total", Help: "Sessions ended after a sensitive operation."},
	{ID: goGate.MetricTeardownRemoteInvalidation, Name: "gogate_teardown_remote_invalidation_total", Help: "Sessions ended because the backend rejected them."},
	{ID: goGate.MetricLogoutRevokeFailure, Name: "gogate_logout_revoke_failure_total", Help: "Logouts whose backend revoke call failed."},
	{ID: goGate.MetricPasswordChangeSuccess, Name: "gogate_password_change_success_total", Help: "Successful password changes."},
	{ID: goGate.MetricPasswordChangeFailure, Name: "gogate_password_change_failure_total", Help: "Failed password changes."},
}

var HistogramDefs = []HistogramDef{
	{ID: goGate.MetricGuardLatency, Name: "gogate_guard_latency_seconds", Help: "Guard evaluation latency."},
}

// AuditDroppedName is the counter for audit events lost to backpressure.
const AuditDroppedName = "gogate_audit_dropped_total"

const AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."

// HistogramBounds are the upper bounds, in seconds, of the first seven buckets.
// The eighth bucket is +Inf.
var HistogramBounds = []float64{
	0.00005,
	0.0001,
	0.00025,
	0.0005,
	0.001,
	0.005,
	0.025,
}

// HistogramBoundSuffix names each bucket for exporters without native histograms.
var HistogramBoundSuffix = []string{
	"50us",
	"100us",
	"250us",
	"500us",
	"1ms",
	"5ms",
	"25ms",
	"inf",
}

// NormalizeBuckets pads or truncates raw to exactly 8 buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	copy(out[:], raw)
	return out
}

func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i, v := range raw {
		running += v
		out[i] = running
	}
	return out
}
