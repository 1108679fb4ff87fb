package prometheus

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goGate "github.com/MrEthical07/goGate"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeSource struct {
	snapshot goGate.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() goGate.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                    { return f.dropped }

func TestCollectorCountersAndDropped(t *testing.T) {
	c := NewCollectorFromSource(fakeSource{
		snapshot: goGate.MetricsSnapshot{
			Counters: map[goGate.MetricID]uint64{
				goGate.MetricLoginSuccess:               7,
				goGate.MetricNavigationDeniedForbidden:  3,
				goGate.MetricTeardownRemoteInvalidation: 1,
			},
			Histograms: map[goGate.MetricID][]uint64{},
		},
		dropped: 2,
	})

	expected := `
# HELP gogate_login_success_total Completed sign-ins.
# TYPE gogate_login_success_total counter
gogate_login_success_total 7
# HELP gogate_navigation_denied_forbidden_total Navigations redirected to the user's own landing area.
# TYPE gogate_navigation_denied_forbidden_total counter
gogate_navigation_denied_forbidden_total 3
# HELP gogate_audit_dropped_total Dropped audit events due to dispatcher backpressure.
# TYPE gogate_audit_dropped_total counter
gogate_audit_dropped_total 2
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"gogate_login_success_total",
		"gogate_navigation_denied_forbidden_total",
		"gogate_audit_dropped_total",
	); err != nil {
		t.Fatal(err)
	}
}

func TestCollectorHistogramIsCumulative(t *testing.T) {
	c := NewCollectorFromSource(fakeSource{
		snapshot: goGate.MetricsSnapshot{
			Counters: map[goGate.MetricID]uint64{},
			Histograms: map[goGate.MetricID][]uint64{
				goGate.MetricGuardLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
	})

	expected := `
# HELP gogate_guard_latency_seconds Guard evaluation latency.
# TYPE gogate_guard_latency_seconds histogram
gogate_guard_latency_seconds_bucket{le="5e-05"} 1
gogate_guard_latency_seconds_bucket{le="0.0001"} 3
gogate_guard_latency_seconds_bucket{le="0.00025"} 6
gogate_guard_latency_seconds_bucket{le="0.0005"} 10
gogate_guard_latency_seconds_bucket{le="0.001"} 15
gogate_guard_latency_seconds_bucket{le="0.005"} 21
gogate_guard_latency_seconds_bucket{le="0.025"} 28
gogate_guard_latency_seconds_bucket{le="+Inf"} 36
gogate_guard_latency_seconds_sum 0
gogate_guard_latency_seconds_count 36
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(expected), "gogate_guard_latency_seconds"); err != nil {
		t.Fatal(err)
	}
}

func TestCollectorPassesLint(t *testing.T) {
	c := NewCollectorFromSource(fakeSource{snapshot: goGate.MetricsSnapshot{
		Counters:   map[goGate.MetricID]uint64{goGate.MetricLoginSuccess: 1},
		Histograms: map[goGate.MetricID][]uint64{goGate.MetricGuardLatency: {1}},
	}})
	problems, err := testutil.CollectAndLint(c)
	if err != nil {
		t.Fatalf("lint failed: %v", err)
	}
	if len(problems) != 0 {
		t.Fatalf("lint problems: %v", problems)
	}
}

func TestHandlerServesTextFormat(t *testing.T) {
	c := NewCollectorFromSource(fakeSource{snapshot: goGate.MetricsSnapshot{
		Counters:   map[goGate.MetricID]uint64{goGate.MetricLoginSuccess: 1},
		Histograms: map[goGate.MetricID][]uint64{},
	}})

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "gogate_login_success_total 1") {
		t.Fatalf("expected login counter in output, got:\n%s", body)
	}
}
