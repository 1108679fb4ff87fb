package goGate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/goGate/authz"
	"github.com/MrEthical07/goGate/guard"
	"github.com/MrEthical07/goGate/internal/testtoken"
	"github.com/MrEthical07/goGate/role"
	"github.com/MrEthical07/goGate/route"
	"github.com/MrEthical07/goGate/session"
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// fakeUserService answers the four user-service endpoints. A credential is
// honoured until it is revoked.
type fakeUserService struct {
	mu             sync.Mutex
	tokens         map[string]string // email -> credential
	revoked        map[string]bool
	logoutStatus   int
	loginAuth      []string
	changePassword string
	// profileHold parks the next profile call until it is released, then rejects it.
	profileHold *heldCall
}

type heldCall struct {
	entered chan struct{}
	release chan struct{}
}

func newFakeUserService(t *testing.T) (*fakeUserService, *httptest.Server) {
	t.Helper()
	f := &fakeUserService{
		tokens:         map[string]string{},
		revoked:        map[string]bool{},
		changePassword: "old-secret",
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /userservice/auth/login", f.login)
	mux.HandleFunc("POST /userservice/auth/logout", f.logout)
	mux.HandleFunc("PUT /userservice/user/change-password", f.change)
	mux.HandleFunc("GET /userservice/user/profile", f.profile)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeUserService) issue(email, token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[email] = token
}

// holdProfile makes the next profile call wait for release and then answer 401.
func (f *fakeUserService) holdProfile() (entered <-chan struct{}, release func()) {
	h := &heldCall{entered: make(chan struct{}), release: make(chan struct{})}
	f.mu.Lock()
	f.profileHold = h
	f.mu.Unlock()
	return h.entered, func() { close(h.release) }
}

func (f *fakeUserService) revokeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tok := range f.tokens {
		f.revoked[tok] = true
	}
}

func (f *fakeUserService) authorized(r *http.Request) bool {
	tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.revoked[tok] {
		return false
	}
	for _, issued := range f.tokens {
		if issued == tok {
			return true
		}
	}
	return false
}

func (f *fakeUserService) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	f.loginAuth = append(f.loginAuth, r.Header.Get("Authorization"))
	tok, ok := f.tokens[req.Email]
	f.mu.Unlock()

	if !ok || req.Password != "pw" {
		http.Error(w, `{"message":"Bad credentials"}`, http.StatusUnauthorized)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"token": tok})
}

func (f *fakeUserService) logout(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	status := f.logoutStatus
	f.mu.Unlock()
	if status != 0 {
		w.WriteHeader(status)
		return
	}
	if !f.authorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	f.revokeAll()
	w.WriteHeader(http.StatusOK)
}

func (f *fakeUserService) change(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.OldPassword != f.changePassword {
		http.Error(w, `{"message":"Old password is incorrect"}`, http.StatusBadRequest)
		return
	}
	f.changePassword = req.NewPassword
	w.WriteHeader(http.StatusOK)
}

func (f *fakeUserService) profile(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	hold := f.profileHold
	f.profileHold = nil
	f.mu.Unlock()
	if hold != nil {
		close(hold.entered)
		<-hold.release
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if !f.authorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":        7,
		"username":  "ines",
		"email":     "ines@example.com",
		"firstName": "Ines",
		"roles":     []any{"INSTRUCTOR", map[string]string{"name": "STUDENT"}},
	})
}

type testEngine struct {
	engine  *Engine
	backend *fakeUserService
	history *route.History
	clock   *testClock
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestEngine(t *testing.T) *testEngine {
	t.Helper()
	svc, srv := newFakeUserService(t)

	cfg := DefaultConfig()
	cfg.Backend.BaseURL = srv.URL
	cfg.Metrics.EnableLatencyHistograms = true

	clock := &testClock{now: testNow}
	hist := route.NewHistory("/home")
	engine, err := New().
		WithConfig(cfg).
		WithSubstrate(session.NewMemory()).
		WithNavigator(hist).
		WithClock(clock.Now).
		WithHTTPClient(srv.Client()).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return &testEngine{engine: engine, backend: svc, history: hist, clock: clock}
}

func (te *testEngine) signIn(t *testing.T, email string, roles ...string) *LoginResult {
	t.Helper()
	te.backend.issue(email, testtoken.For(t, email, testNow.Add(time.Hour), roles...))
	res, err := te.engine.Login(context.Background(), email, "pw")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	return res
}

func (te *testEngine) counter(id MetricID) uint64 {
	return te.engine.MetricsSnapshot().Counters[id]
}

func TestLoginLandsOnMostPrivilegedArea(t *testing.T) {
	cases := []struct {
		roles   []string
		landing string
	}{
		{[]string{"STUDENT"}, "/student/dashboard"},
		{[]string{"STUDENT", "INSTRUCTOR"}, "/instructor/dashboard"},
		{[]string{"INSTRUCTOR", "ADMIN", "STUDENT"}, "/admin/dashboard"},
	}
	for _, tc := range cases {
		t.Run(tc.landing, func(t *testing.T) {
			te := newTestEngine(t)
			res := te.signIn(t, "ines@example.com", tc.roles...)

			if res.Landing != tc.landing {
				t.Fatalf("expected landing %s, got %s", tc.landing, res.Landing)
			}
			if got := te.history.Current(); got != tc.landing {
				t.Fatalf("navigator at %s, want %s", got, tc.landing)
			}
			sess, err := te.engine.Session(context.Background())
			if err != nil || sess == nil {
				t.Fatalf("expected stored session, got %v %v", sess, err)
			}
			if sess.Identity.Subject != "ines@example.com" || res.UserID != 7 {
				t.Fatalf("unexpected identity %+v", sess.Identity)
			}
			if te.counter(MetricLoginSuccess) != 1 || te.counter(MetricSessionCreated) != 1 {
				t.Fatalf("unexpected counters %v", te.engine.MetricsSnapshot().Counters)
			}
		})
	}
}

func TestLoginMalformedCredentialStoresNothing(t *testing.T) {
	te := newTestEngine(t)
	te.backend.issue("ines@example.com", "definitely.not.a-jwt")

	res, err := te.engine.Login(context.Background(), "ines@example.com", "pw")
	if !errors.Is(err, ErrSignInFailed) || !errors.Is(err, ErrMalformedCredential) {
		t.Fatalf("expected sign-in failure for malformed credential, got %v", err)
	}
	if res != nil {
		t.Fatalf("expected no result, got %+v", res)
	}
	if sess, _ := te.engine.Session(context.Background()); sess != nil {
		t.Fatalf("expected nothing stored, got %+v", sess)
	}
	if te.history.Current() != "/home" {
		t.Fatalf("navigator moved to %s", te.history.Current())
	}
	if te.counter(MetricLoginMalformedCredential) != 1 {
		t.Fatal("expected malformed credential counter")
	}
}

func TestLoginRefusedIsInvalidCredentials(t *testing.T) {
	te := newTestEngine(t)
	_, err := te.engine.Login(context.Background(), "nobody@example.com", "pw")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if sess, _ := te.engine.Session(context.Background()); sess != nil {
		t.Fatal("expected no session")
	}
	if te.counter(MetricTeardownRemoteInvalidation) != 0 {
		t.Fatal("a refused sign-in must not count as a remote invalidation")
	}
}

func TestLoginNeverSendsExistingCredential(t *testing.T) {
	te := newTestEngine(t)
	te.signIn(t, "ines@example.com", "STUDENT")
	te.signIn(t, "ines@example.com", "STUDENT")

	te.backend.mu.Lock()
	defer te.backend.mu.Unlock()
	for i, auth := range te.backend.loginAuth {
		if auth != "" {
			t.Fatalf("login %d carried Authorization %q", i, auth)
		}
	}
}

func TestNavigateDecisions(t *testing.T) {
	te := newTestEngine(t)
	ctx := context.Background()

	res, err := te.engine.Navigate(ctx, "/student/courses")
	if err != nil {
		t.Fatalf("Navigate failed: %v", err)
	}
	if res.Decision != authz.DenyUnauthenticated || res.Target != "/sign-in" || !res.Redirect {
		t.Fatalf("signed out: unexpected result %+v", res)
	}

	te.signIn(t, "sam@example.com", "STUDENT")

	res, err = te.engine.Navigate(ctx, "/admin/users?tab=all")
	if err != nil {
		t.Fatalf("Navigate failed: %v", err)
	}
	if res.Decision != authz.DenyForbidden || res.Target != "/student/dashboard" {
		t.Fatalf("forbidden: unexpected result %+v", res)
	}
	if te.history.Current() != "/student/dashboard" {
		t.Fatalf("navigator at %s", te.history.Current())
	}

	res, err = te.engine.Navigate(ctx, "/student/courses/12")
	if err != nil || res.Decision != authz.Allow || res.Target != "/student/courses/12" {
		t.Fatalf("allow: unexpected result %+v %v", res, err)
	}
	res, err = te.engine.Navigate(ctx, "/dashboard")
	if err != nil || res.Decision != authz.Allow {
		t.Fatalf("authenticated-only area: unexpected result %+v %v", res, err)
	}

	if te.counter(MetricNavigationDeniedForbidden) != 1 || te.counter(MetricNavigationDeniedUnauthenticated) != 1 {
		t.Fatalf("unexpected counters %v", te.engine.MetricsSnapshot().Counters)
	}
	if buckets := te.engine.MetricsSnapshot().Histograms[MetricGuardLatency]; len(buckets) != 8 {
		t.Fatalf("expected latency histogram, got %v", buckets)
	}
}

func TestExpiredSessionIsUnauthenticated(t *testing.T) {
	te := newTestEngine(t)
	te.signIn(t, "sam@example.com", "STUDENT")

	te.clock.Advance(time.Hour)
	res, err := te.engine.Navigate(context.Background(), "/student/dashboard")
	if err != nil {
		t.Fatalf("Navigate failed: %v", err)
	}
	if res.Decision != authz.DenyUnauthenticated || res.Target != "/sign-in" {
		t.Fatalf("expected sign-in redirect at expiry, got %+v", res)
	}
	if sess, _ := te.engine.Session(context.Background()); sess == nil {
		t.Fatal("expired session must stay stored until teardown")
	}
}

func TestRemoteRejectionTearsDown(t *testing.T) {
	te := newTestEngine(t)
	te.signIn(t, "ines@example.com", "INSTRUCTOR")
	ctx := context.Background()

	p, err := te.engine.Profile(ctx)
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if p.Username != "ines" || !p.RoleSet().Has(role.Student) {
		t.Fatalf("unexpected profile %+v", p)
	}

	te.backend.revokeAll()
	if _, err := te.engine.Profile(ctx); !errors.Is(err, ErrSessionInvalidated) {
		t.Fatalf("expected ErrSessionInvalidated, got %v", err)
	}
	if sess, _ := te.engine.Session(ctx); sess != nil {
		t.Fatal("expected session cleared after rejection")
	}
	if te.history.Current() != "/sign-in" {
		t.Fatalf("navigator at %s", te.history.Current())
	}

	res, err := te.engine.Navigate(ctx, "/instructor/dashboard")
	if err != nil || res.Decision != authz.DenyUnauthenticated || res.Target != "/sign-in" {
		t.Fatalf("expected sign-in redirect after teardown, got %+v %v", res, err)
	}
	if te.counter(MetricTeardownRemoteInvalidation) != 1 {
		t.Fatal("expected one remote invalidation teardown")
	}
	if _, err := te.engine.Profile(ctx); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestLateRejectionKeepsNewerSession(t *testing.T) {
	te := newTestEngine(t)
	te.signIn(t, "ada@example.com", "STUDENT")
	ctx := context.Background()

	entered, release := te.backend.holdProfile()
	errc := make(chan error, 1)
	go func() {
		_, err := te.engine.Profile(ctx)
		errc <- err
	}()
	<-entered

	te.signIn(t, "ines@example.com", "INSTRUCTOR")
	release()

	if err := <-errc; !errors.Is(err, ErrSessionInvalidated) {
		t.Fatalf("expected ErrSessionInvalidated for the old request, got %v", err)
	}
	sess, err := te.engine.Session(ctx)
	if err != nil || sess == nil || sess.Identity.Subject != "ines@example.com" {
		t.Fatalf("newer session torn down by old rejection: %+v / %v", sess, err)
	}
	if got := te.history.Current(); got != "/instructor/dashboard" {
		t.Fatalf("navigator moved to %s", got)
	}
	if te.counter(MetricTeardownRemoteInvalidation) != 0 {
		t.Fatal("late rejection counted as a teardown")
	}

	p, err := te.engine.Profile(ctx)
	if err != nil || p.Username != "ines" {
		t.Fatalf("newer session unusable: %+v / %v", p, err)
	}
}

func TestChangePassword(t *testing.T) {
	te := newTestEngine(t)
	te.signIn(t, "ines@example.com", "STUDENT")
	ctx := context.Background()

	if err := te.engine.ChangePassword(ctx, "wrong", "new-secret"); !errors.Is(err, ErrIncorrectPassword) {
		t.Fatalf("expected ErrIncorrectPassword, got %v", err)
	}
	if sess, _ := te.engine.Session(ctx); sess == nil {
		t.Fatal("failed change must keep the session")
	}

	if err := te.engine.ChangePassword(ctx, "old-secret", "new-secret"); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}
	if sess, _ := te.engine.Session(ctx); sess != nil {
		t.Fatal("expected teardown after password change")
	}
	if te.history.Current() != "/sign-in" {
		t.Fatalf("navigator at %s", te.history.Current())
	}
	if te.counter(MetricTeardownSensitiveOperation) != 1 || te.counter(MetricPasswordChangeFailure) != 1 {
		t.Fatalf("unexpected counters %v", te.engine.MetricsSnapshot().Counters)
	}

	if err := te.engine.ChangePassword(ctx, "new-secret", "x"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestLogoutTearsDownWhenBackendFails(t *testing.T) {
	te := newTestEngine(t)
	te.signIn(t, "ines@example.com", "STUDENT")
	te.backend.mu.Lock()
	te.backend.logoutStatus = http.StatusInternalServerError
	te.backend.mu.Unlock()

	if err := te.engine.Logout(context.Background()); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if sess, _ := te.engine.Session(context.Background()); sess != nil {
		t.Fatal("expected local teardown")
	}
	if te.history.Current() != "/sign-in" {
		t.Fatalf("navigator at %s", te.history.Current())
	}
	if te.counter(MetricLogoutRevokeFailure) != 1 || te.counter(MetricTeardownLogout) != 1 {
		t.Fatalf("unexpected counters %v", te.engine.MetricsSnapshot().Counters)
	}
}

func TestLogoutOfRejectedSessionTearsDownOnce(t *testing.T) {
	te := newTestEngine(t)
	te.signIn(t, "ines@example.com", "STUDENT")
	te.backend.revokeAll()

	if err := te.engine.Logout(context.Background()); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if te.counter(MetricTeardownRemoteInvalidation) != 1 || te.counter(MetricTeardownLogout) != 0 {
		t.Fatalf("unexpected counters %v", te.engine.MetricsSnapshot().Counters)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	te := newTestEngine(t)
	te.signIn(t, "ines@example.com", "STUDENT")

	for i := 0; i < 2; i++ {
		if err := te.engine.Logout(context.Background()); err != nil {
			t.Fatalf("Logout %d failed: %v", i, err)
		}
	}
	if sess, _ := te.engine.Session(context.Background()); sess != nil {
		t.Fatal("expected no session")
	}
}

func TestCheckDoesNotNavigate(t *testing.T) {
	te := newTestEngine(t)
	out := te.engine.Check(context.Background(), "/admin")
	if out.Decision != authz.DenyUnauthenticated || out.Target != "/sign-in" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if te.history.Current() != "/home" {
		t.Fatalf("Check moved the navigator to %s", te.history.Current())
	}
}

func TestTeardownSupersedesStaleNavigation(t *testing.T) {
	te := newTestEngine(t)
	te.signIn(t, "ines@example.com", "STUDENT")
	ctx := context.Background()

	before := te.engine.guard.Supersede()
	if err := te.engine.Teardown(ctx, ReasonLogout); err != nil {
		t.Fatalf("Teardown failed: %v", err)
	}
	if te.engine.guard.Current(before) {
		t.Fatal("teardown must supersede earlier attempts")
	}
	if err := te.engine.apply(ctx, guardOutcome(before, "/student/dashboard")); !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected stale apply to be superseded, got %v", err)
	}
	if te.history.Current() != "/sign-in" {
		t.Fatalf("navigator at %s", te.history.Current())
	}
}

func guardOutcome(attempt uint64, target string) guard.Outcome {
	return guard.Outcome{Attempt: attempt, Path: target, Decision: authz.Allow, Target: target}
}

func TestZeroEngineNotReady(t *testing.T) {
	var e *Engine
	if _, err := e.Login(context.Background(), "a", "b"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("Login: expected ErrEngineNotReady, got %v", err)
	}
	if _, err := e.Navigate(context.Background(), "/"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("Navigate: expected ErrEngineNotReady, got %v", err)
	}
	if err := e.Teardown(context.Background(), ReasonLogout); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("Teardown: expected ErrEngineNotReady, got %v", err)
	}
	if err := e.Logout(context.Background()); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("Logout: expected ErrEngineNotReady, got %v", err)
	}
	if out := e.Check(context.Background(), "/admin"); out.Decision != authz.DenyUnauthenticated {
		t.Fatalf("Check: expected deny, got %+v", out)
	}
}
