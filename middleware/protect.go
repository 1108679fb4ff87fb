package middleware

import (
	"context"
	"net/http"

	"github.com/MrEthical07/goGate/guard"
	"github.com/MrEthical07/goGate/route"
)

// Checker decides a request path. *goGate.Engine implements it.
type Checker interface {
	Check(ctx context.Context, target string) guard.Outcome
}

type outcomeContextKey struct{}

// OutcomeFromContext returns the guard outcome Protect attached to an allowed
// request.
func OutcomeFromContext(ctx context.Context) (guard.Outcome, bool) {
	out, ok := ctx.Value(outcomeContextKey{}).(guard.Outcome)
	return out, ok
}

// Protect guards next with checker.
func Protect(checker Checker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if checker == nil {
				http.Redirect(w, r, route.DefaultSignInPath, http.StatusSeeOther)
				return
			}

			out := checker.Check(r.Context(), r.URL.Path)
			if out.Redirect {
				w.Header().Set("Cache-Control", "no-store")
				http.Redirect(w, r, out.Target, http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), outcomeContextKey{}, out)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
