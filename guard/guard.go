package guard

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goGate/authz"
	"github.com/MrEthical07/goGate/route"
	"github.com/MrEthical07/goGate/session"
	"github.com/google/uuid"
)

// ErrSuperseded is returned when a newer navigation started before this one was
// decided. The accompanying Outcome must be dropped.
var ErrSuperseded = errors.New("navigation superseded")

// SessionReader is the read side of the session store.
type SessionReader interface {
	Read(ctx context.Context) (*session.Session, error)
}

// Outcome is the decided result of one navigation attempt.
type Outcome struct {
	// ID correlates the attempt across logs and audit events.
	ID uuid.UUID
	// Attempt is the ordering number; zero for Check.
	Attempt uint64
	// Path is the cleaned navigation target.
	Path string
	// Area is the protected area Path resolved to. Protected is false for public
	// paths, in which case Area is the zero value.
	Area      route.Area
	Protected bool
	Decision  authz.Decision
	// Target is where the navigation should end: Path on Allow, otherwise the
	// redirect location.
	Target   string
	Redirect bool
	// Subject is the session's subject, if a session was present.
	Subject string
	// StoreErr is the store failure that forced a DenyUnauthenticated, if any.
	StoreErr error
}

// Option configures a Guard.
type Option func(*Guard)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) {
		if now != nil {
			g.now = now
		}
	}
}

// Guard evaluates navigations. It is safe for concurrent use.
type Guard struct {
	table *route.Table
	store SessionReader
	now   func() time.Time
	seq   atomic.Uint64
}

// New creates a Guard over table and store.
func New(table *route.Table, store SessionReader, opts ...Option) *Guard {
	g := &Guard{table: table, store: store, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Evaluate decides the navigation to target as the newest attempt.
func (g *Guard) Evaluate(ctx context.Context, target string) (Outcome, error) {
	attempt := g.seq.Add(1)
	out := g.decide(ctx, target)
	out.Attempt = attempt
	if !g.Current(attempt) {
		return out, ErrSuperseded
	}
	if err := ctx.Err(); err != nil {
		return out, fmt.Errorf("%w: %v", ErrSuperseded, err)
	}
	return out, nil
}

// Check decides the navigation to target without ordering it against other
// attempts.
func (g *Guard) Check(ctx context.Context, target string) Outcome {
	return g.decide(ctx, target)
}

// Supersede invalidates every attempt in flight and returns the new attempt
// number, for callers that navigate outside Evaluate.
func (g *Guard) Supersede() uint64 {
	return g.seq.Add(1)
}

// Current reports whether attempt is still the newest one.
func (g *Guard) Current(attempt uint64) bool {
	return g.seq.Load() == attempt
}

func (g *Guard) decide(ctx context.Context, target string) Outcome {
	out := Outcome{ID: uuid.New(), Path: route.Clean(target)}

	area, protected := g.table.Match(out.Path)
	if !protected {
		out.Decision = authz.Allow
		out.Target = out.Path
		return out
	}
	out.Area = area
	out.Protected = true

	sess, err := g.store.Read(ctx)
	if err != nil {
		sess = nil
		out.StoreErr = err
	}
	if sess != nil {
		out.Subject = sess.Identity.Subject
	}

	out.Decision = authz.Authorize(area.Rule, sess, g.now())
	switch out.Decision {
	case authz.Allow:
		out.Target = out.Path
	case authz.DenyForbidden:
		landing, err := g.table.LandingAreaFor(sess.Identity.Roles)
		if err != nil {
			out.Decision = authz.DenyUnauthenticated
			out.Target = g.table.SignInPath()
		} else {
			out.Target = landing.Landing
		}
		out.Redirect = true
	default:
		out.Target = g.table.SignInPath()
		out.Redirect = true
	}
	return out
}
