package goGate

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MrEthical07/goGate/backend"
	"github.com/MrEthical07/goGate/guard"
	"github.com/MrEthical07/goGate/route"
	"github.com/MrEthical07/goGate/session"
	"github.com/MrEthical07/goGate/transport"
	"github.com/go-logr/logr"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an Engine. A Builder is single-use.
type Builder struct {
	config     Config
	substrate  session.Substrate
	navigator  Navigator
	logger     logr.Logger
	auditSink  AuditSink
	now        func() time.Time
	httpClient *http.Client

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
		logger: logr.Discard(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithSubstrate sets the storage behind the session store.
func (b *Builder) WithSubstrate(sub session.Substrate) *Builder {
	b.substrate = sub
	return b
}

// WithRedis stores the session in Redis.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	if client == nil {
		b.substrate = nil
		return b
	}
	b.substrate = session.NewRedis(client)
	return b
}

// WithNavigator sets the navigation surface. The default is a route.History.
func (b *Builder) WithNavigator(nav Navigator) *Builder {
	b.navigator = nav
	return b
}

func (b *Builder) WithLogger(l logr.Logger) *Builder {
	b.logger = l
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithClock replaces time.Now for expiry checks and audit timestamps.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// WithHTTPClient sets the client whose transport carries backend calls. The engine
// works on a copy with the inspecting transport layered over hc.Transport.
func (b *Builder) WithHTTPClient(hc *http.Client) *Builder {
	b.httpClient = hc
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires the engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.substrate == nil {
		return nil, errors.New("session substrate required")
	}

	// -------- ROUTE TABLE --------
	table, err := route.Build(cfg.Routes.SignInPath, cfg.Routes.Areas)
	if err != nil {
		return nil, err
	}

	now := b.now
	if now == nil {
		now = time.Now
	}
	nav := b.navigator
	if nav == nil {
		nav = route.NewHistory("")
	}

	// -------- SESSION STORE + GUARD --------
	store := session.NewStore(b.substrate, cfg.Session.KeyPrefix)
	if r, ok := b.substrate.(*session.Redis); ok {
		if err := r.CheckKeys(store.Keys()); err != nil {
			return nil, fmt.Errorf("session key prefix %q: %w", cfg.Session.KeyPrefix, err)
		}
	}
	engine := &Engine{
		config:  cloneConfig(cfg),
		log:     b.logger.WithName("gogate"),
		now:     now,
		store:   store,
		table:   table,
		guard:   guard.New(table, store, guard.WithClock(now)),
		nav:     nav,
		metrics: NewMetrics(cfg.Metrics),
	}

	// -------- TRANSPORT + BACKEND --------
	hc := &http.Client{Timeout: cfg.Backend.Timeout}
	if b.httpClient != nil {
		copied := *b.httpClient
		hc = &copied
	}
	bearer := &transport.BearerTransport{
		Base:           hc.Transport,
		Source:         transport.CredentialFunc(engine.credential),
		RejectStatuses: append([]int(nil), cfg.Transport.RejectStatuses...),
		OnReject:       engine.onReject,
	}
	hc.Transport = bearer

	bc, err := backend.New(cfg.Backend.BaseURL, hc)
	if err != nil {
		return nil, fmt.Errorf("backend client: %w", err)
	}
	if cfg.Transport.RestrictToBackendHost {
		bearer.Hosts = []string{bc.Host()}
	}
	engine.client = hc
	engine.backend = bc

	// -------- AUDIT --------
	// The dispatcher goroutine starts only once nothing else can fail.
	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)

	b.built = true
	return engine, nil
}
