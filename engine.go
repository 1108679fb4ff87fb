package goGate

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/MrEthical07/goGate/backend"
	"github.com/MrEthical07/goGate/guard"
	internalaudit "github.com/MrEthical07/goGate/internal/audit"
	"github.com/MrEthical07/goGate/route"
	"github.com/MrEthical07/goGate/session"
	"github.com/go-logr/logr"
)

// Engine is the session layer of one client. It owns the session store, the
// protected-area table, the guard and the HTTP client whose transport inspects
// every backend response. Methods are safe for concurrent use.
type Engine struct {
	config  Config
	log     logr.Logger
	now     func() time.Time
	store   *session.Store
	table   *route.Table
	guard   *guard.Guard
	nav     Navigator
	navMu   sync.Mutex
	client  *http.Client
	backend *backend.Client
	audit   *internalaudit.Dispatcher
	metrics *Metrics
}

// Close flushes and stops the audit dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// MetricsSnapshot returns the current counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// HTTPClient is the client every authenticated backend call must use. It attaches
// the credential and tears the session down when the backend rejects it.
func (e *Engine) HTTPClient() *http.Client {
	if e == nil {
		return nil
	}
	return e.client
}

// Session returns the current session, or nil when signed out. An expired session
// is returned as stored; navigation treats it as absent.
func (e *Engine) Session(ctx context.Context) (*session.Session, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}
	return e.store.Read(ctx)
}

// Table is the protected-area table in use.
func (e *Engine) Table() *route.Table {
	if e == nil {
		return nil
	}
	return e.table
}

// credential feeds the bearer transport. Read errors and missing sessions both
// send the request bare.
func (e *Engine) credential(ctx context.Context) (string, error) {
	sess, err := e.store.Read(ctx)
	if err != nil {
		e.log.V(1).Info("no credential attached", "error", err.Error())
		return "", err
	}
	if sess == nil {
		return "", nil
	}
	return sess.Credential, nil
}

func (e *Engine) hasSession(ctx context.Context) bool {
	sess, err := e.store.Read(ctx)
	return err == nil && sess != nil
}

func (e *Engine) subject(ctx context.Context) string {
	sess, err := e.store.Read(ctx)
	if err != nil || sess == nil {
		return ""
	}
	return sess.Identity.Subject
}

func (e *Engine) logInfo(msg string, kv ...any) {
	e.log.Info(msg, kv...)
}

func (e *Engine) logDebug(msg string, kv ...any) {
	e.log.V(1).Info(msg, kv...)
}

func (e *Engine) logError(err error, msg string, kv ...any) {
	e.log.Error(err, msg, kv...)
}
