package goGate

import (
	"context"
	"io"

	internalaudit "github.com/MrEthical07/goGate/internal/audit"
)

// AuditEvent is one audit record.
type AuditEvent = internalaudit.Event

// AuditSink receives audit events from the engine's dispatcher.
type AuditSink = internalaudit.Sink

type NoOpSink = internalaudit.NoOpSink

type ChannelSink = internalaudit.ChannelSink

type JSONWriterSink = internalaudit.JSONWriterSink

func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

const (
	auditEventLoginSuccess       = "login_success"
	auditEventLoginFailure       = "login_failure"
	auditEventNavigationDenied   = "navigation_denied"
	auditEventSessionCorrupt     = "session_corrupt"
	auditEventTeardown           = "teardown"
	auditEventPasswordChange     = "password_change"
	auditEventLogoutRevokeFailed = "logout_revoke_failed"
)

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *internalaudit.Dispatcher {
	return internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Enabled,
		BufferSize: cfg.BufferSize,
		DropIfFull: cfg.DropIfFull,
	}, sink)
}

func (e *Engine) emitAudit(ctx context.Context, eventType string, success bool, subject, navigationID string, err error, metadata func() map[string]string) {
	if e == nil || e.audit == nil {
		return
	}
	event := AuditEvent{
		Timestamp:    e.now().UTC(),
		EventType:    eventType,
		Subject:      subject,
		NavigationID: navigationID,
		Success:      success,
	}
	if err != nil {
		event.Error = err.Error()
	}
	if metadata != nil {
		event.Metadata = metadata()
	}
	e.audit.Emit(ctx, event)
}

// AuditDropped counts audit events dropped under backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// AuditSinkFailures counts audit events lost because the sink panicked.
func (e *Engine) AuditSinkFailures() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.SinkFailures()
}
