package flows

import "context"

// AuditFunc emits one event: type, success, subject, navigation id, error and
// lazily built metadata.
type AuditFunc func(ctx context.Context, eventType string, success bool, subject, navigationID string, err error, metadata func() map[string]string)

func noAudit(context.Context, string, bool, string, string, error, func() map[string]string) {}

func noMetric(int) {}

func noLog(string, ...any) {}
