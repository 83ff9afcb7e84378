// Package context carries per-request metadata across layer boundaries.
package context

import (
	"context"
)

// TraceContext contains request tracing information. The Trace middleware
// fills it from incoming headers (or generates fresh ids) and the logger
// attaches TraceID/RequestID to every entry.
type TraceContext struct {
	TraceID   string
	SpanID    string
	RequestID string
}

type traceContextKey struct{}

// WithTrace adds TraceContext to context.
func WithTrace(ctx context.Context, trace *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, trace)
}

// GetTrace returns TraceContext from context, nil when absent.
func GetTrace(ctx context.Context) *TraceContext {
	if v, ok := ctx.Value(traceContextKey{}).(*TraceContext); ok {
		return v
	}
	return nil
}
