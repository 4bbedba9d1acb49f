// Package tracer is a small tracing seam for the admin verification path.
// Services depend on Tracer; production wires OTelTracer and tests use NoopTracer.
package tracer

import "context"

// Span represents an active trace span. End must be called exactly once.
type Span interface {
	// End completes the span; a non-nil err marks it failed.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Span names.
const (
	SpanVerifySession = "adminauth.verify_session"
	SpanAuthenticate  = "adminauth.authenticate"
	SpanAuditAppend   = "audit.append"
)

// Attribute keys. Raw cookie values are never attached to spans.
const (
	AttrOperation = "admin.operation"
	AttrRole      = "admin.role"
	AttrOutcome   = "admin.outcome"
	AttrSeverity  = "audit.severity"
	AttrAction    = "audit.action"
)
