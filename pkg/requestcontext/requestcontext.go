// Package requestcontext holds typed accessors for values that middleware
// places on the request context.
package requestcontext

import "context"

type contextKeyRequestID struct{}
type contextKeyClientIP struct{}
type contextKeyUserAgent struct{}

// Unknown is reported for client metadata the request did not carry.
const Unknown = "unknown"

// WithRequestID stores the correlation id for the request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID{}, requestID)
}

// RequestID returns the correlation id, or "" outside request scope.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(contextKeyRequestID{}).(string); ok {
		return v
	}
	return ""
}

// WithClientMetadata stores best-effort client provenance. Empty values are
// stored as Unknown.
func WithClientMetadata(ctx context.Context, ip, userAgent string) context.Context {
	if ip == "" {
		ip = Unknown
	}
	if userAgent == "" {
		userAgent = Unknown
	}
	ctx = context.WithValue(ctx, contextKeyClientIP{}, ip)
	return context.WithValue(ctx, contextKeyUserAgent{}, userAgent)
}

// ClientIP returns the client address recorded by the metadata middleware.
func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(contextKeyClientIP{}).(string); ok && v != "" {
		return v
	}
	return Unknown
}

// UserAgent returns the client user agent recorded by the metadata middleware.
func UserAgent(ctx context.Context) string {
	if v, ok := ctx.Value(contextKeyUserAgent{}).(string); ok && v != "" {
		return v
	}
	return Unknown
}
