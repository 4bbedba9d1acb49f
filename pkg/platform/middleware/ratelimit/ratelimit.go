// Package ratelimit applies a token bucket per client IP.
package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"admintrail/pkg/platform/httputil"
	"admintrail/pkg/requestcontext"
)

// idleTTL is how long an untouched bucket survives before it is pruned.
const idleTTL = 5 * time.Minute

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter holds one bucket per client IP. Buckets are pruned lazily on access.
type Limiter struct {
	perSecond rate.Limit
	burst     int
	logger    *slog.Logger
	now       func() time.Time

	mu         sync.Mutex
	buckets    map[string]*bucket
	lastPruned time.Time
}

// New creates a limiter allowing perSecond sustained requests with the given burst.
func New(perSecond float64, burst int, logger *slog.Logger) *Limiter {
	return &Limiter{
		perSecond: rate.Limit(perSecond),
		burst:     burst,
		logger:    logger,
		now:       time.Now,
		buckets:   make(map[string]*bucket),
	}
}

// Allow reports whether the client identified by key may proceed now.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastPruned) > idleTTL {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) > idleTTL {
				delete(l.buckets, k)
			}
		}
		l.lastPruned = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.perSecond, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// Middleware rejects requests over the limit with 429. It must run after the
// metadata middleware so the client IP is on the context.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ip := requestcontext.ClientIP(ctx)
		if !l.Allow(ip) {
			if l.logger != nil {
				l.logger.WarnContext(ctx, "rate limit exceeded",
					"path", r.URL.Path,
					"request_id", requestcontext.RequestID(ctx),
				)
			}
			w.Header().Set("Retry-After", strconv.Itoa(l.retryAfterSeconds()))
			httputil.WriteJSON(w, http.StatusTooManyRequests, map[string]string{
				"error":             "rate_limit_exceeded",
				"error_description": "too many requests",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *Limiter) retryAfterSeconds() int {
	if l.perSecond <= 0 {
		return 60
	}
	secs := int(1 / float64(l.perSecond))
	if secs < 1 {
		return 1
	}
	return secs
}
