package metadata

import (
	"net/http"
	"net/netip"
	"strings"

	"admintrail/pkg/requestcontext"
)

// MaxXFFHeaderLength bounds the X-Forwarded-For value we are willing to parse.
const MaxXFFHeaderLength = 500

// Config holds configuration for the metadata middleware.
type Config struct {
	// TrustedProxies restricts forwarded-for to requests whose direct peer is
	// inside one of these prefixes. When empty, the first forwarded-for hop is
	// taken as-is and the direct peer is never reported.
	TrustedProxies []netip.Prefix
}

// Middleware handles client metadata extraction.
type Middleware struct {
	config Config
}

// NewMiddleware creates a new metadata middleware with the given config.
func NewMiddleware(cfg Config) *Middleware {
	return &Middleware{config: cfg}
}

// Handler records the client IP address and User-Agent on the request
// context. Absent values are recorded as "unknown".
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithClientMetadata(r.Context(), m.extractClientIP(r), r.Header.Get("User-Agent"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) extractClientIP(r *http.Request) string {
	forwarded := firstForwardedHop(r.Header.Get("X-Forwarded-For"))

	if len(m.config.TrustedProxies) == 0 {
		return forwarded
	}

	remoteIP := parseRemoteAddr(r.RemoteAddr)
	if forwarded != "" && m.isTrustedProxy(remoteIP) {
		return forwarded
	}
	return remoteIP
}

// firstForwardedHop returns the original client address from an
// X-Forwarded-For chain, or "" when the header is absent or unusable.
func firstForwardedHop(xff string) string {
	if xff == "" || len(xff) > MaxXFFHeaderLength {
		return ""
	}
	first, _, _ := strings.Cut(xff, ",")
	first = strings.TrimSpace(first)
	if _, err := netip.ParseAddr(first); err != nil {
		return ""
	}
	return first
}

func (m *Middleware) isTrustedProxy(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	for _, prefix := range m.config.TrustedProxies {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// parseRemoteAddr extracts the IP from RemoteAddr (strips port).
func parseRemoteAddr(remoteAddr string) string {
	if ap, err := netip.ParseAddrPort(remoteAddr); err == nil {
		return ap.Addr().String()
	}
	if addr, err := netip.ParseAddr(remoteAddr); err == nil {
		return addr.String()
	}
	return ""
}

// ParseTrustedProxies converts a comma-separated list of CIDRs or bare
// addresses (treated as single-host prefixes). Invalid entries
// are returned separately so the caller can report them.
func ParseTrustedProxies(raw string) (prefixes []netip.Prefix, invalid []string) {
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if addr, err := netip.ParseAddr(part); err == nil {
			prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		prefix, err := netip.ParsePrefix(part)
		if err != nil {
			invalid = append(invalid, part)
			continue
		}
		prefixes = append(prefixes, prefix.Masked())
	}
	return prefixes, invalid
}
