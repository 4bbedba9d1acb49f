package config

import (
	"fmt"
	"log/slog"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"admintrail/pkg/platform/middleware/metadata"
)

const (
	DefaultAddr            = ":8080"
	DefaultEnvironment     = "dev"
	DefaultLedgerCapacity  = 1000
	DefaultRequestTimeout  = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultAuditWriteRate  = 20.0
	DefaultAuditWriteBurst = 40
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr             string
	Environment      string
	LedgerCapacity   int
	AuditRequireRole bool
	TrustedProxies   []netip.Prefix
	RequestTimeout   time.Duration
	ShutdownTimeout  time.Duration
	AuditWriteRate   float64
	AuditWriteBurst  int
	LogLevel         slog.Level

	// warnings collects values that were rejected in favor of defaults.
	warnings []string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return fromLookup(os.Getenv)
}

func fromLookup(getenv func(string) string) Server {
	cfg := Server{
		Addr:            DefaultAddr,
		Environment:     DefaultEnvironment,
		LedgerCapacity:  DefaultLedgerCapacity,
		RequestTimeout:  DefaultRequestTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
		AuditWriteRate:  DefaultAuditWriteRate,
		AuditWriteBurst: DefaultAuditWriteBurst,
		LogLevel:        slog.LevelInfo,
	}

	if v := getenv("ADMIN_TRAIL_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := getenv("ADMIN_TRAIL_ENV"); v != "" {
		cfg.Environment = v
	}

	if v := getenv("AUDIT_LEDGER_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.LedgerCapacity = n
		} else {
			cfg.warn("AUDIT_LEDGER_CAPACITY", v)
		}
	}

	if v := getenv("AUDIT_REQUIRE_ROLE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.AuditRequireRole = b
		} else {
			cfg.warn("AUDIT_REQUIRE_ROLE", v)
		}
	}

	if v := getenv("TRUSTED_PROXIES"); v != "" {
		prefixes, invalid := metadata.ParseTrustedProxies(v)
		cfg.TrustedProxies = prefixes
		for _, bad := range invalid {
			cfg.warn("TRUSTED_PROXIES", bad)
		}
	}

	cfg.RequestTimeout = cfg.duration(getenv, "REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.ShutdownTimeout = cfg.duration(getenv, "SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)

	if v := getenv("AUDIT_WRITE_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.AuditWriteRate = f
		} else {
			cfg.warn("AUDIT_WRITE_RATE", v)
		}
	}
	if v := getenv("AUDIT_WRITE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.AuditWriteBurst = n
		} else {
			cfg.warn("AUDIT_WRITE_BURST", v)
		}
	}

	if v := getenv("LOG_LEVEL"); v != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(strings.ToLower(v))); err == nil {
			cfg.LogLevel = level
		} else {
			cfg.warn("LOG_LEVEL", v)
		}
	}

	return cfg
}

// Validate returns one message per environment value that was ignored.
func (s Server) Validate() []string {
	return s.warnings
}

func (s *Server) duration(getenv func(string) string, key string, def time.Duration) time.Duration {
	v := getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		s.warn(key, v)
		return def
	}
	return d
}

func (s *Server) warn(key, value string) {
	s.warnings = append(s.warnings, fmt.Sprintf("%s: invalid value %q, using default", key, value))
}
