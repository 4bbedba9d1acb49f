package config

import (
	"log/slog"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg := fromLookup(env(nil))

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, 1000, cfg.LedgerCapacity)
	assert.False(t, cfg.AuditRequireRole)
	assert.Empty(t, cfg.TrustedProxies)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 20.0, cfg.AuditWriteRate)
	assert.Equal(t, 40, cfg.AuditWriteBurst)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Empty(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	cfg := fromLookup(env(map[string]string{
		"ADMIN_TRAIL_ADDR":      "127.0.0.1:9000",
		"ADMIN_TRAIL_ENV":       "staging",
		"AUDIT_LEDGER_CAPACITY": "250",
		"AUDIT_REQUIRE_ROLE":    "true",
		"TRUSTED_PROXIES":       "10.0.0.0/8, 192.168.1.1",
		"REQUEST_TIMEOUT":       "5s",
		"SHUTDOWN_TIMEOUT":      "2s",
		"AUDIT_WRITE_RATE":      "2.5",
		"AUDIT_WRITE_BURST":     "5",
		"LOG_LEVEL":             "DEBUG",
	}))

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, 250, cfg.LedgerCapacity)
	assert.True(t, cfg.AuditRequireRole)
	require.Len(t, cfg.TrustedProxies, 2)
	assert.True(t, cfg.TrustedProxies[0].Contains(netip.MustParseAddr("10.1.2.3")))
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 2*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 2.5, cfg.AuditWriteRate)
	assert.Equal(t, 5, cfg.AuditWriteBurst)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Empty(t, cfg.Validate())
}

func TestFromEnvInvalidValuesFallBack(t *testing.T) {
	cfg := fromLookup(env(map[string]string{
		"AUDIT_LEDGER_CAPACITY": "0",
		"AUDIT_REQUIRE_ROLE":    "maybe",
		"TRUSTED_PROXIES":       "not-a-cidr",
		"REQUEST_TIMEOUT":       "soon",
		"SHUTDOWN_TIMEOUT":      "-1s",
		"AUDIT_WRITE_RATE":      "fast",
		"AUDIT_WRITE_BURST":     "-2",
		"LOG_LEVEL":             "loud",
	}))

	assert.Equal(t, 1000, cfg.LedgerCapacity)
	assert.False(t, cfg.AuditRequireRole)
	assert.Empty(t, cfg.TrustedProxies)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 20.0, cfg.AuditWriteRate)
	assert.Equal(t, 40, cfg.AuditWriteBurst)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)

	warnings := cfg.Validate()
	assert.Len(t, warnings, 8)
	assert.Contains(t, warnings[0], "AUDIT_LEDGER_CAPACITY")
}
