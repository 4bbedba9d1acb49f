package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admintrail/internal/adminauth/identity"
	"admintrail/internal/adminauth/models"
	"admintrail/internal/adminauth/token"
)

func TestGenerateProducesDecodablePair(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	out, err := generate(options{
		userID:      "u1",
		sessionID:   "s1",
		role:        "SUPER_ADMIN",
		permissions: "audit:read, audit:read,campaigns:write",
		ttl:         time.Hour,
	}, now)
	require.NoError(t, err)

	tok, err := token.Decode(out.AdminToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", tok.UserID)
	assert.Equal(t, "s1", tok.SessionID)
	assert.Equal(t, now.Add(time.Hour).UnixMilli(), tok.ExpiresAt)
	require.NoError(t, token.Validate(tok, now))

	claim, err := identity.Decode(out.AdminUser)
	require.NoError(t, err)
	assert.Equal(t, "u1@example.com", claim.Email)
	assert.Equal(t, models.RoleSuperAdmin, claim.Role)
	assert.Equal(t, []string{"audit:read", "campaigns:write"}, claim.Permissions)
	require.NoError(t, identity.CrossCheck(claim, tok, "u1", "s1"))

	assert.Contains(t, out.Usage["cookie"], "adminToken="+out.AdminToken)
	assert.Contains(t, out.Usage["curl"], `"sessionId":"s1"`)
}

func TestGenerateFillsIdentifiers(t *testing.T) {
	out, err := generate(options{role: "ADMIN", ttl: time.Minute}, time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, out.UserID)
	assert.NotEmpty(t, out.SessionID)
	assert.NotEqual(t, out.UserID, out.SessionID)
}

func TestRunJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, run(&buf, options{userID: "u1", sessionID: "s1", role: "ADMIN", ttl: -time.Minute, asJSON: true}, time.Now()))

	var got output
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	tok, err := token.Decode(got.AdminToken)
	require.NoError(t, err)
	assert.ErrorIs(t, token.Validate(tok, time.Now()), token.ErrExpired)
}
