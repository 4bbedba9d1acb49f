package token

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admintrail/internal/adminauth/models"
)

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestDecode(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		tok, err := Decode(b64(`{"sessionId":"s1","userId":"u1","expiresAt":1893456000000}`))
		require.NoError(t, err)
		assert.Equal(t, models.SessionToken{SessionID: "s1", UserID: "u1", ExpiresAt: 1893456000000}, tok)
	})

	t.Run("accepts url-safe and unpadded alphabets", func(t *testing.T) {
		payload := []byte(`{"sessionId":"s?>","userId":"u1","expiresAt":1}`)
		for _, enc := range []*base64.Encoding{base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
			tok, err := Decode(enc.EncodeToString(payload))
			require.NoError(t, err)
			assert.Equal(t, "s?>", tok.SessionID)
		}
	})

	t.Run("ignores unknown fields", func(t *testing.T) {
		tok, err := Decode(b64(`{"sessionId":"s1","userId":"u1","expiresAt":5,"issuedAt":1}`))
		require.NoError(t, err)
		assert.Equal(t, int64(5), tok.ExpiresAt)
	})

	malformed := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"not base64", "%%%not-base64%%%"},
		{"not json", b64("hello")},
		{"json array", b64(`[1,2,3]`)},
		{"json null", b64(`null`)},
		{"trailing data", b64(`{"sessionId":"s1","userId":"u1","expiresAt":1}{}`)},
		{"missing sessionId", b64(`{"userId":"u1","expiresAt":1}`)},
		{"empty sessionId", b64(`{"sessionId":"","userId":"u1","expiresAt":1}`)},
		{"missing userId", b64(`{"sessionId":"s1","expiresAt":1}`)},
		{"missing expiresAt", b64(`{"sessionId":"s1","userId":"u1"}`)},
		{"string expiresAt", b64(`{"sessionId":"s1","userId":"u1","expiresAt":"soon"}`)},
		{"numeric sessionId", b64(`{"sessionId":7,"userId":"u1","expiresAt":1}`)},
		{"oversized", strings.Repeat("A", MaxEncodedLength+4)},
	}
	for _, tc := range malformed {
		t.Run("malformed "+tc.name, func(t *testing.T) {
			tok, err := Decode(tc.raw)
			assert.ErrorIs(t, err, ErrMalformed)
			assert.Equal(t, models.SessionToken{}, tok, "no partially populated token")
		})
	}
}

func TestValidate(t *testing.T) {
	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	nowMs := now.UnixMilli()

	tests := []struct {
		name      string
		expiresAt int64
		wantErr   error
	}{
		{"future expiry is valid", nowMs + 100000, nil},
		{"one ms ahead is valid", nowMs + 1, nil},
		{"expiring at this instant is still valid", nowMs, nil},
		{"one ms past is expired", nowMs - 1, ErrExpired},
		{"long expired", nowMs - 1000, ErrExpired},
		{"zero expiry is expired", 0, ErrExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(models.SessionToken{SessionID: "s1", UserID: "u1", ExpiresAt: tt.expiresAt}, now)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRejectsTokenExpiredOneSecondAgo(t *testing.T) {
	now := time.Now()
	tok := models.SessionToken{SessionID: "s1", UserID: "u1", ExpiresAt: now.UnixMilli() - 1000}
	assert.ErrorIs(t, Validate(tok, now), ErrExpired)
}

func TestEncodeRoundTrip(t *testing.T) {
	original := models.SessionToken{SessionID: "sess-42", UserID: "user-7", ExpiresAt: 1700000000123}
	raw, err := Encode(original)
	require.NoError(t, err)

	decoded, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}
