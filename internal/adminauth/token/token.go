// Package token decodes and validates the adminToken session cookie.
//
// The wire form is base64 over a JSON object
// {"sessionId": string, "userId": string, "expiresAt": epoch-ms}. The payload
// is not signed; integrity comes only from the identity cross-check.
package token

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"admintrail/internal/adminauth/models"
)

var (
	// ErrMalformed is returned for any token that is not valid base64 JSON
	// with every required field present.
	ErrMalformed = errors.New("malformed session token")
	// ErrExpired is returned by Validate once the token's expiry has passed.
	ErrExpired = errors.New("session token expired")
)

// MaxEncodedLength bounds the raw cookie value accepted by Decode.
const MaxEncodedLength = 4096

// wireToken uses pointers so absent fields can be told apart from zero values.
type wireToken struct {
	SessionID *string `json:"sessionId"`
	UserID    *string `json:"userId"`
	ExpiresAt *int64  `json:"expiresAt"`
}

var encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// Decode parses a raw token. It never returns a partially populated token:
// on any failure the result is the zero value and the error wraps ErrMalformed.
func Decode(raw string) (models.SessionToken, error) {
	if raw == "" {
		return models.SessionToken{}, fmt.Errorf("%w: empty", ErrMalformed)
	}
	if len(raw) > MaxEncodedLength {
		return models.SessionToken{}, fmt.Errorf("%w: too long", ErrMalformed)
	}

	payload, err := decodeBase64(raw)
	if err != nil {
		return models.SessionToken{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var wire wireToken
	if err := decodeStrictObject(payload, &wire); err != nil {
		return models.SessionToken{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch {
	case wire.SessionID == nil || *wire.SessionID == "":
		return models.SessionToken{}, fmt.Errorf("%w: missing sessionId", ErrMalformed)
	case wire.UserID == nil || *wire.UserID == "":
		return models.SessionToken{}, fmt.Errorf("%w: missing userId", ErrMalformed)
	case wire.ExpiresAt == nil:
		return models.SessionToken{}, fmt.Errorf("%w: missing expiresAt", ErrMalformed)
	}

	return models.SessionToken{
		SessionID: *wire.SessionID,
		UserID:    *wire.UserID,
		ExpiresAt: *wire.ExpiresAt,
	}, nil
}

// Validate fails with ErrExpired when the token expired before now. A token
// whose expiry equals now to the millisecond is still valid.
func Validate(tok models.SessionToken, now time.Time) error {
	if tok.ExpiresAt < now.UnixMilli() {
		return ErrExpired
	}
	return nil
}

// Encode produces the wire form Decode accepts. Used by the issuer side and tests.
func Encode(tok models.SessionToken) (string, error) {
	payload, err := json.Marshal(tok)
	if err != nil {
		return "", fmt.Errorf("encode session token: %w", err)
	}
	return base64.StdEncoding.EncodeToString(payload), nil
}

func decodeBase64(raw string) ([]byte, error) {
	var lastErr error
	for _, enc := range encodings {
		out, err := enc.DecodeString(raw)
		if err == nil {
			return out, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// decodeStrictObject requires payload to be exactly one JSON object.
func decodeStrictObject(payload []byte, v any) error {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return errors.New("payload is not a JSON object")
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data after JSON object")
	}
	return nil
}
