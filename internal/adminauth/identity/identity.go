// Package identity decodes the adminUser identity cookie and cross-checks it
// against the session token.
//
// The wire form is a URL-encoded (encodeURIComponent style) JSON object. The
// claim is unsigned, so CrossCheck is the only thing standing between a
// forged claim and a stolen token.
package identity

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"admintrail/internal/adminauth/models"
	pstrings "admintrail/pkg/platform/strings"
)

var (
	// ErrMalformed is returned for any identity payload that does not decode
	// into a claim with id and sessionId present.
	ErrMalformed = errors.New("malformed identity claim")
	// ErrMismatch is returned when the claim does not belong to the token
	// or to the identifiers the caller expects.
	ErrMismatch = errors.New("identity claim mismatch")
)

// MaxEncodedLength bounds the raw cookie value accepted by Decode.
const MaxEncodedLength = 8192

type wireClaim struct {
	ID          *string  `json:"id"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	SessionID   *string  `json:"sessionId"`
}

// Decode parses a raw identity cookie, failing closed with ErrMalformed.
// Role is not validated here; an unknown or absent role is the
// authorization matrix's decision.
func Decode(raw string) (models.IdentityClaim, error) {
	if raw == "" {
		return models.IdentityClaim{}, fmt.Errorf("%w: empty", ErrMalformed)
	}
	if len(raw) > MaxEncodedLength {
		return models.IdentityClaim{}, fmt.Errorf("%w: too long", ErrMalformed)
	}

	payload, err := url.PathUnescape(raw)
	if err != nil {
		return models.IdentityClaim{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	trimmed := bytes.TrimSpace([]byte(payload))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return models.IdentityClaim{}, fmt.Errorf("%w: payload is not a JSON object", ErrMalformed)
	}

	var wire wireClaim
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if err := dec.Decode(&wire); err != nil {
		return models.IdentityClaim{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if dec.More() {
		return models.IdentityClaim{}, fmt.Errorf("%w: trailing data", ErrMalformed)
	}

	if wire.ID == nil || *wire.ID == "" {
		return models.IdentityClaim{}, fmt.Errorf("%w: missing id", ErrMalformed)
	}
	if wire.SessionID == nil || *wire.SessionID == "" {
		return models.IdentityClaim{}, fmt.Errorf("%w: missing sessionId", ErrMalformed)
	}

	return models.IdentityClaim{
		ID:          *wire.ID,
		Email:       wire.Email,
		Role:        models.Role(wire.Role),
		Permissions: pstrings.DedupeAndTrim(wire.Permissions),
		SessionID:   *wire.SessionID,
	}, nil
}

// CrossCheck verifies that claim, tok and the caller's expected identifiers
// all name the same user and session. Any disagreement is ErrMismatch.
func CrossCheck(claim models.IdentityClaim, tok models.SessionToken, expectedUserID, expectedSessionID string) error {
	switch {
	case !equal(claim.ID, expectedUserID):
		return fmt.Errorf("%w: claim user does not match requested user", ErrMismatch)
	case !equal(claim.SessionID, expectedSessionID):
		return fmt.Errorf("%w: claim session does not match requested session", ErrMismatch)
	case !equal(claim.SessionID, tok.SessionID):
		return fmt.Errorf("%w: claim session does not match token session", ErrMismatch)
	case !equal(claim.ID, tok.UserID):
		return fmt.Errorf("%w: claim user does not match token user", ErrMismatch)
	}
	return nil
}

// Encode produces the wire form Decode accepts. Used by the issuer side and tests.
func Encode(claim models.IdentityClaim) (string, error) {
	payload, err := json.Marshal(claim)
	if err != nil {
		return "", fmt.Errorf("encode identity claim: %w", err)
	}
	return url.PathEscape(string(payload)), nil
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
