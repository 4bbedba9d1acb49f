package service

import (
	"errors"

	"admintrail/internal/adminauth/authz"
	"admintrail/internal/adminauth/identity"
	"admintrail/internal/adminauth/metrics"
	"admintrail/internal/adminauth/token"
	dErrors "admintrail/pkg/domain-errors"
)

// Client-facing messages. Malformed, expired and mismatched sessions share
// one message so a caller cannot tell which check failed.
const (
	msgAuthRequired   = "authentication required"
	msgInvalidSession = "invalid or expired session"
	msgForbidden      = "insufficient privileges"
)

var errMissingCredentials = errors.New("admin cookies missing")

// toDomainError maps a verification failure to its client-facing error and
// the internal outcome label used in logs and metrics.
func toDomainError(err error) (error, string) {
	switch {
	case errors.Is(err, errMissingCredentials):
		return dErrors.Wrap(err, dErrors.CodeUnauthorized, msgAuthRequired), metrics.OutcomeMissingCookie
	case errors.Is(err, token.ErrMalformed):
		return dErrors.Wrap(err, dErrors.CodeUnauthorized, msgInvalidSession), metrics.OutcomeMalformedToken
	case errors.Is(err, identity.ErrMalformed):
		return dErrors.Wrap(err, dErrors.CodeUnauthorized, msgInvalidSession), metrics.OutcomeMalformedIdentity
	case errors.Is(err, token.ErrExpired):
		return dErrors.Wrap(err, dErrors.CodeUnauthorized, msgInvalidSession), metrics.OutcomeExpired
	case errors.Is(err, identity.ErrMismatch):
		return dErrors.Wrap(err, dErrors.CodeUnauthorized, msgInvalidSession), metrics.OutcomeMismatch
	case errors.Is(err, authz.ErrForbidden):
		return dErrors.Wrap(err, dErrors.CodeForbidden, msgForbidden), metrics.OutcomeForbidden
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "session verification failed"), "internal"
	}
}
