package service

import (
	"context"
	"log/slog"

	"admintrail/internal/adminauth/authz"
	"admintrail/internal/adminauth/identity"
	"admintrail/internal/adminauth/metrics"
	"admintrail/internal/adminauth/models"
	"admintrail/internal/adminauth/token"
	"admintrail/internal/platform/tracer"
	"admintrail/pkg/platform/middleware/requesttime"
	"admintrail/pkg/requestcontext"
)

// Service verifies admin session cookies. It is stateless and safe for
// concurrent use.
type Service struct {
	matrix            *authz.Matrix
	metrics           *metrics.Metrics
	tracer            tracer.Tracer
	logger            *slog.Logger
	enforceAuditRoles bool
}

// Option configures the Service.
type Option func(*Service)

// WithMatrix replaces the default authorization matrix.
func WithMatrix(m *authz.Matrix) Option {
	return func(s *Service) {
		s.matrix = m
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithAuditRoleEnforcement makes Authenticate consult the authorization
// matrix. Off by default: the audit-log endpoints only require a live,
// consistent session, unlike verify-session which also checks the role.
func WithAuditRoleEnforcement(enabled bool) Option {
	return func(s *Service) {
		s.enforceAuditRoles = enabled
	}
}

func New(opts ...Option) *Service {
	s := &Service{
		matrix: authz.DefaultMatrix(),
		tracer: tracer.NewNoop(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// VerifySession runs the full check for POST /admin/verify-session: decode
// both cookies, reject expired tokens, cross-check the claim against the
// token and the requested identifiers, then authorize the role.
func (s *Service) VerifySession(ctx context.Context, creds models.Credentials, sessionID, userID string) (*models.Principal, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanVerifySession,
		tracer.String(tracer.AttrOperation, string(models.OperationVerifySession)))

	principal, err := s.verify(ctx, creds, models.OperationVerifySession, true, func(tok models.SessionToken) (string, string) {
		return userID, sessionID
	})
	return s.finish(ctx, span, models.OperationVerifySession, principal, err)
}

// Authenticate is the check used by the audit-log endpoints. There is no
// caller-supplied identity, so the claim is cross-checked against the
// token's own identifiers. The role is checked only when audit role
// enforcement is enabled.
func (s *Service) Authenticate(ctx context.Context, creds models.Credentials, op models.Operation) (*models.Principal, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanAuthenticate,
		tracer.String(tracer.AttrOperation, string(op)))

	principal, err := s.verify(ctx, creds, op, s.enforceAuditRoles, func(tok models.SessionToken) (string, string) {
		return tok.UserID, tok.SessionID
	})
	return s.finish(ctx, span, op, principal, err)
}

func (s *Service) verify(
	ctx context.Context,
	creds models.Credentials,
	op models.Operation,
	checkRole bool,
	expected func(models.SessionToken) (userID, sessionID string),
) (*models.Principal, error) {
	if !creds.Present() {
		return nil, errMissingCredentials
	}

	tok, err := token.Decode(creds.Token)
	if err != nil {
		return nil, err
	}
	if err := token.Validate(tok, requesttime.Now(ctx)); err != nil {
		return nil, err
	}

	claim, err := identity.Decode(creds.Identity)
	if err != nil {
		return nil, err
	}

	expectedUserID, expectedSessionID := expected(tok)
	if err := identity.CrossCheck(claim, tok, expectedUserID, expectedSessionID); err != nil {
		return nil, err
	}

	if checkRole {
		if err := s.matrix.Authorize(claim.Role, op); err != nil {
			return nil, err
		}
	}

	return &models.Principal{
		UserID:      claim.ID,
		SessionID:   claim.SessionID,
		Email:       claim.Email,
		Role:        claim.Role,
		Permissions: claim.Permissions,
		ExpiresAt:   tok.ExpiresAt,
	}, nil
}

func (s *Service) finish(ctx context.Context, span tracer.Span, op models.Operation, principal *models.Principal, err error) (*models.Principal, error) {
	if err == nil {
		s.metrics.IncVerification(string(op), metrics.OutcomeOK)
		span.SetAttributes(
			tracer.String(tracer.AttrOutcome, metrics.OutcomeOK),
			tracer.String(tracer.AttrRole, principal.Role.String()),
		)
		span.End(nil)
		return principal, nil
	}

	domainErr, outcome := toDomainError(err)
	s.metrics.IncVerification(string(op), outcome)
	span.SetAttributes(tracer.String(tracer.AttrOutcome, outcome))
	span.End(domainErr)

	s.logger.WarnContext(ctx, "admin session rejected",
		"operation", string(op),
		"reason", outcome,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil, domainErr
}
