package service

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"admintrail/internal/adminauth/authz"
	"admintrail/internal/adminauth/metrics"
	"admintrail/internal/adminauth/models"
	dErrors "admintrail/pkg/domain-errors"
	"admintrail/pkg/platform/middleware/requesttime"
	"admintrail/pkg/testutil"
)

type ServiceSuite struct {
	suite.Suite
	now     time.Time
	ctx     context.Context
	logs    *bytes.Buffer
	metrics *metrics.Metrics
	svc     *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.now = time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)
	s.ctx = requesttime.WithTime(context.Background(), s.now)
	s.logs = &bytes.Buffer{}
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.svc = New(
		WithLogger(slog.New(slog.NewTextHandler(s.logs, nil))),
		WithMetrics(s.metrics),
	)
}

func (s *ServiceSuite) session() *testutil.AdminSession {
	return testutil.NewAdminSession("u1", "s1", s.now, time.Hour)
}

func (s *ServiceSuite) outcomeCount(op models.Operation, outcome string) float64 {
	return promtest.ToFloat64(s.metrics.Verifications.WithLabelValues(string(op), outcome))
}

func (s *ServiceSuite) assertInvalidSession(err error) {
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	s.Equal(msgInvalidSession, err.Error())
}

func (s *ServiceSuite) TestVerifySession_Success() {
	sess := s.session().WithRole(models.RoleSuperAdmin)

	p, err := s.svc.VerifySession(s.ctx, sess.Credentials(), "s1", "u1")

	s.Require().NoError(err)
	s.Equal("u1", p.UserID)
	s.Equal("s1", p.SessionID)
	s.Equal("u1@example.com", p.Email)
	s.Equal(models.RoleSuperAdmin, p.Role)
	s.Equal([]string{"campaigns:read", "audit:write"}, p.Permissions)
	s.Equal(s.now.Add(time.Hour).UnixMilli(), p.ExpiresAt)
	s.Equal(1.0, s.outcomeCount(models.OperationVerifySession, metrics.OutcomeOK))
}

func (s *ServiceSuite) TestVerifySession_MissingCookies() {
	creds := s.session().Credentials()
	creds.Identity = ""

	_, err := s.svc.VerifySession(s.ctx, creds, "s1", "u1")

	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	s.Equal(msgAuthRequired, err.Error())
	s.Equal(1.0, s.outcomeCount(models.OperationVerifySession, metrics.OutcomeMissingCookie))
}

// Malformed, expired and mismatched sessions surface identically; only the
// internal log and metric label tell them apart.
func (s *ServiceSuite) TestVerifySession_FailuresAreIndistinguishable() {
	cases := []struct {
		name    string
		creds   func() models.Credentials
		outcome string
	}{
		{
			name: "malformed token",
			creds: func() models.Credentials {
				c := s.session().Credentials()
				c.Token = "!!!"
				return c
			},
			outcome: metrics.OutcomeMalformedToken,
		},
		{
			name: "malformed identity",
			creds: func() models.Credentials {
				c := s.session().Credentials()
				c.Identity = "%7Bnot-json"
				return c
			},
			outcome: metrics.OutcomeMalformedIdentity,
		},
		{
			name: "expired token",
			creds: func() models.Credentials {
				sess := s.session()
				sess.Token.ExpiresAt = s.now.UnixMilli() - 1000
				return sess.Credentials()
			},
			outcome: metrics.OutcomeExpired,
		},
		{
			name: "token from another session",
			creds: func() models.Credentials {
				sess := s.session()
				sess.Token.SessionID = "s2"
				sess.Token.ExpiresAt = s.now.UnixMilli() + 100000
				return sess.Credentials()
			},
			outcome: metrics.OutcomeMismatch,
		},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.logs.Reset()
			_, err := s.svc.VerifySession(s.ctx, tc.creds(), "s1", "u1")

			s.assertInvalidSession(err)
			s.Contains(s.logs.String(), "reason="+tc.outcome)
			s.Equal(1.0, s.outcomeCount(models.OperationVerifySession, tc.outcome))
		})
	}
}

func (s *ServiceSuite) TestVerifySession_RequestedIdentityMismatch() {
	_, err := s.svc.VerifySession(s.ctx, s.session().Credentials(), "s1", "someone-else")
	s.assertInvalidSession(err)
}

func (s *ServiceSuite) TestVerifySession_ExpiryBoundaryIsInclusive() {
	sess := s.session()
	sess.Token.ExpiresAt = s.now.UnixMilli()

	_, err := s.svc.VerifySession(s.ctx, sess.Credentials(), "s1", "u1")
	s.NoError(err)
}

func (s *ServiceSuite) TestVerifySession_ForbiddenRoles() {
	for _, role := range []models.Role{"", "VIEWER", "admin"} {
		_, err := s.svc.VerifySession(s.ctx, s.session().WithRole(role).Credentials(), "s1", "u1")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden), "role %q", role)
		s.Equal(msgForbidden, err.Error())
	}
	s.Equal(3.0, s.outcomeCount(models.OperationVerifySession, metrics.OutcomeForbidden))
}

func (s *ServiceSuite) TestAuthenticate_SkipsRoleByDefault() {
	p, err := s.svc.Authenticate(s.ctx, s.session().WithRole("VIEWER").Credentials(), models.OperationWriteAudit)

	s.Require().NoError(err)
	s.Equal(models.Role("VIEWER"), p.Role)
}

func (s *ServiceSuite) TestAuthenticate_EnforcesRoleWhenEnabled() {
	svc := New(WithAuditRoleEnforcement(true), WithMatrix(authz.DefaultMatrix()))

	_, err := svc.Authenticate(s.ctx, s.session().WithRole("VIEWER").Credentials(), models.OperationWriteAudit)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	_, err = svc.Authenticate(s.ctx, s.session().Credentials(), models.OperationReadAudit)
	s.NoError(err)
}

func (s *ServiceSuite) TestAuthenticate_RejectsSwappedPair() {
	sess := s.session()
	sess.Claim.SessionID = "s9"

	_, err := s.svc.Authenticate(s.ctx, sess.Credentials(), models.OperationReadAudit)
	s.assertInvalidSession(err)
}

func (s *ServiceSuite) TestAuthenticate_RejectsExpired() {
	sess := s.session()
	sess.Token.ExpiresAt = s.now.Add(-time.Second).UnixMilli()

	_, err := s.svc.Authenticate(s.ctx, sess.Credentials(), models.OperationWriteAudit)
	s.assertInvalidSession(err)
	s.Equal(1.0, s.outcomeCount(models.OperationWriteAudit, metrics.OutcomeExpired))
}

func (s *ServiceSuite) TestRejectionLogsNeverContainCookieValues() {
	creds := s.session().Credentials()
	creds.Identity = "%7B%22id%22%3A%22secret-marker%22"

	_, err := s.svc.VerifySession(s.ctx, creds, "s1", "u1")
	s.Error(err)
	s.NotContains(s.logs.String(), creds.Token)
}
