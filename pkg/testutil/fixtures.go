package testutil

import (
	"net/http"
	"time"

	"admintrail/internal/adminauth/cookie"
	"admintrail/internal/adminauth/identity"
	"admintrail/internal/adminauth/models"
	"admintrail/internal/adminauth/token"
)

// AdminSession builds a matching adminToken/adminUser cookie pair.
// Mutate Token or Claim before calling Credentials to produce broken pairs.
type AdminSession struct {
	Token models.SessionToken
	Claim models.IdentityClaim
}

// NewAdminSession returns a consistent ADMIN session for userID/sessionID
// that expires ttl after now.
func NewAdminSession(userID, sessionID string, now time.Time, ttl time.Duration) *AdminSession {
	return &AdminSession{
		Token: models.SessionToken{
			SessionID: sessionID,
			UserID:    userID,
			ExpiresAt: now.Add(ttl).UnixMilli(),
		},
		Claim: models.IdentityClaim{
			ID:          userID,
			Email:       userID + "@example.com",
			Role:        models.RoleAdmin,
			Permissions: []string{"campaigns:read", "audit:write"},
			SessionID:   sessionID,
		},
	}
}

// WithRole sets the claim role.
func (a *AdminSession) WithRole(role models.Role) *AdminSession {
	a.Claim.Role = role
	return a
}

// Credentials encodes the pair. It panics on encode failure, which only
// happens for values JSON cannot represent.
func (a *AdminSession) Credentials() models.Credentials {
	tok, err := token.Encode(a.Token)
	if err != nil {
		panic(err)
	}
	claim, err := identity.Encode(a.Claim)
	if err != nil {
		panic(err)
	}
	return models.Credentials{Token: tok, Identity: claim}
}

// AddCookies attaches the encoded pair to req.
func (a *AdminSession) AddCookies(req *http.Request) {
	creds := a.Credentials()
	req.AddCookie(&http.Cookie{Name: cookie.TokenName, Value: creds.Token})
	req.AddCookie(&http.Cookie{Name: cookie.IdentityName, Value: creds.Identity})
}
