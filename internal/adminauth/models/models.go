package models

import "time"

// SessionToken is the decoded adminToken cookie. Tokens are minted by the
// login flow; this module only inspects them.
type SessionToken struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
	// ExpiresAt is an instant in epoch milliseconds.
	ExpiresAt int64 `json:"expiresAt"`
}

// Expiry returns ExpiresAt as a time.Time.
func (t SessionToken) Expiry() time.Time {
	return time.UnixMilli(t.ExpiresAt).UTC()
}

// Role is the administrative role carried by an identity claim.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
)

func (r Role) String() string {
	return string(r)
}

// IdentityClaim is the decoded adminUser cookie. It is self-reported and
// unsigned; nothing in it is trusted until it has been cross-checked
// against the session token and the caller's expected identifiers.
type IdentityClaim struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Role        Role     `json:"role"`
	Permissions []string `json:"permissions"`
	SessionID   string   `json:"sessionId"`
}

// Operation names an administrative action subject to the authorization matrix.
type Operation string

const (
	OperationVerifySession Operation = "verify_session"
	OperationWriteAudit    Operation = "audit_log.write"
	OperationReadAudit     Operation = "audit_log.read"
)

// Credentials are the raw, still-encoded cookie values of one request.
type Credentials struct {
	Token    string
	Identity string
}

// Present reports whether both cookies were supplied.
func (c Credentials) Present() bool {
	return c.Token != "" && c.Identity != ""
}

// Principal is an admin whose token and identity claim passed verification.
type Principal struct {
	UserID      string
	SessionID   string
	Email       string
	Role        Role
	Permissions []string
	ExpiresAt   int64
}
