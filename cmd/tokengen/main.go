// Package main prints adminToken/adminUser cookie values for local testing
// of the admin endpoints. The values are unsigned; anyone can mint them, so
// this tool only exists to save typing.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"admintrail/internal/adminauth/cookie"
	"admintrail/internal/adminauth/identity"
	"admintrail/internal/adminauth/models"
	"admintrail/internal/adminauth/token"
	platformstrings "admintrail/pkg/platform/strings"
)

const defaultTTL = time.Hour

type options struct {
	userID      string
	sessionID   string
	email       string
	role        string
	permissions string
	ttl         time.Duration
	asJSON      bool
}

type output struct {
	AdminToken string            `json:"adminToken"`
	AdminUser  string            `json:"adminUser"`
	SessionID  string            `json:"sessionId"`
	UserID     string            `json:"userId"`
	ExpiresAt  int64             `json:"expiresAt"`
	Usage      map[string]string `json:"usage"`
}

func main() {
	fs := flag.NewFlagSet("tokengen", flag.ExitOnError)
	var opts options
	fs.StringVar(&opts.userID, "user-id", "", "User ID. Generated if empty.")
	fs.StringVar(&opts.sessionID, "session-id", "", "Session ID. Generated if empty.")
	fs.StringVar(&opts.email, "email", "", "Email (defaults to <user-id>@example.com)")
	fs.StringVar(&opts.role, "role", string(models.RoleAdmin), "Role: SUPER_ADMIN or ADMIN (other values produce a forbidden identity)")
	fs.StringVar(&opts.permissions, "permissions", "", "Comma-separated permissions")
	fs.DurationVar(&opts.ttl, "ttl", defaultTTL, "Session time-to-live; negative values produce an expired token")
	fs.BoolVar(&opts.asJSON, "json", false, "Output as JSON")
	_ = fs.Parse(os.Args[1:]) //nolint:errcheck // ExitOnError

	if err := run(os.Stdout, opts, time.Now()); err != nil {
		fmt.Fprintf(os.Stderr, "tokengen: %v\n", err)
		os.Exit(1)
	}
}

func run(w io.Writer, opts options, now time.Time) error {
	out, err := generate(opts, now)
	if err != nil {
		return err
	}

	if opts.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintf(w, "adminToken=%s\n", out.AdminToken)
	fmt.Fprintf(w, "adminUser=%s\n", out.AdminUser)
	fmt.Fprintf(w, "\nexpires: %s\n", time.UnixMilli(out.ExpiresAt).UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "\n%s\n", out.Usage["curl"])
	return nil
}

func generate(opts options, now time.Time) (*output, error) {
	if opts.userID == "" {
		opts.userID = uuid.NewString()
	}
	if opts.sessionID == "" {
		opts.sessionID = uuid.NewString()
	}
	if opts.email == "" {
		opts.email = opts.userID + "@example.com"
	}

	tok := models.SessionToken{
		SessionID: opts.sessionID,
		UserID:    opts.userID,
		ExpiresAt: now.Add(opts.ttl).UnixMilli(),
	}
	claim := models.IdentityClaim{
		ID:          opts.userID,
		Email:       opts.email,
		Role:        models.Role(opts.role),
		Permissions: platformstrings.DedupeAndTrim(strings.Split(opts.permissions, ",")),
		SessionID:   opts.sessionID,
	}

	encodedToken, err := token.Encode(tok)
	if err != nil {
		return nil, fmt.Errorf("encode token: %w", err)
	}
	encodedClaim, err := identity.Encode(claim)
	if err != nil {
		return nil, fmt.Errorf("encode identity: %w", err)
	}

	cookies := fmt.Sprintf("%s=%s; %s=%s", cookie.TokenName, encodedToken, cookie.IdentityName, encodedClaim)
	body := fmt.Sprintf(`{"sessionId":%q,"userId":%q}`, opts.sessionID, opts.userID)
	curl := fmt.Sprintf("curl -X POST http://localhost:8080/admin/verify-session -H 'Content-Type: application/json' -H 'Cookie: %s' -d '%s'",
		cookies, body)
	return &output{
		AdminToken: encodedToken,
		AdminUser:  encodedClaim,
		SessionID:  opts.sessionID,
		UserID:     opts.userID,
		ExpiresAt:  tok.ExpiresAt,
		Usage: map[string]string{
			"cookie": cookies,
			"curl":   curl,
		},
	}, nil
}
