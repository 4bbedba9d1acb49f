// Package cookie reads the admin credential cookies from a request.
package cookie

import (
	"net/http"

	"admintrail/internal/adminauth/models"
)

const (
	TokenName    = "adminToken"
	IdentityName = "adminUser"
)

// Read returns the raw cookie values; a missing cookie yields "".
func Read(r *http.Request) models.Credentials {
	return models.Credentials{
		Token:    value(r, TokenName),
		Identity: value(r, IdentityName),
	}
}

func value(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
