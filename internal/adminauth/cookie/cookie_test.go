package cookie

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRead(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	assert.False(t, Read(req).Present())

	req.AddCookie(&http.Cookie{Name: TokenName, Value: "dG9r"})
	creds := Read(req)
	assert.Equal(t, "dG9r", creds.Token)
	assert.Empty(t, creds.Identity)
	assert.False(t, creds.Present())

	req.AddCookie(&http.Cookie{Name: IdentityName, Value: "%7B%7D"})
	assert.True(t, Read(req).Present())
}
