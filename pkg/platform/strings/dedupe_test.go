package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	assert.Equal(t, []string{"campaigns:write", "users:read"},
		DedupeAndTrim([]string{" campaigns:write", "users:read", "campaigns:write", "", "  "}))
	assert.NotNil(t, DedupeAndTrim(nil))
	assert.Empty(t, DedupeAndTrim(nil))
}
