package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimitKeys(t *testing.T) {
	assert.Equal(t, "ratelimit:org-1:/api/v1/usage", BuildRateLimitKey("org-1", "user-1", "/api/v1/usage"))
	assert.Equal(t, "ratelimit:org-1:user-1:/api/v1/usage", BuildUserRateLimitKey("org-1", "user-1", "/api/v1/usage"))
	assert.Equal(t, "ratelimit:org-1:/api/v1/usage", BuildUserRateLimitKey("org-1", "", "/api/v1/usage"))
}
