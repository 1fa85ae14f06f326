package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agent-console/internal/domain/entity"
	"agent-console/pkg/metrics"
	"agent-console/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHasPermission(t *testing.T) {
	tests := []struct {
		role entity.UserRole
		perm Permission
		want bool
	}{
		{entity.UserRoleViewer, PermDashboardRead, true},
		{entity.UserRoleViewer, PermSettingsWrite, false},
		{entity.UserRoleMember, PermSettingsWrite, true},
		{entity.UserRoleMember, PermSettingsBootstrap, false},
		{entity.UserRoleMember, PermBillingRecalc, false},
		{entity.UserRoleAdmin, PermSettingsBootstrap, true},
		{entity.UserRoleAdmin, PermBillingRecalc, true},
		{entity.UserRole("guest"), PermDashboardRead, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.perm), func(t *testing.T) {
			assert.Equal(t, tt.want, HasPermission(tt.role, tt.perm))
		})
	}
}

func newAuthedEngine(secret string, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(Auth(AuthConfig{Secret: secret, Issuer: "test", Enabled: true, SkipPaths: DefaultSkipPaths}))
	r.Use(Org(OrgConfig{}))
	handlers := append(extra, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"org_id":  GetOrgID(c.Request.Context()),
			"user_id": GetUserID(c.Request.Context()),
			"role":    GetRoleFromGin(c),
		})
	})
	r.GET("/api/v1/dashboard/summary", handlers...)
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestAuth(t *testing.T) {
	manager := utils.NewJWTManager("secret", "test")
	access, err := manager.GenerateToken("org-1", "user-1", "viewer", utils.TokenTypeAccess, time.Minute)
	require.NoError(t, err)
	refresh, err := manager.GenerateToken("org-1", "user-1", "viewer", utils.TokenTypeRefresh, time.Minute)
	require.NoError(t, err)

	r := newAuthedEngine("secret")

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"skip path", "/health", "", http.StatusOK},
		{"missing header", "/api/v1/dashboard/summary", "", http.StatusUnauthorized},
		{"bad scheme", "/api/v1/dashboard/summary", "Basic abc", http.StatusUnauthorized},
		{"refresh token rejected", "/api/v1/dashboard/summary", "Bearer " + refresh, http.StatusUnauthorized},
		{"access token", "/api/v1/dashboard/summary", "Bearer " + access, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/summary", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	r.ServeHTTP(w, req)
	assert.JSONEq(t, `{"org_id":"org-1","user_id":"user-1","role":"viewer"}`, w.Body.String())
}

func TestRequirePermission(t *testing.T) {
	manager := utils.NewJWTManager("secret", "test")
	viewer, err := manager.GenerateToken("org-1", "user-1", "viewer", utils.TokenTypeAccess, time.Minute)
	require.NoError(t, err)
	admin, err := manager.GenerateToken("org-1", "user-2", "admin", utils.TokenTypeAccess, time.Minute)
	require.NoError(t, err)

	r := newAuthedEngine("secret", RequirePermission(PermSettingsBootstrap))

	for token, want := range map[string]int{viewer: http.StatusForbidden, admin: http.StatusOK} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/summary", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code)
	}
}

type countingLimiter struct {
	keys    []string
	allowed int
	err     error
}

func (l *countingLimiter) Allow(_ context.Context, key string, limit int, _ time.Duration) (bool, error) {
	l.keys = append(l.keys, key)
	if l.err != nil {
		return false, l.err
	}
	l.allowed++
	return l.allowed <= limit, nil
}

func (l *countingLimiter) Remaining(_ context.Context, _ string, limit int, _ time.Duration) (int, error) {
	if l.allowed >= limit {
		return 0, nil
	}
	return limit - l.allowed, nil
}

func TestRateLimit(t *testing.T) {
	limiter := &countingLimiter{}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("org_id", "org-1")
		c.Set("user_id", "user-1")
		c.Next()
	})
	r.Use(RateLimit(RateLimitConfig{Enabled: true, RequestsPerSecond: 2}, limiter, func(orgID, userID, endpoint string) string {
		return orgID + "|" + userID + "|" + endpoint
	}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	remaining := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		codes = append(codes, w.Code)
		remaining = append(remaining, w.Header().Get("X-RateLimit-Remaining"))
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, []string{"1", "0", "0"}, remaining)
	assert.Equal(t, "org-1|user-1|/x", limiter.keys[0])

	failing := &countingLimiter{err: errors.New("redis down")}
	r2 := gin.New()
	r2.Use(RateLimit(RateLimitConfig{Enabled: true}, failing, func(_, _, endpoint string) string { return endpoint }))
	r2.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	r2.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-RateLimit-Remaining"))
}

func TestMetrics_SkipsHealthChecks(t *testing.T) {
	r := gin.New()
	r.Use(Metrics("/health/live"))
	r.GET("/health/live", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/v1/usage", func(c *gin.Context) { c.Status(http.StatusOK) })

	live := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/health/live", "200")
	usage := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/usage", "200")
	liveBefore, usageBefore := testutil.ToFloat64(live), testutil.ToFloat64(usage)

	for _, path := range []string{"/health/live", "/api/v1/usage"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	assert.Equal(t, liveBefore, testutil.ToFloat64(live))
	assert.Equal(t, usageBefore+1, testutil.ToFloat64(usage))
}
