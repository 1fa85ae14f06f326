package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-console/internal/application/analytics"
	"agent-console/internal/infrastructure/persistence/preference"
	"agent-console/pkg/csvutil"
	apperrors "agent-console/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// withIdentity 模拟认证中间件写入的身份信息
func withIdentity(orgID, userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("org_id", orgID)
		c.Set("user_id", userID)
		c.Next()
	}
}

type fakeDashboard struct {
	lastQuery analytics.Query
	lastKind  string
	summary   *analytics.Summary
	err       error
}

func (f *fakeDashboard) Usage(_ context.Context, q analytics.Query) (*analytics.UsageResult, error) {
	f.lastQuery = q
	return &analytics.UsageResult{}, f.err
}

func (f *fakeDashboard) Timings(_ context.Context, q analytics.Query) (*analytics.TimingResult, error) {
	f.lastQuery = q
	return &analytics.TimingResult{}, f.err
}

func (f *fakeDashboard) Outcomes(_ context.Context, q analytics.Query) (*analytics.OutcomeResult, error) {
	f.lastQuery = q
	return &analytics.OutcomeResult{}, f.err
}

func (f *fakeDashboard) Summary(_ context.Context, q analytics.Query) (*analytics.Summary, error) {
	f.lastQuery = q
	return f.summary, f.err
}

func (f *fakeDashboard) Agents(_ context.Context, q analytics.Query) (*analytics.Ranking, error) {
	f.lastQuery = q
	return &analytics.Ranking{}, f.err
}

func (f *fakeDashboard) Categories(_ context.Context, q analytics.Query) (*analytics.CategoryBreakdown, error) {
	f.lastQuery = q
	return &analytics.CategoryBreakdown{}, f.err
}

func (f *fakeDashboard) Monthly(_ context.Context, q analytics.Query) (*analytics.Growth, error) {
	f.lastQuery = q
	return &analytics.Growth{}, f.err
}

func (f *fakeDashboard) ExportRows(_ context.Context, kind string, q analytics.Query) ([]csvutil.Row, error) {
	f.lastQuery = q
	f.lastKind = kind
	if f.err != nil {
		return nil, f.err
	}
	return []csvutil.Row{
		{{Key: "agent", Value: "Support, Tier 1"}, {Key: "cost", Value: 1.5}},
		{{Key: "agent", Value: "Sales"}, {Key: "cost", Value: 2.0}},
	}, nil
}

func TestDashboardHandler_Summary(t *testing.T) {
	svc := &fakeDashboard{summary: &analytics.Summary{}}
	h := NewDashboardHandler(svc)

	r := gin.New()
	r.GET("/summary", withIdentity("org-1", "user-1"), h.Summary)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/summary?days=7&provider=OpenAI", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "org-1", svc.lastQuery.OrgID)
	assert.Equal(t, 7, svc.lastQuery.Window.Days)
	assert.Equal(t, "OpenAI", svc.lastQuery.Filter.Provider)

	svc.err = apperrors.ErrStaleFetch
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/summary", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"error_code":"1009"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/summary?from=not-a-date", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDashboardHandler_Export(t *testing.T) {
	svc := &fakeDashboard{}
	h := NewDashboardHandler(svc)
	h.now = func() time.Time { return time.Date(2024, 6, 30, 14, 5, 9, 0, time.UTC) }

	r := gin.New()
	r.GET("/export/:metric", withIdentity("org-1", "user-1"), h.Export)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/export/agents", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "agents", svc.lastKind)
	assert.Equal(t, `attachment; filename="agents_20240630_140509.csv"`, w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))
	assert.Equal(t, "agent,cost\n\"Support, Tier 1\",1.5\nSales,2\n", w.Body.String())

	svc.err = apperrors.ErrUnknownMetric
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/export/latency", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreferenceHandler(t *testing.T) {
	h := NewPreferenceHandler(preference.NewMemoryStore())

	r := gin.New()
	g := r.Group("/preferences/:key", withIdentity("org-1", "user-1"))
	g.GET("", h.Get)
	g.PUT("", h.Put)
	g.DELETE("", h.Delete)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusNotFound, do(http.MethodGet, "/preferences/page_size", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(http.MethodGet, "/preferences/Bad%20Key", "").Code)

	w := do(http.MethodPut, "/preferences/page_size", `{"value": 50}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(http.MethodPut, "/preferences/page_size", `{"value": {"rows": 25}}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(http.MethodGet, "/preferences/page_size", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"value":{"rows":25}`)

	assert.Equal(t, http.StatusNoContent, do(http.MethodDelete, "/preferences/page_size", "").Code)
	assert.Equal(t, http.StatusNotFound, do(http.MethodGet, "/preferences/page_size", "").Code)
}

type fakeBilling struct {
	orgID    string
	provider string
	err      error
}

func (f *fakeBilling) TriggerRecalc(_ context.Context, orgID, provider, _ string) (string, error) {
	f.orgID = orgID
	f.provider = provider
	if f.err != nil {
		return "", f.err
	}
	return "job-1", nil
}

func TestBillingHandler_Recalculate(t *testing.T) {
	svc := &fakeBilling{}
	h := NewBillingHandler(svc)

	r := gin.New()
	r.POST("/billing/recalculate", withIdentity("org-1", "user-1"), h.Recalculate)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/billing/recalculate", strings.NewReader(`{"provider":"openai"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"job_id":"job-1"`)
	assert.Equal(t, "org-1", svc.orgID)
	assert.Equal(t, "openai", svc.provider)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/billing/recalculate", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "", svc.provider)

	svc.err = apperrors.Wrap(errors.New("redis down"), apperrors.CodeQueueError, "failed to enqueue cost recalculation")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/billing/recalculate", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
