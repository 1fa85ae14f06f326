package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-console/internal/application/analytics"
	apperrors "agent-console/pkg/errors"
)

func TestLenientNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *float64
	}{
		{"number", `12.5`, ptr(12.5)},
		{"numeric string", `"0.05"`, ptr(0.05)},
		{"padded string", `" 3 "`, ptr(3)},
		{"null", `null`, nil},
		{"empty string", `""`, nil},
		{"garbage string", `"abc"`, ptr(0)},
		{"nan string", `"NaN"`, ptr(0)},
		{"bool", `true`, ptr(0)},
		{"object", `{"a":1}`, ptr(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n LenientNumber
			require.NoError(t, json.Unmarshal([]byte(tt.input), &n))
			if tt.want == nil {
				assert.Nil(t, n.Value)
				return
			}
			require.NotNil(t, n.Value)
			assert.InDelta(t, *tt.want, *n.Value, 1e-9)
		})
	}
}

func TestUpsertSettingsRequest_Params(t *testing.T) {
	body := `{"scope":" Category ","scope_key":"Support","revenue_per_interaction":"10","conversion_rate":"oops","hourly_cost":80}`
	var req UpsertSettingsRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	p := req.Params()
	assert.Equal(t, "category", string(req.ScopeValue()))
	require.NotNil(t, p.RevenuePerInteraction)
	assert.Equal(t, 10.0, *p.RevenuePerInteraction)
	require.NotNil(t, p.ConversionRate)
	assert.Equal(t, 0.0, *p.ConversionRate)
	assert.Nil(t, p.MinutesSavedPerInteraction)
	assert.Equal(t, 80.0, *p.HourlyCost)

	out, err := json.Marshal(req.MinutesSavedPerInteraction)
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestDashboardQuery_ToQuery(t *testing.T) {
	q, err := DashboardQuery{
		From:     "2024-06-01",
		To:       "2024-06-30",
		Days:     "x",
		Provider: " OpenAI ",
		Metric:   "Tokens",
	}.ToQuery("org-1", "user-1")
	require.NoError(t, err)

	assert.Equal(t, "org-1", q.OrgID)
	assert.Equal(t, DefaultView, q.View)
	assert.Equal(t, analytics.MetricTokens, q.Metric)
	assert.Equal(t, 0, q.Window.Days)
	assert.Equal(t, "OpenAI", q.Filter.Provider)
	assert.True(t, q.Filter.IncludeEstimated)
	require.NotNil(t, q.Window.From)
	require.NotNil(t, q.Window.To)
	assert.True(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).Equal(*q.Window.From))
	assert.True(t, time.Date(2024, 6, 30, 23, 59, 59, int(999*time.Millisecond), time.UTC).Equal(*q.Window.To))

	q, err = DashboardQuery{From: "2024-06-01T08:00:00Z", IncludeEstimated: "false", Days: "7"}.ToQuery("org-1", "")
	require.NoError(t, err)
	assert.Equal(t, 8, q.Window.From.Hour())
	assert.Nil(t, q.Window.To)
	assert.Equal(t, 7, q.Window.Days)
	assert.False(t, q.Filter.IncludeEstimated)
	assert.Equal(t, analytics.MetricCost, q.Metric)
}

func TestDashboardQuery_Errors(t *testing.T) {
	_, err := DashboardQuery{From: "yesterday"}.ToQuery("org-1", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidParam)

	_, err = DashboardQuery{Metric: "latency"}.ToQuery("org-1", "")
	assert.ErrorIs(t, err, apperrors.ErrUnknownMetric)
}

func TestLenientHelpers(t *testing.T) {
	assert.Equal(t, 5, LenientInt("5"))
	assert.Equal(t, 0, LenientInt("five"))
	assert.True(t, LenientBool("", true))
	assert.False(t, LenientBool("0", true))
	assert.True(t, LenientBool("maybe", true))
}

func TestValidPreferenceKey(t *testing.T) {
	assert.True(t, ValidPreferenceKey("page_size"))
	assert.True(t, ValidPreferenceKey("dashboard.density"))
	assert.False(t, ValidPreferenceKey(""))
	assert.False(t, ValidPreferenceKey("Page"))
	assert.False(t, ValidPreferenceKey("../etc"))
}

func ptr(v float64) *float64 {
	return &v
}
