package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-console/internal/domain/entity"
	"agent-console/internal/infrastructure/persistence/preference"
	apperrors "agent-console/pkg/errors"
)

func f64(v float64) *float64 { return &v }

func usage(agentID, provider, model string, tokens int64, cost float64, at time.Time) *entity.UsageRecord {
	return &entity.UsageRecord{
		ID:          agentID + at.String(),
		AgentID:     agentID,
		Provider:    provider,
		Model:       model,
		TotalTokens: tokens,
		CostUSD:     cost,
		CreatedAt:   at,
	}
}

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name      string
		cur, prev float64
		want      float64
	}{
		{"growth from zero", 50, 0, 100},
		{"both zero", 0, 0, 0},
		{"increase", 150, 100, 50},
		{"decrease", 50, 100, -50},
		{"rounded to one decimal", 1, 3, -66.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PercentChange(tt.cur, tt.prev))
		})
	}
}

func TestResolveWindow(t *testing.T) {
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

	t.Run("default rolling days", func(t *testing.T) {
		w, err := ResolveWindow(WindowSpec{}, 30, now)
		require.NoError(t, err)
		assert.Equal(t, now, w.To)
		assert.Equal(t, now.AddDate(0, 0, -30), w.From)
	})

	t.Run("explicit days", func(t *testing.T) {
		w, err := ResolveWindow(WindowSpec{Days: 7}, 30, now)
		require.NoError(t, err)
		assert.Equal(t, 7*24*time.Hour, w.Duration())
	})

	t.Run("only to given", func(t *testing.T) {
		to := now.AddDate(0, 0, -10)
		w, err := ResolveWindow(WindowSpec{To: &to, Days: 5}, 30, now)
		require.NoError(t, err)
		assert.Equal(t, to, w.To)
		assert.Equal(t, to.AddDate(0, 0, -5), w.From)
	})

	t.Run("from after to", func(t *testing.T) {
		from := now
		to := now.Add(-time.Hour)
		_, err := ResolveWindow(WindowSpec{From: &from, To: &to}, 30, now)
		assert.ErrorIs(t, err, apperrors.ErrInvalidParam)
	})
}

func TestWindowPrevious(t *testing.T) {
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	w := Window{From: from, To: from.AddDate(0, 0, 30)}

	prev := w.Previous()
	assert.Equal(t, w.Duration(), prev.Duration())
	assert.True(t, prev.To.Before(w.From))
	assert.Equal(t, time.Millisecond, w.From.Sub(prev.To))
}

func TestPercentile(t *testing.T) {
	samples := []float64{100, 200, 300, 400, 500}
	assert.Equal(t, 300.0, Percentile(samples, 0.5))
	assert.InDelta(t, 480.0, Percentile(samples, 0.95), 1e-9)
	assert.Equal(t, 100.0, Percentile(samples, 0))
	assert.Equal(t, 500.0, Percentile(samples, 1))
	assert.Equal(t, 42.0, Percentile([]float64{42}, 0.95))
}

func TestSummarizeDurations(t *testing.T) {
	t.Run("bounded and ordered", func(t *testing.T) {
		values := []float64{900, 120, 450, 80, 3000, 260, 75}
		st := SummarizeDurations(values)
		require.True(t, st.HasData())
		assert.Equal(t, len(values), st.Samples)
		for _, p := range []*float64{st.P50, st.P95} {
			require.NotNil(t, p)
			assert.GreaterOrEqual(t, *p, 75.0)
			assert.LessOrEqual(t, *p, 3000.0)
		}
		assert.LessOrEqual(t, *st.P50, *st.P95)
		// 输入不被修改
		assert.Equal(t, 900.0, values[0])
	})

	t.Run("empty means no data", func(t *testing.T) {
		st := SummarizeDurations(nil)
		assert.False(t, st.HasData())
		assert.Nil(t, st.Avg)
		assert.Nil(t, st.P50)
		assert.Nil(t, st.P95)
	})
}

func TestResolve_FieldWise(t *testing.T) {
	org := ParameterSet{
		RevenuePerInteraction:      f64(10),
		ConversionRate:             f64(0.05),
		MinutesSavedPerInteraction: f64(2),
		HourlyCost:                 f64(40),
	}
	category := ParameterSet{MinutesSavedPerInteraction: f64(3)}
	agent := ParameterSet{HourlyCost: f64(80)}

	got := Resolve(agent, category, org).OrZero()
	assert.Equal(t, Parameters{
		RevenuePerInteraction:      10,
		ConversionRate:             0.05,
		MinutesSavedPerInteraction: 3,
		HourlyCost:                 80,
	}, got)
}

func TestResolveRows(t *testing.T) {
	rows := []*entity.BusinessSetting{
		{Scope: entity.SettingScopeOrg, RevenuePerInteraction: f64(10), HourlyCost: f64(40)},
		{Scope: entity.SettingScopeCategory, ScopeKey: "support", HourlyCost: f64(60)},
		{Scope: entity.SettingScopeCategory, ScopeKey: "sales", HourlyCost: f64(99)},
		{Scope: entity.SettingScopeAgent, ScopeKey: "a1", RevenuePerInteraction: f64(20)},
	}

	got := ResolveRows(rows, "a1", "support")
	require.NotNil(t, got.RevenuePerInteraction)
	assert.Equal(t, 20.0, *got.RevenuePerInteraction)
	require.NotNil(t, got.HourlyCost)
	assert.Equal(t, 60.0, *got.HourlyCost)
	assert.Nil(t, got.ConversionRate)

	orgOnly := ResolveRows(rows, "", "")
	assert.Equal(t, 40.0, *orgOnly.HourlyCost)
}

func TestByCategory(t *testing.T) {
	now := time.Now()
	dir := NewAgentDirectory([]*entity.Agent{
		{ID: "a1", Name: "Alpha", Category: "X"},
		{ID: "a2", Name: "Beta", Category: "X"},
		{ID: "a3", Name: "Gamma", Category: "Y"},
	}, "")
	records := []*entity.UsageRecord{
		usage("a1", "openai", "gpt-4o", 100, 100, now),
		usage("a2", "openai", "gpt-4o", 50, 50, now),
		usage("a3", "openai", "gpt-4o", 30, 30, now),
	}

	groups := ByCategory(records, dir, MetricCost)
	require.Len(t, groups, 2)
	assert.Equal(t, "X", groups[0].Key)
	assert.Equal(t, 150.0, groups[0].Cost)
	assert.Equal(t, "Y", groups[1].Key)
	assert.Equal(t, 30.0, groups[1].Cost)
}

func TestByAgent_UnknownAgentFallsBackToOther(t *testing.T) {
	dir := NewAgentDirectory(nil, "")
	records := []*entity.UsageRecord{usage("ghost", "openai", "gpt-4o", 10, 1, time.Now())}

	cats := ByCategory(records, dir, MetricCost)
	require.Len(t, cats, 1)
	assert.Equal(t, DefaultOtherCategory, cats[0].Key)

	agents := ByAgent(records, dir, MetricCost)
	assert.Equal(t, "ghost", agents[0].Label)
}

func TestSortGroups_StableOnTies(t *testing.T) {
	groups := []Group{
		{Key: "first", Count: 2},
		{Key: "second", Count: 5},
		{Key: "third", Count: 2},
	}
	SortGroups(groups, MetricCount)
	assert.Equal(t, []string{"second", "first", "third"}, []string{groups[0].Key, groups[1].Key, groups[2].Key})
}

func TestParseMetric(t *testing.T) {
	m, err := ParseMetric("")
	require.NoError(t, err)
	assert.Equal(t, MetricCost, m)

	m, err = ParseMetric("tokens")
	require.NoError(t, err)
	assert.Equal(t, MetricTokens, m)

	_, err = ParseMetric("latency")
	assert.Error(t, err)
}

func TestFilter(t *testing.T) {
	now := time.Now()
	dir := NewAgentDirectory([]*entity.Agent{
		{ID: "a1", Category: "support"},
		{ID: "a2", Category: "sales"},
	}, "")
	estimated := usage("a1", "openai", "gpt-4o-mini", 10, 1, now)
	estimated.CostEstimated = true
	records := []*entity.UsageRecord{
		usage("a1", "OpenAI", "GPT-4o", 10, 1, now),
		usage("a2", "anthropic", "claude-3-5-sonnet", 10, 1, now),
		estimated,
	}

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"no filter excludes estimated", Filter{}, 2},
		{"include estimated", Filter{IncludeEstimated: true}, 3},
		{"provider case insensitive", Filter{Provider: "openai"}, 1},
		{"model substring", Filter{Model: "4O", IncludeEstimated: true}, 2},
		{"category", Filter{Category: "sales"}, 1},
		{"combined", Filter{Category: "support", Model: "sonnet"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, tt.filter.ApplyUsage(records, dir), tt.want)
		})
	}
}

func TestFilter_TimingsDropMissingDurations(t *testing.T) {
	dir := NewAgentDirectory(nil, "")
	timings := []*entity.ResponseTiming{
		{AgentID: "a1", DurationMs: f64(120)},
		{AgentID: "a1"},
	}
	assert.Len(t, Filter{}.ApplyTimings(timings, dir), 1)
}

func TestMonthly(t *testing.T) {
	jan := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)
	records := []*entity.UsageRecord{
		usage("a2", "openai", "m", 1, 0, feb),
		usage("a1", "openai", "m", 1, 0, jan),
		usage("a1", "openai", "m", 1, 0, jan),
		usage("a2", "openai", "m", 1, 0, jan),
	}

	buckets := Monthly(records)
	require.Len(t, buckets, 2)
	assert.Equal(t, MonthBucket{Month: "2024-01", Interactions: 3, ActiveAgents: 2}, buckets[0])
	assert.Equal(t, MonthBucket{Month: "2024-02", Interactions: 1, ActiveAgents: 1}, buckets[1])
}

func TestDeriveKPIs(t *testing.T) {
	params := Parameters{
		RevenuePerInteraction:      2,
		ConversionRate:             0.05,
		MinutesSavedPerInteraction: 5,
		HourlyCost:                 60,
	}

	// (200 + 8.33h × 60 - 50) / 50 × 100
	k := DeriveKPIs(Totals{Count: 100, Cost: 50}, params)
	assert.Equal(t, 200.0, k.RevenueImpacted)
	assert.InDelta(t, 8.333, k.TimeSavedHours, 0.001)
	assert.Equal(t, int64(5), k.Conversions)
	assert.InDelta(t, 0.5, k.CostPerInteraction, 1e-9)
	assert.InDelta(t, 1300.0, k.ROI, 1e-6)
	assert.Equal(t, 1300.0, k.Rounded().ROI)

	zero := DeriveKPIs(Totals{Count: 100, Cost: 0}, params)
	assert.Equal(t, 0.0, zero.ROI)

	empty := DeriveKPIs(Totals{}, params)
	assert.Equal(t, 0.0, empty.CostPerInteraction)
}

func TestAssignColors_Persistent(t *testing.T) {
	palette := []string{"#1", "#2", "#3"}
	var m ColorMap

	assert.True(t, AssignColors(&m, []string{"X", "Y"}, palette))
	x, y := m.Assignments["X"], m.Assignments["Y"]

	assert.True(t, AssignColors(&m, []string{"Y", "X", "Z"}, palette))
	assert.Equal(t, x, m.Assignments["X"])
	assert.Equal(t, y, m.Assignments["Y"])
	assert.Equal(t, "#3", m.Assignments["Z"])

	assert.False(t, AssignColors(&m, []string{"X"}, palette))
	AssignColors(&m, []string{"W"}, palette)
	assert.Equal(t, "#1", m.Assignments["W"])
}

func TestColorAssigner_PersistsPerOrg(t *testing.T) {
	ctx := context.Background()
	store := preference.NewMemoryStore()
	palette := []string{"#a", "#b", "#c"}

	first, err := NewColorAssigner(store, palette).Assign(ctx, "org-1", []string{"X", "Y"})
	require.NoError(t, err)

	// 新实例从存储恢复已有分配
	second, err := NewColorAssigner(store, palette).Assign(ctx, "org-1", []string{"Y", "X", "Z"})
	require.NoError(t, err)
	assert.Equal(t, first["X"], second["X"])
	assert.Equal(t, first["Y"], second["Y"])
	assert.Equal(t, "#c", second["Z"])

	other, err := NewColorAssigner(store, palette).Assign(ctx, "org-2", []string{"Z"})
	require.NoError(t, err)
	assert.Equal(t, "#a", other["Z"])
}

func TestFetchGuard(t *testing.T) {
	ctx := context.Background()
	guard := NewFetchGuard(preference.NewMemorySequencer())

	older := guard.Begin(ctx, "org", "user", "executive", "summary")
	otherPanel := guard.Begin(ctx, "org", "user", "executive", "agents")
	newer := guard.Begin(ctx, "org", "user", "executive", "summary")
	otherView := guard.Begin(ctx, "org", "user", "finance", "summary")

	assert.False(t, guard.Latest(ctx, older))
	assert.True(t, guard.Latest(ctx, newer))
	assert.True(t, guard.Latest(ctx, otherPanel))
	assert.True(t, guard.Latest(ctx, otherView))
	assert.True(t, guard.Latest(ctx, Ticket{}))
}
