package analytics

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-console/internal/config"
	"agent-console/internal/domain/entity"
	"agent-console/internal/domain/repository"
	"agent-console/internal/infrastructure/persistence/preference"
	apperrors "agent-console/pkg/errors"
)

type fakeUsageRepo struct {
	records []*entity.UsageRecord
	err     error
	// failCall 第 n 次调用 List 时返回错误，0 表示不注入
	failCall int
	queries  []repository.UsageQuery
}

func (f *fakeUsageRepo) Create(_ context.Context, r *entity.UsageRecord) error {
	f.records = append(f.records, r)
	return nil
}

func (f *fakeUsageRepo) List(_ context.Context, q repository.UsageQuery) ([]*entity.UsageRecord, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	if f.failCall == len(f.queries) {
		return nil, errors.New("statement timeout")
	}
	var out []*entity.UsageRecord
	for _, r := range f.records {
		if r.OrgID != q.OrgID || r.CreatedAt.Before(q.From) || (q.To != nil && r.CreatedAt.After(*q.To)) {
			continue
		}
		if q.AgentID != "" && r.AgentID != q.AgentID {
			continue
		}
		out = append(out, r)
	}
	// 与仓储实现一致：按时间升序，超出上限时保留最新的行
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[len(out)-q.Limit:]
	}
	return out, nil
}

func (f *fakeUsageRepo) ListForRecalc(context.Context, string, string, string, int) ([]*entity.UsageRecord, error) {
	return nil, nil
}

func (f *fakeUsageRepo) UpdateCosts(context.Context, []repository.CostUpdate) error {
	return nil
}

type fakeTimingRepo struct {
	timings []*entity.ResponseTiming
	err     error
}

func (f *fakeTimingRepo) Create(_ context.Context, t *entity.ResponseTiming) error {
	f.timings = append(f.timings, t)
	return nil
}

func (f *fakeTimingRepo) List(context.Context, repository.UsageQuery) ([]*entity.ResponseTiming, error) {
	return f.timings, f.err
}

type fakeOutcomeRepo struct {
	outcomes []*entity.ConversationOutcome
}

func (f *fakeOutcomeRepo) List(context.Context, repository.UsageQuery) ([]*entity.ConversationOutcome, error) {
	return f.outcomes, nil
}

type fakeAgentRepo struct {
	agents []*entity.Agent
	err    error
}

func (f *fakeAgentRepo) Create(context.Context, *entity.Agent) error { return nil }
func (f *fakeAgentRepo) GetByID(context.Context, string, string) (*entity.Agent, error) {
	return nil, nil
}
func (f *fakeAgentRepo) Update(context.Context, *entity.Agent) error  { return nil }
func (f *fakeAgentRepo) Delete(context.Context, string, string) error { return nil }
func (f *fakeAgentRepo) ListAll(context.Context, string) ([]*entity.Agent, error) {
	return f.agents, f.err
}
func (f *fakeAgentRepo) List(context.Context, string, repository.AgentFilter, repository.Pagination) (*repository.PagedResult[*entity.Agent], error) {
	return &repository.PagedResult[*entity.Agent]{Items: f.agents}, nil
}

type fakeSettings struct {
	params ParameterSet
	err    error
}

func (f *fakeSettings) Effective(context.Context, string, string, string) (ParameterSet, error) {
	return f.params, f.err
}

type fixture struct {
	svc      *Service
	usage    *fakeUsageRepo
	timings  *fakeTimingRepo
	outcomes *fakeOutcomeRepo
	agents   *fakeAgentRepo
	settings *fakeSettings
	seq      *preference.MemorySequencer
	now      time.Time
}

func newFixture() *fixture {
	f := &fixture{
		usage:    &fakeUsageRepo{},
		timings:  &fakeTimingRepo{},
		outcomes: &fakeOutcomeRepo{},
		agents: &fakeAgentRepo{agents: []*entity.Agent{
			{ID: "a1", Name: "Support Bot", Category: "support"},
			{ID: "a2", Name: "Sales Bot", Category: "sales"},
		}},
		settings: &fakeSettings{},
		seq:      preference.NewMemorySequencer(),
		now:      time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(f.usage, f.timings, f.outcomes, f.agents, f.settings,
		NewColorAssigner(preference.NewMemoryStore(), []string{"#a", "#b", "#c"}),
		NewFetchGuard(f.seq),
		config.AnalyticsConfig{DefaultDays: 30},
	)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) add(agentID string, cost float64, daysAgo int) {
	f.usage.records = append(f.usage.records, &entity.UsageRecord{
		ID:          agentID,
		OrgID:       "org-1",
		AgentID:     agentID,
		Provider:    "openai",
		Model:       "gpt-4o",
		TotalTokens: 100,
		CostUSD:     cost,
		CreatedAt:   f.now.AddDate(0, 0, -daysAgo),
	})
}

func query(view string) Query {
	return Query{OrgID: "org-1", UserID: "u1", View: view, Metric: MetricCost}
}

func TestService_Summary(t *testing.T) {
	f := newFixture()
	f.add("a1", 30, 1)
	f.add("a2", 20, 2)
	f.add("a1", 25, 40)
	f.settings.params = ParameterSet{RevenuePerInteraction: f64(2), HourlyCost: f64(60), MinutesSavedPerInteraction: f64(5)}
	f.timings.timings = []*entity.ResponseTiming{{AgentID: "a1", DurationMs: f64(100)}, {AgentID: "a2", DurationMs: f64(300)}}
	f.outcomes.outcomes = []*entity.ConversationOutcome{{AgentID: "a1", Resolved: true}, {AgentID: "a2"}}

	res, err := f.svc.Summary(context.Background(), query("summary"))
	require.NoError(t, err)

	assert.Equal(t, 2, res.Totals.Count)
	assert.Equal(t, 50.0, res.Totals.Cost)
	assert.Equal(t, 1, res.Comparison.Previous.Count)
	assert.False(t, res.Comparison.BaselineMissing)
	require.NotNil(t, res.Comparison.InteractionsPct)
	assert.Equal(t, 100.0, *res.Comparison.InteractionsPct)
	require.NotNil(t, res.Comparison.CostPct)
	assert.Equal(t, 100.0, *res.Comparison.CostPct)
	assert.Equal(t, 4.0, res.KPIs.RevenueImpacted)
	require.True(t, res.Timing.HasData())
	assert.Equal(t, 200.0, *res.Timing.P50)
	require.NotNil(t, res.Outcomes.Rate)
	assert.Equal(t, 50.0, *res.Outcomes.Rate)
	assert.Empty(t, res.Notices)

	require.Len(t, f.usage.queries, 2)
	prev := f.usage.queries[1]
	assert.True(t, prev.To.Before(f.usage.queries[0].From))
}

func TestService_MissingOrgIsEmpty(t *testing.T) {
	f := newFixture()
	f.add("a1", 10, 1)

	res, err := f.svc.Agents(context.Background(), Query{})
	require.NoError(t, err)
	assert.Empty(t, res.Groups)
	assert.Empty(t, f.usage.queries)
}

func TestService_FetchFailureBecomesNotice(t *testing.T) {
	f := newFixture()
	f.usage.err = errors.New("connection refused")

	res, err := f.svc.Agents(context.Background(), query("agents"))
	require.NoError(t, err)
	assert.Empty(t, res.Groups)
	require.Len(t, res.Notices, 1)
	assert.Equal(t, "usage", res.Notices[0].Source)
}

func TestService_SettingsFailureUsesZeroDefaults(t *testing.T) {
	f := newFixture()
	f.add("a1", 10, 1)
	f.settings.err = errors.New("redis down")

	res, err := f.svc.Summary(context.Background(), query("summary"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.KPIs.RevenueImpacted)
	assert.Equal(t, -100.0, res.KPIs.ROI)
	require.Len(t, res.Notices, 1)
	assert.Equal(t, "settings", res.Notices[0].Source)
}

func TestService_AgentsRanking(t *testing.T) {
	f := newFixture()
	f.add("a1", 5, 1)
	f.add("a2", 15, 1)
	f.add("a1", 5, 2)

	res, err := f.svc.Agents(context.Background(), query("agents"))
	require.NoError(t, err)
	require.Len(t, res.Groups, 2)
	assert.Equal(t, "Sales Bot", res.Groups[0].Label)
	assert.Equal(t, "Support Bot", res.Groups[1].Label)

	q := query("agents")
	q.Metric = MetricCount
	res, err = f.svc.Agents(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, "Support Bot", res.Groups[0].Label)
}

func TestService_CategoriesKeepColors(t *testing.T) {
	f := newFixture()
	f.add("a1", 5, 1)

	first, err := f.svc.Categories(context.Background(), query("categories"))
	require.NoError(t, err)
	require.Len(t, first.Groups, 1)
	assert.Equal(t, "#a", first.Groups[0].Color)

	f.add("a2", 50, 1)
	second, err := f.svc.Categories(context.Background(), query("categories"))
	require.NoError(t, err)
	require.Len(t, second.Groups, 2)
	assert.Equal(t, "sales", second.Groups[0].Key)
	assert.Equal(t, "#b", second.Groups[0].Color)
	assert.Equal(t, "#a", second.Groups[1].Color)
}

func TestService_StaleFetchDiscarded(t *testing.T) {
	f := newFixture()
	f.add("a1", 5, 1)
	ctx := context.Background()

	// 同一面板在本次请求完成前又发起了新请求
	f.svc.agents = &hookAgentRepo{fakeAgentRepo: f.agents, hook: func(ctx context.Context) {
		_, err := f.seq.Next(ctx, "org-1:u1:executive:agents")
		require.NoError(t, err)
	}}

	_, err := f.svc.Agents(ctx, query(""))
	assert.ErrorIs(t, err, apperrors.ErrStaleFetch)
}

func TestService_ParallelPanelsOnDefaultView(t *testing.T) {
	f := newFixture()
	f.add("a1", 5, 1)
	f.add("a2", 7, 2)
	ctx := context.Background()

	// 总览加载期间，同一页面的排行与导出相继开始并完成
	var ranking *Ranking
	var rows int
	f.svc.agents = &hookAgentRepo{fakeAgentRepo: f.agents, hook: func(ctx context.Context) {
		var err error
		ranking, err = f.svc.Agents(ctx, query(""))
		require.NoError(t, err)
		exported, err := f.svc.ExportRows(ctx, "agents", query(""))
		require.NoError(t, err)
		rows = len(exported)
	}}

	summary, err := f.svc.Summary(ctx, query(""))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Totals.Count)
	require.NotNil(t, ranking)
	assert.Len(t, ranking.Groups, 2)
	assert.Equal(t, 2, rows)
}

// hookAgentRepo 首次查询智能体时执行 hook，模拟在途期间到达的其他请求
type hookAgentRepo struct {
	*fakeAgentRepo
	hook func(ctx context.Context)
	done bool
}

func (r *hookAgentRepo) ListAll(ctx context.Context, orgID string) ([]*entity.Agent, error) {
	if !r.done {
		r.done = true
		r.hook(ctx)
	}
	return r.fakeAgentRepo.ListAll(ctx, orgID)
}

func TestService_RowCapKeepsNewest(t *testing.T) {
	f := newFixture()
	f.svc.cfg.MaxRows = 2
	f.add("a1", 4, 3)
	f.add("a1", 2, 2)
	f.add("a2", 1, 1)

	res, err := f.svc.Summary(context.Background(), query(""))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Totals.Count)
	assert.Equal(t, 3.0, res.Totals.Cost)
	require.Len(t, res.Notices, 1)
	assert.Equal(t, Notice{Source: "usage", Message: "result truncated at 2 rows"}, res.Notices[0])
	assert.Equal(t, 3, f.usage.queries[0].Limit)
}

func TestService_PreviousWindowFailureFlagsComparison(t *testing.T) {
	f := newFixture()
	f.add("a1", 10, 1)
	f.usage.failCall = 2

	res, err := f.svc.Summary(context.Background(), query(""))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Totals.Count)
	assert.True(t, res.Comparison.BaselineMissing)
	assert.Nil(t, res.Comparison.CostPct)
	assert.Nil(t, res.Comparison.TokensPct)
	assert.Nil(t, res.Comparison.InteractionsPct)
	require.Len(t, res.Notices, 1)
	assert.Equal(t, "usage_previous", res.Notices[0].Source)
}

func TestService_ExportRows(t *testing.T) {
	f := newFixture()
	f.add("a1", 5, 1)
	ctx := context.Background()

	rows, err := f.svc.ExportRows(ctx, "agents", query("export"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "agent", rows[0][0].Key)
	assert.Equal(t, "Support Bot", rows[0][0].Value)

	rows, err = f.svc.ExportRows(ctx, "monthly", query("export"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-06", rows[0][0].Value)

	_, err = f.svc.ExportRows(ctx, "latency", query("export"))
	assert.ErrorIs(t, err, apperrors.ErrUnknownMetric)
}

func TestService_Timings(t *testing.T) {
	f := newFixture()
	f.timings.timings = []*entity.ResponseTiming{{AgentID: "a1"}}

	res, err := f.svc.Timings(context.Background(), query("timings"))
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.False(t, res.Stats.HasData())
}
