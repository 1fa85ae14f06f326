package analytics

import (
	"context"
	"fmt"
	"time"

	"agent-console/internal/config"
	"agent-console/internal/domain/entity"
	"agent-console/internal/domain/repository"
	apperrors "agent-console/pkg/errors"
	"agent-console/pkg/logger"
	"agent-console/pkg/metrics"
	"agent-console/pkg/tracer"
)

// SettingsProvider 有效业务参数查询
type SettingsProvider interface {
	Effective(ctx context.Context, orgID, agentID, category string) (ParameterSet, error)
}

// Notice 非致命提示，数据源失败时返回给前端展示
type Notice struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

// Query 看板请求
type Query struct {
	OrgID   string
	UserID  string
	View    string
	Window  WindowSpec
	AgentID string
	Filter  Filter
	Metric  Metric
}

// Service 执行看板服务
type Service struct {
	usage    repository.UsageRepository
	timings  repository.TimingRepository
	outcomes repository.OutcomeRepository
	agents   repository.AgentRepository
	settings SettingsProvider
	colors   *ColorAssigner
	guard    *FetchGuard
	cfg      config.AnalyticsConfig
	now      func() time.Time
}

// NewService 创建看板服务
func NewService(
	usage repository.UsageRepository,
	timings repository.TimingRepository,
	outcomes repository.OutcomeRepository,
	agents repository.AgentRepository,
	settings SettingsProvider,
	colors *ColorAssigner,
	guard *FetchGuard,
	cfg config.AnalyticsConfig,
) *Service {
	return &Service{
		usage:    usage,
		timings:  timings,
		outcomes: outcomes,
		agents:   agents,
		settings: settings,
		colors:   colors,
		guard:    guard,
		cfg:      cfg,
		now:      time.Now,
	}
}

// session 单次请求内的共享状态
type session struct {
	q       Query
	window  Window
	ticket  Ticket
	dir     *AgentDirectory
	notices []Notice
	started time.Time
}

func (s *session) notify(source, msg string) {
	s.notices = append(s.notices, Notice{Source: source, Message: msg})
}

// begin 解析窗口、按面板分配序号、加载智能体查找表。组织缺失时返回 nil 会话
func (s *Service) begin(ctx context.Context, q Query, panel string) (*session, error) {
	if q.OrgID == "" {
		return nil, nil
	}
	if q.View == "" {
		q.View = "executive"
	}
	w, err := ResolveWindow(q.Window, s.cfg.DefaultDays, s.now())
	if err != nil {
		return nil, err
	}

	sess := &session{q: q, window: w, started: time.Now()}
	sess.ticket = s.guard.Begin(ctx, q.OrgID, q.UserID, q.View, panel)

	agents, err := s.agents.ListAll(ctx, q.OrgID)
	if err != nil {
		logger.Warn(ctx, "agent lookup unavailable", "error", err.Error())
		sess.notify("agents", "agent directory unavailable; categories shown as "+s.otherCategory())
	}
	sess.dir = NewAgentDirectory(agents, s.otherCategory())
	return sess, nil
}

// finish 检查序号并记录耗时，结果已过期时返回 ErrStaleFetch
func (s *Service) finish(ctx context.Context, sess *session) error {
	metrics.DashboardBuildDuration.WithLabelValues(sess.ticket.Panel).Observe(time.Since(sess.started).Seconds())
	if !s.guard.Latest(ctx, sess.ticket) {
		logger.Info(ctx, "discarding superseded dashboard response",
			"view", sess.q.View, "panel", sess.ticket.Panel, "seq", sess.ticket.Seq)
		return apperrors.ErrStaleFetch
	}
	return nil
}

func (s *Service) otherCategory() string {
	if s.cfg.OtherCategory == "" {
		return DefaultOtherCategory
	}
	return s.cfg.OtherCategory
}

// usageQuery 多取一行用于判断是否超过行数上限
func (s *Service) usageQuery(sess *session, w Window) repository.UsageQuery {
	to := w.To
	q := repository.UsageQuery{
		OrgID:   sess.q.OrgID,
		From:    w.From,
		To:      &to,
		AgentID: sess.q.AgentID,
	}
	if s.cfg.MaxRows > 0 {
		q.Limit = s.cfg.MaxRows + 1
	}
	return q
}

// capRows 超过上限时保留最新的 MaxRows 行并追加截断提示。rows 按时间升序
func capRows[T any](s *Service, sess *session, source string, rows []T) []T {
	if s.cfg.MaxRows <= 0 || len(rows) <= s.cfg.MaxRows {
		return rows
	}
	sess.notify(source, fmt.Sprintf("result truncated at %d rows", s.cfg.MaxRows))
	return rows[len(rows)-s.cfg.MaxRows:]
}

// fetchUsage 拉取并过滤用量，失败时降级为空集合、追加提示并返回 false
func (s *Service) fetchUsage(ctx context.Context, sess *session, w Window, source string) ([]*entity.UsageRecord, bool) {
	ctx, span := tracer.Start(ctx, "analytics.fetchUsage")
	defer span.End()

	records, err := s.usage.List(ctx, s.usageQuery(sess, w))
	if err != nil {
		tracer.Fail(span, err)
		logger.Error(ctx, "failed to fetch usage", err, "source", source)
		metrics.DashboardFetchTotal.WithLabelValues(source, "degraded").Inc()
		sess.notify(source, "usage data could not be loaded")
		return nil, false
	}
	metrics.DashboardFetchTotal.WithLabelValues(source, "ok").Inc()
	records = capRows(s, sess, source, records)
	filtered := sess.q.Filter.ApplyUsage(records, sess.dir)
	metrics.DashboardRowsAggregated.WithLabelValues(sess.q.View).Observe(float64(len(filtered)))
	return filtered, true
}

func (s *Service) currentUsage(ctx context.Context, sess *session) []*entity.UsageRecord {
	records, _ := s.fetchUsage(ctx, sess, sess.window, "usage")
	return records
}

func (s *Service) fetchTimings(ctx context.Context, sess *session) []*entity.ResponseTiming {
	ctx, span := tracer.Start(ctx, "analytics.fetchTimings")
	defer span.End()

	timings, err := s.timings.List(ctx, s.usageQuery(sess, sess.window))
	if err != nil {
		tracer.Fail(span, err)
		logger.Error(ctx, "failed to fetch response timings", err)
		metrics.DashboardFetchTotal.WithLabelValues("timing", "degraded").Inc()
		sess.notify("timings", "response time data could not be loaded")
		return nil
	}
	metrics.DashboardFetchTotal.WithLabelValues("timing", "ok").Inc()
	return sess.q.Filter.ApplyTimings(capRows(s, sess, "timings", timings), sess.dir)
}

func (s *Service) fetchOutcomes(ctx context.Context, sess *session) []*entity.ConversationOutcome {
	ctx, span := tracer.Start(ctx, "analytics.fetchOutcomes")
	defer span.End()

	outcomes, err := s.outcomes.List(ctx, s.usageQuery(sess, sess.window))
	if err != nil {
		tracer.Fail(span, err)
		logger.Error(ctx, "failed to fetch outcomes", err)
		metrics.DashboardFetchTotal.WithLabelValues("outcome", "degraded").Inc()
		sess.notify("outcomes", "outcome data could not be loaded")
		return nil
	}
	metrics.DashboardFetchTotal.WithLabelValues("outcome", "ok").Inc()
	return sess.q.Filter.ApplyOutcomes(capRows(s, sess, "outcomes", outcomes), sess.dir)
}

// UsageResult 用量明细
type UsageResult struct {
	Window  Window                `json:"window"`
	Records []*entity.UsageRecord `json:"records"`
	Totals  Totals                `json:"totals"`
	Notices []Notice              `json:"notices"`
}

// Usage 返回过滤后的用量明细
func (s *Service) Usage(ctx context.Context, q Query) (*UsageResult, error) {
	return s.usageDetail(ctx, q, "usage")
}

func (s *Service) usageDetail(ctx context.Context, q Query, panel string) (*UsageResult, error) {
	sess, err := s.begin(ctx, q, panel)
	if err != nil || sess == nil {
		return &UsageResult{Records: []*entity.UsageRecord{}}, err
	}
	records := s.currentUsage(ctx, sess)
	if records == nil {
		records = []*entity.UsageRecord{}
	}
	res := &UsageResult{Window: sess.window, Records: records, Totals: Summarize(records), Notices: sess.notices}
	return res, s.finish(ctx, sess)
}

// TimingResult 耗时明细与分位数
type TimingResult struct {
	Window  Window                   `json:"window"`
	Records []*entity.ResponseTiming `json:"records"`
	Stats   DurationStats            `json:"stats"`
	Notices []Notice                 `json:"notices"`
}

// Timings 返回耗时明细与均值/P50/P95
func (s *Service) Timings(ctx context.Context, q Query) (*TimingResult, error) {
	sess, err := s.begin(ctx, q, "timings")
	if err != nil || sess == nil {
		return &TimingResult{Records: []*entity.ResponseTiming{}}, err
	}
	timings := s.fetchTimings(ctx, sess)
	if timings == nil {
		timings = []*entity.ResponseTiming{}
	}
	res := &TimingResult{Window: sess.window, Records: timings, Stats: SummarizeDurations(durations(timings)), Notices: sess.notices}
	return res, s.finish(ctx, sess)
}

func durations(timings []*entity.ResponseTiming) []float64 {
	out := make([]float64, 0, len(timings))
	for _, t := range timings {
		if t.DurationMs != nil {
			out = append(out, *t.DurationMs)
		}
	}
	return out
}

// OutcomeStats 会话解决率
type OutcomeStats struct {
	Total    int      `json:"total"`
	Resolved int      `json:"resolved"`
	Rate     *float64 `json:"resolution_rate_pct"`
}

// SummarizeOutcomes 统计解决率，无样本时 Rate 为 nil
func SummarizeOutcomes(outcomes []*entity.ConversationOutcome) OutcomeStats {
	var st OutcomeStats
	for _, o := range outcomes {
		st.Total++
		if o.Resolved {
			st.Resolved++
		}
	}
	if st.Total > 0 {
		rate := round1(float64(st.Resolved) / float64(st.Total) * 100)
		st.Rate = &rate
	}
	return st
}

// OutcomeResult 会话结果明细
type OutcomeResult struct {
	Window  Window                        `json:"window"`
	Records []*entity.ConversationOutcome `json:"records"`
	Stats   OutcomeStats                  `json:"stats"`
	Notices []Notice                      `json:"notices"`
}

// Outcomes 返回会话结果与解决率
func (s *Service) Outcomes(ctx context.Context, q Query) (*OutcomeResult, error) {
	sess, err := s.begin(ctx, q, "outcomes")
	if err != nil || sess == nil {
		return &OutcomeResult{Records: []*entity.ConversationOutcome{}}, err
	}
	outcomes := s.fetchOutcomes(ctx, sess)
	if outcomes == nil {
		outcomes = []*entity.ConversationOutcome{}
	}
	res := &OutcomeResult{Window: sess.window, Records: outcomes, Stats: SummarizeOutcomes(outcomes), Notices: sess.notices}
	return res, s.finish(ctx, sess)
}

// Summary 执行看板总览
type Summary struct {
	Window     Window        `json:"window"`
	Totals     Totals        `json:"totals"`
	Comparison Comparison    `json:"comparison"`
	Parameters ParameterSet  `json:"parameters"`
	KPIs       KPIs          `json:"kpis"`
	Timing     DurationStats `json:"timing"`
	Outcomes   OutcomeStats  `json:"outcomes"`
	Notices    []Notice      `json:"notices"`
}

// Summary 汇总本期与上期用量、业务参数、KPI、耗时分位数与解决率
func (s *Service) Summary(ctx context.Context, q Query) (*Summary, error) {
	ctx, span := tracer.Start(ctx, "analytics.Summary")
	defer span.End()

	sess, err := s.begin(ctx, q, "summary")
	if err != nil || sess == nil {
		return &Summary{}, err
	}

	current := Summarize(s.currentUsage(ctx, sess))
	prevWindow := sess.window.Previous()
	prevRecords, prevOK := s.fetchUsage(ctx, sess, prevWindow, "usage_previous")
	comparison := MissingBaseline(prevWindow)
	if prevOK {
		comparison = Compare(current, Summarize(prevRecords), prevWindow)
	}

	params, err := s.settings.Effective(ctx, q.OrgID, q.AgentID, q.Filter.Category)
	if err != nil {
		logger.Error(ctx, "failed to resolve business settings", err)
		sess.notify("settings", "business parameters unavailable; KPIs use zero defaults")
		params = ParameterSet{}
	}

	res := &Summary{
		Window:     sess.window,
		Totals:     current,
		Comparison: comparison,
		Parameters: params,
		KPIs:       DeriveKPIs(current, params.OrZero()).Rounded(),
		Timing:     SummarizeDurations(durations(s.fetchTimings(ctx, sess))),
		Outcomes:   SummarizeOutcomes(s.fetchOutcomes(ctx, sess)),
	}
	res.Notices = sess.notices
	return res, s.finish(ctx, sess)
}

// Ranking 智能体排行
type Ranking struct {
	Window  Window   `json:"window"`
	Metric  Metric   `json:"metric"`
	Groups  []Group  `json:"groups"`
	Notices []Notice `json:"notices"`
}

// Agents 按智能体排行
func (s *Service) Agents(ctx context.Context, q Query) (*Ranking, error) {
	return s.agentRanking(ctx, q, "agents")
}

func (s *Service) agentRanking(ctx context.Context, q Query, panel string) (*Ranking, error) {
	sess, err := s.begin(ctx, q, panel)
	if err != nil || sess == nil {
		return &Ranking{Metric: q.Metric, Groups: []Group{}}, err
	}
	groups := ByAgent(s.currentUsage(ctx, sess), sess.dir, q.Metric)
	res := &Ranking{Window: sess.window, Metric: q.Metric, Groups: groups, Notices: sess.notices}
	return res, s.finish(ctx, sess)
}

// CategoryGroup 带配色的类别分组
type CategoryGroup struct {
	Group
	Color string `json:"color"`
}

// CategoryBreakdown 类别分布
type CategoryBreakdown struct {
	Window  Window          `json:"window"`
	Metric  Metric          `json:"metric"`
	Groups  []CategoryGroup `json:"groups"`
	Notices []Notice        `json:"notices"`
}

// Categories 按类别聚合并附加持久化配色
func (s *Service) Categories(ctx context.Context, q Query) (*CategoryBreakdown, error) {
	return s.categoryBreakdown(ctx, q, "categories")
}

func (s *Service) categoryBreakdown(ctx context.Context, q Query, panel string) (*CategoryBreakdown, error) {
	sess, err := s.begin(ctx, q, panel)
	if err != nil || sess == nil {
		return &CategoryBreakdown{Metric: q.Metric, Groups: []CategoryGroup{}}, err
	}
	records := s.currentUsage(ctx, sess)
	groups := ByCategory(records, sess.dir, q.Metric)

	// 按记录中首次出现的顺序分配颜色，与展示排序无关
	colors, err := s.colors.Assign(ctx, q.OrgID, CategoriesInOrder(records, sess.dir))
	if err != nil {
		logger.Error(ctx, "failed to assign category colors", err)
		sess.notify("colors", "category colors unavailable")
		colors = map[string]string{}
	}

	out := make([]CategoryGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, CategoryGroup{Group: g, Color: colors[g.Key]})
	}
	res := &CategoryBreakdown{Window: sess.window, Metric: q.Metric, Groups: out, Notices: sess.notices}
	return res, s.finish(ctx, sess)
}

// CategoriesInOrder 按首次出现顺序返回去重后的类别
func CategoriesInOrder(records []*entity.UsageRecord, dir *AgentDirectory) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range records {
		c := dir.Category(r.AgentID)
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Growth 月度增长
type Growth struct {
	Window  Window        `json:"window"`
	Buckets []MonthBucket `json:"buckets"`
	Notices []Notice      `json:"notices"`
}

// Monthly 月度交互数与活跃智能体数
func (s *Service) Monthly(ctx context.Context, q Query) (*Growth, error) {
	return s.monthlyGrowth(ctx, q, "monthly")
}

func (s *Service) monthlyGrowth(ctx context.Context, q Query, panel string) (*Growth, error) {
	sess, err := s.begin(ctx, q, panel)
	if err != nil || sess == nil {
		return &Growth{Buckets: []MonthBucket{}}, err
	}
	res := &Growth{Window: sess.window, Buckets: Monthly(s.currentUsage(ctx, sess)), Notices: sess.notices}
	return res, s.finish(ctx, sess)
}
