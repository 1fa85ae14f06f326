package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"agent-console/internal/application/analytics"
	"agent-console/internal/interfaces/http/dto"
	"agent-console/internal/interfaces/http/middleware"
	"agent-console/pkg/csvutil"
	"agent-console/pkg/logger"
	"agent-console/pkg/metrics"
)

// DashboardService 看板分析服务
type DashboardService interface {
	Usage(ctx context.Context, q analytics.Query) (*analytics.UsageResult, error)
	Timings(ctx context.Context, q analytics.Query) (*analytics.TimingResult, error)
	Outcomes(ctx context.Context, q analytics.Query) (*analytics.OutcomeResult, error)
	Summary(ctx context.Context, q analytics.Query) (*analytics.Summary, error)
	Agents(ctx context.Context, q analytics.Query) (*analytics.Ranking, error)
	Categories(ctx context.Context, q analytics.Query) (*analytics.CategoryBreakdown, error)
	Monthly(ctx context.Context, q analytics.Query) (*analytics.Growth, error)
	ExportRows(ctx context.Context, kind string, q analytics.Query) ([]csvutil.Row, error)
}

// DashboardHandler 用量查询、执行看板与 CSV 导出
type DashboardHandler struct {
	svc DashboardService
	now func() time.Time
}

// NewDashboardHandler 创建看板处理器
func NewDashboardHandler(svc DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc, now: time.Now}
}

// query 解析公共查询参数，失败时已写出响应
func (h *DashboardHandler) query(c *gin.Context) (analytics.Query, bool) {
	q, err := dto.BindDashboardQuery(c, middleware.GetOrgIDFromGin(c), middleware.GetUserIDFromGin(c))
	if err != nil {
		dto.AppError(c, err)
		return analytics.Query{}, false
	}
	return q, true
}

// serve 执行查询并按统一信封输出
func serve[T any](h *DashboardHandler, c *gin.Context, source string, fn func(ctx context.Context, q analytics.Query) (T, error)) {
	q, ok := h.query(c)
	if !ok {
		return
	}
	ctx := logger.WithContext(c.Request.Context(), logger.ViewKey, q.View)
	res, err := fn(ctx, q)
	if err != nil {
		metrics.DashboardFetchTotal.WithLabelValues(source, "error").Inc()
		respondError(c, "dashboard query failed", err)
		return
	}
	dto.Success(c, res)
}

// Usage 用量明细
// @Summary 用量明细
// @Description 按窗口与本地过滤条件返回用量记录与合计
// @Tags Usage
// @Produce json
// @Param from query string false "起始时间（RFC3339 或 YYYY-MM-DD）"
// @Param to query string false "结束时间"
// @Param days query int false "滚动天数"
// @Param agent_id query string false "智能体"
// @Param category query string false "类别"
// @Param provider query string false "供应商"
// @Param model query string false "模型（子串匹配）"
// @Param include_estimated query bool false "包含估算成本" default(true)
// @Success 200 {object} dto.Response[analytics.UsageResult]
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/v1/usage [get]
func (h *DashboardHandler) Usage(c *gin.Context) {
	serve(h, c, "usage", h.svc.Usage)
}

// Timings 响应耗时明细与分位数
// @Summary 响应耗时
// @Tags Usage
// @Produce json
// @Success 200 {object} dto.Response[analytics.TimingResult]
// @Router /api/v1/usage/timings [get]
func (h *DashboardHandler) Timings(c *gin.Context) {
	serve(h, c, "timings", h.svc.Timings)
}

// Outcomes 会话结果与解决率
// @Summary 会话结果
// @Tags Usage
// @Produce json
// @Success 200 {object} dto.Response[analytics.OutcomeResult]
// @Router /api/v1/usage/outcomes [get]
func (h *DashboardHandler) Outcomes(c *gin.Context) {
	serve(h, c, "outcomes", h.svc.Outcomes)
}

// Summary 执行看板汇总
// @Summary 执行看板汇总
// @Description 合计、环比、KPI、耗时分位数、解决率与提示
// @Tags Dashboard
// @Produce json
// @Param view query string false "视图名" default(executive)
// @Success 200 {object} dto.Response[analytics.Summary]
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/v1/dashboard/summary [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	serve(h, c, "summary", h.svc.Summary)
}

// Agents 智能体排行
// @Summary 智能体排行
// @Tags Dashboard
// @Produce json
// @Param metric query string false "cost|tokens|count" default(cost)
// @Success 200 {object} dto.Response[analytics.Ranking]
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/dashboard/agents [get]
func (h *DashboardHandler) Agents(c *gin.Context) {
	serve(h, c, "agents", h.svc.Agents)
}

// Categories 类别分布
// @Summary 类别分布
// @Tags Dashboard
// @Produce json
// @Param metric query string false "cost|tokens|count" default(cost)
// @Success 200 {object} dto.Response[analytics.CategoryBreakdown]
// @Router /api/v1/dashboard/categories [get]
func (h *DashboardHandler) Categories(c *gin.Context) {
	serve(h, c, "categories", h.svc.Categories)
}

// Monthly 月度增长
// @Summary 月度增长
// @Tags Dashboard
// @Produce json
// @Success 200 {object} dto.Response[analytics.Growth]
// @Router /api/v1/dashboard/monthly [get]
func (h *DashboardHandler) Monthly(c *gin.Context) {
	serve(h, c, "monthly", h.svc.Monthly)
}

// Export 导出 CSV
// @Summary 导出 CSV
// @Tags Export
// @Produce text/csv
// @Param metric path string true "agents|categories|monthly|usage"
// @Success 200 {string} string "CSV"
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/export/{metric} [get]
func (h *DashboardHandler) Export(c *gin.Context) {
	q, ok := h.query(c)
	if !ok {
		return
	}
	metric := c.Param("metric")

	rows, err := h.svc.ExportRows(c.Request.Context(), metric, q)
	if err != nil {
		metrics.DashboardFetchTotal.WithLabelValues("export", "error").Inc()
		respondError(c, "export failed", err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+csvutil.Filename(metric, h.now())+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(csvutil.Encode(rows)))
}
