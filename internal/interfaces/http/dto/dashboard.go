package dto

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"agent-console/internal/application/analytics"
	apperrors "agent-console/pkg/errors"
)

// DefaultView 缺省看板视图名
const DefaultView = "executive"

const dateLayout = "2006-01-02"

// DashboardQuery 看板查询参数
type DashboardQuery struct {
	From             string `form:"from"`
	To               string `form:"to"`
	Days             string `form:"days"`
	AgentID          string `form:"agent_id"`
	Category         string `form:"category"`
	Provider         string `form:"provider"`
	Model            string `form:"model"`
	IncludeEstimated string `form:"include_estimated"`
	Metric           string `form:"metric"`
	View             string `form:"view"`
}

// BindDashboardQuery 绑定并转换看板查询参数。
// from/to 接受 RFC3339 或 YYYY-MM-DD；仅日期的 to 取当日结束时刻。
// days 无法解析时视为未指定；include_estimated 默认 true。
func BindDashboardQuery(c *gin.Context, orgID, userID string) (analytics.Query, error) {
	var raw DashboardQuery
	if err := c.ShouldBindQuery(&raw); err != nil {
		return analytics.Query{}, apperrors.ErrInvalidParam.WithDetail(err.Error())
	}
	return raw.ToQuery(orgID, userID)
}

// ToQuery 转换为分析服务查询
func (q DashboardQuery) ToQuery(orgID, userID string) (analytics.Query, error) {
	from, err := parseTime(q.From, false)
	if err != nil {
		return analytics.Query{}, apperrors.ErrInvalidParam.WithDetail("invalid from: " + q.From)
	}
	to, err := parseTime(q.To, true)
	if err != nil {
		return analytics.Query{}, apperrors.ErrInvalidParam.WithDetail("invalid to: " + q.To)
	}
	metric, err := analytics.ParseMetric(strings.ToLower(strings.TrimSpace(q.Metric)))
	if err != nil {
		return analytics.Query{}, apperrors.ErrUnknownMetric.WithDetail(err.Error())
	}

	view := strings.TrimSpace(q.View)
	if view == "" {
		view = DefaultView
	}

	return analytics.Query{
		OrgID:   orgID,
		UserID:  userID,
		View:    view,
		Window:  analytics.WindowSpec{From: from, To: to, Days: LenientInt(q.Days)},
		AgentID: strings.TrimSpace(q.AgentID),
		Filter: analytics.Filter{
			Category:         strings.TrimSpace(q.Category),
			Provider:         strings.TrimSpace(q.Provider),
			Model:            strings.TrimSpace(q.Model),
			IncludeEstimated: LenientBool(q.IncludeEstimated, true),
		},
		Metric: metric,
	}, nil
}

func parseTime(s string, endOfDay bool) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Millisecond)
	}
	return &t, nil
}
