// Package analytics 实现执行看板的用量聚合、同比计算、分位数与 KPI 推导
package analytics

import (
	"time"

	apperrors "agent-console/pkg/errors"
)

// WindowSpec 时间窗口请求：显式起止优先于滚动天数
type WindowSpec struct {
	From *time.Time
	To   *time.Time
	Days int
}

// Window 闭区间时间窗口
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// ResolveWindow 解析时间窗口。缺省 To 为 now；缺省 From 时取 To 往前 Days 天。
func ResolveWindow(spec WindowSpec, defaultDays int, now time.Time) (Window, error) {
	to := now
	if spec.To != nil {
		to = *spec.To
	}

	var from time.Time
	switch {
	case spec.From != nil:
		from = *spec.From
	default:
		days := spec.Days
		if days <= 0 {
			days = defaultDays
		}
		from = to.AddDate(0, 0, -days)
	}

	if from.After(to) {
		return Window{}, apperrors.ErrInvalidParam.WithDetail("from must not be after to")
	}
	return Window{From: from.UTC(), To: to.UTC()}, nil
}

// Duration 窗口长度
func (w Window) Duration() time.Duration {
	return w.To.Sub(w.From)
}

// Previous 紧邻的前一窗口：等长、不重叠，结束于当前起点前 1ms
func (w Window) Previous() Window {
	to := w.From.Add(-time.Millisecond)
	return Window{From: to.Add(-w.Duration()), To: to}
}
