package analytics

import (
	"context"
	"fmt"

	"agent-console/internal/domain/repository"
	"agent-console/pkg/logger"
	"agent-console/pkg/metrics"
)

// Ticket 一次看板请求的序号凭证
type Ticket struct {
	Key   string
	View  string
	Panel string
	Seq   uint64
}

// FetchGuard 为每个视图下的每个面板分配单调序号，完成时丢弃被同一面板更新请求取代的结果。
// 同一页面并行加载的不同面板互不影响。
type FetchGuard struct {
	seq repository.FetchSequencer
}

// NewFetchGuard 创建请求序号守卫
func NewFetchGuard(seq repository.FetchSequencer) *FetchGuard {
	return &FetchGuard{seq: seq}
}

// Begin 分配序号。序号存储不可用时返回零值凭证，Latest 不会丢弃其结果
func (g *FetchGuard) Begin(ctx context.Context, orgID, userID, view, panel string) Ticket {
	t := Ticket{Key: fmt.Sprintf("%s:%s:%s:%s", orgID, userID, view, panel), View: view, Panel: panel}
	n, err := g.seq.Next(ctx, t.Key)
	if err != nil {
		logger.Warn(ctx, "fetch sequence unavailable", "view", view, "panel", panel, "error", err.Error())
		return t
	}
	t.Seq = n
	return t
}

// Latest 判断凭证是否仍是该面板最新的请求
func (g *FetchGuard) Latest(ctx context.Context, t Ticket) bool {
	if t.Seq == 0 {
		return true
	}
	cur, err := g.seq.Current(ctx, t.Key)
	if err != nil {
		logger.Warn(ctx, "fetch sequence unavailable", "view", t.View, "panel", t.Panel, "error", err.Error())
		return true
	}
	if cur > t.Seq {
		metrics.StaleFetchDiscarded.WithLabelValues(t.View).Inc()
		return false
	}
	return true
}
