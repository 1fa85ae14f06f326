package analytics

import (
	"context"

	"agent-console/pkg/csvutil"
	apperrors "agent-console/pkg/errors"
)

// ExportRows 按导出类型生成 CSV 行。导出使用独立的序号，不会取代同视图的看板面板
func (s *Service) ExportRows(ctx context.Context, kind string, q Query) ([]csvutil.Row, error) {
	panel := "export:" + kind
	switch kind {
	case "agents":
		r, err := s.agentRanking(ctx, q, panel)
		if err != nil {
			return nil, err
		}
		return groupRows("agent", r.Groups), nil
	case "categories":
		r, err := s.categoryBreakdown(ctx, q, panel)
		if err != nil {
			return nil, err
		}
		groups := make([]Group, 0, len(r.Groups))
		for _, g := range r.Groups {
			groups = append(groups, g.Group)
		}
		return groupRows("category", groups), nil
	case "monthly":
		r, err := s.monthlyGrowth(ctx, q, panel)
		if err != nil {
			return nil, err
		}
		rows := make([]csvutil.Row, 0, len(r.Buckets))
		for _, b := range r.Buckets {
			rows = append(rows, csvutil.Row{
				{Key: "month", Value: b.Month},
				{Key: "interactions", Value: b.Interactions},
				{Key: "active_agents", Value: b.ActiveAgents},
			})
		}
		return rows, nil
	case "usage":
		r, err := s.usageDetail(ctx, q, panel)
		if err != nil {
			return nil, err
		}
		rows := make([]csvutil.Row, 0, len(r.Records))
		for _, rec := range r.Records {
			rows = append(rows, csvutil.Row{
				{Key: "created_at", Value: rec.CreatedAt},
				{Key: "agent_id", Value: rec.AgentID},
				{Key: "provider", Value: rec.Provider},
				{Key: "model", Value: rec.Model},
				{Key: "prompt_tokens", Value: rec.PromptTokens},
				{Key: "completion_tokens", Value: rec.CompletionTokens},
				{Key: "total_tokens", Value: rec.TotalTokens},
				{Key: "cost_usd", Value: rec.CostUSD},
				{Key: "cost_estimated", Value: rec.CostEstimated},
			})
		}
		return rows, nil
	}
	return nil, apperrors.ErrUnknownMetric.WithDetail(kind)
}

func groupRows(keyName string, groups []Group) []csvutil.Row {
	rows := make([]csvutil.Row, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, csvutil.Row{
			{Key: keyName, Value: g.Label},
			{Key: "tokens", Value: g.Tokens},
			{Key: "cost_usd", Value: round2(g.Cost)},
			{Key: "interactions", Value: g.Count},
			{Key: "estimated", Value: g.Estimated},
		})
	}
	return rows
}
