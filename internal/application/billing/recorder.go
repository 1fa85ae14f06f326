package billing

import (
	"context"
	"fmt"
	"strings"

	"agent-console/internal/domain/entity"
	"agent-console/internal/domain/repository"
	"agent-console/internal/domain/service"
	"agent-console/pkg/logger"
)

// UsageRecorder 将一次 LLM 调用写入用量与耗时表
type UsageRecorder struct {
	usage   repository.UsageRepository
	timings repository.TimingRepository
	prices  *PriceTable
}

// NewUsageRecorder 创建用量记录器
func NewUsageRecorder(usage repository.UsageRepository, timings repository.TimingRepository, prices *PriceTable) *UsageRecorder {
	return &UsageRecorder{usage: usage, timings: timings, prices: prices}
}

// Record 写入用量。价格表有该模型时成本为精确值，否则记 0 并标记为估算
func (r *UsageRecorder) Record(ctx context.Context, in service.LLMUsageInput) error {
	if r == nil || r.usage == nil {
		return nil
	}
	orgID := strings.TrimSpace(in.OrgID)
	if orgID == "" {
		return nil
	}
	if in.PromptTokens < 0 || in.CompletionTokens < 0 {
		return fmt.Errorf("invalid token usage")
	}

	rec := &entity.UsageRecord{
		OrgID:            orgID,
		AgentID:          in.AgentID,
		Provider:         strings.TrimSpace(in.Provider),
		Model:            strings.TrimSpace(in.Model),
		PromptTokens:     int64(in.PromptTokens),
		CompletionTokens: int64(in.CompletionTokens),
		TotalTokens:      int64(in.PromptTokens + in.CompletionTokens),
		CostEstimated:    true,
	}
	if price, ok := r.prices.Lookup(rec.Provider, rec.Model); ok {
		rec.CostUSD = Cost(price, rec.PromptTokens, rec.CompletionTokens)
		rec.CostEstimated = false
	}
	if err := r.usage.Create(ctx, rec); err != nil {
		logger.Warn(ctx, "failed to record llm usage", "provider", rec.Provider, "error", err.Error())
		return err
	}

	if r.timings != nil && in.DurationMs > 0 {
		d := float64(in.DurationMs)
		timing := &entity.ResponseTiming{
			OrgID:      orgID,
			AgentID:    in.AgentID,
			Provider:   rec.Provider,
			Model:      rec.Model,
			DurationMs: &d,
		}
		if err := r.timings.Create(ctx, timing); err != nil {
			logger.Warn(ctx, "failed to record response timing", "provider", rec.Provider, "error", err.Error())
		}
	}
	return nil
}
