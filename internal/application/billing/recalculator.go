package billing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"agent-console/internal/domain/repository"
	"agent-console/pkg/logger"
	"agent-console/pkg/metrics"
	"agent-console/pkg/tracer"
)

// RecalcResult 一次重算的统计
type RecalcResult struct {
	Scanned  int `json:"scanned"`
	Updated  int `json:"updated"`
	Unpriced int `json:"unpriced"`
}

// Recalculator 按价格表回填用量记录成本
type Recalculator struct {
	usage     repository.UsageRepository
	prices    *PriceTable
	batchSize int
}

// NewRecalculator 创建成本重算器
func NewRecalculator(usage repository.UsageRepository, prices *PriceTable, batchSize int) *Recalculator {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &Recalculator{usage: usage, prices: prices, batchSize: batchSize}
}

// Run 按 ID 游标分批重算组织的用量成本，provider 为空表示全部。
// 价格表中没有的模型保持原值不变。
func (r *Recalculator) Run(ctx context.Context, orgID, provider string) (*RecalcResult, error) {
	ctx, span := tracer.Start(ctx, "billing.Recalculator.Run")
	defer span.End()
	span.SetAttributes(attribute.String("org_id", orgID), attribute.String("provider", provider))

	res := &RecalcResult{}
	afterID := ""
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		batch, err := r.usage.ListForRecalc(ctx, orgID, provider, afterID, r.batchSize)
		if err != nil {
			tracer.Fail(span, err)
			metrics.CostRecalcTotal.WithLabelValues("error").Inc()
			return res, fmt.Errorf("failed to load usage batch: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		updates := make([]repository.CostUpdate, 0, len(batch))
		for _, rec := range batch {
			res.Scanned++
			price, ok := r.prices.Lookup(rec.Provider, rec.Model)
			if !ok {
				res.Unpriced++
				continue
			}
			cost := Cost(price, rec.PromptTokens, rec.CompletionTokens)
			if cost == rec.CostUSD && !rec.CostEstimated {
				continue
			}
			updates = append(updates, repository.CostUpdate{ID: rec.ID, CostUSD: cost})
			metrics.CostRecalcRows.WithLabelValues(rec.Provider).Inc()
		}

		if err := r.usage.UpdateCosts(ctx, updates); err != nil {
			tracer.Fail(span, err)
			metrics.CostRecalcTotal.WithLabelValues("error").Inc()
			return res, fmt.Errorf("failed to update usage costs: %w", err)
		}
		res.Updated += len(updates)
		afterID = batch[len(batch)-1].ID

		if len(batch) < r.batchSize {
			break
		}
	}

	metrics.CostRecalcTotal.WithLabelValues("ok").Inc()
	logger.Info(ctx, "cost recalculation finished",
		"org_id", orgID,
		"provider", provider,
		"scanned", res.Scanned,
		"updated", res.Updated,
		"unpriced", res.Unpriced,
	)
	return res, nil
}
