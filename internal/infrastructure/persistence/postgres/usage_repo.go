// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"agent-console/internal/domain/entity"
	"agent-console/internal/domain/repository"
)

// applyUsageQuery 追加组织、时间闭区间与智能体条件。按时间倒序，
// 截断时保留最新的行，调用方读取后需反转为升序
func applyUsageQuery(db *gorm.DB, q repository.UsageQuery) *gorm.DB {
	db = db.Where("org_id = ? AND created_at >= ?", q.OrgID, q.From)
	if q.To != nil {
		db = db.Where("created_at <= ?", *q.To)
	}
	if q.AgentID != "" {
		db = db.Where("agent_id = ?", q.AgentID)
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}
	return db.Order("created_at DESC")
}

// recalcQuery 按 ID 游标读取，供应商匹配与看板过滤一致，不区分大小写
func recalcQuery(db *gorm.DB, orgID, provider, afterID string, limit int) *gorm.DB {
	db = db.Where("org_id = ?", orgID)
	if provider != "" {
		db = db.Where("LOWER(provider) = LOWER(?)", provider)
	}
	if afterID != "" {
		db = db.Where("id > ?", afterID)
	}
	return db.Order("id ASC").Limit(limit)
}

// UsageRepository 用量记录仓储实现
type UsageRepository struct {
	client *Client
}

// NewUsageRepository 创建用量记录仓储
func NewUsageRepository(client *Client) *UsageRepository {
	return &UsageRepository{client: client}
}

// Create 写入用量记录
func (r *UsageRepository) Create(ctx context.Context, record *entity.UsageRecord) error {
	ctx, span := tracer.Start(ctx, "postgres.UsageRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(record).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create usage record: %w", err)
	}
	return nil
}

// List 查询窗口内的用量记录
func (r *UsageRepository) List(ctx context.Context, q repository.UsageQuery) ([]*entity.UsageRecord, error) {
	ctx, span := tracer.Start(ctx, "postgres.UsageRepository.List")
	defer span.End()
	span.SetAttributes(attribute.String("org_id", q.OrgID))

	db := getDB(ctx, r.client.db)
	var records []*entity.UsageRecord
	if err := applyUsageQuery(db.Model(&entity.UsageRecord{}), q).Find(&records).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list usage records: %w", err)
	}
	slices.Reverse(records)
	span.SetAttributes(attribute.Int("rows", len(records)))
	return records, nil
}

// ListForRecalc 按 ID 游标分批读取
func (r *UsageRepository) ListForRecalc(ctx context.Context, orgID, provider, afterID string, limit int) ([]*entity.UsageRecord, error) {
	ctx, span := tracer.Start(ctx, "postgres.UsageRepository.ListForRecalc")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var records []*entity.UsageRecord
	if err := recalcQuery(db.Model(&entity.UsageRecord{}), orgID, provider, afterID, limit).Find(&records).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list usage records for recalc: %w", err)
	}
	return records, nil
}

// UpdateCosts 批量回填成本，在同一事务内逐行更新
func (r *UsageRepository) UpdateCosts(ctx context.Context, updates []repository.CostUpdate) error {
	ctx, span := tracer.Start(ctx, "postgres.UsageRepository.UpdateCosts")
	defer span.End()
	span.SetAttributes(attribute.Int("rows", len(updates)))

	if len(updates) == 0 {
		return nil
	}

	db := getDB(ctx, r.client.db)
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			if err := tx.Model(&entity.UsageRecord{}).
				Where("id = ?", u.ID).
				Updates(map[string]any{"cost_usd": u.CostUSD, "cost_estimated": u.Estimated}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update usage costs: %w", err)
	}
	return nil
}

// TimingRepository 响应耗时仓储实现
type TimingRepository struct {
	client *Client
}

// NewTimingRepository 创建响应耗时仓储
func NewTimingRepository(client *Client) *TimingRepository {
	return &TimingRepository{client: client}
}

// Create 写入耗时记录
func (r *TimingRepository) Create(ctx context.Context, timing *entity.ResponseTiming) error {
	ctx, span := tracer.Start(ctx, "postgres.TimingRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(timing).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create response timing: %w", err)
	}
	return nil
}

// List 查询窗口内 duration_ms 非空的耗时记录
func (r *TimingRepository) List(ctx context.Context, q repository.UsageQuery) ([]*entity.ResponseTiming, error) {
	ctx, span := tracer.Start(ctx, "postgres.TimingRepository.List")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var timings []*entity.ResponseTiming
	query := applyUsageQuery(db.Model(&entity.ResponseTiming{}).Where("duration_ms IS NOT NULL"), q)
	if err := query.Find(&timings).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list response timings: %w", err)
	}
	slices.Reverse(timings)
	return timings, nil
}

// OutcomeRepository 会话结果仓储实现
type OutcomeRepository struct {
	client *Client
}

// NewOutcomeRepository 创建会话结果仓储
func NewOutcomeRepository(client *Client) *OutcomeRepository {
	return &OutcomeRepository{client: client}
}

// List 查询窗口内的会话结果
func (r *OutcomeRepository) List(ctx context.Context, q repository.UsageQuery) ([]*entity.ConversationOutcome, error) {
	ctx, span := tracer.Start(ctx, "postgres.OutcomeRepository.List")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var outcomes []*entity.ConversationOutcome
	if err := applyUsageQuery(db.Model(&entity.ConversationOutcome{}), q).Find(&outcomes).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list conversation outcomes: %w", err)
	}
	slices.Reverse(outcomes)
	return outcomes, nil
}
