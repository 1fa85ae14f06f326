// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"agent-console/internal/domain/entity"
)

// SettingRepository 业务参数仓储实现
type SettingRepository struct {
	client *Client
}

// NewSettingRepository 创建业务参数仓储
func NewSettingRepository(client *Client) *SettingRepository {
	return &SettingRepository{client: client}
}

// ListCandidates 一次查询取回组织、类别、智能体三个作用域的候选行
func (r *SettingRepository) ListCandidates(ctx context.Context, orgID, agentID, category string) ([]*entity.BusinessSetting, error) {
	ctx, span := tracer.Start(ctx, "postgres.SettingRepository.ListCandidates")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Where("org_id = ?", orgID)

	cond := db.Where("scope = ?", entity.SettingScopeOrg)
	if category != "" {
		cond = cond.Or("scope = ? AND scope_key = ?", entity.SettingScopeCategory, category)
	}
	if agentID != "" {
		cond = cond.Or("scope = ? AND scope_key = ?", entity.SettingScopeAgent, agentID)
	}

	var settings []*entity.BusinessSetting
	if err := query.Where(cond).Find(&settings).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list setting candidates: %w", err)
	}
	return settings, nil
}

// List 获取组织下全部参数行
func (r *SettingRepository) List(ctx context.Context, orgID string) ([]*entity.BusinessSetting, error) {
	ctx, span := tracer.Start(ctx, "postgres.SettingRepository.List")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var settings []*entity.BusinessSetting
	if err := db.Where("org_id = ?", orgID).Order("scope ASC, scope_key ASC").Find(&settings).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	return settings, nil
}

// Upsert 按唯一键冲突时覆盖四个参数字段
func (r *SettingRepository) Upsert(ctx context.Context, setting *entity.BusinessSetting) error {
	ctx, span := tracer.Start(ctx, "postgres.SettingRepository.Upsert")
	defer span.End()

	db := getDB(ctx, r.client.db)
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "org_id"}, {Name: "scope"}, {Name: "scope_key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"revenue_per_interaction",
			"conversion_rate",
			"minutes_saved_per_interaction",
			"hourly_cost",
			"updated_by",
			"updated_at",
		}),
	}).Create(setting).Error
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to upsert setting: %w", err)
	}
	return nil
}

// CountByOrg 统计组织下参数行数
func (r *SettingRepository) CountByOrg(ctx context.Context, orgID string) (int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.SettingRepository.CountByOrg")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var count int64
	if err := db.Model(&entity.BusinessSetting{}).Where("org_id = ?", orgID).Count(&count).Error; err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to count settings: %w", err)
	}
	return count, nil
}
