// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"agent-console/internal/domain/entity"
)

// OrganizationRepository 组织仓储实现
type OrganizationRepository struct {
	client *Client
}

// NewOrganizationRepository 创建组织仓储
func NewOrganizationRepository(client *Client) *OrganizationRepository {
	return &OrganizationRepository{client: client}
}

// Create 创建组织
func (r *OrganizationRepository) Create(ctx context.Context, org *entity.Organization) error {
	ctx, span := tracer.Start(ctx, "postgres.OrganizationRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(org).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create organization: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取组织
func (r *OrganizationRepository) GetByID(ctx context.Context, id string) (*entity.Organization, error) {
	ctx, span := tracer.Start(ctx, "postgres.OrganizationRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var org entity.Organization
	if err := db.First(&org, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return &org, nil
}

// GetBySlug 根据 Slug 获取组织
func (r *OrganizationRepository) GetBySlug(ctx context.Context, slug string) (*entity.Organization, error) {
	ctx, span := tracer.Start(ctx, "postgres.OrganizationRepository.GetBySlug")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var org entity.Organization
	if err := db.First(&org, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get organization by slug: %w", err)
	}
	return &org, nil
}

// Update 更新组织
func (r *OrganizationRepository) Update(ctx context.Context, org *entity.Organization) error {
	ctx, span := tracer.Start(ctx, "postgres.OrganizationRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(org).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update organization: %w", err)
	}
	return nil
}

// ExistsBySlug 检查 Slug 是否存在
func (r *OrganizationRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	ctx, span := tracer.Start(ctx, "postgres.OrganizationRepository.ExistsBySlug")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var count int64
	if err := db.Model(&entity.Organization{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to check slug exists: %w", err)
	}
	return count > 0, nil
}

// MarkSettingsSeeded 条件更新 settings_seeded_at，并发调用只有一个会返回 true
func (r *OrganizationRepository) MarkSettingsSeeded(ctx context.Context, id string, at time.Time) (bool, error) {
	ctx, span := tracer.Start(ctx, "postgres.OrganizationRepository.MarkSettingsSeeded")
	defer span.End()

	db := getDB(ctx, r.client.db)
	res := db.Model(&entity.Organization{}).
		Where("id = ? AND settings_seeded_at IS NULL", id).
		Update("settings_seeded_at", at)
	if res.Error != nil {
		span.RecordError(res.Error)
		return false, fmt.Errorf("failed to mark settings seeded: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}
