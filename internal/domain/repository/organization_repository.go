// Package repository 定义数据访问层接口
package repository

import (
	"context"
	"time"

	"agent-console/internal/domain/entity"
)

// OrganizationRepository 组织仓储接口
type OrganizationRepository interface {
	// Create 创建组织
	Create(ctx context.Context, org *entity.Organization) error

	// GetByID 根据 ID 获取组织，不存在时返回 nil, nil
	GetByID(ctx context.Context, id string) (*entity.Organization, error)

	// GetBySlug 根据 Slug 获取组织
	GetBySlug(ctx context.Context, slug string) (*entity.Organization, error)

	// Update 更新组织
	Update(ctx context.Context, org *entity.Organization) error

	// ExistsBySlug 检查 Slug 是否存在
	ExistsBySlug(ctx context.Context, slug string) (bool, error)

	// MarkSettingsSeeded 仅当尚未标记时写入引导时间，返回是否由本次调用完成标记
	MarkSettingsSeeded(ctx context.Context, id string, at time.Time) (bool, error)
}

// OrgContextManager 组织上下文管理接口（用于 PostgreSQL RLS）
type OrgContextManager interface {
	// SetOrg 设置当前组织上下文
	SetOrg(ctx context.Context, orgID string) error
	// ClearOrg 清除当前组织上下文
	ClearOrg(ctx context.Context) error
}
