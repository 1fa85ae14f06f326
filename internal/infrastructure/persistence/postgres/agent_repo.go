// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"agent-console/internal/domain/entity"
	"agent-console/internal/domain/repository"
)

// AgentRepository 智能体仓储实现
type AgentRepository struct {
	client *Client
}

// NewAgentRepository 创建智能体仓储
func NewAgentRepository(client *Client) *AgentRepository {
	return &AgentRepository{client: client}
}

// Create 创建智能体
func (r *AgentRepository) Create(ctx context.Context, agent *entity.Agent) error {
	ctx, span := tracer.Start(ctx, "postgres.AgentRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(agent).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create agent: %w", err)
	}
	return nil
}

// GetByID 获取组织内的智能体
func (r *AgentRepository) GetByID(ctx context.Context, orgID, id string) (*entity.Agent, error) {
	ctx, span := tracer.Start(ctx, "postgres.AgentRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var agent entity.Agent
	if err := db.First(&agent, "org_id = ? AND id = ?", orgID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}
	return &agent, nil
}

// Update 更新智能体
func (r *AgentRepository) Update(ctx context.Context, agent *entity.Agent) error {
	ctx, span := tracer.Start(ctx, "postgres.AgentRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(agent).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update agent: %w", err)
	}
	return nil
}

// Delete 删除智能体
func (r *AgentRepository) Delete(ctx context.Context, orgID, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.AgentRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.Agent{}, "org_id = ? AND id = ?", orgID, id).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete agent: %w", err)
	}
	return nil
}

// List 分页获取智能体列表
func (r *AgentRepository) List(ctx context.Context, orgID string, filter repository.AgentFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.Agent], error) {
	ctx, span := tracer.Start(ctx, "postgres.AgentRepository.List")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.Agent{}).Where("org_id = ?", orgID)
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Provider != "" {
		query = query.Where("provider = ?", filter.Provider)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count agents: %w", err)
	}

	var agents []*entity.Agent
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&agents).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}

	return repository.NewPagedResult(agents, total, pagination), nil
}

// ListAll 获取组织下全部智能体
func (r *AgentRepository) ListAll(ctx context.Context, orgID string) ([]*entity.Agent, error) {
	ctx, span := tracer.Start(ctx, "postgres.AgentRepository.ListAll")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var agents []*entity.Agent
	if err := db.Where("org_id = ?", orgID).Order("created_at ASC").Find(&agents).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list all agents: %w", err)
	}
	return agents, nil
}
