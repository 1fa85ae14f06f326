package repository

import (
	"context"

	"agent-console/internal/domain/entity"
)

// AgentFilter 智能体列表过滤条件
type AgentFilter struct {
	Category string
	Provider string
	Active   *bool
}

// AgentRepository 智能体仓储接口
type AgentRepository interface {
	Create(ctx context.Context, agent *entity.Agent) error
	GetByID(ctx context.Context, orgID, id string) (*entity.Agent, error)
	Update(ctx context.Context, agent *entity.Agent) error
	Delete(ctx context.Context, orgID, id string) error
	List(ctx context.Context, orgID string, filter AgentFilter, pagination Pagination) (*PagedResult[*entity.Agent], error)
	// ListAll 返回组织下全部智能体，用于 agent → 名称/类别 查找
	ListAll(ctx context.Context, orgID string) ([]*entity.Agent, error)
}
