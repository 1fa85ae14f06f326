package repository

import (
	"context"

	"agent-console/internal/domain/entity"
)

// UserRepository 用户仓储接口
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// GetByEmail 邮箱全局唯一，登录时不需要组织信息
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, orgID, id string) error
	ListByOrg(ctx context.Context, orgID string, pagination Pagination) (*PagedResult[*entity.User], error)
	UpdateRole(ctx context.Context, id string, role entity.UserRole) error
	UpdateLastLogin(ctx context.Context, id string) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
