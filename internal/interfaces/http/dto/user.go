// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"strings"
	"time"

	"agent-console/internal/domain/entity"
)

// UserResponse 用户响应
type UserResponse struct {
	ID          string          `json:"id"`
	OrgID       string          `json:"org_id"`
	Email       string          `json:"email"`
	Name        string          `json:"name"`
	Role        entity.UserRole `json:"role"`
	LastLoginAt *time.Time      `json:"last_login_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CreateUserRequest 管理员在本组织内创建用户
type CreateUserRequest struct {
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,min=8,max=64"`
	Name     string          `json:"name" binding:"required,max=128"`
	Role     entity.UserRole `json:"role" binding:"omitempty,oneof=admin member viewer"`
}

// UpdateUserRequest 更新用户请求
type UpdateUserRequest struct {
	Name *string          `json:"name" binding:"omitempty,max=128"`
	Role *entity.UserRole `json:"role" binding:"omitempty,oneof=admin member viewer"`
}

// ToUserResponse 实体转换为响应
func ToUserResponse(u *entity.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:          u.ID,
		OrgID:       u.OrgID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// ToUserListResponse 实体列表转换为响应
func ToUserListResponse(users []*entity.User) []*UserResponse {
	items := make([]*UserResponse, len(users))
	for i, u := range users {
		items[i] = ToUserResponse(u)
	}
	return items
}

// ToEntity 构建新用户实体（不含密码）
func (r *CreateUserRequest) ToEntity(orgID string) *entity.User {
	u := entity.NewUser(orgID, strings.ToLower(strings.TrimSpace(r.Email)), r.Name)
	if r.Role != "" {
		u.Role = r.Role
	}
	return u
}

// ApplyToUser 更新实体，角色变更由调用方单独处理
func (r *UpdateUserRequest) ApplyToUser(u *entity.User) {
	if r.Name != nil {
		u.Name = *r.Name
	}
	u.UpdatedAt = time.Now()
}
