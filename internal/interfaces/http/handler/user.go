// Package handler 提供 HTTP 请求处理器
package handler

import (
	"agent-console/internal/domain/entity"
	"agent-console/internal/domain/repository"
	"agent-console/internal/interfaces/http/dto"
	"agent-console/internal/interfaces/http/middleware"
	apperrors "agent-console/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserHandler 用户处理器
type UserHandler struct {
	userRepo repository.UserRepository
}

// NewUserHandler 创建用户处理器
func NewUserHandler(userRepo repository.UserRepository) *UserHandler {
	return &UserHandler{
		userRepo: userRepo,
	}
}

// loadOrgUser 读取本组织内的用户，跨组织访问视为不存在
func (h *UserHandler) loadOrgUser(c *gin.Context, userID string) (*entity.User, bool) {
	user, err := h.userRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "failed to get user", apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to get user"))
		return nil, false
	}
	if user == nil || user.OrgID != middleware.GetOrgIDFromGin(c) {
		dto.AppError(c, apperrors.ErrUserNotFound)
		return nil, false
	}
	return user, true
}

// GetMe 获取当前用户信息
// @Summary 获取当前用户信息
// @Tags Users
// @Produce json
// @Success 200 {object} dto.Response[dto.UserResponse]
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/v1/users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	user, ok := h.loadOrgUser(c, middleware.GetUserIDFromGin(c))
	if !ok {
		return
	}
	dto.Success(c, dto.ToUserResponse(user))
}

// List 获取组织用户列表
// @Summary 获取组织用户列表
// @Tags Users
// @Produce json
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页条数" default(20)
// @Success 200 {object} dto.Response[[]dto.UserResponse]
// @Router /api/v1/users [get]
func (h *UserHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	pageReq := dto.BindPage(c)

	result, err := h.userRepo.ListByOrg(ctx, middleware.GetOrgIDFromGin(c), pageReq.Pagination())
	if err != nil {
		respondError(c, "failed to list users", apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list users"))
		return
	}

	dto.SuccessWithPage(c, dto.ToUserListResponse(result.Items), dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total)))
}

// Create 在本组织内创建用户
// @Summary 创建用户
// @Tags Users
// @Accept json
// @Produce json
// @Param body body dto.CreateUserRequest true "用户信息"
// @Success 201 {object} dto.Response[dto.UserResponse]
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/v1/users [post]
func (h *UserHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user := req.ToEntity(middleware.GetOrgIDFromGin(c))
	exists, err := h.userRepo.ExistsByEmail(ctx, user.Email)
	if err != nil {
		respondError(c, "failed to check email", apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to check email"))
		return
	}
	if exists {
		dto.AppError(c, apperrors.ErrConflict.WithDetail("email already registered"))
		return
	}

	user.ID = uuid.NewString()
	if err := user.SetPassword(req.Password); err != nil {
		respondError(c, "failed to hash password", err)
		return
	}
	if err := h.userRepo.Create(ctx, user); err != nil {
		respondError(c, "failed to create user", apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to create user"))
		return
	}
	dto.Created(c, dto.ToUserResponse(user))
}

// Get 获取用户
// @Summary 获取用户
// @Tags Users
// @Produce json
// @Param uid path string true "用户 ID"
// @Success 200 {object} dto.Response[dto.UserResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/users/{uid} [get]
func (h *UserHandler) Get(c *gin.Context) {
	user, ok := h.loadOrgUser(c, dto.BindUserID(c))
	if !ok {
		return
	}
	dto.Success(c, dto.ToUserResponse(user))
}

// Update 更新用户资料与角色
// @Summary 更新用户
// @Tags Users
// @Accept json
// @Produce json
// @Param uid path string true "用户 ID"
// @Param body body dto.UpdateUserRequest true "更新内容"
// @Success 200 {object} dto.Response[dto.UserResponse]
// @Router /api/v1/users/{uid} [put]
func (h *UserHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, ok := h.loadOrgUser(c, dto.BindUserID(c))
	if !ok {
		return
	}
	if req.Role != nil && user.ID == middleware.GetUserIDFromGin(c) && *req.Role != user.Role {
		dto.AppError(c, apperrors.ErrForbidden.WithDetail("cannot change own role"))
		return
	}

	req.ApplyToUser(user)
	if err := h.userRepo.Update(ctx, user); err != nil {
		respondError(c, "failed to update user", apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to update user"))
		return
	}
	if req.Role != nil && *req.Role != user.Role {
		if err := h.userRepo.UpdateRole(ctx, user.ID, *req.Role); err != nil {
			respondError(c, "failed to update user role", apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to update user role"))
			return
		}
		user.Role = *req.Role
	}
	dto.Success(c, dto.ToUserResponse(user))
}

// Delete 删除用户
// @Summary 删除用户
// @Tags Users
// @Param uid path string true "用户 ID"
// @Success 204
// @Router /api/v1/users/{uid} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	targetID := dto.BindUserID(c)
	if targetID == middleware.GetUserIDFromGin(c) {
		dto.AppError(c, apperrors.ErrForbidden.WithDetail("cannot delete yourself"))
		return
	}
	if _, ok := h.loadOrgUser(c, targetID); !ok {
		return
	}

	if err := h.userRepo.Delete(ctx, middleware.GetOrgIDFromGin(c), targetID); err != nil {
		respondError(c, "failed to delete user", apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to delete user"))
		return
	}
	dto.NoContent(c)
}
