package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"agent-console/internal/application/analytics"
	"agent-console/internal/application/settings"
	"agent-console/internal/domain/entity"
	"agent-console/internal/domain/repository"
	"agent-console/internal/interfaces/http/dto"
	"agent-console/internal/interfaces/http/middleware"
	apperrors "agent-console/pkg/errors"
)

// SettingsService 业务参数服务
type SettingsService interface {
	Effective(ctx context.Context, orgID, agentID, category string) (analytics.ParameterSet, error)
	List(ctx context.Context, orgID string) ([]*entity.BusinessSetting, error)
	Upsert(ctx context.Context, in settings.UpsertInput) (*entity.BusinessSetting, error)
	Bootstrap(ctx context.Context, orgID string, role entity.UserRole) settings.BootstrapResult
}

// SettingsHandler 业务参数处理器
type SettingsHandler struct {
	svc       SettingsService
	agentRepo repository.AgentRepository
}

// NewSettingsHandler 创建业务参数处理器
func NewSettingsHandler(svc SettingsService, agentRepo repository.AgentRepository) *SettingsHandler {
	return &SettingsHandler{svc: svc, agentRepo: agentRepo}
}

// Effective 查询有效参数
// @Summary 有效业务参数
// @Description 按 智能体 > 类别 > 组织 逐字段解析；仅给出 agent_id 时按智能体所属类别解析
// @Tags Settings
// @Produce json
// @Param agent_id query string false "智能体 ID"
// @Param category query string false "类别"
// @Success 200 {object} dto.Response[dto.EffectiveSettingsResponse]
// @Router /api/v1/settings/effective [get]
func (h *SettingsHandler) Effective(c *gin.Context) {
	ctx := c.Request.Context()
	orgID := middleware.GetOrgIDFromGin(c)

	var q dto.EffectiveSettingsQuery
	_ = c.ShouldBindQuery(&q)
	agentID := strings.TrimSpace(q.AgentID)
	category := strings.TrimSpace(q.Category)

	if agentID != "" && category == "" && h.agentRepo != nil {
		agent, err := h.agentRepo.GetByID(ctx, orgID, agentID)
		if err != nil {
			respondError(c, "failed to get agent", apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to get agent"))
			return
		}
		if agent != nil {
			category = agent.Category
		}
	}

	params, err := h.svc.Effective(ctx, orgID, agentID, category)
	if err != nil {
		respondError(c, "failed to resolve settings", err)
		return
	}
	dto.Success(c, &dto.EffectiveSettingsResponse{
		AgentID:  agentID,
		Category: category,
		Params:   params,
		Resolved: params.OrZero(),
	})
}

// List 参数行列表
// @Summary 业务参数列表
// @Tags Settings
// @Produce json
// @Success 200 {object} dto.Response[[]dto.SettingResponse]
// @Router /api/v1/settings [get]
func (h *SettingsHandler) List(c *gin.Context) {
	rows, err := h.svc.List(c.Request.Context(), middleware.GetOrgIDFromGin(c))
	if err != nil {
		respondError(c, "failed to list settings", apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list settings"))
		return
	}
	dto.Success(c, dto.ToSettingListResponse(rows))
}

// Upsert 写入某作用域参数
// @Summary 写入业务参数
// @Description 数值字段接受数字或字符串，无法解析时取 0，null 表示未设置
// @Tags Settings
// @Accept json
// @Produce json
// @Param body body dto.UpsertSettingsRequest true "参数"
// @Success 200 {object} dto.Response[dto.SettingResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/settings [put]
func (h *SettingsHandler) Upsert(c *gin.Context) {
	ctx := c.Request.Context()
	orgID := middleware.GetOrgIDFromGin(c)

	var req dto.UpsertSettingsRequest
	if !bindJSON(c, &req) {
		return
	}

	scope := req.ScopeValue()
	if scope == entity.SettingScopeAgent && h.agentRepo != nil {
		agent, err := h.agentRepo.GetByID(ctx, orgID, strings.TrimSpace(req.ScopeKey))
		if err != nil {
			respondError(c, "failed to get agent", apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to get agent"))
			return
		}
		if agent == nil {
			dto.AppError(c, apperrors.ErrAgentNotFound)
			return
		}
	}

	row, err := h.svc.Upsert(ctx, settings.UpsertInput{
		OrgID:     orgID,
		Scope:     scope,
		ScopeKey:  req.ScopeKey,
		Params:    req.Params(),
		UpdatedBy: middleware.GetUserIDFromGin(c),
	})
	if err != nil {
		respondError(c, "failed to save settings", err)
		return
	}
	dto.Success(c, dto.ToSettingResponse(row))
}

// Bootstrap 组织级参数引导
// @Summary 引导默认业务参数
// @Description 仅管理员；已配置或已引导时跳过，失败不影响调用方
// @Tags Settings
// @Produce json
// @Success 200 {object} dto.Response[settings.BootstrapResult]
// @Router /api/v1/settings/bootstrap [post]
func (h *SettingsHandler) Bootstrap(c *gin.Context) {
	res := h.svc.Bootstrap(c.Request.Context(), middleware.GetOrgIDFromGin(c), entity.UserRole(middleware.GetRoleFromGin(c)))
	dto.Success(c, res)
}
