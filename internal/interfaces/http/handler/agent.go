package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"agent-console/internal/domain/entity"
	"agent-console/internal/domain/repository"
	"agent-console/internal/interfaces/http/dto"
	"agent-console/internal/interfaces/http/middleware"
	apperrors "agent-console/pkg/errors"
)

// ProviderCatalog 供应商目录，用于校验智能体引用的供应商
type ProviderCatalog interface {
	Models(name string) ([]string, error)
}

// AgentHandler 智能体处理器
type AgentHandler struct {
	agentRepo repository.AgentRepository
	catalog   ProviderCatalog
}

// NewAgentHandler 创建智能体处理器
func NewAgentHandler(agentRepo repository.AgentRepository, catalog ProviderCatalog) *AgentHandler {
	return &AgentHandler{agentRepo: agentRepo, catalog: catalog}
}

func (h *AgentHandler) checkProvider(c *gin.Context, provider string) bool {
	if h.catalog == nil {
		return true
	}
	if _, err := h.catalog.Models(provider); err != nil {
		dto.AppError(c, err)
		return false
	}
	return true
}

func (h *AgentHandler) load(c *gin.Context) (*entity.Agent, bool) {
	agent, err := h.agentRepo.GetByID(c.Request.Context(), middleware.GetOrgIDFromGin(c), dto.BindAgentID(c))
	if err != nil {
		respondError(c, "failed to get agent", apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to get agent"))
		return nil, false
	}
	if agent == nil {
		dto.AppError(c, apperrors.ErrAgentNotFound)
		return nil, false
	}
	return agent, true
}

// List 智能体列表
// @Summary 智能体列表
// @Tags Agents
// @Produce json
// @Param category query string false "类别"
// @Param provider query string false "供应商"
// @Param active query bool false "是否启用"
// @Success 200 {object} dto.Response[[]dto.AgentResponse]
// @Router /api/v1/agents [get]
func (h *AgentHandler) List(c *gin.Context) {
	var q dto.AgentListQuery
	_ = c.ShouldBindQuery(&q)
	pageReq := dto.BindPage(c)

	filter := repository.AgentFilter{Category: q.Category, Provider: q.Provider}
	if q.Active != "" {
		active := dto.LenientBool(q.Active, true)
		filter.Active = &active
	}

	result, err := h.agentRepo.List(c.Request.Context(), middleware.GetOrgIDFromGin(c), filter, pageReq.Pagination())
	if err != nil {
		respondError(c, "failed to list agents", apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list agents"))
		return
	}
	dto.SuccessWithPage(c, dto.ToAgentListResponse(result.Items), dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total)))
}

// Create 创建智能体
// @Summary 创建智能体
// @Tags Agents
// @Accept json
// @Produce json
// @Param body body dto.CreateAgentRequest true "智能体配置"
// @Success 201 {object} dto.Response[dto.AgentResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/agents [post]
func (h *AgentHandler) Create(c *gin.Context) {
	var req dto.CreateAgentRequest
	if !bindJSON(c, &req) {
		return
	}

	agent := req.ToEntity(middleware.GetOrgIDFromGin(c))
	if !h.checkProvider(c, agent.Provider) {
		return
	}
	agent.ID = uuid.NewString()
	if err := h.agentRepo.Create(c.Request.Context(), agent); err != nil {
		respondError(c, "failed to create agent", apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to create agent"))
		return
	}
	dto.Created(c, dto.ToAgentResponse(agent))
}

// Get 获取智能体
// @Summary 获取智能体
// @Tags Agents
// @Produce json
// @Param aid path string true "智能体 ID"
// @Success 200 {object} dto.Response[dto.AgentResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/agents/{aid} [get]
func (h *AgentHandler) Get(c *gin.Context) {
	agent, ok := h.load(c)
	if !ok {
		return
	}
	dto.Success(c, dto.ToAgentResponse(agent))
}

// Update 更新智能体
// @Summary 更新智能体
// @Tags Agents
// @Accept json
// @Produce json
// @Param aid path string true "智能体 ID"
// @Param body body dto.UpdateAgentRequest true "更新内容"
// @Success 200 {object} dto.Response[dto.AgentResponse]
// @Router /api/v1/agents/{aid} [put]
func (h *AgentHandler) Update(c *gin.Context) {
	var req dto.UpdateAgentRequest
	if !bindJSON(c, &req) {
		return
	}

	agent, ok := h.load(c)
	if !ok {
		return
	}
	req.ApplyToAgent(agent)
	if req.Provider != nil && !h.checkProvider(c, agent.Provider) {
		return
	}

	if err := h.agentRepo.Update(c.Request.Context(), agent); err != nil {
		respondError(c, "failed to update agent", apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to update agent"))
		return
	}
	dto.Success(c, dto.ToAgentResponse(agent))
}

// Delete 删除智能体
// @Summary 删除智能体
// @Tags Agents
// @Param aid path string true "智能体 ID"
// @Success 204
// @Router /api/v1/agents/{aid} [delete]
func (h *AgentHandler) Delete(c *gin.Context) {
	if _, ok := h.load(c); !ok {
		return
	}
	if err := h.agentRepo.Delete(c.Request.Context(), middleware.GetOrgIDFromGin(c), dto.BindAgentID(c)); err != nil {
		respondError(c, "failed to delete agent", apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to delete agent"))
		return
	}
	dto.NoContent(c)
}
