package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"agent-console/internal/infrastructure/llm"
	"agent-console/internal/interfaces/http/dto"
	"agent-console/internal/interfaces/http/middleware"
)

// ProviderRegistry 供应商能力表
type ProviderRegistry interface {
	List() []llm.ProviderInfo
	Models(name string) ([]string, error)
	TestConnection(ctx context.Context, orgID, name string) (*llm.TestResult, error)
}

// ProviderHandler 模型供应商处理器
type ProviderHandler struct {
	registry ProviderRegistry
}

// NewProviderHandler 创建供应商处理器
func NewProviderHandler(registry ProviderRegistry) *ProviderHandler {
	return &ProviderHandler{registry: registry}
}

// List 列出已配置的供应商
// @Summary 供应商列表
// @Tags Providers
// @Produce json
// @Success 200 {object} dto.Response[[]llm.ProviderInfo]
// @Router /api/v1/providers [get]
func (h *ProviderHandler) List(c *gin.Context) {
	dto.Success(c, h.registry.List())
}

// Models 列出供应商可用模型
// @Summary 供应商模型列表
// @Tags Providers
// @Produce json
// @Param name path string true "供应商名称"
// @Success 200 {object} dto.Response[dto.ProviderModelsResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/providers/{name}/models [get]
func (h *ProviderHandler) Models(c *gin.Context) {
	name := dto.BindProviderName(c)
	models, err := h.registry.Models(name)
	if err != nil {
		respondError(c, "failed to list provider models", err)
		return
	}
	dto.Success(c, &dto.ProviderModelsResponse{Provider: name, Models: models})
}

// Test 测试供应商连通性
// @Summary 供应商连通性测试
// @Tags Providers
// @Produce json
// @Param name path string true "供应商名称"
// @Success 200 {object} dto.Response[llm.TestResult]
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/v1/providers/{name}/test [post]
func (h *ProviderHandler) Test(c *gin.Context) {
	res, err := h.registry.TestConnection(c.Request.Context(), middleware.GetOrgIDFromGin(c), dto.BindProviderName(c))
	if err != nil {
		respondError(c, "provider connection test failed", err)
		return
	}
	dto.Success(c, res)
}
