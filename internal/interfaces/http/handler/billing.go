package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"agent-console/internal/interfaces/http/dto"
	"agent-console/internal/interfaces/http/middleware"
)

// BillingService 计费服务
type BillingService interface {
	TriggerRecalc(ctx context.Context, orgID, provider, userID string) (string, error)
}

// BillingHandler 计费处理器
type BillingHandler struct {
	svc BillingService
}

// NewBillingHandler 创建计费处理器
func NewBillingHandler(svc BillingService) *BillingHandler {
	return &BillingHandler{svc: svc}
}

// Recalculate 投递成本重算任务
// @Summary 重算成本
// @Description 按当前价格表异步重算组织内的调用成本，可限定供应商
// @Tags Billing
// @Accept json
// @Produce json
// @Param body body dto.RecalculateRequest false "重算范围"
// @Success 202 {object} dto.Response[dto.RecalculateResponse]
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/billing/recalculate [post]
func (h *BillingHandler) Recalculate(c *gin.Context) {
	var req dto.RecalculateRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	jobID, err := h.svc.TriggerRecalc(c.Request.Context(), middleware.GetOrgIDFromGin(c), req.Provider, middleware.GetUserIDFromGin(c))
	if err != nil {
		respondError(c, "failed to trigger cost recalculation", err)
		return
	}
	dto.Accepted(c, &dto.RecalculateResponse{JobID: jobID, Provider: req.Provider})
}
